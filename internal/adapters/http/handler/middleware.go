package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/ogurasousui/hr-ledger/internal/core/authz"
)

const callerLocalKey = "caller"

// NewAuthMiddleware は Bearer トークンを検証し、呼び出し元情報を
// リクエストコンテキストへ格納するミドルウェアを返します。
// トークンの role クレームは必須、employee_id は任意です。
func NewAuthMiddleware(secret string, log *zap.Logger) fiber.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		raw, err := extractBearerToken(c)
		if err != nil {
			return writeError(c, fiber.StatusUnauthorized, "missing or malformed token")
		}

		claims := jwt.MapClaims{}
		if _, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		}); err != nil {
			log.Debug("token rejected", zap.Error(err))
			return writeError(c, fiber.StatusUnauthorized, "invalid or expired token")
		}

		caller, err := callerFromClaims(claims)
		if err != nil {
			return writeError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		c.Locals(callerLocalKey, caller)
		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) (string, error) {
	auth := c.Get(fiber.HeaderAuthorization)
	if auth == "" {
		return "", fiber.ErrUnauthorized
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", fiber.ErrUnauthorized
	}
	return parts[1], nil
}

func callerFromClaims(claims jwt.MapClaims) (authz.Caller, error) {
	roleValue, ok := claims["role"].(string)
	if !ok {
		return authz.Caller{}, jwt.ErrTokenInvalidClaims
	}
	role := authz.Role(roleValue)
	if !role.IsValid() {
		return authz.Caller{}, jwt.ErrTokenInvalidClaims
	}

	caller := authz.Caller{Role: role}
	if id, ok := claims["employee_id"].(string); ok && id != "" {
		caller.EmployeeID = &id
	}
	return caller, nil
}

// CallerFromCtx はミドルウェアが格納した呼び出し元情報を取り出します。
func CallerFromCtx(c *fiber.Ctx) (authz.Caller, bool) {
	caller, ok := c.Locals(callerLocalKey).(authz.Caller)
	return caller, ok
}
