package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// NewApp はすべてのエンドポイントを登録した Fiber アプリケーションを構築します。
// /api/v1 配下のルートは認証ミドルウェアで保護されます。
func NewApp(auth fiber.Handler, salaryHandler *SalaryHandler, employeeHandler *EmployeeHandler, log *zap.Logger) *fiber.App {
	if log == nil {
		log = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return writeError(c, fiberErr.Code, fiberErr.Message)
			}
			log.Error("unhandled request error", zap.Error(err))
			return writeError(c, fiber.StatusInternalServerError, "internal server error")
		},
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1", auth)
	salaryHandler.Register(api)
	employeeHandler.Register(api)

	return app
}
