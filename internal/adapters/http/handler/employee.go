package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ogurasousui/hr-ledger/internal/core/authz"
	"github.com/ogurasousui/hr-ledger/internal/core/employee"
)

// EmployeeHandler は社員管理の HTTP エンドポイントです。
type EmployeeHandler struct {
	svc     employee.UseCase
	decider authz.Decider
	log     *zap.Logger
}

// NewEmployeeHandler は EmployeeHandler を生成します。
func NewEmployeeHandler(svc employee.UseCase, decider authz.Decider, log *zap.Logger) *EmployeeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &EmployeeHandler{svc: svc, decider: decider, log: log}
}

// Register はルーターへエンドポイントを登録します。
func (h *EmployeeHandler) Register(router fiber.Router) {
	router.Post("/employees", h.create)
	router.Get("/employees/:id", h.get)
	router.Delete("/employees/:id", h.delete)
}

func (h *EmployeeHandler) create(c *fiber.Ctx) error {
	caller, ok := CallerFromCtx(c)
	if !ok {
		return writeError(c, fiber.StatusUnauthorized, "authentication required")
	}
	if err := h.require(caller, authz.ActionManageEmployees, ""); err != nil {
		return respondError(c, err)
	}

	var req createEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid request body")
	}

	in := employee.CreateEmployeeInput{
		EmployeeCode:  req.EmployeeCode,
		FullName:      req.FullName,
		DepartmentID:  req.DepartmentID,
		PositionTitle: req.PositionTitle,
	}
	if req.HireDate != nil {
		hireDate, err := parseDateParam(*req.HireDate)
		if err != nil || hireDate == nil {
			return writeError(c, fiber.StatusBadRequest, "hire_date must be YYYY-MM-DD")
		}
		in.HireDate = hireDate
	}

	created, err := h.svc.CreateEmployee(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toEmployeeResponse(created))
}

func (h *EmployeeHandler) get(c *fiber.Ctx) error {
	caller, ok := CallerFromCtx(c)
	if !ok {
		return writeError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id := c.Params("id")
	// 自分自身の社員記録は誰でも参照できる
	if !caller.Owns(id) {
		if err := h.require(caller, authz.ActionManageEmployees, id); err != nil {
			return respondError(c, err)
		}
	}

	found, err := h.svc.GetEmployee(c.UserContext(), employee.GetEmployeeInput{ID: id})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toEmployeeResponse(found))
}

func (h *EmployeeHandler) delete(c *fiber.Ctx) error {
	caller, ok := CallerFromCtx(c)
	if !ok {
		return writeError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id := c.Params("id")
	// 社員削除は給与記録の連鎖削除を伴うため、削除権限が必要
	if err := h.require(caller, authz.ActionDeleteSalary, id); err != nil {
		return respondError(c, err)
	}

	if err := h.svc.DeleteEmployee(c.UserContext(), employee.DeleteEmployeeInput{ID: id}); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *EmployeeHandler) require(caller authz.Caller, action authz.Action, target string) error {
	decision := h.decider.Decide(caller, action, target)
	if decision.Allowed {
		return nil
	}

	h.log.Info("employee access denied",
		zap.String("role", string(caller.Role)),
		zap.String("action", string(action)),
		zap.String("reason", decision.Reason))

	return fmt.Errorf("%w: %s", authz.ErrPermissionDenied, decision.Reason)
}
