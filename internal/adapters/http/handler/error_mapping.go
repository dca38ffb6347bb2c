package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ogurasousui/hr-ledger/internal/core/authz"
	"github.com/ogurasousui/hr-ledger/internal/core/employee"
	"github.com/ogurasousui/hr-ledger/internal/core/salary"
)

// statusFromError はドメインエラーを HTTP ステータスへ変換します。
func statusFromError(err error) int {
	switch {
	case errors.Is(err, authz.ErrPermissionDenied):
		return fiber.StatusForbidden

	case errors.Is(err, salary.ErrSalaryAlreadyOpen),
		errors.Is(err, salary.ErrPeriodOverlap),
		errors.Is(err, salary.ErrRecordAlreadyClosed),
		errors.Is(err, employee.ErrEmployeeCodeAlreadyExists):
		return fiber.StatusConflict

	case errors.Is(err, salary.ErrNoActiveSalary),
		errors.Is(err, salary.ErrRecordNotFound),
		errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrDepartmentNotFound):
		return fiber.StatusNotFound

	case errors.Is(err, salary.ErrInvalidEmployeeID),
		errors.Is(err, salary.ErrInvalidAmount),
		errors.Is(err, salary.ErrMissingEffectiveFrom),
		errors.Is(err, salary.ErrInvalidPeriod),
		errors.Is(err, salary.ErrBeforeHireDate),
		errors.Is(err, salary.ErrInvalidListLimit),
		errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidEmployeeCode),
		errors.Is(err, employee.ErrInvalidFullName),
		errors.Is(err, employee.ErrInvalidDepartmentID):
		return fiber.StatusBadRequest

	default:
		// salary.ErrLedgerCorrupted を含む想定外のエラー
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	status := statusFromError(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = "internal server error"
	}
	return writeError(c, status, message)
}

func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errorResponse{Error: message})
}
