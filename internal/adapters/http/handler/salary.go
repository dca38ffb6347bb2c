package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ogurasousui/hr-ledger/internal/core/salary"
)

// SalaryHandler は給与台帳の HTTP エンドポイントです。
type SalaryHandler struct {
	ledger salary.AuthorizedUseCase
	log    *zap.Logger
}

// NewSalaryHandler は SalaryHandler を生成します。
func NewSalaryHandler(ledger salary.AuthorizedUseCase, log *zap.Logger) *SalaryHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SalaryHandler{ledger: ledger, log: log}
}

// Register はルーターへエンドポイントを登録します。
func (h *SalaryHandler) Register(router fiber.Router) {
	router.Get("/salaries", h.list)
	router.Get("/salaries/my-salary", h.mySalary)
	router.Get("/employees/:id/salary/current", h.current)
	router.Get("/employees/:id/salary/history", h.history)
	router.Post("/employees/:id/salary", h.raise)
	router.Delete("/employees/:id/salary", h.deleteAll)
	router.Get("/departments/:id/salary/aggregate", h.aggregate)
}

func (h *SalaryHandler) list(c *fiber.Ctx) error {
	caller, ok := CallerFromCtx(c)
	if !ok {
		return writeError(c, fiber.StatusUnauthorized, "authentication required")
	}

	in := salary.ListSalariesInput{}
	if id := c.Query("employee_id"); id != "" {
		in.EmployeeID = &id
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "limit must be an integer")
		}
		in.Limit = limit
	}

	records, err := h.ledger.ListSalaries(c.UserContext(), caller, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSalaryListResponse(records))
}

func (h *SalaryHandler) mySalary(c *fiber.Ctx) error {
	caller, ok := CallerFromCtx(c)
	if !ok {
		return writeError(c, fiber.StatusUnauthorized, "authentication required")
	}

	asOf, err := parseDateParam(c.Query("as_of"))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "as_of must be YYYY-MM-DD")
	}

	rec, err := h.ledger.MyCurrentSalary(c.UserContext(), caller, asOf)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSalaryResponse(rec))
}

func (h *SalaryHandler) current(c *fiber.Ctx) error {
	caller, ok := CallerFromCtx(c)
	if !ok {
		return writeError(c, fiber.StatusUnauthorized, "authentication required")
	}

	asOf, err := parseDateParam(c.Query("as_of"))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "as_of must be YYYY-MM-DD")
	}

	rec, err := h.ledger.CurrentSalary(c.UserContext(), caller, salary.CurrentSalaryInput{
		EmployeeID: c.Params("id"),
		AsOf:       asOf,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSalaryResponse(rec))
}

func (h *SalaryHandler) history(c *fiber.Ctx) error {
	caller, ok := CallerFromCtx(c)
	if !ok {
		return writeError(c, fiber.StatusUnauthorized, "authentication required")
	}

	from, err := parseDateParam(c.Query("from"))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "from must be YYYY-MM-DD")
	}
	to, err := parseDateParam(c.Query("to"))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "to must be YYYY-MM-DD")
	}

	history, err := h.ledger.SalaryHistory(c.UserContext(), caller, salary.SalaryHistoryInput{
		EmployeeID: c.Params("id"),
		From:       from,
		To:         to,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toHistoryResponse(history))
}

func (h *SalaryHandler) raise(c *fiber.Ctx) error {
	caller, ok := CallerFromCtx(c)
	if !ok {
		return writeError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var req raiseSalaryRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid request body")
	}

	amount, err := decimal.NewFromString(req.BaseSalary)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "base_salary must be a decimal string")
	}

	effectiveFrom, err := parseDateParam(req.EffectiveFrom)
	if err != nil || effectiveFrom == nil {
		return writeError(c, fiber.StatusBadRequest, "effective_from must be YYYY-MM-DD")
	}

	in := salary.RaiseOrSetSalaryInput{
		EmployeeID:    c.Params("id"),
		Amount:        amount,
		EffectiveFrom: *effectiveFrom,
	}
	if req.PriorCloseDate != nil {
		closeDate, err := parseDateParam(*req.PriorCloseDate)
		if err != nil || closeDate == nil {
			return writeError(c, fiber.StatusBadRequest, "prior_close_date must be YYYY-MM-DD")
		}
		in.PriorCloseDate = closeDate
	}

	rec, err := h.ledger.RaiseOrSetSalary(c.UserContext(), caller, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSalaryResponse(rec))
}

func (h *SalaryHandler) deleteAll(c *fiber.Ctx) error {
	caller, ok := CallerFromCtx(c)
	if !ok {
		return writeError(c, fiber.StatusUnauthorized, "authentication required")
	}

	removed, err := h.ledger.DeleteForEmployee(c.UserContext(), caller, salary.DeleteForEmployeeInput{
		EmployeeID: c.Params("id"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(deleteResponse{RemovedSalaryRecords: removed})
}

func (h *SalaryHandler) aggregate(c *fiber.Ctx) error {
	caller, ok := CallerFromCtx(c)
	if !ok {
		return writeError(c, fiber.StatusUnauthorized, "authentication required")
	}

	agg, err := h.ledger.DepartmentAggregate(c.UserContext(), caller, salary.DepartmentAggregateInput{
		DepartmentID: c.Params("id"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toAggregateResponse(agg))
}
