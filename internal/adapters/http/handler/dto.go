package handler

import (
	"time"

	"github.com/ogurasousui/hr-ledger/internal/core/employee"
	"github.com/ogurasousui/hr-ledger/internal/core/salary"
)

const dateLayout = "2006-01-02"

type errorResponse struct {
	Error string `json:"error"`
}

type salaryResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	BaseSalary    string  `json:"base_salary"`
	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to"`
	Status        string  `json:"status"`
}

func toSalaryResponse(rec *salary.Record) salaryResponse {
	return salaryResponse{
		ID:            rec.ID,
		EmployeeID:    rec.EmployeeID,
		BaseSalary:    rec.BaseAmount.String(),
		EffectiveFrom: rec.EffectiveFrom.Format(dateLayout),
		EffectiveTo:   formatDatePtr(rec.EffectiveTo),
		Status:        string(rec.Status()),
	}
}

func toSalaryListResponse(records []*salary.Record) []salaryResponse {
	out := make([]salaryResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toSalaryResponse(rec))
	}
	return out
}

type historyEntryResponse struct {
	Amount        string  `json:"amount"`
	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to"`
	Status        string  `json:"status"`
}

type historyResponse struct {
	EmployeeID string                 `json:"employee_id"`
	Current    *string                `json:"current"`
	Entries    []historyEntryResponse `json:"entries"`
}

func toHistoryResponse(h *salary.History) historyResponse {
	entries := make([]historyEntryResponse, 0, len(h.Entries))
	for _, e := range h.Entries {
		entries = append(entries, historyEntryResponse{
			Amount:        e.Amount.String(),
			EffectiveFrom: e.EffectiveFrom.Format(dateLayout),
			EffectiveTo:   formatDatePtr(e.EffectiveTo),
			Status:        string(e.Status),
		})
	}

	var current *string
	if h.Current != nil {
		v := h.Current.String()
		current = &v
	}

	return historyResponse{EmployeeID: h.EmployeeID, Current: current, Entries: entries}
}

type aggregateResponse struct {
	DepartmentID  string `json:"department_id"`
	Total         string `json:"total"`
	Average       string `json:"average"`
	Min           string `json:"min"`
	Max           string `json:"max"`
	Count         int    `json:"count"`
	WithoutActive int    `json:"without_active"`
}

func toAggregateResponse(agg *salary.DepartmentAggregate) aggregateResponse {
	return aggregateResponse{
		DepartmentID:  agg.DepartmentID,
		Total:         agg.Total.String(),
		Average:       agg.Average.String(),
		Min:           agg.Min.String(),
		Max:           agg.Max.String(),
		Count:         agg.Count,
		WithoutActive: agg.WithoutActive,
	}
}

type raiseSalaryRequest struct {
	BaseSalary     string  `json:"base_salary"`
	EffectiveFrom  string  `json:"effective_from"`
	PriorCloseDate *string `json:"prior_close_date"`
}

type createEmployeeRequest struct {
	EmployeeCode  string  `json:"employee_code"`
	FullName      string  `json:"full_name"`
	DepartmentID  string  `json:"department_id"`
	PositionTitle string  `json:"position_title"`
	HireDate      *string `json:"hire_date"`
}

type employeeResponse struct {
	ID            string  `json:"id"`
	EmployeeCode  string  `json:"employee_code"`
	FullName      string  `json:"full_name"`
	DepartmentID  string  `json:"department_id"`
	PositionTitle string  `json:"position_title"`
	HireDate      *string `json:"hire_date"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func toEmployeeResponse(e *employee.Employee) employeeResponse {
	return employeeResponse{
		ID:            e.ID,
		EmployeeCode:  e.EmployeeCode,
		FullName:      e.FullName,
		DepartmentID:  e.DepartmentID,
		PositionTitle: e.PositionTitle,
		HireDate:      formatDatePtr(e.HireDate),
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     e.UpdatedAt.Format(time.RFC3339),
	}
}

type deleteResponse struct {
	RemovedSalaryRecords int64 `json:"removed_salary_records"`
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(dateLayout)
	return &v
}

func parseDateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
