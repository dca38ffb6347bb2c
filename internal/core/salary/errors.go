package salary

import "errors"

var (
	ErrInvalidEmployeeID    = errors.New("salary: invalid employee id")
	ErrInvalidAmount        = errors.New("salary: amount must be positive")
	ErrMissingEffectiveFrom = errors.New("salary: effective_from is required")
	ErrInvalidPeriod        = errors.New("salary: effective_to must not precede effective_from")
	ErrBeforeHireDate       = errors.New("salary: effective_from precedes hire date")
	ErrInvalidListLimit     = errors.New("salary: invalid list limit")
	ErrPeriodOverlap        = errors.New("salary: period overlaps an existing record")
	ErrSalaryAlreadyOpen    = errors.New("salary: employee already has an open salary record")
	ErrNoActiveSalary       = errors.New("salary: no active salary record")
	ErrRecordNotFound       = errors.New("salary: record not found")
	ErrRecordAlreadyClosed  = errors.New("salary: record already closed")

	// ErrLedgerCorrupted は社員 1 人に複数のオープン記録が観測されたことを
	// 示します。ローカルでは回復できず、手動のデータ修復が必要です。
	ErrLedgerCorrupted = errors.New("salary: multiple open records for one employee")
)
