package salary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ogurasousui/hr-ledger/internal/core/employee"
)

const dateLayout = "2006-01-02"

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// Service は給与台帳のビジネス操作をまとめます。呼び出し元の認可には
// 関知しません。外部には Facade 経由でのみ公開されます。
type Service struct {
	records   Repository
	employees employee.Repository
	clock     Clock
	tx        TransactionManager
	log       *zap.Logger
}

// UseCase は給与台帳ユースケースのインターフェースです。
type UseCase interface {
	CurrentSalary(ctx context.Context, in CurrentSalaryInput) (*Record, error)
	SalaryHistory(ctx context.Context, in SalaryHistoryInput) (*History, error)
	RaiseOrSetSalary(ctx context.Context, in RaiseOrSetSalaryInput) (*Record, error)
	ListSalaries(ctx context.Context, in ListSalariesInput) ([]*Record, error)
	DepartmentAggregate(ctx context.Context, in DepartmentAggregateInput) (*DepartmentAggregate, error)
	DeleteForEmployee(ctx context.Context, in DeleteForEmployeeInput) (int64, error)
}

// NewService は Service を生成します。
func NewService(records Repository, employees employee.Repository, clock Clock, tx TransactionManager, log *zap.Logger) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{records: records, employees: employees, clock: clock, tx: tx, log: log}
}

// CurrentSalaryInput は現行給与照会の入力です。AsOf を指定すると
// その日時点で有効だった給与を返します。
type CurrentSalaryInput struct {
	EmployeeID string
	AsOf       *time.Time
}

// SalaryHistoryInput は履歴照会の入力です。
type SalaryHistoryInput struct {
	EmployeeID string
	From       *time.Time
	To         *time.Time
}

// RaiseOrSetSalaryInput は給与改定の入力です。オープン記録がある場合は
// PriorCloseDate が必須で、クローズと新期間の作成が原子的に行われます。
type RaiseOrSetSalaryInput struct {
	EmployeeID     string
	Amount         decimal.Decimal
	EffectiveFrom  time.Time
	PriorCloseDate *time.Time
}

// ListSalariesInput は台帳全体照会の入力です。
type ListSalariesInput struct {
	EmployeeID *string
	Limit      int
}

// DepartmentAggregateInput は部門集計の入力です。
type DepartmentAggregateInput struct {
	DepartmentID string
}

// DeleteForEmployeeInput は連鎖削除の入力です。
type DeleteForEmployeeInput struct {
	EmployeeID string
}

// CurrentSalary は社員の現行給与記録を返します。
func (s *Service) CurrentSalary(ctx context.Context, in CurrentSalaryInput) (*Record, error) {
	id, err := normalizeEmployeeID(in.EmployeeID)
	if err != nil {
		return nil, err
	}

	var found *Record
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.employees.FindByID(txCtx, id); err != nil {
			return err
		}

		var err error
		if in.AsOf != nil {
			found, err = s.records.FindOpenAsOf(txCtx, id, normalizeDay(*in.AsOf))
		} else {
			found, err = s.records.FindOpen(txCtx, id)
		}
		return s.noteCorruption(err, id)
	}); err != nil {
		return nil, err
	}

	return found, nil
}

// SalaryHistory は社員の給与履歴を effective_from 昇順で返します。
func (s *Service) SalaryHistory(ctx context.Context, in SalaryHistoryInput) (*History, error) {
	id, err := normalizeEmployeeID(in.EmployeeID)
	if err != nil {
		return nil, err
	}

	history := &History{EmployeeID: id}
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.employees.FindByID(txCtx, id); err != nil {
			return err
		}

		records, err := s.records.History(txCtx, id, HistoryFilter{From: normalizeDayPtr(in.From), To: normalizeDayPtr(in.To)})
		if err != nil {
			return err
		}

		open := 0
		history.Entries = make([]HistoryEntry, 0, len(records))
		for _, rec := range records {
			history.Entries = append(history.Entries, HistoryEntry{
				Amount:        rec.BaseAmount,
				EffectiveFrom: rec.EffectiveFrom,
				EffectiveTo:   rec.EffectiveTo,
				Status:        rec.Status(),
			})
			if rec.IsOpen() {
				open++
				amount := rec.BaseAmount
				history.Current = &amount
			}
		}

		if open > 1 {
			return s.noteCorruption(fmt.Errorf("%w: employee %s", ErrLedgerCorrupted, id), id)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return history, nil
}

// RaiseOrSetSalary は給与改定を行います。オープン記録があれば
// PriorCloseDate でクローズし、新しい期間を同一トランザクションで開きます。
// オープン記録がなければ最初の記録として挿入します。
func (s *Service) RaiseOrSetSalary(ctx context.Context, in RaiseOrSetSalaryInput) (*Record, error) {
	id, err := normalizeEmployeeID(in.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if in.EffectiveFrom.IsZero() {
		return nil, ErrMissingEffectiveFrom
	}
	from := normalizeDay(in.EffectiveFrom)

	var created *Record
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.employees.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if emp.HireDate != nil && from.Before(*emp.HireDate) {
			return fmt.Errorf("%w: hired %s", ErrBeforeHireDate, emp.HireDate.Format(dateLayout))
		}

		open, err := s.records.FindOpen(txCtx, id)
		switch {
		case err == nil:
			if in.PriorCloseDate == nil {
				return fmt.Errorf("%w: open period since %s", ErrSalaryAlreadyOpen, open.EffectiveFrom.Format(dateLayout))
			}
			closeDate := normalizeDay(*in.PriorCloseDate)
			if closeDate.Before(open.EffectiveFrom) {
				return fmt.Errorf("%w: open period starts %s", ErrInvalidPeriod, open.EffectiveFrom.Format(dateLayout))
			}
			if !from.After(closeDate) {
				return fmt.Errorf("%w: new period must start strictly after %s", ErrPeriodOverlap, closeDate.Format(dateLayout))
			}
			if _, err := s.records.Close(txCtx, open.ID, closeDate); err != nil {
				return err
			}
		case errors.Is(err, ErrNoActiveSalary):
			// first record for this employee
		default:
			return s.noteCorruption(err, id)
		}

		now := s.clock.Now()
		record := &Record{
			EmployeeID:    id,
			BaseAmount:    in.Amount,
			EffectiveFrom: from,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		result, err := s.records.Insert(txCtx, record)
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.log.Info("salary period opened",
		zap.String("employee_id", created.EmployeeID),
		zap.String("base_amount", created.BaseAmount.String()),
		zap.String("effective_from", created.EffectiveFrom.Format(dateLayout)))

	return created, nil
}

// ListSalaries は台帳全体を照会します。
func (s *Service) ListSalaries(ctx context.Context, in ListSalariesInput) ([]*Record, error) {
	limit, err := normalizeListLimit(in.Limit)
	if err != nil {
		return nil, err
	}

	var employeeID *string
	if in.EmployeeID != nil {
		id, err := normalizeEmployeeID(*in.EmployeeID)
		if err != nil {
			return nil, err
		}
		employeeID = &id
	}

	var records []*Record
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.records.ListAll(txCtx, ListFilter{EmployeeID: employeeID, Limit: limit})
		if err != nil {
			return err
		}
		records = result
		return nil
	}); err != nil {
		return nil, err
	}

	return records, nil
}

// DepartmentAggregate は部門の現行給与を集計します。
func (s *Service) DepartmentAggregate(ctx context.Context, in DepartmentAggregateInput) (*DepartmentAggregate, error) {
	departmentID := strings.TrimSpace(in.DepartmentID)
	if departmentID == "" {
		return nil, employee.ErrInvalidDepartmentID
	}

	var aggregate *DepartmentAggregate
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.employees.FindDepartment(txCtx, departmentID); err != nil {
			return err
		}

		result, err := s.records.AggregateByDepartment(txCtx, departmentID)
		if err != nil {
			return err
		}
		aggregate = result
		return nil
	}); err != nil {
		return nil, err
	}

	return aggregate, nil
}

// DeleteForEmployee は社員の給与記録をすべて削除します。冪等で、
// 記録が存在しなくてもエラーになりません。
func (s *Service) DeleteForEmployee(ctx context.Context, in DeleteForEmployeeInput) (int64, error) {
	id, err := normalizeEmployeeID(in.EmployeeID)
	if err != nil {
		return 0, err
	}

	var removed int64
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		count, err := s.records.DeleteForEmployee(txCtx, id)
		if err != nil {
			return err
		}
		removed = count
		return nil
	}); err != nil {
		return 0, err
	}

	if removed > 0 {
		s.log.Info("salary records removed", zap.String("employee_id", id), zap.Int64("count", removed))
	}

	return removed, nil
}

// noteCorruption は台帳破損を検知した場合にログへ残します。原子性保証が
// 破られたことを意味し、手動修復が必要です。
func (s *Service) noteCorruption(err error, employeeID string) error {
	if errors.Is(err, ErrLedgerCorrupted) {
		s.log.Error("salary ledger holds multiple open records",
			zap.String("employee_id", employeeID))
	}
	return err
}

func normalizeEmployeeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmployeeID
	}
	return trimmed, nil
}

func normalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func normalizeDayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	day := normalizeDay(*t)
	return &day
}

func normalizeListLimit(limit int) (int, error) {
	if limit <= 0 {
		return defaultListLimit, nil
	}
	if limit > maxListLimit {
		return 0, ErrInvalidListLimit
	}
	return limit, nil
}
