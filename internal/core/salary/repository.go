package salary

import (
	"context"
	"time"
)

// HistoryFilter は履歴照会の範囲指定です。nil の境界は無制限を意味します。
type HistoryFilter struct {
	From *time.Time
	To   *time.Time
}

// ListFilter は台帳全体照会の条件です。
type ListFilter struct {
	EmployeeID *string
	Limit      int
}

// Repository は給与台帳永続化の抽象です。
//
// 実装は時系列の不変条件をストレージ制約として強制しなければなりません:
// 社員ごとにオープン記録は高々 1 件、期間の重なりは禁止です。
type Repository interface {
	Insert(ctx context.Context, record *Record) (*Record, error)
	FindOpen(ctx context.Context, employeeID string) (*Record, error)
	FindOpenAsOf(ctx context.Context, employeeID string, asOf time.Time) (*Record, error)
	History(ctx context.Context, employeeID string, filter HistoryFilter) ([]*Record, error)
	Close(ctx context.Context, recordID string, effectiveTo time.Time) (*Record, error)
	ListAll(ctx context.Context, filter ListFilter) ([]*Record, error)
	DeleteForEmployee(ctx context.Context, employeeID string) (int64, error)
	AggregateByDepartment(ctx context.Context, departmentID string) (*DepartmentAggregate, error)
}
