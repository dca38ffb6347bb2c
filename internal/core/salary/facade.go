package salary

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ogurasousui/hr-ledger/internal/core/authz"
)

// AuthorizedUseCase は外部(API 層)が利用してよい唯一の給与台帳
// インターフェースです。すべての操作は呼び出し元の認可判定を通ります。
type AuthorizedUseCase interface {
	CurrentSalary(ctx context.Context, caller authz.Caller, in CurrentSalaryInput) (*Record, error)
	MyCurrentSalary(ctx context.Context, caller authz.Caller, asOf *time.Time) (*Record, error)
	SalaryHistory(ctx context.Context, caller authz.Caller, in SalaryHistoryInput) (*History, error)
	RaiseOrSetSalary(ctx context.Context, caller authz.Caller, in RaiseOrSetSalaryInput) (*Record, error)
	ListSalaries(ctx context.Context, caller authz.Caller, in ListSalariesInput) ([]*Record, error)
	DepartmentAggregate(ctx context.Context, caller authz.Caller, in DepartmentAggregateInput) (*DepartmentAggregate, error)
	DeleteForEmployee(ctx context.Context, caller authz.Caller, in DeleteForEmployeeInput) (int64, error)
}

// Facade は UseCase を認可判定で包みます。拒否された呼び出しはストレージに
// 一切触れずに authz.ErrPermissionDenied で失敗します。許可された呼び出しの
// 結果とエラーは加工せずそのまま返します。
type Facade struct {
	svc     UseCase
	decider authz.Decider
	log     *zap.Logger
}

// NewFacade は Facade を生成します。
func NewFacade(svc UseCase, decider authz.Decider, log *zap.Logger) *Facade {
	if log == nil {
		log = zap.NewNop()
	}
	return &Facade{svc: svc, decider: decider, log: log}
}

// CurrentSalary は現行給与を返します。
func (f *Facade) CurrentSalary(ctx context.Context, caller authz.Caller, in CurrentSalaryInput) (*Record, error) {
	if err := f.authorize(caller, readAction(caller, in.EmployeeID), in.EmployeeID); err != nil {
		return nil, err
	}
	return f.svc.CurrentSalary(ctx, in)
}

// MyCurrentSalary は呼び出し元自身の現行給与を返します。社員記録に
// 紐付いていない呼び出し元は拒否されます。
func (f *Facade) MyCurrentSalary(ctx context.Context, caller authz.Caller, asOf *time.Time) (*Record, error) {
	target := ""
	if caller.EmployeeID != nil {
		target = *caller.EmployeeID
	}
	if err := f.authorize(caller, authz.ActionReadOwnSalary, target); err != nil {
		return nil, err
	}
	return f.svc.CurrentSalary(ctx, CurrentSalaryInput{EmployeeID: target, AsOf: asOf})
}

// SalaryHistory は給与履歴を返します。
func (f *Facade) SalaryHistory(ctx context.Context, caller authz.Caller, in SalaryHistoryInput) (*History, error) {
	if err := f.authorize(caller, readAction(caller, in.EmployeeID), in.EmployeeID); err != nil {
		return nil, err
	}
	return f.svc.SalaryHistory(ctx, in)
}

// RaiseOrSetSalary は給与改定を行います。既存期間のクローズを伴う場合は
// 更新、最初の記録の作成は新規作成として認可されます。
func (f *Facade) RaiseOrSetSalary(ctx context.Context, caller authz.Caller, in RaiseOrSetSalaryInput) (*Record, error) {
	action := authz.ActionCreateSalary
	if in.PriorCloseDate != nil {
		action = authz.ActionUpdateSalary
	}
	if err := f.authorize(caller, action, in.EmployeeID); err != nil {
		return nil, err
	}
	return f.svc.RaiseOrSetSalary(ctx, in)
}

// ListSalaries は台帳全体を照会します。
func (f *Facade) ListSalaries(ctx context.Context, caller authz.Caller, in ListSalariesInput) ([]*Record, error) {
	if err := f.authorize(caller, authz.ActionReadAnySalary, ""); err != nil {
		return nil, err
	}
	return f.svc.ListSalaries(ctx, in)
}

// DepartmentAggregate は部門集計を返します。
func (f *Facade) DepartmentAggregate(ctx context.Context, caller authz.Caller, in DepartmentAggregateInput) (*DepartmentAggregate, error) {
	if err := f.authorize(caller, authz.ActionReadAnySalary, ""); err != nil {
		return nil, err
	}
	return f.svc.DepartmentAggregate(ctx, in)
}

// DeleteForEmployee は社員の給与記録を連鎖削除します。
func (f *Facade) DeleteForEmployee(ctx context.Context, caller authz.Caller, in DeleteForEmployeeInput) (int64, error) {
	if err := f.authorize(caller, authz.ActionDeleteSalary, in.EmployeeID); err != nil {
		return 0, err
	}
	return f.svc.DeleteForEmployee(ctx, in)
}

func (f *Facade) authorize(caller authz.Caller, action authz.Action, targetEmployeeID string) error {
	decision := f.decider.Decide(caller, action, targetEmployeeID)
	if decision.Allowed {
		return nil
	}

	f.log.Info("salary access denied",
		zap.String("role", string(caller.Role)),
		zap.String("action", string(action)),
		zap.String("reason", decision.Reason))

	// 対象社員が存在するかどうかは漏らさない。理由はロールと所有権のみ。
	return fmt.Errorf("%w: %s", authz.ErrPermissionDenied, decision.Reason)
}

// readAction は照会が自身の記録に対するものか第三者の記録に対するものかで
// 操作区分を解決します。
func readAction(caller authz.Caller, targetEmployeeID string) authz.Action {
	if caller.Owns(targetEmployeeID) {
		return authz.ActionReadOwnSalary
	}
	return authz.ActionReadAnySalary
}
