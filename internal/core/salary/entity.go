package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus は給与期間の状態です。
type PeriodStatus string

const (
	StatusCurrent    PeriodStatus = "current"
	StatusHistorical PeriodStatus = "historical"
)

// Record は 1 人の社員の 1 つの給与期間を表します。effective_to が nil の
// 記録が「オープン」な現行給与で、社員ごとに同時に高々 1 件しか存在しません。
// 記録は作成後、オープン記録のクローズ以外では変更されません。
type Record struct {
	ID            string
	EmployeeID    string
	BaseAmount    decimal.Decimal
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsOpen は現行記録かどうかを返します。
func (r *Record) IsOpen() bool {
	return r.EffectiveTo == nil
}

// Status は履歴照会用の期間状態を返します。
func (r *Record) Status() PeriodStatus {
	if r.IsOpen() {
		return StatusCurrent
	}
	return StatusHistorical
}

// Covers は指定日が期間に含まれるかを返します。境界日を含みます。
func (r *Record) Covers(day time.Time) bool {
	if day.Before(r.EffectiveFrom) {
		return false
	}
	return r.EffectiveTo == nil || !day.After(*r.EffectiveTo)
}

// HistoryEntry は履歴照会の 1 行です。
type HistoryEntry struct {
	Amount        decimal.Decimal
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	Status        PeriodStatus
}

// History は社員 1 人分の給与履歴です。Entries は effective_from 昇順です。
type History struct {
	EmployeeID string
	Entries    []HistoryEntry
	Current    *decimal.Decimal
}

// DepartmentAggregate は部門単位の現行給与の集計です。
// 現行給与を持たない社員は集計から除外され、WithoutActive に数えられます。
type DepartmentAggregate struct {
	DepartmentID  string
	Total         decimal.Decimal
	Average       decimal.Decimal
	Min           decimal.Decimal
	Max           decimal.Decimal
	Count         int
	WithoutActive int
}
