package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/ogurasousui/hr-ledger/internal/core/employee"
	"github.com/ogurasousui/hr-ledger/internal/core/salary"
	pgdb "github.com/ogurasousui/hr-ledger/internal/platform/db/postgres"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	exclusionViolationCode  = "23P01"
)

const salaryColumns = `id, employee_id, base_salary::text, effective_from, effective_to, created_at, updated_at`

// SalaryRepository は PostgreSQL を利用した給与台帳の実装です。
//
// 時系列の不変条件はスキーマ側の制約(部分ユニークインデックスと期間の
// 排他制約)が最終防衛線として強制します。
type SalaryRepository struct {
	pool pgdb.Queryer
}

// NewSalaryRepository は SalaryRepository を生成します。
func NewSalaryRepository(pool pgdb.Queryer) *SalaryRepository {
	return &SalaryRepository{pool: pool}
}

// Insert は給与期間を新規作成します。
func (r *SalaryRepository) Insert(ctx context.Context, record *salary.Record) (*salary.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO salaries (id, employee_id, base_salary, effective_from, effective_to, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING `+salaryColumns+`
    `,
		uuid.NewString(),
		record.EmployeeID,
		record.BaseAmount.String(),
		dateOnly(record.EffectiveFrom),
		nullableDate(record.EffectiveTo),
		record.CreatedAt,
		record.UpdatedAt,
	)

	created, err := scanSalary(row)
	if err != nil {
		return nil, translateSalaryPgError(err)
	}
	return created, nil
}

// FindOpen は社員のオープン記録を取得します。複数見つかった場合は台帳が
// 破損しているため salary.ErrLedgerCorrupted を返します。
func (r *SalaryRepository) FindOpen(ctx context.Context, employeeID string) (*salary.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+salaryColumns+`
          FROM salaries
         WHERE employee_id = $1 AND effective_to IS NULL
         ORDER BY effective_from DESC
         LIMIT 2
    `, employeeID)
	if err != nil {
		return nil, translateSalaryPgError(err)
	}
	defer rows.Close()

	var found []*salary.Record
	for rows.Next() {
		rec, err := scanSalary(rows)
		if err != nil {
			return nil, translateSalaryPgError(err)
		}
		found = append(found, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, translateSalaryPgError(err)
	}

	switch len(found) {
	case 0:
		return nil, salary.ErrNoActiveSalary
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: employee %s", salary.ErrLedgerCorrupted, employeeID)
	}
}

// FindOpenAsOf は指定日に有効だった記録を取得します。
func (r *SalaryRepository) FindOpenAsOf(ctx context.Context, employeeID string, asOf time.Time) (*salary.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+salaryColumns+`
          FROM salaries
         WHERE employee_id = $1
           AND effective_from <= $2
           AND (effective_to IS NULL OR effective_to >= $2)
         ORDER BY effective_from DESC
         LIMIT 1
    `, employeeID, dateOnly(asOf))

	found, err := scanSalary(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, salary.ErrNoActiveSalary
		}
		return nil, translateSalaryPgError(err)
	}
	return found, nil
}

// History は社員の給与期間を effective_from 昇順で取得します。
func (r *SalaryRepository) History(ctx context.Context, employeeID string, filter salary.HistoryFilter) ([]*salary.Record, error) {
	args := make([]any, 0, 3)
	conditions := make([]string, 0, 3)

	conditions = append(conditions, "employee_id = $"+strconv.Itoa(len(args)+1))
	args = append(args, employeeID)

	if filter.From != nil {
		conditions = append(conditions, "effective_from >= $"+strconv.Itoa(len(args)+1))
		args = append(args, dateOnly(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "effective_from <= $"+strconv.Itoa(len(args)+1))
		args = append(args, dateOnly(*filter.To))
	}

	query := `
        SELECT ` + salaryColumns + `
          FROM salaries
         WHERE ` + strings.Join(conditions, " AND ") + `
         ORDER BY effective_from ASC
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateSalaryPgError(err)
	}
	defer rows.Close()

	records := make([]*salary.Record, 0, 8)
	for rows.Next() {
		rec, err := scanSalary(rows)
		if err != nil {
			return nil, translateSalaryPgError(err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, translateSalaryPgError(err)
	}

	return records, nil
}

// Close はオープン記録を指定日でクローズします。記録が既にクローズ済みの
// 場合と存在しない場合を区別してエラーを返します。
func (r *SalaryRepository) Close(ctx context.Context, recordID string, effectiveTo time.Time) (*salary.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE salaries
           SET effective_to = $1,
               updated_at = now()
         WHERE id = $2 AND effective_to IS NULL
        RETURNING `+salaryColumns+`
    `, dateOnly(effectiveTo), recordID)

	closed, err := scanSalary(row)
	if err == nil {
		return closed, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, translateSalaryPgError(err)
	}

	// 更新できなかった理由を特定する
	var exists bool
	if err := exec.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM salaries WHERE id = $1)`, recordID).Scan(&exists); err != nil {
		return nil, translateSalaryPgError(err)
	}
	if exists {
		return nil, salary.ErrRecordAlreadyClosed
	}
	return nil, salary.ErrRecordNotFound
}

// ListAll は台帳全体を取得します。
func (r *SalaryRepository) ListAll(ctx context.Context, filter salary.ListFilter) ([]*salary.Record, error) {
	args := make([]any, 0, 2)
	whereClause := ""

	if filter.EmployeeID != nil {
		whereClause = " WHERE employee_id = $" + strconv.Itoa(len(args)+1)
		args = append(args, *filter.EmployeeID)
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Limit)

	query := `
        SELECT ` + salaryColumns + `
          FROM salaries` + whereClause + `
         ORDER BY employee_id ASC, effective_from ASC
         LIMIT ` + limitPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateSalaryPgError(err)
	}
	defer rows.Close()

	records := make([]*salary.Record, 0, filter.Limit)
	for rows.Next() {
		rec, err := scanSalary(rows)
		if err != nil {
			return nil, translateSalaryPgError(err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, translateSalaryPgError(err)
	}

	return records, nil
}

// DeleteForEmployee は社員の給与記録をすべて削除し、削除件数を返します。
func (r *SalaryRepository) DeleteForEmployee(ctx context.Context, employeeID string) (int64, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM salaries WHERE employee_id = $1`, employeeID)
	if err != nil {
		return 0, translateSalaryPgError(err)
	}
	return tag.RowsAffected(), nil
}

// AggregateByDepartment は部門所属社員の現行給与を集計します。
func (r *SalaryRepository) AggregateByDepartment(ctx context.Context, departmentID string) (*salary.DepartmentAggregate, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT COALESCE(SUM(s.base_salary), 0)::text,
               COALESCE(ROUND(AVG(s.base_salary), 2), 0)::text,
               COALESCE(MIN(s.base_salary), 0)::text,
               COALESCE(MAX(s.base_salary), 0)::text,
               COUNT(s.id),
               COUNT(*) FILTER (WHERE s.id IS NULL)
          FROM employees e
          LEFT JOIN salaries s ON s.employee_id = e.id AND s.effective_to IS NULL
         WHERE e.department_id = $1
    `, departmentID)

	var (
		totalText   string
		averageText string
		minText     string
		maxText     string
		count       int64
		without     int64
	)
	if err := row.Scan(&totalText, &averageText, &minText, &maxText, &count, &without); err != nil {
		return nil, translateSalaryPgError(err)
	}

	total, err := decimal.NewFromString(totalText)
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	average, err := decimal.NewFromString(averageText)
	if err != nil {
		return nil, fmt.Errorf("parse average: %w", err)
	}
	minAmount, err := decimal.NewFromString(minText)
	if err != nil {
		return nil, fmt.Errorf("parse min: %w", err)
	}
	maxAmount, err := decimal.NewFromString(maxText)
	if err != nil {
		return nil, fmt.Errorf("parse max: %w", err)
	}

	return &salary.DepartmentAggregate{
		DepartmentID:  departmentID,
		Total:         total,
		Average:       average,
		Min:           minAmount,
		Max:           maxAmount,
		Count:         int(count),
		WithoutActive: int(without),
	}, nil
}

func scanSalary(row pgx.Row) (*salary.Record, error) {
	var (
		id            string
		employeeID    string
		amountText    string
		effectiveFrom time.Time
		effectiveTo   sql.NullTime
		createdAt     time.Time
		updatedAt     time.Time
	)

	if err := row.Scan(
		&id,
		&employeeID,
		&amountText,
		&effectiveFrom,
		&effectiveTo,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountText)
	if err != nil {
		return nil, fmt.Errorf("parse base_salary: %w", err)
	}

	var toPtr *time.Time
	if effectiveTo.Valid {
		date := dateOnly(effectiveTo.Time)
		toPtr = &date
	}

	return &salary.Record{
		ID:            id,
		EmployeeID:    employeeID,
		BaseAmount:    amount,
		EffectiveFrom: dateOnly(effectiveFrom),
		EffectiveTo:   toPtr,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func translateSalaryPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return salary.ErrRecordNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return salary.ErrSalaryAlreadyOpen
		case exclusionViolationCode:
			return salary.ErrPeriodOverlap
		case foreignKeyViolationCode:
			if pgErr.ConstraintName == "salaries_employee_id_fkey" {
				return employee.ErrEmployeeNotFound
			}
			return err
		case checkViolationCode:
			switch pgErr.ConstraintName {
			case "salaries_base_salary_positive":
				return salary.ErrInvalidAmount
			case "salaries_period_order":
				return salary.ErrInvalidPeriod
			default:
				return err
			}
		}
	}

	return err
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func nullableDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return dateOnly(*value)
}
