package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/hr-ledger/internal/core/employee"
	pgdb "github.com/ogurasousui/hr-ledger/internal/platform/db/postgres"
)

const employeeColumns = `id, employee_code, full_name, department_id, position_title, hire_date, created_at, updated_at`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (id, employee_code, full_name, department_id, position_title, hire_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+employeeColumns+`
    `,
		uuid.NewString(),
		e.EmployeeCode,
		e.FullName,
		e.DepartmentID,
		e.PositionTitle,
		nullableDate(e.HireDate),
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// FindDepartment は ID で部門を取得します。
func (r *EmployeeRepository) FindDepartment(ctx context.Context, id string) (*employee.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, name, created_at
          FROM departments
         WHERE id = $1
         LIMIT 1
    `, id)

	var dept employee.Department
	if err := row.Scan(&dept.ID, &dept.Name, &dept.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrDepartmentNotFound
		}
		return nil, translateEmployeePgError(err)
	}
	return &dept, nil
}

// Delete は社員を削除します。給与記録は外部キーの連鎖削除で消えます。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id            string
		code          string
		fullName      string
		departmentID  string
		positionTitle string
		hireDate      sql.NullTime
		createdAt     time.Time
		updatedAt     time.Time
	)

	if err := row.Scan(
		&id,
		&code,
		&fullName,
		&departmentID,
		&positionTitle,
		&hireDate,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	var hirePtr *time.Time
	if hireDate.Valid {
		date := dateOnly(hireDate.Time)
		hirePtr = &date
	}

	return &employee.Employee{
		ID:            id,
		EmployeeCode:  code,
		FullName:      fullName,
		DepartmentID:  departmentID,
		PositionTitle: positionTitle,
		HireDate:      hirePtr,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return employee.ErrEmployeeCodeAlreadyExists
		case foreignKeyViolationCode:
			if pgErr.ConstraintName == "employees_department_id_fkey" {
				return employee.ErrDepartmentNotFound
			}
			return err
		}
	}

	return err
}
