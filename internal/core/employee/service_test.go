package employee

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeEmployeeRepo struct {
	employees   map[string]*Employee
	departments map[string]*Department
	sequence    int
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{
		employees:   make(map[string]*Employee),
		departments: map[string]*Department{"dept-1": {ID: "dept-1", Name: "Engineering"}},
	}
}

func (r *fakeEmployeeRepo) Create(_ context.Context, e *Employee) (*Employee, error) {
	for _, existing := range r.employees {
		if existing.EmployeeCode == e.EmployeeCode {
			return nil, ErrEmployeeCodeAlreadyExists
		}
	}

	clone := *e
	r.sequence++
	clone.ID = fmt.Sprintf("emp-%d", r.sequence)
	r.employees[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *fakeEmployeeRepo) FindByID(_ context.Context, id string) (*Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	clone := *emp
	return &clone, nil
}

func (r *fakeEmployeeRepo) FindDepartment(_ context.Context, id string) (*Department, error) {
	dept, ok := r.departments[id]
	if !ok {
		return nil, ErrDepartmentNotFound
	}
	clone := *dept
	return &clone, nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.employees[id]; !ok {
		return ErrEmployeeNotFound
	}
	delete(r.employees, id)
	return nil
}

type fakeLedger struct {
	deleted map[string]int
}

func (l *fakeLedger) DeleteForEmployee(_ context.Context, employeeID string) (int64, error) {
	if l.deleted == nil {
		l.deleted = make(map[string]int)
	}
	l.deleted[employeeID]++
	return 0, nil
}

func TestService_CreateEmployee_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(repo, &fakeLedger{}, &stubClock{now: now}, nil)

	hired := time.Date(2025, 12, 1, 9, 30, 0, 0, time.UTC)

	created, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		EmployeeCode: " Emp-001 ",
		FullName:     "  Nguyen Van A  ",
		DepartmentID: "dept-1",
		HireDate:     &hired,
	})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	if created.EmployeeCode != "emp-001" {
		t.Fatalf("expected normalized employee code, got %s", created.EmployeeCode)
	}
	if created.FullName != "Nguyen Van A" {
		t.Fatalf("expected trimmed name, got %q", created.FullName)
	}
	if created.HireDate == nil || !created.HireDate.Equal(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected hire date truncated to day, got %+v", created.HireDate)
	}
	if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps to use clock now")
	}
}

func TestService_CreateEmployee_UnknownDepartment(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &fakeLedger{}, &stubClock{now: time.Now().UTC()}, nil)

	_, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		EmployeeCode: "emp-002",
		FullName:     "Tran Thi B",
		DepartmentID: "dept-missing",
	})
	if !errors.Is(err, ErrDepartmentNotFound) {
		t.Fatalf("expected ErrDepartmentNotFound, got %v", err)
	}
}

func TestService_CreateEmployee_InvalidCode(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &fakeLedger{}, &stubClock{now: time.Now().UTC()}, nil)

	for _, code := range []string{"", "  ", "-leading", "has space"} {
		if _, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
			EmployeeCode: code,
			FullName:     "Someone",
			DepartmentID: "dept-1",
		}); !errors.Is(err, ErrInvalidEmployeeCode) {
			t.Fatalf("code %q: expected ErrInvalidEmployeeCode, got %v", code, err)
		}
	}
}

func TestService_DeleteEmployee_CascadesToLedger(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	ledger := &fakeLedger{}
	svc := NewService(repo, ledger, &stubClock{now: time.Now().UTC()}, nil)

	created, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		EmployeeCode: "emp-003",
		FullName:     "Le Van C",
		DepartmentID: "dept-1",
	})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: created.ID}); err != nil {
		t.Fatalf("DeleteEmployee returned error: %v", err)
	}

	if ledger.deleted[created.ID] != 1 {
		t.Fatalf("expected ledger cascade for %s, got %+v", created.ID, ledger.deleted)
	}
	if _, err := repo.FindByID(context.Background(), created.ID); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected employee removed, got %v", err)
	}
}

func TestService_DeleteEmployee_MissingID(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), &fakeLedger{}, nil, nil)

	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: "  "}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}
