package authz

import (
	"fmt"
	"testing"
)

func strPtr(s string) *string {
	return &s
}

func TestEngine_Decide_Table(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	ownID := "emp-5"
	otherID := "emp-7"

	cases := []struct {
		role    Role
		bound   *string
		action  Action
		target  string
		allowed bool
	}{
		// employee: only own reads
		{RoleEmployee, strPtr(ownID), ActionReadOwnSalary, ownID, true},
		{RoleEmployee, strPtr(ownID), ActionReadOwnSalary, otherID, false},
		{RoleEmployee, strPtr(ownID), ActionReadAnySalary, otherID, false},
		{RoleEmployee, strPtr(ownID), ActionCreateSalary, ownID, false},
		{RoleEmployee, strPtr(ownID), ActionUpdateSalary, ownID, false},
		{RoleEmployee, strPtr(ownID), ActionDeleteSalary, ownID, false},
		{RoleEmployee, strPtr(ownID), ActionManageEmployees, ownID, false},
		// manager: everything but delete
		{RoleManager, nil, ActionReadOwnSalary, otherID, true},
		{RoleManager, nil, ActionReadAnySalary, otherID, true},
		{RoleManager, nil, ActionCreateSalary, otherID, true},
		{RoleManager, nil, ActionUpdateSalary, otherID, true},
		{RoleManager, nil, ActionDeleteSalary, otherID, false},
		{RoleManager, nil, ActionManageEmployees, otherID, true},
		// admin: everything
		{RoleAdmin, nil, ActionReadOwnSalary, otherID, true},
		{RoleAdmin, nil, ActionReadAnySalary, otherID, true},
		{RoleAdmin, nil, ActionCreateSalary, otherID, true},
		{RoleAdmin, nil, ActionUpdateSalary, otherID, true},
		{RoleAdmin, nil, ActionDeleteSalary, otherID, true},
		{RoleAdmin, nil, ActionManageEmployees, otherID, true},
	}

	for _, tc := range cases {
		tc := tc
		name := fmt.Sprintf("%s_%s_target=%s", tc.role, tc.action, tc.target)
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			d := engine.Decide(Caller{Role: tc.role, EmployeeID: tc.bound}, tc.action, tc.target)
			if d.Allowed != tc.allowed {
				t.Fatalf("expected allowed=%t, got %+v", tc.allowed, d)
			}
			if !d.Allowed && d.Reason == "" {
				t.Fatalf("denial must carry a reason")
			}
		})
	}
}

func TestEngine_Decide_UnboundEmployeeIsDenied(t *testing.T) {
	t.Parallel()

	engine := NewEngine()

	// An employee account without a linked employee record must never match
	// anything, not even an empty target id.
	d := engine.Decide(Caller{Role: RoleEmployee}, ActionReadOwnSalary, "emp-5")
	if d.Allowed {
		t.Fatalf("expected denial for unbound caller, got %+v", d)
	}

	d = engine.Decide(Caller{Role: RoleEmployee}, ActionReadOwnSalary, "")
	if d.Allowed {
		t.Fatalf("expected denial for empty target, got %+v", d)
	}
}

func TestEngine_Decide_UnknownRole(t *testing.T) {
	t.Parallel()

	engine := NewEngine()

	d := engine.Decide(Caller{Role: Role("root")}, ActionReadAnySalary, "emp-1")
	if d.Allowed {
		t.Fatalf("expected denial for unknown role, got %+v", d)
	}
}

func TestCaller_Owns(t *testing.T) {
	t.Parallel()

	id := "emp-9"
	if !(Caller{Role: RoleEmployee, EmployeeID: &id}).Owns("emp-9") {
		t.Fatalf("expected caller to own its bound employee id")
	}
	if (Caller{Role: RoleEmployee, EmployeeID: &id}).Owns("emp-10") {
		t.Fatalf("expected caller not to own another employee id")
	}
	if (Caller{Role: RoleEmployee}).Owns("emp-9") {
		t.Fatalf("expected unbound caller to own nothing")
	}
	empty := ""
	if (Caller{Role: RoleEmployee, EmployeeID: &empty}).Owns("") {
		t.Fatalf("expected empty ids never to match")
	}
}
