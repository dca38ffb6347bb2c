package authz

import "fmt"

// Action は給与台帳に対する操作区分です。
type Action string

const (
	ActionReadOwnSalary   Action = "salary.read_own"
	ActionReadAnySalary   Action = "salary.read_any"
	ActionCreateSalary    Action = "salary.create"
	ActionUpdateSalary    Action = "salary.update"
	ActionDeleteSalary    Action = "salary.delete"
	ActionManageEmployees Action = "employee.manage"
)

// Decision は認可判定の結果です。拒否の場合は Reason に理由を持ちます。
type Decision struct {
	Allowed bool
	Reason  string
}

// Decider は認可判定の抽象です。
type Decider interface {
	Decide(caller Caller, action Action, targetEmployeeID string) Decision
}

type rule int

const (
	ruleDeny rule = iota
	ruleAllow
	ruleAllowIfOwner
)

// permissionTable が権限定義の唯一の情報源です。
// ここに現れないロールと操作の組み合わせはすべて拒否されます。
var permissionTable = map[Role]map[Action]rule{
	RoleEmployee: {
		ActionReadOwnSalary: ruleAllowIfOwner,
	},
	RoleManager: {
		ActionReadOwnSalary:   ruleAllow,
		ActionReadAnySalary:   ruleAllow,
		ActionCreateSalary:    ruleAllow,
		ActionUpdateSalary:    ruleAllow,
		ActionManageEmployees: ruleAllow,
	},
	RoleAdmin: {
		ActionReadOwnSalary:   ruleAllow,
		ActionReadAnySalary:   ruleAllow,
		ActionCreateSalary:    ruleAllow,
		ActionUpdateSalary:    ruleAllow,
		ActionDeleteSalary:    ruleAllow,
		ActionManageEmployees: ruleAllow,
	},
}

// Engine はロールと所有権に基づく純粋な認可判定です。状態を持たず、
// 判定は (caller, action, target) のみで決まります。
type Engine struct{}

// NewEngine は Engine を生成します。
func NewEngine() Engine {
	return Engine{}
}

// Decide は呼び出し元が対象社員に対して操作を行えるかを判定します。
func (Engine) Decide(caller Caller, action Action, targetEmployeeID string) Decision {
	actions, ok := permissionTable[caller.Role]
	if !ok {
		return Decision{Reason: fmt.Sprintf("unknown role %q", caller.Role)}
	}

	switch actions[action] {
	case ruleAllow:
		return Decision{Allowed: true}
	case ruleAllowIfOwner:
		if caller.EmployeeID == nil {
			return Decision{Reason: "caller is not linked to an employee record"}
		}
		if !caller.Owns(targetEmployeeID) {
			return Decision{Reason: "caller may only access their own salary records"}
		}
		return Decision{Allowed: true}
	default:
		return Decision{Reason: fmt.Sprintf("role %s may not perform %s", caller.Role, action)}
	}
}
