package authz

// Role は認証済み呼び出し元の役割を表します。固定の閉じた集合です。
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// IsValid は既知のロールかどうかを返します。
func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

// Caller はリクエストスコープの呼び出し元です。認証コラボレーターが構築し、
// コアの全操作に明示的な引数として渡されます。永続化されません。
type Caller struct {
	Role       Role
	EmployeeID *string
}

// Owns は対象社員 ID が呼び出し元自身の社員記録かどうかを返します。
// 社員 ID が紐付いていない呼び出し元は何も所有しません。
func (c Caller) Owns(employeeID string) bool {
	return c.EmployeeID != nil && employeeID != "" && *c.EmployeeID == employeeID
}
