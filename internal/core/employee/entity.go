package employee

import "time"

// Employee は社員エンティティです。給与台帳は ID のみを参照します。
// 作成・削除は社員管理側の責務で、削除時は給与記録が連鎖削除されます。
type Employee struct {
	ID            string
	EmployeeCode  string
	FullName      string
	DepartmentID  string
	PositionTitle string
	HireDate      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Department は部門の参照情報です。給与集計の単位になります。
type Department struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
