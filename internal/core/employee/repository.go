package employee

import "context"

// Repository は社員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindDepartment(ctx context.Context, id string) (*Department, error)
	Delete(ctx context.Context, id string) error
}
