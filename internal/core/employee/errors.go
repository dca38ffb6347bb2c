package employee

import "errors"

var (
	ErrInvalidID                 = errors.New("employee: invalid id")
	ErrInvalidEmployeeCode       = errors.New("employee: invalid employee code")
	ErrInvalidFullName           = errors.New("employee: invalid full name")
	ErrInvalidDepartmentID       = errors.New("employee: invalid department id")
	ErrEmployeeNotFound          = errors.New("employee: not found")
	ErrDepartmentNotFound        = errors.New("employee: department not found")
	ErrEmployeeCodeAlreadyExists = errors.New("employee: employee code already exists")
)
