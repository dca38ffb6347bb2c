package authz

import "errors"

var (
	ErrPermissionDenied = errors.New("authz: permission denied")
	ErrInvalidRole      = errors.New("authz: invalid role")
)
