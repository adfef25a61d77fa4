package errors

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSelfRoleChange     = errors.New("administrators cannot change their own role")

	ErrUserNotFound = errors.New("user not found")
)
