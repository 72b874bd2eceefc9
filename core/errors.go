package core

import "errors"

var (
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenInvalidated   = errors.New("token has been invalidated")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRateLimited        = errors.New("too many attempts")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrNotFound           = errors.New("record not found")
	ErrForbidden          = errors.New("record belongs to another user")
	ErrValidation         = errors.New("validation failed")
)
