package account

import "errors"

var (
	ErrUserExists       = errors.New("username already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrBadCredential    = errors.New("wrong password")
	ErrAlreadyLoggedIn  = errors.New("user already logged in")
	ErrNotLoggedIn      = errors.New("user not logged in")
	ErrPermissionDenied = errors.New("insufficient privilege")
)
