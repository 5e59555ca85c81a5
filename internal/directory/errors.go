package directory

import "errors"

var (
	ErrNotFound     = errors.New("directory: user not found")
	ErrEmailInUse   = errors.New("directory: email already registered")
	ErrNotAllowed   = errors.New("directory: operation not permitted for this role")
	ErrInvalidInput = errors.New("directory: invalid input")
)
