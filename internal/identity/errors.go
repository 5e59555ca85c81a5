package identity

import "errors"

var (
	ErrInvalidCredentials = errors.New("identity: invalid email or password")
	ErrInvalidEmail       = errors.New("identity: email is not valid")
	ErrWeakPassword       = errors.New("identity: password is too weak")
	ErrEmailInUse         = errors.New("identity: email already in use")
	ErrThrottled          = errors.New("identity: too many attempts, try again later")
	ErrInvalidToken       = errors.New("identity: invalid or expired token")
	ErrNotFound           = errors.New("identity: account not found")
	ErrUnavailable        = errors.New("identity: provider unavailable")
)
