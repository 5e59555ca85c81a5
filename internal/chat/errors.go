package chat

import "errors"

var (
	ErrNotFound     = errors.New("chat: conversation not found")
	ErrInvalidInput = errors.New("chat: invalid input")
)
