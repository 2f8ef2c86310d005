package keymap

import "errors"

var (
	ErrUnknownMode     = errors.New("unknown mode")
	ErrUnknownAction   = errors.New("unknown action")
	ErrInvalidKey      = errors.New("invalid key")
	ErrPayloadRequired = errors.New("action requires a typed character and cannot be bound")
)
