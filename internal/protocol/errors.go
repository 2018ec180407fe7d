package protocol

import "errors"

var (
	ErrMalformed         = errors.New("protocol: malformed message")
	ErrMessageTooLarge   = errors.New("protocol: message too large")
	ErrFieldTypeMismatch = errors.New("protocol: field type mismatch")
	ErrInvalidLength     = errors.New("protocol: invalid length")
)
