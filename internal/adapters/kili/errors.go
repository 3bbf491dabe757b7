package kili

import "errors"

var (
	// ErrPlatform is returned when the platform answers with an error status or GraphQL errors.
	ErrPlatform = errors.New("annotation platform error")
	// ErrDecode is returned when a response cannot be decoded.
	ErrDecode = errors.New("annotation platform response decode error")
)
