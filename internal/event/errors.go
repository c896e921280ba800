package event

import "errors"

var (
	ErrParseFailed      = errors.New("failed to parse event")
	ErrEmptyLine        = errors.New("empty line")
	ErrInvalidTimestamp = errors.New("unrecognised timestamp")
)
