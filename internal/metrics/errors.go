package metrics

import "errors"

var (
	ErrInvalidInput   = errors.New("unable to extract metrics from the received data")
	ErrNoEvents       = errors.New("no events to aggregate")
	ErrWindowRequired = errors.New("window size is required")
	ErrNegativeWindow = errors.New("window size cannot be negative")
)
