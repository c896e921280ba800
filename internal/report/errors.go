package report

import "errors"

var (
	ErrWriteFailed   = errors.New("unable to create the response file")
	ErrPublishFailed = errors.New("failed to publish report")
)
