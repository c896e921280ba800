package pipeline

import "errors"

var (
	ErrLoaderCreationFailed = errors.New("failed to create loader")
	ErrLoadFailed           = errors.New("loading events failed")
	ErrComputeFailed        = errors.New("metric computation failed")
	ErrReportFailed         = errors.New("writing report failed")
	ErrSinkFailed           = errors.New("report sink failed")
)
