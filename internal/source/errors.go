package source

import "errors"

var (
	ErrPathRequired      = errors.New("must specify the file path to be processed")
	ErrFileNotFound      = errors.New("file not found")
	ErrReadFailed        = errors.New("error while reading events")
	ErrEmptyInput        = errors.New("no events found in input")
	ErrInvalidKafkaInput = errors.New("invalid Kafka input configuration")
	ErrKafkaFetchFailed  = errors.New("failed to fetch message from Kafka")
	ErrKafkaCommitFailed = errors.New("failed to commit Kafka offsets")
)
