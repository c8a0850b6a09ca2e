package service

import "errors"

// Service error kinds.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrBackpressure   = errors.New("job queue is full")
	ErrInvalidPayload = errors.New("invalid results payload")
	ErrUnknownTable   = errors.New("unknown table")
)
