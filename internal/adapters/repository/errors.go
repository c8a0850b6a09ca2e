package repository

import "errors"

// Sentinel kinds for snapshot store errors.
var (
	ErrNotFound     = errors.New("snapshot not found")
	ErrInvalidID    = errors.New("invalid snapshot id")
	ErrStoreClosed  = errors.New("store closed")
	ErrNotSupported = errors.New("unsupported store driver")
)
