package service

import "errors"

var (
	// ErrUnknownSource is returned for a source id that is not configured
	ErrUnknownSource = errors.New("unknown source")
	// ErrSearchLogDisabled is returned for feedback when search logging is off
	ErrSearchLogDisabled = errors.New("search logging is disabled")
)
