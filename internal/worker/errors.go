package worker

import "errors"

var (
	// ErrMalformedFile is returned when the worker file is not a JSON array
	// of worker records.
	ErrMalformedFile = errors.New("malformed worker file")

	// ErrInvalidValue is returned when a field holds something other than a
	// string, number or null.
	ErrInvalidValue = errors.New("invalid worker field value")
)
