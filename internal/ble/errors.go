package ble

import "errors"

var (
	// ErrInvalidPillarID is returned when a pillar list contains a token that
	// is not a base-10 integer. The offending token is included when wrapped.
	ErrInvalidPillarID = errors.New("invalid pillar id")

	// ErrSensorNotFound is returned when a sensor ID does not exist.
	ErrSensorNotFound = errors.New("sensor not found")
)
