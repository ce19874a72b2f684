package ble

import (
	"context"
	"errors"
)

// Service answers sensor lookups for the HTTP layer.
type Service struct {
	repo Repository
}

// NewService creates a Service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// FindByPillars returns the sensors on the pillars named in csv.
//
// An empty list returns an empty, non-nil slice without touching the
// store. A malformed token returns ErrInvalidPillarID.
func (s *Service) FindByPillars(ctx context.Context, csv string) ([]Sensor, error) {
	ids, err := ParsePillarIDs(csv)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Sensor{}, nil
	}

	sensors, err := s.repo.ListByPillarIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if sensors == nil {
		sensors = []Sensor{}
	}
	return sensors, nil
}

// Detail returns the sensor with the given ID. A missing sensor is reported
// through the bool, not as an error.
func (s *Service) Detail(ctx context.Context, bleID string) (Sensor, bool, error) {
	sensor, err := s.repo.GetByID(ctx, bleID)
	if err != nil {
		if errors.Is(err, ErrSensorNotFound) {
			return Sensor{}, false, nil
		}
		return Sensor{}, false, err
	}
	return *sensor, true, nil
}
