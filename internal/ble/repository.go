package ble

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository defines the read operations on the ble table.
type Repository interface {
	// ListByPillarIDs returns every sensor whose pillar_id is in ids.
	ListByPillarIDs(ctx context.Context, ids []int) ([]Sensor, error)

	// GetByID returns the sensor with the given ID, or ErrSensorNotFound.
	GetByID(ctx context.Context, bleID string) (*Sensor, error)
}

// SQLRepository implements Repository over any sqlx-supported driver.
type SQLRepository struct {
	db *sqlx.DB
}

// NewSQLRepository creates a new ble repository.
func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// ListByPillarIDs returns sensors mounted on any of the given pillars,
// ordered by pillar then sensor ID. No query is issued for an empty set.
func (r *SQLRepository) ListByPillarIDs(ctx context.Context, ids []int) ([]Sensor, error) {
	sensors := []Sensor{}
	if len(ids) == 0 {
		return sensors, nil
	}

	query, args, err := sqlx.In(`SELECT ble_id, pillar_id, line
		FROM ble WHERE pillar_id IN (?) ORDER BY pillar_id, ble_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("building pillar query: %w", err)
	}

	if err := r.db.SelectContext(ctx, &sensors, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying sensors by pillar: %w", err)
	}
	return sensors, nil
}

// GetByID returns a single sensor by its primary key.
func (r *SQLRepository) GetByID(ctx context.Context, bleID string) (*Sensor, error) {
	const query = `SELECT ble_id, pillar_id, line FROM ble WHERE ble_id = ?`

	var s Sensor
	if err := r.db.GetContext(ctx, &s, r.db.Rebind(query), bleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSensorNotFound
		}
		return nil, fmt.Errorf("querying sensor %s: %w", bleID, err)
	}
	return &s, nil
}
