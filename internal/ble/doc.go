// Package ble provides read-only lookups of BLE sensor placements.
//
// Every beacon installed on the site floor is recorded in the ble table with
// the pillar it is mounted on and the production line that pillar belongs
// to. The map frontend asks for all sensors on a set of pillars, or for the
// placement of a single sensor.
//
// The package provides:
//   - ParsePillarIDs for the comma-separated pillar list used in queries
//   - A Repository interface with an sqlx implementation that runs on
//     SQLite and PostgreSQL
//   - Service, which the HTTP layer calls
//
// # Thread Safety
//
// SQLRepository and Service hold no mutable state and are safe for
// concurrent use. Concurrency is bounded by the database/sql pool.
package ble
