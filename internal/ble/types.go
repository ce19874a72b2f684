package ble

// Sensor is one row of the ble table: a beacon and where it is mounted.
type Sensor struct {
	// BleID is the beacon identifier as printed on the device (primary key).
	BleID string `json:"ble_id" db:"ble_id"`

	// PillarID is the structural pillar the beacon is attached to.
	PillarID int `json:"pillar_id" db:"pillar_id"`

	// Line is the production line number of that pillar.
	Line int `json:"line" db:"line"`
}
