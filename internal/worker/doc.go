// Package worker provides building contact lookups for the map frontend.
//
// Each building (bldg_id) has a driver and a manager on record. The records
// ship as a JSON file bundled into the binary, or a file named in config,
// and are loaded once at startup into an immutable Directory. There is no
// hot reload: a changed file takes effect on the next restart.
//
// A missing or malformed file never stops the service. LoadOrEmpty logs the
// failure and hands back an empty Directory, so every lookup reports
// not found until the file is fixed.
//
// # Thread Safety
//
// Directory is never written after construction and is safe for concurrent
// readers without locking.
package worker
