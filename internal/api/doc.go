// Package api implements the HTTP API of the Pillar Map service.
//
// This package provides:
//   - GET /api/ble/by_pillars and /api/ble/detail for BLE sensor placement
//   - GET /api/worker/{bldg_id} for building contacts
//   - GET /api/health and /api/metrics for operations
//   - Middleware stack (request ID, logging, recovery, CORS, lookup telemetry)
//   - TLS support for deployments outside the plant network
//
// # Graceful Degradation
//
// MQTT and InfluxDB are optional. Without them the lookups work unchanged;
// only presence announcements and latency history are lost. A worker file
// that failed to load leaves the worker endpoint answering 404 for every
// building rather than failing startup.
//
// All endpoints are read-only and unauthenticated; the service is meant to
// sit behind the plant network boundary.
package api
