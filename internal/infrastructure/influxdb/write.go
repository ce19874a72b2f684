package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementLookup is the measurement holding one point per API lookup.
const MeasurementLookup = "api_lookup"

// LookupSample describes one served lookup request.
type LookupSample struct {
	// Route is the chi route pattern, e.g. "/api/ble/by_pillars".
	Route string

	// Status is the HTTP status code returned.
	Status int

	Duration time.Duration

	// At is when the request finished. Zero means now.
	At time.Time
}

// WriteLookupMetric queues one api_lookup point. Route and status class are
// tags; duration_ms and the exact code are fields. It never blocks.
func (c *Client) WriteLookupMetric(s LookupSample) {
	if c.writeAPI == nil || c.closed.Load() {
		return
	}

	at := s.At
	if at.IsZero() {
		at = time.Now()
	}

	c.writeAPI.WritePoint(write.NewPoint(MeasurementLookup,
		map[string]string{
			"route":  s.Route,
			"status": statusClass(s.Status),
		},
		map[string]interface{}{
			"duration_ms": float64(s.Duration.Microseconds()) / 1000,
			"code":        s.Status,
		},
		at,
	))
}

// statusClass buckets a code into "2xx".."5xx" to keep tag cardinality low.
func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
