// Package influxdb records API lookup telemetry in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. Every request served
// under /api becomes one api_lookup point tagged with its route and status
// class, with the serving time in milliseconds as a field. This gives the
// plant a latency history for the map without adding a metrics stack to
// the API itself.
//
// InfluxDB is optional (influxdb.enabled). When it is off, or unreachable at
// startup, the API runs without telemetry.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB,
//	    influxdb.WithErrorHandler(func(err error) { log.Error("influx", "error", err) }))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteLookupMetric(influxdb.LookupSample{
//	    Route:    "/api/ble/detail",
//	    Status:   200,
//	    Duration: 3 * time.Millisecond,
//	})
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes; write errors
// are delivered to the WithErrorHandler callback.
package influxdb
