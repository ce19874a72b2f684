// Package logging provides structured logging for the Pillar Map API.
//
// This package wraps Go's standard log/slog package so every component logs
// with the same shape: JSON in production, text during development, and the
// default fields service and version on every entry.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting service", "port", 8081)
//	logger.Component("worker").Warn("directory empty")
//
// Never log database DSNs, MQTT passwords or InfluxDB tokens.
package logging
