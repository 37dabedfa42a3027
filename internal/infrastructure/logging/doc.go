// Package logging provides structured logging for the accessory server.
//
// It wraps log/slog so every component logs the same way: JSON in
// production, text while developing, with service and version attached to
// every record.
//
// Configured from the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("accessory published", "aid", 1)
//
// Never log secrets such as the MQTT password or the InfluxDB token.
package logging
