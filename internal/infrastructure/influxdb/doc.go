// Package influxdb records characteristic history in InfluxDB v2.
//
// Writes are non-blocking: points are batched by the client library and
// flushed on an interval or when the batch fills. Asynchronous write
// failures are delivered to the callback set with SetOnError.
//
// Configured from the influxdb section of config.yaml:
//
//	influxdb:
//	  enabled: true
//	  url: "http://localhost:8086"
//	  org: "graylogic"
//	  bucket: "hap"
//	  batch_size: 100
//	  flush_interval: 10   # seconds
//
// The token should come from GRAYLOGIC_INFLUXDB_TOKEN.
package influxdb
