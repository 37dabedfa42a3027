package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementCharacteristic is the measurement holding characteristic history.
const MeasurementCharacteristic = "characteristic_values"

// WriteCharacteristicValue records one characteristic value, tagged by
// accessory id, instance id and characteristic type.
func (c *Client) WriteCharacteristicValue(aid, iid uint64, typ string, value float64, at time.Time) {
	c.WritePointWithTime(MeasurementCharacteristic,
		map[string]string{
			"aid":  strconv.FormatUint(aid, 10),
			"iid":  strconv.FormatUint(iid, 10),
			"type": typ,
		},
		map[string]any{"value": value},
		at,
	)
}

// WritePointWithTime writes a point with an explicit timestamp.
// Writes on a disconnected client are dropped.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]any, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, at))
}
