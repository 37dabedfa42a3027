package relay

import (
	"time"

	"github.com/spf13/cast"

	"github.com/nerrad567/gray-logic-hap/internal/accessory"
)

// PointWriter records one characteristic value. *influxdb.Client implements it.
type PointWriter interface {
	WriteCharacteristicValue(aid, iid uint64, typ string, value float64, at time.Time)
}

// HistoryRecorder writes numeric and boolean characteristic values to a
// time series store. Strings and absent values are skipped.
type HistoryRecorder struct {
	writer PointWriter
	now    func() time.Time
}

// NewHistoryRecorder creates a recorder writing to w.
func NewHistoryRecorder(w PointWriter) *HistoryRecorder {
	return &HistoryRecorder{writer: w, now: time.Now}
}

// CharacteristicChanged records ev when its value is numeric or boolean.
func (h *HistoryRecorder) CharacteristicChanged(ev accessory.Event) {
	var value float64
	switch v := ev.Value.(type) {
	case nil, string:
		return
	case bool:
		if v {
			value = 1
		}
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return
		}
		value = f
	}
	h.writer.WriteCharacteristicValue(ev.AID, ev.IID, string(ev.Type), value, h.now())
}
