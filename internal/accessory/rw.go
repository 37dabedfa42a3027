package accessory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nerrad567/gray-logic-hap/internal/characteristic"
)

// CharacteristicID addresses one characteristic.
type CharacteristicID struct {
	AID uint64 `json:"aid"`
	IID uint64 `json:"iid"`
}

// String formats the id as "aid.iid".
func (id CharacteristicID) String() string {
	return fmt.Sprintf("%d.%d", id.AID, id.IID)
}

// ParseCharacteristicIDs parses a comma separated "aid.iid" list.
func ParseCharacteristicIDs(s string) ([]CharacteristicID, error) {
	if s == "" {
		return nil, errors.New("empty characteristic id list")
	}

	parts := strings.Split(s, ",")
	ids := make([]CharacteristicID, 0, len(parts))
	for _, p := range parts {
		aidStr, iidStr, ok := strings.Cut(strings.TrimSpace(p), ".")
		if !ok {
			return nil, fmt.Errorf("invalid characteristic id %q", p)
		}
		aid, err := strconv.ParseUint(aidStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid aid in %q: %w", p, err)
		}
		iid, err := strconv.ParseUint(iidStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid iid in %q: %w", p, err)
		}
		ids = append(ids, CharacteristicID{AID: aid, IID: iid})
	}
	return ids, nil
}

// CharacteristicWrite is one remote write. Events, when set, also
// subscribes or unsubscribes the writer.
type CharacteristicWrite struct {
	AID    uint64 `json:"aid"`
	IID    uint64 `json:"iid"`
	Value  any    `json:"value,omitempty"`
	Events *bool  `json:"ev,omitempty"`
}

// CharacteristicResult is the per characteristic outcome of a read or write.
type CharacteristicResult struct {
	AID    uint64 `json:"aid"`
	IID    uint64 `json:"iid"`
	Value  any    `json:"value,omitempty"`
	Status int    `json:"status"`
}

// ReadCharacteristics reads each id. Missing characteristics report
// StatusNotFound and write-only ones StatusWriteOnly.
func (d *Device) ReadCharacteristics(ids []CharacteristicID) []CharacteristicResult {
	results := make([]CharacteristicResult, len(ids))
	for i, id := range ids {
		r := CharacteristicResult{AID: id.AID, IID: id.IID}
		c, ok := d.Characteristic(id.AID, id.IID)
		switch {
		case !ok:
			r.Status = StatusNotFound
		case !characteristic.HasPermission(c, characteristic.PermissionRead):
			r.Status = StatusWriteOnly
		default:
			r.Value = c.UntypedValue()
		}
		results[i] = r
	}
	return results
}

// WriteCharacteristics applies remote writes on behalf of origin, which is
// excluded from the resulting notifications. A write carrying neither a
// value nor an events flag is a no-op that succeeds.
func (d *Device) WriteCharacteristics(writes []CharacteristicWrite, origin characteristic.ConnectionID) []CharacteristicResult {
	results := make([]CharacteristicResult, len(writes))
	for i, w := range writes {
		results[i] = CharacteristicResult{AID: w.AID, IID: w.IID, Status: d.write(w, origin)}
	}
	return results
}

func (d *Device) write(w CharacteristicWrite, origin characteristic.ConnectionID) int {
	c, ok := d.Characteristic(w.AID, w.IID)
	if !ok {
		return StatusNotFound
	}

	// A rejected value leaves the subscription untouched.
	if w.Value != nil {
		if !characteristic.HasPermission(c, characteristic.PermissionWrite) {
			return StatusReadOnly
		}
		if err := c.SetUntypedValue(w.Value, origin); err != nil {
			d.mu.RLock()
			logger := d.logger
			d.mu.RUnlock()
			logger.Debug("rejected characteristic write", "aid", w.AID, "iid", w.IID, "error", err)
			return StatusInvalidValue
		}
	}

	if w.Events != nil {
		var err error
		if *w.Events {
			err = d.Subscribe(origin, w.AID, w.IID)
		} else {
			err = d.Unsubscribe(origin, w.AID, w.IID)
		}
		if errors.Is(err, ErrNotificationNotSupported) {
			return StatusNotificationUnsupported
		}
	}
	return StatusSuccess
}
