package accessory

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/nerrad567/gray-logic-hap/internal/characteristic"
	"github.com/nerrad567/gray-logic-hap/internal/storage"
)

// maxConfigNumber is the largest configuration number; it wraps to 1.
const maxConfigNumber = 65535

// State is the persisted device identity.
type State struct {
	Identifier    string `yaml:"identifier"`
	ConfigNumber  uint32 `yaml:"config_number"`
	AccessoryHash string `yaml:"accessory_hash"`
}

// Identifier returns the persistent device identifier, empty before Load.
func (d *Device) Identifier() string {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.identifier
}

// ConfigNumber returns the configuration number, 0 before Load.
func (d *Device) ConfigNumber() uint32 {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.configNumber
}

// Load restores the device identity from st and reconciles it with the
// current accessories, then saves the result.
//
// A read or decode failure is logged and the device starts fresh with a new
// identifier and configuration number 1. When the accessory database differs
// from the stored one the configuration number is incremented, so clients
// know to refetch it.
func (d *Device) Load(st storage.Storage) error {
	d.mu.RLock()
	logger := d.logger
	d.mu.RUnlock()

	hash := d.AccessoryHash()

	prev, err := readState(st)
	if err != nil {
		logger.Warn("no usable stored device state, starting fresh", "error", err)
		prev = State{}
	}

	next := prev
	switch {
	case prev.Identifier == "":
		next = State{Identifier: uuid.NewString(), ConfigNumber: 1, AccessoryHash: hash}
	case prev.AccessoryHash != hash:
		next.ConfigNumber = bump(prev.ConfigNumber)
		next.AccessoryHash = hash
		logger.Info("accessory database changed", "config_number", next.ConfigNumber)
	}

	d.stateMu.Lock()
	d.identifier = next.Identifier
	d.configNumber = next.ConfigNumber
	d.stateMu.Unlock()

	if next == prev {
		return nil
	}
	return writeState(st, next)
}

// Save writes the current identity and accessory hash to st.
func (d *Device) Save(st storage.Storage) error {
	d.stateMu.RLock()
	s := State{Identifier: d.identifier, ConfigNumber: d.configNumber}
	d.stateMu.RUnlock()
	s.AccessoryHash = d.AccessoryHash()
	return writeState(st, s)
}

// AccessoryHash fingerprints the structure of the accessory database:
// aids, iids, types, permissions and formats. Values are excluded.
func (d *Device) AccessoryHash() string {
	type charShape struct {
		IID    uint64                      `json:"iid"`
		Type   characteristic.Type         `json:"type"`
		Perms  []characteristic.Permission `json:"perms"`
		Format characteristic.Format       `json:"format"`
	}
	type serviceShape struct {
		IID   uint64      `json:"iid"`
		Type  ServiceType `json:"type"`
		Chars []charShape `json:"chars"`
	}
	type accessoryShape struct {
		AID      uint64         `json:"aid"`
		Services []serviceShape `json:"services"`
	}

	var shape []accessoryShape
	for _, a := range d.Accessories() {
		as := accessoryShape{AID: a.AID()}
		for _, s := range a.Services() {
			ss := serviceShape{IID: s.IID(), Type: s.Type()}
			for _, c := range s.Characteristics() {
				ss.Chars = append(ss.Chars, charShape{
					IID: c.IID(), Type: c.Type(), Perms: c.Permissions(), Format: c.Format(),
				})
			}
			as.Services = append(as.Services, ss)
		}
		shape = append(shape, as)
	}

	//nolint:errchkjson // plain structs of strings and integers
	data, _ := json.Marshal(shape)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func bump(n uint32) uint32 {
	if n >= maxConfigNumber {
		return 1
	}
	return n + 1
}

func readState(st storage.Storage) (State, error) {
	data, err := st.Read()
	if err != nil {
		return State{}, err
	}

	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return s, nil
}

func writeState(st storage.Storage, s State) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding device state: %w", err)
	}
	if err := st.Write(data); err != nil {
		return fmt.Errorf("saving device state: %w", err)
	}
	return nil
}
