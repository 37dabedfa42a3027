package accessory

import (
	"sync"

	"github.com/nerrad567/gray-logic-hap/internal/characteristic"
)

// ServiceType identifies the kind of service (HAP short UUID).
type ServiceType string

const (
	ServiceAccessoryInformation ServiceType = "3E"
	ServiceFan                  ServiceType = "40"
	ServiceLightbulb            ServiceType = "43"
	ServiceThermostat           ServiceType = "4A"
	ServiceStatelessSwitch      ServiceType = "89"
	ServiceCarbonMonoxideSensor ServiceType = "7F"
)

// Service groups characteristics and is their owner handle.
type Service struct {
	typ ServiceType

	mu              sync.RWMutex
	iid             uint64
	characteristics []characteristic.Characteristic
	accessory       *Accessory
}

// NewService creates a service owning chars.
func NewService(typ ServiceType, chars ...characteristic.Characteristic) *Service {
	s := &Service{typ: typ}
	for _, c := range chars {
		s.AddCharacteristic(c)
	}
	return s
}

// AddCharacteristic attaches c to the service.
func (s *Service) AddCharacteristic(c characteristic.Characteristic) {
	s.mu.Lock()
	s.characteristics = append(s.characteristics, c)
	s.mu.Unlock()
	c.SetOwner(s)
}

// Type returns the service type.
func (s *Service) Type() ServiceType { return s.typ }

// IID returns the service instance id.
func (s *Service) IID() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.iid
}

// Characteristics returns the characteristics in insertion order.
func (s *Service) Characteristics() []characteristic.Characteristic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]characteristic.Characteristic(nil), s.characteristics...)
}

// Accessory returns the owning accessory, or nil when detached.
func (s *Service) Accessory() *Accessory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessory
}

// Detach breaks the link to the owning accessory. Characteristics keep
// their values but their notifications go nowhere.
func (s *Service) Detach() {
	s.setAccessory(nil)
}

func (s *Service) setAccessory(a *Accessory) {
	s.mu.Lock()
	s.accessory = a
	s.mu.Unlock()
}

// Notifier resolves service -> accessory -> device. It returns nil when any
// link is missing.
func (s *Service) Notifier() characteristic.Notifier {
	a := s.Accessory()
	if a == nil {
		return nil
	}
	d := a.Device()
	if d == nil {
		return nil
	}
	return d
}

// assignIIDs numbers the service then its characteristics starting at next,
// returning the next free iid.
func (s *Service) assignIIDs(next uint64) uint64 {
	s.mu.Lock()
	s.iid = next
	chars := append([]characteristic.Characteristic(nil), s.characteristics...)
	s.mu.Unlock()

	next++
	for _, c := range chars {
		c.SetIID(next)
		next++
	}
	return next
}

// serialize returns the transport map of the service.
func (s *Service) serialize() map[string]any {
	chars := s.Characteristics()
	out := make([]map[string]any, len(chars))
	for i, c := range chars {
		out[i] = characteristic.Serialize(c)
	}
	return map[string]any{
		"iid":             s.IID(),
		"type":            string(s.typ),
		"characteristics": out,
	}
}
