package accessory

import (
	"sync"

	"github.com/nerrad567/gray-logic-hap/internal/characteristic"
)

// Info is the content of the mandatory accessory information service.
type Info struct {
	Name             string
	Manufacturer     string
	Model            string
	SerialNumber     string
	FirmwareRevision string
}

// Accessory is one addressable accessory of a device.
type Accessory struct {
	info Info

	mu       sync.RWMutex
	aid      uint64
	services []*Service
	device   *Device
}

// New creates an accessory with the information service followed by services.
func New(info Info, services ...*Service) *Accessory {
	a := &Accessory{info: info}
	a.AddService(NewInfoService(info))
	for _, s := range services {
		a.AddService(s)
	}
	return a
}

// NewInfoService builds the accessory information service.
func NewInfoService(info Info) *Service {
	return NewService(ServiceAccessoryInformation,
		characteristic.NewIdentify(),
		characteristic.NewManufacturer(info.Manufacturer),
		characteristic.NewModel(info.Model),
		characteristic.NewName(info.Name),
		characteristic.NewSerialNumber(info.SerialNumber),
		characteristic.NewFirmwareRevision(info.FirmwareRevision),
	)
}

// Info returns the accessory information.
func (a *Accessory) Info() Info { return a.info }

// AID returns the accessory id, 0 until the accessory joins a device.
func (a *Accessory) AID() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.aid
}

// Device returns the owning device, or nil.
func (a *Accessory) Device() *Device {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.device
}

// AddService attaches s and renumbers the accessory.
func (a *Accessory) AddService(s *Service) {
	a.mu.Lock()
	a.services = append(a.services, s)
	a.mu.Unlock()
	s.setAccessory(a)
	a.AssignIIDs()
}

// Services returns the services in insertion order.
func (a *Accessory) Services() []*Service {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*Service(nil), a.services...)
}

// Service returns the first service of the given type.
func (a *Accessory) Service(typ ServiceType) (*Service, bool) {
	for _, s := range a.Services() {
		if s.Type() == typ {
			return s, true
		}
	}
	return nil, false
}

// AssignIIDs numbers services and characteristics sequentially from 1 in a
// single iid space.
func (a *Accessory) AssignIIDs() {
	next := uint64(1)
	for _, s := range a.Services() {
		next = s.assignIIDs(next)
	}
}

// Characteristic returns the characteristic with the given iid.
func (a *Accessory) Characteristic(iid uint64) (characteristic.Characteristic, bool) {
	for _, s := range a.Services() {
		for _, c := range s.Characteristics() {
			if c.IID() == iid {
				return c, true
			}
		}
	}
	return nil, false
}

func (a *Accessory) attach(d *Device, aid uint64) {
	a.mu.Lock()
	a.device = d
	a.aid = aid
	a.mu.Unlock()
}

func (a *Accessory) detach() {
	a.mu.Lock()
	a.device = nil
	a.mu.Unlock()
}

func (a *Accessory) serialize() map[string]any {
	services := a.Services()
	out := make([]map[string]any, len(services))
	for i, s := range services {
		out[i] = s.serialize()
	}
	return map[string]any{
		"aid":      a.AID(),
		"services": out,
	}
}
