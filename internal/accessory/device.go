package accessory

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-hap/internal/characteristic"
)

// Logger defines the logging interface used by the Device.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Sender delivers an encoded event payload to one connection.
type Sender interface {
	Send(conn characteristic.ConnectionID, payload []byte) error
}

// EventSink observes every notified change, regardless of subscriptions.
type EventSink interface {
	CharacteristicChanged(ev Event)
}

// Event describes one changed characteristic.
type Event struct {
	AID    uint64
	IID    uint64
	Type   characteristic.Type
	Value  any
	Origin characteristic.ConnectionID
}

// EventValue is one entry of an event payload.
type EventValue struct {
	AID   uint64 `json:"aid"`
	IID   uint64 `json:"iid"`
	Value any    `json:"value"`
}

// EventPayload is the body sent to subscribed connections.
type EventPayload struct {
	Characteristics []EventValue `json:"characteristics"`
}

// Device is the root of the accessory tree and the notifier every
// characteristic routes through. All methods are safe for concurrent use.
type Device struct {
	mu          sync.RWMutex
	accessories []*Accessory
	nextAID     uint64
	subs        map[characteristic.ConnectionID]map[characteristic.Characteristic]struct{}
	sender      Sender
	sinks       []EventSink
	logger      Logger

	stateMu      sync.RWMutex
	identifier   string
	configNumber uint32
}

// NewDevice creates an empty device.
func NewDevice() *Device {
	return &Device{
		nextAID: 1,
		subs:    make(map[characteristic.ConnectionID]map[characteristic.Characteristic]struct{}),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the device.
func (d *Device) SetLogger(logger Logger) {
	d.mu.Lock()
	d.logger = logger
	d.mu.Unlock()
}

// SetSender sets the transport used for subscribed connections.
func (d *Device) SetSender(s Sender) {
	d.mu.Lock()
	d.sender = s
	d.mu.Unlock()
}

// AddEventSink registers a sink for every change.
func (d *Device) AddEventSink(s EventSink) {
	d.mu.Lock()
	d.sinks = append(d.sinks, s)
	d.mu.Unlock()
}

// AddAccessory attaches a and assigns the next aid, starting at 1.
func (d *Device) AddAccessory(a *Accessory) uint64 {
	d.mu.Lock()
	aid := d.nextAID
	d.nextAID++
	d.accessories = append(d.accessories, a)
	d.mu.Unlock()

	a.attach(d, aid)
	return aid
}

// RemoveAccessory detaches the accessory with aid and drops subscriptions
// to its characteristics. It reports whether the accessory existed.
func (d *Device) RemoveAccessory(aid uint64) bool {
	d.mu.Lock()
	var removed *Accessory
	for i, a := range d.accessories {
		if a.AID() == aid {
			removed = a
			d.accessories = append(d.accessories[:i:i], d.accessories[i+1:]...)
			break
		}
	}
	if removed != nil {
		for _, s := range removed.Services() {
			for _, c := range s.Characteristics() {
				for _, set := range d.subs {
					delete(set, c)
				}
			}
		}
	}
	d.mu.Unlock()

	if removed == nil {
		return false
	}
	removed.detach()
	return true
}

// Accessories returns the accessories in aid order.
func (d *Device) Accessories() []*Accessory {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]*Accessory(nil), d.accessories...)
}

// Accessory returns the accessory with aid.
func (d *Device) Accessory(aid uint64) (*Accessory, bool) {
	for _, a := range d.Accessories() {
		if a.AID() == aid {
			return a, true
		}
	}
	return nil, false
}

// Characteristic looks up a characteristic by aid and iid.
func (d *Device) Characteristic(aid, iid uint64) (characteristic.Characteristic, bool) {
	a, ok := d.Accessory(aid)
	if !ok {
		return nil, false
	}
	return a.Characteristic(iid)
}

// Subscribe registers conn for events from aid/iid.
func (d *Device) Subscribe(conn characteristic.ConnectionID, aid, iid uint64) error {
	c, ok := d.Characteristic(aid, iid)
	if !ok {
		return fmt.Errorf("%w: %d.%d", ErrNotFound, aid, iid)
	}
	if !characteristic.HasPermission(c, characteristic.PermissionEvents) {
		return fmt.Errorf("%w: %d.%d", ErrNotificationNotSupported, aid, iid)
	}

	d.mu.Lock()
	set := d.subs[conn]
	if set == nil {
		set = make(map[characteristic.Characteristic]struct{})
		d.subs[conn] = set
	}
	set[c] = struct{}{}
	d.mu.Unlock()
	return nil
}

// Unsubscribe removes conn's subscription to aid/iid.
func (d *Device) Unsubscribe(conn characteristic.ConnectionID, aid, iid uint64) error {
	c, ok := d.Characteristic(aid, iid)
	if !ok {
		return fmt.Errorf("%w: %d.%d", ErrNotFound, aid, iid)
	}

	d.mu.Lock()
	delete(d.subs[conn], c)
	if len(d.subs[conn]) == 0 {
		delete(d.subs, conn)
	}
	d.mu.Unlock()
	return nil
}

// RemoveConnection drops every subscription held by conn.
func (d *Device) RemoveConnection(conn characteristic.ConnectionID) {
	d.mu.Lock()
	delete(d.subs, conn)
	d.mu.Unlock()
}

// IsSubscribed reports whether conn is subscribed to c.
func (d *Device) IsSubscribed(conn characteristic.ConnectionID, c characteristic.Characteristic) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.subs[conn][c]
	return ok
}

// Notify implements characteristic.Notifier. Each subscribed connection
// other than except receives the subset of listeners it subscribed to;
// every sink sees every listener.
func (d *Device) Notify(listeners []characteristic.Characteristic, except characteristic.ConnectionID) {
	events := make([]Event, 0, len(listeners))
	for _, c := range listeners {
		events = append(events, Event{
			AID:    aidOf(c),
			IID:    c.IID(),
			Type:   c.Type(),
			Value:  c.UntypedValue(),
			Origin: except,
		})
	}

	d.mu.RLock()
	sender := d.sender
	sinks := append([]EventSink(nil), d.sinks...)
	logger := d.logger
	targets := make(map[characteristic.ConnectionID][]EventValue)
	for conn, set := range d.subs {
		if conn == except {
			continue
		}
		for i, c := range listeners {
			if _, ok := set[c]; ok {
				ev := events[i]
				targets[conn] = append(targets[conn], EventValue{AID: ev.AID, IID: ev.IID, Value: ev.Value})
			}
		}
	}
	d.mu.RUnlock()

	if sender != nil {
		for conn, values := range targets {
			payload, err := json.Marshal(EventPayload{Characteristics: values})
			if err != nil {
				logger.Error("encoding event payload", "connection", conn, "error", err)
				continue
			}
			if err := sender.Send(conn, payload); err != nil {
				logger.Warn("sending event failed", "connection", conn, "error", err)
			}
		}
	}

	for _, sink := range sinks {
		for _, ev := range events {
			sink.CharacteristicChanged(ev)
		}
	}
}

// aidOf resolves the accessory id of c through its owner chain, or 0.
func aidOf(c characteristic.Characteristic) uint64 {
	s, ok := c.Owner().(*Service)
	if !ok || s == nil {
		return 0
	}
	if a := s.Accessory(); a != nil {
		return a.AID()
	}
	return 0
}

// Serialize returns the accessory database:
// {"accessories":[{"aid":1,"services":[{"iid":1,"type":"3E","characteristics":[...]}]}]}.
func (d *Device) Serialize() map[string]any {
	accessories := d.Accessories()
	out := make([]map[string]any, len(accessories))
	for i, a := range accessories {
		out[i] = a.serialize()
	}
	return map[string]any{"accessories": out}
}
