package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/gray-logic-hap/internal/accessory"
	"github.com/nerrad567/gray-logic-hap/internal/characteristic"
	"github.com/nerrad567/gray-logic-hap/internal/infrastructure/mqtt"
)

// OriginMQTT is the connection id used for writes arriving over MQTT.
const OriginMQTT characteristic.ConnectionID = "mqtt"

// queueSize bounds the events waiting to be published.
const queueSize = 256

// Logger defines the logging interface used by the relays.
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

// Broker is the part of the MQTT client the relay uses.
type Broker interface {
	PublishRetained(topic string, payload []byte) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// CharacteristicWriter applies remote writes. *accessory.Device implements it.
type CharacteristicWriter interface {
	WriteCharacteristics(writes []accessory.CharacteristicWrite, origin characteristic.ConnectionID) []accessory.CharacteristicResult
}

// statePayload is the body of state and set messages.
type statePayload struct {
	Value any `json:"value"`
}

// MQTTRelay publishes characteristic changes and accepts MQTT writes.
type MQTTRelay struct {
	broker Broker
	device CharacteristicWriter
	qos    byte
	events chan accessory.Event
	logger Logger
}

// NewMQTTRelay creates a relay between broker and device.
func NewMQTTRelay(broker Broker, device CharacteristicWriter, qos byte) *MQTTRelay {
	return &MQTTRelay{
		broker: broker,
		device: device,
		qos:    qos,
		events: make(chan accessory.Event, queueSize),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the relay.
func (r *MQTTRelay) SetLogger(logger Logger) {
	r.logger = logger
}

// Start subscribes to the set topics.
func (r *MQTTRelay) Start() error {
	if err := r.broker.Subscribe(mqtt.Topics{}.AllCharacteristicSets(), r.qos, r.handleSet); err != nil {
		return fmt.Errorf("subscribing to set topics: %w", err)
	}
	return nil
}

// Run publishes queued events until ctx is cancelled.
func (r *MQTTRelay) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-r.events:
			r.publish(ev)
		}
	}
}

// CharacteristicChanged queues ev for publishing. It never blocks; when
// the queue is full the event is dropped.
func (r *MQTTRelay) CharacteristicChanged(ev accessory.Event) {
	select {
	case r.events <- ev:
	default:
		r.logger.Warn("mqtt relay queue full, dropping event", "aid", ev.AID, "iid", ev.IID)
	}
}

func (r *MQTTRelay) publish(ev accessory.Event) {
	payload, err := json.Marshal(statePayload{Value: ev.Value})
	if err != nil {
		r.logger.Error("encoding state payload", "aid", ev.AID, "iid", ev.IID, "error", err)
		return
	}
	topic := mqtt.Topics{}.CharacteristicState(ev.AID, ev.IID)
	if err := r.broker.PublishRetained(topic, payload); err != nil {
		r.logger.Warn("publishing characteristic state", "topic", topic, "error", err)
	}
}

// handleSet applies a {"value": ...} message from a set topic.
func (r *MQTTRelay) handleSet(topic string, payload []byte) error {
	aid, iid, ok := mqtt.ParseCharacteristicTopic(topic)
	if !ok {
		return fmt.Errorf("unexpected topic %q", topic)
	}

	var msg statePayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decoding set payload on %q: %w", topic, err)
	}
	if msg.Value == nil {
		return fmt.Errorf("set payload on %q has no value", topic)
	}

	results := r.device.WriteCharacteristics([]accessory.CharacteristicWrite{
		{AID: aid, IID: iid, Value: msg.Value},
	}, OriginMQTT)
	if status := results[0].Status; status != accessory.StatusSuccess {
		return fmt.Errorf("write %d.%d rejected with status %d", aid, iid, status)
	}

	r.logger.Debug("applied mqtt write", "aid", aid, "iid", iid)
	return nil
}
