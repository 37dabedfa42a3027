//go:build integration

package mqtt

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// Integration tests need a broker at 127.0.0.1:1883.
//
//	go test -tags=integration -count=1 ./internal/infrastructure/mqtt/...

func connectTest(t *testing.T, clientID string) *Client {
	t.Helper()
	cfg := testConfig()
	cfg.Broker.ClientID = clientID

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() }) //nolint:errcheck // Test cleanup
	return client
}

func TestIntegration_Connect(t *testing.T) {
	client := connectTest(t, "graylogic-hap-int-connect")

	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}

func TestIntegration_ConnectRefused(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Port = 19998

	_, err := Connect(cfg)
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestIntegration_StateRoundtrip(t *testing.T) {
	pub := connectTest(t, "graylogic-hap-int-pub")
	sub := connectTest(t, "graylogic-hap-int-sub")

	received := make(chan string, 1)
	var once sync.Once
	err := sub.Subscribe(Topics{}.CharacteristicState(1, 10), 1, func(topic string, payload []byte) error {
		if aid, iid, ok := ParseCharacteristicTopic(topic); ok && aid == 1 && iid == 10 {
			once.Do(func() { received <- string(payload) })
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if err := pub.PublishRetained(Topics{}.CharacteristicState(1, 10), []byte(`{"value":true}`)); err != nil {
		t.Fatalf("PublishRetained() error = %v", err)
	}

	select {
	case msg := <-received:
		if msg != `{"value":true}` {
			t.Errorf("received %q, want {\"value\":true}", msg)
		}
	case <-time.After(5 * time.Second):
		t.Error("timeout waiting for message")
	}
}
