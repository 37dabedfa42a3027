package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-hap/internal/accessory"
	"github.com/nerrad567/gray-logic-hap/internal/characteristic"
	"github.com/nerrad567/gray-logic-hap/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-hap/internal/infrastructure/logging"
)

// testServer creates a Server around a device with one lightbulb accessory.
// On is 1.9 and Brightness is 1.10; Identify is 1.2 and Name is 1.5.
func testServer(t *testing.T) (*Server, *accessory.Lightbulb) {
	t.Helper()

	bulb := accessory.NewLightbulb()
	device := accessory.NewDevice()
	device.AddAccessory(accessory.New(accessory.Info{Name: "Lamp", Manufacturer: "Gray Logic"}, bulb.Service))

	log := logging.NewWithWriter(io.Discard, config.LoggingConfig{Level: "error", Format: "text"}, "test")

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host:     "127.0.0.1",
			Timeouts: config.APITimeoutConfig{Read: 5, Write: 5, Idle: 5},
		},
		WS: config.WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logger:  log,
		Device:  device,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	return srv, bulb
}

func serve(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(w, req)
	return w
}

type resultsBody struct {
	Characteristics []accessory.CharacteristicResult `json:"characteristics"`
}

func decodeResults(t *testing.T, data []byte) []accessory.CharacteristicResult {
	t.Helper()
	var body resultsBody
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("unmarshal results: %v (body: %s)", err, data)
	}
	return body.Characteristics
}

func TestNew_RequiresDependencies(t *testing.T) {
	log := logging.NewWithWriter(io.Discard, config.LoggingConfig{Level: "error"}, "test")

	if _, err := New(Deps{Device: accessory.NewDevice()}); err == nil {
		t.Error("New() without logger: error = nil, want error")
	}
	if _, err := New(Deps{Logger: log}); err == nil {
		t.Error("New() without device: error = nil, want error")
	}
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)
	w := serve(t, srv, http.MethodGet, "/api/v1/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["version"] != "test" {
		t.Errorf("version = %v, want test", resp["version"])
	}
}

func TestHealthCheck_NotStarted(t *testing.T) {
	srv, _ := testServer(t)
	if err := srv.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() before Start: error = nil, want error")
	}
	if err := srv.Close(); err != nil {
		t.Errorf("Close() before Start: error = %v", err)
	}
}

func TestRequestID(t *testing.T) {
	srv, _ := testServer(t)

	w := serve(t, srv, http.MethodGet, "/api/v1/health", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header to be set")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "client-123")
	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "client-123" {
		t.Errorf("X-Request-ID = %q, want client-123", got)
	}
}

func TestNotFound(t *testing.T) {
	srv, _ := testServer(t)
	w := serve(t, srv, http.MethodGet, "/api/v1/nonexistent", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestAccessories(t *testing.T) {
	srv, _ := testServer(t)
	w := serve(t, srv, http.MethodGet, "/api/v1/accessories", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var db struct {
		Accessories []struct {
			AID      uint64 `json:"aid"`
			Services []struct {
				Type string `json:"type"`
			} `json:"services"`
		} `json:"accessories"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &db); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(db.Accessories) != 1 || db.Accessories[0].AID != 1 {
		t.Fatalf("accessories = %+v, want one with aid 1", db.Accessories)
	}
	if len(db.Accessories[0].Services) != 2 || db.Accessories[0].Services[1].Type != string(accessory.ServiceLightbulb) {
		t.Errorf("services = %+v, want info then lightbulb", db.Accessories[0].Services)
	}
}

func TestReadCharacteristics(t *testing.T) {
	srv, bulb := testServer(t)
	bulb.Brightness.Set(40)

	tests := []struct {
		name       string
		query      string
		wantCode   int
		wantStatus []int
	}{
		{"all readable", "1.9,1.10", http.StatusOK, []int{0, 0}},
		{"missing", "1.9,1.99", http.StatusMultiStatus, []int{0, accessory.StatusNotFound}},
		{"write-only", "1.2", http.StatusMultiStatus, []int{accessory.StatusWriteOnly}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, srv, http.MethodGet, "/api/v1/characteristics?id="+tt.query, "")
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d; body: %s", w.Code, tt.wantCode, w.Body.String())
			}
			results := decodeResults(t, w.Body.Bytes())
			if len(results) != len(tt.wantStatus) {
				t.Fatalf("results = %+v, want %d entries", results, len(tt.wantStatus))
			}
			for i, want := range tt.wantStatus {
				if results[i].Status != want {
					t.Errorf("result %d status = %d, want %d", i, results[i].Status, want)
				}
			}
		})
	}

	w := serve(t, srv, http.MethodGet, "/api/v1/characteristics?id=1.10", "")
	results := decodeResults(t, w.Body.Bytes())
	if results[0].Value != float64(40) {
		t.Errorf("brightness = %v, want 40", results[0].Value)
	}
}

func TestReadCharacteristics_BadID(t *testing.T) {
	srv, _ := testServer(t)
	for _, q := range []string{"", "1", "a.b"} {
		w := serve(t, srv, http.MethodGet, "/api/v1/characteristics?id="+q, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("id=%q status = %d, want 400", q, w.Code)
		}
	}
}

func TestWriteCharacteristics(t *testing.T) {
	srv, bulb := testServer(t)

	w := serve(t, srv, http.MethodPut, "/api/v1/characteristics",
		`{"characteristics":[{"aid":1,"iid":9,"value":true},{"aid":1,"iid":10,"value":25}]}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204; body: %s", w.Code, w.Body.String())
	}
	if on, _ := bulb.On.Get(); !on {
		t.Error("On = false after write")
	}
	if b, _ := bulb.Brightness.Get(); b != 25 {
		t.Errorf("Brightness = %d, want 25", b)
	}
}

func TestWriteCharacteristics_Failures(t *testing.T) {
	srv, bulb := testServer(t)

	w := serve(t, srv, http.MethodPut, "/api/v1/characteristics",
		`{"characteristics":[{"aid":1,"iid":5,"value":"Den"},{"aid":1,"iid":10,"value":"high"},{"aid":9,"iid":9,"value":true}]}`)
	if w.Code != http.StatusMultiStatus {
		t.Fatalf("status = %d, want 207", w.Code)
	}

	results := decodeResults(t, w.Body.Bytes())
	want := []int{accessory.StatusReadOnly, accessory.StatusInvalidValue, accessory.StatusNotFound}
	for i, status := range want {
		if results[i].Status != status {
			t.Errorf("result %d status = %d, want %d", i, results[i].Status, status)
		}
	}
	if b, _ := bulb.Brightness.Get(); b != 100 {
		t.Errorf("Brightness = %d, want unchanged 100", b)
	}
}

func TestWriteCharacteristics_BadRequests(t *testing.T) {
	srv, _ := testServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"empty", `{"characteristics":[]}`},
		{"events without connection", `{"characteristics":[{"aid":1,"iid":9,"ev":true}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, srv, http.MethodPut, "/api/v1/characteristics", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

// ─── WebSocket ─────────────────────────────────────────────────────

type wsReply struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

func readWS(t *testing.T, ws *websocket.Conn) wsReply {
	t.Helper()
	//nolint:errcheck // test deadline
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wsReply
	if err := ws.ReadJSON(&msg); err != nil {
		t.Fatalf("reading websocket message: %v", err)
	}
	return msg
}

func writeWS(t *testing.T, ws *websocket.Conn, msgType, id string, payload any) {
	t.Helper()
	if err := ws.WriteJSON(map[string]any{"type": msgType, "id": id, "payload": payload}); err != nil {
		t.Fatalf("writing websocket message: %v", err)
	}
}

// dialWS connects a client and returns it with its connection id.
func dialWS(t *testing.T, ts *httptest.Server) (*websocket.Conn, characteristic.ConnectionID) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	ws, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v (resp: %v)", err, resp)
	}
	t.Cleanup(func() { ws.Close() })

	hello := readWS(t, ws)
	if hello.Type != WSTypeConnected {
		t.Fatalf("first message type = %q, want %q", hello.Type, WSTypeConnected)
	}
	var p struct {
		ConnectionID string `json:"connection_id"`
	}
	if err := json.Unmarshal(hello.Payload, &p); err != nil || p.ConnectionID == "" {
		t.Fatalf("connected payload = %s, want connection_id", hello.Payload)
	}
	return ws, characteristic.ConnectionID(p.ConnectionID)
}

func subscribeWS(t *testing.T, ws *websocket.Conn, ids ...accessory.CharacteristicID) []accessory.CharacteristicResult {
	t.Helper()
	writeWS(t, ws, WSTypeSubscribe, "sub", map[string]any{"characteristics": ids})
	reply := readWS(t, ws)
	if reply.Type != WSTypeResponse || reply.ID != "sub" {
		t.Fatalf("subscribe reply = %+v, want response sub", reply)
	}
	return decodeResults(t, reply.Payload)
}

func eventValues(t *testing.T, msg wsReply) []accessory.EventValue {
	t.Helper()
	if msg.Type != WSTypeEvent {
		t.Fatalf("message type = %q, want event", msg.Type)
	}
	var p accessory.EventPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	return p.Characteristics
}

func startWS(t *testing.T) (*Server, *accessory.Lightbulb, *httptest.Server) {
	t.Helper()
	srv, bulb := testServer(t)
	ts := httptest.NewServer(srv.buildRouter())
	t.Cleanup(ts.Close)
	return srv, bulb, ts
}

var onID = accessory.CharacteristicID{AID: 1, IID: 9}

func TestWebSocket_WriteNotifiesOthersButNotWriter(t *testing.T) {
	_, bulb, ts := startWS(t)
	a, _ := dialWS(t, ts)
	b, _ := dialWS(t, ts)

	subscribeWS(t, a, onID)
	subscribeWS(t, b, onID)

	writeWS(t, a, WSTypeWrite, "w1", map[string]any{
		"characteristics": []map[string]any{{"aid": 1, "iid": 9, "value": true}},
	})

	ev := eventValues(t, readWS(t, b))
	if len(ev) != 1 || ev[0].AID != 1 || ev[0].IID != 9 || ev[0].Value != true {
		t.Errorf("B event = %+v, want 1.9 = true", ev)
	}

	reply := readWS(t, a)
	if reply.Type != WSTypeResponse || reply.ID != "w1" {
		t.Fatalf("A reply = %+v, want write response", reply)
	}
	if results := decodeResults(t, reply.Payload); results[0].Status != accessory.StatusSuccess {
		t.Errorf("write status = %d, want 0", results[0].Status)
	}
	if on, _ := bulb.On.Get(); !on {
		t.Error("On = false after websocket write")
	}

	//nolint:errcheck // test deadline
	a.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var extra wsReply
	if err := a.ReadJSON(&extra); err == nil {
		t.Errorf("writer received %+v, want no echo", extra)
	}
}

func TestWebSocket_LocalChangeNotifiesAllSubscribers(t *testing.T) {
	_, bulb, ts := startWS(t)
	a, _ := dialWS(t, ts)
	b, _ := dialWS(t, ts)
	subscribeWS(t, a, onID)
	subscribeWS(t, b, onID)

	bulb.On.Set(true)

	for name, ws := range map[string]*websocket.Conn{"A": a, "B": b} {
		ev := eventValues(t, readWS(t, ws))
		if len(ev) != 1 || ev[0].Value != true {
			t.Errorf("%s event = %+v, want 1.9 = true", name, ev)
		}
	}
}

func TestWebSocket_RESTWriteWithConnectionIDIsExcluded(t *testing.T) {
	_, _, ts := startWS(t)
	a, idA := dialWS(t, ts)
	b, _ := dialWS(t, ts)
	subscribeWS(t, a, onID)
	subscribeWS(t, b, onID)

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/v1/characteristics",
		strings.NewReader(`{"characteristics":[{"aid":1,"iid":9,"value":true}]}`))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set(headerConnectionID, string(idA))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}

	eventValues(t, readWS(t, b))

	//nolint:errcheck // test deadline
	a.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var extra wsReply
	if err := a.ReadJSON(&extra); err == nil {
		t.Errorf("origin connection received %+v, want no echo", extra)
	}
}

func TestWebSocket_SubscribeStatuses(t *testing.T) {
	_, _, ts := startWS(t)
	ws, _ := dialWS(t, ts)

	results := subscribeWS(t, ws,
		onID,
		accessory.CharacteristicID{AID: 1, IID: 5},
		accessory.CharacteristicID{AID: 1, IID: 99},
	)
	want := []int{accessory.StatusSuccess, accessory.StatusNotificationUnsupported, accessory.StatusNotFound}
	for i, status := range want {
		if results[i].Status != status {
			t.Errorf("result %d status = %d, want %d", i, results[i].Status, status)
		}
	}
}

func TestWebSocket_UnsubscribeStopsEvents(t *testing.T) {
	srv, bulb, ts := startWS(t)
	ws, id := dialWS(t, ts)
	subscribeWS(t, ws, onID)

	writeWS(t, ws, WSTypeUnsubscribe, "unsub", map[string]any{"characteristics": []accessory.CharacteristicID{onID}})
	if reply := readWS(t, ws); reply.ID != "unsub" {
		t.Fatalf("reply = %+v, want unsubscribe response", reply)
	}
	if srv.device.IsSubscribed(id, bulb.On) {
		t.Error("still subscribed after unsubscribe")
	}
}

func TestWebSocket_ReadAndPing(t *testing.T) {
	_, _, ts := startWS(t)
	ws, _ := dialWS(t, ts)

	writeWS(t, ws, WSTypeRead, "r1", map[string]any{"characteristics": []accessory.CharacteristicID{{AID: 1, IID: 10}}})
	reply := readWS(t, ws)
	results := decodeResults(t, reply.Payload)
	if len(results) != 1 || results[0].Value != float64(100) {
		t.Errorf("read results = %+v, want brightness 100", results)
	}

	writeWS(t, ws, WSTypePing, "p1", nil)
	if reply := readWS(t, ws); reply.Type != WSTypePong || reply.ID != "p1" {
		t.Errorf("reply = %+v, want pong p1", reply)
	}

	writeWS(t, ws, "bogus", "x", nil)
	if reply := readWS(t, ws); reply.Type != WSTypeError {
		t.Errorf("reply type = %q, want error", reply.Type)
	}
}

func TestWebSocket_DisconnectDropsSubscriptions(t *testing.T) {
	srv, bulb, ts := startWS(t)
	ws, id := dialWS(t, ts)
	subscribeWS(t, ws, onID)

	if !srv.device.IsSubscribed(id, bulb.On) {
		t.Fatal("not subscribed after subscribe")
	}

	ws.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.ClientCount() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.hub.ClientCount() != 0 {
		t.Fatalf("ClientCount() = %d, want 0", srv.hub.ClientCount())
	}
	if srv.device.IsSubscribed(id, bulb.On) {
		t.Error("subscription survived disconnect")
	}
}

func TestHub_SendUnknownConnection(t *testing.T) {
	srv, _ := testServer(t)
	err := srv.hub.Send("nobody", []byte(`{}`))
	if !errors.Is(err, ErrUnknownConnection) {
		t.Errorf("Send() error = %v, want ErrUnknownConnection", err)
	}
}
