package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-hap/internal/accessory"
	"github.com/nerrad567/gray-logic-hap/internal/characteristic"
	"github.com/nerrad567/gray-logic-hap/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-hap/internal/infrastructure/logging"
)

// WebSocket message types.
const (
	WSTypeConnected   = "connected"
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypeRead        = "read"
	WSTypeWrite       = "write"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"

	// wsSendBufferSize is the per-client outbound message buffer size.
	wsSendBufferSize = 256
)

// ErrUnknownConnection is returned by Send for a connection that is not open.
var ErrUnknownConnection = errors.New("api: unknown websocket connection")

// WSMessage is a message sent to a WebSocket client.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// wsRequest is a message received from a WebSocket client.
type wsRequest struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub tracks WebSocket clients by connection id and delivers device events.
// It implements accessory.Sender.
type Hub struct {
	cfg     config.WebSocketConfig
	device  *accessory.Device
	logger  *logging.Logger
	clients map[characteristic.ConnectionID]*WSClient
	mu      sync.RWMutex
}

// WSClient is one connected WebSocket client.
type WSClient struct {
	id   characteristic.ConnectionID
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// NewHub creates a hub serving device.
func NewHub(cfg config.WebSocketConfig, device *accessory.Device, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		device:  device,
		logger:  logger,
		clients: make(map[characteristic.ConnectionID]*WSClient),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds a client to the hub.
func (h *Hub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client.id] = client
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "connection", client.id, "clients", h.ClientCount())
}

// Unregister removes a client and its characteristic subscriptions.
// Only the caller that removes the client from the map closes the send
// channel.
func (h *Hub) Unregister(client *WSClient) {
	h.mu.Lock()
	current, existed := h.clients[client.id]
	if existed && current == client {
		delete(h.clients, client.id)
	}
	h.mu.Unlock()

	if existed && current == client {
		close(client.send)
		h.device.RemoveConnection(client.id)
	}
	h.logger.Debug("websocket client disconnected", "connection", client.id, "clients", h.ClientCount())
}

// Send delivers an encoded event payload to one connection.
func (h *Hub) Send(conn characteristic.ConnectionID, payload []byte) error {
	h.mu.RLock()
	client, ok := h.clients[conn]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownConnection, conn)
	}

	data, err := json.Marshal(WSMessage{
		Type:      WSTypeEvent,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   json.RawMessage(payload),
	})
	if err != nil {
		return fmt.Errorf("encoding event message: %w", err)
	}
	client.trySend(data)
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// closeAll disconnects all clients and closes their send channels
// so writePump goroutines can exit cleanly.
func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[characteristic.ConnectionID]*WSClient)
	h.mu.Unlock()

	for id, client := range clients {
		close(client.send)
		if client.conn != nil {
			client.conn.Close()
		}
		h.device.RemoveConnection(id)
	}
}

// handleWebSocket upgrades the connection and assigns it a connection id,
// announced to the client in a "connected" message.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		id:   characteristic.ConnectionID(uuid.NewString()),
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, wsSendBufferSize),
	}

	s.hub.Register(client)
	client.sendResponse("", WSTypeConnected, map[string]string{"connection_id": string(client.id)})

	go client.writePump(s.wsCfg)
	go client.readPump(s.wsCfg)
}

// readPump reads messages from the WebSocket connection.
func (c *WSClient) readPump(cfg config.WebSocketConfig) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	pongWait := time.Duration(cfg.PongTimeout) * time.Second
	//nolint:errcheck // Best-effort deadline on connection setup
	c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "connection", c.id, "error", err)
			} else {
				c.hub.logger.Debug("websocket closed", "connection", c.id, "error", err)
			}
			return
		}
		//nolint:errcheck // Best-effort deadline reset
		c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
		c.handleMessage(message)
	}
}

// writePump writes messages to the WebSocket connection.
func (c *WSClient) writePump(cfg config.WebSocketConfig) {
	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	pongWait := time.Duration(cfg.PongTimeout) * time.Second

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				//nolint:errcheck // Best-effort close message
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // Best-effort deadline; write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming WebSocket message.
func (c *WSClient) handleMessage(data []byte) {
	var msg wsRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("", "invalid JSON message")
		return
	}

	switch msg.Type {
	case WSTypeSubscribe:
		c.handleSubscribe(msg, true)
	case WSTypeUnsubscribe:
		c.handleSubscribe(msg, false)
	case WSTypeRead:
		c.handleRead(msg)
	case WSTypeWrite:
		c.handleWrite(msg)
	case WSTypePing:
		c.sendResponse(msg.ID, WSTypePong, nil)
	default:
		c.sendError(msg.ID, "unknown message type: "+msg.Type)
	}
}

// handleSubscribe adds or removes event subscriptions for this connection.
func (c *WSClient) handleSubscribe(msg wsRequest, subscribe bool) {
	var body characteristicsBody[accessory.CharacteristicID]
	if err := json.Unmarshal(msg.Payload, &body); err != nil {
		c.sendError(msg.ID, "invalid subscribe payload")
		return
	}

	enabled := subscribe
	writes := make([]accessory.CharacteristicWrite, len(body.Characteristics))
	for i, id := range body.Characteristics {
		writes[i] = accessory.CharacteristicWrite{AID: id.AID, IID: id.IID, Events: &enabled}
	}
	results := c.hub.device.WriteCharacteristics(writes, c.id)
	c.sendResponse(msg.ID, WSTypeResponse, characteristicsBody[accessory.CharacteristicResult]{Characteristics: results})
}

// handleRead reads characteristic values.
func (c *WSClient) handleRead(msg wsRequest) {
	var body characteristicsBody[accessory.CharacteristicID]
	if err := json.Unmarshal(msg.Payload, &body); err != nil {
		c.sendError(msg.ID, "invalid read payload")
		return
	}

	results := c.hub.device.ReadCharacteristics(body.Characteristics)
	c.sendResponse(msg.ID, WSTypeResponse, characteristicsBody[accessory.CharacteristicResult]{Characteristics: results})
}

// handleWrite applies writes originating from this connection. The writer
// is excluded from the events its own writes produce.
func (c *WSClient) handleWrite(msg wsRequest) {
	var body characteristicsBody[accessory.CharacteristicWrite]
	if err := json.Unmarshal(msg.Payload, &body); err != nil {
		c.sendError(msg.ID, "invalid write payload")
		return
	}

	results := c.hub.device.WriteCharacteristics(body.Characteristics, c.id)
	c.sendResponse(msg.ID, WSTypeResponse, characteristicsBody[accessory.CharacteristicResult]{Characteristics: results})
}

// trySend queues data for the client. Closed channels (client gone) and
// full buffers (slow client) drop the message.
func (c *WSClient) trySend(data []byte) {
	defer func() {
		recover() //nolint:errcheck // Absorb send-on-closed-channel panic
	}()

	select {
	case c.send <- data:
	default:
		c.hub.logger.Warn("websocket send buffer full, dropping message", "connection", c.id)
	}
}

// sendResponse sends a response message to the client.
func (c *WSClient) sendResponse(id, msgType string, payload any) {
	msg := WSMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.trySend(data)
}

// sendError sends an error message to the client.
func (c *WSClient) sendError(id, message string) {
	c.sendResponse(id, WSTypeError, map[string]string{"message": message})
}
