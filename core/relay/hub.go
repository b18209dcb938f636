// Package relay mirrors the trainer's events to browser clients over a
// WebSocket and forwards their keystrokes and commands to the device.
package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/gorilla/websocket"
	"github.com/invopop/jsonschema"
	"github.com/koscakluka/morse-client/core/events"
	"github.com/koscakluka/morse-client/core/protocol"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultClientBuffer = 32
	writeWait           = 5 * time.Second
)

// Device receives what browsers send.
type Device interface {
	Send(b byte)
	SendCommand(cmd string)
}

type Hub struct {
	device       Device
	upgrader     websocket.Upgrader
	clientBuffer int

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool

	speed atomic.Int32
}

type client struct {
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

type Option func(*Hub)

// WithClientBuffer sets how many messages may queue for one browser before
// it is dropped.
func WithClientBuffer(size int) Option {
	return func(h *Hub) { h.clientBuffer = size }
}

// WithCheckOrigin replaces the upgrader's origin check.
func WithCheckOrigin(check func(r *http.Request) bool) Option {
	return func(h *Hub) { h.upgrader.CheckOrigin = check }
}

func NewHub(device Device, opts ...Option) *Hub {
	h := &Hub{
		device:       device,
		clientBuffer: defaultClientBuffer,
		clients:      map[*client]struct{}{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handler serves /ws and /schema.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.serveWS)
	mux.HandleFunc("/schema", serveSchema)
	return otelhttp.NewHandler(mux, "relay")
}

// Publish broadcasts event to every connected browser. A browser whose
// queue is full is disconnected.
func (h *Hub) Publish(event events.Event) {
	if e, ok := event.(events.Speed); ok {
		h.speed.Store(int32(e.WPM))
	}

	msg, ok := messageFor(event, int(h.speed.Load()))
	if !ok {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Warn("failed to encode message", "type", msg.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			logger.Info("dropping slow client", "remote", c.conn.RemoteAddr().String())
			droppedClientsCounter.Add(context.Background(), 1)
			delete(h.clients, c)
			c.close()
		}
	}
}

// Clients returns the number of connected browsers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every browser and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, h.clientBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()

	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(c)
			return
		}
	}

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

func (h *Hub) readLoop(c *client) {
	defer h.remove(c)

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("websocket read error", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		h.handleInbound(msg)
	}
}

func (h *Hub) handleInbound(msg Message) {
	switch msg.Type {
	case TypeKey:
		r := []rune(msg.Char)
		if len(r) == 0 || r[0] > unicode.MaxASCII || !unicode.IsPrint(r[0]) {
			return
		}
		h.device.Send(byte(unicode.ToUpper(r[0])))

	case TypeCommand:
		if cmd, ok := commandFor(msg); ok {
			h.device.SendCommand(cmd)
		}
	}
}

func commandFor(msg Message) (string, bool) {
	switch msg.Cmd {
	case "start":
		switch {
		case msg.Profile != nil && msg.Speed != nil:
			return protocol.FormatCommand(protocol.CommandStart, *msg.Profile, *msg.Speed), true
		case msg.Speed != nil:
			return protocol.FormatCommand(protocol.CommandStart, protocol.DefaultProfile, *msg.Speed), true
		case msg.Profile != nil:
			return protocol.FormatCommand(protocol.CommandStart, *msg.Profile), true
		}
		return protocol.CommandStart, true
	case "stop":
		return protocol.CommandStop, true
	case "speed":
		if msg.Speed == nil {
			return "", false
		}
		return protocol.FormatCommand(protocol.CommandSpeed, *msg.Speed), true
	case "status":
		return protocol.CommandStatus, true
	case "probs":
		return protocol.CommandProbs, true
	}
	return "", false
}

func serveSchema(w http.ResponseWriter, r *http.Request) {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&Message{})

	w.Header().Set("Content-Type", "application/schema+json")
	if err := json.NewEncoder(w).Encode(schema); err != nil {
		logger.WarnContext(r.Context(), "failed to write schema", "error", err)
	}
}
