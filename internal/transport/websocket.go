package transport

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/synheart/synheart-bpsim/internal/encoding"
	"github.com/synheart/synheart-bpsim/internal/models"
)

// WebSocketHub broadcasts readings to WebSocket clients
type WebSocketHub struct {
	encoder  encoding.Encoder
	upgrader websocket.Upgrader
	clients  map[*websocket.Conn]bool
	mu       sync.Mutex
	logger   *zap.Logger
}

// NewWebSocketHub creates a hub. JSON readings are sent as text frames,
// anything else as binary frames.
func NewWebSocketHub(encoder encoding.Encoder, logger *zap.Logger) *WebSocketHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketHub{
		encoder: encoder,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local tooling, any origin
			},
		},
		clients: make(map[*websocket.Conn]bool),
		logger:  logger,
	}
}

func (h *WebSocketHub) Name() string { return "websocket" }

func (h *WebSocketHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("websocket client connected",
		zap.String("remote", r.RemoteAddr),
		zap.Int("clients", clientCount),
	)

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		clientCount := len(h.clients)
		h.mu.Unlock()

		conn.Close()
		h.logger.Info("websocket client disconnected", zap.Int("clients", clientCount))
	}()

	// clients only listen; reading detects the disconnect
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Broadcast sends a reading to all connected clients
func (h *WebSocketHub) Broadcast(reading models.Reading) error {
	data, err := h.encoder.Encode(reading)
	if err != nil {
		return fmt.Errorf("failed to encode reading: %w", err)
	}

	messageType := websocket.BinaryMessage
	if h.encoder.ContentType() == "application/json" {
		messageType = websocket.TextMessage
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if err := client.WriteMessage(messageType, data); err != nil {
			// the connection handler removes the client
			h.logger.Debug("websocket send failed", zap.Error(err))
		}
	}
	return nil
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *WebSocketHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.Close()
	}
	h.clients = make(map[*websocket.Conn]bool)
}
