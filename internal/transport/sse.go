package transport

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/synheart/synheart-bpsim/internal/encoding"
	"github.com/synheart/synheart-bpsim/internal/models"
)

// SSEHub broadcasts readings via Server-Sent Events. Non-JSON payloads are
// base64 encoded to fit the text protocol.
type SSEHub struct {
	encoder encoding.Encoder
	clients map[chan []byte]bool
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewSSEHub creates a new SSE hub
func NewSSEHub(encoder encoding.Encoder, logger *zap.Logger) *SSEHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SSEHub{
		encoder: encoder,
		clients: make(map[chan []byte]bool),
		logger:  logger,
	}
}

func (h *SSEHub) Name() string { return "sse" }

func (h *SSEHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	clientChan := make(chan []byte, 100)
	h.addClient(clientChan)
	defer h.removeClient(clientChan)

	h.logger.Info("sse client connected", zap.Int("clients", h.ClientCount()))

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-clientChan:
			if !ok {
				return
			}
			w.Write(frame)
			flusher.Flush()
		}
	}
}

func (h *SSEHub) addClient(ch chan []byte) {
	h.mu.Lock()
	h.clients[ch] = true
	h.mu.Unlock()
}

func (h *SSEHub) removeClient(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.clients[ch]; exists {
		delete(h.clients, ch)
		close(ch)
		h.logger.Info("sse client disconnected", zap.Int("clients", len(h.clients)))
	}
}

// Broadcast sends a reading to all connected clients. Clients with a full
// buffer miss the reading.
func (h *SSEHub) Broadcast(reading models.Reading) error {
	if h.ClientCount() == 0 {
		return nil
	}

	data, err := h.encoder.Encode(reading)
	if err != nil {
		return fmt.Errorf("failed to encode reading: %w", err)
	}
	if h.encoder.ContentType() != "application/json" {
		data = []byte(base64.StdEncoding.EncodeToString(data))
	}
	frame := []byte(fmt.Sprintf("id: %d\nevent: reading\ndata: %s\n\n", reading.Sequence, data))

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.clients {
		select {
		case ch <- frame:
		default:
		}
	}
	return nil
}

// ClientCount returns connected client count
func (h *SSEHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *SSEHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		close(ch)
	}
	h.clients = make(map[chan []byte]bool)
}
