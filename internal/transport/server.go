package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/synheart/synheart-bpsim/internal/models"
)

// Server hosts broadcast hubs and auxiliary handlers on one HTTP listener
type Server struct {
	host   string
	port   int
	mux    *http.ServeMux
	hubs   map[string]Hub
	server *http.Server
	logger *zap.Logger

	mu   sync.Mutex
	addr net.Addr
}

// NewServer creates a server. Port 0 picks a free port.
func NewServer(host string, port int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		host:   host,
		port:   port,
		mux:    http.NewServeMux(),
		hubs:   make(map[string]Hub),
		logger: logger,
	}
	s.mux.HandleFunc("/", s.handleRoot)
	return s
}

// Mount serves hub at path
func (s *Server) Mount(path string, hub Hub) {
	s.hubs[path] = hub
	s.mux.Handle(path, hub)
}

// Handle serves an auxiliary handler at path
func (s *Server) Handle(path string, handler http.Handler) {
	s.mux.Handle(path, handler)
}

// Handler returns the server's request router
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens and serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", s.host, s.port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.mu.Lock()
	s.addr = ln.Addr()
	s.server = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	server := s.server
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("stream server listening", zap.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("stream server failed: %w", err)
		}
		return nil
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "Synheart BP Simulator\n\n")
	for _, path := range s.paths() {
		hub := s.hubs[path]
		fmt.Fprintf(w, "%s endpoint: %s (clients: %d)\n", hub.Name(), path, hub.ClientCount())
	}
}

func (s *Server) paths() []string {
	paths := make([]string, 0, len(s.hubs))
	for path := range s.hubs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Broadcast sends a reading to every hub
func (s *Server) Broadcast(reading models.Reading) {
	for _, path := range s.paths() {
		if err := s.hubs[path].Broadcast(reading); err != nil {
			s.logger.Warn("broadcast failed", zap.String("hub", s.hubs[path].Name()), zap.Error(err))
		}
	}
}

// BroadcastFromChannel broadcasts readings until the channel closes or ctx is cancelled
func (s *Server) BroadcastFromChannel(ctx context.Context, readings <-chan models.Reading) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case reading, ok := <-readings:
			if !ok {
				return nil
			}
			s.Broadcast(reading)
		}
	}
}

// ClientCounts returns connected clients per hub name
func (s *Server) ClientCounts() map[string]int {
	out := make(map[string]int, len(s.hubs))
	for _, hub := range s.hubs {
		out[hub.Name()] += hub.ClientCount()
	}
	return out
}

// Addr returns the bound address once Start is listening
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Shutdown disconnects clients and stops the server
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, hub := range s.hubs {
		hub.Close()
	}

	s.mu.Lock()
	server := s.server
	s.mu.Unlock()
	if server != nil {
		return server.Shutdown(ctx)
	}
	return nil
}
