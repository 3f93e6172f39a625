package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/synheart/synheart-bpsim/internal/encoding"
	"github.com/synheart/synheart-bpsim/internal/models"
)

func startServer(t *testing.T) (*Server, *WebSocketHub, context.CancelFunc) {
	t.Helper()
	ws := NewWebSocketHub(encoding.NewJSONEncoder(), nil)
	server := NewServer("127.0.0.1", 0, nil)
	server.Mount("/bp/ws", ws)
	server.Mount("/bp/sse", NewSSEHub(encoding.NewJSONEncoder(), nil))
	server.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	ctx, cancel := context.WithCancel(context.Background())
	go server.Start(ctx)

	if !waitFor(t, time.Second, func() bool { return server.Addr() != nil }) {
		cancel()
		t.Fatal("server did not start listening")
	}
	return server, ws, cancel
}

func TestServer_Root(t *testing.T) {
	server, _, cancel := startServer(t)
	defer cancel()

	resp, err := http.Get("http://" + server.Addr().String() + "/")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{"websocket endpoint: /bp/ws", "sse endpoint: /bp/sse"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("root page missing %q:\n%s", want, body)
		}
	}

	resp, err = http.Get("http://" + server.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
}

func TestServer_BroadcastFromChannel(t *testing.T) {
	server, ws, cancel := startServer(t)
	defer cancel()

	conn := dialHub(t, "http://"+server.Addr().String()+"/bp/ws")
	defer conn.Close()
	waitFor(t, time.Second, func() bool { return ws.ClientCount() == 1 })

	if got := server.ClientCounts()["websocket"]; got != 1 {
		t.Errorf("websocket clients = %d, want 1", got)
	}

	readings := make(chan models.Reading, 3)
	for i := int64(1); i <= 3; i++ {
		readings <- testReading(i)
	}
	close(readings)

	if err := server.BroadcastFromChannel(context.Background(), readings); err != nil {
		t.Fatalf("broadcast returned error: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for want := int64(1); want <= 3; want++ {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		var got models.Reading
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if got.Sequence != want {
			t.Errorf("sequence = %d, want %d", got.Sequence, want)
		}
	}
}

func TestServer_StopsOnCancel(t *testing.T) {
	server := NewServer("127.0.0.1", 0, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()
	waitFor(t, time.Second, func() bool { return server.Addr() != nil })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("start returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
