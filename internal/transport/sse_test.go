package transport

import (
	"bufio"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/synheart/synheart-bpsim/internal/encoding"
)

func TestSSEHub_Broadcast(t *testing.T) {
	hub := NewSSEHub(encoding.NewJSONEncoder(), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("wrong content type: %s", ct)
	}

	if !waitFor(t, time.Second, func() bool { return hub.ClientCount() == 1 }) {
		t.Fatalf("expected 1 client, got %d", hub.ClientCount())
	}

	if err := hub.Broadcast(testReading(7)); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 3 {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		lines = append(lines, strings.TrimSpace(line))
	}

	if lines[0] != "id: 7" {
		t.Errorf("id line = %q, want id: 7", lines[0])
	}
	if lines[1] != "event: reading" {
		t.Errorf("event line = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "data: {") || !strings.Contains(lines[2], `"sequence":7`) {
		t.Errorf("data line = %q", lines[2])
	}
}

func TestSSEHub_ProtobufIsBase64(t *testing.T) {
	hub := NewSSEHub(encoding.NewProtobufEncoder(), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer resp.Body.Close()

	waitFor(t, time.Second, func() bool { return hub.ClientCount() == 1 })
	reading := testReading(2)
	hub.Broadcast(reading)

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload, err := base64.StdEncoding.DecodeString(strings.TrimSpace(strings.TrimPrefix(line, "data: ")))
		if err != nil {
			t.Fatalf("payload is not base64: %v", err)
		}
		decoded, err := encoding.DecodeProtobuf(payload)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if decoded != reading {
			t.Errorf("decoded = %+v, want %+v", decoded, reading)
		}
		return
	}
}

func TestSSEHub_ClientDisconnect(t *testing.T) {
	hub := NewSSEHub(encoding.NewJSONEncoder(), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	if !waitFor(t, time.Second, func() bool { return hub.ClientCount() == 1 }) {
		t.Fatalf("expected 1 client, got %d", hub.ClientCount())
	}

	cancel()
	resp.Body.Close()

	if !waitFor(t, time.Second, func() bool { return hub.ClientCount() == 0 }) {
		t.Errorf("expected 0 clients after disconnect, got %d", hub.ClientCount())
	}
}

func TestSSEHub_BroadcastWithoutClients(t *testing.T) {
	hub := NewSSEHub(encoding.NewJSONEncoder(), nil)
	if err := hub.Broadcast(testReading(1)); err != nil {
		t.Errorf("broadcast without clients: %v", err)
	}
}
