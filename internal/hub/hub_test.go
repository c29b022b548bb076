package hub

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestBroadcastReachesClient(t *testing.T) {
	h := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	line, err := r.ReadString('\n')
	if err != nil || !strings.HasPrefix(line, ": connected") {
		t.Fatalf("expected connected comment, got %q (%v)", line, err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	h.Broadcast("item_added", map[string]string{"item_id": "router-1"})

	var got []string
	for len(got) < 2 {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		got = append(got, line)
	}
	if got[0] != "event: item_added" {
		t.Errorf("expected event line, got %q", got[0])
	}
	if got[1] != `data: {"item_id":"router-1"}` {
		t.Errorf("expected data line, got %q", got[1])
	}
}

func TestEncodeUnnamed(t *testing.T) {
	frame, err := encode(message{payload: 1})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(frame) != "data: 1\n\n" {
		t.Errorf("unexpected frame %q", frame)
	}
}
