package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"floorlink/internal/catalog"
	"floorlink/internal/domain"
	"floorlink/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cat, err := catalog.Builtin()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	svc, err := service.New(cat, nil, nil, service.DefaultOptions())
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Run(ctx)
	}()

	srv := httptest.NewServer(Chain(New(svc, nil).Routes(), Recover, CORS))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		var e ErrorResponse
		json.NewDecoder(resp.Body).Decode(&e)
		t.Fatalf("expected status %d, got %d (%s: %s)", want, resp.StatusCode, e.Error, e.Details)
	}
}

func TestItemLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/api/items", PlaceRequest{Type: "router", X: 50, Y: 60})
	expectStatus(t, resp, http.StatusCreated)
	var item domain.Item
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if item.ID != "router-1" {
		t.Fatalf("expected router-1, got %s", item.ID)
	}

	resp = do(t, srv, http.MethodPost, "/api/items", PlaceRequest{Type: "server", X: 200, Y: 60})
	expectStatus(t, resp, http.StatusCreated)

	resp = do(t, srv, http.MethodPut, "/api/items/server-1", map[string]interface{}{
		"properties": json.RawMessage(`{"uplink":"router-1","ip":"10.0.0.2"}`),
	})
	expectStatus(t, resp, http.StatusNoContent)

	resp = do(t, srv, http.MethodGet, "/api/diagram", nil)
	expectStatus(t, resp, http.StatusOK)
	var d service.DiagramView
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(d.Edges) != 1 || d.Edges[0].Color != "#27e9d9" {
		t.Fatalf("expected one uplink edge, got %+v", d.Edges)
	}

	resp = do(t, srv, http.MethodGet, "/api/diagram.dot", nil)
	expectStatus(t, resp, http.StatusOK)
	var dot bytes.Buffer
	dot.ReadFrom(resp.Body)
	if !strings.Contains(dot.String(), "->") {
		t.Errorf("expected an edge in dot output:\n%s", dot.String())
	}

	resp = do(t, srv, http.MethodPut, "/api/items/missing", map[string]string{"label": "x"})
	expectStatus(t, resp, http.StatusNotFound)

	resp = do(t, srv, http.MethodDelete, "/api/items/router-1", nil)
	expectStatus(t, resp, http.StatusNoContent)
	resp = do(t, srv, http.MethodDelete, "/api/items/router-1", nil)
	expectStatus(t, resp, http.StatusNotFound)
}

func TestPlaceUnknownType(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, srv, http.MethodPost, "/api/items", PlaceRequest{Type: "toaster"})
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestEditorEndpoints(t *testing.T) {
	srv := newTestServer(t)
	expectStatus(t, do(t, srv, http.MethodPost, "/api/items", PlaceRequest{Type: "switch", X: 10, Y: 30}), http.StatusCreated)

	resp := do(t, srv, http.MethodPost, "/api/editor/add", propertyRequest{Key: "vlan", Value: "10"})
	expectStatus(t, resp, http.StatusNotFound)

	expectStatus(t, do(t, srv, http.MethodPost, "/api/diagram/tap", idRequest{ID: "switch-1"}), http.StatusNoContent)

	resp = do(t, srv, http.MethodPost, "/api/editor/add", propertyRequest{Key: "vlan", Value: "10"})
	expectStatus(t, resp, http.StatusOK)
	var v service.EditorView
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	last := v.Rows[len(v.Rows)-1]
	if last.Key != "vlan" || last.Value != "10" {
		t.Errorf("expected vlan=10 last, got %+v", last)
	}

	expectStatus(t, do(t, srv, http.MethodPost, "/api/editor/add", propertyRequest{Key: " "}), http.StatusBadRequest)
	expectStatus(t, do(t, srv, http.MethodPost, "/api/editor/commit", FieldRequest{Kind: "value", Name: "vlan"}), http.StatusConflict)

	expectStatus(t, do(t, srv, http.MethodPost, "/api/editor/begin", FieldRequest{Kind: "key", Name: "ports"}), http.StatusOK)
	expectStatus(t, do(t, srv, http.MethodPost, "/api/editor/draft", FieldRequest{Kind: "key", Name: "ports", Text: "portcount"}), http.StatusOK)
	resp = do(t, srv, http.MethodPost, "/api/editor/commit", FieldRequest{Kind: "key", Name: "ports"})
	expectStatus(t, resp, http.StatusOK)
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var keys []string
	for _, row := range v.Rows {
		if !row.Identity {
			keys = append(keys, row.Key)
		}
	}
	if strings.Join(keys, ",") != "ip,uplink,portcount,vlan" {
		t.Errorf("unexpected key order %v", keys)
	}
}

func TestZoom(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/api/zoom", map[string]float64{"zoom": 10})
	expectStatus(t, resp, http.StatusOK)
	var z map[string]float64
	json.NewDecoder(resp.Body).Decode(&z)
	if z["zoom"] != 4 {
		t.Errorf("expected zoom clamped to 4, got %v", z["zoom"])
	}

	resp = do(t, srv, http.MethodPost, "/api/zoom", ZoomRequest{Step: "out"})
	expectStatus(t, resp, http.StatusOK)
	json.NewDecoder(resp.Body).Decode(&z)
	if z["zoom"] != 3.9 {
		t.Errorf("expected 3.9, got %v", z["zoom"])
	}

	expectStatus(t, do(t, srv, http.MethodPost, "/api/zoom", ZoomRequest{}), http.StatusBadRequest)
}

func TestProjectExportImport(t *testing.T) {
	srv := newTestServer(t)
	expectStatus(t, do(t, srv, http.MethodPost, "/api/items", PlaceRequest{Type: "router", X: 1, Y: 2}), http.StatusCreated)

	resp := do(t, srv, http.MethodGet, "/api/project/export?format=json", nil)
	expectStatus(t, resp, http.StatusOK)
	var exported bytes.Buffer
	exported.ReadFrom(resp.Body)

	other := newTestServer(t)
	req, _ := http.NewRequest(http.MethodPost, other.URL+"/api/project/import?format=json", &exported)
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	defer resp2.Body.Close()
	expectStatus(t, resp2, http.StatusNoContent)

	resp = do(t, other, http.MethodGet, "/api/snapshot", nil)
	var snap snapshotResponse
	json.NewDecoder(resp.Body).Decode(&snap)
	if len(snap.Items) != 1 || snap.Items[0].ID != "router-1" {
		t.Fatalf("expected imported router-1, got %+v", snap.Items)
	}

	expectStatus(t, do(t, other, http.MethodGet, "/api/projects", nil), http.StatusInternalServerError)
}

func TestPointerSocketDrag(t *testing.T) {
	srv := newTestServer(t)
	expectStatus(t, do(t, srv, http.MethodPost, "/api/items", PlaceRequest{Type: "router", X: 50, Y: 60}), http.StatusCreated)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/pointer"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	send := func(m PointerMessage) {
		t.Helper()
		if err := conn.WriteJSON(m); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	read := func() PointerReply {
		t.Helper()
		var r PointerReply
		if err := conn.ReadJSON(&r); err != nil {
			t.Fatalf("read: %v", err)
		}
		return r
	}

	send(PointerMessage{Type: "down", X: 55, Y: 50})
	if r := read(); r.Type != "down" || !r.Hit || r.ID != "router-1" {
		t.Fatalf("expected hit on router-1, got %+v", r)
	}
	send(PointerMessage{Type: "move", X: 120, Y: 80})
	send(PointerMessage{Type: "move", X: 200, Y: 60})
	send(PointerMessage{Type: "up"})
	if r := read(); r.Type != "up" || !r.Hit {
		t.Fatalf("expected commit, got %+v", r)
	}

	resp := do(t, srv, http.MethodGet, "/api/snapshot", nil)
	var snap snapshotResponse
	json.NewDecoder(resp.Body).Decode(&snap)
	if got := snap.Items[0].DocumentPosition; got != domain.Pt(200, 60) {
		t.Errorf("expected (200,60), got %v", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{catalog.ErrUnknownType, http.StatusBadRequest},
		{service.ErrStopped, http.StatusServiceUnavailable},
		{context.Canceled, http.StatusServiceUnavailable},
		{errFake("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

type errFake string

func (e errFake) Error() string { return string(e) }

func TestDiscoverRejectsBadTargets(t *testing.T) {
	srv := newTestServer(t)
	expectStatus(t, do(t, srv, http.MethodPost, "/api/discover", DiscoverRequest{}), http.StatusBadRequest)
	expectStatus(t, do(t, srv, http.MethodPost, "/api/discover", DiscoverRequest{Targets: []string{"10.0.0.0/99"}}), http.StatusBadRequest)
}
