package live

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/salesdash/pkg/toast"
)

type counterView struct {
	count    int
	mounted  chan struct{}
	disposed chan struct{}
}

func newCounterView() *counterView {
	return &counterView{mounted: make(chan struct{}), disposed: make(chan struct{})}
}

func (v *counterView) Mount(ctx *Ctx) error {
	close(v.mounted)
	return nil
}

func (v *counterView) HandleEvent(ctx *Ctx, ev Event) error {
	switch ev.Name {
	case "inc":
		v.count++
	case "set":
		n, err := strconv.Atoi(ev.Value)
		if err != nil {
			return err
		}
		v.count = n
	case "async":
		go ctx.Dispatch(func() { v.count = 100 })
	case "saved":
		toast.Success(ctx, "Customer saved")
	case "leave":
		ctx.Navigate("/summary")
	case "noop":
	default:
		return errors.New("unknown event " + ev.Name)
	}
	return nil
}

func (v *counterView) Render() (Fragments, error) {
	return Fragments{
		"count":  template.HTML(strconv.Itoa(v.count)),
		"static": "<p>static</p>",
	}, nil
}

func (v *counterView) Dispose() {
	close(v.disposed)
}

type testServer struct {
	srv     *httptest.Server
	handler *Handler
	views   chan *counterView
}

func newTestServer(t *testing.T, cfg Config) *testServer {
	t.Helper()
	ts := &testServer{views: make(chan *counterView, 4)}
	ts.handler = NewHandler(func(r *http.Request, path string) (View, error) {
		if path != "/counter" {
			return nil, ErrNoView
		}
		v := newCounterView()
		ts.views <- v
		return v, nil
	}, WithConfig(cfg))

	mux := http.NewServeMux()
	mux.Handle("/live", ts.handler)
	ts.srv = httptest.NewServer(mux)
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/live?path=" + url.QueryEscape(path)
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return f
}

func sendEvent(t *testing.T, conn *websocket.Conn, ev Event) {
	t.Helper()
	if err := conn.WriteJSON(ev); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
}

// readMount consumes the initial patches, which arrive in fragment name
// order.
func readMount(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	first := readFrame(t, conn)
	if first.Type != FramePatch || first.View != "count" || first.HTML != "0" {
		t.Fatalf("Expected initial count patch, got %+v", first)
	}
	second := readFrame(t, conn)
	if second.View != "static" || second.HTML != "<p>static</p>" {
		t.Fatalf("Expected initial static patch, got %+v", second)
	}
}

func TestSessionMountSendsAllFragments(t *testing.T) {
	ts := newTestServer(t, Config{})
	conn := ts.dial(t, "/counter")
	readMount(t, conn)
}

func TestSessionPatchesOnlyChangedFragments(t *testing.T) {
	ts := newTestServer(t, Config{})
	conn := ts.dial(t, "/counter")
	readMount(t, conn)

	sendEvent(t, conn, Event{View: "count", Name: "inc"})
	f := readFrame(t, conn)
	if f.Type != FramePatch || f.View != "count" || f.HTML != "1" {
		t.Errorf("Expected count patch '1', got %+v", f)
	}

	// An event that changes nothing produces no frame, so the next frame
	// belongs to the following event.
	sendEvent(t, conn, Event{View: "count", Name: "noop"})
	sendEvent(t, conn, Event{View: "count", Name: "set", Value: "7"})
	f = readFrame(t, conn)
	if f.View != "count" || f.HTML != "7" {
		t.Errorf("Expected count patch '7', got %+v", f)
	}
}

func TestSessionDispatchRerenders(t *testing.T) {
	ts := newTestServer(t, Config{})
	conn := ts.dial(t, "/counter")
	readMount(t, conn)

	sendEvent(t, conn, Event{Name: "async"})
	f := readFrame(t, conn)
	if f.HTML != "100" {
		t.Errorf("Expected count patch '100' from dispatched callback, got %+v", f)
	}
}

func TestSessionToastAndNavigate(t *testing.T) {
	ts := newTestServer(t, Config{})
	conn := ts.dial(t, "/counter")
	readMount(t, conn)

	sendEvent(t, conn, Event{Name: "saved"})
	f := readFrame(t, conn)
	if f.Type != toast.EventName {
		t.Fatalf("Expected toast frame, got %+v", f)
	}
	payload, ok := f.Payload.(map[string]any)
	if !ok {
		t.Fatalf("Expected object payload, got %T", f.Payload)
	}
	if payload["level"] != "success" || payload["message"] != "Customer saved" {
		t.Errorf("Expected success toast, got %v", payload)
	}

	sendEvent(t, conn, Event{Name: "leave"})
	f = readFrame(t, conn)
	if f.Type != FrameNavigate || f.URL != "/summary" {
		t.Errorf("Expected navigate frame to /summary, got %+v", f)
	}
}

func TestSessionEventErrorFrame(t *testing.T) {
	ts := newTestServer(t, Config{})
	conn := ts.dial(t, "/counter")
	readMount(t, conn)

	sendEvent(t, conn, Event{Name: "explode"})
	f := readFrame(t, conn)
	if f.Type != FrameError || f.Message != "unknown event explode" {
		t.Errorf("Expected error frame, got %+v", f)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	f = readFrame(t, conn)
	if f.Type != FrameError || f.Message != "invalid event" {
		t.Errorf("Expected invalid event frame, got %+v", f)
	}
}

func TestSessionRateLimit(t *testing.T) {
	ts := newTestServer(t, Config{EventRate: 0.001, EventBurst: 1})
	conn := ts.dial(t, "/counter")
	readMount(t, conn)

	sendEvent(t, conn, Event{Name: "inc"})
	sendEvent(t, conn, Event{Name: "inc"})

	var sawPatch, sawLimit bool
	for range 2 {
		f := readFrame(t, conn)
		switch {
		case f.Type == FramePatch && f.HTML == "1":
			sawPatch = true
		case f.Type == FrameError && f.Message == "rate limited":
			sawLimit = true
		default:
			t.Errorf("Unexpected frame %+v", f)
		}
	}
	if !sawPatch || !sawLimit {
		t.Errorf("Expected one patch and one rate limit error, got patch=%v limit=%v", sawPatch, sawLimit)
	}
}

func TestHandlerRejectsUnknownPath(t *testing.T) {
	ts := newTestServer(t, Config{})
	u := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/live?path=/missing"

	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatal("Expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 response, got %v", resp)
	}
}

func TestHandlerRejectsCrossOrigin(t *testing.T) {
	ts := newTestServer(t, Config{})
	u := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/live?path=/counter"

	_, resp, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": {"http://evil.example"}})
	if err == nil {
		t.Fatal("Expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403 response, got %v", resp)
	}
}

func TestSessionCloseDisposesView(t *testing.T) {
	ts := newTestServer(t, Config{})
	conn := ts.dial(t, "/counter")
	readMount(t, conn)
	v := <-ts.views

	conn.Close()
	select {
	case <-v.disposed:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected view to be disposed after the browser disconnects")
	}

	deadline := time.Now().Add(2 * time.Second)
	for ts.handler.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := ts.handler.Len(); n != 0 {
		t.Errorf("Expected no open sessions, got %d", n)
	}
}

func TestHandlerShutdown(t *testing.T) {
	ts := newTestServer(t, Config{})
	conn := ts.dial(t, "/counter")
	readMount(t, conn)
	v := <-ts.views

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ts.handler.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	select {
	case <-v.disposed:
	default:
		t.Error("Expected view disposed after shutdown")
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("Expected normal close, got %v", err)
	}
}

func TestSameOriginCheck(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://dash.example", true},
		{"https://dash.example", true},
		{"http://other.example", false},
		{"://bad", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "http://dash.example/live", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := SameOriginCheck(r); got != tt.want {
			t.Errorf("SameOriginCheck(%q) = %v, expected %v", tt.origin, got, tt.want)
		}
	}
}
