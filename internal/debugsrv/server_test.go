package debugsrv

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Faultbox/tristream/internal/stream"
	"github.com/Faultbox/tristream/pkg/tricoord"
)

type staticSource struct {
	snap *stream.Snapshot
}

func (s staticSource) Snapshot() *stream.Snapshot { return s.snap }

func testSnapshot() *stream.Snapshot {
	return &stream.Snapshot{
		Tick:        7,
		PlayerKnown: true,
		InRange:     []tricoord.TriCoord{tricoord.New(0, 0, 0), tricoord.New(0, 0, 1)},
		Generated:   []tricoord.TriCoord{tricoord.New(0, 0, 0)},
		Generating:  []tricoord.TriCoord{tricoord.New(0, 0, 1)},
	}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server, *stream.Control) {
	t.Helper()
	ctl := stream.NewControl(stream.ControlValues{Radius: 20, Active: true, Material: "shiny"})
	s := New(Config{PushInterval: 20 * time.Millisecond}, staticSource{testSnapshot()}, ctl, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts, ctl
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil skips pushed state messages until one of the given type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var m Message
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("waiting for %q: %v", typ, err)
		}
		if m.Type == typ {
			return m
		}
	}
}

func TestStateEndpoint(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/state")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var st State
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Snapshot == nil || st.Snapshot.Tick != 7 {
		t.Errorf("unexpected snapshot %+v", st.Snapshot)
	}
	if len(st.Outlines) != 2 {
		t.Errorf("expected 2 outlines, got %d", len(st.Outlines))
	}
	if len(st.Lines) != 0 {
		t.Errorf("expected no gizmo lines with gizmos off, got %d", len(st.Lines))
	}
}

func TestStateServesGizmoLines(t *testing.T) {
	snap := testSnapshot()
	snap.Player = tricoord.Coord[float32]{X: 1, Z: 2}
	snap.Control = stream.ControlValues{Radius: 20, OriginGizmo: true, ChunkGizmo: true}
	s := New(Config{}, staticSource{snap}, stream.NewControl(snap.Control), nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/state")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var st State
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Origin axes, three edges per outline, and the default radius circle.
	want := 4 + 6*len(st.Outlines) + 2*64
	if len(st.Lines) != want {
		t.Errorf("expected %d line vertices, got %d", want, len(st.Lines))
	}
}

func TestWebsocketTogglesGizmos(t *testing.T) {
	_, ts, ctl := newTestServer(t)
	conn := dial(t, ts)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"chunk_gizmo":true,"origin_gizmo":true}`)); err != nil {
		t.Fatal(err)
	}
	readUntil(t, conn, "ack")
	if v := ctl.Values(); !v.ChunkGizmo || !v.OriginGizmo || v.Radius != 20 {
		t.Errorf("unexpected control after toggling gizmos: %+v", v)
	}
}

func TestDecodeControlRadiusCeiling(t *testing.T) {
	if _, err := decodeControl([]byte(fmt.Sprintf(`{"radius":%d}`, stream.MaxRadius))); err != nil {
		t.Errorf("expected radius %d accepted, got %v", stream.MaxRadius, err)
	}
	if _, err := decodeControl([]byte(fmt.Sprintf(`{"radius":%d}`, stream.MaxRadius+1))); err == nil {
		t.Errorf("expected radius %d rejected", stream.MaxRadius+1)
	}
}

func TestStateEndpointRejectsPost(t *testing.T) {
	_, ts, _ := newTestServer(t)
	resp, err := http.Post(ts.URL+"/state", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}
}

func TestWebsocketPushesState(t *testing.T) {
	_, ts, _ := newTestServer(t)
	conn := dial(t, ts)

	m := readUntil(t, conn, "state")
	if m.State == nil || m.State.Snapshot.Tick != 7 {
		t.Errorf("unexpected pushed state %+v", m.State)
	}
}

func TestWebsocketAppliesControl(t *testing.T) {
	_, ts, ctl := newTestServer(t)
	conn := dial(t, ts)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"active":false,"radius":35.5,"material":"my_mat"}`)); err != nil {
		t.Fatal(err)
	}
	m := readUntil(t, conn, "ack")
	want := stream.ControlValues{Radius: 35.5, Active: false, Material: "my_mat"}
	if m.Control == nil || *m.Control != want {
		t.Errorf("ack control = %+v, want %+v", m.Control, want)
	}
	if ctl.Values() != want {
		t.Errorf("control = %+v, want %+v", ctl.Values(), want)
	}
}

func TestWebsocketRejectsInvalidControl(t *testing.T) {
	_, ts, ctl := newTestServer(t)
	conn := dial(t, ts)
	before := ctl.Values()

	for _, msg := range []string{
		`{"radius":1000}`,
		`{"radius":-1}`,
		`{"active":"yes"}`,
		`{"speed":3}`,
		`{}`,
		`not json`,
	} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatal(err)
		}
		if m := readUntil(t, conn, "error"); m.Error == "" {
			t.Errorf("%s: expected an error message", msg)
		}
	}
	if ctl.Values() != before {
		t.Errorf("invalid messages changed control: %+v", ctl.Values())
	}
}

func TestDecodeControlPartial(t *testing.T) {
	u, err := decodeControl([]byte(`{"radius":12}`))
	if err != nil {
		t.Fatalf("decodeControl() error = %v", err)
	}
	if u.Radius == nil || *u.Radius != 12 || u.Active != nil || u.Material != nil {
		t.Errorf("unexpected update %+v", u)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctl := stream.NewControl(stream.ControlValues{})
	s := New(Config{}, staticSource{testSnapshot()}, ctl, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/state")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
