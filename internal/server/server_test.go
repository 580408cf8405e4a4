package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ivlev/flyover/internal/camera"
	"github.com/ivlev/flyover/internal/flyover"
	"github.com/ivlev/flyover/internal/lifecycle"
	"github.com/ivlev/flyover/internal/scheduler"
	"github.com/ivlev/flyover/internal/surface"
)

var center = camera.Coordinate{Latitude: 37.77, Longitude: -122.42}

type event struct {
	kind     string
	center   camera.Coordinate
	altitude *float64
	phase    lifecycle.Phase
}

type fakeHandler struct {
	events chan event
}

func (f *fakeHandler) Target(c camera.Coordinate, alt *float64) {
	f.events <- event{kind: "target", center: c, altitude: alt}
}

func (f *fakeHandler) Lifecycle(p lifecycle.Phase) {
	f.events <- event{kind: "lifecycle", phase: p}
}

func (f *fakeHandler) Touch() { f.events <- event{kind: "touch"} }

func startHub(t *testing.T, handler Handler) (*Hub, string) {
	t.Helper()
	return startHubWith(t, NewHub(camera.InitialRegion(center), "3d", handler, nil))
}

func startHubWith(t *testing.T, hub *Hub) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(hub.Mux())
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	var m Message
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	return m
}

func TestHubHelloAndBroadcast(t *testing.T) {
	hub, url := startHub(t, nil)
	conn := dial(t, url)

	hello := read(t, conn)
	if hello.Type != MessageTypeHello {
		t.Fatalf("Expected hello, got %s", hello.Type)
	}
	if hello.Client == "" {
		t.Error("Expected a client id")
	}
	if hello.Region == nil || hello.Region.LatitudeDelta != camera.DefaultLatitudeDelta || hello.Region.Center != center {
		t.Errorf("Unexpected region: %+v", hello.Region)
	}
	if hello.Backend != "3d" {
		t.Errorf("Expected backend 3d, got %q", hello.Backend)
	}
	if hello.Supports3D == nil || !*hello.Supports3D {
		t.Errorf("Expected supports_3d true, got %v", hello.Supports3D)
	}

	hub.SetCameraAnimated(camera.Pose{Center: center, Pitch: 50, Heading: 40}, time.Second)
	m := read(t, conn)
	if m.Type != MessageTypeCamera || m.Mode != ModeAnimated {
		t.Fatalf("Expected animated camera message, got %s/%s", m.Type, m.Mode)
	}
	if m.DurationMS != 1000 {
		t.Errorf("Expected duration 1000ms, got %d", m.DurationMS)
	}
	if m.Pose == nil || m.Pose.Heading != 40 || m.Pose.Pitch != 50 {
		t.Errorf("Unexpected pose: %+v", m.Pose)
	}

	hub.SetCameraImmediate(camera.Pose{Center: center, Pitch: 50, Heading: 39.8})
	if m := read(t, conn); m.Mode != ModeImmediate || m.Pose.Heading != 39.8 {
		t.Errorf("Expected immediate at 39.8, got %s at %+v", m.Mode, m.Pose)
	}
}

func TestHubReplaysLastCommand(t *testing.T) {
	hub, url := startHub(t, nil)
	first := dial(t, url)
	read(t, first)

	hub.SetCameraImmediate(camera.Pose{Center: center, Heading: 12})
	read(t, first)

	late := dial(t, url)
	read(t, late) // hello
	m := read(t, late)
	if m.Type != MessageTypeCamera || m.Pose.Heading != 12 {
		t.Errorf("Expected replay of heading 12, got %s %+v", m.Type, m.Pose)
	}
}

func TestHubInbound(t *testing.T) {
	handler := &fakeHandler{events: make(chan event, 8)}
	_, url := startHub(t, handler)
	conn := dial(t, url)
	read(t, conn)

	dest := camera.Coordinate{Latitude: 40.7, Longitude: -74}
	msgs := []Message{
		{Type: MessageTypeTarget, Center: &dest, Altitude: camera.Float(900)},
		{Type: MessageTypeLifecycle, Phase: "background"},
		{Type: MessageTypeTouch},
	}
	for _, m := range msgs {
		if err := conn.WriteJSON(m); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{"target", "lifecycle", "touch"}
	for i, kind := range want {
		select {
		case ev := <-handler.events:
			if ev.kind != kind {
				t.Fatalf("Event %d: expected %s, got %s", i, kind, ev.kind)
			}
			if kind == "target" && (ev.center != dest || ev.altitude == nil || *ev.altitude != 900) {
				t.Errorf("Unexpected target event: %+v", ev)
			}
			if kind == "lifecycle" && ev.phase != lifecycle.Background {
				t.Errorf("Expected background, got %s", ev.phase)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("Timed out waiting for %s", kind)
		}
	}
}

func TestHubRejectsBadMessages(t *testing.T) {
	handler := &fakeHandler{events: make(chan event, 8)}
	_, url := startHub(t, handler)
	conn := dial(t, url)
	read(t, conn)

	tests := []struct {
		name string
		raw  string
	}{
		{"unknown type", `{"type":"warp"}`},
		{"target without center", `{"type":"target"}`},
		{"bad phase", `{"type":"lifecycle","phase":"asleep"}`},
		{"not json", `{{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.raw)); err != nil {
				t.Fatal(err)
			}
			m := read(t, conn)
			if m.Type != MessageTypeError || m.Error == "" {
				t.Errorf("Expected error reply, got %+v", m)
			}
		})
	}

	select {
	case ev := <-handler.events:
		t.Errorf("Expected no events, got %+v", ev)
	default:
	}
}

// syncPoster runs posted work immediately.
type syncPoster struct{}

func (syncPoster) Post(fn func()) bool { fn(); return true }

type recorder struct{ poses []camera.Pose }

func (r *recorder) SetCameraImmediate(p camera.Pose) { r.poses = append(r.poses, p) }

func (r *recorder) SetCameraAnimated(p camera.Pose, _ time.Duration) {
	r.poses = append(r.poses, p)
}

func TestBridgeDrivesController(t *testing.T) {
	clock := scheduler.NewVirtual(time.Unix(0, 0), 60)
	phases := lifecycle.NewBroadcaster(lifecycle.Active)
	bridge := NewBridge(syncPoster{}, phases, camera.Float(500))
	surf := &recorder{}
	ctrl := flyover.Mount(surf, clock, phases, center, camera.Float(500), flyover.DefaultOptions())
	bridge.Attach(ctrl)

	dest := camera.Coordinate{Latitude: 40.7, Longitude: -74}
	bridge.Target(dest, nil)
	if ctrl.State() != flyover.Transitioning {
		t.Fatalf("Expected TRANSITIONING, got %s", ctrl.State())
	}
	last := surf.poses[len(surf.poses)-1]
	if last.Center != dest || last.Altitude == nil || *last.Altitude != 500 {
		t.Errorf("Expected move to %s at 500m, got %s", dest, last)
	}

	bridge.Lifecycle(lifecycle.Background)
	if ctrl.State() != flyover.Idle {
		t.Errorf("Expected IDLE after background, got %s", ctrl.State())
	}

	bridge.Lifecycle(lifecycle.Active)
	if ctrl.State() != flyover.Rotating {
		t.Errorf("Expected ROTATING after active, got %s", ctrl.State())
	}

	bridge.Touch()
	if ctrl.State() != flyover.Idle {
		t.Errorf("Expected IDLE after touch, got %s", ctrl.State())
	}
}

func TestHubHelloFlatBackend(t *testing.T) {
	hub := NewHub(camera.InitialRegion(center), "flat", nil, nil)
	hub.SetSupports3D(surface.Supports3D(&surface.Flat{}))
	_, url := startHubWith(t, hub)
	conn := dial(t, url)

	hello := read(t, conn)
	if hello.Backend != "flat" {
		t.Errorf("Expected backend flat, got %q", hello.Backend)
	}
	if hello.Supports3D == nil || *hello.Supports3D {
		t.Errorf("Expected supports_3d false, got %v", hello.Supports3D)
	}
}

func TestHubReadLimit(t *testing.T) {
	handler := &fakeHandler{events: make(chan event, 8)}
	_, url := startHub(t, handler)
	conn := dial(t, url)
	read(t, conn)

	big := `{"type":"touch","error":"` + strings.Repeat("x", 2*maxMessageSize) + `"}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(big)); err != nil {
		t.Fatal(err)
	}

	// The oversized frame closes the connection instead of reaching the handler.
	var m Message
	if err := conn.ReadJSON(&m); err == nil {
		t.Errorf("Expected connection to close, got %+v", m)
	}
	select {
	case ev := <-handler.events:
		t.Errorf("Expected no events, got %+v", ev)
	default:
	}
}
