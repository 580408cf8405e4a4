package server

import (
	"github.com/ivlev/flyover/internal/camera"
	"github.com/ivlev/flyover/internal/flyover"
	"github.com/ivlev/flyover/internal/lifecycle"
)

// Poster runs work on the goroutine that owns a controller.
type Poster interface {
	Post(fn func()) bool
}

// Bridge is a Handler that forwards client events to a controller on its
// own goroutine. A target without an altitude keeps the last one sent.
type Bridge struct {
	loop     Poster
	phases   *lifecycle.Broadcaster
	ctrl     *flyover.Controller
	altitude *float64
}

func NewBridge(loop Poster, phases *lifecycle.Broadcaster, altitude *float64) *Bridge {
	return &Bridge{loop: loop, phases: phases, altitude: altitude}
}

// Attach sets the controller events are delivered to. It must be called
// before the first client connects.
func (b *Bridge) Attach(ctrl *flyover.Controller) { b.ctrl = ctrl }

func (b *Bridge) Target(center camera.Coordinate, altitude *float64) {
	b.loop.Post(func() {
		if altitude != nil {
			b.altitude = altitude
		}
		b.ctrl.Render(center, b.altitude)
	})
}

func (b *Bridge) Lifecycle(p lifecycle.Phase) {
	b.loop.Post(func() { b.phases.Set(p) })
}

func (b *Bridge) Touch() {
	b.loop.Post(func() { b.ctrl.Touch() })
}
