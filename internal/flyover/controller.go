// Package flyover drives a continuously rotating 3D map camera around a point
// of interest.
//
// A Controller owns three cooperating parts: the rotation loop, which advances
// the heading once per display frame; the transition path, which replaces the
// loop with one animated move whenever the point of interest changes and
// re-arms the loop when the move settles; and the lifecycle monitor, which
// stops all animation while the application is not visible.
//
// A Controller is not safe for concurrent use. All of its methods, and every
// callback it schedules, must run on the goroutine that drives its
// scheduler.
package flyover

import (
	"fmt"
	"log"
	"time"

	"github.com/ivlev/flyover/internal/camera"
	"github.com/ivlev/flyover/internal/lifecycle"
	"github.com/ivlev/flyover/internal/scheduler"
)

const (
	DefaultAngularSpeed       = 0.2 // degrees per frame
	DefaultTransitionDuration = 1000 * time.Millisecond
)

// Options tunes a Controller.
type Options struct {
	Pitch              float64
	AngularSpeed       float64
	TransitionDuration time.Duration
	InitialHeading     float64
	// Logger receives state transitions. Nil disables logging.
	Logger *log.Logger
}

// DefaultOptions returns the stock flyover tuning.
func DefaultOptions() Options {
	return Options{
		Pitch:              camera.DefaultPitch,
		AngularSpeed:       DefaultAngularSpeed,
		TransitionDuration: DefaultTransitionDuration,
	}
}

// Stats counts what a Controller has done since it was mounted.
type Stats struct {
	Frames      int `yaml:"frames"`
	Immediate   int `yaml:"immediate"`
	Animated    int `yaml:"animated"`
	Transitions int `yaml:"transitions"`
	Superseded  int `yaml:"superseded"`
	Deferred    int `yaml:"deferred"`
	Touches     int `yaml:"touches"`
	Stale       int `yaml:"stale"`
}

// Controller is the flyover camera animation controller.
type Controller struct {
	surface camera.Actuator
	sched   scheduler.Scheduler
	opts    Options

	heading  float64
	target   camera.Coordinate
	altitude *float64
	phase    lifecycle.Phase
	state    State

	// pendingMove is set when the target changed while not visible; the next
	// Active transition performs the move instead of plain rotation.
	pendingMove bool
	unmounted   bool

	generation uint64
	loopToken  uint64
	timerToken uint64
	frame      scheduler.Handle
	timer      scheduler.Handle

	unsubscribe func()
	stats       Stats
}

// Mount creates a controller for a view showing center and starts it. The
// controller subscribes to source for its whole lifetime; Unmount releases
// the subscription.
//
// When the application is active the camera is placed over center at the
// initial heading and rotation starts on the next frame.
func Mount(surface camera.Actuator, sched scheduler.Scheduler, source lifecycle.Source,
	center camera.Coordinate, altitude *float64, opts Options) *Controller {

	c := &Controller{
		surface:  surface,
		sched:    sched,
		opts:     opts,
		heading:  camera.NormalizeHeading(opts.InitialHeading),
		target:   center,
		altitude: copyAltitude(altitude),
		phase:    source.Current(),
		state:    Idle,
	}
	c.unsubscribe = source.Subscribe(c.onPhase)

	c.logf("[*] flyover: mounted at %s, phase %s", center, c.phase)
	if c.phase.IsActive() {
		c.issueImmediate()
		c.startRotation()
	}
	return c
}

// Render feeds the caller's current target on every render. A center equal
// to the recorded one leaves the controller untouched; a different center
// starts a transition. Altitude changes alone never start a transition and
// take effect with the next command.
func (c *Controller) Render(center camera.Coordinate, altitude *float64) {
	if c.unmounted {
		return
	}
	c.altitude = copyAltitude(altitude)

	if center == c.target {
		return
	}

	if !c.phase.IsActive() {
		c.halt()
		c.target = center
		c.pendingMove = true
		c.stats.Deferred++
		c.logf("[*] flyover: target %s deferred until active", center)
		return
	}

	c.transition(center)
}

// Touch reports the start of a manual interaction with the map surface.
// Rotation stops and does not resume on its own until the next target change
// or Active transition.
func (c *Controller) Touch() {
	if c.unmounted {
		return
	}
	c.stats.Touches++
	c.logf("[*] flyover: manual interaction, stopping rotation")
	c.halt()
}

// Unmount tears the controller down. No callback scheduled before Unmount
// issues a command afterwards, and every later call is a no-op.
func (c *Controller) Unmount() {
	if c.unmounted {
		return
	}
	c.unmounted = true
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.halt()
	c.generation++
	c.logf("[*] flyover: unmounted at heading %.2f", c.heading)
}

// State returns the current controller state.
func (c *Controller) State() State { return c.state }

// Heading returns the current camera heading in [0,360).
func (c *Controller) Heading() float64 { return c.heading }

// Target returns the last recorded point of interest.
func (c *Controller) Target() camera.Coordinate { return c.target }

// Stats returns counters accumulated since mount.
func (c *Controller) Stats() Stats { return c.stats }

// Outstanding reports whether a rotation frame and a settle timer are
// currently scheduled.
func (c *Controller) Outstanding() (frame, timer bool) {
	return c.frame != 0, c.timer != 0
}

// Check verifies that the scheduled work matches the state: Rotating owns
// exactly one frame, Transitioning owns exactly one settle timer, and Idle
// owns neither.
func (c *Controller) Check() error {
	frame, timer := c.Outstanding()
	switch c.state {
	case Idle:
		if frame || timer {
			return fmt.Errorf("idle controller has outstanding work (frame=%v timer=%v)", frame, timer)
		}
	case Rotating:
		if !frame || timer {
			return fmt.Errorf("rotating controller must own only a frame (frame=%v timer=%v)", frame, timer)
		}
	case Transitioning:
		if frame || !timer {
			return fmt.Errorf("transitioning controller must own only a timer (frame=%v timer=%v)", frame, timer)
		}
	}
	if c.unmounted && c.state != Idle {
		return fmt.Errorf("unmounted controller in state %s", c.state)
	}
	return nil
}

// halt cancels everything scheduled and returns to Idle.
func (c *Controller) halt() {
	c.cancelLoop()
	c.cancelSettle()
	c.setState(Idle)
}

func (c *Controller) pose() camera.Pose {
	return camera.Pose{
		Center:   c.target,
		Pitch:    c.opts.Pitch,
		Altitude: copyAltitude(c.altitude),
		Heading:  c.heading,
	}
}

func (c *Controller) issueImmediate() {
	c.stats.Immediate++
	c.surface.SetCameraImmediate(c.pose())
}

func (c *Controller) nextToken() uint64 {
	c.generation++
	return c.generation
}

func (c *Controller) logf(format string, args ...any) {
	if c.opts.Logger != nil {
		c.opts.Logger.Printf(format, args...)
	}
}

func copyAltitude(a *float64) *float64 {
	if a == nil {
		return nil
	}
	v := *a
	return &v
}
