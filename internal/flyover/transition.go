package flyover

import (
	"github.com/ivlev/flyover/internal/camera"
)

// transition hands the surface from the rotation loop to a single animated
// move to center, then back to the loop once the move has settled. The whole
// sequence runs inside one call so no rotation step can interleave.
//
// The settle timer stands in for a completion signal the surface does not
// provide, so its delay equals the move duration.
func (c *Controller) transition(center camera.Coordinate) {
	if c.state == Transitioning {
		c.stats.Superseded++
		c.logf("[*] flyover: move to %s superseded by %s", c.target, center)
	}

	c.cancelLoop()
	c.cancelSettle()
	c.target = center
	c.pendingMove = false

	c.stats.Transitions++
	c.stats.Animated++
	c.surface.SetCameraAnimated(c.pose(), c.opts.TransitionDuration)

	token := c.nextToken()
	c.timerToken = token
	c.setState(Transitioning)
	c.timer = c.sched.AfterFunc(c.opts.TransitionDuration, func() { c.settle(token) })
}

// settle resumes rotation from the unchanged heading.
func (c *Controller) settle(token uint64) {
	if c.unmounted || token != c.timerToken || c.state != Transitioning {
		c.stats.Stale++
		return
	}
	c.timer = 0
	c.timerToken = 0

	if !c.phase.IsActive() {
		c.setState(Idle)
		return
	}
	c.armLoop()
}

func (c *Controller) cancelSettle() {
	if c.timer != 0 {
		c.sched.CancelTimer(c.timer)
		c.timer = 0
	}
	c.timerToken = 0
}
