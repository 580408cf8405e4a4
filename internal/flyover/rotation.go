package flyover

import "github.com/ivlev/flyover/internal/camera"

// startRotation arms the per-frame loop. The first step runs on the next
// display frame and continues from the current heading. Rotation never runs
// while the application is not active, and a running loop is left alone.
func (c *Controller) startRotation() {
	if c.unmounted || !c.phase.IsActive() {
		return
	}
	if c.state == Rotating && c.frame != 0 {
		return
	}
	c.armLoop()
}

// armLoop takes the surface for the rotation loop. Any settle timer is
// cancelled first.
func (c *Controller) armLoop() {
	c.cancelSettle()
	c.cancelLoop()

	token := c.nextToken()
	c.loopToken = token
	c.setState(Rotating)
	c.scheduleStep(token)
}

func (c *Controller) scheduleStep(token uint64) {
	c.frame = c.sched.RequestFrame(func() { c.step(token) })
}

// step advances the heading by one frame and commands the surface.
func (c *Controller) step(token uint64) {
	if c.unmounted || token != c.loopToken || c.state != Rotating {
		c.stats.Stale++
		return
	}
	c.frame = 0

	c.heading = camera.NormalizeHeading(c.heading - c.opts.AngularSpeed)
	c.stats.Frames++
	c.issueImmediate()

	c.scheduleStep(token)
}

// stopRotation cancels the loop. Calling it with nothing scheduled changes
// nothing.
func (c *Controller) stopRotation() {
	c.cancelLoop()
	if c.state == Rotating {
		c.setState(Idle)
	}
}

func (c *Controller) cancelLoop() {
	if c.frame != 0 {
		c.sched.CancelFrame(c.frame)
		c.frame = 0
	}
	c.loopToken = 0
}
