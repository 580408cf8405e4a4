package flyover

import "github.com/ivlev/flyover/internal/lifecycle"

// onPhase reacts to lifecycle changes. Becoming active resumes rotation
// unless a transition is already in flight, whose own settle timer will do
// it. Any other phase stops all animation work.
func (c *Controller) onPhase(p lifecycle.Phase) {
	if c.unmounted {
		return
	}
	prev := c.phase
	c.phase = p

	if !p.IsActive() {
		if prev.IsActive() {
			c.logf("[*] flyover: %s, stopping animation", p)
		}
		c.halt()
		return
	}

	if prev.IsActive() || c.state == Transitioning {
		return
	}
	if c.pendingMove {
		c.transition(c.target)
		return
	}
	c.startRotation()
}
