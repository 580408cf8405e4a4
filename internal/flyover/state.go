package flyover

// State is the controller-wide animation state.
type State int

const (
	Idle State = iota
	Rotating
	Transitioning
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Rotating:
		return "ROTATING"
	case Transitioning:
		return "TRANSITIONING"
	default:
		return "UNKNOWN"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// allowed lists every legal state change. Transitioning → Transitioning is a
// superseded move.
var allowed = map[State][]State{
	Idle:          {Rotating, Transitioning},
	Rotating:      {Idle, Transitioning},
	Transitioning: {Idle, Rotating, Transitioning},
}

// CanTransition reports whether from → to is a legal state change.
func CanTransition(from, to State) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// setState moves to s. Staying in Idle or Rotating is not a transition.
func (c *Controller) setState(s State) {
	if s == c.state && s != Transitioning {
		return
	}
	if !CanTransition(c.state, s) {
		c.logf("[!] flyover: illegal transition %s -> %s", c.state, s)
	}
	c.logf("[*] flyover: %s -> %s", c.state, s)
	c.state = s
}
