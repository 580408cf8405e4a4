package surface

import (
	"time"

	"github.com/ivlev/flyover/internal/camera"
)

// Simulated is an in-memory map surface. Immediate commands jump to the
// pose; animated commands ease from the displayed pose to the target over
// the requested duration.
type Simulated struct {
	now func() time.Time

	from     camera.Pose
	to       camera.Pose
	start    time.Time
	duration time.Duration
	placed   bool
}

// NewSimulated creates a surface that reads time from now.
func NewSimulated(now func() time.Time) *Simulated {
	return &Simulated{now: now}
}

func (s *Simulated) SetCameraImmediate(p camera.Pose) {
	s.from, s.to = p, p
	s.duration = 0
	s.placed = true
}

func (s *Simulated) SetCameraAnimated(p camera.Pose, d time.Duration) {
	t := s.now()
	if !s.placed {
		s.SetCameraImmediate(p)
		return
	}
	s.from = s.PoseAt(t)
	s.to = p
	s.start = t
	s.duration = d
}

// Placed reports whether any command reached the surface.
func (s *Simulated) Placed() bool { return s.placed }

// Animating reports whether an animated move is still in progress.
func (s *Simulated) Animating() bool {
	return s.duration > 0 && s.now().Before(s.start.Add(s.duration))
}

// Pose returns the pose displayed right now.
func (s *Simulated) Pose() camera.Pose { return s.PoseAt(s.now()) }

// PoseAt calculates the displayed pose at t by interpolating the current
// animated move.
func (s *Simulated) PoseAt(t time.Time) camera.Pose {
	if s.duration <= 0 || !t.Before(s.start.Add(s.duration)) {
		return s.to
	}
	if t.Before(s.start) {
		return s.from
	}

	// Calculate interpolation factor (0.0 to 1.0)
	k := float64(t.Sub(s.start)) / float64(s.duration)
	k = easeInOutCubic(k)

	p := camera.Pose{
		Center: camera.Coordinate{
			Latitude:  lerp(s.from.Center.Latitude, s.to.Center.Latitude, k),
			Longitude: lerp(s.from.Center.Longitude, s.to.Center.Longitude, k),
		},
		Pitch:    lerp(s.from.Pitch, s.to.Pitch, k),
		Heading:  lerpHeading(s.from.Heading, s.to.Heading, k),
		Altitude: s.to.Altitude,
	}
	if s.from.Altitude != nil && s.to.Altitude != nil {
		p.Altitude = camera.Float(lerp(*s.from.Altitude, *s.to.Altitude, k))
	}
	return p
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// lerpHeading interpolates along the shorter arc.
func lerpHeading(a, b, t float64) float64 {
	d := camera.NormalizeHeading(b - a)
	if d > 180 {
		d -= 360
	}
	return camera.NormalizeHeading(a + d*t)
}

// easeInOutCubic applies smooth easing function
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

// pow calculates x^n
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}
