package surface

import (
	"math"
	"testing"
	"time"

	"github.com/ivlev/flyover/internal/camera"
)

func TestSimulatedAnimatedMove(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSimulated(func() time.Time { return now })

	s.SetCameraImmediate(camera.Pose{Center: camera.Coordinate{Latitude: 0, Longitude: 0}, Pitch: 50, Heading: 10})
	s.SetCameraAnimated(camera.Pose{Center: camera.Coordinate{Latitude: 10, Longitude: 20}, Pitch: 50, Heading: 10}, time.Second)

	tests := []struct {
		offset  time.Duration
		wantLat float64
	}{
		{0, 0.0},                      // start of the move
		{500 * time.Millisecond, 5.0}, // midpoint of the easing curve
		{time.Second, 10.0},           // settled
		{2 * time.Second, 10.0},       // after the move
	}

	for _, tt := range tests {
		t.Run(tt.offset.String(), func(t *testing.T) {
			p := s.PoseAt(now.Add(tt.offset))
			if math.Abs(p.Center.Latitude-tt.wantLat) > 1e-9 {
				t.Errorf("At %v: expected latitude %.2f, got %.4f", tt.offset, tt.wantLat, p.Center.Latitude)
			}
		})
	}

	// Easing: a quarter of the time covers much less than a quarter of the distance.
	quarter := s.PoseAt(now.Add(250 * time.Millisecond))
	if quarter.Center.Latitude >= 2.5 {
		t.Errorf("Expected eased progress below 2.5 at 250ms, got %.4f", quarter.Center.Latitude)
	}

	if !s.Animating() {
		t.Error("Expected surface to be animating at t=0")
	}
	now = now.Add(time.Second)
	if s.Animating() {
		t.Error("Expected animation finished after 1s")
	}
}

func TestSimulatedFirstAnimatedCommandPlaces(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSimulated(func() time.Time { return now })

	s.SetCameraAnimated(camera.Pose{Center: camera.Coordinate{Latitude: 3, Longitude: 4}}, time.Second)
	if !s.Placed() {
		t.Fatal("Expected surface placed")
	}
	if s.Pose().Center.Latitude != 3 {
		t.Errorf("Expected immediate placement, got %v", s.Pose())
	}
}

func TestLerpHeadingShortArc(t *testing.T) {
	tests := []struct {
		a, b, k, want float64
	}{
		{10, 30, 0.5, 20},
		{350, 10, 0.5, 0},
		{10, 350, 0.5, 0},
		{90, 270, 1, 270},
	}

	for _, tt := range tests {
		got := lerpHeading(tt.a, tt.b, tt.k)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("lerpHeading(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.k, got, tt.want)
		}
	}
}

func TestForBackend(t *testing.T) {
	inner := NewSimulated(time.Now)

	tests := []struct {
		backend string
		want3D  bool
		wantErr bool
	}{
		{"3d", true, false},
		{"", true, false},
		{"flat", false, false},
		{"web", false, false},
		{"voxel", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			a, err := ForBackend(tt.backend, inner)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if Supports3D(a) != tt.want3D {
				t.Errorf("Expected Supports3D=%v", tt.want3D)
			}
		})
	}
}

func TestFlatDropsCommands(t *testing.T) {
	f := &Flat{}
	f.SetCameraImmediate(camera.Pose{})
	f.SetCameraAnimated(camera.Pose{}, time.Second)
	if f.Dropped != 2 {
		t.Errorf("Expected 2 dropped commands, got %d", f.Dropped)
	}
}
