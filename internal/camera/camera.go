package camera

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultPitch is the fixed tilt of the flyover camera in degrees.
	DefaultPitch = 50.0

	// Initial region deltas used when a surface is first placed over a center.
	DefaultLatitudeDelta  = 0.0922
	DefaultLongitudeDelta = 0.0421
)

// Coordinate is a geographic point in degrees.
type Coordinate struct {
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.5f,%.5f)", c.Latitude, c.Longitude)
}

// Valid reports whether the coordinate lies inside the WGS84 range.
func (c Coordinate) Valid() bool {
	return !math.IsNaN(c.Latitude) && !math.IsNaN(c.Longitude) &&
		c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Pose is the full camera orientation commanded to a map surface.
type Pose struct {
	Center   Coordinate `yaml:"center" json:"center"`
	Pitch    float64    `yaml:"pitch" json:"pitch"`
	Altitude *float64   `yaml:"altitude,omitempty" json:"altitude,omitempty"` // nil lets the surface keep its own altitude
	Heading  float64    `yaml:"heading" json:"heading"`
}

func (p Pose) String() string {
	alt := "auto"
	if p.Altitude != nil {
		alt = fmt.Sprintf("%.0fm", *p.Altitude)
	}
	return fmt.Sprintf("center=%s pitch=%.1f alt=%s heading=%.2f", p.Center, p.Pitch, alt, p.Heading)
}

// Region is the initial visible area of a surface.
type Region struct {
	Center         Coordinate `json:"center"`
	LatitudeDelta  float64    `json:"latitude_delta"`
	LongitudeDelta float64    `json:"longitude_delta"`
}

// InitialRegion returns the region a surface shows before the first camera command.
func InitialRegion(center Coordinate) Region {
	return Region{
		Center:         center,
		LatitudeDelta:  DefaultLatitudeDelta,
		LongitudeDelta: DefaultLongitudeDelta,
	}
}

// Actuator is the camera command interface of a map surface.
//
// Implementations must not block and must treat unsupported camera modes as
// no-ops rather than failing.
type Actuator interface {
	SetCameraImmediate(pose Pose)
	SetCameraAnimated(pose Pose, duration time.Duration)
}

// NormalizeHeading wraps a heading into [0,360).
func NormalizeHeading(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	// math.Mod(-1e-15, 360)+360 rounds to 360
	if h >= 360 {
		h = 0
	}
	return h
}

// Float returns a pointer to v, for optional pose fields.
func Float(v float64) *float64 {
	return &v
}
