// Package director plans flyover tours: it orders a set of stops, spreads
// the tour duration over them and emits a script that visits each in turn.
package director

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/ivlev/flyover/internal/camera"
	"github.com/ivlev/flyover/internal/lifecycle"
	"github.com/ivlev/flyover/internal/script"
)

// Director generates tour scripts from a list of stops
type Director struct {
	MinDwell time.Duration // Minimum time per stop
	MaxDwell time.Duration // Maximum time per stop
	Intro    time.Duration // Rotation over the first stop before the tour starts
	Altitude *float64
}

// NewDirector creates a new Director with default settings
func NewDirector() *Director {
	return &Director{
		MinDwell: 2 * time.Second,
		MaxDwell: 8 * time.Second,
		Intro:    2 * time.Second,
	}
}

// GenerateTour creates a script that mounts over the first stop and moves
// to every other stop, nearest first. The script lasts at least total.
func (d *Director) GenerateTour(name string, stops []camera.Coordinate, total time.Duration) (*script.Script, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("no stops given")
	}
	for i, s := range stops {
		if !s.Valid() {
			return nil, fmt.Errorf("stop %d: invalid coordinate %s", i+1, s)
		}
	}

	route := d.sortStops(stops)
	moves := len(route) - 1
	dwell := d.calculateDwellTime(total, moves)

	s := &script.Script{
		Version:  "1.0",
		Name:     name,
		Center:   route[0],
		Altitude: d.Altitude,
		Phase:    lifecycle.Active,
		Duration: total,
	}

	at := d.Intro
	for _, stop := range route[1:] {
		c := stop
		s.Events = append(s.Events, script.Event{At: at, Kind: script.Render, Center: &c})
		at += dwell
	}

	// the last stop gets its dwell too
	if at > s.Duration {
		s.Duration = at
	}
	if s.Duration <= 0 {
		s.Duration = d.Intro
	}

	return s, s.Validate()
}

// sortStops orders stops as a nearest-neighbour route from the first one
func (d *Director) sortStops(stops []camera.Coordinate) []camera.Coordinate {
	route := []camera.Coordinate{stops[0]}
	rest := make([]camera.Coordinate, len(stops)-1)
	copy(rest, stops[1:])

	for len(rest) > 0 {
		from := toPoint(route[len(route)-1])
		best := 0
		bestDist := geo.Distance(from, toPoint(rest[0]))
		for i := 1; i < len(rest); i++ {
			if dist := geo.Distance(from, toPoint(rest[i])); dist < bestDist {
				best, bestDist = i, dist
			}
		}
		route = append(route, rest[best])
		rest = append(rest[:best], rest[best+1:]...)
	}

	return route
}

// calculateDwellTime determines how long to stay at each stop
func (d *Director) calculateDwellTime(total time.Duration, moves int) time.Duration {
	if moves == 0 {
		return 0
	}

	// Reserve time for intro/outro
	available := total - 2*d.Intro
	if available <= 0 {
		available = total
	}

	dwell := available / time.Duration(moves)

	// Clamp to min/max
	if dwell < d.MinDwell {
		dwell = d.MinDwell
	}
	if dwell > d.MaxDwell {
		dwell = d.MaxDwell
	}

	return dwell
}

// ParseStops parses "lat,lon;lat,lon;..." into coordinates
func ParseStops(s string) ([]camera.Coordinate, error) {
	var stops []camera.Coordinate
	for i, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		latStr, lonStr, ok := strings.Cut(part, ",")
		if !ok {
			return nil, fmt.Errorf("stop %d: expected lat,lon, got %q", i+1, part)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		if err != nil {
			return nil, fmt.Errorf("stop %d: bad latitude: %w", i+1, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if err != nil {
			return nil, fmt.Errorf("stop %d: bad longitude: %w", i+1, err)
		}
		c := camera.Coordinate{Latitude: lat, Longitude: lon}
		if !c.Valid() {
			return nil, fmt.Errorf("stop %d: coordinate %s out of range", i+1, c)
		}
		stops = append(stops, c)
	}
	if len(stops) == 0 {
		return nil, fmt.Errorf("no stops in %q", s)
	}
	return stops, nil
}

func toPoint(c camera.Coordinate) orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}
