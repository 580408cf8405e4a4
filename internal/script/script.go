package script

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ivlev/flyover/internal/camera"
	"github.com/ivlev/flyover/internal/lifecycle"
)

// Script is a timeline of everything a hosting view does to a flyover
// controller: renders with a target, lifecycle changes, touches, unmount.
type Script struct {
	Version  string            `yaml:"version"`
	Name     string            `yaml:"name,omitempty"`
	Center   camera.Coordinate `yaml:"center"`             // center at mount
	Altitude *float64          `yaml:"altitude,omitempty"` // altitude at mount
	Phase    lifecycle.Phase   `yaml:"phase"`              // phase at mount
	Duration time.Duration     `yaml:"duration"`           // total simulated time
	Events   []Event           `yaml:"events"`
}

// EventKind names a script step.
type EventKind string

const (
	Render    EventKind = "render"
	Lifecycle EventKind = "lifecycle"
	Touch     EventKind = "touch"
	Unmount   EventKind = "unmount"
)

// Event is one step of a script.
type Event struct {
	At       time.Duration      `yaml:"at"`
	Kind     EventKind          `yaml:"kind"`
	Center   *camera.Coordinate `yaml:"center,omitempty"`
	Altitude *float64           `yaml:"altitude,omitempty"`
	Phase    *lifecycle.Phase   `yaml:"phase,omitempty"`
}

var (
	ErrNoDuration   = errors.New("script duration must be positive")
	ErrInvalidEvent = errors.New("invalid script event")
)

// Validate checks the script and sorts its events by time. Events at the
// same instant keep their file order.
func (s *Script) Validate() error {
	if s.Duration <= 0 {
		return ErrNoDuration
	}
	if !s.Center.Valid() {
		return fmt.Errorf("invalid mount center %s", s.Center)
	}

	for i, ev := range s.Events {
		if ev.At < 0 || ev.At > s.Duration {
			return fmt.Errorf("%w %d: time %v outside [0, %v]", ErrInvalidEvent, i, ev.At, s.Duration)
		}
		switch ev.Kind {
		case Render:
			if ev.Center == nil || !ev.Center.Valid() {
				return fmt.Errorf("%w %d: render needs a valid center", ErrInvalidEvent, i)
			}
		case Lifecycle:
			if ev.Phase == nil {
				return fmt.Errorf("%w %d: lifecycle needs a phase", ErrInvalidEvent, i)
			}
		case Touch, Unmount:
		default:
			return fmt.Errorf("%w %d: unknown kind %q", ErrInvalidEvent, i, ev.Kind)
		}
	}

	sort.SliceStable(s.Events, func(i, j int) bool {
		return s.Events[i].At < s.Events[j].At
	})
	return nil
}
