// Package trace records the camera commands a controller issues and exports
// them for inspection.
package trace

import (
	"time"

	"github.com/ivlev/flyover/internal/camera"
)

// Kind distinguishes per-frame commands from transition moves.
type Kind string

const (
	Immediate Kind = "immediate"
	Animated  Kind = "animated"
)

// Command is one recorded camera command.
type Command struct {
	Seq      int           `yaml:"seq"`
	At       time.Duration `yaml:"at"` // offset from the start of recording
	Kind     Kind          `yaml:"kind"`
	Pose     camera.Pose   `yaml:"pose"`
	Duration time.Duration `yaml:"duration,omitempty"`
}

// Recorder is an Actuator decorator that records every command before
// forwarding it to the wrapped actuator.
type Recorder struct {
	inner camera.Actuator
	now   func() time.Time
	start time.Time

	Commands []Command
}

// NewRecorder wraps inner. A nil inner records without forwarding.
func NewRecorder(inner camera.Actuator, now func() time.Time) *Recorder {
	return &Recorder{inner: inner, now: now, start: now()}
}

func (r *Recorder) SetCameraImmediate(p camera.Pose) {
	r.record(Immediate, p, 0)
	if r.inner != nil {
		r.inner.SetCameraImmediate(p)
	}
}

func (r *Recorder) SetCameraAnimated(p camera.Pose, d time.Duration) {
	r.record(Animated, p, d)
	if r.inner != nil {
		r.inner.SetCameraAnimated(p, d)
	}
}

func (r *Recorder) record(kind Kind, p camera.Pose, d time.Duration) {
	r.Commands = append(r.Commands, Command{
		Seq:      len(r.Commands) + 1,
		At:       r.now().Sub(r.start),
		Kind:     kind,
		Pose:     p,
		Duration: d,
	})
}

// Count returns how many commands of kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	n := 0
	for _, c := range r.Commands {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// Since returns the commands recorded at or after offset.
func (r *Recorder) Since(offset time.Duration) []Command {
	for i, c := range r.Commands {
		if c.At >= offset {
			return r.Commands[i:]
		}
	}
	return nil
}

// Last returns the most recent command.
func (r *Recorder) Last() (Command, bool) {
	if len(r.Commands) == 0 {
		return Command{}, false
	}
	return r.Commands[len(r.Commands)-1], true
}
