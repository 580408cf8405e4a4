package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/flyover/internal/camera"
	"github.com/ivlev/flyover/internal/config"
	"github.com/ivlev/flyover/internal/flyover"
	"github.com/ivlev/flyover/internal/lifecycle"
	"github.com/ivlev/flyover/internal/scheduler"
	"github.com/ivlev/flyover/internal/script"
	"github.com/ivlev/flyover/internal/surface"
	"github.com/ivlev/flyover/internal/trace"
)

// simulationEpoch anchors virtual time so traces are reproducible.
var simulationEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

const maxViolations = 20

// Session replays one script against a controller on a virtual clock.
type Session struct {
	ID     string
	Script *script.Script
	Tuning config.Controller
	Logger *log.Logger
}

// Report summarises a replayed session.
type Report struct {
	Session        string            `yaml:"session"`
	Script         string            `yaml:"script"`
	Backend        string            `yaml:"backend"`
	Simulated      time.Duration     `yaml:"simulated"`
	WallTime       time.Duration     `yaml:"wall_time"`
	Commands       int               `yaml:"commands"`
	Immediate      int               `yaml:"immediate"`
	Animated       int               `yaml:"animated"`
	Dropped        int               `yaml:"dropped"`
	FinalHeading   float64           `yaml:"final_heading"`
	FinalState     flyover.State     `yaml:"final_state"`
	FinalTarget    camera.Coordinate `yaml:"final_target"`
	Displayed      camera.Pose       `yaml:"displayed"`
	TravelMeters   float64           `yaml:"travel_meters"`
	Controller     flyover.Stats     `yaml:"controller"`
	MaxOutstanding int               `yaml:"max_outstanding"` // frames + timers scheduled at once
	Violations     []string          `yaml:"violations,omitempty"`
}

// Result is a finished session with its recorded trace.
type Result struct {
	Report   Report
	Recorder *trace.Recorder
}

func NewSession(s *script.Script, tuning config.Controller, logger *log.Logger) *Session {
	return &Session{
		ID:     uuid.NewString(),
		Script: s,
		Tuning: tuning,
		Logger: logger,
	}
}

func (s *Session) Run(ctx context.Context) (*Result, error) {
	wallStart := time.Now()

	if err := s.Script.Validate(); err != nil {
		return nil, err
	}
	if err := s.Tuning.Validate(); err != nil {
		return nil, err
	}

	clock := scheduler.NewVirtual(simulationEpoch, s.Tuning.FPS)
	sim := surface.NewSimulated(clock.Now)
	backend, err := surface.ForBackend(s.Tuning.Backend, sim)
	if err != nil {
		return nil, err
	}
	recorder := trace.NewRecorder(backend, clock.Now)
	phases := lifecycle.NewBroadcaster(s.Script.Phase)

	altitude := s.Script.Altitude
	if altitude == nil {
		altitude = s.Tuning.Altitude
	}

	ctrl := flyover.Mount(recorder, clock, phases, s.Script.Center, altitude, s.Tuning.Options(s.Logger))

	var violations []string
	maxOutstanding := 0
	check := func() {
		if n := clock.PendingFrames() + clock.PendingTimers(); n > maxOutstanding {
			maxOutstanding = n
		}
		if len(violations) >= maxViolations {
			return
		}
		if err := ctrl.Check(); err != nil {
			violations = append(violations, fmt.Sprintf("%v: %v", clock.Elapsed(), err))
			return
		}
		if clock.PendingFrames() > 0 && clock.PendingTimers() > 0 {
			violations = append(violations, fmt.Sprintf("%v: frame and settle timer both outstanding", clock.Elapsed()))
		}
	}
	advance := func(to time.Duration) error {
		target := simulationEpoch.Add(to)
		for clock.Now().Before(target) {
			if err := ctx.Err(); err != nil {
				return err
			}
			next := clock.Now().Add(clock.FrameInterval())
			if next.After(target) {
				next = target
			}
			clock.AdvanceTo(next)
			check()
		}
		return nil
	}

	for _, ev := range s.Script.Events {
		if err := advance(ev.At); err != nil {
			return nil, err
		}
		if ev.Kind == script.Render && ev.Altitude != nil {
			altitude = ev.Altitude
		}
		apply(ctrl, phases, ev, altitude)
		check()
	}
	if err := advance(s.Script.Duration); err != nil {
		return nil, err
	}

	report := Report{
		Session:      s.ID,
		Script:       s.Script.Name,
		Backend:      s.Tuning.Backend,
		Simulated:    clock.Elapsed(),
		WallTime:     time.Since(wallStart),
		Commands:     len(recorder.Commands),
		Immediate:    recorder.Count(trace.Immediate),
		Animated:     recorder.Count(trace.Animated),
		FinalHeading: ctrl.Heading(),
		FinalState:   ctrl.State(),
		FinalTarget:  ctrl.Target(),
		Displayed:    sim.Pose(),
		TravelMeters: recorder.TravelDistance(),
		Controller:   ctrl.Stats(),
		Violations:   violations,

		MaxOutstanding: maxOutstanding,
	}
	if flat, ok := backend.(*surface.Flat); ok {
		report.Dropped = flat.Dropped
	}

	return &Result{Report: report, Recorder: recorder}, nil
}

// apply feeds one script event to the controller. Renders without an
// altitude keep the previous one.
func apply(ctrl *flyover.Controller, phases *lifecycle.Broadcaster, ev script.Event, altitude *float64) {
	switch ev.Kind {
	case script.Render:
		ctrl.Render(*ev.Center, altitude)
	case script.Lifecycle:
		phases.Set(*ev.Phase)
	case script.Touch:
		ctrl.Touch()
	case script.Unmount:
		ctrl.Unmount()
	}
}

// WriteArtifacts stores the report and the trace exports in dir.
func (r *Result) WriteArtifacts(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(&r.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "report.yaml"), data, 0644); err != nil {
		return err
	}
	if err := r.Recorder.WriteYAML(filepath.Join(dir, "trace.yaml"), r.Report.Session); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	if err := r.Recorder.WriteGeoJSON(filepath.Join(dir, "trace.geojson")); err != nil {
		return fmt.Errorf("write geojson: %w", err)
	}
	if err := r.Recorder.WritePNG(filepath.Join(dir, "heading.png"), 1280, 480); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
