package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/flyover/internal/camera"
	"github.com/ivlev/flyover/internal/flyover"
	"github.com/ivlev/flyover/internal/surface"
)

type Config struct {
	InputPath    string
	OutputDir    string
	Workers      int
	WriteQR      bool
	ShowStats    bool
	ServeAddr    string
	Center       camera.Coordinate
	BuildVersion string
	Controller   Controller
}

// Controller holds the camera tuning shared by every mode. It can be loaded
// from a YAML file and overridden by flags.
type Controller struct {
	Pitch              float64       `yaml:"pitch"`
	AngularSpeed       float64       `yaml:"angular_speed"`
	TransitionDuration time.Duration `yaml:"transition_duration"`
	FPS                int           `yaml:"fps"`
	Backend            string        `yaml:"backend"`
	Altitude           *float64      `yaml:"altitude,omitempty"`
	Debug              bool          `yaml:"debug"`
}

// Default returns the stock controller tuning.
func Default() Controller {
	return Controller{
		Pitch:              camera.DefaultPitch,
		AngularSpeed:       flyover.DefaultAngularSpeed,
		TransitionDuration: flyover.DefaultTransitionDuration,
		FPS:                60,
		Backend:            surface.Backend3D,
	}
}

var ErrInvalid = errors.New("invalid configuration")

// LoadFile reads YAML tuning from path on top of base. Keys missing from the
// file keep their base values.
func LoadFile(path string, base Controller) (Controller, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects tuning the controller cannot run with.
func (c Controller) Validate() error {
	if c.FPS <= 0 || c.FPS > 240 {
		return fmt.Errorf("%w: fps %d outside (0, 240]", ErrInvalid, c.FPS)
	}
	if c.TransitionDuration <= 0 {
		return fmt.Errorf("%w: transition duration must be positive", ErrInvalid)
	}
	if c.AngularSpeed < 0 {
		return fmt.Errorf("%w: angular speed must not be negative", ErrInvalid)
	}
	if c.Pitch < 0 || c.Pitch > 90 {
		return fmt.Errorf("%w: pitch %.1f outside [0, 90]", ErrInvalid, c.Pitch)
	}
	if c.Altitude != nil && *c.Altitude <= 0 {
		return fmt.Errorf("%w: altitude must be positive", ErrInvalid)
	}
	if _, err := surface.ForBackend(c.Backend, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Options converts the tuning to controller options. Debug routes state
// transitions to logger.
func (c Controller) Options(logger *log.Logger) flyover.Options {
	opts := flyover.DefaultOptions()
	opts.Pitch = c.Pitch
	opts.AngularSpeed = c.AngularSpeed
	opts.TransitionDuration = c.TransitionDuration
	if c.Debug {
		opts.Logger = logger
	}
	return opts
}
