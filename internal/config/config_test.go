package config

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flyover.yaml")
	content := "angular_speed: 0.5\ntransition_duration: 1500ms\nbackend: flat\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path, Default())
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.AngularSpeed != 0.5 {
		t.Errorf("Expected angular speed 0.5, got %v", cfg.AngularSpeed)
	}
	if cfg.TransitionDuration != 1500*time.Millisecond {
		t.Errorf("Expected 1.5s transition, got %v", cfg.TransitionDuration)
	}
	if cfg.Backend != "flat" {
		t.Errorf("Expected flat backend, got %s", cfg.Backend)
	}
	if cfg.Pitch != 50 || cfg.FPS != 60 {
		t.Errorf("Defaults lost: pitch=%v fps=%d", cfg.Pitch, cfg.FPS)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), Default()); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	negative := -1.0
	tests := []struct {
		name   string
		mutate func(*Controller)
		ok     bool
	}{
		{"defaults", func(*Controller) {}, true},
		{"zero fps", func(c *Controller) { c.FPS = 0 }, false},
		{"zero transition", func(c *Controller) { c.TransitionDuration = 0 }, false},
		{"negative speed", func(c *Controller) { c.AngularSpeed = -0.1 }, false},
		{"steep pitch", func(c *Controller) { c.Pitch = 95 }, false},
		{"negative altitude", func(c *Controller) { c.Altitude = &negative }, false},
		{"unknown backend", func(c *Controller) { c.Backend = "voxel" }, false},
		{"still camera", func(c *Controller) { c.AngularSpeed = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	c := Default()
	c.AngularSpeed = 1
	logger := log.New(os.Stderr, "", 0)

	opts := c.Options(logger)
	if opts.AngularSpeed != 1 || opts.Pitch != 50 || opts.TransitionDuration != time.Second {
		t.Errorf("Unexpected options: %+v", opts)
	}
	if opts.Logger != nil {
		t.Error("Logger should only be set in debug mode")
	}

	c.Debug = true
	if c.Options(logger).Logger != logger {
		t.Error("Expected logger in debug mode")
	}
}
