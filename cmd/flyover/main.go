package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ivlev/flyover/internal/camera"
	"github.com/ivlev/flyover/internal/config"
	"github.com/ivlev/flyover/internal/director"
	"github.com/ivlev/flyover/internal/engine"
	"github.com/ivlev/flyover/internal/script"
	"github.com/ivlev/flyover/internal/server"
	"github.com/ivlev/flyover/internal/share"
	"github.com/ivlev/flyover/internal/system"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	defaults := config.Default()

	inputPtr := flag.String("input", "", "Script file or directory of scripts (default: latest file in input/scripts/)")
	outputPtr := flag.String("output", "", "Directory for trace artifacts (generated in output/ if empty)")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Parallel sessions when -input is a directory")
	qrPtr := flag.Bool("qr", false, "Write a QR code with a geo: link to the final target")
	statsPtr := flag.Bool("stats", false, "Print a performance report and append it to benchmark.log")
	configPtr := flag.String("config", "", "YAML file with controller tuning")
	generatePtr := flag.String("generate", "", "Generate a tour script from stops \"lat,lon;lat,lon;...\" and exit")
	durationPtr := flag.Duration("duration", 30*time.Second, "Tour length for -generate")
	namePtr := flag.String("name", "tour", "Tour name for -generate")

	servePtr := flag.String("serve", "", "Serve live camera commands over websocket on this address (e.g. :8080)")
	latPtr := flag.Float64("lat", 55.7558, "Initial latitude in serve mode")
	lonPtr := flag.Float64("lon", 37.6173, "Initial longitude in serve mode")

	pitchPtr := flag.Float64("pitch", defaults.Pitch, "Camera pitch in degrees")
	speedPtr := flag.Float64("speed", defaults.AngularSpeed, "Rotation speed in degrees per frame")
	transitionPtr := flag.Duration("transition", defaults.TransitionDuration, "Animated move duration")
	fpsPtr := flag.Int("fps", defaults.FPS, "Display refresh rate")
	backendPtr := flag.String("backend", defaults.Backend, "Map backend: 3d, flat")
	altitudePtr := flag.Float64("altitude", 0, "Camera altitude in meters (0 lets the surface decide)")
	debugPtr := flag.Bool("debug", false, "Log controller state transitions")

	flag.Parse()

	tuning := defaults
	if *configPtr != "" {
		var err error
		tuning, err = config.LoadFile(*configPtr, defaults)
		if err != nil {
			log.Fatalf("[-] Error loading config: %v", err)
		}
		fmt.Printf("[*] Using config: %s\n", *configPtr)
	}

	// Flags set on the command line win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "pitch":
			tuning.Pitch = *pitchPtr
		case "speed":
			tuning.AngularSpeed = *speedPtr
		case "transition":
			tuning.TransitionDuration = *transitionPtr
		case "fps":
			tuning.FPS = *fpsPtr
		case "backend":
			tuning.Backend = *backendPtr
		case "altitude":
			if *altitudePtr > 0 {
				tuning.Altitude = camera.Float(*altitudePtr)
			} else {
				tuning.Altitude = nil
			}
		case "debug":
			tuning.Debug = *debugPtr
		}
	})

	if err := tuning.Validate(); err != nil {
		log.Fatalf("[-] %v", err)
	}

	cfg := &config.Config{
		InputPath:    *inputPtr,
		OutputDir:    *outputPtr,
		Workers:      *workersPtr,
		WriteQR:      *qrPtr,
		ShowStats:    *statsPtr,
		ServeAddr:    *servePtr,
		Center:       camera.Coordinate{Latitude: *latPtr, Longitude: *lonPtr},
		BuildVersion: version,
		Controller:   tuning,
	}

	if *generatePtr != "" {
		generate(*generatePtr, *namePtr, *durationPtr, tuning.Altitude)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ServeAddr != "" {
		serve(ctx, cfg)
		return
	}
	simulate(ctx, cfg)
}

// generate writes a tour script into the default scripts directory
func generate(stopsArg, name string, total time.Duration, altitude *float64) {
	stops, err := director.ParseStops(stopsArg)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}

	d := director.NewDirector()
	d.Altitude = altitude
	s, err := d.GenerateTour(name, stops, total)
	if err != nil {
		log.Fatalf("[-] Error generating tour: %v", err)
	}

	os.MkdirAll(script.DefaultDir, 0755)
	path := script.GenerateScriptPath(script.DefaultDir, strings.ReplaceAll(name, " ", "_"))
	if err := script.WriteScript(s, path); err != nil {
		log.Fatalf("[-] Error writing script: %v", err)
	}

	fmt.Printf("[+++] Tour with %d stops (%v) saved: %s\n", len(stops), s.Duration, path)
	fmt.Println("[*] Replay it with: flyover -input " + path)
}

func serve(ctx context.Context, cfg *config.Config) {
	if !cfg.Center.Valid() {
		log.Fatalf("[-] Invalid center %s", cfg.Center)
	}

	// Every client holds an open socket
	system.InitResourceLimits(4096)

	if err := server.Serve(ctx, cfg.ServeAddr, cfg.Center, cfg.Controller, log.Default()); err != nil {
		log.Fatalf("[-] Server error: %v", err)
	}
	fmt.Println("[*] Server stopped")
}

func simulate(ctx context.Context, cfg *config.Config) {
	// Create the working directories if missing
	for _, d := range []string{script.DefaultDir, "output"} {
		os.MkdirAll(d, 0755)
	}

	if cfg.InputPath == "" {
		latest, err := script.FindLatestScript(script.DefaultDir)
		if err != nil {
			log.Fatalf("[-] Error: %v. Put a script into %s/", err, script.DefaultDir)
		}
		cfg.InputPath = latest
		fmt.Printf("[*] Selected script: %s\n", cfg.InputPath)
	}

	jobs, err := engine.LoadJobs(cfg.InputPath)
	if err != nil {
		log.Fatalf("[-] Error loading scripts: %v", err)
	}

	if cfg.OutputDir == "" {
		name := jobs[0].Script.Name
		if len(jobs) > 1 || name == "" {
			name = filepath.Base(cfg.InputPath)
		}
		cfg.OutputDir = script.GenerateOutputDir("output", name)
	}

	var logger *log.Logger
	if cfg.Controller.Debug {
		logger = log.New(os.Stdout, "", log.Lmicroseconds)
	}

	start := time.Now()
	results, err := engine.RunAll(ctx, jobs, cfg.Controller, cfg.Workers, logger)
	if err != nil {
		log.Fatalf("[-] Simulation error: %v", err)
	}
	total := time.Since(start)

	for i, res := range results {
		dir := cfg.OutputDir
		if len(results) > 1 {
			base := filepath.Base(jobs[i].Path)
			dir = filepath.Join(cfg.OutputDir, base[:len(base)-len(filepath.Ext(base))])
		}
		if err := res.WriteArtifacts(dir); err != nil {
			log.Fatalf("[-] Error writing artifacts: %v", err)
		}
		for _, v := range res.Report.Violations {
			log.Printf("[!] %s: %s", filepath.Base(jobs[i].Path), v)
		}

		if cfg.WriteQR {
			qrPath := filepath.Join(dir, "share.png")
			if err := share.WriteQR(qrPath, res.Report.FinalTarget, share.DefaultSize); err != nil {
				log.Printf("[!] Could not write QR code: %v", err)
			} else {
				fmt.Printf("[*] Share link %s -> %s\n", share.GeoURI(res.Report.FinalTarget), qrPath)
			}
		}
	}

	if cfg.ShowStats {
		engine.PrintStats(cfg, results, total)
	}

	fmt.Printf("[+++] Done! Artifacts: %s\n", cfg.OutputDir)
}
