package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/flyover/internal/config"
	"github.com/ivlev/flyover/internal/script"
	"github.com/ivlev/flyover/internal/system"
)

// Job is one script scheduled for replay.
type Job struct {
	Path   string
	Script *script.Script
}

// RunAll replays jobs with at most workers sessions at a time. Results keep
// the order of jobs. The first failing session cancels the rest.
func RunAll(ctx context.Context, jobs []Job, tuning config.Controller, workers int, logger *log.Logger) ([]*Result, error) {
	if workers <= 0 {
		workers = 1
	}

	results := make([]*Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			res, err := NewSession(job.Script, tuning, logger).Run(ctx)
			if err != nil {
				return fmt.Errorf("script %s: %w", job.Path, err)
			}
			results[i] = res
			fmt.Printf("[*] %s: %d commands, final heading %.2f, state %s\n",
				filepath.Base(job.Path), res.Report.Commands, res.Report.FinalHeading, res.Report.FinalState)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// LoadJobs reads a single script or every script in a directory.
func LoadJobs(path string) ([]Job, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	paths := []string{path}
	if info.IsDir() {
		paths, err = script.ListScripts(path)
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("no scripts in %s", path)
		}
	}

	jobs := make([]Job, 0, len(paths))
	for _, p := range paths {
		s, err := script.ReadScript(p)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, Job{Path: p, Script: s})
	}
	return jobs, nil
}

// PrintStats prints a performance report for a finished batch and appends a
// line to benchmark.log.
func PrintStats(cfg *config.Config, results []*Result, total time.Duration) {
	commands := 0
	violations := 0
	var simulated time.Duration
	for _, r := range results {
		commands += r.Report.Commands
		violations += len(r.Report.Violations)
		simulated += r.Report.Simulated
	}
	speedup := 0.0
	if total > 0 {
		speedup = simulated.Seconds() / total.Seconds()
	}

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Sessions: %d\n"+
			"Total Time: %.2fs\n"+
			"Simulated: %.2fs\n"+
			"Speedup: %.1fx\n"+
			"Commands: %d\n"+
			"Violations: %d\n"+
			"%s\n"+
			"----------------------------\n",
		cfg.BuildVersion, len(results), total.Seconds(), simulated.Seconds(), speedup, commands, violations,
		strings.TrimSpace(system.Collect().String()),
	)
	fmt.Print(report)

	logEntry := fmt.Sprintf("[%s] Build: %s | Input: %s | Sessions: %d | Total: %.2fs | Simulated: %.2fs | Commands: %d\n",
		time.Now().Format("2006-01-02 15:04:05"),
		cfg.BuildVersion,
		filepath.Base(cfg.InputPath),
		len(results),
		total.Seconds(),
		simulated.Seconds(),
		commands,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Failed to write benchmark.log: %v\n", err)
	}
}
