package script

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultDir is where scripts are looked up when no input is given.
var DefaultDir = filepath.Join("input", "scripts")

// GenerateOutputDir creates a timestamped directory name for session artifacts
func GenerateOutputDir(base, name string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	clean := strings.ReplaceAll(name, " ", "_")
	if clean == "" {
		clean = "session"
	}
	return filepath.Join(base, fmt.Sprintf("%s_%s", clean, timestamp))
}

// GenerateScriptPath creates a timestamped path for a generated script in dir
func GenerateScriptPath(dir, prefix string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("%s_%s.yaml", prefix, timestamp))
}

// ListScripts returns every .yaml/.yml file in dir, sorted by name.
func ListScripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scripts directory: %w", err)
	}

	var scripts []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			scripts = append(scripts, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(scripts)
	return scripts, nil
}

// FindLatestScript finds the most recently modified script in dir
func FindLatestScript(dir string) (string, error) {
	scripts, err := ListScripts(dir)
	if err != nil {
		return "", err
	}
	if len(scripts) == 0 {
		return "", fmt.Errorf("no script files found in %s", dir)
	}

	var latest string
	var latestTime time.Time
	for _, s := range scripts {
		info, err := os.Stat(s)
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latest = s
		}
	}
	if latest == "" {
		return "", fmt.Errorf("no readable script files in %s", dir)
	}
	return latest, nil
}
