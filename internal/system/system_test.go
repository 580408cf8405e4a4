package system

import (
	"strings"
	"testing"
)

func TestCollect(t *testing.T) {
	s := Collect()
	if s.Goroutines <= 0 {
		t.Errorf("Expected goroutine count, got %d", s.Goroutines)
	}
	if s.CollectionErr == "" && s.LogicalCPUs <= 0 {
		t.Errorf("Expected CPU count without error, got %d", s.LogicalCPUs)
	}
	t.Logf("Stats: %s", s)
	if !strings.Contains(s.String(), "Goroutines") {
		t.Errorf("Unexpected stats line: %s", s)
	}
}

func TestInitResourceLimitsDoesNotLower(t *testing.T) {
	// A tiny request must leave the current limit alone.
	InitResourceLimits(1)
}
