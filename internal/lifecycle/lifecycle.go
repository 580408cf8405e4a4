// Package lifecycle models application foreground/background transitions.
package lifecycle

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Phase is the visibility state of the hosting application.
type Phase int

const (
	Active Phase = iota
	Background
	Inactive
)

func (p Phase) String() string {
	switch p {
	case Active:
		return "active"
	case Background:
		return "background"
	case Inactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// IsActive reports whether the phase allows animation work. Inactive is
// treated like Background.
func (p Phase) IsActive() bool { return p == Active }

// ParsePhase parses a phase name as sent by clients.
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", "foreground":
		return Active, nil
	case "background":
		return Background, nil
	case "inactive":
		return Inactive, nil
	default:
		return Background, fmt.Errorf("unknown lifecycle phase: %q", s)
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	parsed, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Source delivers phase-change notifications.
type Source interface {
	// Current returns the phase at the time of the call.
	Current() Phase
	// Subscribe registers fn for every subsequent phase change and returns a
	// function that removes the subscription. The returned function is safe
	// to call more than once.
	Subscribe(fn func(Phase)) (unsubscribe func())
}

// Broadcaster is a Source fed by explicit Set calls. Listeners are invoked
// synchronously on the goroutine that calls Set.
type Broadcaster struct {
	mu        sync.Mutex
	phase     Phase
	nextID    int
	listeners map[int]func(Phase)
}

// NewBroadcaster creates a Broadcaster starting in the given phase.
func NewBroadcaster(initial Phase) *Broadcaster {
	return &Broadcaster{
		phase:     initial,
		listeners: make(map[int]func(Phase)),
	}
}

func (b *Broadcaster) Current() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}

func (b *Broadcaster) Subscribe(fn func(Phase)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.listeners, id)
		})
	}
}

// Set changes the phase and notifies listeners. Setting the current phase
// again is not a change and notifies nobody.
func (b *Broadcaster) Set(p Phase) {
	b.mu.Lock()
	if b.phase == p {
		b.mu.Unlock()
		return
	}
	b.phase = p
	ids := make([]int, 0, len(b.listeners))
	for id := range b.listeners {
		ids = append(ids, id)
	}
	fns := make([]func(Phase), 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, b.listeners[id])
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(p)
	}
}

// Listeners returns the number of active subscriptions.
func (b *Broadcaster) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
