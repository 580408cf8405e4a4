package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Loop is a real-time event loop. Frame callbacks run on a ticker at the
// configured refresh rate, timers fire through the same goroutine, and other
// goroutines hand work to it with Post.
type Loop struct {
	frameInterval time.Duration
	tasks         chan func()
	done          chan struct{}
	stopOnce      sync.Once

	mu     sync.Mutex
	nextID Handle
	frames map[Handle]func()
	timers map[Handle]*time.Timer
}

// NewLoop creates a loop ticking at fps frames per second.
func NewLoop(fps int) *Loop {
	return &Loop{
		frameInterval: FrameInterval(fps),
		tasks:         make(chan func(), 256),
		done:          make(chan struct{}),
		frames:        make(map[Handle]func()),
		timers:        make(map[Handle]*time.Timer),
	}
}

func (l *Loop) Now() time.Time { return time.Now() }

func (l *Loop) RequestFrame(fn func()) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	l.frames[l.nextID] = fn
	return l.nextID
}

func (l *Loop) CancelFrame(h Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.frames, h)
}

func (l *Loop) AfterFunc(d time.Duration, fn func()) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	id := l.nextID
	l.timers[id] = time.AfterFunc(d, func() {
		l.Post(func() {
			l.mu.Lock()
			_, ok := l.timers[id]
			delete(l.timers, id)
			l.mu.Unlock()
			if ok {
				fn()
			}
		})
	})
	return id
}

func (l *Loop) CancelTimer(h Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.timers[h]; ok {
		t.Stop()
		delete(l.timers, h)
	}
}

// Post queues fn to run on the loop goroutine. It returns false once the
// loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Run processes frames, timers and posted work until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.frameInterval)
	defer ticker.Stop()
	defer l.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.tasks:
			fn()
		case <-ticker.C:
			l.runFrame()
		}
	}
}

// runFrame runs the frames requested before this tick, in handle order.
// Frames requested during the tick wait for the next one; a frame cancelled
// by an earlier callback in the same tick does not run.
func (l *Loop) runFrame() {
	l.mu.Lock()
	ids := make([]Handle, 0, len(l.frames))
	for id := range l.frames {
		ids = append(ids, id)
	}
	l.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		l.mu.Lock()
		fn, ok := l.frames[id]
		delete(l.frames, id)
		l.mu.Unlock()
		if ok {
			fn()
		}
	}
}

func (l *Loop) stop() {
	l.stopOnce.Do(func() {
		close(l.done)
		l.mu.Lock()
		for id, t := range l.timers {
			t.Stop()
			delete(l.timers, id)
		}
		l.frames = make(map[Handle]func())
		l.mu.Unlock()
	})
}
