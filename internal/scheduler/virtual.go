package scheduler

import (
	"container/heap"
	"time"
)

type event struct {
	at    time.Time
	seq   uint64
	id    Handle
	fn    func()
	frame bool
}

type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(*event)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return ev
}

// Virtual is a deterministic scheduler driven by an explicit clock. Frames
// fire on fixed boundaries measured from the start time; nothing runs until
// Advance is called. It is not safe for concurrent use.
type Virtual struct {
	start         time.Time
	now           time.Time
	frameInterval time.Duration

	seq   uint64
	queue eventQueue
	live  map[Handle]*event
}

// NewVirtual creates a virtual scheduler starting at start with the given
// frame rate.
func NewVirtual(start time.Time, fps int) *Virtual {
	return &Virtual{
		start:         start,
		now:           start,
		frameInterval: FrameInterval(fps),
		live:          make(map[Handle]*event),
	}
}

func (v *Virtual) Now() time.Time { return v.now }

// Elapsed returns the virtual time passed since start.
func (v *Virtual) Elapsed() time.Duration { return v.now.Sub(v.start) }

// FrameInterval returns the duration of one virtual frame.
func (v *Virtual) FrameInterval() time.Duration { return v.frameInterval }

func (v *Virtual) RequestFrame(fn func()) Handle {
	n := v.now.Sub(v.start)/v.frameInterval + 1
	return v.push(v.start.Add(n*v.frameInterval), fn, true)
}

func (v *Virtual) CancelFrame(h Handle) { v.cancel(h, true) }

func (v *Virtual) AfterFunc(d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	return v.push(v.now.Add(d), fn, false)
}

func (v *Virtual) CancelTimer(h Handle) { v.cancel(h, false) }

// PendingFrames returns the number of frame callbacks still scheduled.
func (v *Virtual) PendingFrames() int { return v.pending(true) }

// PendingTimers returns the number of timers still scheduled.
func (v *Virtual) PendingTimers() int { return v.pending(false) }

// Advance moves the clock forward by d, running every callback that comes
// due in time order. Callbacks scheduled while advancing run in the same
// call if they fall inside the window.
func (v *Virtual) Advance(d time.Duration) {
	v.AdvanceTo(v.now.Add(d))
}

// AdvanceTo moves the clock to t. Moving backwards is a no-op.
func (v *Virtual) AdvanceTo(t time.Time) {
	for len(v.queue) > 0 {
		next := v.queue[0]
		if next.at.After(t) {
			break
		}
		heap.Pop(&v.queue)
		if v.live[next.id] != next {
			continue // cancelled
		}
		delete(v.live, next.id)
		v.now = next.at
		next.fn()
	}
	if t.After(v.now) {
		v.now = t
	}
}

// AdvanceFrames advances by n frame intervals.
func (v *Virtual) AdvanceFrames(n int) {
	v.Advance(time.Duration(n) * v.frameInterval)
}

func (v *Virtual) push(at time.Time, fn func(), frame bool) Handle {
	v.seq++
	ev := &event{at: at, seq: v.seq, id: Handle(v.seq), fn: fn, frame: frame}
	heap.Push(&v.queue, ev)
	v.live[ev.id] = ev
	return ev.id
}

func (v *Virtual) cancel(h Handle, frame bool) {
	if ev, ok := v.live[h]; ok && ev.frame == frame {
		delete(v.live, h)
	}
}

func (v *Virtual) pending(frame bool) int {
	n := 0
	for _, ev := range v.live {
		if ev.frame == frame {
			n++
		}
	}
	return n
}
