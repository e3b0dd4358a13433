package toast

import (
	"fmt"
	"sync"
	"time"

	"github.com/ishos/storefront/pkg/enums"
)

// DefaultDuration is how long a toast lives when the caller gives none.
const DefaultDuration = 3000 * time.Millisecond

// Toast is a transient notification.
type Toast struct {
	ID       string          `json:"id"`
	Message  string          `json:"message"`
	Type     enums.ToastKind `json:"type"`
	Duration int64           `json:"duration"`
}

// Queue holds one session's toasts. A toast with a positive duration
// removes itself once the duration elapses.
type Queue struct {
	mu      sync.Mutex
	toasts  []Toast
	timers  map[string]*time.Timer
	counter uint64
	now     func() time.Time
	after   func(time.Duration, func()) *time.Timer
}

func NewQueue() *Queue {
	return &Queue{
		timers: map[string]*time.Timer{},
		now:    time.Now,
		after:  time.AfterFunc,
	}
}

// Show appends a toast. An empty kind means info. A negative duration means
// DefaultDuration; zero keeps the toast until it is removed.
func (q *Queue) Show(message string, kind enums.ToastKind, duration time.Duration) Toast {
	if kind == "" {
		kind = enums.ToastInfo
	}
	if duration < 0 {
		duration = DefaultDuration
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	t := Toast{
		ID:       fmt.Sprintf("toast_%d_%d", q.now().UnixMilli(), q.counter),
		Message:  message,
		Type:     kind,
		Duration: duration.Milliseconds(),
	}
	q.counter++
	q.toasts = append(q.toasts, t)

	if duration > 0 {
		id := t.ID
		q.timers[id] = q.after(duration, func() { q.Remove(id) })
	}
	return t
}

// Remove drops the toast with id. Unknown ids are ignored.
func (q *Queue) Remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}
	for i, t := range q.toasts {
		if t.ID == id {
			q.toasts = append(q.toasts[:i:i], q.toasts[i+1:]...)
			return
		}
	}
}

// Clear drops every toast and stops pending expiry timers.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.toasts = nil
}

// List returns the visible toasts, oldest first.
func (q *Queue) List() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Toast, len(q.toasts))
	copy(out, q.toasts)
	return out
}
