package widget

import (
	"sync"
	"time"
)

// DefaultDebounceWindow is the minimum gap between two likes of the same comment
const DefaultDebounceWindow = time.Second

// Debouncer rejects repeated keys inside a time window.
// One Debouncer belongs to one widget session.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	last   map[string]time.Time
}

func NewDebouncer(window time.Duration, now func() time.Time) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	if now == nil {
		now = time.Now
	}
	return &Debouncer{
		window: window,
		now:    now,
		last:   make(map[string]time.Time),
	}
}

// Allow reports whether key may fire now and records the attempt when it may
func (d *Debouncer) Allow(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.last[key]; ok && now.Sub(last) < d.window {
		return false
	}
	d.last[key] = now
	return true
}
