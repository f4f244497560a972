package middleware

import (
	"sync"
	"time"
)

type windowInfo struct {
	start time.Time
	count int
}

// memoryLimiter is a fixed-window counter used when Redis is not configured
type memoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*windowInfo
	now     func() time.Time
}

func newMemoryLimiter() *memoryLimiter {
	return &memoryLimiter{windows: make(map[string]*windowInfo), now: time.Now}
}

// incr counts a hit for key and returns the count in the current window
func (l *memoryLimiter) incr(key string, window time.Duration) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) > window {
		if len(l.windows) > 10000 {
			l.evict(now, window)
		}
		w = &windowInfo{start: now}
		l.windows[key] = w
	}
	w.count++
	return int64(w.count)
}

func (l *memoryLimiter) evict(now time.Time, window time.Duration) {
	for k, w := range l.windows {
		if now.Sub(w.start) > window {
			delete(l.windows, k)
		}
	}
}
