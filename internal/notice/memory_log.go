package notice

import (
	"context"
	"sync"
)

// MemoryLog keeps notices in process, newest last.
type MemoryLog struct {
	mu      sync.Mutex
	notices []Notice
	max     int
}

func NewMemoryLog(max int) *MemoryLog {
	if max <= 0 {
		max = DefaultLogSize
	}
	return &MemoryLog{max: max}
}

func (l *MemoryLog) Notify(_ context.Context, n Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, n)
	if over := len(l.notices) - l.max; over > 0 {
		l.notices = l.notices[over:]
	}
}

// Recent returns up to limit notices, newest first.
func (l *MemoryLog) Recent(_ context.Context, limit int) ([]Notice, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if limit <= 0 || limit > len(l.notices) {
		limit = len(l.notices)
	}
	out := make([]Notice, 0, limit)
	for i := len(l.notices) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.notices[i])
	}
	return out, nil
}

// All returns every retained notice, oldest first.
func (l *MemoryLog) All() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Notice(nil), l.notices...)
}

// Count returns how many retained notices have the given level.
func (l *MemoryLog) Count(level Level) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, x := range l.notices {
		if x.Level == level {
			n++
		}
	}
	return n
}

func (l *MemoryLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = nil
}
