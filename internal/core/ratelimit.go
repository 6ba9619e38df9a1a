package core

import (
	"sync"
	"time"
)

// LimitClass names a throttled traffic class.
type LimitClass string

const (
	// LimitChat covers plain chat messages.
	LimitChat LimitClass = "chat"
	// LimitSubstitution covers substitution requests.
	LimitSubstitution LimitClass = "substitution"
	// LimitTimeout covers timeout requests.
	LimitTimeout LimitClass = "timeout"
)

// LimitRule is the quota for one class within a rolling window.
type LimitRule struct {
	Limit  int
	Window time.Duration
}

// DefaultLimits mirrors the throttle the clients were built against:
// 5 chat messages per 10 seconds, and 3 substitution plus 3 timeout
// requests per 10 seconds, each on its own counter.
func DefaultLimits() map[LimitClass]LimitRule {
	return map[LimitClass]LimitRule{
		LimitChat:         {Limit: 5, Window: 10 * time.Second},
		LimitSubstitution: {Limit: 3, Window: 10 * time.Second},
		LimitTimeout:      {Limit: 3, Window: 10 * time.Second},
	}
}

// ConnLimiter tracks per-class send history for a single connection.
// Connection-scoped, so no cross-connection synchronization exists;
// the mutex only serializes the connection's own pumps.
type ConnLimiter struct {
	mu      sync.Mutex
	rules   map[LimitClass]LimitRule
	history map[LimitClass][]time.Time
	now     func() time.Time
}

func NewConnLimiter(rules map[LimitClass]LimitRule) *ConnLimiter {
	return &ConnLimiter{
		rules:   rules,
		history: make(map[LimitClass][]time.Time),
		now:     time.Now,
	}
}

// Allow reports whether one more event of the class fits in the
// rolling window, recording it when it does. Classes without a rule
// are unthrottled.
func (rl *ConnLimiter) Allow(class LimitClass) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rule, ok := rl.rules[class]
	if !ok || rule.Limit <= 0 {
		return true
	}

	now := rl.now()
	windowStart := now.Add(-rule.Window)

	attempts := rl.history[class]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rule.Limit {
		rl.history[class] = fresh
		return false
	}

	fresh = append(fresh, now)
	rl.history[class] = fresh
	return true
}
