package user

import (
	"strings"
	"sync"
	"time"
)

const (
	maxLoginFailures = 5
	loginWindow      = 15 * time.Minute
)

// loginThrottle counts failed sign-ins per email inside a sliding window.
type loginThrottle struct {
	mu       sync.Mutex
	failures map[string][]time.Time
	now      func() time.Time
}

func newLoginThrottle() *loginThrottle {
	return &loginThrottle{failures: make(map[string][]time.Time), now: time.Now}
}

func (t *loginThrottle) blocked(email string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.recent(key(email))) >= maxLoginFailures
}

func (t *loginThrottle) fail(email string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := key(email)
	t.failures[k] = append(t.recent(k), t.now())
}

func (t *loginThrottle) reset(email string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, key(email))
}

// recent drops entries older than the window. Caller holds mu.
func (t *loginThrottle) recent(k string) []time.Time {
	cutoff := t.now().Add(-loginWindow)
	kept := t.failures[k][:0]
	for _, at := range t.failures[k] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	if len(kept) == 0 {
		delete(t.failures, k)
		return nil
	}
	t.failures[k] = kept
	return kept
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
