// Package ratelimit tracks remote throttle state and parses retry-after
// hints out of Spotify error messages.
//
// The tracker stores an absolute resume timestamp rather than a countdown:
// [Tracker.IsLimited] self-clears once the current time passes it, so
// callers never need a separate expiry check.
package ratelimit

import (
	"regexp"
	"strconv"
	"sync"
	"time"
)

// DefaultRetryAfter is the conservative fallback used when a throttle
// response carries no parseable duration.
const DefaultRetryAfter = time.Hour

// Retry hints arrive embedded in free-text error messages. These patterns
// are best-effort; anything unmatched falls back to DefaultRetryAfter.
var retryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Retry will occur after:\s*(\d+)\s*s`),
	regexp.MustCompile(`(?i)retry after\s*(\d+)\s*second`),
	regexp.MustCompile(`(?i)retry-after:\s*(\d+)`),
}

// ParseRetryAfter extracts a retry-after duration from a throttle error
// message, defaulting to [DefaultRetryAfter] when no duration is found.
func ParseRetryAfter(text string) time.Duration {
	for _, re := range retryPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			secs, err := strconv.Atoi(m[1])
			if err != nil || secs < 0 {
				continue
			}
			return time.Duration(secs) * time.Second
		}
	}
	return DefaultRetryAfter
}

// Tracker holds the current throttle state. Consulted before every remote
// call and updated whenever a call signals a throttle condition.
type Tracker struct {
	mu      sync.Mutex
	limited bool
	until   time.Time
	context string
	now     func() time.Time
}

// NewTracker creates a Tracker with no active limit.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// Record marks the tracker limited for the given duration.
//
// The context string describes what the engine was doing when the
// throttle hit, for status reporting.
func (t *Tracker) Record(retryAfter time.Duration, context string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.limited = true
	t.until = t.now().Add(retryAfter)
	t.context = context
}

// IsLimited reports whether calls are currently suspended.
//
// Clears itself once the resume time has passed.
func (t *Tracker) IsLimited() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.limited {
		return false
	}
	if !t.now().Before(t.until) {
		t.clearLocked()
		return false
	}
	return true
}

// Clear resets the tracker to an unlimited state.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearLocked()
}

func (t *Tracker) clearLocked() {
	t.limited = false
	t.until = time.Time{}
	t.context = ""
}

// AvailableAt returns the absolute time calls may resume.
//
// The second return value is false when no limit is active.
func (t *Tracker) AvailableAt() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.limited || !t.now().Before(t.until) {
		return time.Time{}, false
	}
	return t.until, true
}

// Context returns the description recorded with the active limit, or "".
func (t *Tracker) Context() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.limited {
		return ""
	}
	return t.context
}
