// Package runid generates the timestamp-derived run identifiers used to name
// artifact directories. Identifiers sort lexicographically by creation time
// and are strictly monotonic within a process, so two runs started in the
// same microsecond never collide on disk.
package runid

import (
	"sync"
	"time"
)

// Rendered as 20060102_150405_ffffff with microsecond precision.
const layout = "20060102_150405"

var (
	mu   sync.Mutex
	last time.Time
)

// New returns a fresh run id. If the clock has not advanced past the
// previously issued id (same microsecond, or the clock stepped backwards),
// the timestamp is nudged forward one microsecond.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().UTC().Truncate(time.Microsecond)
	if !now.After(last) {
		now = last.Add(time.Microsecond)
	}
	last = now
	return format(now)
}

func format(t time.Time) string {
	return t.Format(layout) + "_" + microsecondSuffix(t)
}

func microsecondSuffix(t time.Time) string {
	us := t.Nanosecond() / 1000
	buf := [6]byte{'0', '0', '0', '0', '0', '0'}
	for i := 5; i >= 0 && us > 0; i-- {
		buf[i] = byte('0' + us%10)
		us /= 10
	}
	return string(buf[:])
}
