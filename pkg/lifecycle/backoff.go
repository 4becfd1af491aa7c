package lifecycle

import (
	"math/rand"
	"time"
)

// Backoff implements exponential backoff with jitter.
// A zero initial duration disables waiting entirely.
type Backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

// NewBackoff creates a new backoff with the given initial and max durations.
func NewBackoff(initial, max time.Duration) *Backoff {
	if max < initial {
		max = initial
	}
	return &Backoff{
		initial: initial,
		max:     max,
		current: initial,
	}
}

// Next returns the current delay with ±20% jitter and doubles the base for
// the following call.
func (b *Backoff) Next() time.Duration {
	if b.current <= 0 {
		return 0
	}
	jitter := float64(b.current) * 0.2 * (rand.Float64()*2 - 1)
	d := time.Duration(float64(b.current) + jitter)

	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return d
}

// Sleep sleeps for Next().
func (b *Backoff) Sleep() {
	if d := b.Next(); d > 0 {
		time.Sleep(d)
	}
}

// Reset resets the backoff to the initial duration.
func (b *Backoff) Reset() {
	b.current = b.initial
}

// Current returns the current backoff duration.
func (b *Backoff) Current() time.Duration {
	return b.current
}
