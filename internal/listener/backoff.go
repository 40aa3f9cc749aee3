package listener

import "time"

// Backoff produces reconnect delays that start at a floor, double on each
// consecutive failure, and are capped at a ceiling. Not safe for concurrent
// use; the listener owns it from a single goroutine.
type Backoff struct {
	floor   time.Duration
	ceiling time.Duration
	current time.Duration
}

// NewBackoff creates a backoff starting at floor and capped at ceiling.
func NewBackoff(floor, ceiling time.Duration) *Backoff {
	if floor <= 0 {
		floor = DefaultBackoffFloor
	}
	if ceiling < floor {
		ceiling = floor
	}

	return &Backoff{floor: floor, ceiling: ceiling, current: floor}
}

// Next returns the delay to sleep before the next attempt and advances the
// sequence.
func (b *Backoff) Next() time.Duration {
	d := b.current

	b.current *= 2
	if b.current > b.ceiling {
		b.current = b.ceiling
	}

	return d
}

// Reset returns the sequence to the floor. Called after a successful
// reconnection.
func (b *Backoff) Reset() {
	b.current = b.floor
}
