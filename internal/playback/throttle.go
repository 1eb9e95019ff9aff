package playback

import "time"

const (
	DefaultDebounce = 500 * time.Millisecond
	DefaultCooldown = 1000 * time.Millisecond
)

// Debouncer is a trailing-edge debounce over values of type T.
type Debouncer[T any] struct {
	window   time.Duration
	held     T
	deadline time.Time
	armed    bool
}

// NewDebouncer creates a debouncer that fires window after the last push.
func NewDebouncer[T any](window time.Duration) *Debouncer[T] {
	return &Debouncer[T]{window: window}
}

// Push replaces the held value and moves the deadline to now+window.
func (d *Debouncer[T]) Push(now time.Time, v T) {
	d.held = v
	d.deadline = now.Add(d.window)
	d.armed = true
}

// Fire releases the held value once now reaches the deadline.
func (d *Debouncer[T]) Fire(now time.Time) (T, bool) {
	var zero T
	if !d.armed || now.Before(d.deadline) {
		return zero, false
	}

	v := d.held
	d.held = zero
	d.armed = false
	return v, true
}

// Deadline reports when the held value fires, if any.
func (d *Debouncer[T]) Deadline() (time.Time, bool) {
	return d.deadline, d.armed
}

// Cooldown admits at most one value per window and remembers the latest refused one.
type Cooldown[T any] struct {
	window     time.Duration
	last       time.Time
	active     bool
	pending    T
	hasPending bool
}

// NewCooldown creates a cooldown stage with the given window.
func NewCooldown[T any](window time.Duration) *Cooldown[T] {
	return &Cooldown[T]{window: window}
}

// Offer accepts v when the stage is idle and a full window has passed since the
// last acceptance. A refused value overwrites the pending slot.
func (c *Cooldown[T]) Offer(now time.Time, v T) bool {
	if !c.active && (c.last.IsZero() || now.Sub(c.last) >= c.window) {
		c.last = now
		c.active = true
		return true
	}

	c.pending = v
	c.hasPending = true
	return false
}

// Release ends the cooldown once the window has elapsed and hands back the
// pending value, consuming the slot.
func (c *Cooldown[T]) Release(now time.Time) (T, bool) {
	var zero T
	if !c.active || now.Before(c.last.Add(c.window)) {
		return zero, false
	}

	c.active = false
	if !c.hasPending {
		return zero, false
	}

	v := c.pending
	c.pending = zero
	c.hasPending = false
	return v, true
}

// Deadline reports when the active cooldown ends.
func (c *Cooldown[T]) Deadline() (time.Time, bool) {
	return c.last.Add(c.window), c.active
}

// Pending returns the value waiting for the window to close.
func (c *Cooldown[T]) Pending() (T, bool) {
	return c.pending, c.hasPending
}

// Active reports whether the stage is refusing offers.
func (c *Cooldown[T]) Active() bool { return c.active }

// LastAccepted returns the time of the most recent acceptance.
func (c *Cooldown[T]) LastAccepted() time.Time { return c.last }
