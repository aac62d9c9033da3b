package canvas

import (
	"sync/atomic"
	"time"

	"github.com/bep/debounce"
)

// DefaultSettleDelay is how long the canvas must stay still before it is
// recognized.
const DefaultSettleDelay = 500 * time.Millisecond

// Debouncer runs the most recently scheduled function once the delay has
// passed without a newer Schedule call. Cancel drops whatever is pending.
type Debouncer struct {
	debounced func(f func())
	gen       atomic.Uint64
	closed    atomic.Bool
}

func NewDebouncer(after time.Duration) *Debouncer {
	if after <= 0 {
		after = DefaultSettleDelay
	}
	return &Debouncer{debounced: debounce.New(after)}
}

// Schedule replaces any pending function with f and restarts the delay.
func (d *Debouncer) Schedule(f func()) {
	if d.closed.Load() {
		return
	}
	g := d.gen.Add(1)
	d.debounced(func() {
		// A Cancel or newer Schedule after this one was armed wins.
		if d.closed.Load() || d.gen.Load() != g {
			return
		}
		f()
	})
}

// Cancel drops the pending function, if any.
func (d *Debouncer) Cancel() {
	d.gen.Add(1)
}

// Close cancels and ignores every later Schedule.
func (d *Debouncer) Close() {
	d.closed.Store(true)
	d.gen.Add(1)
}
