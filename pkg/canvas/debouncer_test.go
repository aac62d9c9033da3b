package canvas

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const settle = 20 * time.Millisecond

func TestDebouncer_LastScheduleWins(t *testing.T) {
	d := NewDebouncer(settle)
	var got atomic.Int32

	for i := 1; i <= 5; i++ {
		n := int32(i)
		d.Schedule(func() { got.Store(n) })
	}

	assert.Eventually(t, func() bool { return got.Load() == 5 }, time.Second, 5*time.Millisecond)
}

func TestDebouncer_FiresOnce(t *testing.T) {
	d := NewDebouncer(settle)
	var calls atomic.Int32

	for i := 0; i < 10; i++ {
		d.Schedule(func() { calls.Add(1) })
	}

	time.Sleep(10 * settle)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(settle)
	var calls atomic.Int32

	d.Schedule(func() { calls.Add(1) })
	d.Cancel()

	time.Sleep(5 * settle)
	assert.Equal(t, int32(0), calls.Load())

	// Still usable after a cancel.
	d.Schedule(func() { calls.Add(1) })
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestDebouncer_Close(t *testing.T) {
	d := NewDebouncer(settle)
	var calls atomic.Int32

	d.Schedule(func() { calls.Add(1) })
	d.Close()
	d.Schedule(func() { calls.Add(1) })

	time.Sleep(5 * settle)
	assert.Equal(t, int32(0), calls.Load())
}

func TestDebouncer_DefaultDelay(t *testing.T) {
	assert.NotNil(t, NewDebouncer(0))
}
