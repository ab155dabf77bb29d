package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerCoalescesBurst(t *testing.T) {
	d := New(40 * time.Millisecond)
	defer d.Stop()

	var fired atomic.Int32
	var last atomic.Int32
	for i := 1; i <= 3; i++ {
		n := int32(i)
		d.Trigger(func() {
			fired.Add(1)
			last.Store(n)
		})
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(3), last.Load(), "only the last action of a burst runs")

	// Nothing else fires afterwards.
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestSeparateBurstsFireSeparately(t *testing.T) {
	d := New(20 * time.Millisecond)
	defer d.Stop()

	var fired atomic.Int32
	d.Trigger(func() { fired.Add(1) })
	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, time.Second, time.Millisecond)

	d.Trigger(func() { fired.Add(1) })
	require.Eventually(t, func() bool {
		return fired.Load() == 2
	}, time.Second, time.Millisecond)
}

func TestStopCancelsPending(t *testing.T) {
	d := New(20 * time.Millisecond)

	var fired atomic.Int32
	d.Trigger(func() { fired.Add(1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	d.Stop() // repeated Stop is safe
}
