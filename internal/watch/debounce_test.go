package watch

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_CoalescesRapidNotifies(t *testing.T) {
	var calls int32
	var mu sync.Mutex
	var ids []string

	d := NewDebouncer(30*time.Millisecond, func(watchID string) {
		atomic.AddInt32(&calls, 1)
		mu.Lock()
		ids = append(ids, watchID)
		mu.Unlock()
	})

	d.Notify("w1")
	d.Notify("w1")
	d.Notify("w1")

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	mu.Lock()
	assert.Equal(t, []string{"w1"}, ids)
	mu.Unlock()
}

func TestDebouncer_SeparateWatchesFlushIndependently(t *testing.T) {
	var calls int32
	d := NewDebouncer(30*time.Millisecond, func(watchID string) {
		atomic.AddInt32(&calls, 1)
	})

	d.Notify("w1")
	d.Notify("w2")

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDebouncer_StopPreventsFlush(t *testing.T) {
	var calls int32
	d := NewDebouncer(20*time.Millisecond, func(watchID string) {
		atomic.AddInt32(&calls, 1)
	})

	d.Notify("w1")
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}
