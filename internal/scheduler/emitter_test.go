package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEventBusInProcessFanOut(t *testing.T) {
	bus := NewEventBus(nil, "node-1", zap.NewNop())
	defer bus.Close()

	sub := bus.Subscribe(8)
	bus.Emit(Event{Type: EventExecutionScheduled, ExecutionID: 7})

	select {
	case ev := <-sub:
		assert.Equal(t, EventExecutionScheduled, ev.Type)
		assert.Equal(t, uint64(7), ev.ExecutionID)
		assert.Equal(t, "node-1", ev.Source)
		assert.NotZero(t, ev.Timestamp)
	case <-time.After(time.Second):
		t.Fatal("event never delivered")
	}
}

func TestEventBusSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewEventBus(nil, "node-1", zap.NewNop())
	defer bus.Close()

	sub := bus.Subscribe(1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.Emit(Event{Type: EventExecutionStarted, ExecutionID: uint64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a slow subscriber")
	}

	// 缓冲只有 1，其余事件被丢弃
	require.Len(t, sub, 1)
}

func TestEventBusCloseTerminatesSubscribers(t *testing.T) {
	bus := NewEventBus(nil, "node-1", zap.NewNop())
	sub := bus.Subscribe(1)

	bus.Close()
	_, open := <-sub
	assert.False(t, open)
}
