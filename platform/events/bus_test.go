package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type pinged struct {
	BaseEvent
}

func (pinged) EventName() string { return "test.pinged" }

func TestPublishSyncJoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)
	var calls int32
	bus.Subscribe("test.pinged", HandlerFunc(func(context.Context, Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("first")
	}))
	bus.Subscribe("test.pinged", HandlerFunc(func(context.Context, Event) error {
		atomic.AddInt32(&calls, 1)
		panic("boom")
	}))

	err := bus.PublishSync(context.Background(), pinged{BaseEvent: NewBaseEvent()})
	if err == nil {
		t.Fatal("expected joined error")
	}
	if calls != 2 {
		t.Fatalf("expected both handlers to run, got %d", calls)
	}
}

func TestPublishRunsHandlersAfterCancel(t *testing.T) {
	bus := NewInMemoryBus(nil)
	var seen int32
	bus.Subscribe("test.pinged", HandlerFunc(func(ctx context.Context, _ Event) error {
		if ctx.Err() == nil {
			atomic.AddInt32(&seen, 1)
		}
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, pinged{BaseEvent: NewBaseEvent()})
	bus.Wait()

	if seen != 1 {
		t.Fatalf("handler should see a live context, seen=%d", seen)
	}
}

func TestNewBaseEventStampsUTC(t *testing.T) {
	if loc := NewBaseEvent().OccurredAt().Location(); loc != time.UTC {
		t.Fatalf("location = %v, want UTC", loc)
	}
}
