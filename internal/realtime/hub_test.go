package realtime

import (
	"fmt"
	"testing"
	"time"

	"backend-helpqueue/internal/models"

	"github.com/stretchr/testify/assert"
)

func collect(t *testing.T, sub *Subscriber, n int) []models.Event {
	t.Helper()
	events := make([]models.Event, 0, n)
	for len(events) < n {
		select {
		case ev := <-sub.Events():
			events = append(events, ev)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d of %d", len(events)+1, n)
		}
	}
	return events
}

func TestHub_PreservesPerSubscriberOrder(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("sec1")
	defer hub.Unsubscribe(sub)

	for i := 0; i < 5; i++ {
		hub.Publish("sec1", models.Event{
			EventID:   fmt.Sprintf("ev-%d", i),
			Type:      models.EventQueueUpdated,
			SessionID: "sec1",
		})
	}

	events := collect(t, sub, 5)
	for i, ev := range events {
		assert.Equal(t, fmt.Sprintf("ev-%d", i), ev.EventID)
	}
}

func TestHub_RoomsAreIsolated(t *testing.T) {
	hub := NewHub()
	sub1 := hub.Subscribe("sec1")
	sub2 := hub.Subscribe("sec2")
	defer hub.Unsubscribe(sub1)
	defer hub.Unsubscribe(sub2)

	hub.Publish("sec1", models.Event{EventID: "only-sec1", SessionID: "sec1"})

	events := collect(t, sub1, 1)
	assert.Equal(t, "only-sec1", events[0].EventID)

	select {
	case ev := <-sub2.Events():
		t.Fatalf("sec2 subscriber received stray event %s", ev.EventID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_NoReplayForLateSubscribers(t *testing.T) {
	hub := NewHub()

	// Nobody is listening yet; the event is simply gone.
	hub.Publish("sec1", models.Event{EventID: "before"})

	sub := hub.Subscribe("sec1")
	defer hub.Unsubscribe(sub)

	hub.Publish("sec1", models.Event{EventID: "after"})
	events := collect(t, sub, 1)
	assert.Equal(t, "after", events[0].EventID)
}

func TestHub_PublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("sec1")
	defer hub.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Nobody drains sub; overflow past the buffer must be dropped,
		// not waited on.
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.Publish("sec1", models.Event{EventID: fmt.Sprintf("ev-%d", i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	assert.Len(t, sub.Events(), subscriberBuffer)
}

func TestHub_UnsubscribeClosesStream(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("sec1")
	hub.Unsubscribe(sub)

	_, open := <-sub.Events()
	assert.False(t, open)

	// Publishing after the room emptied must not panic.
	hub.Publish("sec1", models.Event{EventID: "late"})
}
