package notification

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channelpulse/channelpulse-go/internal/alerting"
	"github.com/channelpulse/channelpulse-go/internal/logger"
)

func testHub() *Hub {
	return NewHub(logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil))
}

func TestHub_SubscribeAndPublish(t *testing.T) {
	h := testHub()
	_, ch := h.Subscribe()
	require.Equal(t, 1, h.SubscriberCount())

	alerts := alerting.AlertCollection{{ID: "a1", RuleID: "r1"}}
	h.PublishAlerts(alerts, 1)

	select {
	case update := <-ch:
		assert.Equal(t, alerts, update.Alerts)
		assert.Equal(t, 1, update.UnreadCount)
	case <-time.After(time.Second):
		t.Fatal("expected an update")
	}
}

func TestHub_PublishReachesAllSubscribers(t *testing.T) {
	h := testHub()
	_, ch1 := h.Subscribe()
	_, ch2 := h.Subscribe()

	h.PublishAlerts(alerting.AlertCollection{{ID: "a1"}}, 1)

	for _, ch := range []<-chan Update{ch1, ch2} {
		select {
		case update := <-ch:
			assert.Len(t, update.Alerts, 1)
		case <-time.After(time.Second):
			t.Fatal("subscriber missed the update")
		}
	}
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	h := testHub()
	id, ch := h.Subscribe()

	h.Unsubscribe(id)

	_, open := <-ch
	assert.False(t, open, "channel must close on unsubscribe")
	assert.Zero(t, h.SubscriberCount())

	h.Unsubscribe(id) // second call is a no-op
	h.Unsubscribe("never-existed")
}

func TestHub_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := testHub()
	id, ch := h.Subscribe()

	// Fill the buffer and keep publishing; none of these may block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*3; i++ {
			h.PublishAlerts(alerting.AlertCollection{{ID: "a1"}}, 0)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	// The buffer holds at most subscriberBuffer updates; the rest dropped.
	drained := 0
	for {
		select {
		case <-ch:
			drained++
			continue
		default:
		}
		break
	}
	assert.LessOrEqual(t, drained, subscriberBuffer)
	h.Unsubscribe(id)
}

func TestHub_PublishWithNoSubscribers(t *testing.T) {
	h := testHub()
	h.PublishAlerts(alerting.AlertCollection{{ID: "a1"}}, 1) // must not panic
	assert.Zero(t, h.SubscriberCount())
}
