// Package notification fans published alert collections out to consumers
// (SSE clients, badge counters, the CLI printer).
package notification

import (
	"sync"

	"github.com/google/uuid"

	"github.com/channelpulse/channelpulse-go/internal/alerting"
	"github.com/channelpulse/channelpulse-go/internal/logger"
)

// subscriberBuffer is the per-subscriber channel capacity. Publishes to a
// full buffer are dropped so a stalled consumer can never block the
// polling cycle; the next publish carries the full collection anyway.
const subscriberBuffer = 8

// Update is one published state of the alert collection.
type Update struct {
	Alerts      alerting.AlertCollection `json:"alerts"`
	UnreadCount int                      `json:"unreadCount"`
}

// Hub is the subscriber registry. It implements alerting.Publisher.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]chan Update
	log  logger.Logger
}

// NewHub creates an empty hub.
func NewHub(log logger.Logger) *Hub {
	return &Hub{
		subs: make(map[string]chan Update),
		log:  log,
	}
}

// Subscribe registers a consumer and returns its token and channel.
// The channel closes on Unsubscribe.
func (h *Hub) Subscribe() (string, <-chan Update) {
	id := uuid.NewString()
	ch := make(chan Update, subscriberBuffer)
	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a consumer. Unknown tokens are a no-op.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	ch, ok := h.subs[id]
	delete(h.subs, id)
	h.mu.Unlock()
	if ok {
		close(ch)
	}
}

// SubscriberCount returns the number of registered consumers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// PublishAlerts delivers the collection to every subscriber without
// blocking. Each update is a complete snapshot, so dropping one for a slow
// consumer loses nothing once the next arrives.
func (h *Hub) PublishAlerts(alerts alerting.AlertCollection, unread int) {
	update := Update{Alerts: alerts, UnreadCount: unread}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs {
		select {
		case ch <- update:
		default:
			h.log.Debug("dropping update for slow subscriber", logger.String("subscriber", id))
		}
	}
}
