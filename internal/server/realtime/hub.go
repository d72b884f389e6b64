// Package realtime fans change-feed events out to websocket subscribers.
package realtime

import (
	"sync"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/models"
)

// subscriber buffers events per connection. A slow consumer that fills its
// buffer is dropped rather than blocking the publisher; the client treats a
// closed feed as a transient failure and resubscribes.
const subscriberBuffer = 32

type subscriber struct {
	ch          chan models.Event
	workspace   string
	collections map[string]bool
}

// wants reports whether the subscriber asked for this collection. An empty
// filter means all collections.
func (s *subscriber) wants(collection string) bool {
	if len(s.collections) == 0 {
		return true
	}
	return s.collections[collection]
}

// Hub routes events to subscribers by workspace and collection filter.
type Hub struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Subscribe registers a consumer for a workspace's events, restricted to the
// given collections (nil or empty means all). The returned cancel func must
// be called when the consumer goes away; it closes the event channel.
func (h *Hub) Subscribe(workspace string, collections []string) (<-chan models.Event, func()) {
	sub := &subscriber{
		ch:        make(chan models.Event, subscriberBuffer),
		workspace: workspace,
	}
	if len(collections) > 0 {
		sub.collections = make(map[string]bool, len(collections))
		for _, c := range collections {
			sub.collections[c] = true
		}
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[sub]; ok {
			delete(h.subs, sub)
			close(sub.ch)
		}
		h.mu.Unlock()
	}
	return sub.ch, cancel
}

// Publish delivers an event to every matching subscriber. Subscribers whose
// buffer is full are disconnected.
func (h *Hub) Publish(workspace string, ev models.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		if sub.workspace != workspace || !sub.wants(ev.Collection) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			delete(h.subs, sub)
			close(sub.ch)
		}
	}
}

// Len reports the number of active subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
