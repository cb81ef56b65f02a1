package notice

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Subscriber is a live listener, typically one server-sent events stream.
type Subscriber struct {
	ID      string
	Notices chan Notice
}

// Hub broadcasts notices to every live subscriber.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*Subscriber
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]*Subscriber)}
}

func (h *Hub) Subscribe(id string, buffer int) *Subscriber {
	s := &Subscriber{ID: id, Notices: make(chan Notice, buffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[id] = s
	log.Debug().Str("subscriber", id).Int("total", len(h.subs)).Msg("notice subscriber registered")
	return s
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.subs[id]; ok {
		close(s.Notices)
		delete(h.subs, id)
		log.Debug().Str("subscriber", id).Int("total", len(h.subs)).Msg("notice subscriber unregistered")
	}
}

// Close ends every subscription. The hub stays usable for new subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.subs {
		close(s.Notices)
		delete(h.subs, id)
	}
}

// Notify never blocks; a subscriber with a full buffer misses the notice.
func (h *Hub) Notify(_ context.Context, n Notice) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.subs {
		select {
		case s.Notices <- n:
		default:
			log.Warn().Str("subscriber", s.ID).Msg("notice buffer full, skipping")
		}
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
