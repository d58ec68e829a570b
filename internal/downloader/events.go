package downloader

import (
	"sync"

	"github.com/cesargomez89/synqed/internal/domain"
)

// Sink receives queue notifications. Publish must not block for long; it is
// called from the supervision loop.
type Sink interface {
	Publish(ev domain.Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev domain.Event)

func (f SinkFunc) Publish(ev domain.Event) { f(ev) }

// Hub fans events out to subscribers. Each subscriber has a bounded buffer;
// events for a full subscriber are dropped.
type Hub struct {
	subs   map[int]chan domain.Event
	next   int
	buffer int
	mu     sync.RWMutex
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[int]chan domain.Event),
		buffer: buffer,
	}
}

// Subscribe returns an event channel and a function that detaches it.
func (h *Hub) Subscribe() (<-chan domain.Event, func()) {
	h.mu.Lock()
	id := h.next
	h.next++
	ch := make(chan domain.Event, h.buffer)
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Publish(ev domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers returns the number of attached subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// MultiSink publishes to every sink in order.
type MultiSink []Sink

func (m MultiSink) Publish(ev domain.Event) {
	for _, s := range m {
		s.Publish(ev)
	}
}

var discard = SinkFunc(func(domain.Event) {})
