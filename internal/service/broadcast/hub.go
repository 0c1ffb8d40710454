package broadcast

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhouzirui/showcase/backend/internal/model/testimonial"
)

// EventType names a logical rendering phase.
type EventType string

const (
	EventRender          EventType = "render"
	EventTransitionStart EventType = "transition-start"
	EventTransitionEnd   EventType = "transition-end"
)

// DefaultBuffer is the per-subscriber event buffer.
const DefaultBuffer = 32

// Event is pushed to the page for every render signal of the carousel.
type Event struct {
	ID          string                   `json:"id"`
	Type        EventType                `json:"type"`
	Slot        int                      `json:"slot"`
	Testimonial *testimonial.Testimonial `json:"testimonial,omitempty"`
	Timestamp   time.Time                `json:"timestamp"`
}

// Hub fans carousel render signals out to connected pages. It never blocks
// the publisher: a subscriber whose buffer is full misses the event.
type Hub struct {
	logger *zap.Logger
	buffer int
	now    func() time.Time

	mu          sync.RWMutex
	subscribers map[string]*Subscription
}

// Subscription receives hub events until closed.
type Subscription struct {
	ID      string
	events  chan Event
	hub     *Hub
	once    sync.Once
	dropped atomic.Int64
}

// NewHub creates a Hub. buffer <= 0 selects DefaultBuffer.
func NewHub(logger *zap.Logger, buffer int) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		logger:      logger,
		buffer:      buffer,
		now:         time.Now,
		subscribers: make(map[string]*Subscription),
	}
}

// Subscribe registers a new listener.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		ID:     uuid.NewString(),
		events: make(chan Event, h.buffer),
		hub:    h,
	}

	h.mu.Lock()
	h.subscribers[sub.ID] = sub
	count := len(h.subscribers)
	h.mu.Unlock()

	h.logger.Debug("carousel subscriber joined", zap.String("subscriber", sub.ID), zap.Int("subscribers", count))
	return sub
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Render implements rotation.Renderer.
func (h *Hub) Render(slot int, item testimonial.Testimonial) {
	h.publish(EventRender, slot, &item)
}

// TransitionStart implements rotation.Renderer.
func (h *Hub) TransitionStart(slot int) {
	h.publish(EventTransitionStart, slot, nil)
}

// TransitionEnd implements rotation.Renderer.
func (h *Hub) TransitionEnd(slot int) {
	h.publish(EventTransitionEnd, slot, nil)
}

func (h *Hub) publish(kind EventType, slot int, item *testimonial.Testimonial) {
	event := Event{
		ID:          uuid.NewString(),
		Type:        kind,
		Slot:        slot,
		Testimonial: item,
		Timestamp:   h.now().UTC(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers {
		select {
		case sub.events <- event:
		default:
			if n := sub.dropped.Add(1); n == 1 || n%100 == 0 {
				h.logger.Warn("carousel subscriber lagging, dropping events",
					zap.String("subscriber", sub.ID),
					zap.Int64("dropped", n))
			}
		}
	}
}

// Events returns the receive channel. It is closed by Close.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Dropped reports how many events this subscriber missed.
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

// Close unregisters the subscription and closes its channel. Safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subscribers, s.ID)
		s.hub.mu.Unlock()
		close(s.events)
		s.hub.logger.Debug("carousel subscriber left", zap.String("subscriber", s.ID))
	})
}
