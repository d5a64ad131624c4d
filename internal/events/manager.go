package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType represents different event types
type EventType string

const (
	AggregationRefreshed EventType = "AGGREGATION_REFRESHED"
	ChartRendered        EventType = "CHART_RENDERED"
	ChartFailed          EventType = "CHART_FAILED"
	TradeExecuted        EventType = "TRADE_EXECUTED"
	HistoryRefreshed     EventType = "HISTORY_REFRESHED"
	ErrorOccurred        EventType = "ERROR_OCCURRED"
)

// Event represents a pipeline event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}

// Manager handles event emission and fan-out to subscribers. Components emit
// instead of calling each other back, so the presentation layer attaches
// without the core knowing about it.
type Manager struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	log    zerolog.Logger
}

// NewManager creates a new event manager
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		subs: make(map[int]chan Event),
		log:  log.With().Str("service", "events").Logger(),
	}
}

// Emit publishes an event to all subscribers. Publish never blocks: a
// subscriber that has fallen behind misses the event.
func (m *Manager) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Module:    module,
	}

	m.log.Debug().
		Str("event_type", string(eventType)).
		Str("module", module).
		Msg("Event emitted")

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, ch := range m.subs {
		select {
		case ch <- event:
		default:
			m.log.Warn().
				Int("subscriber", id).
				Str("event_type", string(eventType)).
				Msg("Subscriber lagging, event dropped")
		}
	}
}

// EmitError emits an error event
func (m *Manager) EmitError(module string, err error, context map[string]interface{}) {
	data := map[string]interface{}{
		"error":   err.Error(),
		"context": context,
	}
	m.Emit(ErrorOccurred, module, data)
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called to release the channel; after cancel the channel is closed.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan Event, 16)
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}
