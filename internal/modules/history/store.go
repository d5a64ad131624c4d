package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockdesk/dashboard/internal/clients/backend"
	"github.com/stockdesk/dashboard/internal/events"
)

// Entry is one trade from the backend's authoritative history.
type Entry struct {
	Asset    string    `json:"asset"`
	Quantity float64   `json:"quantity"`
	Time     time.Time `json:"time"`
	Price    float64   `json:"price"`
	Action   string    `json:"action"`
}

// Fetcher fetches the authoritative trade history. *backend.Client satisfies it.
type Fetcher interface {
	TradeHistory(ctx context.Context) ([]backend.TradeRecord, error)
}

// Store holds a read-only snapshot of the backend's trade history. The
// backend owns the truth; Refresh replaces the whole snapshot, never merges.
type Store struct {
	fetcher Fetcher
	events  *events.Manager
	log     zerolog.Logger

	mu      sync.RWMutex
	entries []Entry
}

// NewStore creates a new history store
func NewStore(fetcher Fetcher, eventMgr *events.Manager, log zerolog.Logger) *Store {
	return &Store{
		fetcher: fetcher,
		events:  eventMgr,
		log:     log.With().Str("service", "history").Logger(),
	}
}

// Refresh re-fetches the authoritative history and swaps the snapshot.
func (s *Store) Refresh(ctx context.Context) error {
	records, err := s.fetcher.TradeHistory(ctx)
	if err != nil {
		return fmt.Errorf("history refresh failed: %w", err)
	}

	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, Entry{
			Asset:    rec.Asset,
			Quantity: rec.Quantity,
			Time:     parseTradeTime(rec.Time),
			Price:    rec.Price,
			Action:   rec.Action,
		})
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	s.log.Debug().Int("entries", len(entries)).Msg("Trade history refreshed")
	if s.events != nil {
		s.events.Emit(events.HistoryRefreshed, "history", map[string]interface{}{
			"entries": len(entries),
		})
	}
	return nil
}

// Entries returns the current snapshot. The slice is a copy; callers cannot
// mutate the store through it.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// parseTradeTime parses the backend's ISO timestamp. A malformed value keeps
// the zero time rather than dropping the entry.
func parseTradeTime(ts string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t
		}
	}
	return time.Time{}
}
