package aggregation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/stockdesk/dashboard/internal/clients/backend"
	"github.com/stockdesk/dashboard/internal/events"
)

// MarketData provides the market-side fetches an aggregation cycle needs.
// *backend.Client satisfies it; tests substitute mocks.
type MarketData interface {
	Positions(ctx context.Context) ([]backend.AggregatePosition, error)
	CurrentPrice(ctx context.Context, ticker string) (float64, error)
	ChangeMetrics(ctx context.Context, ticker string) (backend.Change, error)
	AccountBalance(ctx context.Context) (float64, error)
}

// Service computes portfolio-wide unrealized P/L. Each cycle fans out one
// quote fetch per position and commits the batch only when every sub-fetch
// succeeded; a failed cycle leaves the previous snapshot in place.
type Service struct {
	market MarketData
	events *events.Manager
	log    zerolog.Logger

	mu       sync.RWMutex
	snapshot Snapshot
	haveSnap bool
}

// NewService creates a new aggregation service
func NewService(market MarketData, eventMgr *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		market: market,
		events: eventMgr,
		log:    log.With().Str("service", "aggregation").Logger(),
	}
}

// Refresh runs one aggregation cycle and returns the committed snapshot.
// All-or-nothing: any sub-fetch failure fails the cycle and the last
// known-good snapshot stays visible through View.
func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	positions, err := s.market.Positions(ctx)
	if err != nil {
		return Snapshot{}, s.cycleFailed(err)
	}

	rows := make([]Row, len(positions))
	var balance float64

	g, gctx := errgroup.WithContext(ctx)

	// Balance runs concurrently with the per-asset fan-out but is part of
	// the same batch: if it fails, nothing commits.
	g.Go(func() error {
		b, err := s.market.AccountBalance(gctx)
		if err != nil {
			return err
		}
		balance = b
		return nil
	})

	for i, pos := range positions {
		i, pos := i, pos
		g.Go(func() error {
			price, err := s.market.CurrentPrice(gctx, pos.Asset)
			if err != nil {
				return err
			}
			change, err := s.market.ChangeMetrics(gctx, pos.Asset)
			if err != nil {
				return err
			}
			rows[i] = Row{
				Symbol:        pos.Asset,
				Quantity:      pos.Quantity,
				AverageCost:   pos.AveragePrice,
				CurrentPrice:  price,
				DayChange:     change.Day,
				YearChange:    change.Year,
				UnrealizedPnL: pos.Quantity * (price - pos.AveragePrice),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Snapshot{}, s.cycleFailed(err)
	}

	var totalPnL float64
	for _, row := range rows {
		totalPnL += row.UnrealizedPnL
	}

	snap := Snapshot{
		Rows: rows,
		Totals: Totals{
			AccountBalance:     balance,
			TotalUnrealizedPnL: totalPnL,
		},
		At: time.Now(),
	}

	s.mu.Lock()
	s.snapshot = snap
	s.haveSnap = true
	s.mu.Unlock()

	s.log.Info().
		Int("positions", len(rows)).
		Float64("total_pnl", totalPnL).
		Msg("Aggregation cycle completed")

	if s.events != nil {
		s.events.Emit(events.AggregationRefreshed, "aggregation", map[string]interface{}{
			"positions": len(rows),
			"total_pnl": totalPnL,
		})
	}

	return snap, nil
}

func (s *Service) cycleFailed(err error) error {
	if s.events != nil {
		s.events.EmitError("aggregation", err, nil)
	}
	return fmt.Errorf("aggregation cycle failed: %w", err)
}

// View returns the last known-good snapshot. The second return is false until
// the first successful cycle.
func (s *Service) View() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.haveSnap
}
