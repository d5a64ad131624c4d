package stats

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stockdesk/dashboard/internal/clients/backend"
)

// Source provides the backend reads this module passes through.
type Source interface {
	AggStats(ctx context.Context) (backend.AggStats, error)
	AssetDetail(ctx context.Context, ticker string) (map[string]interface{}, error)
}

// Service exposes portfolio composition stats and per-asset detail. Both are
// straight reads of backend state; nothing is cached here.
type Service struct {
	source Source
	log    zerolog.Logger
}

// NewService creates a new stats service
func NewService(source Source, log zerolog.Logger) *Service {
	return &Service{
		source: source,
		log:    log.With().Str("service", "stats").Logger(),
	}
}

// AggStats returns the sector and industry exposure breakdown.
func (s *Service) AggStats(ctx context.Context) (backend.AggStats, error) {
	stats, err := s.source.AggStats(ctx)
	if err != nil {
		return backend.AggStats{}, fmt.Errorf("failed to get aggregate stats: %w", err)
	}
	return stats, nil
}

// AssetDetail returns issuer and valuation detail for one asset.
func (s *Service) AssetDetail(ctx context.Context, ticker string) (map[string]interface{}, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	detail, err := s.source.AssetDetail(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset detail: %w", err)
	}
	return detail, nil
}
