package trading

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stockdesk/dashboard/internal/clients/backend"
	"github.com/stockdesk/dashboard/internal/events"
)

// Submitter posts a trade intent to the backend. *backend.Client satisfies it.
type Submitter interface {
	SubmitTrade(ctx context.Context, asset string, quantity float64, action string) (backend.TradeConfirmation, error)
}

// HistoryRefresher re-fetches the authoritative trade history.
// *history.Store satisfies it.
type HistoryRefresher interface {
	Refresh(ctx context.Context) error
}

// Coordinator submits trade intents and, on confirmed success, triggers a
// single refresh of the authoritative trade history. No local merge: the
// backend's copy is the only truth.
type Coordinator struct {
	submitter Submitter
	history   HistoryRefresher
	events    *events.Manager
	log       zerolog.Logger
}

// NewCoordinator creates a new trade coordinator
func NewCoordinator(submitter Submitter, history HistoryRefresher, eventMgr *events.Manager, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		submitter: submitter,
		history:   history,
		events:    eventMgr,
		log:       log.With().Str("service", "trading").Logger(),
	}
}

// SubmitTrade validates the intent's shape, submits it, and refreshes trade
// history exactly once on success. Business validation is the backend's job;
// its rejection message rides back on the returned error.
func (c *Coordinator) SubmitTrade(ctx context.Context, asset string, quantity float64, action Action) (Confirmation, error) {
	if asset == "" {
		return Confirmation{}, fmt.Errorf("asset symbol is required")
	}
	if quantity <= 0 {
		return Confirmation{}, fmt.Errorf("quantity must be positive, got %v", quantity)
	}
	if !action.IsValid() {
		return Confirmation{}, fmt.Errorf("invalid trade action: %q", action)
	}

	resp, err := c.submitter.SubmitTrade(ctx, asset, quantity, string(action))
	if err != nil {
		c.log.Warn().Err(err).
			Str("asset", asset).
			Float64("quantity", quantity).
			Str("action", string(action)).
			Msg("Trade rejected")
		return Confirmation{}, fmt.Errorf("trade submission failed: %w", err)
	}

	conf := Confirmation{
		ID:          uuid.NewString(),
		Asset:       asset,
		Quantity:    quantity,
		Action:      action,
		Message:     resp.Message,
		SubmittedAt: time.Now(),
	}

	c.log.Info().
		Str("trade_id", conf.ID).
		Str("asset", asset).
		Float64("quantity", quantity).
		Str("action", string(action)).
		Msg("Trade executed")

	// Re-fetch the authoritative history rather than appending locally.
	// A refresh failure does not undo the trade; the next refresh catches up.
	if c.history != nil {
		if err := c.history.Refresh(ctx); err != nil {
			c.log.Error().Err(err).Msg("History refresh after trade failed")
		}
	}

	if c.events != nil {
		c.events.Emit(events.TradeExecuted, "trading", map[string]interface{}{
			"trade_id": conf.ID,
			"asset":    asset,
			"quantity": quantity,
			"action":   string(action),
		})
	}

	return conf, nil
}
