package trading

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/dashboard/internal/clients/backend"
	"github.com/stockdesk/dashboard/pkg/logger"
)

type stubSubmitter struct {
	err   error
	calls int
}

func (s *stubSubmitter) SubmitTrade(ctx context.Context, asset string, quantity float64, action string) (backend.TradeConfirmation, error) {
	s.calls++
	if s.err != nil {
		return backend.TradeConfirmation{}, s.err
	}
	return backend.TradeConfirmation{Message: "Trade added successfully"}, nil
}

type stubRefresher struct {
	calls int
	err   error
}

func (s *stubRefresher) Refresh(ctx context.Context) error {
	s.calls++
	return s.err
}

func newTestCoordinator(sub *stubSubmitter, ref *stubRefresher) *Coordinator {
	log := logger.New(logger.Config{Level: "error"})
	return NewCoordinator(sub, ref, nil, log)
}

func TestSubmitTradeRefreshesHistoryOnce(t *testing.T) {
	sub := &stubSubmitter{}
	ref := &stubRefresher{}
	coord := newTestCoordinator(sub, ref)

	conf, err := coord.SubmitTrade(context.Background(), "AAPL", 5, ActionBuy)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", conf.Asset)
	assert.Equal(t, ActionBuy, conf.Action)
	assert.Equal(t, "Trade added successfully", conf.Message)
	assert.NotEmpty(t, conf.ID)
	assert.Equal(t, 1, sub.calls)
	assert.Equal(t, 1, ref.calls, "exactly one history refresh per successful trade")
}

func TestSubmitTradeFailureSkipsRefresh(t *testing.T) {
	sub := &stubSubmitter{err: &backend.APIError{Status: 500, Message: "Internal server error"}}
	ref := &stubRefresher{}
	coord := newTestCoordinator(sub, ref)

	_, err := coord.SubmitTrade(context.Background(), "AAPL", 5, ActionBuy)
	require.Error(t, err)

	// The rejection carries the backend's message.
	var apiErr *backend.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Internal server error", apiErr.Message)

	assert.Equal(t, 0, ref.calls, "failed trade must not refresh history")
}

func TestSubmitTradeStructuralValidation(t *testing.T) {
	tests := []struct {
		name     string
		asset    string
		quantity float64
		action   Action
	}{
		{name: "empty symbol", asset: "", quantity: 5, action: ActionBuy},
		{name: "zero quantity", asset: "AAPL", quantity: 0, action: ActionBuy},
		{name: "negative quantity", asset: "AAPL", quantity: -3, action: ActionSell},
		{name: "unknown action", asset: "AAPL", quantity: 5, action: Action("Hold")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &stubSubmitter{}
			ref := &stubRefresher{}
			coord := newTestCoordinator(sub, ref)

			_, err := coord.SubmitTrade(context.Background(), tt.asset, tt.quantity, tt.action)
			require.Error(t, err)
			assert.Equal(t, 0, sub.calls, "structurally invalid trade must not reach the backend")
			assert.Equal(t, 0, ref.calls)
		})
	}
}

func TestSubmitTradeSurvivesRefreshFailure(t *testing.T) {
	sub := &stubSubmitter{}
	ref := &stubRefresher{err: errors.New("history refresh failed")}
	coord := newTestCoordinator(sub, ref)

	// The trade itself succeeded; a failed follow-up refresh is logged, not
	// propagated.
	conf, err := coord.SubmitTrade(context.Background(), "AAPL", 5, ActionShort)
	require.NoError(t, err)
	assert.Equal(t, ActionShort, conf.Action)
	assert.Equal(t, 1, ref.calls)
}

func TestActionFromString(t *testing.T) {
	for input, want := range map[string]Action{
		"buy":   ActionBuy,
		"Buy":   ActionBuy,
		"SELL":  ActionSell,
		"Short": ActionShort,
	} {
		got, err := ActionFromString(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ActionFromString("hold")
	assert.Error(t, err)
}
