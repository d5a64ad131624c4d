package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"

	"github.com/stockdesk/dashboard/internal/clients/backend"
	"github.com/stockdesk/dashboard/internal/format"
	"github.com/stockdesk/dashboard/internal/modules/aggregation"
	"github.com/stockdesk/dashboard/internal/modules/periods"
	"github.com/stockdesk/dashboard/internal/modules/trading"
)

// historyRow is one trade-history entry projected for display.
type historyRow struct {
	Asset    string  `json:"asset"`
	Quantity float64 `json:"quantity"`
	Time     string  `json:"time"`
	Price    string  `json:"price"`
	Action   string  `json:"action"`
}

// portfolioRow is one aggregated position projected for display.
type portfolioRow struct {
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	AverageCost   string  `json:"average_cost"`
	CurrentPrice  string  `json:"current_price"`
	DayChange     string  `json:"day_change"`
	YearChange    string  `json:"year_change"`
	UnrealizedPnL string  `json:"unrealized_pnl"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"service":     "stockdesk-dashboard",
		"chart_state": s.charts.State(),
		"memory": map[string]interface{}{
			"alloc_mb": m.Alloc / 1024 / 1024,
			"num_gc":   m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	})
}

// handleHistory returns the trade-history snapshot
// GET /api/dashboard/history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries := s.history.Entries()

	rows := make([]historyRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, historyRow{
			Asset:    e.Asset,
			Quantity: e.Quantity,
			Time:     format.Timestamp(e.Time),
			Price:    format.Price(e.Price),
			Action:   e.Action,
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"rows": rows})
}

// handleHistoryRefresh re-fetches authoritative history on demand
// POST /api/dashboard/history/refresh
func (s *Server) handleHistoryRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Refresh(r.Context()); err != nil {
		s.log.Error().Err(err).Msg("History refresh failed")
		s.writeError(w, http.StatusBadGateway, backendMessage(err, "failed to refresh trade history"))
		return
	}
	s.handleHistory(w, r)
}

// handlePortfolio returns the last known-good aggregation snapshot
// GET /api/dashboard/portfolio
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.aggregation.View()
	if !ok {
		s.writeJSON(w, http.StatusOK, map[string]interface{}{"available": false})
		return
	}
	s.writeJSON(w, http.StatusOK, portfolioResponse(snap))
}

// handlePortfolioRefresh runs a user-initiated aggregation cycle. Unlike the
// background job, failures are surfaced to the caller.
// POST /api/dashboard/portfolio/refresh
func (s *Server) handlePortfolioRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.aggregation.Refresh(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Aggregation refresh failed")
		s.writeError(w, http.StatusBadGateway, backendMessage(err, "failed to refresh portfolio"))
		return
	}
	s.writeJSON(w, http.StatusOK, portfolioResponse(snap))
}

func portfolioResponse(snap aggregation.Snapshot) map[string]interface{} {
	rows := make([]portfolioRow, 0, len(snap.Rows))
	for _, row := range snap.Rows {
		rows = append(rows, portfolioRow{
			Symbol:        row.Symbol,
			Quantity:      row.Quantity,
			AverageCost:   format.Price(row.AverageCost),
			CurrentPrice:  format.Price(row.CurrentPrice),
			DayChange:     format.Percent(row.DayChange),
			YearChange:    format.Percent(row.YearChange),
			UnrealizedPnL: format.Price(row.UnrealizedPnL),
		})
	}

	return map[string]interface{}{
		"available": true,
		"rows":      rows,
		"totals": map[string]string{
			"account_balance":      format.Price(snap.Totals.AccountBalance),
			"total_unrealized_pnl": format.Price(snap.Totals.TotalUnrealizedPnL),
		},
		"at": snap.At,
	}
}

// handlePeriod resolves a period's sampling and axis policy
// GET /api/dashboard/periods/{period}
func (s *Server) handlePeriod(w http.ResponseWriter, r *http.Request) {
	period := periods.Period(chi.URLParam(r, "period"))
	settings := periods.Resolve(period)

	current := periods.Interval(r.URL.Query().Get("interval"))
	selected := periods.Normalize(settings, current)

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"period":   period,
		"settings": settings,
		"selected": selected,
	})
}

// handleChartGet returns the live chart model
// GET /api/dashboard/chart
func (s *Server) handleChartGet(w http.ResponseWriter, r *http.Request) {
	model, ok := s.charts.Session()
	if !ok {
		s.writeError(w, http.StatusNotFound, "no chart rendered")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"state": s.charts.State(),
		"model": model,
	})
}

// handleChartSet swaps the live chart to a new selection
// POST /api/dashboard/chart
func (s *Server) handleChartSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ticker   string `json:"ticker"`
		Period   string `json:"period"`
		Interval string `json:"interval"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Ticker == "" {
		s.writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	ok := s.charts.SetSession(r.Context(), req.Ticker, periods.Period(req.Period), periods.Interval(req.Interval))
	if !ok {
		// The prior chart, if any, is still rendered; the client keeps it.
		s.writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"ok":    false,
			"state": s.charts.State(),
		})
		return
	}

	model, _ := s.charts.Session()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"state": s.charts.State(),
		"model": model,
	})
}

// handleChartRefresh re-fetches the current selection
// POST /api/dashboard/chart/refresh
func (s *Server) handleChartRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.charts.Refresh(r.Context()) {
		model, rendered := s.charts.Session()
		if !rendered {
			s.writeError(w, http.StatusNotFound, "no chart to refresh")
			return
		}
		// The refresh failed; the prior render is still live.
		s.writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"ok":    false,
			"state": s.charts.State(),
			"model": model,
		})
		return
	}

	model, _ := s.charts.Session()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"state": s.charts.State(),
		"model": model,
	})
}

// handleTrade submits a trade intent
// POST /api/dashboard/trade
func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Asset    string  `json:"asset"`
		Quantity float64 `json:"quantity"`
		Action   string  `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	action, err := trading.ActionFromString(req.Action)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conf, err := s.trading.SubmitTrade(r.Context(), req.Asset, req.Quantity, action)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			s.writeError(w, http.StatusBadGateway, backendMessage(err, "trade rejected"))
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.writeJSON(w, http.StatusCreated, conf)
}

// handleAggStats returns the sector/industry exposure breakdown
// GET /api/stats/aggregate
func (s *Server) handleAggStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.AggStats(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to get aggregate stats")
		s.writeError(w, http.StatusBadGateway, backendMessage(err, "failed to get aggregate stats"))
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// handleAssetDetail returns issuer/valuation detail for one asset
// POST /api/stats/asset
func (s *Server) handleAssetDetail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ticker string `json:"Ticker"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	detail, err := s.stats.AssetDetail(r.Context(), req.Ticker)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, backendMessage(err, "failed to get asset detail"))
		return
	}
	s.writeJSON(w, http.StatusOK, detail)
}

// backendMessage prefers the backend-provided message over a generic one.
func backendMessage(err error, fallback string) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return fallback
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
