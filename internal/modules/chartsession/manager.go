package chartsession

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stockdesk/dashboard/internal/events"
	"github.com/stockdesk/dashboard/internal/modules/periods"
)

// State is the chart session lifecycle state.
type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateRendered State = "rendered"
	StateFailed   State = "failed"
)

// SeriesFetcher fetches chart data for one selection. *backend.Client
// satisfies it.
type SeriesFetcher interface {
	ChartSeries(ctx context.Context, ticker, period, interval string) (map[string]float64, error)
}

// Session is one live chart: the selection it was built from, the model sent
// to the renderer, and the exclusively owned drawable.
type Session struct {
	Ticker   string
	Period   periods.Period
	Interval periods.Interval
	Model    Model
	drawable Drawable
}

// Manager owns the single live chart session. Every selection change tears
// down the prior session and builds a new one; stale in-flight fetches are
// discarded at commit time (last request wins).
type Manager struct {
	fetcher  SeriesFetcher
	renderer Renderer
	events   *events.Manager
	log      zerolog.Logger

	mu      sync.Mutex
	gen     uint64 // bumped on every SetSession and Close
	state   State
	current *Session
}

// NewManager creates a new chart session manager
func NewManager(fetcher SeriesFetcher, renderer Renderer, eventMgr *events.Manager, log zerolog.Logger) *Manager {
	return &Manager{
		fetcher:  fetcher,
		renderer: renderer,
		events:   eventMgr,
		state:    StateIdle,
		log:      log.With().Str("component", "chart_session").Logger(),
	}
}

// SetSession fetches fresh series data for the selection and swaps the live
// chart to it. Returns true when the new session was rendered. On any failure
// (transport error, empty or invalid series, superseded request) it returns
// false and the previously rendered session, if any, stays visible.
func (m *Manager) SetSession(ctx context.Context, ticker string, period periods.Period, interval periods.Interval) bool {
	settings := periods.Resolve(period)
	interval = periods.Normalize(settings, interval)

	m.mu.Lock()
	m.gen++
	requestGen := m.gen
	m.state = StateLoading
	m.mu.Unlock()

	requestID := uuid.NewString()
	log := m.log.With().
		Str("request_id", requestID).
		Str("ticker", ticker).
		Str("period", string(period)).
		Str("interval", string(interval)).
		Logger()

	raw, fetchErr := m.fetcher.ChartSeries(ctx, ticker, string(period), string(interval))

	var points []Point
	if fetchErr == nil {
		points, fetchErr = parseSeries(raw)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if requestGen != m.gen {
		// A newer request (or Close) superseded this one while the fetch
		// was in flight. Its result must not take effect, success or not.
		log.Debug().Msg("Discarding superseded chart fetch")
		return false
	}

	if fetchErr != nil || len(points) == 0 {
		m.state = StateFailed
		log.Warn().Err(fetchErr).Msg("Chart fetch failed, keeping prior session")
		if m.events != nil {
			data := map[string]interface{}{"ticker": ticker, "request_id": requestID}
			if fetchErr != nil {
				data["error"] = fetchErr.Error()
			}
			m.events.Emit(events.ChartFailed, "chartsession", data)
		}
		return false
	}

	model := Model{
		Ticker:   ticker,
		Period:   period,
		Interval: interval,
		Axis:     settings,
		Points:   points,
		Summary:  summarize(points),
	}

	// Single-live-instance invariant: the old drawable is gone before the
	// new one exists.
	if m.current != nil && m.current.drawable != nil {
		m.current.drawable.Release()
		m.current = nil
	}

	drawable, err := m.renderer.Render(model)
	if err != nil {
		m.state = StateFailed
		log.Error().Err(err).Msg("Chart render failed")
		if m.events != nil {
			m.events.Emit(events.ChartFailed, "chartsession", map[string]interface{}{
				"ticker": ticker, "request_id": requestID, "error": err.Error(),
			})
		}
		return false
	}

	m.current = &Session{
		Ticker:   ticker,
		Period:   period,
		Interval: interval,
		Model:    model,
		drawable: drawable,
	}
	m.state = StateRendered

	log.Info().Int("points", len(points)).Msg("Chart session rendered")
	if m.events != nil {
		m.events.Emit(events.ChartRendered, "chartsession", map[string]interface{}{
			"ticker": ticker, "points": len(points), "request_id": requestID,
		})
	}
	return true
}

// Refresh re-runs the fetch for the current selection.
func (m *Manager) Refresh(ctx context.Context) bool {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return false
	}
	ticker, period, interval := m.current.Ticker, m.current.Period, m.current.Interval
	m.mu.Unlock()

	return m.SetSession(ctx, ticker, period, interval)
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns the live session's model. The second return is false when
// nothing is rendered.
func (m *Manager) Session() (Model, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Model{}, false
	}
	return m.current.Model, true
}

// Close releases the live drawable and returns the manager to Idle. Results
// of fetches still in flight are discarded when they land.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	if m.current != nil && m.current.drawable != nil {
		m.current.drawable.Release()
	}
	m.current = nil
	m.state = StateIdle
}
