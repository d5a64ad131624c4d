package chartsession

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/dashboard/internal/modules/periods"
	"github.com/stockdesk/dashboard/pkg/logger"
)

// stubFetcher returns canned series per ticker and can gate individual
// fetches on a channel to force in-flight overlap.
type stubFetcher struct {
	mu     sync.Mutex
	series map[string]map[string]float64
	errs   map[string]error
	gates  map[string]chan struct{}
}

func (f *stubFetcher) ChartSeries(ctx context.Context, ticker, period, interval string) (map[string]float64, error) {
	f.mu.Lock()
	gate := f.gates[ticker]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err := f.errs[ticker]; err != nil {
		return nil, err
	}
	return f.series[ticker], nil
}

// countingRenderer tracks how many drawables are alive at once.
type countingRenderer struct {
	mu      sync.Mutex
	live    int
	maxLive int
}

func (r *countingRenderer) Render(model Model) (Drawable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live++
	if r.live > r.maxLive {
		r.maxLive = r.live
	}
	return &countedDrawable{renderer: r, model: model}, nil
}

type countedDrawable struct {
	renderer *countingRenderer
	model    Model
	once     sync.Once
}

func (d *countedDrawable) Release() {
	d.once.Do(func() {
		d.renderer.mu.Lock()
		d.renderer.live--
		d.renderer.mu.Unlock()
	})
}

func seriesOf(prices ...float64) map[string]float64 {
	out := make(map[string]float64, len(prices))
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for _, p := range prices {
		out[day.Format("2006-01-02")] = p
		day = day.AddDate(0, 0, 1)
	}
	return out
}

func newTestManager(f *stubFetcher, r Renderer) *Manager {
	log := logger.New(logger.Config{Level: "error"})
	return NewManager(f, r, nil, log)
}

func TestSetSessionRenders(t *testing.T) {
	fetcher := &stubFetcher{
		series: map[string]map[string]float64{"NVDA": seriesOf(480, 490, 505)},
	}
	renderer := &countingRenderer{}
	mgr := newTestManager(fetcher, renderer)

	ok := mgr.SetSession(context.Background(), "NVDA", periods.Period1Y, periods.Interval1D)
	require.True(t, ok)
	assert.Equal(t, StateRendered, mgr.State())

	model, have := mgr.Session()
	require.True(t, have)
	assert.Equal(t, "NVDA", model.Ticker)
	require.Len(t, model.Points, 3)

	// Strictly increasing timestamps regardless of map iteration order.
	for i := 1; i < len(model.Points); i++ {
		assert.True(t, model.Points[i-1].Time.Before(model.Points[i].Time))
	}

	assert.InDelta(t, 480.0, model.Summary.Min, 1e-9)
	assert.InDelta(t, 505.0, model.Summary.Max, 1e-9)
	assert.InDelta(t, 491.666666666, model.Summary.Mean, 1e-6)
}

func TestSetSessionNormalizesInterval(t *testing.T) {
	fetcher := &stubFetcher{
		series: map[string]map[string]float64{"AAPL": seriesOf(170, 171)},
	}
	mgr := newTestManager(fetcher, &countingRenderer{})

	// 1m is not selectable for a 5y window; the default must be used.
	ok := mgr.SetSession(context.Background(), "AAPL", periods.Period5Y, periods.Interval1M)
	require.True(t, ok)

	model, _ := mgr.Session()
	assert.Equal(t, periods.Interval1D, model.Interval)
}

func TestLastRequestWins(t *testing.T) {
	gateA := make(chan struct{})
	gateB := make(chan struct{})
	fetcher := &stubFetcher{
		series: map[string]map[string]float64{
			"AAA": seriesOf(1, 2, 3),
			"BBB": seriesOf(10, 20, 30),
		},
		gates: map[string]chan struct{}{"AAA": gateA, "BBB": gateB},
	}
	mgr := newTestManager(fetcher, &countingRenderer{})

	resultA := make(chan bool, 1)
	resultB := make(chan bool, 1)

	go func() {
		resultA <- mgr.SetSession(context.Background(), "AAA", periods.Period1Y, periods.Interval1D)
	}()
	// Give request A time to claim its generation before B supersedes it.
	time.Sleep(20 * time.Millisecond)
	go func() {
		resultB <- mgr.SetSession(context.Background(), "BBB", periods.Period1Y, periods.Interval1D)
	}()
	time.Sleep(20 * time.Millisecond)

	// B resolves first and renders.
	close(gateB)
	require.True(t, <-resultB)

	// A resolves after being superseded: its result must be discarded.
	close(gateA)
	require.False(t, <-resultA)

	model, have := mgr.Session()
	require.True(t, have)
	assert.Equal(t, "BBB", model.Ticker)
	assert.Equal(t, StateRendered, mgr.State())
}

func TestEmptySeriesFailsAndKeepsPriorSession(t *testing.T) {
	fetcher := &stubFetcher{
		series: map[string]map[string]float64{
			"NVDA": seriesOf(480, 490),
			"XXXX": {},
		},
	}
	mgr := newTestManager(fetcher, &countingRenderer{})

	require.True(t, mgr.SetSession(context.Background(), "NVDA", periods.Period1Y, periods.Interval1D))

	ok := mgr.SetSession(context.Background(), "XXXX", periods.Period1Y, periods.Interval1D)
	assert.False(t, ok)
	assert.Equal(t, StateFailed, mgr.State())

	// The working chart stays visible.
	model, have := mgr.Session()
	require.True(t, have)
	assert.Equal(t, "NVDA", model.Ticker)
}

func TestFetchErrorFailsAndKeepsPriorSession(t *testing.T) {
	fetcher := &stubFetcher{
		series: map[string]map[string]float64{"NVDA": seriesOf(480, 490)},
		errs:   map[string]error{"BAD": errors.New("backend returned 400: invalid ticker")},
	}
	mgr := newTestManager(fetcher, &countingRenderer{})

	require.True(t, mgr.SetSession(context.Background(), "NVDA", periods.Period1Y, periods.Interval1D))
	require.False(t, mgr.SetSession(context.Background(), "BAD", periods.Period1Y, periods.Interval1D))

	assert.Equal(t, StateFailed, mgr.State())
	model, _ := mgr.Session()
	assert.Equal(t, "NVDA", model.Ticker)
}

func TestSingleLiveDrawable(t *testing.T) {
	fetcher := &stubFetcher{
		series: map[string]map[string]float64{
			"AAA": seriesOf(1, 2),
			"BBB": seriesOf(3, 4),
			"CCC": seriesOf(5, 6),
		},
	}
	renderer := &countingRenderer{}
	mgr := newTestManager(fetcher, renderer)

	for _, ticker := range []string{"AAA", "BBB", "CCC", "AAA"} {
		require.True(t, mgr.SetSession(context.Background(), ticker, periods.Period1Y, periods.Interval1D))
	}
	assert.Equal(t, 1, renderer.maxLive, "at most one drawable may exist at any instant")
	assert.Equal(t, 1, renderer.live)

	mgr.Close()
	assert.Equal(t, 0, renderer.live, "teardown must release the live drawable")
	assert.Equal(t, StateIdle, mgr.State())

	_, have := mgr.Session()
	assert.False(t, have)
}

func TestCloseDiscardsInFlightResult(t *testing.T) {
	gate := make(chan struct{})
	fetcher := &stubFetcher{
		series: map[string]map[string]float64{"AAA": seriesOf(1, 2)},
		gates:  map[string]chan struct{}{"AAA": gate},
	}
	renderer := &countingRenderer{}
	mgr := newTestManager(fetcher, renderer)

	result := make(chan bool, 1)
	go func() {
		result <- mgr.SetSession(context.Background(), "AAA", periods.Period1Y, periods.Interval1D)
	}()
	time.Sleep(20 * time.Millisecond)

	mgr.Close()
	close(gate)

	assert.False(t, <-result)
	assert.Equal(t, 0, renderer.live)
	_, have := mgr.Session()
	assert.False(t, have)
}
