package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrEmptySeries is returned when a chart-data request yields no points.
// The backend signals an invalid ticker or empty window with an empty object,
// which callers must treat the same as a transport failure.
var ErrEmptySeries = errors.New("backend returned empty price series")

// APIError is a non-2xx response from the trading backend. Message carries the
// backend-provided reason when the body had one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// Client talks to the trading backend's JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a backend client. The timeout applies per request, so a
// stalled fetch fails instead of leaving callers waiting forever.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.With().Str("client", "backend").Logger(),
	}
}

// TradeHistory fetches the full authoritative trade history.
func (c *Client) TradeHistory(ctx context.Context) ([]TradeRecord, error) {
	var records []TradeRecord
	if err := c.get(ctx, "/api/tradehistory", &records); err != nil {
		return nil, fmt.Errorf("failed to fetch trade history: %w", err)
	}
	return records, nil
}

// SubmitTrade posts a trade intent. Business validation happens server-side;
// a rejected trade comes back as an *APIError carrying the backend's message.
func (c *Client) SubmitTrade(ctx context.Context, asset string, quantity float64, action string) (TradeConfirmation, error) {
	payload := map[string]interface{}{
		"asset":    asset,
		"quantity": quantity,
		"action":   action,
	}

	var conf TradeConfirmation
	if err := c.post(ctx, "/api/maketrade", payload, &conf); err != nil {
		return TradeConfirmation{}, err
	}
	return conf, nil
}

// ChartSeries fetches close prices for one ticker/period/interval selection.
// The backend keys the map by timestamp string.
func (c *Client) ChartSeries(ctx context.Context, ticker, period, interval string) (map[string]float64, error) {
	payload := map[string]string{
		"Ticker":   ticker,
		"Period":   period,
		"Interval": interval,
	}

	series := make(map[string]float64)
	if err := c.post(ctx, "/api/getdata", payload, &series); err != nil {
		return nil, fmt.Errorf("failed to fetch chart data for %s: %w", ticker, err)
	}
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}
	return series, nil
}

// CurrentPrice fetches the current market price for one asset.
func (c *Client) CurrentPrice(ctx context.Context, ticker string) (float64, error) {
	var resp struct {
		Price float64 `json:"Price"`
	}
	if err := c.post(ctx, "/api/getassetprice", map[string]string{"Ticker": ticker}, &resp); err != nil {
		return 0, fmt.Errorf("failed to fetch price for %s: %w", ticker, err)
	}
	return resp.Price, nil
}

// ChangeMetrics fetches fractional day and year changes for one asset.
func (c *Client) ChangeMetrics(ctx context.Context, ticker string) (Change, error) {
	var change Change
	if err := c.post(ctx, "/api/getchange", map[string]string{"Ticker": ticker}, &change); err != nil {
		return Change{}, fmt.Errorf("failed to fetch change metrics for %s: %w", ticker, err)
	}
	return change, nil
}

// AccountBalance fetches the current account cash balance.
func (c *Client) AccountBalance(ctx context.Context) (float64, error) {
	var resp struct {
		Balance float64 `json:"Balance"`
	}
	if err := c.get(ctx, "/api/getbalance", &resp); err != nil {
		return 0, fmt.Errorf("failed to fetch account balance: %w", err)
	}
	return resp.Balance, nil
}

// Positions fetches the aggregated open positions.
func (c *Client) Positions(ctx context.Context) ([]AggregatePosition, error) {
	var positions []AggregatePosition
	if err := c.get(ctx, "/api/aggregate", &positions); err != nil {
		return nil, fmt.Errorf("failed to fetch positions: %w", err)
	}
	return positions, nil
}

// AggStats fetches the sector/industry exposure breakdown.
func (c *Client) AggStats(ctx context.Context) (AggStats, error) {
	var stats AggStats
	if err := c.get(ctx, "/api/getaggstats", &stats); err != nil {
		return AggStats{}, fmt.Errorf("failed to fetch aggregate stats: %w", err)
	}
	return stats, nil
}

// AssetDetail fetches issuer and valuation detail for one asset. The shape
// varies per asset so it stays a generic map for the UI to render.
func (c *Client) AssetDetail(ctx context.Context, ticker string) (map[string]interface{}, error) {
	detail := make(map[string]interface{})
	if err := c.post(ctx, "/api/getstockinfo", map[string]string{"Ticker": ticker}, &detail); err != nil {
		return nil, fmt.Errorf("failed to fetch asset detail for %s: %w", ticker, err)
	}
	return detail, nil
}

// Internal helpers

func (c *Client) get(ctx context.Context, path string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, target)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, target interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, target)
}

func (c *Client) do(req *http.Request, target interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(resp)
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// apiError extracts the backend's message from a failed response. The backend
// uses both {"message": ...} and {"error": ...} bodies.
func (c *Client) apiError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return apiErr
	}

	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			apiErr.Message = parsed.Message
		} else if parsed.Error != "" {
			apiErr.Message = parsed.Error
		}
	}

	c.log.Debug().
		Int("status", apiErr.Status).
		Str("path", resp.Request.URL.Path).
		Str("message", apiErr.Message).
		Msg("Backend request failed")

	return apiErr
}
