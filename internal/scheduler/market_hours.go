package scheduler

import (
	"time"

	"github.com/rs/zerolog"
)

// TradingWindow describes one regular session for an exchange.
type TradingWindow struct {
	OpenHour    int
	OpenMinute  int
	CloseHour   int
	CloseMinute int
}

// MarketHoursService answers whether the US equity market is in its
// regular session. Background jobs use it to skip cycles that would
// only re-fetch unchanged closing prices.
type MarketHoursService struct {
	location *time.Location
	window   TradingWindow
	log      zerolog.Logger
}

// NewMarketHoursService creates a market hours service for NYSE/Nasdaq
// regular hours (09:30-16:00 America/New_York, weekdays).
func NewMarketHoursService(log zerolog.Logger) *MarketHoursService {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		// tzdata missing on the host; fall back to a fixed offset so
		// the gate degrades to "roughly right" instead of panicking.
		log.Warn().Err(err).Msg("America/New_York unavailable, using fixed EST offset")
		loc = time.FixedZone("EST", -5*60*60)
	}

	return &MarketHoursService{
		location: loc,
		window:   TradingWindow{OpenHour: 9, OpenMinute: 30, CloseHour: 16, CloseMinute: 0},
		log:      log.With().Str("service", "market_hours").Logger(),
	}
}

// IsMarketOpen reports whether t falls within the regular session.
// Exchange holidays are not modelled; a closed-day cycle is harmless,
// it just re-reads the previous close.
func (s *MarketHoursService) IsMarketOpen(t time.Time) bool {
	local := t.In(s.location)

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	minutes := local.Hour()*60 + local.Minute()
	open := s.window.OpenHour*60 + s.window.OpenMinute
	close := s.window.CloseHour*60 + s.window.CloseMinute

	return minutes >= open && minutes < close
}
