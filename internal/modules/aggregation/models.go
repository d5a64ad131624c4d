package aggregation

import "time"

// Row is one position joined with its fresh market quote.
type Row struct {
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	AverageCost   float64 `json:"average_cost"`
	CurrentPrice  float64 `json:"current_price"`
	DayChange     float64 `json:"day_change"`  // fractional
	YearChange    float64 `json:"year_change"` // fractional
	UnrealizedPnL float64 `json:"unrealized_pnl"`
}

// Totals holds portfolio-wide derived values for one cycle.
type Totals struct {
	AccountBalance     float64 `json:"account_balance"`
	TotalUnrealizedPnL float64 `json:"total_unrealized_pnl"`
}

// Snapshot is the result of one complete aggregation cycle. Rows and totals
// always come from the same cycle; consumers never see a mix.
type Snapshot struct {
	Rows   []Row     `json:"rows"`
	Totals Totals    `json:"totals"`
	At     time.Time `json:"at"`
}
