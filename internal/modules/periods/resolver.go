package periods

// Period is the user-selected historical window for a chart.
type Period string

const (
	Period1D  Period = "1d"
	Period5D  Period = "5d"
	Period1Mo Period = "1mo"
	Period3Mo Period = "3mo"
	Period6Mo Period = "6mo"
	Period1Y  Period = "1y"
	Period2Y  Period = "2y"
	Period5Y  Period = "5y"
	Period10Y Period = "10y"
	PeriodYTD Period = "ytd"
	PeriodMax Period = "max"
)

// All lists every supported period in menu order.
func All() []Period {
	return []Period{
		Period1D, Period5D, Period1Mo, Period3Mo, Period6Mo,
		Period1Y, Period2Y, Period5Y, Period10Y, PeriodYTD, PeriodMax,
	}
}

// Interval is the sampling granularity of chart points within a period.
type Interval string

const (
	Interval1M  Interval = "1m"
	Interval2M  Interval = "2m"
	Interval5M  Interval = "5m"
	Interval30M Interval = "30m"
	Interval1H  Interval = "1h"
	Interval1D  Interval = "1d"
	Interval1Wk Interval = "1wk"
	Interval1Mo Interval = "1mo"
	Interval3Mo Interval = "3mo"
)

// TimeUnit is the axis tick granularity for a rendered chart.
type TimeUnit string

const (
	UnitHour  TimeUnit = "hour"
	UnitDay   TimeUnit = "day"
	UnitWeek  TimeUnit = "week"
	UnitMonth TimeUnit = "month"
	UnitYear  TimeUnit = "year"
)

// Settings is the sampling and axis policy resolved from a period.
type Settings struct {
	Unit            TimeUnit   `json:"unit"`
	DisplayFormat   string     `json:"display_format"` // Go time layout for axis labels
	Intervals       []Interval `json:"intervals"`
	DefaultInterval Interval   `json:"default_interval"`
}

// Allows reports whether the interval is selectable under these settings.
func (s Settings) Allows(iv Interval) bool {
	for _, allowed := range s.Intervals {
		if allowed == iv {
			return true
		}
	}
	return false
}

// Resolve maps a period to its sampling unit, axis label format, allowed
// interval set and default interval. Total: unrecognized periods fall back to
// month-level granularity with daily sampling rather than failing.
func Resolve(p Period) Settings {
	switch p {
	case Period1D, Period5D:
		return Settings{
			Unit:            UnitHour,
			DisplayFormat:   "Jan 2, 3 PM",
			Intervals:       []Interval{Interval1M, Interval2M, Interval5M, Interval30M, Interval1H},
			DefaultInterval: Interval1M,
		}
	case Period1Mo:
		return Settings{
			Unit:            UnitDay,
			DisplayFormat:   "Jan 2",
			Intervals:       []Interval{Interval5M, Interval30M, Interval1H, Interval1D},
			DefaultInterval: Interval5M,
		}
	case Period3Mo, Period6Mo:
		return Settings{
			Unit:            UnitWeek,
			DisplayFormat:   "Jan 2",
			Intervals:       []Interval{Interval1H, Interval1D, Interval1Wk},
			DefaultInterval: Interval1H,
		}
	case Period1Y, Period2Y:
		return Settings{
			Unit:            UnitMonth,
			DisplayFormat:   "Jan 2006",
			Intervals:       []Interval{Interval1H, Interval1D, Interval1Wk, Interval1Mo},
			DefaultInterval: Interval1H,
		}
	case Period5Y, Period10Y, PeriodMax:
		return Settings{
			Unit:            UnitYear,
			DisplayFormat:   "2006",
			Intervals:       []Interval{Interval1D, Interval1Wk, Interval1Mo, Interval3Mo},
			DefaultInterval: Interval1D,
		}
	default:
		// ytd and anything unrecognized get the coarse daily set.
		return Settings{
			Unit:            UnitMonth,
			DisplayFormat:   "Jan 2006",
			Intervals:       []Interval{Interval1D, Interval1Wk, Interval1Mo, Interval3Mo},
			DefaultInterval: Interval1D,
		}
	}
}

// Normalize returns the interval unchanged when the settings still allow it,
// and the settings' default otherwise. Callers use it to re-select after a
// period change invalidates the prior interval.
func Normalize(s Settings, iv Interval) Interval {
	if s.Allows(iv) {
		return iv
	}
	return s.DefaultInterval
}
