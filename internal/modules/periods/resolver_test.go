package periods

import (
	"testing"
)

func TestResolveDefaultIntervalIsAllowed(t *testing.T) {
	for _, p := range All() {
		s := Resolve(p)
		if !s.Allows(s.DefaultInterval) {
			t.Errorf("period %s: default interval %s not in allowed set %v", p, s.DefaultInterval, s.Intervals)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		period      Period
		wantUnit    TimeUnit
		wantDefault Interval
		wantCount   int
	}{
		{
			name:        "intraday",
			period:      Period1D,
			wantUnit:    UnitHour,
			wantDefault: Interval1M,
			wantCount:   5,
		},
		{
			name:        "five days",
			period:      Period5D,
			wantUnit:    UnitHour,
			wantDefault: Interval1M,
			wantCount:   5,
		},
		{
			name:        "one month",
			period:      Period1Mo,
			wantUnit:    UnitDay,
			wantDefault: Interval5M,
			wantCount:   4,
		},
		{
			name:        "six months",
			period:      Period6Mo,
			wantUnit:    UnitWeek,
			wantDefault: Interval1H,
			wantCount:   3,
		},
		{
			name:        "one year",
			period:      Period1Y,
			wantUnit:    UnitMonth,
			wantDefault: Interval1H,
			wantCount:   4,
		},
		{
			name:        "ten years",
			period:      Period10Y,
			wantUnit:    UnitYear,
			wantDefault: Interval1D,
			wantCount:   4,
		},
		{
			name:        "max",
			period:      PeriodMax,
			wantUnit:    UnitYear,
			wantDefault: Interval1D,
			wantCount:   4,
		},
		{
			name:        "year to date falls back to coarse set",
			period:      PeriodYTD,
			wantUnit:    UnitMonth,
			wantDefault: Interval1D,
			wantCount:   4,
		},
		{
			name:        "unrecognized period resolves to safe default",
			period:      Period("7w"),
			wantUnit:    UnitMonth,
			wantDefault: Interval1D,
			wantCount:   4,
		},
		{
			name:        "empty period resolves to safe default",
			period:      Period(""),
			wantUnit:    UnitMonth,
			wantDefault: Interval1D,
			wantCount:   4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Resolve(tt.period)
			if s.Unit != tt.wantUnit {
				t.Errorf("unit = %s, want %s", s.Unit, tt.wantUnit)
			}
			if s.DefaultInterval != tt.wantDefault {
				t.Errorf("default interval = %s, want %s", s.DefaultInterval, tt.wantDefault)
			}
			if len(s.Intervals) != tt.wantCount {
				t.Errorf("interval count = %d, want %d", len(s.Intervals), tt.wantCount)
			}
		})
	}
}

func TestShorterPeriodsGetFinerSampling(t *testing.T) {
	fine := Resolve(Period1D)
	coarse := Resolve(Period5Y)

	if !fine.Allows(Interval1M) {
		t.Error("intraday period should allow minute sampling")
	}
	if coarse.Allows(Interval1M) {
		t.Error("multi-year period should not allow minute sampling")
	}
	if !coarse.Allows(Interval1Mo) {
		t.Error("multi-year period should allow monthly sampling")
	}
}

func TestNormalize(t *testing.T) {
	s := Resolve(Period1Y)

	// Allowed interval survives a period change.
	if got := Normalize(s, Interval1D); got != Interval1D {
		t.Errorf("Normalize kept-interval = %s, want 1d", got)
	}

	// Interval from a finer period gets replaced by the default.
	if got := Normalize(s, Interval1M); got != s.DefaultInterval {
		t.Errorf("Normalize invalidated-interval = %s, want default %s", got, s.DefaultInterval)
	}
}
