// Package format reproduces the display conventions of the dashboard UI:
// en-US currency with two fraction digits, percentages with up to two
// fraction digits, and a fixed date/time layout.
package format

import (
	"math"
	"strconv"
	"time"

	"github.com/Rhymond/go-money"
)

const timestampLayout = "01/02/2006 03:04 PM"

// Price renders a dollar amount as a localized currency string, e.g. 200 →
// "$200.00", -12.5 → "-$12.50".
func Price(v float64) string {
	cents := int64(math.Round(v * 100))
	return money.New(cents, money.USD).Display()
}

// Percent renders a fractional change with up to two fraction digits, e.g.
// 0.0123 → "1.23%", 0.1 → "10%".
func Percent(v float64) string {
	pct := math.Round(v*10000) / 100
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}

// Timestamp renders a time in the dashboard's fixed locale layout.
func Timestamp(t time.Time) string {
	return t.Format(timestampLayout)
}
