package credit

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONTH POLICY - How an assessment period becomes a month count
// =============================================================================

// MonthPolicy selects the month-counting rule. The two rules disagree on
// most inputs and cannot be merged: documents already filed were produced
// with one or the other, so every caller names the rule it uses.
type MonthPolicy int

const (
	// MonthsInclusive counts calendar months with both endpoints included:
	// January..December of one year is 12.
	MonthsInclusive MonthPolicy = iota

	// MonthsContinuous divides elapsed days by 30.44, unrounded.
	MonthsContinuous
)

func (p MonthPolicy) String() string {
	switch p {
	case MonthsContinuous:
		return "continuous"
	default:
		return "inclusive"
	}
}

// ParseMonthPolicy maps "continuous" to MonthsContinuous and anything else
// to MonthsInclusive.
func ParseMonthPolicy(s string) MonthPolicy {
	if strings.EqualFold(strings.TrimSpace(s), "continuous") {
		return MonthsContinuous
	}
	return MonthsInclusive
}

var (
	msPerDay     = decimal.NewFromInt(86400000)
	daysPerMonth = decimal.RequireFromString("30.44")
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02-01-2006",
}

// ParseDate parses the date formats found in stored records and imports.
// The bool is false for empty or unparseable input. An explicit offset is
// dropped: the result keeps the written wall-clock date and time in UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(),
				t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), true
		}
	}
	return time.Time{}, false
}

// MonthsBetween returns the month count between two dates under policy.
// Missing or unparseable dates yield zero.
func MonthsBetween(policy MonthPolicy, start, end string) decimal.Decimal {
	if policy == MonthsContinuous {
		return ContinuousMonths(start, end)
	}
	return InclusiveMonths(start, end)
}

// InclusiveMonths is (endYear-startYear)*12 + (endMonth-startMonth) + 1,
// floored at zero.
func InclusiveMonths(start, end string) decimal.Decimal {
	s, ok1 := ParseDate(start)
	e, ok2 := ParseDate(end)
	if !ok1 || !ok2 {
		return decimal.Zero
	}
	n := (e.Year()-s.Year())*12 + int(e.Month()-s.Month()) + 1
	if n < 0 {
		n = 0
	}
	return decimal.NewFromInt(int64(n))
}

// ContinuousMonths is elapsed milliseconds / 86400000 / 30.44. The result is
// neither rounded nor floored.
func ContinuousMonths(start, end string) decimal.Decimal {
	s, ok1 := ParseDate(start)
	e, ok2 := ParseDate(end)
	if !ok1 || !ok2 {
		return decimal.Zero
	}
	ms := decimal.NewFromInt(e.Sub(s).Milliseconds())
	return ms.Div(msPerDay).Div(daysPerMonth)
}

// =============================================================================
// PERIOD - Assessment period
// =============================================================================

// Period is an assessment period as stored: two date strings.
type Period struct {
	Start string
	End   string
}

// Months returns the month count of the period under policy.
func (p Period) Months(policy MonthPolicy) decimal.Decimal {
	return MonthsBetween(policy, p.Start, p.End)
}

// Year returns the year of the period end, or 0 when End is not a date.
func (p Period) Year() int {
	if t, ok := ParseDate(p.End); ok {
		return t.Year()
	}
	return 0
}

func (p Period) String() string {
	return "[" + p.Start + ", " + p.End + "]"
}
