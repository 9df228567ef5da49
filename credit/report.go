package credit

import "github.com/shopspring/decimal"

// =============================================================================
// REPORT AGGREGATION
// =============================================================================

// Line is one assessment row of a report.
type Line struct {
	Predicate   Predicate
	Percentage  decimal.Decimal
	Coefficient decimal.Decimal
	Credit      decimal.Decimal
}

// LineFromBreakdown converts a calculator breakdown into a report line.
func LineFromBreakdown(b Breakdown) Line {
	return Line{
		Predicate:   b.Predicate,
		Percentage:  b.Percentage,
		Coefficient: b.Coefficient,
		Credit:      b.Credit,
	}
}

// AggregateInput is everything that may enter a report total.
type AggregateInput struct {
	Lines []Line

	IncludeIntegration bool
	Integration        decimal.Decimal

	IncludeEducation bool
	Education        decimal.Decimal // already quarter-ceiled per row
}

// Totals is the result of aggregation. Integration and Education are zero
// when excluded or non-positive.
type Totals struct {
	Assessments decimal.Decimal
	Integration decimal.Decimal
	Education   decimal.Decimal
	Grand       decimal.Decimal
}

// HasIntegration reports whether the integration row is printed.
func (t Totals) HasIntegration() bool { return t.Integration.IsPositive() }

// HasEducation reports whether the education row is printed.
func (t Totals) HasEducation() bool { return t.Education.IsPositive() }

// Aggregate sums assessment credits, then adds integration and education
// credit when included and positive.
func Aggregate(in AggregateInput) Totals {
	t := Totals{
		Assessments: decimal.Zero,
		Integration: decimal.Zero,
		Education:   decimal.Zero,
	}
	for _, l := range in.Lines {
		t.Assessments = t.Assessments.Add(l.Credit)
	}
	if in.IncludeIntegration && in.Integration.IsPositive() {
		t.Integration = in.Integration
	}
	if in.IncludeEducation && in.Education.IsPositive() {
		t.Education = in.Education
	}
	t.Grand = t.Assessments.Add(t.Integration).Add(t.Education)
	return t
}
