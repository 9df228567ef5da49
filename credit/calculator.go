/*
calculator.go - Credit for one assessment

FORMULA:
  months = MonthsBetween(policy.Months, start, end)
  credit = (months / 12) * koefisien(jenjang) * (prosentase(predikat) / 100)

ROUNDING:
  The value is kept at full decimal precision unless the Policy says
  otherwise. Presentation code rounds to two decimals. FormEntryPolicy
  reproduces the integer rounding applied when assessments were first typed
  in, so that stored values from that era can be re-derived exactly.
*/
package credit

import "github.com/shopspring/decimal"

// Rounding is the rounding discipline applied to a computed credit.
type Rounding int

const (
	RoundNone    Rounding = iota // full precision
	RoundInteger                 // nearest integer, halves away from zero
	RoundCents                   // two decimals
)

func (r Rounding) String() string {
	switch r {
	case RoundInteger:
		return "integer"
	case RoundCents:
		return "cents"
	default:
		return "none"
	}
}

// Apply rounds v according to r.
func (r Rounding) Apply(v decimal.Decimal) decimal.Decimal {
	switch r {
	case RoundInteger:
		return v.Round(0)
	case RoundCents:
		return v.Round(2)
	default:
		return v
	}
}

// Policy pairs a month policy with a rounding discipline.
type Policy struct {
	Name     string
	Months   MonthPolicy
	Rounding Rounding
}

// Named policies per document type.
var (
	KonversiPolicy  = Policy{Name: "konversi", Months: MonthsInclusive, Rounding: RoundNone}
	AkumulasiPolicy = Policy{Name: "akumulasi", Months: MonthsInclusive, Rounding: RoundNone}
	PenetapanPolicy = Policy{Name: "penetapan", Months: MonthsInclusive, Rounding: RoundNone}
	FormEntryPolicy = Policy{Name: "form_entry", Months: MonthsInclusive, Rounding: RoundInteger}
	ProratedPolicy  = Policy{Name: "prorated", Months: MonthsContinuous, Rounding: RoundNone}
)

// PolicyByName returns the named policy. Unknown names get KonversiPolicy.
func PolicyByName(name string) Policy {
	for _, p := range []Policy{KonversiPolicy, AkumulasiPolicy, PenetapanPolicy, FormEntryPolicy, ProratedPolicy} {
		if p.Name == name {
			return p
		}
	}
	return KonversiPolicy
}

// 12 months * 100 percent. Division comes last so that inputs such as
// 7/12 * 12.5 * 1.5 stay exact.
var yearPercent = decimal.NewFromInt(1200)

// Breakdown carries every intermediate value of one credit computation.
type Breakdown struct {
	Predicate   Predicate
	JobLevel    JobLevel
	Months      decimal.Decimal
	Percentage  decimal.Decimal
	Coefficient decimal.Decimal
	Credit      decimal.Decimal
}

// Calculator computes assessment credits against one set of tables under
// one policy. A Calculator holds no mutable state.
type Calculator struct {
	tables *Tables
	policy Policy
}

// NewCalculator returns a Calculator. A nil tables uses DefaultTables.
func NewCalculator(tables *Tables, policy Policy) *Calculator {
	if tables == nil {
		tables = DefaultTables()
	}
	return &Calculator{tables: tables, policy: policy}
}

func (c *Calculator) Tables() *Tables { return c.tables }
func (c *Calculator) Policy() Policy  { return c.policy }

// WithPolicy returns a Calculator sharing the tables under another policy.
func (c *Calculator) WithPolicy(p Policy) *Calculator {
	return &Calculator{tables: c.tables, policy: p}
}

// Derive computes all derived assessment fields. Calling it twice with the
// same inputs yields identical output.
func (c *Calculator) Derive(predicate, jobLevel, start, end string) Breakdown {
	p := ParsePredicate(predicate)
	b := Breakdown{
		Predicate:   p,
		Months:      MonthsBetween(c.policy.Months, start, end),
		Percentage:  c.tables.Percentage(p),
		Coefficient: c.tables.Coefficient(jobLevel),
	}
	if j, ok := c.tables.ResolveJobLevel(jobLevel); ok {
		b.JobLevel = j
	} else {
		b.JobLevel = c.tables.ParseJobLevel(jobLevel)
	}
	raw := b.Months.Mul(b.Coefficient).Mul(b.Percentage).Div(yearPercent)
	b.Credit = c.policy.Rounding.Apply(raw)
	return b
}

// ComputeCredit returns only the credit of Derive.
func (c *Calculator) ComputeCredit(predicate, jobLevel, start, end string) decimal.Decimal {
	return c.Derive(predicate, jobLevel, start, end).Credit
}

// ComputeCredit uses the default tables under KonversiPolicy.
func ComputeCredit(predicate, jobLevel, start, end string) decimal.Decimal {
	return NewCalculator(nil, KonversiPolicy).ComputeCredit(predicate, jobLevel, start, end)
}
