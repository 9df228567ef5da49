/*
target.go - Rank target resolution

PURPOSE:
  Given a golongan and an accumulated credit total, determines the next
  golongan, the minimal credit at rank and jenjang level, the surplus or
  deficit against each, and the destination label printed on the
  penetapan document.

ALGORITHM:
  1. Unknown golongan → zero result with "Jabatan ......"
  2. Override for "{cur}|{next}" → rank minimal and jenjang minimal (null → 0)
  3. Otherwise rank minimal = Required; jenjang minimal = Required only when
     the next rank has a jenjang label
  4. Rank deficit = total - rank minimal; jenjang deficit only when a label
     or override exists
  5. Destination "{jenjang} / {pangkat} ({golongan})" or "{pangkat} ({golongan})"
  6. Eligible when rank deficit >= 0 and a next golongan exists; the jenjang
     deficit is informational
*/
package credit

import "github.com/shopspring/decimal"

const (
	PlaceholderDestination = "Jabatan ......"
	EligibleText           = "Dapat"
	NotEligibleText        = "Tidak dapat"
)

// TargetResult is the promotion-readiness outcome for one employee.
type TargetResult struct {
	Grade     Grade
	NextGrade Grade
	Known     bool // false when Grade is not in the rank-target table

	RankMinimal    decimal.Decimal
	JenjangMinimal decimal.Decimal

	// HasJenjangTarget is true when a jenjang label or override applies,
	// i.e. when JenjangDeficit is meaningful.
	HasJenjangTarget bool

	RankDeficit    decimal.Decimal // total - RankMinimal
	JenjangDeficit decimal.Decimal // total - JenjangMinimal, or 0

	Destination string
	Eligible    bool
}

// Eligibility returns "Dapat" or "Tidak dapat".
func (r TargetResult) Eligibility() string {
	if r.Eligible {
		return EligibleText
	}
	return NotEligibleText
}

// RankRemaining is the credit still needed at rank level (minimal - total).
func (r TargetResult) RankRemaining() decimal.Decimal { return r.RankDeficit.Neg() }

// JenjangRemaining is the credit still needed at jenjang level.
func (r TargetResult) JenjangRemaining() decimal.Decimal { return r.JenjangDeficit.Neg() }

// ResolveTarget resolves promotion readiness for a golongan and total.
func (t *Tables) ResolveTarget(grade string, total decimal.Decimal) TargetResult {
	g := ParseGrade(grade)
	res := TargetResult{
		Grade:          g,
		RankMinimal:    decimal.Zero,
		JenjangMinimal: decimal.Zero,
		RankDeficit:    decimal.Zero,
		JenjangDeficit: decimal.Zero,
		Destination:    PlaceholderDestination,
	}

	target, ok := t.Target(g)
	if !ok {
		return res
	}
	res.Known = true
	res.NextGrade = target.Next

	override, hasOverride := t.Override(g, target.Next)
	if hasOverride {
		res.RankMinimal = override.RankMinimal
		if override.JenjangMinimal.Valid {
			res.JenjangMinimal = override.JenjangMinimal.Decimal
		}
	} else {
		res.RankMinimal = target.Required
		if target.NextJenjang != "" {
			res.JenjangMinimal = target.Required
		}
	}

	res.RankDeficit = total.Sub(res.RankMinimal)
	res.HasJenjangTarget = target.NextJenjang != "" || hasOverride
	if res.HasJenjangTarget {
		res.JenjangDeficit = total.Sub(res.JenjangMinimal)
	}

	if target.Next != "" {
		name := t.GradeName(target.Next)
		if target.NextJenjang != "" {
			res.Destination = target.NextJenjang + " / " + name + " (" + string(target.Next) + ")"
		} else {
			res.Destination = name + " (" + string(target.Next) + ")"
		}
	}

	// The top golongan has nowhere to go.
	res.Eligible = target.Next != "" && !res.RankDeficit.IsNegative()
	return res
}

// ResolveTarget uses the default tables.
func ResolveTarget(grade string, total decimal.Decimal) TargetResult {
	return DefaultTables().ResolveTarget(grade, total)
}
