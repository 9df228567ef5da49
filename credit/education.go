package credit

import "github.com/shopspring/decimal"

// =============================================================================
// EDUCATION CREDIT - AK Pendidikan
// =============================================================================

// EducationMethod names the algorithm that produced an education credit.
type EducationMethod string

const (
	EducationGradeAnchored EducationMethod = "grade"
	EducationLevelAnchored EducationMethod = "level"
)

var (
	educationShare = decimal.RequireFromString("0.25")
	four           = decimal.NewFromInt(4)
)

// EducationResult is the derived value of one AkPendidikan row.
type EducationResult struct {
	Method EducationMethod
	// Basis is the value the 25% share is taken from: jenjang minimal for
	// the grade-anchored method, the level base score otherwise.
	Basis decimal.Decimal
	Value decimal.Decimal
}

// GradeAnchoredEducation is 25% of the jenjang minimal for the employee's
// next promotion. A transition without a jenjang threshold gives 0.
func (t *Tables) GradeAnchoredEducation(grade string) EducationResult {
	basis := t.ResolveTarget(grade, decimal.Zero).JenjangMinimal
	return EducationResult{
		Method: EducationGradeAnchored,
		Basis:  basis,
		Value:  basis.Mul(educationShare),
	}
}

// LevelAnchoredEducation is 25% of the base score of the education level.
func (t *Tables) LevelAnchoredEducation(level string) EducationResult {
	basis := t.EducationBase(ParseEducationLevel(level))
	return EducationResult{
		Method: EducationLevelAnchored,
		Basis:  basis,
		Value:  basis.Mul(educationShare),
	}
}

// EducationCredit picks the algorithm from data availability: a golongan
// found in the rank-target table selects the grade-anchored method,
// anything else falls back to the education level.
func (t *Tables) EducationCredit(grade, level string) EducationResult {
	if _, ok := t.Target(ParseGrade(grade)); ok {
		return t.GradeAnchoredEducation(grade)
	}
	return t.LevelAnchoredEducation(level)
}

// QuarterCeil rounds v up to the next multiple of 0.25.
func QuarterCeil(v decimal.Decimal) decimal.Decimal {
	return v.Mul(four).Ceil().Div(four)
}

// SumEducation totals education credits, ceiling each row to a quarter
// before adding it. Summing first and rounding once gives a different,
// smaller total and is not what filed documents use.
func SumEducation(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(QuarterCeil(v))
	}
	return total
}
