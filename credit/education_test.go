package credit_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/angka-kredit/credit"
)

func TestEducation_GradeAnchored(t *testing.T) {
	tables := credit.DefaultTables()

	// III/a → III/b override jenjang minimal 100 → 25
	res := tables.GradeAnchoredEducation("III/a")
	assert.Equal(t, credit.EducationGradeAnchored, res.Method)
	assertDecimal(t, "100", res.Basis)
	assertDecimal(t, "25", res.Value)

	// IV/d → IV/e has a null jenjang threshold
	assertDecimal(t, "0", tables.GradeAnchoredEducation("IV/d").Value)

	// I/d has a label but no override: jenjang minimal is the required 15
	assertDecimal(t, "3.75", tables.GradeAnchoredEducation("I/d").Value)
}

func TestEducation_LevelAnchored(t *testing.T) {
	tables := credit.DefaultTables()
	res := tables.LevelAnchoredEducation("s2")
	assert.Equal(t, credit.EducationLevelAnchored, res.Method)
	assertDecimal(t, "12.5", res.Value)
	assertDecimal(t, "0", tables.LevelAnchoredEducation("unknown").Value)
}

func TestEducation_SelectsOnGradeAvailability(t *testing.T) {
	tables := credit.DefaultTables()

	assert.Equal(t, credit.EducationGradeAnchored, tables.EducationCredit("IV/a", "s3").Method)
	assert.Equal(t, credit.EducationLevelAnchored, tables.EducationCredit("", "s3").Method)
	assert.Equal(t, credit.EducationLevelAnchored, tables.EducationCredit("bogus", "d3").Method)
	assertDecimal(t, "6.25", tables.EducationCredit("bogus", "d3").Value)
}

func TestSumEducation_CeilsEachRowFirst(t *testing.T) {
	// GIVEN: rows 0.1, 0.2, 0.05
	// THEN: each rounds up to 0.25 before summing → 0.75, not 0.25
	rows := []decimal.Decimal{dec("0.1"), dec("0.2"), dec("0.05")}
	assertDecimal(t, "0.75", credit.SumEducation(rows))

	assertDecimal(t, "0", credit.SumEducation(nil))
	assertDecimal(t, "25", credit.SumEducation([]decimal.Decimal{dec("25")}))
	assertDecimal(t, "3.75", credit.SumEducation([]decimal.Decimal{dec("3.75")}))
}

func TestQuarterCeil(t *testing.T) {
	assertDecimal(t, "0.25", credit.QuarterCeil(dec("0.01")))
	assertDecimal(t, "0.5", credit.QuarterCeil(dec("0.26")))
	assertDecimal(t, "1", credit.QuarterCeil(dec("1")))
	assertDecimal(t, "0", credit.QuarterCeil(dec("0")))
}

func TestAggregate(t *testing.T) {
	lines := []credit.Line{
		{Predicate: credit.PredicateBaik, Credit: dec("25")},
		{Predicate: credit.PredicateSangatBaik, Credit: dec("10.9375")},
	}

	totals := credit.Aggregate(credit.AggregateInput{
		Lines:              lines,
		IncludeIntegration: true,
		Integration:        dec("12.5"),
		IncludeEducation:   true,
		Education:          dec("0.75"),
	})
	assertDecimal(t, "35.9375", totals.Assessments)
	assertDecimal(t, "49.1875", totals.Grand)
	assert.True(t, totals.HasIntegration())
	assert.True(t, totals.HasEducation())

	totals = credit.Aggregate(credit.AggregateInput{
		Lines:              lines,
		IncludeIntegration: false,
		Integration:        dec("12.5"),
		IncludeEducation:   true,
		Education:          dec("-1"),
	})
	assertDecimal(t, "35.9375", totals.Grand)
	assert.False(t, totals.HasIntegration())
	assert.False(t, totals.HasEducation())
}
