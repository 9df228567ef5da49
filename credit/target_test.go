package credit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/angka-kredit/credit"
)

// =============================================================================
// RANK TARGET TESTS
// =============================================================================

func TestResolveTarget_EligibilityBoundary(t *testing.T) {
	// GIVEN: III/a, rank minimal 50
	// WHEN: total is exactly 50
	// THEN: deficit 0 is eligible
	res := credit.ResolveTarget("III/a", dec("50"))
	assertDecimal(t, "50", res.RankMinimal)
	assertDecimal(t, "0", res.RankDeficit)
	assert.True(t, res.Eligible)
	assert.Equal(t, "Dapat", res.Eligibility())

	res = credit.ResolveTarget("III/a", dec("49.99"))
	assert.False(t, res.Eligible)
	assert.Equal(t, "Tidak dapat", res.Eligibility())
	assertDecimal(t, "-0.01", res.RankDeficit)
}

func TestResolveTarget_OverrideTakesPrecedence(t *testing.T) {
	// Primary says 100 for III/c, override says 100 / 200.
	res := credit.ResolveTarget("III/c", dec("150"))
	assert.Equal(t, credit.Grade("III/d"), res.NextGrade)
	assertDecimal(t, "100", res.RankMinimal)
	assertDecimal(t, "200", res.JenjangMinimal)
	assertDecimal(t, "50", res.RankDeficit)
	assertDecimal(t, "-50", res.JenjangDeficit)
	assert.True(t, res.HasJenjangTarget)
	assert.True(t, res.Eligible, "jenjang deficit is informational only")
	assert.Equal(t, "Penata Tk. I (III/d)", res.Destination)

	res = credit.ResolveTarget("IV/b", dec("0"))
	assertDecimal(t, "300", res.RankMinimal, "override 300 beats primary 150")
}

func TestResolveTarget_NullJenjangOverride(t *testing.T) {
	// IV/d → IV/e override is [200, null]
	res := credit.ResolveTarget("IV/d", dec("210"))
	assertDecimal(t, "200", res.RankMinimal)
	assertDecimal(t, "0", res.JenjangMinimal)
	assert.Equal(t, "Pembina Utama (IV/e)", res.Destination)
	assert.NotContains(t, res.Destination, " / ")
	assert.True(t, res.Eligible)
}

func TestResolveTarget_JenjangLabelInDestination(t *testing.T) {
	res := credit.ResolveTarget("III/b", dec("80"))
	assert.Equal(t, "Ahli Muda / Penata (III/c)", res.Destination)
	assertDecimal(t, "100", res.RankMinimal)
	assert.False(t, res.Eligible)
	assertDecimal(t, "20", res.RankRemaining())
}

func TestResolveTarget_NoOverrideNoLabel(t *testing.T) {
	// GIVEN: I/a has neither override nor jenjang label
	res := credit.ResolveTarget("I/a", dec("10"))
	assertDecimal(t, "15", res.RankMinimal)
	assertDecimal(t, "0", res.JenjangMinimal)
	assert.False(t, res.HasJenjangTarget)
	assertDecimal(t, "0", res.JenjangDeficit)
	assertDecimal(t, "-5", res.RankDeficit)
	assert.Equal(t, "Juru Muda Tk. I (I/b)", res.Destination)
}

func TestResolveTarget_PrimaryWithLabel(t *testing.T) {
	// I/d has a jenjang label but no override: jenjang minimal = required
	res := credit.ResolveTarget("I/d", dec("20"))
	assertDecimal(t, "15", res.RankMinimal)
	assertDecimal(t, "15", res.JenjangMinimal)
	assertDecimal(t, "5", res.JenjangDeficit)
	assert.Equal(t, "Pengatur Muda / Pengatur Muda (II/a)", res.Destination)
}

func TestResolveTarget_UnknownGradeDegradesQuietly(t *testing.T) {
	for _, g := range []string{"", "V/a", "iii/a", "garbage"} {
		res := credit.ResolveTarget(g, dec("500"))
		assert.False(t, res.Known, g)
		assert.False(t, res.Eligible, g)
		assert.Equal(t, credit.PlaceholderDestination, res.Destination)
		assertDecimal(t, "0", res.RankMinimal)
		assertDecimal(t, "0", res.RankDeficit)
	}
}

func TestResolveTarget_TrimsGrade(t *testing.T) {
	res := credit.ResolveTarget("  IV/a ", dec("150"))
	assert.True(t, res.Known)
	assertDecimal(t, "450", res.JenjangMinimal)
}

func TestResolveTarget_TopGradeHasNoDestination(t *testing.T) {
	// GIVEN: IV/e, the last golongan, with no rank minimal
	// WHEN: Any total is resolved
	// THEN: There is no destination and no promotion to consider
	for _, total := range []string{"0", "500"} {
		res := credit.ResolveTarget("IV/e", dec(total))
		assert.True(t, res.Known)
		assert.Empty(t, res.NextGrade)
		assert.Equal(t, credit.PlaceholderDestination, res.Destination)
		assert.False(t, res.Eligible, total)
		assert.Equal(t, credit.NotEligibleText, res.Eligibility())
	}
}
