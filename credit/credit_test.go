package credit_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/angka-kredit/credit"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

// =============================================================================
// LOOKUP TABLE TESTS
// =============================================================================

func TestPercentageForPredicate(t *testing.T) {
	cases := map[string]string{
		"sangat_baik":     "150",
		"baik":            "100",
		"butuh_perbaikan": "75",
		"kurang":          "50",
		"sangat_kurang":   "25",
		"Sangat Baik":     "150",
		"unknown":         "0",
		"":                "0",
	}
	for in, want := range cases {
		assertDecimal(t, want, credit.PercentageForPredicate(in), in)
	}
}

func TestCoefficient_CurrentScheme_CaseInsensitive(t *testing.T) {
	assertDecimal(t, "25", credit.CoefficientForJobLevel("KEAHLIAN - AHLI MUDA"))
	assertDecimal(t, "25", credit.CoefficientForJobLevel("keahlian - ahli muda"))
	assertDecimal(t, "3.75", credit.CoefficientForJobLevel("  Keterampilan - Pemula "))
	assertDecimal(t, "50", credit.CoefficientForJobLevel("KEAHLIAN - AHLI UTAMA"))
}

func TestCoefficient_LegacyKeysResolveLikeTheirTranslation(t *testing.T) {
	// GIVEN: Every legacy key in the translation map
	// THEN: It resolves to exactly the coefficient of the key it maps to
	tables := credit.DefaultTables()
	set := credit.DefaultTableSet()
	require.Len(t, set.LegacyToCurrent, 11)

	for legacy, current := range set.LegacyToCurrent {
		got := tables.Coefficient(legacy)
		want := tables.Coefficient(current)
		assert.Truef(t, want.Equal(got), "%s: want %s got %s", legacy, want, got)
		assert.True(t, got.IsPositive(), legacy)
	}
}

func TestCoefficient_UnmappedLegacyAndGarbageAreZero(t *testing.T) {
	assertDecimal(t, "0", credit.CoefficientForJobLevel("unknown_garbage"))
	assertDecimal(t, "0", credit.CoefficientForJobLevel(""))
	// Legacy key with no current equivalent: resolution ends at zero.
	assertDecimal(t, "0", credit.CoefficientForJobLevel("juru_tingkat_i"))
	// Its pre-migration coefficient is still readable explicitly.
	assertDecimal(t, "1.15", credit.DefaultTables().LegacyCoefficient("juru_tingkat_i"))
}

func TestParseJobLevel_TagsScheme(t *testing.T) {
	tables := credit.DefaultTables()

	j := tables.ParseJobLevel("keahlian - ahli madya")
	assert.Equal(t, credit.SchemeCurrent, j.Scheme)
	assert.Equal(t, "KEAHLIAN - AHLI MADYA", j.Key)

	j = tables.ParseJobLevel("Penata")
	assert.Equal(t, credit.SchemeLegacy, j.Scheme)
	assert.Equal(t, "penata", j.Key)

	tr, ok := tables.Translate(j)
	require.True(t, ok)
	assert.Equal(t, credit.JobLevel{Scheme: credit.SchemeCurrent, Key: "KEAHLIAN - AHLI PERTAMA"}, tr)

	j = tables.ParseJobLevel("juru_muda_tingkat_i")
	assert.Equal(t, credit.SchemeLegacy, j.Scheme)
	_, ok = tables.Translate(j)
	assert.False(t, ok)

	assert.Equal(t, credit.SchemeUnknown, tables.ParseJobLevel("nope").Scheme)
}

func TestBaseScoreForEducationLevel(t *testing.T) {
	cases := map[string]string{
		"sd": "1", "smp": "2", "sma": "3", "d1": "15", "d2": "20",
		"d3": "25", "d4s1": "30", "s2": "50", "s3": "100",
		"S1/D4": "30", "SMA/SMK": "3", "phd": "0",
	}
	for in, want := range cases {
		assertDecimal(t, want, credit.BaseScoreForEducationLevel(in), in)
	}
}

func TestTables_AreCopiedOnConstruction(t *testing.T) {
	set := credit.DefaultTableSet()
	tables := credit.NewTables(set)

	set.Percentages[credit.PredicateBaik] = dec("999")
	set.CurrentCoefficients["KEAHLIAN - AHLI MUDA"] = dec("1")

	assertDecimal(t, "100", tables.Percentage(credit.PredicateBaik))
	assertDecimal(t, "25", tables.Coefficient("KEAHLIAN - AHLI MUDA"))
}

func TestTableSet_Validate(t *testing.T) {
	require.NoError(t, credit.DefaultTableSet().Validate())

	set := credit.DefaultTableSet()
	set.LegacyToCurrent["juru"] = "KEAHLIAN - NOPE"
	set.Overrides["broken"] = credit.Override{RankMinimal: dec("1")}

	err := set.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, credit.ErrInvalidTables)
	var te *credit.TableError
	assert.ErrorAs(t, err, &te)
}
