/*
tables.go - Static lookup tables

PURPOSE:
  Holds every mapping the formulas read: predikat → prosentase, jenjang →
  koefisien (two schemes), jenjang pendidikan → base score, golongan →
  rank target, and the per-transition minimal overrides.

IMMUTABILITY:
  A Tables value is built once by NewTables (or DefaultTables) from a
  TableSet. NewTables copies every map, so later changes to the TableSet
  never reach the Tables. Tables exposes read methods only and is safe for
  concurrent use without locking.

JOB LEVEL RESOLUTION:
  1. Case-insensitive exact match against the current scheme
  2. Translate a legacy key through LegacyToCurrent and retry step 1
  3. Otherwise unresolved (coefficient 0)

  This is how records entered before the jenjang migration keep producing
  the same koefisien as their migrated equivalents.

SEE ALSO:
  - factory/tables.go: Builds a TableSet from JSON
*/
package credit

import (
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// RankTarget is the primary rank-target entry for one golongan.
type RankTarget struct {
	Required    decimal.Decimal
	Next        Grade
	NextJenjang string // empty when the next rank carries no jenjang label
}

// Override is a precise minimal pair for one golongan transition.
// JenjangMinimal is invalid (null) when no jenjang threshold exists.
type Override struct {
	RankMinimal    decimal.Decimal
	JenjangMinimal decimal.NullDecimal
}

// TableSet is the mutable, exported form of the tables. Build one, then
// hand it to NewTables.
type TableSet struct {
	Percentages         map[Predicate]decimal.Decimal
	LegacyCoefficients  map[string]decimal.Decimal
	CurrentCoefficients map[string]decimal.Decimal
	LegacyToCurrent     map[string]string
	EducationBase       map[EducationLevel]decimal.Decimal
	Targets             map[Grade]RankTarget
	Overrides           map[string]Override // key: "{current}|{next}"
	GradeNames          map[Grade]string
}

// Tables is the immutable lookup configuration read by every calculator.
type Tables struct {
	percentages         map[Predicate]decimal.Decimal
	legacyCoefficients  map[string]decimal.Decimal
	currentCoefficients map[string]decimal.Decimal
	legacyToCurrent     map[string]string
	educationBase       map[EducationLevel]decimal.Decimal
	targets             map[Grade]RankTarget
	overrides           map[string]Override
	gradeNames          map[Grade]string
}

// OverrideKey builds the override table key for a transition.
func OverrideKey(current, next Grade) string {
	return string(current) + "|" + string(next)
}

// NewTables copies set into an immutable Tables. Job-level keys are
// canonicalized: current keys upper case, legacy keys lower case.
func NewTables(set TableSet) *Tables {
	t := &Tables{
		percentages:         make(map[Predicate]decimal.Decimal, len(set.Percentages)),
		legacyCoefficients:  make(map[string]decimal.Decimal, len(set.LegacyCoefficients)),
		currentCoefficients: make(map[string]decimal.Decimal, len(set.CurrentCoefficients)),
		legacyToCurrent:     make(map[string]string, len(set.LegacyToCurrent)),
		educationBase:       make(map[EducationLevel]decimal.Decimal, len(set.EducationBase)),
		targets:             make(map[Grade]RankTarget, len(set.Targets)),
		overrides:           make(map[string]Override, len(set.Overrides)),
		gradeNames:          make(map[Grade]string, len(set.GradeNames)),
	}
	for k, v := range set.Percentages {
		t.percentages[k] = v
	}
	for k, v := range set.LegacyCoefficients {
		t.legacyCoefficients[legacyKey(k)] = v
	}
	for k, v := range set.CurrentCoefficients {
		t.currentCoefficients[currentKey(k)] = v
	}
	for k, v := range set.LegacyToCurrent {
		t.legacyToCurrent[legacyKey(k)] = currentKey(v)
	}
	for k, v := range set.EducationBase {
		t.educationBase[k] = v
	}
	for k, v := range set.Targets {
		t.targets[k] = v
	}
	for k, v := range set.Overrides {
		t.overrides[k] = v
	}
	for k, v := range set.GradeNames {
		t.gradeNames[k] = v
	}
	return t
}

// Set returns a fresh TableSet holding a copy of t's contents.
func (t *Tables) Set() TableSet {
	set := TableSet{
		Percentages:         make(map[Predicate]decimal.Decimal, len(t.percentages)),
		LegacyCoefficients:  make(map[string]decimal.Decimal, len(t.legacyCoefficients)),
		CurrentCoefficients: make(map[string]decimal.Decimal, len(t.currentCoefficients)),
		LegacyToCurrent:     make(map[string]string, len(t.legacyToCurrent)),
		EducationBase:       make(map[EducationLevel]decimal.Decimal, len(t.educationBase)),
		Targets:             make(map[Grade]RankTarget, len(t.targets)),
		Overrides:           make(map[string]Override, len(t.overrides)),
		GradeNames:          make(map[Grade]string, len(t.gradeNames)),
	}
	for k, v := range t.percentages {
		set.Percentages[k] = v
	}
	for k, v := range t.legacyCoefficients {
		set.LegacyCoefficients[k] = v
	}
	for k, v := range t.currentCoefficients {
		set.CurrentCoefficients[k] = v
	}
	for k, v := range t.legacyToCurrent {
		set.LegacyToCurrent[k] = v
	}
	for k, v := range t.educationBase {
		set.EducationBase[k] = v
	}
	for k, v := range t.targets {
		set.Targets[k] = v
	}
	for k, v := range t.overrides {
		set.Overrides[k] = v
	}
	for k, v := range t.gradeNames {
		set.GradeNames[k] = v
	}
	return set
}

func legacyKey(s string) string  { return strings.ToLower(strings.TrimSpace(s)) }
func currentKey(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// =============================================================================
// LOOKUPS
// =============================================================================

// Percentage returns the prosentase for a predicate, 0 when unknown.
func (t *Tables) Percentage(p Predicate) decimal.Decimal {
	return t.percentages[p]
}

// ParseJobLevel tags s with the scheme it belongs to without translating it.
func (t *Tables) ParseJobLevel(s string) JobLevel {
	if k := currentKey(s); hasKey(t.currentCoefficients, k) {
		return JobLevel{Scheme: SchemeCurrent, Key: k}
	}
	if k := legacyKey(s); hasKey(t.legacyCoefficients, k) || t.legacyToCurrent[k] != "" {
		return JobLevel{Scheme: SchemeLegacy, Key: k}
	}
	return JobLevel{Scheme: SchemeUnknown, Key: strings.TrimSpace(s)}
}

// Translate maps a legacy job level to its current equivalent. Current
// levels are returned unchanged. The bool is false when no current-scheme
// level exists.
func (t *Tables) Translate(j JobLevel) (JobLevel, bool) {
	switch j.Scheme {
	case SchemeCurrent:
		return j, true
	case SchemeLegacy:
		mapped, ok := t.legacyToCurrent[j.Key]
		if !ok || !hasKey(t.currentCoefficients, mapped) {
			return JobLevel{}, false
		}
		return JobLevel{Scheme: SchemeCurrent, Key: mapped}, true
	default:
		return JobLevel{}, false
	}
}

// ResolveJobLevel runs the two-stage resolution: current-scheme match first,
// legacy translation second.
func (t *Tables) ResolveJobLevel(s string) (JobLevel, bool) {
	if k := currentKey(s); hasKey(t.currentCoefficients, k) {
		return JobLevel{Scheme: SchemeCurrent, Key: k}, true
	}
	if mapped, ok := t.legacyToCurrent[legacyKey(s)]; ok && hasKey(t.currentCoefficients, mapped) {
		return JobLevel{Scheme: SchemeCurrent, Key: mapped}, true
	}
	return JobLevel{}, false
}

// Coefficient returns the annual koefisien for a jenjang string, resolving
// legacy keys through the translation map. Unresolvable input yields 0.
func (t *Tables) Coefficient(jobLevel string) decimal.Decimal {
	j, ok := t.ResolveJobLevel(jobLevel)
	if !ok {
		return decimal.Zero
	}
	return t.currentCoefficients[j.Key]
}

// LegacyCoefficient returns the pre-migration koefisien (1.00 .. 1.60) for a
// legacy key. Used only to reprint documents produced under the old scheme.
func (t *Tables) LegacyCoefficient(key string) decimal.Decimal {
	return t.legacyCoefficients[legacyKey(key)]
}

// EducationBase returns the base score for a jenjang pendidikan, 0 when
// unknown.
func (t *Tables) EducationBase(level EducationLevel) decimal.Decimal {
	return t.educationBase[level]
}

// Target returns the primary rank-target entry for a golongan.
func (t *Tables) Target(g Grade) (RankTarget, bool) {
	rt, ok := t.targets[g]
	return rt, ok
}

// Override returns the minimal pair for a transition.
func (t *Tables) Override(current, next Grade) (Override, bool) {
	o, ok := t.overrides[OverrideKey(current, next)]
	return o, ok
}

// GradeName returns the pangkat name for a golongan, or the code itself.
func (t *Tables) GradeName(g Grade) string {
	if n, ok := t.gradeNames[g]; ok {
		return n
	}
	return string(g)
}

// JobLevels lists current-scheme keys, sorted.
func (t *Tables) JobLevels() []string {
	return sortedKeys(t.currentCoefficients)
}

// LegacyJobLevels lists legacy-scheme keys, sorted.
func (t *Tables) LegacyJobLevels() []string {
	return sortedKeys(t.legacyCoefficients)
}

func hasKey(m map[string]decimal.Decimal, k string) bool {
	_, ok := m[k]
	return ok
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// =============================================================================
// DEFAULT TABLES
// =============================================================================

var defaultTables = sync.OnceValue(func() *Tables { return NewTables(DefaultTableSet()) })

// DefaultTables returns the shared built-in tables.
func DefaultTables() *Tables { return defaultTables() }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nd(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d(s), Valid: true}
}

// DefaultTableSet returns a fresh copy of the built-in tables.
func DefaultTableSet() TableSet {
	return TableSet{
		Percentages: map[Predicate]decimal.Decimal{
			PredicateSangatBaik:     d("150"),
			PredicateBaik:           d("100"),
			PredicateButuhPerbaikan: d("75"),
			PredicateKurang:         d("50"),
			PredicateSangatKurang:   d("25"),
		},
		LegacyCoefficients: map[string]decimal.Decimal{
			"juru_muda":           d("1.00"),
			"juru_muda_tingkat_i": d("1.05"),
			"juru":                d("1.10"),
			"juru_tingkat_i":      d("1.15"),
			"pengatur":            d("1.20"),
			"pengatur_tingkat_i":  d("1.25"),
			"penata":              d("1.30"),
			"penata_tingkat_i":    d("1.35"),
			"pembina":             d("1.40"),
			"pembina_tingkat_i":   d("1.45"),
			"pembina_utama_muda":  d("1.50"),
			"pembina_utama_madya": d("1.55"),
			"pembina_utama":       d("1.60"),
		},
		CurrentCoefficients: map[string]decimal.Decimal{
			"KETERAMPILAN - PEMULA":   d("3.75"),
			"KETERAMPILAN - TERAMPIL": d("5"),
			"KETERAMPILAN - MAHIR":    d("12.5"),
			"KETERAMPILAN - PENYELIA": d("25"),
			"KEAHLIAN - AHLI PERTAMA": d("12.5"),
			"KEAHLIAN - AHLI MUDA":    d("25"),
			"KEAHLIAN - AHLI MADYA":   d("37.5"),
			"KEAHLIAN - AHLI UTAMA":   d("50"),
		},
		// juru_muda_tingkat_i and juru_tingkat_i have no current equivalent.
		LegacyToCurrent: map[string]string{
			"juru_muda":           "KETERAMPILAN - PEMULA",
			"juru":                "KETERAMPILAN - PEMULA",
			"pengatur":            "KETERAMPILAN - TERAMPIL",
			"pengatur_tingkat_i":  "KETERAMPILAN - MAHIR",
			"penata":              "KEAHLIAN - AHLI PERTAMA",
			"penata_tingkat_i":    "KEAHLIAN - AHLI MUDA",
			"pembina":             "KEAHLIAN - AHLI MADYA",
			"pembina_tingkat_i":   "KEAHLIAN - AHLI MADYA",
			"pembina_utama_muda":  "KEAHLIAN - AHLI UTAMA",
			"pembina_utama_madya": "KEAHLIAN - AHLI UTAMA",
			"pembina_utama":       "KEAHLIAN - AHLI UTAMA",
		},
		EducationBase: map[EducationLevel]decimal.Decimal{
			EducationSD:   d("1"),
			EducationSMP:  d("2"),
			EducationSMA:  d("3"),
			EducationD1:   d("15"),
			EducationD2:   d("20"),
			EducationD3:   d("25"),
			EducationD4S1: d("30"),
			EducationS2:   d("50"),
			EducationS3:   d("100"),
		},
		Targets: map[Grade]RankTarget{
			"I/a":   {Required: d("15"), Next: "I/b"},
			"I/b":   {Required: d("15"), Next: "I/c"},
			"I/c":   {Required: d("15"), Next: "I/d"},
			"I/d":   {Required: d("15"), Next: "II/a", NextJenjang: "Pengatur Muda"},
			"II/a":  {Required: d("20"), Next: "II/b"},
			"II/b":  {Required: d("20"), Next: "II/c", NextJenjang: "Terampil"},
			"II/c":  {Required: d("20"), Next: "II/d"},
			"II/d":  {Required: d("20"), Next: "III/a", NextJenjang: "Mahir"},
			"III/a": {Required: d("50"), Next: "III/b"},
			"III/b": {Required: d("50"), Next: "III/c", NextJenjang: "Ahli Muda"},
			"III/c": {Required: d("100"), Next: "III/d"},
			"III/d": {Required: d("100"), Next: "IV/a", NextJenjang: "Ahli Madya"},
			"IV/a":  {Required: d("150"), Next: "IV/b"},
			"IV/b":  {Required: d("150"), Next: "IV/c"},
			"IV/c":  {Required: d("150"), Next: "IV/d", NextJenjang: "Ahli Utama"},
			"IV/d":  {Required: d("200"), Next: "IV/e"},
			"IV/e":  {Required: d("0")},
		},
		Overrides: map[string]Override{
			"III/a|III/b": {RankMinimal: d("50"), JenjangMinimal: nd("100")},
			"III/b|III/c": {RankMinimal: d("100"), JenjangMinimal: nd("100")},
			"III/c|III/d": {RankMinimal: d("100"), JenjangMinimal: nd("200")},
			"III/d|IV/a":  {RankMinimal: d("200"), JenjangMinimal: nd("200")},
			"IV/a|IV/b":   {RankMinimal: d("150"), JenjangMinimal: nd("450")},
			"IV/b|IV/c":   {RankMinimal: d("300"), JenjangMinimal: nd("450")},
			"IV/c|IV/d":   {RankMinimal: d("450"), JenjangMinimal: nd("450")},
			"IV/d|IV/e":   {RankMinimal: d("200")},
		},
		GradeNames: map[Grade]string{
			"I/a":   "Juru Muda",
			"I/b":   "Juru Muda Tk. I",
			"I/c":   "Juru",
			"I/d":   "Juru Tk. I",
			"II/a":  "Pengatur Muda",
			"II/b":  "Pengatur Muda Tk. I",
			"II/c":  "Pengatur",
			"II/d":  "Pengatur Tk. I",
			"III/a": "Penata Muda",
			"III/b": "Penata Muda Tk. I",
			"III/c": "Penata",
			"III/d": "Penata Tk. I",
			"IV/a":  "Pembina",
			"IV/b":  "Pembina Tk. I",
			"IV/c":  "Pembina Utama Muda",
			"IV/d":  "Pembina Utama Madya",
			"IV/e":  "Pembina Utama",
		},
	}
}

// =============================================================================
// PACKAGE-LEVEL SHORTCUTS (default tables)
// =============================================================================

// PercentageForPredicate looks up a free-form predicate in the default tables.
func PercentageForPredicate(predicate string) decimal.Decimal {
	return DefaultTables().Percentage(ParsePredicate(predicate))
}

// CoefficientForJobLevel resolves a jenjang string in the default tables.
func CoefficientForJobLevel(jobLevel string) decimal.Decimal {
	return DefaultTables().Coefficient(jobLevel)
}

// BaseScoreForEducationLevel looks up a jenjang pendidikan in the default
// tables.
func BaseScoreForEducationLevel(level string) decimal.Decimal {
	return DefaultTables().EducationBase(ParseEducationLevel(level))
}
