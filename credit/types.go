/*
Package credit provides the angka kredit calculation engine.

PURPOSE:
  Converts categorical assessment inputs (predikat, jenjang, period,
  education level, golongan) into credit-point values, and resolves how far
  an employee is from the next rank. Everything in this package is pure:
  no I/O, no logging, no mutable state after construction.

KEY CONCEPTS IN THIS FILE (types.go):
  - Predicate: the 5-level performance rating (predikat)
  - Grade: the golongan ladder I/a .. IV/e
  - JobLevel: a jenjang key tagged with the scheme it belongs to
  - EducationLevel: jenjang pendidikan (sd .. s3)

DESIGN PRINCIPLES:
  1. Totality: unknown keys resolve to zero or a placeholder, never an error
  2. Precision: decimal.Decimal everywhere, rounding only through a Policy
  3. Immutability: lookup tables are built once and only read afterwards

USAGE:
  calc := credit.NewCalculator(credit.DefaultTables(), credit.KonversiPolicy)
  ak := calc.ComputeCredit("baik", "KEAHLIAN - AHLI MUDA", "2024-01-01", "2024-12-31")

SEE ALSO:
  - tables.go: Lookup tables and job-level resolution
  - time.go: Month interval policies
  - calculator.go: Per-assessment credit
  - target.go: Rank target resolution
*/
package credit

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PREDICATE - Performance rating
// =============================================================================

type Predicate string

const (
	PredicateSangatBaik     Predicate = "sangat_baik"
	PredicateBaik           Predicate = "baik"
	PredicateButuhPerbaikan Predicate = "butuh_perbaikan"
	PredicateKurang         Predicate = "kurang"
	PredicateSangatKurang   Predicate = "sangat_kurang"
)

// Predicates lists every predicate from lowest to highest rating.
var Predicates = []Predicate{
	PredicateSangatKurang,
	PredicateKurang,
	PredicateButuhPerbaikan,
	PredicateBaik,
	PredicateSangatBaik,
}

var predicateLabels = map[Predicate]string{
	PredicateSangatBaik:     "Sangat Baik",
	PredicateBaik:           "Baik",
	PredicateButuhPerbaikan: "Butuh Perbaikan",
	PredicateKurang:         "Kurang",
	PredicateSangatKurang:   "Sangat Kurang",
}

// ParsePredicate normalizes free-form input ("Sangat Baik", "SANGAT_BAIK")
// into a Predicate. The result may still be unknown; check Valid.
func ParsePredicate(s string) Predicate {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	return Predicate(s)
}

func (p Predicate) Valid() bool {
	_, ok := predicateLabels[p]
	return ok
}

// Label returns the display label, or the raw value for unknown predicates.
func (p Predicate) Label() string {
	if l, ok := predicateLabels[p]; ok {
		return l
	}
	return string(p)
}

// Rank returns the position in Predicates, or -1 when unknown.
func (p Predicate) Rank() int {
	for i, q := range Predicates {
		if q == p {
			return i
		}
	}
	return -1
}

// =============================================================================
// GRADE - Golongan ruang
// =============================================================================

type Grade string

// Grades is the ordered golongan ladder.
var Grades = []Grade{
	"I/a", "I/b", "I/c", "I/d",
	"II/a", "II/b", "II/c", "II/d",
	"III/a", "III/b", "III/c", "III/d",
	"IV/a", "IV/b", "IV/c", "IV/d", "IV/e",
}

// ParseGrade trims surrounding whitespace. Nothing else is normalized:
// golongan codes are compared exactly, as they are stored.
func ParseGrade(s string) Grade { return Grade(strings.TrimSpace(s)) }

func (g Grade) Valid() bool { return g.Index() >= 0 }

// Index returns the position on the ladder, or -1 when unknown.
func (g Grade) Index() int {
	for i, x := range Grades {
		if x == g {
			return i
		}
	}
	return -1
}

// =============================================================================
// JOB LEVEL - Jenjang in one of two schemes
// =============================================================================

// Scheme identifies which jenjang vocabulary a key belongs to.
type Scheme int

const (
	SchemeUnknown Scheme = iota
	SchemeLegacy         // juru_muda .. pembina_utama
	SchemeCurrent        // "KEAHLIAN - ..." / "KETERAMPILAN - ..."
)

func (s Scheme) String() string {
	switch s {
	case SchemeLegacy:
		return "legacy"
	case SchemeCurrent:
		return "current"
	default:
		return "unknown"
	}
}

// JobLevel is a jenjang key tagged with its scheme. Key is canonical for the
// scheme: upper case for current keys, lower case for legacy keys, and the
// trimmed input for unknown ones.
type JobLevel struct {
	Scheme Scheme
	Key    string
}

func (j JobLevel) String() string { return j.Key }

// =============================================================================
// EDUCATION LEVEL - Jenjang pendidikan
// =============================================================================

type EducationLevel string

const (
	EducationSD   EducationLevel = "sd"
	EducationSMP  EducationLevel = "smp"
	EducationSMA  EducationLevel = "sma"
	EducationD1   EducationLevel = "d1"
	EducationD2   EducationLevel = "d2"
	EducationD3   EducationLevel = "d3"
	EducationD4S1 EducationLevel = "d4s1"
	EducationS2   EducationLevel = "s2"
	EducationS3   EducationLevel = "s3"
)

// ParseEducationLevel accepts "S1/D4", "D4/S1", "SMA/SMK" and plain keys.
func ParseEducationLevel(s string) EducationLevel {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "s1/d4", "d4/s1", "s1", "d4":
		return EducationD4S1
	case "sma/smk", "smk":
		return EducationSMA
	}
	return EducationLevel(s)
}

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

// Float converts a decimal for JSON or display code that wants a float64.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// Round2 rounds to two decimal places, the presentation precision.
func Round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }
