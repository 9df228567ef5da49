/*
Package factory provides JSON to Go lookup-table conversion.

PURPOSE:
  Converts a JSON description of the lookup tables into an immutable
  credit.Tables. Regulations change the koefisien and minimal values from
  time to time; HR can ship a new table file without a code change.

JSON SCHEMA:
  Every section is optional. A missing section keeps the built-in values;
  a present section replaces that table wholesale.

  {
    "percentages":          {"sangat_baik": 150, "baik": 100, ...},
    "legacy_coefficients":  {"juru_muda": 1.0, ...},
    "current_coefficients": {"KEAHLIAN - AHLI MUDA": 25, ...},
    "legacy_to_current":    {"penata": "KEAHLIAN - AHLI PERTAMA", ...},
    "education_base":       {"sd": 1, "s3": 100, ...},
    "rank_targets": {
      "III/a": {"required": 50, "next": "III/b"},
      "III/b": {"required": 50, "next": "III/c", "next_jenjang": "Ahli Muda"}
    },
    "overrides": {
      "III/a|III/b": [50, 100],
      "IV/d|IV/e":   [200, null]
    },
    "grade_names": {"III/a": "Penata Muda", ...}
  }

USAGE:
  f := factory.NewTableFactory()
  tables, err := f.ParseTables(data)

SEE ALSO:
  - credit/tables.go: Tables and TableSet
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/warp/angka-kredit/credit"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// TablesJSON is the JSON representation of the lookup tables.
type TablesJSON struct {
	Percentages         map[string]decimal.Decimal `json:"percentages,omitempty"`
	LegacyCoefficients  map[string]decimal.Decimal `json:"legacy_coefficients,omitempty"`
	CurrentCoefficients map[string]decimal.Decimal `json:"current_coefficients,omitempty"`
	LegacyToCurrent     map[string]string          `json:"legacy_to_current,omitempty"`
	EducationBase       map[string]decimal.Decimal `json:"education_base,omitempty"`
	RankTargets         map[string]RankTargetJSON  `json:"rank_targets,omitempty"`
	Overrides           map[string]OverrideJSON    `json:"overrides,omitempty"`
	GradeNames          map[string]string          `json:"grade_names,omitempty"`
}

// RankTargetJSON represents one primary rank-target entry.
type RankTargetJSON struct {
	Required    decimal.Decimal `json:"required"`
	Next        string          `json:"next"`
	NextJenjang string          `json:"next_jenjang,omitempty"`
}

// OverrideJSON is a two-element array [rank_minimal, jenjang_minimal|null].
type OverrideJSON struct {
	RankMinimal    decimal.Decimal
	JenjangMinimal decimal.NullDecimal
}

func (o *OverrideJSON) UnmarshalJSON(data []byte) error {
	var pair []decimal.NullDecimal
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("override must be [rank, jenjang|null]: %w", err)
	}
	if len(pair) != 2 || !pair[0].Valid {
		return fmt.Errorf("override must be [rank, jenjang|null], got %s", string(data))
	}
	o.RankMinimal = pair[0].Decimal
	o.JenjangMinimal = pair[1]
	return nil
}

func (o OverrideJSON) MarshalJSON() ([]byte, error) {
	return json.Marshal([]decimal.NullDecimal{{Decimal: o.RankMinimal, Valid: true}, o.JenjangMinimal})
}

// =============================================================================
// TABLE FACTORY
// =============================================================================

// TableFactory converts JSON table documents to credit.Tables.
type TableFactory struct {
	base credit.TableSet
}

// NewTableFactory creates a factory whose missing sections fall back to the
// built-in tables.
func NewTableFactory() *TableFactory {
	return &TableFactory{base: credit.DefaultTableSet()}
}

// ParseTables parses a JSON document into validated tables.
func (f *TableFactory) ParseTables(data []byte) (*credit.Tables, error) {
	var tj TablesJSON
	if err := json.Unmarshal(data, &tj); err != nil {
		return nil, fmt.Errorf("invalid tables JSON: %w", err)
	}
	return f.Build(tj)
}

// LoadFile reads and parses a table file. An empty path returns the
// built-in tables.
func (f *TableFactory) LoadFile(path string) (*credit.Tables, error) {
	if path == "" {
		return credit.NewTables(f.base), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables file: %w", err)
	}
	return f.ParseTables(data)
}

// Build merges tj over the base tables and validates the result.
func (f *TableFactory) Build(tj TablesJSON) (*credit.Tables, error) {
	set := credit.NewTables(f.base).Set()

	if tj.Percentages != nil {
		set.Percentages = make(map[credit.Predicate]decimal.Decimal, len(tj.Percentages))
		for k, v := range tj.Percentages {
			set.Percentages[credit.ParsePredicate(k)] = v
		}
	}
	if tj.LegacyCoefficients != nil {
		set.LegacyCoefficients = tj.LegacyCoefficients
	}
	if tj.CurrentCoefficients != nil {
		set.CurrentCoefficients = tj.CurrentCoefficients
	}
	if tj.LegacyToCurrent != nil {
		set.LegacyToCurrent = tj.LegacyToCurrent
	}
	if tj.EducationBase != nil {
		set.EducationBase = make(map[credit.EducationLevel]decimal.Decimal, len(tj.EducationBase))
		for k, v := range tj.EducationBase {
			set.EducationBase[credit.ParseEducationLevel(k)] = v
		}
	}
	if tj.RankTargets != nil {
		set.Targets = make(map[credit.Grade]credit.RankTarget, len(tj.RankTargets))
		for k, v := range tj.RankTargets {
			set.Targets[credit.ParseGrade(k)] = credit.RankTarget{
				Required:    v.Required,
				Next:        credit.ParseGrade(v.Next),
				NextJenjang: v.NextJenjang,
			}
		}
	}
	if tj.Overrides != nil {
		set.Overrides = make(map[string]credit.Override, len(tj.Overrides))
		for k, v := range tj.Overrides {
			set.Overrides[k] = credit.Override{RankMinimal: v.RankMinimal, JenjangMinimal: v.JenjangMinimal}
		}
	}
	if tj.GradeNames != nil {
		set.GradeNames = make(map[credit.Grade]string, len(tj.GradeNames))
		for k, v := range tj.GradeNames {
			set.GradeNames[credit.ParseGrade(k)] = v
		}
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}
	return credit.NewTables(set), nil
}

// Export renders tables back to their JSON form.
func Export(t *credit.Tables) TablesJSON {
	set := t.Set()
	tj := TablesJSON{
		Percentages:         make(map[string]decimal.Decimal, len(set.Percentages)),
		LegacyCoefficients:  set.LegacyCoefficients,
		CurrentCoefficients: set.CurrentCoefficients,
		LegacyToCurrent:     set.LegacyToCurrent,
		EducationBase:       make(map[string]decimal.Decimal, len(set.EducationBase)),
		RankTargets:         make(map[string]RankTargetJSON, len(set.Targets)),
		Overrides:           make(map[string]OverrideJSON, len(set.Overrides)),
		GradeNames:          make(map[string]string, len(set.GradeNames)),
	}
	for k, v := range set.Percentages {
		tj.Percentages[string(k)] = v
	}
	for k, v := range set.EducationBase {
		tj.EducationBase[string(k)] = v
	}
	for k, v := range set.Targets {
		tj.RankTargets[string(k)] = RankTargetJSON{Required: v.Required, Next: string(v.Next), NextJenjang: v.NextJenjang}
	}
	for k, v := range set.Overrides {
		tj.Overrides[k] = OverrideJSON{RankMinimal: v.RankMinimal, JenjangMinimal: v.JenjangMinimal}
	}
	for k, v := range set.GradeNames {
		tj.GradeNames[string(k)] = v
	}
	return tj
}
