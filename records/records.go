/*
Package records holds the administrative records the calculation engine
reads and the service that keeps their derived fields consistent.

PURPOSE:
  Employees, institutions and the three kinds of credit records are plain
  CRUD data. The only rule that matters is that the derived fields of an
  assessment (prosentase, koefisien, angka kredit) and of an education row
  (nilai next pangkat, calculated value) are recomputed from their inputs on
  every write. Nothing outside Service writes them.

KEY CONCEPTS:
  Employee:          Pegawai, identified by an opaque string ID
  Institution:       Instansi, optionally carrying a default assessor
  Assessment:        Penilaian angka kredit for one period
  IntegrationCredit: Angka integrasi, one scalar per employee
  EducationCredit:   AK pendidikan, one row per qualification

DATES:
  Dates are stored as the strings they were entered as (normally
  YYYY-MM-DD). credit.ParseDate reads them; nothing here normalizes them.

DELETION:
  Deleting a record never touches records that reference it. Reports
  degrade to "-" placeholders for dangling references.

SEE ALSO:
  - service.go: Derivation rules
  - store.go: Persistence interfaces
  - memory/memory.go: In-memory store
  - store/sqlite: SQLite store
*/
package records

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/angka-kredit/credit"
)

// =============================================================================
// EMPLOYEE
// =============================================================================

const (
	GenderMale   = "Laki-laki"
	GenderFemale = "Perempuan"
)

// NormalizeGender maps free-form input to one of the two stored values.
// Anything not recognizably female is stored as GenderMale.
func NormalizeGender(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "perempuan", "p", "wanita", "female", "f":
		return GenderFemale
	default:
		return GenderMale
	}
}

type Employee struct {
	ID          string    `json:"id"`
	Name        string    `json:"nama"`
	NIP         string    `json:"nip"`
	CardSerial  string    `json:"no_seri_karpeg"`
	BirthPlace  string    `json:"tempat_lahir"`
	BirthDate   string    `json:"tanggal_lahir"`
	Gender      string    `json:"jenis_kelamin"`
	Rank        string    `json:"pangkat"`
	Grade       string    `json:"golongan"`
	RankTMT     string    `json:"tmt_pangkat"`
	Position    string    `json:"jabatan"`
	PositionTMT string    `json:"tmt_jabatan"`
	Unit        string    `json:"unit_kerja"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// =============================================================================
// INSTITUTION
// =============================================================================

// Institution is an assessing instansi. The assessor fields are the
// fallback signatory when an assessment names no penilai.
type Institution struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	AssessorName  string    `json:"penilai_nama,omitempty"`
	AssessorNIP   string    `json:"penilai_nip,omitempty"`
	AssessorRank  string    `json:"penilai_pangkat,omitempty"`
	AssessorGrade string    `json:"penilai_golongan,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HasAssessor reports whether the institution carries assessor fields.
func (i Institution) HasAssessor() bool { return i.AssessorName != "" }

// =============================================================================
// ASSESSMENT
// =============================================================================

// Assessment is one penilaian angka kredit. Percentage, Coefficient and
// Credit are derived; Service overwrites them on every save.
type Assessment struct {
	ID            string           `json:"id"`
	EmployeeID    string           `json:"pegawaiId"`
	InstitutionID string           `json:"instansiId"`
	AssessorID    string           `json:"penilaiId"`
	JobLevel      string           `json:"jenjang"`
	Predicate     credit.Predicate `json:"predikat"`
	PeriodStart   string           `json:"tanggalAwalPenilaian"`
	PeriodEnd     string           `json:"tanggalAkhirPenilaian"`
	DeterminedOn  string           `json:"tanggalDitetapkan"`
	DeterminedAt  string           `json:"tempatDitetapkan"`
	Percentage    decimal.Decimal  `json:"prosentase"`
	Coefficient   decimal.Decimal  `json:"koefisien"`
	Credit        decimal.Decimal  `json:"angkaKredit"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// Period returns the assessment period.
func (a Assessment) Period() credit.Period {
	return credit.Period{Start: a.PeriodStart, End: a.PeriodEnd}
}

// Line returns the report row of the assessment.
func (a Assessment) Line() credit.Line {
	return credit.Line{
		Predicate:   a.Predicate,
		Percentage:  a.Percentage,
		Coefficient: a.Coefficient,
		Credit:      a.Credit,
	}
}

// =============================================================================
// INTEGRATION CREDIT
// =============================================================================

type IntegrationCredit struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"pegawaiId"`
	Value      decimal.Decimal `json:"value"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// =============================================================================
// EDUCATION CREDIT
// =============================================================================

// EducationCredit is one AK pendidikan row. NextRankValue (the basis) and
// Value are derived from the employee's golongan, or from Level when the
// golongan is unknown.
type EducationCredit struct {
	ID             string                 `json:"id"`
	EmployeeID     string                 `json:"pegawaiId"`
	Name           string                 `json:"nama_pendidikan"`
	Level          string                 `json:"jenjang"`
	GraduationYear int                    `json:"tahun_lulus"`
	Method         credit.EducationMethod `json:"metode"`
	NextRankValue  decimal.Decimal        `json:"nilai_next_pangkat"`
	Value          decimal.Decimal        `json:"calculated_value"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}
