/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON bodies accepted by the API. Responses reuse the record
  and document types directly (records.Employee, reports.Document, ...),
  whose JSON names already follow the Indonesian field vocabulary.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *Response: Computed results that have no record type

VALIDATION:
  Request types carry go-playground/validator tags. Two custom tags are
  registered by newValidator:
    predikat  value parses to a known predicate ("Sangat Baik", "baik", ...)
    tanggal   value is a date credit.ParseDate understands

  Validation here only rejects malformed input. Semantic checks (unknown
  employee, negative credit) happen in records.Service.

SEE ALSO:
  - handlers.go: Uses these types
  - records/records.go: Record types returned by the API
*/
package api

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/warp/angka-kredit/credit"
	"github.com/warp/angka-kredit/records"
)

// =============================================================================
// RECORD REQUESTS
// =============================================================================

// EmployeeRequest creates or replaces an employee.
type EmployeeRequest struct {
	Name        string `json:"nama" validate:"required"`
	NIP         string `json:"nip" validate:"required"`
	CardSerial  string `json:"no_seri_karpeg"`
	BirthPlace  string `json:"tempat_lahir"`
	BirthDate   string `json:"tanggal_lahir" validate:"omitempty,tanggal"`
	Gender      string `json:"jenis_kelamin"`
	Rank        string `json:"pangkat"`
	Grade       string `json:"golongan"`
	RankTMT     string `json:"tmt_pangkat" validate:"omitempty,tanggal"`
	Position    string `json:"jabatan"`
	PositionTMT string `json:"tmt_jabatan" validate:"omitempty,tanggal"`
	Unit        string `json:"unit_kerja"`
}

func (r EmployeeRequest) record() records.Employee {
	return records.Employee{
		Name:        r.Name,
		NIP:         r.NIP,
		CardSerial:  r.CardSerial,
		BirthPlace:  r.BirthPlace,
		BirthDate:   r.BirthDate,
		Gender:      r.Gender,
		Rank:        r.Rank,
		Grade:       r.Grade,
		RankTMT:     r.RankTMT,
		Position:    r.Position,
		PositionTMT: r.PositionTMT,
		Unit:        r.Unit,
	}
}

// InstitutionRequest creates or replaces an institution.
type InstitutionRequest struct {
	Name          string `json:"name" validate:"required"`
	AssessorName  string `json:"penilai_nama"`
	AssessorNIP   string `json:"penilai_nip"`
	AssessorRank  string `json:"penilai_pangkat"`
	AssessorGrade string `json:"penilai_golongan"`
}

func (r InstitutionRequest) record() records.Institution {
	return records.Institution{
		Name:          r.Name,
		AssessorName:  r.AssessorName,
		AssessorNIP:   r.AssessorNIP,
		AssessorRank:  r.AssessorRank,
		AssessorGrade: r.AssessorGrade,
	}
}

// AssessmentRequest creates or replaces an assessment. Derived fields sent
// by the client are ignored.
type AssessmentRequest struct {
	EmployeeID    string `json:"pegawaiId" validate:"required"`
	InstitutionID string `json:"instansiId"`
	AssessorID    string `json:"penilaiId"`
	JobLevel      string `json:"jenjang" validate:"required"`
	Predicate     string `json:"predikat" validate:"required,predikat"`
	PeriodStart   string `json:"tanggalAwalPenilaian" validate:"required,tanggal"`
	PeriodEnd     string `json:"tanggalAkhirPenilaian" validate:"required,tanggal"`
	DeterminedOn  string `json:"tanggalDitetapkan" validate:"omitempty,tanggal"`
	DeterminedAt  string `json:"tempatDitetapkan"`
}

func (r AssessmentRequest) record() records.Assessment {
	return records.Assessment{
		EmployeeID:    r.EmployeeID,
		InstitutionID: r.InstitutionID,
		AssessorID:    r.AssessorID,
		JobLevel:      r.JobLevel,
		Predicate:     credit.Predicate(r.Predicate),
		PeriodStart:   r.PeriodStart,
		PeriodEnd:     r.PeriodEnd,
		DeterminedOn:  r.DeterminedOn,
		DeterminedAt:  r.DeterminedAt,
	}
}

// IntegrationRequest creates or replaces an integration credit.
type IntegrationRequest struct {
	EmployeeID string          `json:"pegawaiId" validate:"required"`
	Value      decimal.Decimal `json:"value"`
}

func (r IntegrationRequest) record() records.IntegrationCredit {
	return records.IntegrationCredit{EmployeeID: r.EmployeeID, Value: r.Value}
}

// EducationRequest creates or replaces an education credit. The value is
// derived from the employee's golongan, or from Level as a fallback.
type EducationRequest struct {
	EmployeeID     string `json:"pegawaiId" validate:"required"`
	Name           string `json:"nama_pendidikan"`
	Level          string `json:"jenjang" validate:"required"`
	GraduationYear int    `json:"tahun_lulus" validate:"omitempty,min=1900,max=2100"`
}

func (r EducationRequest) record() records.EducationCredit {
	return records.EducationCredit{
		EmployeeID:     r.EmployeeID,
		Name:           r.Name,
		Level:          r.Level,
		GraduationYear: r.GraduationYear,
	}
}

// =============================================================================
// CALCULATION
// =============================================================================

// CreditRequest asks for the credit of a hypothetical assessment. Unknown
// predicates, jenjang and dates resolve to zero instead of failing.
type CreditRequest struct {
	Predicate   string `json:"predikat" validate:"required"`
	JobLevel    string `json:"jenjang" validate:"required"`
	PeriodStart string `json:"tanggalAwal"`
	PeriodEnd   string `json:"tanggalAkhir"`
	Policy      string `json:"kebijakan" validate:"omitempty,oneof=konversi akumulasi penetapan form_entry prorated"`
}

// CreditResponse is a full credit breakdown.
type CreditResponse struct {
	Predicate   credit.Predicate `json:"predikat"`
	Label       string           `json:"label"`
	JobLevel    string           `json:"jenjang"`
	Scheme      string           `json:"skema"`
	Policy      string           `json:"kebijakan"`
	Months      decimal.Decimal  `json:"bulan"`
	Percentage  decimal.Decimal  `json:"prosentase"`
	Coefficient decimal.Decimal  `json:"koefisien"`
	Credit      decimal.Decimal  `json:"angkaKredit"`
}

func creditResponse(p credit.Policy, b credit.Breakdown) CreditResponse {
	return CreditResponse{
		Predicate:   b.Predicate,
		Label:       b.Predicate.Label(),
		JobLevel:    b.JobLevel.Key,
		Scheme:      b.JobLevel.Scheme.String(),
		Policy:      p.Name,
		Months:      b.Months,
		Percentage:  b.Percentage,
		Coefficient: b.Coefficient,
		Credit:      b.Credit,
	}
}

// TargetRequest asks for the promotion target of a golongan and total.
type TargetRequest struct {
	Grade string          `json:"golongan" validate:"required"`
	Total decimal.Decimal `json:"total"`
}

// EducationCalcRequest asks for the education credit of a golongan or level.
type EducationCalcRequest struct {
	Grade string `json:"golongan" validate:"required_without=Level"`
	Level string `json:"jenjang" validate:"required_without=Grade"`
}

// EducationCalcResponse is one education credit computation.
type EducationCalcResponse struct {
	Method  credit.EducationMethod `json:"metode"`
	Basis   decimal.Decimal        `json:"nilai_next_pangkat"`
	Value   decimal.Decimal        `json:"calculated_value"`
	Rounded decimal.Decimal        `json:"dibulatkan"`
}

// MonthsResponse is the month count of a period.
type MonthsResponse struct {
	Start  string          `json:"tanggalAwal"`
	End    string          `json:"tanggalAkhir"`
	Policy string          `json:"aturan"`
	Months decimal.Decimal `json:"bulan"`
}

// =============================================================================
// REPORTS
// =============================================================================

// LegacyRenderRequest renders the legacy akumulasi template for one
// employee.
type LegacyRenderRequest struct {
	EmployeeID         string `json:"pegawaiId" validate:"required"`
	Year               int    `json:"tahun" validate:"omitempty,min=1900,max=2100"`
	IncludeIntegration bool   `json:"includeAngkaIntegrasi"`
	IncludeEducation   bool   `json:"includeAkPendidikan"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"` // document the scenario showcases
}

// LoadScenarioRequest selects the scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// MISC
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// HealthResponse reports liveness and the storage schema version.
type HealthResponse struct {
	Status        string `json:"status"`
	SchemaVersion int64  `json:"schemaVersion,omitempty"`
}

// =============================================================================
// VALIDATION
// =============================================================================

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("predikat", func(fl validator.FieldLevel) bool {
		return credit.ParsePredicate(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("tanggal", func(fl validator.FieldLevel) bool {
		_, ok := credit.ParseDate(fl.Field().String())
		return ok
	})
	return v
}

// validationDetails maps each failing field to the tag it failed.
func validationDetails(err error) map[string]string {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
