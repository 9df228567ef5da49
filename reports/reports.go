/*
Package reports assembles the three printed documents from stored records.

DOCUMENTS:
  Konversi:  one assessment, with every integration credit and the
             education total of its employee
  Akumulasi: all assessments of one employee (optionally one year), with
             the integration and education rows the caller asks for
  Penetapan: one assessment plus the first integration credit and the
             education total, and the rank-target figures for that total

  Documents are pure data. render/ formats them; nothing here rounds,
  formats numbers or dates, or performs I/O beyond reading records.

REPORT NUMBER:
  The first 8 characters of the source record ID, upper-cased. Konversi
  and penetapan use the assessment ID, akumulasi the employee ID.

ASSESSOR (PENILAI):
  1. The employee named by the assessment's penilaiId
  2. Otherwise the assessor fields of the assessment's institution
  3. Otherwise "-" in every field

MISSING REFERENCES:
  Records are never deleted in cascade, so an assessment may point at a
  deleted employee or institution. Employee fields then print as "-" and
  the institution as "Instansi". Only a missing source record (the
  assessment, or an employee without any assessment) is an error.

SEE ALSO:
  - credit/report.go: Aggregation
  - credit/target.go: Rank target resolution
  - render/: Text, template and PDF output
*/
package reports

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/angka-kredit/credit"
	"github.com/warp/angka-kredit/records"
)

// Kind names a document type.
type Kind string

const (
	KindKonversi  Kind = "konversi"
	KindAkumulasi Kind = "akumulasi"
	KindPenetapan Kind = "penetapan"
)

// ParseKind returns the kind for s, or false.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindKonversi, KindAkumulasi, KindPenetapan:
		return k, true
	}
	return "", false
}

const (
	Placeholder            = "-"
	PlaceholderInstitution = "Instansi"
)

// ErrNoAssessments is returned for an akumulasi with nothing to list.
var ErrNoAssessments = errors.New("no assessments to report")

// =============================================================================
// DOCUMENT
// =============================================================================

// Person is the employee block of a document. Missing values are "-".
type Person struct {
	Name        string `json:"nama"`
	NIP         string `json:"nip"`
	CardSerial  string `json:"noSeriKarpeg"`
	BirthPlace  string `json:"tempatLahir"`
	BirthDate   string `json:"tanggalLahir"`
	Gender      string `json:"jenisKelamin"`
	Rank        string `json:"pangkat"`
	Grade       string `json:"golongan"`
	RankTMT     string `json:"tmtPangkat"`
	Position    string `json:"jabatan"`
	PositionTMT string `json:"tmtJabatan"`
	Unit        string `json:"unitKerja"`
}

// Signatory is the assessor block.
type Signatory struct {
	Name  string `json:"nama"`
	Rank  string `json:"pangkat"`
	Grade string `json:"golongan"`
	NIP   string `json:"nip"`
}

// Row is one assessment line of a document.
type Row struct {
	AssessmentID string           `json:"penilaianId"`
	Predicate    credit.Predicate `json:"predikat"`
	Label        string           `json:"penilaian"`
	PeriodStart  string           `json:"periodeAwal"`
	PeriodEnd    string           `json:"periodeAkhir"`
	Percentage   decimal.Decimal  `json:"prosentase"`
	Coefficient  decimal.Decimal  `json:"koefisien"`
	Credit       decimal.Decimal  `json:"jumlahAngkaKredit"`
}

// Totals mirrors credit.Totals for serialization.
type Totals struct {
	Assessments decimal.Decimal `json:"angkaKreditPenilaian"`
	Integration decimal.Decimal `json:"angkaIntegrasi"`
	Education   decimal.Decimal `json:"akPendidikan"`
	Grand       decimal.Decimal `json:"totalAngkaKredit"`
}

// Target is the rank-target block of a penetapan.
type Target struct {
	Grade            credit.Grade    `json:"golongan"`
	NextGrade        credit.Grade    `json:"golonganTujuan"`
	Destination      string          `json:"teksTujuan"`
	RankMinimal      decimal.Decimal `json:"pangkatMinimal"`
	JenjangMinimal   decimal.Decimal `json:"jenjangMinimal"`
	HasJenjangTarget bool            `json:"adaTargetJenjang"`
	RankResult       decimal.Decimal `json:"hasilPangkat"`
	JenjangResult    decimal.Decimal `json:"hasilJenjang"`
	RankRemaining    decimal.Decimal `json:"sisaPangkat"`
	JenjangRemaining decimal.Decimal `json:"sisaJenjang"`
	Eligible         bool            `json:"dapat"`
	Eligibility      string          `json:"kesimpulan"`
}

// Sentence returns the closing sentence of a penetapan.
func (t Target) Sentence() string {
	return t.Eligibility + " dipertimbangkan untuk kenaikan Pangkat/Jabatan setingkat lebih tinggi ke " + t.Destination
}

// Document is a report ready for rendering.
type Document struct {
	Kind         Kind      `json:"jenis"`
	Number       string    `json:"nomor"`
	Year         int       `json:"tahun"`
	Institution  string    `json:"namaInstansi"`
	PeriodStart  string    `json:"periodeAwal"`
	PeriodEnd    string    `json:"periodeAkhir"`
	Employee     Person    `json:"pegawai"`
	Rows         []Row     `json:"akList"`
	Totals       Totals    `json:"totals"`
	DeterminedAt string    `json:"tempatDitetapkan"`
	DeterminedOn string    `json:"tanggalDitetapkan"`
	Assessor     Signatory `json:"penilai"`
	Target       *Target   `json:"target,omitempty"`
}

// PositionAndTMT returns "jabatan / tmt jabatan" as printed.
func (d *Document) PositionAndTMT() string {
	return d.Employee.Position + " / " + d.Employee.PositionTMT
}

// HasIntegration reports whether the integration row is printed.
func (d *Document) HasIntegration() bool { return d.Totals.Integration.IsPositive() }

// HasEducation reports whether the education row is printed.
func (d *Document) HasEducation() bool { return d.Totals.Education.IsPositive() }

// =============================================================================
// BUILDER
// =============================================================================

// Builder reads records through a records.Service and assembles documents.
type Builder struct {
	svc *records.Service
	now func() time.Time
}

func NewBuilder(svc *records.Service) *Builder {
	return &Builder{svc: svc, now: time.Now}
}

// Build dispatches on kind. id is an assessment ID for konversi and
// penetapan, an employee ID for akumulasi.
func (b *Builder) Build(ctx context.Context, kind Kind, id string, opts AkumulasiOptions) (*Document, error) {
	switch kind {
	case KindKonversi:
		return b.Konversi(ctx, id)
	case KindPenetapan:
		return b.Penetapan(ctx, id)
	case KindAkumulasi:
		return b.Akumulasi(ctx, id, opts)
	}
	return nil, errors.New("unknown report kind " + string(kind))
}

// Konversi builds the conversion document of one assessment.
func (b *Builder) Konversi(ctx context.Context, assessmentID string) (*Document, error) {
	a, err := b.svc.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	integration, err := b.svc.IntegrationSum(ctx, a.EmployeeID)
	if err != nil {
		return nil, err
	}
	education, err := b.svc.EducationTotal(ctx, a.EmployeeID)
	if err != nil {
		return nil, err
	}

	doc, err := b.single(ctx, KindKonversi, a)
	if err != nil {
		return nil, err
	}
	doc.Year = b.yearOf(a.DeterminedOn, a.PeriodEnd)
	doc.Totals = aggregate([]records.Assessment{*a}, true, integration, true, education)
	return doc, nil
}

// Penetapan builds the determination document of one assessment, including
// how far the employee's total is from the next rank.
func (b *Builder) Penetapan(ctx context.Context, assessmentID string) (*Document, error) {
	a, err := b.svc.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	integration, err := b.svc.IntegrationValue(ctx, a.EmployeeID)
	if err != nil {
		return nil, err
	}
	education, err := b.svc.EducationTotal(ctx, a.EmployeeID)
	if err != nil {
		return nil, err
	}

	doc, err := b.single(ctx, KindPenetapan, a)
	if err != nil {
		return nil, err
	}
	doc.Year = b.yearOf(a.PeriodEnd, a.DeterminedOn)
	doc.Totals = aggregate([]records.Assessment{*a}, true, integration, true, education)

	grade := ""
	if emp, err := b.svc.GetEmployee(ctx, a.EmployeeID); err == nil {
		grade = emp.Grade
	} else if !records.IsNotFound(err) {
		return nil, err
	}
	res := b.svc.Tables().ResolveTarget(grade, doc.Totals.Grand)
	doc.Target = NewTarget(res)
	return doc, nil
}

// AkumulasiOptions selects the optional rows of an akumulasi.
type AkumulasiOptions struct {
	IncludeIntegration bool
	IncludeEducation   bool
	// Year keeps only assessments whose period ends in that year; 0 keeps all.
	Year int
}

// Akumulasi builds the accumulation document of one employee.
func (b *Builder) Akumulasi(ctx context.Context, employeeID string, opts AkumulasiOptions) (*Document, error) {
	emp, err := b.svc.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	all, err := b.svc.ListAssessments(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	var list []records.Assessment
	for _, a := range all {
		if opts.Year == 0 || a.Period().Year() == opts.Year {
			list = append(list, a)
		}
	}
	if len(list) == 0 {
		return nil, ErrNoAssessments
	}

	integration := decimal.Zero
	if opts.IncludeIntegration {
		if integration, err = b.svc.IntegrationValue(ctx, employeeID); err != nil {
			return nil, err
		}
	}
	education := decimal.Zero
	if opts.IncludeEducation {
		if education, err = b.svc.EducationTotal(ctx, employeeID); err != nil {
			return nil, err
		}
	}

	// list is ordered by period end: the last entry is the most recent.
	earliest, latest := list[0], list[len(list)-1]
	doc := &Document{
		Kind:         KindAkumulasi,
		Number:       reportNumber(employeeID),
		Year:         b.yearOf(latest.PeriodEnd),
		PeriodStart:  earliestStart(list),
		PeriodEnd:    latest.PeriodEnd,
		Employee:     personFrom(emp),
		DeterminedAt: orPlaceholder(latest.DeterminedAt),
		DeterminedOn: orPlaceholder(latest.DeterminedOn),
	}
	if opts.Year != 0 {
		doc.Year = opts.Year
	}
	if doc.PeriodStart == "" {
		doc.PeriodStart = earliest.PeriodStart
	}
	for _, a := range list {
		doc.Rows = append(doc.Rows, rowFrom(a))
	}
	doc.Totals = aggregate(list, opts.IncludeIntegration, integration, opts.IncludeEducation, education)

	inst, err := b.institution(ctx, latest.InstitutionID)
	if err != nil {
		return nil, err
	}
	doc.Institution = institutionName(inst)
	if doc.Assessor, err = b.assessor(ctx, latest, inst); err != nil {
		return nil, err
	}
	return doc, nil
}

// single fills the fields shared by konversi and penetapan.
func (b *Builder) single(ctx context.Context, kind Kind, a *records.Assessment) (*Document, error) {
	doc := &Document{
		Kind:         kind,
		Number:       reportNumber(a.ID),
		PeriodStart:  a.PeriodStart,
		PeriodEnd:    a.PeriodEnd,
		Rows:         []Row{rowFrom(*a)},
		DeterminedAt: orPlaceholder(a.DeterminedAt),
		DeterminedOn: orPlaceholder(a.DeterminedOn),
	}

	emp, err := b.svc.GetEmployee(ctx, a.EmployeeID)
	switch {
	case err == nil:
		doc.Employee = personFrom(emp)
	case records.IsNotFound(err):
		doc.Employee = personFrom(nil)
	default:
		return nil, err
	}

	inst, err := b.institution(ctx, a.InstitutionID)
	if err != nil {
		return nil, err
	}
	doc.Institution = institutionName(inst)
	if doc.Assessor, err = b.assessor(ctx, *a, inst); err != nil {
		return nil, err
	}
	return doc, nil
}

// institution returns nil for an empty or dangling reference.
func (b *Builder) institution(ctx context.Context, id string) (*records.Institution, error) {
	if id == "" {
		return nil, nil
	}
	inst, err := b.svc.GetInstitution(ctx, id)
	if records.IsNotFound(err) {
		return nil, nil
	}
	return inst, err
}

func (b *Builder) assessor(ctx context.Context, a records.Assessment, inst *records.Institution) (Signatory, error) {
	if a.AssessorID != "" {
		emp, err := b.svc.GetEmployee(ctx, a.AssessorID)
		if err == nil {
			return Signatory{
				Name:  orPlaceholder(emp.Name),
				Rank:  orPlaceholder(emp.Rank),
				Grade: orPlaceholder(emp.Grade),
				NIP:   orPlaceholder(emp.NIP),
			}, nil
		}
		if !records.IsNotFound(err) {
			return Signatory{}, err
		}
	}
	if inst != nil && inst.HasAssessor() {
		return Signatory{
			Name:  orPlaceholder(inst.AssessorName),
			Rank:  orPlaceholder(inst.AssessorRank),
			Grade: orPlaceholder(inst.AssessorGrade),
			NIP:   orPlaceholder(inst.AssessorNIP),
		}, nil
	}
	return Signatory{Name: Placeholder, Rank: Placeholder, Grade: Placeholder, NIP: Placeholder}, nil
}

// yearOf returns the year of the first parseable date, else the current year.
func (b *Builder) yearOf(dates ...string) int {
	for _, s := range dates {
		if t, ok := credit.ParseDate(s); ok {
			return t.Year()
		}
	}
	return b.now().Year()
}

// =============================================================================
// HELPERS
// =============================================================================

func reportNumber(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

func institutionName(inst *records.Institution) string {
	if inst == nil || inst.Name == "" {
		return PlaceholderInstitution
	}
	return inst.Name
}

func personFrom(e *records.Employee) Person {
	if e == nil {
		e = &records.Employee{}
	}
	return Person{
		Name:        orPlaceholder(e.Name),
		NIP:         orPlaceholder(e.NIP),
		CardSerial:  orPlaceholder(e.CardSerial),
		BirthPlace:  orPlaceholder(e.BirthPlace),
		BirthDate:   orPlaceholder(e.BirthDate),
		Gender:      orPlaceholder(e.Gender),
		Rank:        orPlaceholder(e.Rank),
		Grade:       orPlaceholder(e.Grade),
		RankTMT:     orPlaceholder(e.RankTMT),
		Position:    orPlaceholder(e.Position),
		PositionTMT: orPlaceholder(e.PositionTMT),
		Unit:        orPlaceholder(e.Unit),
	}
}

func rowFrom(a records.Assessment) Row {
	return Row{
		AssessmentID: a.ID,
		Predicate:    a.Predicate,
		Label:        a.Predicate.Label(),
		PeriodStart:  a.PeriodStart,
		PeriodEnd:    a.PeriodEnd,
		Percentage:   a.Percentage,
		Coefficient:  a.Coefficient,
		Credit:       a.Credit,
	}
}

func earliestStart(list []records.Assessment) string {
	var best string
	var bestTime time.Time
	for _, a := range list {
		t, ok := credit.ParseDate(a.PeriodStart)
		if !ok {
			continue
		}
		if best == "" || t.Before(bestTime) {
			best, bestTime = a.PeriodStart, t
		}
	}
	return best
}

func aggregate(list []records.Assessment, withIntegration bool, integration decimal.Decimal, withEducation bool, education decimal.Decimal) Totals {
	lines := make([]credit.Line, len(list))
	for i, a := range list {
		lines[i] = a.Line()
	}
	t := credit.Aggregate(credit.AggregateInput{
		Lines:              lines,
		IncludeIntegration: withIntegration,
		Integration:        integration,
		IncludeEducation:   withEducation,
		Education:          education,
	})
	return Totals{
		Assessments: t.Assessments,
		Integration: t.Integration,
		Education:   t.Education,
		Grand:       t.Grand,
	}
}

// NewTarget converts a resolved target into its document block.
func NewTarget(r credit.TargetResult) *Target {
	return &Target{
		Grade:            r.Grade,
		NextGrade:        r.NextGrade,
		Destination:      r.Destination,
		RankMinimal:      r.RankMinimal,
		JenjangMinimal:   r.JenjangMinimal,
		HasJenjangTarget: r.HasJenjangTarget,
		RankResult:       r.RankDeficit,
		JenjangResult:    r.JenjangDeficit,
		RankRemaining:    r.RankRemaining(),
		JenjangRemaining: r.JenjangRemaining(),
		Eligible:         r.Eligible,
		Eligibility:      r.Eligibility(),
	}
}
