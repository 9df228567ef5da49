package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/angka-kredit/credit"
)

// =============================================================================
// SERVICE - Writes records with their derived fields
// =============================================================================

// Service validates records, assigns IDs and timestamps, and recomputes
// every derived field from its inputs on each write.
type Service struct {
	store Store
	calc  *credit.Calculator
	now   func() time.Time
	newID func() string
}

// NewService creates a service. A nil calc derives assessments with the
// default tables under credit.KonversiPolicy.
func NewService(store Store, calc *credit.Calculator) *Service {
	if calc == nil {
		calc = credit.NewCalculator(nil, credit.KonversiPolicy)
	}
	return &Service{
		store: store,
		calc:  calc,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (s *Service) Store() Store                   { return s.store }
func (s *Service) Calculator() *credit.Calculator { return s.calc }
func (s *Service) Tables() *credit.Tables         { return s.calc.Tables() }

// stamp sets ID and timestamps. existing is the stored version, if any.
func (s *Service) stamp(id *string, created, updated *time.Time, existing *time.Time) {
	now := s.now()
	if *id == "" {
		*id = s.newID()
	}
	if existing != nil {
		*created = *existing
	} else {
		*created = now
	}
	*updated = now
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Service) CreateEmployee(ctx context.Context, e Employee) (*Employee, error) {
	e.ID = ""
	return s.saveEmployee(ctx, e, nil)
}

// UpdateEmployee replaces the employee with the given ID.
func (s *Service) UpdateEmployee(ctx context.Context, id string, e Employee) (*Employee, error) {
	existing, err := s.store.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	e.ID = id
	return s.saveEmployee(ctx, e, &existing.CreatedAt)
}

func (s *Service) saveEmployee(ctx context.Context, e Employee, created *time.Time) (*Employee, error) {
	normalizeEmployee(&e)
	if err := validateEmployee(e); err != nil {
		return nil, err
	}
	s.stamp(&e.ID, &e.CreatedAt, &e.UpdatedAt, created)
	if err := s.store.SaveEmployee(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to save employee: %w", err)
	}
	return &e, nil
}

func validateEmployee(e Employee) error {
	if e.Name == "" {
		return invalid("nama", "is required")
	}
	if e.NIP == "" {
		return invalid("nip", "is required")
	}
	return nil
}

func normalizeEmployee(e *Employee) {
	for _, f := range []*string{
		&e.Name, &e.NIP, &e.CardSerial, &e.BirthPlace, &e.BirthDate, &e.Rank,
		&e.Grade, &e.RankTMT, &e.Position, &e.PositionTMT, &e.Unit,
	} {
		*f = strings.TrimSpace(*f)
	}
	e.Gender = NormalizeGender(e.Gender)
}

func (s *Service) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	return s.store.GetEmployee(ctx, id)
}

func (s *Service) ListEmployees(ctx context.Context) ([]Employee, error) {
	return s.store.ListEmployees(ctx)
}

// DeleteEmployee removes the employee only. Records referring to it stay.
func (s *Service) DeleteEmployee(ctx context.Context, id string) error {
	return s.store.DeleteEmployee(ctx, id)
}

// FindEmployeeByNIP returns the first employee with the given NIP.
func (s *Service) FindEmployeeByNIP(ctx context.Context, nip string) (*Employee, error) {
	nip = strings.TrimSpace(nip)
	all, err := s.store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].NIP == nip {
			return &all[i], nil
		}
	}
	return nil, NotFound("employee with nip", nip)
}

// ImportResult counts the outcome of an employee import.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// ImportEmployees upserts employees by NIP: a row whose NIP already exists
// replaces that employee, any other row creates a new one. Every row is
// validated before anything is written. A store failure part way through
// returns the counts written so far with the error.
func (s *Service) ImportEmployees(ctx context.Context, rows []Employee) (ImportResult, error) {
	var res ImportResult
	for i, row := range rows {
		normalizeEmployee(&row)
		if err := validateEmployee(row); err != nil {
			return res, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	for i, row := range rows {
		existing, err := s.FindEmployeeByNIP(ctx, row.NIP)
		switch {
		case err == nil:
			if _, err := s.UpdateEmployee(ctx, existing.ID, row); err != nil {
				return res, fmt.Errorf("row %d: %w", i+1, err)
			}
			res.Updated++
		case IsNotFound(err):
			if _, err := s.CreateEmployee(ctx, row); err != nil {
				return res, fmt.Errorf("row %d: %w", i+1, err)
			}
			res.Created++
		default:
			return res, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return res, nil
}

// =============================================================================
// INSTITUTIONS
// =============================================================================

func (s *Service) CreateInstitution(ctx context.Context, i Institution) (*Institution, error) {
	i.ID = ""
	return s.saveInstitution(ctx, i, nil)
}

func (s *Service) UpdateInstitution(ctx context.Context, id string, i Institution) (*Institution, error) {
	existing, err := s.store.GetInstitution(ctx, id)
	if err != nil {
		return nil, err
	}
	i.ID = id
	return s.saveInstitution(ctx, i, &existing.CreatedAt)
}

func (s *Service) saveInstitution(ctx context.Context, i Institution, created *time.Time) (*Institution, error) {
	i.Name = strings.TrimSpace(i.Name)
	if i.Name == "" {
		return nil, invalid("name", "is required")
	}
	s.stamp(&i.ID, &i.CreatedAt, &i.UpdatedAt, created)
	if err := s.store.SaveInstitution(ctx, i); err != nil {
		return nil, fmt.Errorf("failed to save institution: %w", err)
	}
	return &i, nil
}

func (s *Service) GetInstitution(ctx context.Context, id string) (*Institution, error) {
	return s.store.GetInstitution(ctx, id)
}

func (s *Service) ListInstitutions(ctx context.Context) ([]Institution, error) {
	return s.store.ListInstitutions(ctx)
}

func (s *Service) DeleteInstitution(ctx context.Context, id string) error {
	return s.store.DeleteInstitution(ctx, id)
}

// =============================================================================
// ASSESSMENTS
// =============================================================================

func (s *Service) CreateAssessment(ctx context.Context, a Assessment) (*Assessment, error) {
	a.ID = ""
	return s.saveAssessment(ctx, a, nil)
}

func (s *Service) UpdateAssessment(ctx context.Context, id string, a Assessment) (*Assessment, error) {
	existing, err := s.store.GetAssessment(ctx, id)
	if err != nil {
		return nil, err
	}
	a.ID = id
	return s.saveAssessment(ctx, a, &existing.CreatedAt)
}

func (s *Service) saveAssessment(ctx context.Context, a Assessment, created *time.Time) (*Assessment, error) {
	if err := s.requireEmployee(ctx, "pegawaiId", a.EmployeeID); err != nil {
		return nil, err
	}
	a.JobLevel = strings.TrimSpace(a.JobLevel)
	s.DeriveAssessment(&a)
	s.stamp(&a.ID, &a.CreatedAt, &a.UpdatedAt, created)
	if err := s.store.SaveAssessment(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to save assessment: %w", err)
	}
	return &a, nil
}

// DeriveAssessment overwrites the derived fields of a from its inputs.
func (s *Service) DeriveAssessment(a *Assessment) {
	b := s.calc.Derive(string(a.Predicate), a.JobLevel, a.PeriodStart, a.PeriodEnd)
	a.Predicate = b.Predicate
	a.Percentage = b.Percentage
	a.Coefficient = b.Coefficient
	a.Credit = b.Credit
}

func (s *Service) GetAssessment(ctx context.Context, id string) (*Assessment, error) {
	return s.store.GetAssessment(ctx, id)
}

// ListAssessments lists every assessment, or one employee's when
// employeeID is set, ordered by period end.
func (s *Service) ListAssessments(ctx context.Context, employeeID string) ([]Assessment, error) {
	return s.store.ListAssessments(ctx, employeeID)
}

func (s *Service) DeleteAssessment(ctx context.Context, id string) error {
	return s.store.DeleteAssessment(ctx, id)
}

// =============================================================================
// INTEGRATION CREDITS
// =============================================================================

func (s *Service) CreateIntegrationCredit(ctx context.Context, c IntegrationCredit) (*IntegrationCredit, error) {
	c.ID = ""
	return s.saveIntegration(ctx, c, nil)
}

func (s *Service) UpdateIntegrationCredit(ctx context.Context, id string, c IntegrationCredit) (*IntegrationCredit, error) {
	existing, err := s.store.GetIntegrationCredit(ctx, id)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return s.saveIntegration(ctx, c, &existing.CreatedAt)
}

func (s *Service) saveIntegration(ctx context.Context, c IntegrationCredit, created *time.Time) (*IntegrationCredit, error) {
	if err := s.requireEmployee(ctx, "pegawaiId", c.EmployeeID); err != nil {
		return nil, err
	}
	if c.Value.IsNegative() {
		return nil, invalid("value", "must not be negative")
	}
	s.stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt, created)
	if err := s.store.SaveIntegrationCredit(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save integration credit: %w", err)
	}
	return &c, nil
}

func (s *Service) GetIntegrationCredit(ctx context.Context, id string) (*IntegrationCredit, error) {
	return s.store.GetIntegrationCredit(ctx, id)
}

func (s *Service) ListIntegrationCredits(ctx context.Context, employeeID string) ([]IntegrationCredit, error) {
	return s.store.ListIntegrationCredits(ctx, employeeID)
}

func (s *Service) DeleteIntegrationCredit(ctx context.Context, id string) error {
	return s.store.DeleteIntegrationCredit(ctx, id)
}

// IntegrationValue returns the first integration credit recorded for the
// employee, or zero.
func (s *Service) IntegrationValue(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	list, err := s.store.ListIntegrationCredits(ctx, employeeID)
	if err != nil {
		return decimal.Zero, err
	}
	if len(list) == 0 {
		return decimal.Zero, nil
	}
	return list[0].Value, nil
}

// IntegrationSum adds every integration credit recorded for the employee.
func (s *Service) IntegrationSum(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	list, err := s.store.ListIntegrationCredits(ctx, employeeID)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, c := range list {
		sum = sum.Add(c.Value)
	}
	return sum, nil
}

// =============================================================================
// EDUCATION CREDITS
// =============================================================================

func (s *Service) CreateEducationCredit(ctx context.Context, c EducationCredit) (*EducationCredit, error) {
	c.ID = ""
	return s.saveEducation(ctx, c, nil)
}

func (s *Service) UpdateEducationCredit(ctx context.Context, id string, c EducationCredit) (*EducationCredit, error) {
	existing, err := s.store.GetEducationCredit(ctx, id)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return s.saveEducation(ctx, c, &existing.CreatedAt)
}

func (s *Service) saveEducation(ctx context.Context, c EducationCredit, created *time.Time) (*EducationCredit, error) {
	emp, err := s.store.GetEmployee(ctx, c.EmployeeID)
	if err != nil {
		if IsNotFound(err) {
			return nil, invalid("pegawaiId", "unknown employee "+c.EmployeeID)
		}
		return nil, err
	}
	c.Name = strings.TrimSpace(c.Name)
	c.Level = strings.TrimSpace(c.Level)
	s.DeriveEducation(&c, emp.Grade)
	s.stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt, created)
	if err := s.store.SaveEducationCredit(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save education credit: %w", err)
	}
	return &c, nil
}

// DeriveEducation overwrites the derived fields of c for an employee at
// the given golongan.
func (s *Service) DeriveEducation(c *EducationCredit, grade string) {
	res := s.Tables().EducationCredit(grade, c.Level)
	c.Method = res.Method
	c.NextRankValue = res.Basis
	c.Value = res.Value
}

func (s *Service) GetEducationCredit(ctx context.Context, id string) (*EducationCredit, error) {
	return s.store.GetEducationCredit(ctx, id)
}

func (s *Service) ListEducationCredits(ctx context.Context, employeeID string) ([]EducationCredit, error) {
	return s.store.ListEducationCredits(ctx, employeeID)
}

func (s *Service) DeleteEducationCredit(ctx context.Context, id string) error {
	return s.store.DeleteEducationCredit(ctx, id)
}

// EducationTotal sums the employee's education credits, each ceiled to a
// quarter point first.
func (s *Service) EducationTotal(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	list, err := s.store.ListEducationCredits(ctx, employeeID)
	if err != nil {
		return decimal.Zero, err
	}
	values := make([]decimal.Decimal, len(list))
	for i, c := range list {
		values[i] = c.Value
	}
	return credit.SumEducation(values), nil
}

// =============================================================================
// RECALCULATION
// =============================================================================

// RecalcResult counts records whose derived fields changed.
type RecalcResult struct {
	Assessments int `json:"assessments"`
	Education   int `json:"education"`
}

// Recalculate re-derives every stored assessment and education row with the
// service's current tables and saves those that changed. Run it after the
// lookup tables are replaced.
func (s *Service) Recalculate(ctx context.Context) (RecalcResult, error) {
	var res RecalcResult

	assessments, err := s.store.ListAssessments(ctx, "")
	if err != nil {
		return res, err
	}
	for _, a := range assessments {
		before := a
		s.DeriveAssessment(&a)
		if sameAssessment(before, a) {
			continue
		}
		a.UpdatedAt = s.now()
		if err := s.store.SaveAssessment(ctx, a); err != nil {
			return res, fmt.Errorf("failed to save assessment %s: %w", a.ID, err)
		}
		res.Assessments++
	}

	grades := make(map[string]string)
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return res, err
	}
	for _, e := range employees {
		grades[e.ID] = e.Grade
	}
	education, err := s.store.ListEducationCredits(ctx, "")
	if err != nil {
		return res, err
	}
	for _, c := range education {
		before := c
		s.DeriveEducation(&c, grades[c.EmployeeID])
		if before.Method == c.Method && before.NextRankValue.Equal(c.NextRankValue) && before.Value.Equal(c.Value) {
			continue
		}
		c.UpdatedAt = s.now()
		if err := s.store.SaveEducationCredit(ctx, c); err != nil {
			return res, fmt.Errorf("failed to save education credit %s: %w", c.ID, err)
		}
		res.Education++
	}
	return res, nil
}

func sameAssessment(a, b Assessment) bool {
	return a.Predicate == b.Predicate &&
		a.Percentage.Equal(b.Percentage) &&
		a.Coefficient.Equal(b.Coefficient) &&
		a.Credit.Equal(b.Credit)
}

// =============================================================================
// DASHBOARD
// =============================================================================

// Stats summarizes the stored records.
type Stats struct {
	Employees          int             `json:"pegawai"`
	Institutions       int             `json:"instansi"`
	Assessments        int             `json:"penilaian"`
	IntegrationCredits int             `json:"angka_integrasi"`
	EducationCredits   int             `json:"ak_pendidikan"`
	TotalCredit        decimal.Decimal `json:"total_angka_kredit"`
}

// Stats counts records and sums the credit of every assessment.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return st, err
	}
	institutions, err := s.store.ListInstitutions(ctx)
	if err != nil {
		return st, err
	}
	assessments, err := s.store.ListAssessments(ctx, "")
	if err != nil {
		return st, err
	}
	integration, err := s.store.ListIntegrationCredits(ctx, "")
	if err != nil {
		return st, err
	}
	education, err := s.store.ListEducationCredits(ctx, "")
	if err != nil {
		return st, err
	}

	st.Employees = len(employees)
	st.Institutions = len(institutions)
	st.Assessments = len(assessments)
	st.IntegrationCredits = len(integration)
	st.EducationCredits = len(education)
	st.TotalCredit = decimal.Zero
	for _, a := range assessments {
		st.TotalCredit = st.TotalCredit.Add(a.Credit)
	}
	return st, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Service) requireEmployee(ctx context.Context, field, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid(field, "is required")
	}
	if _, err := s.store.GetEmployee(ctx, id); err != nil {
		if IsNotFound(err) {
			return invalid(field, "unknown employee "+id)
		}
		return err
	}
	return nil
}
