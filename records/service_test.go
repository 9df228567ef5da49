package records_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/angka-kredit/credit"
	"github.com/warp/angka-kredit/records"
	"github.com/warp/angka-kredit/records/memory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func newService(t *testing.T) (*records.Service, context.Context) {
	t.Helper()
	return records.NewService(memory.New(), nil), context.Background()
}

func createEmployee(t *testing.T, svc *records.Service, name, nip, grade string) *records.Employee {
	t.Helper()
	e, err := svc.CreateEmployee(context.Background(), records.Employee{Name: name, NIP: nip, Grade: grade})
	require.NoError(t, err)
	return e
}

// =============================================================================
// EMPLOYEE TESTS
// =============================================================================

func TestCreateEmployee_AssignsIDAndNormalizes(t *testing.T) {
	svc, ctx := newService(t)

	e, err := svc.CreateEmployee(ctx, records.Employee{
		ID:     "ignored",
		Name:   "  Siti Aminah ",
		NIP:    "198001012005012001",
		Gender: "PEREMPUAN",
		Grade:  " III/b ",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.NotEqual(t, "ignored", e.ID)
	assert.Equal(t, "Siti Aminah", e.Name)
	assert.Equal(t, "III/b", e.Grade)
	assert.Equal(t, records.GenderFemale, e.Gender)
	assert.False(t, e.CreatedAt.IsZero())

	got, err := svc.GetEmployee(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.Name, got.Name)
}

func TestCreateEmployee_RequiresNameAndNIP(t *testing.T) {
	svc, ctx := newService(t)

	_, err := svc.CreateEmployee(ctx, records.Employee{NIP: "1"})
	require.Error(t, err)
	assert.True(t, records.IsClientError(err))

	var verr *records.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "nama", verr.Field)

	_, err = svc.CreateEmployee(ctx, records.Employee{Name: "Budi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, records.ErrInvalidRecord)
}

func TestNormalizeGender_DefaultsToMale(t *testing.T) {
	assert.Equal(t, records.GenderMale, records.NormalizeGender(""))
	assert.Equal(t, records.GenderMale, records.NormalizeGender("L"))
	assert.Equal(t, records.GenderMale, records.NormalizeGender("unknown"))
	assert.Equal(t, records.GenderFemale, records.NormalizeGender("Perempuan"))
	assert.Equal(t, records.GenderFemale, records.NormalizeGender(" p "))
}

func TestUpdateEmployee_KeepsCreatedAt(t *testing.T) {
	svc, ctx := newService(t)
	e := createEmployee(t, svc, "Budi", "1", "III/a")

	updated, err := svc.UpdateEmployee(ctx, e.ID, records.Employee{Name: "Budi Santoso", NIP: "1", Grade: "III/b"})
	require.NoError(t, err)
	assert.Equal(t, e.ID, updated.ID)
	assert.Equal(t, e.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "III/b", updated.Grade)

	_, err = svc.UpdateEmployee(ctx, "missing", records.Employee{Name: "x", NIP: "y"})
	assert.True(t, records.IsNotFound(err))
}

func TestImportEmployees_UpsertsByNIP(t *testing.T) {
	svc, ctx := newService(t)
	existing := createEmployee(t, svc, "Budi", "111", "III/a")

	res, err := svc.ImportEmployees(ctx, []records.Employee{
		{Name: "Budi Santoso", NIP: "111", Grade: "III/b"},
		{Name: "Ani", NIP: "222", Gender: "Perempuan"},
	})
	require.NoError(t, err)
	assert.Equal(t, records.ImportResult{Created: 1, Updated: 1}, res)

	got, err := svc.GetEmployee(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", got.Name)
	assert.Equal(t, "III/b", got.Grade)

	all, err := svc.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ani", all[0].Name, "ordered by name")
}

func TestImportEmployees_InvalidRowWritesNothing(t *testing.T) {
	// GIVEN: A valid first row and an invalid second row
	svc, ctx := newService(t)
	existing := createEmployee(t, svc, "Budi", "111", "III/a")

	// WHEN: Importing them
	res, err := svc.ImportEmployees(ctx, []records.Employee{
		{Name: "Ani", NIP: "1"},
		{Name: "Budi Santoso", NIP: "111"},
		{Name: "  ", NIP: "2"},
	})

	// THEN: The whole batch is rejected before any write
	require.Error(t, err)
	assert.True(t, records.IsClientError(err))
	assert.Contains(t, err.Error(), "row 3")
	assert.Equal(t, records.ImportResult{}, res)

	all, err := svc.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, existing.Name, all[0].Name)
}

// =============================================================================
// ASSESSMENT TESTS
// =============================================================================

func TestCreateAssessment_DerivesFields(t *testing.T) {
	// GIVEN: an employee
	svc, ctx := newService(t)
	e := createEmployee(t, svc, "Budi", "1", "III/a")

	// WHEN: an assessment is created with hand-typed derived values
	a, err := svc.CreateAssessment(ctx, records.Assessment{
		EmployeeID:  e.ID,
		JobLevel:    "keahlian - ahli muda",
		Predicate:   "Baik",
		PeriodStart: "2024-01-01",
		PeriodEnd:   "2024-12-31",
		Credit:      dec("999"),
	})
	require.NoError(t, err)

	// THEN: the derived values come from the inputs only
	assert.Equal(t, credit.PredicateBaik, a.Predicate)
	assertDecimal(t, "100", a.Percentage)
	assertDecimal(t, "25", a.Coefficient)
	assertDecimal(t, "25", a.Credit)

	stored, err := svc.GetAssessment(ctx, a.ID)
	require.NoError(t, err)
	assertDecimal(t, "25", stored.Credit)
}

func TestUpdateAssessment_ReDerives(t *testing.T) {
	svc, ctx := newService(t)
	e := createEmployee(t, svc, "Budi", "1", "III/a")
	a, err := svc.CreateAssessment(ctx, records.Assessment{
		EmployeeID: e.ID, JobLevel: "KEAHLIAN - AHLI PERTAMA", Predicate: "baik",
		PeriodStart: "2024-01-01", PeriodEnd: "2024-12-31",
	})
	require.NoError(t, err)
	assertDecimal(t, "12.5", a.Credit)

	a.Predicate = credit.PredicateSangatBaik
	a.PeriodStart = "2024-06-01"
	updated, err := svc.UpdateAssessment(ctx, a.ID, *a)
	require.NoError(t, err)
	assertDecimal(t, "10.9375", updated.Credit)
	assert.Equal(t, a.CreatedAt, updated.CreatedAt)

	// Saving again with the same inputs changes nothing
	again, err := svc.UpdateAssessment(ctx, a.ID, *updated)
	require.NoError(t, err)
	assert.True(t, updated.Credit.Equal(again.Credit))
}

func TestCreateAssessment_LegacyJobLevelResolves(t *testing.T) {
	svc, ctx := newService(t)
	e := createEmployee(t, svc, "Budi", "1", "IV/a")
	a, err := svc.CreateAssessment(ctx, records.Assessment{
		EmployeeID: e.ID, JobLevel: "pembina", Predicate: "butuh_perbaikan",
		PeriodStart: "2023-01-01", PeriodEnd: "2023-12-31",
	})
	require.NoError(t, err)
	assertDecimal(t, "37.5", a.Coefficient)
	assertDecimal(t, "28.125", a.Credit)
}

func TestCreateAssessment_UnknownEmployeeIsClientError(t *testing.T) {
	svc, ctx := newService(t)
	_, err := svc.CreateAssessment(ctx, records.Assessment{EmployeeID: "nobody"})
	require.Error(t, err)
	assert.True(t, records.IsClientError(err))

	_, err = svc.CreateAssessment(ctx, records.Assessment{})
	assert.True(t, records.IsClientError(err))
}

func TestListAssessments_OrderedByPeriodEnd(t *testing.T) {
	svc, ctx := newService(t)
	e := createEmployee(t, svc, "Budi", "1", "III/a")
	other := createEmployee(t, svc, "Ani", "2", "III/a")

	for _, end := range []string{"2024-12-31", "2022-12-31", "2023-12-31"} {
		_, err := svc.CreateAssessment(ctx, records.Assessment{EmployeeID: e.ID, PeriodStart: end[:4] + "-01-01", PeriodEnd: end})
		require.NoError(t, err)
	}
	_, err := svc.CreateAssessment(ctx, records.Assessment{EmployeeID: other.ID, PeriodEnd: "2021-12-31"})
	require.NoError(t, err)

	list, err := svc.ListAssessments(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2022-12-31", list[0].PeriodEnd)
	assert.Equal(t, "2024-12-31", list[2].PeriodEnd)

	all, err := svc.ListAssessments(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestDeleteEmployee_DoesNotCascade(t *testing.T) {
	svc, ctx := newService(t)
	e := createEmployee(t, svc, "Budi", "1", "III/a")
	a, err := svc.CreateAssessment(ctx, records.Assessment{EmployeeID: e.ID})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEmployee(ctx, e.ID))
	_, err = svc.GetAssessment(ctx, a.ID)
	assert.NoError(t, err)

	assert.True(t, records.IsNotFound(svc.DeleteEmployee(ctx, e.ID)))
}

// =============================================================================
// INTEGRATION AND EDUCATION TESTS
// =============================================================================

func TestIntegrationValue_FirstRecordWins(t *testing.T) {
	svc, ctx := newService(t)
	e := createEmployee(t, svc, "Budi", "1", "III/a")

	v, err := svc.IntegrationValue(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	_, err = svc.CreateIntegrationCredit(ctx, records.IntegrationCredit{EmployeeID: e.ID, Value: dec("12.5")})
	require.NoError(t, err)
	_, err = svc.CreateIntegrationCredit(ctx, records.IntegrationCredit{EmployeeID: e.ID, Value: dec("3")})
	require.NoError(t, err)

	v, err = svc.IntegrationValue(ctx, e.ID)
	require.NoError(t, err)
	assertDecimal(t, "12.5", v)

	sum, err := svc.IntegrationSum(ctx, e.ID)
	require.NoError(t, err)
	assertDecimal(t, "15.5", sum)

	_, err = svc.CreateIntegrationCredit(ctx, records.IntegrationCredit{EmployeeID: e.ID, Value: dec("-1")})
	assert.True(t, records.IsClientError(err))
}

func TestEducationCredit_GradeAnchoredAndFallback(t *testing.T) {
	svc, ctx := newService(t)

	// GIVEN: an employee at III/a (jenjang minimal 100)
	withGrade := createEmployee(t, svc, "Budi", "1", "III/a")
	c, err := svc.CreateEducationCredit(ctx, records.EducationCredit{
		EmployeeID: withGrade.ID, Name: "Magister", Level: "S2", GraduationYear: 2020,
	})
	require.NoError(t, err)
	assert.Equal(t, credit.EducationGradeAnchored, c.Method)
	assertDecimal(t, "100", c.NextRankValue)
	assertDecimal(t, "25", c.Value)

	// GIVEN: an employee without golongan
	noGrade := createEmployee(t, svc, "Ani", "2", "")
	c, err = svc.CreateEducationCredit(ctx, records.EducationCredit{EmployeeID: noGrade.ID, Level: "S2"})
	require.NoError(t, err)
	assert.Equal(t, credit.EducationLevelAnchored, c.Method)
	assertDecimal(t, "12.5", c.Value)
}

func TestEducationTotal_CeilsEachRow(t *testing.T) {
	svc, ctx := newService(t)
	e := createEmployee(t, svc, "Budi", "1", "")

	// d1: 15 * 0.25 = 3.75; sd: 1 * 0.25 = 0.25; smp: 2 * 0.25 = 0.5
	for _, level := range []string{"D1", "SD", "SMP"} {
		_, err := svc.CreateEducationCredit(ctx, records.EducationCredit{EmployeeID: e.ID, Level: level})
		require.NoError(t, err)
	}
	total, err := svc.EducationTotal(ctx, e.ID)
	require.NoError(t, err)
	assertDecimal(t, "4.5", total)
}

// =============================================================================
// RECALCULATION AND STATS
// =============================================================================

func TestRecalculate_AppliesNewTables(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	svc := records.NewService(store, nil)

	e := createEmployee(t, svc, "Budi", "1", "III/a")
	_, err := svc.CreateAssessment(ctx, records.Assessment{
		EmployeeID: e.ID, JobLevel: "KEAHLIAN - AHLI MUDA", Predicate: "baik",
		PeriodStart: "2024-01-01", PeriodEnd: "2024-12-31",
	})
	require.NoError(t, err)
	_, err = svc.CreateEducationCredit(ctx, records.EducationCredit{EmployeeID: e.ID, Level: "S1"})
	require.NoError(t, err)

	// WHEN: the koefisien for AHLI MUDA changes
	set := credit.DefaultTableSet()
	set.CurrentCoefficients["KEAHLIAN - AHLI MUDA"] = dec("30")
	updated := records.NewService(store, credit.NewCalculator(credit.NewTables(set), credit.KonversiPolicy))

	res, err := updated.Recalculate(ctx)
	require.NoError(t, err)

	// THEN: only the assessment changed
	assert.Equal(t, records.RecalcResult{Assessments: 1, Education: 0}, res)
	list, err := updated.ListAssessments(ctx, e.ID)
	require.NoError(t, err)
	assertDecimal(t, "30", list[0].Credit)

	// AND: running it again is a no-op
	res, err = updated.Recalculate(ctx)
	require.NoError(t, err)
	assert.Equal(t, records.RecalcResult{}, res)
}

func TestStats(t *testing.T) {
	svc, ctx := newService(t)
	e := createEmployee(t, svc, "Budi", "1", "III/a")
	_, err := svc.CreateInstitution(ctx, records.Institution{Name: "Dinas Pendidikan"})
	require.NoError(t, err)
	for _, p := range []string{"baik", "sangat_baik"} {
		_, err := svc.CreateAssessment(ctx, records.Assessment{
			EmployeeID: e.ID, JobLevel: "KEAHLIAN - AHLI MUDA", Predicate: credit.Predicate(p),
			PeriodStart: "2024-01-01", PeriodEnd: "2024-12-31",
		})
		require.NoError(t, err)
	}

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Employees)
	assert.Equal(t, 1, st.Institutions)
	assert.Equal(t, 2, st.Assessments)
	assertDecimal(t, "62.5", st.TotalCredit)
}

func TestCreateInstitution_RequiresName(t *testing.T) {
	svc, ctx := newService(t)
	_, err := svc.CreateInstitution(ctx, records.Institution{Name: "  "})
	assert.True(t, records.IsClientError(err))
}
