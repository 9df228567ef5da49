// Package storetest is a conformance suite every records.Store
// implementation runs from its own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/angka-kredit/credit"
	"github.com/warp/angka-kredit/records"
)

// Run exercises newStore against the records.Store contract. newStore must
// return an empty store each call.
func Run(t *testing.T, newStore func(t *testing.T) records.Store) {
	t.Run("EmployeeRoundTrip", func(t *testing.T) { testEmployeeRoundTrip(t, newStore(t)) })
	t.Run("EmployeeUniqueNIP", func(t *testing.T) { testEmployeeUniqueNIP(t, newStore(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newStore(t)) })
	t.Run("InstitutionRoundTrip", func(t *testing.T) { testInstitutionRoundTrip(t, newStore(t)) })
	t.Run("AssessmentDecimalsExact", func(t *testing.T) { testAssessmentDecimalsExact(t, newStore(t)) })
	t.Run("AssessmentOrdering", func(t *testing.T) { testAssessmentOrdering(t, newStore(t)) })
	t.Run("CreditListsInCreationOrder", func(t *testing.T) { testCreditListsInCreationOrder(t, newStore(t)) })
	t.Run("DeleteDoesNotCascade", func(t *testing.T) { testDeleteDoesNotCascade(t, newStore(t)) })
}

var (
	t0 = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	t1 = t0.Add(time.Hour)
)

func testEmployeeRoundTrip(t *testing.T, s records.Store) {
	ctx := context.Background()
	e := records.Employee{
		ID: "emp-1", Name: "Budi Santoso", NIP: "197001012000031001",
		CardSerial: "K-123", BirthPlace: "Surabaya", BirthDate: "1970-01-01",
		Gender: records.GenderMale, Rank: "Penata", Grade: "III/c",
		RankTMT: "2020-04-01", Position: "Guru Ahli Muda", PositionTMT: "2021-01-01",
		Unit: "SMPN 1", CreatedAt: t0, UpdatedAt: t0,
	}
	require.NoError(t, s.SaveEmployee(ctx, e))

	got, err := s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, e.Name, got.Name)
	assert.Equal(t, e.CardSerial, got.CardSerial)
	assert.Equal(t, e.Grade, got.Grade)
	assert.Equal(t, e.PositionTMT, got.PositionTMT)
	assert.True(t, e.CreatedAt.Equal(got.CreatedAt))

	// Upsert by ID
	e.Grade = "III/d"
	e.UpdatedAt = t1
	require.NoError(t, s.SaveEmployee(ctx, e))
	got, err = s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "III/d", got.Grade)
	assert.True(t, t1.Equal(got.UpdatedAt))

	require.NoError(t, s.SaveEmployee(ctx, records.Employee{ID: "emp-2", Name: "Ani", NIP: "2", Gender: records.GenderFemale, CreatedAt: t0, UpdatedAt: t0}))
	list, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ani", list[0].Name)
	assert.Equal(t, "", list[0].Grade)
}

func testEmployeeUniqueNIP(t *testing.T, s records.Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveEmployee(ctx, records.Employee{ID: "a", Name: "A", NIP: "1", Gender: records.GenderMale}))
	err := s.SaveEmployee(ctx, records.Employee{ID: "b", Name: "B", NIP: "1", Gender: records.GenderMale})
	require.Error(t, err)
	assert.ErrorIs(t, err, records.ErrDuplicate)

	// Re-saving the same record keeps its own NIP
	assert.NoError(t, s.SaveEmployee(ctx, records.Employee{ID: "a", Name: "A2", NIP: "1", Gender: records.GenderMale}))
}

func testNotFound(t *testing.T, s records.Store) {
	ctx := context.Background()

	_, err := s.GetEmployee(ctx, "x")
	assert.True(t, records.IsNotFound(err))
	_, err = s.GetInstitution(ctx, "x")
	assert.True(t, records.IsNotFound(err))
	_, err = s.GetAssessment(ctx, "x")
	assert.True(t, records.IsNotFound(err))
	_, err = s.GetIntegrationCredit(ctx, "x")
	assert.True(t, records.IsNotFound(err))
	_, err = s.GetEducationCredit(ctx, "x")
	assert.True(t, records.IsNotFound(err))

	assert.True(t, records.IsNotFound(s.DeleteEmployee(ctx, "x")))
	assert.True(t, records.IsNotFound(s.DeleteInstitution(ctx, "x")))
	assert.True(t, records.IsNotFound(s.DeleteAssessment(ctx, "x")))
	assert.True(t, records.IsNotFound(s.DeleteIntegrationCredit(ctx, "x")))
	assert.True(t, records.IsNotFound(s.DeleteEducationCredit(ctx, "x")))
}

func testInstitutionRoundTrip(t *testing.T, s records.Store) {
	ctx := context.Background()
	in := records.Institution{
		ID: "inst-1", Name: "Dinas Pendidikan",
		AssessorName: "Dr. Sri", AssessorNIP: "196501011990032001",
		AssessorRank: "Pembina", AssessorGrade: "IV/a",
		CreatedAt: t0, UpdatedAt: t0,
	}
	require.NoError(t, s.SaveInstitution(ctx, in))
	got, err := s.GetInstitution(ctx, "inst-1")
	require.NoError(t, err)
	assert.Equal(t, in.AssessorName, got.AssessorName)
	assert.Equal(t, in.AssessorGrade, got.AssessorGrade)
	assert.True(t, got.HasAssessor())

	list, err := s.ListInstitutions(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testAssessmentDecimalsExact(t *testing.T, s records.Store) {
	ctx := context.Background()
	a := records.Assessment{
		ID: "pak-1", EmployeeID: "emp-1", InstitutionID: "inst-1", AssessorID: "emp-9",
		JobLevel: "KEAHLIAN - AHLI PERTAMA", Predicate: credit.PredicateSangatBaik,
		PeriodStart: "2024-06-01", PeriodEnd: "2024-12-31",
		DeterminedOn: "2025-01-10", DeterminedAt: "Surabaya",
		Percentage:  decimal.RequireFromString("150"),
		Coefficient: decimal.RequireFromString("12.5"),
		Credit:      decimal.RequireFromString("10.9375"),
		CreatedAt:   t0, UpdatedAt: t0,
	}
	require.NoError(t, s.SaveAssessment(ctx, a))

	got, err := s.GetAssessment(ctx, "pak-1")
	require.NoError(t, err)
	assert.Equal(t, "10.9375", got.Credit.String())
	assert.Equal(t, "12.5", got.Coefficient.String())
	assert.Equal(t, credit.PredicateSangatBaik, got.Predicate)
	assert.Equal(t, "emp-9", got.AssessorID)
	assert.Equal(t, "Surabaya", got.DeterminedAt)
}

func testAssessmentOrdering(t *testing.T, s records.Store) {
	ctx := context.Background()
	for i, end := range []string{"2024-12-31", "2022-12-31", "31-12-2023", "2022-12-31"} {
		require.NoError(t, s.SaveAssessment(ctx, records.Assessment{
			ID: string(rune('a' + i)), EmployeeID: "emp-1", PeriodEnd: end,
			Percentage: decimal.Zero, Coefficient: decimal.Zero, Credit: decimal.Zero,
			CreatedAt: t0, UpdatedAt: t0,
		}))
	}
	require.NoError(t, s.SaveAssessment(ctx, records.Assessment{
		ID: "other", EmployeeID: "emp-2", PeriodEnd: "2020-12-31",
		Percentage: decimal.Zero, Coefficient: decimal.Zero, Credit: decimal.Zero,
	}))

	list, err := s.ListAssessments(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, list, 4)
	ids := []string{list[0].ID, list[1].ID, list[2].ID, list[3].ID}
	assert.Equal(t, []string{"b", "d", "c", "a"}, ids, "period end, then insertion")

	all, err := s.ListAssessments(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "other", all[0].ID)
}

func testCreditListsInCreationOrder(t *testing.T, s records.Store) {
	ctx := context.Background()
	for i, v := range []string{"12.5", "3"} {
		require.NoError(t, s.SaveIntegrationCredit(ctx, records.IntegrationCredit{
			ID: "int-" + string(rune('a'+i)), EmployeeID: "emp-1",
			Value: decimal.RequireFromString(v), CreatedAt: t0, UpdatedAt: t0,
		}))
	}
	ints, err := s.ListIntegrationCredits(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, ints, 2)
	assert.Equal(t, "12.5", ints[0].Value.String())

	require.NoError(t, s.SaveEducationCredit(ctx, records.EducationCredit{
		ID: "edu-1", EmployeeID: "emp-1", Name: "Magister Pendidikan", Level: "S2",
		GraduationYear: 2019, Method: credit.EducationGradeAnchored,
		NextRankValue: decimal.RequireFromString("100"), Value: decimal.RequireFromString("25"),
		CreatedAt: t0, UpdatedAt: t0,
	}))
	edu, err := s.ListEducationCredits(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, edu, 1)
	assert.Equal(t, 2019, edu[0].GraduationYear)
	assert.Equal(t, credit.EducationGradeAnchored, edu[0].Method)
	assert.Equal(t, "25", edu[0].Value.String())

	none, err := s.ListEducationCredits(ctx, "emp-2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testDeleteDoesNotCascade(t *testing.T, s records.Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveEmployee(ctx, records.Employee{ID: "emp-1", Name: "Budi", NIP: "1", Gender: records.GenderMale}))
	require.NoError(t, s.SaveAssessment(ctx, records.Assessment{
		ID: "pak-1", EmployeeID: "emp-1",
		Percentage: decimal.Zero, Coefficient: decimal.Zero, Credit: decimal.Zero,
	}))

	require.NoError(t, s.DeleteEmployee(ctx, "emp-1"))

	_, err := s.GetAssessment(ctx, "pak-1")
	assert.NoError(t, err)
	list, err := s.ListAssessments(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
