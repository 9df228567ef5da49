package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/angka-kredit/records"
	"github.com/warp/angka-kredit/records/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) records.Store { return newTestStore(t) })
}

func TestNew_AppliesMigrations(t *testing.T) {
	store := newTestStore(t)

	version, err := store.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestNew_ReopenKeepsData(t *testing.T) {
	// GIVEN: a file database with one employee
	path := filepath.Join(t.TempDir(), "angka_kredit.db")
	store, err := New(path)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.SaveEmployee(ctx, records.Employee{ID: "emp-1", Name: "Budi", NIP: "1", Gender: records.GenderMale}))
	require.NoError(t, store.Close())

	// WHEN: it is opened again (migrations already applied)
	store, err = New(path)
	require.NoError(t, err)
	defer store.Close()

	// THEN: the employee is still there
	e, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Budi", e.Name)
}

func TestReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveEmployee(ctx, records.Employee{ID: "emp-1", Name: "Budi", NIP: "1", Gender: records.GenderMale}))
	require.NoError(t, store.SaveInstitution(ctx, records.Institution{ID: "inst-1", Name: "Dinas"}))

	require.NoError(t, store.Reset(ctx))

	employees, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, employees)
	institutions, err := store.ListInstitutions(ctx)
	require.NoError(t, err)
	assert.Empty(t, institutions)
}

func TestService_OnSQLite(t *testing.T) {
	// The service derives, the store persists: values survive the round trip exactly.
	store := newTestStore(t)
	svc := records.NewService(store, nil)
	ctx := context.Background()

	e, err := svc.CreateEmployee(ctx, records.Employee{Name: "Budi", NIP: "1", Grade: "III/a"})
	require.NoError(t, err)
	a, err := svc.CreateAssessment(ctx, records.Assessment{
		EmployeeID: e.ID, JobLevel: "KEAHLIAN - AHLI PERTAMA", Predicate: "sangat_baik",
		PeriodStart: "2024-06-01", PeriodEnd: "2024-12-31",
	})
	require.NoError(t, err)

	got, err := store.GetAssessment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.9375", got.Credit.String())

	_, err = svc.CreateEmployee(ctx, records.Employee{Name: "Budi Lain", NIP: "1"})
	require.Error(t, err)
	assert.True(t, records.IsClientError(err))
}
