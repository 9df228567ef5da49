// Package memory provides an in-memory records.Store (for testing/dev).
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/warp/angka-kredit/credit"
	"github.com/warp/angka-kredit/records"
)

// =============================================================================
// MEMORY STORE - In-memory implementation
// =============================================================================

// Store keeps every record in maps guarded by one RWMutex. Insertion order
// is tracked so that lists come back in creation order, like the SQL store.
type Store struct {
	mu           sync.RWMutex
	seq          int64
	order        map[string]int64
	employees    map[string]records.Employee
	institutions map[string]records.Institution
	assessments  map[string]records.Assessment
	integration  map[string]records.IntegrationCredit
	education    map[string]records.EducationCredit
}

var _ records.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		order:        make(map[string]int64),
		employees:    make(map[string]records.Employee),
		institutions: make(map[string]records.Institution),
		assessments:  make(map[string]records.Assessment),
		integration:  make(map[string]records.IntegrationCredit),
		education:    make(map[string]records.EducationCredit),
	}
}

// touch records first-insert order for id. Caller holds the write lock.
func (m *Store) touch(id string) {
	if _, ok := m.order[id]; !ok {
		m.seq++
		m.order[id] = m.seq
	}
}

func (m *Store) byOrder(a, b string) int { return cmp.Compare(m.order[a], m.order[b]) }

// Reset removes every record.
func (m *Store) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq = 0
	clear(m.order)
	clear(m.employees)
	clear(m.institutions)
	clear(m.assessments)
	clear(m.integration)
	clear(m.education)
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Store) SaveEmployee(_ context.Context, e records.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, other := range m.employees {
		if id != e.ID && other.NIP == e.NIP {
			return fmt.Errorf("nip %s: %w", e.NIP, records.ErrDuplicate)
		}
	}
	m.touch(e.ID)
	m.employees[e.ID] = e
	return nil
}

func (m *Store) GetEmployee(_ context.Context, id string) (*records.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.employees[id]
	if !ok {
		return nil, records.NotFound("employee", id)
	}
	return &e, nil
}

// ListEmployees orders by name.
func (m *Store) ListEmployees(_ context.Context) ([]records.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]records.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b records.Employee) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return m.byOrder(a.ID, b.ID)
	})
	return out, nil
}

func (m *Store) DeleteEmployee(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[id]; !ok {
		return records.NotFound("employee", id)
	}
	delete(m.employees, id)
	return nil
}

// =============================================================================
// INSTITUTIONS
// =============================================================================

func (m *Store) SaveInstitution(_ context.Context, i records.Institution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(i.ID)
	m.institutions[i.ID] = i
	return nil
}

func (m *Store) GetInstitution(_ context.Context, id string) (*records.Institution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.institutions[id]
	if !ok {
		return nil, records.NotFound("institution", id)
	}
	return &i, nil
}

func (m *Store) ListInstitutions(_ context.Context) ([]records.Institution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]records.Institution, 0, len(m.institutions))
	for _, i := range m.institutions {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b records.Institution) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return m.byOrder(a.ID, b.ID)
	})
	return out, nil
}

func (m *Store) DeleteInstitution(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.institutions[id]; !ok {
		return records.NotFound("institution", id)
	}
	delete(m.institutions, id)
	return nil
}

// =============================================================================
// ASSESSMENTS
// =============================================================================

func (m *Store) SaveAssessment(_ context.Context, a records.Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(a.ID)
	m.assessments[a.ID] = a
	return nil
}

func (m *Store) GetAssessment(_ context.Context, id string) (*records.Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assessments[id]
	if !ok {
		return nil, records.NotFound("assessment", id)
	}
	return &a, nil
}

// ListAssessments orders by period end date, then insertion. Unparseable
// end dates sort first.
func (m *Store) ListAssessments(_ context.Context, employeeID string) ([]records.Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []records.Assessment
	for _, a := range m.assessments {
		if employeeID == "" || a.EmployeeID == employeeID {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b records.Assessment) int {
		ta, _ := credit.ParseDate(a.PeriodEnd)
		tb, _ := credit.ParseDate(b.PeriodEnd)
		if c := ta.Compare(tb); c != 0 {
			return c
		}
		return m.byOrder(a.ID, b.ID)
	})
	return out, nil
}

func (m *Store) DeleteAssessment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assessments[id]; !ok {
		return records.NotFound("assessment", id)
	}
	delete(m.assessments, id)
	return nil
}

// =============================================================================
// INTEGRATION CREDITS
// =============================================================================

func (m *Store) SaveIntegrationCredit(_ context.Context, c records.IntegrationCredit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(c.ID)
	m.integration[c.ID] = c
	return nil
}

func (m *Store) GetIntegrationCredit(_ context.Context, id string) (*records.IntegrationCredit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.integration[id]
	if !ok {
		return nil, records.NotFound("integration credit", id)
	}
	return &c, nil
}

func (m *Store) ListIntegrationCredits(_ context.Context, employeeID string) ([]records.IntegrationCredit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []records.IntegrationCredit
	for _, c := range m.integration {
		if employeeID == "" || c.EmployeeID == employeeID {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b records.IntegrationCredit) int { return m.byOrder(a.ID, b.ID) })
	return out, nil
}

func (m *Store) DeleteIntegrationCredit(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.integration[id]; !ok {
		return records.NotFound("integration credit", id)
	}
	delete(m.integration, id)
	return nil
}

// =============================================================================
// EDUCATION CREDITS
// =============================================================================

func (m *Store) SaveEducationCredit(_ context.Context, c records.EducationCredit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(c.ID)
	m.education[c.ID] = c
	return nil
}

func (m *Store) GetEducationCredit(_ context.Context, id string) (*records.EducationCredit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.education[id]
	if !ok {
		return nil, records.NotFound("education credit", id)
	}
	return &c, nil
}

func (m *Store) ListEducationCredits(_ context.Context, employeeID string) ([]records.EducationCredit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []records.EducationCredit
	for _, c := range m.education {
		if employeeID == "" || c.EmployeeID == employeeID {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b records.EducationCredit) int { return m.byOrder(a.ID, b.ID) })
	return out, nil
}

func (m *Store) DeleteEducationCredit(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.education[id]; !ok {
		return records.NotFound("education credit", id)
	}
	delete(m.education, id)
	return nil
}
