package records

import "context"

// =============================================================================
// STORE - Persistence interfaces
// =============================================================================
//
// Get methods return an error wrapping ErrNotFound when the ID is unknown.
// Save methods upsert by ID; the caller assigns IDs and timestamps. Delete
// of an unknown ID returns ErrNotFound.

type EmployeeStore interface {
	SaveEmployee(ctx context.Context, e Employee) error
	GetEmployee(ctx context.Context, id string) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

type InstitutionStore interface {
	SaveInstitution(ctx context.Context, i Institution) error
	GetInstitution(ctx context.Context, id string) (*Institution, error)
	ListInstitutions(ctx context.Context) ([]Institution, error)
	DeleteInstitution(ctx context.Context, id string) error
}

// AssessmentStore lists assessments ordered by period end, then creation.
// An empty employeeID lists every assessment.
type AssessmentStore interface {
	SaveAssessment(ctx context.Context, a Assessment) error
	GetAssessment(ctx context.Context, id string) (*Assessment, error)
	ListAssessments(ctx context.Context, employeeID string) ([]Assessment, error)
	DeleteAssessment(ctx context.Context, id string) error
}

// IntegrationStore lists integration credits in creation order.
type IntegrationStore interface {
	SaveIntegrationCredit(ctx context.Context, c IntegrationCredit) error
	GetIntegrationCredit(ctx context.Context, id string) (*IntegrationCredit, error)
	ListIntegrationCredits(ctx context.Context, employeeID string) ([]IntegrationCredit, error)
	DeleteIntegrationCredit(ctx context.Context, id string) error
}

// EducationStore lists education credits in creation order.
type EducationStore interface {
	SaveEducationCredit(ctx context.Context, c EducationCredit) error
	GetEducationCredit(ctx context.Context, id string) (*EducationCredit, error)
	ListEducationCredits(ctx context.Context, employeeID string) ([]EducationCredit, error)
	DeleteEducationCredit(ctx context.Context, id string) error
}

// Store is everything Service needs.
type Store interface {
	EmployeeStore
	InstitutionStore
	AssessmentStore
	IntegrationStore
	EducationStore
}
