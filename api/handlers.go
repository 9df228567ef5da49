/*
handlers.go - HTTP API handlers for the angka kredit application

PURPOSE:
  Exposes the records service, the calculation engine and the report
  builders via a REST API. Handles HTTP request/response, JSON
  serialization and validation, and delegates everything else.

ENDPOINTS:
  Records (each with GET list, POST, GET/PUT/DELETE by id):
    /api/pegawai                   Employees
    /api/instansi                  Institutions
    /api/penilaian-angka-kredit    Assessments (?pegawaiId= filter)
    /api/angka-integrasi           Integration credits (?pegawaiId= filter)
    /api/ak-pendidikan             Education credits (?pegawaiId= filter)

  Calculation (calc.go):
    POST   /api/calc/credit        Credit breakdown of a hypothetical assessment
    POST   /api/calc/target        Promotion target for golongan + total
    POST   /api/calc/education     Education credit for golongan or jenjang
    GET    /api/calc/months        Month count of a period

  Reports (reports.go):
    GET    /api/reports/{kind}/{id}   Document as JSON or PDF
    POST   /api/akumulasi/render      Legacy akumulasi template
    GET    /api/pegawai/template.xlsx, /api/pegawai/export.xlsx
    POST   /api/pegawai/import

  Admin:
    GET    /api/dashboard          Record counts and total credit
    POST   /api/recalculate        Re-derive stored values
    GET    /api/health             Liveness and schema version

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Service: records.Service (derivation, validation, storage)
  - Reports: reports.Builder over the same service
  - Template: legacy akumulasi template
  - log: logrus logger for server-side failures

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Duplicate NIP
  - 500: Internal errors (logged)

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo data loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/warp/angka-kredit/records"
	"github.com/warp/angka-kredit/render"
	"github.com/warp/angka-kredit/reports"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// HealthChecker is implemented by stores that can report their state.
type HealthChecker interface {
	Ping(ctx context.Context) error
	SchemaVersion() (int64, error)
}

// Resetter is implemented by stores that can drop all data.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Options configures a Handler. Zero values select defaults.
type Options struct {
	Logger     *logrus.Logger
	Template   *render.Template
	ReportCity string
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service  *records.Service
	Reports  *reports.Builder
	Template *render.Template

	log      *logrus.Logger
	validate *validator.Validate
	pdf      render.PDFOptions

	// Track currently loaded scenario
	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler over svc.
func NewHandler(svc *records.Service, opts Options) *Handler {
	h := &Handler{
		Service:  svc,
		Reports:  reports.NewBuilder(svc),
		Template: opts.Template,
		log:      opts.Logger,
		validate: newValidator(),
		pdf:      render.PDFOptions{City: opts.ReportCity},
	}
	if h.Template == nil {
		h.Template = render.DefaultAkumulasiTemplate()
	}
	if h.log == nil {
		h.log = logrus.New()
	}
	return h
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees ordered by name.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListEmployees(r.Context())
	if err != nil {
		h.fail(w, "Failed to list employees", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := h.Service.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}
	e, err := h.Service.CreateEmployee(r.Context(), req.record())
	if err != nil {
		h.fail(w, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// UpdateEmployee replaces an employee.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}
	e, err := h.Service.UpdateEmployee(r.Context(), chi.URLParam(r, "id"), req.record())
	if err != nil {
		h.fail(w, "Failed to update employee", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// DeleteEmployee deletes an employee. Their other records are kept.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteEmployee(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "Failed to delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// INSTITUTION HANDLERS
// =============================================================================

func (h *Handler) ListInstitutions(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListInstitutions(r.Context())
	if err != nil {
		h.fail(w, "Failed to list institutions", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (h *Handler) GetInstitution(w http.ResponseWriter, r *http.Request) {
	i, err := h.Service.GetInstitution(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "Failed to get institution", err)
		return
	}
	writeJSON(w, http.StatusOK, i)
}

func (h *Handler) CreateInstitution(w http.ResponseWriter, r *http.Request) {
	var req InstitutionRequest
	if !h.decode(w, r, &req) {
		return
	}
	i, err := h.Service.CreateInstitution(r.Context(), req.record())
	if err != nil {
		h.fail(w, "Failed to create institution", err)
		return
	}
	writeJSON(w, http.StatusCreated, i)
}

func (h *Handler) UpdateInstitution(w http.ResponseWriter, r *http.Request) {
	var req InstitutionRequest
	if !h.decode(w, r, &req) {
		return
	}
	i, err := h.Service.UpdateInstitution(r.Context(), chi.URLParam(r, "id"), req.record())
	if err != nil {
		h.fail(w, "Failed to update institution", err)
		return
	}
	writeJSON(w, http.StatusOK, i)
}

func (h *Handler) DeleteInstitution(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteInstitution(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "Failed to delete institution", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ASSESSMENT HANDLERS
// =============================================================================

// ListAssessments returns assessments ordered by period end, optionally
// for one employee (?pegawaiId=).
func (h *Handler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListAssessments(r.Context(), r.URL.Query().Get("pegawaiId"))
	if err != nil {
		h.fail(w, "Failed to list assessments", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (h *Handler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := h.Service.GetAssessment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "Failed to get assessment", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// CreateAssessment stores an assessment with derived prosentase,
// koefisien and angka kredit.
func (h *Handler) CreateAssessment(w http.ResponseWriter, r *http.Request) {
	var req AssessmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	a, err := h.Service.CreateAssessment(r.Context(), req.record())
	if err != nil {
		h.fail(w, "Failed to create assessment", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// UpdateAssessment replaces an assessment and re-derives its values.
func (h *Handler) UpdateAssessment(w http.ResponseWriter, r *http.Request) {
	var req AssessmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	a, err := h.Service.UpdateAssessment(r.Context(), chi.URLParam(r, "id"), req.record())
	if err != nil {
		h.fail(w, "Failed to update assessment", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) DeleteAssessment(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteAssessment(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "Failed to delete assessment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// INTEGRATION CREDIT HANDLERS
// =============================================================================

func (h *Handler) ListIntegrationCredits(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListIntegrationCredits(r.Context(), r.URL.Query().Get("pegawaiId"))
	if err != nil {
		h.fail(w, "Failed to list integration credits", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (h *Handler) GetIntegrationCredit(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.GetIntegrationCredit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "Failed to get integration credit", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) CreateIntegrationCredit(w http.ResponseWriter, r *http.Request) {
	var req IntegrationRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.Service.CreateIntegrationCredit(r.Context(), req.record())
	if err != nil {
		h.fail(w, "Failed to create integration credit", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateIntegrationCredit(w http.ResponseWriter, r *http.Request) {
	var req IntegrationRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.Service.UpdateIntegrationCredit(r.Context(), chi.URLParam(r, "id"), req.record())
	if err != nil {
		h.fail(w, "Failed to update integration credit", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteIntegrationCredit(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteIntegrationCredit(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "Failed to delete integration credit", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// EDUCATION CREDIT HANDLERS
// =============================================================================

func (h *Handler) ListEducationCredits(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListEducationCredits(r.Context(), r.URL.Query().Get("pegawaiId"))
	if err != nil {
		h.fail(w, "Failed to list education credits", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (h *Handler) GetEducationCredit(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.GetEducationCredit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "Failed to get education credit", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateEducationCredit stores an education credit derived from the
// employee's golongan.
func (h *Handler) CreateEducationCredit(w http.ResponseWriter, r *http.Request) {
	var req EducationRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.Service.CreateEducationCredit(r.Context(), req.record())
	if err != nil {
		h.fail(w, "Failed to create education credit", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateEducationCredit(w http.ResponseWriter, r *http.Request) {
	var req EducationRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.Service.UpdateEducationCredit(r.Context(), chi.URLParam(r, "id"), req.record())
	if err != nil {
		h.fail(w, "Failed to update education credit", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteEducationCredit(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteEducationCredit(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "Failed to delete education credit", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// Dashboard returns record counts and the total assessment credit.
// GET /api/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	st, err := h.Service.Stats(r.Context())
	if err != nil {
		h.fail(w, "Failed to compute statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Recalculate re-derives every stored assessment and education credit.
// POST /api/recalculate
func (h *Handler) Recalculate(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.Recalculate(r.Context())
	if err != nil {
		h.fail(w, "Failed to recalculate", err)
		return
	}
	h.log.WithFields(logrus.Fields{
		"assessments": res.Assessments,
		"education":   res.Education,
	}).Info("recalculated stored credits")
	writeJSON(w, http.StatusOK, res)
}

// Health reports liveness. When the store can report its schema version,
// that is included.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if hc, ok := h.Service.Store().(HealthChecker); ok {
		if err := hc.Ping(r.Context()); err != nil {
			h.log.WithError(err).Error("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
			return
		}
		if v, err := hc.SchemaVersion(); err == nil {
			resp.SchemaVersion = v
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ResetDatabase clears all data.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		h.fail(w, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

var errResetUnsupported = errors.New("store does not support reset")

func (h *Handler) reset(ctx context.Context) error {
	rs, ok := h.Service.Store().(Resetter)
	if !ok {
		return errResetUnsupported
	}
	if err := rs.Reset(ctx); err != nil {
		return err
	}
	h.setScenario("")
	return nil
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
}

func (h *Handler) scenario() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.currentScenario
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// decode reads and validates a JSON body into dst. On failure it writes
// the 400 response and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		if details := validationDetails(err); details != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: details})
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// fail maps a service error to a status code. Server-side failures are
// logged; client errors are not.
func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	switch {
	case records.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, records.ErrDuplicate):
		writeError(w, http.StatusConflict, message, err)
	case records.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, reports.ErrNoAssessments):
		writeError(w, http.StatusNotFound, message, err)
	default:
		h.log.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

// nonNil keeps empty lists as [] instead of null.
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
