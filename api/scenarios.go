/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for demos. Each scenario creates an institution, employees,
	assessments and, where relevant, integration and education credits.

AVAILABLE SCENARIOS:

	guru-ahli-pertama: First-level teacher with two yearly assessments,
	                   an integration credit and an education credit
	kenaikan-pangkat:  III/c employee whose akumulasi reaches the next rank
	skema-lama:        Assessments stored with legacy jabatan keys

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create the institution and its assessor
 3. Create employees
 4. Add assessments through records.Service, so derived values are fresh

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "kenaikan-pangkat"}

USAGE VIA CLI:

	angkakredit seed kenaikan-pangkat

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx, svc)
 3. Add it to the 'loaders' map

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase handler
  - cmd/angkakredit: seed command
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/angka-kredit/credit"
	"github.com/warp/angka-kredit/records"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "guru-ahli-pertama",
		Name:        "Guru Ahli Pertama",
		Description: "Two yearly assessments with integration and education credit",
		Category:    "konversi",
	},
	{
		ID:          "kenaikan-pangkat",
		Name:        "Kenaikan Pangkat",
		Description: "Four years of Sangat Baik at Ahli Muda; the akumulasi passes the III/d minimal",
		Category:    "penetapan",
	},
	{
		ID:          "skema-lama",
		Name:        "Skema Lama",
		Description: "Half-year assessments recorded with legacy jabatan keys",
		Category:    "akumulasi",
	},
}

var loaders = map[string]func(context.Context, *records.Service) error{
	"guru-ahli-pertama": loadGuruAhliPertamaScenario,
	"kenaikan-pangkat":  loadKenaikanPangkatScenario,
	"skema-lama":        loadSkemaLamaScenario,
}

// ErrUnknownScenario is returned for a scenario ID not in Scenarios.
var ErrUnknownScenario = errors.New("unknown scenario")

// Scenarios returns the available scenarios.
func Scenarios() []ScenarioDTO {
	out := make([]ScenarioDTO, len(scenarios))
	copy(out, scenarios)
	return out
}

// SeedScenario loads scenario id through svc. It does not clear existing
// data; callers reset the store first.
func SeedScenario(ctx context.Context, svc *records.Service, id string) error {
	load, ok := loaders[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownScenario, id)
	}
	return load(ctx, svc)
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.scenario()
	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          current,
		Name:        current,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, ok := loaders[req.ScenarioID]; !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.reset(ctx); err != nil {
		h.fail(w, "Failed to reset database", err)
		return
	}
	if err := SeedScenario(ctx, h.Service, req.ScenarioID); err != nil {
		h.fail(w, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.setScenario(req.ScenarioID)
	h.log.WithFields(logrus.Fields{"scenario": req.ScenarioID}).Info("loaded scenario")
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// seed creates the common institution and its assessor.
func seed(ctx context.Context, svc *records.Service) (*records.Institution, *records.Employee, error) {
	assessor, err := svc.CreateEmployee(ctx, records.Employee{
		Name:     "Dr. Hendra Wijaya, M.Pd.",
		NIP:      "196805121993031004",
		Gender:   records.GenderMale,
		Rank:     "Pembina Tk. I",
		Grade:    "IV/b",
		Position: "Kepala Dinas",
		Unit:     "Dinas Pendidikan",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("assessor: %w", err)
	}
	inst, err := svc.CreateInstitution(ctx, records.Institution{
		Name:          "Dinas Pendidikan Kabupaten Sleman",
		AssessorName:  assessor.Name,
		AssessorNIP:   assessor.NIP,
		AssessorRank:  assessor.Rank,
		AssessorGrade: assessor.Grade,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("institution: %w", err)
	}
	return inst, assessor, nil
}

type yearly struct {
	start, end string
	predicate  credit.Predicate
	determined string
}

func addAssessments(ctx context.Context, svc *records.Service, emp *records.Employee, inst *records.Institution, assessor *records.Employee, jobLevel string, list []yearly) error {
	for _, y := range list {
		_, err := svc.CreateAssessment(ctx, records.Assessment{
			EmployeeID:    emp.ID,
			InstitutionID: inst.ID,
			AssessorID:    assessor.ID,
			JobLevel:      jobLevel,
			Predicate:     y.predicate,
			PeriodStart:   y.start,
			PeriodEnd:     y.end,
			DeterminedOn:  y.determined,
			DeterminedAt:  "Sleman",
		})
		if err != nil {
			return fmt.Errorf("assessment %s: %w", y.start, err)
		}
	}
	return nil
}

// loadGuruAhliPertamaScenario: III/a teacher, 12.5 + 18.75 from assessments,
// 10 integration, 25 education (25% of the III/b jenjang minimal).
func loadGuruAhliPertamaScenario(ctx context.Context, svc *records.Service) error {
	inst, assessor, err := seed(ctx, svc)
	if err != nil {
		return err
	}
	emp, err := svc.CreateEmployee(ctx, records.Employee{
		Name:        "Siti Rahmawati, S.Pd.",
		NIP:         "198903152019032007",
		CardSerial:  "C 1234567",
		BirthPlace:  "Yogyakarta",
		BirthDate:   "1989-03-15",
		Gender:      records.GenderFemale,
		Rank:        "Penata Muda",
		Grade:       "III/a",
		RankTMT:     "2019-03-01",
		Position:    "Guru Ahli Pertama",
		PositionTMT: "2019-03-01",
		Unit:        "SMP Negeri 1 Depok",
	})
	if err != nil {
		return err
	}
	err = addAssessments(ctx, svc, emp, inst, assessor, "KEAHLIAN - AHLI PERTAMA", []yearly{
		{"2023-01-01", "2023-12-31", credit.PredicateBaik, "2024-01-10"},
		{"2024-01-01", "2024-12-31", credit.PredicateSangatBaik, "2025-01-10"},
	})
	if err != nil {
		return err
	}
	if _, err := svc.CreateIntegrationCredit(ctx, records.IntegrationCredit{
		EmployeeID: emp.ID,
		Value:      decimal.NewFromInt(10),
	}); err != nil {
		return err
	}
	_, err = svc.CreateEducationCredit(ctx, records.EducationCredit{
		EmployeeID:     emp.ID,
		Name:           "S1 Pendidikan Matematika",
		Level:          string(credit.EducationD4S1),
		GraduationYear: 2012,
	})
	return err
}

// loadKenaikanPangkatScenario: III/c at Ahli Muda, four years of Sangat Baik
// (37.5 each) against a rank minimal of 100.
func loadKenaikanPangkatScenario(ctx context.Context, svc *records.Service) error {
	inst, assessor, err := seed(ctx, svc)
	if err != nil {
		return err
	}
	emp, err := svc.CreateEmployee(ctx, records.Employee{
		Name:        "Bambang Suryanto, M.Pd.",
		NIP:         "198107222005011003",
		BirthPlace:  "Klaten",
		BirthDate:   "1981-07-22",
		Gender:      records.GenderMale,
		Rank:        "Penata",
		Grade:       "III/c",
		RankTMT:     "2020-10-01",
		Position:    "Guru Ahli Muda",
		PositionTMT: "2020-10-01",
		Unit:        "SMA Negeri 2 Sleman",
	})
	if err != nil {
		return err
	}
	return addAssessments(ctx, svc, emp, inst, assessor, "KEAHLIAN - AHLI MUDA", []yearly{
		{"2021-01-01", "2021-12-31", credit.PredicateSangatBaik, "2022-01-14"},
		{"2022-01-01", "2022-12-31", credit.PredicateSangatBaik, "2023-01-13"},
		{"2023-01-01", "2023-12-31", credit.PredicateSangatBaik, "2024-01-12"},
		{"2024-01-01", "2024-12-31", credit.PredicateSangatBaik, "2025-01-10"},
	})
}

// loadSkemaLamaScenario: assessments keyed by legacy jabatan names, which
// resolve through the legacy-to-current translation.
func loadSkemaLamaScenario(ctx context.Context, svc *records.Service) error {
	inst, assessor, err := seed(ctx, svc)
	if err != nil {
		return err
	}
	emp, err := svc.CreateEmployee(ctx, records.Employee{
		Name:     "Agus Priyanto",
		NIP:      "197904102006041012",
		Gender:   records.GenderMale,
		Rank:     "Pengatur Tk. I",
		Grade:    "II/d",
		Position: "Pengelola Keuangan",
		Unit:     "Sekretariat Dinas",
	})
	if err != nil {
		return err
	}
	return addAssessments(ctx, svc, emp, inst, assessor, "pengatur_tingkat_i", []yearly{
		{"2022-07-01", "2022-12-31", credit.PredicateBaik, "2023-01-16"},
		{"2023-01-01", "2023-06-30", credit.PredicateButuhPerbaikan, "2023-07-14"},
		{"2023-07-01", "2023-12-31", credit.PredicateBaik, "2024-01-15"},
	})
}
