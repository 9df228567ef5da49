/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logging:    One logrus entry per request, tagged with the request ID
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the admin frontend

ROUTE GROUPS:
  /api/pegawai/*                  Employees, spreadsheet import/export
  /api/instansi/*                 Institutions
  /api/penilaian-angka-kredit/*   Assessments
  /api/angka-integrasi/*          Integration credits
  /api/ak-pendidikan/*            Education credits
  /api/calc/*                     Stateless calculations
  /api/reports/*                  Konversi, akumulasi, penetapan documents
  /api/scenarios/*                Demo scenarios
  /                               Endpoint index

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/angkakredit: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// NewRouter creates a new router with all routes configured. An empty
// corsOrigins allows any origin.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/dashboard", h.Dashboard)
		r.Post("/recalculate", h.Recalculate)

		// Employee routes; static paths are matched before {id}
		r.Route("/pegawai", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/template.xlsx", h.EmployeeTemplate)
			r.Get("/export.xlsx", h.ExportEmployees)
			r.Post("/import", h.ImportEmployees)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
		})

		r.Route("/instansi", func(r chi.Router) {
			r.Get("/", h.ListInstitutions)
			r.Post("/", h.CreateInstitution)
			r.Get("/{id}", h.GetInstitution)
			r.Put("/{id}", h.UpdateInstitution)
			r.Delete("/{id}", h.DeleteInstitution)
		})

		r.Route("/penilaian-angka-kredit", func(r chi.Router) {
			r.Get("/", h.ListAssessments)
			r.Post("/", h.CreateAssessment)
			r.Get("/{id}", h.GetAssessment)
			r.Put("/{id}", h.UpdateAssessment)
			r.Delete("/{id}", h.DeleteAssessment)
		})

		r.Route("/angka-integrasi", func(r chi.Router) {
			r.Get("/", h.ListIntegrationCredits)
			r.Post("/", h.CreateIntegrationCredit)
			r.Get("/{id}", h.GetIntegrationCredit)
			r.Put("/{id}", h.UpdateIntegrationCredit)
			r.Delete("/{id}", h.DeleteIntegrationCredit)
		})

		r.Route("/ak-pendidikan", func(r chi.Router) {
			r.Get("/", h.ListEducationCredits)
			r.Post("/", h.CreateEducationCredit)
			r.Get("/{id}", h.GetEducationCredit)
			r.Put("/{id}", h.UpdateEducationCredit)
			r.Delete("/{id}", h.DeleteEducationCredit)
		})

		r.Route("/calc", func(r chi.Router) {
			r.Post("/credit", h.CalcCredit)
			r.Post("/target", h.CalcTarget)
			r.Post("/education", h.CalcEducation)
			r.Get("/months", h.CalcMonths)
		})

		r.Get("/reports/{kind}/{id}", h.GetReport)
		r.Post("/akumulasi/render", h.RenderAkumulasi)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(indexPage))
	})

	return r
}

// requestLogger logs method, path, status and duration of every request.
func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.WithFields(logrus.Fields{
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     ww.Status(),
					"bytes":      ww.BytesWritten(),
					"duration":   time.Since(start).String(),
					"request_id": middleware.GetReqID(r.Context()),
				}).Info("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>Angka Kredit</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Angka Kredit API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/pegawai">/api/pegawai</a> - Pegawai</li>
<li><a href="/api/instansi">/api/instansi</a> - Instansi</li>
<li><a href="/api/penilaian-angka-kredit">/api/penilaian-angka-kredit</a> - Penilaian</li>
<li><a href="/api/angka-integrasi">/api/angka-integrasi</a> - Angka integrasi</li>
<li><a href="/api/ak-pendidikan">/api/ak-pendidikan</a> - AK pendidikan</li>
<li><a href="/api/dashboard">/api/dashboard</a> - Dashboard</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo scenarios</li>
<li><a href="/api/pegawai/template.xlsx">/api/pegawai/template.xlsx</a> - Import template</li>
</ul>
</body>
</html>`
