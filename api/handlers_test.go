/*
handlers_test.go - HTTP tests for API handlers

Tests for:
- Record CRUD and error status mapping
- Request validation details
- Calculation endpoints
- Report, legacy template and spreadsheet endpoints
*/
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/angka-kredit/records"
	"github.com/warp/angka-kredit/records/memory"
	"github.com/warp/angka-kredit/reports"
	"github.com/warp/angka-kredit/spreadsheet"
)

// =============================================================================
// HELPERS
// =============================================================================

type testServer struct {
	t       *testing.T
	handler *Handler
	router  http.Handler
}

func newTestServer(t *testing.T, store records.Store) *testServer {
	t.Helper()
	if store == nil {
		store = memory.New()
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	h := NewHandler(records.NewService(store, nil), Options{Logger: log, ReportCity: "Sleman"})
	return &testServer{t: t, handler: h, router: NewRouter(h, nil)}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}

func (s *testServer) createEmployee(name, nip, grade string) records.Employee {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/pegawai", map[string]string{
		"nama": name, "nip": nip, "golongan": grade, "pangkat": "Penata Muda",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[records.Employee](s.t, rec)
}

func (s *testServer) createAssessment(employeeID, predicate, start, end string) records.Assessment {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/penilaian-angka-kredit", map[string]string{
		"pegawaiId":             employeeID,
		"jenjang":               "KEAHLIAN - AHLI MUDA",
		"predikat":              predicate,
		"tanggalAwalPenilaian":  start,
		"tanggalAkhirPenilaian": end,
		"tanggalDitetapkan":     "2025-01-15",
		"tempatDitetapkan":      "Sleman",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[records.Assessment](s.t, rec)
}

// =============================================================================
// EMPLOYEE TESTS
// =============================================================================

func TestEmployee_CRUD(t *testing.T) {
	// GIVEN: An empty store
	s := newTestServer(t, nil)

	// WHEN: Creating an employee
	emp := s.createEmployee("  Budi Santoso ", "198501012010011001", "III/a")

	// THEN: It gets an ID and trimmed fields
	assert.NotEmpty(t, emp.ID)
	assert.Equal(t, "Budi Santoso", emp.Name)
	assert.Equal(t, records.GenderMale, emp.Gender)

	rec := s.do(http.MethodGet, "/api/pegawai/"+emp.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, emp.NIP, decodeBody[records.Employee](t, rec).NIP)

	// WHEN: Updating it
	rec = s.do(http.MethodPut, "/api/pegawai/"+emp.ID, map[string]string{
		"nama": "Budi Santoso, S.Pd.", "nip": emp.NIP, "golongan": "III/b",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[records.Employee](t, rec)
	assert.Equal(t, "III/b", updated.Grade)
	assert.Equal(t, emp.CreatedAt.Unix(), updated.CreatedAt.Unix())

	rec = s.do(http.MethodGet, "/api/pegawai", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]records.Employee](t, rec), 1)

	// WHEN: Deleting it
	rec = s.do(http.MethodDelete, "/api/pegawai/"+emp.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// THEN: It is gone
	rec = s.do(http.MethodGet, "/api/pegawai/"+emp.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmployee_EmptyListIsArray(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/api/pegawai", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestEmployee_ValidationDetails(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/api/pegawai", map[string]string{
		"nama":          "Budi",
		"tanggal_lahir": "kemarin",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}](t, rec)
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Equal(t, "required", resp.Details["nip"])
	assert.Equal(t, "tanggal", resp.Details["tanggal_lahir"])
}

func TestEmployee_DuplicateNIPConflict(t *testing.T) {
	s := newTestServer(t, nil)
	s.createEmployee("Budi", "198501012010011001", "III/a")

	rec := s.do(http.MethodPost, "/api/pegawai", map[string]string{
		"nama": "Budi Lain", "nip": "198501012010011001",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestEmployee_MalformedBody(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/pegawai", strings.NewReader("{nama"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request body")
}

// =============================================================================
// ASSESSMENT TESTS
// =============================================================================

func TestAssessment_DerivedValues(t *testing.T) {
	// GIVEN: An employee
	s := newTestServer(t, nil)
	emp := s.createEmployee("Budi", "198501012010011001", "III/a")

	// WHEN: Recording a full year of "Baik" at Ahli Muda
	a := s.createAssessment(emp.ID, "Baik", "2024-01-01", "2024-12-31")

	// THEN: 12/12 * 25 * 100% = 25
	assert.Equal(t, "baik", string(a.Predicate))
	assertDecimal(t, "100", a.Percentage)
	assertDecimal(t, "25", a.Coefficient)
	assertDecimal(t, "25", a.Credit)

	rec := s.do(http.MethodGet, "/api/penilaian-angka-kredit?pegawaiId="+emp.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]records.Assessment](t, rec), 1)

	rec = s.do(http.MethodGet, "/api/penilaian-angka-kredit?pegawaiId=other", nil)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestAssessment_UpdateRederives(t *testing.T) {
	s := newTestServer(t, nil)
	emp := s.createEmployee("Budi", "198501012010011001", "III/a")
	a := s.createAssessment(emp.ID, "baik", "2024-01-01", "2024-12-31")

	rec := s.do(http.MethodPut, "/api/penilaian-angka-kredit/"+a.ID, map[string]string{
		"pegawaiId":             emp.ID,
		"jenjang":               "KEAHLIAN - AHLI MUDA",
		"predikat":              "Sangat Baik",
		"tanggalAwalPenilaian":  "2024-01-01",
		"tanggalAkhirPenilaian": "2024-06-30",
		"angkaKredit":           "999",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[records.Assessment](t, rec)
	// 6/12 * 25 * 150% = 18.75
	assertDecimal(t, "18.75", updated.Credit)
}

func TestAssessment_InvalidPredicate(t *testing.T) {
	s := newTestServer(t, nil)
	emp := s.createEmployee("Budi", "198501012010011001", "III/a")

	rec := s.do(http.MethodPost, "/api/penilaian-angka-kredit", map[string]string{
		"pegawaiId":             emp.ID,
		"jenjang":               "KEAHLIAN - AHLI MUDA",
		"predikat":              "luar biasa",
		"tanggalAwalPenilaian":  "2024-01-01",
		"tanggalAkhirPenilaian": "2024-12-31",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"predikat":"predikat"`)
}

func TestAssessment_UnknownEmployee(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/api/penilaian-angka-kredit", map[string]string{
		"pegawaiId":             "missing",
		"jenjang":               "KEAHLIAN - AHLI MUDA",
		"predikat":              "baik",
		"tanggalAwalPenilaian":  "2024-01-01",
		"tanggalAkhirPenilaian": "2024-12-31",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// INTEGRATION AND EDUCATION CREDIT TESTS
// =============================================================================

func TestIntegrationCredit_CRUD(t *testing.T) {
	s := newTestServer(t, nil)
	emp := s.createEmployee("Budi", "198501012010011001", "III/a")

	rec := s.do(http.MethodPost, "/api/angka-integrasi", map[string]any{"pegawaiId": emp.ID, "value": "12.5"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decodeBody[records.IntegrationCredit](t, rec)
	assertDecimal(t, "12.5", c.Value)

	rec = s.do(http.MethodPut, "/api/angka-integrasi/"+c.ID, map[string]any{"pegawaiId": emp.ID, "value": 20})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assertDecimal(t, "20", decodeBody[records.IntegrationCredit](t, rec).Value)

	rec = s.do(http.MethodDelete, "/api/angka-integrasi/"+c.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, "/api/angka-integrasi/"+c.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEducationCredit_DerivedFromGrade(t *testing.T) {
	// GIVEN: A III/a employee (next jenjang minimal 100)
	s := newTestServer(t, nil)
	emp := s.createEmployee("Budi", "198501012010011001", "III/a")

	// WHEN: Recording an S2 education credit
	rec := s.do(http.MethodPost, "/api/ak-pendidikan", map[string]any{
		"pegawaiId": emp.ID, "jenjang": "S2", "nama_pendidikan": "Magister Pendidikan", "tahun_lulus": 2020,
	})

	// THEN: 25% of 100
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decodeBody[records.EducationCredit](t, rec)
	assert.Equal(t, "grade", string(c.Method))
	assertDecimal(t, "100", c.NextRankValue)
	assertDecimal(t, "25", c.Value)
}

func TestEducationCredit_InvalidYear(t *testing.T) {
	s := newTestServer(t, nil)
	emp := s.createEmployee("Budi", "198501012010011001", "III/a")

	rec := s.do(http.MethodPost, "/api/ak-pendidikan", map[string]any{
		"pegawaiId": emp.ID, "jenjang": "S1", "tahun_lulus": 1800,
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "tahun_lulus")
}

func TestInstitution_CRUD(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/api/instansi", map[string]string{"name": "Dinas Pendidikan", "penilai_nama": "Drs. Hadi"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	inst := decodeBody[records.Institution](t, rec)
	assert.True(t, inst.HasAssessor())

	rec = s.do(http.MethodPost, "/api/instansi", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/api/instansi/"+inst.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodDelete, "/api/instansi/"+inst.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// CALCULATION TESTS
// =============================================================================

func TestCalcCredit(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/api/calc/credit", map[string]string{
		"predikat":     "Sangat Baik",
		"jenjang":      "KEAHLIAN - AHLI PERTAMA",
		"tanggalAwal":  "2024-01-01",
		"tanggalAkhir": "2024-06-30",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[CreditResponse](t, rec)
	// 6/12 * 12.5 * 150% = 9.375
	assertDecimal(t, "6", resp.Months)
	assertDecimal(t, "9.375", resp.Credit)
	assert.Equal(t, "konversi", resp.Policy)
	assert.Equal(t, "Sangat Baik", resp.Label)
}

func TestCalcCredit_FormEntryRoundsToInteger(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/api/calc/credit", map[string]string{
		"predikat":     "sangat_baik",
		"jenjang":      "KEAHLIAN - AHLI PERTAMA",
		"tanggalAwal":  "2024-01-01",
		"tanggalAkhir": "2024-06-30",
		"kebijakan":    "form_entry",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[CreditResponse](t, rec)
	assertDecimal(t, "9", resp.Credit)
	assert.Equal(t, "form_entry", resp.Policy)
}

func TestCalcCredit_UnknownPolicy(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/api/calc/credit", map[string]string{
		"predikat": "baik", "jenjang": "KEAHLIAN - AHLI MUDA", "kebijakan": "bulanan",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalcCredit_UnknownInputsResolveToZero(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name        string
		body        map[string]string
		months      string
		percentage  string
		coefficient string
	}{
		{"unknown predicate", map[string]string{
			"predikat": "unknown", "jenjang": "KEAHLIAN - AHLI PERTAMA",
			"tanggalAwal": "2024-01-01", "tanggalAkhir": "2024-06-30",
		}, "6", "0", "12.5"},
		{"unknown jenjang", map[string]string{
			"predikat": "baik", "jenjang": "unknown_garbage",
			"tanggalAwal": "2024-01-01", "tanggalAkhir": "2024-06-30",
		}, "6", "100", "0"},
		{"empty start", map[string]string{
			"predikat": "baik", "jenjang": "KEAHLIAN - AHLI PERTAMA",
			"tanggalAwal": "", "tanggalAkhir": "2024-06-30",
		}, "0", "100", "12.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/api/calc/credit", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			resp := decodeBody[CreditResponse](t, rec)
			assertDecimal(t, tt.months, resp.Months)
			assertDecimal(t, tt.percentage, resp.Percentage)
			assertDecimal(t, tt.coefficient, resp.Coefficient)
			assertDecimal(t, "0", resp.Credit)
		})
	}
}

func TestCalcTarget(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/api/calc/target", map[string]any{"golongan": "III/a", "total": "60"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	target := decodeBody[reports.Target](t, rec)
	assert.True(t, target.Eligible)
	assert.Equal(t, "Dapat", target.Eligibility)
	assert.Equal(t, "Penata Muda Tk. I (III/b)", target.Destination)
	assertDecimal(t, "50", target.RankMinimal)
	assertDecimal(t, "40", target.JenjangRemaining)
}

func TestCalcEducation(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		body   map[string]string
		method string
		value  string
	}{
		{"grade anchored", map[string]string{"golongan": "III/a"}, "grade", "25"},
		{"level fallback", map[string]string{"golongan": "X/z", "jenjang": "S1"}, "level", "7.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/api/calc/education", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			resp := decodeBody[EducationCalcResponse](t, rec)
			assert.Equal(t, tt.method, string(resp.Method))
			assertDecimal(t, tt.value, resp.Value)
		})
	}

	rec := s.do(http.MethodPost, "/api/calc/education", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalcMonths(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/api/calc/months?start=2024-01-15&end=2024-03-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[MonthsResponse](t, rec)
	assert.Equal(t, "inclusive", resp.Policy)
	assertDecimal(t, "3", resp.Months)

	// Missing or unparseable dates count as zero months
	for _, query := range []string{
		"start=&end=2024-01-01",
		"start=2024-01-15&end=bogus",
		"end=2024-01-01",
	} {
		rec = s.do(http.MethodGet, "/api/calc/months?"+query, nil)
		require.Equal(t, http.StatusOK, rec.Code, query)
		assertDecimal(t, "0", decodeBody[MonthsResponse](t, rec).Months)
	}
}

// =============================================================================
// REPORT TESTS
// =============================================================================

func TestReport_AkumulasiJSON(t *testing.T) {
	// GIVEN: Two assessments, stored newest first
	s := newTestServer(t, nil)
	emp := s.createEmployee("Budi", "198501012010011001", "III/a")
	s.createAssessment(emp.ID, "baik", "2024-01-01", "2024-12-31")
	s.createAssessment(emp.ID, "Butuh Perbaikan", "2023-07-01", "2023-12-31")

	// WHEN: Requesting the akumulasi as JSON
	rec := s.do(http.MethodGet, "/api/reports/akumulasi/"+emp.ID+"?format=json", nil)

	// THEN: Rows are chronological; 25 + 6/12*25*75% = 34.375
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	doc := decodeBody[reports.Document](t, rec)
	require.Len(t, doc.Rows, 2)
	assert.Equal(t, "2023-07-01", doc.Rows[0].PeriodStart)
	assertDecimal(t, "34.375", doc.Totals.Grand)
	assert.Equal(t, 2024, doc.Year)

	// WHEN: Filtering by year
	rec = s.do(http.MethodGet, "/api/reports/akumulasi/"+emp.ID+"?format=json&tahun=2023", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[reports.Document](t, rec).Rows, 1)
}

func TestReport_PenetapanPDF(t *testing.T) {
	s := newTestServer(t, nil)
	emp := s.createEmployee("Budi Santoso", "198501012010011001", "III/a")
	a := s.createAssessment(emp.ID, "baik", "2024-01-01", "2024-12-31")

	rec := s.do(http.MethodGet, "/api/reports/penetapan/"+a.ID, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "penetapan_Budi_Santoso.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = s.do(http.MethodGet, "/api/reports/penetapan/"+a.ID+"?format=docx", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReport_Errors(t *testing.T) {
	s := newTestServer(t, nil)
	emp := s.createEmployee("Budi", "198501012010011001", "III/a")

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"unknown kind", "/api/reports/laporan/" + emp.ID, http.StatusBadRequest},
		{"unknown assessment", "/api/reports/konversi/missing", http.StatusNotFound},
		{"no assessments", "/api/reports/akumulasi/" + emp.ID, http.StatusNotFound},
		{"bad year", "/api/reports/akumulasi/" + emp.ID + "?tahun=abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRenderAkumulasi(t *testing.T) {
	s := newTestServer(t, nil)
	emp := s.createEmployee("Budi Santoso", "198501012010011001", "III/a")
	s.createAssessment(emp.ID, "baik", "2024-01-01", "2024-12-31")

	rec := s.do(http.MethodPost, "/api/akumulasi/render", map[string]any{"pegawaiId": emp.ID})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "Budi Santoso")
	assert.Contains(t, body, "198501012010011001")
	assert.NotContains(t, body, "{{")
}

// =============================================================================
// SPREADSHEET TESTS
// =============================================================================

func TestEmployeeTemplate(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/api/pegawai/template.xlsx", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	_, err := spreadsheet.ReadEmployees(rec.Body)
	assert.ErrorIs(t, err, spreadsheet.ErrEmptySheet)
}

func TestImportEmployees_Multipart(t *testing.T) {
	// GIVEN: A workbook with two employees, one of whom already exists
	s := newTestServer(t, nil)
	s.createEmployee("Budi", "198501012010011001", "III/a")

	var book bytes.Buffer
	require.NoError(t, spreadsheet.WriteEmployees(&book, []records.Employee{
		{Name: "Budi Santoso", NIP: "198501012010011001", Grade: "III/b"},
		{Name: "Ani", NIP: "199002022015022002", Gender: records.GenderFemale},
	}))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "pegawai.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(book.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	// WHEN: Uploading it
	req := httptest.NewRequest(http.MethodPost, "/api/pegawai/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	// THEN: One is created and one updated by NIP
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[records.ImportResult](t, rec)
	assert.Equal(t, records.ImportResult{Created: 1, Updated: 1}, res)

	rec = s.do(http.MethodGet, "/api/pegawai/export.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list, err := spreadsheet.ReadEmployees(rec.Body)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestImportEmployees_RawBodyMissingHeaders(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/pegawai/import", strings.NewReader("not a workbook"))
	req.Header.Set("Content-Type", xlsxContentType)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid spreadsheet")
}

// =============================================================================
// ADMIN TESTS
// =============================================================================

func TestDashboard(t *testing.T) {
	s := newTestServer(t, nil)
	emp := s.createEmployee("Budi", "198501012010011001", "III/a")
	s.createAssessment(emp.ID, "baik", "2024-01-01", "2024-12-31")
	s.createAssessment(emp.ID, "baik", "2023-01-01", "2023-12-31")

	rec := s.do(http.MethodGet, "/api/dashboard", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeBody[records.Stats](t, rec)
	assert.Equal(t, 1, st.Employees)
	assert.Equal(t, 2, st.Assessments)
	assertDecimal(t, "50", st.TotalCredit)
}

func TestRecalculate_NothingChanged(t *testing.T) {
	s := newTestServer(t, nil)
	emp := s.createEmployee("Budi", "198501012010011001", "III/a")
	s.createAssessment(emp.ID, "baik", "2024-01-01", "2024-12-31")

	rec := s.do(http.MethodPost, "/api/recalculate", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, records.RecalcResult{}, decodeBody[records.RecalcResult](t, rec))
}

func TestHealth_MemoryStore(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/api/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Angka Kredit API")
}
