package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/warp/angka-kredit/render"
	"github.com/warp/angka-kredit/reports"
	"github.com/warp/angka-kredit/spreadsheet"
)

// maxUploadSize caps spreadsheet imports.
const maxUploadSize = 10 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetReport builds a konversi, akumulasi or penetapan document.
// GET /api/reports/{kind}/{id}?format=pdf|json
//
// id is an assessment ID for konversi and penetapan and an employee ID for
// akumulasi. Akumulasi also reads ?integrasi=true, ?pendidikan=true and
// ?tahun=2024.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	kind, ok := reports.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown report kind", nil)
		return
	}

	q := r.URL.Query()
	opts := reports.AkumulasiOptions{
		IncludeIntegration: queryBool(q.Get("integrasi")),
		IncludeEducation:   queryBool(q.Get("pendidikan")),
	}
	if s := q.Get("tahun"); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid tahun", err)
			return
		}
		opts.Year = year
	}

	doc, err := h.Reports.Build(r.Context(), kind, chi.URLParam(r, "id"), opts)
	if err != nil {
		h.fail(w, "Failed to build report", err)
		return
	}

	switch q.Get("format") {
	case "", "pdf":
		h.writePDF(w, doc)
	case "json":
		writeJSON(w, http.StatusOK, doc)
	default:
		writeError(w, http.StatusBadRequest, "Unknown format, use pdf or json", nil)
	}
}

func (h *Handler) writePDF(w http.ResponseWriter, doc *reports.Document) {
	// Render into memory first so a failure can still produce a JSON error.
	data, err := render.PDFBytes(doc, h.pdf)
	if err != nil {
		h.fail(w, "Failed to render PDF", err)
		return
	}
	h.log.WithFields(logrus.Fields{
		"kind":  doc.Kind,
		"bytes": len(data),
	}).Debug("rendered report")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", render.Filename(doc, "pdf")))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// RenderAkumulasi fills the legacy akumulasi HTML template for one employee.
// POST /api/akumulasi/render
func (h *Handler) RenderAkumulasi(w http.ResponseWriter, r *http.Request) {
	var req LegacyRenderRequest
	if !h.decode(w, r, &req) {
		return
	}
	doc, err := h.Reports.Akumulasi(r.Context(), req.EmployeeID, reports.AkumulasiOptions{
		IncludeIntegration: req.IncludeIntegration,
		IncludeEducation:   req.IncludeEducation,
		Year:               req.Year,
	})
	if err != nil {
		h.fail(w, "Failed to build akumulasi", err)
		return
	}
	html := h.Template.Execute(reports.LegacyData(doc))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, html)
}

// =============================================================================
// SPREADSHEET HANDLERS
// =============================================================================

// EmployeeTemplate downloads an empty import workbook.
// GET /api/pegawai/template.xlsx
func (h *Handler) EmployeeTemplate(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := spreadsheet.WriteTemplate(&buf); err != nil {
		h.fail(w, "Failed to build template", err)
		return
	}
	writeWorkbook(w, "template_pegawai.xlsx", buf.Bytes())
}

// ExportEmployees downloads every employee as a workbook.
// GET /api/pegawai/export.xlsx
func (h *Handler) ExportEmployees(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListEmployees(r.Context())
	if err != nil {
		h.fail(w, "Failed to list employees", err)
		return
	}
	var buf bytes.Buffer
	if err := spreadsheet.WriteEmployees(&buf, list); err != nil {
		h.fail(w, "Failed to build workbook", err)
		return
	}
	writeWorkbook(w, "data_pegawai.xlsx", buf.Bytes())
}

// ImportEmployees upserts employees by NIP from an uploaded workbook. The
// file is read from the multipart field "file", or from the raw body.
// POST /api/pegawai/import
func (h *Handler) ImportEmployees(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	var src io.Reader = r.Body
	if r.Header.Get("Content-Type") != "" && r.Header.Get("Content-Type") != xlsxContentType {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Missing upload field 'file'", err)
			return
		}
		defer file.Close()
		src = file
	}

	rows, err := spreadsheet.ReadEmployees(src)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid spreadsheet", err)
		return
	}
	res, err := h.Service.ImportEmployees(r.Context(), rows)
	if err != nil {
		if res.Created+res.Updated > 0 {
			h.log.WithFields(logrus.Fields{
				"created": res.Created,
				"updated": res.Updated,
			}).Warn("employee import stopped after partial write")
		}
		h.fail(w, "Failed to import employees", err)
		return
	}
	h.log.WithFields(logrus.Fields{
		"created": res.Created,
		"updated": res.Updated,
	}).Info("imported employees")
	writeJSON(w, http.StatusOK, res)
}

func writeWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// queryBool accepts "1", "true", "yes" and "on".
func queryBool(s string) bool {
	switch s {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
