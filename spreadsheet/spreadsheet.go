/*
Package spreadsheet reads and writes employee lists as Excel workbooks.

FORMAT:
  One sheet, header row first, one employee per row. Columns follow
  Headers; on import they are matched by name (case-insensitive), so the
  order may differ and unknown columns are ignored.

IMPORT RULES:
  - Headers "nama" and "nip" are required
  - A row whose first cell is empty is skipped
  - jenis_kelamin other than "Laki-laki"/"Perempuan" becomes "Laki-laki"
  - Cells are trimmed; everything else is passed through as text

SEE ALSO:
  - records.Service.ImportEmployees: upsert by NIP
*/
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/warp/angka-kredit/records"
	"github.com/xuri/excelize/v2"
)

// Headers is the fixed column set, in template order.
var Headers = []string{
	"nama",
	"nip",
	"no_seri_karpeg",
	"tempat_lahir",
	"tanggal_lahir",
	"jenis_kelamin",
	"pangkat",
	"golongan",
	"tmt_pangkat",
	"tmt_jabatan",
	"jabatan",
	"unit_kerja",
}

// RequiredHeaders must be present in an imported sheet.
var RequiredHeaders = []string{"nama", "nip"}

var columnWidths = []float64{30, 20, 15, 20, 15, 12, 20, 10, 15, 15, 25, 30}

const (
	TemplateSheet = "Template Pegawai"
	ExportSheet   = "Data Pegawai"
)

var (
	ErrEmptySheet     = errors.New("spreadsheet has no data rows")
	ErrMissingHeaders = errors.New("spreadsheet is missing required headers")
)

// HeaderError lists the required headers an import did not find.
type HeaderError struct {
	Missing []string
}

func (e *HeaderError) Error() string {
	return "missing required headers: " + strings.Join(e.Missing, ", ")
}

func (e *HeaderError) Unwrap() error { return ErrMissingHeaders }

// =============================================================================
// WRITE
// =============================================================================

// WriteTemplate writes an empty workbook with the header row.
func WriteTemplate(w io.Writer) error {
	return write(w, TemplateSheet, nil)
}

// WriteEmployees writes employees under the header row.
func WriteEmployees(w io.Writer, employees []records.Employee) error {
	return write(w, ExportSheet, employees)
}

func write(w io.Writer, sheet string, employees []records.Employee) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]any, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(Headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	for i, width := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}

	for i, e := range employees {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := employeeRow(e)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// employeeRow returns the cells of e in Headers order. NIPs are written as
// text so that spreadsheet programs keep the leading zeros and all digits.
func employeeRow(e records.Employee) []any {
	return []any{
		e.Name, e.NIP, e.CardSerial, e.BirthPlace, e.BirthDate, e.Gender,
		e.Rank, e.Grade, e.RankTMT, e.PositionTMT, e.Position, e.Unit,
	}
}

// =============================================================================
// READ
// =============================================================================

// ReadEmployees parses the first sheet of a workbook into employee rows.
// The result has no IDs; pass it to records.Service.ImportEmployees.
func ReadEmployees(r io.Reader) ([]records.Employee, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) ([]records.Employee, error) {
	if len(rows) < 2 {
		return nil, ErrEmptySheet
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	var missing []string
	for _, h := range RequiredHeaders {
		if _, ok := index[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, &HeaderError{Missing: missing}
	}

	var out []records.Employee
	for _, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		get := func(h string) string {
			i, ok := index[h]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		out = append(out, records.Employee{
			Name:        get("nama"),
			NIP:         get("nip"),
			CardSerial:  get("no_seri_karpeg"),
			BirthPlace:  get("tempat_lahir"),
			BirthDate:   get("tanggal_lahir"),
			Gender:      gender(get("jenis_kelamin")),
			Rank:        get("pangkat"),
			Grade:       get("golongan"),
			RankTMT:     get("tmt_pangkat"),
			PositionTMT: get("tmt_jabatan"),
			Position:    get("jabatan"),
			Unit:        get("unit_kerja"),
		})
	}
	return out, nil
}

// gender keeps the two exact spellings and maps anything else to male.
func gender(s string) string {
	if slices.Contains([]string{records.GenderMale, records.GenderFemale}, s) {
		return s
	}
	return records.GenderMale
}
