package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"github.com/warp/angka-kredit/reports"
)

// =============================================================================
// PDF DOCUMENTS
// =============================================================================

// PDFOptions carries presentation settings that are not part of a document.
type PDFOptions struct {
	// City is printed after "Ditetapkan di" when the document has no place.
	City string
}

const (
	pageMargin   = 15.0
	contentWidth = 210.0 - 2*pageMargin
	lineHeight   = 6.0
	fontFamily   = "Times"
)

// Penetapan figures print with three decimals, the other documents with two.
const penetapanPlaces = 3

// PDF writes doc as an A4 PDF.
func PDF(w io.Writer, doc *reports.Document, opts PDFOptions) error {
	s := newSheet(doc)
	switch doc.Kind {
	case reports.KindKonversi:
		s.konversi(doc)
	case reports.KindAkumulasi:
		s.akumulasi(doc)
	case reports.KindPenetapan:
		s.penetapan(doc)
	default:
		return fmt.Errorf("unsupported document kind %q", doc.Kind)
	}
	s.footer(doc, opts)
	if err := s.pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// PDFBytes renders doc into memory.
func PDFBytes(doc *reports.Document, opts PDFOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := PDF(&buf, doc, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename returns the download name of doc, e.g. "penetapan_Budi_Santoso.pdf".
func Filename(doc *reports.Document, ext string) string {
	name := doc.Employee.Name
	if name == "" || name == reports.Placeholder {
		name = "export"
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, name)
	return string(doc.Kind) + "_" + name + "." + ext
}

// Title returns the heading printed on doc.
func Title(kind reports.Kind) string {
	switch kind {
	case reports.KindKonversi:
		return "KONVERSI KE ANGKA KREDIT"
	case reports.KindAkumulasi:
		return "AKUMULASI ANGKA KREDIT"
	case reports.KindPenetapan:
		return "PENETAPAN ANGKA KREDIT"
	}
	return strings.ToUpper(string(kind))
}

// NumberLine returns the "NOMOR : ..." line under the title. Penetapan
// numbers are assigned by hand after printing.
func NumberLine(doc *reports.Document) string {
	if doc.Kind == reports.KindPenetapan {
		return fmt.Sprintf("NOMOR : 800/ ......... /.........../Dindik/%d/PAK", doc.Year)
	}
	return fmt.Sprintf("NOMOR : 800/ %s /.........../Dindik/ %d/PAK", doc.Number, doc.Year)
}

// =============================================================================
// SHEET - fpdf wrapper
// =============================================================================

type sheet struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newSheet(doc *reports.Document) *sheet {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(Title(doc.Kind)+" "+doc.Employee.Name, true)
	pdf.SetCreator("angkakredit", true)
	pdf.AddPage()
	s := &sheet{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	s.font("B", 13)
	s.line(Title(doc.Kind), "C")
	s.font("", 11)
	s.line(NumberLine(doc), "C")
	s.pdf.Ln(2)
	return s
}

func (s *sheet) font(style string, size float64) { s.pdf.SetFont(fontFamily, style, size) }

func (s *sheet) line(txt, align string) {
	s.pdf.CellFormat(0, lineHeight, s.tr(txt), "", 1, align, false, 0, "")
}

func (s *sheet) cell(w float64, txt, align string) {
	s.pdf.CellFormat(w, lineHeight, s.tr(txt), "1", 0, align, false, 0, "")
}

func (s *sheet) row(widths []float64, aligns string, cells ...string) {
	for i, c := range cells {
		s.cell(widths[i], c, aligns[i:i+1])
	}
	s.pdf.Ln(-1)
}

// =============================================================================
// SECTIONS
// =============================================================================

func (s *sheet) period(doc *reports.Document) {
	s.line("Instansi : "+doc.Institution, "L")
	s.line("Periode : "+Date(doc.PeriodStart)+" s.d. "+Date(doc.PeriodEnd), "L")
	s.pdf.Ln(2)
}

func (s *sheet) personal(doc *reports.Document) {
	e := doc.Employee
	rows := [][2]string{
		{"Nama", e.Name},
		{"NIP", e.NIP},
		{"Nomor Seri Karpeg", e.CardSerial},
		{"Tempat/Tgl. Lahir", e.BirthPlace + " / " + Date(e.BirthDate)},
		{"Jenis Kelamin", e.Gender},
		{"Pangkat/Golongan ruang/TMT", e.Rank + " / " + e.Grade + " / " + Date(e.RankTMT)},
		{"Jabatan/TMT", e.Position + " / " + Date(e.PositionTMT)},
		{"Unit Kerja", e.Unit},
		{"Instansi", doc.Institution},
	}
	widths := []float64{10, 60, 5, contentWidth - 75}
	s.font("B", 11)
	s.pdf.CellFormat(10, lineHeight, "I.", "1", 0, "C", false, 0, "")
	s.pdf.CellFormat(contentWidth-10, lineHeight, s.tr("KETERANGAN PERORANGAN"), "1", 1, "L", false, 0, "")
	s.font("", 11)
	for i, r := range rows {
		s.row(widths, "CLCL", fmt.Sprint(i+1), r[0], ":", r[1])
	}
	s.pdf.Ln(3)
}

var creditWidths = []float64{65, 35, 40, contentWidth - 140}

// creditTable prints the predicate table shared by konversi and akumulasi.
func (s *sheet) creditTable(doc *reports.Document, heading string) {
	s.font("B", 11)
	s.pdf.CellFormat(contentWidth, lineHeight, s.tr(heading), "1", 1, "C", false, 0, "")
	s.row(creditWidths, "CCCC", "PREDIKAT", "PROSENTASE", "KOEFISIEN PER TAHUN", "ANGKA KREDIT YANG DI DAPAT")
	s.font("", 11)
	if doc.HasIntegration() {
		s.row(creditWidths, "LCCR", reports.LegacyIntegrationLabel, ".", ".", Credit(doc.Totals.Integration))
	}
	if doc.HasEducation() {
		s.row(creditWidths, "LCCR", reports.LegacyEducationLabel, ".", ".", Credit(doc.Totals.Education))
	}
	for _, r := range doc.Rows {
		label := r.Label
		if doc.Kind == reports.KindAkumulasi {
			label += " (" + Date(r.PeriodStart) + " s.d. " + Date(r.PeriodEnd) + ")"
		}
		s.row(creditWidths, "LCCR", label, r.Percentage.String()+"%", Credit(r.Coefficient), Credit(r.Credit))
	}
	s.font("B", 11)
	total := creditWidths[0] + creditWidths[1] + creditWidths[2]
	s.pdf.CellFormat(total, lineHeight, s.tr("Jumlah Angka Kredit"), "1", 0, "R", false, 0, "")
	s.pdf.CellFormat(creditWidths[3], lineHeight, s.tr(Credit(doc.Totals.Grand)), "1", 1, "R", false, 0, "")
	s.font("", 11)
	s.pdf.Ln(3)
}

func (s *sheet) konversi(doc *reports.Document) {
	s.period(doc)
	s.personal(doc)
	s.creditTable(doc, "KONVERSI KE ANGKA KREDIT")
}

func (s *sheet) akumulasi(doc *reports.Document) {
	s.period(doc)
	s.personal(doc)
	s.creditTable(doc, "AKUMULASI ANGKA KREDIT")
}

// PenetapanRow is one line of the penetapan credit table.
type PenetapanRow struct {
	Label string
	Old   string
	New   string
	Total string
}

// PenetapanRows lays out the LAMA/BARU/JUMLAH table. Previously determined
// credit is not tracked, so LAMA is always zero. Integration credit is an
// adjustment from the equalization of positions.
func PenetapanRows(doc *reports.Document) []PenetapanRow {
	n := func(d decimal.Decimal) string { return Number(d, penetapanPlaces) }
	zero := n(decimal.Zero)
	dash := func(d decimal.Decimal) string {
		if d.IsZero() {
			return "-"
		}
		return n(d)
	}
	t := doc.Totals
	return []PenetapanRow{
		{"AK dasar yang diberikan", "-", "-", "-"},
		{"AK konversi dari predikat", zero, n(t.Assessments), n(t.Assessments)},
		{"AK penyesuaian penyetaraan", "-", dash(t.Integration), dash(t.Integration)},
		{"AK yang diperoleh dari peningkatan pendidikan", "-", n(t.Education), n(t.Education)},
		{"JUMLAH", zero, n(t.Grand), n(t.Grand)},
	}
}

// PenetapanConclusion returns the lines printed under the penetapan table.
func PenetapanConclusion(doc *reports.Document) []string {
	if doc.Target == nil {
		return nil
	}
	n := func(d decimal.Decimal) string { return Number(d, penetapanPlaces) }
	t := doc.Target
	return []string{
		"Berdasarkan Penetapan Angka Kredit tersebut, maka:",
		"Angka Kredit Minimal yang diperlukan untuk naik jenjang/jabatan setingkat lebih tinggi: " + t.Destination,
		"Pangkat / Jenjang minimal: " + n(t.RankMinimal) + " / " + n(t.JenjangMinimal),
		"Angka Kredit yang diperoleh: " + n(doc.Totals.Grand),
		"Sisa Angka Kredit yang harus dicapai: " + n(t.RankRemaining) + " / " + n(t.JenjangRemaining),
		t.Sentence(),
	}
}

func (s *sheet) penetapan(doc *reports.Document) {
	s.period(doc)
	s.personal(doc)

	widths := []float64{contentWidth - 90, 30, 30, 30}
	s.font("B", 11)
	s.pdf.CellFormat(widths[0], lineHeight, s.tr("PENETAPAN ANGKA KREDIT"), "1", 0, "C", false, 0, "")
	s.cell(widths[1], "LAMA", "C")
	s.cell(widths[2], "BARU", "C")
	s.cell(widths[3], "JUMLAH", "C")
	s.pdf.Ln(-1)
	rows := PenetapanRows(doc)
	for i, r := range rows {
		if i == len(rows)-1 {
			s.font("B", 11)
		} else {
			s.font("", 11)
		}
		s.row(widths, "LRRR", r.Label, r.Old, r.New, r.Total)
	}
	s.font("", 11)
	s.pdf.Ln(3)

	lines := PenetapanConclusion(doc)
	for i, l := range lines {
		if i == len(lines)-1 {
			s.font("B", 11)
			s.pdf.MultiCell(contentWidth, lineHeight, s.tr(l), "1", "L", false)
			s.font("", 11)
			continue
		}
		s.pdf.MultiCell(contentWidth, lineHeight, s.tr(l), "", "L", false)
	}
	s.pdf.Ln(3)
}

func (s *sheet) footer(doc *reports.Document, opts PDFOptions) {
	place := doc.DeterminedAt
	if place == reports.Placeholder && opts.City != "" {
		place = opts.City
	}

	half := contentWidth / 2
	y := s.pdf.GetY()
	s.font("B", 10)
	s.pdf.MultiCell(half, 5, s.tr("ASLI disampaikan dengan hormat kepada:"), "", "L", false)
	s.font("", 10)
	s.pdf.MultiCell(half, 5, s.tr("Jabatan Fungsional yang bersangkutan."), "", "L", false)
	if doc.Kind == reports.KindPenetapan {
		s.font("B", 10)
		s.pdf.MultiCell(half, 5, s.tr("Tembusan disampaikan kepada:"), "", "L", false)
		s.font("", 10)
		s.pdf.MultiCell(half, 5, s.tr("1. Jabatan Fungsional yang bersangkutan\n2. Ketua/atasan unit kerja\n3. Kepala Biro Kepegawaian dan Organisasi\n4. Pejabat lain yang dianggap perlu."), "", "L", false)
	}

	s.pdf.SetXY(pageMargin+half, y)
	lines := []string{
		"Ditetapkan di " + place,
		"Pada tanggal, " + LongDate(doc.DeterminedOn),
		"Pejabat Penilai Kinerja",
		"", "", "",
		doc.Assessor.Name,
		doc.Assessor.Rank + " / " + doc.Assessor.Grade,
		"NIP. " + doc.Assessor.NIP,
	}
	s.font("", 11)
	for _, l := range lines {
		s.pdf.SetX(pageMargin + half)
		s.pdf.CellFormat(half, 5, s.tr(l), "", 1, "L", false, 0, "")
	}
}
