/*
Package render turns report documents into printable output.

OUTPUTS:
  - PDF documents (konversi, akumulasi, penetapan) drawn with fpdf
  - The legacy akumulasi template, a plain-text substitution format
  - Display helpers for dates and numbers in Indonesian conventions

  Renderers never calculate. Every figure comes from reports.Document.

SEE ALSO:
  - reports/: Document assembly
*/
package render

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/angka-kredit/credit"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// =============================================================================
// DATES
// =============================================================================

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// MonthName returns the Indonesian name of month m (1-12).
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthNames[m-1]
}

// Date formats s as DD-MM-YYYY. Empty input gives "-"; input that is not a
// date is returned unchanged.
func Date(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	t, ok := credit.ParseDate(s)
	if !ok {
		return s
	}
	return t.Format("02-01-2006")
}

// LongDate formats s as "2 Januari 2024".
func LongDate(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	t, ok := credit.ParseDate(s)
	if !ok {
		return s
	}
	return strconv.Itoa(t.Day()) + " " + MonthName(int(t.Month())) + " " + strconv.Itoa(t.Year())
}

// =============================================================================
// NUMBERS
// =============================================================================

var printer = message.NewPrinter(language.Indonesian)

// Number formats d with exactly places decimals in the Indonesian locale
// ("1.234,50").
func Number(d decimal.Decimal, places int) string {
	f, _ := d.Round(int32(places)).Float64()
	return printer.Sprint(number.Decimal(f, number.Scale(places)))
}

// Credit formats a credit value with two decimals.
func Credit(d decimal.Decimal) string { return Number(d, 2) }
