package reports

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEGACY TEMPLATE DATA
// =============================================================================

// Row labels of the legacy akumulasi template.
const (
	LegacyIntegrationLabel = "AK Integrasi"
	LegacyEducationLabel   = "AK Pendidikan"
	legacyNoValue          = "."
)

// LegacyData flattens an akumulasi document into the variables used by the
// legacy akumulasi template. Integration and education rows come before the
// assessment rows, each only when positive.
func LegacyData(doc *Document) map[string]any {
	var list []map[string]any
	if doc.HasIntegration() {
		list = append(list, legacyCreditRow(LegacyIntegrationLabel, doc.Totals.Integration))
	}
	if doc.HasEducation() {
		list = append(list, legacyCreditRow(LegacyEducationLabel, doc.Totals.Education))
	}
	for _, r := range doc.Rows {
		label := string(r.Predicate)
		if label == "" {
			label = Placeholder
		}
		list = append(list, map[string]any{
			"penilaian":           label,
			"prosentase":          r.Percentage.String() + "%",
			"koefisien":           r.Coefficient.Round(2).String(),
			"jumlah_angka_kredit": r.Credit.Round(2).String(),
		})
	}

	year := strconv.Itoa(doc.Year)
	return map[string]any{
		"tahun":                   year,
		"nama_instansi":           doc.Institution,
		"periode_awal_str":        "01-01-" + year,
		"periode_akhir_str":       "31-12-" + year,
		"include_angka_integrasi": doc.HasIntegration(),
		"angka_integrasi_value":   doc.Totals.Integration.String(),
		"include_ak_pendidikan":   doc.HasEducation(),
		"ak_pendidikan_value":     doc.Totals.Education.String(),
		"ak_list":                 list,
		"total_angka_kredit":      doc.Totals.Grand.String(),
		"jab":                     doc.Employee.Position,
		"nama_pegawai":            doc.Employee.Name,
		"nip_pegawai":             doc.Employee.NIP,
		"golongan":                doc.Employee.Grade,
		"pangkat":                 doc.Employee.Rank,
		"unit_kerja":              doc.Employee.Unit,
		"periode_awal":            doc.PeriodStart,
		"periode_akhir":           doc.PeriodEnd,
		"tanggal_ditetapkan":      doc.DeterminedOn,
		"tempat_ditetapkan":       doc.DeterminedAt,
		"penilai": map[string]any{
			"nama":     doc.Assessor.Name,
			"nip":      doc.Assessor.NIP,
			"pangkat":  doc.Assessor.Rank,
			"golongan": doc.Assessor.Grade,
		},
	}
}

func legacyCreditRow(label string, value decimal.Decimal) map[string]any {
	return map[string]any{
		"penilaian":           label,
		"prosentase":          legacyNoValue,
		"koefisien":           legacyNoValue,
		"jumlah_angka_kredit": value.Round(2).String(),
	}
}
