package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/warp/angka-kredit/api"
	"github.com/warp/angka-kredit/factory"
	"github.com/warp/angka-kredit/render"
	"github.com/warp/angka-kredit/reports"
	"github.com/warp/angka-kredit/spreadsheet"
)

// =============================================================================
// REPORTS
// =============================================================================

var reportFlags struct {
	output      string
	format      string
	integration bool
	education   bool
	year        int
}

var reportCmd = &cobra.Command{
	Use:   "report <konversi|akumulasi|penetapan> <id>",
	Short: "Write a report document",
	Long: `Write a report document.

id is an assessment ID for konversi and penetapan, an employee ID for
akumulasi. --format html renders the legacy akumulasi template.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, ok := reports.ParseKind(args[0])
		if !ok {
			return fmt.Errorf("unknown report kind %q", args[0])
		}
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		doc, err := reports.NewBuilder(a.svc).Build(cmd.Context(), kind, args[1], reports.AkumulasiOptions{
			IncludeIntegration: reportFlags.integration,
			IncludeEducation:   reportFlags.education,
			Year:               reportFlags.year,
		})
		if err != nil {
			return err
		}

		var data []byte
		switch reportFlags.format {
		case "pdf":
			data, err = render.PDFBytes(doc, render.PDFOptions{City: a.cfg.ReportCity})
		case "json":
			var b strings.Builder
			err = printJSON(&b, doc)
			data = []byte(b.String())
		case "html":
			if kind != reports.KindAkumulasi {
				return fmt.Errorf("html is only available for akumulasi")
			}
			var tmpl *render.Template
			if tmpl, err = render.LoadTemplate(a.cfg.TemplateFile); err == nil {
				data = []byte(tmpl.Execute(reports.LegacyData(doc)))
			}
		default:
			return fmt.Errorf("unknown format %q", reportFlags.format)
		}
		if err != nil {
			return err
		}

		out := reportFlags.output
		if out == "" {
			out = render.Filename(doc, reportFlags.format)
		}
		if out == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		a.log.WithFields(logrus.Fields{"file": out, "kind": kind}).Info("report written")
		return nil
	},
}

// =============================================================================
// SPREADSHEETS
// =============================================================================

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Upsert employees by NIP from a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		rows, err := spreadsheet.ReadEmployees(f)
		if err != nil {
			return err
		}
		res, err := a.svc.ImportEmployees(cmd.Context(), rows)
		if err != nil {
			return err
		}
		a.log.WithFields(logrus.Fields{"created": res.Created, "updated": res.Updated}).Info("imported employees")
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Write all employees to a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.svc.ListEmployees(cmd.Context())
		if err != nil {
			return err
		}
		return writeFile(args[0], func(f *os.File) error { return spreadsheet.WriteEmployees(f, list) })
	},
}

var templateCmd = &cobra.Command{
	Use:   "template <file.xlsx>",
	Short: "Write an empty employee import workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeFile(args[0], func(f *os.File) error { return spreadsheet.WriteTemplate(f) })
	},
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// =============================================================================
// ADMIN
// =============================================================================

var seedCmd = &cobra.Command{
	Use:   "seed <scenario>",
	Short: "Reset the store and load a demo scenario",
	Long:  "Reset the store and load a demo scenario.\n\nScenarios:\n" + scenarioList(),
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if err := a.store.Reset(ctx); err != nil {
			return err
		}
		if err := api.SeedScenario(ctx, a.svc, args[0]); err != nil {
			return err
		}
		a.log.WithField("scenario", args[0]).Info("loaded scenario")
		return nil
	},
}

func scenarioList() string {
	var b strings.Builder
	for _, s := range api.Scenarios() {
		fmt.Fprintf(&b, "  %-18s %s\n", s.ID, s.Description)
	}
	return b.String()
}

var recalculateCmd = &cobra.Command{
	Use:   "recalculate",
	Short: "Re-derive stored credits with the current tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.svc.Recalculate(cmd.Context())
		if err != nil {
			return err
		}
		a.log.WithFields(logrus.Fields{
			"assessments": res.Assessments,
			"education":   res.Education,
		}).Info("recalculated stored credits")
		return nil
	},
}

var tablesCmd = &cobra.Command{
	Use:   "tables [file.json]",
	Short: "Print the lookup tables as JSON",
	Long:  "Print the lookup tables as JSON. With a file argument, that file is\nvalidated and printed merged over the built-in tables.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		tables, err := factory.NewTableFactory().LoadFile(path)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), factory.Export(tables))
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportFlags.output, "output", "o", "", "Output file, \"-\" for stdout (default: derived from the employee name)")
	reportCmd.Flags().StringVarP(&reportFlags.format, "format", "f", "pdf", "pdf|json|html")
	reportCmd.Flags().BoolVar(&reportFlags.integration, "integrasi", false, "Include the integration credit (akumulasi)")
	reportCmd.Flags().BoolVar(&reportFlags.education, "pendidikan", false, "Include the education credit (akumulasi)")
	reportCmd.Flags().IntVar(&reportFlags.year, "tahun", 0, "Only assessments ending in this year (akumulasi)")

	rootCmd.AddCommand(reportCmd, importCmd, exportCmd, templateCmd, seedCmd, recalculateCmd, tablesCmd)
}
