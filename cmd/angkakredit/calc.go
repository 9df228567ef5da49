package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/warp/angka-kredit/credit"
	"github.com/warp/angka-kredit/factory"
	"github.com/warp/angka-kredit/reports"
)

// Calculation commands only need the lookup tables, not the store.

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Stateless credit calculations",
}

var calcFlags struct {
	tablesFile string
	predicate  string
	jobLevel   string
	start      string
	end        string
	policy     string
	grade      string
	total      string
	level      string
	months     string
}

var calcCreditCmd = &cobra.Command{
	Use:   "credit",
	Short: "Credit of one assessment period",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := factory.NewTableFactory().LoadFile(calcFlags.tablesFile)
		if err != nil {
			return err
		}
		if !credit.ParsePredicate(calcFlags.predicate).Valid() {
			return fmt.Errorf("unknown predikat %q", calcFlags.predicate)
		}
		policy := credit.PolicyByName(calcFlags.policy)
		b := credit.NewCalculator(tables, policy).Derive(calcFlags.predicate, calcFlags.jobLevel, calcFlags.start, calcFlags.end)
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"predikat":    b.Predicate,
			"jenjang":     b.JobLevel.Key,
			"skema":       b.JobLevel.Scheme.String(),
			"kebijakan":   policy.Name,
			"bulan":       b.Months,
			"prosentase":  b.Percentage,
			"koefisien":   b.Coefficient,
			"angkaKredit": b.Credit,
		})
	},
}

var calcTargetCmd = &cobra.Command{
	Use:   "target",
	Short: "Promotion target for a golongan and accumulated total",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := factory.NewTableFactory().LoadFile(calcFlags.tablesFile)
		if err != nil {
			return err
		}
		total, err := decimal.NewFromString(calcFlags.total)
		if err != nil {
			return fmt.Errorf("invalid total %q: %w", calcFlags.total, err)
		}
		t := reports.NewTarget(tables.ResolveTarget(calcFlags.grade, total))
		if err := printJSON(cmd.OutOrStdout(), t); err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Sentence())
		return err
	},
}

var calcEducationCmd = &cobra.Command{
	Use:   "education",
	Short: "AK pendidikan for a golongan, or an education level",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := factory.NewTableFactory().LoadFile(calcFlags.tablesFile)
		if err != nil {
			return err
		}
		res := tables.EducationCredit(calcFlags.grade, calcFlags.level)
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"metode":             res.Method,
			"nilai_next_pangkat": res.Basis,
			"calculated_value":   res.Value,
			"dibulatkan":         credit.QuarterCeil(res.Value),
		})
	},
}

var calcMonthsCmd = &cobra.Command{
	Use:   "months",
	Short: "Month count of a period",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		policy := credit.ParseMonthPolicy(calcFlags.months)
		_, err := fmt.Fprintln(cmd.OutOrStdout(), credit.MonthsBetween(policy, calcFlags.start, calcFlags.end).String())
		return err
	},
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	calcCmd.PersistentFlags().StringVar(&calcFlags.tablesFile, "tables", "", "Lookup table JSON file (built-in tables when empty)")

	calcCreditCmd.Flags().StringVar(&calcFlags.predicate, "predikat", "", "Predicate, e.g. \"Sangat Baik\"")
	calcCreditCmd.Flags().StringVar(&calcFlags.jobLevel, "jenjang", "", "Jenjang, current or legacy key")
	calcCreditCmd.Flags().StringVar(&calcFlags.start, "start", "", "Period start (YYYY-MM-DD)")
	calcCreditCmd.Flags().StringVar(&calcFlags.end, "end", "", "Period end (YYYY-MM-DD)")
	calcCreditCmd.Flags().StringVar(&calcFlags.policy, "policy", "konversi", "konversi|akumulasi|penetapan|form_entry|prorated")
	calcCreditCmd.MarkFlagRequired("predikat")
	calcCreditCmd.MarkFlagRequired("jenjang")

	calcTargetCmd.Flags().StringVar(&calcFlags.grade, "golongan", "", "Current golongan, e.g. III/a")
	calcTargetCmd.Flags().StringVar(&calcFlags.total, "total", "0", "Accumulated credit")
	calcTargetCmd.MarkFlagRequired("golongan")

	calcEducationCmd.Flags().StringVar(&calcFlags.grade, "golongan", "", "Current golongan")
	calcEducationCmd.Flags().StringVar(&calcFlags.level, "jenjang", "", "Education level, used when the golongan is unknown")

	calcMonthsCmd.Flags().StringVar(&calcFlags.start, "start", "", "Period start")
	calcMonthsCmd.Flags().StringVar(&calcFlags.end, "end", "", "Period end")
	calcMonthsCmd.Flags().StringVar(&calcFlags.months, "rule", "inclusive", "inclusive|continuous")

	calcCmd.AddCommand(calcCreditCmd, calcTargetCmd, calcEducationCmd, calcMonthsCmd)
	rootCmd.AddCommand(calcCmd)
}
