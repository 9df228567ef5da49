/*
main.go - Application entry point

PURPOSE:
  Command-line front end of the angka kredit engine. "serve" runs the HTTP
  API; the other commands run single operations against the same store.

COMMANDS:
  serve                         Start the HTTP server
  calc credit|target|months     Stateless calculations
  report <kind> <id>            Write a konversi, akumulasi or penetapan document
  import <file.xlsx>            Upsert employees from a workbook
  export <file.xlsx>            Write all employees to a workbook
  template <file.xlsx>          Write an empty import workbook
  seed <scenario>               Reset the store and load demo data
  recalculate                   Re-derive stored credits
  tables                        Print the active lookup tables as JSON

CONFIGURATION:
  Environment variables (see config package), optionally from .env and
  .env.local. --db overrides DB_PATH.

EXAMPLES:
  angkakredit serve
  angkakredit --db=":memory:" seed kenaikan-pangkat
  angkakredit calc credit --predikat "Sangat Baik" --jenjang "KEAHLIAN - AHLI MUDA" \
      --start 2024-01-01 --end 2024-12-31
  angkakredit report penetapan 5f0c... -o penetapan.pdf

SEE ALSO:
  - serve.go: Server startup and graceful shutdown
  - api/server.go: Router configuration
  - config/config.go: Environment variables
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/warp/angka-kredit/config"
	"github.com/warp/angka-kredit/credit"
	"github.com/warp/angka-kredit/factory"
	"github.com/warp/angka-kredit/records"
	"github.com/warp/angka-kredit/store/sqlite"
)

var (
	dbPath   string
	envFiles []string
)

var rootCmd = &cobra.Command{
	Use:           "angkakredit",
	Short:         "Angka kredit engine for civil-servant performance credit",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path, overrides DB_PATH")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", config.DefaultEnvFiles, "Env files to load when present")
}

// app bundles what every command needs.
type app struct {
	cfg   *config.Config
	log   *logrus.Logger
	store *sqlite.Store
	svc   *records.Service
}

// openApp loads configuration, opens the store and builds the service.
// Callers must Close the returned app.
func openApp() (*app, error) {
	cfg, err := config.LoadFiles(envFiles...)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	log := cfg.Logger()

	tables, err := factory.NewTableFactory().LoadFile(cfg.TablesFile)
	if err != nil {
		return nil, err
	}
	if cfg.TablesFile != "" {
		log.WithField("file", cfg.TablesFile).Info("loaded lookup tables")
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	calc := credit.NewCalculator(tables, credit.KonversiPolicy)
	return &app{
		cfg:   cfg,
		log:   log,
		store: store,
		svc:   records.NewService(store, calc),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
