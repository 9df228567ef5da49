package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/warp/angka-kredit/api"
	"github.com/warp/angka-kredit/render"
)

var port int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server.

On SIGINT/SIGTERM the server stops accepting connections, waits up to 30s
for active requests, then closes the database.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if port != 0 {
			a.cfg.Port = port
		}

		tmpl, err := render.LoadTemplate(a.cfg.TemplateFile)
		if err != nil {
			return err
		}

		handler := api.NewHandler(a.svc, api.Options{
			Logger:     a.log,
			Template:   tmpl,
			ReportCity: a.cfg.ReportCity,
		})
		router := api.NewRouter(handler, a.cfg.CORSOrigins)

		srv := &http.Server{
			Addr:         a.cfg.Addr(),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			a.log.WithFields(logrus.Fields{
				"addr": srv.Addr,
				"db":   a.cfg.DBPath,
			}).Info("server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return err
		case <-quit:
		}

		a.log.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
		a.log.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port, overrides PORT")
	rootCmd.AddCommand(serveCmd)
}
