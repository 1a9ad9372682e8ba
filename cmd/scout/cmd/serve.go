package cmd

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/scouthq/scout/internal/api"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve the fetch engine over HTTP on $PORT (default 8080):

  GET /healthz
  GET /api/sources
  GET /api/fetch?q=...&sources=...&limit=...&depth=...
  GET /api/rank?q=...&query_type=...
  GET /api/doctor`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Structured logs in server mode.
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetLevel(logrus.InfoLevel)
		if cfg.Debug {
			logrus.SetLevel(logrus.DebugLevel)
		}
		if servePort != "" {
			cfg.Port = servePort
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := api.NewServer(cfg, registry, service)
		if err := server.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (overrides $PORT)")
	rootCmd.AddCommand(serveCmd)
}
