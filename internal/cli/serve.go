package cli

import (
	"github.com/spf13/cobra"

	"github.com/remitlab/reclaim/internal/api"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the claim pipeline over HTTP",
	Long: `Serve exposes the pipeline as a REST API:
  GET  /health          health check
  POST /process-claims  multipart upload of both source files
  GET  /analyze-claim   single-claim analysis via query parameters
  GET  /metrics         metrics over the configured sample files
  GET  /business-rules  current rule tables and score weights

Example:
  reclaim serve --addr :8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	log := buildLogger(cfg)
	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	handler := api.NewHandler(p, cfg, log)
	srv := api.NewServer(handler)

	log.WithField("addr", cfg.Server.Addr).Info("starting claim resubmission API")
	return srv.ListenAndServe()
}
