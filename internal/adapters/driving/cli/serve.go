package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/critic/internal/adapters/driving/rest"
	"github.com/custodia-labs/critic/internal/core/domain"
)

// portSpan is how many ports above the configured one serve will try.
const portSpan = 10

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API",
	Long: `Start an HTTP server exposing prediction and run history.

Routes:
  POST /v1/predict        {"text": "...", "artifact_id": "..."}
  GET  /v1/runs
  GET  /v1/runs/{runId}
  GET  /v1/artifacts
  GET  /healthz

Predictions are throttled by serve.rate_limit and serve.burst. If the
port is taken the next free one above it is used.`,
	Example: `  critic serve
  critic serve --port 9000`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "listen port (default serve.port setting)")
	serveCmd.Flags().String("host", "", "listen address (default all interfaces)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if predictionService == nil {
		return errors.New("prediction service not configured")
	}

	serve := domain.DefaultAppSettings().Serve
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		serve = settings.Serve
	}

	if cmd.Flags().Changed("port") {
		port, err := cmd.Flags().GetInt("port")
		if err != nil {
			return fmt.Errorf("getting port flag: %w", err)
		}
		serve.Port = port
	}
	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return fmt.Errorf("getting host flag: %w", err)
	}

	server, err := rest.NewServer(rest.Ports{
		Prediction: predictionService,
		Runs:       runService,
		Artifacts:  artifactService,
	}, rest.Limits{Rate: serve.RateLimit, Burst: serve.Burst})
	if err != nil {
		return err
	}

	l, err := rest.Listen(host, serve.Port, portSpan)
	if err != nil {
		return err
	}

	cmd.Printf("REST API listening on http://%s\n", l.Addr())
	return server.Serve(cmd.Context(), l)
}
