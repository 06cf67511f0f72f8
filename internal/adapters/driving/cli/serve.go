package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragkit/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/ragkit/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the JSON API for ingestion, listing, querying and deletion.

Endpoints:
  POST   /api/upload, /api/models         multipart: modelName, llmModel, ingestionType, file | url
  GET    /api/models
  GET    /api/models/{modelName}
  POST   /api/models/{modelName}/query    header x-api-key, body {"message": "..."}
  DELETE /api/models/{modelName}
  DELETE /api/deletion                    body {"modelName": "..."}
  GET    /healthz

Prompt files are reloaded when edited.`,
	Annotations: appAnnotation,
	Args:        cobra.NoArgs,
	RunE:        runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :3000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := requireApp("ingestion", ingestionService); err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		addr = settings.ServerAddr
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Ingestion: ingestionService,
		Query:     queryService,
		Models:    modelService,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if watchPrompts != nil {
		go func() {
			if err := watchPrompts(ctx); err != nil {
				logger.Warn("prompt watcher stopped: %v", err)
			}
		}()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "API listening on %s\n", addr)
	return server.Run(ctx, addr)
}
