// Package cli provides the ragkit command line interface built on cobra.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragkit/internal/app"
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	envFile    string
	verbose    bool
)

// Driving ports used by the commands. setup fills them from the config
// file; tests assign fakes directly.
var (
	settingsService  driving.SettingsService
	ingestionService driving.IngestionService
	queryService     driving.QueryService
	modelService     driving.ModelService

	// checkProviders pings every configured provider.
	checkProviders func(ctx context.Context) []ai.Check

	// watchPrompts hot-reloads prompt files until ctx is done.
	watchPrompts func(ctx context.Context) error
)

// running is the application built for the current command, if any.
var running *app.App

// openApp builds the application from settings.
var openApp = app.New

// Command annotations declaring what setup must prepare.
const (
	needsSettings = "needs-settings"
	needsApp      = "needs-app"
)

var (
	settingsAnnotation = map[string]string{needsSettings: "true"}
	appAnnotation      = map[string]string{needsSettings: "true", needsApp: "true"}
)

var rootCmd = &cobra.Command{
	Use:   "ragkit",
	Short: "Ask questions of your documents",
	Long: `ragkit turns a PDF or a web page into a named model with its own API key,
then answers questions about it using retrieval-augmented generation.

Configuration is read from ~/.ragkit/config.toml (or --config), and provider
secrets from the environment or a .env file.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.ragkit/config.toml, \":memory:\" for defaults only)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file with provider secrets (default .env if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command and releases whatever it opened.
func Execute(ctx context.Context, v string) error {
	if v != "" {
		version = v
	}
	defer closeApp()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if err := loadEnv(envFile); err != nil {
		return err
	}

	if cmd.Annotations[needsSettings] == "" {
		return nil
	}

	if settingsService == nil {
		svc, err := app.OpenSettings(configPath)
		if err != nil {
			return err
		}
		settingsService = svc
	}

	if cmd.Annotations[needsApp] == "" || queryService != nil {
		return nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	a, err := openApp(*settings)
	if err != nil {
		return err
	}

	running = a
	ingestionService = a.Ingestion
	queryService = a.Query
	modelService = a.Models
	checkProviders = a.Check
	watchPrompts = a.WatchPrompts
	return nil
}

// loadEnv loads a dotenv file without overriding variables already set.
// The default .env is optional; an explicit --env-file must exist.
func loadEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func closeApp() {
	if running == nil {
		return
	}
	if err := running.Close(); err != nil {
		logger.Warn("shutdown: %v", err)
	}
	running = nil
}

// requireApp returns an error naming the missing service.
func requireApp(name string, svc any) error {
	if svc == nil {
		return fmt.Errorf("%s service not configured", name)
	}
	return nil
}

// exitHint adds a next step to the errors a user can act on.
func exitHint(err error) error {
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		return fmt.Errorf("%w (set the provider's API key in the environment or config)", err)
	case errors.Is(err, domain.ErrDuplicateName):
		return fmt.Errorf("%w (choose another name or delete the existing model)", err)
	default:
		return err
	}
}
