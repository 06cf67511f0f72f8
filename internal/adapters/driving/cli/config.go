package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change configuration",
	Long: `Reads and writes keys of the config file, such as:

  storage.driver            sqlite | bolt | memory
  vector.provider           qdrant | memory
  vector.host, vector.port  Qdrant gRPC endpoint
  embedding.provider        openai | ollama
  embedding.model
  retrieval.top_k
  chunking.strategy         single | overlap
  http.timeout              e.g. 30s
  server.addr
  backends.<tag>.provider   sambanova | anthropic | openai | ollama
  backends.<tag>.model

Secrets are best referenced by environment variable, e.g.
  ragkit config set backends.claude.api_key_env MY_ANTHROPIC_KEY`,
	Annotations: settingsAnnotation,
	RunE:        runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show effective settings",
	Annotations: settingsAnnotation,
	RunE:        runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:         "get [key]",
	Short:       "Print one configuration key",
	Annotations: settingsAnnotation,
	Args:        cobra.ExactArgs(1),
	RunE:        runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:         "set [key] [value]",
	Short:       "Set one configuration key",
	Annotations: settingsAnnotation,
	Args:        cobra.ExactArgs(2),
	RunE:        runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file path",
	Annotations: settingsAnnotation,
	Args:        cobra.NoArgs,
	RunE:        runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Driver: %s\n", settings.Storage.Driver)
	if settings.Storage.DataDir != "" {
		cmd.Printf("  Data dir: %s\n", settings.Storage.DataDir)
	}
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s (%d dimensions)\n", settings.Embedding.Model, settings.Embedding.Dimensions)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", secretStatus(settings.Embedding.APIKey))
	}
	cmd.Println()

	cmd.Println("[Vector Index]")
	cmd.Printf("  Provider: %s\n", settings.VectorIndex.Provider)
	if settings.VectorIndex.Provider == domain.VectorProviderQdrant {
		cmd.Printf("  Endpoint: %s:%d (tls: %t)\n", settings.VectorIndex.Host, settings.VectorIndex.Port, settings.VectorIndex.UseTLS)
	}
	cmd.Printf("  Dimensions: %d, metric: %s\n", settings.VectorIndex.Dimensions, settings.VectorIndex.Metric)
	cmd.Println()

	cmd.Println("[Backends]")
	for _, b := range settings.Backends {
		status := "configured"
		if !b.IsConfigured() {
			status = "not configured"
		}
		cmd.Printf("  %s: %s %s (%s)\n", b.Tag, b.Provider, b.Model, status)
		if b.Provider.RequiresAPIKey() {
			cmd.Printf("    API Key: %s\n", secretStatus(b.APIKey))
		}
	}
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Chunking: %s (max %d chars)\n", settings.Chunking.Strategy, settings.Chunking.MaxChars)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.ServerAddr)
	cmd.Printf("  Provider timeout: %s\n", settings.HTTP.Timeout)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Println(warningStyle.Render("Problems:"))
		for _, line := range strings.Split(err.Error(), "\n") {
			cmd.Printf("  - %s\n", line)
		}
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	value, ok := settingsService.Lookup(args[0])
	if !ok {
		return fmt.Errorf("%w: key %q is not set", domain.ErrNotFound, args[0])
	}
	if isSecretKey(args[0]) {
		if s, isString := value.(string); isString {
			value = maskAPIKey(s)
		}
	}
	cmd.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], parseValue(args[1])
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("%s updated.\n", key)

	if err := settingsService.Validate(); err != nil {
		cmd.Println(warningStyle.Render("Note: the configuration has problems:"))
		cmd.Println(err.Error())
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	cmd.Println(settingsService.Path())
	return nil
}

// parseValue keeps numbers and booleans typed in the config file.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, ".api_key")
}

func secretStatus(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
