// Package app wires configuration, driven adapters and core services into
// one running application shared by the CLI, HTTP API and MCP server.
package app

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragkit/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragkit/internal/adapters/driven/storage/bolt"
	"github.com/custodia-labs/ragkit/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragkit/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/core/services"
	"github.com/custodia-labs/ragkit/internal/logger"
	"github.com/custodia-labs/ragkit/internal/normalisers/html"
	"github.com/custodia-labs/ragkit/internal/normalisers/pdf"
	"github.com/custodia-labs/ragkit/internal/postprocessors"
)

// App holds the wired services and the resources they own.
type App struct {
	Settings domain.AppSettings

	Ingestion *services.IngestionService
	Query     *services.QueryService
	Models    *services.ModelService

	Prompts *file.PromptStore
	AI      *ai.InitResult

	store driven.ModelStore
}

// MemoryConfig is the --config value that keeps settings in memory only.
// Every setting then comes from defaults and the environment.
const MemoryConfig = ":memory:"

// OpenSettings opens the config file at path, or the default
// ~/.ragkit/config.toml when path is empty, and returns a settings service over it.
func OpenSettings(path string) (*services.SettingsService, error) {
	var (
		store driven.ConfigStore
		err   error
	)
	switch path {
	case MemoryConfig:
		store = memory.NewConfigStore()
	case "":
		store, err = file.NewConfigStore("")
	default:
		store, err = file.OpenConfigFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return services.NewSettingsService(store), nil
}

// OpenModelStore opens the registry store selected by settings.
func OpenModelStore(settings domain.StorageSettings) (driven.ModelStore, error) {
	switch settings.Driver {
	case domain.StorageSQLite, "":
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite registry: %w", err)
		}
		logger.Debug("registry: sqlite at %s", store.Path())
		return store.ModelStore(), nil
	case domain.StorageBolt:
		store, err := bolt.NewStore(settings.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open bolt registry: %w", err)
		}
		logger.Debug("registry: bolt at %s", store.Path())
		return store, nil
	case domain.StorageMemory:
		logger.Warn("registry: in-memory store, models are lost on exit")
		return memory.NewModelStore(), nil
	default:
		return nil, fmt.Errorf("%w: storage driver %q", domain.ErrUnsupportedType, settings.Driver)
	}
}

// New builds every adapter and service from settings.
func New(settings domain.AppSettings) (*App, error) {
	logger.Section("Startup")

	chunker, err := postprocessors.NewDefaultRegistry().Build(settings.Chunking)
	if err != nil {
		return nil, err
	}

	prompts, err := file.NewPromptStore(settings.PromptDir)
	if err != nil {
		return nil, err
	}

	store, err := OpenModelStore(settings.Storage)
	if err != nil {
		return nil, err
	}

	aiResult, err := ai.Initialise(settings)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("initialise providers: %w", err)
	}
	for _, w := range aiResult.Warnings {
		logger.Warn("%s", w)
	}
	logger.Debug("backends: %v", aiResult.Completions.Tags())

	registry := services.NewRegistry(store)
	a := &App{
		Settings: settings,
		Prompts:  prompts,
		AI:       aiResult,
		store:    store,
	}
	a.Ingestion = services.NewIngestionService(services.IngestionDeps{
		Registry: registry,
		Index:    aiResult.VectorIndex,
		Embedder: aiResult.EmbeddingService,
		Router:   aiResult.Completions,
		PDF:      pdf.New(),
		Web:      html.New(html.Config{Timeout: settings.HTTP.Timeout}),
		Chunker:  chunker,
	})
	a.Query = services.NewQueryService(
		registry,
		aiResult.EmbeddingService,
		aiResult.VectorIndex,
		aiResult.Completions,
		prompts,
		settings.Retrieval.TopK,
	)
	a.Models = services.NewModelService(registry, aiResult.VectorIndex)

	return a, nil
}

// WatchPrompts reloads prompt files on change until ctx is cancelled.
func (a *App) WatchPrompts(ctx context.Context) error {
	watcher, err := file.NewPromptWatcher(a.Prompts, a.Prompts.Dir())
	if err != nil {
		return err
	}
	return watcher.Run(ctx, func(name string) {
		logger.Info("prompt %q reloaded", name)
	})
}

// Check pings every provider the app depends on.
func (a *App) Check(ctx context.Context) []ai.Check {
	return ai.Validate(ctx, a.AI)
}

// Close releases the providers and the registry store.
func (a *App) Close() error {
	a.AI.Close()
	return a.store.Close()
}
