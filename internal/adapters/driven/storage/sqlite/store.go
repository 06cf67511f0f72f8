package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ragkit/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// FileName is the registry database file inside the data directory.
const FileName = "registry.db"

// Store is the SQLite database holding the model registry.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.ragkit/data/registry.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragkit", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, FileName)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ModelStore returns a ModelStore interface backed by this store.
func (s *Store) ModelStore() driven.ModelStore {
	return &modelStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_models.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Model Store ====================

// modelStore implements driven.ModelStore.
type modelStore struct {
	store *Store
}

var _ driven.ModelStore = (*modelStore)(nil)

// Create inserts a model record. The primary key rejects duplicate names and
// the unique index on index_name rejects names that map to a taken index.
func (s *modelStore) Create(ctx context.Context, model domain.Model) error {
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now()
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO models (name, index_name, api_key_hash, llm_model, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, model.Name, model.IndexName, model.APIKeyHash, model.LLMModel, model.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting model: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking insert: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s (index %s)", domain.ErrDuplicateName, model.Name, model.IndexName)
	}
	return nil
}

// Get retrieves a model by name.
func (s *modelStore) Get(ctx context.Context, name string) (*domain.Model, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT name, index_name, api_key_hash, llm_model, created_at
		FROM models WHERE name = ?
	`, name)

	model, err := scanModel(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning model: %w", err)
	}
	return model, nil
}

// List returns all models ordered by name.
func (s *modelStore) List(ctx context.Context) ([]domain.Model, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT name, index_name, api_key_hash, llm_model, created_at
		FROM models ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying models: %w", err)
	}
	defer rows.Close()

	var models []domain.Model
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning model: %w", err)
		}
		models = append(models, *model)
	}
	return models, rows.Err()
}

// Delete removes a model and returns the removed record.
func (s *modelStore) Delete(ctx context.Context, name string) (*domain.Model, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	row := tx.QueryRowContext(ctx, `
		SELECT name, index_name, api_key_hash, llm_model, created_at
		FROM models WHERE name = ?
	`, name)
	model, err := scanModel(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning model: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM models WHERE name = ?", name); err != nil {
		return nil, fmt.Errorf("deleting model: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return model, nil
}

// Close closes the underlying database.
func (s *modelStore) Close() error {
	return s.store.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanModel(row scanner) (*domain.Model, error) {
	var model domain.Model
	var createdAt sql.NullTime
	if err := row.Scan(&model.Name, &model.IndexName, &model.APIKeyHash, &model.LLMModel, &createdAt); err != nil {
		return nil, err
	}
	if createdAt.Valid {
		model.CreatedAt = createdAt.Time
	}
	return &model, nil
}
