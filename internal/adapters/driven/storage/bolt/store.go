// Package bolt provides a bbolt-backed model registry for single-process deployments.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// FileName is the registry database file inside the data directory.
const FileName = "registry.bolt"

var bucketModels = []byte("models")

// Ensure Store implements the interface.
var _ driven.ModelStore = (*Store)(nil)

// Store keeps model records in a single bbolt bucket keyed by name.
type Store struct {
	db   *bbolt.DB
	path string
}

type modelRecord struct {
	IndexName  string    `json:"index_name"`
	APIKeyHash string    `json:"api_key_hash"`
	LLMModel   string    `json:"llm_model"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewStore opens or creates the bolt file in dataDir.
// If dataDir is empty, defaults to ~/.ragkit/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragkit", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, FileName)
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketModels); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketModels, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Create inserts a model record, rejecting a taken name or index name.
// The checks and the write share one transaction, and bbolt serialises writers.
func (s *Store) Create(_ context.Context, model domain.Model) error {
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now()
	}
	data, err := json.Marshal(modelRecord{
		IndexName:  model.IndexName,
		APIKeyHash: model.APIKeyHash,
		LLMModel:   model.LLMModel,
		CreatedAt:  model.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshalling model: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketModels)
		if b.Get([]byte(model.Name)) != nil {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateName, model.Name)
		}
		err := b.ForEach(func(k, v []byte) error {
			var rec modelRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decoding model %s: %w", k, err)
			}
			if rec.IndexName == model.IndexName {
				return fmt.Errorf("%w: %s (index %s is used by %s)", domain.ErrDuplicateName, model.Name, model.IndexName, k)
			}
			return nil
		})
		if err != nil {
			return err
		}
		return b.Put([]byte(model.Name), data)
	})
}

// Get retrieves a model by name.
func (s *Store) Get(_ context.Context, name string) (*domain.Model, error) {
	var model *domain.Model
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketModels).Get([]byte(name))
		if data == nil {
			return domain.ErrNotFound
		}
		m, err := decode(name, data)
		if err != nil {
			return err
		}
		model = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return model, nil
}

// List returns all models in key order.
func (s *Store) List(_ context.Context) ([]domain.Model, error) {
	var models []domain.Model
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketModels).ForEach(func(k, v []byte) error {
			m, err := decode(string(k), v)
			if err != nil {
				return err
			}
			models = append(models, *m)
			return nil
		})
	})
	return models, err
}

// Delete removes a model and returns the removed record.
func (s *Store) Delete(_ context.Context, name string) (*domain.Model, error) {
	var model *domain.Model
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketModels)
		data := b.Get([]byte(name))
		if data == nil {
			return domain.ErrNotFound
		}
		m, err := decode(name, data)
		if err != nil {
			return err
		}
		model = m
		return b.Delete([]byte(name))
	})
	if err != nil {
		return nil, err
	}
	return model, nil
}

// Close closes the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

func decode(name string, data []byte) (*domain.Model, error) {
	var rec modelRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshalling model %s: %w", name, err)
	}
	return &domain.Model{
		Name:       name,
		IndexName:  rec.IndexName,
		APIKeyHash: rec.APIKeyHash,
		LLMModel:   rec.LLMModel,
		CreatedAt:  rec.CreatedAt,
	}, nil
}
