// Package boltstore implements the store interface using bbolt, an
// embedded B+ tree. One bucket holds JSON-encoded model records keyed by
// model ID. Writes are transactional, so a crash mid-write cannot corrupt
// previously committed models.
package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/cognicore/lexmatch/pkg/lexmatch/store"
)

var bucketModels = []byte("models")

// Store implements store.Store backed by bbolt.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) a bbolt database at the given path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketModels)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// modelJSON is the JSON-serializable form of store.Model.
type modelJSON struct {
	ID        string    `json:"id"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
	Record    []byte    `json:"record"`
}

// SaveModel persists a model record.
func (s *Store) SaveModel(ctx context.Context, m store.Model) error {
	if m.ID == "" {
		m.ID = store.NewModelID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(modelJSON(m))
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketModels).Put([]byte(m.ID), data)
	})
}

// GetModel returns a model record by ID.
func (s *Store) GetModel(ctx context.Context, id string) (store.Model, bool, error) {
	var m store.Model
	found := false

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketModels).Get([]byte(id))
		if data == nil {
			return nil
		}
		var mj modelJSON
		if err := json.Unmarshal(data, &mj); err != nil {
			return fmt.Errorf("unmarshal model %s: %w", id, err)
		}
		m = store.Model(mj)
		found = true
		return nil
	})
	return m, found, err
}

// ListModels returns all model records in key order.
func (s *Store) ListModels(ctx context.Context) ([]store.Model, error) {
	var models []store.Model
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketModels).ForEach(func(k, v []byte) error {
			var mj modelJSON
			if err := json.Unmarshal(v, &mj); err != nil {
				return fmt.Errorf("unmarshal model %s: %w", k, err)
			}
			models = append(models, store.Model(mj))
			return nil
		})
	})
	return models, err
}

// DeleteModel removes a model record by ID.
func (s *Store) DeleteModel(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketModels).Delete([]byte(id))
	})
}
