// Package store persists trained parser records. Backends hold opaque
// serialized records; the matching semantics live entirely in the record,
// so a model loaded from any backend behaves identically to the instance
// that was saved.
package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Model is one stored parser record.
type Model struct {
	ID        string
	Language  string
	CreatedAt time.Time
	Record    []byte
}

// Store is the interface for persisting and retrieving trained models.
type Store interface {
	Close() error

	SaveModel(ctx context.Context, m Model) error
	GetModel(ctx context.Context, id string) (Model, bool, error)
	ListModels(ctx context.Context) ([]Model, error)
	DeleteModel(ctx context.Context, id string) error
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewModelID returns a fresh lexically sortable model id.
func NewModelID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}
