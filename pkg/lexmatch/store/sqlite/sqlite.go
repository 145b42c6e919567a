package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/lexmatch/pkg/lexmatch/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and initializes the
// schema.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS models (
	id TEXT PRIMARY KEY,
	language TEXT NOT NULL,
	created_at TEXT NOT NULL,
	record BLOB NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveModel inserts or replaces a model record.
func (s *sqliteStore) SaveModel(ctx context.Context, m store.Model) error {
	if m.ID == "" {
		m.ID = store.NewModelID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	// A nil slice binds as SQL NULL; the column is NOT NULL.
	record := m.Record
	if record == nil {
		record = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO models (id, language, created_at, record)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			language = excluded.language,
			created_at = excluded.created_at,
			record = excluded.record
	`, m.ID, m.Language, m.CreatedAt.Format(time.RFC3339Nano), record)
	return err
}

// GetModel returns a model record by ID.
func (s *sqliteStore) GetModel(ctx context.Context, id string) (store.Model, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, language, created_at, record FROM models WHERE id = ?
	`, id)

	m, err := scanModel(row)
	if err == sql.ErrNoRows {
		return store.Model{}, false, nil
	}
	if err != nil {
		return store.Model{}, false, err
	}
	return m, true, nil
}

// ListModels returns all model records ordered by ID.
func (s *sqliteStore) ListModels(ctx context.Context) ([]store.Model, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, language, created_at, record FROM models ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var models []store.Model
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, rows.Err()
}

// DeleteModel removes a model record by ID.
func (s *sqliteStore) DeleteModel(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM models WHERE id = ?`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanModel(row rowScanner) (store.Model, error) {
	var m store.Model
	var createdAt string
	if err := row.Scan(&m.ID, &m.Language, &createdAt, &m.Record); err != nil {
		return store.Model{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return store.Model{}, err
	}
	m.CreatedAt = ts
	return m, nil
}
