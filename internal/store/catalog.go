// Package store keeps a SQLite catalog of trait, impl, constant and type
// declarations imported from scenario files, so later scenarios can refer
// to them without restating them.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/fulfill/internal/scenario"

	_ "modernc.org/sqlite"
)

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// Catalog is the SQLite declaration catalog.
type Catalog struct {
	db *sql.DB
}

// Batch is one import.
type Batch struct {
	ID         string
	Source     string
	ImportedAt string
	Impls      int
}

// Open opens or creates the catalog at path and runs migrations.
// Creates the parent directory if it does not exist.
func Open(path string) (*Catalog, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	c := &Catalog{db: db}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) migrate() error {
	var tableCount int
	err := c.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableCount == 0 {
		if _, err := c.db.Exec(schemaV1); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := c.db.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersion); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}

	var v int
	err = c.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("catalog has an empty schema_version table")
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v != schemaVersion {
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

// Import stores the declarations of s under a new batch and returns the
// batch id. Declarations already in the catalog are replaced.
func (c *Catalog) Import(s *scenario.Scenario, source string) (string, error) {
	// Decode once so nothing malformed reaches the catalog.
	if _, err := s.Declarations(); err != nil {
		return "", err
	}

	batchID := uuid.NewString()
	tx, err := c.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("INSERT INTO batches(id, source, imported_at) VALUES(?, ?, ?)", batchID, source, nowUTC()); err != nil {
		return "", fmt.Errorf("insert batch: %w", err)
	}
	for _, t := range s.Traits {
		if err := insertPayload(tx, "INSERT OR REPLACE INTO traits(name, batch_id, payload) VALUES(?, ?, ?)", t, t.Name, batchID); err != nil {
			return "", fmt.Errorf("trait %s: %w", t.Name, err)
		}
	}
	for _, impl := range s.Impls {
		payload, err := yaml.Marshal(impl)
		if err != nil {
			return "", fmt.Errorf("impl %s: %w", impl.ID, err)
		}
		if _, err := tx.Exec("INSERT OR REPLACE INTO impls(id, trait, batch_id, payload) VALUES(?, ?, ?, ?)",
			impl.ID, impl.Trait, batchID, string(payload)); err != nil {
			return "", fmt.Errorf("impl %s: %w", impl.ID, err)
		}
	}
	for _, ct := range s.Consts {
		if err := insertPayload(tx, "INSERT OR REPLACE INTO consts(id, batch_id, payload) VALUES(?, ?, ?)", ct, ct.ID, batchID); err != nil {
			return "", fmt.Errorf("const %s: %w", ct.ID, err)
		}
	}
	for _, b := range s.TypeBounds {
		if err := insertPayload(tx, "INSERT OR REPLACE INTO type_bounds(name, batch_id, payload) VALUES(?, ?, ?)", b, b.Name, batchID); err != nil {
			return "", fmt.Errorf("type %s: %w", b.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit import: %w", err)
	}
	return batchID, nil
}

func insertPayload(tx *sql.Tx, query string, v any, key, batchID string) error {
	payload, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = tx.Exec(query, key, batchID, string(payload))
	return err
}

// Specs returns every stored declaration as a declaration-only scenario.
// Rows are ordered by key.
func (c *Catalog) Specs() (*scenario.Scenario, error) {
	s := &scenario.Scenario{}
	if err := loadPayloads(c.db, "SELECT payload FROM traits ORDER BY name", &s.Traits); err != nil {
		return nil, fmt.Errorf("load traits: %w", err)
	}
	if err := loadPayloads(c.db, "SELECT payload FROM impls ORDER BY id", &s.Impls); err != nil {
		return nil, fmt.Errorf("load impls: %w", err)
	}
	if err := loadPayloads(c.db, "SELECT payload FROM consts ORDER BY id", &s.Consts); err != nil {
		return nil, fmt.Errorf("load consts: %w", err)
	}
	if err := loadPayloads(c.db, "SELECT payload FROM type_bounds ORDER BY name", &s.TypeBounds); err != nil {
		return nil, fmt.Errorf("load type bounds: %w", err)
	}
	return s, nil
}

func loadPayloads[T any](db *sql.DB, query string, out *[]T) error {
	rows, err := db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return err
		}
		var v T
		if err := yaml.Unmarshal([]byte(payload), &v); err != nil {
			return err
		}
		*out = append(*out, v)
	}
	return rows.Err()
}

// Declarations returns every stored declaration, decoded.
func (c *Catalog) Declarations() (*scenario.Declarations, error) {
	s, err := c.Specs()
	if err != nil {
		return nil, err
	}
	return s.Declarations()
}

// Batches lists imports, oldest first, with the number of impls each one
// still owns.
func (c *Catalog) Batches() ([]Batch, error) {
	rows, err := c.db.Query(`
		SELECT b.id, b.source, b.imported_at, COUNT(i.id)
		FROM batches b LEFT JOIN impls i ON i.batch_id = b.id
		GROUP BY b.id
		ORDER BY b.imported_at, b.rowid`)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var out []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.Source, &b.ImportedAt, &b.Impls); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
