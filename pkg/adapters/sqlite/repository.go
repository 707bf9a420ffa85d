// Package sqlite stores the profile document in an embedded SQLite
// database, one row per profile and one row per version.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/personakit/personakit/pkg/core"
)

const timeLayout = time.RFC3339Nano

// Repository implements core.Repository over a SQLite file.
type Repository struct {
	Path   string
	config Config

	mu       sync.Mutex
	db       *sql.DB
	saves    int
	lastSave *time.Time
}

// Config holds the configuration for the SQLite repository.
type Config struct {
	Path     string
	ReadOnly bool
	Logger   *slog.Logger
}

// NewRepository creates a repository. The database is opened by Initialize
// or on first use.
func NewRepository(config Config) *Repository {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{Path: config.Path, config: config}
}

// Initialize opens the database and applies the schema.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.ReadOnly {
		return nil
	}
	_, err := r.conn(ctx)
	return err
}

// Close releases the database handle.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Repository) conn(ctx context.Context) (*sql.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db != nil {
		return r.db, nil
	}

	if err := os.MkdirAll(filepath.Dir(r.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", r.Path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	r.db = db
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS document_meta (
		key   TEXT PRIMARY KEY,
		value TEXT
	);

	CREATE TABLE IF NOT EXISTS profiles (
		name           TEXT PRIMARY KEY,
		id             TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		type           TEXT NOT NULL DEFAULT 'general',
		created_at     TEXT NOT NULL,
		last_modified  TEXT NOT NULL,
		active_version INTEGER NOT NULL,
		tags           TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS versions (
		profile TEXT NOT NULL REFERENCES profiles(name) ON DELETE CASCADE,
		number  INTEGER NOT NULL,
		body    TEXT NOT NULL,
		PRIMARY KEY (profile, number)
	);

	CREATE TABLE IF NOT EXISTS active_profiles (
		position     INTEGER PRIMARY KEY,
		name         TEXT NOT NULL,
		priority     INTEGER NOT NULL,
		activated_at TEXT NOT NULL
	);
	`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Load assembles the document from its tables. An empty or missing
// database yields (nil, nil).
func (r *Repository) Load(ctx context.Context) (*core.Document, error) {
	if r.config.ReadOnly {
		if _, err := os.Stat(r.Path); errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
	}
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	meta, err := loadMeta(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(meta) == 0 {
		return nil, nil
	}

	doc := &core.Document{
		Profiles:       make(map[string]*core.Profile),
		ActiveProfiles: []core.ActiveProfileRef{},
	}
	if doc.Metadata.CreatedAt, err = parseTime(meta["created_at"]); err != nil {
		return nil, err
	}
	if doc.Metadata.LastModified, err = parseTime(meta["last_modified"]); err != nil {
		return nil, err
	}
	if name, ok := meta["active_profile"]; ok && name != "" {
		doc.ActiveProfile = &name
	}

	if err := loadProfiles(ctx, db, doc); err != nil {
		return nil, err
	}
	if err := loadVersions(ctx, db, doc); err != nil {
		return nil, err
	}
	if err := loadActive(ctx, db, doc); err != nil {
		return nil, err
	}
	doc.Metadata.TotalProfiles = len(doc.Profiles)
	return doc, nil
}

func loadMeta(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM document_meta`)
	if err != nil {
		return nil, fmt.Errorf("query meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k string
		var v sql.NullString
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v.String
	}
	return meta, rows.Err()
}

func loadProfiles(ctx context.Context, db *sql.DB, doc *core.Document) error {
	rows, err := db.QueryContext(ctx,
		`SELECT name, id, description, type, created_at, last_modified, active_version, tags FROM profiles`)
	if err != nil {
		return fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p core.Profile
		var createdAt, lastModified, tags string
		if err := rows.Scan(&p.Name, &p.ID, &p.Description, &p.Type, &createdAt, &lastModified, &p.ActiveVersion, &tags); err != nil {
			return err
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		if p.LastModified, err = parseTime(lastModified); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
			return fmt.Errorf("profile %s tags: %w", p.Name, err)
		}
		p.Versions = make(map[int]*core.Version)
		doc.Profiles[p.Name] = &p
	}
	return rows.Err()
}

func loadVersions(ctx context.Context, db *sql.DB, doc *core.Document) error {
	rows, err := db.QueryContext(ctx, `SELECT profile, number, body FROM versions`)
	if err != nil {
		return fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var profile, body string
		var n int
		if err := rows.Scan(&profile, &n, &body); err != nil {
			return err
		}
		p, ok := doc.Profiles[profile]
		if !ok {
			continue
		}
		var v core.Version
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			return fmt.Errorf("profile %s version %d: %w", profile, n, err)
		}
		v.Version = n
		p.Versions[n] = &v
	}
	return rows.Err()
}

func loadActive(ctx context.Context, db *sql.DB, doc *core.Document) error {
	rows, err := db.QueryContext(ctx,
		`SELECT name, priority, activated_at FROM active_profiles ORDER BY position`)
	if err != nil {
		return fmt.Errorf("query active profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref core.ActiveProfileRef
		var activatedAt string
		if err := rows.Scan(&ref.Name, &ref.Priority, &activatedAt); err != nil {
			return err
		}
		if ref.ActivatedAt, err = parseTime(activatedAt); err != nil {
			return err
		}
		doc.ActiveProfiles = append(doc.ActiveProfiles, ref)
	}
	return rows.Err()
}

// Save replaces every table's content with doc in one transaction.
func (r *Repository) Save(ctx context.Context, doc *core.Document) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM active_profiles`,
		`DELETE FROM versions`,
		`DELETE FROM profiles`,
		`DELETE FROM document_meta`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear tables: %w", err)
		}
	}

	active := ""
	if doc.ActiveProfile != nil {
		active = *doc.ActiveProfile
	}
	meta := map[string]string{
		"created_at":     doc.Metadata.CreatedAt.Format(timeLayout),
		"last_modified":  doc.Metadata.LastModified.Format(timeLayout),
		"active_profile": active,
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO document_meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("insert meta: %w", err)
		}
	}

	for name, p := range doc.Profiles {
		tags, err := json.Marshal(p.Tags)
		if err != nil {
			return err
		}
		if p.Tags == nil {
			tags = []byte("[]")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO profiles (name, id, description, type, created_at, last_modified, active_version, tags)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			name, p.ID, p.Description, p.Type,
			p.CreatedAt.Format(timeLayout), p.LastModified.Format(timeLayout),
			p.ActiveVersion, string(tags))
		if err != nil {
			return fmt.Errorf("insert profile %s: %w", name, err)
		}

		for n, v := range p.Versions {
			body, err := json.Marshal(v)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO versions (profile, number, body) VALUES (?, ?, ?)`,
				name, n, string(body)); err != nil {
				return fmt.Errorf("insert %s version %d: %w", name, n, err)
			}
		}
	}

	for i, ref := range doc.ActiveProfiles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO active_profiles (position, name, priority, activated_at) VALUES (?, ?, ?, ?)`,
			i, ref.Name, ref.Priority, ref.ActivatedAt.Format(timeLayout)); err != nil {
			return fmt.Errorf("insert active profile %s: %w", ref.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	r.mu.Lock()
	now := time.Now()
	r.lastSave = &now
	r.saves++
	r.mu.Unlock()

	r.config.Logger.Debug("sqlite document saved", "path", r.Path, "profiles", len(doc.Profiles),
		"reason", core.ChangeReason(ctx, ""))
	return nil
}

func parseTime(s string) (core.Timestamp, error) {
	if s == "" {
		return core.Timestamp{}, nil
	}
	t, err := core.ParseTimestamp(s)
	if err != nil {
		return core.Timestamp{}, err
	}
	return core.Stamp(t), nil
}

var _ core.Repository = (*Repository)(nil)
