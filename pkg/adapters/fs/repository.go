// Package fs stores the profile document as a single JSON or YAML file,
// optionally versioned with git.
package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/personakit/personakit/pkg/core"
	"github.com/personakit/personakit/pkg/git"
)

// DefaultCommitMessage is used when a save carries no change reason.
const DefaultCommitMessage = "chore(profiles): update document"

// Repository implements core.Repository over one document file.
type Repository struct {
	Path       string
	git        *git.Client
	config     Config
	serializer Serializer

	mu            sync.RWMutex
	watcherActive bool
	lastSave      *time.Time
	saves         int
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	// Path is the document file, e.g. "bot_profiles.json".
	Path     string
	AutoInit bool
	// Gitless disables committing each rewrite.
	Gitless  bool
	ReadOnly bool
	Logger   *slog.Logger
	// Serializer overrides the format chosen from the file extension.
	Serializer Serializer
	// FileMode of the written document. Defaults to 0644.
	FileMode os.FileMode
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.FileMode == 0 {
		config.FileMode = 0644
	}
	serializer := config.Serializer
	if serializer == nil {
		serializer = SerializerFor(config.Path)
	}
	return &Repository{
		Path:       config.Path,
		git:        git.NewClient(filepath.Dir(config.Path), config.Logger),
		config:     config,
		serializer: serializer,
	}
}

// Dir returns the directory holding the document.
func (r *Repository) Dir() string {
	return filepath.Dir(r.Path)
}

// Initialize creates the document directory and, when versioning is on,
// makes sure it is a git work tree.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.ReadOnly {
		return nil
	}
	if err := os.MkdirAll(r.Dir(), 0755); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}
	if r.config.Gitless {
		return nil
	}

	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}
	if !r.git.IsRepo() {
		if !r.config.AutoInit {
			return fmt.Errorf("path is not a git repository: %s", r.Dir())
		}
		if err := r.git.Init(); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
		r.config.Logger.Info("initialized git repository", "dir", r.Dir())
	}

	mod, err := r.ensureIgnore()
	if err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}
	if mod {
		unlock, err := r.git.Lock(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire git lock: %w", err)
		}
		defer unlock()
		if err := r.git.Add(".gitignore"); err != nil {
			return fmt.Errorf("failed to add .gitignore: %w", err)
		}
		if err := r.git.Commit("chore: ignore personakit lock and temp files"); err != nil {
			return fmt.Errorf("failed to commit .gitignore: %w", err)
		}
	}
	return nil
}

// ensureIgnore keeps the lock and temp files out of version control.
func (r *Repository) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(r.Dir(), ".gitignore")
	entries := []string{git.LockFile, TempFilePrefix + "*"}

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !bytes.HasSuffix(content, []byte("\n")) {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}
	if _, err := f.WriteString(strings.Join(missing, "\n") + "\n"); err != nil {
		return false, err
	}
	return true, nil
}

// Load reads and parses the document. A missing or empty file yields
// (nil, nil) so the caller starts with a fresh document.
func (r *Repository) Load(ctx context.Context) (*core.Document, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", r.Path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	doc, err := r.serializer.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", r.Path, err)
	}
	return doc, nil
}

// Save rewrites the whole document atomically and, when versioning is on,
// commits it with the change reason carried by ctx.
func (r *Repository) Save(ctx context.Context, doc *core.Document) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}

	data, err := r.serializer.Serialize(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}
	if err := os.MkdirAll(r.Dir(), 0755); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}

	if r.config.Gitless {
		if _, err := writeFileAtomic(r.Path, data, r.config.FileMode); err != nil {
			return err
		}
		r.recordSave()
		return nil
	}

	unlock, err := r.git.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	written, err := writeFileAtomic(r.Path, data, r.config.FileMode)
	if err != nil {
		return err
	}
	r.recordSave()
	if !written {
		r.config.Logger.Debug("document unchanged, nothing to commit", "path", r.Path)
		return nil
	}

	name := filepath.Base(r.Path)
	changed, err := r.git.HasChanges(name)
	if err != nil {
		return fmt.Errorf("failed to inspect git status: %w", err)
	}
	if !changed {
		return nil
	}
	if err := r.git.Add(name); err != nil {
		return fmt.Errorf("failed to stage %s: %w", name, err)
	}
	if err := r.git.Commit(core.ChangeReason(ctx, DefaultCommitMessage)); err != nil {
		return fmt.Errorf("failed to commit %s: %w", name, err)
	}
	return nil
}

// History returns the last n commit messages of the document, newest first.
// It is empty in gitless mode.
func (r *Repository) History(n int) ([]string, error) {
	if r.config.Gitless {
		return nil, nil
	}
	return r.git.Log(n)
}

var _ core.Repository = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
