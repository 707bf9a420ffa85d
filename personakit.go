package personakit

import (
	"context"
	"log/slog"

	"github.com/personakit/personakit/internal/platform"
	"github.com/personakit/personakit/pkg/adapters/fs"
	"github.com/personakit/personakit/pkg/core"
)

// --- Types ---

// Service is the profile store.
type Service = core.Service

// Profile, Version and the other records of the persisted document.
type (
	Document         = core.Document
	Profile          = core.Profile
	Version          = core.Version
	DocumentEntry    = core.DocumentEntry
	KnowledgeEntry   = core.KnowledgeEntry
	ActiveProfileRef = core.ActiveProfileRef
)

// ContextFile is the pre-rendered context read by bot processes.
type ContextFile = fs.ContextFile

// --- Configuration ---

// Option defines a functional option for configuring the store.
type Option = platform.Option

// Config is the optional YAML configuration file.
type Config = platform.FileConfig

const (
	DefaultDocument   = platform.DefaultDocument
	DefaultConfigFile = platform.DefaultConfigFile
	EnvDocument       = platform.EnvDocument
)

// WithLogger sets the logger for the service and its repository.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository injects a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithAdapter selects the storage adapter by name ("fs" or "sqlite").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithSerializer overrides the document format of the filesystem adapter.
func WithSerializer(s fs.Serializer) Option {
	return platform.WithSerializer(s)
}

// WithAutoInit creates the document directory and git repository.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithVersioning enables or disables committing every rewrite to git.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithReadOnly rejects every save.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithContextFile sets where the rendered context is written.
func WithContextFile(path string) Option {
	return platform.WithContextFile(path)
}

// WithStatusFile sets where the sync status is written.
func WithStatusFile(path string) Option {
	return platform.WithStatusFile(path)
}

// WithLocale selects the rendered labels and new-version defaults, "en" or "es".
func WithLocale(locale string) Option {
	return platform.WithLocale(locale)
}

// WithFileMode sets the permissions of the written document.
func WithFileMode(mode uint32) Option {
	return platform.WithFileMode(mode)
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	return platform.LoadConfig(path)
}

// ResolveDocument picks the document path from a flag, the environment,
// the config file or the default, in that order.
func ResolveDocument(flag string, cfg *Config) string {
	return platform.ResolveDocument(flag, cfg)
}

// --- Factory ---

// New opens the store at path and loads its document.
func New(path string, opts ...Option) (*core.Service, error) {
	return platform.New(path, opts...)
}

// Init prepares the repository at path without loading it.
func Init(path string, opts ...Option) (core.Repository, error) {
	return platform.Init(path, opts...)
}

// OpenContextFile returns the side-channel files for the store at path.
func OpenContextFile(path string, opts ...Option) ContextFile {
	return platform.ContextFile(path, opts...)
}

// Sync renders the context of svc and writes it to cf. It returns the
// status record that was written.
func Sync(svc *core.Service, cf ContextFile) (fs.SyncStatus, error) {
	st := svc.Stats()
	names := st.ActiveProfiles
	if len(names) == 0 && st.ActiveProfile != "" {
		names = []string{st.ActiveProfile}
	}
	return cf.Write(svc.RenderMultiContext(), names)
}

// --- Semantic Commits ---

const (
	CommitTypeFeat     = core.CommitTypeFeat
	CommitTypeFix      = core.CommitTypeFix
	CommitTypeDocs     = core.CommitTypeDocs
	CommitTypeRefactor = core.CommitTypeRefactor
	CommitTypeChore    = core.CommitTypeChore
)

// FormatChangeReason builds a Conventional Commit message.
func FormatChangeReason(ctype, scope, subject, body string) string {
	return core.FormatChangeReason(ctype, scope, subject, body)
}

// WithChangeReason sets the reason recorded by mutations made with ctx.
func WithChangeReason(ctx context.Context, reason string) context.Context {
	return core.WithChangeReason(ctx, reason)
}
