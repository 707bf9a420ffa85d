package platform

import (
	"log/slog"

	"github.com/personakit/personakit/pkg/adapters/fs"
	"github.com/personakit/personakit/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterFS     = "fs"
	AdapterSQLite = "sqlite"
)

// options holds the internal configuration for the profile store.
type options struct {
	repository core.Repository
	logger     *slog.Logger
	adapter    string
	serializer fs.Serializer
	config     map[string]interface{}
}

// Option defines a functional option for configuring the store.
type Option func(*options)

// defaultOptions returns the default configuration. The adapter is left
// empty so Init can pick it from the document extension.
func defaultOptions() *options {
	return &options{
		config: make(map[string]interface{}),
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger for the service and its repository.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository injects a custom storage adapter. When set, the document
// path is only used to place the context file.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithAdapter selects the storage adapter by name ("fs" or "sqlite").
// By default .db, .sqlite and .sqlite3 documents use sqlite and anything
// else the filesystem.
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithSerializer overrides the document format of the filesystem adapter.
func WithSerializer(s fs.Serializer) Option {
	return func(o *options) {
		o.serializer = s
	}
}

// WithAutoInit creates the document directory and, with versioning on,
// initializes a git repository in it.
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.config["auto_init"] = auto
	}
}

// WithVersioning enables or disables committing every rewrite to git.
// When unset, versioning is on only if the document directory is already
// a git work tree.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.config["gitless"] = !enabled
	}
}

// WithReadOnly rejects every save with core.ErrReadOnly and skips
// initialization.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithContextFile sets where sync writes the rendered context. Relative
// paths are resolved against the document directory.
func WithContextFile(path string) Option {
	return func(o *options) {
		o.config["context_file"] = path
	}
}

// WithStatusFile sets where sync writes its status record. Relative paths
// are resolved against the document directory.
func WithStatusFile(path string) Option {
	return func(o *options) {
		o.config["status_file"] = path
	}
}

// WithLocale selects the labels of the rendered context and the tone and
// language of new versions: "en" (default) or "es".
func WithLocale(locale string) Option {
	return func(o *options) {
		o.config["locale"] = locale
	}
}

// WithFileMode sets the permissions of the written document.
func WithFileMode(mode uint32) Option {
	return func(o *options) {
		o.config["file_mode"] = mode
	}
}
