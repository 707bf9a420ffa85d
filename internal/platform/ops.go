package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/personakit/personakit/pkg/adapters/fs"
	"github.com/personakit/personakit/pkg/adapters/sqlite"
	"github.com/personakit/personakit/pkg/core"
)

// AdapterFor returns the adapter used for a document path when none is
// configured explicitly.
func AdapterFor(uri string) string {
	switch strings.ToLower(filepath.Ext(uri)) {
	case ".db", ".sqlite", ".sqlite3":
		return AdapterSQLite
	default:
		return AdapterFS
	}
}

// Init prepares the store at uri and returns its repository.
// The uri is the document file for "fs" and the database file for "sqlite".
func Init(uri string, opts ...Option) (core.Repository, error) {
	o := applyOptions(opts)

	if o.repository != nil {
		return o.repository, nil
	}
	if uri == "" {
		return nil, fmt.Errorf("document path is required")
	}

	adapter := o.adapter
	if adapter == "" {
		adapter = AdapterFor(uri)
	}

	var repo core.Repository
	switch adapter {
	case AdapterFS:
		repo = initFS(uri, o)
	case AdapterSQLite:
		repo = initSQLite(uri, o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", adapter)
	}

	if err := repo.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

// initFS handles the initialization logic for the filesystem adapter.
func initFS(path string, o *options) core.Repository {
	autoInit, _ := o.config["auto_init"].(bool)
	readOnly, _ := o.config["read_only"].(bool)
	mode, _ := o.config["file_mode"].(uint32)

	gitless, explicit := o.config["gitless"].(bool)
	if !explicit {
		// Versioned only when the directory is already a work tree.
		_, err := os.Stat(filepath.Join(filepath.Dir(path), ".git"))
		gitless = err != nil
		if gitless && o.logger != nil {
			o.logger.Debug("auto-detected gitless mode", "reason", ".git missing")
		}
	}

	return fs.NewRepository(fs.Config{
		Path:       path,
		AutoInit:   autoInit,
		Gitless:    gitless,
		ReadOnly:   readOnly,
		Logger:     o.logger,
		Serializer: o.serializer,
		FileMode:   os.FileMode(mode),
	})
}

func initSQLite(path string, o *options) core.Repository {
	readOnly, _ := o.config["read_only"].(bool)
	if _, versioned := o.config["gitless"]; versioned && o.logger != nil {
		o.logger.Debug("versioning option ignored by sqlite adapter")
	}
	return sqlite.NewRepository(sqlite.Config{
		Path:     path,
		ReadOnly: readOnly,
		Logger:   o.logger,
	})
}

// ContextFile returns the side-channel files for the store at uri.
func ContextFile(uri string, opts ...Option) fs.ContextFile {
	o := applyOptions(opts)
	dir := filepath.Dir(uri)

	cf := fs.NewContextFile(dir)
	if p, _ := o.config["context_file"].(string); p != "" {
		cf.ContextPath = resolveIn(dir, p)
	}
	if p, _ := o.config["status_file"].(string); p != "" {
		cf.StatusPath = resolveIn(dir, p)
	}
	return cf
}

func resolveIn(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
