package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/personakit/personakit/pkg/core"
)

// ExportProfileJSON writes the whole profile, every version included.
func ExportProfileJSON(w io.Writer, p *core.Profile) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// DecodeProfileJSON reads a profile written by ExportProfileJSON.
func DecodeProfileJSON(r io.Reader) (*core.Profile, error) {
	var p core.Profile
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("invalid profile json: %w", err)
	}
	if p.Name == "" {
		return nil, errors.New("invalid profile json: missing name")
	}
	if len(p.Versions) == 0 {
		return nil, fmt.Errorf("invalid profile json: %q has no versions", p.Name)
	}
	return &p, nil
}

// ImportProfileJSON decodes a profile and stores it, renaming it with a
// numeric suffix when the name is taken.
func ImportProfileJSON(ctx context.Context, store Store, r io.Reader) (string, bool) {
	p, err := DecodeProfileJSON(r)
	if err != nil {
		store.Logger().Warn("json import failed", "error", err)
		return "", false
	}
	return insert(ctx, store, p, "json")
}

// ExportProfileFile writes profile name to path. The format follows the
// extension: .csv for the single-profile CSV, JSON otherwise.
func ExportProfileFile(store Store, name, path string, opts Options) error {
	p, ok := store.Profile(name)
	if !ok {
		return fmt.Errorf("%w: %q", core.ErrProfileNotFound, name)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		err = WriteProfileCSV(f, p, opts)
	} else {
		err = ExportProfileJSON(f, p)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// ImportProfileFile imports one profile from a .json or single-profile .csv
// file.
func ImportProfileFile(ctx context.Context, store Store, path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		store.Logger().Warn("import failed", "path", path, "error", err)
		return "", false
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ImportProfileCSV(ctx, store, f)
	default:
		return ImportProfileJSON(ctx, store, f)
	}
}
