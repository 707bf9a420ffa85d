// Package exchange moves profiles in and out of the store as JSON and CSV
// files, including the catalog importer that builds a sales profile from a
// product sheet.
//
// Importers never return errors for bad input: they log through the
// store's logger and report ("", false), so an admin surface can show a
// single "import failed" message.
package exchange

import (
	"context"
	"errors"
	"log/slog"

	"github.com/personakit/personakit/pkg/core"
)

// ErrDelimiterCollision is returned in strict mode when a value contains one
// of the CSV field delimiters and would not survive a round trip.
var ErrDelimiterCollision = errors.New("value contains a csv delimiter")

// Store is the part of the profile store the importers and exporters need.
type Store interface {
	Profile(name string) (*core.Profile, bool)
	Profiles() []*core.Profile
	InsertProfile(ctx context.Context, p *core.Profile) (string, error)
	Logger() *slog.Logger
}

var _ Store = (*core.Service)(nil)

// Options tune the CSV writers.
type Options struct {
	// Strict rejects values that contain delimiters instead of writing them
	// as-is with a warning.
	Strict bool
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// insert stores p and reports the final name, logging failures.
func insert(ctx context.Context, store Store, p *core.Profile, source string) (string, bool) {
	name, err := store.InsertProfile(ctx, p)
	if err != nil {
		store.Logger().Warn("import failed", "source", source, "error", err)
		return "", false
	}
	if name != p.Name {
		store.Logger().Info("imported profile renamed", "source", source, "requested", p.Name, "stored", name)
	}
	return name, true
}
