package exchange

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ImportGlob imports every .json and .csv file matching pattern, which may
// use ** to descend into directories. CSV files are read as single-profile
// sheets when their header is "field,value" and as all-profiles sheets
// otherwise. It returns the stored profile names; only a malformed pattern
// is an error.
func ImportGlob(ctx context.Context, store Store, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
		return nil, fmt.Errorf("invalid glob pattern %q", pattern)
	}
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	var names []string
	for _, path := range matches {
		if ctx.Err() != nil {
			return names, ctx.Err()
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			if name, ok := ImportProfileFile(ctx, store, path); ok {
				names = append(names, name)
			}
		case ".csv":
			names = append(names, importCSVFile(ctx, store, path)...)
		default:
			store.Logger().Debug("glob import skipped file", "path", path)
		}
	}
	return names, nil
}

func importCSVFile(ctx context.Context, store Store, path string) []string {
	single, err := isSingleProfileCSV(path)
	if err != nil {
		store.Logger().Warn("import failed", "path", path, "error", err)
		return nil
	}
	if single {
		if name, ok := ImportProfileFile(ctx, store, path); ok {
			return []string{name}
		}
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		store.Logger().Warn("import failed", "path", path, "error", err)
		return nil
	}
	defer f.Close()
	return ImportProfilesCSV(ctx, store, f)
}

func isSingleProfileCSV(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}
	header := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "\ufeff")))
	return header == "field,value", nil
}
