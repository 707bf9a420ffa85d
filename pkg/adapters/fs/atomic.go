package fs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// TempFilePrefix starts the name of every staging file. The document
// directory's .gitignore excludes it.
const TempFilePrefix = ".personakit-tmp-"

// writeFileAtomic replaces filename with data through a staging file in the
// same directory, so a reader sees either the previous content or the new
// one. When filename already holds exactly data and has mode perm, nothing
// is written and it returns false; watchers of the side-channel files then
// see no event for a sync that changed nothing.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) (written bool, err error) {
	if unchanged(filename, data, perm) {
		return false, nil
	}

	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, TempFilePrefix+filepath.Base(filename)+"-*")
	if err != nil {
		return false, fmt.Errorf("failed to stage %s: %w", filepath.Base(filename), err)
	}
	staged := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(staged)
		}
	}()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return false, fmt.Errorf("failed to write staging file: %w", err)
	}

	if err = os.Chmod(staged, perm); err != nil {
		return false, fmt.Errorf("failed to chmod staging file: %w", err)
	}
	if err = os.Rename(staged, filename); err != nil {
		return false, fmt.Errorf("failed to replace %s: %w", filename, err)
	}
	syncDir(dir)
	return true, nil
}

func unchanged(filename string, data []byte, perm os.FileMode) bool {
	info, err := os.Stat(filename)
	if err != nil || !info.Mode().IsRegular() || info.Size() != int64(len(data)) {
		return false
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != perm.Perm() {
		return false
	}
	current, err := os.ReadFile(filename)
	return err == nil && bytes.Equal(current, data)
}

// syncDir flushes the rename to disk. Failures are ignored: not every
// platform or filesystem allows syncing a directory.
func syncDir(dir string) {
	if runtime.GOOS == "windows" {
		return
	}
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	defer d.Close()
	_ = d.Sync()
}
