package fs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/personakit/personakit/pkg/core"
)

// Default side-channel file names, next to the document.
const (
	DefaultContextFile = "active_profile_context.txt"
	DefaultStatusFile  = "sync_status.json"
)

// SyncStatus describes the last write of the context file.
type SyncStatus struct {
	LastSync      core.Timestamp `json:"last_sync"`
	Profiles      []string       `json:"profiles"`
	ContextLength int            `json:"context_length"`
}

// ContextFile is the pre-rendered context handed to a bot process that does
// not open the profile store itself.
type ContextFile struct {
	ContextPath string
	StatusPath  string
}

// NewContextFile places both files in dir under their default names.
func NewContextFile(dir string) ContextFile {
	return ContextFile{
		ContextPath: filepath.Join(dir, DefaultContextFile),
		StatusPath:  filepath.Join(dir, DefaultStatusFile),
	}
}

// Write stores the rendered context and its status. profiles names the
// active profiles the context was rendered from.
func (c ContextFile) Write(context string, profiles []string) (SyncStatus, error) {
	if profiles == nil {
		profiles = []string{}
	}
	status := SyncStatus{
		LastSync:      core.Stamp(time.Now()),
		Profiles:      profiles,
		ContextLength: utf8.RuneCountInString(context),
	}

	if err := os.MkdirAll(filepath.Dir(c.ContextPath), 0755); err != nil {
		return status, fmt.Errorf("failed to create context directory: %w", err)
	}
	if _, err := writeFileAtomic(c.ContextPath, []byte(context), 0644); err != nil {
		return status, err
	}

	if c.StatusPath == "" {
		return status, nil
	}
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return status, err
	}
	if err := os.MkdirAll(filepath.Dir(c.StatusPath), 0755); err != nil {
		return status, fmt.Errorf("failed to create status directory: %w", err)
	}
	_, err = writeFileAtomic(c.StatusPath, data, 0644)
	return status, err
}

// Read returns the stored context. A missing file yields "" and no error.
func (c ContextFile) Read() (string, error) {
	data, err := os.ReadFile(c.ContextPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// Status returns the last sync status, or nil if none was written.
func (c ContextFile) Status() (*SyncStatus, error) {
	if c.StatusPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.StatusPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var status SyncStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("invalid sync status: %w", err)
	}
	return &status, nil
}

// Resolve returns the stored context, or render() when the file is missing
// or blank.
func (c ContextFile) Resolve(render func() string) (string, error) {
	text, err := c.Read()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) != "" {
		return text, nil
	}
	return render(), nil
}
