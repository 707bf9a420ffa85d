package core

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Service is the profile store. It keeps the document in memory and hands
// every mutation to the Repository as a full rewrite.
//
// The mutex only orders calls made inside one process (for example a
// watcher reload racing a CLI call). Two processes holding their own
// Service can still overwrite each other's changes.
type Service struct {
	repo    Repository
	logger  *slog.Logger
	now     func() time.Time
	entropy *rand.Rand
	labels  Labels

	mu  sync.RWMutex
	doc *Document
}

// NewService creates a Service over repo with an empty in-memory document.
// Call Reload to read the persisted state.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := time.Now
	return &Service{
		repo:    repo,
		logger:  logger,
		now:     now,
		entropy: rand.New(rand.NewSource(now().UnixNano())),
		labels:  EnglishLabels,
		doc:     NewDocument(now()),
	}
}

// Logger returns the logger the service reports soft failures to.
func (s *Service) Logger() *slog.Logger {
	return s.logger
}

// Reload replaces the in-memory document with the persisted one. Read or
// parse failures are logged and leave the store with an empty document.
func (s *Service) Reload(ctx context.Context) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load profiles, starting empty", "error", err)
		doc = nil
	}
	if doc == nil {
		doc = NewDocument(s.now())
	}
	doc.normalize()

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
}

// Close releases the repository if it holds resources, such as a
// database handle.
func (s *Service) Close() error {
	if c, ok := s.repo.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Snapshot returns a deep copy of the whole document.
func (s *Service) Snapshot() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// mutate applies fn to a copy of the document and, if fn reports a change,
// persists the copy and adopts it. A failed save leaves memory untouched.
func (s *Service) mutate(ctx context.Context, reason string, fn func(doc *Document, now Timestamp) (bool, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	now := Stamp(s.now())
	changed, err := fn(next, now)
	if err != nil || !changed {
		return false, err
	}

	next.Metadata.LastModified = now
	next.Metadata.TotalProfiles = len(next.Profiles)

	ctx = context.WithValue(ctx, ChangeReasonKey, ChangeReason(ctx, reason))
	if err := s.repo.Save(ctx, next); err != nil {
		return false, err
	}
	s.doc = next
	s.logger.Debug("profiles saved", "reason", reason, "profiles", next.Metadata.TotalProfiles)
	return true, nil
}

func (s *Service) newID() string {
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

// Stats summarizes the store for dashboards.
type Stats struct {
	TotalProfiles  int       `json:"total_profiles"`
	TotalVersions  int       `json:"total_versions"`
	ActiveProfile  string    `json:"active_profile,omitempty"`
	ActiveProfiles []string  `json:"active_profiles"`
	CreatedAt      time.Time `json:"created_at"`
	LastModified   time.Time `json:"last_modified"`
}

// Stats returns counts and activation state of the document.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		TotalProfiles:  s.doc.Metadata.TotalProfiles,
		ActiveProfiles: make([]string, 0, len(s.doc.ActiveProfiles)),
		CreatedAt:      s.doc.Metadata.CreatedAt.Time,
		LastModified:   s.doc.Metadata.LastModified.Time,
	}
	for _, p := range s.doc.Profiles {
		st.TotalVersions += len(p.Versions)
	}
	if s.doc.ActiveProfile != nil {
		st.ActiveProfile = *s.doc.ActiveProfile
	}
	for _, ref := range s.doc.ActiveProfiles {
		st.ActiveProfiles = append(st.ActiveProfiles, ref.Name)
	}
	return st
}
