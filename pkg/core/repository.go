package core

import "context"

// Repository defines the contract for loading and persisting the profile
// Document. Implementations always read or write the document as a whole.
type Repository interface {
	// Initialize ensures the underlying storage is ready (directories, git, schema).
	Initialize(ctx context.Context) error

	// Load reads the full document. A missing store yields (nil, nil).
	Load(ctx context.Context) (*Document, error)

	// Save replaces the persisted document with doc.
	Save(ctx context.Context, doc *Document) error
}

// Watchable is implemented by repositories that can report external
// rewrites of the persisted document.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

// EventType represents the kind of change observed on the store.
type EventType string

const (
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event reports a change of the persisted document.
type Event struct {
	Type      EventType
	Path      string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return string(e.Type) + " " + e.Path
}

type contextKey string

// ChangeReasonKey is the context key carrying the change reason recorded with
// a save (the commit message when the repository is versioned).
const ChangeReasonKey contextKey = "change_reason"

// ChangeReason returns the reason stored in ctx, or fallback.
func ChangeReason(ctx context.Context, fallback string) string {
	if val, ok := ctx.Value(ChangeReasonKey).(string); ok && val != "" {
		return val
	}
	return fallback
}
