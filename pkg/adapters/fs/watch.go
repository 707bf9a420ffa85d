package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/personakit/personakit/pkg/core"
)

// DebounceWindow collapses the burst of events one atomic rewrite produces
// (create temp, chmod, rename) into a single notification.
const DebounceWindow = 50 * time.Millisecond

// Watch reports rewrites and removals of the document file. The directory
// is watched rather than the file itself because an atomic rename replaces
// the inode. The channel closes when ctx is done.
func (r *Repository) Watch(ctx context.Context) (<-chan core.Event, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(r.Dir()); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", r.Dir(), err)
	}

	target := filepath.Clean(r.Path)
	events := make(chan core.Event, 16)
	r.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer r.setWatcherActive(false)
		defer watcher.Close()
		return r.watchLoop(ctx, watcher, target, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		r.config.Logger.Error("document watcher stopped", "error", err)
	}))

	return events, nil
}

func (r *Repository) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, target string, events chan<- core.Event) error {
	timer := time.NewTimer(DebounceWindow)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var pending core.EventType
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			eType := mapEventType(event)
			if eType == "" {
				continue
			}
			r.config.Logger.Debug("document event", "op", event.Op.String(), "path", event.Name)
			pending = eType
			timer.Reset(DebounceWindow)

		case <-timer.C:
			if pending == "" {
				continue
			}
			e := core.Event{Type: pending, Path: r.Path, Timestamp: time.Now().Unix()}
			pending = ""
			select {
			case events <- e:
			case <-ctx.Done():
				return nil
			}

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			r.config.Logger.Error("fsnotify error", "error", wErr)
		}
	}
}

func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	}
	return ""
}
