// Package lifecycle exposes store change events as a lifecycle.Source so
// they can be supervised next to other event producers.
package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/lifecycle"

	"github.com/personakit/personakit/pkg/core"
)

// Store is the view of the profile store a Source reads after each change.
// *core.Service satisfies it.
type Store interface {
	Stats() core.Stats
	RenderMultiContext() string
}

// ChangeEvent is a document change together with the store state it left.
type ChangeEvent struct {
	core.Event
	Profiles int
	Active   []string
	// ContextChanged reports whether the rendered context differs from the
	// one seen at the previous event (or at Start).
	ContextChanged bool
}

// String implements lifecycle.Event.
func (e ChangeEvent) String() string {
	active := "none"
	if len(e.Active) > 0 {
		active = strings.Join(e.Active, ",")
	}
	return fmt.Sprintf("%s (%d profiles, active: %s)", e.Event.String(), e.Profiles, active)
}

type storeSource struct {
	events <-chan core.Event
	store  Store
	out    chan lifecycle.Event
	last   string
}

// NewSource wraps the channel returned by core.Service.Watch. store must be
// the service that produced it, so each event sees the reloaded document.
func NewSource(events <-chan core.Event, store Store) lifecycle.Source {
	return &storeSource{
		events: events,
		store:  store,
		out:    make(chan lifecycle.Event),
	}
}

func (s *storeSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start records the current context, then emits a ChangeEvent per upstream
// event until ctx ends or the upstream channel closes. Events is closed on
// return.
func (s *storeSource) Start(ctx context.Context) error {
	s.last = s.store.RenderMultiContext()

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				select {
				case s.out <- s.describe(e):
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}

func (s *storeSource) describe(e core.Event) ChangeEvent {
	stats := s.store.Stats()
	active := stats.ActiveProfiles
	if len(active) == 0 && stats.ActiveProfile != "" {
		active = []string{stats.ActiveProfile}
	}

	rendered := s.store.RenderMultiContext()
	changed := rendered != s.last
	s.last = rendered

	return ChangeEvent{
		Event:          e,
		Profiles:       stats.TotalProfiles,
		Active:         active,
		ContextChanged: changed,
	}
}
