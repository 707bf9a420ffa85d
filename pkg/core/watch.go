package core

import (
	"context"
	"errors"

	"github.com/aretw0/lifecycle"
)

// Watch observes external rewrites of the persisted document. Each event
// reloads the in-memory document before it is forwarded, so a receiver can
// render fresh context straight away.
func (s *Service) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}
	upstream, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan Event, 16)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-upstream:
				if !ok {
					return nil
				}
				s.Reload(ctx)
				s.logger.Debug("profiles reloaded", "event", e.String())
				select {
				case out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("profile watch loop failed", "error", err)
	}))

	return out, nil
}
