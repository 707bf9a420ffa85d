package core

import (
	"context"
	"fmt"
)

// SetActiveProfile makes name the single active profile.
//
// With no prioritized profiles only the legacy slot is written. Otherwise
// the prioritized list is reset to name alone at priority 1, so the slot
// still mirrors the head of the list.
func (s *Service) SetActiveProfile(ctx context.Context, name string) (bool, error) {
	return s.mutate(ctx, "feat(active): set "+name, func(doc *Document, now Timestamp) (bool, error) {
		if _, ok := doc.Profiles[name]; !ok {
			return false, nil
		}
		if len(doc.ActiveProfiles) == 0 {
			slot := name
			doc.ActiveProfile = &slot
			return true, nil
		}
		doc.ActiveProfiles = []ActiveProfileRef{{Name: name, Priority: 1, ActivatedAt: now}}
		doc.syncLegacyActive()
		return true, nil
	})
}

// ActiveProfile returns the profile in the legacy slot.
func (s *Service) ActiveProfile() (*Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.doc.ActiveProfile == nil {
		return nil, false
	}
	p, ok := s.doc.Profiles[*s.doc.ActiveProfile]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// AddActiveProfile puts name in the prioritized active set. A profile that
// is already active keeps its place and gets the new priority.
func (s *Service) AddActiveProfile(ctx context.Context, name string, priority int) (bool, error) {
	return s.mutate(ctx, fmt.Sprintf("feat(active): add %s at %d", name, priority), func(doc *Document, now Timestamp) (bool, error) {
		if _, ok := doc.Profiles[name]; !ok {
			return false, nil
		}
		if i := doc.activeIndex(name); i >= 0 {
			doc.ActiveProfiles[i].Priority = priority
		} else {
			doc.ActiveProfiles = append(doc.ActiveProfiles, ActiveProfileRef{
				Name:        name,
				Priority:    priority,
				ActivatedAt: now,
			})
		}
		doc.syncLegacyActive()
		return true, nil
	})
}

// RemoveActiveProfile takes name out of the active set. The profile itself
// is untouched.
func (s *Service) RemoveActiveProfile(ctx context.Context, name string) (bool, error) {
	return s.mutate(ctx, "feat(active): remove "+name, func(doc *Document, now Timestamp) (bool, error) {
		i := doc.activeIndex(name)
		if i < 0 {
			return false, nil
		}
		doc.ActiveProfiles = append(doc.ActiveProfiles[:i], doc.ActiveProfiles[i+1:]...)
		doc.syncLegacyActive()
		return true, nil
	})
}

// SetProfilePriority changes the priority of an already active profile.
func (s *Service) SetProfilePriority(ctx context.Context, name string, priority int) (bool, error) {
	return s.mutate(ctx, fmt.Sprintf("feat(active): priority of %s to %d", name, priority), func(doc *Document, now Timestamp) (bool, error) {
		i := doc.activeIndex(name)
		if i < 0 {
			return false, nil
		}
		doc.ActiveProfiles[i].Priority = priority
		doc.syncLegacyActive()
		return true, nil
	})
}

// ClearActiveProfiles empties the active set and the legacy slot.
func (s *Service) ClearActiveProfiles(ctx context.Context) (bool, error) {
	return s.mutate(ctx, "feat(active): clear", func(doc *Document, now Timestamp) (bool, error) {
		doc.ActiveProfiles = []ActiveProfileRef{}
		doc.syncLegacyActive()
		return true, nil
	})
}

// ActiveProfiles returns the prioritized active set, highest precedence first.
func (s *Service) ActiveProfiles() []ActiveProfileRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ActiveProfileRef{}, s.doc.ActiveProfiles...)
}
