package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// CreateProfile adds a profile seeded with an empty version 1.
// It returns ErrDuplicateName if the name is taken.
func (s *Service) CreateProfile(ctx context.Context, name, description, ptype string) (*Profile, error) {
	if name == "" {
		return nil, errors.New("profile name cannot be empty")
	}
	if ptype == "" {
		ptype = DefaultType
	}

	var created *Profile
	_, err := s.mutate(ctx, "feat(profiles): create "+name, func(doc *Document, now Timestamp) (bool, error) {
		if _, exists := doc.Profiles[name]; exists {
			return false, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		p := &Profile{
			ID:            s.newID(),
			Name:          name,
			Description:   description,
			Type:          ptype,
			CreatedAt:     now,
			LastModified:  now,
			ActiveVersion: 1,
			Versions:      map[int]*Version{1: s.newVersion(1, now)},
			Tags:          []string{},
		}
		doc.Profiles[name] = p
		created = p.Clone()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Profile returns a copy of the named profile.
func (s *Service) Profile(name string) (*Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.doc.Profiles[name]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Profiles returns copies of all profiles, oldest first.
func (s *Service) Profiles() []*Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Profile, 0, len(s.doc.Profiles))
	for _, p := range s.doc.Profiles {
		out = append(out, p.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt.Time) {
			return out[i].CreatedAt.Before(out[j].CreatedAt.Time)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// DeleteProfile removes a profile. If it occupied the legacy active slot the
// slot is cleared. Its entry in the prioritized active list is left in place.
func (s *Service) DeleteProfile(ctx context.Context, name string) (bool, error) {
	return s.mutate(ctx, "feat(profiles): delete "+name, func(doc *Document, now Timestamp) (bool, error) {
		if _, ok := doc.Profiles[name]; !ok {
			return false, nil
		}
		delete(doc.Profiles, name)
		if doc.ActiveProfile != nil && *doc.ActiveProfile == name {
			doc.ActiveProfile = nil
		}
		return true, nil
	})
}

// ProfileUpdate lists the profile fields that may change after creation.
// Nil fields are left as they are.
type ProfileUpdate struct {
	Description *string
	Type        *string
	Tags        *[]string
}

// UpdateProfile applies u to the named profile.
func (s *Service) UpdateProfile(ctx context.Context, name string, u ProfileUpdate) (bool, error) {
	return s.mutate(ctx, "feat(profiles): update "+name, func(doc *Document, now Timestamp) (bool, error) {
		p, ok := doc.Profiles[name]
		if !ok {
			return false, nil
		}
		if u.Description != nil {
			p.Description = *u.Description
		}
		if u.Type != nil {
			p.Type = *u.Type
		}
		if u.Tags != nil {
			p.Tags = append([]string{}, (*u.Tags)...)
		}
		p.LastModified = now
		return true, nil
	})
}

// InsertProfile stores an externally built profile, typically from an
// import. A taken name gets the first free numeric suffix (_1, _2, ...).
// It returns the name the profile was stored under.
func (s *Service) InsertProfile(ctx context.Context, p *Profile) (string, error) {
	if p == nil || p.Name == "" {
		return "", errors.New("profile has no name")
	}
	if len(p.Versions) == 0 {
		return "", fmt.Errorf("profile %q has no versions", p.Name)
	}

	var stored string
	_, err := s.mutate(ctx, "feat(profiles): import "+p.Name, func(doc *Document, now Timestamp) (bool, error) {
		in := p.Clone()
		in.normalize()
		if _, ok := in.Versions[in.ActiveVersion]; !ok {
			in.ActiveVersion = in.VersionNumbers()[0]
		}
		if in.ID == "" {
			in.ID = s.newID()
		}
		if in.CreatedAt.IsZero() {
			in.CreatedAt = now
		}
		in.LastModified = now
		if in.Type == "" {
			in.Type = DefaultType
		}

		name := p.Name
		for counter := 1; ; counter++ {
			if _, taken := doc.Profiles[name]; !taken {
				break
			}
			name = fmt.Sprintf("%s_%d", p.Name, counter)
		}
		in.Name = name
		doc.Profiles[name] = in
		stored = name
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return stored, nil
}
