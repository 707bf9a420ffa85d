package core

import (
	"context"
	"encoding/json"
	"fmt"
)

// versionFields are the version keys UpdateVersionContent may overwrite.
// "version" and "created_at" identify the snapshot and stay fixed.
var versionFields = map[string]bool{
	"system_prompt":  true,
	"context":        true,
	"documents":      true,
	"knowledge_base": true,
	"instructions":   true,
	"examples":       true,
	"restrictions":   true,
	"tone":           true,
	"language":       true,
}

// CreateVersion adds version max+1 to the profile, copied from base when base
// names an existing version and from the active version otherwise.
func (s *Service) CreateVersion(ctx context.Context, name string, base int) (int, error) {
	var created int
	_, err := s.mutate(ctx, fmt.Sprintf("feat(versions): create version of %s", name), func(doc *Document, now Timestamp) (bool, error) {
		p, ok := doc.Profiles[name]
		if !ok {
			return false, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
		}

		next := 1
		for n := range p.Versions {
			if n >= next {
				next = n + 1
			}
		}

		src, ok := p.Versions[base]
		if !ok {
			src = p.Active()
		}
		var v *Version
		if src != nil {
			v = src.Clone()
		} else {
			v = s.newVersion(next, now)
		}
		v.Version = next
		v.CreatedAt = now

		p.Versions[next] = v
		p.LastModified = now
		created = next
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// Version returns a copy of one version of a profile.
func (s *Service) Version(name string, n int) (*Version, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.doc.Profiles[name]
	if !ok {
		return nil, false
	}
	v, ok := p.Versions[n]
	if !ok {
		return nil, false
	}
	return v.Clone(), true
}

// ActivateVersion points the profile at version n.
func (s *Service) ActivateVersion(ctx context.Context, name string, n int) (bool, error) {
	return s.mutate(ctx, fmt.Sprintf("feat(versions): activate %s v%d", name, n), func(doc *Document, now Timestamp) (bool, error) {
		p, ok := doc.Profiles[name]
		if !ok {
			return false, nil
		}
		if _, ok := p.Versions[n]; !ok {
			return false, nil
		}
		p.ActiveVersion = n
		p.LastModified = now
		return true, nil
	})
}

// DeleteVersion removes version n. Deleting the active version or the only
// version returns ErrInvalidOperation.
func (s *Service) DeleteVersion(ctx context.Context, name string, n int) (bool, error) {
	return s.mutate(ctx, fmt.Sprintf("feat(versions): delete %s v%d", name, n), func(doc *Document, now Timestamp) (bool, error) {
		p, ok := doc.Profiles[name]
		if !ok {
			return false, nil
		}
		if n == p.ActiveVersion {
			return false, fmt.Errorf("%w: version %d of %q is active", ErrInvalidOperation, n, name)
		}
		if len(p.Versions) == 1 {
			return false, fmt.Errorf("%w: version %d is the only version of %q", ErrInvalidOperation, n, name)
		}
		if _, ok := p.Versions[n]; !ok {
			return false, nil
		}
		delete(p.Versions, n)
		p.LastModified = now
		return true, nil
	})
}

// UpdateVersionContent overwrites the given fields of version n. Keys outside
// the version schema are ignored. Values must decode into the field's type.
func (s *Service) UpdateVersionContent(ctx context.Context, name string, n int, fields map[string]any) (bool, error) {
	return s.mutate(ctx, fmt.Sprintf("feat(versions): edit %s v%d", name, n), func(doc *Document, now Timestamp) (bool, error) {
		p, ok := doc.Profiles[name]
		if !ok {
			return false, nil
		}
		v, ok := p.Versions[n]
		if !ok {
			return false, nil
		}

		updated, err := patchVersion(v, fields)
		if err != nil {
			return false, err
		}
		p.Versions[n] = updated
		p.LastModified = now
		return true, nil
	})
}

func patchVersion(v *Version, fields map[string]any) (*Version, error) {
	current, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(current, &raw); err != nil {
		return nil, err
	}

	for key, val := range fields {
		if !versionFields[key] {
			continue
		}
		b, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		raw[key] = b
	}

	merged, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	out := &Version{}
	if err := json.Unmarshal(merged, out); err != nil {
		return nil, fmt.Errorf("invalid version content: %w", err)
	}
	out.normalize()
	return out, nil
}

// AddDocument appends a reference document to version n.
func (s *Service) AddDocument(ctx context.Context, name string, n int, docName, content, docType string) (bool, error) {
	if docType == "" {
		docType = DefaultDocType
	}
	return s.mutate(ctx, fmt.Sprintf("feat(documents): add %q to %s v%d", docName, name, n), func(doc *Document, now Timestamp) (bool, error) {
		p, v := lookupVersion(doc, name, n)
		if v == nil {
			return false, nil
		}
		v.Documents = append(v.Documents, DocumentEntry{
			Name:    docName,
			Content: content,
			Type:    docType,
			AddedAt: now,
		})
		p.LastModified = now
		return true, nil
	})
}

// RemoveDocument drops the document at index. Out of range indexes report false.
func (s *Service) RemoveDocument(ctx context.Context, name string, n int, index int) (bool, error) {
	return s.mutate(ctx, fmt.Sprintf("feat(documents): remove #%d from %s v%d", index, name, n), func(doc *Document, now Timestamp) (bool, error) {
		p, v := lookupVersion(doc, name, n)
		if v == nil || index < 0 || index >= len(v.Documents) {
			return false, nil
		}
		v.Documents = append(v.Documents[:index], v.Documents[index+1:]...)
		p.LastModified = now
		return true, nil
	})
}

// AddKnowledge sets key in the knowledge base of version n. An existing
// entry is replaced along with its timestamp.
func (s *Service) AddKnowledge(ctx context.Context, name string, n int, key, value string) (bool, error) {
	return s.mutate(ctx, fmt.Sprintf("feat(knowledge): set %q on %s v%d", key, name, n), func(doc *Document, now Timestamp) (bool, error) {
		p, v := lookupVersion(doc, name, n)
		if v == nil {
			return false, nil
		}
		v.KnowledgeBase[key] = KnowledgeEntry{Value: value, AddedAt: now}
		p.LastModified = now
		return true, nil
	})
}

// RemoveKnowledge deletes key from the knowledge base of version n.
func (s *Service) RemoveKnowledge(ctx context.Context, name string, n int, key string) (bool, error) {
	return s.mutate(ctx, fmt.Sprintf("feat(knowledge): remove %q from %s v%d", key, name, n), func(doc *Document, now Timestamp) (bool, error) {
		p, v := lookupVersion(doc, name, n)
		if v == nil {
			return false, nil
		}
		if _, ok := v.KnowledgeBase[key]; !ok {
			return false, nil
		}
		delete(v.KnowledgeBase, key)
		p.LastModified = now
		return true, nil
	})
}

func lookupVersion(doc *Document, name string, n int) (*Profile, *Version) {
	p, ok := doc.Profiles[name]
	if !ok {
		return nil, nil
	}
	return p, p.Versions[n]
}

// newVersion seeds version n with the defaults of the current labels.
// Callers hold s.mu.
func (s *Service) newVersion(n int, now Timestamp) *Version {
	v := NewVersion(n, now.Time)
	if s.labels.DefaultTone != "" {
		v.Tone = s.labels.DefaultTone
	}
	if s.labels.DefaultLanguage != "" {
		v.Language = s.labels.DefaultLanguage
	}
	return v
}
