package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	RepositoryType string `json:"repository_type"`
	Repository     any    `json:"repository,omitempty"`
	Stats          Stats  `json:"stats"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	repoType := "unknown"
	var repoState any
	if s.repo != nil {
		repoType = "repository"
		if comp, ok := s.repo.(introspection.Component); ok {
			repoType = comp.ComponentType()
		}
		if in, ok := s.repo.(introspection.Introspectable); ok {
			repoState = in.State()
		}
	}

	return ServiceState{
		RepositoryType: repoType,
		Repository:     repoState,
		Stats:          s.Stats(),
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "profile-store"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
