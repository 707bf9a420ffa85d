package platform

import (
	"context"

	"github.com/personakit/personakit/pkg/core"
)

// New opens the store at uri and loads the persisted document.
//
//	svc, err := personakit.New("bot_profiles.json", personakit.WithVersioning(false))
func New(uri string, opts ...Option) (*core.Service, error) {
	repo, err := Init(uri, opts...)
	if err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	service := core.NewService(repo, o.logger)
	if locale, _ := o.config["locale"].(string); locale != "" {
		labels, err := core.LabelsFor(locale)
		if err != nil {
			return nil, err
		}
		service.SetLabels(labels)
	}
	service.Reload(context.Background())

	return service, nil
}
