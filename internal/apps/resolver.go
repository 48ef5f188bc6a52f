// Package apps resolves deep-link app names to tracked configs, manages those
// configs, and holds the popular and productive app catalogs.
package apps

import (
	"context"
	"fmt"
	"strings"

	"github.com/intentional-app/intentional/internal/deeplink"
	"github.com/intentional-app/intentional/internal/model"
	"github.com/intentional-app/intentional/internal/store"
)

// normalize turns a URL-friendly name back into a lower-case display form.
func normalize(raw string) string {
	return strings.ToLower(strings.ReplaceAll(raw, "-", " "))
}

// Matches reports whether a config named name answers to the URL name raw.
func Matches(name, raw string) bool {
	switch {
	case strings.ToLower(name) == normalize(raw):
		return true
	case strings.EqualFold(strings.ReplaceAll(name, " ", "-"), raw):
		return true
	default:
		return deeplink.FriendlyName(name) == strings.ToLower(raw)
	}
}

// FindByName returns the first config in configs matching raw, or nil.
func FindByName(configs []model.AppConfig, raw string) *model.AppConfig {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	for i := range configs {
		if Matches(configs[i].Name, raw) {
			c := configs[i]
			return &c
		}
	}
	return nil
}

// Resolve looks raw up among the stored configs. A nil config with a nil
// error means nothing matched.
func Resolve(ctx context.Context, st store.Store, raw string) (*model.AppConfig, error) {
	configs, err := st.LoadAppConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load app configs: %w", err)
	}
	return FindByName(configs, raw), nil
}
