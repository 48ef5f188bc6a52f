package apps

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentional-app/intentional/internal/deeplink"
	"github.com/intentional-app/intentional/internal/model"
	"github.com/intentional-app/intentional/internal/store"
	"github.com/intentional-app/intentional/internal/testutil"
)

func TestFindByName(t *testing.T) {
	configs := []model.AppConfig{
		testutil.AppConfig("1", "Instagram", 60, 10),
		testutil.AppConfig("2", "My App", 60, 10),
		testutil.AppConfig("3", "You-Tube Kids", 60, 10),
		testutil.AppConfig("4", "my-app", 60, 10),
	}

	tests := []struct {
		raw    string
		wantID string
	}{
		{"instagram", "1"},
		{"INSTAGRAM", "1"},
		{"my-app", "2"}, // first match wins
		{"My-App", "2"},
		{"you-tube-kids", "3"},
		{"You-Tube-Kids", "3"},
	}
	for _, tt := range tests {
		got := FindByName(configs, tt.raw)
		require.NotNil(t, got, tt.raw)
		assert.Equal(t, tt.wantID, got.ID, tt.raw)
	}

	assert.Nil(t, FindByName(configs, "tiktok"))
	assert.Nil(t, FindByName(configs, ""))
	assert.Nil(t, FindByName(nil, "instagram"))
}

func TestResolveRoundTrip(t *testing.T) {
	ctx := context.Background()
	names := []string{"Instagram", "My App", "Apple  Music", "Khan Academy", "Any.do", "You-Tube Kids", "x"}
	for i, name := range names {
		st := store.NewMemory(store.Options{})
		// A decoy that must never win.
		require.NoError(t, st.SaveAppConfig(ctx, testutil.AppConfig("decoy", "Decoy App", 60, 10)))
		cfg := testutil.AppConfig(string(rune('a'+i)), name, 60, 10)
		require.NoError(t, st.SaveAppConfig(ctx, cfg))

		intent, err := deeplink.Parse(deeplink.ProductionEnvironment(),
			deeplink.BuildLink(deeplink.ProductionEnvironment(), deeplink.ActionReflect, name))
		require.NoError(t, err, name)

		got, err := Resolve(ctx, st, intent.App)
		require.NoError(t, err, name)
		require.NotNil(t, got, name)
		assert.Equal(t, cfg.ID, got.ID, name)
	}
}

func TestAlternatives(t *testing.T) {
	settings := model.DefaultSettings()

	work := Alternatives(settings, time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC))
	require.Len(t, work, 3)
	assert.Equal(t, []string{"Notes", "Notion", "Obsidian"}, names(work))

	evening := Alternatives(settings, time.Date(2024, 3, 12, 20, 0, 0, 0, time.UTC))
	require.Len(t, evening, 3)
	assert.Equal(t, []string{"Kindle", "Audible", "Duolingo"}, names(evening))

	settings.SelectedProductiveApps = []model.ProductiveApp{{Name: "Calm"}, {Name: "Notes"}, {Name: "Kindle"}, {Name: "Camera"}}
	picked := Alternatives(settings, time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, []string{"Calm", "Notes", "Kindle"}, names(picked))

	settings.ProductiveAppsEnabled = false
	assert.Empty(t, Alternatives(settings, time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)))
}

func names(apps []model.ProductiveApp) []string {
	out := make([]string, len(apps))
	for i, a := range apps {
		out[i] = a.Name
	}
	return out
}

func TestSearch(t *testing.T) {
	assert.Len(t, SearchPopular(""), 17)
	assert.Len(t, SearchProductive(" "), 20)

	got := SearchPopular("insta")
	require.NotEmpty(t, got)
	assert.Equal(t, "Instagram", got[0].Name)

	assert.Contains(t, names(SearchProductive("meditation")), "Medito")

	assert.Empty(t, SearchPopular("qqqqzz"))
}

func TestCatalogLookups(t *testing.T) {
	p, ok := FindPopular("netflix")
	require.True(t, ok)
	assert.Equal(t, "nflx://", p.DeepLink)

	_, ok = FindPopular("Not An App")
	assert.False(t, ok)

	alt, ok := FindProductive("headspace")
	require.True(t, ok)
	assert.Equal(t, model.AppCategoryWellness, alt.Category)

	cfg := FromPopular(p, 0)
	assert.Equal(t, model.CategoryProductivity, cfg.QuestionCategory)
	assert.Equal(t, model.DefaultDelaySeconds, cfg.DelaySeconds)
	assert.Equal(t, "tv-outline", cfg.Icon)
}
