package apps

import (
	"slices"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/intentional-app/intentional/internal/model"
)

var popular = []model.PopularApp{
	{Name: "Instagram", DeepLink: "instagram://", Icon: "logo-instagram", Category: model.AppCategorySocial},
	{Name: "TikTok", DeepLink: "tiktok://", Icon: "logo-tiktok", Category: model.AppCategorySocial},
	{Name: "YouTube", DeepLink: "youtube://", Icon: "logo-youtube", Category: model.AppCategoryEntertainment},
	{Name: "Twitter", DeepLink: "twitter://", Icon: "logo-twitter", Category: model.AppCategorySocial},
	{Name: "Facebook", DeepLink: "fb://", Icon: "logo-facebook", Category: model.AppCategorySocial},
	{Name: "Reddit", DeepLink: "reddit://", Icon: "logo-reddit", Category: model.AppCategorySocial},
	{Name: "Snapchat", DeepLink: "snapchat://", Icon: "logo-snapchat", Category: model.AppCategorySocial},
	{Name: "Pinterest", DeepLink: "pinterest://", Icon: "logo-pinterest", Category: model.AppCategorySocial},
	{Name: "LinkedIn", DeepLink: "linkedin://", Icon: "logo-linkedin", Category: model.AppCategorySocial},
	{Name: "WhatsApp", DeepLink: "whatsapp://", Icon: "logo-whatsapp", Category: model.AppCategorySocial},
	{Name: "Discord", DeepLink: "discord://", Icon: "logo-discord", Category: model.AppCategorySocial},
	{Name: "Twitch", DeepLink: "twitch://", Icon: "logo-twitch", Category: model.AppCategoryEntertainment},
	{Name: "Netflix", DeepLink: "nflx://", Icon: "tv-outline", Category: model.AppCategoryEntertainment},
	{Name: "Spotify", DeepLink: "spotify://", Icon: "musical-notes-outline", Category: model.AppCategoryEntertainment},
	{Name: "Apple Music", DeepLink: "music://", Icon: "musical-note-outline", Category: model.AppCategoryEntertainment},
	{Name: "News", DeepLink: "applenews://", Icon: "newspaper-outline", Category: model.AppCategoryNews},
	{Name: "Safari", DeepLink: "http://", Icon: "compass-outline", Category: model.AppCategoryEntertainment},
}

var productive = []model.ProductiveApp{
	{Name: "Notes", DeepLink: "mobilenotes://", Icon: "document-text-outline", Description: "Capture your thoughts", Category: model.AppCategoryProductivity},
	{Name: "Notion", DeepLink: "notion://", Icon: "library-outline", Description: "Organize your life", Category: model.AppCategoryProductivity},
	{Name: "Obsidian", DeepLink: "obsidian://", Icon: "git-network-outline", Description: "Connect your ideas", Category: model.AppCategoryProductivity},
	{Name: "Todoist", DeepLink: "todoist://", Icon: "checkbox-outline", Description: "Get things done", Category: model.AppCategoryProductivity},
	{Name: "Any.do", DeepLink: "anydo://", Icon: "checkmark-done-outline", Description: "Simple task management", Category: model.AppCategoryProductivity},
	{Name: "Evernote", DeepLink: "evernote://", Icon: "folder-outline", Description: "Remember everything", Category: model.AppCategoryProductivity},
	{Name: "Kindle", DeepLink: "kindle://", Icon: "book-outline", Description: "Read something meaningful", Category: model.AppCategoryLearning},
	{Name: "Audible", DeepLink: "audible://", Icon: "headset-outline", Description: "Listen and learn", Category: model.AppCategoryLearning},
	{Name: "Duolingo", DeepLink: "duolingo://", Icon: "language-outline", Description: "Learn a new language", Category: model.AppCategoryLearning},
	{Name: "Khan Academy", DeepLink: "khanacademy://", Icon: "school-outline", Description: "Expand your knowledge", Category: model.AppCategoryLearning},
	{Name: "Coursera", DeepLink: "coursera://", Icon: "ribbon-outline", Description: "Take a course", Category: model.AppCategoryLearning},
	{Name: "Headspace", DeepLink: "headspace://", Icon: "flower-outline", Description: "Take a mindful moment", Category: model.AppCategoryWellness},
	{Name: "Calm", DeepLink: "calm://", Icon: "leaf-outline", Description: "Find your calm", Category: model.AppCategoryWellness},
	{Name: "Medito", DeepLink: "medito://", Icon: "heart-outline", Description: "Practice meditation", Category: model.AppCategoryWellness},
	{Name: "Apple Health", DeepLink: "x-apple-health://", Icon: "fitness-outline", Description: "Check your health", Category: model.AppCategoryWellness},
	{Name: "Fitness+", DeepLink: "fitness://", Icon: "barbell-outline", Description: "Get moving", Category: model.AppCategoryWellness},
	{Name: "Procreate", DeepLink: "procreate://", Icon: "brush-outline", Description: "Create something beautiful", Category: model.AppCategoryCreative},
	{Name: "GarageBand", DeepLink: "garageband://", Icon: "musical-notes-outline", Description: "Make music", Category: model.AppCategoryCreative},
	{Name: "Camera", DeepLink: "camera://", Icon: "camera-outline", Description: "Capture a moment", Category: model.AppCategoryCreative},
	{Name: "Voice Memos", DeepLink: "voicememos://", Icon: "mic-outline", Description: "Record your thoughts", Category: model.AppCategoryCreative},
}

// Popular returns the catalog of commonly tracked apps.
func Popular() []model.PopularApp { return slices.Clone(popular) }

// Productive returns the catalog of productive alternatives.
func Productive() []model.ProductiveApp { return slices.Clone(productive) }

// FindPopular returns the popular catalog entry named name, ignoring case.
func FindPopular(name string) (model.PopularApp, bool) {
	for _, p := range popular {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return model.PopularApp{}, false
}

// FindProductive returns the productive catalog entry named name, ignoring case.
func FindProductive(name string) (model.ProductiveApp, bool) {
	for _, p := range productive {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return model.ProductiveApp{}, false
}

// Alternatives returns the productive apps offered after a reflection: the
// user's selection when there is one, otherwise suggestions for the local
// hour of now. At most three are returned, none when alternatives are off.
func Alternatives(settings model.GlobalSettings, now time.Time) []model.ProductiveApp {
	if !settings.ProductiveAppsEnabled {
		return nil
	}
	if len(settings.SelectedProductiveApps) > 0 {
		return firstN(slices.Clone(settings.SelectedProductiveApps))
	}

	var wanted []model.AppCategory
	if h := now.Hour(); h >= 9 && h <= 17 {
		wanted = []model.AppCategory{model.AppCategoryProductivity, model.AppCategoryLearning}
	} else {
		wanted = []model.AppCategory{model.AppCategoryWellness, model.AppCategoryLearning, model.AppCategoryCreative}
	}
	var out []model.ProductiveApp
	for _, p := range productive {
		if slices.Contains(wanted, p.Category) {
			out = append(out, p)
		}
	}
	return firstN(out)
}

func firstN(apps []model.ProductiveApp) []model.ProductiveApp {
	if len(apps) > model.MaxSelectedProductiveApps {
		return apps[:model.MaxSelectedProductiveApps]
	}
	return apps
}

type popularSource []model.PopularApp

func (p popularSource) String(i int) string { return p[i].Name }
func (p popularSource) Len() int            { return len(p) }

type productiveSource []model.ProductiveApp

func (p productiveSource) String(i int) string { return p[i].Name + " " + p[i].Description }
func (p productiveSource) Len() int            { return len(p) }

// SearchPopular fuzzy-matches query against popular app names, best match
// first. An empty query returns the whole catalog.
func SearchPopular(query string) []model.PopularApp {
	if strings.TrimSpace(query) == "" {
		return Popular()
	}
	matches := fuzzy.FindFrom(query, popularSource(popular))
	out := make([]model.PopularApp, 0, len(matches))
	for _, m := range matches {
		out = append(out, popular[m.Index])
	}
	return out
}

// SearchProductive fuzzy-matches query against productive app names and
// descriptions.
func SearchProductive(query string) []model.ProductiveApp {
	if strings.TrimSpace(query) == "" {
		return Productive()
	}
	matches := fuzzy.FindFrom(query, productiveSource(productive))
	out := make([]model.ProductiveApp, 0, len(matches))
	for _, m := range matches {
		out = append(out, productive[m.Index])
	}
	return out
}
