// Package model defines the records shared by the store, the reflection
// controller and the presentation shell.
package model

import "time"

// Category names a question bank.
type Category string

const (
	CategoryDefault      Category = "default"
	CategoryGratitude    Category = "gratitude"
	CategoryProductivity Category = "productivity"
	CategoryMindfulness  Category = "mindfulness"
)

// Categories lists every question category in bank order.
var Categories = []Category{CategoryDefault, CategoryGratitude, CategoryProductivity, CategoryMindfulness}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// AppConfig is one user-tracked application.
type AppConfig struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name" validate:"required"`
	Icon               string     `json:"icon"`
	DeepLink           string     `json:"deepLink" validate:"required"`
	Enabled            bool       `json:"isEnabled"`
	DelaySeconds       int        `json:"delaySeconds" validate:"gte=0"`
	AllowBypass        bool       `json:"allowBypass"`
	BypassAfterSeconds int        `json:"bypassAfterSeconds" validate:"gte=0"`
	QuestionCategory   Category   `json:"questionsType" validate:"required,oneof=default gratitude productivity mindfulness"`
	LastLaunched       *time.Time `json:"lastLaunched,omitempty"`
	LaunchCount        int        `json:"launchCount"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// DefaultDelaySeconds applies when an AppConfig carries no countdown length.
const DefaultDelaySeconds = 60

// Delay returns the countdown length, falling back to DefaultDelaySeconds.
func (a AppConfig) Delay() int {
	if a.DelaySeconds <= 0 {
		return DefaultDelaySeconds
	}
	return a.DelaySeconds
}

// GlobalSettings is the singleton preferences record.
type GlobalSettings struct {
	DefaultDelay            int             `json:"defaultDelay"`
	EnableAll               bool            `json:"enableAll"`
	TemporaryDisableUntil   *time.Time      `json:"temporaryDisableUntil,omitempty"`
	QuestionRotationEnabled bool            `json:"questionRotationEnabled"`
	ProductiveAppsEnabled   bool            `json:"productiveAppsEnabled"`
	SelectedProductiveApps  []ProductiveApp `json:"selectedProductiveApps"`
	OnboardingCompleted     bool            `json:"onboardingCompleted"`
	DarkModeEnabled         bool            `json:"darkModeEnabled"`
	SoundEnabled            bool            `json:"soundEnabled"`
}

// MaxSelectedProductiveApps bounds GlobalSettings.SelectedProductiveApps.
const MaxSelectedProductiveApps = 3

// DefaultSettings returns the settings used before the user saves any.
func DefaultSettings() GlobalSettings {
	return GlobalSettings{
		DefaultDelay:            DefaultDelaySeconds,
		EnableAll:               true,
		QuestionRotationEnabled: true,
		ProductiveAppsEnabled:   true,
		SelectedProductiveApps:  []ProductiveApp{},
		SoundEnabled:            true,
	}
}

// Paused reports whether reflections are switched off at now.
func (s GlobalSettings) Paused(now time.Time) bool {
	if !s.EnableAll {
		return true
	}
	return s.TemporaryDisableUntil != nil && now.Before(*s.TemporaryDisableUntil)
}

// QuestionHistory records one question shown to the user.
type QuestionHistory struct {
	QuestionID string    `json:"questionId"`
	Question   string    `json:"question"`
	AnsweredAt time.Time `json:"answeredAt"`
	AppName    string    `json:"appName"`
	Completed  bool      `json:"completed"`
}

// AppCategory groups catalog entries.
type AppCategory string

const (
	AppCategorySocial        AppCategory = "social"
	AppCategoryEntertainment AppCategory = "entertainment"
	AppCategoryNews          AppCategory = "news"
	AppCategoryGaming        AppCategory = "gaming"
	AppCategoryProductivity  AppCategory = "productivity"
	AppCategoryWellness      AppCategory = "wellness"
	AppCategoryLearning      AppCategory = "learning"
	AppCategoryCreative      AppCategory = "creative"
)

// PopularApp is a catalog entry offered when adding a tracked app.
type PopularApp struct {
	Name     string      `json:"name"`
	DeepLink string      `json:"deepLink"`
	Icon     string      `json:"icon"`
	Category AppCategory `json:"category"`
}

// ProductiveApp is an alternative offered after a reflection.
type ProductiveApp struct {
	Name        string      `json:"name"`
	DeepLink    string      `json:"deepLink"`
	Icon        string      `json:"icon"`
	Description string      `json:"description"`
	Category    AppCategory `json:"category"`
}

// UsageStats summarises the reflection sessions of one app.
type UsageStats struct {
	TotalReflections      int        `json:"totalReflections"`
	CompletedReflections  int        `json:"completedReflections"`
	BypassedReflections   int        `json:"bypassedReflections"`
	AverageReflectionTime float64    `json:"averageReflectionTime"` // seconds
	LastUsed              *time.Time `json:"lastUsed,omitempty"`
}
