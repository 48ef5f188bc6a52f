// Package store persists app configs, global settings, question history and
// reflection sessions. It is a single-writer local store: concurrent app
// instances get last-write-wins semantics and nothing stronger.
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/intentional-app/intentional/internal/clock"
	"github.com/intentional-app/intentional/internal/model"
)

// ErrNotFound is returned when an update or delete targets a missing record.
var ErrNotFound = errors.New("store: not found")

// Store is the configuration store consumed by the core.
type Store interface {
	LoadAppConfigs(ctx context.Context) ([]model.AppConfig, error)
	// GetAppConfig returns nil and no error when id is unknown.
	GetAppConfig(ctx context.Context, id string) (*model.AppConfig, error)
	SaveAppConfig(ctx context.Context, cfg model.AppConfig) error
	DeleteAppConfig(ctx context.Context, id string) error

	// LoadReflectionSessions returns sessions in ascending start order.
	LoadReflectionSessions(ctx context.Context) ([]model.ReflectionSession, error)
	SaveReflectionSession(ctx context.Context, s model.ReflectionSession) error
	// LatestSessionForApp returns nil and no error when the app has no sessions.
	LatestSessionForApp(ctx context.Context, appID string) (*model.ReflectionSession, error)
	UsageStats(ctx context.Context, appID string) (model.UsageStats, error)

	LoadGlobalSettings(ctx context.Context) (model.GlobalSettings, error)
	SaveGlobalSettings(ctx context.Context, s model.GlobalSettings) error

	LoadQuestionHistory(ctx context.Context) ([]model.QuestionHistory, error)
	RecentQuestions(ctx context.Context, days int) ([]string, error)
	SaveQuestionHistory(ctx context.Context, entry model.QuestionHistory) error

	ClearAll(ctx context.Context) error
	Close() error
}

// Retention limits applied on every write.
const (
	DefaultMaxSessions = 50
	DefaultMaxHistory  = 100
)

// Options configures a backend.
type Options struct {
	Clock       clock.Clock
	MaxSessions int
	MaxHistory  int
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = clock.System{}
	}
	if o.MaxSessions <= 0 {
		o.MaxSessions = DefaultMaxSessions
	}
	if o.MaxHistory <= 0 {
		o.MaxHistory = DefaultMaxHistory
	}
	return o
}

// ComputeUsageStats summarises the sessions belonging to appID.
func ComputeUsageStats(sessions []model.ReflectionSession, appID string) model.UsageStats {
	var stats model.UsageStats
	var total time.Duration
	var timed int
	for _, s := range sessions {
		if s.AppID != appID {
			continue
		}
		stats.TotalReflections++
		if s.Bypassed() {
			stats.BypassedReflections++
		}
		if s.CountdownCompleted() {
			stats.CompletedReflections++
			if s.EndTime != nil {
				total += s.Duration()
				timed++
			}
		}
		if stats.LastUsed == nil || s.StartTime.After(*stats.LastUsed) {
			start := s.StartTime
			stats.LastUsed = &start
		}
	}
	if timed > 0 {
		stats.AverageReflectionTime = total.Seconds() / float64(stats.CompletedReflections)
	}
	return stats
}

// latestFor returns the session of appID with the greatest start time.
func latestFor(sessions []model.ReflectionSession, appID string) *model.ReflectionSession {
	var latest *model.ReflectionSession
	for i := range sessions {
		s := sessions[i]
		if s.AppID != appID {
			continue
		}
		if latest == nil || s.StartTime.After(latest.StartTime) {
			latest = &s
		}
	}
	return latest
}

func sortSessions(sessions []model.ReflectionSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartTime.Before(sessions[j].StartTime)
	})
}
