package store

import (
	"context"
	"slices"
	"sync"

	"github.com/intentional-app/intentional/internal/model"
)

// Memory is a Store kept entirely in process memory. It backs tests and the
// "memory" storage backend.
type Memory struct {
	mu       sync.RWMutex
	opts     Options
	configs  []model.AppConfig // insertion order
	sessions []model.ReflectionSession
	history  []model.QuestionHistory
	settings *model.GlobalSettings
}

// NewMemory returns an empty in-memory store.
func NewMemory(opts Options) *Memory {
	return &Memory{opts: opts.withDefaults()}
}

func (m *Memory) LoadAppConfigs(ctx context.Context) ([]model.AppConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.configs), nil
}

func (m *Memory) GetAppConfig(ctx context.Context, id string) (*model.AppConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.configs {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *Memory) SaveAppConfig(ctx context.Context, cfg model.AppConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.opts.Clock.Now()
	for i, c := range m.configs {
		if c.ID == cfg.ID {
			cfg.CreatedAt = c.CreatedAt
			cfg.UpdatedAt = now
			m.configs[i] = cfg
			return nil
		}
	}
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	if cfg.UpdatedAt.IsZero() {
		cfg.UpdatedAt = cfg.CreatedAt
	}
	m.configs = append(m.configs, cfg)
	return nil
}

func (m *Memory) DeleteAppConfig(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.configs {
		if c.ID == id {
			m.configs = slices.Delete(m.configs, i, i+1)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) LoadReflectionSessions(ctx context.Context) ([]model.ReflectionSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.sessions), nil
}

func (m *Memory) SaveReflectionSession(ctx context.Context, s model.ReflectionSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	replaced := false
	for i := range m.sessions {
		if m.sessions[i].ID == s.ID {
			m.sessions[i] = s
			replaced = true
			break
		}
	}
	if !replaced {
		m.sessions = append(m.sessions, s)
	}
	sortSessions(m.sessions)
	if extra := len(m.sessions) - m.opts.MaxSessions; extra > 0 {
		m.sessions = slices.Clone(m.sessions[extra:])
	}
	return nil
}

func (m *Memory) LatestSessionForApp(ctx context.Context, appID string) (*model.ReflectionSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return latestFor(m.sessions, appID), nil
}

func (m *Memory) UsageStats(ctx context.Context, appID string) (model.UsageStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ComputeUsageStats(m.sessions, appID), nil
}

func (m *Memory) LoadGlobalSettings(ctx context.Context) (model.GlobalSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return model.DefaultSettings(), nil
	}
	s := *m.settings
	s.SelectedProductiveApps = slices.Clone(s.SelectedProductiveApps)
	return s, nil
}

func (m *Memory) SaveGlobalSettings(ctx context.Context, s model.GlobalSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.SelectedProductiveApps = slices.Clone(s.SelectedProductiveApps)
	m.settings = &s
	return nil
}

func (m *Memory) LoadQuestionHistory(ctx context.Context) ([]model.QuestionHistory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.history), nil
}

func (m *Memory) RecentQuestions(ctx context.Context, days int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cutoff := m.opts.Clock.Now().AddDate(0, 0, -days)
	var out []string
	for _, h := range m.history {
		if !h.AnsweredAt.Before(cutoff) {
			out = append(out, h.Question)
		}
	}
	return out, nil
}

func (m *Memory) SaveQuestionHistory(ctx context.Context, entry model.QuestionHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, entry)
	if extra := len(m.history) - m.opts.MaxHistory; extra > 0 {
		m.history = slices.Clone(m.history[extra:])
	}
	return nil
}

func (m *Memory) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs, m.sessions, m.history, m.settings = nil, nil, nil, nil
	return nil
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
