package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/intentional-app/intentional/internal/model"
)

// Snapshot is the full contents of a store, as written by Export.
type Snapshot struct {
	AppConfigs      []model.AppConfig         `json:"appConfigs"`
	Settings        model.GlobalSettings      `json:"globalSettings"`
	QuestionHistory []model.QuestionHistory   `json:"questionHistory"`
	Sessions        []model.ReflectionSession `json:"reflectionSessions"`
	ExportedAt      time.Time                 `json:"exportedAt"`
}

// Export reads every record from s into a Snapshot stamped with now.
func Export(ctx context.Context, s Store, now time.Time) (Snapshot, error) {
	configs, err := s.LoadAppConfigs(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load app configs: %w", err)
	}
	settings, err := s.LoadGlobalSettings(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load settings: %w", err)
	}
	history, err := s.LoadQuestionHistory(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load question history: %w", err)
	}
	sessions, err := s.LoadReflectionSessions(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load sessions: %w", err)
	}
	return Snapshot{
		AppConfigs:      configs,
		Settings:        settings,
		QuestionHistory: history,
		Sessions:        sessions,
		ExportedAt:      now,
	}, nil
}

// WriteJSON writes snap to w as indented JSON.
func (snap Snapshot) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}
