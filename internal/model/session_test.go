package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionFlagsFollowState(t *testing.T) {
	tests := []struct {
		name      string
		state     SessionState
		completed bool
		bypassed  bool
		cancelled bool
	}{
		{"counting down", Active(PhaseCountdown), false, false, false},
		{"question shown", Active(PhaseQuestion), true, false, false},
		{"answered", Completed(CauseAnswered), true, false, false},
		{"bypassed", Completed(CauseBypassed), false, true, false},
		{"cancelled in countdown", Cancelled(PhaseCountdown), false, false, true},
		{"cancelled in question", Cancelled(PhaseQuestion), true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ReflectionSession{State: tt.state}
			assert.Equal(t, tt.completed, s.CountdownCompleted())
			assert.Equal(t, tt.bypassed, s.Bypassed())
			assert.Equal(t, tt.cancelled, s.Cancelled())
		})
	}
}

func TestSessionJSONCarriesFlagsAndDecodes(t *testing.T) {
	start := time.Date(2026, 10, 14, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Minute)
	s := ReflectionSession{ID: "1", AppID: "42", StartTime: start, EndTime: &end, State: Completed(CauseBypassed)}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, true, flat["bypassed"])
	assert.Equal(t, false, flat["cancelled"])

	var back ReflectionSession
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s.State, back.State)
	assert.Equal(t, time.Minute, back.Duration())
}

func TestSettingsPaused(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	s := DefaultSettings()
	assert.False(t, s.Paused(now))

	until := now.Add(time.Hour)
	s.TemporaryDisableUntil = &until
	assert.True(t, s.Paused(now))
	assert.False(t, s.Paused(now.Add(2*time.Hour)))

	s = DefaultSettings()
	s.EnableAll = false
	assert.True(t, s.Paused(now))
}
