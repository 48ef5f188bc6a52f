// Package testutil provides test helpers shared by the intentional packages.
package testutil

import (
	"sync"
	"time"

	"github.com/intentional-app/intentional/internal/model"
)

// Epoch is the reference instant used by fixtures: a Tuesday at 10:00 UTC.
var Epoch = time.Date(2024, time.March, 12, 10, 0, 0, 0, time.UTC)

// Clock is a manually advanced clock. The zero value is not usable; use NewClock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock stopped at t.
func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// AppConfig returns an enabled config named name with the given id and
// delays, tracking the default question bank.
func AppConfig(id, name string, delay, bypassAfter int) model.AppConfig {
	return model.AppConfig{
		ID:                 id,
		Name:               name,
		DeepLink:           "instagram://",
		Enabled:            true,
		DelaySeconds:       delay,
		AllowBypass:        true,
		BypassAfterSeconds: bypassAfter,
		QuestionCategory:   model.CategoryDefault,
		CreatedAt:          Epoch,
		UpdatedAt:          Epoch,
	}
}

// Session returns an active countdown session for app started at start.
func Session(id string, app model.AppConfig, start time.Time) model.ReflectionSession {
	return model.ReflectionSession{
		ID:        id,
		AppID:     app.ID,
		AppName:   app.Name,
		Question:  "What is your intention?",
		StartTime: start,
		State:     model.Active(model.PhaseCountdown),
	}
}
