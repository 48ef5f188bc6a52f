package reflection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/intentional-app/intentional/internal/apps"
	"github.com/intentional-app/intentional/internal/clock"
	"github.com/intentional-app/intentional/internal/launch"
	"github.com/intentional-app/intentional/internal/log"
	"github.com/intentional-app/intentional/internal/model"
	"github.com/intentional-app/intentional/internal/navigation"
	"github.com/intentional-app/intentional/internal/store"
)

// Decider carries out the choice made on the post-reflection screen. Every
// outcome is written to the most recently started session of the app,
// unless the params say no reflection took place.
type Decider struct {
	Store    store.Store
	Apps     *apps.Service
	Launcher launch.Launcher
	Nav      navigation.Dispatcher
	Clock    clock.Clock
	Location *time.Location
	Events   log.Sink
	Logger   *zap.Logger
}

func (d *Decider) clock() clock.Clock {
	if d.Clock == nil {
		return clock.System{}
	}
	return d.Clock
}

func (d *Decider) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Alternatives returns the productive apps to offer instead of the target.
func (d *Decider) Alternatives(ctx context.Context) []model.ProductiveApp {
	settings, err := d.Store.LoadGlobalSettings(ctx)
	if err != nil {
		d.logger().Warn("load settings for alternatives", zap.Error(err))
		settings = model.DefaultSettings()
	}
	now := d.clock().Now()
	if d.Location != nil {
		now = now.In(d.Location)
	}
	return apps.Alternatives(settings, now)
}

// Proceed records the launch and opens the target app. If the app cannot be
// opened the error wraps launch.ErrLaunchFailed and the shell stays put.
func (d *Decider) Proceed(ctx context.Context, p navigation.Params) error {
	if _, err := d.Apps.RecordLaunch(ctx, p.AppID); err != nil {
		d.logger().Warn("record app launch", zap.String("app_id", p.AppID), zap.Error(err))
	}
	sessionID := d.updateLatest(ctx, p, func(s *model.ReflectionSession) {
		s.ProceededToApp = true
	})

	if err := d.open(ctx, p, sessionID, p.TargetDeepLink, p.AppName); err != nil {
		return err
	}
	d.emit(log.LogEvent{Event: log.EventProceededToApp, SessionID: sessionID, AppID: p.AppID, AppName: p.AppName, URL: p.TargetDeepLink})
	d.Nav.ResetTo(navigation.Dashboard)
	return nil
}

// ChooseAlternative records alt on the session and opens it instead.
func (d *Decider) ChooseAlternative(ctx context.Context, p navigation.Params, alt model.ProductiveApp) error {
	sessionID := d.updateLatest(ctx, p, func(s *model.ReflectionSession) {
		s.AlternativeAppChosen = alt.Name
	})

	if err := d.open(ctx, p, sessionID, alt.DeepLink, alt.Name); err != nil {
		return err
	}
	d.emit(log.LogEvent{Event: log.EventAlternativeChosen, SessionID: sessionID, AppID: p.AppID, AppName: p.AppName, Alternative: alt.Name, URL: alt.DeepLink})
	d.Nav.ResetTo(navigation.Dashboard)
	return nil
}

// Decline returns to the dashboard without opening anything.
func (d *Decider) Decline(ctx context.Context, p navigation.Params) {
	var sessionID string
	if !p.Unreflected {
		if latest, err := d.Store.LatestSessionForApp(ctx, p.AppID); err == nil && latest != nil {
			sessionID = latest.ID
		}
	}
	d.emit(log.LogEvent{Event: log.EventReflectionDeclined, SessionID: sessionID, AppID: p.AppID, AppName: p.AppName})
	d.Nav.ResetTo(navigation.Dashboard)
}

func (d *Decider) open(ctx context.Context, p navigation.Params, sessionID, link, name string) error {
	err := d.Launcher.Open(ctx, link)
	if err == nil {
		return nil
	}
	if !errors.Is(err, launch.ErrLaunchFailed) {
		err = fmt.Errorf("%w: %v", launch.ErrLaunchFailed, err)
	}
	d.logger().Warn("launch failed", zap.String("app", name), zap.String("link", link), zap.Error(err))
	d.emit(log.LogEvent{Event: log.EventLaunchFailed, SessionID: sessionID, AppID: p.AppID, AppName: name, URL: link, Error: err.Error()})
	return fmt.Errorf("open %s: %w", name, err)
}

// updateLatest applies fn to the newest session of the app in p and saves
// it, returning its ID. Missing sessions and store failures are logged only.
func (d *Decider) updateLatest(ctx context.Context, p navigation.Params, fn func(*model.ReflectionSession)) string {
	if p.Unreflected {
		return ""
	}
	appID := p.AppID
	latest, err := d.Store.LatestSessionForApp(ctx, appID)
	if err != nil {
		d.logger().Warn("load latest session", zap.String("app_id", appID), zap.Error(err))
		return ""
	}
	if latest == nil {
		d.logger().Debug("no session to update", zap.String("app_id", appID))
		return ""
	}
	fn(latest)
	if err := d.Store.SaveReflectionSession(ctx, *latest); err != nil {
		d.logger().Warn("save session decision", zap.String("session", latest.ID), zap.Error(err))
	}
	return latest.ID
}

func (d *Decider) emit(e log.LogEvent) {
	if d.Events == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = d.clock().Now()
	}
	if err := d.Events.Append(e); err != nil {
		d.logger().Warn("append audit event", zap.String("event", e.Event), zap.Error(err))
	}
}
