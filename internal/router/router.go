// Package router is the entry point for inbound deep links: it parses the
// URL, finds the tracked app and sends the shell to the right screen.
package router

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/intentional-app/intentional/internal/apps"
	"github.com/intentional-app/intentional/internal/clock"
	"github.com/intentional-app/intentional/internal/deeplink"
	"github.com/intentional-app/intentional/internal/log"
	"github.com/intentional-app/intentional/internal/model"
	"github.com/intentional-app/intentional/internal/navigation"
	"github.com/intentional-app/intentional/internal/store"
)

// Outcome says what Handle did with a URL.
type Outcome string

const (
	OutcomeIgnored    Outcome = "ignored"
	OutcomeFailed     Outcome = "failed"
	OutcomeNotFound   Outcome = "not_found"
	OutcomeUnhandled  Outcome = "unhandled"
	OutcomePaused     Outcome = "paused"
	OutcomeReflection Outcome = "reflection"
)

// Router turns deep links into navigation.
type Router struct {
	Env    deeplink.Environment
	Store  store.Store
	Nav    navigation.Dispatcher
	Clock  clock.Clock
	Events log.Sink
	Logger *zap.Logger
}

// Result is the outcome of one URL along with the app it resolved to, if any.
type Result struct {
	Outcome Outcome
	Intent  deeplink.Intent
	App     *model.AppConfig
	Err     error
}

// Handle routes rawURL. It never fails: bad input sends the shell to the
// dashboard, ignorable development links do nothing at all.
func (r *Router) Handle(ctx context.Context, rawURL string) Result {
	lg := r.logger()
	r.emit(log.LogEvent{Event: log.EventDeepLinkReceived, URL: rawURL})

	intent, err := deeplink.Parse(r.Env, rawURL)
	switch {
	case errors.Is(err, deeplink.ErrIgnored):
		lg.Debug("ignoring development url", zap.String("url", rawURL))
		r.emit(log.LogEvent{Event: log.EventDeepLinkIgnored, URL: rawURL})
		return Result{Outcome: OutcomeIgnored, Err: err}
	case err != nil:
		lg.Warn("unusable deep link", zap.String("url", rawURL), zap.Error(err))
		r.emit(log.LogEvent{Event: log.EventDeepLinkFailed, URL: rawURL, Error: err.Error()})
		r.Nav.Navigate(navigation.Dashboard, navigation.Params{})
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	// Any link naming an app starts a reflection, whatever its action.
	if intent.App == "" {
		lg.Warn("deep link without an app", zap.String("action", intent.Action))
		r.emit(log.LogEvent{Event: log.EventDeepLinkFailed, URL: rawURL, Reason: "no app"})
		r.Nav.Navigate(navigation.Dashboard, navigation.Params{})
		return Result{Outcome: OutcomeUnhandled, Intent: intent}
	}

	cfg, err := apps.Resolve(ctx, r.Store, intent.App)
	if err != nil {
		lg.Error("resolve app", zap.String("app", intent.App), zap.Error(err))
		r.emit(log.LogEvent{Event: log.EventDeepLinkFailed, URL: rawURL, Error: err.Error()})
		r.Nav.Navigate(navigation.Dashboard, navigation.Params{})
		return Result{Outcome: OutcomeFailed, Intent: intent, Err: err}
	}
	if cfg == nil {
		lg.Info("no tracked app for deep link", zap.String("app", intent.App))
		r.emit(log.LogEvent{Event: log.EventAppNotFound, URL: rawURL, AppName: intent.App})
		r.Nav.Navigate(navigation.Dashboard, navigation.Params{})
		return Result{Outcome: OutcomeNotFound, Intent: intent}
	}

	if r.paused(ctx, cfg) {
		// No session exists for this visit, so the decision must not touch
		// an older one.
		lg.Info("reflections paused, skipping to decision", zap.String("app", cfg.Name))
		r.Nav.Navigate(navigation.PostReflection, navigation.Params{
			AppID: cfg.ID, AppName: cfg.Name, TargetDeepLink: cfg.DeepLink, Unreflected: true,
		})
		return Result{Outcome: OutcomePaused, Intent: intent, App: cfg}
	}

	r.Nav.Navigate(navigation.Reflection, navigation.Params{AppID: cfg.ID, TargetDeepLink: cfg.DeepLink})
	return Result{Outcome: OutcomeReflection, Intent: intent, App: cfg}
}

func (r *Router) paused(ctx context.Context, cfg *model.AppConfig) bool {
	if !cfg.Enabled {
		return true
	}
	settings, err := r.Store.LoadGlobalSettings(ctx)
	if err != nil {
		r.logger().Warn("load settings", zap.Error(err))
		return false
	}
	return settings.Paused(r.now())
}

func (r *Router) now() time.Time {
	if r.Clock == nil {
		return clock.System{}.Now()
	}
	return r.Clock.Now()
}

func (r *Router) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Router) emit(e log.LogEvent) {
	if r.Events == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = r.now()
	}
	if err := r.Events.Append(e); err != nil {
		r.logger().Warn("append audit event", zap.String("event", e.Event), zap.Error(err))
	}
}
