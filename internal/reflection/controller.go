// Package reflection drives one reflection attempt from deep link to
// decision: a countdown, then a question, with bypass and cancel exits.
package reflection

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/intentional-app/intentional/internal/clock"
	"github.com/intentional-app/intentional/internal/log"
	"github.com/intentional-app/intentional/internal/model"
	"github.com/intentional-app/intentional/internal/navigation"
	"github.com/intentional-app/intentional/internal/store"
)

var (
	ErrAppNotFound       = errors.New("app not found")
	ErrBypassUnavailable = errors.New("bypass is not available yet")
	ErrWrongPhase        = errors.New("not allowed in the current phase")
)

// QuestionSource supplies prompts and records which were shown.
type QuestionSource interface {
	GetSmartQuestion(ctx context.Context, category model.Category, appName string) string
	MarkUsed(question, appName string, completed bool)
}

// Deps are the collaborators of a reflection.
type Deps struct {
	Store     store.Store
	Questions QuestionSource
	Nav       navigation.Dispatcher
	Clock     clock.Clock
	Events    log.Sink
	Logger    *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.System{}
	}
	if d.Events == nil {
		d.Events = log.Nop{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

// Controller owns a single reflection session. It is not safe for
// concurrent use; all calls come from the goroutine that drives the screen.
type Controller struct {
	deps      Deps
	app       model.AppConfig
	target    string
	session   model.ReflectionSession
	elapsed   int
	remaining int
}

// Start loads the app, picks a question and persists a fresh session before
// anything is shown. If the app cannot be loaded the shell is sent back and
// the error is returned.
func Start(ctx context.Context, deps Deps, appID, targetDeepLink string) (*Controller, error) {
	deps = deps.withDefaults()

	cfg, err := deps.Store.GetAppConfig(ctx, appID)
	if err == nil && cfg == nil {
		err = fmt.Errorf("%w: %s", ErrAppNotFound, appID)
	}
	if err != nil {
		deps.Logger.Error("load app for reflection", zap.String("app_id", appID), zap.Error(err))
		emit(deps, log.LogEvent{Event: log.EventAppNotFound, AppID: appID, Error: err.Error()})
		deps.Nav.Back()
		return nil, fmt.Errorf("start reflection: %w", err)
	}
	if targetDeepLink == "" {
		targetDeepLink = cfg.DeepLink
	}

	question := deps.Questions.GetSmartQuestion(ctx, cfg.QuestionCategory, cfg.Name)
	now := deps.Clock.Now()
	c := &Controller{
		deps:      deps,
		app:       *cfg,
		target:    targetDeepLink,
		remaining: cfg.Delay(),
		session: model.ReflectionSession{
			ID:        strconv.FormatInt(now.UnixNano(), 10),
			AppID:     cfg.ID,
			AppName:   cfg.Name,
			Question:  question,
			StartTime: now,
			State:     model.Active(model.PhaseCountdown),
		},
	}
	c.persist(ctx)
	c.emit(log.LogEvent{Event: log.EventReflectionStarted, Question: question})
	deps.Logger.Debug("reflection started",
		zap.String("session", c.session.ID),
		zap.String("app", cfg.Name),
		zap.Int("delay_seconds", c.remaining))
	return c, nil
}

// Session returns a copy of the session record.
func (c *Controller) Session() model.ReflectionSession { return c.session }

// App returns the config the session was started for.
func (c *Controller) App() model.AppConfig { return c.app }

// Target returns the deep link opened if the user proceeds.
func (c *Controller) Target() string { return c.target }

// Question returns the prompt chosen for this session.
func (c *Controller) Question() string { return c.session.Question }

// State returns the current session state.
func (c *Controller) State() model.SessionState { return c.session.State }

// Remaining returns the countdown seconds left.
func (c *Controller) Remaining() int { return c.remaining }

// Elapsed returns the countdown seconds that have passed.
func (c *Controller) Elapsed() int { return c.elapsed }

// BypassThreshold is the elapsed second at which bypass unlocks. It is
// effectively infinite when the app does not allow bypass.
func (c *Controller) BypassThreshold() int {
	if !c.app.AllowBypass {
		return math.MaxInt
	}
	return c.app.BypassAfterSeconds
}

// BypassAvailable reports whether Bypass would succeed now.
func (c *Controller) BypassAvailable() bool {
	return c.inPhase(model.PhaseCountdown) && c.elapsed >= c.BypassThreshold()
}

// Params are the route arguments handed to the post-decision screen.
func (c *Controller) Params() navigation.Params {
	return navigation.Params{AppID: c.app.ID, AppName: c.app.Name, TargetDeepLink: c.target}
}

func (c *Controller) inPhase(p model.SessionPhase) bool {
	return c.session.State == model.Active(p)
}

// Tick advances the countdown by one second. When it reaches zero the
// session moves to the question phase and Tick returns true. Ticks outside
// the countdown are ignored.
func (c *Controller) Tick(ctx context.Context) bool {
	if !c.inPhase(model.PhaseCountdown) {
		return false
	}
	if c.remaining > 0 {
		c.remaining--
		c.elapsed++
	}
	if c.remaining > 0 {
		return false
	}

	now := c.deps.Clock.Now()
	c.session.State = model.Active(model.PhaseQuestion)
	c.session.EndTime = &now
	c.persist(ctx)
	c.emit(log.LogEvent{Event: log.EventCountdownCompleted, Elapsed: c.elapsed})
	return true
}

// Bypass leaves the countdown early and goes straight to the decision
// screen. The question counts as shown but not answered.
func (c *Controller) Bypass(ctx context.Context) error {
	if !c.inPhase(model.PhaseCountdown) {
		return fmt.Errorf("bypass: %w", ErrWrongPhase)
	}
	if !c.BypassAvailable() {
		return fmt.Errorf("bypass after %ds: %w", c.elapsed, ErrBypassUnavailable)
	}

	now := c.deps.Clock.Now()
	c.session.State = model.Completed(model.CauseBypassed)
	c.session.EndTime = &now
	c.deps.Questions.MarkUsed(c.session.Question, c.app.Name, false)
	c.persist(ctx)
	c.emit(log.LogEvent{Event: log.EventReflectionBypassed, Elapsed: c.elapsed})
	c.deps.Nav.Navigate(navigation.PostReflection, c.Params())
	return nil
}

// Cancel abandons the reflection from either phase and resets the shell to
// the dashboard so the reflection cannot be re-entered with back.
func (c *Controller) Cancel(ctx context.Context) error {
	if c.session.State.Terminal() {
		return fmt.Errorf("cancel: %w", ErrWrongPhase)
	}

	phase := c.session.State.Phase
	now := c.deps.Clock.Now()
	c.session.State = model.Cancelled(phase)
	c.session.EndTime = &now
	c.persist(ctx)
	c.emit(log.LogEvent{Event: log.EventReflectionCancelled, Phase: string(phase), Elapsed: c.elapsed})
	c.deps.Nav.ResetTo(navigation.Dashboard)
	return nil
}

// Answer completes the question phase. Any text is accepted, including
// empty; the answer itself is not stored.
func (c *Controller) Answer(ctx context.Context, answer string) error {
	if !c.inPhase(model.PhaseQuestion) {
		return fmt.Errorf("answer: %w", ErrWrongPhase)
	}

	c.deps.Questions.MarkUsed(c.session.Question, c.app.Name, true)
	c.session.State = model.Completed(model.CauseAnswered)
	if c.session.EndTime == nil {
		now := c.deps.Clock.Now()
		c.session.EndTime = &now
	}
	c.persist(ctx)
	c.emit(log.LogEvent{Event: log.EventQuestionAnswered, Question: c.session.Question, DurationMs: c.session.Duration().Milliseconds()})
	c.deps.Nav.Navigate(navigation.PostReflection, c.Params())
	return nil
}

// Skip moves on from the question without an answer. It is recorded the
// same way as an answer.
func (c *Controller) Skip(ctx context.Context) error {
	return c.Answer(ctx, "")
}

// persist saves the session. Failures are logged and the flow continues.
func (c *Controller) persist(ctx context.Context) {
	if err := c.deps.Store.SaveReflectionSession(ctx, c.session); err != nil {
		c.deps.Logger.Warn("save reflection session",
			zap.String("session", c.session.ID),
			zap.String("state", string(c.session.State.Kind)),
			zap.Error(err))
	}
}

func (c *Controller) emit(e log.LogEvent) {
	e.SessionID = c.session.ID
	e.AppID = c.app.ID
	e.AppName = c.app.Name
	emit(c.deps, e)
}

func emit(deps Deps, e log.LogEvent) {
	if e.Time.IsZero() {
		e.Time = deps.Clock.Now()
	}
	if err := deps.Events.Append(e); err != nil {
		deps.Logger.Warn("append audit event", zap.String("event", e.Event), zap.Error(err))
	}
}
