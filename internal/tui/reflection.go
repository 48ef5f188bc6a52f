package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/intentional-app/intentional/internal/model"
	"github.com/intentional-app/intentional/internal/navigation"
	"github.com/intentional-app/intentional/internal/reflection"
)

const bypassLabel = "I have a specific purpose"

// reflectionScreen shows the countdown and then the question.
type reflectionScreen struct {
	app  *App
	ctrl *reflection.Controller // nil when the session could not start

	bar   progress.Model
	input textinput.Model
	err   error
}

func newReflectionScreen(a *App, p navigation.Params) *reflectionScreen {
	ti := textinput.New()
	ti.Placeholder = "Type your answer, or press enter to continue"
	ti.CharLimit = 280
	ti.Width = 56

	s := &reflectionScreen{
		app:   a,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40), progress.WithoutPercentage()),
		input: ti,
	}

	ctrl, err := reflection.Start(a.ctx, reflection.Deps{
		Store:     a.deps.Store,
		Questions: a.deps.Questions,
		Nav:       a,
		Clock:     a.deps.Clock,
		Events:    a.deps.Events,
		Logger:    a.deps.Logger,
	}, p.AppID, p.TargetDeepLink)
	if err != nil {
		// Start already sent the shell back.
		a.setNotice("That app is no longer tracked.")
		s.err = err
		return s
	}
	s.ctrl = ctrl
	return s
}

func (s *reflectionScreen) Init() tea.Cmd {
	if s.ctrl == nil {
		return nil
	}
	if s.ctrl.State() == model.Active(model.PhaseCountdown) {
		return tickCmd(s.ctrl.Session().ID)
	}
	return nil
}

func (s *reflectionScreen) Update(msg tea.Msg) tea.Cmd {
	if s.ctrl == nil {
		return nil
	}
	ctx := s.app.ctx

	switch msg := msg.(type) {
	case tickMsg:
		if msg.SessionID != s.ctrl.Session().ID {
			return nil
		}
		if s.ctrl.Tick(ctx) {
			return s.input.Focus()
		}
		if s.ctrl.State() == model.Active(model.PhaseCountdown) {
			return tickCmd(msg.SessionID)
		}
		return nil

	case tea.KeyMsg:
		if s.ctrl.State().Terminal() {
			return nil
		}
		if key.Matches(msg, DefaultKeyMap.Escape) {
			s.report(s.ctrl.Cancel(ctx))
			return nil
		}
		if s.ctrl.State() == model.Active(model.PhaseCountdown) {
			if key.Matches(msg, DefaultKeyMap.Bypass) {
				err := s.ctrl.Bypass(ctx)
				if errors.Is(err, reflection.ErrBypassUnavailable) {
					return nil
				}
				s.report(err)
			}
			return nil
		}

		// Question phase.
		switch {
		case key.Matches(msg, DefaultKeyMap.Enter):
			s.report(s.ctrl.Answer(ctx, s.input.Value()))
			return nil
		case key.Matches(msg, DefaultKeyMap.Skip):
			s.report(s.ctrl.Skip(ctx))
			return nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd
	}
	return nil
}

func (s *reflectionScreen) report(err error) {
	if err != nil {
		s.err = err
		s.app.deps.Logger.Warn("reflection action", zap.Error(err))
	}
}

// abandon cancels a session that is still active.
func (s *reflectionScreen) abandon() {
	if s.ctrl == nil || s.ctrl.State().Terminal() {
		return
	}
	s.report(s.ctrl.Cancel(s.app.ctx))
}

func (s *reflectionScreen) View() string {
	if s.ctrl == nil {
		return DimStyle.Render("Returning...")
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Before you open "+s.ctrl.App().Name) + "\n")

	if s.ctrl.State() == model.Active(model.PhaseCountdown) {
		delay := s.ctrl.Elapsed() + s.ctrl.Remaining()
		pct := 0.0
		if delay > 0 {
			pct = float64(s.ctrl.Elapsed()) / float64(delay)
		}
		b.WriteString(CountdownStyle.Render(fmt.Sprintf("%d", s.ctrl.Remaining())) + "\n")
		b.WriteString(s.bar.ViewAs(pct) + "\n\n")
		b.WriteString(DimStyle.Render("Take a breath.") + "\n")
		if s.ctrl.BypassAvailable() {
			b.WriteString("\n" + SelectedStyle.Render("[b] "+bypassLabel))
		}
	} else {
		b.WriteString("\n" + QuestionStyle.Render(s.ctrl.Question()) + "\n\n")
		b.WriteString(s.input.View())
	}

	if s.err != nil {
		b.WriteString("\n\n" + ErrorStyle.Render(s.err.Error()))
	}
	return b.String()
}

func (s *reflectionScreen) Keys() helpKeys {
	if s.ctrl != nil && s.ctrl.State() == model.Active(model.PhaseQuestion) {
		return helpKeys{DefaultKeyMap.Enter, DefaultKeyMap.Skip, DefaultKeyMap.Escape}
	}
	if s.ctrl != nil && s.ctrl.BypassAvailable() {
		return helpKeys{DefaultKeyMap.Bypass, DefaultKeyMap.Escape}
	}
	return helpKeys{DefaultKeyMap.Escape}
}
