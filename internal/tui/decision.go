package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/intentional-app/intentional/internal/model"
	"github.com/intentional-app/intentional/internal/navigation"
	"github.com/intentional-app/intentional/internal/reflection"
)

type choiceKind int

const (
	choiceProceed choiceKind = iota
	choiceAlternative
	choiceDecline
)

type choice struct {
	kind  choiceKind
	label string
	alt   model.ProductiveApp
}

// decisionScreen is shown after a reflection: open the app, pick an
// alternative or do nothing.
type decisionScreen struct {
	app     *App
	params  navigation.Params
	decider *reflection.Decider
	choices []choice
	cursor  int
	err     error
}

func newDecisionScreen(a *App, p navigation.Params) *decisionScreen {
	d := &reflection.Decider{
		Store:    a.deps.Store,
		Apps:     a.deps.Apps,
		Launcher: a.deps.Launcher,
		Nav:      a,
		Clock:    a.deps.Clock,
		Location: a.deps.Location,
		Events:   a.deps.Events,
		Logger:   a.deps.Logger,
	}

	name := p.AppName
	if name == "" {
		name = "the app"
	}
	choices := []choice{{kind: choiceProceed, label: "Open " + name}}
	for _, alt := range d.Alternatives(a.ctx) {
		choices = append(choices, choice{
			kind:  choiceAlternative,
			label: fmt.Sprintf("%s  %s", alt.Name, DimStyle.Render(alt.Description)),
			alt:   alt,
		})
	}
	choices = append(choices, choice{kind: choiceDecline, label: "Not now"})

	return &decisionScreen{app: a, params: p, decider: d, choices: choices}
}

func (s *decisionScreen) Init() tea.Cmd { return nil }

func (s *decisionScreen) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(km, DefaultKeyMap.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(km, DefaultKeyMap.Down):
		if s.cursor < len(s.choices)-1 {
			s.cursor++
		}
	case key.Matches(km, DefaultKeyMap.Escape):
		s.decider.Decline(s.app.ctx, s.params)
	case key.Matches(km, DefaultKeyMap.Enter):
		s.choose(s.choices[s.cursor])
	}
	return nil
}

func (s *decisionScreen) choose(c choice) {
	ctx := s.app.ctx
	s.err = nil
	switch c.kind {
	case choiceProceed:
		s.err = s.decider.Proceed(ctx, s.params)
	case choiceAlternative:
		s.err = s.decider.ChooseAlternative(ctx, s.params, c.alt)
	case choiceDecline:
		s.decider.Decline(ctx, s.params)
	}
}

func (s *decisionScreen) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("What would you like to do?") + "\n\n")
	for i, c := range s.choices {
		if c.kind == choiceAlternative && (i == 0 || s.choices[i-1].kind != choiceAlternative) {
			b.WriteString(DimStyle.Render("Or try something else:") + "\n")
		}
		if i == s.cursor {
			b.WriteString(Cursor + " " + SelectedStyle.Render(c.label) + "\n")
		} else {
			b.WriteString("  " + c.label + "\n")
		}
	}
	if s.err != nil {
		b.WriteString("\n" + ErrorStyle.Render(s.err.Error()))
	}
	return b.String()
}

func (s *decisionScreen) Keys() helpKeys {
	return helpKeys{DefaultKeyMap.Up, DefaultKeyMap.Down, DefaultKeyMap.Enter}
}

// notice stands in for screens the terminal shell does not render.
type notice struct {
	app    *App
	screen navigation.Screen
}

func newNotice(a *App, s navigation.Screen) *notice {
	return &notice{app: a, screen: s}
}

func (n *notice) Init() tea.Cmd { return nil }

func (n *notice) Update(msg tea.Msg) tea.Cmd {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, DefaultKeyMap.Escape) {
		n.app.Back()
	}
	return nil
}

func (n *notice) View() string {
	return fmt.Sprintf("%s\n\n%s", TitleStyle.Render(string(n.screen)),
		DimStyle.Render("Use the 'intentional apps' and 'intentional settings' commands here."))
}

func (n *notice) Keys() helpKeys {
	esc := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back"))
	return helpKeys{esc}
}
