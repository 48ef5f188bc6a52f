package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/intentional-app/intentional/internal/deeplink"
	"github.com/intentional-app/intentional/internal/model"
	"github.com/intentional-app/intentional/internal/router"
)

// dashboard lists the tracked apps with their reflection stats.
type dashboard struct {
	app      *App
	configs  []model.AppConfig
	stats    map[string]model.UsageStats
	settings model.GlobalSettings
	cursor   int

	input   textinput.Model
	linking bool
	err     error
}

func newDashboard(a *App) *dashboard {
	ti := textinput.New()
	ti.Placeholder = "intentional://reflect?app=instagram"
	ti.CharLimit = 512
	ti.Width = 48
	return &dashboard{app: a, input: ti, stats: map[string]model.UsageStats{}}
}

// Init reloads apps, stats and settings.
func (d *dashboard) Init() tea.Cmd {
	ctx := d.app.ctx
	d.err = nil

	configs, err := d.app.deps.Apps.List(ctx)
	if err != nil {
		d.err = err
		return nil
	}
	d.configs = configs
	for _, c := range configs {
		st, err := d.app.deps.Store.UsageStats(ctx, c.ID)
		if err != nil {
			d.app.deps.Logger.Warn("load usage stats", zap.String("app_id", c.ID), zap.Error(err))
			continue
		}
		d.stats[c.ID] = st
	}
	settings, err := d.app.deps.Store.LoadGlobalSettings(ctx)
	if err != nil {
		d.err = err
		settings = model.DefaultSettings()
	}
	d.settings = settings
	if d.cursor >= len(d.configs) {
		d.cursor = max(len(d.configs)-1, 0)
	}
	return nil
}

func (d *dashboard) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		if d.linking {
			var cmd tea.Cmd
			d.input, cmd = d.input.Update(msg)
			return cmd
		}
		return nil
	}

	if d.linking {
		return d.updateLinkInput(km)
	}

	switch {
	case key.Matches(km, DefaultKeyMap.Up):
		if d.cursor > 0 {
			d.cursor--
		}
	case key.Matches(km, DefaultKeyMap.Down):
		if d.cursor < len(d.configs)-1 {
			d.cursor++
		}
	case key.Matches(km, DefaultKeyMap.Enter):
		if len(d.configs) == 0 {
			return nil
		}
		cfg := d.configs[d.cursor]
		d.open(deeplink.BuildLink(d.app.deps.Env, deeplink.ActionReflect, cfg.Name))
	case key.Matches(km, DefaultKeyMap.OpenLink):
		d.linking = true
		return d.input.Focus()
	case key.Matches(km, DefaultKeyMap.TogglePause):
		d.togglePause()
	case key.Matches(km, DefaultKeyMap.Quit):
		return quit
	}
	return nil
}

func (d *dashboard) updateLinkInput(km tea.KeyMsg) tea.Cmd {
	switch km.String() {
	case KeyEsc:
		d.linking = false
		d.input.Blur()
		d.input.Reset()
		return nil
	case KeyEnter:
		url := strings.TrimSpace(d.input.Value())
		d.linking = false
		d.input.Blur()
		d.input.Reset()
		if url != "" {
			d.open(url)
		}
		return nil
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(km)
	return cmd
}

// open routes url as though the OS had handed it to the app.
func (d *dashboard) open(url string) {
	d.app.setNotice("")
	res := d.app.HandleLink(url)
	switch res.Outcome {
	case router.OutcomeNotFound:
		d.app.setNotice(fmt.Sprintf("No tracked app matches %q.", res.Intent.App))
	case router.OutcomeFailed, router.OutcomeUnhandled:
		d.app.setNotice("That link could not be opened.")
	case router.OutcomePaused:
		d.app.setNotice("Reflections are paused.")
	}
}

func (d *dashboard) togglePause() {
	d.settings.EnableAll = !d.settings.EnableAll
	if d.settings.EnableAll {
		d.settings.TemporaryDisableUntil = nil
	}
	if err := d.app.deps.Store.SaveGlobalSettings(d.app.ctx, d.settings); err != nil {
		d.err = err
	}
}

func (d *dashboard) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Intentional"))
	if d.settings.Paused(d.app.deps.Clock.Now()) {
		b.WriteString("  " + WarningStyle.Render("paused"))
	}
	b.WriteString("\n\n")

	if d.err != nil {
		b.WriteString(ErrorStyle.Render("Error: "+d.err.Error()) + "\n\n")
	}

	if len(d.configs) == 0 {
		b.WriteString(DimStyle.Render("No apps yet. Add one with 'intentional apps add'."))
	}
	for i, c := range d.configs {
		marker := AppDisabled
		if c.Enabled {
			marker = AppEnabled
		}
		prefix := "  "
		name := c.Name
		if i == d.cursor {
			prefix = Cursor + " "
			name = SelectedStyle.Render(name)
		}
		st := d.stats[c.ID]
		fmt.Fprintf(&b, "%s%s %-20s %s\n", prefix, marker, name,
			DimStyle.Render(fmt.Sprintf("%ds · %d reflections · %d completed · %d bypassed",
				c.Delay(), st.TotalReflections, st.CompletedReflections, st.BypassedReflections)))
	}

	if d.linking {
		b.WriteString("\n" + d.input.View())
	}
	return b.String()
}

func (d *dashboard) Keys() helpKeys {
	if d.linking {
		return helpKeys{DefaultKeyMap.Enter, DefaultKeyMap.Escape}
	}
	return helpKeys{DefaultKeyMap.Up, DefaultKeyMap.Down, DefaultKeyMap.Enter, DefaultKeyMap.OpenLink, DefaultKeyMap.TogglePause, DefaultKeyMap.Quit}
}
