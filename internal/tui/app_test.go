package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentional-app/intentional/internal/apps"
	"github.com/intentional-app/intentional/internal/deeplink"
	"github.com/intentional-app/intentional/internal/launch"
	"github.com/intentional-app/intentional/internal/log"
	"github.com/intentional-app/intentional/internal/model"
	"github.com/intentional-app/intentional/internal/navigation"
	"github.com/intentional-app/intentional/internal/questions"
	"github.com/intentional-app/intentional/internal/store"
	"github.com/intentional-app/intentional/internal/testutil"
)

type shell struct {
	app      *App
	store    *store.Memory
	clock    *testutil.Clock
	launcher *launch.Scripted
	events   *log.Memory
}

func newShell(t *testing.T) *shell {
	t.Helper()
	clk := testutil.NewClock(testutil.Epoch)
	st := store.NewMemory(store.Options{Clock: clk})
	require.NoError(t, st.SaveAppConfig(context.Background(), testutil.AppConfig("42", "My App", 3, 1)))

	sel := questions.NewSelector(st, questions.Options{Clock: clk, Location: time.UTC})
	t.Cleanup(func() { _ = sel.Close() })

	s := &shell{
		store:    st,
		clock:    clk,
		launcher: &launch.Scripted{Fail: map[string]bool{}},
		events:   &log.Memory{},
	}
	s.app = New(context.Background(), Deps{
		Store:     st,
		Questions: sel,
		Launcher:  s.launcher,
		Env:       deeplink.ProductionEnvironment(),
		Clock:     clk,
		Location:  time.UTC,
		Events:    s.events,
	})
	return s
}

func (s *shell) send(msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, m := range msgs {
		_, cmd = s.app.Update(m)
	}
	return cmd
}

func (s *shell) reflection(t *testing.T) *reflectionScreen {
	t.Helper()
	require.Equal(t, navigation.Reflection, s.app.Screen())
	r, ok := s.app.top().view.(*reflectionScreen)
	require.True(t, ok)
	require.NotNil(t, r.ctrl)
	return r
}

func (s *shell) tick(t *testing.T, n int) {
	t.Helper()
	r := s.reflection(t)
	for i := 0; i < n; i++ {
		s.clock.Advance(time.Second)
		s.send(tickMsg{SessionID: r.ctrl.Session().ID})
	}
}

func (s *shell) latest(t *testing.T) model.ReflectionSession {
	t.Helper()
	latest, err := s.store.LatestSessionForApp(context.Background(), "42")
	require.NoError(t, err)
	require.NotNil(t, latest)
	return *latest
}

func keys(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	ctrlC = tea.KeyMsg{Type: tea.KeyCtrlC}
)

func TestLinkBufferedUntilInit(t *testing.T) {
	s := newShell(t)

	s.app.HandleLink("intentional://reflect?app=my-app")
	assert.Equal(t, 1, s.app.deps.Queue.Pending())
	assert.Empty(t, s.app.Stack())

	s.app.Init()
	assert.Equal(t, []navigation.Screen{navigation.Dashboard, navigation.Reflection}, s.app.Stack())
	assert.Equal(t, 0, s.app.deps.Queue.Pending())
}

func TestCountdownAnswerAndProceed(t *testing.T) {
	s := newShell(t)
	s.app.HandleLink("intentional://reflect?app=my-app")
	s.app.Init()

	s.tick(t, 3)
	r := s.reflection(t)
	require.Equal(t, model.Active(model.PhaseQuestion), r.ctrl.State())
	assert.True(t, r.input.Focused())

	s.send(keys("to reply to a friend"), enter)
	require.Equal(t, navigation.PostReflection, s.app.Screen())
	assert.Equal(t, model.Completed(model.CauseAnswered), s.latest(t).State)

	s.send(enter)
	assert.Equal(t, []string{"instagram://"}, s.launcher.Opened())
	assert.Equal(t, []navigation.Screen{navigation.Dashboard}, s.app.Stack())
	assert.True(t, s.latest(t).ProceededToApp)
}

func TestStaleTickIgnored(t *testing.T) {
	s := newShell(t)
	s.app.HandleLink("intentional://reflect?app=my-app")
	s.app.Init()

	r := s.reflection(t)
	s.send(tickMsg{SessionID: "someone-else"})
	assert.Equal(t, 3, r.ctrl.Remaining())
}

func TestBypassThenAlternative(t *testing.T) {
	s := newShell(t)
	s.app.HandleLink("intentional://reflect?app=my-app")
	s.app.Init()

	s.send(keys("b"))
	require.Equal(t, navigation.Reflection, s.app.Screen(), "bypass is locked for the first second")

	s.tick(t, 1)
	s.send(keys("b"))
	require.Equal(t, navigation.PostReflection, s.app.Screen())
	assert.True(t, s.latest(t).Bypassed())

	alts := apps.Alternatives(model.DefaultSettings(), testutil.Epoch)
	require.NotEmpty(t, alts)
	s.send(down, enter)
	assert.Equal(t, []string{alts[0].DeepLink}, s.launcher.Opened())
	assert.Equal(t, alts[0].Name, s.latest(t).AlternativeAppChosen)
	assert.Equal(t, navigation.Dashboard, s.app.Screen())
}

func TestEscapeCancels(t *testing.T) {
	s := newShell(t)
	s.app.HandleLink("intentional://reflect?app=my-app")
	s.app.Init()

	s.send(esc)
	assert.Equal(t, []navigation.Screen{navigation.Dashboard}, s.app.Stack())
	assert.Equal(t, model.Cancelled(model.PhaseCountdown), s.latest(t).State)
}

func TestSkipQuestion(t *testing.T) {
	s := newShell(t)
	s.app.HandleLink("intentional://reflect?app=my-app")
	s.app.Init()

	s.tick(t, 3)
	s.send(tab)
	assert.Equal(t, navigation.PostReflection, s.app.Screen())
	assert.Equal(t, model.Completed(model.CauseAnswered), s.latest(t).State)
}

func TestDashboardEnterStartsReflection(t *testing.T) {
	s := newShell(t)
	s.app.Init()
	require.Equal(t, navigation.Dashboard, s.app.Screen())

	s.send(enter)
	r := s.reflection(t)
	assert.Equal(t, "My App", r.ctrl.App().Name)
}

func TestUnknownLinkShowsNotice(t *testing.T) {
	s := newShell(t)
	s.app.Init()

	s.send(LinkMsg{URL: "intentional://reflect?app=nope"})
	assert.Equal(t, []navigation.Screen{navigation.Dashboard}, s.app.Stack())
	assert.Contains(t, s.events.Names(), log.EventAppNotFound)

	s.send(keys("o"), keys("intentional://reflect?app=nope"), enter)
	assert.Contains(t, s.app.notice, "nope")
}

func TestFallbackLinksKeepOneDashboard(t *testing.T) {
	s := newShell(t)
	s.app.Init()
	dash := s.app.top().view

	s.send(
		LinkMsg{URL: "intentional://reflect?app=nope"},
		LinkMsg{URL: "intentional://settings"},
		LinkMsg{URL: "ftp://nowhere"},
	)
	assert.Equal(t, []navigation.Screen{navigation.Dashboard}, s.app.Stack())
	assert.Same(t, dash, s.app.top().view, "the existing dashboard is reused")

	s.send(LinkMsg{URL: "intentional://reflect?app=my-app"})
	require.Equal(t, []navigation.Screen{navigation.Dashboard, navigation.Reflection}, s.app.Stack())

	s.send(LinkMsg{URL: "intentional://reflect?app=nope"})
	assert.Equal(t, []navigation.Screen{navigation.Dashboard}, s.app.Stack())
}

func TestPauseSkipsReflection(t *testing.T) {
	s := newShell(t)
	s.app.Init()

	s.send(keys("p"))
	settings, err := s.store.LoadGlobalSettings(context.Background())
	require.NoError(t, err)
	assert.False(t, settings.EnableAll)

	s.send(enter)
	assert.Equal(t, navigation.PostReflection, s.app.Screen())
}

func TestDeletedAppGoesBack(t *testing.T) {
	s := newShell(t)
	s.app.Init()

	s.app.Navigate(navigation.Reflection, navigation.Params{AppID: "gone"})
	s.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	s.send(keys("x"))
	assert.Equal(t, []navigation.Screen{navigation.Dashboard}, s.app.Stack())
	assert.NotEmpty(t, s.app.notice)
}

func TestDoubleCtrlCQuitsAndCancels(t *testing.T) {
	s := newShell(t)
	s.app.HandleLink("intentional://reflect?app=my-app")
	s.app.Init()

	s.send(ctrlC)
	assert.True(t, s.app.CtrlCPending)
	assert.Contains(t, s.app.View(), "Ctrl+C again")

	cmd := s.send(ctrlC)
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
	assert.True(t, s.latest(t).Cancelled())
}

func TestViewsRender(t *testing.T) {
	s := newShell(t)
	s.app.Init()
	assert.Contains(t, s.app.View(), "My App")

	s.send(enter)
	assert.Contains(t, s.app.View(), "Before you open My App")

	s.tick(t, 1)
	assert.Contains(t, s.app.View(), bypassLabel)
}
