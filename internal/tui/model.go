package tui

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/intentional-app/intentional/internal/apps"
	"github.com/intentional-app/intentional/internal/clock"
	"github.com/intentional-app/intentional/internal/deeplink"
	"github.com/intentional-app/intentional/internal/launch"
	"github.com/intentional-app/intentional/internal/log"
	"github.com/intentional-app/intentional/internal/navigation"
	"github.com/intentional-app/intentional/internal/reflection"
	"github.com/intentional-app/intentional/internal/router"
	"github.com/intentional-app/intentional/internal/store"
)

// Deps holds everything the shell needs. Queue and Router are created when
// left nil.
type Deps struct {
	Store     store.Store
	Apps      *apps.Service
	Questions reflection.QuestionSource
	Launcher  launch.Launcher
	Env       deeplink.Environment
	Queue     *navigation.Queue
	Router    *router.Router
	Clock     clock.Clock
	Location  *time.Location
	Events    log.Sink
	Logger    *zap.Logger
}

// screen is one entry of the navigation stack.
type screen interface {
	// Init runs whenever the screen becomes the top of the stack.
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	Keys() helpKeys
}

type entry struct {
	req  navigation.Request
	view screen
}

// App is the root Bubble Tea model. It is also the navigation.Dispatcher of
// the shell: requests are collected while a message is handled and applied
// once it returns.
type App struct {
	ctx  context.Context
	deps Deps

	mu      sync.Mutex
	pending []navigation.Request

	stack  []entry
	help   help.Model
	notice string
	Err    error

	Width  int
	Height int

	// Ctrl+C confirmation state
	CtrlCPending bool
}

var _ navigation.Dispatcher = (*App)(nil)

// New creates the shell. Nothing is shown until Init binds the queue, so
// links handled before that are buffered.
func New(ctx context.Context, deps Deps) *App {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Events == nil {
		deps.Events = log.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Apps == nil {
		deps.Apps = apps.NewService(deps.Store, deps.Clock, deps.Logger)
	}
	if deps.Queue == nil {
		deps.Queue = navigation.NewQueue()
	}
	if deps.Router == nil {
		deps.Router = &router.Router{
			Env:    deps.Env,
			Store:  deps.Store,
			Nav:    deps.Queue,
			Clock:  deps.Clock,
			Events: deps.Events,
			Logger: deps.Logger,
		}
	}
	return &App{
		ctx:    ctx,
		deps:   deps,
		help:   help.New(),
		Width:  80,
		Height: 24,
	}
}

// HandleLink routes a deep link into the shell.
func (a *App) HandleLink(rawURL string) router.Result {
	return a.deps.Router.Handle(a.ctx, rawURL)
}

// Navigate shows screen. A screen already on the stack is returned to
// rather than pushed again.
func (a *App) Navigate(s navigation.Screen, p navigation.Params) {
	a.enqueue(navigation.Request{Screen: s, Params: p})
}

// ResetTo replaces the stack with screen.
func (a *App) ResetTo(s navigation.Screen) {
	a.enqueue(navigation.Request{Screen: s, Reset: true})
}

// Back pops the top screen. The last screen is never popped.
func (a *App) Back() {
	a.enqueue(navigation.Request{Back: true})
}

func (a *App) enqueue(r navigation.Request) {
	a.mu.Lock()
	a.pending = append(a.pending, r)
	a.mu.Unlock()
}

func (a *App) takePending() []navigation.Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.pending
	a.pending = nil
	return out
}

// Init shows the dashboard and releases any buffered deep links.
func (a *App) Init() tea.Cmd {
	a.stack = []entry{{req: navigation.Request{Screen: navigation.Dashboard}, view: a.build(navigation.Request{Screen: navigation.Dashboard})}}
	cmds := []tea.Cmd{a.stack[0].view.Init()}
	a.deps.Queue.Bind(a)
	cmds = append(cmds, a.flush())
	return tea.Batch(cmds...)
}

// flush applies pending navigation. Building a screen may queue more
// requests, so it loops until nothing is left.
func (a *App) flush() tea.Cmd {
	var cmds []tea.Cmd
	for {
		reqs := a.takePending()
		if len(reqs) == 0 {
			return tea.Batch(cmds...)
		}
		for _, r := range reqs {
			cmds = append(cmds, a.apply(r))
		}
	}
}

func (a *App) apply(r navigation.Request) tea.Cmd {
	switch {
	case r.Back:
		if len(a.stack) <= 1 {
			return nil
		}
		a.stack = a.stack[:len(a.stack)-1]
		return a.top().view.Init()
	case r.Reset:
		a.stack = []entry{{req: r, view: a.build(r)}}
	default:
		if i := a.indexOf(r.Screen); i >= 0 {
			a.stack = a.stack[:i+1]
			if a.stack[i].req.Params != r.Params {
				a.stack[i] = entry{req: r, view: a.build(r)}
			}
			break
		}
		a.stack = append(a.stack, entry{req: r, view: a.build(r)})
	}
	return a.top().view.Init()
}

func (a *App) indexOf(s navigation.Screen) int {
	for i := len(a.stack) - 1; i >= 0; i-- {
		if a.stack[i].req.Screen == s {
			return i
		}
	}
	return -1
}

func (a *App) build(r navigation.Request) screen {
	switch r.Screen {
	case navigation.Dashboard:
		return newDashboard(a)
	case navigation.Reflection:
		return newReflectionScreen(a, r.Params)
	case navigation.PostReflection:
		return newDecisionScreen(a, r.Params)
	default:
		return newNotice(a, r.Screen)
	}
}

func (a *App) top() entry {
	return a.stack[len(a.stack)-1]
}

// Screen returns the screen on top of the stack.
func (a *App) Screen() navigation.Screen {
	if len(a.stack) == 0 {
		return ""
	}
	return a.top().req.Screen
}

// Stack returns the screens from bottom to top.
func (a *App) Stack() []navigation.Screen {
	out := make([]navigation.Screen, len(a.stack))
	for i, e := range a.stack {
		out[i] = e.req.Screen
	}
	return out
}

func (a *App) setNotice(msg string) {
	a.notice = msg
}

// Update handles messages and updates the application state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.Width = msg.Width
		a.Height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case tea.KeyMsg:
		if msg.String() == KeyCtrlC {
			if a.CtrlCPending {
				a.abandon()
				return a, tea.Quit
			}
			a.CtrlCPending = true
			return a, tea.Tick(time.Second, func(time.Time) tea.Msg {
				return CtrlCResetMsg{}
			})
		}

	case CtrlCResetMsg:
		a.CtrlCPending = false
		return a, nil

	case LinkMsg:
		a.HandleLink(msg.URL)
		return a, a.flush()

	case quitMsg:
		a.abandon()
		return a, tea.Quit
	}

	if len(a.stack) == 0 {
		return a, nil
	}
	cmd := a.top().view.Update(msg)
	return a, tea.Batch(cmd, a.flush())
}

// abandon cancels a reflection that is still running when the shell exits.
func (a *App) abandon() {
	for _, e := range a.stack {
		if r, ok := e.view.(*reflectionScreen); ok {
			r.abandon()
		}
	}
}

// quitMsg asks the shell to exit.
type quitMsg struct{}

func quit() tea.Msg { return quitMsg{} }

// View renders the current application state.
func (a *App) View() string {
	if len(a.stack) == 0 {
		return ""
	}
	top := a.top().view

	content := top.View()
	if a.notice != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", WarningStyle.Render(a.notice))
	}
	footer := a.help.View(top.Keys())
	if a.CtrlCPending {
		footer = WarningStyle.Render("Press Ctrl+C again to exit")
	}

	body := lipgloss.JoinVertical(lipgloss.Left, BoxStyle.Render(content), StatusBarStyle.Render(footer))
	return lipgloss.Place(a.Width, a.Height, lipgloss.Center, lipgloss.Center, body)
}
