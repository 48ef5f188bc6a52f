// Package navigation names the screens of the shell and buffers navigation
// requests that arrive before the shell is ready to receive them.
package navigation

import "sync"

// Screen names a destination in the shell.
type Screen string

const (
	Dashboard      Screen = "Dashboard"
	Reflection     Screen = "Reflection"
	PostReflection Screen = "PostReflection"
	AddApp         Screen = "AddApp"
	Settings       Screen = "Settings"
	Onboarding     Screen = "Onboarding"
	AppSettings    Screen = "AppSettings"
)

// Params carries the route arguments of a screen.
type Params struct {
	AppID          string `json:"appId,omitempty"`
	AppName        string `json:"appName,omitempty"`
	TargetDeepLink string `json:"targetDeepLink,omitempty"`
	// Unreflected marks a decision reached without a reflection session,
	// as when reflections are paused.
	Unreflected    bool   `json:"unreflected,omitempty"`
}

// Dispatcher moves the shell between screens.
type Dispatcher interface {
	Navigate(screen Screen, params Params)
	// ResetTo replaces the whole history with screen so back navigation
	// cannot return to what came before.
	ResetTo(screen Screen)
	// Back returns to the previous screen.
	Back()
}

// Request is one navigation call. A Back request has no screen.
type Request struct {
	Screen Screen
	Params Params
	Reset  bool
	Back   bool
}

func (r Request) apply(d Dispatcher) {
	switch {
	case r.Back:
		d.Back()
	case r.Reset:
		d.ResetTo(r.Screen)
	default:
		d.Navigate(r.Screen, r.Params)
	}
}

// Queue is a Dispatcher that holds requests until a real dispatcher is bound,
// then forwards them in order. It is safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	target  Dispatcher
	pending []Request
}

// NewQueue returns an unbound Queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Navigate forwards to the bound dispatcher or buffers the request.
func (q *Queue) Navigate(screen Screen, params Params) {
	q.submit(Request{Screen: screen, Params: params})
}

// ResetTo forwards to the bound dispatcher or buffers the request.
func (q *Queue) ResetTo(screen Screen) {
	q.submit(Request{Screen: screen, Reset: true})
}

// Back forwards to the bound dispatcher or buffers the request.
func (q *Queue) Back() {
	q.submit(Request{Back: true})
}

func (q *Queue) submit(r Request) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.target == nil {
		q.pending = append(q.pending, r)
		return
	}
	r.apply(q.target)
}

// Bind attaches d and flushes buffered requests to it. Binding nil detaches
// the current dispatcher; later requests are buffered again.
func (q *Queue) Bind(d Dispatcher) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.target = d
	if d == nil {
		return
	}
	pending := q.pending
	q.pending = nil
	for _, r := range pending {
		r.apply(d)
	}
}

// Pending returns the number of buffered requests.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Recorder is a Dispatcher that keeps a screen stack. The headless CLI uses
// it to report where a deep link ended up.
type Recorder struct {
	mu       sync.Mutex
	stack    []Request
	requests []Request
}

// Navigate pushes screen, or pops back to it when it is already on the
// stack, taking the new params.
func (r *Recorder) Navigate(screen Screen, params Params) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req := Request{Screen: screen, Params: params}
	r.requests = append(r.requests, req)
	for i := len(r.stack) - 1; i >= 0; i-- {
		if r.stack[i].Screen == screen {
			r.stack = append(r.stack[:i], req)
			return
		}
	}
	r.stack = append(r.stack, req)
}

// ResetTo replaces the stack with screen.
func (r *Recorder) ResetTo(screen Screen) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req := Request{Screen: screen, Reset: true}
	r.stack = []Request{req}
	r.requests = append(r.requests, req)
}

// Back pops the top screen, keeping the bottom one.
func (r *Recorder) Back() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stack) > 1 {
		r.stack = r.stack[:len(r.stack)-1]
	}
	r.requests = append(r.requests, Request{Back: true})
}

// Current returns the top of the stack and false if nothing was navigated to.
func (r *Recorder) Current() (Request, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stack) == 0 {
		return Request{}, false
	}
	return r.stack[len(r.stack)-1], true
}

// Stack returns the screens from bottom to top.
func (r *Recorder) Stack() []Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Screen, len(r.stack))
	for i, req := range r.stack {
		out[i] = req.Screen
	}
	return out
}

// Requests returns every call received, in order.
func (r *Recorder) Requests() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Request(nil), r.requests...)
}

var (
	_ Dispatcher = (*Queue)(nil)
	_ Dispatcher = (*Recorder)(nil)
)
