package model

import (
	"encoding/json"
	"time"
)

// StateKind discriminates SessionState.
type StateKind string

const (
	StateActive    StateKind = "active"
	StateCompleted StateKind = "completed"
	StateCancelled StateKind = "cancelled"
)

// SessionPhase is the reflection phase a session is in, or was in when cancelled.
type SessionPhase string

const (
	PhaseCountdown SessionPhase = "countdown"
	PhaseQuestion  SessionPhase = "question"
)

// EndCause says how a completed session ended.
type EndCause string

const (
	CauseAnswered EndCause = "answered"
	CauseBypassed EndCause = "bypassed"
)

// SessionState is persisted as a discriminated record:
//
//	active{phase}     countdown running, or countdown elapsed and question shown
//	completed{cause}  question answered, or countdown bypassed
//	cancelled{phase}  user aborted during phase
type SessionState struct {
	Kind  StateKind    `json:"kind"`
	Phase SessionPhase `json:"phase,omitempty"`
	Cause EndCause     `json:"cause,omitempty"`
}

// Active returns the state of a session still inside phase.
func Active(phase SessionPhase) SessionState {
	return SessionState{Kind: StateActive, Phase: phase}
}

// Completed returns the terminal state reached through cause.
func Completed(cause EndCause) SessionState {
	return SessionState{Kind: StateCompleted, Cause: cause}
}

// Cancelled returns the terminal state of a session aborted during phase.
func Cancelled(phase SessionPhase) SessionState {
	return SessionState{Kind: StateCancelled, Phase: phase}
}

// Terminal reports whether no further reflection transition is possible.
func (s SessionState) Terminal() bool {
	return s.Kind == StateCompleted || s.Kind == StateCancelled
}

// ReflectionSession is one deep-link-triggered reflection attempt.
type ReflectionSession struct {
	ID                   string       `json:"id"`
	AppID                string       `json:"appId"`
	AppName              string       `json:"appName"`
	Question             string       `json:"question"`
	StartTime            time.Time    `json:"startTime"`
	EndTime              *time.Time   `json:"endTime,omitempty"`
	State                SessionState `json:"state"`
	ProceededToApp       bool         `json:"proceededToApp"`
	AlternativeAppChosen string       `json:"alternativeAppChosen,omitempty"`
}

// CountdownCompleted reports whether the countdown ran to zero.
func (s ReflectionSession) CountdownCompleted() bool {
	switch s.State.Kind {
	case StateActive, StateCancelled:
		return s.State.Phase == PhaseQuestion
	case StateCompleted:
		return s.State.Cause == CauseAnswered
	}
	return false
}

// Bypassed reports whether the user left the countdown early.
func (s ReflectionSession) Bypassed() bool {
	return s.State.Kind == StateCompleted && s.State.Cause == CauseBypassed
}

// Cancelled reports whether the user aborted the reflection.
func (s ReflectionSession) Cancelled() bool {
	return s.State.Kind == StateCancelled
}

// Duration is the time between start and end, zero while the session is open.
func (s ReflectionSession) Duration() time.Duration {
	if s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

type sessionJSON ReflectionSession

// MarshalJSON adds the flat completed/bypassed/cancelled flags used by exports.
func (s ReflectionSession) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		sessionJSON
		Completed bool `json:"completed"`
		Bypassed  bool `json:"bypassed"`
		Cancelled bool `json:"cancelled"`
	}{
		sessionJSON: sessionJSON(s),
		Completed:   s.CountdownCompleted(),
		Bypassed:    s.Bypassed(),
		Cancelled:   s.Cancelled(),
	})
}
