// Package engine holds the timer state machine. Everything here is a pure
// function over a timer row and an explicit "now"; persistence and clock
// access stay with the callers.
package engine

import (
	"errors"
	"time"

	"deepflow/backend/internal/model"
)

// Action is the closed set of transitions a caller can request.
type Action string

const (
	ActionStart  Action = "start"
	ActionPause  Action = "pause"
	ActionResume Action = "resume"
	ActionStop   Action = "stop"
)

var (
	// ErrUnknownAction means the action name is not in the vocabulary.
	ErrUnknownAction = errors.New("unknown timer action")
	// ErrInvalidAction means the action is known but not legal from the
	// timer's current state.
	ErrInvalidAction = errors.New("action not valid in current state")
)

// ParseAction maps a raw request string onto the action vocabulary.
func ParseAction(raw string) (Action, error) {
	switch Action(raw) {
	case ActionStart, ActionPause, ActionResume, ActionStop:
		return Action(raw), nil
	default:
		return "", ErrUnknownAction
	}
}

// Transition is the full replacement field set a successful action writes
// back. Returning it instead of mutating the row lets the repository apply
// it as a single conditional update.
type Transition struct {
	State     model.TimerState
	StartTime *time.Time
	PausedAt  *time.Time
	EndTime   *time.Time
	ElapsedMS int64
}

// StateView is the projection returned to callers.
type StateView struct {
	State       model.TimerState `json:"state"`
	ElapsedMS   int64            `json:"elapsedMs"`
	RemainingMS int64            `json:"remainingMs"`
}

// Apply validates the requested action against the timer's current state and
// computes the resulting field set. The input row is never mutated; a
// rejected action returns ErrInvalidAction and no transition.
func Apply(t *model.Timer, action Action, now time.Time) (Transition, error) {
	switch action {
	case ActionStart:
		// A start always restarts the session from zero, from any state.
		return Transition{
			State:     model.StateRunning,
			StartTime: &now,
			ElapsedMS: 0,
		}, nil

	case ActionPause:
		if t.State != model.StateRunning {
			return Transition{}, ErrInvalidAction
		}
		return Transition{
			State:     model.StatePaused,
			PausedAt:  &now,
			ElapsedMS: t.ElapsedMS + segmentMS(t.StartTime, now),
		}, nil

	case ActionResume:
		if t.State != model.StatePaused {
			return Transition{}, ErrInvalidAction
		}
		return Transition{
			State:     model.StateRunning,
			StartTime: &now,
			ElapsedMS: t.ElapsedMS,
		}, nil

	case ActionStop:
		switch t.State {
		case model.StateRunning:
			return Transition{
				State:     model.StateStopped,
				EndTime:   &now,
				ElapsedMS: t.ElapsedMS + segmentMS(t.StartTime, now),
			}, nil
		case model.StatePaused:
			return Transition{
				State:     model.StateStopped,
				EndTime:   &now,
				ElapsedMS: t.ElapsedMS,
			}, nil
		default:
			return Transition{}, ErrInvalidAction
		}

	default:
		return Transition{}, ErrUnknownAction
	}
}

// Project computes the live view of a timer without touching stored state.
// Running timers include the in-progress segment.
func Project(t *model.Timer, now time.Time) StateView {
	elapsed := t.ElapsedMS
	if t.State == model.StateRunning {
		elapsed += segmentMS(t.StartTime, now)
	}

	remaining := int64(t.DurationSeconds)*1000 - elapsed
	if remaining < 0 {
		remaining = 0
	}

	return StateView{
		State:       t.State,
		ElapsedMS:   elapsed,
		RemainingMS: remaining,
	}
}

// NormalizeDuration validates a requested duration in minutes and returns the
// stored value in seconds. Values outside 30-240 or off the 5-minute grid are
// corrected to the 90-minute default rather than rejected.
func NormalizeDuration(minutes int) int {
	if minutes < model.MinDurationMinutes ||
		minutes > model.MaxDurationMinutes ||
		minutes%model.DurationStepMinutes != 0 {
		minutes = model.DefaultDurationMinutes
	}
	return minutes * 60
}

// segmentMS measures the current running segment, clamped at zero so clock
// skew can never drive elapsed time backwards.
func segmentMS(start *time.Time, now time.Time) int64 {
	if start == nil {
		return 0
	}
	ms := now.Sub(*start).Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}
