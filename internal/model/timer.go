package model

import "time"

// TimerState is the closed set of lifecycle states a timer can be in.
// Exactly one state holds at any time; transitions go through the engine.
type TimerState string

const (
	StateStopped TimerState = "stopped"
	StateRunning TimerState = "running"
	StatePaused  TimerState = "paused"
)

const (
	// Duration rules for new timers, in minutes. Out-of-band input is
	// corrected to the default rather than rejected.
	MinDurationMinutes     = 30
	MaxDurationMinutes     = 240
	DurationStepMinutes    = 5
	DefaultDurationMinutes = 90
)

type Timer struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	Name            string     `json:"name"`
	DurationSeconds int        `json:"durationSeconds"`
	State           TimerState `json:"state"`
	// StartTime marks the beginning of the current running segment and is
	// set only while running.
	StartTime *time.Time `json:"startTime,omitempty"`
	// PausedAt marks the most recent transition into paused.
	PausedAt *time.Time `json:"pausedAt,omitempty"`
	// EndTime marks the most recent transition into stopped.
	EndTime *time.Time `json:"endTime,omitempty"`
	// ElapsedMS accumulates running time across segments prior to the
	// current one. Never counts paused or stopped time.
	ElapsedMS int64     `json:"elapsedMs"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
