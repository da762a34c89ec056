package model

import "time"

const (
	StageStart = "start"
	StageMid   = "mid"
	StageEnd   = "end"
)

const (
	MinLevel = 1
	MaxLevel = 10
)

// EnergySample is one check-in tied to a timer stage. Rows are append-only.
type EnergySample struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	TimerID    string    `json:"timerId"`
	TimerName  string    `json:"timerName,omitempty"`
	Stage      string    `json:"stage"`
	Level      int       `json:"level"`
	FocusLevel *int      `json:"focusLevel,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// EnergyInsight is the richer check-in variant with sub-scores and notes.
type EnergyInsight struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	OverallEnergy   int       `json:"overallEnergy"`
	MotivationLevel int       `json:"motivationLevel"`
	FocusClarity    int       `json:"focusClarity"`
	PhysicalEnergy  int       `json:"physicalEnergy"`
	MoodState       string    `json:"moodState"`
	EnergySource    string    `json:"energySource,omitempty"`
	EnergyDrains    string    `json:"energyDrains,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}
