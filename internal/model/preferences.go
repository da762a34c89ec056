package model

import "time"

// Preferences gates which check-in stages are active for a user and whether
// audio cues play. Country/region feed the timezone offset collaborator.
type Preferences struct {
	UserID             string    `json:"userId"`
	EnableStartCheckin bool      `json:"enableStartCheckin"`
	EnableMidCheckin   bool      `json:"enableMidCheckin"`
	EnableEndCheckin   bool      `json:"enableEndCheckin"`
	EnableEnergyLog    bool      `json:"enableEnergyLog"`
	EnableSound        bool      `json:"enableSound"`
	Country            string    `json:"country"`
	Region             string    `json:"region"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// DefaultPreferences are used for users who have never saved settings.
func DefaultPreferences(userID string) Preferences {
	return Preferences{
		UserID:             userID,
		EnableStartCheckin: true,
		EnableMidCheckin:   true,
		EnableEndCheckin:   true,
		EnableEnergyLog:    true,
		EnableSound:        false,
	}
}

// StageEnabled reports whether check-ins for the given stage are active.
// Stages outside the built-in three have no dedicated flag and are allowed.
func (p Preferences) StageEnabled(stage string) bool {
	switch stage {
	case StageStart:
		return p.EnableStartCheckin
	case StageMid:
		return p.EnableMidCheckin
	case StageEnd:
		return p.EnableEndCheckin
	default:
		return true
	}
}
