package repository

import (
	"context"
	"database/sql"
	"fmt"

	"deepflow/backend/internal/model"
)

type PreferencesRepository struct {
	db *sql.DB
}

func NewPreferencesRepository(db *sql.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// Get returns the stored preferences, or the defaults when the user has
// never saved any.
func (r *PreferencesRepository) Get(ctx context.Context, userID string) (*model.Preferences, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT user_id, enable_start_checkin, enable_mid_checkin, enable_end_checkin,
			enable_energy_log, enable_sound, country, region, updated_at
		 FROM user_preferences
		 WHERE user_id = ?`,
		userID,
	)

	var prefs model.Preferences
	var updatedAt string
	err := row.Scan(
		&prefs.UserID,
		&prefs.EnableStartCheckin,
		&prefs.EnableMidCheckin,
		&prefs.EnableEndCheckin,
		&prefs.EnableEnergyLog,
		&prefs.EnableSound,
		&prefs.Country,
		&prefs.Region,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		defaults := model.DefaultPreferences(userID)
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	parsed, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse preferences updated_at: %w", err)
	}
	prefs.UpdatedAt = parsed
	return &prefs, nil
}

func (r *PreferencesRepository) Upsert(ctx context.Context, prefs *model.Preferences) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO user_preferences (user_id, enable_start_checkin, enable_mid_checkin,
			enable_end_checkin, enable_energy_log, enable_sound, country, region, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			enable_start_checkin = excluded.enable_start_checkin,
			enable_mid_checkin = excluded.enable_mid_checkin,
			enable_end_checkin = excluded.enable_end_checkin,
			enable_energy_log = excluded.enable_energy_log,
			enable_sound = excluded.enable_sound,
			country = excluded.country,
			region = excluded.region,
			updated_at = excluded.updated_at`,
		prefs.UserID,
		prefs.EnableStartCheckin,
		prefs.EnableMidCheckin,
		prefs.EnableEndCheckin,
		prefs.EnableEnergyLog,
		prefs.EnableSound,
		prefs.Country,
		prefs.Region,
		formatTime(prefs.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}
