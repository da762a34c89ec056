package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"deepflow/backend/internal/model"
)

type EnergyRepository struct {
	db *sql.DB
}

func NewEnergyRepository(db *sql.DB) *EnergyRepository {
	return &EnergyRepository{db: db}
}

// InsertSample appends a check-in row. Samples are never updated or deleted
// individually; they only disappear when their timer or user does.
func (r *EnergyRepository) InsertSample(ctx context.Context, sample *model.EnergySample) error {
	var focus interface{}
	if sample.FocusLevel != nil {
		focus = *sample.FocusLevel
	}

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO energy_samples (id, user_id, timer_id, stage, level, focus_level, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sample.ID,
		sample.UserID,
		sample.TimerID,
		sample.Stage,
		sample.Level,
		focus,
		formatTime(sample.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert energy sample: %w", err)
	}
	return nil
}

// ListSamples returns the user's check-ins newest first, with timer names for
// charting.
func (r *EnergyRepository) ListSamples(ctx context.Context, userID string) ([]model.EnergySample, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT e.id, e.user_id, e.timer_id, t.name, e.stage, e.level, e.focus_level, e.created_at
		 FROM energy_samples e
		 JOIN timers t ON e.timer_id = t.id
		 WHERE e.user_id = ?
		 ORDER BY e.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list energy samples: %w", err)
	}
	defer rows.Close()

	return collectSamples(rows, true)
}

// ListSamplesBetween returns samples whose timestamp falls in [from, to),
// oldest first, for the weekly aggregator.
func (r *EnergyRepository) ListSamplesBetween(ctx context.Context, userID string, from, to time.Time) ([]model.EnergySample, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, timer_id, stage, level, focus_level, created_at
		 FROM energy_samples
		 WHERE user_id = ? AND created_at >= ? AND created_at < ?
		 ORDER BY created_at`,
		userID,
		formatTime(from),
		formatTime(to),
	)
	if err != nil {
		return nil, fmt.Errorf("list energy samples in window: %w", err)
	}
	defer rows.Close()

	return collectSamples(rows, false)
}

func collectSamples(rows *sql.Rows, withTimerName bool) ([]model.EnergySample, error) {
	samples := make([]model.EnergySample, 0)
	for rows.Next() {
		var sample model.EnergySample
		var focus sql.NullInt64
		var createdAt string

		var err error
		if withTimerName {
			err = rows.Scan(&sample.ID, &sample.UserID, &sample.TimerID, &sample.TimerName,
				&sample.Stage, &sample.Level, &focus, &createdAt)
		} else {
			err = rows.Scan(&sample.ID, &sample.UserID, &sample.TimerID,
				&sample.Stage, &sample.Level, &focus, &createdAt)
		}
		if err != nil {
			return nil, fmt.Errorf("scan energy sample: %w", err)
		}

		if focus.Valid {
			value := int(focus.Int64)
			sample.FocusLevel = &value
		}
		parsed, err := parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse sample created_at: %w", err)
		}
		sample.CreatedAt = parsed
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate energy samples: %w", err)
	}
	return samples, nil
}

func (r *EnergyRepository) InsertInsight(ctx context.Context, insight *model.EnergyInsight) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO energy_insights (id, user_id, overall_energy, motivation_level,
			focus_clarity, physical_energy, mood_state, energy_source, energy_drains,
			notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		insight.ID,
		insight.UserID,
		insight.OverallEnergy,
		insight.MotivationLevel,
		insight.FocusClarity,
		insight.PhysicalEnergy,
		insight.MoodState,
		insight.EnergySource,
		insight.EnergyDrains,
		insight.Notes,
		formatTime(insight.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert energy insight: %w", err)
	}
	return nil
}

func (r *EnergyRepository) ListInsights(ctx context.Context, userID string, limit int) ([]model.EnergyInsight, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, overall_energy, motivation_level, focus_clarity,
			physical_energy, mood_state, energy_source, energy_drains, notes, created_at
		 FROM energy_insights
		 WHERE user_id = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list energy insights: %w", err)
	}
	defer rows.Close()

	return collectInsights(rows)
}

// ListAllInsights returns every insight the user has saved, newest first.
// Used by the account export, which must not truncate.
func (r *EnergyRepository) ListAllInsights(ctx context.Context, userID string) ([]model.EnergyInsight, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, overall_energy, motivation_level, focus_clarity,
			physical_energy, mood_state, energy_source, energy_drains, notes, created_at
		 FROM energy_insights
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list all energy insights: %w", err)
	}
	defer rows.Close()

	return collectInsights(rows)
}

func collectInsights(rows *sql.Rows) ([]model.EnergyInsight, error) {
	insights := make([]model.EnergyInsight, 0)
	for rows.Next() {
		var insight model.EnergyInsight
		var createdAt string
		if err := rows.Scan(
			&insight.ID,
			&insight.UserID,
			&insight.OverallEnergy,
			&insight.MotivationLevel,
			&insight.FocusClarity,
			&insight.PhysicalEnergy,
			&insight.MoodState,
			&insight.EnergySource,
			&insight.EnergyDrains,
			&insight.Notes,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan energy insight: %w", err)
		}
		parsed, err := parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse insight created_at: %w", err)
		}
		insight.CreatedAt = parsed
		insights = append(insights, insight)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate energy insights: %w", err)
	}
	return insights, nil
}
