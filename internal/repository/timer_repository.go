package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"deepflow/backend/internal/engine"
	"deepflow/backend/internal/model"
)

const timerColumns = `id, user_id, name, duration_seconds, state,
	start_time, paused_at, end_time, elapsed_ms, created_at, updated_at`

type TimerRepository struct {
	db *sql.DB
}

func NewTimerRepository(db *sql.DB) *TimerRepository {
	return &TimerRepository{db: db}
}

func (r *TimerRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

func (r *TimerRepository) Create(ctx context.Context, timer *model.Timer) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO timers (`+timerColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		timer.ID,
		timer.UserID,
		timer.Name,
		timer.DurationSeconds,
		timer.State,
		formatTimePtr(timer.StartTime),
		formatTimePtr(timer.PausedAt),
		formatTimePtr(timer.EndTime),
		timer.ElapsedMS,
		formatTime(timer.CreatedAt),
		formatTime(timer.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create timer: %w", err)
	}
	return nil
}

// GetForOwner loads a timer scoped to its owner. A timer that exists but
// belongs to someone else is indistinguishable from one that does not exist.
func (r *TimerRepository) GetForOwner(ctx context.Context, timerID, userID string) (*model.Timer, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+timerColumns+` FROM timers WHERE id = ? AND user_id = ?`,
		timerID,
		userID,
	)
	return scanTimer(row)
}

func (r *TimerRepository) GetForOwnerTx(ctx context.Context, tx *sql.Tx, timerID, userID string) (*model.Timer, error) {
	row := tx.QueryRowContext(
		ctx,
		`SELECT `+timerColumns+` FROM timers WHERE id = ? AND user_id = ?`,
		timerID,
		userID,
	)
	return scanTimer(row)
}

func (r *TimerRepository) List(ctx context.Context, userID string) ([]model.Timer, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+timerColumns+` FROM timers WHERE user_id = ? ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list timers: %w", err)
	}
	defer rows.Close()

	timers := make([]model.Timer, 0)
	for rows.Next() {
		timer, scanErr := scanTimer(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		timers = append(timers, *timer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timers: %w", err)
	}
	return timers, nil
}

// ApplyTransitionTx writes an engine transition conditionally: the update
// only matches while the row still holds the state the transition was
// computed from. Zero rows affected means a concurrent action won the race.
func (r *TimerRepository) ApplyTransitionTx(
	ctx context.Context,
	tx *sql.Tx,
	timerID, userID string,
	expected model.TimerState,
	tr engine.Transition,
	updatedAt time.Time,
) error {
	result, err := tx.ExecContext(
		ctx,
		`UPDATE timers
		 SET state = ?,
		     start_time = ?,
		     paused_at = ?,
		     end_time = ?,
		     elapsed_ms = ?,
		     updated_at = ?
		 WHERE id = ? AND user_id = ? AND state = ?`,
		tr.State,
		formatTimePtr(tr.StartTime),
		formatTimePtr(tr.PausedAt),
		formatTimePtr(tr.EndTime),
		tr.ElapsedMS,
		formatTime(updatedAt),
		timerID,
		userID,
		expected,
	)
	if err != nil {
		return fmt.Errorf("apply transition: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply transition rows affected: %w", err)
	}
	if affected == 0 {
		return ErrStateConflict
	}
	return nil
}

// Delete removes a timer owned by the user; its energy samples cascade.
func (r *TimerRepository) Delete(ctx context.Context, timerID, userID string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM timers WHERE id = ? AND user_id = ?`,
		timerID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete timer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete timer rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTimer(s scanner) (*model.Timer, error) {
	timer := model.Timer{}
	var startTime, pausedAt, endTime sql.NullString
	var createdAt, updatedAt string
	err := s.Scan(
		&timer.ID,
		&timer.UserID,
		&timer.Name,
		&timer.DurationSeconds,
		&timer.State,
		&startTime,
		&pausedAt,
		&endTime,
		&timer.ElapsedMS,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan timer: %w", err)
	}

	if timer.StartTime, err = parseTimePtr(startTime, "start_time"); err != nil {
		return nil, err
	}
	if timer.PausedAt, err = parseTimePtr(pausedAt, "paused_at"); err != nil {
		return nil, err
	}
	if timer.EndTime, err = parseTimePtr(endTime, "end_time"); err != nil {
		return nil, err
	}

	if timer.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse timer created_at: %w", err)
	}
	if timer.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse timer updated_at: %w", err)
	}

	return &timer, nil
}

func parseTimePtr(raw sql.NullString, column string) (*time.Time, error) {
	if !raw.Valid {
		return nil, nil
	}
	parsed, err := parseTime(raw.String)
	if err != nil {
		return nil, fmt.Errorf("parse timer %s: %w", column, err)
	}
	return &parsed, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}
