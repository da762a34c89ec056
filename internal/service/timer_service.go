package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"deepflow/backend/internal/clock"
	"deepflow/backend/internal/engine"
	apperrors "deepflow/backend/internal/errors"
	"deepflow/backend/internal/model"
	"deepflow/backend/internal/repository"
)

type TimerService struct {
	repo  *repository.TimerRepository
	clock clock.Clock
}

func NewTimerService(repo *repository.TimerRepository, clk clock.Clock) *TimerService {
	return &TimerService{repo: repo, clock: clk}
}

// Create normalizes the requested duration (out-of-band values are corrected
// to the 90-minute default, not rejected) and stores a stopped timer.
func (s *TimerService) Create(ctx context.Context, userID, name string, durationMinutes int) (*model.Timer, *apperrors.APIError) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.BadRequest("invalid_name", "timer name is required")
	}

	now := s.clock.Now()
	timer := model.Timer{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            name,
		DurationSeconds: engine.NormalizeDuration(durationMinutes),
		State:           model.StateStopped,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, &timer); err != nil {
		return nil, apperrors.Internal("failed to create timer")
	}
	return &timer, nil
}

func (s *TimerService) List(ctx context.Context, userID string) ([]model.Timer, *apperrors.APIError) {
	timers, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list timers")
	}
	return timers, nil
}

func (s *TimerService) Delete(ctx context.Context, userID, timerID string) *apperrors.APIError {
	err := s.repo.Delete(ctx, timerID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("timer_not_found", "timer not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete timer")
	}
	return nil
}

// ApplyAction runs one state machine transition. Load, validation and the
// conditional write share a transaction, so a rejected action never touches
// persisted fields and two concurrent mutually exclusive actions cannot both
// succeed.
func (s *TimerService) ApplyAction(ctx context.Context, userID, timerID, rawAction string) (*engine.StateView, *apperrors.APIError) {
	action, err := engine.ParseAction(rawAction)
	if err != nil {
		return nil, apperrors.BadRequest("unknown_action", "action must be one of start, pause, resume, stop")
	}

	now := s.clock.Now()
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	timer, err := s.repo.GetForOwnerTx(ctx, tx, timerID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("timer_not_found", "timer not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load timer")
	}

	tr, err := engine.Apply(timer, action, now)
	if errors.Is(err, engine.ErrInvalidAction) {
		return nil, apperrors.Conflict("invalid_action", "cannot "+rawAction+" a "+string(timer.State)+" timer")
	}
	if err != nil {
		return nil, apperrors.BadRequest("unknown_action", "unknown timer action")
	}

	err = s.repo.ApplyTransitionTx(ctx, tx, timerID, userID, timer.State, tr, now)
	if errors.Is(err, repository.ErrStateConflict) {
		return nil, apperrors.Conflict("state_conflict", "timer changed by another request, retry")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to update timer")
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}

	timer.State = tr.State
	timer.StartTime = tr.StartTime
	timer.PausedAt = tr.PausedAt
	timer.EndTime = tr.EndTime
	timer.ElapsedMS = tr.ElapsedMS

	view := engine.Project(timer, now)
	return &view, nil
}

// GetState is a pure projection over the stored row; it never writes.
func (s *TimerService) GetState(ctx context.Context, userID, timerID string) (*engine.StateView, *apperrors.APIError) {
	timer, err := s.repo.GetForOwner(ctx, timerID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("timer_not_found", "timer not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load timer")
	}

	view := engine.Project(timer, s.clock.Now())
	return &view, nil
}

// VerifyOwnership is the shared ownership check used by collaborators that
// reference timers without mutating them.
func (s *TimerService) VerifyOwnership(ctx context.Context, userID, timerID string) *apperrors.APIError {
	_, err := s.repo.GetForOwner(ctx, timerID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("timer_not_found", "timer not found")
	}
	if err != nil {
		return apperrors.Internal("failed to load timer")
	}
	return nil
}
