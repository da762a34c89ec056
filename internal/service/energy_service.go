package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"deepflow/backend/internal/clock"
	apperrors "deepflow/backend/internal/errors"
	"deepflow/backend/internal/model"
	"deepflow/backend/internal/repository"
)

type EnergyService struct {
	repo      *repository.EnergyRepository
	prefsRepo *repository.PreferencesRepository
	timers    *TimerService
	clock     clock.Clock
	stages    map[string]struct{}
}

type LogSampleInput struct {
	TimerID    string
	Stage      string
	Level      int
	FocusLevel *int
}

type SaveInsightInput struct {
	OverallEnergy   int
	MotivationLevel int
	FocusClarity    int
	PhysicalEnergy  int
	MoodState       string
	EnergySource    string
	EnergyDrains    string
	Notes           string
}

func NewEnergyService(
	repo *repository.EnergyRepository,
	prefsRepo *repository.PreferencesRepository,
	timers *TimerService,
	clk clock.Clock,
	stageVocabulary []string,
) *EnergyService {
	stages := make(map[string]struct{}, len(stageVocabulary))
	for _, stage := range stageVocabulary {
		stages[stage] = struct{}{}
	}
	return &EnergyService{
		repo:      repo,
		prefsRepo: prefsRepo,
		timers:    timers,
		clock:     clk,
		stages:    stages,
	}
}

// LogSample records one check-in. A "start" check-in also starts the timer
// and an "end" check-in stops it; both run as a separate timer action after
// the sample is written, so the state machine stays independent of the log.
func (s *EnergyService) LogSample(ctx context.Context, userID string, input LogSampleInput) (*model.EnergySample, *apperrors.APIError) {
	if _, ok := s.stages[input.Stage]; !ok {
		return nil, apperrors.BadRequest("invalid_stage", "unknown check-in stage")
	}

	if !levelInRange(input.Level) {
		return nil, apperrors.BadRequest("invalid_level", "energy level must be between 1 and 10")
	}
	if input.FocusLevel != nil && !levelInRange(*input.FocusLevel) {
		return nil, apperrors.BadRequest("invalid_level", "focus level must be between 1 and 10")
	}

	prefs, err := s.prefsRepo.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load preferences")
	}
	if !prefs.EnableEnergyLog {
		return nil, apperrors.FeatureDisabled("energy logging is disabled in your settings")
	}
	if !prefs.StageEnabled(input.Stage) {
		return nil, apperrors.FeatureDisabled("check-ins for this stage are disabled in your settings")
	}

	if apiErr := s.timers.VerifyOwnership(ctx, userID, input.TimerID); apiErr != nil {
		return nil, apiErr
	}

	sample := model.EnergySample{
		ID:         uuid.NewString(),
		UserID:     userID,
		TimerID:    input.TimerID,
		Stage:      input.Stage,
		Level:      input.Level,
		FocusLevel: input.FocusLevel,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.repo.InsertSample(ctx, &sample); err != nil {
		return nil, apperrors.Internal("failed to record check-in")
	}

	if apiErr := s.applyStageAction(ctx, userID, input.TimerID, input.Stage); apiErr != nil {
		return nil, apiErr
	}

	return &sample, nil
}

// applyStageAction drives the documented side effect of start/end check-ins.
// A stop rejected because the timer is already stopped is not an error for
// the check-in; anything else propagates.
func (s *EnergyService) applyStageAction(ctx context.Context, userID, timerID, stage string) *apperrors.APIError {
	switch stage {
	case model.StageStart:
		if _, apiErr := s.timers.ApplyAction(ctx, userID, timerID, "start"); apiErr != nil {
			return apiErr
		}
	case model.StageEnd:
		if _, apiErr := s.timers.ApplyAction(ctx, userID, timerID, "stop"); apiErr != nil {
			if apiErr.Code == "invalid_action" {
				return nil
			}
			return apiErr
		}
	}
	return nil
}

func (s *EnergyService) ListSamples(ctx context.Context, userID string) ([]model.EnergySample, *apperrors.APIError) {
	samples, err := s.repo.ListSamples(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list check-ins")
	}
	return samples, nil
}

func (s *EnergyService) SaveInsight(ctx context.Context, userID string, input SaveInsightInput) (*model.EnergyInsight, *apperrors.APIError) {
	for _, level := range []int{input.OverallEnergy, input.MotivationLevel, input.FocusClarity, input.PhysicalEnergy} {
		if !levelInRange(level) {
			return nil, apperrors.BadRequest("invalid_level", "all energy levels must be between 1 and 10")
		}
	}
	moodState := strings.TrimSpace(input.MoodState)
	if moodState == "" {
		return nil, apperrors.BadRequest("invalid_mood", "mood state is required")
	}

	insight := model.EnergyInsight{
		ID:              uuid.NewString(),
		UserID:          userID,
		OverallEnergy:   input.OverallEnergy,
		MotivationLevel: input.MotivationLevel,
		FocusClarity:    input.FocusClarity,
		PhysicalEnergy:  input.PhysicalEnergy,
		MoodState:       moodState,
		EnergySource:    strings.TrimSpace(input.EnergySource),
		EnergyDrains:    strings.TrimSpace(input.EnergyDrains),
		Notes:           strings.TrimSpace(input.Notes),
		CreatedAt:       s.clock.Now(),
	}
	if err := s.repo.InsertInsight(ctx, &insight); err != nil {
		return nil, apperrors.Internal("failed to save insight")
	}
	return &insight, nil
}

func (s *EnergyService) ListInsights(ctx context.Context, userID string, limit int) ([]model.EnergyInsight, *apperrors.APIError) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	insights, err := s.repo.ListInsights(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list insights")
	}
	return insights, nil
}

func levelInRange(level int) bool {
	return level >= model.MinLevel && level <= model.MaxLevel
}
