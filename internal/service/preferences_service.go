package service

import (
	"context"

	"deepflow/backend/internal/clock"
	apperrors "deepflow/backend/internal/errors"
	"deepflow/backend/internal/model"
	"deepflow/backend/internal/repository"
)

type PreferencesService struct {
	repo  *repository.PreferencesRepository
	clock clock.Clock
}

type UpdatePreferencesInput struct {
	EnableStartCheckin bool
	EnableMidCheckin   bool
	EnableEndCheckin   bool
	EnableEnergyLog    bool
	EnableSound        bool
	Country            string
	Region             string
}

func NewPreferencesService(repo *repository.PreferencesRepository, clk clock.Clock) *PreferencesService {
	return &PreferencesService{repo: repo, clock: clk}
}

func (s *PreferencesService) Get(ctx context.Context, userID string) (*model.Preferences, *apperrors.APIError) {
	prefs, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load preferences")
	}
	return prefs, nil
}

func (s *PreferencesService) Update(ctx context.Context, userID string, input UpdatePreferencesInput) (*model.Preferences, *apperrors.APIError) {
	prefs := model.Preferences{
		UserID:             userID,
		EnableStartCheckin: input.EnableStartCheckin,
		EnableMidCheckin:   input.EnableMidCheckin,
		EnableEndCheckin:   input.EnableEndCheckin,
		EnableEnergyLog:    input.EnableEnergyLog,
		EnableSound:        input.EnableSound,
		Country:            input.Country,
		Region:             input.Region,
		UpdatedAt:          s.clock.Now(),
	}
	if err := s.repo.Upsert(ctx, &prefs); err != nil {
		return nil, apperrors.Internal("failed to save preferences")
	}
	return &prefs, nil
}

// SeedDefaults writes the default flags for a freshly registered user.
func (s *PreferencesService) SeedDefaults(ctx context.Context, userID string) *apperrors.APIError {
	prefs := model.DefaultPreferences(userID)
	prefs.UpdatedAt = s.clock.Now()
	if err := s.repo.Upsert(ctx, &prefs); err != nil {
		return apperrors.Internal("failed to initialize preferences")
	}
	return nil
}
