package service

import (
	"context"
	"errors"

	apperrors "deepflow/backend/internal/errors"
	"deepflow/backend/internal/model"
	"deepflow/backend/internal/repository"
)

type AccountService struct {
	userRepo   *repository.UserRepository
	timerRepo  *repository.TimerRepository
	energyRepo *repository.EnergyRepository
	shelfRepo  *repository.ShelfRepository
	prefsRepo  *repository.PreferencesRepository
}

// Export is the full per-user data dump returned by the export endpoint.
type Export struct {
	User        model.User            `json:"user"`
	Timers      []model.Timer         `json:"timers"`
	Samples     []model.EnergySample  `json:"energySamples"`
	Insights    []model.EnergyInsight `json:"energyInsights"`
	ShelfItems  []model.ShelfItem     `json:"shelfItems"`
	Preferences model.Preferences     `json:"preferences"`
}

func NewAccountService(
	userRepo *repository.UserRepository,
	timerRepo *repository.TimerRepository,
	energyRepo *repository.EnergyRepository,
	shelfRepo *repository.ShelfRepository,
	prefsRepo *repository.PreferencesRepository,
) *AccountService {
	return &AccountService{
		userRepo:   userRepo,
		timerRepo:  timerRepo,
		energyRepo: energyRepo,
		shelfRepo:  shelfRepo,
		prefsRepo:  prefsRepo,
	}
}

func (s *AccountService) ExportData(ctx context.Context, userID string) (*Export, *apperrors.APIError) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user_not_found", "user not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load user")
	}
	user.PasswordHash = ""

	timers, err := s.timerRepo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load timers")
	}
	samples, err := s.energyRepo.ListSamples(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load check-ins")
	}
	insights, err := s.energyRepo.ListAllInsights(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load insights")
	}
	items, err := s.shelfRepo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load shelf items")
	}
	prefs, err := s.prefsRepo.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load preferences")
	}

	return &Export{
		User:        *user,
		Timers:      timers,
		Samples:     samples,
		Insights:    insights,
		ShelfItems:  items,
		Preferences: *prefs,
	}, nil
}

// DeleteAccount removes the user row; everything the user owns cascades in
// the store.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) *apperrors.APIError {
	err := s.userRepo.Delete(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("user_not_found", "user not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete account")
	}
	return nil
}
