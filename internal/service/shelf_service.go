package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"deepflow/backend/internal/clock"
	apperrors "deepflow/backend/internal/errors"
	"deepflow/backend/internal/model"
	"deepflow/backend/internal/repository"
)

type ShelfService struct {
	repo  *repository.ShelfRepository
	clock clock.Clock
}

func NewShelfService(repo *repository.ShelfRepository, clk clock.Clock) *ShelfService {
	return &ShelfService{repo: repo, clock: clk}
}

func (s *ShelfService) Add(ctx context.Context, userID, text string) (*model.ShelfItem, *apperrors.APIError) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.BadRequest("invalid_text", "shelf item text is required")
	}

	item := model.ShelfItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		Text:      text,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, &item); err != nil {
		return nil, apperrors.Internal("failed to add shelf item")
	}
	return &item, nil
}

func (s *ShelfService) List(ctx context.Context, userID string) ([]model.ShelfItem, *apperrors.APIError) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list shelf items")
	}
	return items, nil
}

func (s *ShelfService) Remove(ctx context.Context, userID, itemID string) *apperrors.APIError {
	err := s.repo.Delete(ctx, itemID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("item_not_found", "shelf item not found")
	}
	if err != nil {
		return apperrors.Internal("failed to remove shelf item")
	}
	return nil
}
