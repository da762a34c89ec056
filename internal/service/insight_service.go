package service

import (
	"context"
	"time"

	"deepflow/backend/internal/clock"
	apperrors "deepflow/backend/internal/errors"
	"deepflow/backend/internal/insight"
	"deepflow/backend/internal/repository"
)

// OffsetFunc resolves a user's timezone offset in hours from their country
// and region preferences. The lookup table itself lives outside this service.
type OffsetFunc func(country, region string) int

// UTCOffset is the default collaborator: everyone on UTC.
func UTCOffset(string, string) int { return 0 }

type InsightService struct {
	energyRepo *repository.EnergyRepository
	prefsRepo  *repository.PreferencesRepository
	clock      clock.Clock
	offsetFor  OffsetFunc
}

type WeeklySummaryResult struct {
	WeekStart time.Time       `json:"weekStart"`
	WeekEnd   time.Time       `json:"weekEnd"`
	Summary   insight.Summary `json:"summary"`
}

func NewInsightService(
	energyRepo *repository.EnergyRepository,
	prefsRepo *repository.PreferencesRepository,
	clk clock.Clock,
	offsetFor OffsetFunc,
) *InsightService {
	if offsetFor == nil {
		offsetFor = UTCOffset
	}
	return &InsightService{
		energyRepo: energyRepo,
		prefsRepo:  prefsRepo,
		clock:      clk,
		offsetFor:  offsetFor,
	}
}

// WeeklySummary aggregates the user's check-ins for the Monday-Sunday window
// weekOffset weeks from the current one (0 = this week, -1 = previous).
func (s *InsightService) WeeklySummary(ctx context.Context, userID string, weekOffset int) (*WeeklySummaryResult, *apperrors.APIError) {
	prefs, err := s.prefsRepo.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load preferences")
	}

	// Shift "now" by the user's offset so the week boundary falls on their
	// local Monday, then query in UTC.
	offset := time.Duration(s.offsetFor(prefs.Country, prefs.Region)) * time.Hour
	localNow := s.clock.Now().Add(offset)
	localStart, localEnd := insight.WeekWindow(localNow, weekOffset)
	start := localStart.Add(-offset)
	end := localEnd.Add(-offset)

	samples, err := s.energyRepo.ListSamplesBetween(ctx, userID, start, end)
	if err != nil {
		return nil, apperrors.Internal("failed to load check-ins")
	}

	points := make([]insight.Sample, len(samples))
	for i, sample := range samples {
		points[i] = insight.Sample{
			Level:     sample.Level,
			Timestamp: sample.CreatedAt.Add(offset),
		}
	}

	return &WeeklySummaryResult{
		WeekStart: start,
		WeekEnd:   end,
		Summary:   insight.Summarize(points),
	}, nil
}
