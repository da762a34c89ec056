package service

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepflow/backend/internal/clock"
	"deepflow/backend/internal/db"
	"deepflow/backend/internal/model"
	"deepflow/backend/internal/repository"
)

func setupInsightRepos(t *testing.T) (*repository.EnergyRepository, *repository.PreferencesRepository, string) {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close()
	})

	_, currentFile, _, _ := runtime.Caller(0)
	migrationsDir := filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")
	require.NoError(t, db.RunMigrations(database, migrationsDir))

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repository.NewUserRepository(database).Create(context.Background(), &user))

	timer := model.Timer{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		Name:            "Focus",
		DurationSeconds: 3600,
		State:           model.StateStopped,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, repository.NewTimerRepository(database).Create(context.Background(), &timer))

	energyRepo := repository.NewEnergyRepository(database)
	sample := model.EnergySample{
		ID:      uuid.NewString(),
		UserID:  user.ID,
		TimerID: timer.ID,
		Stage:   model.StageMid,
		Level:   7,
		// Sunday 22:00 UTC: still last week in UTC, but already Monday
		// 01:00 for a user three hours east.
		CreatedAt: time.Date(2025, 3, 9, 22, 0, 0, 0, time.UTC),
	}
	require.NoError(t, energyRepo.InsertSample(context.Background(), &sample))

	return energyRepo, repository.NewPreferencesRepository(database), user.ID
}

func TestWeeklySummaryShiftsWindowByUserOffset(t *testing.T) {
	energyRepo, prefsRepo, userID := setupInsightRepos(t)

	// Monday 10:00 UTC, 13:00 local for the +3 user.
	clk := clock.NewFake(time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	plusThree := func(string, string) int { return 3 }

	shifted := NewInsightService(energyRepo, prefsRepo, clk, plusThree)
	result, apiErr := shifted.WeeklySummary(context.Background(), userID, 0)
	require.Nil(t, apiErr)
	assert.Equal(t, 1, result.Summary.SampleCount)
	// Local Monday midnight expressed back in UTC.
	assert.Equal(t, time.Date(2025, 3, 9, 21, 0, 0, 0, time.UTC), result.WeekStart)

	utc := NewInsightService(energyRepo, prefsRepo, clk, UTCOffset)
	result, apiErr = utc.WeeklySummary(context.Background(), userID, 0)
	require.Nil(t, apiErr)
	assert.Equal(t, 0, result.Summary.SampleCount)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), result.WeekStart)
}
