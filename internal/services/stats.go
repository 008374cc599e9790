package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"focusflow-backend/internal/models"
)

type StatsService struct {
	store SessionStore
}

func NewStatsService(store SessionStore) *StatsService {
	return &StatsService{store: store}
}

// PeriodSummary returns aggregate stats for "daily", "weekly" (default), or
// "monthly". Anything unrecognized falls back to weekly.
func (s *StatsService) PeriodSummary(ctx context.Context, userID uuid.UUID, period string) (*models.PeriodStats, error) {
	now := time.Now().UTC()

	var start time.Time
	switch period {
	case "daily":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	case "monthly":
		start = now.AddDate(0, 0, -30)
	default:
		period = "weekly"
		start = now.AddDate(0, 0, -7)
	}

	totals, err := s.store.PeriodTotals(ctx, userID, start, now)
	if err != nil {
		return nil, err
	}

	daily, err := s.store.DailyTotalsSince(ctx, userID, start)
	if err != nil {
		return nil, err
	}

	streak, err := s.CurrentStreak(ctx, userID)
	if err != nil {
		return nil, err
	}

	breakdown := make([]models.DailyStat, 0, len(daily))
	for _, d := range daily {
		breakdown = append(breakdown, models.DailyStat{
			Date:           d.Date,
			FocusedSeconds: d.FocusedSeconds,
			SessionCount:   d.SessionCount,
		})
	}

	return &models.PeriodStats{
		Period:           period,
		FocusedSeconds:   totals.FocusedSeconds,
		TotalSeconds:     totals.TotalSeconds,
		SessionCount:     totals.SessionCount,
		DistractionCount: totals.DistractionCount,
		CurrentStreak:    streak,
		DailyBreakdown:   breakdown,
	}, nil
}

func (s *StatsService) CurrentStreak(ctx context.Context, userID uuid.UUID) (int, error) {
	days, err := s.store.SessionDaysDesc(ctx, userID)
	if err != nil {
		return 0, err
	}
	return CalculateStreak(days, time.Now().UTC()), nil
}

// CalculateStreak walks session dates from newest to oldest counting
// consecutive days ending today. Dates after today are skipped. A streak
// survives only if it includes today; the first gap breaks it.
func CalculateStreak(days []time.Time, today time.Time) int {
	expected := truncateToDay(today)
	streak := 0

	for _, d := range days {
		day := truncateToDay(d)
		switch {
		case day.Equal(expected):
			streak++
			expected = expected.AddDate(0, 0, -1)
		case day.Before(expected):
			return streak
		}
		// day after expected: stray future date, ignore
	}
	return streak
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
