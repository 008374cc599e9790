package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"focusflow-backend/internal/models"
)

// SessionStore is the read surface the insights and coaching engines consume.
// Implemented by repository.SessionRepo; tests use an in-memory fake.
// Calendar-date grouping (DailyTotalsSince, SessionDaysDesc) is deliberately a
// store capability so the engine never re-derives date truncation.
type SessionStore interface {
	SessionByID(ctx context.Context, userID, sessionID uuid.UUID) (*models.Session, error)
	CompletedSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.Session, error)
	CompletedWithDuration(ctx context.Context, userID uuid.UUID) ([]models.Session, error)
	DistractionEventsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.SessionEvent, error)
	DailyTotalsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.DailyTotal, error)
	PeriodTotals(ctx context.Context, userID uuid.UUID, start, end time.Time) (models.PeriodTotals, error)
	SessionDaysDesc(ctx context.Context, userID uuid.UUID) ([]time.Time, error)
}

type InsightsService struct {
	store SessionStore
}

func NewInsightsService(store SessionStore) *InsightsService {
	return &InsightsService{store: store}
}

// FocusHeatmap aggregates focused time by (hour of day, day of week) over the
// window. Day of week is Monday=0 .. Sunday=6.
func (s *InsightsService) FocusHeatmap(ctx context.Context, userID uuid.UUID, days int) ([]models.HeatmapEntry, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	sessions, err := s.store.CompletedSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	return buildHeatmap(sessions), nil
}

func buildHeatmap(sessions []models.Session) []models.HeatmapEntry {
	type cell struct{ hour, dow int }
	grid := make(map[cell]float64)
	for _, s := range sessions {
		st := s.StartTime
		c := cell{
			hour: st.Hour(),
			dow:  mondayWeekday(st),
		}
		grid[c] += float64(s.FocusedSeconds) / 60.0
	}

	entries := make([]models.HeatmapEntry, 0, len(grid))
	for c, minutes := range grid {
		entries = append(entries, models.HeatmapEntry{
			Hour:           c.hour,
			DayOfWeek:      c.dow,
			FocusedMinutes: round1(minutes),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Hour != entries[j].Hour {
			return entries[i].Hour < entries[j].Hour
		}
		return entries[i].DayOfWeek < entries[j].DayOfWeek
	})
	return entries
}

// mondayWeekday maps time.Weekday (Sunday=0) to Monday=0 .. Sunday=6.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// FocusTrend returns one row per calendar day with at least one completed
// session, oldest first.
func (s *InsightsService) FocusTrend(ctx context.Context, userID uuid.UUID, days int) ([]models.FocusTrend, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	totals, err := s.store.DailyTotalsSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	trends := make([]models.FocusTrend, 0, len(totals))
	for _, t := range totals {
		trends = append(trends, models.FocusTrend{
			Date:             t.Date,
			FocusedMinutes:   round1(float64(t.FocusedSeconds) / 60.0),
			SessionCount:     t.SessionCount,
			DistractionCount: t.DistractionCount,
		})
	}
	return trends, nil
}

// DistractionPatterns ranks distracting apps by event count, top 10.
func (s *InsightsService) DistractionPatterns(ctx context.Context, userID uuid.UUID, days int) ([]models.DistractionPattern, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	events, err := s.store.DistractionEventsSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	return rankDistractions(events, 10), nil
}

func rankDistractions(events []models.SessionEvent, limit int) []models.DistractionPattern {
	byApp := make(map[string]*models.DistractionPattern)
	for _, e := range events {
		if e.AppName == nil {
			continue
		}
		p, ok := byApp[*e.AppName]
		if !ok {
			p = &models.DistractionPattern{AppName: *e.AppName}
			byApp[*e.AppName] = p
		}
		p.Count++
		if e.DurationSeconds != nil {
			p.TotalDurationSeconds += *e.DurationSeconds
		}
	}

	patterns := make([]models.DistractionPattern, 0, len(byApp))
	for _, p := range byApp {
		patterns = append(patterns, *p)
	}
	// Count descending; app name breaks ties so the order is stable.
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Count != patterns[j].Count {
			return patterns[i].Count > patterns[j].Count
		}
		return patterns[i].AppName < patterns[j].AppName
	})
	if len(patterns) > limit {
		patterns = patterns[:limit]
	}
	return patterns
}

// Duration buckets in seconds; the label is the representative session length
// in minutes. A session lands in the first bucket whose range contains it.
var durationBuckets = []struct {
	label  int
	lo, hi int
}{
	{15, 0, 20 * 60},
	{25, 20 * 60, 35 * 60},
	{45, 35 * 60, 52 * 60},
	{60, 52 * 60, 75 * 60},
	{90, 75 * 60, math.MaxInt},
}

// OptimalSessionLength buckets all-time completed sessions by duration and
// recommends the bucket with the best average focus ratio (minimum 3 samples).
func (s *InsightsService) OptimalSessionLength(ctx context.Context, userID uuid.UUID) (models.OptimalSessionLength, error) {
	sessions, err := s.store.CompletedWithDuration(ctx, userID)
	if err != nil {
		return models.OptimalSessionLength{}, err
	}
	return classifyOptimalLength(sessions), nil
}

func classifyOptimalLength(sessions []models.Session) models.OptimalSessionLength {
	ratios := make(map[int][]float64, len(durationBuckets))
	for _, b := range durationBuckets {
		ratios[b.label] = nil
	}

	for _, s := range sessions {
		ratio := 0.0
		if s.DurationSeconds > 0 {
			ratio = float64(s.FocusedSeconds) / float64(s.DurationSeconds)
		}
		for _, b := range durationBuckets {
			if s.DurationSeconds >= b.lo && s.DurationSeconds < b.hi {
				ratios[b.label] = append(ratios[b.label], ratio)
				break
			}
		}
	}

	bestLabel := 25 // sensible default
	bestRatio := 0.0
	bestCount := 0

	for _, b := range durationBuckets {
		rs := ratios[b.label]
		if len(rs) >= 3 {
			avg := mean(rs)
			if avg > bestRatio {
				bestRatio = avg
				bestLabel = b.label
				bestCount = len(rs)
			}
		}
	}

	// No bucket has enough samples: fall back to the most populated one.
	if bestCount == 0 {
		for _, b := range durationBuckets {
			rs := ratios[b.label]
			if len(rs) > bestCount {
				bestCount = len(rs)
				bestLabel = b.label
				bestRatio = mean(rs)
			}
		}
	}

	return models.OptimalSessionLength{
		RecommendedMinutes: bestLabel,
		AvgFocusRatio:      round3(bestRatio),
		SampleSize:         bestCount,
	}
}

// SmartGoals derives four adaptive targets from week-over-week deltas, always
// in the order daily_focus, session_count, distraction_reduction, streak.
func (s *InsightsService) SmartGoals(ctx context.Context, userID uuid.UUID) ([]models.SmartGoal, error) {
	now := time.Now().UTC()
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	current, err := s.store.PeriodTotals(ctx, userID, weekAgo, now)
	if err != nil {
		return nil, err
	}
	previous, err := s.store.PeriodTotals(ctx, userID, twoWeeksAgo, weekAgo)
	if err != nil {
		return nil, err
	}

	days, err := s.store.SessionDaysDesc(ctx, userID)
	if err != nil {
		return nil, err
	}
	streak := CalculateStreak(days, now)

	return buildSmartGoals(current, previous, streak), nil
}

func buildSmartGoals(current, previous models.PeriodTotals, streak int) []models.SmartGoal {
	goals := make([]models.SmartGoal, 0, 4)

	// Daily focus: 10% over last week's daily average, or a 60-minute default.
	currentDaily := float64(current.FocusedSeconds) / 7 / 60
	targetFocus := 60.0
	if previous.FocusedSeconds > 0 {
		prevDaily := float64(previous.FocusedSeconds) / 7 / 60
		targetFocus = math.Round(prevDaily * 1.1)
	}
	goals = append(goals, models.SmartGoal{
		GoalType:     "daily_focus",
		TargetValue:  targetFocus,
		CurrentValue: round1(currentDaily),
		Description:  fmt.Sprintf("Focus for %d minutes daily", int(targetFocus)),
	})

	// Session count: one more than last week, never below where they already are.
	targetSessions := 5
	if previous.SessionCount > 0 {
		targetSessions = previous.SessionCount + 1
		if current.SessionCount > targetSessions {
			targetSessions = current.SessionCount
		}
	}
	goals = append(goals, models.SmartGoal{
		GoalType:     "session_count",
		TargetValue:  float64(targetSessions),
		CurrentValue: float64(current.SessionCount),
		Description:  fmt.Sprintf("Complete %d focus sessions this week", targetSessions),
	})

	// Distraction reduction: 20% below last week, floored at zero.
	targetDistractions := 0
	if previous.DistractionCount > 0 {
		targetDistractions = int(math.Round(float64(previous.DistractionCount) * 0.8))
		if targetDistractions < 0 {
			targetDistractions = 0
		}
	}
	desc := "Stay distraction-free this week"
	if targetDistractions > 0 {
		desc = fmt.Sprintf("Keep distractions below %d this week", targetDistractions)
	}
	goals = append(goals, models.SmartGoal{
		GoalType:     "distraction_reduction",
		TargetValue:  float64(targetDistractions),
		CurrentValue: float64(current.DistractionCount),
		Description:  desc,
	})

	// Streak: always at least one day past where they are, minimum 3.
	targetStreak := streak + 1
	if targetStreak < 3 {
		targetStreak = 3
	}
	goals = append(goals, models.SmartGoal{
		GoalType:     "streak",
		TargetValue:  float64(targetStreak),
		CurrentValue: float64(streak),
		Description:  fmt.Sprintf("Build a %d-day focus streak", targetStreak),
	})

	return goals
}

// Bundle assembles the full insights response for a user.
func (s *InsightsService) Bundle(ctx context.Context, userID uuid.UUID, days int) (*models.InsightsResponse, error) {
	heatmap, err := s.FocusHeatmap(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	trends, err := s.FocusTrend(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	distractors, err := s.DistractionPatterns(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	optimal, err := s.OptimalSessionLength(ctx, userID)
	if err != nil {
		return nil, err
	}
	goals, err := s.SmartGoals(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.InsightsResponse{
		Heatmap:        heatmap,
		Trends:         trends,
		TopDistractors: distractors,
		OptimalSession: optimal,
		Goals:          goals,
	}, nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
