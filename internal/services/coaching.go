package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"focusflow-backend/internal/models"
)

// KV is the cache and rate-counter store. Implemented by database.RedisKV.
// Every KV failure in this service is non-fatal: caching and rate limiting
// degrade to "no cache, no limit" rather than blocking coaching responses.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// TaskCounter reports how many tasks were finished inside a time window.
type TaskCounter interface {
	TasksDoneBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) (int, error)
}

const (
	summaryCacheTTL = 24 * time.Hour
	nudgeCacheTTL   = time.Hour
	goalsCacheTTL   = 24 * time.Hour
	rateWindowTTL   = 24 * time.Hour
)

type CoachingService struct {
	store      SessionStore
	tasks      TaskCounter
	kv         KV
	provider   Provider
	dailyLimit int
}

// NewCoachingService wires the coaching engine. kv and provider may be nil;
// the service then skips caching/rate limiting and always uses fallbacks.
func NewCoachingService(store SessionStore, tasks TaskCounter, kv KV, provider Provider, dailyLimit int) *CoachingService {
	return &CoachingService{
		store:      store,
		tasks:      tasks,
		kv:         kv,
		provider:   provider,
		dailyLimit: dailyLimit,
	}
}

const sessionSummarySystemPrompt = "You are a supportive productivity coach. " +
	"Analyze this focus session and provide brief, encouraging feedback (2-3 sentences). " +
	"Focus on specific achievements and one suggestion for improvement."

const nudgeSystemPrompt = "You are a productivity coach. Based on this user's recent focus patterns, " +
	"write ONE short, actionable tip (max 2 sentences) to help them focus better today. " +
	"Be specific and encouraging, not generic."

const goalsSystemPrompt = "You are a productivity coach. Suggest 3 specific, measurable goals for this user " +
	"based on their recent performance. Format as a JSON array: " +
	`[{"goal": "...", "target": "...", "reasoning": "..."}]`

// SessionSummary produces encouraging feedback for a completed session.
// Never returns an AI failure to the caller: any provider or cache problem
// degrades to a template summary.
func (s *CoachingService) SessionSummary(ctx context.Context, userID, sessionID uuid.UUID) (*models.SessionSummaryResponse, error) {
	session, err := s.store.SessionByID(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return &models.SessionSummaryResponse{Summary: "Session not found.", IsAIGenerated: false}, nil
	}

	end := time.Now().UTC()
	if session.EndTime != nil {
		end = *session.EndTime
	}
	tasksCompleted := 0
	if s.tasks != nil {
		n, err := s.tasks.TasksDoneBetween(ctx, userID, session.StartTime, end)
		if err != nil {
			log.Printf("coaching: task count lookup failed: %v", err)
		} else {
			tasksCompleted = n
		}
	}

	durationMin := round1(float64(session.DurationSeconds) / 60.0)
	focusedMin := round1(float64(session.FocusedSeconds) / 60.0)
	focusRatio := 0.0
	if session.DurationSeconds > 0 {
		focusRatio = float64(session.FocusedSeconds) / float64(session.DurationSeconds)
	}

	if s.withinRateLimit(ctx, userID) && s.provider != nil {
		userPrompt := fmt.Sprintf(
			"Session data:\n- Duration: %.1f minutes\n- Focused time: %.1f minutes (%.0f%% focus ratio)\n- Distractions: %d\n- Tasks completed: %d",
			durationMin, focusedMin, focusRatio*100, session.DistractionCount, tasksCompleted,
		)

		text, err := s.provider.Generate(ctx, sessionSummarySystemPrompt, userPrompt)
		if err == nil {
			s.cacheSet(ctx, "ai_summary:"+sessionID.String(), text, summaryCacheTTL)
			return &models.SessionSummaryResponse{Summary: text, IsAIGenerated: true}, nil
		}
		log.Printf("coaching: summary generation failed: %v", err)
	}

	summary := fallbackSessionSummary(durationMin, focusedMin, session.DistractionCount, tasksCompleted)
	return &models.SessionSummaryResponse{Summary: summary, IsAIGenerated: false}, nil
}

// Nudge returns one actionable focus tip, cached per user for an hour.
func (s *CoachingService) Nudge(ctx context.Context, userID uuid.UUID) (*models.CoachingNudgeResponse, error) {
	cacheKey := "ai_nudge:" + userID.String()
	if cached := s.cacheGet(ctx, cacheKey); cached != "" {
		return &models.CoachingNudgeResponse{Nudge: cached, IsAIGenerated: true}, nil
	}

	patterns, err := s.userPatterns(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.withinRateLimit(ctx, userID) && s.provider != nil {
		userPrompt := fmt.Sprintf(
			"User patterns:\n- Average daily focus: %.1f minutes\n- Most productive hour: %d:00\n- Top distractor: %s\n- Current streak: %d days",
			patterns.avgDailyFocusMin, patterns.peakHour, patterns.topDistractor, patterns.streakDays,
		)

		text, err := s.provider.Generate(ctx, nudgeSystemPrompt, userPrompt)
		if err == nil {
			s.cacheSet(ctx, cacheKey, text, nudgeCacheTTL)
			return &models.CoachingNudgeResponse{Nudge: text, IsAIGenerated: true}, nil
		}
		log.Printf("coaching: nudge generation failed: %v", err)
	}

	nudge := fallbackNudge(patterns.avgDailyFocusMin, patterns.peakHour, patterns.topDistractor)
	return &models.CoachingNudgeResponse{Nudge: nudge, IsAIGenerated: false}, nil
}

// GoalSuggestions returns three measurable goals, cached per user for a day.
func (s *CoachingService) GoalSuggestions(ctx context.Context, userID uuid.UUID) (*models.GoalSuggestionsResponse, error) {
	cacheKey := "ai_goals:" + userID.String()
	if cached := s.cacheGet(ctx, cacheKey); cached != "" {
		var goals []models.GoalSuggestion
		if json.Unmarshal([]byte(cached), &goals) == nil && len(goals) > 0 {
			return &models.GoalSuggestionsResponse{Goals: goals, IsAIGenerated: true}, nil
		}
	}

	trend, err := s.trendData(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.withinRateLimit(ctx, userID) && s.provider != nil {
		userPrompt := fmt.Sprintf(
			"Recent performance:\n- Avg daily focus: %.1f minutes\n- Sessions per day: %.1f\n- Focus ratio: %.0f%%\n- Distraction trend: %s",
			trend.avgDailyFocusMin, trend.avgSessionsPerDay, trend.avgFocusRatio*100, trend.distractionTrend,
		)

		raw, err := s.provider.Generate(ctx, goalsSystemPrompt, userPrompt)
		if err == nil {
			if goals := parseGoalSuggestions(raw); len(goals) > 0 {
				if encoded, err := json.Marshal(goals); err == nil {
					s.cacheSet(ctx, cacheKey, string(encoded), goalsCacheTTL)
				}
				return &models.GoalSuggestionsResponse{Goals: goals, IsAIGenerated: true}, nil
			}
			log.Printf("coaching: goal response was not parseable, using fallback")
		} else {
			log.Printf("coaching: goal generation failed: %v", err)
		}
	}

	goals := fallbackGoals(trend.avgDailyFocusMin, trend.avgSessionsPerDay)
	return &models.GoalSuggestionsResponse{Goals: goals, IsAIGenerated: false}, nil
}

// withinRateLimit counts this call against the user's daily AI budget.
// The counter increments whether or not a provider call follows, and a broken
// counter store never blocks the request.
func (s *CoachingService) withinRateLimit(ctx context.Context, userID uuid.UUID) bool {
	if s.kv == nil {
		return true
	}

	key := fmt.Sprintf("ai_rate:%s:%s", userID, time.Now().UTC().Format("2006-01-02"))
	count, err := s.kv.Incr(ctx, key)
	if err != nil {
		log.Printf("coaching: rate counter failed, allowing request: %v", err)
		return true
	}
	if count == 1 {
		if err := s.kv.Expire(ctx, key, rateWindowTTL); err != nil {
			log.Printf("coaching: rate counter expire failed: %v", err)
		}
	}
	return count <= int64(s.dailyLimit)
}

func (s *CoachingService) cacheGet(ctx context.Context, key string) string {
	if s.kv == nil {
		return ""
	}
	val, err := s.kv.Get(ctx, key)
	if err != nil {
		log.Printf("coaching: cache read failed for %s: %v", key, err)
		return ""
	}
	return val
}

func (s *CoachingService) cacheSet(ctx context.Context, key, value string, ttl time.Duration) {
	if s.kv == nil {
		return
	}
	if err := s.kv.SetEx(ctx, key, value, ttl); err != nil {
		log.Printf("coaching: cache write failed for %s: %v", key, err)
	}
}

type focusPatterns struct {
	avgDailyFocusMin float64
	peakHour         int
	topDistractor    string
	streakDays       int
}

// userPatterns summarizes the last 14 days of behavior for the nudge prompt.
func (s *CoachingService) userPatterns(ctx context.Context, userID uuid.UUID) (focusPatterns, error) {
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -14)

	sessions, err := s.store.CompletedSince(ctx, userID, since)
	if err != nil {
		return focusPatterns{}, err
	}
	if len(sessions) == 0 {
		return focusPatterns{avgDailyFocusMin: 0, peakHour: 9, topDistractor: "none", streakDays: 0}, nil
	}

	totalFocused := 0
	byHour := make(map[int]int)
	for _, sess := range sessions {
		totalFocused += sess.FocusedSeconds
		byHour[sess.StartTime.Hour()] += sess.FocusedSeconds
	}

	peakHour := 9
	peakFocused := -1
	hours := make([]int, 0, len(byHour))
	for h := range byHour {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	for _, h := range hours {
		if byHour[h] > peakFocused {
			peakFocused = byHour[h]
			peakHour = h
		}
	}

	topDistractor := "none"
	events, err := s.store.DistractionEventsSince(ctx, userID, since)
	if err != nil {
		return focusPatterns{}, err
	}
	if ranked := rankDistractions(events, 1); len(ranked) > 0 {
		topDistractor = ranked[0].AppName
	}

	days, err := s.store.SessionDaysDesc(ctx, userID)
	if err != nil {
		return focusPatterns{}, err
	}

	return focusPatterns{
		avgDailyFocusMin: round1(float64(totalFocused) / 14 / 60),
		peakHour:         peakHour,
		topDistractor:    topDistractor,
		streakDays:       CalculateStreak(days, now),
	}, nil
}

type performanceTrend struct {
	avgDailyFocusMin  float64
	avgSessionsPerDay float64
	avgFocusRatio     float64
	distractionTrend  string
}

// trendData summarizes the last 14 days for the goal suggestion prompt. The
// distraction trend compares the older week against the recent one.
func (s *CoachingService) trendData(ctx context.Context, userID uuid.UUID) (performanceTrend, error) {
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -14)

	sessions, err := s.store.CompletedSince(ctx, userID, since)
	if err != nil {
		return performanceTrend{}, err
	}
	if len(sessions) == 0 {
		return performanceTrend{distractionTrend: "no data"}, nil
	}

	const daysSpan = 14
	totalFocused := 0
	totalDuration := 0
	week1Distractions := 0
	week2Distractions := 0
	midpoint := now.AddDate(0, 0, -7)

	for _, sess := range sessions {
		totalFocused += sess.FocusedSeconds
		totalDuration += sess.DurationSeconds
		if sess.StartTime.Before(midpoint) {
			week1Distractions += sess.DistractionCount
		} else {
			week2Distractions += sess.DistractionCount
		}
	}

	focusRatio := 0.0
	if totalDuration > 0 {
		focusRatio = float64(totalFocused) / float64(totalDuration)
	}

	trend := "stable"
	switch {
	case week2Distractions < week1Distractions:
		trend = "improving"
	case week2Distractions > week1Distractions:
		trend = "increasing"
	}

	return performanceTrend{
		avgDailyFocusMin:  round1(float64(totalFocused) / daysSpan / 60),
		avgSessionsPerDay: round1(float64(len(sessions)) / daysSpan),
		avgFocusRatio:     focusRatio,
		distractionTrend:  trend,
	}, nil
}

// parseGoalSuggestions extracts goal objects from a model response. Accepts a
// bare JSON array, a single JSON object, or an array embedded in surrounding
// prose. Returns nil when nothing usable can be recovered.
func parseGoalSuggestions(raw string) []models.GoalSuggestion {
	raw = stripFences(raw)

	if goals := decodeGoalList(raw); goals != nil {
		return goals
	}

	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start >= 0 && end > start {
		if goals := decodeGoalList(raw[start : end+1]); goals != nil {
			return goals
		}
	}
	return nil
}

func decodeGoalList(raw string) []models.GoalSuggestion {
	var items []map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		var single map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &single); err != nil {
			return nil
		}
		items = []map[string]interface{}{single}
	}

	var goals []models.GoalSuggestion
	for _, item := range items {
		goal, okGoal := item["goal"]
		target, okTarget := item["target"]
		reasoning, okReasoning := item["reasoning"]
		if !okGoal || !okTarget || !okReasoning {
			continue
		}
		goals = append(goals, models.GoalSuggestion{
			Goal:      coerceString(goal),
			Target:    coerceString(target),
			Reasoning: coerceString(reasoning),
		})
	}
	return goals
}

func coerceString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func fallbackSessionSummary(durationMin, focusedMin float64, distractions, tasksCompleted int) string {
	ratio := 0.0
	if durationMin > 0 {
		ratio = focusedMin / durationMin
	}

	var quality string
	switch {
	case ratio >= 0.9:
		quality = "excellent"
	case ratio >= 0.75:
		quality = "solid"
	case ratio >= 0.5:
		quality = "decent"
	default:
		quality = "challenging"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You completed a %s %.0f-minute session with %.0f minutes of focused work.", quality, durationMin, focusedMin)

	if tasksCompleted > 0 {
		plural := ""
		if tasksCompleted > 1 {
			plural = "s"
		}
		fmt.Fprintf(&b, " You finished %d task%s!", tasksCompleted, plural)
	}

	switch {
	case distractions == 0:
		b.WriteString(" Zero distractions — impressive discipline!")
	case distractions <= 2:
		plural := ""
		if distractions > 1 {
			plural = "s"
		}
		fmt.Fprintf(&b, " Only %d distraction%s — keep that focus strong.", distractions, plural)
	default:
		fmt.Fprintf(&b, " You had %d distractions. Try closing unnecessary apps before your next session.", distractions)
	}

	return b.String()
}

func fallbackNudge(avgDailyFocusMin float64, peakHour int, topDistractor string) string {
	if avgDailyFocusMin < 30 {
		return fmt.Sprintf("Try scheduling a 25-minute focus session around %d:00 today — that's when you tend to do your best work.", peakHour)
	}
	if topDistractor != "none" {
		return fmt.Sprintf("Consider blocking %s during your next session. Your peak focus time is around %d:00.", topDistractor, peakHour)
	}
	return fmt.Sprintf("You're averaging %.0f minutes of focus daily. Push for 10%% more today and build on your momentum!", avgDailyFocusMin)
}

func fallbackGoals(avgDailyFocusMin, avgSessionsPerDay float64) []models.GoalSuggestion {
	targetFocus := int(math.Max(30, math.Round(avgDailyFocusMin*1.1)))
	targetSessions := int(math.Max(2, math.Round(avgSessionsPerDay*1.1)))

	return []models.GoalSuggestion{
		{
			Goal:      fmt.Sprintf("Focus for %d minutes daily", targetFocus),
			Target:    fmt.Sprintf("%d min/day", targetFocus),
			Reasoning: fmt.Sprintf("You currently average %.0f minutes. A 10%% increase is achievable and builds consistency.", avgDailyFocusMin),
		},
		{
			Goal:      fmt.Sprintf("Complete %d focus sessions daily", targetSessions),
			Target:    fmt.Sprintf("%d sessions/day", targetSessions),
			Reasoning: fmt.Sprintf("You average %.1f sessions. Adding one more builds the habit.", avgSessionsPerDay),
		},
		{
			Goal:      "Maintain a 3-day focus streak",
			Target:    "3 consecutive days",
			Reasoning: "Streaks reinforce habits. Start with 3 days and extend from there.",
		},
	}
}
