package models

// HeatmapEntry is one non-empty (hour, weekday) cell of the focus heatmap.
// DayOfWeek uses Monday=0 .. Sunday=6, matching the mobile client.
type HeatmapEntry struct {
	Hour           int     `json:"hour"`
	DayOfWeek      int     `json:"day_of_week"`
	FocusedMinutes float64 `json:"focused_minutes"`
}

// FocusTrend is one calendar day with at least one completed session.
type FocusTrend struct {
	Date             string  `json:"date"`
	FocusedMinutes   float64 `json:"focused_minutes"`
	SessionCount     int     `json:"session_count"`
	DistractionCount int     `json:"distraction_count"`
}

type DistractionPattern struct {
	AppName              string `json:"app_name"`
	Count                int    `json:"count"`
	TotalDurationSeconds int    `json:"total_duration_seconds"`
}

type OptimalSessionLength struct {
	RecommendedMinutes int     `json:"recommended_minutes"`
	AvgFocusRatio      float64 `json:"avg_focus_ratio"`
	SampleSize         int     `json:"sample_size"`
}

// SmartGoal types: daily_focus, session_count, distraction_reduction, streak.
type SmartGoal struct {
	GoalType     string  `json:"goal_type"`
	TargetValue  float64 `json:"target_value"`
	CurrentValue float64 `json:"current_value"`
	Description  string  `json:"description"`
}

type InsightsResponse struct {
	Heatmap        []HeatmapEntry       `json:"heatmap"`
	Trends         []FocusTrend         `json:"trends"`
	TopDistractors []DistractionPattern `json:"top_distractors"`
	OptimalSession OptimalSessionLength `json:"optimal_session"`
	Goals          []SmartGoal          `json:"goals"`
}

// DailyTotal is a store-grouped per-calendar-day aggregate. Date is an ISO
// date string (the store owns date truncation, see repository.SessionRepo).
type DailyTotal struct {
	Date             string `json:"date"`
	FocusedSeconds   int    `json:"focused_seconds"`
	SessionCount     int    `json:"session_count"`
	DistractionCount int    `json:"distraction_count"`
}

// PeriodTotals are whole-window sums over completed sessions.
type PeriodTotals struct {
	FocusedSeconds   int `json:"focused_seconds"`
	TotalSeconds     int `json:"total_seconds"`
	SessionCount     int `json:"session_count"`
	DistractionCount int `json:"distraction_count"`
}

type DailyStat struct {
	Date           string `json:"date"`
	FocusedSeconds int    `json:"focused_seconds"`
	SessionCount   int    `json:"session_count"`
}

type PeriodStats struct {
	Period           string      `json:"period"`
	FocusedSeconds   int         `json:"focused_seconds"`
	TotalSeconds     int         `json:"total_seconds"`
	SessionCount     int         `json:"session_count"`
	DistractionCount int         `json:"distraction_count"`
	CurrentStreak    int         `json:"current_streak"`
	DailyBreakdown   []DailyStat `json:"daily_breakdown"`
}
