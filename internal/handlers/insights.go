package handlers

import (
	"net/http"
	"strconv"

	"focusflow-backend/internal/middleware"
	"focusflow-backend/internal/services"
)

type InsightsHandler struct {
	insights *services.InsightsService
	stats    *services.StatsService
}

func NewInsightsHandler(insights *services.InsightsService, stats *services.StatsService) *InsightsHandler {
	return &InsightsHandler{insights: insights, stats: stats}
}

// windowDays parses the ?days query param, defaulting to 30 and clamping to
// [7, 90] so a typo can't trigger a full table scan.
func windowDays(r *http.Request) int {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			days = parsed
		}
	}
	if days < 7 {
		days = 7
	}
	if days > 90 {
		days = 90
	}
	return days
}

func (h *InsightsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	insights, err := h.insights.Bundle(r.Context(), userID, windowDays(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to build insights", r))
		return
	}

	writeJSON(w, http.StatusOK, insights)
}

func (h *InsightsHandler) Heatmap(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	heatmap, err := h.insights.FocusHeatmap(r.Context(), userID, windowDays(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to build heatmap", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"heatmap": heatmap,
	})
}

func (h *InsightsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	trends, err := h.insights.FocusTrend(r.Context(), userID, windowDays(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to build trends", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"trends": trends,
	})
}

func (h *InsightsHandler) Distractions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	patterns, err := h.insights.DistractionPatterns(r.Context(), userID, windowDays(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to build distraction patterns", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"top_distractors": patterns,
	})
}

func (h *InsightsHandler) OptimalSession(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	optimal, err := h.insights.OptimalSessionLength(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to compute optimal session length", r))
		return
	}

	writeJSON(w, http.StatusOK, optimal)
}

func (h *InsightsHandler) Goals(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	goals, err := h.insights.SmartGoals(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to build goals", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"goals": goals,
	})
}

func (h *InsightsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	period := r.URL.Query().Get("period")

	stats, err := h.stats.PeriodSummary(r.Context(), userID, period)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to build stats", r))
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *InsightsHandler) Streak(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	streak, err := h.stats.CurrentStreak(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to compute streak", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"current_streak": streak})
}
