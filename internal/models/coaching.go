package models

type SessionSummaryResponse struct {
	Summary       string `json:"summary"`
	IsAIGenerated bool   `json:"is_ai_generated"`
}

type CoachingNudgeResponse struct {
	Nudge         string `json:"nudge"`
	IsAIGenerated bool   `json:"is_ai_generated"`
}

// GoalSuggestion is the shape the LLM is asked to emit and the fallback
// generator mirrors.
type GoalSuggestion struct {
	Goal      string `json:"goal"`
	Target    string `json:"target"`
	Reasoning string `json:"reasoning"`
}

type GoalSuggestionsResponse struct {
	Goals         []GoalSuggestion `json:"goals"`
	IsAIGenerated bool             `json:"is_ai_generated"`
}
