package main

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkallio/fitplan/internal/errors"
	"github.com/mkallio/fitplan/internal/genai"
	"github.com/mkallio/fitplan/internal/plan"
)

func TestHealthy(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &fakeGenerator{})

	var body map[string]string
	status := ts.do(t, http.MethodGet, "/api/healthy", nil, &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestGoalsRoundTrip(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &fakeGenerator{})

	var initial goalsResponse
	status := ts.do(t, http.MethodGet, "/api/goals", nil, &initial)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, initial.SufficientForAI)
	assert.NotEmpty(t, initial.ValidationIssues)
	assert.NotEmpty(t, initial.Options)

	var updated goalsResponse
	status = ts.do(t, http.MethodPut, "/api/goals", sufficientGoals(), &updated)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, updated.SufficientForAI)
	assert.Empty(t, updated.ValidationIssues)

	// The draft survives across requests in the session.
	var reread goalsResponse
	status = ts.do(t, http.MethodGet, "/api/goals", nil, &reread)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Get stronger", reread.Draft.FreeText)
}

func TestGoalsRejectUnknownChip(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &fakeGenerator{})

	body := map[string]any{
		"selections": map[string]string{"equipment": "spaceship"},
	}
	status := ts.do(t, http.MethodPut, "/api/goals", body, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestGenerateRequiresSufficientGoals(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &fakeGenerator{})

	status := ts.do(t, http.MethodPost, "/api/plan/generate", nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestGenerateAcceptFlow(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &fakeGenerator{})

	suggested := ts.generateSuggestedPlan(t)
	require.Len(t, suggested.Days, plan.PlanLength)
	assert.Equal(t, plan.StatusSuggested, suggested.Status)

	var accepted plan.WorkoutPlan
	status := ts.do(t, http.MethodPost, "/api/plan/suggested/accept", nil, &accepted)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, plan.StatusActive, accepted.Status)
	assert.Equal(t, suggested.ID, accepted.ID)

	var current planResponse
	status = ts.do(t, http.MethodGet, "/api/plan", nil, &current)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, accepted.ID, current.Plan.ID)
	assert.Equal(t, plan.HealthOnTrack, current.Health)

	// The suggested slot is gone after acceptance.
	status = ts.do(t, http.MethodGet, "/api/plan/suggested", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAcceptWithoutSuggestedPlan(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &fakeGenerator{})

	status := ts.do(t, http.MethodPost, "/api/plan/suggested/accept", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGenerateConflictsWithActivePlan(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &fakeGenerator{})

	ts.generateSuggestedPlan(t)
	status := ts.do(t, http.MethodPost, "/api/plan/suggested/accept", nil, nil)
	require.Equal(t, http.StatusOK, status)

	status = ts.do(t, http.MethodPut, "/api/goals", sufficientGoals(), nil)
	require.Equal(t, http.StatusOK, status)
	status = ts.do(t, http.MethodPost, "/api/plan/generate", nil, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestRejectKeepsGoalDraft(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &fakeGenerator{})

	ts.generateSuggestedPlan(t)
	status := ts.do(t, http.MethodPost, "/api/plan/suggested/reject", nil, nil)
	require.Equal(t, http.StatusNoContent, status)

	var reread goalsResponse
	status = ts.do(t, http.MethodGet, "/api/goals", nil, &reread)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Get stronger", reread.Draft.FreeText)

	// Regeneration works right away.
	var regenerated plan.WorkoutPlan
	status = ts.do(t, http.MethodPost, "/api/plan/generate", nil, &regenerated)
	assert.Equal(t, http.StatusCreated, status)
}

func TestGenerationFailureClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		kind       genai.Kind
		wantStatus int
	}{
		{"network failure", genai.KindNetwork, http.StatusBadGateway},
		{"quota exhausted", genai.KindQuota, http.StatusServiceUnavailable},
		{"malformed response", genai.KindMalformed, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			generator := &fakeGenerator{err: &genai.ServiceError{Kind: tt.kind}, delay: 0}
			ts := newTestServer(t, generator)

			status := ts.do(t, http.MethodPut, "/api/goals", sufficientGoals(), nil)
			require.Equal(t, http.StatusOK, status)
			status = ts.do(t, http.MethodPost, "/api/plan/generate", nil, nil)
			assert.Equal(t, tt.wantStatus, status)

			// The failed generation releases the gate for a retry.
			generator.err = nil
			status = ts.do(t, http.MethodPost, "/api/plan/generate", nil, nil)
			assert.Equal(t, http.StatusCreated, status)
		})
	}
}

func TestExerciseToggle(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &fakeGenerator{})

	suggested := ts.generateSuggestedPlan(t)
	status := ts.do(t, http.MethodPost, "/api/plan/suggested/accept", nil, nil)
	require.Equal(t, http.StatusOK, status)

	day := suggested.Days[0]
	togglePath := fmt.Sprintf("/api/plan/days/%s/exercises/%s/toggle", day.ID, day.Exercises[0].ID)

	var toggled planResponse
	status = ts.do(t, http.MethodPost, togglePath, nil, &toggled)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, toggled.Plan.Days[0].Exercises[0].Completed)

	// Toggling again restores the original state.
	status = ts.do(t, http.MethodPost, togglePath, nil, &toggled)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, toggled.Plan.Days[0].Exercises[0].Completed)
}

func TestSuggestedDayEditing(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &fakeGenerator{})

	suggested := ts.generateSuggestedPlan(t)
	day := suggested.Days[2]

	// Add an exercise.
	exercise := map[string]any{
		"name": "Squats", "sets": 4,
		"quantity": map[string]any{"amount": 10, "unit": "reps"},
	}
	var updated plan.WorkoutPlan
	status := ts.do(t, http.MethodPost,
		fmt.Sprintf("/api/plan/suggested/days/%s/exercises", day.ID), exercise, &updated)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, updated.Days[2].Exercises, 3)

	// Remove down to one exercise, then removing the last is rejected.
	for _, ex := range updated.Days[2].Exercises[:2] {
		status = ts.do(t, http.MethodDelete,
			fmt.Sprintf("/api/plan/suggested/days/%s/exercises/%s", day.ID, ex.ID), nil, &updated)
		require.Equal(t, http.StatusOK, status)
	}
	require.Len(t, updated.Days[2].Exercises, 1)
	lastID := updated.Days[2].Exercises[0].ID
	status = ts.do(t, http.MethodDelete,
		fmt.Sprintf("/api/plan/suggested/days/%s/exercises/%s", day.ID, lastID), nil, nil)
	assert.Equal(t, http.StatusConflict, status)

	// Reset restores the generated exercise list.
	status = ts.do(t, http.MethodPost,
		fmt.Sprintf("/api/plan/suggested/days/%s/reset", day.ID), nil, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, updated.Days[2].Exercises, 2)
}

func TestHistoryFlow(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &fakeGenerator{})

	suggested := ts.generateSuggestedPlan(t)
	status := ts.do(t, http.MethodPost, "/api/plan/suggested/accept", nil, nil)
	require.Equal(t, http.StatusOK, status)

	// Completing with unfinished days is rejected.
	status = ts.do(t, http.MethodPost, "/api/plan/complete", nil, nil)
	assert.Equal(t, http.StatusConflict, status)

	// Finish every exercise of every day.
	for _, day := range suggested.Days {
		for _, ex := range day.Exercises {
			status = ts.do(t, http.MethodPost,
				fmt.Sprintf("/api/plan/days/%s/exercises/%s/toggle", day.ID, ex.ID), nil, nil)
			require.Equal(t, http.StatusOK, status)
		}
	}
	status = ts.do(t, http.MethodPost, "/api/plan/complete", nil, nil)
	require.Equal(t, http.StatusNoContent, status)

	var stats struct {
		TotalChallenges    int     `json:"total_challenges"`
		AverageSuccessRate float64 `json:"average_success_rate"`
	}
	status = ts.do(t, http.MethodGet, "/api/stats", nil, &stats)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, stats.TotalChallenges)
	assert.InEpsilon(t, 100.0, stats.AverageSuccessRate, 1e-9)

	var badges struct {
		Badges []struct {
			ID     string `json:"id"`
			Earned bool   `json:"earned"`
		} `json:"badges"`
	}
	status = ts.do(t, http.MethodGet, "/api/badges", nil, &badges)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, badges.Badges)
	assert.True(t, badges.Badges[0].Earned)

	var challenges struct {
		Challenges []struct {
			ID string `json:"id"`
		} `json:"challenges"`
	}
	status = ts.do(t, http.MethodGet, "/api/history", nil, &challenges)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, challenges.Challenges, 1)

	status = ts.do(t, http.MethodDelete, "/api/history/"+challenges.Challenges[0].ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status = ts.do(t, http.MethodDelete, "/api/history/"+challenges.Challenges[0].ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPlanSummary(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &fakeGenerator{})

	ts.generateSuggestedPlan(t)

	var summary map[string]string
	status := ts.do(t, http.MethodGet, "/api/plan/summary", nil, &summary)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, summary["summary_html"], "<strong>Two</strong>")
}

func TestStartOverClearsEverything(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &fakeGenerator{})

	ts.generateSuggestedPlan(t)
	status := ts.do(t, http.MethodPost, "/api/plan/suggested/accept", nil, nil)
	require.Equal(t, http.StatusOK, status)

	status = ts.do(t, http.MethodPost, "/api/plan/start-over", nil, nil)
	require.Equal(t, http.StatusNoContent, status)

	var current struct {
		Plan *plan.WorkoutPlan `json:"plan"`
	}
	status = ts.do(t, http.MethodGet, "/api/plan", nil, &current)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, current.Plan)

	// The goal draft is discarded too; only rejection keeps it.
	var reread goalsResponse
	status = ts.do(t, http.MethodGet, "/api/goals", nil, &reread)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, reread.Draft.FreeText)
	assert.Empty(t, reread.Draft.Selections)
	assert.False(t, reread.SufficientForAI)
}

func TestHistoryLimit(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &fakeGenerator{})

	start := time.Now().AddDate(0, 0, -plan.PlanLength)
	require.NoError(t, ts.app.historyManager.ForceArchive(t.Context(), buildTestPlan(start)))
	require.NoError(t, ts.app.historyManager.ForceArchive(t.Context(), buildTestPlan(start)))

	var challenges struct {
		Challenges []struct {
			ID string `json:"id"`
		} `json:"challenges"`
	}
	status := ts.do(t, http.MethodGet, "/api/history", nil, &challenges)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, challenges.Challenges, 2)

	status = ts.do(t, http.MethodGet, "/api/history?limit=1", nil, &challenges)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, challenges.Challenges, 1)

	status = ts.do(t, http.MethodGet, "/api/history?limit=oops", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestToggleOnUnknownIDsIsHarmless(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &fakeGenerator{})

	// No active plan at all.
	path := "/api/plan/days/3b1f4e9a-0000-0000-0000-000000000000/exercises/3b1f4e9a-0000-0000-0000-000000000001/toggle"
	status := ts.do(t, http.MethodPost, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Malformed ids are a 404, not a 500.
	status = ts.do(t, http.MethodPost, "/api/plan/days/oops/exercises/nope/toggle", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUnknownGenerationErrorIsServerError(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &fakeGenerator{err: errors.New("boom"), delay: 0})

	status := ts.do(t, http.MethodPut, "/api/goals", sufficientGoals(), nil)
	require.Equal(t, http.StatusOK, status)
	status = ts.do(t, http.MethodPost, "/api/plan/generate", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, status)
}
