package main

import (
	"net/http"
	"time"

	"github.com/mkallio/fitplan/internal/errors"
	"github.com/mkallio/fitplan/internal/history"
	"github.com/mkallio/fitplan/internal/plan"
)

type planResponse struct {
	Plan               plan.WorkoutPlan  `json:"plan"`
	ProgressPercentage float64           `json:"progress_percentage"`
	ExercisePercentage float64           `json:"exercise_percentage"`
	MissedDays         int               `json:"missed_days"`
	CurrentStreak      int               `json:"current_streak"`
	Health             plan.HealthStatus `json:"health"`
	CatchUpDayNumbers  []int             `json:"catch_up_day_numbers"`
	SuggestRestart     bool              `json:"suggest_restart"`
}

func newPlanResponse(p plan.WorkoutPlan, today time.Time) planResponse {
	catchUp := p.CatchUpDays(today)
	numbers := make([]int, len(catchUp))
	for i, d := range catchUp {
		numbers[i] = d.Number
	}
	return planResponse{
		Plan:               p,
		ProgressPercentage: p.ProgressPercentage(),
		ExercisePercentage: p.ExerciseCompletionPercentage(),
		MissedDays:         p.MissedDayCount(today),
		CurrentStreak:      p.CurrentStreak(),
		Health:             p.Health(today),
		CatchUpDayNumbers:  numbers,
		SuggestRestart:     p.SuggestRestart(today),
	}
}

// planGET returns the active plan with its derived metrics. Reading the plan
// also triggers the finished-plan check so an elapsed window is archived the
// moment the user comes back.
func (app *application) planGET(w http.ResponseWriter, r *http.Request) {
	archived, err := app.planEngine.CheckForFinishedPlan(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	current, ok := app.planEngine.Current()
	if !ok {
		app.writeJSON(w, r, http.StatusOK, map[string]any{
			"plan":          nil,
			"just_archived": archived,
		})
		return
	}
	app.writeJSON(w, r, http.StatusOK, newPlanResponse(current, time.Now()))
}

// planCompletePOST archives the active plan on the user-confirmed path.
func (app *application) planCompletePOST(w http.ResponseWriter, r *http.Request) {
	err := app.planEngine.CompleteActivePlan(r.Context())
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, plan.ErrNoActivePlan):
		app.clientError(w, r, http.StatusNotFound, "no active plan")
	case errors.Is(err, history.ErrPlanNotCompleted):
		app.clientError(w, r, http.StatusConflict, "the plan still has unfinished days")
	default:
		app.serverError(w, r, err)
	}
}

// startOverPOST clears all plan state and the goal draft. Only rejection keeps
// the draft around; starting over begins from empty goal input.
func (app *application) startOverPOST(w http.ResponseWriter, r *http.Request) {
	app.planEngine.StartOver(r.Context())
	app.sessionManager.Remove(r.Context(), goalDraftSessionKey)
	w.WriteHeader(http.StatusNoContent)
}

// exerciseTogglePOST flips an exercise's completion flag. Unknown ids are
// deliberately not an error so a stale client cannot wedge itself.
func (app *application) exerciseTogglePOST(w http.ResponseWriter, r *http.Request) {
	dayID, ok := app.parseUUIDParam(w, r, "dayID")
	if !ok {
		return
	}
	exerciseID, ok := app.parseUUIDParam(w, r, "exerciseID")
	if !ok {
		return
	}

	app.planEngine.ToggleExerciseCompletion(r.Context(), dayID, exerciseID)

	current, ok := app.planEngine.Current()
	if !ok {
		app.clientError(w, r, http.StatusNotFound, "no active plan")
		return
	}
	app.writeJSON(w, r, http.StatusOK, newPlanResponse(current, time.Now()))
}
