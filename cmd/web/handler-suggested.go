package main

import (
	"net/http"

	"github.com/mkallio/fitplan/internal/errors"
	"github.com/mkallio/fitplan/internal/plan"
)

func (app *application) suggestedGET(w http.ResponseWriter, r *http.Request) {
	suggested, ok := app.planEngine.Suggested()
	if !ok {
		app.clientError(w, r, http.StatusNotFound, "no suggested plan")
		return
	}
	app.writeJSON(w, r, http.StatusOK, suggested)
}

func (app *application) acceptPOST(w http.ResponseWriter, r *http.Request) {
	accepted, err := app.planEngine.AcceptSuggested(r.Context())
	if errors.Is(err, plan.ErrNoSuggestedPlan) {
		app.clientError(w, r, http.StatusNotFound, "no suggested plan to accept")
		return
	}
	if errors.Is(err, plan.ErrActivePlanExists) {
		app.clientError(w, r, http.StatusConflict, "a plan is already active")
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	// The goal input served its purpose once a plan is running.
	app.sessionManager.Remove(r.Context(), goalDraftSessionKey)
	app.writeJSON(w, r, http.StatusOK, accepted)
}

func (app *application) rejectPOST(w http.ResponseWriter, r *http.Request) {
	// Rejection always succeeds and keeps the goal draft for regeneration.
	app.planEngine.RejectSuggested(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) suggestedDayPUT(w http.ResponseWriter, r *http.Request) {
	dayID, ok := app.parseUUIDParam(w, r, "dayID")
	if !ok {
		return
	}
	var day plan.Day
	if !app.decodeJSONBody(w, r, &day) {
		return
	}
	day.ID = dayID

	app.suggestedEditResponse(w, r, app.planEngine.UpdateSuggestedDay(r.Context(), day))
}

func (app *application) suggestedExercisePOST(w http.ResponseWriter, r *http.Request) {
	dayID, ok := app.parseUUIDParam(w, r, "dayID")
	if !ok {
		return
	}
	var exercise plan.Exercise
	if !app.decodeJSONBody(w, r, &exercise) {
		return
	}

	app.suggestedEditResponse(w, r,
		app.planEngine.AddExerciseToSuggestedDay(r.Context(), dayID, exercise))
}

func (app *application) suggestedExercisePUT(w http.ResponseWriter, r *http.Request) {
	dayID, ok := app.parseUUIDParam(w, r, "dayID")
	if !ok {
		return
	}
	exerciseID, ok := app.parseUUIDParam(w, r, "exerciseID")
	if !ok {
		return
	}
	var exercise plan.Exercise
	if !app.decodeJSONBody(w, r, &exercise) {
		return
	}
	exercise.ID = exerciseID

	app.suggestedEditResponse(w, r,
		app.planEngine.UpdateExerciseInSuggestedDay(r.Context(), dayID, exercise))
}

func (app *application) suggestedExerciseDELETE(w http.ResponseWriter, r *http.Request) {
	dayID, ok := app.parseUUIDParam(w, r, "dayID")
	if !ok {
		return
	}
	exerciseID, ok := app.parseUUIDParam(w, r, "exerciseID")
	if !ok {
		return
	}

	app.suggestedEditResponse(w, r,
		app.planEngine.RemoveExerciseFromSuggestedDay(r.Context(), dayID, exerciseID))
}

func (app *application) suggestedDayResetPOST(w http.ResponseWriter, r *http.Request) {
	dayID, ok := app.parseUUIDParam(w, r, "dayID")
	if !ok {
		return
	}

	app.suggestedEditResponse(w, r, app.planEngine.ResetDayToOriginal(r.Context(), dayID))
}

// suggestedEditResponse maps edit outcomes onto responses and returns the
// updated suggested plan on success.
func (app *application) suggestedEditResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case err == nil:
	case errors.Is(err, plan.ErrNoSuggestedPlan):
		app.clientError(w, r, http.StatusNotFound, "no suggested plan")
		return
	case errors.Is(err, plan.ErrOriginalMissing):
		app.clientError(w, r, http.StatusConflict, "the original plan is no longer available")
		return
	case errors.Is(err, plan.ErrDayNotFound):
		app.clientError(w, r, http.StatusNotFound, "unknown day")
		return
	case errors.Is(err, plan.ErrExerciseNotFound):
		app.clientError(w, r, http.StatusNotFound, "unknown exercise")
		return
	case errors.Is(err, plan.ErrLastExercise):
		app.clientError(w, r, http.StatusConflict, "a day needs at least one exercise")
		return
	default:
		app.serverError(w, r, err)
		return
	}

	suggested, ok := app.planEngine.Suggested()
	if !ok {
		app.serverError(w, r, errors.New("suggested plan missing after edit"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, suggested)
}
