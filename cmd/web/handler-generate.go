package main

import (
	"net/http"

	"github.com/mkallio/fitplan/internal/errors"
	"github.com/mkallio/fitplan/internal/genai"
	"github.com/mkallio/fitplan/internal/plan"
)

// generatePOST runs plan generation synchronously. The engine's generation
// token serializes generations and discards results that arrive after the
// user abandoned the flow with a start-over.
func (app *application) generatePOST(w http.ResponseWriter, r *http.Request) {
	draft := app.goalDraft(r)
	if !draft.IsSufficientForAI() {
		app.writeJSON(w, r, http.StatusUnprocessableEntity, map[string]any{
			"error":             "goal input is not sufficient for generation",
			"validation_issues": draft.ValidationIssues(),
		})
		return
	}

	if _, ok := app.planEngine.Current(); ok {
		app.clientError(w, r, http.StatusConflict, "a plan is already active")
		return
	}

	token, err := app.planEngine.BeginGeneration()
	if errors.Is(err, plan.ErrGenerationInFlight) {
		app.clientError(w, r, http.StatusConflict, "a generation is already in progress")
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	generated, err := app.generator.GenerateWorkoutPlan(r.Context(), draft)
	if err != nil {
		app.planEngine.AbortGeneration(token)
		app.generationError(w, r, err)
		return
	}

	if err = app.planEngine.CompleteGeneration(r.Context(), token, generated); err != nil {
		if errors.Is(err, plan.ErrStaleGeneration) {
			// The user started over while we were waiting for the model.
			app.clientError(w, r, http.StatusConflict, "generation was abandoned")
			return
		}
		app.serverError(w, r, err)
		return
	}

	suggested, ok := app.planEngine.Suggested()
	if !ok {
		app.serverError(w, r, errors.New("suggested plan missing after generation"))
		return
	}
	app.writeJSON(w, r, http.StatusCreated, suggested)
}

// generationError phrases a classified generation failure for the client.
func (app *application) generationError(w http.ResponseWriter, r *http.Request, err error) {
	var serviceErr *genai.ServiceError
	if !errors.As(err, &serviceErr) {
		app.serverError(w, r, err)
		return
	}
	switch serviceErr.Kind {
	case genai.KindNetwork:
		app.clientError(w, r, http.StatusBadGateway,
			"could not reach the generation service, please try again")
	case genai.KindQuota:
		app.clientError(w, r, http.StatusServiceUnavailable,
			"generation is temporarily unavailable, please try again later")
	case genai.KindMalformed:
		app.clientError(w, r, http.StatusBadGateway,
			"the generation service returned an unusable plan, please try again")
	case genai.KindUnknown:
		app.serverError(w, r, err)
	default:
		app.serverError(w, r, err)
	}
}
