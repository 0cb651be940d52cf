package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkallio/fitplan/internal/errors"
	"github.com/mkallio/fitplan/internal/goals"
)

const goalDraftSessionKey = "goalDraft"

// goalDraft reads the draft goal input from the session. A missing or
// undecodable draft yields the empty input.
func (app *application) goalDraft(r *http.Request) goals.Data {
	raw := app.sessionManager.GetString(r.Context(), goalDraftSessionKey)
	if raw == "" {
		return goals.Data{} //nolint:exhaustruct // empty draft.
	}
	var draft goals.Data
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "discarding undecodable goal draft",
			errors.SlogError(err))
		return goals.Data{} //nolint:exhaustruct // empty draft.
	}
	return draft
}

func (app *application) storeGoalDraft(r *http.Request, draft goals.Data) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return errors.Wrap(err, "marshal goal draft")
	}
	app.sessionManager.Put(r.Context(), goalDraftSessionKey, string(raw))
	return nil
}

type goalsResponse struct {
	Draft             goals.Data                  `json:"draft"`
	CompletenessScore float64                     `json:"completeness_score"`
	SufficientForAI   bool                        `json:"sufficient_for_ai"`
	ValidationIssues  []string                    `json:"validation_issues"`
	Options           map[goals.Category][]string `json:"options"`
}

func (app *application) goalsGET(w http.ResponseWriter, r *http.Request) {
	draft := app.goalDraft(r)
	app.writeJSON(w, r, http.StatusOK, goalsResponse{
		Draft:             draft,
		CompletenessScore: draft.CompletenessScore(),
		SufficientForAI:   draft.IsSufficientForAI(),
		ValidationIssues:  draft.ValidationIssues(),
		Options: map[goals.Category][]string{
			goals.CategoryFitnessLevel: goals.Options(goals.CategoryFitnessLevel),
			goals.CategoryEquipment:    goals.Options(goals.CategoryEquipment),
			goals.CategorySchedule:     goals.Options(goals.CategorySchedule),
			goals.CategoryFocusArea:    goals.Options(goals.CategoryFocusArea),
		},
	})
}

type goalsRequest struct {
	FreeText   string                    `json:"free_text"`
	Selections map[goals.Category]string `json:"selections"`
	StartDate  *time.Time                `json:"start_date"`
}

func (app *application) goalsPUT(w http.ResponseWriter, r *http.Request) {
	var req goalsRequest
	if !app.decodeJSONBody(w, r, &req) {
		return
	}

	for category, value := range req.Selections {
		if !goals.IsValidOption(category, value) {
			app.clientError(w, r, http.StatusUnprocessableEntity,
				"unknown option for category "+string(category))
			return
		}
	}

	draft := goals.Data{
		FreeText:   req.FreeText,
		Selections: req.Selections,
		StartDate:  req.StartDate,
	}
	if err := app.storeGoalDraft(r, draft); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, goalsResponse{
		Draft:             draft,
		CompletenessScore: draft.CompletenessScore(),
		SufficientForAI:   draft.IsSufficientForAI(),
		ValidationIssues:  draft.ValidationIssues(),
		Options:           nil,
	})
}
