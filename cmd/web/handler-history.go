package main

import (
	"net/http"
	"strconv"

	"github.com/mkallio/fitplan/internal/errors"
	"github.com/mkallio/fitplan/internal/history"
)

// historyGET returns completed challenges, newest first. An optional limit
// query parameter caps the result.
func (app *application) historyGET(w http.ResponseWriter, r *http.Request) {
	challenges := app.historyManager.Challenges()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			app.clientError(w, r, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		challenges = app.historyManager.Recent(limit)
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{
		"challenges": challenges,
	})
}

func (app *application) historyDELETE(w http.ResponseWriter, r *http.Request) {
	challengeID, ok := app.parseUUIDParam(w, r, "challengeID")
	if !ok {
		return
	}

	err := app.historyManager.Delete(r.Context(), challengeID)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, history.ErrNotFound):
		app.clientError(w, r, http.StatusNotFound, "unknown challenge")
	default:
		app.serverError(w, r, err)
	}
}

func (app *application) statsGET(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, app.historyManager.Stats())
}

func (app *application) badgesGET(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, map[string]any{
		"badges": app.historyManager.Badges(),
	})
}
