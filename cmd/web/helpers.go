package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/mkallio/fitplan/internal/errors"
)

// writeJSON encodes v as the JSON response body with the given status.
func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response", errors.SlogError(err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.writeJSON(w, r, http.StatusInternalServerError,
		errorResponse{Error: "something went wrong"})
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.writeJSON(w, r, status, errorResponse{Error: message})
}

// decodeJSONBody decodes the request body into v. On failure, a 400 response
// has already been sent.
func (app *application) decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// parseUUIDParam parses a uuid path parameter. On failure, a 404 response has
// already been sent.
func (app *application) parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		app.clientError(w, r, http.StatusNotFound, "unknown "+name)
		return uuid.Nil, false
	}
	return id, true
}
