package main

import (
	"bytes"
	"net/http"

	"github.com/yuin/goldmark"
)

// planSummaryGET renders the AI-authored Markdown summary of the active or
// suggested plan to HTML.
func (app *application) planSummaryGET(w http.ResponseWriter, r *http.Request) {
	p, ok := app.planEngine.Current()
	if !ok {
		if p, ok = app.planEngine.Suggested(); !ok {
			app.clientError(w, r, http.StatusNotFound, "no plan")
			return
		}
	}

	var rendered bytes.Buffer
	if err := goldmark.Convert([]byte(p.Summary), &rendered); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, map[string]string{
		"summary_markdown": p.Summary,
		"summary_html":     rendered.String(),
	})
}
