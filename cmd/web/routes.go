package main

import (
	"net/http"
	"time"
)

// generationTimeout bounds the synchronous plan generation request. The model
// regularly takes tens of seconds for a full 14-day plan.
const generationTimeout = 60 * time.Second

func (app *application) routes() *http.ServeMux {
	mux := http.NewServeMux()

	var (
		base = func(next http.Handler) http.Handler {
			return app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(next)))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				base(app.timeout(defaultTimeout-200*time.Millisecond, next)))))
		}
		// Generation calls an external service and needs a far longer deadline.
		generation = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				base(app.timeout(generationTimeout, next)))))
		}
	)

	mux.Handle("GET /api/goals", session(http.HandlerFunc(app.goalsGET)))
	mux.Handle("PUT /api/goals", session(http.HandlerFunc(app.goalsPUT)))

	mux.Handle("POST /api/plan/generate", generation(http.HandlerFunc(app.generatePOST)))

	mux.Handle("GET /api/plan", session(http.HandlerFunc(app.planGET)))
	mux.Handle("GET /api/plan/summary", session(http.HandlerFunc(app.planSummaryGET)))
	mux.Handle("POST /api/plan/complete", session(http.HandlerFunc(app.planCompletePOST)))
	mux.Handle("POST /api/plan/start-over", session(http.HandlerFunc(app.startOverPOST)))
	mux.Handle("POST /api/plan/days/{dayID}/exercises/{exerciseID}/toggle",
		session(http.HandlerFunc(app.exerciseTogglePOST)))

	mux.Handle("GET /api/plan/suggested", session(http.HandlerFunc(app.suggestedGET)))
	mux.Handle("POST /api/plan/suggested/accept", session(http.HandlerFunc(app.acceptPOST)))
	mux.Handle("POST /api/plan/suggested/reject", session(http.HandlerFunc(app.rejectPOST)))
	mux.Handle("PUT /api/plan/suggested/days/{dayID}", session(http.HandlerFunc(app.suggestedDayPUT)))
	mux.Handle("POST /api/plan/suggested/days/{dayID}/exercises",
		session(http.HandlerFunc(app.suggestedExercisePOST)))
	mux.Handle("PUT /api/plan/suggested/days/{dayID}/exercises/{exerciseID}",
		session(http.HandlerFunc(app.suggestedExercisePUT)))
	mux.Handle("DELETE /api/plan/suggested/days/{dayID}/exercises/{exerciseID}",
		session(http.HandlerFunc(app.suggestedExerciseDELETE)))
	mux.Handle("POST /api/plan/suggested/days/{dayID}/reset",
		session(http.HandlerFunc(app.suggestedDayResetPOST)))

	mux.Handle("GET /api/history", session(http.HandlerFunc(app.historyGET)))
	mux.Handle("DELETE /api/history/{challengeID}", session(http.HandlerFunc(app.historyDELETE)))
	mux.Handle("GET /api/stats", session(http.HandlerFunc(app.statsGET)))
	mux.Handle("GET /api/badges", session(http.HandlerFunc(app.badgesGET)))

	mux.Handle("GET /api/healthy", session(http.HandlerFunc(app.healthy)))

	return mux
}
