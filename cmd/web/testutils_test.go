package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mkallio/fitplan/internal/genai"
	"github.com/mkallio/fitplan/internal/goals"
	"github.com/mkallio/fitplan/internal/history"
	"github.com/mkallio/fitplan/internal/plan"
	"github.com/mkallio/fitplan/internal/sqlite"
	"github.com/mkallio/fitplan/internal/testhelpers"
)

// fakeGenerator returns a canned plan or error without calling any API.
type fakeGenerator struct {
	err   error
	delay time.Duration
}

func (g *fakeGenerator) GenerateWorkoutPlan(ctx context.Context, input goals.Data) (plan.WorkoutPlan, error) {
	if g.delay > 0 {
		select {
		case <-ctx.Done():
			return plan.WorkoutPlan{}, ctx.Err()
		case <-time.After(g.delay):
		}
	}
	if g.err != nil {
		return plan.WorkoutPlan{}, g.err
	}
	return buildTestPlan(input.EffectiveStartDate(time.Now())), nil
}

func buildTestPlan(start time.Time) plan.WorkoutPlan {
	days := make([]plan.Day, plan.PlanLength)
	for i := range days {
		days[i] = plan.Day{
			ID:     uuid.New(),
			Number: i + 1,
			Date:   start.AddDate(0, 0, i),
			Focus:  "full body",
			Exercises: []plan.Exercise{
				{ID: uuid.New(), Name: "Push-ups", Sets: 3,
					Quantity: plan.Quantity{Amount: 12, Unit: plan.UnitReps}, Completed: false},
				{ID: uuid.New(), Name: "Plank", Sets: 3,
					Quantity: plan.Quantity{Amount: 45, Unit: plan.UnitSeconds}, Completed: false},
			},
		}
	}
	return plan.WorkoutPlan{
		ID:        uuid.New(),
		Goals:     "Get stronger",
		Summary:   "**Two** motivating sentences.",
		Days:      days,
		Status:    plan.StatusSuggested,
		CreatedAt: start,
		StartDate: start,
	}
}

type testServer struct {
	*httptest.Server
	app    *application
	client *http.Client
}

func newTestServer(t *testing.T, generator genai.Generator) *testServer {
	t.Helper()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	ctx := t.Context()

	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	historyManager := history.NewManager(history.NewRepository(db, logger), logger)
	require.NoError(t, historyManager.Load(ctx))

	planEngine := plan.NewEngine(plan.NewRepository(db, logger), historyManager, logger)
	require.NoError(t, planEngine.Load(ctx))

	sessionManager := scs.New()
	sessionManager.Lifetime = time.Hour
	// The test server speaks plain HTTP, so the cookie cannot be Secure.
	sessionManager.Cookie.Secure = false

	app := &application{
		logger:         logger,
		sessionManager: sessionManager,
		planEngine:     planEngine,
		historyManager: historyManager,
		generator:      generator,
	}

	server := httptest.NewServer(app.routes())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := server.Client()
	client.Jar = jar

	return &testServer{Server: server, app: app, client: client}
}

// do sends a JSON request and decodes the JSON response into out when out is
// non-nil.
func (ts *testServer) do(t *testing.T, method, path string, body, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(t.Context(), method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// Mark the request as same-origin for the cross-origin protection.
	req.Header.Set("Sec-Fetch-Site", "same-origin")

	resp, err := ts.client.Do(req)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func sufficientGoals() map[string]any {
	return map[string]any{
		"free_text": "Get stronger",
		"selections": map[string]string{
			"fitness_level": "beginner",
			"equipment":     "none",
			"schedule":      "30 minutes a day",
		},
	}
}

// generateSuggestedPlan drives the goals+generate flow and returns the
// suggested plan.
func (ts *testServer) generateSuggestedPlan(t *testing.T) plan.WorkoutPlan {
	t.Helper()
	status := ts.do(t, http.MethodPut, "/api/goals", sufficientGoals(), nil)
	require.Equal(t, http.StatusOK, status)

	var suggested plan.WorkoutPlan
	status = ts.do(t, http.MethodPost, "/api/plan/generate", nil, &suggested)
	require.Equal(t, http.StatusCreated, status)
	return suggested
}
