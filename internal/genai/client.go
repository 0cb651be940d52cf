// Package genai turns goal input into generated workout plans through the
// OpenAI API.
package genai

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/mkallio/fitplan/internal/errors"
	"github.com/mkallio/fitplan/internal/goals"
	"github.com/mkallio/fitplan/internal/plan"
)

// Kind classifies a generation failure so the caller can phrase the error for
// the user.
type Kind string

const (
	KindNetwork   Kind = "network"
	KindQuota     Kind = "quota"
	KindMalformed Kind = "malformed"
	KindUnknown   Kind = "unknown"
)

// ServiceError is a classified generation failure.
type ServiceError struct {
	Kind Kind
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.err.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func serviceError(kind Kind, err error) *ServiceError {
	return &ServiceError{Kind: kind, err: err}
}

// errInvalidPlan marks structurally invalid model output. Always surfaced to
// callers wrapped in a malformed ServiceError.
var errInvalidPlan = errors.NewSentinel("generated plan is invalid")

// Generator produces a suggested plan from goal input.
type Generator interface {
	GenerateWorkoutPlan(ctx context.Context, input goals.Data) (plan.WorkoutPlan, error)
}

// OpenAIGenerator implements Generator against the OpenAI chat completions API
// with a strict JSON schema response format. It never retries; a retry is the
// user asking again.
type OpenAIGenerator struct {
	client openai.Client
	logger *slog.Logger
	now    func() time.Time
}

var _ Generator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator creates a plan generator.
func NewOpenAIGenerator(apiKey string, logger *slog.Logger) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		logger: logger,
		now:    time.Now,
	}
}

// GenerateWorkoutPlan builds the prompt, queries the model, and converts the
// response into a validated suggested plan starting at the effective start
// date of the goal input.
func (g *OpenAIGenerator) GenerateWorkoutPlan(ctx context.Context, input goals.Data) (plan.WorkoutPlan, error) {
	prompt := BuildPrompt(input)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{ //nolint:exhaustruct
		Name:        "workout_plan",
		Description: openai.String("A structured 14-day workout plan"),
		Schema: planJSONSchema{units: []string{
			string(plan.UnitReps), string(plan.UnitSeconds), string(plan.UnitMinutes),
		}},
		Strict: openai.Bool(true),
	}

	g.logger.LogAttrs(ctx, slog.LevelDebug, "requesting plan generation",
		slog.Int("prompt_length", len(prompt)))

	chat, err := g.client.Chat.Completions.New(ctx,
		openai.ChatCompletionNewParams{ //nolint:exhaustruct // only need to set a few fields.
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{ //nolint:exhaustruct
				OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{ //nolint:exhaustruct
					JSONSchema: schemaParam,
				},
			},
			Model: openai.ChatModelGPT4o2024_08_06,
		})
	if err != nil {
		return plan.WorkoutPlan{}, classify(err) //nolint:exhaustruct // zero value on error.
	}
	if len(chat.Choices) == 0 {
		return plan.WorkoutPlan{}, serviceError(KindMalformed, //nolint:exhaustruct
			errors.Wrap(errInvalidPlan, "response contains no choices"))
	}

	var generated generatedPlan
	if err = json.Unmarshal([]byte(chat.Choices[0].Message.Content), &generated); err != nil {
		return plan.WorkoutPlan{}, serviceError(KindMalformed, //nolint:exhaustruct
			errors.Wrap(err, "decode generated plan"))
	}

	now := g.now()
	p, err := assemblePlan(generated, input, input.EffectiveStartDate(now), now)
	if err != nil {
		return plan.WorkoutPlan{}, serviceError(KindMalformed, err) //nolint:exhaustruct
	}

	g.logger.LogAttrs(ctx, slog.LevelInfo, "generated plan",
		slog.String("plan_id", p.ID.String()),
		slog.Int("total_tokens", int(chat.Usage.TotalTokens)))
	return p, nil
}

// classify maps transport and API failures onto the error taxonomy.
func classify(err error) *ServiceError {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusPaymentRequired:
			return serviceError(KindQuota, err)
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return serviceError(KindMalformed, err)
		default:
			return serviceError(KindUnknown, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return serviceError(KindNetwork, err)
	}
	// Transport failures surface as plain errors without an API status.
	return serviceError(KindNetwork, err)
}

// assemblePlan validates the wire plan and stamps it with identities and
// dates. Day order follows the day numbers, which must cover 1..14 exactly.
func assemblePlan(generated generatedPlan, input goals.Data, start, createdAt time.Time) (plan.WorkoutPlan, error) {
	if len(generated.Days) != plan.PlanLength {
		return plan.WorkoutPlan{}, errors.Wrap(errInvalidPlan, "does not have 14 days", //nolint:exhaustruct
			slog.Int("days", len(generated.Days)))
	}

	days := make([]plan.Day, plan.PlanLength)
	seen := make(map[int]bool, plan.PlanLength)
	for _, d := range generated.Days {
		if d.Number < 1 || d.Number > plan.PlanLength || seen[d.Number] {
			return plan.WorkoutPlan{}, errors.Wrap(errInvalidPlan, "invalid day numbering", //nolint:exhaustruct
				slog.Int("number", d.Number))
		}
		seen[d.Number] = true

		if len(d.Exercises) == 0 {
			return plan.WorkoutPlan{}, errors.Wrap(errInvalidPlan, "day has no exercises", //nolint:exhaustruct
				slog.Int("number", d.Number))
		}
		exercises := make([]plan.Exercise, len(d.Exercises))
		for j, ex := range d.Exercises {
			unit, err := parseUnit(ex.Unit)
			if err != nil {
				return plan.WorkoutPlan{}, err //nolint:exhaustruct
			}
			if ex.Name == "" || ex.Sets < 1 || ex.Amount < 1 {
				return plan.WorkoutPlan{}, errors.Wrap(errInvalidPlan, "exercise is missing required fields", //nolint:exhaustruct
					slog.Int("day", d.Number), slog.String("name", ex.Name))
			}
			exercises[j] = plan.Exercise{
				ID:        uuid.New(),
				Name:      ex.Name,
				Sets:      ex.Sets,
				Quantity:  plan.Quantity{Amount: ex.Amount, Unit: unit},
				Completed: false,
			}
		}

		days[d.Number-1] = plan.Day{
			ID:        uuid.New(),
			Number:    d.Number,
			Date:      start.AddDate(0, 0, d.Number-1),
			Focus:     d.Focus,
			Exercises: exercises,
		}
	}

	return plan.WorkoutPlan{
		ID:        uuid.New(),
		Goals:     goalsDescription(input),
		Summary:   generated.Summary,
		Days:      days,
		Status:    plan.StatusSuggested,
		CreatedAt: createdAt,
		StartDate: start,
	}, nil
}

func parseUnit(unit string) (plan.Unit, error) {
	switch plan.Unit(unit) {
	case plan.UnitReps, plan.UnitSeconds, plan.UnitMinutes:
		return plan.Unit(unit), nil
	}
	return "", errors.Wrap(errInvalidPlan, "unknown unit", slog.String("unit", unit))
}
