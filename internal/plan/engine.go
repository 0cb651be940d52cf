package plan

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkallio/fitplan/internal/errors"
)

// Slot names one of the three plan storage slots.
type Slot string

const (
	SlotActive    Slot = "active"
	SlotSuggested Slot = "suggested"
	SlotOriginal  Slot = "original"
)

var (
	// ErrNotFound is returned by a Store when a slot holds no plan.
	ErrNotFound = errors.NewSentinel("plan not found")
	// ErrCorrupt is returned by a Store when a stored plan cannot be decoded.
	ErrCorrupt = errors.NewSentinel("stored plan is corrupt")
	// ErrCorruptData signals that stored state was corrupt and the engine has
	// been reset to the empty state.
	ErrCorruptData = errors.NewSentinel("stored plan data was corrupt, state has been reset")

	ErrNoSuggestedPlan    = errors.NewSentinel("no suggested plan")
	ErrNoActivePlan       = errors.NewSentinel("no active plan")
	ErrActivePlanExists   = errors.NewSentinel("an active plan already exists")
	ErrOriginalMissing    = errors.NewSentinel("original plan missing")
	ErrGenerationInFlight = errors.NewSentinel("a plan generation is already in progress")
	ErrStaleGeneration    = errors.NewSentinel("generation result arrived after the flow was abandoned")
)

// Store durably persists plans per slot.
//
// LoadWorkoutPlan returns ErrNotFound when the slot is empty and ErrCorrupt
// when the stored document cannot be decoded into a valid plan.
type Store interface {
	SaveWorkoutPlan(ctx context.Context, slot Slot, p WorkoutPlan) error
	LoadWorkoutPlan(ctx context.Context, slot Slot) (WorkoutPlan, error)
	ClearWorkoutPlan(ctx context.Context, slot Slot) error
}

// Archiver converts a finished or completed plan into a permanent record.
// Archive requires full completion; ForceArchive does not.
type Archiver interface {
	Archive(ctx context.Context, p WorkoutPlan) error
	ForceArchive(ctx context.Context, p WorkoutPlan) error
}

// Engine owns the single active, suggested, and original plan instances and
// every transition between them. All mutation goes through its methods so the
// single-writer invariant is enforceable.
type Engine struct {
	mu       sync.Mutex
	store    Store
	archiver Archiver
	logger   *slog.Logger
	now      func() time.Time

	active    *WorkoutPlan
	suggested *WorkoutPlan
	original  *WorkoutPlan

	// generationToken identifies the in-flight generation so that a result
	// arriving after the flow was abandoned is discarded.
	generationToken string

	// archived remembers plans already routed to the archiver so that the
	// finished-plan check never archives the same instance twice.
	archived map[uuid.UUID]bool
}

// NewEngine creates a plan lifecycle engine.
func NewEngine(store Store, archiver Archiver, logger *slog.Logger) *Engine {
	return &Engine{ //nolint:exhaustruct // plan slots start empty.
		store:    store,
		archiver: archiver,
		logger:   logger,
		now:      time.Now,
		archived: make(map[uuid.UUID]bool),
	}
}

// Load restores the plan slots from the store. Corrupt stored state resets the
// engine to the empty state and returns ErrCorruptData so that the caller can
// inform the user.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	slots := []struct {
		slot   Slot
		target **WorkoutPlan
	}{
		{SlotActive, &e.active},
		{SlotSuggested, &e.suggested},
		{SlotOriginal, &e.original},
	}
	for _, s := range slots {
		p, err := e.store.LoadWorkoutPlan(ctx, s.slot)
		switch {
		case err == nil:
			*s.target = &p
		case errors.Is(err, ErrNotFound):
			*s.target = nil
		case errors.Is(err, ErrCorrupt):
			e.logger.LogAttrs(ctx, slog.LevelError, "corrupt plan data, resetting state",
				slog.String("slot", string(s.slot)), errors.SlogError(err))
			e.resetLocked(ctx)
			return errors.Wrap(ErrCorruptData, "load plans")
		default:
			return errors.Wrap(err, "load plan slot", slog.String("slot", string(s.slot)))
		}
	}
	return nil
}

// Current returns a copy of the active plan.
func (e *Engine) Current() (WorkoutPlan, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return WorkoutPlan{}, false //nolint:exhaustruct // zero value for the empty slot.
	}
	return e.active.clone(), true
}

// Suggested returns a copy of the suggested plan.
func (e *Engine) Suggested() (WorkoutPlan, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.suggested == nil {
		return WorkoutPlan{}, false //nolint:exhaustruct // zero value for the empty slot.
	}
	return e.suggested.clone(), true
}

// BeginGeneration reserves the single generation slot and returns a token that
// must be presented with the result. A second generation while one is in
// flight is rejected with ErrGenerationInFlight.
func (e *Engine) BeginGeneration() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generationToken != "" {
		return "", ErrGenerationInFlight
	}
	e.generationToken = uuid.NewString()
	return e.generationToken, nil
}

// AbortGeneration releases the generation slot without a result.
func (e *Engine) AbortGeneration(token string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generationToken == token {
		e.generationToken = ""
	}
}

// CompleteGeneration installs a freshly generated plan into the suggested and
// original slots. A token that no longer matches means the user abandoned the
// flow; the late result is discarded with ErrStaleGeneration.
func (e *Engine) CompleteGeneration(ctx context.Context, token string, p WorkoutPlan) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if token == "" || token != e.generationToken {
		return ErrStaleGeneration
	}
	e.generationToken = ""

	p.Status = StatusSuggested
	suggested := p.clone()
	original := p.clone()
	e.suggested = &suggested
	e.original = &original

	if err := e.store.SaveWorkoutPlan(ctx, SlotSuggested, suggested); err != nil {
		return errors.Wrap(err, "persist suggested plan")
	}
	if err := e.store.SaveWorkoutPlan(ctx, SlotOriginal, original); err != nil {
		return errors.Wrap(err, "persist original plan")
	}
	return nil
}

// AcceptSuggested promotes the suggested plan to the active slot. At most one
// plan is active at a time; accepting while one is already running is rejected
// with ErrActivePlanExists so a stale suggested slot can never clobber it.
func (e *Engine) AcceptSuggested(ctx context.Context) (WorkoutPlan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.suggested == nil {
		return WorkoutPlan{}, ErrNoSuggestedPlan //nolint:exhaustruct // zero value on error.
	}
	if e.active != nil {
		return WorkoutPlan{}, ErrActivePlanExists //nolint:exhaustruct // zero value on error.
	}

	accepted := e.suggested.clone()
	accepted.Status = StatusActive
	if accepted.StartDate.IsZero() {
		accepted.StartDate = e.now()
	}

	e.active = &accepted
	e.suggested = nil
	e.original = nil

	if err := e.store.SaveWorkoutPlan(ctx, SlotActive, accepted); err != nil {
		return WorkoutPlan{}, errors.Wrap(err, "persist active plan") //nolint:exhaustruct
	}
	e.clearSlot(ctx, SlotSuggested)
	e.clearSlot(ctx, SlotOriginal)

	return accepted.clone(), nil
}

// RejectSuggested discards the suggested and original plans. The goal input is
// kept by the caller for regeneration. Always succeeds.
func (e *Engine) RejectSuggested(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.suggested = nil
	e.original = nil
	e.clearSlot(ctx, SlotSuggested)
	e.clearSlot(ctx, SlotOriginal)
}

// ToggleExerciseCompletion flips the completion flag of an exercise in the
// active plan and persists the whole plan. A missing active plan or unknown
// ids are reported in the log but otherwise ignored.
func (e *Engine) ToggleExerciseCompletion(ctx context.Context, dayID, exerciseID uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil {
		e.logger.LogAttrs(ctx, slog.LevelWarn, "toggle ignored, no active plan",
			slog.String("day_id", dayID.String()))
		return
	}

	for i, d := range e.active.Days {
		if d.ID != dayID {
			continue
		}
		for j, ex := range d.Exercises {
			if ex.ID != exerciseID {
				continue
			}
			e.active.Days[i].Exercises[j].Completed = !ex.Completed
			if err := e.store.SaveWorkoutPlan(ctx, SlotActive, *e.active); err != nil {
				e.logger.LogAttrs(ctx, slog.LevelError, "persist active plan after toggle",
					errors.SlogError(err))
			}
			return
		}
	}
	e.logger.LogAttrs(ctx, slog.LevelWarn, "toggle ignored, day or exercise not found",
		slog.String("day_id", dayID.String()),
		slog.String("exercise_id", exerciseID.String()))
}

// UpdateSuggestedDay replaces a day of the suggested plan.
func (e *Engine) UpdateSuggestedDay(ctx context.Context, day Day) error {
	return e.editSuggested(ctx, func(p WorkoutPlan) (WorkoutPlan, error) {
		return p.WithModifiedDay(day)
	})
}

// AddExerciseToSuggestedDay appends an exercise to a day of the suggested plan.
func (e *Engine) AddExerciseToSuggestedDay(ctx context.Context, dayID uuid.UUID, ex Exercise) error {
	return e.editSuggested(ctx, func(p WorkoutPlan) (WorkoutPlan, error) {
		return p.WithExerciseAdded(dayID, ex)
	})
}

// RemoveExerciseFromSuggestedDay removes an exercise from a day of the
// suggested plan. Removing the last exercise is rejected.
func (e *Engine) RemoveExerciseFromSuggestedDay(ctx context.Context, dayID, exerciseID uuid.UUID) error {
	return e.editSuggested(ctx, func(p WorkoutPlan) (WorkoutPlan, error) {
		return p.WithExerciseRemoved(dayID, exerciseID)
	})
}

// UpdateExerciseInSuggestedDay replaces an exercise within a day of the
// suggested plan.
func (e *Engine) UpdateExerciseInSuggestedDay(ctx context.Context, dayID uuid.UUID, ex Exercise) error {
	return e.editSuggested(ctx, func(p WorkoutPlan) (WorkoutPlan, error) {
		return p.WithExerciseUpdated(dayID, ex)
	})
}

func (e *Engine) editSuggested(ctx context.Context, edit func(WorkoutPlan) (WorkoutPlan, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.suggested == nil {
		return ErrNoSuggestedPlan
	}
	updated, err := edit(*e.suggested)
	if err != nil {
		return err
	}
	e.suggested = &updated
	if err = e.store.SaveWorkoutPlan(ctx, SlotSuggested, updated); err != nil {
		return errors.Wrap(err, "persist suggested plan")
	}
	return nil
}

// ResetDayToOriginal restores the exercise list of a suggested day from the
// retained AI original, preserving the suggested day's identity, date, and
// focus. It requires both the suggested and original plans and aligned day
// positions between them.
func (e *Engine) ResetDayToOriginal(ctx context.Context, dayID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.suggested == nil {
		return ErrNoSuggestedPlan
	}
	if e.original == nil {
		return ErrOriginalMissing
	}

	for i, d := range e.suggested.Days {
		if d.ID != dayID {
			continue
		}
		if i >= len(e.original.Days) {
			return errors.Wrap(ErrOriginalMissing, "day position out of range",
				slog.Int("position", i))
		}
		updated := e.suggested.clone()
		exercises := make([]Exercise, len(e.original.Days[i].Exercises))
		copy(exercises, e.original.Days[i].Exercises)
		updated.Days[i].Exercises = exercises
		e.suggested = &updated
		if err := e.store.SaveWorkoutPlan(ctx, SlotSuggested, updated); err != nil {
			return errors.Wrap(err, "persist suggested plan")
		}
		return nil
	}
	return errors.Wrap(ErrDayNotFound, "reset day to original", slog.String("day_id", dayID.String()))
}

// StartOver clears all plan slots and discards any in-flight generation.
// Always succeeds; persistence failures are logged.
func (e *Engine) StartOver(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked(ctx)
}

func (e *Engine) resetLocked(ctx context.Context) {
	e.active = nil
	e.suggested = nil
	e.original = nil
	e.generationToken = ""
	e.clearSlot(ctx, SlotActive)
	e.clearSlot(ctx, SlotSuggested)
	e.clearSlot(ctx, SlotOriginal)
}

func (e *Engine) clearSlot(ctx context.Context, slot Slot) {
	if err := e.store.ClearWorkoutPlan(ctx, slot); err != nil {
		e.logger.LogAttrs(ctx, slog.LevelError, "clear plan slot",
			slog.String("slot", string(slot)), errors.SlogError(err))
	}
}

// CheckForFinishedPlan archives the active plan once its window has elapsed,
// regardless of completion percentage. At most one archive happens per plan
// instance. Returns true when a plan was archived.
func (e *Engine) CheckForFinishedPlan(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil || !e.active.IsFinished(e.now()) {
		return false, nil
	}
	if e.archived[e.active.ID] {
		return false, nil
	}

	finished := e.active.clone()
	if err := e.archiver.ForceArchive(ctx, finished); err != nil {
		return false, errors.Wrap(err, "archive finished plan",
			slog.String("plan_id", finished.ID.String()))
	}
	e.archived[finished.ID] = true
	e.active = nil
	e.clearSlot(ctx, SlotActive)

	e.logger.LogAttrs(ctx, slog.LevelInfo, "archived finished plan",
		slog.String("plan_id", finished.ID.String()),
		slog.Int("completed_days", finished.CompletedDays()))
	return true, nil
}

// CompleteActivePlan archives the active plan on the user-confirmed path.
// The archiver rejects plans that are not fully completed.
func (e *Engine) CompleteActivePlan(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil {
		return ErrNoActivePlan
	}
	completed := e.active.clone()
	if err := e.archiver.Archive(ctx, completed); err != nil {
		return err
	}
	e.archived[completed.ID] = true
	e.active = nil
	e.clearSlot(ctx, SlotActive)
	return nil
}
