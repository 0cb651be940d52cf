package plan

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/mkallio/fitplan/internal/errors"
)

var (
	// ErrLastExercise is returned when an edit would leave a day without any
	// exercises.
	ErrLastExercise = errors.NewSentinel("cannot remove the last exercise of a day")

	ErrDayNotFound      = errors.NewSentinel("day not found in plan")
	ErrExerciseNotFound = errors.NewSentinel("exercise not found in day")
)

// WithModifiedDay returns a copy of the plan with the day matching day.ID
// replaced. The replacement must keep at least one exercise.
func (p WorkoutPlan) WithModifiedDay(day Day) (WorkoutPlan, error) {
	if len(day.Exercises) == 0 {
		return p, errors.Wrap(ErrLastExercise, "modify day", slog.String("day_id", day.ID.String()))
	}
	updated := p.clone()
	for i, d := range updated.Days {
		if d.ID == day.ID {
			updated.Days[i] = day
			return updated, nil
		}
	}
	return p, errors.Wrap(ErrDayNotFound, "modify day", slog.String("day_id", day.ID.String()))
}

// WithExerciseAdded returns a copy of the plan with the exercise appended to
// the day's exercise list.
func (p WorkoutPlan) WithExerciseAdded(dayID uuid.UUID, ex Exercise) (WorkoutPlan, error) {
	updated := p.clone()
	for i, d := range updated.Days {
		if d.ID == dayID {
			updated.Days[i].Exercises = append(updated.Days[i].Exercises, ex)
			return updated, nil
		}
	}
	return p, errors.Wrap(ErrDayNotFound, "add exercise", slog.String("day_id", dayID.String()))
}

// WithExerciseRemoved returns a copy of the plan with the exercise removed.
// Removing the only exercise of a day is rejected with ErrLastExercise and the
// original plan is returned unchanged.
func (p WorkoutPlan) WithExerciseRemoved(dayID, exerciseID uuid.UUID) (WorkoutPlan, error) {
	updated := p.clone()
	for i, d := range updated.Days {
		if d.ID != dayID {
			continue
		}
		for j, ex := range d.Exercises {
			if ex.ID != exerciseID {
				continue
			}
			if len(d.Exercises) == 1 {
				return p, errors.Wrap(ErrLastExercise, "remove exercise",
					slog.String("day_id", dayID.String()),
					slog.String("exercise_id", exerciseID.String()))
			}
			updated.Days[i].Exercises = append(d.Exercises[:j], d.Exercises[j+1:]...)
			return updated, nil
		}
		return p, errors.Wrap(ErrExerciseNotFound, "remove exercise",
			slog.String("exercise_id", exerciseID.String()))
	}
	return p, errors.Wrap(ErrDayNotFound, "remove exercise", slog.String("day_id", dayID.String()))
}

// WithExerciseUpdated returns a copy of the plan with the exercise matching
// ex.ID replaced within the given day.
func (p WorkoutPlan) WithExerciseUpdated(dayID uuid.UUID, ex Exercise) (WorkoutPlan, error) {
	updated := p.clone()
	for i, d := range updated.Days {
		if d.ID != dayID {
			continue
		}
		for j, existing := range d.Exercises {
			if existing.ID == ex.ID {
				updated.Days[i].Exercises[j] = ex
				return updated, nil
			}
		}
		return p, errors.Wrap(ErrExerciseNotFound, "update exercise",
			slog.String("exercise_id", ex.ID.String()))
	}
	return p, errors.Wrap(ErrDayNotFound, "update exercise", slog.String("day_id", dayID.String()))
}
