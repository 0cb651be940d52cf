// Package plan contains the workout plan domain model and the lifecycle
// engine that owns the active, suggested, and original plan slots.
package plan

import (
	"time"

	"github.com/google/uuid"
)

// PlanLength is the fixed number of days in a generated plan.
const PlanLength = 14

// Unit is the measurement unit for an exercise quantity.
type Unit string

const (
	UnitReps    Unit = "reps"
	UnitSeconds Unit = "seconds"
	UnitMinutes Unit = "minutes"
)

// Quantity is the prescribed amount per set, e.g. 12 reps or 30 seconds.
type Quantity struct {
	Amount int  `json:"amount"`
	Unit   Unit `json:"unit"`
}

// Exercise is a single exercise within a day. Values are never mutated in
// place; changes go through the With* functions on WorkoutPlan.
type Exercise struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Sets      int       `json:"sets"`
	Quantity  Quantity  `json:"quantity"`
	Completed bool      `json:"completed"`
}

// Day is one calendar day of a plan with an ordered list of exercises.
type Day struct {
	ID        uuid.UUID  `json:"id"`
	Number    int        `json:"number"`
	Date      time.Time  `json:"date"`
	Focus     string     `json:"focus,omitempty"`
	Exercises []Exercise `json:"exercises"`
}

// IsCompleted reports whether every exercise of the day is completed.
// A day without exercises is never considered completed.
func (d Day) IsCompleted() bool {
	if len(d.Exercises) == 0 {
		return false
	}
	for _, ex := range d.Exercises {
		if !ex.Completed {
			return false
		}
	}
	return true
}

// IsPastDue reports whether the day's date is strictly before today,
// irrespective of completion.
func (d Day) IsPastDue(today time.Time) bool {
	return dateBefore(d.Date, today)
}

// IsMissed reports whether the day is past due and still incomplete.
func (d Day) IsMissed(today time.Time) bool {
	return d.IsPastDue(today) && !d.IsCompleted()
}

// CompletedExercises counts the completed exercises of the day.
func (d Day) CompletedExercises() int {
	count := 0
	for _, ex := range d.Exercises {
		if ex.Completed {
			count++
		}
	}
	return count
}

// Status tags the stored lifecycle state of a plan. Completed and finished are
// derived from the per-exercise flags and the start date, never stored.
type Status string

const (
	StatusSuggested Status = "suggested"
	StatusActive    Status = "active"
)

// WorkoutPlan is a 14-day workout plan.
type WorkoutPlan struct {
	ID        uuid.UUID `json:"id"`
	Goals     string    `json:"goals"`
	Summary   string    `json:"summary,omitempty"`
	Days      []Day     `json:"days"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	StartDate time.Time `json:"start_date"`
}

// TotalDays returns the number of days in the plan.
func (p WorkoutPlan) TotalDays() int {
	return len(p.Days)
}

// CompletedDays counts the fully completed days.
func (p WorkoutPlan) CompletedDays() int {
	count := 0
	for _, d := range p.Days {
		if d.IsCompleted() {
			count++
		}
	}
	return count
}

// ProgressPercentage is the share of fully completed days, 0-100.
func (p WorkoutPlan) ProgressPercentage() float64 {
	total := p.TotalDays()
	if total == 0 {
		return 0
	}
	return 100 * float64(p.CompletedDays()) / float64(total)
}

// ExerciseCompletionPercentage is the share of completed exercises across all
// days, 0-100.
func (p WorkoutPlan) ExerciseCompletionPercentage() float64 {
	total := 0
	completed := 0
	for _, d := range p.Days {
		total += len(d.Exercises)
		completed += d.CompletedExercises()
	}
	if total == 0 {
		return 0
	}
	return 100 * float64(completed) / float64(total)
}

// IsCompleted reports whether every day of the plan is fully completed.
func (p WorkoutPlan) IsCompleted() bool {
	return p.TotalDays() > 0 && p.CompletedDays() == p.TotalDays()
}

// EndDate returns the date of the last day of the plan's window.
func (p WorkoutPlan) EndDate() time.Time {
	return p.StartDate.AddDate(0, 0, PlanLength-1)
}

// IsFinished reports whether the plan's fixed window has elapsed, independent
// of completion percentage.
func (p WorkoutPlan) IsFinished(today time.Time) bool {
	return dateBefore(p.EndDate(), today)
}

// IsAvailableForCatchUp reports whether a missed day can still be completed:
// the day is missed and the plan's window has not yet elapsed.
func (p WorkoutPlan) IsAvailableForCatchUp(d Day, today time.Time) bool {
	return d.IsMissed(today) && !p.IsFinished(today)
}

// IsValid performs a structural sanity check: non-empty days with consistent
// ids and at least one exercise each.
func (p WorkoutPlan) IsValid() bool {
	if p.ID == uuid.Nil || len(p.Days) == 0 {
		return false
	}
	seenDays := make(map[uuid.UUID]bool, len(p.Days))
	for _, d := range p.Days {
		if d.ID == uuid.Nil || seenDays[d.ID] || len(d.Exercises) == 0 {
			return false
		}
		seenDays[d.ID] = true
		seenExercises := make(map[uuid.UUID]bool, len(d.Exercises))
		for _, ex := range d.Exercises {
			if ex.ID == uuid.Nil || seenExercises[ex.ID] {
				return false
			}
			seenExercises[ex.ID] = true
		}
	}
	return true
}

// DayByID returns the day with the given id.
func (p WorkoutPlan) DayByID(id uuid.UUID) (Day, bool) {
	for _, d := range p.Days {
		if d.ID == id {
			return d, true
		}
	}
	return Day{}, false //nolint:exhaustruct // zero value for the not-found case.
}

// clone returns a deep copy so that edits never alias the receiver's slices.
func (p WorkoutPlan) clone() WorkoutPlan {
	days := make([]Day, len(p.Days))
	for i, d := range p.Days {
		exercises := make([]Exercise, len(d.Exercises))
		copy(exercises, d.Exercises)
		d.Exercises = exercises
		days[i] = d
	}
	p.Days = days
	return p
}

// dateBefore reports whether a falls on an earlier calendar date than b,
// ignoring the time of day.
func dateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

// sameDate reports whether a and b fall on the same calendar date.
func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
