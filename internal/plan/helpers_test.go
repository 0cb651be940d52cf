package plan_test

import (
	"time"

	"github.com/google/uuid"

	"github.com/mkallio/fitplan/internal/plan"
)

// newTestPlan builds a structurally valid 14-day plan starting at start with
// two exercises per day.
func newTestPlan(start time.Time) plan.WorkoutPlan {
	days := make([]plan.Day, plan.PlanLength)
	for i := range days {
		days[i] = plan.Day{
			ID:     uuid.New(),
			Number: i + 1,
			Date:   start.AddDate(0, 0, i),
			Focus:  "full body",
			Exercises: []plan.Exercise{
				{
					ID:       uuid.New(),
					Name:     "Push-ups",
					Sets:     3,
					Quantity: plan.Quantity{Amount: 12, Unit: plan.UnitReps},
				},
				{
					ID:       uuid.New(),
					Name:     "Plank",
					Sets:     3,
					Quantity: plan.Quantity{Amount: 45, Unit: plan.UnitSeconds},
				},
			},
		}
	}
	return plan.WorkoutPlan{
		ID:        uuid.New(),
		Goals:     "Build core strength and general fitness",
		Summary:   "A balanced two-week plan.",
		Days:      days,
		Status:    plan.StatusSuggested,
		CreatedAt: start,
		StartDate: start,
	}
}

// completeDay marks every exercise of the day at index i as completed.
func completeDay(p *plan.WorkoutPlan, i int) {
	for j := range p.Days[i].Exercises {
		p.Days[i].Exercises[j].Completed = true
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
