// Package history stores finished workout challenges and the statistics,
// streaks, and badges derived from them.
package history

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkallio/fitplan/internal/plan"
)

// ExerciseRecord is an immutable snapshot of one exercise of an archived plan.
type ExerciseRecord struct {
	Name      string        `json:"name"`
	Sets      int           `json:"sets"`
	Quantity  plan.Quantity `json:"quantity"`
	Completed bool          `json:"completed"`
}

// DayRecord is an immutable snapshot of one day of an archived plan.
type DayRecord struct {
	Number    int              `json:"number"`
	Date      time.Time        `json:"date"`
	Focus     string           `json:"focus,omitempty"`
	Exercises []ExerciseRecord `json:"exercises"`
}

// IsCompleted reports whether every exercise of the day was completed. A day
// without exercises never counts as completed.
func (d DayRecord) IsCompleted() bool {
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

// CompletedChallenge is the permanent record of a finished plan. It is a
// detached snapshot: later edits to plans never change it.
type CompletedChallenge struct {
	ID          uuid.UUID   `json:"id"`
	PlanID      uuid.UUID   `json:"plan_id"`
	Title       string      `json:"title"`
	Goals       string      `json:"goals"`
	Summary     string      `json:"summary,omitempty"`
	Days        []DayRecord `json:"days"`
	StartDate   time.Time   `json:"start_date"`
	CompletedAt time.Time   `json:"completed_at"`
}

// NewCompletedChallenge snapshots a plan into an archival record. The record
// copies every day and exercise so the source plan can be mutated or discarded
// afterwards.
func NewCompletedChallenge(p plan.WorkoutPlan, completedAt time.Time) CompletedChallenge {
	days := make([]DayRecord, len(p.Days))
	for i, d := range p.Days {
		exercises := make([]ExerciseRecord, len(d.Exercises))
		for j, ex := range d.Exercises {
			exercises[j] = ExerciseRecord{
				Name:      ex.Name,
				Sets:      ex.Sets,
				Quantity:  ex.Quantity,
				Completed: ex.Completed,
			}
		}
		days[i] = DayRecord{
			Number:    d.Number,
			Date:      d.Date,
			Focus:     d.Focus,
			Exercises: exercises,
		}
	}
	return CompletedChallenge{
		ID:          uuid.New(),
		PlanID:      p.ID,
		Title:       challengeTitle(p),
		Goals:       p.Goals,
		Summary:     p.Summary,
		Days:        days,
		StartDate:   p.StartDate,
		CompletedAt: completedAt,
	}
}

// challengeTitle derives a display title from the first line of the goals.
func challengeTitle(p plan.WorkoutPlan) string {
	line, _, _ := strings.Cut(strings.TrimSpace(p.Goals), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return "14-Day Challenge"
	}
	return line
}

// TotalDays returns the number of days in the archived plan.
func (c CompletedChallenge) TotalDays() int {
	return len(c.Days)
}

// CompletedDays returns the number of fully completed days.
func (c CompletedChallenge) CompletedDays() int {
	count := 0
	for _, d := range c.Days {
		if d.IsCompleted() {
			count++
		}
	}
	return count
}

// SuccessRate returns the share of fully completed days in percent.
func (c CompletedChallenge) SuccessRate() float64 {
	if len(c.Days) == 0 {
		return 0
	}
	return float64(c.CompletedDays()) / float64(len(c.Days)) * 100
}

// IsFullyCompleted reports whether every day of the challenge was completed.
func (c CompletedChallenge) IsFullyCompleted() bool {
	return len(c.Days) > 0 && c.CompletedDays() == len(c.Days)
}

// PerfectDays is an alias for CompletedDays kept for the statistics surface,
// where a "perfect day" means every exercise of the day done.
func (c CompletedChallenge) PerfectDays() int {
	return c.CompletedDays()
}

// LongestStreak returns the longest run of consecutive completed days within
// the challenge, by day number.
func (c CompletedChallenge) LongestStreak() int {
	longest, run := 0, 0
	for _, d := range c.Days {
		if d.IsCompleted() {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}
