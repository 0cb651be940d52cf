package plan

import "time"

// HealthStatus classifies how well the user keeps up with the active plan.
type HealthStatus string

const (
	HealthExcellent            HealthStatus = "excellent"
	HealthOnTrack              HealthStatus = "on_track"
	HealthSlightlyBehind       HealthStatus = "slightly_behind"
	HealthBehindButRecoverable HealthStatus = "behind_but_recoverable"
	HealthStruggling           HealthStatus = "struggling"
	HealthNeedsSupport         HealthStatus = "needs_support"
)

// Fixed health thresholds against the missed-day count.
const (
	behindThreshold     = 3
	strugglingThreshold = 5
	supportThreshold    = 7
)

// MissedDayCount counts the days that are past due and still incomplete.
func (p WorkoutPlan) MissedDayCount(today time.Time) int {
	count := 0
	for _, d := range p.Days {
		if d.IsMissed(today) {
			count++
		}
	}
	return count
}

// CatchUpDays returns the missed days that can still be completed within the
// plan's window, in day order.
func (p WorkoutPlan) CatchUpDays(today time.Time) []Day {
	var days []Day
	for _, d := range p.Days {
		if p.IsAvailableForCatchUp(d, today) {
			days = append(days, d)
		}
	}
	return days
}

// CurrentStreak returns the length of the run of consecutive fully completed
// days ending at the most recent completed day.
func (p WorkoutPlan) CurrentStreak() int {
	run := 0
	streak := 0
	for _, d := range p.Days {
		if d.IsCompleted() {
			run++
			streak = run
		} else {
			run = 0
		}
	}
	return streak
}

// Health classifies the plan into one of six tiers using fixed thresholds on
// the missed-day count and its fraction of the total days.
func (p WorkoutPlan) Health(today time.Time) HealthStatus {
	missed := p.MissedDayCount(today)
	total := p.TotalDays()

	if missed == 0 {
		// Ahead of schedule when today's workout is already done.
		for _, d := range p.Days {
			if sameDate(d.Date, today) {
				if d.IsCompleted() {
					return HealthExcellent
				}
				return HealthOnTrack
			}
		}
		return HealthExcellent
	}

	switch {
	case missed > supportThreshold || 2*missed > total:
		return HealthNeedsSupport
	case missed >= strugglingThreshold:
		return HealthStruggling
	case missed >= behindThreshold:
		return HealthBehindButRecoverable
	default:
		return HealthSlightlyBehind
	}
}

// SuggestRestart reports whether the user should be offered a restart. It is
// a suggestion only, never enforced.
func (p WorkoutPlan) SuggestRestart(today time.Time) bool {
	missed := p.MissedDayCount(today)
	return missed > supportThreshold || 2*missed > p.TotalDays()
}
