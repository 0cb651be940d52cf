// Package goals collects and validates the user's goal input before it is
// handed to plan generation.
package goals

import (
	"strings"
	"time"
)

// Category names a chip group in the goal input form. The set of categories is
// closed; free-form categories are expressed through the free text instead.
type Category string

const (
	CategoryFitnessLevel Category = "fitness_level"
	CategoryEquipment    Category = "equipment"
	CategorySchedule     Category = "schedule"
	CategoryFocusArea    Category = "focus_area"
	CategoryStartDate    Category = "start_date"
)

// criticalCategories must all carry a selection before generation may start.
var criticalCategories = []Category{
	CategoryFitnessLevel,
	CategoryEquipment,
	CategorySchedule,
}

// Options returns the selectable chips for a category. Unknown categories have
// no options.
func Options(category Category) []string {
	switch category {
	case CategoryFitnessLevel:
		return []string{"beginner", "intermediate", "advanced"}
	case CategoryEquipment:
		return []string{"none", "basic home gym", "full gym"}
	case CategorySchedule:
		return []string{"15 minutes a day", "30 minutes a day", "45+ minutes a day"}
	case CategoryFocusArea:
		return []string{"full body", "upper body", "lower body", "core", "cardio", "flexibility"}
	case CategoryStartDate:
		return nil
	}
	return nil
}

// IsValidOption reports whether value is a selectable chip for the category.
func IsValidOption(category Category, value string) bool {
	for _, option := range Options(category) {
		if option == value {
			return true
		}
	}
	return false
}

// Data is the transient goal input. It lives in the session until the user
// accepts or rejects a generated plan.
type Data struct {
	FreeText   string              `json:"free_text"`
	Selections map[Category]string `json:"selections"`
	StartDate  *time.Time          `json:"start_date,omitempty"`
}

// Selection returns the chip selected in a category, if any.
func (d Data) Selection(category Category) (string, bool) {
	value, ok := d.Selections[category]
	return value, ok && value != ""
}

// Completeness weights. The three critical categories dominate the score; the
// free text and the optional chips refine it.
const (
	freeTextWeight  = 0.25
	criticalWeight  = 0.2
	focusAreaWeight = 0.1
	startDateWeight = 0.05
)

// CompletenessScore returns a weighted 0..1 score of how much goal input has
// been provided.
func (d Data) CompletenessScore() float64 {
	score := 0.0
	if strings.TrimSpace(d.FreeText) != "" {
		score += freeTextWeight
	}
	for _, category := range criticalCategories {
		if _, ok := d.Selection(category); ok {
			score += criticalWeight
		}
	}
	if _, ok := d.Selection(CategoryFocusArea); ok {
		score += focusAreaWeight
	}
	if d.StartDate != nil {
		score += startDateWeight
	}
	return score
}

// IsSufficientForAI reports whether generation may start. Every critical
// category needs a selection; free text alone never suffices.
func (d Data) IsSufficientForAI() bool {
	for _, category := range criticalCategories {
		if _, ok := d.Selection(category); !ok {
			return false
		}
	}
	return true
}

// ValidationIssues lists the human-readable gaps in the input, critical
// categories first, in a stable order.
func (d Data) ValidationIssues() []string {
	var issues []string
	labels := map[Category]string{
		CategoryFitnessLevel: "Select your fitness level.",
		CategoryEquipment:    "Select your available equipment.",
		CategorySchedule:     "Select how much time you can spend.",
	}
	for _, category := range criticalCategories {
		if _, ok := d.Selection(category); !ok {
			issues = append(issues, labels[category])
		}
	}
	if strings.TrimSpace(d.FreeText) == "" {
		issues = append(issues, "Describe your goals in your own words for a better plan.")
	}
	return issues
}

// EffectiveStartDate returns the explicit start date when one was chosen and
// today otherwise. Dates mentioned in the free text are left for the AI to
// interpret.
func (d Data) EffectiveStartDate(today time.Time) time.Time {
	if d.StartDate != nil {
		return *d.StartDate
	}
	return today
}
