package genai

import (
	"fmt"
	"strings"

	"github.com/mkallio/fitplan/internal/goals"
)

// BuildPrompt renders the goal input into the generation prompt. Chip
// selections are listed explicitly; the free text is passed through verbatim
// so the model can interpret details like dates mentioned in prose.
func BuildPrompt(input goals.Data) string {
	var b strings.Builder

	b.WriteString(`Create a 14-day workout plan for the user described below.

Requirements:
- Exactly 14 days, numbered 1 to 14, each with a short focus theme.
- Every day has at least one exercise. Use rest or recovery focused days
  with light exercises such as stretching instead of empty days.
- Match the difficulty to the user's fitness level and never prescribe
  equipment the user does not have.
- Keep daily duration within the user's schedule.
- The summary should be 2-3 motivating sentences in Markdown.

User profile:
`)

	labels := []struct {
		category goals.Category
		label    string
	}{
		{goals.CategoryFitnessLevel, "Fitness level"},
		{goals.CategoryEquipment, "Equipment"},
		{goals.CategorySchedule, "Time available"},
		{goals.CategoryFocusArea, "Focus area"},
	}
	for _, l := range labels {
		if value, ok := input.Selection(l.category); ok {
			fmt.Fprintf(&b, "- %s: %s\n", l.label, value)
		}
	}

	if text := strings.TrimSpace(input.FreeText); text != "" {
		b.WriteString("\nIn the user's own words:\n")
		b.WriteString(text)
		b.WriteString("\n")
	}

	return b.String()
}

// goalsDescription renders the goal input into the Goals field of the plan.
// The free text leads so its first line can serve as the display title.
func goalsDescription(input goals.Data) string {
	var lines []string
	if text := strings.TrimSpace(input.FreeText); text != "" {
		lines = append(lines, text)
	}
	for _, category := range []goals.Category{
		goals.CategoryFitnessLevel, goals.CategoryEquipment,
		goals.CategorySchedule, goals.CategoryFocusArea,
	} {
		if value, ok := input.Selection(category); ok {
			lines = append(lines, fmt.Sprintf("%s: %s", category, value))
		}
	}
	return strings.Join(lines, "\n")
}
