package genai

import (
	"encoding/json"
	"fmt"
)

// planJSONSchema encodes the strict response schema for plan generation.
type planJSONSchema struct {
	units []string
}

func (pjs planJSONSchema) MarshalJSON() ([]byte, error) {
	unitsJSON, err := json.Marshal(pjs.units)
	if err != nil {
		return nil, fmt.Errorf("marshal units: %w", err)
	}

	return []byte(fmt.Sprintf(`{
		  "type": "object",
		  "required": ["summary", "days"],
		  "properties": {
			"summary": {
			  "type": "string",
			  "description": "Short motivating summary of the plan in Markdown"
			},
			"days": {
			  "type": "array",
			  "description": "Exactly 14 workout days in order",
			  "items": {
				"type": "object",
				"required": ["number", "focus", "exercises"],
				"properties": {
				  "number": {
					"type": "integer",
					"description": "Day number from 1 to 14"
				  },
				  "focus": {
					"type": "string",
					"description": "Theme of the day, e.g. upper body or recovery"
				  },
				  "exercises": {
					"type": "array",
					"description": "At least one exercise per day",
					"items": {
					  "type": "object",
					  "required": ["name", "sets", "amount", "unit"],
					  "properties": {
						"name": {
						  "type": "string",
						  "description": "Name of the exercise"
						},
						"sets": {
						  "type": "integer",
						  "description": "Number of sets"
						},
						"amount": {
						  "type": "integer",
						  "description": "Repetitions or duration per set"
						},
						"unit": {
						  "type": "string",
						  "description": "Unit of the amount",
						  "enum": %s
						}
					  },
					  "additionalProperties": false
					}
				  }
				},
				"additionalProperties": false
			  }
			}
		  },
		  "additionalProperties": false
		}`, unitsJSON)), nil
}

// generatedPlan is the wire format of the AI response.
type generatedPlan struct {
	Summary string         `json:"summary"`
	Days    []generatedDay `json:"days"`
}

type generatedDay struct {
	Number    int                 `json:"number"`
	Focus     string              `json:"focus"`
	Exercises []generatedExercise `json:"exercises"`
}

type generatedExercise struct {
	Name   string `json:"name"`
	Sets   int    `json:"sets"`
	Amount int    `json:"amount"`
	Unit   string `json:"unit"`
}
