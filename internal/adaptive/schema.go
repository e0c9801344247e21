package adaptive

import "github.com/abhisek/neuroscreen/internal/llm"

// NextActionSchema defines the JSON schema for advisor responses.
var NextActionSchema = &llm.Schema{
	Name:        llm.PurposeNextAction,
	Description: "The next step of an adaptive screening questionnaire",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"enum":        []any{"continue", "adjust_difficulty", "repeat", "move_to_next"},
				"description": "continue keeps the accuracy-driven schedule; adjust_difficulty sets the tier given in difficulty; repeat asks the same question again; move_to_next advances one tier",
			},
			"difficulty": map[string]any{
				"type":        "string",
				"enum":        []any{"easy", "medium", "hard"},
				"description": "Target tier, used only with adjust_difficulty",
			},
			"reasoning": map[string]any{
				"type":        "string",
				"description": "One sentence explaining the choice",
			},
		},
		"required":             []any{"action", "reasoning"},
		"additionalProperties": false,
	},
}
