// Package planner produces interview plans from structured generation with a
// deterministic rebalancer and a fully offline fallback.
package planner

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/interview-agent/internal/types"
)

// planSchema is the contract for structured plan output. Validating up front
// replaces ad hoc per-field presence checks with one typed step.
const planSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "type": {
        "type": "string",
        "enum": ["introduction", "technical", "project", "behavioral", "hr"]
      },
      "skill": {
        "type": ["string", "null"]
      },
      "difficulty": {
        "type": "string",
        "enum": ["basic", "medium", "advanced"]
      },
      "focus": {
        "type": "string"
      }
    },
    "required": ["type", "difficulty", "focus"]
  }
}`

var compiledPlanSchema = gojsonschema.NewStringLoader(planSchema)

// planItemWire mirrors the generated JSON shape, where skill may be null.
type planItemWire struct {
	Type       string  `json:"type"`
	Skill      *string `json:"skill"`
	Difficulty string  `json:"difficulty"`
	Focus      string  `json:"focus"`
}

// parsePlan validates the generated document against the plan schema and
// converts it to the domain model.
func parsePlan(doc string) (*types.InterviewPlan, error) {
	result, err := gojsonschema.Validate(compiledPlanSchema, gojsonschema.NewStringLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("plan schema validation: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("plan does not match schema: %v", result.Errors())
	}

	var wire []planItemWire
	if err := json.Unmarshal([]byte(doc), &wire); err != nil {
		return nil, fmt.Errorf("failed to parse plan JSON: %w", err)
	}

	plan := &types.InterviewPlan{Items: make([]types.PlanItem, 0, len(wire))}
	for _, w := range wire {
		item := types.PlanItem{
			Type:       types.QuestionType(w.Type),
			Difficulty: types.Difficulty(w.Difficulty),
			Focus:      w.Focus,
		}
		if w.Skill != nil {
			item.Skill = *w.Skill
		}
		plan.Items = append(plan.Items, item)
	}
	return plan, nil
}
