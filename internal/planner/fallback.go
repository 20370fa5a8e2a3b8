package planner

import (
	"fmt"

	"github.com/jonathan/interview-agent/internal/types"
)

// fallbackDifficulties is the fixed difficulty ramp for offline technical
// items.
var fallbackDifficulties = []types.Difficulty{
	types.DifficultyBasic,
	types.DifficultyMedium,
	types.DifficultyMedium,
	types.DifficultyAdvanced,
	types.DifficultyMedium,
}

// genericTechnicalTopics pad the technical section when the job lists fewer
// skills than the template shape needs.
var genericTechnicalTopics = []string{
	"problem solving",
	"software design",
	"debugging and testing",
	"data structures",
	"system fundamentals",
}

// FallbackPlan builds the deterministic offline plan from the skill list and
// a fixed template shape: 1 introduction, 5 technical, 3 project when the
// resume shows project evidence (2 otherwise), 1 behavioral, 1 hr. It always
// satisfies the plan invariants without any generation call.
func FallbackPlan(reqs types.JobRequirements, profile types.CandidateProfile) *types.InterviewPlan {
	plan := &types.InterviewPlan{}

	plan.Items = append(plan.Items, types.PlanItem{
		Type:       types.TypeIntroduction,
		Difficulty: types.DifficultyBasic,
		Focus:      "Ask candidate to introduce themselves and their background",
	})

	skills := make([]string, 0, types.MinTechnical)
	skills = append(skills, reqs.MustHave...)
	if len(skills) < types.MinTechnical {
		skills = append(skills, reqs.GoodToHave...)
	}
	if len(skills) < types.MinTechnical {
		skills = append(skills, genericTechnicalTopics...)
	}
	for i := 0; i < types.MinTechnical; i++ {
		difficulty := types.DifficultyMedium
		if i < len(fallbackDifficulties) {
			difficulty = fallbackDifficulties[i]
		}
		plan.Items = append(plan.Items, types.PlanItem{
			Type:       types.TypeTechnical,
			Skill:      skills[i],
			Difficulty: difficulty,
			Focus:      fmt.Sprintf("Assess %s knowledge and experience", skills[i]),
		})
	}

	projectFocus := []string{
		"Discuss most challenging project and candidate's role",
		"Technical decision making in projects",
		"Team collaboration and project delivery",
	}
	projectCount := 2
	if len(profile.Projects) > 0 {
		projectCount = types.MinProject
	}
	for i := 0; i < projectCount; i++ {
		plan.Items = append(plan.Items, types.PlanItem{
			Type:       types.TypeProject,
			Difficulty: types.DifficultyMedium,
			Focus:      projectFocus[i],
		})
	}

	plan.Items = append(plan.Items,
		types.PlanItem{
			Type:       types.TypeBehavioral,
			Difficulty: types.DifficultyBasic,
			Focus:      "Teamwork and handling challenges",
		},
		types.PlanItem{
			Type:       types.TypeHR,
			Difficulty: types.DifficultyBasic,
			Focus:      "Career goals and motivation for this role",
		},
	)

	return plan
}
