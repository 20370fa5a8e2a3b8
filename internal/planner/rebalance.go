package planner

import (
	"fmt"

	"github.com/jonathan/interview-agent/internal/types"
)

// Rebalance enforces the minimum technical/project counts even when the
// generated plan is biased toward hr/behavioral items. It is a single
// deterministic pass: items are retyped in place, never reordered, so the
// conversational position of each slot is preserved. The first two
// hr/behavioral items are left alone as warm-up.
func Rebalance(plan *types.InterviewPlan, reqs types.JobRequirements, profile types.CandidateProfile) {
	counts := plan.CountTypes()
	hasProjects := len(profile.Projects) > 0

	var softIndices []int
	for i, item := range plan.Items {
		if item.Type == types.TypeHR || item.Type == types.TypeBehavioral {
			softIndices = append(softIndices, i)
		}
	}
	if len(softIndices) <= 2 {
		return
	}

	for _, idx := range softIndices[2:] {
		if counts.Technical >= types.MinTechnical &&
			counts.Project >= types.MinProject &&
			counts.HRBehavioral() <= types.MaxHRBehavioral {
			break
		}

		item := &plan.Items[idx]
		switch {
		case counts.Technical < types.MinTechnical && len(reqs.MustHave) > 0:
			wasHR := item.Type == types.TypeHR
			item.Type = types.TypeTechnical
			if item.Skill == "" {
				item.Skill = nextUnusedSkill(plan, reqs.MustHave, counts.Technical)
			}
			if item.Difficulty == "" {
				item.Difficulty = types.DifficultyMedium
			}
			if item.Focus == "" {
				item.Focus = fmt.Sprintf("Assess %s practical understanding", item.Skill)
			}
			counts.Technical++
			decrementSoft(&counts, wasHR)

		case counts.Project < types.MinProject && hasProjects:
			wasHR := item.Type == types.TypeHR
			item.Type = types.TypeProject
			item.Skill = ""
			if item.Difficulty == "" {
				item.Difficulty = types.DifficultyMedium
			}
			if item.Focus == "" {
				item.Focus = "Discuss real project experience and decisions"
			}
			counts.Project++
			decrementSoft(&counts, wasHR)
		}
	}
}

func decrementSoft(counts *types.TypeCounts, wasHR bool) {
	if wasHR {
		if counts.HR > 0 {
			counts.HR--
		}
		return
	}
	if counts.Behavioral > 0 {
		counts.Behavioral--
	}
}

// nextUnusedSkill picks the first must-have skill not yet assigned to any
// plan item, falling back to round-robin when all are taken.
func nextUnusedSkill(plan *types.InterviewPlan, mustHave []string, technicalCount int) string {
	used := make(map[string]bool, len(plan.Items))
	for _, item := range plan.Items {
		if item.Skill != "" {
			used[item.Skill] = true
		}
	}
	for _, skill := range mustHave {
		if !used[skill] {
			return skill
		}
	}
	return mustHave[technicalCount%len(mustHave)]
}
