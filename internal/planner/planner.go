package planner

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/interview-agent/internal/cache"
	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/prompts"
	"github.com/jonathan/interview-agent/internal/types"
)

// jobTextKeyPrefix bounds how much job text feeds the cache key.
const jobTextKeyPrefix = 500

// Generator produces interview plans, caching results (fallbacks included)
// for the cache TTL.
type Generator struct {
	gen   llm.Generator
	cache *cache.Cache
	log   *zap.Logger
}

// NewGenerator creates a plan generator over the dispatcher and plan cache.
func NewGenerator(gen llm.Generator, planCache *cache.Cache, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{gen: gen, cache: planCache, log: log}
}

// GeneratePlan returns an interview plan for the job and candidate. It never
// fails: when generation is unavailable or the result is out of bounds, the
// deterministic offline plan is served instead. Results, including served
// fallbacks, are cached.
func (g *Generator) GeneratePlan(ctx context.Context, jobText string, reqs types.JobRequirements, profile types.CandidateProfile) *types.InterviewPlan {
	key := planCacheKey(jobText, profile)
	plan := g.cache.GetOrCompute(key, func() any {
		return g.generate(ctx, jobText, reqs, profile)
	})
	return plan.(*types.InterviewPlan)
}

func (g *Generator) generate(ctx context.Context, jobText string, reqs types.JobRequirements, profile types.CandidateProfile) *types.InterviewPlan {
	if g.gen.ShortCircuited() {
		g.log.Warn("skipping plan generation, quota short-circuit active")
		return FallbackPlan(reqs, profile)
	}

	prompt := buildPlanPrompt(jobText, reqs, profile)
	doc, err := g.gen.GenerateJSON(ctx, llm.Request{Prompt: prompt, MaxTokens: 2048})
	if err != nil {
		g.log.Warn("plan generation failed, serving fallback", zap.Error(err))
		return FallbackPlan(reqs, profile)
	}

	plan, err := parsePlan(doc)
	if err != nil {
		g.log.Warn("generated plan rejected, serving fallback", zap.Error(err))
		return FallbackPlan(reqs, profile)
	}

	if n := len(plan.Items); n < types.MinPlanItems || n > types.MaxPlanItems {
		g.log.Warn("generated plan size out of bounds, serving fallback", zap.Int("items", n))
		return FallbackPlan(reqs, profile)
	}

	ensureIntroductionFirst(plan)
	Rebalance(plan, reqs, profile)

	counts := plan.CountTypes()
	if counts.Technical < 3 || counts.HRBehavioral() > 7 {
		g.log.Warn("generated plan skewed after rebalance, serving fallback",
			zap.Int("technical", counts.Technical),
			zap.Int("hr_behavioral", counts.HRBehavioral()))
		return FallbackPlan(reqs, profile)
	}

	g.log.Info("interview plan generated",
		zap.Int("items", len(plan.Items)),
		zap.Int("technical", counts.Technical),
		zap.Int("project", counts.Project))
	return plan
}

// ensureIntroductionFirst moves the introduction item to the front, adding
// one when the model forgot it and retyping any duplicates to behavioral.
func ensureIntroductionFirst(plan *types.InterviewPlan) {
	firstIntro := -1
	for i, item := range plan.Items {
		if item.Type != types.TypeIntroduction {
			continue
		}
		if firstIntro == -1 {
			firstIntro = i
			continue
		}
		plan.Items[i].Type = types.TypeBehavioral
	}

	switch {
	case firstIntro == -1:
		intro := types.PlanItem{
			Type:       types.TypeIntroduction,
			Difficulty: types.DifficultyBasic,
			Focus:      "Ask candidate to introduce themselves and their background",
		}
		plan.Items = append([]types.PlanItem{intro}, plan.Items...)
		if len(plan.Items) > types.MaxPlanItems {
			plan.Items = plan.Items[:types.MaxPlanItems]
		}
	case firstIntro > 0:
		intro := plan.Items[firstIntro]
		plan.Items = append(plan.Items[:firstIntro], plan.Items[firstIntro+1:]...)
		plan.Items = append([]types.PlanItem{intro}, plan.Items...)
	}
}

func buildPlanPrompt(jobText string, reqs types.JobRequirements, profile types.CandidateProfile) string {
	template := prompts.MustGet("plan.json", "interview-plan")
	return prompts.Format(template, map[string]string{
		"JobText":         jobText,
		"MustHave":        strings.Join(reqs.MustHave, ", "),
		"GoodToHave":      strings.Join(reqs.GoodToHave, ", "),
		"Skills":          strings.Join(profile.Skills, ", "),
		"ExperienceYears": strconv.Itoa(profile.ExperienceYears),
		"ProjectCount":    strconv.Itoa(len(profile.Projects)),
	})
}

// planCacheKey hashes the job text prefix, the sorted skill set, and the
// experience years.
func planCacheKey(jobText string, profile types.CandidateProfile) string {
	skills := append([]string(nil), profile.Skills...)
	sort.Strings(skills)
	prefix := jobText
	if len(prefix) > jobTextKeyPrefix {
		prefix = prefix[:jobTextKeyPrefix]
	}
	return cache.Key(prefix, strings.Join(skills, ","), strconv.Itoa(profile.ExperienceYears))
}
