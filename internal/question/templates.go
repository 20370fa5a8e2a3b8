package question

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/interview-agent/internal/types"
)

// commonSkills are scanned in job text when a plan item carries no skill.
var commonSkills = []string{
	"python", "javascript", "java", "go", "react", "node",
	"sql", "aws", "docker", "kubernetes", "git",
}

var introTemplates = []string{
	"Please tell me about yourself, your background, and what brings you to this opportunity today.",
	"I'd love to hear about your journey into tech. What got you started and where are you now?",
	"Walk me through your professional background and what excites you about this role.",
}

var technicalTemplates = map[types.Difficulty][]string{
	types.DifficultyBasic: {
		"Can you explain what %s is and why it's useful in software development?",
		"What do you know about %s? How would you describe it to someone new to tech?",
		"In your own words, what is %s and where have you seen it used?",
	},
	types.DifficultyMedium: {
		"Can you walk me through how you've used %s in your projects?",
		"What's your experience level with %s? Give me a specific example of how you've applied it.",
		"If I asked you to build something with %s today, what would be your approach?",
		"What are the key concepts in %s that you find most important?",
	},
	types.DifficultyAdvanced: {
		"Can you describe a complex problem you solved using %s and the technical challenges you faced?",
		"What's the most difficult aspect of working with %s? How do you handle those challenges?",
		"Tell me about a time when %s didn't work as expected. How did you debug and resolve it?",
		"How would you design a scalable solution using %s? Walk me through your approach.",
	},
}

var seniorProjectTemplates = []string{
	"Can you describe a significant project you led and the key technical decisions you made?",
	"Tell me about a project where you had to make architectural decisions. What factors did you consider?",
	"Describe a project where you mentored others. What was your approach to guiding the team?",
}

var juniorProjectTemplates = []string{
	"Tell me about a project you're most proud of. What was your role and what did you learn from it?",
	"What's a coding project you've worked on recently? Walk me through the problem you were solving.",
	"Describe any project, even a personal or academic one, that taught you something valuable.",
}

var behavioralTemplates = []string{
	"Describe a situation where you had to work with a team to solve a challenging problem. What was your role?",
	"Tell me about a time you had to learn something new quickly. How did you approach it?",
	"Can you share an example of when you received critical feedback? How did you respond?",
	"Describe a situation where you disagreed with a teammate. How did you handle it?",
}

var hrTemplates = []string{
	"What interests you most about this role and our company?",
	"Where do you see yourself in the next few years?",
	"What are you looking for in your next role?",
}

// seniorExperienceYears separates the two project template groups.
const seniorExperienceYears = 3

// TemplateSet tracks which fallback phrasings a session has already
// consumed, so repeat fallbacks vary without relying on randomness. Safe
// for concurrent use.
type TemplateSet struct {
	mu   sync.Mutex
	used map[string]bool
}

// NewTemplateSet creates an empty per-session selection state.
func NewTemplateSet() *TemplateSet {
	return &TemplateSet{used: make(map[string]bool)}
}

// pick returns the first option not yet used this session. When the whole
// group is exhausted it starts over from the first option.
func (s *TemplateSet) pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	if s == nil {
		return options[0]
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, opt := range options {
		if !s.used[opt] {
			s.used[opt] = true
			return opt
		}
	}
	for _, opt := range options {
		delete(s.used, opt)
	}
	s.used[options[0]] = true
	return options[0]
}

// FallbackQuestion picks a question from the offline template bank,
// personalized by skill and experience level.
func FallbackQuestion(item types.PlanItem, jobText string, profile types.CandidateProfile, seen *TemplateSet) string {
	switch item.Type {
	case types.TypeIntroduction:
		return seen.pick(introTemplates)

	case types.TypeTechnical:
		skill := targetSkill(item, jobText, profile)
		group := technicalTemplates[item.Difficulty]
		if len(group) == 0 {
			group = technicalTemplates[types.DifficultyMedium]
		}
		return fmt.Sprintf(seen.pick(group), skill)

	case types.TypeProject:
		if profile.ExperienceYears > seniorExperienceYears {
			return seen.pick(seniorProjectTemplates)
		}
		return seen.pick(juniorProjectTemplates)

	case types.TypeBehavioral:
		return seen.pick(behavioralTemplates)

	default:
		return seen.pick(hrTemplates)
	}
}

// targetSkill resolves which skill a technical fallback should probe: the
// plan item's own skill, then a known skill found in the job text, then the
// candidate's first listed skill.
func targetSkill(item types.PlanItem, jobText string, profile types.CandidateProfile) string {
	if item.Skill != "" {
		return item.Skill
	}
	jobLower := strings.ToLower(jobText)
	for _, skill := range commonSkills {
		if strings.Contains(jobLower, skill) {
			return skill
		}
	}
	if len(profile.Skills) > 0 {
		return profile.Skills[0]
	}
	return "programming"
}
