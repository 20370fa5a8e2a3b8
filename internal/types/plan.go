// Package types defines the shared domain model for the interview engine.
package types

// QuestionType categorizes a plan item and the question generated from it.
type QuestionType string

// Question type constants cover the five interview segments.
const (
	TypeIntroduction QuestionType = "introduction"
	TypeTechnical    QuestionType = "technical"
	TypeProject      QuestionType = "project"
	TypeBehavioral   QuestionType = "behavioral"
	TypeHR           QuestionType = "hr"
)

// Difficulty is the target difficulty of a plan item.
type Difficulty string

// Difficulty levels from warm-up to deep-dive.
const (
	DifficultyBasic    Difficulty = "basic"
	DifficultyMedium   Difficulty = "medium"
	DifficultyAdvanced Difficulty = "advanced"
)

// PlanItem is one slot in the interview plan. It describes what the next
// question should assess, not the question text itself.
type PlanItem struct {
	Type       QuestionType `json:"type"`
	Skill      string       `json:"skill,omitempty"`
	Difficulty Difficulty   `json:"difficulty"`
	Focus      string       `json:"focus"`
}

// InterviewPlan is an ordered sequence of plan items. Insertion order is
// turn order.
type InterviewPlan struct {
	Items []PlanItem `json:"items"`
}

// Plan size bounds and distribution minimums enforced after generation.
const (
	MinPlanItems    = 8
	MaxPlanItems    = 15
	MinTechnical    = 5
	MinProject      = 3
	MaxHRBehavioral = 5
)

// TypeCounts tallies plan items per question type.
type TypeCounts struct {
	Introduction int
	Technical    int
	Project      int
	Behavioral   int
	HR           int
}

// CountTypes returns the per-type item tally for the plan.
func (p *InterviewPlan) CountTypes() TypeCounts {
	var c TypeCounts
	for _, item := range p.Items {
		switch item.Type {
		case TypeIntroduction:
			c.Introduction++
		case TypeTechnical:
			c.Technical++
		case TypeProject:
			c.Project++
		case TypeBehavioral:
			c.Behavioral++
		case TypeHR:
			c.HR++
		}
	}
	return c
}

// HRBehavioral returns the combined hr+behavioral count, which excludes the
// introduction item by construction.
func (c TypeCounts) HRBehavioral() int {
	return c.HR + c.Behavioral
}

// CandidateProfile is the resume summary consumed by the engine. It is
// produced by external text analysis; the engine never parses documents.
type CandidateProfile struct {
	Skills          []string  `json:"skills"`
	ExperienceYears int       `json:"experience_years"`
	Projects        []Project `json:"projects"`
}

// Project is a single project extracted from a resume.
type Project struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// JobRequirements splits the job description's skill demands by priority.
type JobRequirements struct {
	MustHave   []string `json:"must_have"`
	GoodToHave []string `json:"good_to_have"`
}
