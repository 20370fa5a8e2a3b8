// Package analysis extracts the skill list, experience, and project evidence
// the engine needs from raw job and resume text. It is keyword driven on
// purpose: document parsing stays outside the engine, and these heuristics
// work offline.
package analysis

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/interview-agent/internal/types"
)

// commonSkills is the keyword vocabulary scanned in job and resume text.
var commonSkills = []string{
	"Python", "Java", "JavaScript", "TypeScript", "C++", "C#", "Go", "Rust", "Ruby", "PHP",
	"React", "Angular", "Vue", "Node.js", "Django", "Flask", "FastAPI", "Spring", "Express",
	"SQL", "PostgreSQL", "MySQL", "MongoDB", "Redis", "Elasticsearch",
	"AWS", "Azure", "GCP", "Docker", "Kubernetes", "Jenkins", "CI/CD",
	"Git", "Linux", "REST", "GraphQL", "Microservices", "API",
	"Machine Learning", "Deep Learning", "TensorFlow", "PyTorch", "NLP",
	"HTML", "CSS", "Tailwind", "Bootstrap", "Sass",
	"Agile", "Scrum", "Testing", "Jest", "Pytest", "Selenium",
}

var skillPatterns = buildSkillPatterns()

func buildSkillPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(commonSkills))
	for _, skill := range commonSkills {
		// Word boundaries don't work after symbols like "+", so anchor on
		// non-word characters or string edges instead.
		quoted := regexp.QuoteMeta(strings.ToLower(skill))
		patterns[skill] = regexp.MustCompile(`(^|[^\w+#.])` + quoted + `($|[^\w+#.])`)
	}
	return patterns
}

var experiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\+?\s*(?:years?|yrs?)`),
	regexp.MustCompile(`(\d+)\s*-\s*\d+\s*(?:years?|yrs?)`),
}

// ExtractSkills returns the known skills mentioned in the text, in
// vocabulary order.
func ExtractSkills(text string) []string {
	textLower := strings.ToLower(text)
	var found []string
	for _, skill := range commonSkills {
		if skillPatterns[skill].MatchString(textLower) {
			found = append(found, skill)
		}
	}
	return found
}

// ExtractExperienceYears finds the first "N years" style mention and returns
// N, or 0 when the text names none.
func ExtractExperienceYears(text string) int {
	textLower := strings.ToLower(text)
	for _, pattern := range experiencePatterns {
		if m := pattern.FindStringSubmatch(textLower); m != nil {
			years, err := strconv.Atoi(m[1])
			if err == nil {
				return years
			}
		}
	}
	return 0
}

const (
	maxProjects              = 5
	maxProjectHeaderLen      = 100
	maxProjectDescriptionLen = 200
)

// ExtractProjects finds project sections in resume text: a short line
// mentioning "project" starts one, and following non-blank lines feed its
// description. At most five projects are returned.
func ExtractProjects(text string) []types.Project {
	var projects []types.Project
	var current *types.Project

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.Contains(strings.ToLower(trimmed), "project") && len(line) < maxProjectHeaderLen {
			if current != nil {
				projects = append(projects, *current)
			}
			current = &types.Project{Title: trimmed}
			continue
		}
		if current != nil && trimmed != "" {
			if current.Description != "" {
				current.Description += " "
			}
			current.Description += trimmed
		}
	}
	if current != nil {
		projects = append(projects, *current)
	}

	for i := range projects {
		if runes := []rune(projects[i].Description); len(runes) > maxProjectDescriptionLen {
			projects[i].Description = string(runes[:maxProjectDescriptionLen]) + "..."
		}
	}
	if len(projects) > maxProjects {
		projects = projects[:maxProjects]
	}
	return projects
}

// ParseResume bundles the three extractions into a candidate profile.
func ParseResume(resumeText string) types.CandidateProfile {
	return types.CandidateProfile{
		Skills:          ExtractSkills(resumeText),
		ExperienceYears: ExtractExperienceYears(resumeText),
		Projects:        ExtractProjects(resumeText),
	}
}

// ParseJob extracts requirements from job description text. Explicitly
// supplied skills win; extraction fills the gaps.
func ParseJob(jobText string, mustHave, goodToHave []string) types.JobRequirements {
	reqs := types.JobRequirements{MustHave: mustHave, GoodToHave: goodToHave}
	if len(reqs.MustHave) == 0 {
		reqs.MustHave = ExtractSkills(jobText)
	}
	return reqs
}
