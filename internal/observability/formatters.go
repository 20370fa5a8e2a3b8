// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCandidateProfile outputs a human-readable summary of the parsed resume.
func (p *Printer) PrintCandidateProfile(profile *types.CandidateProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Experience: %d years\n", profile.ExperienceYears))
	sb.WriteString("\n")

	if len(profile.Skills) > 0 {
		sb.WriteString("Skills:\n")
		count := min(len(profile.Skills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", profile.Skills[i]))
		}
		if len(profile.Skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(profile.Skills)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(profile.Projects) > 0 {
		sb.WriteString("Projects:\n")
		count := min(len(profile.Projects), 3)
		for i := 0; i < count; i++ {
			title := profile.Projects[i].Title
			if len(title) > 50 {
				title = title[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", title))
		}
		if len(profile.Projects) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(profile.Projects)-3))
		}
	}

	p.printBox("CANDIDATE PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRequirements outputs the skill demands parsed from the job posting.
func (p *Printer) PrintRequirements(reqs *types.JobRequirements) {
	if reqs == nil {
		return
	}

	var sb strings.Builder
	if len(reqs.MustHave) > 0 {
		sb.WriteString("Must-have:\n")
		count := min(len(reqs.MustHave), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", reqs.MustHave[i]))
		}
		if len(reqs.MustHave) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(reqs.MustHave)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(reqs.GoodToHave) > 0 {
		sb.WriteString("Good-to-have:\n")
		count := min(len(reqs.GoodToHave), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", reqs.GoodToHave[i]))
		}
		if len(reqs.GoodToHave) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(reqs.GoodToHave)-3))
		}
	}

	content := strings.TrimSuffix(sb.String(), "\n")
	if content == "" {
		content = "(no explicit skill requirements found)"
	}
	p.printBox("JOB REQUIREMENTS", content)
}

// PrintPlan outputs the generated interview plan with its type distribution.
func (p *Printer) PrintPlan(plan *types.InterviewPlan) {
	if plan == nil || len(plan.Items) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Planned questions: %d\n\n", len(plan.Items)))

	for i, item := range plan.Items {
		label := string(item.Type)
		if item.Skill != "" {
			label = fmt.Sprintf("%s/%s", item.Type, item.Skill)
		}
		focus := item.Focus
		if len(focus) > 35 {
			focus = focus[:32] + "..."
		}
		sb.WriteString(fmt.Sprintf("%2d. [%s] %s\n", i+1, label, focus))
	}

	counts := plan.CountTypes()
	sb.WriteString(fmt.Sprintf("\n%d technical, %d project, %d behavioral, %d hr",
		counts.Technical, counts.Project, counts.Behavioral, counts.HR))

	p.printBox("INTERVIEW PLAN", sb.String())
}

// PrintTurn outputs the scored outcome of one answer.
func (p *Printer) PrintTurn(result *types.TurnResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Quality:  %s\n", result.Quality))
	sb.WriteString(fmt.Sprintf("Action:   %s\n", result.NextAction))
	sb.WriteString(fmt.Sprintf("Scores:   correctness %.1f  depth %.1f\n",
		result.Scores.Correctness, result.Scores.Depth))
	sb.WriteString(fmt.Sprintf("          relevance %.1f  clarity %.1f",
		result.Scores.Relevance, result.Scores.Clarity))
	if result.SkillToSkip != "" {
		sb.WriteString(fmt.Sprintf("\nSkipping: %s", result.SkillToSkip))
	}

	p.printBox("ANSWER ASSESSMENT", sb.String())
}

// PrintFinalReport outputs the hiring recommendation and score.
func (p *Printer) PrintFinalReport(report *types.FinalReport, score float64) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:          %.1f/100\n", score))
	sb.WriteString(fmt.Sprintf("Recommendation: %s", report.Recommendation))

	p.printBox("FINAL REPORT", sb.String())
}

// PrintQuotaStatus outputs per-backend quota bookkeeping, worst first.
func (p *Printer) PrintQuotaStatus(states map[string]llm.ProviderState) {
	if len(states) == 0 {
		return
	}

	var sb strings.Builder
	for name, state := range states {
		marker := "✓"
		if state.ConsecutiveQuotaErrors > 0 {
			marker = "⚠"
		}
		sb.WriteString(fmt.Sprintf("%s %s: %d consecutive quota errors", marker, name, state.ConsecutiveQuotaErrors))
		if !state.LastQuotaError.IsZero() {
			sb.WriteString(fmt.Sprintf(" (last %s)", state.LastQuotaError.Format("15:04:05")))
		}
		sb.WriteString("\n")
	}

	p.printBox("BACKEND QUOTA STATUS", strings.TrimSuffix(sb.String(), "\n"))
}
