package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-agent/internal/analysis"
	"github.com/jonathan/interview-agent/internal/observability"
	"github.com/jonathan/interview-agent/internal/types"
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run an interactive interview session on the terminal",
	Long:  "Starts an adaptive interview for the given job posting and resume. Questions are printed to stdout and answers read from stdin; an empty line submits the answer. The session ends with a scored hiring report.",
	RunE:  runInterview,
}

var (
	interviewJobFile    string
	interviewResumeFile string
	interviewMustHave   string
)

func init() {
	interviewCmd.Flags().StringVarP(&interviewJobFile, "job", "j", "", "Path to job posting text file (required)")
	interviewCmd.Flags().StringVarP(&interviewResumeFile, "resume", "r", "", "Path to resume text file (required)")
	interviewCmd.Flags().StringVar(&interviewMustHave, "must-have", "", "Comma-separated must-have skills (overrides extraction)")

	if err := interviewCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}
	if err := interviewCmd.MarkFlagRequired("resume"); err != nil {
		panic(fmt.Sprintf("failed to mark resume flag as required: %v", err))
	}

	rootCmd.AddCommand(interviewCmd)
}

func runInterview(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	jobText, err := readTextFile(interviewJobFile, "job")
	if err != nil {
		return err
	}
	resumeText, err := readTextFile(interviewResumeFile, "resume")
	if err != nil {
		return err
	}

	engine, dispatcher, _, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	reqs := analysis.ParseJob(jobText, splitSkills(interviewMustHave), nil)
	profile := analysis.ParseResume(resumeText)

	printer := observability.NewPrinter(os.Stdout)
	if verbose {
		printer.PrintRequirements(&reqs)
		printer.PrintCandidateProfile(&profile)
	}

	session := engine.StartSession(ctx, jobText, reqs, profile)
	if verbose {
		printer.PrintPlan(session.Plan)
	}
	fmt.Printf("Interview started: %d planned questions. Submit each answer with an empty line; Ctrl-D ends early.\n", len(session.Plan.Items))

	reader := bufio.NewScanner(os.Stdin)
	reader.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		q, ok := engine.NextQuestion(ctx, session)
		if !ok {
			break
		}

		if q.IsFollowUp {
			fmt.Printf("\nFollow-up: %s\n> ", q.Text)
		} else {
			fmt.Printf("\nQuestion %d/%d", q.Number, q.Total)
			if q.Skill != "" {
				fmt.Printf(" (%s)", q.Skill)
			}
			fmt.Printf(": %s\n> ", q.Text)
		}

		answer, ok := readAnswer(reader)
		if !ok {
			fmt.Println("\nInput closed, ending interview.")
			break
		}

		result := engine.ProcessAnswer(ctx, session, answer)
		fmt.Println(result.SpokenResponse)
		if result.NextAction == types.ActionAnswerCandidate {
			fmt.Println("(Noted your question; the interviewer will address it.)")
		}
		if verbose {
			printer.PrintTurn(&result)
		}
	}

	report, score := engine.Report(ctx, session)
	fmt.Println()
	printer.PrintFinalReport(&report, score)
	fmt.Printf("\n%s\n", report.Report)
	if declined := session.DeclinedSkills(); len(declined) > 0 {
		fmt.Printf("\nDeclined topics: %s\n", strings.Join(declined, ", "))
	}
	if verbose {
		printer.PrintQuotaStatus(dispatcher.QuotaStatus())
	}
	return nil
}

// readAnswer collects stdin lines until a blank line or EOF. Blank lines
// before any content are ignored. Returns false when the stream closed with
// nothing read.
func readAnswer(reader *bufio.Scanner) (string, bool) {
	var lines []string
	for {
		if !reader.Scan() {
			if len(lines) == 0 {
				return "", false
			}
			break
		}
		line := reader.Text()
		if strings.TrimSpace(line) == "" {
			if len(lines) == 0 {
				continue
			}
			break
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), true
}
