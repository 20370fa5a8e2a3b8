package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-agent/internal/analysis"
	"github.com/jonathan/interview-agent/internal/evaluation"
	"github.com/jonathan/interview-agent/internal/logger"
	"github.com/jonathan/interview-agent/internal/observability"
	"github.com/jonathan/interview-agent/internal/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Score a recorded interview transcript and produce a hiring report",
	Long:  "Re-evaluates a recorded transcript (JSON array of question/answer/skill entries) against the job posting and prints the per-answer scores, the 0-100 final score, and the hiring recommendation.",
	RunE:  runReport,
}

var (
	reportJobFile        string
	reportResumeFile     string
	reportTranscriptFile string
)

// transcriptEntry is one recorded exchange in the transcript file.
type transcriptEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Skill    string `json:"skill,omitempty"`
}

func init() {
	reportCmd.Flags().StringVarP(&reportJobFile, "job", "j", "", "Path to job posting text file (required)")
	reportCmd.Flags().StringVarP(&reportResumeFile, "resume", "r", "", "Path to resume text file (required)")
	reportCmd.Flags().StringVarP(&reportTranscriptFile, "transcript", "t", "", "Path to transcript JSON file (required)")

	if err := reportCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}
	if err := reportCmd.MarkFlagRequired("resume"); err != nil {
		panic(fmt.Sprintf("failed to mark resume flag as required: %v", err))
	}
	if err := reportCmd.MarkFlagRequired("transcript"); err != nil {
		panic(fmt.Sprintf("failed to mark transcript flag as required: %v", err))
	}

	rootCmd.AddCommand(reportCmd)
}

func runReport(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	jobText, err := readTextFile(reportJobFile, "job")
	if err != nil {
		return err
	}
	resumeText, err := readTextFile(reportResumeFile, "resume")
	if err != nil {
		return err
	}
	entries, err := readTranscript(reportTranscriptFile)
	if err != nil {
		return err
	}

	dispatcher, _, log, err := buildDispatcher(ctx)
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	evaluator := evaluation.NewEvaluator(dispatcher, log)
	profile := analysis.ParseResume(resumeText)

	evals := make([]types.Evaluation, 0, len(entries))
	for i, entry := range entries {
		eval := evaluator.Evaluate(ctx, jobText, entry.Question, entry.Answer, entry.Skill)
		quality := evaluation.Classify(eval.Scores)
		evals = append(evals, eval)
		fmt.Printf("%2d. [%s] %s\n", i+1, quality, logger.TruncateForLog(entry.Question, 70))
		fmt.Printf("    correctness %.1f  depth %.1f  relevance %.1f  clarity %.1f\n",
			eval.Scores.Correctness, eval.Scores.Depth, eval.Scores.Relevance, eval.Scores.Clarity)
	}

	score := evaluation.FinalScore(evals)
	report := evaluator.GenerateFinalReport(ctx, jobText, profile, evals, score)

	fmt.Println()
	observability.NewPrinter(os.Stdout).PrintFinalReport(&report, score)
	fmt.Printf("\n%s\n", report.Report)
	return nil
}

// readTranscript loads and validates the transcript JSON file.
func readTranscript(path string) ([]transcriptEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript file: %w", err)
	}

	var entries []transcriptEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse transcript JSON: %w", err)
	}
	for i, entry := range entries {
		if entry.Question == "" || entry.Answer == "" {
			return nil, fmt.Errorf("transcript entry %d is missing a question or answer", i+1)
		}
	}
	return entries, nil
}
