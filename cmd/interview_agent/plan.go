package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-agent/internal/analysis"
	"github.com/jonathan/interview-agent/internal/types"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate an interview plan for a job posting and resume",
	Long:  "Analyzes the job posting and resume, then generates the ordered interview plan: an introduction, technical questions on the required skills, project deep-dives, and behavioral/HR slots.",
	RunE:  runPlan,
}

var (
	planJobFile    string
	planResumeFile string
	planMustHave   string
	planGoodToHave string
	planJSON       bool
)

func init() {
	planCmd.Flags().StringVarP(&planJobFile, "job", "j", "", "Path to job posting text file (required)")
	planCmd.Flags().StringVarP(&planResumeFile, "resume", "r", "", "Path to resume text file (required)")
	planCmd.Flags().StringVar(&planMustHave, "must-have", "", "Comma-separated must-have skills (overrides extraction)")
	planCmd.Flags().StringVar(&planGoodToHave, "good-to-have", "", "Comma-separated good-to-have skills")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "Print the plan as JSON")

	if err := planCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}
	if err := planCmd.MarkFlagRequired("resume"); err != nil {
		panic(fmt.Sprintf("failed to mark resume flag as required: %v", err))
	}

	rootCmd.AddCommand(planCmd)
}

func runPlan(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	jobText, err := readTextFile(planJobFile, "job")
	if err != nil {
		return err
	}
	resumeText, err := readTextFile(planResumeFile, "resume")
	if err != nil {
		return err
	}

	engine, dispatcher, _, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	reqs := analysis.ParseJob(jobText, splitSkills(planMustHave), splitSkills(planGoodToHave))
	profile := analysis.ParseResume(resumeText)

	session := engine.StartSession(ctx, jobText, reqs, profile)
	plan := session.Plan

	if planJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	fmt.Printf("Interview plan: %d questions\n\n", len(plan.Items))
	for i, item := range plan.Items {
		printPlanItem(i+1, item)
	}

	counts := plan.CountTypes()
	fmt.Printf("\nDistribution: %d technical, %d project, %d behavioral, %d hr\n",
		counts.Technical, counts.Project, counts.Behavioral, counts.HR)
	return nil
}

func printPlanItem(number int, item types.PlanItem) {
	label := string(item.Type)
	if item.Skill != "" {
		label = fmt.Sprintf("%s / %s", item.Type, item.Skill)
	}
	fmt.Printf("%2d. [%s] %s (%s)\n", number, label, item.Focus, item.Difficulty)
}
