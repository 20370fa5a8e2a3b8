// Package main provides the entry point for the interview agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "interview_agent",
	Short: "Adaptive technical interview agent",
	Long:  "Interview Agent runs adaptive multi-turn technical interviews: it plans a question sequence from a job posting and resume, asks questions, scores answers, and produces a final hiring report.",
}

var (
	configPath string
	offline    bool
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "Run without any generation backend (heuristic fallbacks only)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed assessment boxes after each answer")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
