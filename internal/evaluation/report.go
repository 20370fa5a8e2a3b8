package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/prompts"
	"github.com/jonathan/interview-agent/internal/types"
)

// Recommendation score thresholds on the 0-100 scale.
const (
	strongThreshold = 75.0
	mediumThreshold = 60.0
	weakThreshold   = 40.0
)

// AverageScores returns the per-dimension mean across all evaluations.
func AverageScores(evals []types.Evaluation) types.Scores {
	if len(evals) == 0 {
		return types.Scores{}
	}
	var sum types.Scores
	for _, e := range evals {
		sum.Correctness += e.Scores.Correctness
		sum.Depth += e.Scores.Depth
		sum.Clarity += e.Scores.Clarity
		sum.Relevance += e.Scores.Relevance
	}
	n := float64(len(evals))
	return types.Scores{
		Correctness: sum.Correctness / n,
		Depth:       sum.Depth / n,
		Clarity:     sum.Clarity / n,
		Relevance:   sum.Relevance / n,
	}
}

// FinalScore aggregates all evaluations into a 0-100 interview score: the
// mean of each answer's four-dimension average, rescaled from 0-5.
func FinalScore(evals []types.Evaluation) float64 {
	if len(evals) == 0 {
		return 0
	}
	total := 0.0
	for _, e := range evals {
		total += e.Scores.Mean()
	}
	return total / float64(len(evals)) / 5.0 * 100
}

// ScoreToRecommendation maps a 0-100 score to a hiring recommendation.
func ScoreToRecommendation(score float64) types.Recommendation {
	switch {
	case score >= strongThreshold:
		return types.RecommendStrong
	case score >= mediumThreshold:
		return types.RecommendMedium
	case score >= weakThreshold:
		return types.RecommendWeak
	default:
		return types.RecommendReject
	}
}

type reportWire struct {
	Recommendation string `json:"recommendation"`
	Report         string `json:"report"`
}

// GenerateFinalReport produces the hiring recommendation and narrative
// summary for a finished interview. The recommendation is always anchored
// to the score thresholds: an invalid generated recommendation is replaced,
// and on generation failure the whole report is derived from the score.
func (e *Evaluator) GenerateFinalReport(ctx context.Context, jobText string, profile types.CandidateProfile, evals []types.Evaluation, finalScore float64) types.FinalReport {
	if len(evals) == 0 {
		return types.FinalReport{
			Recommendation: types.RecommendReject,
			Report:         "Interview completed with no answers submitted.",
		}
	}

	prompt := buildReportPrompt(jobText, profile, evals, finalScore)
	doc, err := e.gen.GenerateJSON(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		e.log.Warn("final report generation failed, deriving from score", zap.Error(err))
		return fallbackReport(finalScore)
	}

	var wire reportWire
	if err := json.Unmarshal([]byte(doc), &wire); err != nil {
		e.log.Warn("final report response not parseable, deriving from score", zap.Error(err))
		return fallbackReport(finalScore)
	}

	report := types.FinalReport{
		Recommendation: types.Recommendation(wire.Recommendation),
		Report:         wire.Report,
	}
	if !report.Recommendation.Valid() {
		report.Recommendation = ScoreToRecommendation(finalScore)
	}
	if report.Report == "" {
		report.Report = fmt.Sprintf("Candidate scored %.0f/100 overall.", finalScore)
	}
	return report
}

func buildReportPrompt(jobText string, profile types.CandidateProfile, evals []types.Evaluation, finalScore float64) string {
	avg := AverageScores(evals)
	return prompts.Format(prompts.MustGet("report.json", "final-report"), map[string]string{
		"JobText":         truncateRunes(jobText, jobTextPromptLimit),
		"Skills":          strings.Join(profile.Skills, ", "),
		"ExperienceYears": strconv.Itoa(profile.ExperienceYears),
		"QuestionCount":   strconv.Itoa(len(evals)),
		"FinalScore":      fmt.Sprintf("%.1f", finalScore),
		"AvgCorrectness":  fmt.Sprintf("%.1f", avg.Correctness),
		"AvgDepth":        fmt.Sprintf("%.1f", avg.Depth),
		"AvgClarity":      fmt.Sprintf("%.1f", avg.Clarity),
		"AvgRelevance":    fmt.Sprintf("%.1f", avg.Relevance),
	})
}

func fallbackReport(finalScore float64) types.FinalReport {
	tone := "weak"
	switch {
	case finalScore >= strongThreshold:
		tone = "strong"
	case finalScore >= mediumThreshold:
		tone = "moderate"
	}
	return types.FinalReport{
		Recommendation: ScoreToRecommendation(finalScore),
		Report: fmt.Sprintf(
			"Candidate completed interview with overall score of %.1f/100. Performance was %s.",
			finalScore, tone),
	}
}
