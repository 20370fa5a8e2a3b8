// Package evaluation scores candidate answers and turns session results into
// a final hiring report. Classification is a pure function of the numeric
// scores so it stays deterministic regardless of backend availability.
package evaluation

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/prompts"
	"github.com/jonathan/interview-agent/internal/types"
)

const jobTextPromptLimit = 500

// Evaluator scores answers through the dispatcher.
type Evaluator struct {
	gen llm.Generator
	log *zap.Logger
}

// NewEvaluator creates an evaluator over the dispatcher.
func NewEvaluator(gen llm.Generator, log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{gen: gen, log: log}
}

// evaluationWire mirrors the structured evaluation output. Pointer fields
// distinguish a missing dimension from a genuine zero so defaults apply only
// where the model left a gap.
type evaluationWire struct {
	Correctness *float64 `json:"correctness"`
	Depth       *float64 `json:"depth"`
	Clarity     *float64 `json:"clarity"`
	Relevance   *float64 `json:"relevance"`
	Comment     string   `json:"comment"`
}

// Evaluate scores an answer against the question and job context. It never
// fails: malformed fields default to neutral, and any generation error
// yields a fully neutral evaluation so the turn always completes.
func (e *Evaluator) Evaluate(ctx context.Context, jobText, questionText, answerText, skill string) types.Evaluation {
	prompt := buildEvaluationPrompt(jobText, questionText, answerText, skill)

	doc, err := e.gen.GenerateJSON(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		e.log.Warn("answer evaluation failed, using neutral scores", zap.Error(err))
		return neutralEvaluation()
	}

	var wire evaluationWire
	if err := json.Unmarshal([]byte(doc), &wire); err != nil {
		e.log.Warn("evaluation response not parseable, using neutral scores", zap.Error(err))
		return neutralEvaluation()
	}

	eval := types.Evaluation{
		Scores: types.Scores{
			Correctness: scoreOrNeutral(wire.Correctness),
			Depth:       scoreOrNeutral(wire.Depth),
			Clarity:     scoreOrNeutral(wire.Clarity),
			Relevance:   scoreOrNeutral(wire.Relevance),
		}.Clamp(),
		Comment: wire.Comment,
	}
	if eval.Comment == "" {
		eval.Comment = "Answer received and evaluated."
	}
	return eval
}

// Classify maps scores to a quality label using fixed thresholds on the
// mean of correctness, depth, and relevance.
func Classify(scores types.Scores) types.Quality {
	mean := scores.ContentMean()
	switch {
	case mean >= 4.0:
		return types.QualityStrong
	case mean >= 2.5:
		return types.QualityPartial
	default:
		return types.QualityWeak
	}
}

func buildEvaluationPrompt(jobText, questionText, answerText, skill string) string {
	skillLine := ""
	if skill != "" {
		skillLine = "\nSKILL BEING ASSESSED: " + skill + "\n"
	}
	return prompts.Format(prompts.MustGet("evaluation.json", "evaluate-answer"), map[string]string{
		"JobText":      truncateRunes(jobText, jobTextPromptLimit),
		"QuestionText": questionText,
		"AnswerText":   answerText,
		"SkillLine":    skillLine,
	})
}

func neutralEvaluation() types.Evaluation {
	return types.Evaluation{
		Scores:  types.NeutralScores(),
		Comment: "Answer evaluated.",
	}
}

func scoreOrNeutral(v *float64) float64 {
	if v == nil {
		return types.NeutralScore
	}
	return *v
}

func truncateRunes(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
