// Package followup decides when and how to probe an unsatisfying answer.
// The policy itself is deterministic; only the follow-up question text goes
// through generation, with fixed templates behind it.
package followup

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/prompts"
	"github.com/jonathan/interview-agent/internal/question"
	"github.com/jonathan/interview-agent/internal/types"
)

// MaxFollowUps caps probing per skill. After that the engine advances no
// matter how the candidate is doing, so one skill can never loop forever.
const MaxFollowUps = 2

const answerPromptLimit = 300

// Strategy names the kind of follow-up to ask.
type Strategy string

// Follow-up strategies.
const (
	StrategySimplify Strategy = "simplify"
	StrategyRephrase Strategy = "rephrase"
	StrategyHint     Strategy = "hint"
)

// ShouldFollowUp reports whether the answer warrants another probe: only
// weak or partial answers, and only while the per-skill counter is under
// the cap.
func ShouldFollowUp(quality types.Quality, followUpCount, maxFollowUps int) bool {
	if followUpCount >= maxFollowUps {
		return false
	}
	return quality == types.QualityWeak || quality == types.QualityPartial
}

// PickStrategy selects the follow-up kind: the first probe simplifies a
// weak answer or rephrases a partial one, every later probe hints.
func PickStrategy(followUpCount int, quality types.Quality) Strategy {
	if followUpCount == 0 {
		if quality == types.QualityWeak {
			return StrategySimplify
		}
		return StrategyRephrase
	}
	return StrategyHint
}

// Generator produces follow-up question text.
type Generator struct {
	gen llm.Generator
	log *zap.Logger
}

// NewGenerator creates a follow-up generator over the dispatcher.
func NewGenerator(gen llm.Generator, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{gen: gen, log: log}
}

// Generate produces the follow-up question for the chosen strategy. It never
// fails: short-circuit or generation errors fall back to a fixed per-strategy
// template personalized by skill.
func (g *Generator) Generate(ctx context.Context, originalQuestion, answerText, skill string, strategy Strategy) string {
	if g.gen.ShortCircuited() {
		return FallbackFollowUp(skill, strategy)
	}

	prompt := prompts.Format(prompts.MustGet("followup.json", "follow-up"), map[string]string{
		"OriginalQuestion": originalQuestion,
		"AnswerText":       truncateRunes(answerText, answerPromptLimit),
		"Skill":            skill,
		"Strategy":         string(strategy),
	})

	text, err := g.gen.GenerateText(ctx, llm.Request{Prompt: prompt, MaxTokens: 256})
	if err != nil {
		g.log.Warn("follow-up generation failed, serving template",
			zap.String("strategy", string(strategy)), zap.Error(err))
		return FallbackFollowUp(skill, strategy)
	}

	text = llm.TrimQuotes(text)
	if text == "" {
		return FallbackFollowUp(skill, strategy)
	}
	return question.Truncate(text, question.MaxQuestionChars)
}

// FallbackFollowUp is the offline follow-up for each strategy.
func FallbackFollowUp(skill string, strategy Strategy) string {
	if skill == "" {
		skill = "this topic"
	}
	switch strategy {
	case StrategySimplify:
		return fmt.Sprintf("Let me ask something more basic: Can you explain what %s is and why it's important?", skill)
	case StrategyRephrase:
		return fmt.Sprintf("Let me ask that differently: In your own words, how would you describe %s?", skill)
	default:
		return fmt.Sprintf("Here's a hint: Think about how %s is commonly used in real projects. Can you give me an example?", skill)
	}
}

func truncateRunes(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
