package conversation

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/prompts"
	"github.com/jonathan/interview-agent/internal/question"
	"github.com/jonathan/interview-agent/internal/types"
)

// MaxFeedbackChars caps the quick verbal acknowledgment between questions.
const MaxFeedbackChars = 50

const (
	feedbackQuestionLimit = 200
	feedbackAnswerLimit   = 300
)

var strongFeedback = []string{
	"Great answer!",
	"That's exactly right.",
	"Well explained.",
	"Perfect, thank you.",
}

var partialFeedback = []string{
	"Good start.",
	"You're on the right track.",
	"That covers part of it.",
	"Interesting point.",
}

var weakFeedback = []string{
	"Let me rephrase that.",
	"Let's try a different angle.",
	"I think there's some confusion here.",
	"Let me clarify.",
}

// Feedback generates the brief spoken acknowledgment for the decomposed
// turn path. It never fails: short-circuit or generation errors pick a
// fixed phrase keyed off the skill so consecutive skills still vary.
func (p *Processor) Feedback(ctx context.Context, questionText, answerText string, quality types.Quality, skill string) string {
	if p.gen.ShortCircuited() {
		return FallbackFeedback(quality, skill)
	}

	skillLine := ""
	if skill != "" {
		skillLine = "\nSKILL: " + skill + "\n"
	}
	prompt := prompts.Format(prompts.MustGet("conversation.json", "feedback"), map[string]string{
		"QuestionText": truncateRunes(questionText, feedbackQuestionLimit),
		"AnswerText":   truncateRunes(answerText, feedbackAnswerLimit),
		"Quality":      string(quality),
		"SkillLine":    skillLine,
	})

	text, err := p.gen.GenerateText(ctx, llm.Request{Prompt: prompt, MaxTokens: 64})
	if err != nil {
		p.log.Warn("feedback generation failed, serving phrase", zap.Error(err))
		return FallbackFeedback(quality, skill)
	}

	text = llm.TrimQuotes(text)
	if text == "" {
		return FallbackFeedback(quality, skill)
	}
	return question.Truncate(text, MaxFeedbackChars)
}

// FallbackFeedback picks the offline acknowledgment phrase for a quality.
func FallbackFeedback(quality types.Quality, skill string) string {
	switch quality {
	case types.QualityStrong:
		return pickPhrase(skill, strongFeedback)
	case types.QualityPartial:
		return pickPhrase(skill, partialFeedback)
	default:
		return pickPhrase(skill, weakFeedback)
	}
}
