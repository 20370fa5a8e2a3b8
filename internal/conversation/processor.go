// Package conversation processes candidate answers in a single round trip:
// scoring, spoken feedback, and next-action selection come back together,
// then pass through the same normalization as the decomposed evaluation
// path. A fully offline heuristic tier answers when every backend is out.
package conversation

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/interview-agent/internal/evaluation"
	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/prompts"
	"github.com/jonathan/interview-agent/internal/question"
	"github.com/jonathan/interview-agent/internal/types"
)

const (
	// MaxSpokenChars caps the spoken response for speech synthesis pacing.
	MaxSpokenChars = 200

	jobContextPromptLimit   = 400
	historyQuestionLimit    = 100
	historyAnswerLimit      = 150
	genericFollowUpQuestion = "Could you elaborate a bit more on that?"
)

// Request carries one answer through the unified processor.
type Request struct {
	AnswerText     string
	QuestionText   string
	Skill          string
	QuestionType   types.QuestionType
	JobContext     string
	History        []types.ConversationTurn
	DeclinedSkills []string
}

// Processor runs the unified conversation call.
type Processor struct {
	gen llm.Generator
	log *zap.Logger
}

// NewProcessor creates a processor over the dispatcher.
func NewProcessor(gen llm.Generator, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{gen: gen, log: log}
}

// turnWire mirrors the structured result. Pointer fields distinguish absent
// from zero so defaults apply only to genuine gaps.
type turnWire struct {
	SpokenResponse   *string     `json:"spoken_response"`
	Scores           *scoresWire `json:"scores"`
	Quality          *string     `json:"answer_quality"`
	NextAction       *string     `json:"next_action"`
	FollowUpQuestion *string     `json:"follow_up_question"`
	SkillToSkip      *string     `json:"skill_to_skip"`
	Notes            *string     `json:"internal_notes"`
}

type scoresWire struct {
	Correctness *float64 `json:"correctness"`
	Depth       *float64 `json:"depth"`
	Clarity     *float64 `json:"clarity"`
	Relevance   *float64 `json:"relevance"`
}

// Process evaluates the answer, produces the spoken response, and selects
// the next action in one generation call. It never fails: the structured
// result is normalized field by field, and any generation or parse error
// drops to the offline heuristic. The returned turn is always valid and the
// spoken response always fits the speech ceiling.
func (p *Processor) Process(ctx context.Context, req Request) types.TurnResult {
	if p.gen.ShortCircuited() {
		p.log.Warn("processing answer offline, quota short-circuit active")
		return Heuristic(req)
	}

	prompt := buildProcessPrompt(req)
	doc, err := p.gen.GenerateJSON(ctx, llm.Request{Prompt: prompt, MaxTokens: 512})
	if err != nil {
		p.log.Warn("unified processing failed, using heuristic", zap.Error(err))
		return Heuristic(req)
	}

	var wire turnWire
	if err := json.Unmarshal([]byte(doc), &wire); err != nil {
		p.log.Warn("unified response not parseable, using heuristic", zap.Error(err))
		return Heuristic(req)
	}

	result := normalize(wire)
	p.log.Debug("answer processed",
		zap.String("quality", string(result.Quality)),
		zap.String("next_action", string(result.NextAction)))
	return result
}

// normalize applies the same defaulting as the decomposed evaluation path:
// scores clamp to range with neutral gaps, a missing quality is classified
// from the scores, and a follow_up action always carries a question.
func normalize(wire turnWire) types.TurnResult {
	var result types.TurnResult

	result.SpokenResponse = "I see. Let me note that down."
	if wire.SpokenResponse != nil && *wire.SpokenResponse != "" {
		result.SpokenResponse = question.Truncate(*wire.SpokenResponse, MaxSpokenChars)
	}

	scores := types.NeutralScores()
	if wire.Scores != nil {
		scores = types.Scores{
			Correctness: scoreOrNeutral(wire.Scores.Correctness),
			Depth:       scoreOrNeutral(wire.Scores.Depth),
			Clarity:     scoreOrNeutral(wire.Scores.Clarity),
			Relevance:   scoreOrNeutral(wire.Scores.Relevance),
		}
	}
	result.Scores = scores.Clamp()

	switch {
	case wire.Quality == nil:
		result.Quality = evaluation.Classify(result.Scores)
	case types.Quality(*wire.Quality).Valid():
		result.Quality = types.Quality(*wire.Quality)
	default:
		result.Quality = types.QualityPartial
	}

	result.NextAction = types.ActionContinue
	if wire.NextAction != nil && types.NextAction(*wire.NextAction).Valid() {
		result.NextAction = types.NextAction(*wire.NextAction)
	}

	if wire.FollowUpQuestion != nil {
		result.FollowUpQuestion = *wire.FollowUpQuestion
	}
	if result.NextAction == types.ActionFollowUp && result.FollowUpQuestion == "" {
		result.FollowUpQuestion = genericFollowUpQuestion
	}

	if wire.SkillToSkip != nil {
		result.SkillToSkip = *wire.SkillToSkip
	}

	result.Notes = "Answer quality: " + string(result.Quality)
	if wire.Notes != nil && *wire.Notes != "" {
		result.Notes = *wire.Notes
	}

	return result
}

func buildProcessPrompt(req Request) string {
	historySection := "(This is the first question)"
	if len(req.History) > 0 {
		var lines []string
		for _, turn := range req.History {
			skill := turn.Skill
			if skill == "" {
				skill = "unknown"
			}
			lines = append(lines, "Q ("+skill+"): "+truncateRunes(turn.QuestionText, historyQuestionLimit))
			lines = append(lines, "A: "+truncateRunes(turn.AnswerText, historyAnswerLimit))
		}
		historySection = "CONVERSATION HISTORY (ALL previous Q&A):\n" + strings.Join(lines, "\n")
	}

	declinedSection := ""
	if len(req.DeclinedSkills) > 0 {
		declinedSection = "\nSKILLS CANDIDATE SAID THEY DON'T KNOW: " + strings.Join(req.DeclinedSkills, ", ") + "\n"
	}

	skill := req.Skill
	if skill == "" {
		skill = "General"
	}

	return prompts.Format(prompts.MustGet("conversation.json", "process-answer"), map[string]string{
		"QuestionText":    req.QuestionText,
		"Skill":           skill,
		"QuestionType":    string(req.QuestionType),
		"AnswerText":      req.AnswerText,
		"JobContext":      truncateRunes(req.JobContext, jobContextPromptLimit),
		"HistorySection":  historySection,
		"DeclinedSection": declinedSection,
	})
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
