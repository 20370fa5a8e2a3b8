// Package interview is the orchestration layer: it composes the plan
// generator, question synthesizer, unified conversation processor, follow-up
// policy, and report generator into a turn-by-turn engine. Every operation
// degrades to an offline path, so an interview always runs to completion.
package interview

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/jonathan/interview-agent/internal/cache"
	"github.com/jonathan/interview-agent/internal/conversation"
	"github.com/jonathan/interview-agent/internal/evaluation"
	"github.com/jonathan/interview-agent/internal/followup"
	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/planner"
	"github.com/jonathan/interview-agent/internal/question"
	"github.com/jonathan/interview-agent/internal/types"
)

// Question is what the engine asks the candidate on one turn.
type Question struct {
	Text       string
	Skill      string
	Type       types.QuestionType
	Difficulty types.Difficulty
	Number     int
	Total      int
	IsFollowUp bool
}

// Engine drives interview sessions. One engine serves many concurrent
// sessions; the dispatcher's quota state and both caches are shared across
// all of them.
type Engine struct {
	plans     *planner.Generator
	questions *question.Synthesizer
	processor *conversation.Processor
	followUps *followup.Generator
	evaluator *evaluation.Evaluator
	log       *zap.Logger
}

// NewEngine wires the engine over one dispatcher and the two process-wide
// caches.
func NewEngine(gen llm.Generator, planCache, questionCache *cache.Cache, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		plans:     planner.NewGenerator(gen, planCache, log),
		questions: question.NewSynthesizer(gen, questionCache, log),
		processor: conversation.NewProcessor(gen, log),
		followUps: followup.NewGenerator(gen, log),
		evaluator: evaluation.NewEvaluator(gen, log),
		log:       log,
	}
}

// StartSession generates the interview plan and opens a session over it.
func (e *Engine) StartSession(ctx context.Context, jobText string, reqs types.JobRequirements, profile types.CandidateProfile) *Session {
	plan := e.plans.GeneratePlan(ctx, jobText, reqs, profile)
	session := newSession(jobText, reqs, profile, plan)
	e.log.Info("interview session started",
		zap.String("session_id", session.ID),
		zap.Int("plan_items", len(plan.Items)))
	return session
}

// NextQuestion produces the next question for the session, skipping plan
// items for skills the candidate has declined. The second return value is
// false when the interview is over (plan exhausted or the question ceiling
// reached). A pending follow-up takes priority over the plan.
func (e *Engine) NextQuestion(ctx context.Context, s *Session) (Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return Question{}, false
	}

	// An unanswered follow-up from the previous turn is the next question.
	if s.current != nil {
		return Question{
			Text:       s.current.Text,
			Skill:      s.current.Skill,
			Type:       s.current.Type,
			Difficulty: s.current.Difficulty,
			Number:     s.questionsAsked,
			Total:      len(s.Plan.Items),
			IsFollowUp: true,
		}, true
	}

	item, ok := e.advance(s)
	if !ok {
		s.finished = true
		e.log.Info("interview complete",
			zap.String("session_id", s.ID),
			zap.Int("questions_asked", s.questionsAsked))
		return Question{}, false
	}

	text := e.questions.GenerateUnique(ctx, question.Request{
		Item:            item,
		JobText:         s.JobText,
		Profile:         s.Profile,
		TurnIndex:       s.questionsAsked,
		PreviousContext: previousContext(s.evaluations),
		Templates:       s.templates,
	}, s.asked)

	s.current = &pending{
		Text:       text,
		Skill:      item.Skill,
		Type:       item.Type,
		Difficulty: item.Difficulty,
	}
	s.asked = append(s.asked, text)
	s.questionsAsked++

	return Question{
		Text:       text,
		Skill:      item.Skill,
		Type:       item.Type,
		Difficulty: item.Difficulty,
		Number:     s.questionsAsked,
		Total:      len(s.Plan.Items),
	}, true
}

// advance moves the plan cursor to the next item the session can use.
// Callers hold s.mu.
func (e *Engine) advance(s *Session) (types.PlanItem, bool) {
	if s.questionsAsked >= MaxQuestions {
		return types.PlanItem{}, false
	}
	for s.currentIndex < len(s.Plan.Items) {
		item := s.Plan.Items[s.currentIndex]
		s.currentIndex++
		if item.Skill != "" && s.declined[item.Skill] {
			e.log.Info("skipping declined skill",
				zap.String("session_id", s.ID),
				zap.String("skill", item.Skill))
			continue
		}
		return item, true
	}
	return types.PlanItem{}, false
}

// ProcessAnswer runs the candidate's answer through the unified processor,
// applies the follow-up policy, and records the turn. It always returns a
// valid turn result.
func (e *Engine) ProcessAnswer(ctx context.Context, s *Session, answerText string) types.TurnResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current
	if cur == nil {
		cur = &pending{Type: types.TypeTechnical}
	}
	s.resetFollowUpsFor(cur.Skill)

	result := e.processor.Process(ctx, conversation.Request{
		AnswerText:     answerText,
		QuestionText:   cur.Text,
		Skill:          cur.Skill,
		QuestionType:   cur.Type,
		JobContext:     s.JobText,
		History:        s.history,
		DeclinedSkills: declinedList(s.declined),
	})

	result = e.applyFollowUpPolicy(ctx, s, cur, answerText, result)

	if result.SkillToSkip != "" {
		s.declineSkill(result.SkillToSkip)
	}

	s.history = append(s.history, types.ConversationTurn{
		QuestionText: cur.Text,
		Skill:        cur.Skill,
		QuestionType: cur.Type,
		AnswerText:   answerText,
		Scores:       result.Scores,
		Quality:      result.Quality,
		NextAction:   result.NextAction,
	})
	s.evaluations = append(s.evaluations, types.Evaluation{
		Scores:  result.Scores,
		Comment: result.Notes,
	})

	if result.NextAction == types.ActionFollowUp {
		// The follow-up becomes the pending question for the next turn.
		s.current = &pending{
			Text:       result.FollowUpQuestion,
			Skill:      cur.Skill,
			Type:       cur.Type,
			Difficulty: cur.Difficulty,
		}
		s.asked = append(s.asked, result.FollowUpQuestion)
		s.questionsAsked++
	} else {
		s.current = nil
	}

	return result
}

// applyFollowUpPolicy reconciles the processor's suggested action with the
// deterministic policy: the question ceiling and the per-skill cap always
// win, and a warranted follow-up always carries a question. Callers hold
// s.mu.
func (e *Engine) applyFollowUpPolicy(ctx context.Context, s *Session, cur *pending, answerText string, result types.TurnResult) types.TurnResult {
	if result.NextAction != types.ActionFollowUp {
		return result
	}

	if s.questionsAsked >= MaxQuestions ||
		!followup.ShouldFollowUp(result.Quality, s.followUpCount, followup.MaxFollowUps) {
		result.NextAction = types.ActionContinue
		result.FollowUpQuestion = ""
		return result
	}

	if result.FollowUpQuestion == "" {
		strategy := followup.PickStrategy(s.followUpCount, result.Quality)
		result.FollowUpQuestion = e.followUps.Generate(ctx, cur.Text, answerText, cur.Skill, strategy)
	}
	s.followUpCount++
	return result
}

// EvaluateAnswer is the decomposed path: score the answer, classify it, and
// produce quick spoken feedback, without the unified processor's detections.
func (e *Engine) EvaluateAnswer(ctx context.Context, s *Session, questionText, answerText, skill string) (types.Evaluation, types.Quality, string) {
	eval := e.evaluator.Evaluate(ctx, s.JobText, questionText, answerText, skill)
	quality := evaluation.Classify(eval.Scores)
	feedback := e.processor.Feedback(ctx, questionText, answerText, quality, skill)
	return eval, quality, feedback
}

// Report finalizes the session: aggregates every evaluation into the 0-100
// score and produces the recommendation and narrative report.
func (e *Engine) Report(ctx context.Context, s *Session) (types.FinalReport, float64) {
	s.mu.Lock()
	evals := make([]types.Evaluation, len(s.evaluations))
	copy(evals, s.evaluations)
	s.finished = true
	s.mu.Unlock()

	score := evaluation.FinalScore(evals)
	report := e.evaluator.GenerateFinalReport(ctx, s.JobText, s.Profile, evals, score)
	e.log.Info("final report generated",
		zap.String("session_id", s.ID),
		zap.Float64("score", score),
		zap.String("recommendation", string(report.Recommendation)))
	return report, score
}

// previousContext summarizes the last answer's performance so question
// generation can adapt difficulty.
func previousContext(evals []types.Evaluation) string {
	if len(evals) == 0 {
		return ""
	}
	mean := evals[len(evals)-1].Scores.Mean()
	ctx := fmt.Sprintf("Previous answer scored %.1f/5. ", mean)
	switch {
	case mean < 2.5:
		ctx += "Consider asking an easier question or switching topics."
	case mean > 4.0:
		ctx += "Candidate is performing well, consider increasing difficulty."
	}
	return ctx
}

func declinedList(declined map[string]bool) []string {
	if len(declined) == 0 {
		return nil
	}
	out := make([]string, 0, len(declined))
	for skill := range declined {
		out = append(out, skill)
	}
	sort.Strings(out)
	return out
}
