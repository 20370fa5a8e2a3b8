// Package question turns plan items into spoken interview questions, with a
// per-type prompt strategy, a hard length ceiling for speech synthesis, and
// an offline template bank.
package question

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jonathan/interview-agent/internal/cache"
	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/prompts"
	"github.com/jonathan/interview-agent/internal/types"
)

const (
	// MaxQuestionChars is the ceiling imposed by the downstream speech
	// synthesis interface.
	MaxQuestionChars = 400

	// maxUniqueAttempts bounds regeneration when a question duplicates an
	// earlier one. After that the similar question is accepted rather than
	// stalling the interview.
	maxUniqueAttempts = 3

	jobTextPromptLimit = 300
	jobTextKeyLimit    = 200
	skillsPromptLimit  = 10
	skillsKeyLimit     = 5
)

// Synthesizer generates question text for plan items.
type Synthesizer struct {
	gen   llm.Generator
	cache *cache.Cache
	log   *zap.Logger
}

// NewSynthesizer creates a synthesizer over the dispatcher and question
// cache.
func NewSynthesizer(gen llm.Generator, questionCache *cache.Cache, log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{gen: gen, cache: questionCache, log: log}
}

// Request carries everything a single question generation needs.
type Request struct {
	Item            types.PlanItem
	JobText         string
	Profile         types.CandidateProfile
	TurnIndex       int
	PreviousContext string

	// Templates is the session's fallback selection state, so offline
	// phrasings vary across turns. Optional.
	Templates *TemplateSet
}

// Generate produces the question text for a plan item. It never fails: on
// quota short-circuit or any generation error the template bank answers
// instead, and that fallback is cached like a generated question.
func (s *Synthesizer) Generate(ctx context.Context, req Request) string {
	key := s.cacheKey(req)
	text := s.cache.GetOrCompute(key, func() any {
		return s.generate(ctx, req, "")
	})
	return text.(string)
}

// GenerateUnique is Generate plus the uniqueness guard: when the result
// duplicates a previously asked question (exact match or word overlap), it
// regenerates with an explicit too-similar instruction, bypassing the cache,
// up to maxUniqueAttempts. A still-similar question is accepted after that.
func (s *Synthesizer) GenerateUnique(ctx context.Context, req Request, asked []string) string {
	text := s.Generate(ctx, req)
	for attempt := 0; TooSimilar(text, asked) && attempt < maxUniqueAttempts; attempt++ {
		s.log.Info("question too similar, regenerating",
			zap.Int("attempt", attempt+1),
			zap.String("question", Truncate(text, 80)))
		text = s.generate(ctx, req, prompts.MustGet("question.json", "too-similar"))
	}
	return text
}

func (s *Synthesizer) generate(ctx context.Context, req Request, extraInstruction string) string {
	if s.gen.ShortCircuited() {
		s.log.Warn("skipping question generation, quota short-circuit active")
		return FallbackQuestion(req.Item, req.JobText, req.Profile, req.Templates)
	}

	prompt := s.buildPrompt(req) + extraInstruction
	text, err := s.gen.GenerateText(ctx, llm.Request{Prompt: prompt, MaxTokens: 256})
	if err != nil {
		s.log.Warn("question generation failed, serving template",
			zap.String("type", string(req.Item.Type)), zap.Error(err))
		return FallbackQuestion(req.Item, req.JobText, req.Profile, req.Templates)
	}

	text = llm.TrimQuotes(text)
	if text == "" {
		return FallbackQuestion(req.Item, req.JobText, req.Profile, req.Templates)
	}
	return Truncate(text, MaxQuestionChars)
}

// buildPrompt selects one of the four disjoint prompt strategies by plan
// item type.
func (s *Synthesizer) buildPrompt(req Request) string {
	item := req.Item

	var key string
	switch item.Type {
	case types.TypeIntroduction:
		key = "introduction"
	case types.TypeProject:
		key = "project"
	case types.TypeHR, types.TypeBehavioral:
		key = "behavioral"
	default:
		key = "technical"
	}

	contextSection := ""
	if req.PreviousContext != "" {
		contextSection = "\nCONTEXT: " + req.PreviousContext + "\n"
	}

	skill := item.Skill
	if skill == "" {
		skill = "their technical skills"
	}

	return prompts.Format(prompts.MustGet("question.json", key), map[string]string{
		"Skill":           skill,
		"JobText":         headRunes(req.JobText, jobTextPromptLimit),
		"Skills":          strings.Join(headStrings(req.Profile.Skills, skillsPromptLimit), ", "),
		"ExperienceYears": strconv.Itoa(req.Profile.ExperienceYears),
		"Focus":           item.Focus,
		"Difficulty":      string(item.Difficulty),
		"Context":         contextSection,
	})
}

// cacheKey hashes the plan item's identity, a job text prefix, and the
// candidate's top skills.
func (s *Synthesizer) cacheKey(req Request) string {
	return cache.Key(
		string(req.Item.Type),
		req.Item.Skill,
		string(req.Item.Difficulty),
		req.Item.Focus,
		headRunes(req.JobText, jobTextKeyLimit),
		strings.Join(headStrings(req.Profile.Skills, skillsKeyLimit), ","),
	)
}

// Truncate caps text at max characters, marking the cut with an ellipsis.
func Truncate(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max-3]) + "..."
}

func headRunes(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}

func headStrings(values []string, max int) []string {
	if len(values) <= max {
		return values
	}
	return values[:max]
}
