package question

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-agent/internal/cache"
	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/types"
)

type fakeGenerator struct {
	responses      []string
	err            error
	shortCircuited bool
	calls          int
	lastPrompt     string
}

func (f *fakeGenerator) GenerateText(ctx context.Context, req llm.Request) (string, error) {
	f.calls++
	f.lastPrompt = req.Prompt
	if f.err != nil {
		return "", f.err
	}
	idx := f.calls - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return f.responses[idx], nil
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, req llm.Request) (string, error) {
	return f.GenerateText(ctx, req)
}

func (f *fakeGenerator) ShortCircuited() bool { return f.shortCircuited }

func newTestSynthesizer(t *testing.T, gen llm.Generator) *Synthesizer {
	t.Helper()
	return NewSynthesizer(gen, cache.New("questions", time.Hour, nil), nil)
}

func technicalItem() types.PlanItem {
	return types.PlanItem{
		Type:       types.TypeTechnical,
		Skill:      "Go",
		Difficulty: types.DifficultyMedium,
		Focus:      "Concurrency fundamentals",
	}
}

func TestGenerateReturnsModelText(t *testing.T) {
	fake := &fakeGenerator{responses: []string{`"How do goroutines communicate safely?"`}}
	s := newTestSynthesizer(t, fake)

	text := s.Generate(context.Background(), Request{Item: technicalItem()})
	assert.Equal(t, "How do goroutines communicate safely?", text)
	assert.Contains(t, fake.lastPrompt, "Go")
	assert.Contains(t, fake.lastPrompt, "Concurrency fundamentals")
}

func TestGenerateTruncatesLongQuestions(t *testing.T) {
	long := strings.Repeat("explain the concept in detail ", 30)
	fake := &fakeGenerator{responses: []string{long}}
	s := newTestSynthesizer(t, fake)

	text := s.Generate(context.Background(), Request{Item: technicalItem()})
	assert.LessOrEqual(t, utf8.RuneCountInString(text), MaxQuestionChars)
	assert.True(t, strings.HasSuffix(text, "..."))
}

func TestGenerateCachesResult(t *testing.T) {
	fake := &fakeGenerator{responses: []string{"What is a channel?"}}
	s := newTestSynthesizer(t, fake)
	req := Request{Item: technicalItem(), JobText: "Backend role using Go"}

	first := s.Generate(context.Background(), req)
	second := s.Generate(context.Background(), req)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fake.calls)
}

func TestGenerateFallsBackOnError(t *testing.T) {
	fake := &fakeGenerator{err: errors.New("backend unreachable")}
	s := newTestSynthesizer(t, fake)

	text := s.Generate(context.Background(), Request{Item: technicalItem(), Templates: NewTemplateSet()})
	assert.NotEmpty(t, text)
	assert.Contains(t, text, "Go", "fallback personalizes by the item's skill")
	assert.LessOrEqual(t, utf8.RuneCountInString(text), MaxQuestionChars)
}

func TestGenerateSkipsBackendsWhenShortCircuited(t *testing.T) {
	fake := &fakeGenerator{shortCircuited: true, responses: []string{"unused"}}
	s := newTestSynthesizer(t, fake)

	text := s.Generate(context.Background(), Request{Item: technicalItem(), Templates: NewTemplateSet()})
	assert.NotEmpty(t, text)
	assert.Zero(t, fake.calls)
}

func TestGenerateUniqueRegeneratesSimilarQuestions(t *testing.T) {
	asked := []string{"Can you walk me through how you've used Go in your projects?"}
	fake := &fakeGenerator{responses: []string{
		"Can you walk me through how you've used Go in your projects?",
		"How would you diagnose a goroutine leak in production?",
	}}
	s := newTestSynthesizer(t, fake)

	text := s.GenerateUnique(context.Background(), Request{Item: technicalItem()}, asked)
	assert.Equal(t, "How would you diagnose a goroutine leak in production?", text)
	assert.Equal(t, 2, fake.calls)
	assert.Contains(t, fake.lastPrompt, "too similar")
}

func TestGenerateUniqueAcceptsAfterMaxAttempts(t *testing.T) {
	repeat := "Can you walk me through how you've used Go in your projects?"
	fake := &fakeGenerator{responses: []string{repeat}}
	s := newTestSynthesizer(t, fake)

	text := s.GenerateUnique(context.Background(), Request{Item: technicalItem()}, []string{repeat})
	assert.Equal(t, repeat, text, "a still-similar question is accepted rather than stalling")
	assert.Equal(t, 4, fake.calls, "initial generation plus three retries")
}

func TestOverlap(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		similar bool
	}{
		{"identical", "what is a goroutine", "what is a goroutine", true},
		{"near duplicate", "tell me about your experience with docker containers", "tell me about your experience with docker", true},
		{"different topic", "what is a goroutine and how does it differ from a thread", "describe a project where you led the team", false},
		{"empty", "", "what is a goroutine", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlap(tt.a, tt.b) > similarityThreshold
			assert.Equal(t, tt.similar, got)
		})
	}
}

func TestFallbackQuestionVariesWithinSession(t *testing.T) {
	seen := NewTemplateSet()
	item := types.PlanItem{Type: types.TypeBehavioral, Difficulty: types.DifficultyBasic, Focus: "teamwork"}

	first := FallbackQuestion(item, "", types.CandidateProfile{}, seen)
	second := FallbackQuestion(item, "", types.CandidateProfile{}, seen)
	assert.NotEqual(t, first, second)
}

func TestFallbackQuestionDifficultyBank(t *testing.T) {
	seen := NewTemplateSet()
	item := technicalItem()
	item.Difficulty = types.DifficultyAdvanced

	text := FallbackQuestion(item, "", types.CandidateProfile{}, seen)
	assert.Contains(t, text, "Go")
}

func TestFallbackQuestionExperienceSplit(t *testing.T) {
	item := types.PlanItem{Type: types.TypeProject, Difficulty: types.DifficultyMedium, Focus: "projects"}

	senior := FallbackQuestion(item, "", types.CandidateProfile{ExperienceYears: 6}, NewTemplateSet())
	assert.Contains(t, seniorProjectTemplates, senior)

	junior := FallbackQuestion(item, "", types.CandidateProfile{ExperienceYears: 1}, NewTemplateSet())
	assert.Contains(t, juniorProjectTemplates, junior)
}

func TestTargetSkillResolution(t *testing.T) {
	item := types.PlanItem{Type: types.TypeTechnical, Difficulty: types.DifficultyBasic, Focus: "x"}

	t.Run("from job text", func(t *testing.T) {
		skill := targetSkill(item, "We deploy everything with Docker and Kubernetes", types.CandidateProfile{})
		assert.Equal(t, "docker", skill)
	})

	t.Run("from profile", func(t *testing.T) {
		skill := targetSkill(item, "", types.CandidateProfile{Skills: []string{"Rust"}})
		assert.Equal(t, "Rust", skill)
	})

	t.Run("generic default", func(t *testing.T) {
		skill := targetSkill(item, "", types.CandidateProfile{})
		assert.Equal(t, "programming", skill)
	})
}

func TestTruncatePreservesShortText(t *testing.T) {
	require.Equal(t, "short", Truncate("short", MaxQuestionChars))
}
