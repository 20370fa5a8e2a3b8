package interview

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-agent/internal/cache"
	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/types"
)

// scriptedGenerator returns canned responses per call and can simulate the
// dispatcher's quota short-circuit.
type scriptedGenerator struct {
	responses      []string
	err            error
	shortCircuited bool
	calls          int
}

func (f *scriptedGenerator) next() (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	idx := f.calls - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	if idx < 0 {
		return "", llm.ErrUnavailable
	}
	return f.responses[idx], nil
}

func (f *scriptedGenerator) GenerateText(ctx context.Context, req llm.Request) (string, error) {
	return f.next()
}

func (f *scriptedGenerator) GenerateJSON(ctx context.Context, req llm.Request) (string, error) {
	return f.next()
}

func (f *scriptedGenerator) ShortCircuited() bool { return f.shortCircuited }

func testReqs() types.JobRequirements {
	return types.JobRequirements{
		MustHave:   []string{"Go", "Kubernetes", "PostgreSQL"},
		GoodToHave: []string{"gRPC"},
	}
}

func testProfile() types.CandidateProfile {
	return types.CandidateProfile{
		Skills:          []string{"Go", "Docker"},
		ExperienceYears: 3,
		Projects:        []types.Project{{Title: "payments api"}},
	}
}

func newOfflineEngine(t *testing.T) (*Engine, *scriptedGenerator) {
	t.Helper()
	gen := &scriptedGenerator{err: llm.ErrUnavailable}
	e := NewEngine(gen, cache.New("plans", time.Hour, nil), cache.New("questions", time.Hour, nil), nil)
	return e, gen
}

func startOfflineSession(t *testing.T) (*Engine, *Session) {
	t.Helper()
	e, _ := newOfflineEngine(t)
	s := e.StartSession(context.Background(), "Backend engineer, Go and Kubernetes", testReqs(), testProfile())
	return e, s
}

func TestStartSessionAlwaysYieldsValidPlan(t *testing.T) {
	_, s := startOfflineSession(t)
	require.NotNil(t, s.Plan)
	assert.NotEmpty(t, s.ID)
	assert.GreaterOrEqual(t, len(s.Plan.Items), types.MinPlanItems)
	assert.Equal(t, types.TypeIntroduction, s.Plan.Items[0].Type)
}

func TestNextQuestionWalksThePlan(t *testing.T) {
	e, s := startOfflineSession(t)

	q, ok := e.NextQuestion(context.Background(), s)
	require.True(t, ok)
	assert.Equal(t, types.TypeIntroduction, q.Type)
	assert.Equal(t, 1, q.Number)
	assert.NotEmpty(t, q.Text)
}

func TestInterviewRunsToCompletion(t *testing.T) {
	e, s := startOfflineSession(t)

	answer := strings.Repeat("I have solid production experience with this topic ", 4)
	turns := 0
	for {
		q, ok := e.NextQuestion(context.Background(), s)
		if !ok {
			break
		}
		require.NotEmpty(t, q.Text)
		result := e.ProcessAnswer(context.Background(), s, answer)
		require.True(t, result.Quality.Valid())
		require.True(t, result.NextAction.Valid())
		turns++
		require.LessOrEqual(t, turns, MaxQuestions, "hard question ceiling")
	}

	assert.True(t, s.Finished())
	assert.NotEmpty(t, s.History())
	assert.Len(t, s.Evaluations(), turns)
}

func TestFollowUpNeverExceedsQuestionCeiling(t *testing.T) {
	e, s := startOfflineSession(t)

	// Every answer is short and weak, so the engine wants a follow-up on
	// every single turn.
	answer := "Pods run containers on nodes for workloads"
	turns := 0
	var last types.TurnResult
	for {
		_, ok := e.NextQuestion(context.Background(), s)
		if !ok {
			break
		}
		last = e.ProcessAnswer(context.Background(), s, answer)
		turns++
		require.LessOrEqual(t, turns, MaxQuestions, "hard question ceiling")
	}

	assert.Equal(t, MaxQuestions, s.QuestionsAsked())
	assert.NotEqual(t, types.ActionFollowUp, last.NextAction, "no follow-up issued at the ceiling")
	assert.Empty(t, last.FollowUpQuestion)
}

func TestSkillDeclineSkipsLaterPlanItems(t *testing.T) {
	e, s := startOfflineSession(t)

	// Walk to the first Kubernetes question.
	var q Question
	var ok bool
	for {
		q, ok = e.NextQuestion(context.Background(), s)
		require.True(t, ok)
		if q.Skill == "Kubernetes" {
			break
		}
		e.ProcessAnswer(context.Background(), s, strings.Repeat("detailed answer about the topic at hand here ", 4))
	}

	result := e.ProcessAnswer(context.Background(), s, "I don't have experience with Kubernetes")
	assert.Equal(t, types.QualitySkipSkill, result.Quality)
	assert.Equal(t, types.ActionEndTopic, result.NextAction)
	assert.Equal(t, "Kubernetes", result.SkillToSkip)
	assert.Contains(t, s.DeclinedSkills(), "Kubernetes")

	// No later question may target the declined skill.
	for {
		q, ok = e.NextQuestion(context.Background(), s)
		if !ok {
			break
		}
		assert.NotEqual(t, "Kubernetes", q.Skill)
		e.ProcessAnswer(context.Background(), s, strings.Repeat("detailed answer about the topic at hand here ", 4))
	}
}

func TestWeakAnswerGetsFollowUpThenCapApplies(t *testing.T) {
	e, s := startOfflineSession(t)

	// Move past the introduction to a skill question.
	var q Question
	for {
		var ok bool
		q, ok = e.NextQuestion(context.Background(), s)
		require.True(t, ok)
		if q.Type == types.TypeTechnical {
			break
		}
		e.ProcessAnswer(context.Background(), s, strings.Repeat("long detailed introduction about my background here ", 3))
	}

	shortAnswer := "Some container things basically for running stuff"

	first := e.ProcessAnswer(context.Background(), s, shortAnswer)
	require.Equal(t, types.QualityWeak, first.Quality)
	require.Equal(t, types.ActionFollowUp, first.NextAction)
	require.NotEmpty(t, first.FollowUpQuestion)

	followUp, ok := e.NextQuestion(context.Background(), s)
	require.True(t, ok)
	assert.True(t, followUp.IsFollowUp)
	assert.Equal(t, first.FollowUpQuestion, followUp.Text)
	assert.Equal(t, q.Skill, followUp.Skill, "follow-up stays on the same skill")

	second := e.ProcessAnswer(context.Background(), s, shortAnswer)
	require.Equal(t, types.ActionFollowUp, second.NextAction)
	e.NextQuestion(context.Background(), s)

	third := e.ProcessAnswer(context.Background(), s, shortAnswer)
	assert.Equal(t, types.ActionContinue, third.NextAction, "cap reached, engine advances")
	assert.Empty(t, third.FollowUpQuestion)
}

func TestReportFromOfflineInterview(t *testing.T) {
	e, s := startOfflineSession(t)

	for {
		_, ok := e.NextQuestion(context.Background(), s)
		if !ok {
			break
		}
		e.ProcessAnswer(context.Background(), s, strings.Repeat("thorough answer covering the question in depth ", 4))
	}

	report, score := e.Report(context.Background(), s)
	assert.True(t, report.Recommendation.Valid())
	assert.NotEmpty(t, report.Report)
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
}

func TestReportEmptySession(t *testing.T) {
	e, s := startOfflineSession(t)
	report, score := e.Report(context.Background(), s)
	assert.Equal(t, types.RecommendReject, report.Recommendation)
	assert.Zero(t, score)
}

// quotaBackend always fails with a quota error, standing in for a provider
// whose daily ceiling is exhausted.
type quotaBackend struct {
	name  string
	calls int
}

func (b *quotaBackend) Name() string   { return b.name }
func (b *quotaBackend) Tier() llm.Tier { return llm.TierPrimary }
func (b *quotaBackend) Close() error   { return nil }

func (b *quotaBackend) GenerateText(ctx context.Context, req llm.Request) (string, error) {
	b.calls++
	return "", &llm.QuotaError{Backend: b.name}
}

func (b *quotaBackend) GenerateJSON(ctx context.Context, req llm.Request) (string, error) {
	return b.GenerateText(ctx, req)
}

func TestQuotaExhaustionShortCircuitsWholeInterview(t *testing.T) {
	backend := &quotaBackend{name: "gemini"}
	dispatcher := llm.NewDispatcher(nil, backend)

	e := NewEngine(dispatcher, cache.New("plans", time.Hour, nil), cache.New("questions", time.Hour, nil), nil)

	s := e.StartSession(context.Background(), "Backend engineer role", testReqs(), testProfile())
	require.NotNil(t, s.Plan, "plan generation degrades to the offline plan")
	require.True(t, dispatcher.ShortCircuited(), "two consecutive quota errors trip the circuit")
	callsAfterPlan := backend.calls

	q, ok := e.NextQuestion(context.Background(), s)
	require.True(t, ok)
	require.NotEmpty(t, q.Text)

	result := e.ProcessAnswer(context.Background(), s, "A short answer about things")
	require.True(t, result.Quality.Valid())
	require.True(t, result.NextAction.Valid())
	require.NotEmpty(t, result.SpokenResponse)

	assert.Equal(t, callsAfterPlan, backend.calls,
		"after the short-circuit no further backend calls are made")
}

func TestPreviousContextAdaptsDifficulty(t *testing.T) {
	assert.Empty(t, previousContext(nil))

	weak := previousContext([]types.Evaluation{{Scores: types.Scores{Correctness: 1, Depth: 1, Clarity: 1, Relevance: 1}}})
	assert.Contains(t, weak, "easier")

	strong := previousContext([]types.Evaluation{{Scores: types.Scores{Correctness: 5, Depth: 5, Clarity: 5, Relevance: 5}}})
	assert.Contains(t, strong, "increasing difficulty")
}
