package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/types"
)

type fakeGenerator struct {
	response       string
	err            error
	shortCircuited bool
	calls          int
	lastPrompt     string
}

func (f *fakeGenerator) GenerateText(ctx context.Context, req llm.Request) (string, error) {
	f.calls++
	f.lastPrompt = req.Prompt
	return f.response, f.err
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, req llm.Request) (string, error) {
	return f.GenerateText(ctx, req)
}

func (f *fakeGenerator) ShortCircuited() bool { return f.shortCircuited }

func kubernetesRequest(answer string) Request {
	return Request{
		AnswerText:   answer,
		QuestionText: "How do you manage deployments in Kubernetes?",
		Skill:        "Kubernetes",
		QuestionType: types.TypeTechnical,
		JobContext:   "Backend role with container orchestration",
	}
}

func TestProcessParsesStructuredResult(t *testing.T) {
	fake := &fakeGenerator{response: `{
		"spoken_response": "Great explanation, let's keep going.",
		"scores": {"correctness": 4.5, "depth": 4.0, "clarity": 4.0, "relevance": 4.5},
		"answer_quality": "strong",
		"next_action": "continue",
		"internal_notes": "Clear and accurate."
	}`}
	p := NewProcessor(fake, nil)

	result := p.Process(context.Background(), kubernetesRequest("We use rolling updates with health probes."))
	assert.Equal(t, types.QualityStrong, result.Quality)
	assert.Equal(t, types.ActionContinue, result.NextAction)
	assert.Equal(t, "Great explanation, let's keep going.", result.SpokenResponse)
	assert.Equal(t, 4.5, result.Scores.Correctness)
}

func TestProcessNormalizesPartialResult(t *testing.T) {
	fake := &fakeGenerator{response: `{"scores": {"correctness": 4.5, "depth": 4.5, "relevance": 4.5}}`}
	p := NewProcessor(fake, nil)

	result := p.Process(context.Background(), kubernetesRequest("Detailed answer."))
	assert.Equal(t, types.QualityStrong, result.Quality, "missing quality classified from scores")
	assert.Equal(t, types.NeutralScore, result.Scores.Clarity, "missing dimension defaults to neutral")
	assert.Equal(t, types.ActionContinue, result.NextAction)
	assert.NotEmpty(t, result.SpokenResponse)
	assert.NotEmpty(t, result.Notes)
}

func TestProcessSynthesizesMissingFollowUp(t *testing.T) {
	fake := &fakeGenerator{response: `{
		"spoken_response": "Hmm, let's dig into that.",
		"scores": {"correctness": 2.0, "depth": 1.5, "clarity": 2.0, "relevance": 2.0},
		"answer_quality": "weak",
		"next_action": "follow_up"
	}`}
	p := NewProcessor(fake, nil)

	result := p.Process(context.Background(), kubernetesRequest("Not sure."))
	assert.Equal(t, types.ActionFollowUp, result.NextAction)
	assert.Equal(t, genericFollowUpQuestion, result.FollowUpQuestion)
}

func TestProcessRejectsInvalidLabels(t *testing.T) {
	fake := &fakeGenerator{response: `{
		"spoken_response": "Noted.",
		"scores": {"correctness": 3, "depth": 3, "clarity": 3, "relevance": 3},
		"answer_quality": "amazing",
		"next_action": "restart_interview"
	}`}
	p := NewProcessor(fake, nil)

	result := p.Process(context.Background(), kubernetesRequest("Some answer here."))
	assert.Equal(t, types.QualityPartial, result.Quality)
	assert.Equal(t, types.ActionContinue, result.NextAction)
}

func TestProcessTruncatesSpokenResponse(t *testing.T) {
	long := strings.Repeat("that is a really thorough answer ", 20)
	fake := &fakeGenerator{response: `{"spoken_response": "` + long + `", "scores": {"correctness": 3, "depth": 3, "clarity": 3, "relevance": 3}, "answer_quality": "partial", "next_action": "continue"}`}
	p := NewProcessor(fake, nil)

	result := p.Process(context.Background(), kubernetesRequest("ok"))
	assert.LessOrEqual(t, utf8.RuneCountInString(result.SpokenResponse), MaxSpokenChars)
	assert.True(t, strings.HasSuffix(result.SpokenResponse, "..."))
}

func TestProcessFallsBackToHeuristic(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeGenerator
	}{
		{"generation error", &fakeGenerator{err: errors.New("unreachable")}},
		{"malformed JSON", &fakeGenerator{response: "sounds good to me"}},
		{"short-circuited", &fakeGenerator{shortCircuited: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProcessor(tt.fake, nil)
			result := p.Process(context.Background(), kubernetesRequest("I deploy with manifests and kubectl apply."))
			assert.True(t, result.Quality.Valid())
			assert.True(t, result.NextAction.Valid())
			assert.NotEmpty(t, result.SpokenResponse)
		})
	}
}

func TestProcessPromptCarriesHistoryAndDeclines(t *testing.T) {
	fake := &fakeGenerator{response: `{"spoken_response": "Ok.", "scores": {"correctness": 3, "depth": 3, "clarity": 3, "relevance": 3}, "answer_quality": "partial", "next_action": "continue"}`}
	p := NewProcessor(fake, nil)

	req := kubernetesRequest("We use Helm charts.")
	req.History = []types.ConversationTurn{{
		QuestionText: "Tell me about Docker.",
		Skill:        "Docker",
		AnswerText:   "I build multi-stage images.",
	}}
	req.DeclinedSkills = []string{"Terraform"}

	p.Process(context.Background(), req)
	assert.Contains(t, fake.lastPrompt, "Tell me about Docker.")
	assert.Contains(t, fake.lastPrompt, "Terraform")
}

func TestHeuristicSkillDecline(t *testing.T) {
	result := Heuristic(kubernetesRequest("I don't have experience with Kubernetes"))
	assert.Equal(t, types.QualitySkipSkill, result.Quality)
	assert.Equal(t, types.ActionEndTopic, result.NextAction)
	assert.Equal(t, "Kubernetes", result.SkillToSkip)
}

func TestHeuristicCandidateQuestion(t *testing.T) {
	result := Heuristic(kubernetesRequest("Can you tell me about the job role?"))
	assert.Equal(t, types.QualityQuestion, result.Quality)
	assert.Equal(t, types.ActionAnswerCandidate, result.NextAction)
	assert.NotEmpty(t, result.SpokenResponse, "the question gets an actual answer")
}

func TestHeuristicSpokenResponseHonorsSpeechCeiling(t *testing.T) {
	// This answer selects the longest canned role explanation, which runs
	// past the speech ceiling before truncation.
	result := Heuristic(kubernetesRequest("what's the job role"))
	require.Equal(t, types.QualityQuestion, result.Quality)
	assert.LessOrEqual(t, utf8.RuneCountInString(result.SpokenResponse), MaxSpokenChars)
	assert.True(t, strings.HasSuffix(result.SpokenResponse, "..."))

	// Skill-interpolated phrasings must also stay within the ceiling no
	// matter how long the skill name is.
	req := kubernetesRequest("I don't have experience with that")
	req.Skill = strings.Repeat("VeryLongFrameworkName", 12)
	result = Heuristic(req)
	assert.LessOrEqual(t, utf8.RuneCountInString(result.SpokenResponse), MaxSpokenChars)
}

func TestHeuristicFrustration(t *testing.T) {
	result := Heuristic(kubernetesRequest("You keep asking the same question, listen to me"))
	assert.Equal(t, types.QualityWeak, result.Quality)
	assert.Equal(t, types.ActionContinue, result.NextAction)
	assert.Equal(t, "Kubernetes", result.SkillToSkip, "frustration skips the current skill")
	assert.Contains(t, strings.ToLower(result.SpokenResponse), "i ", "apologetic in-character response")
}

func TestHeuristicWordCountBands(t *testing.T) {
	tests := []struct {
		name       string
		answer     string
		quality    types.Quality
		nextAction types.NextAction
	}{
		{
			"eight words is weak",
			"Containers orchestrated together across machines for scaling purposes",
			types.QualityWeak,
			types.ActionFollowUp,
		},
		{
			"medium answer is partial",
			"Kubernetes schedules containers across nodes, handles service discovery, and restarts failed pods automatically when health checks report problems",
			types.QualityPartial,
			types.ActionContinue,
		},
		{
			"long answer is strong",
			strings.Repeat("kubernetes deployment detail ", 10),
			types.QualityStrong,
			types.ActionContinue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Heuristic(kubernetesRequest(tt.answer))
			assert.Equal(t, tt.quality, result.Quality)
			assert.Equal(t, tt.nextAction, result.NextAction)
		})
	}
}

func TestHeuristicShortWeakAnswerGetsFollowUp(t *testing.T) {
	result := Heuristic(kubernetesRequest("Pods run containers on nodes for workloads"))
	require.Equal(t, types.QualityWeak, result.Quality)
	require.Equal(t, types.ActionFollowUp, result.NextAction)
	assert.NotEmpty(t, result.FollowUpQuestion)
}

func TestHeuristicOffTopic(t *testing.T) {
	result := Heuristic(kubernetesRequest("I mostly follow politics and sports these days honestly"))
	assert.Equal(t, types.QualityWeak, result.Quality)
	assert.Equal(t, types.ActionContinue, result.NextAction)
	assert.Contains(t, result.SpokenResponse, "Kubernetes")
}

func TestHeuristicNegativeShortAnswer(t *testing.T) {
	result := Heuristic(kubernetesRequest("No, not really"))
	assert.Equal(t, types.QualityWeak, result.Quality)
	assert.Equal(t, types.ActionContinue, result.NextAction, "negative answers move on instead of probing")
	assert.Empty(t, result.FollowUpQuestion)
}

func TestHeuristicNegativeWordBoundary(t *testing.T) {
	answer := "Knowledge of rolling updates helps when operating kubernetes clusters since deployments can degrade gradually without surprising anyone during releases and this keeps the system stable over time"
	result := Heuristic(kubernetesRequest(answer))
	assert.Equal(t, types.QualityStrong, result.Quality, "'no' must not match inside 'Knowledge'")
}

func TestHeuristicStablePhrasePick(t *testing.T) {
	req := kubernetesRequest("I don't have experience with Kubernetes")
	first := Heuristic(req)
	second := Heuristic(req)
	assert.Equal(t, first.SpokenResponse, second.SpokenResponse)
}

func TestFeedbackReturnsModelText(t *testing.T) {
	fake := &fakeGenerator{response: `"Nicely explained!"`}
	p := NewProcessor(fake, nil)

	text := p.Feedback(context.Background(), "What is a pod?", "A pod groups containers.", types.QualityStrong, "Kubernetes")
	assert.Equal(t, "Nicely explained!", text)
}

func TestFeedbackCapsLength(t *testing.T) {
	fake := &fakeGenerator{response: strings.Repeat("wonderful answer ", 10)}
	p := NewProcessor(fake, nil)

	text := p.Feedback(context.Background(), "q", "a", types.QualityStrong, "Go")
	assert.LessOrEqual(t, utf8.RuneCountInString(text), MaxFeedbackChars)
}

func TestFeedbackFallsBackPerQuality(t *testing.T) {
	fake := &fakeGenerator{err: errors.New("unreachable")}
	p := NewProcessor(fake, nil)

	strong := p.Feedback(context.Background(), "q", "a", types.QualityStrong, "Go")
	weak := p.Feedback(context.Background(), "q", "a", types.QualityWeak, "Go")
	assert.Contains(t, strongFeedback, strong)
	assert.Contains(t, weakFeedback, weak)
}
