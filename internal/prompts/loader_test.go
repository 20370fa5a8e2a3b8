package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("plan.json", "interview-plan")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "STRUCTURED INTERVIEW PLAN")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("plan.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestQuestionStrategiesPresent(t *testing.T) {
	ClearCache()

	for _, key := range []string{"technical", "project", "introduction", "behavioral"} {
		prompt, err := Get("question.json", key)
		require.NoError(t, err, "strategy %s", key)
		assert.Contains(t, prompt, "400", "strategy %s must state the length ceiling", key)
	}
}

func TestFormat(t *testing.T) {
	template := "Assessing {{.Skill}} at {{.Difficulty}} difficulty"
	data := map[string]string{
		"Skill":      "Kubernetes",
		"Difficulty": "medium",
	}

	result := Format(template, data)
	assert.Equal(t, "Assessing Kubernetes at medium difficulty", result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	data := map[string]string{}

	result := Format(template, data)
	assert.Equal(t, template, result) // Placeholder remains
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("conversation.json")
	require.NoError(t, err)
	assert.Contains(t, keys, "process-answer")
	assert.Contains(t, keys, "feedback")
}

func TestCaching(t *testing.T) {
	ClearCache()

	prompt1, err := Get("evaluation.json", "evaluate-answer")
	require.NoError(t, err)

	prompt2, err := Get("evaluation.json", "evaluate-answer")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}
