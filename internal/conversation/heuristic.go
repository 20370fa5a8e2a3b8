package conversation

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/jonathan/interview-agent/internal/question"
	"github.com/jonathan/interview-agent/internal/types"
)

// Word-count bands for the length-based classification.
const (
	weakAnswerMaxWords    = 8
	partialAnswerMaxWords = 24
)

// shortNegativeMaxWords bounds the "short negative answer" detection.
const shortNegativeMaxWords = 15

var candidateAskingPatterns = []string{
	"can you", "could you", "what is the", "tell me about", "what are",
	"please describe", "please tell", "what's the job", "job role",
	"what does this", "what will i", "what would i", "tell me more about",
}

var frustrationPatterns = []string{
	"shut", "stop", "what i asked", "respond to", "answer my", "listen to me",
	"you're not", "you are not", "properly", "correctly", "rude", "stupid",
	"asking the same", "same question", "already answered", "already told",
}

var skillDeclinePatterns = []string{
	"don't have experience", "no experience", "haven't worked with",
	"not familiar with", "don't know", "never used", "no exposure",
	"not worked on", "not my area", "haven't used",
}

var negativePatterns = []string{
	"no", "nope", "i haven't", "i have not", "i don't", "i do not",
	"not used", "never used", "not familiar",
	"i'm not sure", "not really", "haven't worked",
}

var offTopicIndicators = []string{
	"government", "politics", "weather", "sports", "movies", "food",
}

var jobRoleAnswers = []string{
	"Great question! This role involves working with the technologies I'm asking about. We're looking for someone who can contribute to building and maintaining our applications. Let me continue with a few more questions.",
	"Absolutely! This position focuses on software development, and we're assessing your technical skills across different areas. Let me ask a few more questions so we can see where your strengths lie.",
	"Happy to share! The role involves hands-on development work. The questions I'm asking help us understand which areas you'd excel in. Let's continue.",
}

var clarificationAnswers = []string{
	"That's a fair question! Let me clarify, and then we can continue. What specifically would you like to know?",
	"Sure, I can help with that. Let me know what you'd like clarified, and then we'll proceed.",
	"Good question! Let me address that briefly, then continue our discussion.",
}

var frustrationResponses = []string{
	"I apologize if my questions weren't clear. Let me move to a different topic that might be more relevant to your experience.",
	"I understand. Let me adjust my approach. Let's try a different area.",
	"I hear you. Let's move on to something different that plays to your strengths.",
}

// Heuristic processes an answer entirely offline, so the conversation keeps
// moving with zero network access. Detection order matters: a candidate
// question or frustration outranks skill decline, which outranks the plain
// length-based classification. The spoken response honors the same speech
// ceiling as the structured path.
func Heuristic(req Request) types.TurnResult {
	result := heuristicTurn(req)
	result.SpokenResponse = question.Truncate(result.SpokenResponse, MaxSpokenChars)
	return result
}

func heuristicTurn(req Request) types.TurnResult {
	answerLower := strings.ToLower(strings.TrimSpace(req.AnswerText))
	wordCount := len(strings.Fields(req.AnswerText))

	if matchesAny(answerLower, candidateAskingPatterns) {
		return heuristicCandidateQuestion(answerLower, req.AnswerText)
	}

	if matchesAny(answerLower, frustrationPatterns) {
		return types.TurnResult{
			SpokenResponse: pickPhrase(req.AnswerText, frustrationResponses),
			Scores:         types.Scores{Correctness: 1.0, Depth: 1.0, Clarity: 2.0, Relevance: 1.0},
			Quality:        types.QualityWeak,
			NextAction:     types.ActionContinue,
			SkillToSkip:    req.Skill,
			Notes:          "Candidate expressed frustration. Moving to different topic.",
		}
	}

	if matchesAny(answerLower, skillDeclinePatterns) {
		return heuristicSkillDecline(req)
	}

	isNegative := matchesAny(answerLower, negativePatterns)

	if isOffTopic(answerLower, req.Skill) {
		return heuristicOffTopic(req)
	}

	if isNegative && wordCount < shortNegativeMaxWords {
		return heuristicShortNegative(req)
	}

	switch {
	case wordCount <= weakAnswerMaxWords:
		return heuristicShortAnswer(req)
	case wordCount <= partialAnswerMaxWords:
		return heuristicMediumAnswer(req, wordCount)
	default:
		return heuristicLongAnswer(req, wordCount)
	}
}

func heuristicCandidateQuestion(answerLower, answerText string) types.TurnResult {
	responses := clarificationAnswers
	for _, phrase := range []string{"job role", "position", "what kind", "what will i"} {
		if strings.Contains(answerLower, phrase) {
			responses = jobRoleAnswers
			break
		}
	}
	return types.TurnResult{
		SpokenResponse: pickPhrase(answerText, responses),
		Scores:         types.Scores{Correctness: 2.5, Depth: 2.0, Clarity: 3.0, Relevance: 1.5},
		Quality:        types.QualityQuestion,
		NextAction:     types.ActionAnswerCandidate,
		Notes:          "Candidate asked question. Provided brief answer.",
	}
}

func heuristicSkillDecline(req Request) types.TurnResult {
	skill := req.Skill
	if skill == "" {
		skill = "every technology"
	}
	responses := []string{
		fmt.Sprintf("No problem at all! Not everyone has worked with %s. Let's move on to something else.", skill),
		fmt.Sprintf("That's perfectly fine. We'll skip %s and explore where your experience lies.", skill),
		"Understood, no worries. Let's focus on areas where you have more experience.",
		"That's okay! Let's move on to the next topic.",
	}
	return types.TurnResult{
		SpokenResponse: pickPhrase(req.AnswerText, responses),
		Scores:         types.Scores{Correctness: 1.5, Depth: 1.0, Clarity: 3.0, Relevance: 1.0},
		Quality:        types.QualitySkipSkill,
		NextAction:     types.ActionEndTopic,
		SkillToSkip:    req.Skill,
		Notes:          fmt.Sprintf("Candidate declined skill: %s. Skipping related questions.", req.Skill),
	}
}

func heuristicOffTopic(req Request) types.TurnResult {
	topic := req.Skill
	if topic == "" {
		topic = "the topic"
	}
	responses := []string{
		fmt.Sprintf("That's an interesting point. Let me bring us back to %s. ", topic),
		fmt.Sprintf("I appreciate your perspective. However, for this role, I'd like to focus on %s. ", topic),
		fmt.Sprintf("Thanks for sharing. Let's get back to discussing your experience with %s. ", topic),
	}
	return types.TurnResult{
		SpokenResponse: pickPhrase(req.AnswerText, responses) + "Let's move on to the next question.",
		Scores:         types.Scores{Correctness: 1.0, Depth: 1.0, Clarity: 2.0, Relevance: 0.5},
		Quality:        types.QualityWeak,
		NextAction:     types.ActionContinue,
		Notes:          "Off-topic answer. Redirecting to next question.",
	}
}

func heuristicShortNegative(req Request) types.TurnResult {
	var responses []string
	if req.QuestionType == types.TypeIntroduction {
		responses = []string{
			"That's alright! Let's move forward and learn more about you through other questions.",
			"No problem. We can explore your background through the technical questions.",
		}
	} else {
		skill := req.Skill
		if skill == "" {
			skill = "every technology"
		}
		responses = []string{
			fmt.Sprintf("That's okay! Not everyone has experience with %s. Let's move on.", skill),
			"No worries. Let's see what other skills you can bring to the table.",
			"That's fine. We'll explore other areas where you have more experience.",
			"Understood. Let's continue with a different topic.",
		}
	}
	return types.TurnResult{
		SpokenResponse: pickPhrase(req.AnswerText, responses),
		Scores:         types.Scores{Correctness: 2.0, Depth: 1.5, Clarity: 3.0, Relevance: 2.0},
		Quality:        types.QualityWeak,
		NextAction:     types.ActionContinue,
		Notes:          "Short negative answer. Moving on without follow-up.",
	}
}

func heuristicShortAnswer(req Request) types.TurnResult {
	var responses []string
	var followUp string

	switch req.QuestionType {
	case types.TypeIntroduction:
		responses = []string{
			"Could you tell me a bit more about your background?",
			"I'd love to hear more about your journey. What led you to this field?",
		}
		followUp = "What aspects of your experience are you most excited to bring to this role?"
	case types.TypeProject:
		responses = []string{
			"I'd like to hear more about your project experience.",
			"Could you share any project you've worked on, even a small one?",
		}
		followUp = "What's a problem you've solved recently that you're proud of?"
	default:
		skill := req.Skill
		if skill == "" {
			skill = "this"
		}
		responses = []string{
			fmt.Sprintf("Could you elaborate a bit more on your experience with %s?", skill),
			"I'd like to understand this better. Can you give me more details?",
		}
		followUp = fmt.Sprintf("Even if it's from coursework or personal projects, any experience with %s?", skill)
	}

	return types.TurnResult{
		SpokenResponse:   pickPhrase(req.AnswerText, responses),
		Scores:           types.Scores{Correctness: 2.5, Depth: 1.5, Clarity: 2.5, Relevance: 2.5},
		Quality:          types.QualityWeak,
		NextAction:       types.ActionFollowUp,
		FollowUpQuestion: followUp,
		Notes:            "Very short answer. Asking follow-up.",
	}
}

func heuristicMediumAnswer(req Request, wordCount int) types.TurnResult {
	var responses []string
	switch req.QuestionType {
	case types.TypeIntroduction:
		responses = []string{
			"Thanks for sharing! That gives me a good starting point.",
			"Interesting background! Let's dive into the technical aspects.",
		}
	case types.TypeProject:
		responses = []string{
			"Thanks for that overview. That sounds like valuable experience.",
			"Interesting project! Let's explore your technical skills next.",
		}
	default:
		topic := req.Skill
		if topic == "" {
			topic = "this topic"
		}
		responses = []string{
			fmt.Sprintf("Good start on %s. Let's continue.", topic),
			"That's helpful context. Let's explore further.",
			"Thanks for that explanation. Moving on.",
		}
	}
	return types.TurnResult{
		SpokenResponse: pickPhrase(req.AnswerText, responses),
		Scores:         types.Scores{Correctness: 3.0, Depth: 2.5, Clarity: 3.0, Relevance: 3.0},
		Quality:        types.QualityPartial,
		NextAction:     types.ActionContinue,
		Notes:          fmt.Sprintf("Medium-length answer (%d words).", wordCount),
	}
}

func heuristicLongAnswer(req Request, wordCount int) types.TurnResult {
	var responses []string
	switch req.QuestionType {
	case types.TypeIntroduction:
		responses = []string{
			"Excellent introduction! You clearly have a rich background.",
			"Great overview of your experience! I can see you've done interesting work.",
		}
	case types.TypeProject:
		responses = []string{
			"That's a great project to highlight! You handled it well.",
			"Impressive project experience! I can see your problem-solving skills.",
		}
	default:
		topic := req.Skill
		if topic == "" {
			topic = "this concept"
		}
		responses = []string{
			fmt.Sprintf("Excellent explanation of %s! You clearly have strong knowledge here.", topic),
			"Great depth of understanding! That's exactly the kind of insight I was looking for.",
			"Very thorough answer! Let's move on to the next topic.",
		}
	}
	return types.TurnResult{
		SpokenResponse: pickPhrase(req.AnswerText, responses),
		Scores:         types.Scores{Correctness: 4.0, Depth: 3.5, Clarity: 4.0, Relevance: 4.0},
		Quality:        types.QualityStrong,
		NextAction:     types.ActionContinue,
		Notes:          fmt.Sprintf("Detailed answer (%d words).", wordCount),
	}
}

// matchesAny reports whether any pattern occurs in the text. Single-word
// patterns match whole words only, so "no" does not fire on "knowledge".
func matchesAny(text string, patterns []string) bool {
	var words map[string]bool
	for _, pattern := range patterns {
		if strings.Contains(pattern, " ") {
			if strings.Contains(text, pattern) {
				return true
			}
			continue
		}
		if words == nil {
			words = make(map[string]bool)
			for _, w := range strings.Fields(text) {
				words[strings.Trim(w, ".,!?;:'\"")] = true
			}
		}
		if words[pattern] {
			return true
		}
	}
	return false
}

// isOffTopic fires when the answer mentions a known unrelated topic and
// nothing related to the skill under assessment.
func isOffTopic(answerLower, skill string) bool {
	if skill == "" {
		return false
	}
	hasIndicator := false
	for _, ind := range offTopicIndicators {
		if strings.Contains(answerLower, ind) {
			hasIndicator = true
			break
		}
	}
	if !hasIndicator {
		return false
	}
	for _, term := range strings.Fields(strings.ToLower(skill)) {
		if strings.Contains(answerLower, term) {
			return false
		}
	}
	return true
}

// pickPhrase selects deterministically among phrasings by hashing the seed,
// so repeated identical inputs stay stable while different answers vary.
func pickPhrase(seed string, options []string) string {
	if len(options) == 0 {
		return ""
	}
	sum := md5.Sum([]byte(seed))
	idx := binary.BigEndian.Uint32(sum[:4]) % uint32(len(options))
	return options[idx]
}
