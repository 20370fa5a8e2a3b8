package types

// Scores holds the four evaluation dimensions, each in [0, 5].
type Scores struct {
	Correctness float64 `json:"correctness"`
	Depth       float64 `json:"depth"`
	Clarity     float64 `json:"clarity"`
	Relevance   float64 `json:"relevance"`
}

// NeutralScore is the default for dimensions missing from a malformed
// structured result.
const NeutralScore = 3.0

// NeutralScores returns a Scores value with every dimension neutral.
func NeutralScores() Scores {
	return Scores{
		Correctness: NeutralScore,
		Depth:       NeutralScore,
		Clarity:     NeutralScore,
		Relevance:   NeutralScore,
	}
}

// ContentMean averages correctness, depth, and relevance. Clarity measures
// communication rather than content and is excluded from classification.
func (s Scores) ContentMean() float64 {
	return (s.Correctness + s.Depth + s.Relevance) / 3
}

// Mean averages all four dimensions.
func (s Scores) Mean() float64 {
	return (s.Correctness + s.Depth + s.Clarity + s.Relevance) / 4
}

// Clamp limits every dimension to the [0, 5] range.
func (s Scores) Clamp() Scores {
	return Scores{
		Correctness: clampScore(s.Correctness),
		Depth:       clampScore(s.Depth),
		Clarity:     clampScore(s.Clarity),
		Relevance:   clampScore(s.Relevance),
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 5 {
		return 5
	}
	return v
}

// Evaluation is the scored assessment of a single answer.
type Evaluation struct {
	Scores  Scores `json:"scores"`
	Comment string `json:"comment"`
}

// Quality labels how well an answer addressed the question, or flags the two
// special conversational cases (candidate asked a question, candidate
// declined the skill).
type Quality string

// Quality labels.
const (
	QualityStrong    Quality = "strong"
	QualityPartial   Quality = "partial"
	QualityWeak      Quality = "weak"
	QualityQuestion  Quality = "question"
	QualitySkipSkill Quality = "skip_skill"
)

// Valid reports whether q is one of the defined quality labels.
func (q Quality) Valid() bool {
	switch q {
	case QualityStrong, QualityPartial, QualityWeak, QualityQuestion, QualitySkipSkill:
		return true
	}
	return false
}

// NextAction tells the engine what to do after processing an answer.
type NextAction string

// Next actions.
const (
	ActionContinue        NextAction = "continue"
	ActionFollowUp        NextAction = "follow_up"
	ActionEndTopic        NextAction = "end_topic"
	ActionAnswerCandidate NextAction = "answer_candidate"
)

// Valid reports whether a is one of the defined next actions.
func (a NextAction) Valid() bool {
	switch a {
	case ActionContinue, ActionFollowUp, ActionEndTopic, ActionAnswerCandidate:
		return true
	}
	return false
}
