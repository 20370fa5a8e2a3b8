package types

// TurnResult is the outcome of processing one candidate answer. Every turn
// produces a usable TurnResult regardless of backend availability.
type TurnResult struct {
	SpokenResponse   string     `json:"spoken_response"`
	Scores           Scores     `json:"scores"`
	Quality          Quality    `json:"answer_quality"`
	NextAction       NextAction `json:"next_action"`
	FollowUpQuestion string     `json:"follow_up_question,omitempty"`
	SkillToSkip      string     `json:"skill_to_skip,omitempty"`
	Notes            string     `json:"internal_notes,omitempty"`
}

// ConversationTurn is the immutable record of one question/answer exchange,
// appended to the session history after the answer is processed.
type ConversationTurn struct {
	QuestionText string       `json:"question_text"`
	Skill        string       `json:"skill,omitempty"`
	QuestionType QuestionType `json:"question_type"`
	AnswerText   string       `json:"answer_text"`
	Scores       Scores       `json:"scores"`
	Quality      Quality      `json:"quality"`
	NextAction   NextAction   `json:"next_action"`
}
