package interview

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/interview-agent/internal/question"
	"github.com/jonathan/interview-agent/internal/types"
)

// MaxQuestions is the hard ceiling on questions per interview, follow-ups
// included. The plan may be shorter; it is never allowed to run longer.
const MaxQuestions = 12

// pending is the question currently awaiting an answer.
type pending struct {
	Text       string
	Skill      string
	Type       types.QuestionType
	Difficulty types.Difficulty
}

// Session holds the mutable state of one interview: plan position, the
// per-skill follow-up counter, declined skills, and the conversation
// history. Sessions are independent; each one advances strictly one turn at
// a time, and the mutex only guards against a caller sharing a session
// across goroutines.
type Session struct {
	ID      string
	JobText string
	Reqs    types.JobRequirements
	Profile types.CandidateProfile
	Plan    *types.InterviewPlan

	mu             sync.Mutex
	currentIndex   int
	questionsAsked int
	current        *pending
	followUpSkill  string
	followUpCount  int
	declined       map[string]bool
	history        []types.ConversationTurn
	evaluations    []types.Evaluation
	asked          []string
	templates      *question.TemplateSet
	finished       bool
}

func newSession(jobText string, reqs types.JobRequirements, profile types.CandidateProfile, plan *types.InterviewPlan) *Session {
	return &Session{
		ID:        uuid.NewString(),
		JobText:   jobText,
		Reqs:      reqs,
		Profile:   profile,
		Plan:      plan,
		declined:  make(map[string]bool),
		templates: question.NewTemplateSet(),
	}
}

// History returns a copy of the conversation so far.
func (s *Session) History() []types.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ConversationTurn, len(s.history))
	copy(out, s.history)
	return out
}

// Evaluations returns a copy of the per-answer evaluations so far.
func (s *Session) Evaluations() []types.Evaluation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Evaluation, len(s.evaluations))
	copy(out, s.evaluations)
	return out
}

// DeclinedSkills returns the skills the candidate has declined so far.
func (s *Session) DeclinedSkills() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.declined))
	for skill := range s.declined {
		out = append(out, skill)
	}
	sort.Strings(out)
	return out
}

// QuestionsAsked returns how many questions have been put to the candidate.
func (s *Session) QuestionsAsked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questionsAsked
}

// Finished reports whether the interview has ended.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// declineSkill marks a skill so later plan items for it are skipped.
// Callers hold s.mu.
func (s *Session) declineSkill(skill string) {
	if skill != "" {
		s.declined[skill] = true
	}
}

// resetFollowUpsFor resets the per-skill probe counter when the
// conversation moves to a different skill. Callers hold s.mu.
func (s *Session) resetFollowUpsFor(skill string) {
	if s.followUpSkill != skill {
		s.followUpSkill = skill
		s.followUpCount = 0
	}
}
