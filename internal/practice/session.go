// Package practice orchestrates a single practice run: sequential question
// traversal, answer capture, navigation, and completion detection. A
// session is an explicit state object owned by its registry — there is no
// process-wide session state.
package practice

import (
	"fmt"
	"time"

	"github.com/quizdrill/backend/internal/models"
	"github.com/quizdrill/backend/internal/scoring"
)

type State string

const (
	StateLoading    State = "loading"
	StateInProgress State = "in_progress"
	StateComplete   State = "complete"
)

type Kind string

const (
	KindSet     Kind = "set"
	KindTrain   Kind = "train"
	KindMistake Kind = "mistake"
)

func (k Kind) Valid() bool {
	return k == KindSet || k == KindTrain || k == KindMistake
}

// Session walks an ordered question list. Answers are immutable once
// recorded; revisiting an answered question re-displays it without
// mutation. No state is reachable after complete except via Restart.
type Session struct {
	ID        string
	Kind      Kind
	ScopeID   string
	Questions []models.Question
	Answers   map[string]int
	Current   int
	State     State
	CreatedAt time.Time

	// MasteryApplied guards the once-per-completion mastery update for
	// mistake-review sessions.
	MasteryApplied bool
}

func NewSession(id string, kind Kind, scopeID string, questions []models.Question) *Session {
	return &Session{
		ID:        id,
		Kind:      kind,
		ScopeID:   scopeID,
		Questions: questions,
		Answers:   make(map[string]int),
		State:     StateLoading,
		CreatedAt: time.Now().UTC(),
	}
}

// Start moves the session out of loading once its questions are resolved.
func (s *Session) Start() error {
	if s.State != StateLoading {
		return models.NewInvalidState("start session", fmt.Sprintf("session is %s", s.State))
	}
	if len(s.Questions) == 0 {
		return models.NewInvalidState("start session", "session has no questions")
	}
	s.State = StateInProgress
	return nil
}

func (s *Session) questionIndex(questionID string) int {
	for i, q := range s.Questions {
		if q.ID == questionID {
			return i
		}
	}
	return -1
}

// Submit records a choice for a question and reveals correctness. The
// choice becomes immutable for this pass; resubmission is rejected before
// any state changes. Submitting at the last question, or filling the final
// unanswered one, completes the session.
func (s *Session) Submit(questionID string, selectedChoice int) (scoring.AnswerResult, error) {
	if s.State != StateInProgress {
		return scoring.AnswerResult{}, models.NewInvalidState("submit answer", fmt.Sprintf("session is %s", s.State))
	}

	idx := s.questionIndex(questionID)
	if idx < 0 {
		return scoring.AnswerResult{}, fmt.Errorf("question %s: %w", questionID, models.ErrNotFound)
	}
	if _, answered := s.Answers[questionID]; answered {
		return scoring.AnswerResult{}, models.NewInvalidState("submit answer", "question already answered in this session")
	}

	result, err := scoring.CheckAnswer(s.Questions[idx], selectedChoice)
	if err != nil {
		return scoring.AnswerResult{}, err
	}

	s.Answers[questionID] = selectedChoice

	switch {
	case idx == len(s.Questions)-1:
		s.State = StateComplete
	case len(s.Answers) == len(s.Questions):
		s.State = StateComplete
	default:
		s.Current = idx + 1
	}

	return result, nil
}

// Goto jumps to a question index. Revisiting an answered question never
// discards or changes its recorded answer.
func (s *Session) Goto(index int) error {
	if s.State != StateInProgress {
		return models.NewInvalidState("goto question", fmt.Sprintf("session is %s", s.State))
	}
	if index < 0 || index >= len(s.Questions) {
		return models.NewInvalidState("goto question", fmt.Sprintf("index %d out of range", index))
	}
	s.Current = index
	return nil
}

// Finish forces completion early. Unanswered questions score as wrong.
func (s *Session) Finish() error {
	if s.State != StateInProgress {
		return models.NewInvalidState("finish session", fmt.Sprintf("session is %s", s.State))
	}
	s.State = StateComplete
	return nil
}

// Restart discards all recorded answers and begins the run again. The HTTP
// layer requires an explicit confirmation before calling this.
func (s *Session) Restart() {
	s.Answers = make(map[string]int)
	s.Current = 0
	s.State = StateInProgress
	s.MasteryApplied = false
}

// Score tallies the session as it stands; for in-progress sessions this is
// the running score, for complete ones the final result.
func (s *Session) Score() scoring.SessionScore {
	return scoring.CalculateSessionScore(s.Questions, s.Answers)
}

// WrongQuestionIDs lists the questions answered wrong or never answered,
// in question order. Feeds mistake-snapshot creation.
func (s *Session) WrongQuestionIDs() []string {
	var wrong []string
	for _, q := range s.Questions {
		selected, ok := s.Answers[q.ID]
		if !ok || selected != q.Answer.Index() {
			wrong = append(wrong, q.ID)
		}
	}
	return wrong
}

// CorrectnessMap reports, for every question presented in this session,
// whether it was answered correctly. This is the payload the mastery state
// machine consumes after a mistake-review session completes.
func (s *Session) CorrectnessMap() map[string]bool {
	results := make(map[string]bool, len(s.Questions))
	for _, q := range s.Questions {
		selected, ok := s.Answers[q.ID]
		results[q.ID] = ok && selected == q.Answer.Index()
	}
	return results
}
