package practice

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/quizdrill/backend/internal/models"
	"github.com/quizdrill/backend/internal/scoring"
)

// The service depends on narrow views of its collaborators so tests can
// swap in fakes. The sets, training, mistakes and progress packages provide
// the real implementations.

type QuestionProvider interface {
	Get(setID string) (*models.QuestionSet, error)
	QuestionsByIDs(ids []string) ([]models.Question, error)
}

type TrainProvider interface {
	GetSession(trainSessionID string) (*models.TrainSession, error)
	CompleteSession(trainSessionID string) error
}

type MistakeProvider interface {
	GetSnapshot(snapshotID string) (*models.MistakeSnapshot, error)
	RemainingQuestionIDs(snapshotID string) ([]string, error)
	ApplyReview(snapshotID string, answers map[string]bool) (*models.UpdateSnapshotResponse, error)
	CreateSnapshot(req models.CreateSnapshotRequest) (*models.MistakeSnapshot, error)
}

type ProgressStore interface {
	SaveProgress(p *models.UserProgress) error
	GetProgress(scope models.ProgressScope, scopeID string) (*models.UserProgress, error)
	DeleteProgress(scope models.ProgressScope, scopeID string) error
	RecordAnswer(event *models.AnswerEvent) error
}

type Service struct {
	registry *Registry
	sets     QuestionProvider
	training TrainProvider
	mistakes MistakeProvider
	progress ProgressStore
}

func NewService(registry *Registry, sets QuestionProvider, training TrainProvider, mistakes MistakeProvider, progress ProgressStore) *Service {
	return &Service{
		registry: registry,
		sets:     sets,
		training: training,
		mistakes: mistakes,
		progress: progress,
	}
}

// SessionView is the wire shape for a session. The answer map reveals the
// recorded choice and correctness for every answered question.
type SessionView struct {
	SessionID string                `json:"session_id"`
	Kind      Kind                  `json:"kind"`
	ScopeID   string                `json:"scope_id"`
	State     State                 `json:"state"`
	Current   int                   `json:"current_index"`
	Questions []models.Question     `json:"questions"`
	Answers   map[string]AnswerView `json:"answers"`
	CreatedAt time.Time             `json:"created_at"`
}

type AnswerView struct {
	Selected  models.AnswerLetter `json:"selected"`
	IsCorrect bool                `json:"is_correct"`
}

// SessionResult is the completion payload: the final score plus the topic
// and difficulty breakdowns.
type SessionResult struct {
	SessionID        string                    `json:"session_id"`
	Score            scoring.SessionScore      `json:"score"`
	TopicScores      []scoring.TopicScore      `json:"topic_scores"`
	DifficultyScores []scoring.DifficultyScore `json:"difficulty_scores"`
	WeakTopics       []string                  `json:"weak_topics"`
	Message          string                    `json:"message"`
	WrongQuestionIDs []string                  `json:"wrong_question_ids"`
}

func (s *Service) view(sess *Session) *SessionView {
	answers := make(map[string]AnswerView, len(sess.Answers))
	for _, q := range sess.Questions {
		selected, ok := sess.Answers[q.ID]
		if !ok {
			continue
		}
		answers[q.ID] = AnswerView{
			Selected:  models.LetterForIndex(selected),
			IsCorrect: selected == q.Answer.Index(),
		}
	}
	return &SessionView{
		SessionID: sess.ID,
		Kind:      sess.Kind,
		ScopeID:   sess.ScopeID,
		State:     sess.State,
		Current:   sess.Current,
		Questions: sess.Questions,
		Answers:   answers,
		CreatedAt: sess.CreatedAt,
	}
}

func progressScope(kind Kind) models.ProgressScope {
	switch kind {
	case KindTrain:
		return models.ProgressTrain
	case KindMistake:
		return models.ProgressSnapshot
	default:
		return models.ProgressSet
	}
}

// resolveQuestions loads the ordered question list for a scope. Set sessions
// use the stored set order; train and mistake sessions resolve their id
// lists and preserve that list's order.
func (s *Service) resolveQuestions(kind Kind, scopeID string) ([]models.Question, error) {
	switch kind {
	case KindSet:
		set, err := s.sets.Get(scopeID)
		if err != nil {
			return nil, err
		}
		return set.Questions, nil

	case KindTrain:
		train, err := s.training.GetSession(scopeID)
		if err != nil {
			return nil, err
		}
		return s.questionsInOrder(train.SelectedQuestionIDs)

	case KindMistake:
		snap, err := s.mistakes.GetSnapshot(scopeID)
		if err != nil {
			return nil, err
		}
		if snap.DeletedAt != nil {
			return nil, models.NewInvalidState("create session", "snapshot is deleted")
		}
		if snap.IsArchived {
			return nil, models.NewInvalidState("create session", "snapshot is archived")
		}
		ids, err := s.mistakes.RemainingQuestionIDs(scopeID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, models.NewInvalidState("create session", "snapshot has no remaining questions")
		}
		return s.questionsInOrder(ids)

	default:
		return nil, models.NewInvalidState("create session", "kind must be set, train or mistake")
	}
}

// questionsInOrder fetches questions by id and reorders them to match ids.
// The store returns them unordered.
func (s *Service) questionsInOrder(ids []string) ([]models.Question, error) {
	fetched, err := s.sets.QuestionsByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Question, len(fetched))
	for _, q := range fetched {
		byID[q.ID] = q
	}
	ordered := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

// CreateSession builds and starts a session for a scope, resuming from the
// persisted checkpoint when one exists and the caller asks for it.
func (s *Service) CreateSession(kind Kind, scopeID string, resume bool) (*SessionView, error) {
	if !kind.Valid() {
		return nil, models.NewInvalidState("create session", "kind must be set, train or mistake")
	}

	questions, err := s.resolveQuestions(kind, scopeID)
	if err != nil {
		return nil, err
	}

	sess := NewSession(uuid.NewString(), kind, scopeID, questions)
	if err := sess.Start(); err != nil {
		return nil, err
	}

	if resume {
		s.restoreCheckpoint(sess)
	}

	s.registry.Add(sess)
	log.Printf("[practice] created %s session %s (%d questions)", kind, sess.ID, len(questions))
	return s.view(sess), nil
}

// restoreCheckpoint replays a saved checkpoint into a fresh session. A
// checkpoint that no longer matches the question list is ignored rather
// than half-applied.
func (s *Service) restoreCheckpoint(sess *Session) {
	saved, err := s.progress.GetProgress(progressScope(sess.Kind), sess.ScopeID)
	if err != nil {
		return
	}

	known := make(map[string]bool, len(sess.Questions))
	for _, q := range sess.Questions {
		known[q.ID] = true
	}
	for questionID := range saved.Answers {
		if !known[questionID] {
			return
		}
	}

	for questionID, answer := range saved.Answers {
		sess.Answers[questionID] = answer.Selected.Index()
	}
	if saved.LastQuestionIndex >= 0 && saved.LastQuestionIndex < len(sess.Questions) {
		sess.Current = saved.LastQuestionIndex
	}
	if len(sess.Answers) == len(sess.Questions) {
		sess.State = StateComplete
	}
	log.Printf("[practice] resumed session %s with %d saved answers", sess.ID, len(sess.Answers))
}

func (s *Service) checkpoint(sess *Session) {
	answers := make(map[string]models.UserAnswer, len(sess.Answers))
	now := time.Now().UTC()
	for _, q := range sess.Questions {
		selected, ok := sess.Answers[q.ID]
		if !ok {
			continue
		}
		answers[q.ID] = models.UserAnswer{
			Selected:   models.LetterForIndex(selected),
			IsCorrect:  selected == q.Answer.Index(),
			AnsweredAt: now,
		}
	}
	err := s.progress.SaveProgress(&models.UserProgress{
		Scope:             progressScope(sess.Kind),
		ScopeID:           sess.ScopeID,
		Answers:           answers,
		LastQuestionIndex: sess.Current,
		UpdatedAt:         now,
	})
	if err != nil {
		log.Printf("[practice] checkpoint failed for session %s: %v", sess.ID, err)
	}
}

func (s *Service) GetSession(sessionID string) (*SessionView, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// SubmitAnswer records one choice, appends it to the answer history, and
// checkpoints the session. Completing the session triggers the completion
// side effects.
func (s *Service) SubmitAnswer(sessionID, questionID string, selected models.AnswerLetter) (*scoring.AnswerResult, *SessionView, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, nil, err
	}

	result, err := sess.Submit(questionID, selected.Index())
	if err != nil {
		return nil, nil, err
	}

	if err := s.progress.RecordAnswer(&models.AnswerEvent{
		Scope:      progressScope(sess.Kind),
		ScopeID:    sess.ScopeID,
		QuestionID: questionID,
		Selected:   selected,
		Correct:    result.IsCorrect,
		AnsweredAt: time.Now().UTC(),
	}); err != nil {
		log.Printf("[practice] failed to record answer history: %v", err)
	}

	s.checkpoint(sess)

	if sess.State == StateComplete {
		s.onComplete(sess)
	}

	return &result, s.view(sess), nil
}

func (s *Service) Goto(sessionID string, index int) (*SessionView, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Goto(index); err != nil {
		return nil, err
	}
	s.checkpoint(sess)
	return s.view(sess), nil
}

// Complete finishes a session early. Unanswered questions score as wrong.
func (s *Service) Complete(sessionID string) (*SessionResult, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.State == StateInProgress {
		if err := sess.Finish(); err != nil {
			return nil, err
		}
		s.onComplete(sess)
	}
	return s.Result(sessionID)
}

// onComplete runs the completion side effects for a session: the checkpoint
// is cleared, a train scope is marked done, and a mistake-review session
// feeds its correctness map into the mastery state machine exactly once.
func (s *Service) onComplete(sess *Session) {
	if err := s.progress.DeleteProgress(progressScope(sess.Kind), sess.ScopeID); err != nil {
		log.Printf("[practice] failed to clear checkpoint for session %s: %v", sess.ID, err)
	}

	switch sess.Kind {
	case KindTrain:
		if err := s.training.CompleteSession(sess.ScopeID); err != nil {
			log.Printf("[practice] failed to complete train session %s: %v", sess.ScopeID, err)
		}

	case KindMistake:
		if sess.MasteryApplied {
			return
		}
		sess.MasteryApplied = true
		update, err := s.mistakes.ApplyReview(sess.ScopeID, sess.CorrectnessMap())
		if err != nil {
			log.Printf("[practice] mastery update failed for snapshot %s: %v", sess.ScopeID, err)
			return
		}
		log.Printf("[practice] applied mastery update to snapshot %s (archived=%v)", sess.ScopeID, update.IsArchived)
	}
}

// Result tallies a session. Valid at any point; for a completed session it
// is the final report.
func (s *Service) Result(sessionID string) (*SessionResult, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}

	score := sess.Score()
	topicScores := scoring.CalculateTopicScores(sess.Questions, sess.Answers)
	return &SessionResult{
		SessionID:        sess.ID,
		Score:            score,
		TopicScores:      topicScores,
		DifficultyScores: scoring.CalculateDifficultyScores(sess.Questions, sess.Answers),
		WeakTopics:       scoring.IdentifyWeakTopics(topicScores, scoring.PassThreshold),
		Message:          scoring.ProgressMessage(score.Percentage),
		WrongQuestionIDs: sess.WrongQuestionIDs(),
	}, nil
}

// Restart wipes a session's answers and runs it again from the top. The
// caller must confirm; an unconfirmed restart is rejected so a stray click
// cannot discard progress.
func (s *Service) Restart(sessionID string, confirm bool) (*SessionView, error) {
	if !confirm {
		return nil, models.NewInvalidState("restart session", "restart requires confirmation")
	}
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Restart()
	if err := s.progress.DeleteProgress(progressScope(sess.Kind), sess.ScopeID); err != nil {
		log.Printf("[practice] failed to clear checkpoint for session %s: %v", sess.ID, err)
	}
	return s.view(sess), nil
}

// SnapshotFromSession creates a mistake snapshot from a completed session's
// wrong answers.
func (s *Service) SnapshotFromSession(sessionID, title string) (*models.MistakeSnapshot, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.State != StateComplete {
		return nil, models.NewInvalidState("create snapshot", "session is not complete")
	}
	if sess.Kind == KindMistake {
		return nil, models.NewInvalidState("create snapshot", "mistake-review sessions update their snapshot instead")
	}

	wrong := sess.WrongQuestionIDs()
	if len(wrong) == 0 {
		return nil, models.NewInvalidState("create snapshot", "session has no wrong answers")
	}

	baseScope := models.ScopeSet
	if sess.Kind == KindTrain {
		baseScope = models.ScopeTrain
	}
	return s.mistakes.CreateSnapshot(models.CreateSnapshotRequest{
		BaseScope:        baseScope,
		BaseScopeID:      sess.ScopeID,
		Title:            title,
		WrongQuestionIDs: wrong,
	})
}

// DropSession removes a session from the registry without completion side
// effects. Its checkpoint survives so the run can be resumed later.
func (s *Service) DropSession(sessionID string) {
	s.registry.Remove(sessionID)
}
