package practice

import (
	"errors"
	"fmt"
	"testing"

	"github.com/quizdrill/backend/internal/models"
)

type fakeSets struct {
	sets      map[string]*models.QuestionSet
	questions map[string]models.Question
}

func (f *fakeSets) Get(setID string) (*models.QuestionSet, error) {
	set, ok := f.sets[setID]
	if !ok {
		return nil, fmt.Errorf("set %s: %w", setID, models.ErrNotFound)
	}
	return set, nil
}

func (f *fakeSets) QuestionsByIDs(ids []string) ([]models.Question, error) {
	var out []models.Question
	// Deliberately returned out of order to prove the service reorders.
	for i := len(ids) - 1; i >= 0; i-- {
		if q, ok := f.questions[ids[i]]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeTraining struct {
	sessions  map[string]*models.TrainSession
	completed []string
}

func (f *fakeTraining) GetSession(id string) (*models.TrainSession, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("train session %s: %w", id, models.ErrNotFound)
	}
	return session, nil
}

func (f *fakeTraining) CompleteSession(id string) error {
	f.completed = append(f.completed, id)
	return nil
}

type fakeMistakes struct {
	snapshots map[string]*models.MistakeSnapshot
	reviews   []map[string]bool
	created   []models.CreateSnapshotRequest
}

func (f *fakeMistakes) GetSnapshot(id string) (*models.MistakeSnapshot, error) {
	snap, ok := f.snapshots[id]
	if !ok {
		return nil, fmt.Errorf("snapshot %s: %w", id, models.ErrNotFound)
	}
	return snap, nil
}

func (f *fakeMistakes) RemainingQuestionIDs(id string) ([]string, error) {
	snap, err := f.GetSnapshot(id)
	if err != nil {
		return nil, err
	}
	var remaining []string
	for _, qid := range snap.WrongQuestionIDs {
		if snap.CorrectStreak[qid] < 2 {
			remaining = append(remaining, qid)
		}
	}
	return remaining, nil
}

func (f *fakeMistakes) ApplyReview(id string, answers map[string]bool) (*models.UpdateSnapshotResponse, error) {
	f.reviews = append(f.reviews, answers)
	return &models.UpdateSnapshotResponse{SnapshotID: id}, nil
}

func (f *fakeMistakes) CreateSnapshot(req models.CreateSnapshotRequest) (*models.MistakeSnapshot, error) {
	f.created = append(f.created, req)
	return &models.MistakeSnapshot{
		SnapshotID:       "snap-new",
		BaseScope:        req.BaseScope,
		BaseScopeID:      req.BaseScopeID,
		WrongQuestionIDs: req.WrongQuestionIDs,
		CorrectStreak:    map[string]int{},
	}, nil
}

type fakeProgress struct {
	saved    map[string]*models.UserProgress
	events   []models.AnswerEvent
	deletes  int
	failSave bool
}

func newFakeProgress() *fakeProgress {
	return &fakeProgress{saved: map[string]*models.UserProgress{}}
}

func progressKey(scope models.ProgressScope, scopeID string) string {
	return string(scope) + "/" + scopeID
}

func (f *fakeProgress) SaveProgress(p *models.UserProgress) error {
	if f.failSave {
		return errors.New("save failed")
	}
	f.saved[progressKey(p.Scope, p.ScopeID)] = p
	return nil
}

func (f *fakeProgress) GetProgress(scope models.ProgressScope, scopeID string) (*models.UserProgress, error) {
	p, ok := f.saved[progressKey(scope, scopeID)]
	if !ok {
		return nil, fmt.Errorf("progress: %w", models.ErrNotFound)
	}
	return p, nil
}

func (f *fakeProgress) DeleteProgress(scope models.ProgressScope, scopeID string) error {
	f.deletes++
	delete(f.saved, progressKey(scope, scopeID))
	return nil
}

func (f *fakeProgress) RecordAnswer(event *models.AnswerEvent) error {
	f.events = append(f.events, *event)
	return nil
}

func question(id string, answer models.AnswerLetter) models.Question {
	return models.Question{
		ID:         id,
		Topic:      "logic",
		Difficulty: models.DifficultyEasy,
		Stem:       "stem " + id,
		Choices:    []string{"a", "b", "c", "d"},
		Answer:     answer,
	}
}

type fixture struct {
	service  *Service
	sets     *fakeSets
	training *fakeTraining
	mistakes *fakeMistakes
	progress *fakeProgress
}

func newFixture() *fixture {
	q1 := question("q1", models.AnswerA)
	q2 := question("q2", models.AnswerB)
	q3 := question("q3", models.AnswerC)

	sets := &fakeSets{
		sets: map[string]*models.QuestionSet{
			"set-1": {SetID: "set-1", Questions: []models.Question{q1, q2, q3}},
		},
		questions: map[string]models.Question{"q1": q1, "q2": q2, "q3": q3},
	}
	training := &fakeTraining{sessions: map[string]*models.TrainSession{
		"train-1": {
			TrainSessionID:      "train-1",
			SelectedQuestionIDs: []string{"q2", "q3"},
			Status:              models.TrainActive,
		},
	}}
	mistakes := &fakeMistakes{snapshots: map[string]*models.MistakeSnapshot{
		"snap-1": {
			SnapshotID:       "snap-1",
			WrongQuestionIDs: []string{"q3", "q1"},
			CorrectStreak:    map[string]int{},
		},
	}}
	progress := newFakeProgress()

	return &fixture{
		service:  NewService(NewRegistry(), sets, training, mistakes, progress),
		sets:     sets,
		training: training,
		mistakes: mistakes,
		progress: progress,
	}
}

func TestCreateSessionFromSet(t *testing.T) {
	fx := newFixture()

	view, err := fx.service.CreateSession(KindSet, "set-1", false)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if view.State != StateInProgress {
		t.Errorf("expected in_progress, got %s", view.State)
	}
	if len(view.Questions) != 3 || view.Questions[0].ID != "q1" {
		t.Errorf("expected stored set order, got %+v", idsOf(view.Questions))
	}
}

func TestCreateSessionFromTrainKeepsSampledOrder(t *testing.T) {
	fx := newFixture()

	view, err := fx.service.CreateSession(KindTrain, "train-1", false)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	got := idsOf(view.Questions)
	if len(got) != 2 || got[0] != "q2" || got[1] != "q3" {
		t.Errorf("expected sampled order [q2 q3], got %v", got)
	}
}

func TestCreateSessionFromSnapshotUsesRemaining(t *testing.T) {
	fx := newFixture()
	fx.mistakes.snapshots["snap-1"].CorrectStreak["q3"] = 2

	view, err := fx.service.CreateSession(KindMistake, "snap-1", false)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	got := idsOf(view.Questions)
	if len(got) != 1 || got[0] != "q1" {
		t.Errorf("expected only unmastered q1, got %v", got)
	}
}

func TestCreateSessionRejectsArchivedSnapshot(t *testing.T) {
	fx := newFixture()
	fx.mistakes.snapshots["snap-1"].IsArchived = true

	_, err := fx.service.CreateSession(KindMistake, "snap-1", false)
	var invalid *models.InvalidStateError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
}

func TestCreateSessionUnknownScope(t *testing.T) {
	fx := newFixture()

	_, err := fx.service.CreateSession(KindSet, "missing", false)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubmitAnswerRecordsHistoryAndCheckpoint(t *testing.T) {
	fx := newFixture()
	view, _ := fx.service.CreateSession(KindSet, "set-1", false)

	result, updated, err := fx.service.SubmitAnswer(view.SessionID, "q1", models.AnswerA)
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !result.IsCorrect {
		t.Error("expected q1/A to be correct")
	}
	if updated.Answers["q1"].Selected != models.AnswerA {
		t.Errorf("answer view missing, got %+v", updated.Answers)
	}

	if len(fx.progress.events) != 1 || fx.progress.events[0].QuestionID != "q1" {
		t.Errorf("expected one history event for q1, got %+v", fx.progress.events)
	}
	if _, ok := fx.progress.saved[progressKey(models.ProgressSet, "set-1")]; !ok {
		t.Error("expected a saved checkpoint")
	}
}

func TestResumeRestoresCheckpoint(t *testing.T) {
	fx := newFixture()
	view, _ := fx.service.CreateSession(KindSet, "set-1", false)
	if _, _, err := fx.service.SubmitAnswer(view.SessionID, "q1", models.AnswerD); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	// Simulate the browser going away and a fresh session resuming.
	fx.service.DropSession(view.SessionID)
	resumed, err := fx.service.CreateSession(KindSet, "set-1", true)
	if err != nil {
		t.Fatalf("CreateSession resume: %v", err)
	}

	answer, ok := resumed.Answers["q1"]
	if !ok {
		t.Fatal("expected the saved q1 answer to survive the resume")
	}
	if answer.Selected != models.AnswerD || answer.IsCorrect {
		t.Errorf("unexpected restored answer: %+v", answer)
	}
	if resumed.Current != 1 {
		t.Errorf("expected to resume at index 1, got %d", resumed.Current)
	}
}

func TestCompletingSetSessionClearsCheckpoint(t *testing.T) {
	fx := newFixture()
	view, _ := fx.service.CreateSession(KindSet, "set-1", false)
	fx.service.SubmitAnswer(view.SessionID, "q1", models.AnswerA)

	result, err := fx.service.Complete(view.SessionID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if result.Score.Correct != 1 || result.Score.Wrong != 2 {
		t.Errorf("expected 1 correct / 2 wrong with unanswered as wrong, got %+v", result.Score)
	}
	if _, ok := fx.progress.saved[progressKey(models.ProgressSet, "set-1")]; ok {
		t.Error("expected the checkpoint to be cleared on completion")
	}
	if len(result.WrongQuestionIDs) != 2 {
		t.Errorf("expected q2 and q3 wrong, got %v", result.WrongQuestionIDs)
	}
}

func TestCompletingTrainSessionMarksTrainDone(t *testing.T) {
	fx := newFixture()
	view, _ := fx.service.CreateSession(KindTrain, "train-1", false)

	if _, err := fx.service.Complete(view.SessionID); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(fx.training.completed) != 1 || fx.training.completed[0] != "train-1" {
		t.Errorf("expected train-1 completion, got %v", fx.training.completed)
	}
}

func TestMistakeCompletionAppliesMasteryExactlyOnce(t *testing.T) {
	fx := newFixture()
	view, _ := fx.service.CreateSession(KindMistake, "snap-1", false)

	// Answer both remaining questions; the last submit completes the run.
	if _, _, err := fx.service.SubmitAnswer(view.SessionID, "q3", models.AnswerC); err != nil {
		t.Fatalf("SubmitAnswer q3: %v", err)
	}
	if _, _, err := fx.service.SubmitAnswer(view.SessionID, "q1", models.AnswerB); err != nil {
		t.Fatalf("SubmitAnswer q1: %v", err)
	}

	if len(fx.mistakes.reviews) != 1 {
		t.Fatalf("expected exactly one mastery update, got %d", len(fx.mistakes.reviews))
	}
	review := fx.mistakes.reviews[0]
	if !review["q3"] || review["q1"] {
		t.Errorf("unexpected correctness map: %v", review)
	}

	// A second explicit complete must not re-apply the update.
	if _, err := fx.service.Complete(view.SessionID); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(fx.mistakes.reviews) != 1 {
		t.Errorf("mastery update ran twice")
	}
}

func TestRestartRequiresConfirmation(t *testing.T) {
	fx := newFixture()
	view, _ := fx.service.CreateSession(KindSet, "set-1", false)

	_, err := fx.service.Restart(view.SessionID, false)
	var invalid *models.InvalidStateError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidStateError without confirmation, got %v", err)
	}

	fx.service.SubmitAnswer(view.SessionID, "q1", models.AnswerA)
	restarted, err := fx.service.Restart(view.SessionID, true)
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if len(restarted.Answers) != 0 || restarted.Current != 0 {
		t.Errorf("restart did not reset the session: %+v", restarted)
	}
}

func TestSnapshotFromSession(t *testing.T) {
	fx := newFixture()
	view, _ := fx.service.CreateSession(KindSet, "set-1", false)
	fx.service.SubmitAnswer(view.SessionID, "q1", models.AnswerD)

	if _, err := fx.service.SnapshotFromSession(view.SessionID, "retry these"); err == nil {
		t.Fatal("expected rejection while session is in progress")
	}

	if _, err := fx.service.Complete(view.SessionID); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	snap, err := fx.service.SnapshotFromSession(view.SessionID, "retry these")
	if err != nil {
		t.Fatalf("SnapshotFromSession: %v", err)
	}
	if len(snap.WrongQuestionIDs) != 3 {
		t.Errorf("expected q1 (wrong) plus q2,q3 (unanswered), got %v", snap.WrongQuestionIDs)
	}
	if len(fx.mistakes.created) != 1 || fx.mistakes.created[0].BaseScope != models.ScopeSet {
		t.Errorf("unexpected snapshot request: %+v", fx.mistakes.created)
	}
}

func idsOf(questions []models.Question) []string {
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}
