package practice

import (
	"errors"
	"reflect"
	"testing"

	"github.com/quizdrill/backend/internal/models"
)

func threeQuestions() []models.Question {
	mk := func(id string, answer models.AnswerLetter) models.Question {
		return models.Question{
			ID:         id,
			Topic:      "subnetting",
			Difficulty: models.DifficultyMedium,
			Stem:       "stem " + id,
			Choices:    []string{"w", "x", "y", "z"},
			Answer:     answer,
		}
	}
	return []models.Question{mk("q1", models.AnswerA), mk("q2", models.AnswerB), mk("q3", models.AnswerC)}
}

func startedSession(t *testing.T, kind Kind) *Session {
	t.Helper()
	s := NewSession("sess-1", kind, "scope-1", threeQuestions())
	if s.State != StateLoading {
		t.Fatalf("new session state = %s, want loading", s.State)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func TestSubmitAdvancesAndReveals(t *testing.T) {
	s := startedSession(t, KindSet)

	res, err := s.Submit("q1", 0)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !res.IsCorrect {
		t.Error("q1 answer 0 should be correct")
	}
	if s.Current != 1 {
		t.Errorf("Current = %d, want 1", s.Current)
	}
	if s.State != StateInProgress {
		t.Errorf("State = %s, want in_progress", s.State)
	}
}

func TestSubmitLastQuestionCompletes(t *testing.T) {
	s := startedSession(t, KindSet)

	s.Submit("q1", 0)
	s.Submit("q2", 1)
	if _, err := s.Submit("q3", 3); err != nil {
		t.Fatalf("Submit q3: %v", err)
	}
	if s.State != StateComplete {
		t.Errorf("State = %s, want complete after last question", s.State)
	}

	// Nothing reachable after complete.
	if _, err := s.Submit("q1", 0); err == nil {
		t.Error("Submit on complete session should fail")
	}
	if err := s.Goto(0); err == nil {
		t.Error("Goto on complete session should fail")
	}
}

func TestSubmitIsImmutable(t *testing.T) {
	s := startedSession(t, KindSet)

	if _, err := s.Submit("q1", 2); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	_, err := s.Submit("q1", 0)
	var ise *models.InvalidStateError
	if !errors.As(err, &ise) {
		t.Fatalf("resubmission error = %v, want InvalidStateError", err)
	}
	if s.Answers["q1"] != 2 {
		t.Errorf("recorded answer changed to %d, want 2", s.Answers["q1"])
	}
}

func TestSubmitRejectsOutOfRangeBeforeRecording(t *testing.T) {
	s := startedSession(t, KindSet)

	if _, err := s.Submit("q1", 7); err == nil {
		t.Fatal("out-of-range choice accepted")
	}
	if _, recorded := s.Answers["q1"]; recorded {
		t.Error("out-of-range choice was recorded")
	}
	if s.Current != 0 {
		t.Error("out-of-range choice advanced the session")
	}
}

func TestSubmitUnknownQuestion(t *testing.T) {
	s := startedSession(t, KindSet)
	_, err := s.Submit("nope", 0)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGotoRevisitIsIdempotent(t *testing.T) {
	s := startedSession(t, KindSet)

	s.Submit("q1", 0)
	s.Submit("q2", 3) // wrong

	if err := s.Goto(0); err != nil {
		t.Fatalf("Goto: %v", err)
	}
	if s.Current != 0 {
		t.Errorf("Current = %d, want 0", s.Current)
	}

	// Revisiting never discards or mutates recorded answers or the score.
	before := s.Score()
	s.Goto(1)
	s.Goto(0)
	after := s.Score()
	if !reflect.DeepEqual(before, after) {
		t.Errorf("score changed across navigation: %+v vs %+v", before, after)
	}
	if s.Answers["q2"] != 3 {
		t.Error("recorded answer lost on revisit")
	}

	if err := s.Goto(5); err == nil {
		t.Error("Goto out of range should fail")
	}
}

func TestFinishEarlyScoresUnansweredAsWrong(t *testing.T) {
	s := startedSession(t, KindTrain)

	s.Submit("q1", 0) // correct
	if err := s.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if s.State != StateComplete {
		t.Fatalf("State = %s, want complete", s.State)
	}

	score := s.Score()
	if score.Total != 3 || score.Correct != 1 || score.Wrong != 2 {
		t.Errorf("score = %+v, want total=3 correct=1 wrong=2", score)
	}

	if err := s.Finish(); err == nil {
		t.Error("double Finish should fail")
	}
}

func TestRestartClearsState(t *testing.T) {
	s := startedSession(t, KindSet)
	s.Submit("q1", 0)
	s.Submit("q2", 0)
	s.Finish()

	s.Restart()
	if s.State != StateInProgress {
		t.Errorf("State = %s, want in_progress", s.State)
	}
	if len(s.Answers) != 0 || s.Current != 0 {
		t.Errorf("answers/current not reset: %v / %d", s.Answers, s.Current)
	}
	if s.MasteryApplied {
		t.Error("MasteryApplied not reset")
	}
}

func TestWrongQuestionIDsOrderAndAbsence(t *testing.T) {
	s := startedSession(t, KindSet)
	s.Submit("q1", 1) // wrong
	s.Submit("q2", 1) // correct
	// q3 unanswered
	s.Finish()

	got := s.WrongQuestionIDs()
	want := []string{"q1", "q3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WrongQuestionIDs = %v, want %v", got, want)
	}
}

func TestCorrectnessMapCoversAllPresented(t *testing.T) {
	s := startedSession(t, KindMistake)
	s.Submit("q1", 0) // correct
	s.Submit("q2", 0) // wrong
	s.Finish()

	got := s.CorrectnessMap()
	want := map[string]bool{"q1": true, "q2": false, "q3": false}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CorrectnessMap = %v, want %v", got, want)
	}
}

func TestStartRequiresQuestions(t *testing.T) {
	s := NewSession("sess-2", KindTrain, "scope", nil)
	if err := s.Start(); err == nil {
		t.Error("Start with no questions should fail")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	s := NewSession("sess-9", KindSet, "set-1", threeQuestions())
	r.Add(s)

	got, err := r.Get("sess-9")
	if err != nil || got != s {
		t.Fatalf("Get = %v, %v", got, err)
	}

	if _, err := r.Get("missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing session err = %v, want ErrNotFound", err)
	}

	r.Remove("sess-9")
	if _, err := r.Get("sess-9"); err == nil {
		t.Error("session still present after Remove")
	}
}
