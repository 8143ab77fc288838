package mastery

import (
	"reflect"
	"testing"

	"github.com/quizdrill/backend/internal/models"
)

func snapshot(wrongIDs []string, streaks map[string]int) *models.MistakeSnapshot {
	return &models.MistakeSnapshot{
		SnapshotID:       "snap-1",
		BaseScope:        models.ScopeSet,
		BaseScopeID:      "set-1",
		Title:            "round 1 mistakes",
		WrongQuestionIDs: wrongIDs,
		CorrectStreak:    streaks,
	}
}

func TestApplyReviewProgressionToArchive(t *testing.T) {
	snap := snapshot([]string{"q1", "q2"}, nil)

	// Round 1: only q1 reviewed, correctly.
	upd := ApplyReview(snap, map[string]bool{"q1": true})
	if upd.CorrectStreak["q1"] != 1 {
		t.Errorf("after round 1, q1 streak = %d, want 1", upd.CorrectStreak["q1"])
	}
	if upd.IsArchived {
		t.Error("after round 1, archived = true; q2 still at 0")
	}

	// Round 2: both correct — q1 mastered, q2 at 1.
	snap.CorrectStreak = upd.CorrectStreak
	upd = ApplyReview(snap, map[string]bool{"q1": true, "q2": true})
	if upd.CorrectStreak["q1"] != 2 || upd.CorrectStreak["q2"] != 1 {
		t.Errorf("after round 2, streaks = %v, want q1:2 q2:1", upd.CorrectStreak)
	}
	if upd.IsArchived {
		t.Error("after round 2, archived = true; q2 below streak")
	}

	// Round 3: only q2 reviewed. q1 keeps its prior streak for the check.
	snap.CorrectStreak = upd.CorrectStreak
	upd = ApplyReview(snap, map[string]bool{"q2": true})
	if upd.CorrectStreak["q1"] != 2 || upd.CorrectStreak["q2"] != 2 {
		t.Errorf("after round 3, streaks = %v, want q1:2 q2:2", upd.CorrectStreak)
	}
	if !upd.IsArchived {
		t.Error("after round 3, archived = false; every original wrong id is mastered")
	}
}

func TestApplyReviewWrongAnswerResetsStreak(t *testing.T) {
	snap := snapshot([]string{"q1"}, map[string]int{"q1": 1})

	upd := ApplyReview(snap, map[string]bool{"q1": false})
	if got := upd.CorrectStreak["q1"]; got != 0 {
		t.Errorf("streak after wrong answer = %d, want 0 (two in a row, not two total)", got)
	}
	if upd.IsArchived {
		t.Error("archived after reset")
	}
}

func TestApplyReviewArchivalUsesOriginalList(t *testing.T) {
	// q2 was mastered earlier and is not in this round; the archival check
	// must still include it — and must still see q3, never reviewed at all.
	snap := snapshot([]string{"q1", "q2", "q3"}, map[string]int{"q1": 1, "q2": 2})

	upd := ApplyReview(snap, map[string]bool{"q1": true})
	if upd.CorrectStreak["q1"] != 2 {
		t.Fatalf("q1 streak = %d, want 2", upd.CorrectStreak["q1"])
	}
	if upd.IsArchived {
		t.Error("archived with q3 never reviewed (streak 0)")
	}
}

func TestApplyReviewDoesNotMutateInput(t *testing.T) {
	original := map[string]int{"q1": 1}
	snap := snapshot([]string{"q1"}, original)

	ApplyReview(snap, map[string]bool{"q1": false})
	if original["q1"] != 1 {
		t.Errorf("input streak map mutated: %v", original)
	}
}

func TestApplyReviewEmptyRound(t *testing.T) {
	snap := snapshot([]string{"q1"}, map[string]int{"q1": 2})

	// Nothing reviewed: streaks unchanged, archival still recomputed.
	upd := ApplyReview(snap, map[string]bool{})
	if !upd.IsArchived {
		t.Error("snapshot with all ids mastered should archive on recompute")
	}
	if !reflect.DeepEqual(upd.CorrectStreak, map[string]int{"q1": 2}) {
		t.Errorf("streaks = %v, want unchanged", upd.CorrectStreak)
	}
}

func TestRemainingQuestionIDs(t *testing.T) {
	snap := snapshot([]string{"q1", "q2", "q3", "q4"}, map[string]int{"q2": 2, "q4": 1})

	got := RemainingQuestionIDs(snap)
	want := []string{"q1", "q3", "q4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RemainingQuestionIDs = %v, want %v (original order)", got, want)
	}
}

func TestRemainingQuestionIDsAllMastered(t *testing.T) {
	snap := snapshot([]string{"q1"}, map[string]int{"q1": 3})
	if got := RemainingQuestionIDs(snap); got != nil {
		t.Errorf("RemainingQuestionIDs = %v, want nil", got)
	}
}
