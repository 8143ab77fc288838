// Package mastery holds the state machine that moves a mistake snapshot
// from active to archived. A question is mastered after MasteryStreak
// consecutive correct answers in review sessions; a single wrong answer
// resets its counter to zero. The snapshot archives only when every
// question on its original wrong list is mastered.
package mastery

import "github.com/quizdrill/backend/internal/models"

// MasteryStreak is the consecutive-correct count that masters a question.
const MasteryStreak = 2

// Update is the result of applying one review round to a snapshot.
type Update struct {
	CorrectStreak map[string]int
	IsArchived    bool
}

// ApplyReview folds one completed review round into the snapshot's streak
// state. results maps question id → answered correctly this round, with one
// entry per question that was part of the round. The input snapshot is not
// mutated; callers persist the returned state.
//
// Archival is recomputed against the snapshot's original WrongQuestionIDs,
// not the reviewed subset: a question absent from this round keeps its
// prior streak for the check. This is the only transition into or out of
// the archived state.
func ApplyReview(snapshot *models.MistakeSnapshot, results map[string]bool) Update {
	streaks := make(map[string]int, len(snapshot.CorrectStreak)+len(results))
	for id, n := range snapshot.CorrectStreak {
		streaks[id] = n
	}

	for id, correct := range results {
		if correct {
			streaks[id] = streaks[id] + 1
		} else {
			streaks[id] = 0
		}
	}

	archived := true
	for _, id := range snapshot.WrongQuestionIDs {
		if streaks[id] < MasteryStreak {
			archived = false
			break
		}
	}

	return Update{CorrectStreak: streaks, IsArchived: archived}
}

// RemainingQuestionIDs lists the snapshot questions still below the mastery
// streak, preserving the original wrong-list order. Review sessions present
// this subset; archival still judges the full list.
func RemainingQuestionIDs(snapshot *models.MistakeSnapshot) []string {
	var remaining []string
	for _, id := range snapshot.WrongQuestionIDs {
		if snapshot.Streak(id) < MasteryStreak {
			remaining = append(remaining, id)
		}
	}
	return remaining
}
