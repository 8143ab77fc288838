package models

import "time"

type BaseScope string

const (
	ScopeSet   BaseScope = "set"
	ScopeTrain BaseScope = "train"
)

func (s BaseScope) Valid() bool {
	return s == ScopeSet || s == ScopeTrain
}

// MistakeSnapshot records the questions answered incorrectly in one practice
// session. WrongQuestionIDs is fixed at creation and never shrinks; archival
// is always judged against the full original list, whatever subset a later
// review presented.
type MistakeSnapshot struct {
	SnapshotID       string         `json:"snapshot_id"`
	BaseScope        BaseScope      `json:"base_scope"`
	BaseScopeID      string         `json:"base_scope_id"`
	CreatedAt        time.Time      `json:"created_at"`
	Title            string         `json:"title"`
	WrongQuestionIDs []string       `json:"wrong_question_ids"`
	CorrectStreak    map[string]int `json:"correct_streak"`
	IsArchived       bool           `json:"is_archived"`
	DeletedAt        *time.Time     `json:"deleted_at,omitempty"`
}

// Streak returns the consecutive-correct counter for a question,
// defaulting to 0 when the question has never been reviewed.
func (m *MistakeSnapshot) Streak(questionID string) int {
	if m.CorrectStreak == nil {
		return 0
	}
	return m.CorrectStreak[questionID]
}

type CreateSnapshotRequest struct {
	BaseScope        BaseScope `json:"base_scope"`
	BaseScopeID      string    `json:"base_scope_id"`
	Title            string    `json:"title"`
	WrongQuestionIDs []string  `json:"wrong_question_ids"`
}

// UpdateSnapshotRequest carries one review round's outcome:
// question id → answered correctly this round.
type UpdateSnapshotRequest struct {
	Answers map[string]bool `json:"answers"`
}

type UpdateSnapshotResponse struct {
	SnapshotID    string         `json:"snapshot_id"`
	CorrectStreak map[string]int `json:"correct_streak"`
	IsArchived    bool           `json:"is_archived"`
}
