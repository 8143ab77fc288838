package models

import "time"

type ProgressScope string

const (
	ProgressSet      ProgressScope = "set"
	ProgressTrain    ProgressScope = "train"
	ProgressSnapshot ProgressScope = "mistakeSnapshot"
)

// UserAnswer is one recorded submission inside a session. Once recorded it
// is immutable for that pass — revisiting the question re-displays it.
type UserAnswer struct {
	Selected   AnswerLetter `json:"selected"`
	IsCorrect  bool         `json:"is_correct"`
	AnsweredAt time.Time    `json:"answered_at"`
}

// UserProgress is the persisted checkpoint of a session, upserted on
// (scope, scope_id) so an interrupted run can be resumed.
type UserProgress struct {
	Scope             ProgressScope         `json:"scope"`
	ScopeID           string                `json:"scope_id"`
	Answers           map[string]UserAnswer `json:"answers"`
	LastQuestionIndex int                   `json:"last_question_index"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// AnswerEvent is the append-only history row behind the statistics
// dashboard: one row per submitted answer.
type AnswerEvent struct {
	Scope      ProgressScope `json:"scope"`
	ScopeID    string        `json:"scope_id"`
	QuestionID string        `json:"question_id"`
	Selected   AnswerLetter  `json:"selected"`
	Correct    bool          `json:"correct"`
	AnsweredAt time.Time     `json:"answered_at"`
}
