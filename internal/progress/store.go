package progress

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/quizdrill/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveProgress upserts the checkpoint for one scope. The previous checkpoint
// for the same (scope, scopeId) is overwritten, never merged.
func (s *Store) SaveProgress(p *models.UserProgress) error {
	answers, err := json.Marshal(p.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO user_progress (scope, scope_id, answers, last_question_index, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (scope, scope_id)
		 DO UPDATE SET answers = $3, last_question_index = $4, updated_at = $5`,
		p.Scope, p.ScopeID, answers, p.LastQuestionIndex, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (s *Store) GetProgress(scope models.ProgressScope, scopeID string) (*models.UserProgress, error) {
	var p models.UserProgress
	var answers []byte

	err := s.db.QueryRow(
		`SELECT scope, scope_id, answers, last_question_index, updated_at
		 FROM user_progress WHERE scope = $1 AND scope_id = $2`,
		scope, scopeID,
	).Scan(&p.Scope, &p.ScopeID, &answers, &p.LastQuestionIndex, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("progress %s/%s: %w", scope, scopeID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}

	if err := json.Unmarshal(answers, &p.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return &p, nil
}

func (s *Store) DeleteProgress(scope models.ProgressScope, scopeID string) error {
	_, err := s.db.Exec(
		`DELETE FROM user_progress WHERE scope = $1 AND scope_id = $2`,
		scope, scopeID,
	)
	if err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}

// RecordAnswer appends one row to the answer history. History rows are never
// updated or deleted.
func (s *Store) RecordAnswer(event *models.AnswerEvent) error {
	_, err := s.db.Exec(
		`INSERT INTO answer_history (scope, scope_id, question_id, selected, correct, answered_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		event.Scope, event.ScopeID, event.QuestionID, event.Selected, event.Correct, event.AnsweredAt,
	)
	if err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	return nil
}
