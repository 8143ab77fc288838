package training

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

func (s *Store) CreateTrainSession(session *models.TrainSession) error {
	config, err := json.Marshal(session.Config)
	if err != nil {
		return fmt.Errorf("marshal train config: %w", err)
	}
	questionIDs, err := json.Marshal(session.SelectedQuestionIDs)
	if err != nil {
		return fmt.Errorf("marshal question ids: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO train_sessions (train_session_id, created_at, config, selected_question_ids, status)
		 VALUES ($1, $2, $3, $4, $5)`,
		session.TrainSessionID, session.CreatedAt, config, questionIDs, session.Status,
	)
	if err != nil {
		return fmt.Errorf("create train session: %w", err)
	}
	return nil
}

func (s *Store) GetTrainSession(trainSessionID string) (*models.TrainSession, error) {
	var session models.TrainSession
	var config, questionIDs []byte

	err := s.db.QueryRow(
		`SELECT train_session_id, created_at, config, selected_question_ids, status
		 FROM train_sessions WHERE train_session_id = $1`,
		trainSessionID,
	).Scan(&session.TrainSessionID, &session.CreatedAt, &config, &questionIDs, &session.Status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("train session %s: %w", trainSessionID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get train session: %w", err)
	}

	if err := json.Unmarshal(config, &session.Config); err != nil {
		return nil, fmt.Errorf("decode train config: %w", err)
	}
	if err := json.Unmarshal(questionIDs, &session.SelectedQuestionIDs); err != nil {
		return nil, fmt.Errorf("decode question ids: %w", err)
	}
	return &session, nil
}

func (s *Store) CompleteTrainSession(trainSessionID string) error {
	res, err := s.db.Exec(
		`UPDATE train_sessions SET status = $2 WHERE train_session_id = $1`,
		trainSessionID, models.TrainCompleted,
	)
	if err != nil {
		return fmt.Errorf("complete train session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("train session %s: %w", trainSessionID, models.ErrNotFound)
	}
	return nil
}
