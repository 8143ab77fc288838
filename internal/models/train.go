package models

import "time"

// DefaultTrainCount is the sample size when the caller doesn't ask for one.
const DefaultTrainCount = 20

// MaxTrainCount caps a single training session.
const MaxTrainCount = 100

// TrainConfig filters the question pool for an ad-hoc training session.
// It lives only as long as the session it describes.
type TrainConfig struct {
	Topics        []string     `json:"topics"`
	Difficulties  []Difficulty `json:"difficulties"`
	QuestionCount int          `json:"question_count"`
	SourceSetIDs  []string     `json:"source_set_ids,omitempty"`
}

type TrainStatus string

const (
	TrainActive    TrainStatus = "active"
	TrainCompleted TrainStatus = "completed"
)

type TrainSession struct {
	TrainSessionID      string      `json:"train_session_id"`
	CreatedAt           time.Time   `json:"created_at"`
	Config              TrainConfig `json:"config"`
	SelectedQuestionIDs []string    `json:"selected_question_ids"`
	Status              TrainStatus `json:"status"`
}

type TrainResponse struct {
	TrainSessionID string      `json:"train_session_id"`
	Questions      []Question  `json:"questions"`
	Config         TrainConfig `json:"config"`
}
