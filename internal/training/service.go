package training

import (
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/quizdrill/backend/internal/models"
	"github.com/quizdrill/backend/internal/sets"
)

// QuestionSource yields the filtered question pool a session samples from.
// *sets.Store satisfies it.
type QuestionSource interface {
	GetAllQuestions(filter sets.QuestionFilter) ([]models.Question, error)
}

type Storage interface {
	CreateTrainSession(session *models.TrainSession) error
	GetTrainSession(trainSessionID string) (*models.TrainSession, error)
	CompleteTrainSession(trainSessionID string) error
}

type Service struct {
	questions QuestionSource
	store     Storage
}

func NewService(questions QuestionSource, store Storage) *Service {
	return &Service{questions: questions, store: store}
}

// CreateSession samples a training session from the question pool matching
// the config. Sampling is without replacement; the session holds fewer
// questions than requested when the pool runs short.
func (s *Service) CreateSession(config models.TrainConfig) (*models.TrainResponse, error) {
	if len(config.Topics) == 0 {
		return nil, models.NewInvalidState("createTrainSession", "at least one topic is required")
	}
	if len(config.Difficulties) == 0 {
		return nil, models.NewInvalidState("createTrainSession", "at least one difficulty is required")
	}
	for _, d := range config.Difficulties {
		if !d.Valid() {
			return nil, models.NewInvalidState("createTrainSession", "difficulty must be 1, 2 or 3")
		}
	}

	count := config.QuestionCount
	if count <= 0 {
		count = models.DefaultTrainCount
	}
	if count > models.MaxTrainCount {
		count = models.MaxTrainCount
	}
	config.QuestionCount = count

	pool, err := s.questions.GetAllQuestions(sets.QuestionFilter{
		Topics:       config.Topics,
		Difficulties: config.Difficulties,
		SourceSetIDs: config.SourceSetIDs,
	})
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, models.NewInvalidState("createTrainSession", "no questions match the selected filters")
	}

	selected := sample(pool, count)

	session := &models.TrainSession{
		TrainSessionID:      "train-" + uuid.NewString(),
		CreatedAt:           time.Now().UTC(),
		Config:              config,
		SelectedQuestionIDs: questionIDs(selected),
		Status:              models.TrainActive,
	}
	if err := s.store.CreateTrainSession(session); err != nil {
		return nil, err
	}
	log.Printf("[training] created session %s (%d of %d requested)", session.TrainSessionID, len(selected), count)

	return &models.TrainResponse{
		TrainSessionID: session.TrainSessionID,
		Questions:      selected,
		Config:         config,
	}, nil
}

func (s *Service) GetSession(trainSessionID string) (*models.TrainSession, error) {
	return s.store.GetTrainSession(trainSessionID)
}

func (s *Service) CompleteSession(trainSessionID string) error {
	return s.store.CompleteTrainSession(trainSessionID)
}

func sample(pool []models.Question, count int) []models.Question {
	shuffled := make([]models.Question, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count]
}

func questionIDs(questions []models.Question) []string {
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}
