package mistakes

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/quizdrill/backend/internal/mastery"
	"github.com/quizdrill/backend/internal/models"
)

// Storage is what the service needs from persistence. *Store satisfies it;
// tests plug in an in-memory fake.
type Storage interface {
	CreateSnapshot(snap *models.MistakeSnapshot) error
	GetSnapshot(snapshotID string) (*models.MistakeSnapshot, error)
	ListSnapshots(includeArchived, includeDeleted bool) ([]models.MistakeSnapshot, error)
	UpdateSnapshot(snapshotID string, streaks map[string]int, isArchived bool) error
	SoftDeleteSnapshot(snapshotID string, deletedAt time.Time) error
}

type Service struct {
	store Storage
}

func NewService(store Storage) *Service {
	return &Service{store: store}
}

func (s *Service) CreateSnapshot(req models.CreateSnapshotRequest) (*models.MistakeSnapshot, error) {
	if !req.BaseScope.Valid() {
		return nil, models.NewInvalidState("createSnapshot", "baseScope must be set or train")
	}
	if len(req.WrongQuestionIDs) == 0 {
		return nil, models.NewInvalidState("createSnapshot", "wrongQuestionIds must not be empty")
	}

	title := req.Title
	if title == "" {
		title = "Mistake review " + time.Now().Format("2006-01-02")
	}

	snap := &models.MistakeSnapshot{
		SnapshotID:       uuid.NewString(),
		BaseScope:        req.BaseScope,
		BaseScopeID:      req.BaseScopeID,
		CreatedAt:        time.Now().UTC(),
		Title:            title,
		WrongQuestionIDs: req.WrongQuestionIDs,
		CorrectStreak:    map[string]int{},
		IsArchived:       false,
	}
	if err := s.store.CreateSnapshot(snap); err != nil {
		return nil, err
	}
	log.Printf("[mistakes] created snapshot %s (%d questions)", snap.SnapshotID, len(snap.WrongQuestionIDs))
	return snap, nil
}

func (s *Service) GetSnapshot(snapshotID string) (*models.MistakeSnapshot, error) {
	return s.store.GetSnapshot(snapshotID)
}

func (s *Service) ListSnapshots(includeArchived bool) ([]models.MistakeSnapshot, error) {
	return s.store.ListSnapshots(includeArchived, false)
}

// ApplyReview folds one review round into a snapshot's streaks and persists
// the result. Archival flips on only when every question from the original
// wrong list has reached the mastery streak.
func (s *Service) ApplyReview(snapshotID string, answers map[string]bool) (*models.UpdateSnapshotResponse, error) {
	snap, err := s.store.GetSnapshot(snapshotID)
	if err != nil {
		return nil, err
	}
	if snap.DeletedAt != nil {
		return nil, models.NewInvalidState("updateSnapshot", "snapshot is deleted")
	}

	update := mastery.ApplyReview(snap, answers)
	if err := s.store.UpdateSnapshot(snapshotID, update.CorrectStreak, update.IsArchived); err != nil {
		return nil, err
	}
	if update.IsArchived && !snap.IsArchived {
		log.Printf("[mistakes] snapshot %s fully mastered, archiving", snapshotID)
	}

	return &models.UpdateSnapshotResponse{
		SnapshotID:    snapshotID,
		CorrectStreak: update.CorrectStreak,
		IsArchived:    update.IsArchived,
	}, nil
}

func (s *Service) DeleteSnapshot(snapshotID string) error {
	return s.store.SoftDeleteSnapshot(snapshotID, time.Now().UTC())
}

// RemainingQuestionIDs lists the not-yet-mastered questions of a snapshot,
// in the original wrong-list order. An archived snapshot has none.
func (s *Service) RemainingQuestionIDs(snapshotID string) ([]string, error) {
	snap, err := s.store.GetSnapshot(snapshotID)
	if err != nil {
		return nil, err
	}
	return mastery.RemainingQuestionIDs(snap), nil
}
