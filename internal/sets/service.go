package sets

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/quizdrill/backend/internal/models"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// ── Import ──────────────────────────────────────────────

// ImportOutcome is either a created set (Format A) or a preview awaiting
// set metadata (Format B). Exactly one field is set.
type ImportOutcome struct {
	Result  *models.ImportResult
	Preview *models.ImportPreview
}

// Import handles the initial upload. Format A payloads are validated
// all-or-nothing and stored as a locked set; Format B payloads return a
// preview and wait for metadata.
func (s *Service) Import(ctx context.Context, raw []byte) (*ImportOutcome, error) {
	parsed, err := ParseImport(raw)
	if err != nil {
		return nil, err
	}

	if errs := ValidateQuestions(parsed.Questions); len(errs) > 0 {
		return nil, &models.ValidationError{Details: errs}
	}

	if parsed.Format == FormatB {
		preview := BuildPreview(parsed.Questions)
		return &ImportOutcome{Preview: &preview}, nil
	}

	if errs := ValidateMeta(parsed.SetMeta); len(errs) > 0 {
		return nil, &models.ValidationError{Details: errs}
	}

	result, err := s.createImportedSet(ctx, *parsed.SetMeta, parsed.Questions)
	if err != nil {
		return nil, err
	}
	return &ImportOutcome{Result: result}, nil
}

// ImportWithMeta finalizes a Format B import once the admin supplied the
// set metadata.
func (s *Service) ImportWithMeta(ctx context.Context, payload models.ImportFormatA) (*models.ImportResult, error) {
	var errs []models.FieldError
	errs = append(errs, ValidateMeta(&payload.SetMeta)...)
	errs = append(errs, ValidateQuestions(payload.Questions)...)
	if len(errs) > 0 {
		return nil, &models.ValidationError{Details: errs}
	}
	return s.createImportedSet(ctx, payload.SetMeta, payload.Questions)
}

func (s *Service) createImportedSet(ctx context.Context, meta models.QuestionSetMeta, questions []models.Question) (*models.ImportResult, error) {
	questions = NormalizeQuestions(questions)

	set := &models.QuestionSet{
		SetID:         uuid.NewString(),
		Title:         meta.Title,
		Description:   meta.Description,
		VersionLabel:  meta.VersionLabel,
		CreatedAt:     time.Now().UTC(),
		QuestionCount: len(questions),
		IsLocked:      true, // imported sets are locked; only clones are editable
		Questions:     questions,
	}

	if err := s.store.CreateSet(ctx, set); err != nil {
		return nil, fmt.Errorf("store imported set: %w", err)
	}

	log.Printf("[import] created set %s (%d questions)", set.SetID, len(questions))
	return &models.ImportResult{Success: true, SetID: set.SetID, QuestionCount: len(questions)}, nil
}

// ── Sets ────────────────────────────────────────────────

func (s *Service) List(search, sortBy string) ([]models.QuestionSet, error) {
	return s.store.ListSets(search, sortBy)
}

func (s *Service) Get(setID string) (*models.QuestionSet, error) {
	return s.store.GetSet(setID)
}

func (s *Service) Delete(setID string) error {
	return s.store.DeleteSet(setID)
}

// Clone copies a set into a fresh, unlocked one. Cloned questions get new
// ids so the copy's pool never collides with the original's.
func (s *Service) Clone(ctx context.Context, setID string) (*models.QuestionSet, error) {
	original, err := s.store.GetSet(setID)
	if err != nil {
		return nil, err
	}

	clone := &models.QuestionSet{
		SetID:         uuid.NewString(),
		Title:         original.Title + " (Copy)",
		Description:   original.Description,
		VersionLabel:  original.VersionLabel,
		CreatedAt:     time.Now().UTC(),
		QuestionCount: original.QuestionCount,
		IsLocked:      false,
		ParentSetID:   &original.SetID,
	}

	clone.Questions = make([]models.Question, len(original.Questions))
	for i, q := range original.Questions {
		q.ID = uuid.NewString()
		clone.Questions[i] = q
	}

	if err := s.store.CreateSet(ctx, clone); err != nil {
		return nil, fmt.Errorf("store cloned set: %w", err)
	}
	return clone, nil
}

// Export renders a set in Format A so it round-trips through import.
func (s *Service) Export(setID string) (*models.ImportFormatA, error) {
	set, err := s.store.GetSet(setID)
	if err != nil {
		return nil, err
	}
	return &models.ImportFormatA{
		SetMeta: models.QuestionSetMeta{
			Title:        set.Title,
			Description:  set.Description,
			VersionLabel: set.VersionLabel,
		},
		Questions: set.Questions,
	}, nil
}

func (s *Service) Topics() ([]string, error) {
	return s.store.ListTopics()
}

func (s *Service) QuestionsByIDs(ids []string) ([]models.Question, error) {
	return s.store.GetQuestionsByIDs(ids)
}
