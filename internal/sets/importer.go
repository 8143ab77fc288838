package sets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/quizdrill/backend/internal/models"
)

// Import payloads arrive in two shapes. Format A carries its own set
// metadata and can be stored directly; Format B is a bare question array
// that needs metadata from a follow-up request. The two are discriminated
// by the presence of a setMeta field, not by probing the payload shape.
type ImportFormat string

const (
	FormatA ImportFormat = "A"
	FormatB ImportFormat = "B"
)

type ParsedImport struct {
	Format    ImportFormat
	SetMeta   *models.QuestionSetMeta
	Questions []models.Question
}

// ParseImport resolves the Format A / Format B union. It only decodes; the
// caller validates with ValidateQuestions / ValidateMeta.
func ParseImport(raw []byte) (*ParsedImport, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty import payload")
	}

	if trimmed[0] == '[' {
		var questions []models.Question
		if err := json.Unmarshal(trimmed, &questions); err != nil {
			return nil, fmt.Errorf("invalid import format: %w", err)
		}
		return &ParsedImport{Format: FormatB, Questions: questions}, nil
	}

	var payload struct {
		SetMeta   *models.QuestionSetMeta `json:"setMeta"`
		Questions []models.Question       `json:"questions"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("invalid import format: %w", err)
	}
	if payload.SetMeta == nil {
		return nil, fmt.Errorf("invalid import format: missing setMeta")
	}
	return &ParsedImport{Format: FormatA, SetMeta: payload.SetMeta, Questions: payload.Questions}, nil
}

// ValidateMeta checks the set metadata supplied with Format A payloads or
// the Format B follow-up.
func ValidateMeta(meta *models.QuestionSetMeta) []models.FieldError {
	var errs []models.FieldError
	if meta == nil {
		return []models.FieldError{{Field: "setMeta", Message: "set metadata is required"}}
	}
	if meta.Title == "" {
		errs = append(errs, models.FieldError{Field: "setMeta.title", Message: "title is required"})
	}
	if meta.VersionLabel == "" {
		errs = append(errs, models.FieldError{Field: "setMeta.versionLabel", Message: "version label is required"})
	}
	return errs
}

// ValidateQuestions reports every field error in the payload, including
// duplicate question ids within it. An import with any error is rejected
// whole; nothing is persisted.
func ValidateQuestions(questions []models.Question) []models.FieldError {
	var errs []models.FieldError
	seen := make(map[string]bool)

	addErr := func(q models.Question, field, message string) {
		id := q.ID
		if id == "" {
			id = "unknown"
		}
		errs = append(errs, models.FieldError{QuestionID: id, Field: field, Message: message})
	}

	if len(questions) == 0 {
		return []models.FieldError{{Field: "questions", Message: "at least one question is required"}}
	}

	for _, q := range questions {
		if q.ID == "" {
			addErr(q, "id", "question ID is required")
		} else if seen[q.ID] {
			addErr(q, "id", fmt.Sprintf("duplicate question ID %q", q.ID))
		}
		seen[q.ID] = true

		if q.Topic == "" {
			addErr(q, "topic", "topic is required")
		}
		if !q.Difficulty.Valid() {
			addErr(q, "difficulty", "difficulty must be 1, 2, or 3")
		}
		if q.Stem == "" {
			addErr(q, "stem", "question stem is required")
		}
		if len(q.Choices) != models.ChoiceCount {
			addErr(q, "choices", fmt.Sprintf("exactly %d choices are required", models.ChoiceCount))
		} else {
			for i, c := range q.Choices {
				if c == "" {
					addErr(q, fmt.Sprintf("choices.%d", i), "choice cannot be empty")
				}
			}
		}
		if !q.Answer.Valid() {
			addErr(q, "answer", "answer must be A, B, C, or D")
		}
		if q.Explanation == "" {
			addErr(q, "explanation", "explanation is required")
		}
		if q.Source == "" {
			addErr(q, "source", "source is required")
		}
	}
	return errs
}

// NormalizeQuestions fills defaults the importer allows to be absent:
// created timestamps and nil tag lists.
func NormalizeQuestions(questions []models.Question) []models.Question {
	now := time.Now().UTC()
	out := make([]models.Question, len(questions))
	for i, q := range questions {
		if q.CreatedAt.IsZero() {
			q.CreatedAt = now
		}
		if q.Tags == nil {
			q.Tags = []string{}
		}
		out[i] = q
	}
	return out
}

// BuildPreview summarizes a valid Format B payload so the admin can confirm
// before supplying set metadata.
func BuildPreview(questions []models.Question) models.ImportPreview {
	topicSet := make(map[string]bool)
	diffSet := make(map[models.Difficulty]bool)
	for _, q := range questions {
		topicSet[q.Topic] = true
		diffSet[q.Difficulty] = true
	}

	topics := make([]string, 0, len(topicSet))
	for t := range topicSet {
		topics = append(topics, t)
	}
	sort.Strings(topics)

	difficulties := make([]models.Difficulty, 0, len(diffSet))
	for d := range diffSet {
		difficulties = append(difficulties, d)
	}
	sort.Slice(difficulties, func(i, j int) bool { return difficulties[i] < difficulties[j] })

	sample := questions
	if len(sample) > 3 {
		sample = sample[:3]
	}

	return models.ImportPreview{
		QuestionCount: len(questions),
		Topics:        topics,
		Difficulties:  difficulties,
		Sample:        sample,
	}
}
