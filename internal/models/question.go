package models

import "time"

type Difficulty int

const (
	DifficultyEasy   Difficulty = 1
	DifficultyMedium Difficulty = 2
	DifficultyHard   Difficulty = 3
)

func (d Difficulty) Valid() bool {
	return d >= DifficultyEasy && d <= DifficultyHard
}

func (d Difficulty) Label() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyMedium:
		return "medium"
	case DifficultyHard:
		return "hard"
	default:
		return "unknown"
	}
}

// AnswerLetter is the stored encoding of a question's correct choice.
type AnswerLetter string

const (
	AnswerA AnswerLetter = "A"
	AnswerB AnswerLetter = "B"
	AnswerC AnswerLetter = "C"
	AnswerD AnswerLetter = "D"
)

// ChoiceCount is the fixed number of choices every question carries.
const ChoiceCount = 4

// Index maps the answer letter to its choice index (A→0 … D→3).
// Returns -1 for anything that is not a valid letter. Every correctness
// check in the codebase goes through this single mapping.
func (a AnswerLetter) Index() int {
	switch a {
	case AnswerA:
		return 0
	case AnswerB:
		return 1
	case AnswerC:
		return 2
	case AnswerD:
		return 3
	default:
		return -1
	}
}

func (a AnswerLetter) Valid() bool {
	return a.Index() >= 0
}

// LetterForIndex is the inverse of AnswerLetter.Index. Returns "" for an
// out-of-range index.
func LetterForIndex(i int) AnswerLetter {
	letters := [ChoiceCount]AnswerLetter{AnswerA, AnswerB, AnswerC, AnswerD}
	if i < 0 || i >= ChoiceCount {
		return ""
	}
	return letters[i]
}

type Question struct {
	ID          string       `json:"id"`
	Topic       string       `json:"topic"`
	Difficulty  Difficulty   `json:"difficulty"`
	Stem        string       `json:"stem"`
	Choices     []string     `json:"choices"`
	Answer      AnswerLetter `json:"answer"`
	Explanation string       `json:"explanation"`
	Tags        []string     `json:"tags"`
	Source      string       `json:"source"`
	CreatedAt   time.Time    `json:"created_at"`
}

type QuestionSetMeta struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	VersionLabel string `json:"versionLabel"`
}

// QuestionSet owns its questions exclusively: deleting a set deletes them.
type QuestionSet struct {
	SetID         string     `json:"set_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	VersionLabel  string     `json:"version_label"`
	CreatedAt     time.Time  `json:"created_at"`
	QuestionCount int        `json:"question_count"`
	IsLocked      bool       `json:"is_locked"`
	ParentSetID   *string    `json:"parent_set_id,omitempty"`
	Questions     []Question `json:"questions,omitempty"`
}
