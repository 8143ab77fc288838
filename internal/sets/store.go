package sets

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/quizdrill/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Question Sets ───────────────────────────────────────

// CreateSet inserts the set and its owned questions in one transaction.
// A duplicate set id fails the whole insert; nothing is written.
func (s *Store) CreateSet(ctx context.Context, set *models.QuestionSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO question_sets (set_id, title, description, version_label, created_at, question_count, is_locked, parent_set_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		set.SetID, set.Title, set.Description, set.VersionLabel,
		set.CreatedAt, set.QuestionCount, set.IsLocked, set.ParentSetID,
	)
	if err != nil {
		return fmt.Errorf("insert set: %w", err)
	}

	for i, q := range set.Questions {
		choices, err := json.Marshal(q.Choices)
		if err != nil {
			return fmt.Errorf("marshal choices for %s: %w", q.ID, err)
		}
		tags, err := json.Marshal(q.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags for %s: %w", q.ID, err)
		}

		_, err = tx.Exec(
			`INSERT INTO questions (set_id, id, position, topic, difficulty, stem, choices, answer, explanation, tags, source, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			set.SetID, q.ID, i, q.Topic, q.Difficulty, q.Stem,
			choices, q.Answer, q.Explanation, tags, q.Source, q.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert question %s: %w", q.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set: %w", err)
	}
	return nil
}

// ListSets returns set metadata without questions. sortBy is one of
// date (newest first), title, or count (largest first).
func (s *Store) ListSets(search, sortBy string) ([]models.QuestionSet, error) {
	order := "created_at DESC"
	switch sortBy {
	case "title":
		order = "title ASC"
	case "count":
		order = "question_count DESC"
	}

	query := `SELECT set_id, title, description, version_label, created_at, question_count, is_locked, parent_set_id
	          FROM question_sets`
	var args []interface{}
	if search != "" {
		query += ` WHERE title ILIKE $1 OR description ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY ` + order

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer rows.Close()

	var sets []models.QuestionSet
	for rows.Next() {
		var set models.QuestionSet
		if err := rows.Scan(&set.SetID, &set.Title, &set.Description, &set.VersionLabel,
			&set.CreatedAt, &set.QuestionCount, &set.IsLocked, &set.ParentSetID); err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

func (s *Store) GetSet(setID string) (*models.QuestionSet, error) {
	var set models.QuestionSet
	err := s.db.QueryRow(
		`SELECT set_id, title, description, version_label, created_at, question_count, is_locked, parent_set_id
		 FROM question_sets WHERE set_id = $1`,
		setID,
	).Scan(&set.SetID, &set.Title, &set.Description, &set.VersionLabel,
		&set.CreatedAt, &set.QuestionCount, &set.IsLocked, &set.ParentSetID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("set %s: %w", setID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get set: %w", err)
	}

	questions, err := s.questionsForSet(setID)
	if err != nil {
		return nil, err
	}
	set.Questions = questions
	return &set, nil
}

func (s *Store) questionsForSet(setID string) ([]models.Question, error) {
	rows, err := s.db.Query(
		questionSelect+` WHERE set_id = $1 ORDER BY position`,
		setID,
	)
	if err != nil {
		return nil, fmt.Errorf("questions for set: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// DeleteSet removes the set; owned questions cascade with it.
func (s *Store) DeleteSet(setID string) error {
	res, err := s.db.Exec(`DELETE FROM question_sets WHERE set_id = $1`, setID)
	if err != nil {
		return fmt.Errorf("delete set: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set %s: %w", setID, models.ErrNotFound)
	}
	return nil
}

// ── Questions ───────────────────────────────────────────

const questionSelect = `SELECT id, topic, difficulty, stem, choices, answer, explanation, tags, source, created_at
	 FROM questions`

func scanQuestions(rows *sql.Rows) ([]models.Question, error) {
	var questions []models.Question
	for rows.Next() {
		var q models.Question
		var choices, tags []byte
		if err := rows.Scan(&q.ID, &q.Topic, &q.Difficulty, &q.Stem,
			&choices, &q.Answer, &q.Explanation, &tags, &q.Source, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(choices, &q.Choices); err != nil {
			return nil, fmt.Errorf("decode choices for %s: %w", q.ID, err)
		}
		if err := json.Unmarshal(tags, &q.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for %s: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetQuestionsByIDs fetches questions by id in no particular order; callers
// that care about ordering rearrange against their id list.
func (s *Store) GetQuestionsByIDs(ids []string) ([]models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(
		questionSelect+` WHERE id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("questions by ids: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// QuestionFilter narrows the training pool. Empty slices mean "no filter".
type QuestionFilter struct {
	Topics       []string
	Difficulties []models.Difficulty
	SourceSetIDs []string
}

func (s *Store) GetAllQuestions(filter QuestionFilter) ([]models.Question, error) {
	var conds []string
	var args []interface{}

	if len(filter.Topics) > 0 {
		args = append(args, pq.Array(filter.Topics))
		conds = append(conds, fmt.Sprintf("topic = ANY($%d)", len(args)))
	}
	if len(filter.Difficulties) > 0 {
		diffs := make([]int64, len(filter.Difficulties))
		for i, d := range filter.Difficulties {
			diffs[i] = int64(d)
		}
		args = append(args, pq.Array(diffs))
		conds = append(conds, fmt.Sprintf("difficulty = ANY($%d)", len(args)))
	}
	if len(filter.SourceSetIDs) > 0 {
		args = append(args, pq.Array(filter.SourceSetIDs))
		conds = append(conds, fmt.Sprintf("set_id = ANY($%d)", len(args)))
	}

	query := questionSelect
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("all questions: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func (s *Store) ListTopics() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT topic FROM questions ORDER BY topic`)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}
