package stats

import (
	"database/sql"
	"fmt"
	"time"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type overallRow struct {
	TotalAnswered int
	TotalCorrect  int
}

func (s *Store) Overall() (overallRow, error) {
	var row overallRow
	err := s.db.QueryRow(
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE correct) FROM answer_history`,
	).Scan(&row.TotalAnswered, &row.TotalCorrect)
	if err != nil {
		return overallRow{}, fmt.Errorf("overall stats: %w", err)
	}
	return row, nil
}

type topicRow struct {
	Topic    string
	Answered int
	Correct  int
}

// TopicBreakdown aggregates the answer history per topic. History rows join
// back to questions by id; a question deleted with its set drops out of the
// breakdown.
func (s *Store) TopicBreakdown() ([]topicRow, error) {
	rows, err := s.db.Query(
		`SELECT q.topic, COUNT(*), COUNT(*) FILTER (WHERE h.correct)
		 FROM answer_history h
		 JOIN questions q ON q.id = h.question_id
		 GROUP BY q.topic
		 ORDER BY q.topic`,
	)
	if err != nil {
		return nil, fmt.Errorf("topic breakdown: %w", err)
	}
	defer rows.Close()

	var out []topicRow
	for rows.Next() {
		var r topicRow
		if err := rows.Scan(&r.Topic, &r.Answered, &r.Correct); err != nil {
			return nil, fmt.Errorf("scan topic row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type difficultyRow struct {
	Difficulty int
	Answered   int
	Correct    int
}

func (s *Store) DifficultyBreakdown() ([]difficultyRow, error) {
	rows, err := s.db.Query(
		`SELECT q.difficulty, COUNT(*), COUNT(*) FILTER (WHERE h.correct)
		 FROM answer_history h
		 JOIN questions q ON q.id = h.question_id
		 GROUP BY q.difficulty
		 ORDER BY q.difficulty`,
	)
	if err != nil {
		return nil, fmt.Errorf("difficulty breakdown: %w", err)
	}
	defer rows.Close()

	var out []difficultyRow
	for rows.Next() {
		var r difficultyRow
		if err := rows.Scan(&r.Difficulty, &r.Answered, &r.Correct); err != nil {
			return nil, fmt.Errorf("scan difficulty row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type dailyRow struct {
	Day      time.Time
	Answered int
	Correct  int
}

// DailyActivity returns per-day answer counts for the last n days, most
// recent first. Days with no activity are absent.
func (s *Store) DailyActivity(days int) ([]dailyRow, error) {
	rows, err := s.db.Query(
		`SELECT date_trunc('day', answered_at) AS day, COUNT(*), COUNT(*) FILTER (WHERE correct)
		 FROM answer_history
		 WHERE answered_at >= NOW() - make_interval(days => $1)
		 GROUP BY day
		 ORDER BY day DESC`,
		days,
	)
	if err != nil {
		return nil, fmt.Errorf("daily activity: %w", err)
	}
	defer rows.Close()

	var out []dailyRow
	for rows.Next() {
		var r dailyRow
		if err := rows.Scan(&r.Day, &r.Answered, &r.Correct); err != nil {
			return nil, fmt.Errorf("scan daily row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
