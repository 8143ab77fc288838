package mistakes

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quizdrill/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const snapshotSelect = `SELECT snapshot_id, base_scope, base_scope_id, created_at, title,
	        wrong_question_ids, correct_streak, is_archived, deleted_at
	 FROM mistake_snapshots`

func scanSnapshot(row interface{ Scan(...interface{}) error }) (*models.MistakeSnapshot, error) {
	var snap models.MistakeSnapshot
	var wrongIDs, streak []byte
	err := row.Scan(&snap.SnapshotID, &snap.BaseScope, &snap.BaseScopeID, &snap.CreatedAt,
		&snap.Title, &wrongIDs, &streak, &snap.IsArchived, &snap.DeletedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(wrongIDs, &snap.WrongQuestionIDs); err != nil {
		return nil, fmt.Errorf("decode wrong question ids: %w", err)
	}
	if err := json.Unmarshal(streak, &snap.CorrectStreak); err != nil {
		return nil, fmt.Errorf("decode correct streak: %w", err)
	}
	return &snap, nil
}

func (s *Store) CreateSnapshot(snap *models.MistakeSnapshot) error {
	wrongIDs, err := json.Marshal(snap.WrongQuestionIDs)
	if err != nil {
		return fmt.Errorf("marshal wrong question ids: %w", err)
	}
	streak, err := json.Marshal(snap.CorrectStreak)
	if err != nil {
		return fmt.Errorf("marshal correct streak: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO mistake_snapshots (snapshot_id, base_scope, base_scope_id, created_at, title,
		        wrong_question_ids, correct_streak, is_archived)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		snap.SnapshotID, snap.BaseScope, snap.BaseScopeID, snap.CreatedAt,
		snap.Title, wrongIDs, streak, snap.IsArchived,
	)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	return nil
}

func (s *Store) GetSnapshot(snapshotID string) (*models.MistakeSnapshot, error) {
	snap, err := scanSnapshot(s.db.QueryRow(
		snapshotSelect+` WHERE snapshot_id = $1`,
		snapshotID,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot %s: %w", snapshotID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap, nil
}

// ListSnapshots returns snapshots newest first. Active listings never show
// soft-deleted rows; archived ones only do when the caller explicitly asks.
func (s *Store) ListSnapshots(includeArchived, includeDeleted bool) ([]models.MistakeSnapshot, error) {
	query := snapshotSelect
	switch {
	case !includeArchived:
		query += ` WHERE is_archived = FALSE AND deleted_at IS NULL`
	case !includeDeleted:
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []models.MistakeSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, *snap)
	}
	return snaps, rows.Err()
}

// UpdateSnapshot persists a mastery update. Keyed by id, so a retried write
// lands on the same row with the same result.
func (s *Store) UpdateSnapshot(snapshotID string, streaks map[string]int, isArchived bool) error {
	streak, err := json.Marshal(streaks)
	if err != nil {
		return fmt.Errorf("marshal correct streak: %w", err)
	}

	res, err := s.db.Exec(
		`UPDATE mistake_snapshots SET correct_streak = $2, is_archived = $3 WHERE snapshot_id = $1`,
		snapshotID, streak, isArchived,
	)
	if err != nil {
		return fmt.Errorf("update snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("snapshot %s: %w", snapshotID, models.ErrNotFound)
	}
	return nil
}

// SoftDeleteSnapshot marks the row deleted but keeps it. Archive status and
// streaks are untouched; the core never hard-deletes snapshots.
func (s *Store) SoftDeleteSnapshot(snapshotID string, deletedAt time.Time) error {
	res, err := s.db.Exec(
		`UPDATE mistake_snapshots SET deleted_at = $2 WHERE snapshot_id = $1 AND deleted_at IS NULL`,
		snapshotID, deletedAt,
	)
	if err != nil {
		return fmt.Errorf("soft delete snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("snapshot %s: %w", snapshotID, models.ErrNotFound)
	}
	return nil
}

// CountSnapshots reports active and archived totals for the statistics
// dashboard, excluding soft-deleted rows.
func (s *Store) CountSnapshots() (active, archived int, err error) {
	err = s.db.QueryRow(
		`SELECT COUNT(*) FILTER (WHERE NOT is_archived),
		        COUNT(*) FILTER (WHERE is_archived)
		 FROM mistake_snapshots WHERE deleted_at IS NULL`,
	).Scan(&active, &archived)
	if err != nil {
		return 0, 0, fmt.Errorf("count snapshots: %w", err)
	}
	return active, archived, nil
}
