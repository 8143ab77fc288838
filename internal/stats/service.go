package stats

import (
	"time"

	"github.com/quizdrill/backend/internal/scoring"
)

// SnapshotCounter reports mistake-snapshot totals for the dashboard. The
// mistakes store provides the real implementation.
type SnapshotCounter interface {
	CountSnapshots() (active, archived int, err error)
}

// Statistics reads from the append-only answer history, so every figure
// here survives process restarts.
type Service struct {
	store     *Store
	snapshots SnapshotCounter
}

func NewService(store *Store, snapshots SnapshotCounter) *Service {
	return &Service{store: store, snapshots: snapshots}
}

type TopicStat struct {
	Topic    string  `json:"topic"`
	Answered int     `json:"answered"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
	IsWeak   bool    `json:"is_weak"`
}

type DifficultyStat struct {
	Difficulty int     `json:"difficulty"`
	Answered   int     `json:"answered"`
	Correct    int     `json:"correct"`
	Accuracy   float64 `json:"accuracy"`
}

type DayStat struct {
	Day      time.Time `json:"day"`
	Answered int       `json:"answered"`
	Correct  int       `json:"correct"`
}

type Dashboard struct {
	TotalAnswered     int              `json:"total_answered"`
	TotalCorrect      int              `json:"total_correct"`
	Accuracy          float64          `json:"accuracy"`
	Topics            []TopicStat      `json:"topics"`
	Difficulties      []DifficultyStat `json:"difficulties"`
	ActiveSnapshots   int              `json:"active_snapshots"`
	ArchivedSnapshots int              `json:"archived_snapshots"`
	RecentActivity    []DayStat        `json:"recent_activity"`
	Message           string           `json:"message"`
}

const activityWindowDays = 14

func accuracy(correct, answered int) float64 {
	if answered == 0 {
		return 0
	}
	return float64(correct) / float64(answered) * 100
}

func (s *Service) Dashboard() (*Dashboard, error) {
	overall, err := s.store.Overall()
	if err != nil {
		return nil, err
	}
	topics, err := s.store.TopicBreakdown()
	if err != nil {
		return nil, err
	}
	difficulties, err := s.store.DifficultyBreakdown()
	if err != nil {
		return nil, err
	}
	daily, err := s.store.DailyActivity(activityWindowDays)
	if err != nil {
		return nil, err
	}
	active, archived, err := s.snapshots.CountSnapshots()
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		TotalAnswered:     overall.TotalAnswered,
		TotalCorrect:      overall.TotalCorrect,
		Accuracy:          accuracy(overall.TotalCorrect, overall.TotalAnswered),
		Topics:            make([]TopicStat, 0, len(topics)),
		Difficulties:      make([]DifficultyStat, 0, len(difficulties)),
		ActiveSnapshots:   active,
		ArchivedSnapshots: archived,
		RecentActivity:    make([]DayStat, 0, len(daily)),
	}
	d.Message = scoring.ProgressMessage(d.Accuracy)

	for _, t := range topics {
		acc := accuracy(t.Correct, t.Answered)
		d.Topics = append(d.Topics, TopicStat{
			Topic:    t.Topic,
			Answered: t.Answered,
			Correct:  t.Correct,
			Accuracy: acc,
			IsWeak:   acc < scoring.PassThreshold,
		})
	}
	for _, row := range difficulties {
		d.Difficulties = append(d.Difficulties, DifficultyStat{
			Difficulty: row.Difficulty,
			Answered:   row.Answered,
			Correct:    row.Correct,
			Accuracy:   accuracy(row.Correct, row.Answered),
		})
	}
	for _, day := range daily {
		d.RecentActivity = append(d.RecentActivity, DayStat{
			Day:      day.Day,
			Answered: day.Answered,
			Correct:  day.Correct,
		})
	}
	return d, nil
}
