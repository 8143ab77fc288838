// Package scoring computes correctness, pass/fail, and topic/difficulty
// breakdowns for a practice session. Everything here is a pure function
// over a question list and an answer map; nothing touches storage.
package scoring

import (
	"sort"

	"github.com/quizdrill/backend/internal/models"
)

// PassThreshold is the fixed percentage at or above which a session passes.
const PassThreshold = 70.0

type AnswerResult struct {
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer int    `json:"correct_answer"`
	UserAnswer    int    `json:"user_answer"`
	Explanation   string `json:"explanation,omitempty"`
}

type SessionScore struct {
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Wrong      int     `json:"wrong"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
}

type TopicScore struct {
	Topic      string  `json:"topic"`
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Percentage float64 `json:"percentage"`
}

type DifficultyScore struct {
	Difficulty models.Difficulty `json:"difficulty"`
	Total      int               `json:"total"`
	Correct    int               `json:"correct"`
	Percentage float64           `json:"percentage"`
}

// CheckAnswer grades a single submission. The caller must guard the choice
// range; an out-of-range index is rejected before anything is recorded.
func CheckAnswer(q models.Question, selectedChoice int) (AnswerResult, error) {
	if selectedChoice < 0 || selectedChoice >= models.ChoiceCount {
		return AnswerResult{}, models.NewInvalidState("check answer", "selected choice must be between 0 and 3")
	}
	correctIdx := q.Answer.Index()
	return AnswerResult{
		IsCorrect:     selectedChoice == correctIdx,
		CorrectAnswer: correctIdx,
		UserAnswer:    selectedChoice,
		Explanation:   q.Explanation,
	}, nil
}

// answeredCorrectly reports whether the answer map holds a correct
// submission for the question. Absent answers count as wrong, never as
// correct and never as excluded from the tally.
func answeredCorrectly(q models.Question, answers map[string]int) bool {
	selected, ok := answers[q.ID]
	return ok && selected == q.Answer.Index()
}

// CalculateSessionScore tallies a whole session. Percentage is 0 for an
// empty question list, never NaN.
func CalculateSessionScore(questions []models.Question, answers map[string]int) SessionScore {
	total := len(questions)
	correct := 0
	for _, q := range questions {
		if answeredCorrectly(q, answers) {
			correct++
		}
	}

	percentage := 0.0
	if total > 0 {
		percentage = float64(correct) / float64(total) * 100
	}

	return SessionScore{
		Total:      total,
		Correct:    correct,
		Wrong:      total - correct,
		Percentage: percentage,
		Passed:     percentage >= PassThreshold,
	}
}

// CalculateTopicScores groups the session by topic, weakest topic first.
// Ties keep the order topics first appeared in the question list.
func CalculateTopicScores(questions []models.Question, answers map[string]int) []TopicScore {
	index := make(map[string]int)
	var scores []TopicScore

	for _, q := range questions {
		i, ok := index[q.Topic]
		if !ok {
			i = len(scores)
			index[q.Topic] = i
			scores = append(scores, TopicScore{Topic: q.Topic})
		}
		scores[i].Total++
		if answeredCorrectly(q, answers) {
			scores[i].Correct++
		}
	}

	for i := range scores {
		if scores[i].Total > 0 {
			scores[i].Percentage = float64(scores[i].Correct) / float64(scores[i].Total) * 100
		}
	}

	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].Percentage < scores[b].Percentage
	})
	return scores
}

// CalculateDifficultyScores groups the session by difficulty, ascending
// (easy, medium, hard). Difficulties with no questions are omitted.
func CalculateDifficultyScores(questions []models.Question, answers map[string]int) []DifficultyScore {
	index := make(map[models.Difficulty]int)
	var scores []DifficultyScore

	for _, q := range questions {
		i, ok := index[q.Difficulty]
		if !ok {
			i = len(scores)
			index[q.Difficulty] = i
			scores = append(scores, DifficultyScore{Difficulty: q.Difficulty})
		}
		scores[i].Total++
		if answeredCorrectly(q, answers) {
			scores[i].Correct++
		}
	}

	for i := range scores {
		if scores[i].Total > 0 {
			scores[i].Percentage = float64(scores[i].Correct) / float64(scores[i].Total) * 100
		}
	}

	sort.Slice(scores, func(a, b int) bool {
		return scores[a].Difficulty < scores[b].Difficulty
	})
	return scores
}

// IdentifyWeakTopics returns the topics scoring strictly below threshold,
// in the (weakest-first) order of the input.
func IdentifyWeakTopics(topicScores []TopicScore, threshold float64) []string {
	var weak []string
	for _, ts := range topicScores {
		if ts.Percentage < threshold {
			weak = append(weak, ts.Topic)
		}
	}
	return weak
}

// ProgressMessage is the encouragement line shown with a final score.
func ProgressMessage(percentage float64) string {
	switch {
	case percentage >= 80:
		return "Excellent! You are well prepared."
	case percentage >= 70:
		return "Good! You passed the threshold."
	case percentage >= 60:
		return "Close! A bit more practice needed."
	default:
		return "Keep practicing. Review the weak areas."
	}
}
