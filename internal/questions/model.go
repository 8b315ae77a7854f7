package questions

import "time"

// Question types.
const (
	TypeMCQ  = "mcq"
	TypeOpen = "open"
)

// Difficulty levels.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question is a single quiz/exam question in the bank.
type Question struct {
	ID               string    `json:"id"`
	TopicID          string    `json:"topicId,omitempty"`
	UserID           string    `json:"-"`
	Prompt           string    `json:"prompt"`
	Type             string    `json:"type"`
	Difficulty       string    `json:"difficulty"`
	Choices          []string  `json:"choices,omitempty"`
	AnswerKey        []string  `json:"-"`
	Explanation      string    `json:"-"`
	BloomLevel       string    `json:"bloomLevel,omitempty"`
	EstimatedMinutes int       `json:"estimatedMinutes,omitempty"`
	Source           string    `json:"source"`
	CreatedAt        time.Time `json:"createdAt"`
}
