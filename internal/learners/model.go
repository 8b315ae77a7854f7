package learners

import "time"

// Profile tracks a learner's mastery of one topic. Mastery is an
// exponential moving average of graded attempt scores in [0, 1].
type Profile struct {
	UserID        string     `json:"-"`
	TopicID       string     `json:"topicId"`
	Mastery       float64    `json:"mastery"`
	AttemptCount  int        `json:"attemptCount"`
	CorrectCount  int        `json:"correctCount"`
	LastAttemptAt *time.Time `json:"lastAttemptAt,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
