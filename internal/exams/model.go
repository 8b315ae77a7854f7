package exams

import "time"

// Quiz set generation statuses.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Failure codes recorded on failed generations.
const (
	ErrorCodeInternal          = "internal"
	ErrorCodeLLMTimeout        = "llm_timeout"
	ErrorCodeLLMSchemaMismatch = "llm_schema_mismatch"
	ErrorCodeStorage           = "storage"
)

// QuizSet is one generated exam/quiz instance for a user.
type QuizSet struct {
	ID              string           `json:"id"`
	UserID          string           `json:"-"`
	TopicID         string           `json:"topicId,omitempty"`
	TemplateName    string           `json:"templateName"`
	Status          string           `json:"status"`
	Counts          AssessmentCounts `json:"counts"`
	IsFinalExam     bool             `json:"isFinalExam"`
	DurationSeconds int              `json:"durationSeconds"`
	ErrorCode       string           `json:"errorCode,omitempty"`
	ErrorMessage    string           `json:"errorMessage,omitempty"`
	StartedAt       *time.Time       `json:"startedAt,omitempty"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// Attempt is a graded submission against a quiz set.
type Attempt struct {
	ID            string                 `json:"id"`
	QuizSetID     string                 `json:"quizSetId"`
	UserID        string                 `json:"-"`
	Answers       map[string][]string    `json:"answers"`
	Score         float64                `json:"score"`
	CorrectCount  int                    `json:"correctCount"`
	QuestionCount int                    `json:"questionCount"`
	Explanations  map[string]Explanation `json:"explanations"`
	SubmittedAt   time.Time              `json:"submittedAt"`
}

// Explanation is the per-question grading detail stored as explanation_json.
type Explanation struct {
	Correct     bool     `json:"correct"`
	Graded      bool     `json:"graded"`
	Expected    []string `json:"expected,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}
