package exams

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateInsertsCounts(t *testing.T) {
	repo, mock := newMockRepo(t)

	qs := QuizSet{
		ID:              "quiz-1",
		UserID:          "user-1",
		TopicID:         "topic-1",
		TemplateName:    "posttest_standard",
		Status:          StatusQueued,
		Counts:          AssessmentCounts{MediumCount: 10, HardMCQCount: 6, HardCount: 3},
		IsFinalExam:     true,
		DurationSeconds: 2580,
		CreatedAt:       time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO quiz_sets").
		WithArgs(
			qs.ID,
			qs.UserID,
			sqlmock.AnyArg(), // topic_id
			qs.TemplateName,
			qs.Status,
			0,
			10,
			6,
			3,
			true,
			sqlmock.AnyArg(), // duration_seconds
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), qs); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDScansNullableFields(t *testing.T) {
	repo, mock := newMockRepo(t)

	createdAt := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "topic_id", "template_name", "status",
		"easy_count", "medium_count", "hard_mcq_count", "hard_count",
		"is_final_exam", "duration_seconds", "error_code", "error_message",
		"started_at", "completed_at", "created_at",
	}).AddRow(
		"quiz-1", "user-1", nil, "quick_quiz", StatusQueued,
		3, 2, 0, 0,
		false, nil, nil, nil,
		nil, nil, createdAt,
	)

	mock.ExpectQuery("SELECT (.+) FROM quiz_sets").
		WithArgs("quiz-1").
		WillReturnRows(rows)

	qs, err := repo.GetByID(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if qs.TopicID != "" || qs.ErrorCode != "" || qs.StartedAt != nil || qs.CompletedAt != nil {
		t.Fatalf("nullable fields should stay zero-valued: %+v", qs)
	}
	if qs.Counts.EasyCount != 3 || qs.Counts.MediumCount != 2 {
		t.Fatalf("counts = %+v", qs.Counts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM quiz_sets").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateStatusNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE quiz_sets").
		WithArgs("missing", StatusProcessing, nil, nil, sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	now := time.Now().UTC()
	err := repo.UpdateStatus(context.Background(), "missing", StatusProcessing, nil, nil, &now, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoSetQuestionsReplacesMembership(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM quiz_set_questions").
		WithArgs("quiz-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO quiz_set_questions").
		WithArgs("quiz-1", "q1", 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO quiz_set_questions").
		WithArgs("quiz-1", "q2", 2).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.SetQuestions(context.Background(), "quiz-1", []string{"q1", "q2"}); err != nil {
		t.Fatalf("SetQuestions: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateAttemptMarshalsJSON(t *testing.T) {
	repo, mock := newMockRepo(t)

	attempt := Attempt{
		ID:            "attempt-1",
		QuizSetID:     "quiz-1",
		UserID:        "user-1",
		Answers:       map[string][]string{"q1": {"A"}},
		Score:         1.0,
		CorrectCount:  1,
		QuestionCount: 1,
		Explanations: map[string]Explanation{
			"q1": {Correct: true, Graded: true, Expected: []string{"A"}},
		},
		SubmittedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO attempts").
		WithArgs(
			attempt.ID,
			attempt.QuizSetID,
			attempt.UserID,
			sqlmock.AnyArg(), // answers json
			attempt.Score,
			attempt.CorrectCount,
			attempt.QuestionCount,
			sqlmock.AnyArg(), // explanation json
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.CreateAttempt(context.Background(), attempt); err != nil {
		t.Fatalf("CreateAttempt: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
