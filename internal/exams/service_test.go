package exams

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"edu-backend/internal/llm"
	"edu-backend/internal/questions"
)

type staticLLMResponse struct {
	resp string
	err  error
}

func (s staticLLMResponse) GenerateQuestions(ctx context.Context, input llm.GenerateInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.resp), nil
}

func seedBank(t *testing.T, repo *questions.MemoryRepo, topicID string, easy, medium, hardMCQ, hardOpen int) {
	t.Helper()
	items := []questions.Question{}
	add := func(n int, difficulty, qType string) {
		for i := 0; i < n; i++ {
			q := questions.Question{
				ID:         fmt.Sprintf("%s-%s-%d", difficulty, qType, i),
				TopicID:    topicID,
				UserID:     "user-1",
				Prompt:     fmt.Sprintf("prompt %s %d", difficulty, i),
				Type:       qType,
				Difficulty: difficulty,
				AnswerKey:  []string{"A"},
				Source:     "bank",
				CreatedAt:  time.Now().UTC(),
			}
			if qType == questions.TypeMCQ {
				q.Choices = []string{"A", "B", "C", "D"}
			}
			items = append(items, q)
		}
	}
	add(easy, questions.DifficultyEasy, questions.TypeMCQ)
	add(medium, questions.DifficultyMedium, questions.TypeMCQ)
	add(hardMCQ, questions.DifficultyHard, questions.TypeMCQ)
	add(hardOpen, questions.DifficultyHard, questions.TypeOpen)
	if err := repo.CreateBatch(context.Background(), items); err != nil {
		t.Fatalf("seed bank: %v", err)
	}
}

func newQueuedQuizSet(t *testing.T, repo Repo, topicID, templateName string) QuizSet {
	t.Helper()
	tmpl, ok := GetTemplate(templateName)
	if !ok {
		t.Fatalf("template %s should exist", templateName)
	}
	qs := QuizSet{
		ID:           "quiz-1",
		UserID:       "user-1",
		TopicID:      topicID,
		TemplateName: templateName,
		Status:       StatusQueued,
		Counts:       TemplateToAssessmentCounts(tmpl),
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), qs); err != nil {
		t.Fatalf("create quiz set: %v", err)
	}
	return qs
}

func TestGenerateUnknownTemplate(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo(), Questions: questions.NewMemoryRepo()}

	_, err := svc.Generate(context.Background(), "user-1", "topic-1", "no_such_template", false)
	if !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}

	sets, err := svc.Repo.ListByUser(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sets) != 0 {
		t.Fatalf("no quiz set should be persisted, got %d", len(sets))
	}
}

func TestGenerateSetsCountsAndDuration(t *testing.T) {
	repo := NewMemoryRepo()
	bank := questions.NewMemoryRepo()
	seedBank(t, bank, "topic-1", 5, 10, 6, 3)
	svc := &Service{Repo: repo, Questions: bank}

	qs, err := svc.Generate(context.Background(), "user-1", "topic-1", "posttest_standard", true)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	want := AssessmentCounts{MediumCount: 10, HardMCQCount: 6, HardCount: 3}
	if qs.Counts != want {
		t.Fatalf("counts = %+v, want %+v", qs.Counts, want)
	}
	wantDuration := 10*mediumSeconds + 6*hardMCQSeconds + 3*hardSeconds
	if qs.DurationSeconds != wantDuration {
		t.Fatalf("duration = %d, want %d", qs.DurationSeconds, wantDuration)
	}
	if !qs.IsFinalExam {
		t.Fatalf("isFinalExam should carry through")
	}
	if qs.Status != StatusQueued {
		t.Fatalf("status = %s, want %s", qs.Status, StatusQueued)
	}
}

func TestCompleteAsyncAssemblesFromBank(t *testing.T) {
	repo := NewMemoryRepo()
	bank := questions.NewMemoryRepo()
	seedBank(t, bank, "topic-1", 5, 10, 6, 3)
	svc := &Service{Repo: repo, Questions: bank}

	qs := newQueuedQuizSet(t, repo, "topic-1", "posttest_standard")
	svc.completeAsync(context.Background(), qs.ID)

	got, err := repo.GetByID(context.Background(), qs.ID)
	if err != nil {
		t.Fatalf("get quiz set: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("status = %s (error %s: %s), want completed", got.Status, got.ErrorCode, got.ErrorMessage)
	}
	if got.StartedAt == nil || got.CompletedAt == nil {
		t.Fatalf("timestamps should be set")
	}

	ids, err := repo.QuestionIDs(context.Background(), qs.ID)
	if err != nil {
		t.Fatalf("question ids: %v", err)
	}
	if len(ids) != 19 {
		t.Fatalf("question count = %d, want 19", len(ids))
	}

	items, err := bank.GetByIDs(context.Background(), ids)
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	// Bucket ordering: medium, then hard mcq, then hard open.
	for i, q := range items[:10] {
		if q.Difficulty != questions.DifficultyMedium {
			t.Fatalf("position %d difficulty = %s, want medium", i, q.Difficulty)
		}
	}
	for i, q := range items[10:16] {
		if q.Difficulty != questions.DifficultyHard || q.Type != questions.TypeMCQ {
			t.Fatalf("position %d = %s/%s, want hard/mcq", 10+i, q.Difficulty, q.Type)
		}
	}
	for i, q := range items[16:] {
		if q.Difficulty != questions.DifficultyHard || q.Type != questions.TypeOpen {
			t.Fatalf("position %d = %s/%s, want hard/open", 16+i, q.Difficulty, q.Type)
		}
	}
}

func TestCompleteAsyncGeneratesShortfall(t *testing.T) {
	payload := llmQuestionPayload{
		Questions: []llmQuestion{
			{Prompt: "2+2?", Type: "mcq", Difficulty: "easy", Choices: []string{"3", "4"}, AnswerKey: []string{"4"}},
			{Prompt: "3+3?", Type: "mcq", Difficulty: "easy", Choices: []string{"5", "6"}, AnswerKey: []string{"6"}},
			{Prompt: "4+4?", Type: "mcq", Difficulty: "easy", Choices: []string{"7", "8"}, AnswerKey: []string{"8"}},
			{Prompt: "define addition", Type: "mcq", Difficulty: "medium", Choices: []string{"a", "b"}, AnswerKey: []string{"a"}},
			{Prompt: "explain carrying", Type: "open", Difficulty: "medium"},
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	repo := NewMemoryRepo()
	bank := questions.NewMemoryRepo()
	svc := &Service{Repo: repo, Questions: bank, LLM: staticLLMResponse{resp: string(raw)}}

	qs := newQueuedQuizSet(t, repo, "", "quick_quiz")
	svc.completeAsync(context.Background(), qs.ID)

	got, err := repo.GetByID(context.Background(), qs.ID)
	if err != nil {
		t.Fatalf("get quiz set: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("status = %s (error %s: %s), want completed", got.Status, got.ErrorCode, got.ErrorMessage)
	}

	ids, err := repo.QuestionIDs(context.Background(), qs.ID)
	if err != nil {
		t.Fatalf("question ids: %v", err)
	}
	if len(ids) != 5 {
		t.Fatalf("question count = %d, want 5", len(ids))
	}

	items, err := bank.GetByIDs(context.Background(), ids)
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	for _, q := range items {
		if q.Source != "llm" {
			t.Fatalf("generated question source = %s, want llm", q.Source)
		}
	}
}

func TestCompleteAsyncFailsOnInvalidLLMOutput(t *testing.T) {
	repo := NewMemoryRepo()
	bank := questions.NewMemoryRepo()
	svc := &Service{Repo: repo, Questions: bank, LLM: staticLLMResponse{resp: "{not-json"}}

	qs := newQueuedQuizSet(t, repo, "", "quick_quiz")
	svc.completeAsync(context.Background(), qs.ID)

	got, err := repo.GetByID(context.Background(), qs.ID)
	if err != nil {
		t.Fatalf("get quiz set: %v", err)
	}
	if got.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", got.Status)
	}
	if got.ErrorCode != ErrorCodeLLMSchemaMismatch {
		t.Fatalf("error code = %s, want %s", got.ErrorCode, ErrorCodeLLMSchemaMismatch)
	}
	if got.CompletedAt == nil {
		t.Fatalf("failed quiz set should carry a completion timestamp")
	}
}

func TestCompleteAsyncFailsOnLLMTimeout(t *testing.T) {
	repo := NewMemoryRepo()
	bank := questions.NewMemoryRepo()
	svc := &Service{Repo: repo, Questions: bank, LLM: staticLLMResponse{err: context.DeadlineExceeded}}

	qs := newQueuedQuizSet(t, repo, "", "quick_quiz")
	svc.completeAsync(context.Background(), qs.ID)

	got, err := repo.GetByID(context.Background(), qs.ID)
	if err != nil {
		t.Fatalf("get quiz set: %v", err)
	}
	if got.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", got.Status)
	}
	if got.ErrorCode != ErrorCodeLLMTimeout {
		t.Fatalf("error code = %s, want %s", got.ErrorCode, ErrorCodeLLMTimeout)
	}
}

type recordedProfileUpdate struct {
	userID  string
	topicID string
	correct int
	graded  int
}

type fakeProfileRecorder struct {
	updates []recordedProfileUpdate
}

func (f *fakeProfileRecorder) RecordAttempt(ctx context.Context, userID, topicID string, correct, graded int) error {
	_ = ctx
	f.updates = append(f.updates, recordedProfileUpdate{userID: userID, topicID: topicID, correct: correct, graded: graded})
	return nil
}

func TestSubmitAttemptGradesMCQs(t *testing.T) {
	repo := NewMemoryRepo()
	bank := questions.NewMemoryRepo()
	recorder := &fakeProfileRecorder{}
	svc := &Service{Repo: repo, Questions: bank, Profiles: recorder}

	now := time.Now().UTC()
	items := []questions.Question{
		{ID: "q1", TopicID: "topic-1", Prompt: "capital of France?", Type: questions.TypeMCQ, Difficulty: "easy", Choices: []string{"Paris", "Lyon"}, AnswerKey: []string{"Paris"}, Explanation: "Paris is the capital.", CreatedAt: now},
		{ID: "q2", TopicID: "topic-1", Prompt: "pick the primes", Type: questions.TypeMCQ, Difficulty: "medium", Choices: []string{"2", "3", "4"}, AnswerKey: []string{"2", "3"}, CreatedAt: now},
		{ID: "q3", TopicID: "topic-1", Prompt: "explain photosynthesis", Type: questions.TypeOpen, Difficulty: "hard", CreatedAt: now},
	}
	if err := bank.CreateBatch(context.Background(), items); err != nil {
		t.Fatalf("seed: %v", err)
	}

	qs := newQueuedQuizSet(t, repo, "topic-1", "quick_quiz")
	completedAt := now
	if err := repo.UpdateStatus(context.Background(), qs.ID, StatusCompleted, nil, nil, &now, &completedAt); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := repo.SetQuestions(context.Background(), qs.ID, []string{"q1", "q2", "q3"}); err != nil {
		t.Fatalf("set questions: %v", err)
	}

	attempt, err := svc.SubmitAttempt(context.Background(), "user-1", qs.ID, map[string][]string{
		"q1": {"Paris"},
		"q2": {"3", "2"}, // order must not matter
		"q3": {"some essay"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if attempt.CorrectCount != 2 {
		t.Fatalf("correct = %d, want 2", attempt.CorrectCount)
	}
	if attempt.QuestionCount != 3 {
		t.Fatalf("question count = %d, want 3", attempt.QuestionCount)
	}
	if attempt.Score != 1.0 {
		t.Fatalf("score = %f, want 1.0 over graded MCQs", attempt.Score)
	}

	exp, ok := attempt.Explanations["q1"]
	if !ok || !exp.Graded || !exp.Correct || exp.Explanation != "Paris is the capital." {
		t.Fatalf("q1 explanation = %+v", exp)
	}
	if exp := attempt.Explanations["q3"]; exp.Graded {
		t.Fatalf("open question must not be auto-graded")
	}

	if len(recorder.updates) != 1 {
		t.Fatalf("expected one profile update, got %d", len(recorder.updates))
	}
	upd := recorder.updates[0]
	if upd.userID != "user-1" || upd.topicID != "topic-1" || upd.correct != 2 || upd.graded != 2 {
		t.Fatalf("profile update = %+v", upd)
	}

	stored, err := repo.AttemptsByQuizSet(context.Background(), qs.ID)
	if err != nil {
		t.Fatalf("attempts: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored attempts = %d, want 1", len(stored))
	}
}

func TestSubmitAttemptRequiresCompletedQuizSet(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo, Questions: questions.NewMemoryRepo()}

	qs := newQueuedQuizSet(t, repo, "topic-1", "quick_quiz")

	_, err := svc.SubmitAttempt(context.Background(), "user-1", qs.ID, map[string][]string{"q1": {"A"}})
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestGetScopesToOwner(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo, Questions: questions.NewMemoryRepo()}

	qs := newQueuedQuizSet(t, repo, "topic-1", "quick_quiz")

	if _, err := svc.Get(context.Background(), "someone-else", qs.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign user, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "user-1", qs.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
}

func TestClassifyFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"deadline", context.DeadlineExceeded, ErrorCodeLLMTimeout},
		{"wrapped deadline", fmt.Errorf("llm generate: %w", context.DeadlineExceeded), ErrorCodeLLMTimeout},
		{"llm timeout text", errors.New("llm generate: request timeout"), ErrorCodeLLMTimeout},
		{"schema", errors.New("llm output invalid: no questions"), ErrorCodeLLMSchemaMismatch},
		{"selection", errors.New("question selection: db down"), ErrorCodeStorage},
		{"set questions", errors.New("set questions failed: db down"), ErrorCodeStorage},
		{"unknown", errors.New("boom"), ErrorCodeInternal},
		{"nil", nil, ErrorCodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyFailure(tc.err); got != tc.want {
				t.Fatalf("classifyFailure(%v) = %s, want %s", tc.err, got, tc.want)
			}
		})
	}
}

func TestNormalizeDifficulty(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"easy", "easy", questions.DifficultyEasy},
		{"hard", "hard", questions.DifficultyHard},
		{"medium", "medium", questions.DifficultyMedium},
		{"mixed case with spaces", "  Easy ", questions.DifficultyEasy},
		{"unknown", "extreme", questions.DifficultyMedium},
		{"empty", "", questions.DifficultyMedium},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeDifficulty(tc.raw); got != tc.want {
				t.Fatalf("normalizeDifficulty(%q) = %s, want %s", tc.raw, got, tc.want)
			}
		})
	}
}

func TestAnswerMatches(t *testing.T) {
	cases := []struct {
		name  string
		given []string
		key   []string
		want  bool
	}{
		{"exact", []string{"A"}, []string{"A"}, true},
		{"case and space insensitive", []string{" a "}, []string{"A"}, true},
		{"order insensitive", []string{"B", "A"}, []string{"A", "B"}, true},
		{"wrong answer", []string{"C"}, []string{"A"}, false},
		{"partial", []string{"A"}, []string{"A", "B"}, false},
		{"extra", []string{"A", "B"}, []string{"A"}, false},
		{"duplicate given", []string{"A", "A"}, []string{"A", "B"}, false},
		{"empty key", []string{"A"}, nil, false},
		{"empty given", nil, []string{"A"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := answerMatches(tc.given, tc.key); got != tc.want {
				t.Fatalf("answerMatches(%v, %v) = %v, want %v", tc.given, tc.key, got, tc.want)
			}
		})
	}
}
