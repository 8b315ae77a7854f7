package exams

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"edu-backend/internal/llm"
	"edu-backend/internal/queue"
	"edu-backend/internal/questions"
	"edu-backend/internal/shared/metrics"
	"edu-backend/internal/shared/telemetry"
	"edu-backend/internal/topics"
	"edu-backend/internal/usage"
)

// Seconds of working time budgeted per question in each bucket.
const (
	easySeconds    = 60
	mediumSeconds  = 120
	hardMCQSeconds = 180
	hardSeconds    = 300
)

// ProfileRecorder receives graded attempt results for mastery tracking.
type ProfileRecorder interface {
	RecordAttempt(ctx context.Context, userID, topicID string, correct, graded int) error
}

// Service contains business logic for quiz set generation and grading.
// When JobQueue is set, assembly is delegated to queue workers instead of
// an in-process goroutine.
type Service struct {
	Repo             Repo
	Questions        questions.Repo
	Topics           topics.Repo
	Usage            *usage.Service
	LLM              llm.Client
	Profiles         ProfileRecorder
	JobQueue         queue.Client
	GeneratorVersion string
}

// Generate enqueues a new quiz set and kicks off asynchronous assembly.
func (s *Service) Generate(ctx context.Context, userID, topicID, templateName string, isFinalExam bool) (QuizSet, error) {
	if userID == "" {
		return QuizSet{}, errors.New("userID is required")
	}
	if templateName == "" {
		templateName = "posttest_standard"
	}

	tmpl, ok := GetTemplate(templateName)
	if !ok {
		return QuizSet{}, ErrUnknownTemplate
	}
	counts := TemplateToAssessmentCounts(tmpl)

	if s.Usage != nil {
		ok, _, err := s.Usage.CanConsume(ctx, userID, 1)
		if err != nil {
			return QuizSet{}, err
		}
		if !ok {
			return QuizSet{}, usage.ErrLimitReached
		}
	}

	qs := QuizSet{
		ID:              uuid.NewString(),
		UserID:          userID,
		TopicID:         topicID,
		TemplateName:    templateName,
		Status:          StatusQueued,
		Counts:          counts,
		IsFinalExam:     isFinalExam,
		DurationSeconds: estimateDurationSeconds(counts),
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, qs); err != nil {
		return QuizSet{}, err
	}

	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, userID, 1); err != nil {
			return QuizSet{}, err
		}
	}

	s.dispatch(ctx, qs.ID)

	return qs, nil
}

// dispatch hands the quiz set to the configured queue, falling back to an
// in-process goroutine when no queue is set or the enqueue fails.
func (s *Service) dispatch(ctx context.Context, quizSetID string) {
	if s.JobQueue != nil {
		msg := queue.Message{
			QuizSetID:  quizSetID,
			RequestID:  requestIDFromContext(ctx),
			EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
			Version:    1,
		}
		err := s.JobQueue.Send(ctx, msg)
		if err == nil {
			return
		}
		telemetry.Warn("quiz_set.enqueue_failed", map[string]any{
			"quiz_set_id": quizSetID,
			"request_id":  msg.RequestID,
			"error":       sanitizeError(err),
		})
	}
	go s.completeAsync(backgroundWithRequestID(ctx), quizSetID)
}

// ProcessQuizSet assembles a queued quiz set synchronously. Queue workers
// call this; the returned error reports whether the set ended up failed.
func (s *Service) ProcessQuizSet(ctx context.Context, quizSetID string) error {
	if strings.TrimSpace(quizSetID) == "" {
		return errors.New("quizSetID is required")
	}
	return s.process(ctx, quizSetID)
}

// Get returns a quiz set by ID, scoped to its owner.
func (s *Service) Get(ctx context.Context, userID, quizSetID string) (QuizSet, error) {
	if quizSetID == "" {
		return QuizSet{}, errors.New("quizSetID is required")
	}
	qs, err := s.Repo.GetByID(ctx, quizSetID)
	if err != nil {
		return QuizSet{}, err
	}
	if qs.UserID != userID {
		return QuizSet{}, ErrNotFound
	}
	return qs, nil
}

// List returns quiz sets for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]QuizSet, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// QuizQuestions returns the ordered questions of a completed quiz set.
func (s *Service) QuizQuestions(ctx context.Context, userID, quizSetID string) ([]questions.Question, error) {
	qs, err := s.Get(ctx, userID, quizSetID)
	if err != nil {
		return nil, err
	}
	if qs.Status != StatusCompleted {
		return nil, ErrNotReady
	}

	ids, err := s.Repo.QuestionIDs(ctx, quizSetID)
	if err != nil {
		return nil, err
	}
	items, err := s.Questions.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return orderQuestions(ids, items), nil
}

// SubmitAttempt grades answers against a completed quiz set and records the result.
func (s *Service) SubmitAttempt(ctx context.Context, userID, quizSetID string, answers map[string][]string) (Attempt, error) {
	qs, err := s.Get(ctx, userID, quizSetID)
	if err != nil {
		return Attempt{}, err
	}
	if qs.Status != StatusCompleted {
		return Attempt{}, ErrNotReady
	}

	ids, err := s.Repo.QuestionIDs(ctx, quizSetID)
	if err != nil {
		return Attempt{}, err
	}
	items, err := s.Questions.GetByIDs(ctx, ids)
	if err != nil {
		return Attempt{}, err
	}

	attempt := gradeAttempt(qs, items, answers)
	attempt.UserID = userID
	if err := s.Repo.CreateAttempt(ctx, attempt); err != nil {
		return Attempt{}, err
	}

	if s.Profiles != nil && qs.TopicID != "" {
		graded := 0
		for _, e := range attempt.Explanations {
			if e.Graded {
				graded++
			}
		}
		if err := s.Profiles.RecordAttempt(ctx, userID, qs.TopicID, attempt.CorrectCount, graded); err != nil {
			telemetry.Warn("attempt.profile_update_failed", map[string]any{
				"quiz_set_id": quizSetID,
				"user_id":     userID,
				"error":       sanitizeError(err),
			})
		}
	}

	return attempt, nil
}

// Attempts returns graded attempts against a quiz set, newest first.
func (s *Service) Attempts(ctx context.Context, userID, quizSetID string) ([]Attempt, error) {
	if _, err := s.Get(ctx, userID, quizSetID); err != nil {
		return nil, err
	}
	return s.Repo.AttemptsByQuizSet(ctx, quizSetID)
}

func (s *Service) completeAsync(ctx context.Context, quizSetID string) {
	_ = s.process(ctx, quizSetID)
}

func (s *Service) process(ctx context.Context, quizSetID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			s.failQuizSet(ctx, quizSetID, "", err, nil)
		}
	}()
	startedAt := time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, quizSetID, StatusProcessing, nil, nil, &startedAt, nil); err != nil {
		err = fmt.Errorf("set processing failed: %w", err)
		s.failQuizSet(ctx, quizSetID, "", err, &startedAt)
		return err
	}

	qs, err := s.Repo.GetByID(ctx, quizSetID)
	if err != nil {
		err = fmt.Errorf("quiz set lookup: %w", err)
		s.failQuizSet(ctx, quizSetID, "", err, &startedAt)
		return err
	}
	metrics.IncQuizGenStarted()
	telemetry.Info("quiz_set.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           qs.UserID,
		"quiz_set_id":       qs.ID,
		"topic_id":          qs.TopicID,
		"template":          qs.TemplateName,
		"status":            StatusProcessing,
		"status_transition": "queued->processing",
	})
	if s.Questions == nil {
		err = errors.New("missing question bank dependency")
		s.failQuizSet(ctx, quizSetID, qs.UserID, err, &startedAt)
		return err
	}

	selected, shortfall, err := s.selectFromBank(ctx, qs)
	if err != nil {
		err = fmt.Errorf("question selection: %w", err)
		s.failQuizSet(ctx, quizSetID, qs.UserID, err, &startedAt)
		return err
	}

	if shortfall.Total() > 0 {
		generated, genErr := s.generateMissing(ctx, qs, shortfall)
		if genErr != nil {
			s.failQuizSet(ctx, quizSetID, qs.UserID, genErr, &startedAt)
			return genErr
		}
		selected = mergeGenerated(selected, generated)
	}

	ids := orderedQuestionIDs(selected)
	if err := s.Repo.SetQuestions(ctx, quizSetID, ids); err != nil {
		err = fmt.Errorf("set questions failed: %w", err)
		s.failQuizSet(ctx, quizSetID, qs.UserID, err, &startedAt)
		return err
	}

	completedAt := time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, quizSetID, StatusCompleted, nil, nil, nil, &completedAt); err != nil {
		err = fmt.Errorf("set completed failed: %w", err)
		s.failQuizSet(ctx, quizSetID, qs.UserID, err, &startedAt)
		return err
	}
	metrics.IncQuizGenCompleted()
	metrics.ObserveQuizGenDurationMs(durationMs(&startedAt, &completedAt))
	telemetry.Info("quiz_set.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           qs.UserID,
		"quiz_set_id":       qs.ID,
		"topic_id":          qs.TopicID,
		"template":          qs.TemplateName,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"question_count":    len(ids),
		"duration_ms":       durationMs(&startedAt, &completedAt),
	})
	return nil
}

// bucketSelection holds bank questions picked per bucket, in selection order.
type bucketSelection struct {
	Easy    []questions.Question
	Medium  []questions.Question
	HardMCQ []questions.Question
	Hard    []questions.Question
}

func (s *Service) selectFromBank(ctx context.Context, qs QuizSet) (bucketSelection, AssessmentCounts, error) {
	var sel bucketSelection
	var shortfall AssessmentCounts
	var err error

	if qs.Counts.EasyCount > 0 {
		sel.Easy, err = s.Questions.SelectForBucket(ctx, qs.TopicID, questions.DifficultyEasy, "", qs.Counts.EasyCount)
		if err != nil {
			return sel, shortfall, err
		}
		shortfall.EasyCount = qs.Counts.EasyCount - len(sel.Easy)
	}
	if qs.Counts.MediumCount > 0 {
		sel.Medium, err = s.Questions.SelectForBucket(ctx, qs.TopicID, questions.DifficultyMedium, "", qs.Counts.MediumCount)
		if err != nil {
			return sel, shortfall, err
		}
		shortfall.MediumCount = qs.Counts.MediumCount - len(sel.Medium)
	}
	if qs.Counts.HardMCQCount > 0 {
		sel.HardMCQ, err = s.Questions.SelectForBucket(ctx, qs.TopicID, questions.DifficultyHard, questions.TypeMCQ, qs.Counts.HardMCQCount)
		if err != nil {
			return sel, shortfall, err
		}
		shortfall.HardMCQCount = qs.Counts.HardMCQCount - len(sel.HardMCQ)
	}
	if qs.Counts.HardCount > 0 {
		sel.Hard, err = s.Questions.SelectForBucket(ctx, qs.TopicID, questions.DifficultyHard, questions.TypeOpen, qs.Counts.HardCount)
		if err != nil {
			return sel, shortfall, err
		}
		shortfall.HardCount = qs.Counts.HardCount - len(sel.Hard)
	}
	return sel, shortfall, nil
}

// llmQuestion is the generated-question schema expected from the model.
type llmQuestion struct {
	Prompt           string   `json:"prompt"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Choices          []string `json:"choices"`
	AnswerKey        []string `json:"answerKey"`
	Explanation      string   `json:"explanation"`
	BloomLevel       string   `json:"bloomLevel"`
	EstimatedMinutes int      `json:"estimatedMinutes"`
}

type llmQuestionPayload struct {
	Questions []llmQuestion `json:"questions"`
}

func (s *Service) generateMissing(ctx context.Context, qs QuizSet, shortfall AssessmentCounts) ([]questions.Question, error) {
	if s.LLM == nil {
		return nil, errors.New("llm generate: missing llm client")
	}

	topicTitle := ""
	contextText := ""
	if s.Topics != nil && qs.TopicID != "" {
		topic, err := s.Topics.GetByID(ctx, qs.TopicID)
		if err != nil {
			return nil, fmt.Errorf("topic lookup id=%s: %w", qs.TopicID, err)
		}
		topicTitle = topic.Title
		chunks, err := s.Topics.ChunksByTopic(ctx, qs.TopicID)
		if err != nil {
			return nil, fmt.Errorf("topic chunks id=%s: %w", qs.TopicID, err)
		}
		contextText = joinChunks(chunks)
	}

	client := newRetryingLLM(s.LLM, qs.ID, requestIDFromContext(ctx))
	input := llm.GenerateInput{
		TopicTitle:   topicTitle,
		ContextText:  contextText,
		EasyCount:    shortfall.EasyCount,
		MediumCount:  shortfall.MediumCount,
		HardMCQCount: shortfall.HardMCQCount,
		HardCount:    shortfall.HardCount,
	}

	raw, err := client.GenerateQuestions(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("llm generate: %w", err)
	}

	var payload llmQuestionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		rawRetry, retryErr := client.GenerateQuestions(llm.WithFixJSON(ctx, string(raw)), input)
		if retryErr != nil {
			return nil, fmt.Errorf("llm generate retry: %w", retryErr)
		}
		if err := json.Unmarshal(rawRetry, &payload); err != nil {
			return nil, fmt.Errorf("llm output invalid: %w", err)
		}
	}
	if len(payload.Questions) == 0 {
		return nil, errors.New("llm output invalid: no questions")
	}

	now := time.Now().UTC()
	items := make([]questions.Question, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		if strings.TrimSpace(q.Prompt) == "" {
			return nil, errors.New("llm output invalid: empty prompt")
		}
		qType := q.Type
		if qType != questions.TypeMCQ && qType != questions.TypeOpen {
			qType = questions.TypeOpen
			if len(q.Choices) > 0 {
				qType = questions.TypeMCQ
			}
		}
		items = append(items, questions.Question{
			ID:               uuid.NewString(),
			TopicID:          qs.TopicID,
			UserID:           qs.UserID,
			Prompt:           q.Prompt,
			Type:             qType,
			Difficulty:       normalizeDifficulty(q.Difficulty),
			Choices:          q.Choices,
			AnswerKey:        q.AnswerKey,
			Explanation:      q.Explanation,
			BloomLevel:       q.BloomLevel,
			EstimatedMinutes: q.EstimatedMinutes,
			Source:           "llm",
			CreatedAt:        now,
		})
	}

	if err := s.Questions.CreateBatch(ctx, items); err != nil {
		return nil, fmt.Errorf("question storage: %w", err)
	}
	return items, nil
}

// normalizeDifficulty coerces LLM-provided difficulty strings into the known
// set, defaulting to medium for anything unrecognized.
func normalizeDifficulty(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case questions.DifficultyEasy:
		return questions.DifficultyEasy
	case questions.DifficultyHard:
		return questions.DifficultyHard
	default:
		return questions.DifficultyMedium
	}
}

func mergeGenerated(sel bucketSelection, generated []questions.Question) bucketSelection {
	for _, q := range generated {
		switch {
		case q.Difficulty == questions.DifficultyEasy:
			sel.Easy = append(sel.Easy, q)
		case q.Difficulty == questions.DifficultyMedium:
			sel.Medium = append(sel.Medium, q)
		case q.Difficulty == questions.DifficultyHard && q.Type == questions.TypeMCQ:
			sel.HardMCQ = append(sel.HardMCQ, q)
		default:
			sel.Hard = append(sel.Hard, q)
		}
	}
	return sel
}

func orderedQuestionIDs(sel bucketSelection) []string {
	ids := make([]string, 0, len(sel.Easy)+len(sel.Medium)+len(sel.HardMCQ)+len(sel.Hard))
	for _, group := range [][]questions.Question{sel.Easy, sel.Medium, sel.HardMCQ, sel.Hard} {
		for _, q := range group {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

func orderQuestions(ids []string, items []questions.Question) []questions.Question {
	byID := make(map[string]questions.Question, len(items))
	for _, q := range items {
		byID[q.ID] = q
	}
	out := make([]questions.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out
}

func gradeAttempt(qs QuizSet, items []questions.Question, answers map[string][]string) Attempt {
	explanations := make(map[string]Explanation, len(items))
	correct := 0
	graded := 0
	for _, q := range items {
		if q.Type != questions.TypeMCQ {
			explanations[q.ID] = Explanation{
				Graded:      false,
				Explanation: q.Explanation,
			}
			continue
		}
		graded++
		ok := answerMatches(answers[q.ID], q.AnswerKey)
		if ok {
			correct++
		}
		explanations[q.ID] = Explanation{
			Correct:     ok,
			Graded:      true,
			Expected:    q.AnswerKey,
			Explanation: q.Explanation,
		}
	}

	score := 0.0
	if graded > 0 {
		score = float64(correct) / float64(graded)
	}

	return Attempt{
		ID:            uuid.NewString(),
		QuizSetID:     qs.ID,
		Answers:       answers,
		Score:         score,
		CorrectCount:  correct,
		QuestionCount: len(items),
		Explanations:  explanations,
		SubmittedAt:   time.Now().UTC(),
	}
}

// answerMatches compares an MCQ answer set against the key, order-insensitive.
func answerMatches(given, key []string) bool {
	if len(given) != len(key) || len(key) == 0 {
		return false
	}
	want := make(map[string]int, len(key))
	for _, k := range key {
		want[normalizeAnswer(k)]++
	}
	for _, g := range given {
		n := normalizeAnswer(g)
		if want[n] == 0 {
			return false
		}
		want[n]--
	}
	return true
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func estimateDurationSeconds(counts AssessmentCounts) int {
	return counts.EasyCount*easySeconds +
		counts.MediumCount*mediumSeconds +
		counts.HardMCQCount*hardMCQSeconds +
		counts.HardCount*hardSeconds
}

func joinChunks(chunks []topics.Chunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Content)
	}
	return strings.Join(parts, "\n\n")
}

func (s *Service) failQuizSet(ctx context.Context, quizSetID, userID string, err error, startedAt *time.Time) {
	code := classifyFailure(err)
	msg := sanitizeError(err)
	completedAt := time.Now().UTC()
	if updateErr := s.Repo.UpdateStatus(context.Background(), quizSetID, StatusFailed, &code, &msg, nil, &completedAt); updateErr != nil {
		fmt.Printf("failQuizSet: update failed id=%s err=%v orig=%v\n", quizSetID, updateErr, err)
	}
	metrics.IncQuizGenFailed()
	if startedAt != nil {
		metrics.ObserveQuizGenDurationMs(durationMs(startedAt, &completedAt))
	}
	telemetry.Info("quiz_set.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           userID,
		"quiz_set_id":       quizSetID,
		"status":            StatusFailed,
		"status_transition": "processing->failed",
		"error_code":        code,
		"duration_ms":       durationMs(startedAt, &completedAt),
	})
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Microseconds()) / 1000.0
}

func classifyFailure(err error) string {
	if err == nil {
		return ErrorCodeInternal
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeLLMTimeout
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "openai request timeout") {
		return ErrorCodeLLMTimeout
	}
	if strings.Contains(msg, "timeout") && strings.Contains(msg, "llm") {
		return ErrorCodeLLMTimeout
	}
	if strings.Contains(msg, "schema") || strings.Contains(msg, "llm output invalid") {
		return ErrorCodeLLMSchemaMismatch
	}
	if strings.Contains(msg, "topic") || strings.Contains(msg, "storage") ||
		strings.Contains(msg, "set questions") || strings.Contains(msg, "set processing") ||
		strings.Contains(msg, "set completed") || strings.Contains(msg, "question selection") {
		return ErrorCodeStorage
	}
	return ErrorCodeInternal
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
