package app_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"exam-scoring-service/internal/app"
	"exam-scoring-service/internal/domain"
	"exam-scoring-service/internal/infra/memory"
	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

var (
	alice = domain.Participant{ID: "u1", Name: "Alice", Email: "alice@example.com", Phone: "111"}
	bob   = domain.Participant{ID: "u2", Name: "Bob", Email: "bob@example.com", Phone: "222"}
)

func TestSubmitExamScoresObjectiveSection(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService()

	attempt := startAttempt(t, service, "math", alice)
	if !attempt.TotalMarks.Equal(decimal.NewFromInt(20)) || attempt.Sequence != 1 {
		t.Fatalf("unexpected attempt %+v", attempt)
	}

	res, err := service.SubmitAnswers(ctx, attempt.ID, alice, []domain.AnswerInput{
		{QuestionID: "q1", OptionID: strPtr("q1-a")},
		{QuestionID: "q2", OptionID: strPtr("q2-b")},
		{QuestionID: "q3", OptionID: strPtr("q3-a")},
		{QuestionID: "q4"},
	})
	if err != nil {
		t.Fatalf("submit answers: %v", err)
	}
	if res.Saved != 4 || len(res.Errors) != 0 {
		t.Fatalf("expected 4 saved answers, got %+v", res)
	}

	summary, err := service.SubmitExam(ctx, attempt.ID, alice)
	if err != nil {
		t.Fatalf("submit exam: %v", err)
	}
	if summary.Status != domain.StatusEvaluated {
		t.Fatalf("expected evaluated, got %s", summary.Status)
	}
	if summary.Marks.ObtainedMarks != 8 || summary.Marks.TotalMarks != 20 || summary.Marks.Percentage != 40 {
		t.Fatalf("unexpected marks %+v", summary.Marks)
	}

	stored, err := store.GetAttempt(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("get attempt: %v", err)
	}
	if stored.SubmittedAt == nil || !stored.SubmittedAt.Equal(fixedNow) {
		t.Fatalf("expected submitted_at %v, got %v", fixedNow, stored.SubmittedAt)
	}
	for _, a := range store.Answers(attempt.ID) {
		if !a.MarksObtained.Valid {
			t.Fatalf("answer %s left unscored", a.QuestionID)
		}
	}
}

func TestSubmitAnswersReplacesAndReportsItems(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService()
	attempt := startAttempt(t, service, "essay", alice)

	if _, err := service.SubmitAnswers(ctx, attempt.ID, alice, []domain.AnswerInput{
		{QuestionID: "e1", OptionID: strPtr("e1-b")},
	}); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	res, err := service.SubmitAnswers(ctx, attempt.ID, alice, []domain.AnswerInput{
		{QuestionID: "e1", OptionID: strPtr("e1-a")},
		{QuestionID: "ghost", OptionID: strPtr("x")},
		{QuestionID: "e2", OptionID: strPtr("q1-a")},
		{QuestionID: "e3", OptionID: strPtr("e1-a")},
		{QuestionID: "e1", SubjectiveAnswer: strPtr("free text")},
	})
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if res.Saved != 1 || len(res.Errors) != 4 {
		t.Fatalf("expected 1 saved and 4 errors, got %+v", res)
	}
	for i, want := range []int{1, 2, 3, 4} {
		if res.Errors[i].Index != want {
			t.Fatalf("expected error at index %d, got %+v", want, res.Errors[i])
		}
	}

	answers := store.Answers(attempt.ID)
	if len(answers) != 1 || *answers[0].SelectedOptionID != "e1-a" {
		t.Fatalf("expected the e1 answer to be replaced, got %+v", answers)
	}
}

func TestSubmitAnswersCollapsesRepeatedQuestion(t *testing.T) {
	ctx := context.Background()
	store := &uniqueBatchStore{AttemptStore: memory.NewAttemptStore()}
	exams := memory.NewExamRepository(memory.NewStaticExamLoader(testExams()), 5*time.Minute)
	service := app.NewExamServiceWithClock(store, exams, nil, fixedClock)
	attempt := startAttempt(t, service, "math", alice)

	res, err := service.SubmitAnswers(ctx, attempt.ID, alice, []domain.AnswerInput{
		{QuestionID: "q1", OptionID: strPtr("q1-b")},
		{QuestionID: "q2", OptionID: strPtr("q2-a")},
		{QuestionID: "q1", OptionID: strPtr("q1-x")},
		{QuestionID: "q1", OptionID: strPtr("q1-a")},
	})
	if err != nil {
		t.Fatalf("submit answers: %v", err)
	}
	if res.Saved != 2 || len(res.Errors) != 1 || res.Errors[0].Index != 2 {
		t.Fatalf("expected 2 distinct answers and 1 error, got %+v", res)
	}
	if store.rows != 2 {
		t.Fatalf("expected one row per question in the write, got %d", store.rows)
	}
	answers := store.Answers(attempt.ID)
	if len(answers) != 2 {
		t.Fatalf("expected 2 stored answers, got %+v", answers)
	}
	if got := answerFor(t, store.AttemptStore, attempt.ID, "q1"); *got.SelectedOptionID != "q1-a" {
		t.Fatalf("expected last q1 item to win, got %s", *got.SelectedOptionID)
	}

	summary, err := service.SubmitExam(ctx, attempt.ID, alice)
	if err != nil {
		t.Fatalf("submit exam: %v", err)
	}
	if summary.Marks.ObtainedMarks != 8 {
		t.Fatalf("expected 5+5-1-1 = 8, got %v", summary.Marks.ObtainedMarks)
	}
}

func TestSubjectiveEvaluationThroughService(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService()
	attempt := startAttempt(t, service, "essay", alice)

	if _, err := service.SubmitAnswers(ctx, attempt.ID, alice, []domain.AnswerInput{
		{QuestionID: "e1", OptionID: strPtr("e1-a")},
		{QuestionID: "e2", OptionID: strPtr("e2-a")},
		{QuestionID: "e3", SubjectiveAnswer: strPtr("an essay")},
	}); err != nil {
		t.Fatalf("submit answers: %v", err)
	}
	summary, err := service.SubmitExam(ctx, attempt.ID, alice)
	if err != nil {
		t.Fatalf("submit exam: %v", err)
	}
	if summary.Status != domain.StatusEvaluating || summary.Marks.ObtainedMarks != 8 || summary.RemainingCount != 1 {
		t.Fatalf("unexpected summary after submit %+v", summary)
	}

	essay := answerFor(t, store, attempt.ID, "e3")
	summary, err = service.EvaluateSubjective(ctx, attempt.ID, []domain.EvaluationInput{
		{AnswerID: essay.ID, MarksObtained: decimal.NewFromInt(7)},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if summary.Status != domain.StatusEvaluated || summary.Marks.ObtainedMarks != 15 || summary.EvaluatedCount != 1 {
		t.Fatalf("unexpected summary after evaluation %+v", summary)
	}
	if len(summary.Errors) != 0 {
		t.Fatalf("expected no item errors, got %+v", summary.Errors)
	}
}

func TestEvaluateSubjectiveReportsItemErrors(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService()
	attempt := startAttempt(t, service, "essay", alice)

	if _, err := service.SubmitAnswers(ctx, attempt.ID, alice, []domain.AnswerInput{
		{QuestionID: "e1", OptionID: strPtr("e1-a")},
		{QuestionID: "e3", SubjectiveAnswer: strPtr("an essay")},
	}); err != nil {
		t.Fatalf("submit answers: %v", err)
	}
	if _, err := service.SubmitExam(ctx, attempt.ID, alice); err != nil {
		t.Fatalf("submit exam: %v", err)
	}

	objective := answerFor(t, store, attempt.ID, "e1")
	essay := answerFor(t, store, attempt.ID, "e3")
	summary, err := service.EvaluateSubjective(ctx, attempt.ID, []domain.EvaluationInput{
		{AnswerID: objective.ID, MarksObtained: decimal.NewFromInt(1)},
		{AnswerID: "missing", MarksObtained: decimal.NewFromInt(1)},
		{AnswerID: essay.ID, MarksObtained: decimal.NewFromInt(11)},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(summary.Errors) != 3 || summary.EvaluatedCount != 0 || summary.RemainingCount != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Status != domain.StatusEvaluating || summary.Marks.ObtainedMarks != 5 {
		t.Fatalf("attempt should stay evaluating with 5 marks, got %+v", summary)
	}
}

func TestEvaluateSubjectiveRollsBackOnPersistFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAttemptStore()
	exams := memory.NewExamRepository(memory.NewStaticExamLoader(testExams()), time.Minute)
	service := app.NewExamServiceWithClock(store, exams, nil, fixedClock)
	broken := app.NewExamServiceWithClock(failingStore{store}, exams, nil, fixedClock)

	attempt := startAttempt(t, service, "essay", alice)
	if _, err := service.SubmitAnswers(ctx, attempt.ID, alice, []domain.AnswerInput{
		{QuestionID: "e3", SubjectiveAnswer: strPtr("an essay")},
	}); err != nil {
		t.Fatalf("submit answers: %v", err)
	}
	if _, err := service.SubmitExam(ctx, attempt.ID, alice); err != nil {
		t.Fatalf("submit exam: %v", err)
	}

	essay := answerFor(t, store, attempt.ID, "e3")
	_, err := broken.EvaluateSubjective(ctx, attempt.ID, []domain.EvaluationInput{
		{AnswerID: essay.ID, MarksObtained: decimal.NewFromInt(6)},
	})
	if !errors.Is(err, domain.ErrEvaluationFailed) {
		t.Fatalf("expected ErrEvaluationFailed, got %v", err)
	}

	if got := answerFor(t, store, attempt.ID, "e3"); got.MarksObtained.Valid {
		t.Fatalf("marks persisted despite failure: %+v", got.MarksObtained)
	}
	stored, _ := store.GetAttempt(ctx, attempt.ID)
	if stored.Status != domain.StatusEvaluating || !stored.ObtainedMarks.IsZero() {
		t.Fatalf("attempt changed despite failure: %+v", stored)
	}
}

func TestConcurrentSubmitExamHasOneWinner(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService()
	attempt := startAttempt(t, service, "math", alice)
	if _, err := service.SubmitAnswers(ctx, attempt.ID, alice, []domain.AnswerInput{
		{QuestionID: "q1", OptionID: strPtr("q1-a")},
	}); err != nil {
		t.Fatalf("submit answers: %v", err)
	}

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		wins    int
		invalid int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.SubmitExam(ctx, attempt.ID, alice)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrInvalidState):
				invalid++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 || invalid != callers-1 {
		t.Fatalf("expected 1 winner and %d rejections, got %d and %d", callers-1, wins, invalid)
	}
	stored, _ := store.GetAttempt(ctx, attempt.ID)
	if !stored.ObtainedMarks.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected 5 marks, got %s", stored.ObtainedMarks)
	}
}

func TestAttemptOwnership(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()
	attempt := startAttempt(t, service, "math", alice)

	if _, err := service.SubmitAnswers(ctx, attempt.ID, bob, []domain.AnswerInput{{QuestionID: "q1"}}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := service.SubmitExam(ctx, attempt.ID, bob); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := service.SubmitExam(ctx, "nope", alice); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}
}

func TestStartAttemptValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	if _, err := service.StartAttempt(ctx, "exam-1", "history", alice); !errors.Is(err, domain.ErrSectionNotFound) {
		t.Fatalf("expected ErrSectionNotFound, got %v", err)
	}
	if _, err := service.StartAttempt(ctx, "exam-x", "math", alice); !errors.Is(err, domain.ErrExamNotFound) {
		t.Fatalf("expected ErrExamNotFound, got %v", err)
	}
	if _, err := service.StartAttempt(ctx, "exam-1", "math", domain.Participant{Email: "guest@example.com"}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for anonymous participant, got %v", err)
	}

	first := startAttempt(t, service, "math", alice)
	second := startAttempt(t, service, "math", alice)
	if first.Sequence != 1 || second.Sequence != 2 {
		t.Fatalf("expected sequences 1 and 2, got %d and %d", first.Sequence, second.Sequence)
	}
}

func TestExamResultsRanksParticipants(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	if _, err := service.ExamResults(ctx, "exam-1"); !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition before any evaluation, got %v", err)
	}

	finishMath(t, service, alice, "q1-a", "q2-a")
	finishMath(t, service, bob, "q1-a", "q2-a")
	carol := domain.Participant{ID: "u3", Name: "Carol", Email: "carol@example.com"}
	finishMath(t, service, carol, "q1-a", "q2-b")

	results, err := service.ExamResults(ctx, "exam-1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if results.Exam.TotalParticipants != 3 || results.Exam.ExamDate != "2026-03-01" {
		t.Fatalf("unexpected exam info %+v", results.Exam)
	}
	ranks := []int{results.Results[0].Rank, results.Results[1].Rank, results.Results[2].Rank}
	if ranks[0] != 1 || ranks[1] != 1 || ranks[2] != 3 {
		t.Fatalf("expected ranks 1,1,3, got %v", ranks)
	}
	if results.Results[0].ParticipantID != "u1" || results.Results[2].ParticipantID != "u3" {
		t.Fatalf("unexpected order %+v", results.Results)
	}
	if results.Statistics.HighestScore != 8 || results.Statistics.LowestScore != 2 || results.Statistics.AverageScore != 6 {
		t.Fatalf("unexpected statistics %+v", results.Statistics)
	}
	if results.SectionTotalMarks["Mathematics"] != 20 {
		t.Fatalf("expected math total 20, got %v", results.SectionTotalMarks)
	}
}

func TestExamResultsDoesNotCacheOutdatedLeaderboard(t *testing.T) {
	ctx := context.Background()
	store := &pausingStore{
		AttemptStore: memory.NewAttemptStore(),
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	cache := newMapCache()
	exams := memory.NewExamRepository(memory.NewStaticExamLoader(testExams()), 5*time.Minute)
	service := app.NewExamServiceWithClock(store, exams, cache, fixedClock)

	finishMath(t, service, alice, "q1-a", "q2-a")

	store.armed.Store(true)
	type outcome struct {
		results domain.CohortResults
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := service.ExamResults(ctx, "exam-1")
		done <- outcome{res, err}
	}()

	<-store.entered
	finishMath(t, service, bob, "q1-a", "q2-a", "q3-a")
	close(store.release)

	first := <-done
	if first.err != nil {
		t.Fatalf("results: %v", first.err)
	}
	if len(first.results.Results) != 1 {
		t.Fatalf("expected the in-flight read to see one participant, got %d", len(first.results.Results))
	}
	if _, ok, _ := cache.Get(ctx, "exam-1"); ok {
		t.Fatal("results computed before bob finished must not be cached")
	}

	fresh, err := service.ExamResults(ctx, "exam-1")
	if err != nil {
		t.Fatalf("results after change: %v", err)
	}
	if len(fresh.Results) != 2 || fresh.Results[0].ParticipantID != "u2" {
		t.Fatalf("expected bob leading two rows, got %+v", fresh.Results)
	}
	cached, ok, _ := cache.Get(ctx, "exam-1")
	if !ok || len(cached.Results) != 2 {
		t.Fatalf("expected fresh results cached, got %v %+v", ok, cached)
	}
}

func TestSubscribeResultsReceivesUpdates(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	ch, cancel, err := service.SubscribeResults(ctx, "exam-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	finishMath(t, service, alice, "q1-a")

	select {
	case update := <-ch:
		if len(update.Results) != 1 || update.Results[0].TotalMarks != 2 {
			t.Fatalf("unexpected update %+v", update.Results)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no leaderboard update received")
	}

	if _, _, err := service.SubscribeResults(ctx, "exam-x"); !errors.Is(err, domain.ErrExamNotFound) {
		t.Fatalf("expected ErrExamNotFound, got %v", err)
	}
}

func TestLeaderboardHubKeepsLatestForSlowSubscriber(t *testing.T) {
	hub := app.NewLeaderboardHub()
	ch, cancel := hub.Subscribe("exam-1", nil)

	for i := 1; i <= 10; i++ {
		hub.Publish("exam-1", domain.CohortResults{Exam: domain.ExamInfo{TotalParticipants: i}})
	}

	var last domain.CohortResults
	for len(ch) > 0 {
		last = <-ch
	}
	if last.Exam.TotalParticipants != 10 {
		t.Fatalf("expected latest update to survive, got %d", last.Exam.TotalParticipants)
	}

	cancel()
	if hub.HasSubscribers("exam-1") {
		t.Fatal("expected no subscribers after cancel")
	}
	if _, open := <-ch; open {
		t.Fatal("expected channel closed after cancel")
	}
}

// finishMath starts, answers and submits a math attempt. Unlisted questions
// are skipped and scored as wrong.
func finishMath(t *testing.T, service *app.ExamService, p domain.Participant, options ...string) {
	t.Helper()
	ctx := context.Background()
	attempt := startAttempt(t, service, "math", p)
	inputs := make([]domain.AnswerInput, 0, 4)
	for i, q := range []string{"q1", "q2", "q3", "q4"} {
		in := domain.AnswerInput{QuestionID: q}
		if i < len(options) {
			in.OptionID = strPtr(options[i])
		}
		inputs = append(inputs, in)
	}
	if _, err := service.SubmitAnswers(ctx, attempt.ID, p, inputs); err != nil {
		t.Fatalf("submit answers: %v", err)
	}
	if _, err := service.SubmitExam(ctx, attempt.ID, p); err != nil {
		t.Fatalf("submit exam: %v", err)
	}
}

func startAttempt(t *testing.T, service *app.ExamService, sectionID string, p domain.Participant) domain.Attempt {
	t.Helper()
	attempt, err := service.StartAttempt(context.Background(), "exam-1", sectionID, p)
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	return attempt
}

func answerFor(t *testing.T, store *memory.AttemptStore, attemptID, questionID string) domain.SubmittedAnswer {
	t.Helper()
	for _, a := range store.Answers(attemptID) {
		if a.QuestionID == questionID {
			return a
		}
	}
	t.Fatalf("no answer for %s", questionID)
	return domain.SubmittedAnswer{}
}

// uniqueBatchStore rejects answer batches that touch the same row twice,
// as a single upsert statement would.
type uniqueBatchStore struct {
	*memory.AttemptStore
	rows int
}

func (s *uniqueBatchStore) WithAttemptLock(ctx context.Context, attemptID string, fn func(ctx context.Context, tx app.AttemptTx) error) error {
	return s.AttemptStore.WithAttemptLock(ctx, attemptID, func(ctx context.Context, tx app.AttemptTx) error {
		return fn(ctx, uniqueBatchTx{AttemptTx: tx, store: s})
	})
}

type uniqueBatchTx struct {
	app.AttemptTx
	store *uniqueBatchStore
}

func (tx uniqueBatchTx) SaveAnswers(ctx context.Context, answers []domain.SubmittedAnswer) error {
	seen := make(map[string]bool, len(answers))
	for _, a := range answers {
		if seen[a.ID] {
			return errors.New("ON CONFLICT DO UPDATE command cannot affect row a second time")
		}
		seen[a.ID] = true
	}
	tx.store.rows += len(answers)
	return tx.AttemptTx.SaveAnswers(ctx, answers)
}

// pausingStore holds the first armed ListEvaluated call until release is closed.
type pausingStore struct {
	*memory.AttemptStore
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (s *pausingStore) ListEvaluated(ctx context.Context, examID string) ([]domain.Attempt, error) {
	attempts, err := s.AttemptStore.ListEvaluated(ctx, examID)
	if s.armed.CompareAndSwap(true, false) {
		close(s.entered)
		<-s.release
	}
	return attempts, err
}

type mapCache struct {
	mu      sync.Mutex
	results map[string]domain.CohortResults
}

func newMapCache() *mapCache {
	return &mapCache{results: make(map[string]domain.CohortResults)}
}

func (c *mapCache) Get(_ context.Context, examID string) (domain.CohortResults, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.results[examID]
	return res, ok, nil
}

func (c *mapCache) Set(_ context.Context, examID string, results domain.CohortResults) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[examID] = results
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, examID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.results, examID)
	return nil
}

type failingStore struct {
	*memory.AttemptStore
}

func (s failingStore) WithAttemptLock(ctx context.Context, attemptID string, fn func(ctx context.Context, tx app.AttemptTx) error) error {
	return s.AttemptStore.WithAttemptLock(ctx, attemptID, func(ctx context.Context, tx app.AttemptTx) error {
		return fn(ctx, failingTx{tx})
	})
}

type failingTx struct {
	app.AttemptTx
}

func (failingTx) SaveAttempt(context.Context, domain.Attempt) error {
	return errors.New("connection reset")
}

func fixedClock() time.Time { return fixedNow }

func strPtr(s string) *string { return &s }

func newTestService() (*app.ExamService, *memory.AttemptStore) {
	store := memory.NewAttemptStore()
	exams := memory.NewExamRepository(memory.NewStaticExamLoader(testExams()), 5*time.Minute)
	return app.NewExamServiceWithClock(store, exams, nil, fixedClock), store
}

func objective(id, sectionID string, full, negative int64) domain.Question {
	return domain.Question{
		ID:              id,
		SectionID:       sectionID,
		FullMarks:       decimal.NewFromInt(full),
		NegativeMarking: negative > 0,
		NegativeMark:    decimal.NewFromInt(negative),
		Kind: domain.Objective{Options: []domain.Option{
			{ID: id + "-a", Text: "right", Correct: true},
			{ID: id + "-b", Text: "wrong", Correct: false},
		}},
	}
}

func testExams() map[string]domain.Exam {
	return map[string]domain.Exam{
		"exam-1": {
			ID:       "exam-1",
			Title:    "Spring assessment",
			ExamDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			Mode:     domain.ParticipationRegistered,
			Sections: []domain.Section{
				{
					ID:     "math",
					ExamID: "exam-1",
					Title:  "Mathematics",
					Questions: []domain.Question{
						objective("q1", "math", 5, 1),
						objective("q2", "math", 5, 1),
						objective("q3", "math", 5, 1),
						objective("q4", "math", 5, 1),
					},
				},
				{
					ID:     "essay",
					ExamID: "exam-1",
					Title:  "Essay",
					Questions: []domain.Question{
						objective("e1", "essay", 5, 0),
						objective("e2", "essay", 3, 0),
						{ID: "e3", SectionID: "essay", FullMarks: decimal.NewFromInt(10), Kind: domain.Subjective{}},
					},
				},
			},
		},
	}
}
