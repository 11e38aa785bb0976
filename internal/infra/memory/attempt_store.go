package memory

import (
	"context"
	"sync"

	"exam-scoring-service/internal/app"
	"exam-scoring-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptStore. Each
// attempt has its own lock; writes made inside WithAttemptLock are staged and
// only committed when the callback succeeds.
type AttemptStore struct {
	mu       sync.RWMutex
	order    []string
	attempts map[string]domain.Attempt
	answers  map[string][]domain.SubmittedAnswer

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts: make(map[string]domain.Attempt),
		answers:  make(map[string][]domain.SubmittedAnswer),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *AttemptStore) CreateAttempt(_ context.Context, attempt domain.Attempt) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := participantKey(attempt.Participant)
	seq := 0
	for _, existing := range s.attempts {
		if existing.ExamID == attempt.ExamID && existing.SectionID == attempt.SectionID &&
			participantKey(existing.Participant) == key && existing.Sequence > seq {
			seq = existing.Sequence
		}
	}
	attempt.Sequence = seq + 1
	s.attempts[attempt.ID] = attempt
	s.order = append(s.order, attempt.ID)
	return attempt, nil
}

func (s *AttemptStore) GetAttempt(_ context.Context, attemptID string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *AttemptStore) ListEvaluated(_ context.Context, examID string) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Attempt, 0)
	for _, id := range s.order {
		attempt := s.attempts[id]
		if attempt.ExamID == examID && attempt.Status == domain.StatusEvaluated {
			out = append(out, attempt)
		}
	}
	return out, nil
}

// Answers returns a copy of the stored answers of an attempt.
func (s *AttemptStore) Answers(attemptID string) []domain.SubmittedAnswer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.SubmittedAnswer(nil), s.answers[attemptID]...)
}

func (s *AttemptStore) WithAttemptLock(ctx context.Context, attemptID string, fn func(ctx context.Context, tx app.AttemptTx) error) error {
	lock := s.lockFor(attemptID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	attempt, ok := s.attempts[attemptID]
	answers := append([]domain.SubmittedAnswer(nil), s.answers[attemptID]...)
	s.mu.RUnlock()
	if !ok {
		return domain.ErrAttemptNotFound
	}

	tx := &attemptTx{attempt: attempt, answers: answers}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	s.attempts[attemptID] = tx.attempt
	s.answers[attemptID] = tx.answers
	s.mu.Unlock()
	return nil
}

func (s *AttemptStore) lockFor(attemptID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lock, ok := s.locks[attemptID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[attemptID] = lock
	}
	return lock
}

type attemptTx struct {
	attempt domain.Attempt
	answers []domain.SubmittedAnswer
}

func (t *attemptTx) Load(context.Context) (domain.Attempt, []domain.SubmittedAnswer, error) {
	return t.attempt, append([]domain.SubmittedAnswer(nil), t.answers...), nil
}

func (t *attemptTx) SaveAnswers(_ context.Context, answers []domain.SubmittedAnswer) error {
	for _, a := range answers {
		replaced := false
		for i := range t.answers {
			if t.answers[i].ID == a.ID {
				t.answers[i] = a
				replaced = true
				break
			}
		}
		if !replaced {
			t.answers = append(t.answers, a)
		}
	}
	return nil
}

func (t *attemptTx) SaveAttempt(_ context.Context, attempt domain.Attempt) error {
	t.attempt = attempt
	return nil
}

func participantKey(p domain.Participant) string {
	if p.ID != "" {
		return "id:" + p.ID
	}
	return "email:" + p.Email
}
