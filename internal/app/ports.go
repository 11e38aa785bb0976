package app

import (
	"context"

	"exam-scoring-service/internal/domain"
)

// ExamRepository loads exam content (from cache/backing store).
type ExamRepository interface {
	GetExam(ctx context.Context, examID string) (domain.Exam, error)
	// GetSection returns an indexed section; a missing section wraps
	// domain.ErrSectionNotFound.
	GetSection(ctx context.Context, examID, sectionID string) (domain.SectionIndex, error)
}

// AttemptTx is the view of one locked attempt inside WithAttemptLock.
// Writes become visible only when the surrounding callback returns nil.
type AttemptTx interface {
	Load(ctx context.Context) (domain.Attempt, []domain.SubmittedAnswer, error)
	SaveAnswers(ctx context.Context, answers []domain.SubmittedAnswer) error
	SaveAttempt(ctx context.Context, attempt domain.Attempt) error
}

// AttemptStore abstracts where attempts and answers live (in-memory, Postgres).
type AttemptStore interface {
	// CreateAttempt persists a new attempt and assigns its sequence number.
	CreateAttempt(ctx context.Context, attempt domain.Attempt) (domain.Attempt, error)
	GetAttempt(ctx context.Context, attemptID string) (domain.Attempt, error)
	// ListEvaluated returns the evaluated attempts of an exam in creation order.
	ListEvaluated(ctx context.Context, examID string) ([]domain.Attempt, error)
	// WithAttemptLock runs fn while holding an exclusive lock on the attempt.
	// Nothing written through the tx is kept when fn returns an error.
	WithAttemptLock(ctx context.Context, attemptID string, fn func(ctx context.Context, tx AttemptTx) error) error
}

// ResultCache stores rendered cohort results between recomputations.
type ResultCache interface {
	Get(ctx context.Context, examID string) (domain.CohortResults, bool, error)
	Set(ctx context.Context, examID string, results domain.CohortResults) error
	Invalidate(ctx context.Context, examID string) error
}
