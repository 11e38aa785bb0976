package domain

import "errors"

var (
	// ErrExamNotFound indicates the exam content could not be loaded.
	ErrExamNotFound = errors.New("exam not found")
	// ErrSectionNotFound indicates a section ID is not part of the exam.
	ErrSectionNotFound = errors.New("section not found")
	// ErrAttemptNotFound is returned for unknown attempt IDs.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrInvalidState is returned when an attempt is in the wrong lifecycle state.
	ErrInvalidState = errors.New("invalid attempt state")
	// ErrUnauthorized is returned when the caller does not own the attempt.
	ErrUnauthorized = errors.New("not authorized for attempt")
	// ErrPrecondition covers inputs the caller should have rejected upstream,
	// such as an empty cohort or missing section data.
	ErrPrecondition = errors.New("precondition failed")
	// ErrEvaluationFailed is returned when an evaluation batch could not be persisted.
	ErrEvaluationFailed = errors.New("evaluation failed")
	// ErrNotObjective is returned when auto-scoring is requested for a subjective question.
	ErrNotObjective = errors.New("question is not objective")
	// ErrUnknownQuestionType indicates an unsupported question type tag.
	ErrUnknownQuestionType = errors.New("unknown question type")
)
