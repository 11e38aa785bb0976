package domain

import "fmt"

// AttemptStatus is the lifecycle state of an attempt.
type AttemptStatus string

const (
	StatusStarted    AttemptStatus = "started"
	StatusSubmitted  AttemptStatus = "submitted"
	StatusEvaluating AttemptStatus = "evaluating"
	StatusEvaluated  AttemptStatus = "evaluated"
)

var transitions = map[AttemptStatus][]AttemptStatus{
	StatusStarted:    {StatusSubmitted},
	StatusSubmitted:  {StatusEvaluating, StatusEvaluated},
	StatusEvaluating: {StatusEvaluating, StatusEvaluated},
}

// CanTransition reports whether the lifecycle allows moving from s to next.
func (s AttemptStatus) CanTransition(next AttemptStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition moves the attempt to next or returns ErrInvalidState.
func (a *Attempt) Transition(next AttemptStatus) error {
	if !a.Status.CanTransition(next) {
		return fmt.Errorf("%w: attempt %s cannot move from %s to %s", ErrInvalidState, a.ID, a.Status, next)
	}
	a.Status = next
	return nil
}

// Valid reports whether s is a known status.
func (s AttemptStatus) Valid() bool {
	switch s {
	case StatusStarted, StatusSubmitted, StatusEvaluating, StatusEvaluated:
		return true
	}
	return false
}
