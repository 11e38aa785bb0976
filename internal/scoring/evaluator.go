// Package scoring evaluates answers, aggregates attempts and ranks cohorts.
// Everything here is pure; callers own persistence and locking.
package scoring

import (
	"fmt"

	"exam-scoring-service/internal/domain"
	"github.com/shopspring/decimal"
)

// EvaluateObjective returns the marks delta for an objective answer: full
// marks when the selected option is correct, otherwise the negative mark (or
// zero when negative marking is off). A skipped question scores like a wrong one.
func EvaluateObjective(q domain.Question, answer domain.SubmittedAnswer) (decimal.Decimal, error) {
	switch kind := q.Kind.(type) {
	case domain.Objective:
		if answer.SelectedOptionID != nil {
			for _, opt := range kind.Options {
				if opt.ID == *answer.SelectedOptionID && opt.Correct {
					return q.FullMarks, nil
				}
			}
		}
		return penalty(q), nil
	case domain.Subjective:
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrNotObjective, q.ID)
	default:
		panic(fmt.Sprintf("question %s: unknown kind %T", q.ID, q.Kind))
	}
}

func penalty(q domain.Question) decimal.Decimal {
	if !q.NegativeMarking {
		return decimal.Zero
	}
	return q.NegativeMark.Neg()
}
