package scoring

import (
	"fmt"
	"time"

	"exam-scoring-service/internal/domain"
	"github.com/shopspring/decimal"
)

// FinalizeOutcome is the result of closing an attempt.
type FinalizeOutcome struct {
	// Answers holds every answer of the attempt with objective marks filled in.
	Answers        []domain.SubmittedAnswer
	EvaluatedCount int
	RemainingCount int
}

// Finalize scores the objective answers of a started attempt and moves it to
// evaluating (when any subjective answer exists) or evaluated. The attempt is
// only mutated when Finalize succeeds.
func Finalize(attempt *domain.Attempt, questions map[string]domain.Question, answers []domain.SubmittedAnswer, now time.Time) (FinalizeOutcome, error) {
	if attempt.Status != domain.StatusStarted {
		return FinalizeOutcome{}, fmt.Errorf("%w: attempt %s is %s", domain.ErrInvalidState, attempt.ID, attempt.Status)
	}

	out := FinalizeOutcome{Answers: make([]domain.SubmittedAnswer, len(answers))}
	hasSubjective := false
	for i, answer := range answers {
		q, ok := questions[answer.QuestionID]
		if !ok {
			return FinalizeOutcome{}, fmt.Errorf("%w: question %s missing from section %s", domain.ErrPrecondition, answer.QuestionID, attempt.SectionID)
		}
		if q.IsSubjective() {
			hasSubjective = true
			out.Answers[i] = answer
			continue
		}
		marks, err := EvaluateObjective(q, answer)
		if err != nil {
			return FinalizeOutcome{}, err
		}
		answer.MarksObtained = decimal.NewNullDecimal(marks)
		answer.UpdatedAt = now
		out.Answers[i] = answer
		out.EvaluatedCount++
	}

	next := domain.StatusEvaluated
	if hasSubjective {
		next = domain.StatusEvaluating
	}
	updated := *attempt
	if err := updated.Transition(domain.StatusSubmitted); err != nil {
		return FinalizeOutcome{}, err
	}
	if err := updated.Transition(next); err != nil {
		return FinalizeOutcome{}, err
	}
	submittedAt := now
	updated.SubmittedAt = &submittedAt
	updated.ObtainedMarks = obtainedMarks(out.Answers)
	*attempt = updated

	out.RemainingCount = pendingSubjective(questions, out.Answers)
	return out, nil
}

// MarksScale is the number of decimal places marks are stored with.
const MarksScale = 2

// EvaluationOutcome is the result of applying an evaluator's batch.
type EvaluationOutcome struct {
	// Applied holds the answers whose marks changed and must be persisted.
	Applied        []domain.SubmittedAnswer
	Errors         []domain.ItemError
	RemainingCount int
}

// ApplyEvaluations records manual marks for subjective answers. Invalid items
// are reported in Errors and skipped; the rest are applied. Obtained marks and
// status are recomputed from every answer of the attempt.
func ApplyEvaluations(attempt *domain.Attempt, questions map[string]domain.Question, answers []domain.SubmittedAnswer, evals []domain.EvaluationInput, now time.Time) (EvaluationOutcome, error) {
	if attempt.Status != domain.StatusEvaluating && attempt.Status != domain.StatusSubmitted {
		return EvaluationOutcome{}, fmt.Errorf("%w: attempt %s is %s", domain.ErrInvalidState, attempt.ID, attempt.Status)
	}

	// answers of other attempts are never visible to the batch
	current := make([]domain.SubmittedAnswer, 0, len(answers))
	for _, a := range answers {
		if a.AttemptID == attempt.ID {
			current = append(current, a)
		}
	}
	byID := make(map[string]int, len(current))
	for i, a := range current {
		byID[a.ID] = i
	}

	out := EvaluationOutcome{}
	changed := make(map[string]struct{})
	for i, eval := range evals {
		idx, ok := byID[eval.AnswerID]
		if !ok {
			out.Errors = append(out.Errors, itemError(i, eval.AnswerID, "answer not found for attempt"))
			continue
		}
		q, ok := questions[current[idx].QuestionID]
		if !ok || !q.IsSubjective() {
			out.Errors = append(out.Errors, itemError(i, eval.AnswerID, "question is not subjective"))
			continue
		}
		if eval.MarksObtained.IsNegative() || eval.MarksObtained.GreaterThan(q.FullMarks) {
			out.Errors = append(out.Errors, itemError(i, eval.AnswerID,
				fmt.Sprintf("marks must be between 0 and %s", q.FullMarks.String())))
			continue
		}
		if !eval.MarksObtained.Equal(eval.MarksObtained.Round(MarksScale)) {
			out.Errors = append(out.Errors, itemError(i, eval.AnswerID,
				fmt.Sprintf("marks must have at most %d decimal places", MarksScale)))
			continue
		}
		current[idx].MarksObtained = decimal.NewNullDecimal(eval.MarksObtained)
		current[idx].UpdatedAt = now
		changed[eval.AnswerID] = struct{}{}
	}

	for _, a := range current {
		if _, ok := changed[a.ID]; ok {
			out.Applied = append(out.Applied, a)
		}
	}
	out.RemainingCount = pendingSubjective(questions, current)

	next := domain.StatusEvaluating
	if out.RemainingCount == 0 {
		next = domain.StatusEvaluated
	}
	updated := *attempt
	if err := updated.Transition(next); err != nil {
		return EvaluationOutcome{}, err
	}
	updated.ObtainedMarks = obtainedMarks(current)
	*attempt = updated
	return out, nil
}

func obtainedMarks(answers []domain.SubmittedAnswer) decimal.Decimal {
	total := decimal.Zero
	for _, a := range answers {
		if a.MarksObtained.Valid {
			total = total.Add(a.MarksObtained.Decimal)
		}
	}
	return total
}

func pendingSubjective(questions map[string]domain.Question, answers []domain.SubmittedAnswer) int {
	n := 0
	for _, a := range answers {
		if q, ok := questions[a.QuestionID]; ok && q.IsSubjective() && !a.MarksObtained.Valid {
			n++
		}
	}
	return n
}

func itemError(index int, answerID, msg string) domain.ItemError {
	return domain.ItemError{Index: index, AnswerID: answerID, Message: msg}
}
