package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"exam-scoring-service/internal/domain"
	"exam-scoring-service/internal/scoring"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ExamService contains the attempt scoring and ranking use cases.
type ExamService struct {
	attempts AttemptStore
	exams    ExamRepository
	cache    ResultCache
	hub      *LeaderboardHub
	now      func() time.Time

	// gens counts result changes per exam. A computed leaderboard is only
	// cached if no change happened while it was being built.
	genMu sync.Mutex
	gens  map[string]uint64
}

// NewExamService wires the use cases. cache may be nil.
func NewExamService(attempts AttemptStore, exams ExamRepository, cache ResultCache) *ExamService {
	return NewExamServiceWithClock(attempts, exams, cache, time.Now)
}

// NewExamServiceWithClock allows deterministic timestamps in tests.
func NewExamServiceWithClock(attempts AttemptStore, exams ExamRepository, cache ResultCache, now func() time.Time) *ExamService {
	return &ExamService{
		attempts: attempts,
		exams:    exams,
		cache:    cache,
		hub:      NewLeaderboardHub(),
		now:      now,
		gens:     make(map[string]uint64),
	}
}

// AnswerBatchResult reports how many answers were stored and which were rejected.
type AnswerBatchResult struct {
	AttemptID string             `json:"attempt_id"`
	Saved     int                `json:"saved"`
	Errors    []domain.ItemError `json:"errors"`
}

// StartAttempt opens a new attempt for a participant on one exam section and
// captures the section's total marks.
func (s *ExamService) StartAttempt(ctx context.Context, examID, sectionID string, participant domain.Participant) (domain.Attempt, error) {
	exam, err := s.exams.GetExam(ctx, examID)
	if err != nil {
		return domain.Attempt{}, err
	}
	section, err := s.exams.GetSection(ctx, examID, sectionID)
	if err != nil {
		return domain.Attempt{}, err
	}
	if !hasIdentity(exam.Mode, participant) {
		return domain.Attempt{}, fmt.Errorf("%w: participant identity required for %s exam", domain.ErrUnauthorized, exam.Mode)
	}

	attempt, err := s.attempts.CreateAttempt(ctx, domain.Attempt{
		ID:            uuid.NewString(),
		ExamID:        exam.ID,
		SectionID:     section.Section.ID,
		Participant:   participant,
		Status:        domain.StatusStarted,
		StartedAt:     s.now(),
		TotalMarks:    section.TotalMarks,
		ObtainedMarks: decimal.Zero,
	})
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("create attempt: %w", err)
	}
	log.Info().Str("attempt_id", attempt.ID).Str("exam_id", examID).Str("section_id", sectionID).
		Int("sequence", attempt.Sequence).Msg("attempt started")
	return attempt, nil
}

// SubmitAnswers stores or replaces answers of a started attempt. Items that do
// not fit the section are reported and skipped. When a question appears more
// than once in the batch the last valid item wins.
func (s *ExamService) SubmitAnswers(ctx context.Context, attemptID string, participant domain.Participant, inputs []domain.AnswerInput) (AnswerBatchResult, error) {
	attempt, section, err := s.ownedAttempt(ctx, attemptID, participant)
	if err != nil {
		return AnswerBatchResult{}, err
	}
	questions := section.Questions

	result := AnswerBatchResult{AttemptID: attempt.ID, Errors: []domain.ItemError{}}
	err = s.attempts.WithAttemptLock(ctx, attemptID, func(ctx context.Context, tx AttemptTx) error {
		locked, answers, err := tx.Load(ctx)
		if err != nil {
			return err
		}
		if locked.Status != domain.StatusStarted {
			return fmt.Errorf("%w: attempt %s is %s", domain.ErrInvalidState, locked.ID, locked.Status)
		}

		byQuestion := make(map[string]domain.SubmittedAnswer, len(answers))
		for _, a := range answers {
			byQuestion[a.QuestionID] = a
		}

		now := s.now()
		var order []string
		staged := make(map[string]domain.SubmittedAnswer, len(inputs))
		for i, in := range inputs {
			q, ok := questions[in.QuestionID]
			if !ok {
				result.Errors = append(result.Errors, domain.ItemError{Index: i, Message: "question " + in.QuestionID + " is not part of this section"})
				continue
			}
			if msg := checkAnswerShape(q, in); msg != "" {
				result.Errors = append(result.Errors, domain.ItemError{Index: i, Message: msg})
				continue
			}
			answer, ok := staged[q.ID]
			if !ok {
				order = append(order, q.ID)
				if answer, ok = byQuestion[q.ID]; !ok {
					answer = domain.SubmittedAnswer{ID: uuid.NewString(), AttemptID: locked.ID, QuestionID: q.ID}
				}
			}
			answer.SelectedOptionID = in.OptionID
			answer.SubjectiveAnswer = in.SubjectiveAnswer
			answer.UpdatedAt = now
			staged[q.ID] = answer
		}
		if len(order) == 0 {
			return nil
		}
		pending := make([]domain.SubmittedAnswer, 0, len(order))
		for _, id := range order {
			pending = append(pending, staged[id])
		}
		if err := tx.SaveAnswers(ctx, pending); err != nil {
			return fmt.Errorf("save answers: %w", err)
		}
		result.Saved = len(pending)
		return nil
	})
	if err != nil {
		return AnswerBatchResult{}, err
	}
	return result, nil
}

// SubmitExam finalizes a started attempt. Only one concurrent call can win;
// the others see ErrInvalidState.
func (s *ExamService) SubmitExam(ctx context.Context, attemptID string, participant domain.Participant) (domain.AttemptSummary, error) {
	_, section, err := s.ownedAttempt(ctx, attemptID, participant)
	if err != nil {
		return domain.AttemptSummary{}, err
	}
	questions := section.Questions

	var summary domain.AttemptSummary
	var finalized domain.Attempt
	err = s.attempts.WithAttemptLock(ctx, attemptID, func(ctx context.Context, tx AttemptTx) error {
		attempt, answers, err := tx.Load(ctx)
		if err != nil {
			return err
		}
		out, err := scoring.Finalize(&attempt, questions, answers, s.now())
		if err != nil {
			return err
		}
		if len(out.Answers) > 0 {
			if err := tx.SaveAnswers(ctx, out.Answers); err != nil {
				return fmt.Errorf("save scored answers: %w", err)
			}
		}
		if err := tx.SaveAttempt(ctx, attempt); err != nil {
			return fmt.Errorf("save attempt: %w", err)
		}
		finalized = attempt
		summary = scoring.SummarizeAttempt(attempt, out.EvaluatedCount, out.RemainingCount, nil)
		return nil
	})
	if err != nil {
		return domain.AttemptSummary{}, err
	}

	log.Info().Str("attempt_id", attemptID).Str("status", string(finalized.Status)).
		Str("obtained", finalized.ObtainedMarks.String()).Msg("attempt submitted")
	if finalized.Status == domain.StatusEvaluated {
		s.resultsChanged(ctx, finalized.ExamID)
	}
	return summary, nil
}

// EvaluateSubjective applies an evaluator's marks to subjective answers. Item
// errors are returned in the summary; persistence failures roll back the
// whole batch and surface as ErrEvaluationFailed.
func (s *ExamService) EvaluateSubjective(ctx context.Context, attemptID string, evals []domain.EvaluationInput) (domain.AttemptSummary, error) {
	current, err := s.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return domain.AttemptSummary{}, err
	}
	section, err := s.sectionOf(ctx, current)
	if err != nil {
		return domain.AttemptSummary{}, err
	}
	questions := section.Questions

	var summary domain.AttemptSummary
	var evaluated domain.Attempt
	err = s.attempts.WithAttemptLock(ctx, attemptID, func(ctx context.Context, tx AttemptTx) error {
		attempt, answers, err := tx.Load(ctx)
		if err != nil {
			return err
		}
		out, err := scoring.ApplyEvaluations(&attempt, questions, answers, evals, s.now())
		if err != nil {
			return err
		}
		if len(out.Applied) > 0 {
			if err := tx.SaveAnswers(ctx, out.Applied); err != nil {
				return persistFailure(err)
			}
		}
		if err := tx.SaveAttempt(ctx, attempt); err != nil {
			return persistFailure(err)
		}
		evaluated = attempt
		summary = scoring.SummarizeAttempt(attempt, len(out.Applied), out.RemainingCount, out.Errors)
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidState) && !errors.Is(err, domain.ErrAttemptNotFound) && !errors.Is(err, domain.ErrEvaluationFailed) {
			err = persistFailure(err)
		}
		log.Error().Err(err).Str("attempt_id", attemptID).Msg("evaluation batch rejected")
		return domain.AttemptSummary{}, err
	}

	log.Info().Str("attempt_id", attemptID).Int("applied", summary.EvaluatedCount).
		Int("remaining", summary.RemainingCount).Int("errors", len(summary.Errors)).Msg("evaluation recorded")
	if evaluated.Status == domain.StatusEvaluated {
		s.resultsChanged(ctx, evaluated.ExamID)
	}
	return summary, nil
}

// ExamResults ranks every evaluated attempt of the exam.
func (s *ExamService) ExamResults(ctx context.Context, examID string) (domain.CohortResults, error) {
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, examID); err == nil && ok {
			return cached, nil
		} else if err != nil {
			log.Warn().Err(err).Str("exam_id", examID).Msg("result cache read failed")
		}
	}

	gen := s.generation(examID)
	results, err := s.computeResults(ctx, examID)
	if err != nil {
		return domain.CohortResults{}, err
	}
	if s.cache != nil {
		s.storeResults(ctx, examID, gen, results)
	}
	return results, nil
}

func (s *ExamService) generation(examID string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.gens[examID]
}

// storeResults caches results computed at generation gen unless the exam's
// results changed since.
func (s *ExamService) storeResults(ctx context.Context, examID string, gen uint64, results domain.CohortResults) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.gens[examID] != gen {
		log.Debug().Str("exam_id", examID).Msg("skip caching outdated results")
		return
	}
	if err := s.cache.Set(ctx, examID, results); err != nil {
		log.Warn().Err(err).Str("exam_id", examID).Msg("result cache write failed")
	}
}

// SubscribeResults returns a channel that receives the leaderboard whenever an
// attempt of the exam becomes evaluated. The caller must invoke the returned
// cancel function to avoid leaks.
func (s *ExamService) SubscribeResults(ctx context.Context, examID string) (<-chan domain.CohortResults, func(), error) {
	if _, err := s.exams.GetExam(ctx, examID); err != nil {
		return nil, nil, err
	}
	var initial *domain.CohortResults
	if results, err := s.ExamResults(ctx, examID); err == nil {
		initial = &results
	} else if !errors.Is(err, domain.ErrPrecondition) {
		return nil, nil, err
	}
	ch, cancel := s.hub.Subscribe(examID, initial)
	return ch, cancel, nil
}

func (s *ExamService) computeResults(ctx context.Context, examID string) (domain.CohortResults, error) {
	exam, err := s.exams.GetExam(ctx, examID)
	if err != nil {
		return domain.CohortResults{}, err
	}
	attempts, err := s.attempts.ListEvaluated(ctx, examID)
	if err != nil {
		return domain.CohortResults{}, fmt.Errorf("list evaluated attempts: %w", err)
	}
	if len(attempts) == 0 {
		return domain.CohortResults{}, fmt.Errorf("%w: exam %s has no evaluated attempts", domain.ErrPrecondition, examID)
	}
	set, err := scoring.BuildRankedResults(exam, attempts)
	if err != nil {
		return domain.CohortResults{}, err
	}
	return scoring.SummarizeCohort(set), nil
}

// resultsChanged drops cached results and pushes a fresh leaderboard to live subscribers.
func (s *ExamService) resultsChanged(ctx context.Context, examID string) {
	s.genMu.Lock()
	s.gens[examID]++
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, examID); err != nil {
			log.Warn().Err(err).Str("exam_id", examID).Msg("result cache invalidation failed")
		}
	}
	s.genMu.Unlock()
	if !s.hub.HasSubscribers(examID) {
		return
	}
	results, err := s.ExamResults(ctx, examID)
	if err != nil {
		log.Error().Err(err).Str("exam_id", examID).Msg("recompute leaderboard")
		return
	}
	s.hub.Publish(examID, results)
}

func (s *ExamService) ownedAttempt(ctx context.Context, attemptID string, participant domain.Participant) (domain.Attempt, domain.SectionIndex, error) {
	attempt, err := s.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return domain.Attempt{}, domain.SectionIndex{}, err
	}
	if !participant.Owns(attempt.Participant) {
		return domain.Attempt{}, domain.SectionIndex{}, fmt.Errorf("%w: %s", domain.ErrUnauthorized, attemptID)
	}
	section, err := s.sectionOf(ctx, attempt)
	if err != nil {
		return domain.Attempt{}, domain.SectionIndex{}, err
	}
	return attempt, section, nil
}

// sectionOf resolves the section an attempt was started on. A section that
// vanished from the exam leaves the attempt unscorable.
func (s *ExamService) sectionOf(ctx context.Context, attempt domain.Attempt) (domain.SectionIndex, error) {
	section, err := s.exams.GetSection(ctx, attempt.ExamID, attempt.SectionID)
	if errors.Is(err, domain.ErrSectionNotFound) {
		return domain.SectionIndex{}, fmt.Errorf("%w: section %s of attempt %s", domain.ErrPrecondition, attempt.SectionID, attempt.ID)
	}
	return section, err
}

func persistFailure(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrEvaluationFailed, err)
}

func hasIdentity(mode domain.ParticipationMode, p domain.Participant) bool {
	if mode == domain.ParticipationPublic {
		return p.Email != ""
	}
	return p.ID != ""
}

// checkAnswerShape returns a message when the answer does not fit the question kind.
func checkAnswerShape(q domain.Question, in domain.AnswerInput) string {
	switch kind := q.Kind.(type) {
	case domain.Objective:
		if in.SubjectiveAnswer != nil {
			return "question " + q.ID + " does not accept a written answer"
		}
		if in.OptionID == nil {
			return ""
		}
		for _, opt := range kind.Options {
			if opt.ID == *in.OptionID {
				return ""
			}
		}
		return "option " + *in.OptionID + " does not belong to question " + q.ID
	case domain.Subjective:
		if in.OptionID != nil {
			return "question " + q.ID + " does not accept an option"
		}
		return ""
	default:
		panic(fmt.Sprintf("question %s: unknown kind %T", q.ID, q.Kind))
	}
}
