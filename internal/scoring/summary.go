package scoring

import (
	"exam-scoring-service/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percentage returns obtained/total*100 rounded to 2 places, or 0 when total is 0.
func Percentage(obtained, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return obtained.Div(total).Mul(hundred).Round(2)
}

// DescribeAttempt renders an attempt with numeric marks.
func DescribeAttempt(attempt domain.Attempt) domain.AttemptView {
	return domain.AttemptView{
		AttemptID:   attempt.ID,
		ExamID:      attempt.ExamID,
		SectionID:   attempt.SectionID,
		Participant: attempt.Participant,
		Sequence:    attempt.Sequence,
		Status:      attempt.Status,
		StartedAt:   attempt.StartedAt,
		SubmittedAt: attempt.SubmittedAt,
		Marks:       marksOf(attempt),
	}
}

// SummarizeAttempt shapes an attempt and its batch outcome for the caller.
func SummarizeAttempt(attempt domain.Attempt, evaluated, remaining int, errs []domain.ItemError) domain.AttemptSummary {
	if errs == nil {
		errs = []domain.ItemError{}
	}
	return domain.AttemptSummary{
		AttemptID:      attempt.ID,
		EvaluatedCount: evaluated,
		RemainingCount: remaining,
		Status:         attempt.Status,
		Marks:          marksOf(attempt),
		Errors:         errs,
	}
}

func marksOf(attempt domain.Attempt) domain.AttemptMarks {
	return domain.AttemptMarks{
		TotalMarks:    attempt.TotalMarks.InexactFloat64(),
		ObtainedMarks: attempt.ObtainedMarks.InexactFloat64(),
		Percentage:    Percentage(attempt.ObtainedMarks, attempt.TotalMarks).InexactFloat64(),
	}
}

// SummarizeCohort renders a ranked result set in its response shape.
func SummarizeCohort(set domain.RankedResultSet) domain.CohortResults {
	examDate := ""
	if !set.Exam.ExamDate.IsZero() {
		examDate = set.Exam.ExamDate.Format("2006-01-02")
	}

	sectionTotals := make(map[string]float64, len(set.SectionTotals))
	for title, total := range set.SectionTotals {
		sectionTotals[title] = total.InexactFloat64()
	}

	rows := make([]domain.ResultRow, 0, len(set.Results))
	for _, r := range set.Results {
		sections := make(map[string]domain.SectionMarkView, len(r.SectionWise))
		for title, mark := range r.SectionWise {
			sections[title] = domain.SectionMarkView{
				Marks:       mark.Marks.InexactFloat64(),
				AttemptID:   mark.AttemptID,
				SubmittedAt: mark.SubmittedAt,
			}
		}
		rows = append(rows, domain.ResultRow{
			Rank:             r.Rank,
			ParticipantID:    r.Participant.ID,
			Name:             r.Participant.Name,
			Email:            r.Participant.Email,
			Phone:            r.Participant.Phone,
			SectionWiseMarks: sections,
			TotalMarks:       r.TotalMarks.InexactFloat64(),
		})
	}

	return domain.CohortResults{
		Exam: domain.ExamInfo{
			ID:                set.Exam.ID,
			Title:             set.Exam.Title,
			ExamDate:          examDate,
			TotalParticipants: len(set.Results),
		},
		SectionTotalMarks: sectionTotals,
		Results:           rows,
		Statistics: domain.ScoreStatistics{
			AverageScore: set.Statistics.Average.InexactFloat64(),
			HighestScore: set.Statistics.Highest.InexactFloat64(),
			LowestScore:  set.Statistics.Lowest.InexactFloat64(),
		},
	}
}
