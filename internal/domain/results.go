package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SectionMark is a participant's result for one section.
type SectionMark struct {
	Marks       decimal.Decimal
	AttemptID   string
	SubmittedAt *time.Time
}

// RankedResult is one participant's row in the leaderboard.
type RankedResult struct {
	Rank        int
	GroupKey    string
	Participant Participant
	SectionWise map[string]SectionMark
	TotalMarks  decimal.Decimal
}

// Statistics summarises the totals of a cohort.
type Statistics struct {
	Average decimal.Decimal
	Highest decimal.Decimal
	Lowest  decimal.Decimal
}

// RankedResultSet is the derived leaderboard of an exam. It is never persisted.
type RankedResultSet struct {
	Exam          Exam
	SectionTotals map[string]decimal.Decimal
	Results       []RankedResult
	Statistics    Statistics
}

// AttemptMarks is the marks block of an attempt summary.
type AttemptMarks struct {
	TotalMarks    float64 `json:"total_marks"`
	ObtainedMarks float64 `json:"obtained_marks"`
	Percentage    float64 `json:"percentage"`
}

// AttemptView is the response shape of a started attempt.
type AttemptView struct {
	AttemptID   string        `json:"attempt_id"`
	ExamID      string        `json:"exam_id"`
	SectionID   string        `json:"section_id"`
	Participant Participant   `json:"participant"`
	Sequence    int           `json:"sequence"`
	Status      AttemptStatus `json:"status"`
	StartedAt   time.Time     `json:"started_at"`
	SubmittedAt *time.Time    `json:"submitted_at,omitempty"`
	Marks       AttemptMarks  `json:"marks"`
}

// AttemptSummary is returned by finalize and evaluate operations.
type AttemptSummary struct {
	AttemptID      string        `json:"attempt_id"`
	EvaluatedCount int           `json:"evaluated_count"`
	RemainingCount int           `json:"remaining_count"`
	Status         AttemptStatus `json:"status"`
	Marks          AttemptMarks  `json:"marks"`
	Errors         []ItemError   `json:"errors"`
}

// ExamInfo is the exam header of cohort results.
type ExamInfo struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	ExamDate          string `json:"exam_date"`
	TotalParticipants int    `json:"total_participants"`
}

// SectionMarkView is the wire form of SectionMark.
type SectionMarkView struct {
	Marks       float64    `json:"marks"`
	AttemptID   string     `json:"attempt_id"`
	SubmittedAt *time.Time `json:"submitted_at"`
}

// ResultRow is one leaderboard row on the wire.
type ResultRow struct {
	Rank             int                        `json:"rank"`
	ParticipantID    string                     `json:"participant_id"`
	Name             string                     `json:"name"`
	Email            string                     `json:"email"`
	Phone            string                     `json:"phone"`
	SectionWiseMarks map[string]SectionMarkView `json:"section_wise_marks"`
	TotalMarks       float64                    `json:"total_marks"`
}

// ScoreStatistics is the wire form of Statistics.
type ScoreStatistics struct {
	AverageScore float64 `json:"average_score"`
	HighestScore float64 `json:"highest_score"`
	LowestScore  float64 `json:"lowest_score"`
}

// CohortResults is the ranked leaderboard response of an exam.
type CohortResults struct {
	Exam              ExamInfo           `json:"exam"`
	SectionTotalMarks map[string]float64 `json:"section_total_marks"`
	Results           []ResultRow        `json:"results"`
	Statistics        ScoreStatistics    `json:"statistics"`
}
