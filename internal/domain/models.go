package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ParticipationMode decides how attempts are grouped into participants.
type ParticipationMode string

const (
	// ParticipationRegistered groups attempts by participant ID.
	ParticipationRegistered ParticipationMode = "registered"
	// ParticipationPublic groups attempts by the guest's email address.
	ParticipationPublic ParticipationMode = "public"
)

// Exam is the metadata and content needed to score and rank attempts.
type Exam struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	ExamDate time.Time         `json:"examDate"`
	Mode     ParticipationMode `json:"mode"`
	Sections []Section         `json:"sections"`
}

// Section returns the section with the given ID.
func (e Exam) Section(id string) (Section, bool) {
	for _, s := range e.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Section is a titled group of questions inside an exam.
type Section struct {
	ID        string     `json:"id"`
	ExamID    string     `json:"examId"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// TotalMarks is the sum of the section's question full marks.
func (s Section) TotalMarks() decimal.Decimal {
	total := decimal.Zero
	for _, q := range s.Questions {
		total = total.Add(q.FullMarks)
	}
	return total
}

// QuestionIndex maps question IDs to questions.
func (s Section) QuestionIndex() map[string]Question {
	idx := make(map[string]Question, len(s.Questions))
	for _, q := range s.Questions {
		idx[q.ID] = q
	}
	return idx
}

// SectionIndex is a section with its question lookup and total marks
// computed once, so scoring calls do not rebuild them per request.
type SectionIndex struct {
	Section    Section
	Questions  map[string]Question
	TotalMarks decimal.Decimal
}

func NewSectionIndex(s Section) SectionIndex {
	return SectionIndex{Section: s, Questions: s.QuestionIndex(), TotalMarks: s.TotalMarks()}
}

// IndexSection looks up a section and indexes it.
func (e Exam) IndexSection(sectionID string) (SectionIndex, error) {
	s, ok := e.Section(sectionID)
	if !ok {
		return SectionIndex{}, fmt.Errorf("%w: %s in exam %s", ErrSectionNotFound, sectionID, e.ID)
	}
	return NewSectionIndex(s), nil
}

// Participant identifies who took an attempt. Registered participants carry
// ID; guests are identified by the name/email/phone triple.
type Participant struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Owns reports whether p may act on an attempt taken by owner.
func (p Participant) Owns(owner Participant) bool {
	if owner.ID != "" {
		return p.ID == owner.ID
	}
	return owner.Email != "" && p.Email == owner.Email
}

// Attempt is one participant's pass through one exam section.
type Attempt struct {
	ID            string          `json:"id"`
	ExamID        string          `json:"examId"`
	SectionID     string          `json:"sectionId"`
	Participant   Participant     `json:"participant"`
	Sequence      int             `json:"sequence"`
	Status        AttemptStatus   `json:"status"`
	StartedAt     time.Time       `json:"startedAt"`
	SubmittedAt   *time.Time      `json:"submittedAt,omitempty"`
	TotalMarks    decimal.Decimal `json:"totalMarks"`
	ObtainedMarks decimal.Decimal `json:"obtainedMarks"`
}

// SubmittedAnswer is a participant's answer to one question in an attempt.
// MarksObtained is invalid (null) until the answer has been evaluated.
type SubmittedAnswer struct {
	ID               string              `json:"id"`
	AttemptID        string              `json:"attemptId"`
	QuestionID       string              `json:"questionId"`
	SelectedOptionID *string             `json:"selectedOptionId,omitempty"`
	SubjectiveAnswer *string             `json:"subjectiveAnswer,omitempty"`
	MarksObtained    decimal.NullDecimal `json:"marksObtained"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// Evaluated reports whether marks have been assigned.
func (a SubmittedAnswer) Evaluated() bool {
	return a.MarksObtained.Valid
}

// AnswerInput is one item of a batch answer submission.
type AnswerInput struct {
	QuestionID       string
	OptionID         *string
	SubjectiveAnswer *string
}

// EvaluationInput assigns marks to a subjective answer.
type EvaluationInput struct {
	AnswerID      string
	MarksObtained decimal.Decimal
}

// ItemError describes why one item of a batch was rejected.
type ItemError struct {
	Index    int    `json:"index"`
	AnswerID string `json:"answer_id,omitempty"`
	Message  string `json:"message"`
}
