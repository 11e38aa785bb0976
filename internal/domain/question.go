package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Question type tags as stored and exchanged on the wire.
const (
	TypeObjective  = "objective"
	TypeMCQ        = "mcq"
	TypeSubjective = "subjective"
)

// QuestionKind is either Objective or Subjective.
type QuestionKind interface {
	questionKind()
}

// Objective questions are auto-scored against their options.
type Objective struct {
	Options []Option
}

// Subjective questions are scored by a human evaluator.
type Subjective struct{}

func (Objective) questionKind()  {}
func (Subjective) questionKind() {}

// Option represents a possible answer for an objective question.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question models a scored question. Objective questions are expected to have
// exactly one correct option.
type Question struct {
	ID              string
	SectionID       string
	FullMarks       decimal.Decimal
	NegativeMarking bool
	NegativeMark    decimal.Decimal
	Kind            QuestionKind
}

// IsSubjective reports whether q needs manual evaluation.
func (q Question) IsSubjective() bool {
	_, ok := q.Kind.(Subjective)
	return ok
}

// Type returns the canonical type tag for q.
func (q Question) Type() string {
	switch q.Kind.(type) {
	case Objective:
		return TypeObjective
	case Subjective:
		return TypeSubjective
	default:
		panic(fmt.Sprintf("question %s: unknown kind %T", q.ID, q.Kind))
	}
}

// Options returns the answer options of an objective question, or nil.
func (q Question) Options() []Option {
	if obj, ok := q.Kind.(Objective); ok {
		return obj.Options
	}
	return nil
}

// ParseQuestionKind builds a QuestionKind from a stored type tag.
func ParseQuestionKind(tag string, options []Option) (QuestionKind, error) {
	switch tag {
	case TypeObjective, TypeMCQ:
		return Objective{Options: options}, nil
	case TypeSubjective:
		return Subjective{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestionType, tag)
	}
}

type questionJSON struct {
	ID              string          `json:"id"`
	SectionID       string          `json:"sectionId"`
	Type            string          `json:"type"`
	FullMarks       decimal.Decimal `json:"fullMarks"`
	NegativeMarking bool            `json:"negativeMarking"`
	NegativeMark    decimal.Decimal `json:"negativeMark"`
	Options         []Option        `json:"options,omitempty"`
}

// MarshalJSON flattens the kind into a type tag plus options.
func (q Question) MarshalJSON() ([]byte, error) {
	return json.Marshal(questionJSON{
		ID:              q.ID,
		SectionID:       q.SectionID,
		Type:            q.Type(),
		FullMarks:       q.FullMarks,
		NegativeMarking: q.NegativeMarking,
		NegativeMark:    q.NegativeMark,
		Options:         q.Options(),
	})
}

// UnmarshalJSON restores the kind from its type tag.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kind, err := ParseQuestionKind(raw.Type, raw.Options)
	if err != nil {
		return err
	}
	*q = Question{
		ID:              raw.ID,
		SectionID:       raw.SectionID,
		FullMarks:       raw.FullMarks,
		NegativeMarking: raw.NegativeMarking,
		NegativeMark:    raw.NegativeMark,
		Kind:            kind,
	}
	return nil
}
