package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"exam-scoring-service/internal/app"
	"exam-scoring-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type attemptRow struct {
	bun.BaseModel `bun:"table:attempts"`

	ID             string          `bun:"id,pk"`
	ExamID         string          `bun:"exam_id,notnull"`
	SectionID      string          `bun:"section_id,notnull"`
	ParticipantKey string          `bun:"participant_key,notnull"`
	ParticipantID  string          `bun:"participant_id"`
	Name           string          `bun:"name"`
	Email          string          `bun:"email"`
	Phone          string          `bun:"phone"`
	Sequence       int             `bun:"sequence,notnull"`
	Status         string          `bun:"status,notnull"`
	StartedAt      time.Time       `bun:"started_at,notnull"`
	SubmittedAt    *time.Time      `bun:"submitted_at"`
	TotalMarks     decimal.Decimal `bun:"total_marks,type:numeric(10,2),notnull"`
	ObtainedMarks  decimal.Decimal `bun:"obtained_marks,type:numeric(10,2),notnull"`
	CreatedAt      time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type answerRow struct {
	bun.BaseModel `bun:"table:submitted_answers"`

	ID               string              `bun:"id,pk"`
	AttemptID        string              `bun:"attempt_id,notnull"`
	QuestionID       string              `bun:"question_id,notnull"`
	SelectedOptionID *string             `bun:"selected_option_id"`
	SubjectiveAnswer *string             `bun:"subjective_answer"`
	MarksObtained    decimal.NullDecimal `bun:"marks_obtained,type:numeric(10,2)"`
	UpdatedAt        time.Time           `bun:"updated_at,notnull"`
	CreatedAt        time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// AttemptStore persists attempts and answers in Postgres. WithAttemptLock
// holds SELECT ... FOR UPDATE on the attempt row for the whole transaction.
type AttemptStore struct {
	db *bun.DB
}

func NewAttemptStore(db *bun.DB) *AttemptStore {
	return &AttemptStore{db: db}
}

func (s *AttemptStore) CreateAttempt(ctx context.Context, attempt domain.Attempt) (domain.Attempt, error) {
	row := toAttemptRow(attempt)
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var seq int
		err := tx.NewSelect().
			Model((*attemptRow)(nil)).
			ColumnExpr("COALESCE(MAX(sequence), 0)").
			Where("exam_id = ?", row.ExamID).
			Where("section_id = ?", row.SectionID).
			Where("participant_key = ?", row.ParticipantKey).
			Scan(ctx, &seq)
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		row.Sequence = seq + 1
		_, err = tx.NewInsert().Model(row).Exec(ctx)
		return err
	})
	if err != nil {
		return domain.Attempt{}, err
	}
	return row.toDomain(), nil
}

func (s *AttemptStore) GetAttempt(ctx context.Context, attemptID string) (domain.Attempt, error) {
	row := new(attemptRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", attemptID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("get attempt: %w", err)
	}
	return row.toDomain(), nil
}

func (s *AttemptStore) ListEvaluated(ctx context.Context, examID string) ([]domain.Attempt, error) {
	var rows []attemptRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("exam_id = ?", examID).
		Where("status = ?", string(domain.StatusEvaluated)).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list evaluated attempts: %w", err)
	}
	out := make([]domain.Attempt, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *AttemptStore) WithAttemptLock(ctx context.Context, attemptID string, fn func(ctx context.Context, tx app.AttemptTx) error) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := new(attemptRow)
		err := tx.NewSelect().Model(row).Where("id = ?", attemptID).For("UPDATE").Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrAttemptNotFound
		}
		if err != nil {
			return fmt.Errorf("lock attempt: %w", err)
		}
		return fn(ctx, &attemptTx{tx: tx, attempt: row.toDomain()})
	})
}

type attemptTx struct {
	tx      bun.Tx
	attempt domain.Attempt
}

func (t *attemptTx) Load(ctx context.Context) (domain.Attempt, []domain.SubmittedAnswer, error) {
	var rows []answerRow
	err := t.tx.NewSelect().
		Model(&rows).
		Where("attempt_id = ?", t.attempt.ID).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return domain.Attempt{}, nil, fmt.Errorf("load answers: %w", err)
	}
	answers := make([]domain.SubmittedAnswer, 0, len(rows))
	for i := range rows {
		answers = append(answers, rows[i].toDomain())
	}
	return t.attempt, answers, nil
}

func (t *attemptTx) SaveAnswers(ctx context.Context, answers []domain.SubmittedAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	rows := make([]answerRow, 0, len(answers))
	for _, a := range answers {
		rows = append(rows, toAnswerRow(a))
	}
	_, err := t.tx.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("selected_option_id = EXCLUDED.selected_option_id").
		Set("subjective_answer = EXCLUDED.subjective_answer").
		Set("marks_obtained = EXCLUDED.marks_obtained").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (t *attemptTx) SaveAttempt(ctx context.Context, attempt domain.Attempt) error {
	row := toAttemptRow(attempt)
	_, err := t.tx.NewUpdate().
		Model(row).
		Column("status", "submitted_at", "obtained_marks").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	t.attempt = attempt
	return nil
}

func toAttemptRow(a domain.Attempt) *attemptRow {
	key := "id:" + a.Participant.ID
	if a.Participant.ID == "" {
		key = "email:" + a.Participant.Email
	}
	return &attemptRow{
		ID:             a.ID,
		ExamID:         a.ExamID,
		SectionID:      a.SectionID,
		ParticipantKey: key,
		ParticipantID:  a.Participant.ID,
		Name:           a.Participant.Name,
		Email:          a.Participant.Email,
		Phone:          a.Participant.Phone,
		Sequence:       a.Sequence,
		Status:         string(a.Status),
		StartedAt:      a.StartedAt,
		SubmittedAt:    a.SubmittedAt,
		TotalMarks:     a.TotalMarks,
		ObtainedMarks:  a.ObtainedMarks,
	}
}

func (r *attemptRow) toDomain() domain.Attempt {
	return domain.Attempt{
		ID:        r.ID,
		ExamID:    r.ExamID,
		SectionID: r.SectionID,
		Participant: domain.Participant{
			ID:    r.ParticipantID,
			Name:  r.Name,
			Email: r.Email,
			Phone: r.Phone,
		},
		Sequence:      r.Sequence,
		Status:        domain.AttemptStatus(r.Status),
		StartedAt:     r.StartedAt,
		SubmittedAt:   r.SubmittedAt,
		TotalMarks:    r.TotalMarks,
		ObtainedMarks: r.ObtainedMarks,
	}
}

func toAnswerRow(a domain.SubmittedAnswer) answerRow {
	return answerRow{
		ID:               a.ID,
		AttemptID:        a.AttemptID,
		QuestionID:       a.QuestionID,
		SelectedOptionID: a.SelectedOptionID,
		SubjectiveAnswer: a.SubjectiveAnswer,
		MarksObtained:    a.MarksObtained,
		UpdatedAt:        a.UpdatedAt,
	}
}

func (r *answerRow) toDomain() domain.SubmittedAnswer {
	return domain.SubmittedAnswer{
		ID:               r.ID,
		AttemptID:        r.AttemptID,
		QuestionID:       r.QuestionID,
		SelectedOptionID: r.SelectedOptionID,
		SubjectiveAnswer: r.SubjectiveAnswer,
		MarksObtained:    r.MarksObtained,
		UpdatedAt:        r.UpdatedAt,
	}
}
