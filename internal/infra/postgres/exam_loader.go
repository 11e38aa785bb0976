package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"exam-scoring-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"
)

// ExamLoader loads exams, sections and questions from Postgres.
type ExamLoader struct {
	pool *pgxpool.Pool
}

func NewExamLoader(pool *pgxpool.Pool) *ExamLoader {
	return &ExamLoader{pool: pool}
}

func (l *ExamLoader) LoadExam(ctx context.Context, examID string) (domain.Exam, error) {
	exam := domain.Exam{ID: examID}
	var examDate *time.Time
	var mode string
	err := l.pool.QueryRow(ctx, `SELECT title, exam_date, mode FROM exams WHERE id=$1`, examID).
		Scan(&exam.Title, &examDate, &mode)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Exam{}, domain.ErrExamNotFound
	}
	if err != nil {
		return domain.Exam{}, fmt.Errorf("load exam: %w", err)
	}
	if examDate != nil {
		exam.ExamDate = *examDate
	}
	exam.Mode = domain.ParticipationMode(mode)

	rows, err := l.pool.Query(ctx, `SELECT id, title FROM sections WHERE exam_id=$1 ORDER BY position, id`, examID)
	if err != nil {
		return domain.Exam{}, fmt.Errorf("load sections: %w", err)
	}
	sectionIdx := make(map[string]int)
	for rows.Next() {
		section := domain.Section{ExamID: examID}
		if err := rows.Scan(&section.ID, &section.Title); err != nil {
			rows.Close()
			return domain.Exam{}, fmt.Errorf("scan section: %w", err)
		}
		sectionIdx[section.ID] = len(exam.Sections)
		exam.Sections = append(exam.Sections, section)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.Exam{}, fmt.Errorf("load sections: %w", err)
	}

	rows, err = l.pool.Query(ctx, `
		SELECT q.id, q.section_id, q.type, q.full_marks::text, q.is_negative_marking, q.negative_mark::text, q.options
		FROM questions q
		JOIN sections s ON s.id = q.section_id
		WHERE s.exam_id=$1
		ORDER BY q.position, q.id`, examID)
	if err != nil {
		return domain.Exam{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			q                  domain.Question
			qType              string
			fullMarks, negMark string
			rawOptions         []byte
		)
		if err := rows.Scan(&q.ID, &q.SectionID, &qType, &fullMarks, &q.NegativeMarking, &negMark, &rawOptions); err != nil {
			return domain.Exam{}, fmt.Errorf("scan question: %w", err)
		}
		if q.FullMarks, err = decimal.NewFromString(fullMarks); err != nil {
			return domain.Exam{}, fmt.Errorf("question %s full marks: %w", q.ID, err)
		}
		if q.NegativeMark, err = decimal.NewFromString(negMark); err != nil {
			return domain.Exam{}, fmt.Errorf("question %s negative mark: %w", q.ID, err)
		}
		var options []domain.Option
		if len(rawOptions) > 0 {
			if err := json.Unmarshal(rawOptions, &options); err != nil {
				return domain.Exam{}, fmt.Errorf("unmarshal options of %s: %w", q.ID, err)
			}
		}
		if q.Kind, err = domain.ParseQuestionKind(qType, options); err != nil {
			return domain.Exam{}, fmt.Errorf("question %s: %w", q.ID, err)
		}
		idx, ok := sectionIdx[q.SectionID]
		if !ok {
			continue
		}
		exam.Sections[idx].Questions = append(exam.Sections[idx].Questions, q)
	}
	return exam, rows.Err()
}
