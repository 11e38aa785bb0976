package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"exam-scoring-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ExamLoader fetches exam content from a backing store.
type ExamLoader interface {
	LoadExam(ctx context.Context, examID string) (domain.Exam, error)
}

// ExamRepository keeps loaded exams in process together with their
// section indexes, so scoring a request never walks the question list.
// Concurrent misses for one exam share a single load.
type ExamRepository struct {
	loader ExamLoader
	ttl    time.Duration
	clock  func() time.Time
	loads  singleflight.Group

	mu      sync.RWMutex
	entries map[string]*indexedExam
}

// indexedExam is immutable once published into entries.
type indexedExam struct {
	exam      domain.Exam
	sections  map[string]domain.SectionIndex
	expiresAt time.Time
}

func NewExamRepository(loader ExamLoader, ttl time.Duration) *ExamRepository {
	return &ExamRepository{
		loader:  loader,
		ttl:     ttl,
		clock:   time.Now,
		entries: make(map[string]*indexedExam),
	}
}

func (r *ExamRepository) GetExam(ctx context.Context, examID string) (domain.Exam, error) {
	entry, err := r.lookup(ctx, examID)
	if err != nil {
		return domain.Exam{}, err
	}
	return entry.exam, nil
}

// GetSection returns the prebuilt index for one section of an exam.
func (r *ExamRepository) GetSection(ctx context.Context, examID, sectionID string) (domain.SectionIndex, error) {
	entry, err := r.lookup(ctx, examID)
	if err != nil {
		return domain.SectionIndex{}, err
	}
	section, ok := entry.sections[sectionID]
	if !ok {
		return domain.SectionIndex{}, fmt.Errorf("%w: %s in exam %s", domain.ErrSectionNotFound, sectionID, examID)
	}
	return section, nil
}

func (r *ExamRepository) lookup(ctx context.Context, examID string) (*indexedExam, error) {
	if entry := r.fresh(examID); entry != nil {
		return entry, nil
	}
	v, err, _ := r.loads.Do(examID, func() (interface{}, error) {
		if entry := r.fresh(examID); entry != nil {
			return entry, nil
		}
		exam, err := r.loader.LoadExam(ctx, examID)
		if err != nil {
			return nil, err
		}
		entry := buildIndex(exam, r.clock().Add(r.expiry()))
		r.mu.Lock()
		r.entries[examID] = entry
		r.mu.Unlock()
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*indexedExam), nil
}

func (r *ExamRepository) fresh(examID string) *indexedExam {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[examID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil
	}
	return entry
}

func buildIndex(exam domain.Exam, expiresAt time.Time) *indexedExam {
	sections := make(map[string]domain.SectionIndex, len(exam.Sections))
	for _, s := range exam.Sections {
		sections[s.ID] = domain.NewSectionIndex(s)
	}
	return &indexedExam{exam: exam, sections: sections, expiresAt: expiresAt}
}

// expiry spreads expirations by up to a tenth of the ttl.
func (r *ExamRepository) expiry() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	return r.ttl + time.Duration(rand.Int63n(int64(r.ttl)/10+1))
}

// StaticExamLoader serves exams from a fixed map, for tests and demos.
type StaticExamLoader struct {
	exams map[string]domain.Exam
}

func NewStaticExamLoader(exams map[string]domain.Exam) *StaticExamLoader {
	return &StaticExamLoader{exams: exams}
}

func (l *StaticExamLoader) LoadExam(_ context.Context, examID string) (domain.Exam, error) {
	exam, ok := l.exams[examID]
	if !ok {
		return domain.Exam{}, fmt.Errorf("%w: %s", domain.ErrExamNotFound, examID)
	}
	return exam, nil
}
