package app

import (
	"sync"

	"exam-scoring-service/internal/domain"
)

// LeaderboardHub fans out recomputed cohort results to live subscribers, keyed by exam.
type LeaderboardHub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.CohortResults]struct{}
}

func NewLeaderboardHub() *LeaderboardHub {
	return &LeaderboardHub{subscribers: make(map[string]map[chan domain.CohortResults]struct{})}
}

// Subscribe registers a channel for examID, seeding it with initial when non-nil.
func (h *LeaderboardHub) Subscribe(examID string, initial *domain.CohortResults) (<-chan domain.CohortResults, func()) {
	ch := make(chan domain.CohortResults, 8)

	h.mu.Lock()
	subs, ok := h.subscribers[examID]
	if !ok {
		subs = make(map[chan domain.CohortResults]struct{})
		h.subscribers[examID] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	if initial != nil {
		ch <- *initial
	}

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs, ok := h.subscribers[examID]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.subscribers, examID)
		}
	}
	return ch, cancel
}

// HasSubscribers reports whether anyone listens to examID.
func (h *LeaderboardHub) HasSubscribers(examID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[examID]) > 0
}

// Publish delivers results to every subscriber of examID.
func (h *LeaderboardHub) Publish(examID string, results domain.CohortResults) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[examID] {
		select {
		case ch <- results:
		default:
			// slow subscriber: replace its oldest pending update
			select {
			case <-ch:
			default:
			}
			ch <- results
		}
	}
}
