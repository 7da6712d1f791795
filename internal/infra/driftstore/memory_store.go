package driftstore

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/aq-predictor/internal/domain/predictor"
)

type labelKey struct {
	field string
	label string
}

// MemoryStore counts unseen labels in process memory. Once maxEntries pairs
// are tracked, new pairs are dropped and existing ones keep counting.
type MemoryStore struct {
	mu         sync.Mutex
	counts     map[labelKey]int64
	maxEntries int
}

// NewMemoryStore constructs an empty store. maxEntries <= 0 uses DefaultMaxEntries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{counts: make(map[labelKey]int64), maxEntries: normalizeMaxEntries(maxEntries)}
}

// RecordUnseen implements predictor.DriftRecorder.
func (s *MemoryStore) RecordUnseen(_ context.Context, field, label string) error {
	if field == "" {
		return nil
	}
	key := labelKey{field: truncateLabel(field), label: truncateLabel(label)}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.counts[key]; !ok && len(s.counts) >= s.maxEntries {
		return nil
	}
	s.counts[key]++
	return nil
}

// TopUnseen returns the most frequent unseen labels.
func (s *MemoryStore) TopUnseen(_ context.Context, limit int) ([]predictor.UnseenLabel, error) {
	s.mu.Lock()
	items := make([]predictor.UnseenLabel, 0, len(s.counts))
	for key, count := range s.counts {
		items = append(items, predictor.UnseenLabel{Field: key.field, Label: key.label, Count: count})
	}
	s.mu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		if items[i].Field != items[j].Field {
			return items[i].Field < items[j].Field
		}
		return items[i].Label < items[j].Label
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

var _ predictor.DriftRecorder = (*MemoryStore)(nil)
