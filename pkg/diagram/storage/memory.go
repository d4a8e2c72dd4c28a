package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"mercator-hq/flowmaker/pkg/diagram"

	"github.com/google/uuid"
)

// MemoryStorage keeps diagrams in process memory. Contents are lost on
// exit.
type MemoryStorage struct {
	mu         sync.RWMutex
	diagrams   map[string]*diagram.Diagram
	byActivity map[string]string
	closed     bool
	opts       options
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage(opts ...Option) *MemoryStorage {
	return &MemoryStorage{
		diagrams:   make(map[string]*diagram.Diagram),
		byActivity: make(map[string]string),
		opts:       newOptions(opts),
	}
}

// Backend implements diagram.Storage.
func (s *MemoryStorage) Backend() string { return BackendMemory }

// Save implements diagram.Storage.
func (s *MemoryStorage) Save(ctx context.Context, d *diagram.Diagram) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return diagram.NewStorageError(BackendMemory, "save", diagram.ErrClosed)
	}

	now := s.opts.timestamp()
	var existing *diagram.Diagram
	if d.ActivityID != "" {
		if id, ok := s.byActivity[d.ActivityID]; ok {
			existing = s.diagrams[id]
		}
	}
	if existing == nil && d.ID != "" {
		existing = s.diagrams[d.ID]
	}

	if existing != nil {
		d.ID = existing.ID
		d.CreatedAt = existing.CreatedAt
		if existing.ActivityID != "" && existing.ActivityID != d.ActivityID {
			delete(s.byActivity, existing.ActivityID)
		}
	} else {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	stored := *d
	s.diagrams[d.ID] = &stored
	if d.ActivityID != "" {
		s.byActivity[d.ActivityID] = d.ID
	}
	return nil
}

// Get implements diagram.Storage.
func (s *MemoryStorage) Get(ctx context.Context, id string) (*diagram.Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, diagram.NewStorageError(BackendMemory, "get", diagram.ErrClosed)
	}
	d, ok := s.diagrams[id]
	if !ok {
		return nil, diagram.ErrNotFound
	}
	out := *d
	return &out, nil
}

// GetByActivity implements diagram.Storage.
func (s *MemoryStorage) GetByActivity(ctx context.Context, activityID string) (*diagram.Diagram, error) {
	s.mu.RLock()
	id, ok := s.byActivity[activityID]
	s.mu.RUnlock()
	if !ok || activityID == "" {
		return nil, diagram.ErrNotFound
	}
	return s.Get(ctx, id)
}

// List implements diagram.Storage.
func (s *MemoryStorage) List(ctx context.Context, q *diagram.Query) ([]*diagram.Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, diagram.NewStorageError(BackendMemory, "list", diagram.ErrClosed)
	}
	if q == nil {
		q = &diagram.Query{}
	}

	results := s.matching(q)

	start := q.Offset
	if start > len(results) {
		return []*diagram.Diagram{}, nil
	}
	end := len(results)
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}

	out := make([]*diagram.Diagram, 0, end-start)
	for _, d := range results[start:end] {
		c := *d
		out = append(out, &c)
	}
	return out, nil
}

// Count implements diagram.Storage.
func (s *MemoryStorage) Count(ctx context.Context, q *diagram.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, diagram.NewStorageError(BackendMemory, "count", diagram.ErrClosed)
	}
	if q == nil {
		q = &diagram.Query{}
	}
	return int64(len(s.matching(q))), nil
}

// Delete implements diagram.Storage.
func (s *MemoryStorage) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return diagram.NewStorageError(BackendMemory, "delete", diagram.ErrClosed)
	}
	d, ok := s.diagrams[id]
	if !ok {
		return diagram.ErrNotFound
	}
	s.remove(d)
	return nil
}

// DeleteOlderThan implements diagram.Storage.
func (s *MemoryStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, diagram.NewStorageError(BackendMemory, "delete_older_than", diagram.ErrClosed)
	}

	var n int64
	for _, d := range s.diagrams {
		if d.UpdatedAt.Before(cutoff) {
			s.remove(d)
			n++
		}
	}
	return n, nil
}

// DeleteOldest implements diagram.Storage.
func (s *MemoryStorage) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, diagram.NewStorageError(BackendMemory, "delete_oldest", diagram.ErrClosed)
	}
	if keep < 0 {
		keep = 0
	}

	ordered := s.matching(&diagram.Query{SortOrder: diagram.SortNewest})
	if int64(len(ordered)) <= keep {
		return 0, nil
	}
	for _, d := range ordered[keep:] {
		s.remove(d)
	}
	return int64(len(ordered)) - keep, nil
}

// Ping implements diagram.Storage.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return diagram.ErrClosed
	}
	return nil
}

// Close implements diagram.Storage.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// matching returns the stored diagrams accepted by q in q's order. Callers
// hold the lock.
func (s *MemoryStorage) matching(q *diagram.Query) []*diagram.Diagram {
	var results []*diagram.Diagram
	for _, d := range s.diagrams {
		if matchesQuery(d, q) {
			results = append(results, d)
		}
	}

	oldestFirst := q.SortOrder == diagram.SortOldest
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			if oldestFirst {
				return a.UpdatedAt.Before(b.UpdatedAt)
			}
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		if oldestFirst {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})
	return results
}

func (s *MemoryStorage) remove(d *diagram.Diagram) {
	delete(s.diagrams, d.ID)
	if d.ActivityID != "" && s.byActivity[d.ActivityID] == d.ID {
		delete(s.byActivity, d.ActivityID)
	}
}

func matchesQuery(d *diagram.Diagram, q *diagram.Query) bool {
	if q.ActivityID != "" && d.ActivityID != q.ActivityID {
		return false
	}
	if q.Mode != "" && d.Mode != q.Mode {
		return false
	}
	if !q.UpdatedAfter.IsZero() && !d.UpdatedAt.After(q.UpdatedAfter) {
		return false
	}
	if !q.UpdatedBefore.IsZero() && !d.UpdatedAt.Before(q.UpdatedBefore) {
		return false
	}
	return true
}
