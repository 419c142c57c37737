package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore keeps points in process. Scroll returns points in id order; Search is a
// linear cosine scan.
type MemoryStore struct {
	mu     sync.RWMutex
	points map[uint64]Point
	dim    int
}

// NewMemoryStore returns an empty store. A dim of zero accepts the first vector's length.
func NewMemoryStore(dim int) *MemoryStore {
	return &MemoryStore{points: make(map[uint64]Point), dim: dim}
}

func (s *MemoryStore) Upsert(_ context.Context, points []Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		if s.dim == 0 {
			s.dim = len(p.Vector)
		}
		if len(p.Vector) != s.dim {
			return fmt.Errorf("failed to upsert point %d: %w: got %d, want %d", p.ID, ErrDimensionMismatch, len(p.Vector), s.dim)
		}
		s.points[p.ID] = p
	}
	return nil
}

func (s *MemoryStore) Scroll(_ context.Context, filter Filter, limit int) ([]Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Point, 0)
	for _, p := range s.points {
		if filter.Match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Search(_ context.Context, vector []float32, filter Filter, limit int) ([]ScoredPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dim != 0 && len(vector) != s.dim {
		return nil, fmt.Errorf("failed to search: %w: got %d, want %d", ErrDimensionMismatch, len(vector), s.dim)
	}

	out := make([]ScoredPoint, 0)
	for _, p := range s.points {
		if filter.Match(p) {
			out = append(out, ScoredPoint{Point: p, Score: cosine(vector, p.Vector)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// cosine returns 0 for zero vectors.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
