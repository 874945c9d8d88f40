// Package favorites implements the set of favorite menu items.
package favorites

import (
	"context"
	"slices"
	"sync"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Repository persists favorite item ids.
type Repository interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, ids []string) error
}

// Set is a write-through set of item ids. Ids are kept in the order they
// were added so listings are stable.
type Set struct {
	repo Repository

	mu  sync.Mutex
	ids []string
}

// New creates a Set hydrated from repo. A snapshot that cannot be read is
// logged and the set starts empty.
func New(ctx context.Context, repo Repository) *Set {
	ids, err := repo.Load(ctx)
	if err != nil {
		zctx.From(ctx).Warn("Failed to load favorites, starting empty", zap.Error(err))
		ids = nil
	}
	return &Set{repo: repo, ids: dedupe(ids)}
}

// Toggle adds id when absent and removes it when present. It reports
// whether id is a favorite afterwards.
func (s *Set) Toggle(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := false
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
	} else {
		s.ids = append(s.ids, id)
		added = true
	}
	s.saveLocked(ctx)
	return added
}

// IsFavorite reports whether id is in the set.
func (s *Set) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.ids, id)
}

// Clear empties the set.
func (s *Set) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = []string{}
	s.saveLocked(ctx)
}

// IDs returns the favorite ids in the order they were added.
func (s *Set) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ids)
}

// Len returns the number of favorites.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

func (s *Set) saveLocked(ctx context.Context) {
	snapshot := slices.Clone(s.ids)
	if snapshot == nil {
		snapshot = []string{}
	}
	if err := s.repo.Save(ctx, snapshot); err != nil {
		zctx.From(ctx).Warn("Failed to persist favorites", zap.Error(err))
	}
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
