package service

import (
	"context"
	"sync"
	"time"

	"todo_webapp/internal/domain"
)

// StatsStore computes the admin overview
type StatsStore interface {
	GetStats(ctx context.Context, now time.Time) (*domain.Stats, error)
}

// AdminService provides admin statistics. Results are cached briefly since
// every admin page load asks for them.
type AdminService struct {
	store StatsStore
	ttl   time.Duration
	now   func() time.Time

	mu       sync.Mutex
	cached   *domain.Stats
	cachedAt time.Time
}

// NewAdminService creates a new admin service
func NewAdminService(store StatsStore) *AdminService {
	return &AdminService{store: store, ttl: 30 * time.Second, now: time.Now}
}

// GetStats returns platform statistics
func (s *AdminService) GetStats(ctx context.Context) (*domain.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.cached != nil && now.Sub(s.cachedAt) < s.ttl {
		return s.cached, nil
	}

	stats, err := s.store.GetStats(ctx, now)
	if err != nil {
		return nil, err
	}
	s.cached, s.cachedAt = stats, now
	return stats, nil
}

// Invalidate drops the cached stats
func (s *AdminService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}
