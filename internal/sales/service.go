package sales

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// Service answers sales order lookups, caching the open order listing.
type Service struct {
	repo   Repository
	cache  Cache
	logger *slog.Logger
	group  singleflight.Group
}

// NewService constructs the service. cache may be nil.
func NewService(repo Repository, cache Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// ListOpen returns up to OpenOrderLimit open orders. Concurrent cache misses
// share a single repository query.
func (s *Service) ListOpen(ctx context.Context) ([]OrderSummary, error) {
	if s.cache != nil {
		var cached []OrderSummary
		hit, err := s.cache.GetJSON(ctx, openOrdersKey, &cached)
		if err != nil {
			s.logger.WarnContext(ctx, "sales cache read", slog.Any("error", err))
		}
		if hit {
			return cached, nil
		}
	}

	resultCh := s.group.DoChan(openOrdersKey, func() (any, error) {
		return s.loadOpen(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultCh:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]OrderSummary), nil
	}
}

// RefreshOpen reloads the open order listing into the cache. When the reload
// fails the cached listing is dropped so readers fall through to the database.
func (s *Service) RefreshOpen(ctx context.Context) (int, error) {
	orders, err := s.loadOpen(ctx)
	if err != nil {
		if s.cache != nil {
			if delErr := s.cache.Delete(ctx, openOrdersKey); delErr != nil {
				s.logger.WarnContext(ctx, "sales cache evict", slog.Any("error", delErr))
			}
		}
		return 0, err
	}
	return len(orders), nil
}

func (s *Service) loadOpen(ctx context.Context) ([]OrderSummary, error) {
	orders, err := s.repo.ListOpen(ctx, OpenStatuses, OpenOrderLimit)
	if err != nil {
		return nil, fmt.Errorf("list open orders: %w", err)
	}
	if orders == nil {
		orders = []OrderSummary{}
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, openOrdersKey, orders); err != nil {
			s.logger.WarnContext(ctx, "sales cache write", slog.Any("error", err))
		}
	}
	return orders, nil
}

// Get returns a single order with its items, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*OrderDetail, error) {
	detail, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return detail, nil
}
