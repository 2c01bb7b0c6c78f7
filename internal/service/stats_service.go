package service

import (
	"context"

	"github.com/Neruaka/jana-distribution/internal/model"
	"github.com/Neruaka/jana-distribution/internal/repository"
)

// StatsService assembles the admin dashboard from the aggregate queries.
type StatsService struct {
	Stats    *repository.StatsRepo
	Products *repository.ProductRepo
}

func NewStatsService(stats *repository.StatsRepo, products *repository.ProductRepo) *StatsService {
	return &StatsService{Stats: stats, Products: products}
}

// Dashboard gathers every dashboard block in one call.  days bounds the
// revenue series, topN the product ranking; both are clamped.
func (s *StatsService) Dashboard(ctx context.Context, days, topN int) (*model.DashboardStats, error) {
	if days < 1 || days > 365 {
		days = 30
	}
	if topN < 1 || topN > 50 {
		topN = 5
	}
	out := &model.DashboardStats{}

	byStatus, total, err := s.Stats.OrdersByStatus(ctx)
	if err != nil {
		return nil, err
	}
	out.OrdersByStatus = byStatus
	out.TotalOrders = total

	if out.RevenueTotal, err = s.Stats.RevenueTotal(ctx); err != nil {
		return nil, err
	}
	if out.RevenueByDay, err = s.Stats.RevenueByDay(ctx, days); err != nil {
		return nil, err
	}
	if out.TopProducts, err = s.Stats.TopProducts(ctx, topN); err != nil {
		return nil, err
	}
	if out.ClientCount, out.ProductCount, err = s.Stats.Counts(ctx); err != nil {
		return nil, err
	}
	if out.LowStock, err = s.Products.LowStock(ctx, 10); err != nil {
		return nil, err
	}
	return out, nil
}
