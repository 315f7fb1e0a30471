package service

import (
	"context"
	"time"

	"food-order-service/internal/models"
	"food-order-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AnalyticsRepository is the read-only aggregation surface.
type AnalyticsRepository interface {
	TotalSales(ctx context.Context) (decimal.Decimal, error)
	SalesSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
	GetOrderStats(ctx context.Context) (*models.OrderStats, error)
	GetTopProducts(ctx context.Context, limit int) ([]models.ProductSales, error)
	GetDailySales(ctx context.Context, since time.Time) ([]models.DailySales, error)
}

// Dashboard windows.
const (
	weeklyWindowDays   = 7
	monthlyWindowDays  = 30
	topProductsDefault = 5
)

// AnalyticsService serves staff sales rollups. It never mutates order
// data; the order-events worker drops the cached dashboard when orders
// change.
type AnalyticsService struct {
	repo     AnalyticsRepository
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(repo AnalyticsRepository, cache Cache, cacheTTL time.Duration) *AnalyticsService {
	return &AnalyticsService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// TotalSales sums completed-order totals over all time. Staff only.
func (s *AnalyticsService) TotalSales(ctx context.Context, actor models.Identity) (decimal.Decimal, error) {
	if !actor.IsStaff {
		return decimal.Zero, Forbiddenf("staff access required")
	}
	total, err := s.repo.TotalSales(ctx)
	if err != nil {
		return decimal.Zero, Unexpectedf(err, "failed to compute total sales")
	}
	return total, nil
}

// SalesByPeriod sums completed-order totals created within the last
// days days. Staff only.
func (s *AnalyticsService) SalesByPeriod(ctx context.Context, actor models.Identity, days int) (decimal.Decimal, error) {
	if !actor.IsStaff {
		return decimal.Zero, Forbiddenf("staff access required")
	}
	if days <= 0 {
		return decimal.Zero, Validationf("days must be positive")
	}
	total, err := s.repo.SalesSince(ctx, time.Now().AddDate(0, 0, -days))
	if err != nil {
		return decimal.Zero, Unexpectedf(err, "failed to compute period sales")
	}
	return total, nil
}

// OrderStats counts orders per status. Staff only.
func (s *AnalyticsService) OrderStats(ctx context.Context, actor models.Identity) (*models.OrderStats, error) {
	if !actor.IsStaff {
		return nil, Forbiddenf("staff access required")
	}
	stats, err := s.repo.GetOrderStats(ctx)
	if err != nil {
		return nil, Unexpectedf(err, "failed to compute order stats")
	}
	return stats, nil
}

// TopProducts lists the best sellers by quantity sold. Staff only.
// A non-positive limit falls back to the default of 5.
func (s *AnalyticsService) TopProducts(ctx context.Context, actor models.Identity, limit int) ([]models.ProductSales, error) {
	if !actor.IsStaff {
		return nil, Forbiddenf("staff access required")
	}
	if limit <= 0 {
		limit = topProductsDefault
	}
	sales, err := s.repo.GetTopProducts(ctx, limit)
	if err != nil {
		return nil, Unexpectedf(err, "failed to compute top products")
	}
	return sales, nil
}

// DailySales returns per-date completed sales within the window. Staff only.
func (s *AnalyticsService) DailySales(ctx context.Context, actor models.Identity, days int) ([]models.DailySales, error) {
	if !actor.IsStaff {
		return nil, Forbiddenf("staff access required")
	}
	if days <= 0 {
		return nil, Validationf("days must be positive")
	}
	sales, err := s.repo.GetDailySales(ctx, time.Now().AddDate(0, 0, -days))
	if err != nil {
		return nil, Unexpectedf(err, "failed to compute daily sales")
	}
	return sales, nil
}

// Dashboard assembles the full analytics payload, cached with a short
// TTL. Staff only.
func (s *AnalyticsService) Dashboard(ctx context.Context, actor models.Identity) (*models.Dashboard, error) {
	if !actor.IsStaff {
		return nil, Forbiddenf("staff access required")
	}

	ctx, span := util.StartSpan(ctx, "AnalyticsService.Dashboard")
	defer span.End()

	var cached models.Dashboard
	hit, err := s.cache.GetJSON(ctx, dashboardCacheKey, &cached)
	if err != nil {
		s.logger.Warn("Dashboard cache read failed", zap.Error(err))
	}
	if hit {
		util.CacheHitsTotal.WithLabelValues("analytics").Inc()
		return &cached, nil
	}
	util.CacheMissesTotal.WithLabelValues("analytics").Inc()

	dashboard := &models.Dashboard{}

	if dashboard.TotalSales, err = s.repo.TotalSales(ctx); err != nil {
		return nil, Unexpectedf(err, "failed to compute total sales")
	}

	now := time.Now()
	if dashboard.WeeklySales, err = s.repo.SalesSince(ctx, now.AddDate(0, 0, -weeklyWindowDays)); err != nil {
		return nil, Unexpectedf(err, "failed to compute weekly sales")
	}
	if dashboard.MonthlySales, err = s.repo.SalesSince(ctx, now.AddDate(0, 0, -monthlyWindowDays)); err != nil {
		return nil, Unexpectedf(err, "failed to compute monthly sales")
	}

	stats, err := s.repo.GetOrderStats(ctx)
	if err != nil {
		return nil, Unexpectedf(err, "failed to compute order stats")
	}
	dashboard.OrderStats = *stats

	if dashboard.TopProducts, err = s.repo.GetTopProducts(ctx, topProductsDefault); err != nil {
		return nil, Unexpectedf(err, "failed to compute top products")
	}
	if dashboard.DailySales, err = s.repo.GetDailySales(ctx, now.AddDate(0, 0, -monthlyWindowDays)); err != nil {
		return nil, Unexpectedf(err, "failed to compute daily sales")
	}

	if err := s.cache.SetJSON(ctx, dashboardCacheKey, dashboard, s.cacheTTL); err != nil {
		s.logger.Warn("Dashboard cache write failed", zap.Error(err))
	}

	return dashboard, nil
}

// InvalidateDashboard drops the cached dashboard. Called by the
// order-events worker.
func (s *AnalyticsService) InvalidateDashboard(ctx context.Context) error {
	return s.cache.Delete(ctx, dashboardCacheKey)
}
