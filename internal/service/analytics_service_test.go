package service

import (
	"context"
	"testing"
	"time"

	"food-order-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAnalyticsRepo records the windows it is queried with.
type fakeAnalyticsRepo struct {
	total      decimal.Decimal
	since      decimal.Decimal
	stats      models.OrderStats
	top        []models.ProductSales
	daily      []models.DailySales
	lastSince  time.Time
	lastLimit  int
	queryCount int
}

func (f *fakeAnalyticsRepo) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	f.queryCount++
	return f.total, nil
}

func (f *fakeAnalyticsRepo) SalesSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	f.queryCount++
	f.lastSince = since
	return f.since, nil
}

func (f *fakeAnalyticsRepo) GetOrderStats(ctx context.Context) (*models.OrderStats, error) {
	f.queryCount++
	stats := f.stats
	return &stats, nil
}

func (f *fakeAnalyticsRepo) GetTopProducts(ctx context.Context, limit int) ([]models.ProductSales, error) {
	f.queryCount++
	f.lastLimit = limit
	if limit < len(f.top) {
		return f.top[:limit], nil
	}
	return f.top, nil
}

func (f *fakeAnalyticsRepo) GetDailySales(ctx context.Context, since time.Time) ([]models.DailySales, error) {
	f.queryCount++
	f.lastSince = since
	return f.daily, nil
}

func TestAnalyticsStaffOnly(t *testing.T) {
	svc := NewAnalyticsService(&fakeAnalyticsRepo{}, newFakeCache(), time.Minute)
	user := models.Identity{UserID: 1}
	ctx := context.Background()

	_, err := svc.TotalSales(ctx, user)
	assert.Equal(t, KindForbidden, KindOf(err))
	_, err = svc.SalesByPeriod(ctx, user, 7)
	assert.Equal(t, KindForbidden, KindOf(err))
	_, err = svc.OrderStats(ctx, user)
	assert.Equal(t, KindForbidden, KindOf(err))
	_, err = svc.TopProducts(ctx, user, 5)
	assert.Equal(t, KindForbidden, KindOf(err))
	_, err = svc.DailySales(ctx, user, 7)
	assert.Equal(t, KindForbidden, KindOf(err))
	_, err = svc.Dashboard(ctx, user)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestSalesByPeriodWindow(t *testing.T) {
	repo := &fakeAnalyticsRepo{since: decimal.RequireFromString("120.00")}
	svc := NewAnalyticsService(repo, newFakeCache(), time.Minute)
	staff := models.Identity{UserID: 1, IsStaff: true}

	total, err := svc.SalesByPeriod(context.Background(), staff, 7)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("120.00")))

	// The window starts seven days back from now.
	want := time.Now().AddDate(0, 0, -7)
	assert.WithinDuration(t, want, repo.lastSince, time.Minute)

	_, err = svc.SalesByPeriod(context.Background(), staff, 0)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestTopProductsDefaultLimit(t *testing.T) {
	repo := &fakeAnalyticsRepo{
		top: []models.ProductSales{
			{ProductID: 1, Name: "A", TotalQuantity: 9},
			{ProductID: 2, Name: "B", TotalQuantity: 8},
			{ProductID: 3, Name: "C", TotalQuantity: 7},
			{ProductID: 4, Name: "D", TotalQuantity: 6},
			{ProductID: 5, Name: "E", TotalQuantity: 5},
			{ProductID: 6, Name: "F", TotalQuantity: 4},
		},
	}
	svc := NewAnalyticsService(repo, newFakeCache(), time.Minute)
	staff := models.Identity{UserID: 1, IsStaff: true}

	sales, err := svc.TopProducts(context.Background(), staff, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, repo.lastLimit)
	assert.Len(t, sales, 5)
	assert.Equal(t, "A", sales[0].Name)
}

func TestDashboardCaching(t *testing.T) {
	repo := &fakeAnalyticsRepo{
		total: decimal.RequireFromString("500.00"),
		since: decimal.RequireFromString("100.00"),
		stats: models.OrderStats{Total: 4, Pending: 1, Completed: 3},
	}
	cache := newFakeCache()
	svc := NewAnalyticsService(repo, cache, time.Minute)
	staff := models.Identity{UserID: 1, IsStaff: true}
	ctx := context.Background()

	first, err := svc.Dashboard(ctx, staff)
	require.NoError(t, err)
	assert.True(t, first.TotalSales.Equal(decimal.RequireFromString("500.00")))
	assert.Equal(t, 3, first.OrderStats.Completed)

	queriesAfterFirst := repo.queryCount

	// Second read is served from cache.
	second, err := svc.Dashboard(ctx, staff)
	require.NoError(t, err)
	assert.Equal(t, queriesAfterFirst, repo.queryCount)
	assert.True(t, second.TotalSales.Equal(first.TotalSales))

	// Invalidation forces a recompute.
	require.NoError(t, svc.InvalidateDashboard(ctx))
	_, err = svc.Dashboard(ctx, staff)
	require.NoError(t, err)
	assert.Greater(t, repo.queryCount, queriesAfterFirst)
}
