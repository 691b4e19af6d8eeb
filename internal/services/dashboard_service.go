package services

import (
	"context"
	"time"

	"example.com/cartonbox/internal/cache"
	"example.com/cartonbox/internal/models"
	"example.com/cartonbox/internal/repositories"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const activityFeedSize = 5

// DashboardService builds the back-office landing page aggregates
type DashboardService struct {
	poRepo       *repositories.PurchaseOrderRepository
	deliveryRepo *repositories.DeliveryRepository
	cache        *cache.RedisCache
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB, readOnlyDB *gorm.DB, projectionCache *cache.RedisCache) *DashboardService {
	return &DashboardService{
		poRepo:       repositories.NewPurchaseOrderRepository(db, readOnlyDB),
		deliveryRepo: repositories.NewDeliveryRepository(db, readOnlyDB),
		cache:        projectionCache,
	}
}

// Aggregates returns the dashboard summary: active order count, items with
// shippable stock, deliveries in the current calendar month, and a merged
// recent-activity feed. The component queries run concurrently.
func (s *DashboardService) Aggregates(ctx context.Context) (*DashboardAggregates, error) {
	var cached DashboardAggregates
	if err := s.cache.Get(ctx, cache.PageKey(cache.PageDashboard), &cached); err == nil {
		return &cached, nil
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var (
		openOrders      []models.PurchaseOrder
		recentOrders    []models.PurchaseOrder
		recentDeliveries []models.Delivery
		monthCount      int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		openOrders, err = s.poRepo.ListByStatus(gctx, models.OrderStatusOpen)
		return err
	})
	g.Go(func() error {
		var err error
		recentOrders, err = s.poRepo.ListRecent(gctx, activityFeedSize)
		return err
	})
	g.Go(func() error {
		var err error
		recentDeliveries, err = s.deliveryRepo.ListRecent(gctx, activityFeedSize)
		return err
	})
	g.Go(func() error {
		var err error
		monthCount, err = s.deliveryRepo.CountSince(gctx, monthStart)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	aggregates := &DashboardAggregates{
		ActiveOrders:        int64(len(openOrders)),
		ReadyToShipItems:    countReadyToShip(openOrders),
		DeliveriesThisMonth: monthCount,
		RecentActivity:      buildRecentActivity(recentOrders, recentDeliveries, activityFeedSize),
	}

	if err := s.cache.Set(ctx, cache.PageKey(cache.PageDashboard), aggregates, listCacheTTL); err != nil {
		log.Warn().Err(err).Msg("Failed to cache dashboard aggregates")
	}
	return aggregates, nil
}
