package worker

import (
	"context"
	"log"

	"food-order-service/internal/broker"
	"food-order-service/internal/models"
	"food-order-service/internal/service"

	"go.uber.org/zap"
)

// AnalyticsWorker consumes order events and drops the cached analytics
// dashboard so staff reads reflect new and updated orders.
type AnalyticsWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	analytics    *service.AnalyticsService
	logger       *zap.Logger
}

// NewAnalyticsWorker creates a new analytics worker
func NewAnalyticsWorker(
	consumer *broker.Consumer,
	analytics *service.AnalyticsService,
	logger *zap.Logger,
) *AnalyticsWorker {
	w := &AnalyticsWorker{
		consumer:  consumer,
		analytics: analytics,
		logger:    logger,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderPlaced(w.handleOrderPlaced)
	eventHandler.OnOrderStatusChanged(w.handleOrderStatusChanged)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *AnalyticsWorker) Start(ctx context.Context) error {
	log.Println("Starting analytics worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AnalyticsWorker) Stop() error {
	log.Println("Stopping analytics worker...")
	return w.consumer.Close()
}

func (w *AnalyticsWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	w.logger.Info("Order placed, invalidating dashboard",
		zap.Int64("order_id", event.OrderID),
		zap.String("event_id", event.EventID))
	return w.analytics.InvalidateDashboard(ctx)
}

func (w *AnalyticsWorker) handleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	w.logger.Info("Order status changed, invalidating dashboard",
		zap.Int64("order_id", event.OrderID),
		zap.String("old_status", event.OldStatus),
		zap.String("new_status", event.NewStatus))
	return w.analytics.InvalidateDashboard(ctx)
}
