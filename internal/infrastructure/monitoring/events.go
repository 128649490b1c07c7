package monitoring

import (
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/internal/domain/shared"
)

// EventRecorder logs pantry domain events and counts them
type EventRecorder struct {
	metrics *MetricsCollector
	logger  *zap.Logger
}

// NewEventRecorder creates the recorder
func NewEventRecorder(metrics *MetricsCollector, logger *zap.Logger) *EventRecorder {
	return &EventRecorder{metrics: metrics, logger: logger.Named("events")}
}

// Register subscribes the recorder to every event on d
func (r *EventRecorder) Register(d shared.EventDispatcher) {
	d.Register(shared.AnyEvent, r.Handle)
}

// Handle implements shared.EventHandler
func (r *EventRecorder) Handle(event shared.DomainEvent) error {
	r.metrics.InventoryEvent(event.EventName())

	fields := []zap.Field{
		zap.String("event", event.EventName()),
		zap.Time("occurred_at", event.OccurredAt()),
	}
	switch e := event.(type) {
	case pantry.ItemAddedEvent:
		fields = append(fields, zap.String("item_id", e.ItemID), zap.String("name", e.Name))
	case pantry.ItemUpdatedEvent:
		fields = append(fields, zap.String("item_id", e.ItemID))
	case pantry.ItemRemovedEvent:
		fields = append(fields, zap.String("item_id", e.ItemID), zap.String("name", e.Name))
	case pantry.InventoryLoadedEvent:
		r.metrics.InventorySize(e.Count)
		fields = append(fields, zap.Int("count", e.Count))
	}
	r.logger.Debug("Domain event", fields...)
	return nil
}
