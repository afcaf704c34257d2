package events

import (
	"context"

	"go.uber.org/zap"
)

// LogSink returns a Handler that writes every event to logger.
// Alerts are logged at warn level, everything else at info.
func LogSink(logger *zap.Logger) Handler {
	logger = logger.Named("events")
	return func(_ context.Context, event Event) error {
		fields := []zap.Field{
			zap.String("event", event.EventName()),
			zap.String("event_id", event.EventID().String()),
			zap.Time("occurred_at", event.OccurredAt()),
			zap.Any("payload", event),
		}
		if alert, ok := event.(*PerformanceAlert); ok {
			logger.Warn("Performance alert",
				append(fields, zap.String("alert_type", alert.AlertType), zap.Int64("supplier_id", alert.SupplierID))...)
			return nil
		}
		logger.Info("Event published", fields...)
		return nil
	}
}
