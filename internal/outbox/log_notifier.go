package outbox

import (
	"context"

	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"go.uber.org/zap"
)

// LogNotifier writes events to the structured log. Used when no redis
// endpoint is configured, keeping the dispatch path identical in every
// environment.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, ev domain.OutboxEvent) error {
	n.logger.Info("notification",
		zap.String("event_type", ev.EventType),
		zap.String("aggregate_id", ev.AggregateID.String()),
		zap.ByteString("payload", ev.Payload),
	)
	return nil
}
