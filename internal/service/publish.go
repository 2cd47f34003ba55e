package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/supportdesk/support-portal/internal/events"
)

// publish emits an event without failing the caller; handler errors are logged.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("actor_id", event.ActorID),
			zap.Error(err))
	}
}
