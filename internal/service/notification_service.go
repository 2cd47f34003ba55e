package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/supportdesk/support-portal/internal/events"
	"github.com/supportdesk/support-portal/internal/notify"
)

// MailQueue accepts messages for asynchronous delivery.
type MailQueue interface {
	Enqueue(msg notify.Message) bool
}

// NotificationService turns domain events into user mail.
type NotificationService struct {
	dispatcher events.Dispatcher
	queue      MailQueue
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, queue MailQueue, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		queue:      queue,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventProfileUpdated, n.handleProfileUpdated)
	n.dispatcher.Subscribe(events.EventTicketCreated, n.logEvent)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.logEvent)
	n.dispatcher.Subscribe(events.EventArticlePublished, n.logEvent)
}

func (n *NotificationService) handleUserRegistered(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.enqueue(notify.WelcomeMessage(payload.User))
	return nil
}

func (n *NotificationService) handleProfileUpdated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.enqueue(notify.ProfileUpdatedMessage(payload.User))
	return nil
}

func (n *NotificationService) logEvent(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.Int64("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) enqueue(msg notify.Message) {
	if strings.TrimSpace(msg.To) == "" || n.queue == nil {
		return
	}
	n.queue.Enqueue(msg)
}
