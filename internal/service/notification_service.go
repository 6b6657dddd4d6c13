package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/manday-tracker/internal/config"
	"github.com/spec-kit/manday-tracker/internal/events"
)

// NotificationService handles emitting notifications for domain events.
// These are the service-side counterpart of the transient notices the
// original tracker flashed after each action.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketEvent)
	n.dispatcher.Subscribe(events.EventTicketEstimated, n.handleTicketEvent)
	n.dispatcher.Subscribe(events.EventTicketApproved, n.handleTicketEvent)
	n.dispatcher.Subscribe(events.EventTicketRejected, n.handleTicketEvent)
	n.dispatcher.Subscribe(events.EventTicketCompleted, n.handleTicketEvent)
	n.dispatcher.Subscribe(events.EventTicketConfirmed, n.handleTicketEvent)
	n.dispatcher.Subscribe(events.EventCustomerDebited, n.handleCustomerDebited)
	n.dispatcher.Subscribe(events.EventCustomersImported, n.handleCustomersImported)
}

func (n *NotificationService) handleTicketEvent(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleCustomerDebited(ctx context.Context, event events.Event) error {
	n.logger.Info("CustomerDebited", zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleCustomersImported(ctx context.Context, event events.Event) error {
	n.logger.Info("CustomersImported", zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
