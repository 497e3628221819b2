package payment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/payment-management/internal/core/events"
	"github.com/frahmantamala/payment-management/pkg/logger"
)

// AuditEventHandler writes an audit trail entry for every payment lifecycle event.
type AuditEventHandler struct {
	logger *slog.Logger
}

func NewAuditEventHandler(logger *slog.Logger) *AuditEventHandler {
	return &AuditEventHandler{logger: logger}
}

func (h *AuditEventHandler) HandlePaymentCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.PaymentCreatedEvent)
	if !ok {
		return fmt.Errorf("expected PaymentCreatedEvent, got %T", event)
	}
	logger.FromContext(ctx, h.logger).Info("audit: payment created",
		"event_id", e.EventID(),
		"payment_id", e.PaymentID,
		"debit_code", e.DebitCode,
		"payment_method", e.PaymentMethod,
		"amount", e.Amount)
	return nil
}

func (h *AuditEventHandler) HandlePaymentStatusChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.PaymentStatusChangedEvent)
	if !ok {
		return fmt.Errorf("expected PaymentStatusChangedEvent, got %T", event)
	}
	logger.FromContext(ctx, h.logger).Info("audit: payment status changed",
		"event_id", e.EventID(),
		"payment_id", e.PaymentID,
		"debit_code", e.DebitCode,
		"from_status", e.FromStatus,
		"to_status", e.ToStatus)
	return nil
}

func (h *AuditEventHandler) HandlePaymentDeactivated(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.PaymentDeactivatedEvent)
	if !ok {
		return fmt.Errorf("expected PaymentDeactivatedEvent, got %T", event)
	}
	logger.FromContext(ctx, h.logger).Info("audit: payment deactivated",
		"event_id", e.EventID(),
		"payment_id", e.PaymentID,
		"debit_code", e.DebitCode)
	return nil
}

func (h *AuditEventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypePaymentCreated, h.HandlePaymentCreated)
	eventBus.Subscribe(events.EventTypePaymentStatusChanged, h.HandlePaymentStatusChanged)
	eventBus.Subscribe(events.EventTypePaymentDeactivated, h.HandlePaymentDeactivated)

	h.logger.Info("payment audit handlers registered",
		"handlers", []string{
			events.EventTypePaymentCreated,
			events.EventTypePaymentStatusChanged,
			events.EventTypePaymentDeactivated,
		})
}
