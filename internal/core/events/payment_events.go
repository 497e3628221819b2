package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentCreated       = "payment.created"
	EventTypePaymentStatusChanged = "payment.status_changed"
	EventTypePaymentDeactivated   = "payment.deactivated"
)

type PaymentCreatedEvent struct {
	BaseEvent
	PaymentID     int64  `json:"payment_id"`
	DebitCode     int64  `json:"debit_code"`
	PaymentMethod string `json:"payment_method"`
	Amount        string `json:"amount"`
}

func NewPaymentCreatedEvent(paymentID, debitCode int64, method, amount string) *PaymentCreatedEvent {
	return &PaymentCreatedEvent{
		BaseEvent: newBaseEvent(EventTypePaymentCreated, map[string]interface{}{
			"payment_id":     paymentID,
			"debit_code":     debitCode,
			"payment_method": method,
			"amount":         amount,
		}),
		PaymentID:     paymentID,
		DebitCode:     debitCode,
		PaymentMethod: method,
		Amount:        amount,
	}
}

type PaymentStatusChangedEvent struct {
	BaseEvent
	PaymentID  int64  `json:"payment_id"`
	DebitCode  int64  `json:"debit_code"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

func NewPaymentStatusChangedEvent(paymentID, debitCode int64, from, to string) *PaymentStatusChangedEvent {
	return &PaymentStatusChangedEvent{
		BaseEvent: newBaseEvent(EventTypePaymentStatusChanged, map[string]interface{}{
			"payment_id":  paymentID,
			"debit_code":  debitCode,
			"from_status": from,
			"to_status":   to,
		}),
		PaymentID:  paymentID,
		DebitCode:  debitCode,
		FromStatus: from,
		ToStatus:   to,
	}
}

type PaymentDeactivatedEvent struct {
	BaseEvent
	PaymentID int64 `json:"payment_id"`
	DebitCode int64 `json:"debit_code"`
}

func NewPaymentDeactivatedEvent(paymentID, debitCode int64) *PaymentDeactivatedEvent {
	return &PaymentDeactivatedEvent{
		BaseEvent: newBaseEvent(EventTypePaymentDeactivated, map[string]interface{}{
			"payment_id": paymentID,
			"debit_code": debitCode,
		}),
		PaymentID: paymentID,
		DebitCode: debitCode,
	}
}

func newBaseEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}
