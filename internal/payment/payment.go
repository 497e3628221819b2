package payment

import (
	"fmt"
	"time"

	errors "github.com/frahmantamala/payment-management/internal"
	"github.com/frahmantamala/payment-management/internal/core/common/taxid"
	paymentDatamodel "github.com/frahmantamala/payment-management/internal/core/datamodel/payment"
	"github.com/shopspring/decimal"
)

const amountScale = 2

// Payment is an immutable snapshot of a payment record. State changes go
// through WithStatus and Deactivate, which return a new snapshot.
type Payment struct {
	ID            int64
	DebitCode     int64
	PayerDocument string
	Method        Method
	CardNumber    *string
	Amount        decimal.Decimal
	Status        Status
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewPayment builds a pending, active record from a request that already
// passed Validate.
func NewPayment(dto CreatePaymentDTO) Payment {
	now := time.Now()
	p := Payment{
		DebitCode:     *dto.DebitCode,
		PayerDocument: taxid.Digits(dto.PayerDocument),
		Method:        dto.Method,
		Amount:        dto.Amount.Round(amountScale),
		Status:        StatusPending,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if dto.Method.IsCard() && dto.CardNumber != nil {
		card := *dto.CardNumber
		p.CardNumber = &card
	}
	return p
}

func (p Payment) WithStatus(requested *Status) (Payment, error) {
	if requested == nil {
		return p, errors.NewValidationFieldError("status", "new status is required", errors.ErrCodeStatusRequired)
	}
	if !p.Active {
		return p, errors.NewValidationError(
			fmt.Sprintf("inactive payment cannot change status: id=%d", p.ID), errors.ErrCodePaymentInactive)
	}
	next, err := Transition(p.Status, requested)
	if err != nil {
		return p, err
	}
	p.Status = next
	p.UpdatedAt = time.Now()
	return p, nil
}

// Deactivate soft-deletes a pending record.
func (p Payment) Deactivate() (Payment, error) {
	if !p.Active {
		return p, errors.NewValidationError(
			fmt.Sprintf("payment is already inactive: id=%d", p.ID), errors.ErrCodePaymentInactive)
	}
	if p.Status != StatusPending {
		return p, errors.NewValidationError(
			fmt.Sprintf("payment cannot be deleted because it was already processed: id=%d status=%s", p.ID, p.Status),
			errors.ErrCodePaymentAlreadyProcessed)
	}
	p.Active = false
	p.UpdatedAt = time.Now()
	return p, nil
}

func (p Payment) ToResponse() PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		DebitCode:     p.DebitCode,
		PayerDocument: p.PayerDocument,
		Method:        p.Method,
		Amount:        Amount(p.Amount),
		Status:        p.Status,
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func ToDataModel(p Payment) *paymentDatamodel.Payment {
	return &paymentDatamodel.Payment{
		ID:            p.ID,
		DebitCode:     p.DebitCode,
		PayerDocument: p.PayerDocument,
		PaymentMethod: string(p.Method),
		CardNumber:    p.CardNumber,
		Amount:        p.Amount.Round(amountScale),
		Status:        string(p.Status),
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func FromDataModel(p *paymentDatamodel.Payment) Payment {
	return Payment{
		ID:            p.ID,
		DebitCode:     p.DebitCode,
		PayerDocument: p.PayerDocument,
		Method:        Method(p.PaymentMethod),
		CardNumber:    p.CardNumber,
		Amount:        p.Amount,
		Status:        Status(p.Status),
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
