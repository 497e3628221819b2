package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is the persisted payment record. DebitCode and PayerDocument never
// change after insert; only Status, Active and UpdatedAt are rewritten.
type Payment struct {
	ID            int64           `gorm:"primaryKey"`
	DebitCode     int64           `gorm:"column:debit_code;not null;uniqueIndex:uq_payments_debit_code"`
	PayerDocument string          `gorm:"column:payer_document;size:14;not null;index:idx_payments_payer_document"`
	PaymentMethod string          `gorm:"column:payment_method;size:20;not null"`
	CardNumber    *string         `gorm:"column:card_number;size:19"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(17,2);not null"`
	Status        string          `gorm:"column:status;size:20;not null;index:idx_payments_status"`
	Active        bool            `gorm:"column:active;not null;index:idx_payments_active"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
