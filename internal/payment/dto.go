package payment

import (
	"regexp"
	"time"

	errors "github.com/frahmantamala/payment-management/internal"
	"github.com/frahmantamala/payment-management/internal/core/common/taxid"
	"github.com/frahmantamala/payment-management/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{12,19}$`)
	minimumAmount     = decimal.New(1, -amountScale)
)

type CreatePaymentDTO struct {
	DebitCode     *int64           `json:"debit_code"`
	PayerDocument string           `json:"payer_document"`
	Method        Method           `json:"payment_method"`
	CardNumber    *string          `json:"card_number,omitempty"`
	Amount        *decimal.Decimal `json:"amount"`
}

// Validate applies the creation rules in order and stops at the first
// violation.
func (dto CreatePaymentDTO) Validate() error {
	v := validation.NewValidator().FailFast()

	v.Field("debit_code", dto.DebitCode).
		Required(errors.ErrCodeInvalidDebitCode).WithMessage("debit code is invalid or missing").
		MinInt(1, errors.ErrCodeInvalidDebitCode).WithMessage("debit code is invalid or missing")

	v.Field("payer_document", taxid.Digits(dto.PayerDocument)).
		Required(errors.ErrCodeInvalidDocument).WithMessage("payer document is required")

	v.Field("payment_method", string(dto.Method)).
		Required(errors.ErrCodeInvalidPaymentMethod).WithMessage("payment method is required").
		OneOf(methodNames(), errors.ErrCodeInvalidPaymentMethod)

	switch {
	case dto.Method.IsCard():
		v.Field("card_number", dto.CardNumber).
			Required(errors.ErrCodeInvalidCardNumber).WithMessage("card number is required for card payments").
			Custom(cardNumberDigits).WithMessage("card number must contain between 12 and 19 digits")
	case dto.Method == MethodPix || dto.Method == MethodBoleto:
		v.Field("card_number", dto.CardNumber).
			Blank(errors.ErrCodeCardNumberNotAllowed).WithMessage("card number must not be informed for PIX or BOLETO payments")
	}

	v.Field("amount", dto.Amount).
		Required(errors.ErrCodeInvalidAmount).WithMessage("amount is required").
		MinDecimal(minimumAmount, errors.ErrCodeInvalidAmount).WithMessage("amount must be greater than or equal to 0.01").
		MaxScale(amountScale, errors.ErrCodeInvalidAmountScale).WithMessage("amount must have at most two decimal places")

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// CheckDocument rejects a non-blank payer document whose CPF/CNPJ check
// digits do not match. Blank values are left to Validate.
func (dto CreatePaymentDTO) CheckDocument() error {
	if !taxid.IsValidOrBlank(dto.PayerDocument) {
		return errors.NewValidationFieldError("payer_document", "payer document is not a valid CPF or CNPJ", errors.ErrCodeInvalidDocument)
	}
	return nil
}

// cardNumberDigits matches the raw value: surrounding spaces are rejected, not trimmed.
func cardNumberDigits(value interface{}) *errors.AppError {
	card, ok := value.(*string)
	if !ok || card == nil {
		return nil
	}
	if !cardNumberPattern.MatchString(*card) {
		return errors.NewValidationFieldError("card_number", "card number has an invalid format", errors.ErrCodeInvalidCardNumber)
	}
	return nil
}

type UpdatePaymentStatusDTO struct {
	Status string `json:"status"`
}

type PaymentFilter struct {
	DebitCode     *int64
	PayerDocument string
	Status        *Status
}

// DefaultPageSize applies when a listing is requested without a size.
const DefaultPageSize = 20

type PageRequest struct {
	Page     int
	Size     int
	SortBy   string
	SortDesc bool
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

func (p PageRequest) withDefaults() PageRequest {
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Page < 0 {
		p.Page = 0
	}
	return p
}

// Amount renders a decimal with exactly two fractional digits as a JSON number.
type Amount decimal.Decimal

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).StringFixed(amountScale)), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*a = Amount(d)
	return nil
}

func (a Amount) Decimal() decimal.Decimal {
	return decimal.Decimal(a)
}

type PaymentResponse struct {
	ID            int64     `json:"id"`
	DebitCode     int64     `json:"debit_code"`
	PayerDocument string    `json:"payer_document"`
	Method        Method    `json:"payment_method"`
	Amount        Amount    `json:"amount"`
	Status        Status    `json:"status"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type PageResponse struct {
	Content       []PaymentResponse `json:"content"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalElements int64             `json:"total_elements"`
	TotalPages    int               `json:"total_pages"`
}

func NewPageResponse(content []PaymentResponse, page PageRequest, total int64) PageResponse {
	totalPages := 0
	if page.Size > 0 {
		totalPages = int((total + int64(page.Size) - 1) / int64(page.Size))
	}
	return PageResponse{
		Content:       content,
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}

type DocumentValidationResponse struct {
	Document string     `json:"document"`
	Kind     taxid.Kind `json:"kind"`
	Valid    bool       `json:"valid"`
}
