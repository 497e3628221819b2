package payment_test

import (
	"encoding/json"

	errors "github.com/frahmantamala/payment-management/internal"
	"github.com/frahmantamala/payment-management/internal/payment"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func stringPtr(v string) *string {
	return &v
}

func decimalPtr(raw string) *decimal.Decimal {
	d := decimal.RequireFromString(raw)
	return &d
}

func validPixDTO() payment.CreatePaymentDTO {
	return payment.CreatePaymentDTO{
		DebitCode:     int64Ptr(1001),
		PayerDocument: "529.982.247-25",
		Method:        payment.MethodPix,
		Amount:        decimalPtr("150.00"),
	}
}

func validCardDTO() payment.CreatePaymentDTO {
	dto := validPixDTO()
	dto.Method = payment.MethodCreditCard
	dto.CardNumber = stringPtr("4111111111111111")
	return dto
}

func expectCode(err error, code errors.ErrorCode) {
	ExpectWithOffset(1, err).To(HaveOccurred())
	appErr, ok := errors.IsAppError(err)
	ExpectWithOffset(1, ok).To(BeTrue())
	ExpectWithOffset(1, appErr.Type).To(Equal(errors.ErrorTypeValidation))
	ExpectWithOffset(1, appErr.Code).To(Equal(code))
}

var _ = Describe("CreatePaymentDTO", func() {
	Describe("Validate", func() {
		It("should accept a valid PIX request", func() {
			Expect(validPixDTO().Validate()).To(Succeed())
		})

		It("should accept a valid card request", func() {
			Expect(validCardDTO().Validate()).To(Succeed())
		})

		DescribeTable("debit code",
			func(code *int64) {
				dto := validPixDTO()
				dto.DebitCode = code
				expectCode(dto.Validate(), errors.ErrCodeInvalidDebitCode)
			},
			Entry("missing", nil),
			Entry("zero", int64Ptr(0)),
			Entry("negative", int64Ptr(-3)),
		)

		It("should reject a document without digits", func() {
			dto := validPixDTO()
			dto.PayerDocument = "..-/"
			expectCode(dto.Validate(), errors.ErrCodeInvalidDocument)
		})

		It("should not repeat the checksum check", func() {
			dto := validPixDTO()
			dto.PayerDocument = "12345678900"
			Expect(dto.Validate()).To(Succeed())
		})

		It("should reject a missing method", func() {
			dto := validPixDTO()
			dto.Method = ""
			expectCode(dto.Validate(), errors.ErrCodeInvalidPaymentMethod)
		})

		DescribeTable("card methods",
			func(method payment.Method, card *string, code errors.ErrorCode) {
				dto := validPixDTO()
				dto.Method = method
				dto.CardNumber = card
				expectCode(dto.Validate(), code)
			},
			Entry("credit card without number", payment.MethodCreditCard, nil, errors.ErrCodeInvalidCardNumber),
			Entry("credit card with blank number", payment.MethodCreditCard, stringPtr("  "), errors.ErrCodeInvalidCardNumber),
			Entry("debit card with short number", payment.MethodDebitCard, stringPtr("12345678901"), errors.ErrCodeInvalidCardNumber),
			Entry("debit card with long number", payment.MethodDebitCard, stringPtr("12345678901234567890"), errors.ErrCodeInvalidCardNumber),
			Entry("debit card with letters", payment.MethodDebitCard, stringPtr("4111x11111111111"), errors.ErrCodeInvalidCardNumber),
			Entry("credit card with surrounding spaces", payment.MethodCreditCard, stringPtr(" 4111111111111111 "), errors.ErrCodeInvalidCardNumber),
			Entry("PIX with card number", payment.MethodPix, stringPtr("4111111111111111"), errors.ErrCodeCardNumberNotAllowed),
			Entry("BOLETO with card number", payment.MethodBoleto, stringPtr("4111111111111111"), errors.ErrCodeCardNumberNotAllowed),
		)

		It("should let PIX carry a blank card number", func() {
			dto := validPixDTO()
			dto.CardNumber = stringPtr("")
			Expect(dto.Validate()).To(Succeed())
		})

		DescribeTable("amount",
			func(amount *decimal.Decimal, code errors.ErrorCode) {
				dto := validPixDTO()
				dto.Amount = amount
				if code == "" {
					Expect(dto.Validate()).To(Succeed())
					return
				}
				expectCode(dto.Validate(), code)
			},
			Entry("missing", nil, errors.ErrCodeInvalidAmount),
			Entry("zero", decimalPtr("0.00"), errors.ErrCodeInvalidAmount),
			Entry("below minimum", decimalPtr("0.009"), errors.ErrCodeInvalidAmount),
			Entry("three decimal places", decimalPtr("1.001"), errors.ErrCodeInvalidAmountScale),
			Entry("minimum", decimalPtr("0.01"), errors.ErrorCode("")),
			Entry("trailing zero", decimalPtr("1.500"), errors.ErrorCode("")),
		)

		It("should report the first violated rule only", func() {
			dto := payment.CreatePaymentDTO{
				Method:     payment.MethodPix,
				CardNumber: stringPtr("4111111111111111"),
				Amount:     decimalPtr("1.001"),
			}
			err := dto.Validate()
			expectCode(err, errors.ErrCodeInvalidDebitCode)
			Expect(err.Error()).To(Equal("debit code is invalid or missing"))
		})
	})

	Describe("CheckDocument", func() {
		It("should accept valid CPF and CNPJ values and blank ones", func() {
			for _, doc := range []string{"529.982.247-25", "11222333000181", ""} {
				dto := validPixDTO()
				dto.PayerDocument = doc
				Expect(dto.CheckDocument()).To(Succeed(), doc)
			}
		})

		It("should reject documents with bad check digits", func() {
			dto := validPixDTO()
			dto.PayerDocument = "123.456.789-00"
			expectCode(dto.CheckDocument(), errors.ErrCodeInvalidDocument)
		})
	})

	Describe("JSON decoding", func() {
		It("should parse methods case-insensitively", func() {
			var dto payment.CreatePaymentDTO
			err := json.Unmarshal([]byte(`{"debit_code":1,"payer_document":"12345678909","payment_method":"pix","amount":10.5}`), &dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(dto.Method).To(Equal(payment.MethodPix))
			Expect(dto.Amount.Equal(decimal.RequireFromString("10.5"))).To(BeTrue())
		})

		It("should reject unknown methods", func() {
			var dto payment.CreatePaymentDTO
			err := json.Unmarshal([]byte(`{"payment_method":"CHEQUE"}`), &dto)
			Expect(err).To(MatchError(ContainSubstring("invalid payment method")))
		})
	})
})

var _ = Describe("Amount", func() {
	It("should always render two fractional digits", func() {
		data, err := json.Marshal(struct {
			A payment.Amount `json:"a"`
		}{A: payment.Amount(decimal.RequireFromString("150"))})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(`{"a":150.00}`))
	})
})
