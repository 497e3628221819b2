package payment_test

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"

	errors "github.com/frahmantamala/payment-management/internal"
	"github.com/frahmantamala/payment-management/internal/core/events"
	"github.com/frahmantamala/payment-management/internal/payment"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("Payment Service", func() {
	var (
		ctx       context.Context
		mockRepo  *MockRepository
		publisher *RecordingPublisher
		service   *payment.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockRepo = NewMockRepository()
		publisher = &RecordingPublisher{}
		logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
		service = payment.NewService(mockRepo, publisher, logger)
	})

	create := func(dto payment.CreatePaymentDTO) *payment.PaymentResponse {
		created, err := service.CreatePayment(ctx, dto)
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
		return created
	}

	Describe("CreatePayment", func() {
		It("should persist a pending, active record with a normalized document", func() {
			dto := validPixDTO()
			dto.PayerDocument = "123.456.789-09"

			created := create(dto)
			Expect(created.ID).To(BeNumerically(">", 0))
			Expect(created.PayerDocument).To(Equal("12345678909"))
			Expect(created.Status).To(Equal(payment.StatusPending))
			Expect(created.Active).To(BeTrue())

			fetched, err := service.GetPaymentByID(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(fetched.PayerDocument).To(Equal("12345678909"))
			Expect(publisher.Types()).To(Equal([]string{events.EventTypePaymentCreated}))
		})

		It("should store card numbers for card methods only", func() {
			created := create(validCardDTO())
			stored, err := mockRepo.GetByID(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*stored.CardNumber).To(Equal("4111111111111111"))
		})

		It("should reject a card number padded with spaces", func() {
			dto := validCardDTO()
			dto.CardNumber = stringPtr(" 4111111111111111 ")
			_, err := service.CreatePayment(ctx, dto)
			Expect(errors.HasType(err, errors.ErrorTypeValidation)).To(BeTrue())
			Expect(publisher.Types()).To(BeEmpty())
		})

		It("should reject PIX with a card number", func() {
			dto := validPixDTO()
			dto.CardNumber = stringPtr("4111111111111111")
			_, err := service.CreatePayment(ctx, dto)
			Expect(errors.HasType(err, errors.ErrorTypeValidation)).To(BeTrue())
			Expect(publisher.Types()).To(BeEmpty())
		})

		It("should reject a credit card payment with a blank card number", func() {
			dto := validCardDTO()
			dto.CardNumber = stringPtr("")
			_, err := service.CreatePayment(ctx, dto)
			Expect(errors.HasType(err, errors.ErrorTypeValidation)).To(BeTrue())
		})

		DescribeTable("amount boundaries",
			func(raw string, valid bool) {
				dto := validPixDTO()
				dto.Amount = decimalPtr(raw)
				_, err := service.CreatePayment(ctx, dto)
				if valid {
					Expect(err).NotTo(HaveOccurred())
				} else {
					Expect(errors.HasType(err, errors.ErrorTypeValidation)).To(BeTrue())
				}
			},
			Entry("1.001 is rejected", "1.001", false),
			Entry("0.00 is rejected", "0.00", false),
			Entry("0.01 is accepted", "0.01", true),
		)

		It("should store amounts with exactly two decimal places", func() {
			dto := validPixDTO()
			dto.Amount = decimalPtr("99.9")
			created := create(dto)
			Expect(created.Amount.Decimal().Equal(decimal.RequireFromString("99.90"))).To(BeTrue())
		})

		It("should return a conflict for a debit code already in use", func() {
			create(validPixDTO())

			dto := validCardDTO()
			_, err := service.CreatePayment(ctx, dto)
			Expect(errors.HasType(err, errors.ErrorTypeConflict)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("1001"))
		})

		It("should map a unique violation from persistence to a conflict", func() {
			create(validPixDTO())
			mockRepo.skipExistsCheck = true

			_, err := service.CreatePayment(ctx, validPixDTO())
			Expect(errors.HasType(err, errors.ErrorTypeConflict)).To(BeTrue())
		})

		It("should wrap unexpected persistence failures as internal errors", func() {
			mockRepo.SetShouldFail(true, stderrors.New("connection reset"))
			_, err := service.CreatePayment(ctx, validPixDTO())
			Expect(errors.HasType(err, errors.ErrorTypeInternal)).To(BeTrue())
		})
	})

	Describe("UpdatePaymentStatus", func() {
		var created *payment.PaymentResponse

		BeforeEach(func() {
			created = create(validPixDTO())
		})

		It("should move PENDING to PROCESSED_SUCCESS once and then refuse any change", func() {
			updated, err := service.UpdatePaymentStatus(ctx, created.ID, statusPtr(payment.StatusProcessedSuccess))
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(payment.StatusProcessedSuccess))

			for _, s := range payment.Statuses {
				_, err = service.UpdatePaymentStatus(ctx, created.ID, statusPtr(s))
				Expect(errors.HasType(err, errors.ErrorTypeValidation)).To(BeTrue(), string(s))
			}
			Expect(publisher.Types()).To(Equal([]string{
				events.EventTypePaymentCreated,
				events.EventTypePaymentStatusChanged,
			}))
		})

		It("should allow PROCESSED_FAILURE back to PENDING but not to PROCESSED_SUCCESS", func() {
			_, err := service.UpdatePaymentStatus(ctx, created.ID, statusPtr(payment.StatusProcessedFailure))
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UpdatePaymentStatus(ctx, created.ID, statusPtr(payment.StatusProcessedSuccess))
			Expect(errors.HasType(err, errors.ErrorTypeValidation)).To(BeTrue())

			updated, err := service.UpdatePaymentStatus(ctx, created.ID, statusPtr(payment.StatusPending))
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(payment.StatusPending))
		})

		It("should treat PENDING to PENDING as a no-op without an event", func() {
			updated, err := service.UpdatePaymentStatus(ctx, created.ID, statusPtr(payment.StatusPending))
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(payment.StatusPending))
			Expect(publisher.Types()).To(Equal([]string{events.EventTypePaymentCreated}))
		})

		It("should reject a missing status before looking up the record", func() {
			mockRepo.SetShouldFail(true, stderrors.New("must not be called"))
			_, err := service.UpdatePaymentStatus(ctx, created.ID, nil)
			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(errors.ErrCodeStatusRequired))
		})

		It("should return not found for unknown ids", func() {
			_, err := service.UpdatePaymentStatus(ctx, 999, statusPtr(payment.StatusPending))
			Expect(errors.HasType(err, errors.ErrorTypeNotFound)).To(BeTrue())
		})

		It("should refuse changes to inactive records", func() {
			Expect(service.DeletePayment(ctx, created.ID)).To(Succeed())
			_, err := service.UpdatePaymentStatus(ctx, created.ID, statusPtr(payment.StatusProcessedSuccess))
			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(errors.ErrCodePaymentInactive))
		})
	})

	Describe("DeletePayment", func() {
		It("should deactivate a pending record once", func() {
			created := create(validPixDTO())

			Expect(service.DeletePayment(ctx, created.ID)).To(Succeed())
			fetched, err := service.GetPaymentByID(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(fetched.Active).To(BeFalse())

			err = service.DeletePayment(ctx, created.ID)
			Expect(errors.HasType(err, errors.ErrorTypeValidation)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("already inactive"))
			Expect(publisher.Types()).To(ContainElement(events.EventTypePaymentDeactivated))
		})

		It("should refuse to delete a processed record", func() {
			created := create(validPixDTO())
			_, err := service.UpdatePaymentStatus(ctx, created.ID, statusPtr(payment.StatusProcessedSuccess))
			Expect(err).NotTo(HaveOccurred())

			err = service.DeletePayment(ctx, created.ID)
			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(errors.ErrCodePaymentAlreadyProcessed))
		})

		It("should return not found for unknown ids", func() {
			err := service.DeletePayment(ctx, 404)
			Expect(errors.HasType(err, errors.ErrorTypeNotFound)).To(BeTrue())
		})
	})

	Describe("queries", func() {
		BeforeEach(func() {
			first := validPixDTO()
			first.DebitCode = int64Ptr(1)
			first.PayerDocument = "123.456.789-09"
			create(first)

			second := validCardDTO()
			second.DebitCode = int64Ptr(2)
			second.PayerDocument = "12345678909"
			p := create(second)
			_, err := service.UpdatePaymentStatus(ctx, p.ID, statusPtr(payment.StatusProcessedFailure))
			Expect(err).NotTo(HaveOccurred())

			third := validPixDTO()
			third.DebitCode = int64Ptr(3)
			third.PayerDocument = "11.222.333/0001-81"
			create(third)
		})

		It("should look up by debit code", func() {
			found, err := service.GetPaymentByDebitCode(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Status).To(Equal(payment.StatusProcessedFailure))

			_, err = service.GetPaymentByDebitCode(ctx, 77)
			Expect(errors.HasType(err, errors.ErrorTypeNotFound)).To(BeTrue())
		})

		It("should look up by debit code and a masked document", func() {
			found, err := service.GetPaymentByDebitCodeAndDocument(ctx, 3, "11.222.333/0001-81")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.DebitCode).To(Equal(int64(3)))

			_, err = service.GetPaymentByDebitCodeAndDocument(ctx, 3, "12345678909")
			Expect(errors.HasType(err, errors.ErrorTypeNotFound)).To(BeTrue())
		})

		It("should list by document regardless of mask", func() {
			found, err := service.ListPaymentsByDocument(ctx, "123.456.789-09", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(2))

			found, err = service.ListPaymentsByDocument(ctx, "12345678909", statusPtr(payment.StatusPending))
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(1))
			Expect(found[0].DebitCode).To(Equal(int64(1)))
		})

		It("should list by status", func() {
			found, err := service.ListPaymentsByStatus(ctx, payment.StatusPending)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(2))

			_, err = service.ListPaymentsByStatus(ctx, payment.StatusProcessedSuccess)
			Expect(errors.HasType(err, errors.ErrorTypeNotFound)).To(BeTrue())
		})

		It("should page filtered listings", func() {
			page, err := service.ListPayments(ctx, payment.PaymentFilter{PayerDocument: "123.456.789-09"}, payment.PageRequest{Page: 0, Size: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Content).To(HaveLen(1))
			Expect(page.TotalElements).To(Equal(int64(2)))
			Expect(page.TotalPages).To(Equal(2))
		})

		It("should report an empty listing as not found", func() {
			_, err := service.ListPayments(ctx, payment.PaymentFilter{DebitCode: int64Ptr(99)}, payment.PageRequest{Size: 20})
			Expect(errors.HasType(err, errors.ErrorTypeNotFound)).To(BeTrue())

			_, err = service.ListPaymentsByDocument(ctx, "52998224725", nil)
			Expect(errors.HasType(err, errors.ErrorTypeNotFound)).To(BeTrue())
		})

		It("should apply a document filter that has no digits", func() {
			_, err := service.ListPayments(ctx, payment.PaymentFilter{PayerDocument: "abc"}, payment.PageRequest{Size: 20})
			Expect(errors.HasType(err, errors.ErrorTypeNotFound)).To(BeTrue())
			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Message).To(ContainSubstring(`"abc"`))

			_, err = service.ListPaymentsByDocument(ctx, "..-/", nil)
			Expect(errors.HasType(err, errors.ErrorTypeNotFound)).To(BeTrue())
			appErr, ok = errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Message).To(ContainSubstring(`"..-/"`))
		})

		It("should ignore a blank document filter", func() {
			page, err := service.ListPayments(ctx, payment.PaymentFilter{PayerDocument: "  "}, payment.PageRequest{Size: 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.TotalElements).To(Equal(int64(3)))
		})

		It("should use the default page size when none is given", func() {
			page, err := service.ListPayments(ctx, payment.PaymentFilter{}, payment.PageRequest{Page: -1})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Content).To(HaveLen(3))
			Expect(page.Size).To(Equal(payment.DefaultPageSize))
			Expect(page.Page).To(BeZero())
			Expect(page.TotalPages).To(Equal(1))
		})

		It("should hide soft-deleted records from listings", func() {
			found, err := service.GetPaymentByDebitCode(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(service.DeletePayment(ctx, found.ID)).To(Succeed())

			_, err = service.GetPaymentByDebitCode(ctx, 3)
			Expect(errors.HasType(err, errors.ErrorTypeNotFound)).To(BeTrue())
		})

		It("should wrap repository failures", func() {
			mockRepo.SetShouldFail(true, stderrors.New("timeout"))
			_, err := service.ListPayments(ctx, payment.PaymentFilter{}, payment.PageRequest{Size: 20})
			Expect(errors.HasType(err, errors.ErrorTypeInternal)).To(BeTrue())
		})
	})
})
