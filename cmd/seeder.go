package cmd

import (
	"context"
	"log"

	errors "github.com/frahmantamala/payment-management/internal"
	"github.com/frahmantamala/payment-management/internal/payment"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample payments",
	Long:  `Seed the database with sample payments for development and testing purposes. Running it twice is harmless.`,
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies()
		if err != nil {
			log.Fatalf("failed to initialize dependencies: %v", err)
		}
		defer deps.Close()

		ctx := context.Background()

		if clearData {
			if err := deps.Gorm.WithContext(ctx).Exec("DELETE FROM payments").Error; err != nil {
				log.Fatalf("failed to clear payments: %v", err)
			}
			deps.Logger.Info("cleared existing payments")
		}

		for _, sample := range samplePayments() {
			created, err := deps.PaymentService.CreatePayment(ctx, sample.dto)
			if err != nil {
				if errors.HasType(err, errors.ErrorTypeConflict) {
					deps.Logger.Info("payment already seeded", "debit_code", *sample.dto.DebitCode)
					continue
				}
				log.Fatalf("failed to seed payment %d: %v", *sample.dto.DebitCode, err)
			}

			if sample.status != payment.StatusPending {
				status := sample.status
				if _, err := deps.PaymentService.UpdatePaymentStatus(ctx, created.ID, &status); err != nil {
					log.Fatalf("failed to move payment %d to %s: %v", created.ID, status, err)
				}
			}
			deps.Logger.Info("seeded payment", "id", created.ID, "debit_code", created.DebitCode, "status", sample.status)
		}

		if err := deps.EventBus.Wait(ctx); err != nil {
			deps.Logger.Error("event handlers did not finish", "error", err)
		}
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing payments before seeding")
}

type seedPayment struct {
	dto    payment.CreatePaymentDTO
	status payment.Status
}

func samplePayments() []seedPayment {
	build := func(code int64, document string, method payment.Method, card, amount string, status payment.Status) seedPayment {
		value := decimal.RequireFromString(amount)
		dto := payment.CreatePaymentDTO{
			DebitCode:     &code,
			PayerDocument: document,
			Method:        method,
			Amount:        &value,
		}
		if card != "" {
			dto.CardNumber = &card
		}
		return seedPayment{dto: dto, status: status}
	}

	return []seedPayment{
		build(1001, "529.982.247-25", payment.MethodPix, "", "150.00", payment.StatusPending),
		build(1002, "529.982.247-25", payment.MethodBoleto, "", "89.90", payment.StatusProcessedSuccess),
		build(1003, "111.444.777-35", payment.MethodCreditCard, "4111111111111111", "1200.50", payment.StatusProcessedFailure),
		build(1004, "11.222.333/0001-81", payment.MethodDebitCard, "5555555555554444", "42.00", payment.StatusPending),
		build(1005, "11.222.333/0001-81", payment.MethodPix, "", "9999.99", payment.StatusProcessedSuccess),
	}
}
