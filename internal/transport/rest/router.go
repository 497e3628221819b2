package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/payment-management/api"
	"github.com/frahmantamala/payment-management/internal/payment"
	"github.com/frahmantamala/payment-management/internal/transport/middleware"
	"github.com/frahmantamala/payment-management/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, paymentHandler *payment.Handler, allowedOrigins string, logger *slog.Logger) error {
	healthHandler := NewHealthHandler(db)

	validator, err := middleware.NewRequestValidator(api.Spec, logger)
	if err != nil {
		return err
	}

	// Apply global middleware
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Contract and docs live outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.Spec)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(validator.Middleware)

		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Get("/documents/{document}/validation", paymentHandler.ValidateDocument)

		r.Route("/payments", func(pr chi.Router) {
			pr.Post("/", paymentHandler.CreatePayment)                              // POST /payments
			pr.Get("/", paymentHandler.ListPayments)                                // GET /payments
			pr.Get("/debit-code/{debitCode}", paymentHandler.GetPaymentByDebitCode) // GET /payments/debit-code/:debitCode
			pr.Get("/document/{document}", paymentHandler.ListPaymentsByDocument)   // GET /payments/document/:document
			pr.Get("/status/{status}", paymentHandler.ListPaymentsByStatus)         // GET /payments/status/:status
			pr.Get("/{id}", paymentHandler.GetPayment)                              // GET /payments/:id
			pr.Patch("/{id}/status", paymentHandler.UpdatePaymentStatus)            // PATCH /payments/:id/status
			pr.Delete("/{id}", paymentHandler.DeletePayment)                        // DELETE /payments/:id
		})
	})
	return nil
}
