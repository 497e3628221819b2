package payment

import (
	"context"
	"errors"

	paymentDatamodel "github.com/frahmantamala/payment-management/internal/core/datamodel/payment"
)

var (
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrDuplicateDebitCode = errors.New("debit code already used")
)

// RepositoryAPI is the persistence contract for payments. Lookups return
// ErrPaymentNotFound when nothing matches; Create returns
// ErrDuplicateDebitCode on a unique violation. The Find* queries only see
// active records.
type RepositoryAPI interface {
	Create(ctx context.Context, p *paymentDatamodel.Payment) error
	GetByID(ctx context.Context, id int64) (*paymentDatamodel.Payment, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*paymentDatamodel.Payment, error)
	ExistsByDebitCode(ctx context.Context, debitCode int64) (bool, error)
	Update(ctx context.Context, p *paymentDatamodel.Payment) error

	FindByDebitCode(ctx context.Context, debitCode int64) (*paymentDatamodel.Payment, error)
	FindByDebitCodeAndDocument(ctx context.Context, debitCode int64, document string) (*paymentDatamodel.Payment, error)
	FindByDocument(ctx context.Context, document string) ([]*paymentDatamodel.Payment, error)
	FindByStatus(ctx context.Context, status string) ([]*paymentDatamodel.Payment, error)
	FindByDocumentAndStatus(ctx context.Context, document, status string) ([]*paymentDatamodel.Payment, error)
	FindAll(ctx context.Context, filter PaymentFilter, page PageRequest) ([]*paymentDatamodel.Payment, int64, error)

	// Transaction runs fn against a repository bound to a single transaction.
	Transaction(ctx context.Context, fn func(repo RepositoryAPI) error) error
}
