package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/frahmantamala/payment-management/internal/core/datamodel/payment"
	paymentpkg "github.com/frahmantamala/payment-management/internal/payment"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

// sortColumns maps accepted sort keys to columns.
var sortColumns = map[string]string{
	"id":             "id",
	"debit_code":     "debit_code",
	"payer_document": "payer_document",
	"amount":         "amount",
	"status":         "status",
	"created_at":     "created_at",
}

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) paymentpkg.RepositoryAPI {
	return &PaymentRepository{
		db: db,
	}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return paymentpkg.ErrDuplicateDebitCode
		}
		return err
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// GetByIDForUpdate locks the row until the surrounding transaction ends.
// SQLite has no row locks, so the clause is only added for postgres.
func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*payment.Payment, error) {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var p payment.Payment
	if err := q.First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PaymentRepository) ExistsByDebitCode(ctx context.Context, debitCode int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&payment.Payment{}).Where("debit_code = ?", debitCode).Count(&count).Error
	return count > 0, err
}

// Update writes the mutable state columns only.
func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	p.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&payment.Payment{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"status":     p.Status,
		"active":     p.Active,
		"updated_at": p.UpdatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return paymentpkg.ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepository) FindByDebitCode(ctx context.Context, debitCode int64) (*payment.Payment, error) {
	var p payment.Payment
	err := r.active(ctx).Where("debit_code = ?", debitCode).First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PaymentRepository) FindByDebitCodeAndDocument(ctx context.Context, debitCode int64, document string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.active(ctx).Where("debit_code = ? AND payer_document = ?", debitCode, document).First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PaymentRepository) FindByDocument(ctx context.Context, document string) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	err := r.active(ctx).Where("payer_document = ?", document).Order("id").Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) FindByStatus(ctx context.Context, status string) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	err := r.active(ctx).Where("status = ?", status).Order("id").Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) FindByDocumentAndStatus(ctx context.Context, document, status string) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	err := r.active(ctx).Where("payer_document = ? AND status = ?", document, status).Order("id").Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) FindAll(ctx context.Context, filter paymentpkg.PaymentFilter, page paymentpkg.PageRequest) ([]*payment.Payment, int64, error) {
	q := r.active(ctx).Model(&payment.Payment{})
	if filter.DebitCode != nil {
		q = q.Where("debit_code = ?", *filter.DebitCode)
	}
	if filter.PayerDocument != "" {
		q = q.Where("payer_document = ?", filter.PayerDocument)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	// reusable for both the count and the page query
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[strings.ToLower(page.SortBy)]
	if !ok {
		column = "id"
	}

	var payments []*payment.Payment
	err := q.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: page.SortDesc}).
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *PaymentRepository) Transaction(ctx context.Context, fn func(repo paymentpkg.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PaymentRepository{db: tx})
	})
}

func (r *PaymentRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Where("active = ?", true)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return paymentpkg.ErrPaymentNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
