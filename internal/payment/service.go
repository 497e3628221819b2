package payment

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/payment-management/internal"
	"github.com/frahmantamala/payment-management/internal/core/common/taxid"
	paymentDatamodel "github.com/frahmantamala/payment-management/internal/core/datamodel/payment"
	"github.com/frahmantamala/payment-management/internal/core/events"
	"github.com/frahmantamala/payment-management/pkg/logger"
)

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo      RepositoryAPI
	publisher EventPublisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) log(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx, s.logger)
}

func (s *Service) CreatePayment(ctx context.Context, dto CreatePaymentDTO) (*PaymentResponse, error) {
	if err := dto.Validate(); err != nil {
		s.log(ctx).Warn("payment request rejected", "error", err)
		return nil, err
	}

	p := NewPayment(dto)
	data := ToDataModel(p)

	err := s.repo.Transaction(ctx, func(repo RepositoryAPI) error {
		exists, err := repo.ExistsByDebitCode(ctx, p.DebitCode)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateDebitCode
		}
		return repo.Create(ctx, data)
	})
	if err != nil {
		if stderrors.Is(err, ErrDuplicateDebitCode) {
			s.log(ctx).Warn("debit code already used", "debit_code", p.DebitCode)
			return nil, duplicateDebitCodeError(p.DebitCode)
		}
		s.log(ctx).Error("failed to create payment", "error", err, "debit_code", p.DebitCode)
		return nil, errors.NewInternalError("failed to create payment", err)
	}

	created := FromDataModel(data)
	s.log(ctx).Info("payment created",
		"payment_id", created.ID,
		"debit_code", created.DebitCode,
		"payment_method", created.Method,
		"amount", created.Amount.StringFixed(amountScale))

	s.publish(ctx, events.NewPaymentCreatedEvent(created.ID, created.DebitCode, string(created.Method), created.Amount.StringFixed(amountScale)))

	response := created.ToResponse()
	return &response, nil
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, id int64, requested *Status) (*PaymentResponse, error) {
	if requested == nil {
		return nil, errors.NewValidationFieldError("status", "new status is required", errors.ErrCodeStatusRequired)
	}

	var before, after Payment
	err := s.repo.Transaction(ctx, func(repo RepositoryAPI) error {
		data, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		before = FromDataModel(data)

		after, err = before.WithStatus(requested)
		if err != nil {
			return err
		}
		return repo.Update(ctx, ToDataModel(after))
	})
	if err != nil {
		return nil, s.translate(ctx, err, "failed to update payment status", id)
	}

	s.log(ctx).Info("payment status updated",
		"payment_id", id,
		"from_status", before.Status,
		"to_status", after.Status)

	if before.Status != after.Status {
		s.publish(ctx, events.NewPaymentStatusChangedEvent(after.ID, after.DebitCode, string(before.Status), string(after.Status)))
	}

	response := after.ToResponse()
	return &response, nil
}

func (s *Service) DeletePayment(ctx context.Context, id int64) error {
	var deleted Payment
	err := s.repo.Transaction(ctx, func(repo RepositoryAPI) error {
		data, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		deleted, err = FromDataModel(data).Deactivate()
		if err != nil {
			return err
		}
		return repo.Update(ctx, ToDataModel(deleted))
	})
	if err != nil {
		return s.translate(ctx, err, "failed to delete payment", id)
	}

	s.log(ctx).Info("payment deactivated", "payment_id", id, "debit_code", deleted.DebitCode)
	s.publish(ctx, events.NewPaymentDeactivatedEvent(deleted.ID, deleted.DebitCode))
	return nil
}

func (s *Service) GetPaymentByID(ctx context.Context, id int64) (*PaymentResponse, error) {
	data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, err, "failed to get payment", id)
	}
	response := FromDataModel(data).ToResponse()
	return &response, nil
}

func (s *Service) GetPaymentByDebitCode(ctx context.Context, debitCode int64) (*PaymentResponse, error) {
	data, err := s.repo.FindByDebitCode(ctx, debitCode)
	if stderrors.Is(err, ErrPaymentNotFound) {
		return nil, errors.NewNotFoundError(fmt.Sprintf("payment not found: debit_code=%d", debitCode), errors.ErrCodePaymentNotFound)
	}
	if err != nil {
		s.log(ctx).Error("failed to get payment by debit code", "error", err, "debit_code", debitCode)
		return nil, errors.NewInternalError("failed to get payment", err)
	}
	response := FromDataModel(data).ToResponse()
	return &response, nil
}

func (s *Service) GetPaymentByDebitCodeAndDocument(ctx context.Context, debitCode int64, document string) (*PaymentResponse, error) {
	document = taxid.Digits(document)
	data, err := s.repo.FindByDebitCodeAndDocument(ctx, debitCode, document)
	if stderrors.Is(err, ErrPaymentNotFound) {
		return nil, errors.NewNotFoundError(
			fmt.Sprintf("payment not found: debit_code=%d payer_document=%s", debitCode, document), errors.ErrCodePaymentNotFound)
	}
	if err != nil {
		s.log(ctx).Error("failed to get payment by debit code and document", "error", err, "debit_code", debitCode)
		return nil, errors.NewInternalError("failed to get payment", err)
	}
	response := FromDataModel(data).ToResponse()
	return &response, nil
}

// ListPaymentsByDocument narrows to status when it is not nil.
func (s *Service) ListPaymentsByDocument(ctx context.Context, raw string, status *Status) ([]PaymentResponse, error) {
	document := taxid.Digits(raw)

	var (
		records []*paymentDatamodel.Payment
		err     error
	)
	if status != nil {
		records, err = s.repo.FindByDocumentAndStatus(ctx, document, string(*status))
	} else {
		records, err = s.repo.FindByDocument(ctx, document)
	}
	if err != nil {
		s.log(ctx).Error("failed to list payments by document", "error", err)
		return nil, errors.NewInternalError("failed to list payments", err)
	}
	if len(records) == 0 {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no payments found for payer document %q", raw), errors.ErrCodePaymentNotFound)
	}
	return toResponses(records), nil
}

func (s *Service) ListPaymentsByStatus(ctx context.Context, status Status) ([]PaymentResponse, error) {
	records, err := s.repo.FindByStatus(ctx, string(status))
	if err != nil {
		s.log(ctx).Error("failed to list payments by status", "error", err, "status", status)
		return nil, errors.NewInternalError("failed to list payments", err)
	}
	if len(records) == 0 {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no payments found with status %s", status), errors.ErrCodePaymentNotFound)
	}
	return toResponses(records), nil
}

// ListPayments returns one page of active payments matching filter. A zero
// page size falls back to DefaultPageSize.
func (s *Service) ListPayments(ctx context.Context, filter PaymentFilter, page PageRequest) (*PageResponse, error) {
	raw := filter.PayerDocument
	filter.PayerDocument = taxid.Digits(raw)
	if filter.PayerDocument == "" && strings.TrimSpace(raw) != "" {
		// no stored document is digit-free
		return nil, errors.NewNotFoundError(fmt.Sprintf("no payments found for payer document %q", raw), errors.ErrCodePaymentNotFound)
	}
	page = page.withDefaults()

	records, total, err := s.repo.FindAll(ctx, filter, page)
	if err != nil {
		s.log(ctx).Error("failed to list payments", "error", err)
		return nil, errors.NewInternalError("failed to list payments", err)
	}
	if len(records) == 0 {
		return nil, errors.NewNotFoundError("no payments found with the given filters", errors.ErrCodePaymentNotFound)
	}

	response := NewPageResponse(toResponses(records), page, total)
	return &response, nil
}

// translate maps repository and domain errors onto AppErrors for id-based operations.
func (s *Service) translate(ctx context.Context, err error, message string, id int64) error {
	if stderrors.Is(err, ErrPaymentNotFound) {
		return errors.NewNotFoundError(fmt.Sprintf("payment not found: id=%d", id), errors.ErrCodePaymentNotFound)
	}
	if appErr, ok := errors.IsAppError(err); ok {
		s.log(ctx).Warn(message, "error", appErr, "payment_id", id)
		return appErr
	}
	s.log(ctx).Error(message, "error", err, "payment_id", id)
	return errors.NewInternalError(message, err)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log(ctx).Error("failed to publish event", "error", err, "event_type", event.EventType())
	}
}

func duplicateDebitCodeError(debitCode int64) error {
	return errors.NewConflictError(fmt.Sprintf("debit code already used: %d", debitCode), errors.ErrCodeDuplicateDebitCode)
}

func toResponses(records []*paymentDatamodel.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, FromDataModel(record).ToResponse())
	}
	return responses
}
