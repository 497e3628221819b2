package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	errors "github.com/frahmantamala/payment-management/internal"
	"github.com/frahmantamala/payment-management/internal/core/common/taxid"
	"github.com/frahmantamala/payment-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreatePayment(ctx context.Context, dto CreatePaymentDTO) (*PaymentResponse, error)
	GetPaymentByID(ctx context.Context, id int64) (*PaymentResponse, error)
	GetPaymentByDebitCode(ctx context.Context, debitCode int64) (*PaymentResponse, error)
	GetPaymentByDebitCodeAndDocument(ctx context.Context, debitCode int64, document string) (*PaymentResponse, error)
	ListPaymentsByDocument(ctx context.Context, document string, status *Status) ([]PaymentResponse, error)
	ListPaymentsByStatus(ctx context.Context, status Status) ([]PaymentResponse, error)
	ListPayments(ctx context.Context, filter PaymentFilter, page PageRequest) (*PageResponse, error)
	UpdatePaymentStatus(ctx context.Context, id int64, requested *Status) (*PaymentResponse, error)
	DeletePayment(ctx context.Context, id int64) error
}

type PaginationConfig struct {
	DefaultSize int
	MaxSize     int
}

type Handler struct {
	*transport.BaseHandler
	Service    ServiceAPI
	pagination PaginationConfig
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, pagination PaginationConfig) *Handler {
	if pagination.DefaultSize <= 0 {
		pagination.DefaultSize = DefaultPageSize
	}
	if pagination.MaxSize < pagination.DefaultSize {
		pagination.MaxSize = 100
	}
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		pagination:  pagination,
	}
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var dto CreatePaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Warn("CreatePayment: invalid request body", "error", err)
		if appErr, ok := errors.IsAppError(err); ok {
			h.HandleServiceError(w, appErr)
			return
		}
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.CheckDocument(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	created, err := h.Service.CreatePayment(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%d", strings.TrimSuffix(r.URL.Path, "/"), created.ID))
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathInt(w, r, "id")
	if !ok {
		return
	}

	found, err := h.Service.GetPaymentByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, found)
}

// ListPayments serves GET /payments?debit_code=&payer_document=&status=&page=&size=&sort=field,dir
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var filter PaymentFilter
	if raw := query.Get("debit_code"); raw != "" {
		code, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid debit_code")
			return
		}
		filter.DebitCode = &code
	}
	filter.PayerDocument = query.Get("payer_document")

	status, err := ParseStatus(query.Get("status"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	filter.Status = status

	page, err := h.Service.ListPayments(r.Context(), filter, h.pageRequest(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}

// GetPaymentByDebitCode narrows to the payer document when one is given.
func (h *Handler) GetPaymentByDebitCode(w http.ResponseWriter, r *http.Request) {
	code, ok := h.pathInt(w, r, "debitCode")
	if !ok {
		return
	}

	var (
		found *PaymentResponse
		err   error
	)
	if document := r.URL.Query().Get("payer_document"); document != "" {
		found, err = h.Service.GetPaymentByDebitCodeAndDocument(r.Context(), code, document)
	} else {
		found, err = h.Service.GetPaymentByDebitCode(r.Context(), code)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) ListPaymentsByDocument(w http.ResponseWriter, r *http.Request) {
	status, err := ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	found, err := h.Service.ListPaymentsByDocument(r.Context(), chi.URLParam(r, "document"), status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) ListPaymentsByStatus(w http.ResponseWriter, r *http.Request) {
	status, err := ParseStatus(chi.URLParam(r, "status"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if status == nil {
		h.WriteError(w, http.StatusBadRequest, "status is required")
		return
	}

	found, err := h.Service.ListPaymentsByStatus(r.Context(), *status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathInt(w, r, "id")
	if !ok {
		return
	}

	var dto UpdatePaymentStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Warn("UpdatePaymentStatus: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := ParseStatus(dto.Status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	updated, err := h.Service.UpdatePaymentStatus(r.Context(), id, status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathInt(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.DeletePayment(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ValidateDocument reports whether a CPF/CNPJ has valid check digits.
func (h *Handler) ValidateDocument(w http.ResponseWriter, r *http.Request) {
	document := chi.URLParam(r, "document")
	h.WriteJSON(w, http.StatusOK, DocumentValidationResponse{
		Document: taxid.Digits(document),
		Kind:     taxid.KindOf(document),
		Valid:    taxid.IsValid(document),
	})
}

func (h *Handler) pathInt(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.Logger.Warn("invalid path parameter", "name", name, "value", raw)
		h.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return v, true
}

// pageRequest reads page, size and sort. Out-of-range values fall back to
// the defaults instead of failing the request.
func (h *Handler) pageRequest(r *http.Request) PageRequest {
	query := r.URL.Query()
	page := PageRequest{Size: h.pagination.DefaultSize}

	if p, err := strconv.Atoi(query.Get("page")); err == nil && p >= 0 {
		page.Page = p
	}
	if s, err := strconv.Atoi(query.Get("size")); err == nil && s > 0 {
		page.Size = s
		if s > h.pagination.MaxSize {
			page.Size = h.pagination.MaxSize
		}
	}
	if sort := query.Get("sort"); sort != "" {
		field, direction, _ := strings.Cut(sort, ",")
		page.SortBy = strings.TrimSpace(field)
		page.SortDesc = strings.EqualFold(strings.TrimSpace(direction), "desc")
	}
	return page
}
