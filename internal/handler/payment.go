package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fonyuygita/protrack-backend/internal/domain"
	"github.com/fonyuygita/protrack-backend/internal/service"
	customError "github.com/fonyuygita/protrack-backend/pkg/errors"
	"github.com/fonyuygita/protrack-backend/pkg/response"
)

type PaymentHandler struct {
	payments   *service.PaymentService
	compliance *service.ComplianceService
	validator  *validator.Validate
}

func NewPaymentHandler(payments *service.PaymentService, compliance *service.ComplianceService) *PaymentHandler {
	return &PaymentHandler{
		payments:   payments,
		compliance: compliance,
		validator:  validator.New(),
	}
}

// GetStatus reports the authenticated user's payment standing.
func (h *PaymentHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	status, err := h.compliance.GetStatus(r.Context(), user.ID, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, status)
}

// RunReminders triggers a synchronous reminder batch. Admin only; exists for
// manual runs and external cron integration.
func (h *PaymentHandler) RunReminders(w http.ResponseWriter, r *http.Request) {
	result, err := h.compliance.RunBatch(r.Context(), time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, result)
}

// CreateRecord creates a payment record for a user and period. Admin only.
func (h *PaymentHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var request domain.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	record, err := h.payments.CreateRecord(r.Context(), &request, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, record)
}

// UpdateRecord applies a partial update to a record. Admin only.
func (h *PaymentHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["recordId"])
	if err != nil {
		response.BadRequest(w, "invalid record id", err)
		return
	}

	var request service.UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	record, err := h.payments.UpdateRecord(r.Context(), id, &request, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, record)
}

// ListRecords lists payment records, optionally filtered. Admin only.
func (h *PaymentHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	filter, err := parsePaymentFilter(r)
	if err != nil {
		response.BadRequest(w, "invalid filter", err)
		return
	}

	records, err := h.payments.ListRecords(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, records)
}

// GetRecord returns one payment record. Admin only.
func (h *PaymentHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["recordId"])
	if err != nil {
		response.BadRequest(w, "invalid record id", err)
		return
	}

	record, err := h.payments.GetRecord(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, record)
}

// DeleteRecord removes a payment record. Admin only.
func (h *PaymentHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["recordId"])
	if err != nil {
		response.BadRequest(w, "invalid record id", err)
		return
	}

	if err := h.payments.DeleteRecord(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}

func parsePaymentFilter(r *http.Request) (domain.PaymentFilter, error) {
	var filter domain.PaymentFilter
	query := r.URL.Query()

	if v := query.Get("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, err
		}
		filter.UserID = &id
	}
	if v := query.Get("status"); v != "" {
		if !domain.ValidPaymentStatus(v) {
			return filter, customError.ErrInvalidStatus
		}
		filter.Status = &v
	}
	if v := query.Get("paid_after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.PaidAfter = &t
	}
	if v := query.Get("paid_before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.PaidBefore = &t
	}

	return filter, nil
}

// writeServiceError maps service-layer errors onto HTTP responses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, customError.ErrRecordNotFound):
		response.NotFound(w, "payment record not found")
	case errors.Is(err, customError.ErrUserNotFound):
		response.NotFound(w, "user not found")
	case errors.Is(err, customError.ErrRecordConflict):
		response.Conflict(w, "a record already exists for this user and period", err)
	case errors.Is(err, customError.ErrInvalidStatus):
		response.BadRequest(w, "invalid payment status", err)
	case errors.Is(err, customError.ErrInvalidCredentials):
		response.Unauthorized(w, "invalid email or password")
	case errors.Is(err, customError.ErrUserNotApproved):
		response.Forbidden(w, "account pending admin approval")
	case errors.Is(err, customError.ErrInvalidToken):
		response.Unauthorized(w, "invalid or expired token")
	default:
		response.InternalServerError(w, "internal error", err)
	}
}
