package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fonyuygita/protrack-backend/internal/config"
	"github.com/fonyuygita/protrack-backend/internal/domain"
	"github.com/fonyuygita/protrack-backend/internal/repository"
	customError "github.com/fonyuygita/protrack-backend/pkg/errors"
	"github.com/fonyuygita/protrack-backend/pkg/period"
)

// PaymentService covers the administrative record operations: explicit
// creation, status changes, partial updates, listing and deletion. Status
// transitions always keep paid_at consistent with the status.
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	config      *config.Config
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	config *config.Config,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		config:      config,
	}
}

// CreateRecord creates an obligation record for a user and billing period.
func (s *PaymentService) CreateRecord(ctx context.Context, request *domain.CreatePaymentRequest, now time.Time) (*domain.PaymentRecord, error) {
	if _, err := s.userRepo.GetByID(ctx, request.UserID); err != nil {
		return nil, err
	}

	status := request.Status
	if status == "" {
		status = domain.PaymentStatusUnpaid
	}
	if !domain.ValidPaymentStatus(status) {
		return nil, customError.WrapInvalidStatus(status)
	}

	method := request.PaymentMethod
	if method == "" {
		method = s.config.Business.PaymentMethod
	}

	amount := request.Amount
	if amount.IsZero() {
		amount = s.config.GetMonthlyFee()
	}

	record := &domain.PaymentRecord{
		ID:            uuid.New(),
		UserID:        request.UserID,
		Amount:        amount,
		PeriodKey:     period.CurrentKey(request.PeriodKey),
		Status:        status,
		PaymentMethod: method,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
	if status == domain.PaymentStatusPaid {
		record.MarkPaid(now)
	}

	if err := s.paymentRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// UpdatePaymentRequest is the administrative partial-update surface. Nil
// fields are left untouched.
type UpdatePaymentRequest struct {
	Amount        *decimal.Decimal `json:"amount"`
	Status        *string          `json:"status" validate:"omitempty,oneof=unpaid paid late"`
	PaymentMethod *string          `json:"payment_method"`
}

// UpdateRecord applies a partial update. A status change to paid stamps
// paid_at; a change away from paid clears it.
func (s *PaymentService) UpdateRecord(ctx context.Context, id uuid.UUID, request *UpdatePaymentRequest, now time.Time) (*domain.PaymentRecord, error) {
	patch := domain.PaymentPatch{
		Amount:        request.Amount,
		PaymentMethod: request.PaymentMethod,
	}

	if request.Status != nil {
		status := *request.Status
		if !domain.ValidPaymentStatus(status) {
			return nil, customError.WrapInvalidStatus(status)
		}

		patch.Status = &status
		patch.SetPaidAt = true
		if status == domain.PaymentStatusPaid {
			paidAt := now.UTC()
			patch.PaidAt = &paidAt
		}
	}

	if err := s.paymentRepo.Patch(ctx, id, patch); err != nil {
		return nil, err
	}

	return s.paymentRepo.GetByID(ctx, id)
}

// ListRecords returns records matching the filter.
func (s *PaymentService) ListRecords(ctx context.Context, filter domain.PaymentFilter) ([]*domain.PaymentRecord, error) {
	return s.paymentRepo.List(ctx, filter)
}

// GetRecord returns one record by id.
func (s *PaymentService) GetRecord(ctx context.Context, id uuid.UUID) (*domain.PaymentRecord, error) {
	return s.paymentRepo.GetByID(ctx, id)
}

// DeleteRecord removes a record.
func (s *PaymentService) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	return s.paymentRepo.Delete(ctx, id)
}
