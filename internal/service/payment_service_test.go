package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fonyuygita/protrack-backend/internal/domain"
	customError "github.com/fonyuygita/protrack-backend/pkg/errors"
	"github.com/fonyuygita/protrack-backend/tests/mocks"
)

func newPaymentFixture() (*PaymentService, *mocks.MockPaymentRepository, *mocks.MockUserRepository) {
	paymentRepo := &mocks.MockPaymentRepository{}
	userRepo := &mocks.MockUserRepository{}
	svc := NewPaymentService(paymentRepo, userRepo, testConfig())
	return svc, paymentRepo, userRepo
}

func TestCreateRecord(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	userID := uuid.New()
	user := &domain.User{ID: userID, Role: domain.RoleStaff, Approved: true}

	t.Run("defaults fill in fee, method and unpaid status", func(t *testing.T) {
		svc, paymentRepo, userRepo := newPaymentFixture()
		userRepo.On("GetByID", mock.Anything, userID).Return(user, nil)
		paymentRepo.On("Create", mock.Anything, mock.MatchedBy(func(rec *domain.PaymentRecord) bool {
			return rec.Amount.Equal(decimal.NewFromInt(15000)) &&
				rec.PaymentMethod == "MOMO" &&
				rec.Status == domain.PaymentStatusUnpaid &&
				rec.PaidAt == nil
		})).Return(nil)

		record, err := svc.CreateRecord(context.Background(), &domain.CreatePaymentRequest{
			UserID:    userID,
			PeriodKey: now,
		}, now)

		assert.NoError(t, err)
		// period key normalized to the first of the month
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), record.PeriodKey)
	})

	t.Run("paid status stamps paid_at", func(t *testing.T) {
		svc, paymentRepo, userRepo := newPaymentFixture()
		userRepo.On("GetByID", mock.Anything, userID).Return(user, nil)
		paymentRepo.On("Create", mock.Anything, mock.MatchedBy(func(rec *domain.PaymentRecord) bool {
			return rec.Status == domain.PaymentStatusPaid && rec.PaidAt != nil && rec.PaidAt.Equal(now)
		})).Return(nil)

		_, err := svc.CreateRecord(context.Background(), &domain.CreatePaymentRequest{
			UserID:    userID,
			PeriodKey: now,
			Status:    domain.PaymentStatusPaid,
		}, now)

		assert.NoError(t, err)
	})

	t.Run("unknown user is rejected", func(t *testing.T) {
		svc, paymentRepo, userRepo := newPaymentFixture()
		userRepo.On("GetByID", mock.Anything, userID).Return(nil, customError.ErrUserNotFound)

		_, err := svc.CreateRecord(context.Background(), &domain.CreatePaymentRequest{
			UserID:    userID,
			PeriodKey: now,
		}, now)

		assert.ErrorIs(t, err, customError.ErrUserNotFound)
		paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestUpdateRecord_StatusKeepsPaidAtConsistent(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	recordID := uuid.New()

	t.Run("transition to paid sets paid_at", func(t *testing.T) {
		svc, paymentRepo, _ := newPaymentFixture()
		status := domain.PaymentStatusPaid

		paymentRepo.On("Patch", mock.Anything, recordID, mock.MatchedBy(func(p domain.PaymentPatch) bool {
			return p.Status != nil && *p.Status == domain.PaymentStatusPaid &&
				p.SetPaidAt && p.PaidAt != nil && p.PaidAt.Equal(now)
		})).Return(nil)
		paymentRepo.On("GetByID", mock.Anything, recordID).Return(&domain.PaymentRecord{ID: recordID}, nil)

		_, err := svc.UpdateRecord(context.Background(), recordID, &UpdatePaymentRequest{Status: &status}, now)

		assert.NoError(t, err)
		paymentRepo.AssertExpectations(t)
	})

	t.Run("transition away from paid clears paid_at", func(t *testing.T) {
		svc, paymentRepo, _ := newPaymentFixture()
		status := domain.PaymentStatusLate

		paymentRepo.On("Patch", mock.Anything, recordID, mock.MatchedBy(func(p domain.PaymentPatch) bool {
			return p.Status != nil && *p.Status == domain.PaymentStatusLate &&
				p.SetPaidAt && p.PaidAt == nil
		})).Return(nil)
		paymentRepo.On("GetByID", mock.Anything, recordID).Return(&domain.PaymentRecord{ID: recordID}, nil)

		_, err := svc.UpdateRecord(context.Background(), recordID, &UpdatePaymentRequest{Status: &status}, now)

		assert.NoError(t, err)
		paymentRepo.AssertExpectations(t)
	})

	t.Run("amount-only update never touches paid_at", func(t *testing.T) {
		svc, paymentRepo, _ := newPaymentFixture()
		amount := decimal.NewFromInt(20000)

		paymentRepo.On("Patch", mock.Anything, recordID, mock.MatchedBy(func(p domain.PaymentPatch) bool {
			return p.Amount != nil && p.Amount.Equal(amount) && !p.SetPaidAt && p.Status == nil
		})).Return(nil)
		paymentRepo.On("GetByID", mock.Anything, recordID).Return(&domain.PaymentRecord{ID: recordID}, nil)

		_, err := svc.UpdateRecord(context.Background(), recordID, &UpdatePaymentRequest{Amount: &amount}, now)

		assert.NoError(t, err)
	})

	t.Run("invalid status is rejected", func(t *testing.T) {
		svc, paymentRepo, _ := newPaymentFixture()
		status := "refunded"

		_, err := svc.UpdateRecord(context.Background(), recordID, &UpdatePaymentRequest{Status: &status}, now)

		assert.ErrorIs(t, err, customError.ErrInvalidStatus)
		paymentRepo.AssertNotCalled(t, "Patch", mock.Anything, mock.Anything, mock.Anything)
	})
}
