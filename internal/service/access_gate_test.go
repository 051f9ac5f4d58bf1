package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fonyuygita/protrack-backend/internal/domain"
	"github.com/fonyuygita/protrack-backend/pkg/period"
	"github.com/fonyuygita/protrack-backend/tests/mocks"
)

func TestAccessGate_AdminAlwaysAllowed(t *testing.T) {
	paymentRepo := &mocks.MockPaymentRepository{}
	gate := NewAccessGate(paymentRepo, nil, 0)

	allowed := gate.IsCompliant(context.Background(), uuid.New(), domain.RoleAdmin, time.Now())

	assert.True(t, allowed)
	paymentRepo.AssertNotCalled(t, "GetLatestPaidSince", mock.Anything, mock.Anything, mock.Anything)
}

func TestAccessGate_FreshnessWindow(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	userID := uuid.New()

	tests := []struct {
		name     string
		paidDays int // days ago; negative means no payment at all
		expected bool
	}{
		{"paid 29 days ago is allowed", 29, true},
		{"paid 31 days ago is denied", 31, false},
		{"never paid is denied", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paymentRepo := &mocks.MockPaymentRepository{}
			gate := NewAccessGate(paymentRepo, nil, 0)

			// the 31-day and never-paid cases both come back empty from
			// the windowed query
			if tt.paidDays >= 0 && tt.paidDays <= period.LookbackDays {
				rec := paidRecord(userID, period.CurrentKey(now), now.AddDate(0, 0, -tt.paidDays))
				paymentRepo.On("GetLatestPaidSince", mock.Anything, userID, period.LookbackBoundary(now)).Return(rec, nil)
			} else {
				paymentRepo.On("GetLatestPaidSince", mock.Anything, userID, period.LookbackBoundary(now)).Return(nil, nil)
			}

			allowed := gate.IsCompliant(context.Background(), userID, domain.RoleStaff, now)

			assert.Equal(t, tt.expected, allowed)
		})
	}
}

func TestAccessGate_FailsClosedOnStoreError(t *testing.T) {
	paymentRepo := &mocks.MockPaymentRepository{}
	gate := NewAccessGate(paymentRepo, nil, 0)

	paymentRepo.On("GetLatestPaidSince", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	allowed := gate.IsCompliant(context.Background(), uuid.New(), domain.RoleStaff, time.Now())

	assert.False(t, allowed)
}
