package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fonyuygita/protrack-backend/internal/domain"
)

// PaymentRepository defines the interface for payment record data operations.
// The "latest" lookups return (nil, nil) when no matching record exists,
// since absence is a normal state for the compliance logic, not an error.
type PaymentRepository interface {
	// Create inserts a new payment record. A (user_id, period_key)
	// uniqueness violation surfaces as errors.ErrRecordConflict.
	Create(ctx context.Context, record *domain.PaymentRecord) error

	// GetByID retrieves a record by its id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentRecord, error)

	// GetByUserAndPeriod retrieves the record for one billing period, if any
	GetByUserAndPeriod(ctx context.Context, userID uuid.UUID, periodKey time.Time) (*domain.PaymentRecord, error)

	// GetLatestPaid retrieves the most recent paid record regardless of age
	GetLatestPaid(ctx context.Context, userID uuid.UUID) (*domain.PaymentRecord, error)

	// GetLatestPaidSince retrieves the most recent paid record with
	// paid_at at or after the given boundary
	GetLatestPaidSince(ctx context.Context, userID uuid.UUID, since time.Time) (*domain.PaymentRecord, error)

	// List retrieves records matching the filter, newest period first
	List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.PaymentRecord, error)

	// Patch applies a partial update to a record
	Patch(ctx context.Context, id uuid.UUID, patch domain.PaymentPatch) error

	// Delete removes a record
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create inserts a new user account
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// ListPayable retrieves all approved non-admin users, the population
	// subject to payment compliance
	ListPayable(ctx context.Context) ([]*domain.User, error)

	// SetApproved flips the admin-approval flag
	SetApproved(ctx context.Context, id uuid.UUID, approved bool) error
}
