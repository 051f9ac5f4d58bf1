package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
	PaymentStatusLate   = "late"

	DefaultPaymentMethod = "MOMO"
)

// ValidPaymentStatus reports whether s is one of the known payment statuses.
func ValidPaymentStatus(s string) bool {
	return s == PaymentStatusUnpaid || s == PaymentStatusPaid || s == PaymentStatusLate
}

// PaymentRecord is one payment obligation for a (user, billing month) pair.
// PeriodKey is always the first day of the month at midnight UTC; the pair
// (UserID, PeriodKey) is unique.
type PaymentRecord struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        uuid.UUID       `json:"user_id" db:"user_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PeriodKey     time.Time       `json:"period_key" db:"period_key"`
	Status        string          `json:"status" db:"status"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
	PaidAt        *time.Time      `json:"paid_at" db:"paid_at"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// MarkPaid transitions the record into paid at the given instant. Status and
// paid_at always move together.
func (p *PaymentRecord) MarkPaid(at time.Time) {
	p.Status = PaymentStatusPaid
	t := at.UTC()
	p.PaidAt = &t
}

// MarkUnpaid transitions the record away from paid and clears paid_at.
func (p *PaymentRecord) MarkUnpaid() {
	p.Status = PaymentStatusUnpaid
	p.PaidAt = nil
}

// ComplianceSnapshot is the derived view of a user's payment standing at a
// point in time. It is never persisted.
type ComplianceSnapshot struct {
	LastPaidAt     *time.Time `json:"last_paid_at"`
	IsCompliant    bool       `json:"is_compliant"`
	BlockDate      *time.Time `json:"block_date"`
	DaysUntilBlock int        `json:"days_until_block"`
}

// DTOs for requests and responses

type CreatePaymentRequest struct {
	UserID        uuid.UUID       `json:"user_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount"` // zero means "use the standard monthly fee"
	PeriodKey     time.Time       `json:"period_key" validate:"required"`
	Status        string          `json:"status" validate:"omitempty,oneof=unpaid paid late"`
	PaymentMethod string          `json:"payment_method"`
}

// PaymentPatch is a partial update applied by the store. Nil fields are left
// untouched. SetPaidAt distinguishes "clear paid_at" from "leave it alone".
type PaymentPatch struct {
	Amount        *decimal.Decimal
	Status        *string
	PaymentMethod *string
	PaidAt        *time.Time
	SetPaidAt     bool
}

// PaymentFilter selects payment records without any ad hoc SQL assembly at
// call sites. Zero-value fields are not applied.
type PaymentFilter struct {
	UserID     *uuid.UUID
	Status     *string
	PaidAfter  *time.Time
	PaidBefore *time.Time
	PeriodKey  *time.Time
}

type PaymentStatusResponse struct {
	Status         string     `json:"status"` // active or blocked
	LastPaymentAt  *time.Time `json:"last_payment_at"`
	BlockDate      *time.Time `json:"block_date"`
	DaysUntilBlock int        `json:"days_until_block"`
}

const (
	AccessStatusActive  = "active"
	AccessStatusBlocked = "blocked"
)

// EvaluationResult reports what EvaluateUser did for one user.
type EvaluationResult struct {
	RecordCreated          bool `json:"record_created"`
	RecordUpdated          bool `json:"record_updated"`
	ReminderNeeded         bool `json:"reminder_needed"`
	PreBlockReminderNeeded bool `json:"pre_block_reminder_needed"`
}

// BatchResult aggregates one full reminder run.
type BatchResult struct {
	UsersChecked          int `json:"users_checked"`
	RemindersSent         int `json:"reminders_sent"`
	PreBlockRemindersSent int `json:"pre_block_reminders_sent"`
	RecordsCreated        int `json:"records_created"`
	RecordsUpdated        int `json:"records_updated"`
	UsersSkipped          int `json:"users_skipped"`
}
