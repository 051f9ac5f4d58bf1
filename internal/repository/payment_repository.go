package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/fonyuygita/protrack-backend/internal/domain"
	customError "github.com/fonyuygita/protrack-backend/pkg/errors"
)

const uniqueViolation = "23505"

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, record *domain.PaymentRecord) error {
	query := `
		INSERT INTO payment_records (id, user_id, amount, period_key, status, payment_method, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.Amount,
		record.PeriodKey,
		record.Status,
		record.PaymentMethod,
		record.PaidAt,
		record.CreatedAt,
		record.UpdatedAt,
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return customError.ErrRecordConflict
	}

	return err
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentRecord, error) {
	query := `
		SELECT id, user_id, amount, period_key, status, payment_method, paid_at, created_at, updated_at
		FROM payment_records
		WHERE id = $1
	`

	var record domain.PaymentRecord
	err := r.db.GetContext(ctx, &record, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *paymentRepository) GetByUserAndPeriod(ctx context.Context, userID uuid.UUID, periodKey time.Time) (*domain.PaymentRecord, error) {
	query := `
		SELECT id, user_id, amount, period_key, status, payment_method, paid_at, created_at, updated_at
		FROM payment_records
		WHERE user_id = $1 AND period_key = $2
	`

	var record domain.PaymentRecord
	err := r.db.GetContext(ctx, &record, query, userID, periodKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *paymentRepository) GetLatestPaid(ctx context.Context, userID uuid.UUID) (*domain.PaymentRecord, error) {
	query := `
		SELECT id, user_id, amount, period_key, status, payment_method, paid_at, created_at, updated_at
		FROM payment_records
		WHERE user_id = $1 AND status = 'paid' AND paid_at IS NOT NULL
		ORDER BY paid_at DESC
		LIMIT 1
	`

	var record domain.PaymentRecord
	err := r.db.GetContext(ctx, &record, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *paymentRepository) GetLatestPaidSince(ctx context.Context, userID uuid.UUID, since time.Time) (*domain.PaymentRecord, error) {
	query := `
		SELECT id, user_id, amount, period_key, status, payment_method, paid_at, created_at, updated_at
		FROM payment_records
		WHERE user_id = $1 AND status = 'paid' AND paid_at >= $2
		ORDER BY paid_at DESC
		LIMIT 1
	`

	var record domain.PaymentRecord
	err := r.db.GetContext(ctx, &record, query, userID, since)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *paymentRepository) List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.PaymentRecord, error) {
	query := `
		SELECT id, user_id, amount, period_key, status, payment_method, paid_at, created_at, updated_at
		FROM payment_records
	`

	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	addCondition := func(clause string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.UserID != nil {
		addCondition("user_id = $%d", *filter.UserID)
	}
	if filter.Status != nil {
		addCondition("status = $%d", *filter.Status)
	}
	if filter.PaidAfter != nil {
		addCondition("paid_at >= $%d", *filter.PaidAfter)
	}
	if filter.PaidBefore != nil {
		addCondition("paid_at <= $%d", *filter.PaidBefore)
	}
	if filter.PeriodKey != nil {
		addCondition("period_key = $%d", *filter.PeriodKey)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY period_key DESC, created_at DESC"

	var records []*domain.PaymentRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *paymentRepository) Patch(ctx context.Context, id uuid.UUID, patch domain.PaymentPatch) error {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)

	addSet := func(clause string, arg interface{}) {
		args = append(args, arg)
		sets = append(sets, fmt.Sprintf(clause, len(args)))
	}

	if patch.Amount != nil {
		addSet("amount = $%d", *patch.Amount)
	}
	if patch.Status != nil {
		addSet("status = $%d", *patch.Status)
	}
	if patch.PaymentMethod != nil {
		addSet("payment_method = $%d", *patch.PaymentMethod)
	}
	if patch.SetPaidAt {
		addSet("paid_at = $%d", patch.PaidAt)
	}

	if len(sets) == 0 {
		return nil
	}

	addSet("updated_at = $%d", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE payment_records SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return customError.ErrRecordNotFound
	}

	return nil
}

func (r *paymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM payment_records WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return customError.ErrRecordNotFound
	}

	return nil
}
