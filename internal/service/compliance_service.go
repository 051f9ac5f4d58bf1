package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fonyuygita/protrack-backend/internal/config"
	"github.com/fonyuygita/protrack-backend/internal/domain"
	"github.com/fonyuygita/protrack-backend/internal/notifier"
	"github.com/fonyuygita/protrack-backend/internal/repository"
	customError "github.com/fonyuygita/protrack-backend/pkg/errors"
	"github.com/fonyuygita/protrack-backend/pkg/period"
)

// ComplianceService owns the monthly payment-compliance rules: it brings a
// user's current-period payment record into line with their actual payment
// history, decides when reminders fire, and drives the daily batch across
// the payable user population.
type ComplianceService struct {
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	notifier    notifier.Notifier
	config      *config.Config
}

func NewComplianceService(
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	notif notifier.Notifier,
	config *config.Config,
) *ComplianceService {
	return &ComplianceService{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		notifier:    notif,
		config:      config,
	}
}

// Evaluation bundles EvaluateUser's outcome with the snapshot the batch
// needs to render the pre-block notification.
type Evaluation struct {
	domain.EvaluationResult
	Snapshot domain.ComplianceSnapshot
}

// EvaluateUser reconciles one user's current-period record with their payment
// history and reports which reminders are due. It mutates records but never
// dispatches notifications; that stays with the batch so this method is
// deterministic for a given store state.
func (s *ComplianceService) EvaluateUser(ctx context.Context, userID uuid.UUID, now time.Time) (*Evaluation, error) {
	boundary := period.LookbackBoundary(now)
	currentKey := period.CurrentKey(now)

	fresh, err := s.paymentRepo.GetLatestPaidSince(ctx, userID, boundary)
	if err != nil {
		return nil, customError.WrapDependencyFailure("lookup fresh payment", err)
	}

	current, err := s.paymentRepo.GetByUserAndPeriod(ctx, userID, currentKey)
	if err != nil {
		return nil, customError.WrapDependencyFailure("lookup current-period record", err)
	}

	result := &Evaluation{}

	if fresh != nil {
		// Compliant for the rolling window. A fresh payment against a
		// prior period still means the current period needs its own
		// unpaid record and a reminder.
		if !period.SameKey(fresh.PeriodKey, currentKey) {
			switch {
			case current == nil:
				created, err := s.createUnpaidRecord(ctx, userID, currentKey, now)
				if err != nil {
					return nil, err
				}
				result.RecordCreated = created
				result.ReminderNeeded = true
			case s.isStalePaid(current, boundary):
				if err := s.resetToUnpaid(ctx, current); err != nil {
					return nil, err
				}
				result.RecordUpdated = true
				result.ReminderNeeded = true
			}
		}
	} else {
		// No payment inside the window at all.
		result.ReminderNeeded = true

		switch {
		case current == nil:
			created, err := s.createUnpaidRecord(ctx, userID, currentKey, now)
			if err != nil {
				return nil, err
			}
			result.RecordCreated = created
		case s.isStalePaid(current, boundary):
			if err := s.resetToUnpaid(ctx, current); err != nil {
				return nil, err
			}
			result.RecordUpdated = true
		}
	}

	// Pre-block trigger is computed from the most recent payment ever,
	// independent of the freshness window, and fires only on the exact day.
	snapshot, err := s.snapshot(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	result.Snapshot = *snapshot

	if snapshot.BlockDate != nil && snapshot.DaysUntilBlock == s.config.Business.PreBlockDays {
		result.PreBlockReminderNeeded = true
	}

	return result, nil
}

// RunBatch evaluates every approved non-admin user and dispatches the
// reminders the evaluation flagged. Per-user failures are logged and
// skipped; the batch always completes and reports its counts.
func (s *ComplianceService) RunBatch(ctx context.Context, now time.Time) (*domain.BatchResult, error) {
	users, err := s.userRepo.ListPayable(ctx)
	if err != nil {
		return nil, customError.WrapDependencyFailure("list payable users", err)
	}

	result := &domain.BatchResult{UsersChecked: len(users)}

	for _, user := range users {
		eval, err := s.EvaluateUser(ctx, user.ID, now)
		if err != nil {
			slog.Error("compliance evaluation failed, skipping user",
				"user_id", user.ID, "error", err)
			result.UsersSkipped++
			continue
		}

		if eval.RecordCreated {
			result.RecordsCreated++
		}
		if eval.RecordUpdated {
			result.RecordsUpdated++
		}

		if eval.ReminderNeeded {
			if err := s.notifier.SendDueReminder(ctx, user.Email, user.Username); err != nil {
				slog.Error("due reminder dispatch failed",
					"user_id", user.ID, "error", err)
			} else {
				result.RemindersSent++
			}
		}

		if eval.PreBlockReminderNeeded && eval.Snapshot.BlockDate != nil && eval.Snapshot.LastPaidAt != nil {
			info := notifier.PreBlockInfo{
				LastPaidAt:     *eval.Snapshot.LastPaidAt,
				BlockDate:      *eval.Snapshot.BlockDate,
				DaysUntilBlock: eval.Snapshot.DaysUntilBlock,
			}
			if err := s.notifier.SendPreBlockReminder(ctx, user.Email, user.Username, info); err != nil {
				slog.Error("pre-block reminder dispatch failed",
					"user_id", user.ID, "error", err)
			} else {
				result.PreBlockRemindersSent++
			}
		}
	}

	slog.Info("reminder batch completed",
		"users_checked", result.UsersChecked,
		"reminders_sent", result.RemindersSent,
		"pre_block_reminders_sent", result.PreBlockRemindersSent,
		"records_created", result.RecordsCreated,
		"records_updated", result.RecordsUpdated,
		"users_skipped", result.UsersSkipped,
	)

	return result, nil
}

// GetStatus returns the user's payment standing for display.
func (s *ComplianceService) GetStatus(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.PaymentStatusResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.IsAdmin() {
		return &domain.PaymentStatusResponse{Status: domain.AccessStatusActive}, nil
	}

	snapshot, err := s.snapshot(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	status := domain.AccessStatusBlocked
	if snapshot.IsCompliant {
		status = domain.AccessStatusActive
	}

	return &domain.PaymentStatusResponse{
		Status:         status,
		LastPaymentAt:  snapshot.LastPaidAt,
		BlockDate:      snapshot.BlockDate,
		DaysUntilBlock: snapshot.DaysUntilBlock,
	}, nil
}

// snapshot derives the user's compliance view at time now. LastPaidAt only
// reflects payments inside the window; BlockDate uses the most recent paid
// record regardless of the window.
func (s *ComplianceService) snapshot(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.ComplianceSnapshot, error) {
	fresh, err := s.paymentRepo.GetLatestPaidSince(ctx, userID, period.LookbackBoundary(now))
	if err != nil {
		return nil, customError.WrapDependencyFailure("lookup fresh payment", err)
	}

	latest, err := s.paymentRepo.GetLatestPaid(ctx, userID)
	if err != nil {
		return nil, customError.WrapDependencyFailure("lookup latest payment", err)
	}

	snapshot := &domain.ComplianceSnapshot{}

	if fresh != nil && fresh.PaidAt != nil {
		snapshot.LastPaidAt = fresh.PaidAt
		snapshot.IsCompliant = true
	}

	if latest != nil && latest.PaidAt != nil {
		blockDate := period.BlockDate(*latest.PaidAt)
		snapshot.BlockDate = &blockDate
		snapshot.DaysUntilBlock = period.DaysUntilBlock(blockDate, now)
	}

	return snapshot, nil
}

// createUnpaidRecord lazily creates the current-period obligation. A
// uniqueness conflict means another writer got there first and is not an
// error; the returned bool is false in that case.
func (s *ComplianceService) createUnpaidRecord(ctx context.Context, userID uuid.UUID, periodKey, now time.Time) (bool, error) {
	record := &domain.PaymentRecord{
		ID:            uuid.New(),
		UserID:        userID,
		Amount:        s.config.GetMonthlyFee(),
		PeriodKey:     periodKey,
		Status:        domain.PaymentStatusUnpaid,
		PaymentMethod: s.config.Business.PaymentMethod,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}

	err := s.paymentRepo.Create(ctx, record)
	if errors.Is(err, customError.ErrRecordConflict) {
		return false, nil
	}
	if err != nil {
		return false, customError.WrapDependencyFailure("create payment record", err)
	}

	return true, nil
}

// resetToUnpaid flips a stale paid record back to unpaid, clearing paid_at.
func (s *ComplianceService) resetToUnpaid(ctx context.Context, record *domain.PaymentRecord) error {
	status := domain.PaymentStatusUnpaid
	patch := domain.PaymentPatch{
		Status:    &status,
		PaidAt:    nil,
		SetPaidAt: true,
	}

	if err := s.paymentRepo.Patch(ctx, record.ID, patch); err != nil {
		return customError.WrapDependencyFailure("reset payment record", err)
	}

	return nil
}

// isStalePaid reports whether the record claims paid but its paid_at no
// longer satisfies the freshness window.
func (s *ComplianceService) isStalePaid(record *domain.PaymentRecord, boundary time.Time) bool {
	if record.Status != domain.PaymentStatusPaid {
		return false
	}
	return record.PaidAt == nil || record.PaidAt.Before(boundary)
}
