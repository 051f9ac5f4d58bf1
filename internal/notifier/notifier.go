package notifier

import (
	"context"
	"time"
)

// PreBlockInfo carries the context rendered into a pre-block reminder.
type PreBlockInfo struct {
	LastPaidAt     time.Time
	BlockDate      time.Time
	DaysUntilBlock int
}

// Notifier dispatches templated reminder emails. Calls are fire-and-forget
// from the compliance engine's perspective: a failed send is logged by the
// caller and never retried, and it does not roll back record mutations that
// were already committed.
type Notifier interface {
	// SendDueReminder notifies a user that the current month's payment is due
	SendDueReminder(ctx context.Context, email, displayName string) error

	// SendPreBlockReminder warns a user that access lapses in a few days
	SendPreBlockReminder(ctx context.Context, email, displayName string, info PreBlockInfo) error
}
