package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/fonyuygita/protrack-backend/internal/domain"
	"github.com/fonyuygita/protrack-backend/internal/repository"
	"github.com/fonyuygita/protrack-backend/pkg/period"
)

// AccessGate is the per-request payment check. It is a pure read over the
// payment store, decoupled from the evaluator's bookkeeping, and fails
// closed: any store error denies access rather than granting it on
// uncertainty.
type AccessGate struct {
	paymentRepo repository.PaymentRepository
	redis       *redis.Client
	cacheTTL    time.Duration
}

// NewAccessGate builds a gate. redis may be nil; caching is then disabled
// and every request hits the store.
func NewAccessGate(paymentRepo repository.PaymentRepository, redisClient *redis.Client, cacheTTL time.Duration) *AccessGate {
	return &AccessGate{
		paymentRepo: paymentRepo,
		redis:       redisClient,
		cacheTTL:    cacheTTL,
	}
}

const gateCacheKeyPrefix = "gate:compliant:"

// IsCompliant decides whether the user may pass. Admins bypass the payment
// check unconditionally; everyone else needs a paid record inside the
// trailing 30-day window.
func (g *AccessGate) IsCompliant(ctx context.Context, userID uuid.UUID, role string, now time.Time) bool {
	if role == domain.RoleAdmin {
		return true
	}

	if g.cached(ctx, userID) {
		return true
	}

	fresh, err := g.paymentRepo.GetLatestPaidSince(ctx, userID, period.LookbackBoundary(now))
	if err != nil {
		slog.Error("access gate store read failed, denying access",
			"user_id", userID, "error", err)
		return false
	}

	if fresh == nil || fresh.PaidAt == nil {
		return false
	}

	g.cache(ctx, userID, *fresh.PaidAt, now)
	return true
}

// cached reports a previously verified positive result. Only positive
// results are cached; a denial is always re-checked.
func (g *AccessGate) cached(ctx context.Context, userID uuid.UUID) bool {
	if g.redis == nil || g.cacheTTL <= 0 {
		return false
	}

	val, err := g.redis.Get(ctx, gateCacheKeyPrefix+userID.String()).Result()
	if err != nil {
		// cache miss or redis trouble; fall through to the store
		return false
	}

	return val == "1"
}

// cache stores the positive result. The TTL is capped at the time left until
// the true 30-day boundary, so a cached entry can never extend access past
// the block date by more than the configured TTL.
func (g *AccessGate) cache(ctx context.Context, userID uuid.UUID, paidAt, now time.Time) {
	if g.redis == nil || g.cacheTTL <= 0 {
		return
	}

	ttl := g.cacheTTL
	if remaining := period.BlockDate(paidAt).Sub(now); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return
	}

	if err := g.redis.Set(ctx, gateCacheKeyPrefix+userID.String(), "1", ttl).Err(); err != nil {
		slog.Warn("access gate cache write failed", "user_id", userID, "error", err)
	}
}
