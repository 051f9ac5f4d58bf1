package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fonyuygita/protrack-backend/internal/auth"
	"github.com/fonyuygita/protrack-backend/internal/config"
	"github.com/fonyuygita/protrack-backend/internal/domain"
	"github.com/fonyuygita/protrack-backend/internal/repository"
	"github.com/fonyuygita/protrack-backend/internal/service"
	"github.com/fonyuygita/protrack-backend/pkg/response"
)

type contextKey string

const userContextKey contextKey = "current_user"

// CurrentUser returns the authenticated user stored by Authenticate, or nil.
func CurrentUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

// Middleware bundles the request-path checks: token verification, the
// approval gate and the payment access gate.
type Middleware struct {
	tokens   *auth.TokenManager
	userRepo repository.UserRepository
	gate     *service.AccessGate
	config   *config.Config
}

func NewMiddleware(
	tokens *auth.TokenManager,
	userRepo repository.UserRepository,
	gate *service.AccessGate,
	config *config.Config,
) *Middleware {
	return &Middleware{
		tokens:   tokens,
		userRepo: userRepo,
		gate:     gate,
		config:   config,
	}
}

// Authenticate verifies the bearer token and loads the account. The account
// is re-read on every request so revoked approval takes effect immediately.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			response.Unauthorized(w, "missing or malformed authorization header")
			return
		}

		claims, err := m.tokens.Verify(tokenString, auth.TokenTypeAccess)
		if err != nil {
			response.Unauthorized(w, "invalid or expired token")
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.Unauthorized(w, "invalid or expired token")
			return
		}

		user, err := m.userRepo.GetByID(r.Context(), userID)
		if err != nil {
			response.Unauthorized(w, "account no longer exists")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireApproved rejects accounts still waiting for admin approval.
func (m *Middleware) RequireApproved(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		if user == nil {
			response.Unauthorized(w, "not authenticated")
			return
		}

		if !user.Approved && !user.IsAdmin() {
			response.Forbidden(w, "account pending admin approval")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequirePayment consults the access gate. The denial is a 402 carrying the
// amount due and payment instructions, distinct from 401/403.
func (m *Middleware) RequirePayment(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		if user == nil {
			response.Unauthorized(w, "not authenticated")
			return
		}

		if !m.gate.IsCompliant(r.Context(), user.ID, user.Role, time.Now()) {
			response.PaymentRequired(w, "your monthly subscription payment is due", map[string]interface{}{
				"amount_due":     m.config.GetMonthlyFee(),
				"payment_method": m.config.Business.PaymentMethod,
				"instructions":   m.config.Business.PaymentInstructions,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin restricts a route to admin accounts.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		if user == nil {
			response.Unauthorized(w, "not authenticated")
			return
		}

		if !user.IsAdmin() {
			response.Forbidden(w, "admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
