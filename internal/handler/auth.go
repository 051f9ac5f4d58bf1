package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fonyuygita/protrack-backend/internal/domain"
	"github.com/fonyuygita/protrack-backend/internal/service"
	"github.com/fonyuygita/protrack-backend/pkg/response"
)

type AuthHandler struct {
	auth      *service.AuthService
	validator *validator.Validate
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		validator: validator.New(),
	}
}

// Register creates an account pending admin approval.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var request domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	user, err := h.auth.Register(r.Context(), &request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, user)
}

// Login exchanges credentials for a token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	result, err := h.auth.Login(r.Context(), &request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, result)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh exchanges a refresh token for a fresh pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var request refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	tokens, err := h.auth.Refresh(r.Context(), request.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, tokens)
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	response.Success(w, user)
}

type approveRequest struct {
	Approved bool `json:"approved"`
}

// Approve flips the approval flag on an account. Admin only.
func (h *AuthHandler) Approve(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		response.BadRequest(w, "invalid user id", err)
		return
	}

	request := approveRequest{Approved: true}
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			response.BadRequest(w, "invalid request body", err)
			return
		}
	}

	if err := h.auth.ApproveUser(r.Context(), userID, request.Approved); err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, map[string]bool{"approved": request.Approved})
}
