package handler

import (
	"encoding/json"
	"net/http"

	"github.com/digichit/digichit-server/internal/domain"
	"github.com/digichit/digichit-server/internal/service"
)

// AuthHandler handles registration and login endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// SignupRequest is the body of POST /api/auth/signup
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// SigninRequest is the body of POST /api/auth/signin
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the authenticated user and a signed token
type AuthResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, domain.CodeValidation, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, domain.CodeValidation, err.Error())
		return
	}

	user, token, err := h.authService.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, AuthResponse{User: user, Token: token})
}

// Signin handles POST /api/auth/signin
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, domain.CodeValidation, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, domain.CodeValidation, err.Error())
		return
	}

	user, token, err := h.authService.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, AuthResponse{User: user, Token: token})
}
