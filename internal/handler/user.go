package handler

import (
	"encoding/json"
	"net/http"

	"github.com/digichit/digichit-server/internal/domain"
	"github.com/digichit/digichit-server/internal/middleware"
	"github.com/digichit/digichit-server/internal/service"
)

// UserHandler handles profile and user search endpoints
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// UserResponse wraps a single user
type UserResponse struct {
	User *domain.User `json:"user"`
}

// Me handles GET /api/auth/me and GET /api/auth/profile
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, UserResponse{User: user})
}

// UpdateProfileRequest is the body of PUT /api/auth/profile
type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"omitempty,min=2,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
}

// UpdateProfile handles PUT /api/auth/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, domain.CodeValidation, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, domain.CodeValidation, err.Error())
		return
	}

	userID := middleware.GetUserIDFromContext(r.Context())

	user, err := h.userService.UpdateProfile(r.Context(), userID, req.Name, req.Email)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, UserResponse{User: user})
}

// SearchUsersResponse carries public projections of matched users
type SearchUsersResponse struct {
	Users []domain.UserRef `json:"users"`
}

// SearchUsers handles GET /api/auth/search-users?q=...
func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		RespondWithError(w, r, http.StatusBadRequest, domain.CodeValidation, "q query parameter is required")
		return
	}

	userID := middleware.GetUserIDFromContext(r.Context())

	users, err := h.userService.Search(r.Context(), query, userID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, SearchUsersResponse{Users: users})
}
