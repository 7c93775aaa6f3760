package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/digichit/digichit-server/internal/domain"
	"github.com/digichit/digichit-server/internal/middleware"
	"github.com/digichit/digichit-server/internal/service"
)

// Join-request actions accepted by the respond endpoint
const (
	actionApprove = "approve"
	actionReject  = "reject"
)

// GroupHandler handles chit-group endpoints
type GroupHandler struct {
	groupService *service.GroupService
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groupService *service.GroupService) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
	}
}

// CreateGroupRequest is the body of POST /api/group/create
type CreateGroupRequest struct {
	Name          string `json:"name" validate:"required,min=3,max=100"`
	Description   string `json:"description" validate:"max=500"`
	Location      string `json:"location" validate:"max=200"`
	MonthlyAmount int64  `json:"monthly_amount" validate:"required,min=1000,max=100000"`
	TotalSlots    int    `json:"total_slots" validate:"omitempty,min=5,max=50"`
}

// GroupResponse wraps a single group detail projection
type GroupResponse struct {
	Group *domain.GroupDetail `json:"group"`
}

// GroupListResponse wraps a list of group summaries
type GroupListResponse struct {
	Groups []domain.GroupSummary `json:"groups"`
}

// JoinRequestResponse wraps a single join request
type JoinRequestResponse struct {
	Request *domain.JoinRequest `json:"request"`
}

// JoinRequestListResponse wraps the pending join requests of a group
type JoinRequestListResponse struct {
	Requests []domain.JoinRequest `json:"requests"`
}

// CreateGroup handles POST /api/group/create
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, domain.CodeValidation, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, domain.CodeValidation, err.Error())
		return
	}

	userID := middleware.GetUserIDFromContext(r.Context())

	group, err := h.groupService.CreateGroup(r.Context(), userID, service.CreateGroupInput{
		Name:          req.Name,
		Description:   req.Description,
		Location:      req.Location,
		MonthlyAmount: req.MonthlyAmount,
		TotalSlots:    req.TotalSlots,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	detail := group.Detail(userID)
	RespondWithJSON(w, r, http.StatusCreated, GroupResponse{Group: &detail})
}

// RequestJoin handles POST /api/group/request-join/{groupID}.
// POST /api/group/join/{groupID} is a deprecated alias with the same behavior:
// a direct join also goes through admin approval.
func (h *GroupHandler) RequestJoin(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	userID := middleware.GetUserIDFromContext(r.Context())

	request, err := h.groupService.RequestJoin(r.Context(), groupID, userID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, JoinRequestResponse{Request: request})
}

// ListRequests handles GET /api/group/requests/{groupID} (admin only)
func (h *GroupHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	userID := middleware.GetUserIDFromContext(r.Context())

	requests, err := h.groupService.ListPendingRequests(r.Context(), groupID, userID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, JoinRequestListResponse{Requests: requests})
}

// RespondRequestBody is the body of POST /api/group/requests/{groupID}/{requestID}
type RespondRequestBody struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
}

// RespondRequest handles POST /api/group/requests/{groupID}/{requestID} (admin only)
func (h *GroupHandler) RespondRequest(w http.ResponseWriter, r *http.Request) {
	var req RespondRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, domain.CodeValidation, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, domain.CodeValidation, "action must be approve or reject")
		return
	}

	groupID := chi.URLParam(r, "groupID")
	requestID := chi.URLParam(r, "requestID")
	userID := middleware.GetUserIDFromContext(r.Context())

	request, err := h.groupService.RespondToRequest(r.Context(), groupID, requestID, userID, req.Action == actionApprove)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, JoinRequestResponse{Request: request})
}

// MyGroups handles GET /api/group/my-groups
func (h *GroupHandler) MyGroups(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	groups, err := h.groupService.ListMine(r.Context(), userID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, GroupListResponse{Groups: groups})
}

// AvailableGroups handles GET /api/group/available
func (h *GroupHandler) AvailableGroups(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	groups, err := h.groupService.ListAvailable(r.Context(), userID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, GroupListResponse{Groups: groups})
}

// GroupDetails handles GET /api/group/{groupID}
func (h *GroupHandler) GroupDetails(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	userID := middleware.GetUserIDFromContext(r.Context())

	detail, err := h.groupService.GetDetails(r.Context(), groupID, userID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, GroupResponse{Group: detail})
}
