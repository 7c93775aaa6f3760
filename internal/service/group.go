package service

import (
	"context"

	"github.com/digichit/digichit-server/internal/domain"
	"github.com/digichit/digichit-server/internal/repository"
)

// GroupService handles the chit-group lifecycle: creation, the join-request
// workflow and the read-side projections.
//
// Guard checks run twice on purpose: once here against a loaded snapshot for
// precise error reporting, and once more inside the repository transaction
// against the locked group row. The second pass is the one that counts when
// two requests race.
type GroupService struct {
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
}

// NewGroupService creates a new GroupService
func NewGroupService(groupRepo repository.GroupRepository, userRepo repository.UserRepository) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
	}
}

// CreateGroupInput carries the validated fields for group creation
type CreateGroupInput struct {
	Name          string
	Description   string
	Location      string
	MonthlyAmount int64
	TotalSlots    int
}

// CreateGroup creates a chit group owned and administered by adminID
func (s *GroupService) CreateGroup(ctx context.Context, adminID string, in CreateGroupInput) (*domain.Group, error) {
	admin, err := s.userRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}

	if in.TotalSlots == 0 {
		in.TotalSlots = domain.DefaultTotalSlots
	}

	group := &domain.Group{
		Name:          in.Name,
		Description:   in.Description,
		Location:      in.Location,
		Admin:         admin.Ref(),
		MonthlyAmount: in.MonthlyAmount,
		TotalSlots:    in.TotalSlots,
		IsActive:      true,
	}

	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}

	group.Members = []domain.UserRef{admin.Ref()}
	return group, nil
}

// RequestJoin submits a pending join request for userID
func (s *GroupService) RequestJoin(ctx context.Context, groupID, userID string) (*domain.JoinRequest, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if !group.IsActive {
		return nil, domain.ErrGroupInactive
	}
	if group.IsMember(userID) {
		return nil, domain.ErrAlreadyMember
	}
	if group.IsFull() {
		return nil, domain.ErrGroupFull
	}
	if group.HasPendingRequest(userID) {
		return nil, domain.ErrDuplicateRequest
	}

	return s.groupRepo.AddJoinRequest(ctx, groupID, userID)
}

// RespondToRequest lets the group admin approve or reject a pending request
func (s *GroupService) RespondToRequest(ctx context.Context, groupID, requestID, actingUserID string, approve bool) (*domain.JoinRequest, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if !group.IsAdmin(actingUserID) {
		return nil, domain.ErrForbidden
	}

	var request *domain.JoinRequest
	for i := range group.JoinRequests {
		if group.JoinRequests[i].RequestID == requestID {
			request = &group.JoinRequests[i]
			break
		}
	}
	if request == nil {
		return nil, domain.ErrRequestNotFound
	}
	if !request.IsPending() {
		return nil, domain.ErrAlreadyProcessed
	}
	if approve && group.IsFull() {
		return nil, domain.ErrGroupFull
	}

	return s.groupRepo.RespondToRequest(ctx, groupID, requestID, actingUserID, approve)
}

// ListPendingRequests returns the pending join requests of a group, admin only
func (s *GroupService) ListPendingRequests(ctx context.Context, groupID, actingUserID string) ([]domain.JoinRequest, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if !group.IsAdmin(actingUserID) {
		return nil, domain.ErrForbidden
	}

	return group.PendingRequests(), nil
}

// ListMine returns summaries of all groups the user belongs to
func (s *GroupService) ListMine(ctx context.Context, userID string) ([]domain.GroupSummary, error) {
	return s.groupRepo.ListByMember(ctx, userID)
}

// ListAvailable returns summaries of groups the user could request to join
func (s *GroupService) ListAvailable(ctx context.Context, userID string) ([]domain.GroupSummary, error) {
	return s.groupRepo.ListAvailable(ctx, userID)
}

// GetDetails returns the full group view for an admin or member
func (s *GroupService) GetDetails(ctx context.Context, groupID, userID string) (*domain.GroupDetail, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if !group.IsAdmin(userID) && !group.IsMember(userID) {
		return nil, domain.ErrForbidden
	}

	detail := group.Detail(userID)
	return &detail, nil
}
