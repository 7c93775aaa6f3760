package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/digichit/digichit-server/internal/domain"
)

// In-memory repositories mirroring the guard semantics of the postgres
// implementations, so workflow tests exercise the same error surface.

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailTaken
		}
	}
	if user.UserID == "" {
		user.UserID = uuid.NewString()
	}
	user.CreatedAt = time.Now().UTC()
	clone := *user
	r.users[user.UserID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID string) (*domain.User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, userID, name, email string) (*domain.User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = email
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) Search(_ context.Context, query, excludeUserID string, limit int) ([]*domain.User, error) {
	matches := []*domain.User{}
	q := strings.ToLower(query)
	for _, u := range r.users {
		if u.UserID == excludeUserID {
			continue
		}
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q) {
			clone := *u
			matches = append(matches, &clone)
			if len(matches) == limit {
				break
			}
		}
	}
	return matches, nil
}

type fakeGroupRepo struct {
	users  *fakeUserRepo
	groups map[string]*domain.Group
}

func newFakeGroupRepo(users *fakeUserRepo) *fakeGroupRepo {
	return &fakeGroupRepo{users: users, groups: map[string]*domain.Group{}}
}

func cloneGroup(g *domain.Group) *domain.Group {
	clone := *g
	clone.Members = append([]domain.UserRef{}, g.Members...)
	clone.JoinRequests = append([]domain.JoinRequest{}, g.JoinRequests...)
	return &clone
}

func (r *fakeGroupRepo) Create(_ context.Context, g *domain.Group) error {
	for _, existing := range r.groups {
		if existing.Admin.UserID == g.Admin.UserID && strings.EqualFold(existing.Name, g.Name) {
			return domain.ErrDuplicateName
		}
	}
	now := time.Now().UTC()
	g.GroupID = uuid.NewString()
	g.CreatedAt = now
	g.UpdatedAt = now

	stored := cloneGroup(g)
	stored.Members = []domain.UserRef{g.Admin}
	r.groups[g.GroupID] = stored
	return nil
}

func (r *fakeGroupRepo) GetByID(_ context.Context, groupID string) (*domain.Group, error) {
	g, ok := r.groups[groupID]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	return cloneGroup(g), nil
}

func (r *fakeGroupRepo) ListByMember(_ context.Context, userID string) ([]domain.GroupSummary, error) {
	summaries := []domain.GroupSummary{}
	for _, g := range r.groups {
		if g.IsMember(userID) {
			summaries = append(summaries, g.Summary())
		}
	}
	return summaries, nil
}

func (r *fakeGroupRepo) ListAvailable(_ context.Context, userID string) ([]domain.GroupSummary, error) {
	summaries := []domain.GroupSummary{}
	for _, g := range r.groups {
		if g.IsActive && !g.IsMember(userID) && !g.IsFull() {
			summaries = append(summaries, g.Summary())
		}
	}
	return summaries, nil
}

func (r *fakeGroupRepo) AddJoinRequest(ctx context.Context, groupID, userID string) (*domain.JoinRequest, error) {
	g, ok := r.groups[groupID]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	if !g.IsActive {
		return nil, domain.ErrGroupInactive
	}
	if g.IsMember(userID) {
		return nil, domain.ErrAlreadyMember
	}
	if g.IsFull() {
		return nil, domain.ErrGroupFull
	}
	if g.HasPendingRequest(userID) {
		return nil, domain.ErrDuplicateRequest
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	jr := domain.JoinRequest{
		RequestID:   uuid.NewString(),
		GroupID:     groupID,
		User:        user.Ref(),
		Status:      domain.RequestPending,
		RequestedAt: time.Now().UTC(),
	}
	g.JoinRequests = append(g.JoinRequests, jr)

	clone := jr
	return &clone, nil
}

func (r *fakeGroupRepo) RespondToRequest(_ context.Context, groupID, requestID, adminID string, approve bool) (*domain.JoinRequest, error) {
	g, ok := r.groups[groupID]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}

	var jr *domain.JoinRequest
	for i := range g.JoinRequests {
		if g.JoinRequests[i].RequestID == requestID {
			jr = &g.JoinRequests[i]
			break
		}
	}
	if jr == nil {
		return nil, domain.ErrRequestNotFound
	}
	if !jr.IsPending() {
		return nil, domain.ErrAlreadyProcessed
	}

	if approve {
		if g.IsFull() {
			return nil, domain.ErrGroupFull
		}
		g.Members = append(g.Members, jr.User)
		jr.Status = domain.RequestApproved
	} else {
		jr.Status = domain.RequestRejected
	}

	now := time.Now().UTC()
	jr.RespondedAt = &now
	jr.RespondedBy = adminID

	clone := *jr
	return &clone, nil
}
