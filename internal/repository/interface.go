package repository

import (
	"context"

	"github.com/digichit/digichit-server/internal/domain"
)

// UserRepository defines persistence operations for user accounts
type UserRepository interface {
	// Create inserts a new user; returns domain.ErrEmailTaken if the email is registered
	Create(ctx context.Context, user *domain.User) error

	// GetByID fetches a user by id
	GetByID(ctx context.Context, userID string) (*domain.User, error)

	// GetByEmail fetches a user by email (case-insensitive)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateProfile updates the name and/or email; empty values keep the stored ones
	UpdateProfile(ctx context.Context, userID, name, email string) (*domain.User, error)

	// Search returns up to limit users whose name or email contains query,
	// excluding the given user
	Search(ctx context.Context, query, excludeUserID string, limit int) ([]*domain.User, error)
}

// GroupRepository defines persistence operations for chit groups and their
// join requests. Mutating operations that depend on current membership run
// inside a single transaction holding a lock on the group row, so the
// capacity check and the mutation commit as one atomic unit.
type GroupRepository interface {
	// Create inserts a group with the admin as its first member;
	// returns domain.ErrDuplicateName if the admin already owns a group
	// with the same name (case-insensitive)
	Create(ctx context.Context, g *domain.Group) error

	// GetByID fetches a group with its member list and join requests
	GetByID(ctx context.Context, groupID string) (*domain.Group, error)

	// ListByMember returns summaries of all groups where the user is admin or member
	ListByMember(ctx context.Context, userID string) ([]domain.GroupSummary, error)

	// ListAvailable returns summaries of active groups with free slots the
	// user has not joined
	ListAvailable(ctx context.Context, userID string) ([]domain.GroupSummary, error)

	// AddJoinRequest appends a pending join request after re-checking the
	// group guards (active, capacity, membership, no pending duplicate)
	// against locked state
	AddJoinRequest(ctx context.Context, groupID, userID string) (*domain.JoinRequest, error)

	// RespondToRequest resolves a pending request. On approve it admits the
	// requester unless the group filled up in the meantime; on reject it
	// only flips the status. Either way the request becomes terminal.
	RespondToRequest(ctx context.Context, groupID, requestID, adminID string, approve bool) (*domain.JoinRequest, error)
}
