package service

import (
	"context"

	"github.com/digichit/digichit-server/internal/domain"
	"github.com/digichit/digichit-server/internal/repository"
)

const searchLimit = 10

// UserService handles business logic for user accounts
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// GetByID retrieves a user by id
func (s *UserService) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile updates the caller's name and/or email
func (s *UserService) UpdateProfile(ctx context.Context, userID, name, email string) (*domain.User, error) {
	return s.userRepo.UpdateProfile(ctx, userID, name, email)
}

// Search returns public projections of users matching the query, excluding the caller
func (s *UserService) Search(ctx context.Context, query, callerID string) ([]domain.UserRef, error) {
	users, err := s.userRepo.Search(ctx, query, callerID, searchLimit)
	if err != nil {
		return nil, err
	}

	refs := make([]domain.UserRef, 0, len(users))
	for _, u := range users {
		refs = append(refs, u.Ref())
	}
	return refs, nil
}
