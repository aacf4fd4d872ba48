// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/daybook/daybook/internal/auth"
	"github.com/daybook/daybook/internal/metrics"
	"github.com/daybook/daybook/internal/model"
	"github.com/daybook/daybook/internal/repository"
)

// User service errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User listing defaults and bounds.
const (
	defaultUserLimit = 20
	maxUserLimit     = 100
)

// UserService handles user account business logic.
type UserService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(repo *repository.Repository, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		repo:    repo,
		metrics: recorder,
	}
}

// CreateUserInput defines input for registering a user.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Memo     *string
}

// CreateUser registers a new user with a hashed password.
// A duplicate email surfaces as ErrEmailExists.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           model.NewID(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Memo:         input.Memo,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListUsers retrieves users with offset pagination in insertion order.
func (s *UserService) ListUsers(ctx context.Context, skip, limit int) ([]*model.User, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > maxUserLimit {
		limit = defaultUserLimit
	}

	users, err := s.repo.ListUsers(ctx, skip, limit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}

// UpdateUser applies a partial update to a user.
// Only supplied fields are mutated; a supplied password is re-hashed
// before storage.
func (s *UserService) UpdateUser(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(user)

	if patch.Password != nil {
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailExists
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// DeleteUser hard-deletes a user account.
// The user's notes are deleted in the same transaction and tags orphaned
// by that are swept.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// Authenticate verifies a user's credentials.
// Any verification failure, including a malformed stored hash, surfaces
// as ErrInvalidCredentials; the underlying cause is never exposed.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailed()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		s.metrics.IncLoginFailed()
		return nil, ErrInvalidCredentials
	}

	s.metrics.IncLoginSucceeded()

	return user, nil
}
