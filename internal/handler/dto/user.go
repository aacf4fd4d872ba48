// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"errors"
	"net/mail"
	"time"

	"github.com/daybook/daybook/internal/model"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CreateUserRequest represents the request body for registering a user.
type CreateUserRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Memo     *string `json:"memo,omitempty"`
}

// Validate checks the registration fields.
func (r CreateUserRequest) Validate() error {
	if r.Name == "" || len(r.Name) > 100 {
		return errors.New("name must be 1-100 characters")
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return errors.New("password must not be empty")
	}
	return nil
}

// UpdateUserRequest represents the request body for patching a user.
// Omitted fields are left unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Memo     *string `json:"memo,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// Validate checks the supplied fields.
func (r UpdateUserRequest) Validate() error {
	if r.Name != nil && (*r.Name == "" || len(*r.Name) > 100) {
		return errors.New("name must be 1-100 characters")
	}
	if r.Email != nil {
		if err := validateEmail(*r.Email); err != nil {
			return err
		}
	}
	if r.Password != nil && *r.Password == "" {
		return errors.New("password must not be empty")
	}
	return nil
}

// ToPatch converts the request into a domain patch.
func (r UpdateUserRequest) ToPatch() model.UserPatch {
	return model.UserPatch{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Memo:     r.Memo,
		IsActive: r.IsActive,
	}
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Memo      *string   `json:"memo,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenResponse represents a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Memo:      user.Memo,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToUserListResponse converts a slice of User models to response DTOs.
func ToUserListResponse(users []*model.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i, user := range users {
		responses[i] = *ToUserResponse(user)
	}
	return responses
}

func validateEmail(email string) error {
	if email == "" || len(email) > 255 {
		return errors.New("email must be 1-255 characters")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("email is not a valid address")
	}
	return nil
}
