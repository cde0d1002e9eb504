package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/job-search-service/internal/domain"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Username   string  `json:"username" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required"`
	Role       string  `json:"role" validate:"omitempty,ne_ignore_case=admin"`
	Location   string  `json:"location"`
	Experience string  `json:"experience"`
	Phone      *string `json:"phone"`
}

// ToNewUser converts the payload for the session cache.
func (r UserRegisterRequest) ToNewUser() domain.NewUser {
	return domain.NewUser{
		Username:   r.Username,
		Email:      r.Email,
		Password:   r.Password,
		Role:       r.Role,
		Location:   r.Location,
		Experience: r.Experience,
		Phone:      r.Phone,
	}
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdateRequest carries the fields to merge; absent fields are kept.
type ProfileUpdateRequest struct {
	Username       *string `json:"username"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Role           *string `json:"role"`
	Location       *string `json:"location"`
	Experience     *string `json:"experience"`
	Phone          *string `json:"phone"`
	ProfilePicture *string `json:"profilePicture"`
}

// GrantsAdmin reports whether the patch would set the admin role.
func (r ProfileUpdateRequest) GrantsAdmin() bool {
	return r.Role != nil && strings.EqualFold(strings.TrimSpace(*r.Role), domain.RoleAdmin)
}

// ToPatch converts the payload into a profile patch.
func (r ProfileUpdateRequest) ToPatch() domain.UserPatch {
	return domain.UserPatch{
		Username:       r.Username,
		Email:          r.Email,
		Role:           r.Role,
		Location:       r.Location,
		Experience:     r.Experience,
		Phone:          r.Phone,
		ProfilePicture: r.ProfilePicture,
	}
}

// PasswordChangeRequest payload for POST /me/password.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// AccountDeleteRequest payload for DELETE /me.
type AccountDeleteRequest struct {
	Password string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is a user without the stored password.
type UserResponse struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	Role           string  `json:"role"`
	Location       string  `json:"location"`
	Experience     string  `json:"experience"`
	Phone          string  `json:"phone"`
	ProfilePicture *string `json:"profilePicture"`
	IsAdmin        bool    `json:"isAdmin"`
}

const phoneNotSet = "Not set"

// NewUserResponse hides the password and fills display defaults for older records.
func NewUserResponse(u *domain.User) UserResponse {
	phone := phoneNotSet
	if u.Phone != nil && *u.Phone != "" {
		phone = *u.Phone
	}
	return UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Role:           u.Role,
		Location:       u.Location,
		Experience:     u.Experience,
		Phone:          phone,
		ProfilePicture: u.ProfilePicture,
		IsAdmin:        u.IsAdmin(),
	}
}
