package domain

import "strings"

// RoleAdmin grants access to the admin dashboard. Any other role is free-form text.
const RoleAdmin = "admin"

// User is a registered account. Password holds whatever the configured hasher stores.
type User struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	Role           string  `json:"role"`
	Location       string  `json:"location"`
	Experience     string  `json:"experience"`
	Phone          *string `json:"phone,omitempty"`
	ProfilePicture *string `json:"profilePicture"`
}

// IsAdmin reports whether the user has elevated access.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// EmailMatches compares emails case-insensitively, ignoring surrounding spaces.
func (u User) EmailMatches(email string) bool {
	return strings.EqualFold(strings.TrimSpace(u.Email), strings.TrimSpace(email))
}

// NewUser carries registration data.
type NewUser struct {
	Username   string
	Email      string
	Password   string
	Role       string
	Location   string
	Experience string
	Phone      *string
}

// UserPatch describes a profile edit or a password change. A patch carrying both
// CurrentPassword and NewPassword is a password change and ignores the other fields.
type UserPatch struct {
	Username        *string
	Email           *string
	Role            *string
	Location        *string
	Experience      *string
	Phone           *string
	ProfilePicture  *string
	CurrentPassword string
	NewPassword     string
}

// IsPasswordChange reports whether the patch selects the password-change mode.
func (p UserPatch) IsPasswordChange() bool {
	return p.CurrentPassword != "" && p.NewPassword != ""
}
