package dto

import "github.com/supportdesk/support-portal/internal/domain"

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the public view of a user. The password hash is never
// included.
type UserResponse struct {
	ID              int64       `json:"id"`
	Username        string      `json:"username"`
	Email           string      `json:"email"`
	PhoneNumber     *string     `json:"phoneNumber"`
	IsAgent         bool        `json:"isAgent"`
	Role            domain.Role `json:"role"`
	DisplayName     string      `json:"displayName"`
	ProfilePhotoURL *string     `json:"profilePhotoUrl"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		PhoneNumber:     u.PhoneNumber,
		IsAgent:         u.IsAgent,
		Role:            u.Role(),
		DisplayName:     u.DisplayName,
		ProfilePhotoURL: u.ProfilePhotoURL,
	}
}
