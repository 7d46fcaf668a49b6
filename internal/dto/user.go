package dto

import (
	"time"

	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID                uint64               `json:"id"`
	Email             string               `json:"email"`
	Username          *string              `json:"username,omitempty"`
	FullName          string               `json:"full_name"`
	Role              models.UserRole      `json:"role"`
	AccountStatus     models.AccountStatus `json:"account_status"`
	ManagerID         *uint64              `json:"manager_id,omitempty"`
	AssignedModelID   *uint64              `json:"assigned_model_id,omitempty"`
	Phone             string               `json:"phone,omitempty"`
	Bio               string               `json:"bio,omitempty"`
	ProfilePictureURL string               `json:"profile_picture_url,omitempty"`
	LastLogin         *time.Time           `json:"last_login,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
}

// UserRefDTO is the minimal user shape embedded in other resources
type UserRefDTO struct {
	ID                uint64          `json:"id"`
	FullName          string          `json:"full_name"`
	Role              models.UserRole `json:"role"`
	ProfilePictureURL string          `json:"profile_picture_url,omitempty"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users      []UserDTO                `json:"users"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:                user.ID,
		Email:             user.Email,
		Username:          user.Username,
		FullName:          user.FullName,
		Role:              user.Role,
		AccountStatus:     user.AccountStatus,
		ManagerID:         user.ManagerID,
		AssignedModelID:   user.AssignedModelID,
		Phone:             user.Phone,
		Bio:               user.Bio,
		ProfilePictureURL: user.ProfilePictureURL,
		LastLogin:         user.LastLogin,
		CreatedAt:         user.CreatedAt,
	}
}

// ToUserDTOs converts a slice of User models
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = ToUserDTO(u)
	}
	return dtos
}

// ToUserRefDTO converts a User model to its embedded reference shape
func ToUserRefDTO(user *models.User) *UserRefDTO {
	if user == nil {
		return nil
	}
	return &UserRefDTO{
		ID:                user.ID,
		FullName:          user.FullName,
		Role:              user.Role,
		ProfilePictureURL: user.ProfilePictureURL,
	}
}
