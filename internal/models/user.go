package models

import "time"

type UserRole string

const (
	RoleAdmin          UserRole = "admin"
	RoleManager        UserRole = "manager"
	RoleTeamMember     UserRole = "team_member"
	RoleDigitalCreator UserRole = "digital_creator"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleTeamMember, RoleDigitalCreator:
		return true
	}
	return false
}

type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountDeleted   AccountStatus = "deleted"
)

func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountActive, AccountSuspended, AccountDeleted:
		return true
	}
	return false
}

// User is both an identity and a node in the organizational hierarchy.
// ManagerID links a digital_creator (or team_member) to its manager;
// AssignedModelID is the symmetric 1:1 pairing between a team_member and
// the creator they operate for. Soft delete is an explicit flag so deleted
// rows stay addressable for audit joins.
type User struct {
	ID                uint64        `gorm:"primarykey" json:"id"`
	Email             string        `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Username          *string       `gorm:"type:varchar(50);uniqueIndex" json:"username"`
	FullName          string        `gorm:"type:varchar(100)" json:"full_name"`
	Role              UserRole      `gorm:"type:varchar(20);not null" json:"role"`
	AccountStatus     AccountStatus `gorm:"type:varchar(20);not null;default:'active'" json:"account_status"`
	ManagerID         *uint64       `gorm:"index" json:"manager_id"`
	AssignedModelID   *uint64       `gorm:"index" json:"assigned_model_id"`
	PasswordHash      string        `gorm:"type:varchar(255)" json:"-"`
	Phone             string        `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Bio               string        `gorm:"type:text" json:"bio,omitempty"`
	ProfilePictureURL string        `gorm:"type:varchar(500)" json:"profile_picture_url,omitempty"`
	LastLogin         *time.Time    `json:"last_login,omitempty"`
	IsDeleted         bool          `gorm:"not null;default:false;index" json:"-"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`

	// Relations
	Manager       *User `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	AssignedModel *User `gorm:"foreignKey:AssignedModelID" json:"assigned_model,omitempty"`

	// FileCount annotates content-vault folder listings; never persisted.
	FileCount int64 `gorm:"-" json:"file_count,omitempty"`
}

func (u *User) IsActive() bool {
	return !u.IsDeleted && u.AccountStatus == AccountActive
}
