package repository

import (
	"time"

	"github.com/agencydesk/agency-api/internal/authz"
	"github.com/agencydesk/agency-api/internal/models"
)

// UserFilter holds filtering options for listing users
type UserFilter struct {
	Role   *models.UserRole
	Search string
	Skip   int
	Limit  int
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Scope      authz.Scope
	Status     *models.TaskStatus
	AssigneeID *uint64
	Search     string
	Skip       int
	Limit      int
}

// ChatPage selects a window of chat history. Zero BeforeID/AfterID means
// "latest Limit messages"; BeforeID pages backwards, AfterID forwards.
type ChatPage struct {
	Limit    int
	BeforeID uint64
	AfterID  uint64
}

// VaultFilter holds filtering options for listing vault files
type VaultFilter struct {
	MediaType string
	DateFrom  *time.Time
	DateTo    *time.Time
	Skip      int
	Limit     int
}

// SignatureFilter holds filtering options for listing signature requests
type SignatureFilter struct {
	Scope  authz.Scope
	Status *models.SignatureStatus
	Search string
	Skip   int
	Limit  int
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error

	// FindByID finds a non-deleted user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a non-deleted user by email
	FindByEmail(email string) (*models.User, error)

	// FindCreator finds an active, non-deleted digital_creator by ID
	FindCreator(id uint64) (*models.User, error)

	// List retrieves non-deleted users with filtering and pagination
	List(filter UserFilter) ([]models.User, int64, error)

	// ListAssignees lists the active creators visible under the scope
	ListAssignees(scope authz.Scope) ([]models.User, error)

	Update(user *models.User) error

	// Pair establishes the symmetric team_member/creator pairing, first
	// clearing both sides of any prior pairing of either party, atomically.
	Pair(member, creator *models.User) error

	// SoftDelete flags the user deleted and mutates email/username with the
	// suffix so the identifiers become reusable; clears any pairing.
	SoftDelete(user *models.User, suffix string) error

	// ExistsEmail reports whether a non-deleted user holds the email
	ExistsEmail(email string) (bool, error)

	// ExistsUsername reports whether a non-deleted user holds the username
	ExistsUsername(username string) (bool, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// CreateWithAttachments persists the task, its reference attachments,
	// and outbox notifications in one transaction
	CreateWithAttachments(task *models.Task, attachments []models.ContentVault, notifs []models.Notification) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks visible under the filter scope, annotated with
	// chat counts
	List(filter TaskFilter) ([]models.Task, int64, error)

	Update(task *models.Task) error

	// Delete removes the task and cascades to chat and attachments in the
	// same transaction
	Delete(id uint64) error

	// SubmitWork persists deliverables, chat rows, the task status change,
	// and outbox notifications in one transaction
	SubmitWork(task *models.Task, deliverables []models.ContentVault, chats []models.TaskChat, notifs []models.Notification) error

	// ApproveSubmission completes a task in review and approves its pending
	// deliverables in one transaction
	ApproveSubmission(task *models.Task, approverID uint64, notifs []models.Notification) error

	// ChatHistory returns a window of the task's chat log in ascending order
	ChatHistory(taskID uint64, page ChatPage) ([]models.TaskChat, error)

	CreateChat(msg *models.TaskChat) error
}

// VaultRepository defines the interface for content-vault data access
type VaultRepository interface {
	// Folders returns the uploaders visible under the scope, each annotated
	// with a file count
	Folders(scope authz.Scope) ([]models.User, error)

	// Files lists one uploader's files with media-type and date filters
	Files(ownerID uint64, filter VaultFilter) ([]models.ContentVault, int64, error)

	FindByID(id uint64, preload ...string) (*models.ContentVault, error)

	Update(file *models.ContentVault) error

	Delete(id uint64) error
}

// SignatureRepository defines the interface for signature-request data access
type SignatureRepository interface {
	Create(req *models.SignatureRequest) error

	FindByID(id uint64) (*models.SignatureRequest, error)

	List(filter SignatureFilter) ([]models.SignatureRequest, int64, error)

	Update(req *models.SignatureRequest) error

	Delete(id uint64) error

	// ExpireOverdue marks pending requests past their deadline expired and
	// returns the affected rows
	ExpireOverdue(now time.Time) ([]models.SignatureRequest, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// CreateBatch bulk-inserts notification rows in one transaction
	CreateBatch(notifs []models.Notification) error

	// ListByRecipient lists a user's notifications, unread first
	ListByRecipient(userID uint64, unreadOnly bool, skip, limit int) ([]models.Notification, int64, error)

	UnreadCount(userID uint64) (int64, error)

	MarkRead(id, userID uint64) error

	MarkAllRead(userID uint64) error

	// ListUndispatched returns outbox rows not yet delivered
	ListUndispatched(limit int) ([]models.Notification, error)

	MarkDispatched(ids []uint64) error

	// UpsertDevice registers an FCM token, stealing it from a previous user
	// if re-registered
	UpsertDevice(device *models.UserDevice) error

	// DeviceTokens returns the FCM tokens registered for the users
	DeviceTokens(userIDs []uint64) ([]string, error)
}

// AnnouncementRepository defines the interface for announcement data access
type AnnouncementRepository interface {
	CreateWithAttachments(a *models.Announcement, attachments []models.AnnouncementAttachment) error

	// Feed returns announcements newest-first; beforeID pages older entries
	Feed(beforeID uint64, limit int) ([]models.Announcement, error)

	FindByID(id uint64) (*models.Announcement, error)

	// Delete removes the announcement and cascades to attachments and
	// reactions in one transaction
	Delete(id uint64) error

	React(r *models.AnnouncementReaction) error

	Unreact(announcementID, userID uint64, emoji string) error
}

// AuthRepository defines the interface for refresh-token and OTP storage
type AuthRepository interface {
	SaveRefreshToken(rt *models.RefreshToken) error

	FindRefreshToken(token string) (*models.RefreshToken, error)

	RevokeRefreshToken(token string) error

	RevokeAllForUser(userID uint64) error

	CreateOTP(otp *models.OTP) error

	// FindValidOTP finds an unused, unexpired code for the email and purpose
	FindValidOTP(email, code, purpose string, now time.Time) (*models.OTP, error)

	MarkOTPUsed(otp *models.OTP) error
}
