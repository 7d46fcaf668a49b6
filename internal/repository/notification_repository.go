package repository

import (
	"github.com/agencydesk/agency-api/internal/database"
	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

// CreateBatch bulk-inserts notification rows in one transaction
func (r *GormNotificationRepository) CreateBatch(notifs []models.Notification) error {
	if len(notifs) == 0 {
		return nil
	}
	return r.db.Create(&notifs).Error
}

// ListByRecipient lists a user's notifications, unread first then newest first
func (r *GormNotificationRepository) ListByRecipient(userID uint64, unreadOnly bool, skip, limit int) ([]models.Notification, int64, error) {
	query := r.db.Model(&models.Notification{}).Where("recipient_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifs []models.Notification
	err := query.
		Order("is_read ASC, created_at DESC").
		Scopes(database.Paginate(utils.PaginationParams{Skip: skip, Limit: limit})).
		Preload("Actor").
		Find(&notifs).Error
	if err != nil {
		return nil, 0, err
	}
	return notifs, total, nil
}

// UnreadCount counts the user's unread notifications
func (r *GormNotificationRepository) UnreadCount(userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks one of the user's notifications read
func (r *GormNotificationRepository) MarkRead(id, userID uint64) error {
	result := r.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllRead marks all the user's notifications read
func (r *GormNotificationRepository) MarkAllRead(userID uint64) error {
	return r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

// ListUndispatched returns outbox rows not yet delivered, oldest first
func (r *GormNotificationRepository) ListUndispatched(limit int) ([]models.Notification, error) {
	var notifs []models.Notification
	err := r.db.
		Where("dispatched = ?", false).
		Order("id ASC").
		Limit(limit).
		Find(&notifs).Error
	if err != nil {
		return nil, err
	}
	return notifs, nil
}

// MarkDispatched flags the outbox rows delivered
func (r *GormNotificationRepository) MarkDispatched(ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.Notification{}).
		Where("id IN ?", ids).
		Update("dispatched", true).Error
}

// UpsertDevice registers an FCM token. A token re-registered from another
// account moves to the new owner.
func (r *GormNotificationRepository) UpsertDevice(device *models.UserDevice) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "fcm_token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "updated_at"}),
	}).Create(device).Error
}

// DeviceTokens returns the FCM tokens registered for the users
func (r *GormNotificationRepository) DeviceTokens(userIDs []uint64) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var tokens []string
	err := r.db.Model(&models.UserDevice{}).
		Where("user_id IN ?", userIDs).
		Pluck("fcm_token", &tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}
