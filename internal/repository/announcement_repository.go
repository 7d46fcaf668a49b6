package repository

import (
	"github.com/agencydesk/agency-api/internal/models"
	"gorm.io/gorm"
)

// GormAnnouncementRepository is a GORM implementation of AnnouncementRepository
type GormAnnouncementRepository struct {
	db *gorm.DB
}

// NewAnnouncementRepository creates a new AnnouncementRepository
func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &GormAnnouncementRepository{db: db}
}

// CreateWithAttachments persists the announcement and its attachments in
// one transaction
func (r *GormAnnouncementRepository) CreateWithAttachments(a *models.Announcement, attachments []models.AnnouncementAttachment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		if len(attachments) > 0 {
			for i := range attachments {
				attachments[i].AnnouncementID = a.ID
			}
			if err := tx.Create(&attachments).Error; err != nil {
				return err
			}
			a.Attachments = attachments
		}
		return nil
	})
}

// Feed returns announcements newest-first; beforeID pages older entries
func (r *GormAnnouncementRepository) Feed(beforeID uint64, limit int) ([]models.Announcement, error) {
	query := r.db.Model(&models.Announcement{})
	if beforeID > 0 {
		query = query.Where("id < ?", beforeID)
	}

	var announcements []models.Announcement
	err := query.
		Order("id DESC").
		Limit(limit).
		Preload("Author").
		Preload("Attachments").
		Preload("Reactions").
		Preload("Reactions.User").
		Find(&announcements).Error
	if err != nil {
		return nil, err
	}
	return announcements, nil
}

// FindByID finds an announcement with author, attachments and reactions
func (r *GormAnnouncementRepository) FindByID(id uint64) (*models.Announcement, error) {
	var a models.Announcement
	err := r.db.
		Preload("Author").
		Preload("Attachments").
		Preload("Reactions").
		First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Delete removes the announcement and cascades to attachments and
// reactions in one transaction
func (r *GormAnnouncementRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("announcement_id = ?", id).Delete(&models.AnnouncementReaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("announcement_id = ?", id).Delete(&models.AnnouncementAttachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Announcement{}, id).Error
	})
}

// React records an emoji reaction. Repeats of the same emoji by the same
// user are kept idempotent.
func (r *GormAnnouncementRepository) React(reaction *models.AnnouncementReaction) error {
	var existing models.AnnouncementReaction
	err := r.db.
		Where("announcement_id = ? AND user_id = ? AND emoji = ?",
			reaction.AnnouncementID, reaction.UserID, reaction.Emoji).
		First(&existing).Error
	if err == nil {
		*reaction = existing
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return r.db.Create(reaction).Error
}

// Unreact removes the user's emoji reaction
func (r *GormAnnouncementRepository) Unreact(announcementID, userID uint64, emoji string) error {
	return r.db.
		Where("announcement_id = ? AND user_id = ? AND emoji = ?", announcementID, userID, emoji).
		Delete(&models.AnnouncementReaction{}).Error
}
