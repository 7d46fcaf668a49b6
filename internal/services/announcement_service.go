package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/agencydesk/agency-api/internal/apperrors"
	"github.com/agencydesk/agency-api/internal/authz"
	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/repository"
)

// AnnouncementService handles the org-wide announcement feed
type AnnouncementService struct {
	annRepo repository.AnnouncementRepository
}

// NewAnnouncementService creates a new AnnouncementService
func NewAnnouncementService(annRepo repository.AnnouncementRepository) *AnnouncementService {
	return &AnnouncementService{annRepo: annRepo}
}

// CreateAnnouncementInput represents input for posting an announcement
type CreateAnnouncementInput struct {
	Content     string
	Attachments []FileInput
}

// CreateAnnouncement posts to the feed. Admins and managers only.
func (s *AnnouncementService) CreateAnnouncement(actor *models.User, input CreateAnnouncementInput) (*models.Announcement, error) {
	if !authz.CanManageUsers(actor) {
		return nil, apperrors.Authorization("only admins and managers can post announcements")
	}
	if strings.TrimSpace(input.Content) == "" && len(input.Attachments) == 0 {
		return nil, apperrors.Validation("announcement needs content or attachments")
	}

	attachments := make([]models.AnnouncementAttachment, 0, len(input.Attachments))
	for _, f := range input.Attachments {
		if f.FileURL == "" {
			return nil, apperrors.Validation("attachment file_url is required")
		}
		attachments = append(attachments, models.AnnouncementAttachment{
			FileURL:      f.FileURL,
			MimeType:     f.MimeType,
			FileSizeMB:   f.FileSizeMB,
			ThumbnailURL: f.ThumbnailURL,
		})
	}

	announcement := &models.Announcement{
		AuthorID: actor.ID,
		Content:  strings.TrimSpace(input.Content),
	}
	if err := s.annRepo.CreateWithAttachments(announcement, attachments); err != nil {
		return nil, apperrors.Persistence(err)
	}
	announcement.Author = actor
	return announcement, nil
}

// Feed returns announcements newest-first; beforeID pages older entries
func (s *AnnouncementService) Feed(beforeID uint64, limit int) ([]models.Announcement, error) {
	feed, err := s.annRepo.Feed(beforeID, limit)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	return feed, nil
}

// DeleteAnnouncement removes a post. Author or admin only.
func (s *AnnouncementService) DeleteAnnouncement(actor *models.User, id uint64) error {
	announcement, err := s.annRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("announcement not found")
		}
		return apperrors.Persistence(err)
	}
	if actor.Role != models.RoleAdmin && announcement.AuthorID != actor.ID {
		return apperrors.Authorization("only the author or an admin can delete an announcement")
	}
	if err := s.annRepo.Delete(id); err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}

// React records an emoji reaction; repeats are idempotent
func (s *AnnouncementService) React(actor *models.User, announcementID uint64, emoji string) error {
	if emoji == "" {
		return apperrors.Validation("emoji is required")
	}
	if _, err := s.annRepo.FindByID(announcementID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("announcement not found")
		}
		return apperrors.Persistence(err)
	}
	if err := s.annRepo.React(&models.AnnouncementReaction{
		AnnouncementID: announcementID,
		UserID:         actor.ID,
		Emoji:          emoji,
	}); err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}

// Unreact removes the actor's emoji reaction
func (s *AnnouncementService) Unreact(actor *models.User, announcementID uint64, emoji string) error {
	if err := s.annRepo.Unreact(announcementID, actor.ID, emoji); err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}
