package dto

import (
	"time"

	"github.com/agencydesk/agency-api/internal/models"
)

// AnnouncementDTO represents a feed post in API responses
type AnnouncementDTO struct {
	ID          uint64                      `json:"id"`
	Content     string                      `json:"content"`
	CreatedAt   time.Time                   `json:"created_at"`
	Author      *UserRefDTO                 `json:"author,omitempty"`
	Attachments []AnnouncementAttachmentDTO `json:"attachments,omitempty"`

	// Reactions grouped by emoji with the reacting user ids.
	Reactions map[string][]uint64 `json:"reactions,omitempty"`
}

// AnnouncementAttachmentDTO represents a feed post attachment
type AnnouncementAttachmentDTO struct {
	ID           uint64  `json:"id"`
	FileURL      string  `json:"file_url"`
	MimeType     string  `json:"mime_type,omitempty"`
	FileSizeMB   float64 `json:"file_size_mb,omitempty"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
}

// ToAnnouncementDTO converts an Announcement model to AnnouncementDTO
func ToAnnouncementDTO(a models.Announcement) AnnouncementDTO {
	dto := AnnouncementDTO{
		ID:        a.ID,
		Content:   a.Content,
		CreatedAt: a.CreatedAt,
		Author:    ToUserRefDTO(a.Author),
	}
	for _, att := range a.Attachments {
		dto.Attachments = append(dto.Attachments, AnnouncementAttachmentDTO{
			ID:           att.ID,
			FileURL:      att.FileURL,
			MimeType:     att.MimeType,
			FileSizeMB:   att.FileSizeMB,
			ThumbnailURL: att.ThumbnailURL,
		})
	}
	if len(a.Reactions) > 0 {
		dto.Reactions = make(map[string][]uint64)
		for _, r := range a.Reactions {
			dto.Reactions[r.Emoji] = append(dto.Reactions[r.Emoji], r.UserID)
		}
	}
	return dto
}

// ToAnnouncementDTOs converts a slice of Announcement models
func ToAnnouncementDTOs(announcements []models.Announcement) []AnnouncementDTO {
	dtos := make([]AnnouncementDTO, len(announcements))
	for i, a := range announcements {
		dtos[i] = ToAnnouncementDTO(a)
	}
	return dtos
}
