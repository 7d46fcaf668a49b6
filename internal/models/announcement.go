package models

import "time"

// Announcement is an org-wide post authored by an admin or manager.
type Announcement struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	AuthorID  uint64    `gorm:"not null;index" json:"author_id"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author      *User                    `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Attachments []AnnouncementAttachment `gorm:"foreignKey:AnnouncementID" json:"attachments,omitempty"`
	Reactions   []AnnouncementReaction   `gorm:"foreignKey:AnnouncementID" json:"reactions,omitempty"`
}

type AnnouncementAttachment struct {
	ID             uint64  `gorm:"primarykey" json:"id"`
	AnnouncementID uint64  `gorm:"not null;index" json:"announcement_id"`
	FileURL        string  `gorm:"type:varchar(500);not null" json:"file_url"`
	MimeType       string  `gorm:"type:varchar(100)" json:"mime_type"`
	FileSizeMB     float64 `json:"file_size_mb"`
	ThumbnailURL   string  `gorm:"type:varchar(500)" json:"thumbnail_url"`
}

type AnnouncementReaction struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	AnnouncementID uint64    `gorm:"not null;index" json:"announcement_id"`
	UserID         uint64    `gorm:"not null;index" json:"user_id"`
	Emoji          string    `gorm:"type:varchar(10);not null" json:"emoji"`
	CreatedAt      time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
