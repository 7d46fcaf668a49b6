package models

import (
	"strings"
	"time"
)

type ContentStatus string

const (
	ContentPending  ContentStatus = "pending"
	ContentApproved ContentStatus = "approved"
	ContentRejected ContentStatus = "rejected"
	ContentArchived ContentStatus = "archived"
)

func (s ContentStatus) IsValid() bool {
	switch s {
	case ContentPending, ContentApproved, ContentRejected, ContentArchived:
		return true
	}
	return false
}

// MediaType is derived from the MIME prefix, never stored.
type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaDocument MediaType = "document"
)

// ContentVault is a file record. Rows attached to a task are either
// reference material (uploaded by the assigner, auto-approved) or
// deliverables (uploaded by the assignee, pending review); the uploader id
// is the only discriminator. TaskID is nullable so the vault can hold
// files independent of any task.
type ContentVault struct {
	ID              uint64        `gorm:"primarykey" json:"id"`
	UploaderID      uint64        `gorm:"not null;index" json:"uploader_id"`
	TaskID          *uint64       `gorm:"index" json:"task_id"`
	FileURL         string        `gorm:"type:varchar(500);not null" json:"file_url"`
	ThumbnailURL    string        `gorm:"type:varchar(500)" json:"thumbnail_url"`
	FileSizeMB      float64       `json:"file_size_mb"`
	MimeType        string        `gorm:"type:varchar(100)" json:"mime_type"`
	DurationSeconds int           `json:"duration_seconds"`
	ContentType     ContentType   `gorm:"type:varchar(20);not null" json:"content_type"`
	Tags            string        `gorm:"type:varchar(255)" json:"tags"`
	Status          ContentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ApprovedBy      *uint64       `json:"approved_by"`
	ApprovedAt      *time.Time    `json:"approved_at"`
	CreatedAt       time.Time     `json:"created_at"`

	Uploader *User `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`
	Task     *Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`

	MediaType MediaType `gorm:"-" json:"media_type,omitempty"`
}

// DeriveMediaType classifies the file from its MIME prefix.
func (c *ContentVault) DeriveMediaType() MediaType {
	switch {
	case strings.HasPrefix(c.MimeType, "image"):
		return MediaImage
	case strings.HasPrefix(c.MimeType, "video"):
		return MediaVideo
	default:
		return MediaDocument
	}
}
