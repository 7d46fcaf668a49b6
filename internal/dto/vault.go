package dto

import (
	"time"

	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/utils"
)

// FolderDTO represents one uploader's vault folder
type FolderDTO struct {
	Owner     UserRefDTO `json:"owner"`
	FileCount int64      `json:"file_count"`
}

// FileDTO represents a content-vault file in API responses
type FileDTO struct {
	ID              uint64               `json:"id"`
	UploaderID      uint64               `json:"uploader_id"`
	TaskID          *uint64              `json:"task_id,omitempty"`
	FileURL         string               `json:"file_url"`
	ThumbnailURL    string               `json:"thumbnail_url,omitempty"`
	FileSizeMB      float64              `json:"file_size_mb"`
	MimeType        string               `json:"mime_type"`
	MediaType       models.MediaType     `json:"media_type"`
	DurationSeconds int                  `json:"duration_seconds,omitempty"`
	ContentType     models.ContentType   `json:"content_type"`
	Tags            string               `json:"tags,omitempty"`
	Status          models.ContentStatus `json:"status"`
	ApprovedBy      *uint64              `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time           `json:"approved_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}

// FileListResponse represents one folder's paginated files
type FileListResponse struct {
	Files      []FileDTO                `json:"files"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToFolderDTOs converts annotated User rows to folder shapes
func ToFolderDTOs(owners []models.User) []FolderDTO {
	dtos := make([]FolderDTO, len(owners))
	for i, owner := range owners {
		dtos[i] = FolderDTO{
			Owner:     *ToUserRefDTO(&owner),
			FileCount: owner.FileCount,
		}
	}
	return dtos
}

// ToFileDTO converts a ContentVault model to FileDTO
func ToFileDTO(file models.ContentVault) FileDTO {
	mediaType := file.MediaType
	if mediaType == "" {
		mediaType = file.DeriveMediaType()
	}
	return FileDTO{
		ID:              file.ID,
		UploaderID:      file.UploaderID,
		TaskID:          file.TaskID,
		FileURL:         file.FileURL,
		ThumbnailURL:    file.ThumbnailURL,
		FileSizeMB:      file.FileSizeMB,
		MimeType:        file.MimeType,
		MediaType:       mediaType,
		DurationSeconds: file.DurationSeconds,
		ContentType:     file.ContentType,
		Tags:            file.Tags,
		Status:          file.Status,
		ApprovedBy:      file.ApprovedBy,
		ApprovedAt:      file.ApprovedAt,
		CreatedAt:       file.CreatedAt,
	}
}

// ToFileDTOs converts a slice of ContentVault models
func ToFileDTOs(files []models.ContentVault) []FileDTO {
	dtos := make([]FileDTO, len(files))
	for i, f := range files {
		dtos[i] = ToFileDTO(f)
	}
	return dtos
}
