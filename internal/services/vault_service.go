package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/agencydesk/agency-api/internal/apperrors"
	"github.com/agencydesk/agency-api/internal/authz"
	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/repository"
	"github.com/agencydesk/agency-api/internal/storage"
)

// uploadURLTTL bounds how long a minted upload URL stays usable.
const uploadURLTTL = 15 * time.Minute

// VaultService handles content-vault business logic
type VaultService struct {
	vaultRepo    repository.VaultRepository
	userRepo     repository.UserRepository
	notifService *NotificationService
	store        storage.ObjectStore
}

// NewVaultService creates a new VaultService
func NewVaultService(vaultRepo repository.VaultRepository, userRepo repository.UserRepository, notifService *NotificationService, store storage.ObjectStore) *VaultService {
	return &VaultService{
		vaultRepo:    vaultRepo,
		userRepo:     userRepo,
		notifService: notifService,
		store:        store,
	}
}

// UploadCredentials is a storage key plus the presigned URL the client
// uploads to directly. File bytes never pass through the API.
type UploadCredentials struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

// UploadURL mints a presigned upload slot under the actor's own prefix.
func (s *VaultService) UploadURL(ctx context.Context, actor *models.User, filename string) (*UploadCredentials, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, apperrors.Validation("filename is required")
	}
	key := storage.ObjectKey(actor.ID, filename)
	url, err := s.store.Presign(ctx, key, uploadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload url: %w", err)
	}
	return &UploadCredentials{Key: key, UploadURL: url}, nil
}

// ListFilesInput represents filters for one folder's files
type ListFilesInput struct {
	MediaType string
	DateFrom  *time.Time
	DateTo    *time.Time
	Skip      int
	Limit     int
}

// Folders lists the uploaders whose vaults the actor may browse, each
// with a file count
func (s *VaultService) Folders(actor *models.User) ([]models.User, error) {
	folders, err := s.vaultRepo.Folders(authz.VisibilityScope(actor))
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	return folders, nil
}

// Files lists one folder's files. Unlike reads elsewhere, a folder the
// actor cannot browse is forbidden, not hidden; folder owners are known
// from the team roster anyway.
func (s *VaultService) Files(actor *models.User, ownerID uint64, input ListFilesInput) ([]models.ContentVault, int64, error) {
	owner, err := s.userRepo.FindByID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperrors.NotFound("folder not found")
		}
		return nil, 0, apperrors.Persistence(err)
	}
	if !authz.CanAccessFolder(actor, owner) {
		return nil, 0, apperrors.Authorization("you cannot browse this folder")
	}

	switch input.MediaType {
	case "", string(models.MediaImage), string(models.MediaVideo), string(models.MediaDocument):
	default:
		return nil, 0, apperrors.Validation("invalid media type")
	}

	files, total, err := s.vaultRepo.Files(ownerID, repository.VaultFilter{
		MediaType: input.MediaType,
		DateFrom:  input.DateFrom,
		DateTo:    input.DateTo,
		Skip:      input.Skip,
		Limit:     input.Limit,
	})
	if err != nil {
		return nil, 0, apperrors.Persistence(err)
	}
	return files, total, nil
}

// DeleteFile removes a vault row. Only the uploader may delete, and
// deliverables of a completed task are immutable.
func (s *VaultService) DeleteFile(actor *models.User, id uint64) error {
	file, err := s.vaultRepo.FindByID(id, "Task")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("file not found")
		}
		return apperrors.Persistence(err)
	}
	if file.UploaderID != actor.ID {
		return apperrors.Authorization("only the uploader can delete a file")
	}
	if file.Task != nil && file.Task.Status == models.TaskStatusCompleted {
		return apperrors.Conflict("deliverables of a completed task cannot be deleted")
	}
	if err := s.vaultRepo.Delete(id); err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}

// ApproveFile flips a pending deliverable to approved
func (s *VaultService) ApproveFile(actor *models.User, id uint64) (*models.ContentVault, error) {
	return s.review(actor, id, models.ContentApproved)
}

// RejectFile flips a pending deliverable to rejected
func (s *VaultService) RejectFile(actor *models.User, id uint64) (*models.ContentVault, error) {
	return s.review(actor, id, models.ContentRejected)
}

func (s *VaultService) review(actor *models.User, id uint64, verdict models.ContentStatus) (*models.ContentVault, error) {
	file, err := s.vaultRepo.FindByID(id, "Task", "Uploader")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("file not found")
		}
		return nil, apperrors.Persistence(err)
	}
	if file.Status != models.ContentPending {
		return nil, apperrors.Conflict("file is not pending review")
	}

	allowed := actor.Role == models.RoleAdmin ||
		(file.Task != nil && file.Task.AssignerID == actor.ID) ||
		authz.CanActOnCreator(actor, file.Uploader)
	if !allowed {
		return nil, apperrors.Authorization("you cannot review this file")
	}

	now := time.Now()
	file.Status = verdict
	file.ApprovedBy = &actor.ID
	file.ApprovedAt = &now
	if err := s.vaultRepo.Update(file); err != nil {
		return nil, apperrors.Persistence(err)
	}

	word := "approved"
	if verdict == models.ContentRejected {
		word = "rejected"
	}
	if err := s.notifService.Notify(ComposeInput{
		Recipients: []uint64{file.UploaderID},
		ActorID:    &actor.ID,
		Title:      fmt.Sprintf("File %s", word),
		Body:       fmt.Sprintf("%s %s your upload", actor.FullName, word),
		Category:   models.CategoryTask,
		Severity:   models.SeverityNormal,
		EntityType: "content_vault",
		EntityID:   &file.ID,
	}); err != nil {
		return nil, err
	}

	file.MediaType = file.DeriveMediaType()
	return file, nil
}
