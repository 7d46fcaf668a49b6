package repository

import (
	"github.com/agencydesk/agency-api/internal/authz"
	"github.com/agencydesk/agency-api/internal/models"
	"gorm.io/gorm"
)

// GormVaultRepository is a GORM implementation of VaultRepository
type GormVaultRepository struct {
	db *gorm.DB
}

// NewVaultRepository creates a new VaultRepository
func NewVaultRepository(db *gorm.DB) VaultRepository {
	return &GormVaultRepository{db: db}
}

// Folders returns the uploaders visible under the scope, each annotated
// with a file count.
func (r *GormVaultRepository) Folders(scope authz.Scope) ([]models.User, error) {
	if scope.Empty {
		return []models.User{}, nil
	}

	query := r.db.Model(&models.User{}).
		Select("users.*, COUNT(content_vaults.id) AS file_count").
		Joins("JOIN content_vaults ON content_vaults.uploader_id = users.id").
		Where("users.is_deleted = ?", false)

	switch {
	case scope.Unrestricted:
	case scope.ManagerID != 0:
		query = query.Where("users.manager_id = ?", scope.ManagerID)
	case scope.AssigneeID != 0:
		query = query.Where("users.id = ?", scope.AssigneeID)
	default:
		return []models.User{}, nil
	}

	var folders []models.User
	if err := query.Group("users.id").Order("users.full_name ASC").Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

// Files lists one uploader's files with media-type and date filters
func (r *GormVaultRepository) Files(ownerID uint64, filter VaultFilter) ([]models.ContentVault, int64, error) {
	query := r.db.Model(&models.ContentVault{}).Where("uploader_id = ?", ownerID)

	switch filter.MediaType {
	case string(models.MediaImage):
		query = query.Where("mime_type LIKE ?", "image%")
	case string(models.MediaVideo):
		query = query.Where("mime_type LIKE ?", "video%")
	case string(models.MediaDocument):
		query = query.Where("mime_type LIKE ? OR mime_type LIKE ?", "application%", "text%")
	}

	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Preload("Task").Order("created_at DESC")
	if filter.Limit > 0 {
		listQuery = listQuery.Offset(filter.Skip).Limit(filter.Limit)
	}

	var files []models.ContentVault
	if err := listQuery.Find(&files).Error; err != nil {
		return nil, 0, err
	}

	for i := range files {
		files[i].MediaType = files[i].DeriveMediaType()
	}

	return files, total, nil
}

// FindByID finds a vault file by ID with optional preloading
func (r *GormVaultRepository) FindByID(id uint64, preload ...string) (*models.ContentVault, error) {
	var file models.ContentVault
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&file, id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// Update updates a vault file
func (r *GormVaultRepository) Update(file *models.ContentVault) error {
	return r.db.Save(file).Error
}

// Delete removes a vault file
func (r *GormVaultRepository) Delete(id uint64) error {
	return r.db.Delete(&models.ContentVault{}, id).Error
}
