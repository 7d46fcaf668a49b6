package repository

import (
	"time"

	"github.com/agencydesk/agency-api/internal/models"
	"gorm.io/gorm"
)

// GormSignatureRepository is a GORM implementation of SignatureRepository
type GormSignatureRepository struct {
	db *gorm.DB
}

// NewSignatureRepository creates a new SignatureRepository
func NewSignatureRepository(db *gorm.DB) SignatureRepository {
	return &GormSignatureRepository{db: db}
}

// Create creates a new signature request
func (r *GormSignatureRepository) Create(req *models.SignatureRequest) error {
	return r.db.Create(req).Error
}

// FindByID finds a signature request with requester and signer preloaded
func (r *GormSignatureRepository) FindByID(id uint64) (*models.SignatureRequest, error) {
	var req models.SignatureRequest
	if err := r.db.Preload("Requester").Preload("Signer").First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// List retrieves signature requests visible under the filter scope
func (r *GormSignatureRepository) List(filter SignatureFilter) ([]models.SignatureRequest, int64, error) {
	if filter.Scope.Empty {
		return []models.SignatureRequest{}, 0, nil
	}

	query := r.db.Model(&models.SignatureRequest{}).
		Joins("JOIN users signers ON signers.id = signature_requests.signer_id AND signers.is_deleted = ?", false)

	switch {
	case filter.Scope.Unrestricted:
	case filter.Scope.ManagerID != 0:
		query = query.Where("signers.manager_id = ?", filter.Scope.ManagerID)
	case filter.Scope.AssigneeID != 0:
		query = query.Where("signature_requests.signer_id = ?", filter.Scope.AssigneeID)
	default:
		return []models.SignatureRequest{}, 0, nil
	}

	if filter.Status != nil {
		query = query.Where("signature_requests.status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(signature_requests.title) LIKE LOWER(?) OR LOWER(signers.full_name) LIKE LOWER(?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("signature_requests.created_at DESC")
	if filter.Limit > 0 {
		listQuery = listQuery.Offset(filter.Skip).Limit(filter.Limit)
	}

	var reqs []models.SignatureRequest
	if err := listQuery.Preload("Requester").Preload("Signer").Find(&reqs).Error; err != nil {
		return nil, 0, err
	}

	return reqs, total, nil
}

// Update updates a signature request
func (r *GormSignatureRepository) Update(req *models.SignatureRequest) error {
	return r.db.Save(req).Error
}

// Delete removes a signature request
func (r *GormSignatureRepository) Delete(id uint64) error {
	return r.db.Delete(&models.SignatureRequest{}, id).Error
}

// ExpireOverdue marks pending requests past their deadline expired and
// returns the affected rows.
func (r *GormSignatureRepository) ExpireOverdue(now time.Time) ([]models.SignatureRequest, error) {
	var overdue []models.SignatureRequest
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("status = ? AND deadline IS NOT NULL AND deadline < ?", models.SignaturePending, now).
			Find(&overdue).Error; err != nil {
			return err
		}
		if len(overdue) == 0 {
			return nil
		}

		ids := make([]uint64, len(overdue))
		for i, req := range overdue {
			ids[i] = req.ID
			overdue[i].Status = models.SignatureExpired
		}
		return tx.Model(&models.SignatureRequest{}).
			Where("id IN ?", ids).
			Update("status", models.SignatureExpired).Error
	})
	if err != nil {
		return nil, err
	}
	return overdue, nil
}
