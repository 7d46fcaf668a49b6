package repository

import (
	"fmt"

	"github.com/agencydesk/agency-api/internal/authz"
	"github.com/agencydesk/agency-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) active() *gorm.DB {
	return r.db.Where("is_deleted = ?", false)
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a non-deleted user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.active().First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a non-deleted user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.active().Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindCreator finds an active, non-deleted digital_creator by ID
func (r *GormUserRepository) FindCreator(id uint64) (*models.User, error) {
	var user models.User
	err := r.active().
		Where("id = ? AND role = ? AND account_status = ?",
			id, models.RoleDigitalCreator, models.AccountActive).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves non-deleted users with filtering and pagination
func (r *GormUserRepository) List(filter UserFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{}).Where("is_deleted = ?", false)

	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(full_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	listQuery := query.Order("created_at DESC")
	if filter.Limit > 0 {
		listQuery = listQuery.Offset(filter.Skip).Limit(filter.Limit)
	}
	if err := listQuery.Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ListAssignees lists the active creators visible under the scope
func (r *GormUserRepository) ListAssignees(scope authz.Scope) ([]models.User, error) {
	if scope.Empty {
		return []models.User{}, nil
	}

	query := r.active().
		Where("role = ? AND account_status = ?", models.RoleDigitalCreator, models.AccountActive)

	switch {
	case scope.Unrestricted:
	case scope.ManagerID != 0:
		query = query.Where("manager_id = ?", scope.ManagerID)
	case scope.AssigneeID != 0:
		query = query.Where("id = ?", scope.AssigneeID)
	default:
		return []models.User{}, nil
	}

	var users []models.User
	if err := query.Order("full_name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update updates a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Pair establishes the symmetric pairing inside one transaction. Both
// parties' previous partners (if any) get their back-references cleared
// before the new pair is written, so no transient asymmetry survives the
// commit.
func (r *GormUserRepository) Pair(member, creator *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		clearPartner := func(partnerID *uint64) error {
			if partnerID == nil {
				return nil
			}
			return tx.Model(&models.User{}).
				Where("id = ?", *partnerID).
				Update("assigned_model_id", nil).Error
		}

		if err := clearPartner(member.AssignedModelID); err != nil {
			return fmt.Errorf("failed to clear member's previous pairing: %w", err)
		}
		if err := clearPartner(creator.AssignedModelID); err != nil {
			return fmt.Errorf("failed to clear creator's previous pairing: %w", err)
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", member.ID).
			Update("assigned_model_id", creator.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).
			Where("id = ?", creator.ID).
			Update("assigned_model_id", member.ID).Error; err != nil {
			return err
		}

		member.AssignedModelID = &creator.ID
		creator.AssignedModelID = &member.ID
		return nil
	})
}

// SoftDelete flags the user deleted, renames its unique identifiers, and
// clears the pairing back-reference of any partner.
func (r *GormUserRepository) SoftDelete(user *models.User, suffix string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if user.AssignedModelID != nil {
			if err := tx.Model(&models.User{}).
				Where("id = ?", *user.AssignedModelID).
				Update("assigned_model_id", nil).Error; err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"is_deleted":        true,
			"account_status":    models.AccountDeleted,
			"assigned_model_id": nil,
			"email":             fmt.Sprintf("%s.deleted.%s", user.Email, suffix),
		}
		if user.Username != nil {
			updates["username"] = fmt.Sprintf("%s.deleted.%s", *user.Username, suffix)
		}

		return tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error
	})
}

// ExistsEmail reports whether a non-deleted user holds the email
func (r *GormUserRepository) ExistsEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("email = ? AND is_deleted = ?", email, false).
		Count(&count).Error
	return count > 0, err
}

// ExistsUsername reports whether a non-deleted user holds the username
func (r *GormUserRepository) ExistsUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("username = ? AND is_deleted = ?", username, false).
		Count(&count).Error
	return count > 0, err
}
