package repository

import (
	"time"

	"github.com/agencydesk/agency-api/internal/models"
	"gorm.io/gorm"
)

// GormAuthRepository is a GORM implementation of AuthRepository
type GormAuthRepository struct {
	db *gorm.DB
}

// NewAuthRepository creates a new AuthRepository
func NewAuthRepository(db *gorm.DB) AuthRepository {
	return &GormAuthRepository{db: db}
}

func (r *GormAuthRepository) SaveRefreshToken(rt *models.RefreshToken) error {
	return r.db.Create(rt).Error
}

func (r *GormAuthRepository) FindRefreshToken(token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := r.db.Where("token = ?", token).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *GormAuthRepository) RevokeRefreshToken(token string) error {
	return r.db.Model(&models.RefreshToken{}).
		Where("token = ?", token).
		Update("revoked", true).Error
}

func (r *GormAuthRepository) RevokeAllForUser(userID uint64) error {
	return r.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}

func (r *GormAuthRepository) CreateOTP(otp *models.OTP) error {
	return r.db.Create(otp).Error
}

// FindValidOTP finds an unused, unexpired code for the email and purpose
func (r *GormAuthRepository) FindValidOTP(email, code, purpose string, now time.Time) (*models.OTP, error) {
	var otp models.OTP
	err := r.db.
		Where("email = ? AND code = ? AND purpose = ? AND used = ? AND expires_at > ?",
			email, code, purpose, false, now).
		Order("id DESC").
		First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *GormAuthRepository) MarkOTPUsed(otp *models.OTP) error {
	otp.Used = true
	return r.db.Model(otp).Update("used", true).Error
}
