package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/agencydesk/agency-api/internal/apperrors"
	"github.com/agencydesk/agency-api/internal/constants"
	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/push"
	"github.com/agencydesk/agency-api/internal/repository"
	"github.com/agencydesk/agency-api/internal/tokens"
	"github.com/agencydesk/agency-api/internal/utils"
)

const otpPurposeReset = "password_reset"

// AuthService handles login, token lifecycle and the OTP reset flow
type AuthService struct {
	userRepo repository.UserRepository
	authRepo repository.AuthRepository
	maker    *tokens.Maker
	mailer   push.Mailer
	otpTTL   time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, authRepo repository.AuthRepository, maker *tokens.Maker, mailer push.Mailer, otpTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		authRepo: authRepo,
		maker:    maker,
		mailer:   mailer,
		otpTTL:   otpTTL,
	}
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Login verifies credentials and issues a token pair. The refresh token
// is recorded server-side so it can be revoked.
func (s *AuthService) Login(email, password string) (*models.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.Authorization("invalid email or password")
		}
		return nil, nil, apperrors.Persistence(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperrors.Authorization("invalid email or password")
	}
	if !user.IsActive() {
		return nil, nil, apperrors.Authorization("account is not active")
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, nil, apperrors.Persistence(err)
	}

	return user, pair, nil
}

// Refresh exchanges a valid, unrevoked refresh token for a new pair. The
// old token is revoked (single-use rotation).
func (s *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	userID, err := s.maker.Parse(refreshToken, tokens.TypeRefresh)
	if err != nil {
		return nil, apperrors.Authorization("invalid refresh token")
	}

	record, err := s.authRepo.FindRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Authorization("invalid refresh token")
		}
		return nil, apperrors.Persistence(err)
	}
	if record.Revoked || record.ExpiresAt.Before(time.Now()) {
		return nil, apperrors.Authorization("refresh token expired or revoked")
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperrors.Authorization("invalid refresh token")
	}
	if !user.IsActive() {
		return nil, apperrors.Authorization("account is not active")
	}

	if err := s.authRepo.RevokeRefreshToken(refreshToken); err != nil {
		return nil, apperrors.Persistence(err)
	}
	return s.issuePair(user.ID)
}

// Logout revokes the refresh token. Already-revoked tokens succeed
// silently.
func (s *AuthService) Logout(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.authRepo.RevokeRefreshToken(refreshToken); err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}

func (s *AuthService) issuePair(userID uint64) (*TokenPair, error) {
	access, err := s.maker.CreateAccess(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, expiresAt, err := s.maker.CreateRefresh(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	if err := s.authRepo.SaveRefreshToken(&models.RefreshToken{
		UserID:    userID,
		Token:     refresh,
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, apperrors.Persistence(err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RequestOTP mails a reset code to the address. Unknown addresses succeed
// without sending so the endpoint cannot be used to probe accounts. A mail
// delivery failure is a hard error; a code the user never received is
// worse than a retry.
func (s *AuthService) RequestOTP(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperrors.Persistence(err)
	}
	if !user.IsActive() {
		return nil
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}
	if err := s.authRepo.CreateOTP(&models.OTP{
		Email:     email,
		Code:      code,
		Purpose:   otpPurposeReset,
		ExpiresAt: time.Now().Add(s.otpTTL),
	}); err != nil {
		return apperrors.Persistence(err)
	}

	body := fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.",
		code, int(s.otpTTL.Minutes()))
	if err := s.mailer.SendMail(ctx, email, "Password reset code", body); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}
	return nil
}

// VerifyOTP checks a reset code without consuming it, so clients can
// validate before showing the new-password form.
func (s *AuthService) VerifyOTP(email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.authRepo.FindValidOTP(email, code, otpPurposeReset, time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Authorization("invalid or expired code")
		}
		return apperrors.Persistence(err)
	}
	return nil
}

// ResetPassword consumes a valid OTP, sets the new password, and revokes
// every outstanding session of the account.
func (s *AuthService) ResetPassword(email, code, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(newPassword) < constants.MinPasswordLength {
		return apperrors.Validation(fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength))
	}

	otp, err := s.authRepo.FindValidOTP(email, code, otpPurposeReset, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Authorization("invalid or expired code")
		}
		return apperrors.Persistence(err)
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Authorization("invalid or expired code")
		}
		return apperrors.Persistence(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	if err := s.userRepo.Update(user); err != nil {
		return apperrors.Persistence(err)
	}
	if err := s.authRepo.MarkOTPUsed(otp); err != nil {
		return apperrors.Persistence(err)
	}
	if err := s.authRepo.RevokeAllForUser(user.ID); err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}
