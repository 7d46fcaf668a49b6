package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/agencydesk/agency-api/internal/apperrors"
	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/push"
	"github.com/agencydesk/agency-api/internal/tokens"
)

// AuthServiceTestSuite defines the test suite for AuthService
type AuthServiceTestSuite struct {
	suite.Suite
	deps    *testDeps
	service *AuthService
	maker   *tokens.Maker

	user *models.User
}

// SetupTest runs before each test
func (suite *AuthServiceTestSuite) SetupTest() {
	var err error
	suite.deps, err = newTestDeps()
	suite.Require().NoError(err)

	suite.maker = tokens.NewMaker("test-secret", time.Minute, time.Hour)
	suite.service = NewAuthService(suite.deps.userRepo, suite.deps.authRepo, suite.maker, push.NewLogMailer(zap.NewNop()), 10*time.Minute)

	suite.user = suite.deps.createUser("manager@agency.test", models.RoleManager)
}

// TearDownTest runs after each test
func (suite *AuthServiceTestSuite) TearDownTest() {
	suite.deps.close()
}

func (suite *AuthServiceTestSuite) TestLoginSuccess() {
	user, pair, err := suite.service.Login("Manager@Agency.Test", "password123")
	suite.Require().NoError(err)
	suite.Equal(suite.user.ID, user.ID)
	suite.NotEmpty(pair.AccessToken)
	suite.NotEmpty(pair.RefreshToken)
	suite.NotNil(user.LastLogin)

	// Access token resolves back to the user.
	userID, err := suite.maker.Parse(pair.AccessToken, tokens.TypeAccess)
	suite.Require().NoError(err)
	suite.Equal(suite.user.ID, userID)

	// The refresh token is recorded server-side.
	var record models.RefreshToken
	suite.Require().NoError(suite.deps.db.Where("token = ?", pair.RefreshToken).First(&record).Error)
	suite.Equal(suite.user.ID, record.UserID)
}

func (suite *AuthServiceTestSuite) TestLoginWrongPassword() {
	_, _, err := suite.service.Login("manager@agency.test", "wrong")
	suite.Equal(apperrors.KindAuthorization, apperrors.KindOf(err))
}

func (suite *AuthServiceTestSuite) TestLoginUnknownEmail() {
	_, _, err := suite.service.Login("nobody@agency.test", "password123")
	suite.Equal(apperrors.KindAuthorization, apperrors.KindOf(err))
}

func (suite *AuthServiceTestSuite) TestLoginSuspendedAccount() {
	suite.deps.db.Model(suite.user).Update("account_status", models.AccountSuspended)

	_, _, err := suite.service.Login("manager@agency.test", "password123")
	suite.Equal(apperrors.KindAuthorization, apperrors.KindOf(err))
}

func (suite *AuthServiceTestSuite) TestRefreshRotatesToken() {
	_, pair, err := suite.service.Login("manager@agency.test", "password123")
	suite.Require().NoError(err)

	next, err := suite.service.Refresh(pair.RefreshToken)
	suite.Require().NoError(err)
	suite.NotEqual(pair.RefreshToken, next.RefreshToken)

	// The old token is revoked and cannot be replayed.
	_, err = suite.service.Refresh(pair.RefreshToken)
	suite.Equal(apperrors.KindAuthorization, apperrors.KindOf(err))

	_, err = suite.service.Refresh(next.RefreshToken)
	suite.Require().NoError(err)
}

func (suite *AuthServiceTestSuite) TestRefreshRejectsAccessToken() {
	_, pair, err := suite.service.Login("manager@agency.test", "password123")
	suite.Require().NoError(err)

	_, err = suite.service.Refresh(pair.AccessToken)
	suite.Equal(apperrors.KindAuthorization, apperrors.KindOf(err))
}

func (suite *AuthServiceTestSuite) TestLogoutRevokesToken() {
	_, pair, err := suite.service.Login("manager@agency.test", "password123")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.Logout(pair.RefreshToken))

	_, err = suite.service.Refresh(pair.RefreshToken)
	suite.Equal(apperrors.KindAuthorization, apperrors.KindOf(err))

	// Logging out twice is fine.
	suite.Require().NoError(suite.service.Logout(pair.RefreshToken))
	suite.Require().NoError(suite.service.Logout(""))
}

func (suite *AuthServiceTestSuite) TestRequestOTPUnknownEmailIsSilent() {
	suite.Require().NoError(suite.service.RequestOTP(context.Background(), "nobody@agency.test"))

	var count int64
	suite.deps.db.Model(&models.OTP{}).Count(&count)
	suite.Equal(int64(0), count)
}

func (suite *AuthServiceTestSuite) TestResetPasswordFlow() {
	_, pair, err := suite.service.Login("manager@agency.test", "password123")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.RequestOTP(context.Background(), "manager@agency.test"))

	var otp models.OTP
	suite.Require().NoError(suite.deps.db.Where("email = ?", "manager@agency.test").First(&otp).Error)

	suite.Require().NoError(suite.service.ResetPassword("manager@agency.test", otp.Code, "new-password-1"))

	// New password works, the stored hash changed.
	var updated models.User
	suite.Require().NoError(suite.deps.db.First(&updated, suite.user.ID).Error)
	suite.NoError(bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("new-password-1")))

	// Outstanding sessions are revoked.
	_, err = suite.service.Refresh(pair.RefreshToken)
	suite.Equal(apperrors.KindAuthorization, apperrors.KindOf(err))

	// The code is single-use.
	err = suite.service.ResetPassword("manager@agency.test", otp.Code, "another-password")
	suite.Equal(apperrors.KindAuthorization, apperrors.KindOf(err))
}

func (suite *AuthServiceTestSuite) TestVerifyOTPDoesNotConsume() {
	suite.Require().NoError(suite.service.RequestOTP(context.Background(), "manager@agency.test"))

	var otp models.OTP
	suite.Require().NoError(suite.deps.db.Where("email = ?", "manager@agency.test").First(&otp).Error)

	// Verification can be repeated; only ResetPassword consumes the code.
	suite.Require().NoError(suite.service.VerifyOTP("manager@agency.test", otp.Code))
	suite.Require().NoError(suite.service.VerifyOTP("manager@agency.test", otp.Code))

	err := suite.service.VerifyOTP("manager@agency.test", "not-a-code")
	suite.Equal(apperrors.KindAuthorization, apperrors.KindOf(err))
}

func (suite *AuthServiceTestSuite) TestResetPasswordExpiredCode() {
	suite.Require().NoError(suite.service.RequestOTP(context.Background(), "manager@agency.test"))

	var otp models.OTP
	suite.Require().NoError(suite.deps.db.Where("email = ?", "manager@agency.test").First(&otp).Error)
	suite.deps.db.Model(&otp).Update("expires_at", time.Now().Add(-time.Minute))

	err := suite.service.ResetPassword("manager@agency.test", otp.Code, "new-password-1")
	suite.Equal(apperrors.KindAuthorization, apperrors.KindOf(err))
}

func (suite *AuthServiceTestSuite) TestResetPasswordTooShort() {
	err := suite.service.ResetPassword("manager@agency.test", "123456", "short")
	suite.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
