package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agencydesk/agency-api/internal/apperrors"
	"github.com/agencydesk/agency-api/internal/config"
	"github.com/agencydesk/agency-api/internal/dto"
	"github.com/agencydesk/agency-api/internal/middleware"
	"github.com/agencydesk/agency-api/internal/services"
)

// AuthHandler serves the /auth endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type requestOTPRequest struct {
	Email string `json:"email" binding:"required"`
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// Login authenticates with email and password
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	user, pair, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		// Bad credentials are a 401, not the usual 403 mapping.
		if apperrors.KindOf(err) == apperrors.KindAuthorization {
			apperrors.Unauthorized(c, "Invalid email or password")
			return
		}
		apperrors.Respond(c, err)
		return
	}

	h.setAccessCookie(c, pair.AccessToken)
	c.JSON(http.StatusOK, gin.H{
		"user":          dto.ToUserDTO(*user),
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Refresh rotates a refresh token into a fresh pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	pair, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindAuthorization {
			apperrors.Unauthorized(c, "Invalid refresh token")
			return
		}
		apperrors.Respond(c, err)
		return
	}

	h.setAccessCookie(c, pair.AccessToken)
	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Logout revokes the refresh token and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.authService.Logout(req.RefreshToken); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.SetCookie("access_token", "", -1, "/", "", h.cfg.Env == "production", true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// RequestOTP mails a password-reset code. The response is identical for
// known and unknown addresses.
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req requestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	if err := h.authService.RequestOTP(c.Request.Context(), req.Email); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the address is registered, a code has been sent"})
}

// VerifyOTP checks a reset code without consuming it
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	if err := h.authService.VerifyOTP(req.Email, req.Code); err != nil {
		if apperrors.KindOf(err) == apperrors.KindAuthorization {
			apperrors.Unauthorized(c, "Invalid or expired code")
			return
		}
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Code is valid"})
}

// ResetPassword consumes an OTP and sets a new password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	if err := h.authService.ResetPassword(req.Email, req.Code, req.NewPassword); err != nil {
		if apperrors.KindOf(err) == apperrors.KindAuthorization {
			apperrors.Unauthorized(c, "Invalid or expired code")
			return
		}
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

func (h *AuthHandler) setAccessCookie(c *gin.Context, token string) {
	c.SetCookie("access_token", token,
		int(h.cfg.AccessTokenTTL.Seconds()), "/", "",
		h.cfg.Env == "production", true)
}
