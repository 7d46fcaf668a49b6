package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agencydesk/agency-api/internal/apperrors"
	"github.com/agencydesk/agency-api/internal/dto"
	"github.com/agencydesk/agency-api/internal/middleware"
	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/services"
	"github.com/agencydesk/agency-api/internal/utils"
)

// UserHandler serves the /users endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type createUserRequest struct {
	Email     string  `json:"email" binding:"required"`
	Username  *string `json:"username"`
	FullName  string  `json:"full_name" binding:"required"`
	Password  string  `json:"password" binding:"required"`
	Role      string  `json:"role" binding:"required"`
	ManagerID *uint64 `json:"manager_id"`
	Phone     string  `json:"phone"`
}

type updateUserRequest struct {
	FullName          *string `json:"full_name"`
	Username          *string `json:"username"`
	Phone             *string `json:"phone"`
	Bio               *string `json:"bio"`
	ProfilePictureURL *string `json:"profile_picture_url"`
	Role              *string `json:"role"`
	ManagerID         *uint64 `json:"manager_id"`
	AccountStatus     *string `json:"account_status"`
}

type assignCreatorRequest struct {
	TeamMemberID uint64 `json:"team_member_id" binding:"required"`
	CreatorID    uint64 `json:"creator_id" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// CreateUser creates a new account
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	user, err := h.userService.CreateUser(actor, services.CreateUserInput{
		Email:     req.Email,
		Username:  req.Username,
		FullName:  req.FullName,
		Password:  req.Password,
		Role:      models.UserRole(req.Role),
		ManagerID: req.ManagerID,
		Phone:     req.Phone,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// GetUser returns one user
func (h *UserHandler) GetUser(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid user id")
		return
	}

	user, err := h.userService.GetUser(actor, id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateUser applies a partial update
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid user id")
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	input := services.UpdateUserInput{
		FullName:          req.FullName,
		Username:          req.Username,
		Phone:             req.Phone,
		Bio:               req.Bio,
		ProfilePictureURL: req.ProfilePictureURL,
		ManagerID:         req.ManagerID,
	}
	if req.Role != nil {
		role := models.UserRole(*req.Role)
		input.Role = &role
	}
	if req.AccountStatus != nil {
		status := models.AccountStatus(*req.AccountStatus)
		input.AccountStatus = &status
	}

	user, err := h.userService.UpdateUser(actor, id, input)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser soft-deletes an account
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid user id")
		return
	}

	if err := h.userService.DeleteUser(actor, id); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// ListUsers lists accounts with role and search filters
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	input := services.ListUsersInput{
		Search: c.Query("search"),
		Skip:   params.Skip,
		Limit:  params.Limit,
	}
	if roleStr := c.Query("role"); roleStr != "" {
		role := models.UserRole(roleStr)
		if !role.IsValid() {
			apperrors.BadRequest(c, "Invalid role")
			return
		}
		input.Role = &role
	}

	users, total, err := h.userService.ListUsers(actor, input)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserListResponse{
		Users: dto.ToUserDTOs(users),
		Pagination: utils.PaginationResponse{
			Skip:  params.Skip,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// MyAssignees returns the creators the actor may act on
func (h *UserHandler) MyAssignees(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	creators, err := h.userService.MyAssignees(actor)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignees": dto.ToUserDTOs(creators)})
}

// AssignCreator pairs a team member with a creator
func (h *UserHandler) AssignCreator(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req assignCreatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	if err := h.userService.AssignCreator(actor, req.TeamMemberID, req.CreatorID); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Creator assigned"})
}

// ChangePassword rotates the actor's own password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	if err := h.userService.ChangePassword(actor, req.CurrentPassword, req.NewPassword); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// parseID parses a numeric path parameter
func parseID(c *gin.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
