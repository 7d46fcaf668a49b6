package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agencydesk/agency-api/internal/apperrors"
	"github.com/agencydesk/agency-api/internal/constants"
	"github.com/agencydesk/agency-api/internal/dto"
	"github.com/agencydesk/agency-api/internal/middleware"
	"github.com/agencydesk/agency-api/internal/services"
)

// AnnouncementHandler serves the /announcements endpoints
type AnnouncementHandler struct {
	annService *services.AnnouncementService
}

// NewAnnouncementHandler creates a new AnnouncementHandler
func NewAnnouncementHandler(annService *services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{annService: annService}
}

type createAnnouncementRequest struct {
	Content     string        `json:"content"`
	Attachments []fileRequest `json:"attachments"`
}

type reactRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

// Create posts a new announcement
func (h *AnnouncementHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req createAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	input := services.CreateAnnouncementInput{Content: req.Content}
	for _, a := range req.Attachments {
		input.Attachments = append(input.Attachments, a.toInput())
	}

	announcement, err := h.annService.CreateAnnouncement(actor, input)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToAnnouncementDTO(*announcement))
}

// Feed returns announcements newest-first with a before_id cursor
func (h *AnnouncementHandler) Feed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))
	if limit < 1 || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}
	var beforeID uint64
	if beforeStr := c.Query("before_id"); beforeStr != "" {
		beforeID, _ = strconv.ParseUint(beforeStr, 10, 64)
	}

	feed, err := h.annService.Feed(beforeID, limit)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": dto.ToAnnouncementDTOs(feed)})
}

// Delete removes an announcement
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid announcement id")
		return
	}

	if err := h.annService.DeleteAnnouncement(actor, id); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Announcement deleted"})
}

// React records an emoji reaction
func (h *AnnouncementHandler) React(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid announcement id")
		return
	}

	var req reactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	if err := h.annService.React(actor, id, req.Emoji); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reaction added"})
}

// Unreact removes the actor's emoji reaction
func (h *AnnouncementHandler) Unreact(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid announcement id")
		return
	}

	emoji := c.Query("emoji")
	if emoji == "" {
		apperrors.BadRequest(c, "emoji query parameter is required")
		return
	}

	if err := h.annService.Unreact(actor, id, emoji); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reaction removed"})
}
