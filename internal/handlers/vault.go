package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agencydesk/agency-api/internal/apperrors"
	"github.com/agencydesk/agency-api/internal/dto"
	"github.com/agencydesk/agency-api/internal/middleware"
	"github.com/agencydesk/agency-api/internal/services"
	"github.com/agencydesk/agency-api/internal/utils"
)

// VaultHandler serves the /content_vault endpoints
type VaultHandler struct {
	vaultService *services.VaultService
}

// NewVaultHandler creates a new VaultHandler
func NewVaultHandler(vaultService *services.VaultService) *VaultHandler {
	return &VaultHandler{vaultService: vaultService}
}

// Folders lists the vault folders visible to the actor
func (h *VaultHandler) Folders(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	folders, err := h.vaultService.Folders(actor)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"folders": dto.ToFolderDTOs(folders)})
}

// Files lists one folder's files
func (h *VaultHandler) Files(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	ownerID, err := parseID(c, "user_id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid user id")
		return
	}

	params := utils.GetPaginationParams(c)
	input := services.ListFilesInput{
		MediaType: c.Query("media_type"),
		Skip:      params.Skip,
		Limit:     params.Limit,
	}
	if fromStr := c.Query("date_from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			apperrors.BadRequest(c, "Invalid date_from")
			return
		}
		input.DateFrom = &from
	}
	if toStr := c.Query("date_to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			apperrors.BadRequest(c, "Invalid date_to")
			return
		}
		input.DateTo = &to
	}

	files, total, err := h.vaultService.Files(actor, ownerID, input)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FileListResponse{
		Files: dto.ToFileDTOs(files),
		Pagination: utils.PaginationResponse{
			Skip:  params.Skip,
			Limit: params.Limit,
			Total: total,
		},
	})
}

type uploadURLRequest struct {
	Filename string `json:"filename" binding:"required"`
}

// UploadURL mints a presigned URL for a direct client upload
func (h *VaultHandler) UploadURL(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	creds, err := h.vaultService.UploadURL(c.Request.Context(), actor, req.Filename)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, creds)
}

// DeleteFile removes one of the actor's own files
func (h *VaultHandler) DeleteFile(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid file id")
		return
	}

	if err := h.vaultService.DeleteFile(actor, id); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File deleted"})
}

// ApproveFile flips a pending deliverable to approved
func (h *VaultHandler) ApproveFile(c *gin.Context) {
	h.review(c, true)
}

// RejectFile flips a pending deliverable to rejected
func (h *VaultHandler) RejectFile(c *gin.Context) {
	h.review(c, false)
}

func (h *VaultHandler) review(c *gin.Context, approve bool) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid file id")
		return
	}

	var file *dto.FileDTO
	if approve {
		f, err := h.vaultService.ApproveFile(actor, id)
		if err != nil {
			apperrors.Respond(c, err)
			return
		}
		converted := dto.ToFileDTO(*f)
		file = &converted
	} else {
		f, err := h.vaultService.RejectFile(actor, id)
		if err != nil {
			apperrors.Respond(c, err)
			return
		}
		converted := dto.ToFileDTO(*f)
		file = &converted
	}
	c.JSON(http.StatusOK, file)
}
