package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agencydesk/agency-api/internal/apperrors"
	"github.com/agencydesk/agency-api/internal/dto"
	"github.com/agencydesk/agency-api/internal/middleware"
	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/services"
	"github.com/agencydesk/agency-api/internal/utils"
)

// SignatureHandler serves the /signature endpoints
type SignatureHandler struct {
	sigService *services.SignatureService
}

// NewSignatureHandler creates a new SignatureHandler
func NewSignatureHandler(sigService *services.SignatureService) *SignatureHandler {
	return &SignatureHandler{sigService: sigService}
}

type createSignatureRequest struct {
	SignerID    uint64     `json:"signer_id" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	DocumentURL string     `json:"document_url" binding:"required"`
	Deadline    *time.Time `json:"deadline"`
}

type updateSignatureRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DocumentURL *string    `json:"document_url"`
	Deadline    *time.Time `json:"deadline"`
}

type signRequest struct {
	LegalName string `json:"legal_name" binding:"required"`
}

// CreateRequest asks a creator to sign a document
func (h *SignatureHandler) CreateRequest(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req createSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	request, err := h.sigService.CreateRequest(actor, services.CreateSignatureInput{
		SignerID:    req.SignerID,
		Title:       req.Title,
		Description: req.Description,
		DocumentURL: req.DocumentURL,
		Deadline:    req.Deadline,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToSignatureRequestDTO(*request))
}

// GetRequest returns one signature request
func (h *SignatureHandler) GetRequest(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid request id")
		return
	}

	request, err := h.sigService.GetRequest(actor, id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSignatureRequestDTO(*request))
}

// ListRequests lists the signature requests visible to the actor
func (h *SignatureHandler) ListRequests(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	input := services.ListSignaturesInput{
		Search: c.Query("search"),
		Skip:   params.Skip,
		Limit:  params.Limit,
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.SignatureStatus(statusStr)
		if !status.IsValid() {
			apperrors.BadRequest(c, "Invalid status")
			return
		}
		input.Status = &status
	}

	requests, total, err := h.sigService.ListRequests(actor, input)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SignatureListResponse{
		Requests: dto.ToSignatureRequestDTOs(requests),
		Pagination: utils.PaginationResponse{
			Skip:  params.Skip,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// Sign records the signer's consent
func (h *SignatureHandler) Sign(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid request id")
		return
	}

	var req signRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	request, err := h.sigService.Sign(actor, id, services.SignInput{
		LegalName: req.LegalName,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSignatureRequestDTO(*request))
}

// Decline lets the signer refuse a pending request
func (h *SignatureHandler) Decline(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid request id")
		return
	}

	request, err := h.sigService.Decline(actor, id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSignatureRequestDTO(*request))
}

// UpdateRequest edits a pending request
func (h *SignatureHandler) UpdateRequest(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid request id")
		return
	}

	var req updateSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	request, err := h.sigService.UpdateRequest(actor, id, services.UpdateSignatureInput{
		Title:       req.Title,
		Description: req.Description,
		DocumentURL: req.DocumentURL,
		Deadline:    req.Deadline,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSignatureRequestDTO(*request))
}

// DeleteRequest removes a request
func (h *SignatureHandler) DeleteRequest(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid request id")
		return
	}

	if err := h.sigService.DeleteRequest(actor, id); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signature request deleted"})
}
