package dto

import (
	"time"

	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/utils"
)

// SignatureRequestDTO represents a signature request in API responses
type SignatureRequestDTO struct {
	ID          uint64                 `json:"id"`
	RequesterID uint64                 `json:"requester_id"`
	SignerID    uint64                 `json:"signer_id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	DocumentURL string                 `json:"document_url"`
	Status      models.SignatureStatus `json:"status"`
	Deadline    *time.Time             `json:"deadline,omitempty"`

	SignedLegalName string     `json:"signed_legal_name,omitempty"`
	SignedAt        *time.Time `json:"signed_at,omitempty"`

	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Requester *UserRefDTO `json:"requester,omitempty"`
	Signer    *UserRefDTO `json:"signer,omitempty"`
}

// SignatureListResponse represents a paginated list of signature requests
type SignatureListResponse struct {
	Requests   []SignatureRequestDTO    `json:"requests"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToSignatureRequestDTO converts a SignatureRequest model. The signer's IP
// is deliberately not serialized; it is audit data, not API data.
func ToSignatureRequestDTO(req models.SignatureRequest) SignatureRequestDTO {
	return SignatureRequestDTO{
		ID:              req.ID,
		RequesterID:     req.RequesterID,
		SignerID:        req.SignerID,
		Title:           req.Title,
		Description:     req.Description,
		DocumentURL:     req.DocumentURL,
		Status:          req.Status,
		Deadline:        req.Deadline,
		SignedLegalName: req.SignedLegalName,
		SignedAt:        req.SignedAt,
		CreatedAt:       req.CreatedAt,
		UpdatedAt:       req.UpdatedAt,
		Requester:       ToUserRefDTO(req.Requester),
		Signer:          ToUserRefDTO(req.Signer),
	}
}

// ToSignatureRequestDTOs converts a slice of SignatureRequest models
func ToSignatureRequestDTOs(reqs []models.SignatureRequest) []SignatureRequestDTO {
	dtos := make([]SignatureRequestDTO, len(reqs))
	for i, r := range reqs {
		dtos[i] = ToSignatureRequestDTO(r)
	}
	return dtos
}
