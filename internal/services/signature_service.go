package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/agencydesk/agency-api/internal/apperrors"
	"github.com/agencydesk/agency-api/internal/authz"
	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/repository"
)

// SignatureService handles signature-request business logic
type SignatureService struct {
	sigRepo      repository.SignatureRepository
	userRepo     repository.UserRepository
	notifService *NotificationService
}

// NewSignatureService creates a new SignatureService
func NewSignatureService(sigRepo repository.SignatureRepository, userRepo repository.UserRepository, notifService *NotificationService) *SignatureService {
	return &SignatureService{
		sigRepo:      sigRepo,
		userRepo:     userRepo,
		notifService: notifService,
	}
}

// CreateSignatureInput represents input for creating a signature request
type CreateSignatureInput struct {
	SignerID    uint64
	Title       string
	Description string
	DocumentURL string
	Deadline    *time.Time
}

// UpdateSignatureInput represents a partial update of a pending request
type UpdateSignatureInput struct {
	Title       *string
	Description *string
	DocumentURL *string
	Deadline    *time.Time
}

// SignInput captures the signer's consent details
type SignInput struct {
	LegalName string
	IPAddress string
}

// ListSignaturesInput represents filters for listing signature requests
type ListSignaturesInput struct {
	Status *models.SignatureStatus
	Search string
	Skip   int
	Limit  int
}

// CreateRequest asks a creator to sign a document. The same hierarchy
// predicate as task assignment applies.
func (s *SignatureService) CreateRequest(actor *models.User, input CreateSignatureInput) (*models.SignatureRequest, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.Validation("title is required")
	}
	if input.DocumentURL == "" {
		return nil, apperrors.Validation("document_url is required")
	}

	signer, err := s.userRepo.FindCreator(input.SignerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("signer not found")
		}
		return nil, apperrors.Persistence(err)
	}
	if !authz.CanActOnCreator(actor, signer) {
		return nil, apperrors.Authorization("you cannot request signatures from this creator")
	}

	req := &models.SignatureRequest{
		RequesterID: actor.ID,
		SignerID:    signer.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		DocumentURL: input.DocumentURL,
		Status:      models.SignaturePending,
		Deadline:    input.Deadline,
	}
	if err := s.sigRepo.Create(req); err != nil {
		return nil, apperrors.Persistence(err)
	}
	req.Requester = actor
	req.Signer = signer

	if err := s.notifService.Notify(ComposeInput{
		Recipients: []uint64{signer.ID},
		ActorID:    &actor.ID,
		Title:      "Signature requested",
		Body:       fmt.Sprintf("%s requests your signature: %s", actor.FullName, req.Title),
		Category:   models.CategorySignature,
		Severity:   models.SeverityHigh,
		EntityType: "signature_request",
		EntityID:   &req.ID,
	}); err != nil {
		return nil, err
	}
	return req, nil
}

// GetRequest returns a request the actor may see. Out-of-scope requests
// read as missing.
func (s *SignatureService) GetRequest(actor *models.User, id uint64) (*models.SignatureRequest, error) {
	req, err := s.sigRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("signature request not found")
		}
		return nil, apperrors.Persistence(err)
	}
	if !s.canSee(actor, req) {
		return nil, apperrors.NotFound("signature request not found")
	}
	return req, nil
}

func (s *SignatureService) canSee(actor *models.User, req *models.SignatureRequest) bool {
	if actor.Role == models.RoleAdmin || actor.ID == req.RequesterID || actor.ID == req.SignerID {
		return true
	}
	return req.Signer != nil && authz.CanActOnCreator(actor, req.Signer)
}

// ListRequests returns the requests visible to the actor
func (s *SignatureService) ListRequests(actor *models.User, input ListSignaturesInput) ([]models.SignatureRequest, int64, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, 0, apperrors.Validation("invalid status")
	}
	reqs, total, err := s.sigRepo.List(repository.SignatureFilter{
		Scope:  authz.VisibilityScope(actor),
		Status: input.Status,
		Search: input.Search,
		Skip:   input.Skip,
		Limit:  input.Limit,
	})
	if err != nil {
		return nil, 0, apperrors.Persistence(err)
	}
	return reqs, total, nil
}

// Sign records the signer's consent. Pending is the only signable state.
func (s *SignatureService) Sign(actor *models.User, id uint64, input SignInput) (*models.SignatureRequest, error) {
	req, err := s.GetRequest(actor, id)
	if err != nil {
		return nil, err
	}
	if req.SignerID != actor.ID {
		return nil, apperrors.Authorization("only the designated signer can sign")
	}
	if req.Status.Terminal() {
		return nil, apperrors.Conflict("signature request is already finalized")
	}
	if strings.TrimSpace(input.LegalName) == "" {
		return nil, apperrors.Validation("legal name is required")
	}

	now := time.Now()
	req.Status = models.SignatureSigned
	req.SignedLegalName = strings.TrimSpace(input.LegalName)
	req.SignedAt = &now
	req.SignerIPAddress = input.IPAddress
	if err := s.sigRepo.Update(req); err != nil {
		return nil, apperrors.Persistence(err)
	}

	if err := s.notifService.Notify(ComposeInput{
		Recipients: []uint64{req.RequesterID},
		ActorID:    &actor.ID,
		Title:      "Document signed",
		Body:       fmt.Sprintf("%s signed: %s", actor.FullName, req.Title),
		Category:   models.CategorySignature,
		Severity:   models.SeverityNormal,
		EntityType: "signature_request",
		EntityID:   &req.ID,
	}); err != nil {
		return nil, err
	}
	return req, nil
}

// Decline lets the signer refuse a pending request
func (s *SignatureService) Decline(actor *models.User, id uint64) (*models.SignatureRequest, error) {
	req, err := s.GetRequest(actor, id)
	if err != nil {
		return nil, err
	}
	if req.SignerID != actor.ID {
		return nil, apperrors.Authorization("only the designated signer can decline")
	}
	if req.Status.Terminal() {
		return nil, apperrors.Conflict("signature request is already finalized")
	}

	req.Status = models.SignatureDeclined
	if err := s.sigRepo.Update(req); err != nil {
		return nil, apperrors.Persistence(err)
	}

	if err := s.notifService.Notify(ComposeInput{
		Recipients: []uint64{req.RequesterID},
		ActorID:    &actor.ID,
		Title:      "Signature declined",
		Body:       fmt.Sprintf("%s declined to sign: %s", actor.FullName, req.Title),
		Category:   models.CategorySignature,
		Severity:   models.SeverityHigh,
		EntityType: "signature_request",
		EntityID:   &req.ID,
	}); err != nil {
		return nil, err
	}
	return req, nil
}

// UpdateRequest edits a pending request. Signed documents are immutable.
func (s *SignatureService) UpdateRequest(actor *models.User, id uint64, input UpdateSignatureInput) (*models.SignatureRequest, error) {
	req, err := s.GetRequest(actor, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && actor.ID != req.RequesterID {
		return nil, apperrors.Authorization("only the requester or an admin can update this request")
	}
	if req.Status == models.SignatureSigned {
		return nil, apperrors.Conflict("signed requests are immutable")
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, apperrors.Validation("title cannot be empty")
		}
		req.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		req.Description = *input.Description
	}
	if input.DocumentURL != nil {
		if *input.DocumentURL == "" {
			return nil, apperrors.Validation("document_url cannot be empty")
		}
		req.DocumentURL = *input.DocumentURL
	}
	if input.Deadline != nil {
		req.Deadline = input.Deadline
	}

	if err := s.sigRepo.Update(req); err != nil {
		return nil, apperrors.Persistence(err)
	}
	return req, nil
}

// DeleteRequest removes a request. Signed documents are immutable.
func (s *SignatureService) DeleteRequest(actor *models.User, id uint64) error {
	req, err := s.GetRequest(actor, id)
	if err != nil {
		return err
	}
	if actor.Role != models.RoleAdmin && actor.ID != req.RequesterID {
		return apperrors.Authorization("only the requester or an admin can delete this request")
	}
	if req.Status == models.SignatureSigned {
		return apperrors.Conflict("signed requests are immutable")
	}
	if err := s.sigRepo.Delete(req.ID); err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}

// ExpireOverdue sweeps pending requests past their deadline and notifies
// both parties. Called from the background worker.
func (s *SignatureService) ExpireOverdue(now time.Time) (int, error) {
	expired, err := s.sigRepo.ExpireOverdue(now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire signature requests: %w", err)
	}
	for _, req := range expired {
		if err := s.notifService.Notify(ComposeInput{
			Recipients: []uint64{req.RequesterID, req.SignerID},
			Title:      "Signature request expired",
			Body:       fmt.Sprintf("The deadline passed for: %s", req.Title),
			Category:   models.CategorySignature,
			Severity:   models.SeverityNormal,
			EntityType: "signature_request",
			EntityID:   &req.ID,
		}); err != nil {
			return 0, err
		}
	}
	return len(expired), nil
}
