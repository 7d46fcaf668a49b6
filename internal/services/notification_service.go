package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/agencydesk/agency-api/internal/apperrors"
	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/push"
	"github.com/agencydesk/agency-api/internal/realtime"
	"github.com/agencydesk/agency-api/internal/repository"
)

// NotificationService composes notification rows, serves the inbox
// endpoints, and drains the outbox.
type NotificationService struct {
	notifRepo repository.NotificationRepository
	hub       *realtime.Hub
	sender    push.Sender
	logger    *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifRepo repository.NotificationRepository, hub *realtime.Hub, sender push.Sender, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		hub:       hub,
		sender:    sender,
		logger:    logger,
	}
}

// ComposeInput describes one notification fanned out to a recipient set.
type ComposeInput struct {
	Recipients      []uint64
	ActorID         *uint64
	Title           string
	Body            string
	Category        models.NotificationCategory
	Severity        models.NotificationSeverity
	EntityType      string
	EntityID        *uint64
	ClickActionLink string
}

// Compose builds undispatched notification rows, one per distinct
// recipient, skipping the actor. Callers hand the rows to a repository
// method so they persist in the same transaction as the triggering
// mutation.
func (s *NotificationService) Compose(input ComposeInput) []models.Notification {
	seen := make(map[uint64]bool, len(input.Recipients))
	notifs := make([]models.Notification, 0, len(input.Recipients))
	for _, recipientID := range input.Recipients {
		if recipientID == 0 || seen[recipientID] {
			continue
		}
		if input.ActorID != nil && recipientID == *input.ActorID {
			continue
		}
		seen[recipientID] = true
		notifs = append(notifs, models.Notification{
			RecipientID:     recipientID,
			ActorID:         input.ActorID,
			Title:           input.Title,
			Body:            input.Body,
			Category:        input.Category,
			Severity:        input.Severity,
			EntityType:      input.EntityType,
			EntityID:        input.EntityID,
			ClickActionLink: input.ClickActionLink,
		})
	}
	return notifs
}

// Notify persists composed rows outside any caller transaction. Used for
// events with no surrounding business write.
func (s *NotificationService) Notify(input ComposeInput) error {
	notifs := s.Compose(input)
	if len(notifs) == 0 {
		return nil
	}
	if err := s.notifRepo.CreateBatch(notifs); err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}

// DispatchPending drains one batch of the outbox: every undispatched row
// is broadcast to the recipient's live connections, push-worthy rows also
// go to the recipient's registered devices, and all rows are flagged
// dispatched. Push failures are logged and never retried.
func (s *NotificationService) DispatchPending(ctx context.Context, batchSize int) (int, error) {
	pending, err := s.notifRepo.ListUndispatched(batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list undispatched notifications: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	ids := make([]uint64, 0, len(pending))
	pushRecipients := make(map[uint64][]models.Notification)
	for _, n := range pending {
		ids = append(ids, n.ID)
		s.hub.Broadcast([]uint64{n.RecipientID}, realtime.Event{
			Type:    "notification",
			Payload: n,
		})
		if n.Severity.PushWorthy() {
			pushRecipients[n.RecipientID] = append(pushRecipients[n.RecipientID], n)
		}
	}

	for recipientID, notifs := range pushRecipients {
		tokens, err := s.notifRepo.DeviceTokens([]uint64{recipientID})
		if err != nil {
			s.logger.Warn("failed to load device tokens",
				zap.Uint64("recipient_id", recipientID),
				zap.Error(err))
			continue
		}
		if len(tokens) == 0 {
			continue
		}
		for _, n := range notifs {
			if err := s.sender.Send(ctx, push.Message{
				Tokens:          tokens,
				Title:           n.Title,
				Body:            n.Body,
				ClickActionLink: n.ClickActionLink,
			}); err != nil {
				s.logger.Warn("push delivery failed",
					zap.Uint64("notification_id", n.ID),
					zap.Error(err))
			}
		}
	}

	if err := s.notifRepo.MarkDispatched(ids); err != nil {
		return 0, fmt.Errorf("failed to mark notifications dispatched: %w", err)
	}
	return len(ids), nil
}

// ListMine returns the actor's notifications alongside total and unread
// counts
func (s *NotificationService) ListMine(userID uint64, unreadOnly bool, skip, limit int) ([]models.Notification, int64, int64, error) {
	notifs, total, err := s.notifRepo.ListByRecipient(userID, unreadOnly, skip, limit)
	if err != nil {
		return nil, 0, 0, apperrors.Persistence(err)
	}
	unread, err := s.notifRepo.UnreadCount(userID)
	if err != nil {
		return nil, 0, 0, apperrors.Persistence(err)
	}
	return notifs, total, unread, nil
}

// UnreadCount counts the actor's unread notifications
func (s *NotificationService) UnreadCount(userID uint64) (int64, error) {
	count, err := s.notifRepo.UnreadCount(userID)
	if err != nil {
		return 0, apperrors.Persistence(err)
	}
	return count, nil
}

// MarkRead marks one of the actor's notifications read. Another user's
// notification reads as missing.
func (s *NotificationService) MarkRead(id, userID uint64) error {
	if err := s.notifRepo.MarkRead(id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("notification not found")
		}
		return apperrors.Persistence(err)
	}
	return nil
}

// MarkAllRead marks every notification of the actor read
func (s *NotificationService) MarkAllRead(userID uint64) error {
	if err := s.notifRepo.MarkAllRead(userID); err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}

// RegisterDevice stores an FCM token for the actor
func (s *NotificationService) RegisterDevice(userID uint64, token, platform string) error {
	if token == "" {
		return apperrors.Validation("fcm_token is required")
	}
	if platform == "" {
		platform = "android"
	}
	device := &models.UserDevice{UserID: userID, FCMToken: token, Platform: platform}
	if err := s.notifRepo.UpsertDevice(device); err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}
