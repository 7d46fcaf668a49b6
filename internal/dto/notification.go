package dto

import (
	"time"

	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/utils"
)

// NotificationDTO represents a notification in API responses
type NotificationDTO struct {
	ID              uint64                      `json:"id"`
	Title           string                      `json:"title"`
	Body            string                      `json:"body,omitempty"`
	Category        models.NotificationCategory `json:"category"`
	Severity        models.NotificationSeverity `json:"severity"`
	EntityType      string                      `json:"entity_type,omitempty"`
	EntityID        *uint64                     `json:"entity_id,omitempty"`
	ClickActionLink string                      `json:"click_action_link,omitempty"`
	IsRead          bool                        `json:"is_read"`
	CreatedAt       time.Time                   `json:"created_at"`
	Actor           *UserRefDTO                 `json:"actor,omitempty"`
}

// NotificationListResponse represents the paginated inbox
type NotificationListResponse struct {
	Notifications []NotificationDTO        `json:"notifications"`
	UnreadCount   int64                    `json:"unread_count"`
	Pagination    utils.PaginationResponse `json:"pagination"`
}

// ToNotificationDTO converts a Notification model to NotificationDTO
func ToNotificationDTO(n models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:              n.ID,
		Title:           n.Title,
		Body:            n.Body,
		Category:        n.Category,
		Severity:        n.Severity,
		EntityType:      n.EntityType,
		EntityID:        n.EntityID,
		ClickActionLink: n.ClickActionLink,
		IsRead:          n.IsRead,
		CreatedAt:       n.CreatedAt,
		Actor:           ToUserRefDTO(n.Actor),
	}
}

// ToNotificationDTOs converts a slice of Notification models
func ToNotificationDTOs(notifs []models.Notification) []NotificationDTO {
	dtos := make([]NotificationDTO, len(notifs))
	for i, n := range notifs {
		dtos[i] = ToNotificationDTO(n)
	}
	return dtos
}
