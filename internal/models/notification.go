package models

import "time"

type NotificationCategory string

const (
	CategoryTask         NotificationCategory = "task"
	CategorySignature    NotificationCategory = "signature"
	CategoryAnnouncement NotificationCategory = "announcement"
	CategoryAccount      NotificationCategory = "account"
	CategoryGeneral      NotificationCategory = "general"
)

type NotificationSeverity string

const (
	SeverityLow      NotificationSeverity = "low"
	SeverityNormal   NotificationSeverity = "normal"
	SeverityHigh     NotificationSeverity = "high"
	SeverityCritical NotificationSeverity = "critical"
)

// PushWorthy reports whether the severity warrants a mobile push.
func (s NotificationSeverity) PushWorthy() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// Notification is a fan-out record. Rows are written in the same
// transaction as the business mutation with Dispatched=false; the outbox
// worker delivers them and flips the flag. Rows are never deleted.
type Notification struct {
	ID          uint64               `gorm:"primarykey" json:"id"`
	RecipientID uint64               `gorm:"not null;index" json:"recipient_id"`
	ActorID     *uint64              `json:"actor_id"`
	Title       string               `gorm:"type:varchar(255);not null" json:"title"`
	Body        string               `gorm:"type:text" json:"body"`
	Category    NotificationCategory `gorm:"type:varchar(30);not null;default:'general'" json:"category"`
	Severity    NotificationSeverity `gorm:"type:varchar(20);not null;default:'normal'" json:"severity"`

	// Polymorphic back-reference; not FK-enforced.
	EntityType string  `gorm:"type:varchar(50)" json:"entity_type"`
	EntityID   *uint64 `json:"entity_id"`

	ClickActionLink string `gorm:"type:varchar(500)" json:"click_action_link"`

	IsRead     bool      `gorm:"not null;default:false;index" json:"is_read"`
	Dispatched bool      `gorm:"not null;default:false;index" json:"-"`
	CreatedAt  time.Time `json:"created_at"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

// UserDevice registers an FCM token for offline-capable delivery.
type UserDevice struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	UserID    uint64    `gorm:"not null;index" json:"user_id"`
	FCMToken  string    `gorm:"type:varchar(500);uniqueIndex;not null" json:"fcm_token"`
	Platform  string    `gorm:"type:varchar(20);default:'android'" json:"platform"`
	UpdatedAt time.Time `json:"updated_at"`
}
