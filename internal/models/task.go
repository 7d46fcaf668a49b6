package models

import "time"

type TaskStatus string

const (
	TaskStatusTodo      TaskStatus = "todo"
	TaskStatusReview    TaskStatus = "review"
	TaskStatusBlocked   TaskStatus = "blocked"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusMissed    TaskStatus = "missed"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusReview, TaskStatusBlocked, TaskStatusCompleted, TaskStatusMissed:
		return true
	}
	return false
}

// Terminal reports whether the task can no longer change state.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusMissed
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type ContentType string

const (
	ContentPPV   ContentType = "ppv"
	ContentFeed  ContentType = "feed"
	ContentPromo ContentType = "promo"
	ContentStory ContentType = "story"
	ContentOther ContentType = "other"
)

func (c ContentType) IsValid() bool {
	switch c {
	case ContentPPV, ContentFeed, ContentPromo, ContentStory, ContentOther:
		return true
	}
	return false
}

// Task is a unit of assigned content work. The assignee is always a
// digital_creator; the assigner's authority over the assignee is checked
// once, at creation time.
type Task struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	AssignerID  uint64       `gorm:"not null;index" json:"assigner_id"`
	AssigneeID  uint64       `gorm:"not null;index" json:"assignee_id"`
	Title       string       `gorm:"type:varchar(150);not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'todo';index" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	DueDate     *time.Time   `json:"due_date"`
	CompletedAt *time.Time   `json:"completed_at"`

	// Requirements communicated to the creator.
	ReqContentType     ContentType `gorm:"type:varchar(20);not null" json:"req_content_type"`
	ReqQuantity        int         `gorm:"default:1" json:"req_quantity"`
	ReqDurationSeconds int         `json:"req_duration_seconds"`
	ReqOutfitTags      string      `gorm:"type:varchar(255)" json:"req_outfit_tags"`
	ReqFaceVisible     bool        `gorm:"default:true" json:"req_face_visible"`
	ReqWatermark       bool        `gorm:"default:false" json:"req_watermark"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Assigner     *User          `gorm:"foreignKey:AssignerID" json:"assigner,omitempty"`
	Assignee     *User          `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	ChatMessages []TaskChat     `gorm:"foreignKey:TaskID" json:"chat_messages,omitempty"`
	Attachments  []ContentVault `gorm:"foreignKey:TaskID" json:"attachments,omitempty"`

	// ChatCount annotates list responses; never persisted.
	ChatCount int64 `gorm:"-" json:"chat_count"`
}

// TaskChat is the append-only message log attached to a task. There is no
// edit or delete path; system rows record lifecycle transitions.
type TaskChat struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	TaskID      uint64    `gorm:"not null;index" json:"task_id"`
	UserID      uint64    `gorm:"not null" json:"user_id"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	IsSystemLog bool      `gorm:"not null;default:false" json:"is_system_log"`
	CreatedAt   time.Time `json:"created_at"`

	Author *User `gorm:"foreignKey:UserID" json:"author,omitempty"`
}
