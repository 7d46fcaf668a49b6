package dto

import (
	"strings"
	"time"

	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	AssignerID  uint64              `json:"assigner_id"`
	AssigneeID  uint64              `json:"assignee_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
	CompletedAt *time.Time          `json:"completed_at"`

	Requirements TaskRequirementsDTO `json:"requirements"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Assigner    *UserRefDTO `json:"assigner,omitempty"`
	Assignee    *UserRefDTO `json:"assignee,omitempty"`
	Attachments []FileDTO   `json:"attachments,omitempty"`
	ChatCount   int64       `json:"chat_count"`
}

// TaskRequirementsDTO groups the content requirements communicated to the
// creator
type TaskRequirementsDTO struct {
	ContentType     models.ContentType `json:"content_type"`
	Quantity        int                `json:"quantity"`
	DurationSeconds int                `json:"duration_seconds,omitempty"`
	OutfitTags      []string           `json:"outfit_tags,omitempty"`
	FaceVisible     bool               `json:"face_visible"`
	Watermark       bool               `json:"watermark"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ChatMessageDTO represents one chat log entry
type ChatMessageDTO struct {
	ID          uint64      `json:"id"`
	TaskID      uint64      `json:"task_id"`
	UserID      uint64      `json:"user_id"`
	Message     string      `json:"message"`
	IsSystemLog bool        `json:"is_system_log"`
	CreatedAt   time.Time   `json:"created_at"`
	Author      *UserRefDTO `json:"author,omitempty"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	var outfitTags []string
	if task.ReqOutfitTags != "" {
		outfitTags = strings.Split(task.ReqOutfitTags, ",")
	}

	dto := TaskDTO{
		ID:          task.ID,
		AssignerID:  task.AssignerID,
		AssigneeID:  task.AssigneeID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		CompletedAt: task.CompletedAt,
		Requirements: TaskRequirementsDTO{
			ContentType:     task.ReqContentType,
			Quantity:        task.ReqQuantity,
			DurationSeconds: task.ReqDurationSeconds,
			OutfitTags:      outfitTags,
			FaceVisible:     task.ReqFaceVisible,
			Watermark:       task.ReqWatermark,
		},
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
		Assigner:  ToUserRefDTO(task.Assigner),
		Assignee:  ToUserRefDTO(task.Assignee),
		ChatCount: task.ChatCount,
	}
	for _, a := range task.Attachments {
		dto.Attachments = append(dto.Attachments, ToFileDTO(a))
	}
	return dto
}

// ToTaskDTOs converts a slice of Task models
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = ToTaskDTO(t)
	}
	return dtos
}

// ToChatMessageDTO converts a TaskChat model to ChatMessageDTO
func ToChatMessageDTO(msg models.TaskChat) ChatMessageDTO {
	return ChatMessageDTO{
		ID:          msg.ID,
		TaskID:      msg.TaskID,
		UserID:      msg.UserID,
		Message:     msg.Message,
		IsSystemLog: msg.IsSystemLog,
		CreatedAt:   msg.CreatedAt,
		Author:      ToUserRefDTO(msg.Author),
	}
}

// ToChatMessageDTOs converts a slice of TaskChat models
func ToChatMessageDTOs(msgs []models.TaskChat) []ChatMessageDTO {
	dtos := make([]ChatMessageDTO, len(msgs))
	for i, m := range msgs {
		dtos[i] = ToChatMessageDTO(m)
	}
	return dtos
}
