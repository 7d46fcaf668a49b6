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

// TaskService handles task lifecycle business logic
type TaskService struct {
	taskRepo       repository.TaskRepository
	userRepo       repository.UserRepository
	notifService   *NotificationService
	reviewRequired bool
}

// NewTaskService creates a new TaskService. reviewRequired routes
// submissions through the review state instead of completing directly.
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, notifService *NotificationService, reviewRequired bool) *TaskService {
	return &TaskService{
		taskRepo:       taskRepo,
		userRepo:       userRepo,
		notifService:   notifService,
		reviewRequired: reviewRequired,
	}
}

// FileInput describes one uploaded file accompanying a task operation.
type FileInput struct {
	FileURL         string
	ThumbnailURL    string
	FileSizeMB      float64
	MimeType        string
	DurationSeconds int
	Tags            string
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	AssigneeID         uint64
	Title              string
	Description        string
	Priority           models.TaskPriority
	DueDate            *time.Time
	ReqContentType     models.ContentType
	ReqQuantity        int
	ReqDurationSeconds int
	ReqOutfitTags      []string
	ReqFaceVisible     *bool
	ReqWatermark       bool
	Attachments        []FileInput
}

// UpdateTaskInput represents a partial task update. Nil fields are left
// untouched.
type UpdateTaskInput struct {
	Title              *string
	Description        *string
	Status             *models.TaskStatus
	Priority           *models.TaskPriority
	DueDate            *time.Time
	ClearDueDate       bool
	ReqContentType     *models.ContentType
	ReqQuantity        *int
	ReqDurationSeconds *int
	ReqOutfitTags      []string
	ReqFaceVisible     *bool
	ReqWatermark       *bool
}

// SubmitTaskInput represents a work submission by the assignee
type SubmitTaskInput struct {
	Deliverables []FileInput
	Comment      string
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status     *models.TaskStatus
	AssigneeID *uint64
	Search     string
	Skip       int
	Limit      int
}

// CreateTask assigns work to a creator. The assigner's authority over the
// assignee is checked here, once; reference attachments persist as
// auto-approved vault rows in the same transaction.
func (s *TaskService) CreateTask(actor *models.User, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.Validation("title is required")
	}
	if !input.ReqContentType.IsValid() {
		return nil, apperrors.Validation("invalid content type")
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.IsValid() {
		return nil, apperrors.Validation("invalid priority")
	}
	if input.ReqQuantity <= 0 {
		input.ReqQuantity = 1
	}

	assignee, err := s.userRepo.FindCreator(input.AssigneeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("assignee not found")
		}
		return nil, apperrors.Persistence(err)
	}
	if !authz.CanActOnCreator(actor, assignee) {
		return nil, apperrors.Authorization("you cannot assign tasks to this creator")
	}

	faceVisible := true
	if input.ReqFaceVisible != nil {
		faceVisible = *input.ReqFaceVisible
	}

	task := &models.Task{
		AssignerID:         actor.ID,
		AssigneeID:         assignee.ID,
		Title:              strings.TrimSpace(input.Title),
		Description:        input.Description,
		Status:             models.TaskStatusTodo,
		Priority:           input.Priority,
		DueDate:            input.DueDate,
		ReqContentType:     input.ReqContentType,
		ReqQuantity:        input.ReqQuantity,
		ReqDurationSeconds: input.ReqDurationSeconds,
		ReqOutfitTags:      strings.Join(input.ReqOutfitTags, ","),
		ReqFaceVisible:     faceVisible,
		ReqWatermark:       input.ReqWatermark,
	}

	now := time.Now()
	attachments := make([]models.ContentVault, 0, len(input.Attachments))
	for _, f := range input.Attachments {
		if f.FileURL == "" {
			return nil, apperrors.Validation("attachment file_url is required")
		}
		attachments = append(attachments, models.ContentVault{
			UploaderID:      actor.ID,
			FileURL:         f.FileURL,
			ThumbnailURL:    f.ThumbnailURL,
			FileSizeMB:      f.FileSizeMB,
			MimeType:        f.MimeType,
			DurationSeconds: f.DurationSeconds,
			ContentType:     input.ReqContentType,
			Tags:            f.Tags,
			Status:          models.ContentApproved,
			ApprovedBy:      &actor.ID,
			ApprovedAt:      &now,
		})
	}

	notifs := s.notifService.Compose(ComposeInput{
		Recipients: []uint64{assignee.ID},
		ActorID:    &actor.ID,
		Title:      "New task assigned",
		Body:       fmt.Sprintf("%s assigned you: %s", actor.FullName, task.Title),
		Category:   models.CategoryTask,
		Severity:   models.SeverityHigh,
		EntityType: "task",
	})

	if err := s.taskRepo.CreateWithAttachments(task, attachments, notifs); err != nil {
		return nil, apperrors.Persistence(err)
	}
	task.Assignee = assignee
	task.Assigner = actor
	return task, nil
}

// GetTask returns a task the actor may see. Out-of-scope tasks read as
// missing rather than forbidden.
func (s *TaskService) GetTask(actor *models.User, id uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id, "Assigner", "Assignee", "Attachments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("task not found")
		}
		return nil, apperrors.Persistence(err)
	}
	if !authz.CanViewTask(actor, task) {
		return nil, apperrors.NotFound("task not found")
	}
	return task, nil
}

// UpdateTask applies a partial update. A digital_creator may only touch
// status; any other field present fails the whole request.
func (s *TaskService) UpdateTask(actor *models.User, id uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(actor, id)
	if err != nil {
		return nil, err
	}
	if task.Status.Terminal() {
		return nil, apperrors.Conflict("task is already finalized")
	}

	if actor.Role == models.RoleDigitalCreator {
		if input.Title != nil || input.Description != nil || input.Priority != nil ||
			input.DueDate != nil || input.ClearDueDate || input.ReqContentType != nil ||
			input.ReqQuantity != nil || input.ReqDurationSeconds != nil ||
			input.ReqOutfitTags != nil || input.ReqFaceVisible != nil || input.ReqWatermark != nil {
			return nil, apperrors.Authorization("creators may only update task status")
		}
	} else if actor.Role != models.RoleAdmin && task.AssignerID != actor.ID {
		return nil, apperrors.Authorization("only the assigner or an admin can update this task")
	}

	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, apperrors.Validation("invalid status")
		}
		// Review and completed are reached through the submission flow,
		// never by direct edit.
		if *input.Status == models.TaskStatusReview || *input.Status == models.TaskStatusCompleted {
			return nil, apperrors.Validation("use the submission flow to complete a task")
		}
		if actor.Role == models.RoleDigitalCreator && *input.Status == models.TaskStatusMissed {
			return nil, apperrors.Authorization("creators cannot mark tasks missed")
		}
		task.Status = *input.Status
	}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, apperrors.Validation("title cannot be empty")
		}
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, apperrors.Validation("invalid priority")
		}
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.ReqContentType != nil {
		if !input.ReqContentType.IsValid() {
			return nil, apperrors.Validation("invalid content type")
		}
		task.ReqContentType = *input.ReqContentType
	}
	if input.ReqQuantity != nil && *input.ReqQuantity > 0 {
		task.ReqQuantity = *input.ReqQuantity
	}
	if input.ReqDurationSeconds != nil {
		task.ReqDurationSeconds = *input.ReqDurationSeconds
	}
	if input.ReqOutfitTags != nil {
		task.ReqOutfitTags = strings.Join(input.ReqOutfitTags, ",")
	}
	if input.ReqFaceVisible != nil {
		task.ReqFaceVisible = *input.ReqFaceVisible
	}
	if input.ReqWatermark != nil {
		task.ReqWatermark = *input.ReqWatermark
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, apperrors.Persistence(err)
	}
	return task, nil
}

// SubmitTask is the assignee handing in work: deliverables land as pending
// vault rows, the status advances (review under the approval policy,
// completed otherwise), and a system chat line plus the optional comment
// are appended, all in one transaction.
func (s *TaskService) SubmitTask(actor *models.User, id uint64, input SubmitTaskInput) (*models.Task, error) {
	task, err := s.GetTask(actor, id)
	if err != nil {
		return nil, err
	}
	if task.AssigneeID != actor.ID {
		return nil, apperrors.Authorization("only the assignee can submit work")
	}
	if task.Status.Terminal() {
		return nil, apperrors.Conflict("task is already finalized")
	}
	if task.Status == models.TaskStatusReview {
		return nil, apperrors.Conflict("task is already awaiting review")
	}
	if len(input.Deliverables) == 0 {
		return nil, apperrors.Validation("at least one deliverable is required")
	}

	deliverables := make([]models.ContentVault, 0, len(input.Deliverables))
	for _, f := range input.Deliverables {
		if f.FileURL == "" {
			return nil, apperrors.Validation("deliverable file_url is required")
		}
		deliverables = append(deliverables, models.ContentVault{
			UploaderID:      actor.ID,
			TaskID:          &task.ID,
			FileURL:         f.FileURL,
			ThumbnailURL:    f.ThumbnailURL,
			FileSizeMB:      f.FileSizeMB,
			MimeType:        f.MimeType,
			DurationSeconds: f.DurationSeconds,
			ContentType:     task.ReqContentType,
			Tags:            f.Tags,
			Status:          models.ContentPending,
		})
	}

	statusWord := "completed"
	if s.reviewRequired {
		task.Status = models.TaskStatusReview
		statusWord = "submitted for review"
	} else {
		task.Status = models.TaskStatusCompleted
		now := time.Now()
		task.CompletedAt = &now
	}

	chats := []models.TaskChat{{
		TaskID:      task.ID,
		UserID:      actor.ID,
		Message:     fmt.Sprintf("%s %s the task with %d deliverable(s)", actor.FullName, statusWord, len(deliverables)),
		IsSystemLog: true,
	}}
	if strings.TrimSpace(input.Comment) != "" {
		chats = append(chats, models.TaskChat{
			TaskID:  task.ID,
			UserID:  actor.ID,
			Message: strings.TrimSpace(input.Comment),
		})
	}

	recipients := []uint64{task.AssignerID}
	if actor.ManagerID != nil {
		recipients = append(recipients, *actor.ManagerID)
	}
	notifs := s.notifService.Compose(ComposeInput{
		Recipients: recipients,
		ActorID:    &actor.ID,
		Title:      "Work submitted",
		Body:       fmt.Sprintf("%s %s: %s", actor.FullName, statusWord, task.Title),
		Category:   models.CategoryTask,
		Severity:   models.SeverityHigh,
		EntityType: "task",
		EntityID:   &task.ID,
	})

	if err := s.taskRepo.SubmitWork(task, deliverables, chats, notifs); err != nil {
		return nil, apperrors.Persistence(err)
	}
	return task, nil
}

// ApproveTask moves a task in review to completed and approves its
// pending deliverables
func (s *TaskService) ApproveTask(actor *models.User, id uint64) (*models.Task, error) {
	task, err := s.GetTask(actor, id)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskStatusReview {
		return nil, apperrors.Conflict("task is not awaiting review")
	}
	if actor.ID == task.AssigneeID {
		return nil, apperrors.Authorization("the assignee cannot approve their own work")
	}
	if actor.Role != models.RoleAdmin && actor.ID != task.AssignerID &&
		!authz.CanActOnCreator(actor, task.Assignee) {
		return nil, apperrors.Authorization("you cannot approve this task")
	}

	task.Status = models.TaskStatusCompleted
	now := time.Now()
	task.CompletedAt = &now

	notifs := s.notifService.Compose(ComposeInput{
		Recipients: []uint64{task.AssigneeID},
		ActorID:    &actor.ID,
		Title:      "Work approved",
		Body:       fmt.Sprintf("%s approved your work on: %s", actor.FullName, task.Title),
		Category:   models.CategoryTask,
		Severity:   models.SeverityNormal,
		EntityType: "task",
		EntityID:   &task.ID,
	})

	if err := s.taskRepo.ApproveSubmission(task, actor.ID, notifs); err != nil {
		return nil, apperrors.Persistence(err)
	}
	return task, nil
}

// DeleteTask removes the task with its chat log and attachments
func (s *TaskService) DeleteTask(actor *models.User, id uint64) error {
	task, err := s.GetTask(actor, id)
	if err != nil {
		return err
	}
	if actor.Role != models.RoleAdmin && task.AssignerID != actor.ID {
		return apperrors.Authorization("only the assigner or an admin can delete this task")
	}
	if err := s.taskRepo.Delete(task.ID); err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}

// ListTasks returns the tasks visible to the actor, annotated with chat
// counts
func (s *TaskService) ListTasks(actor *models.User, input ListTasksInput) ([]models.Task, int64, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, 0, apperrors.Validation("invalid status")
	}
	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		Scope:      authz.VisibilityScope(actor),
		Status:     input.Status,
		AssigneeID: input.AssigneeID,
		Search:     input.Search,
		Skip:       input.Skip,
		Limit:      input.Limit,
	})
	if err != nil {
		return nil, 0, apperrors.Persistence(err)
	}
	return tasks, total, nil
}

// ChatHistory returns a window of the task's chat log
func (s *TaskService) ChatHistory(actor *models.User, taskID uint64, page repository.ChatPage) ([]models.TaskChat, error) {
	if _, err := s.GetTask(actor, taskID); err != nil {
		return nil, err
	}
	msgs, err := s.taskRepo.ChatHistory(taskID, page)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	return msgs, nil
}

// SendMessage appends a chat message and pings the other party
func (s *TaskService) SendMessage(actor *models.User, taskID uint64, message string) (*models.TaskChat, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.Validation("message cannot be empty")
	}

	task, err := s.GetTask(actor, taskID)
	if err != nil {
		return nil, err
	}

	msg := &models.TaskChat{
		TaskID:  task.ID,
		UserID:  actor.ID,
		Message: message,
	}
	if err := s.taskRepo.CreateChat(msg); err != nil {
		return nil, apperrors.Persistence(err)
	}
	msg.Author = actor

	if err := s.notifService.Notify(ComposeInput{
		Recipients: []uint64{task.AssignerID, task.AssigneeID},
		ActorID:    &actor.ID,
		Title:      "New message",
		Body:       fmt.Sprintf("%s commented on: %s", actor.FullName, task.Title),
		Category:   models.CategoryTask,
		Severity:   models.SeverityNormal,
		EntityType: "task",
		EntityID:   &task.ID,
	}); err != nil {
		return nil, err
	}
	return msg, nil
}
