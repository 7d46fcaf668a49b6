package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agencydesk/agency-api/internal/apperrors"
	"github.com/agencydesk/agency-api/internal/constants"
	"github.com/agencydesk/agency-api/internal/dto"
	"github.com/agencydesk/agency-api/internal/middleware"
	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/repository"
	"github.com/agencydesk/agency-api/internal/services"
	"github.com/agencydesk/agency-api/internal/utils"
)

// TaskHandler serves the /tasks endpoints
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

type fileRequest struct {
	FileURL         string  `json:"file_url" binding:"required"`
	ThumbnailURL    string  `json:"thumbnail_url"`
	FileSizeMB      float64 `json:"file_size_mb"`
	MimeType        string  `json:"mime_type"`
	DurationSeconds int     `json:"duration_seconds"`
	Tags            string  `json:"tags"`
}

func (r fileRequest) toInput() services.FileInput {
	return services.FileInput{
		FileURL:         r.FileURL,
		ThumbnailURL:    r.ThumbnailURL,
		FileSizeMB:      r.FileSizeMB,
		MimeType:        r.MimeType,
		DurationSeconds: r.DurationSeconds,
		Tags:            r.Tags,
	}
}

type createTaskRequest struct {
	AssigneeID      uint64        `json:"assignee_id" binding:"required"`
	Title           string        `json:"title" binding:"required"`
	Description     string        `json:"description"`
	Priority        string        `json:"priority"`
	DueDate         *time.Time    `json:"due_date"`
	ContentType     string        `json:"content_type" binding:"required"`
	Quantity        int           `json:"quantity"`
	DurationSeconds int           `json:"duration_seconds"`
	OutfitTags      []string      `json:"outfit_tags"`
	FaceVisible     *bool         `json:"face_visible"`
	Watermark       bool          `json:"watermark"`
	Attachments     []fileRequest `json:"attachments"`
}

type updateTaskRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	Status          *string    `json:"status"`
	Priority        *string    `json:"priority"`
	DueDate         *time.Time `json:"due_date"`
	ClearDueDate    bool       `json:"clear_due_date"`
	ContentType     *string    `json:"content_type"`
	Quantity        *int       `json:"quantity"`
	DurationSeconds *int       `json:"duration_seconds"`
	OutfitTags      []string   `json:"outfit_tags"`
	FaceVisible     *bool      `json:"face_visible"`
	Watermark       *bool      `json:"watermark"`
}

type submitTaskRequest struct {
	Deliverables []fileRequest `json:"deliverables" binding:"required"`
	Comment      string        `json:"comment"`
}

type sendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// CreateTask assigns work to a creator
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	input := services.CreateTaskInput{
		AssigneeID:         req.AssigneeID,
		Title:              req.Title,
		Description:        req.Description,
		Priority:           models.TaskPriority(req.Priority),
		DueDate:            req.DueDate,
		ReqContentType:     models.ContentType(req.ContentType),
		ReqQuantity:        req.Quantity,
		ReqDurationSeconds: req.DurationSeconds,
		ReqOutfitTags:      req.OutfitTags,
		ReqFaceVisible:     req.FaceVisible,
		ReqWatermark:       req.Watermark,
	}
	for _, a := range req.Attachments {
		input.Attachments = append(input.Attachments, a.toInput())
	}

	task, err := h.taskService.CreateTask(actor, input)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns one task with its attachments
func (h *TaskHandler) GetTask(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid task id")
		return
	}

	task, err := h.taskService.GetTask(actor, id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid task id")
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	input := services.UpdateTaskInput{
		Title:              req.Title,
		Description:        req.Description,
		DueDate:            req.DueDate,
		ClearDueDate:       req.ClearDueDate,
		ReqQuantity:        req.Quantity,
		ReqDurationSeconds: req.DurationSeconds,
		ReqOutfitTags:      req.OutfitTags,
		ReqFaceVisible:     req.FaceVisible,
		ReqWatermark:       req.Watermark,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		input.Priority = &priority
	}
	if req.ContentType != nil {
		contentType := models.ContentType(*req.ContentType)
		input.ReqContentType = &contentType
	}

	task, err := h.taskService.UpdateTask(actor, id, input)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// SubmitTask is the assignee handing in deliverables
func (h *TaskHandler) SubmitTask(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid task id")
		return
	}

	var req submitTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	input := services.SubmitTaskInput{Comment: req.Comment}
	for _, d := range req.Deliverables {
		input.Deliverables = append(input.Deliverables, d.toInput())
	}

	task, err := h.taskService.SubmitTask(actor, id, input)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// ApproveTask completes a task in review
func (h *TaskHandler) ApproveTask(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid task id")
		return
	}

	task, err := h.taskService.ApproveTask(actor, id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask removes a task with its chat and attachments
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid task id")
		return
	}

	if err := h.taskService.DeleteTask(actor, id); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// ListTasks lists the tasks visible to the actor
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	input := services.ListTasksInput{
		Search: c.Query("search"),
		Skip:   params.Skip,
		Limit:  params.Limit,
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.TaskStatus(statusStr)
		if !status.IsValid() {
			apperrors.BadRequest(c, "Invalid status")
			return
		}
		input.Status = &status
	}
	if assigneeStr := c.Query("assignee_id"); assigneeStr != "" {
		assigneeID, err := strconv.ParseUint(assigneeStr, 10, 64)
		if err != nil {
			apperrors.BadRequest(c, "Invalid assignee_id")
			return
		}
		input.AssigneeID = &assigneeID
	}

	tasks, total, err := h.taskService.ListTasks(actor, input)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks: dto.ToTaskDTOs(tasks),
		Pagination: utils.PaginationResponse{
			Skip:  params.Skip,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// ChatHistory returns a window of the task's chat log
func (h *TaskHandler) ChatHistory(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid task id")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultChatPageSize)))
	if limit < 1 || limit > constants.MaxChatPageSize {
		limit = constants.DefaultChatPageSize
	}
	page := repository.ChatPage{Limit: limit}
	if beforeStr := c.Query("before_id"); beforeStr != "" {
		page.BeforeID, _ = strconv.ParseUint(beforeStr, 10, 64)
	}
	if afterStr := c.Query("after_id"); afterStr != "" {
		page.AfterID, _ = strconv.ParseUint(afterStr, 10, 64)
	}

	msgs, err := h.taskService.ChatHistory(actor, id, page)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": dto.ToChatMessageDTOs(msgs)})
}

// SendMessage appends a chat message
func (h *TaskHandler) SendMessage(c *gin.Context) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid task id")
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	msg, err := h.taskService.SendMessage(actor, id, req.Message)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToChatMessageDTO(*msg))
}
