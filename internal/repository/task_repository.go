package repository

import (
	"time"

	"github.com/agencydesk/agency-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// CreateWithAttachments persists the task, its reference attachments, and
// outbox notifications in one transaction.
func (r *GormTaskRepository) CreateWithAttachments(task *models.Task, attachments []models.ContentVault, notifs []models.Notification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}

		for i := range attachments {
			attachments[i].TaskID = &task.ID
		}
		if len(attachments) > 0 {
			if err := tx.Create(&attachments).Error; err != nil {
				return err
			}
		}

		for i := range notifs {
			notifs[i].EntityID = &task.ID
		}
		if len(notifs) > 0 {
			if err := tx.Create(&notifs).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks visible under the filter scope
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	if filter.Scope.Empty {
		return []models.Task{}, 0, nil
	}

	query := r.db.Model(&models.Task{}).
		Joins("JOIN users assignees ON assignees.id = tasks.assignee_id AND assignees.is_deleted = ?", false)

	switch {
	case filter.Scope.Unrestricted:
	case filter.Scope.ManagerID != 0:
		query = query.Where("assignees.manager_id = ?", filter.Scope.ManagerID)
	case filter.Scope.AssigneeID != 0:
		query = query.Where("tasks.assignee_id = ?", filter.Scope.AssigneeID)
	default:
		return []models.Task{}, 0, nil
	}

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.AssigneeID != nil {
		query = query.Where("tasks.assignee_id = ?", *filter.AssigneeID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.
			Joins("JOIN users assigners ON assigners.id = tasks.assigner_id").
			Where("LOWER(tasks.title) LIKE LOWER(?) OR LOWER(assigners.full_name) LIKE LOWER(?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC")
	if filter.Limit > 0 {
		listQuery = listQuery.Offset(filter.Skip).Limit(filter.Limit)
	}

	var tasks []models.Task
	if err := listQuery.
		Preload("Assigner").
		Preload("Assignee").
		Preload("Attachments").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	// Chat counts for the page in one query.
	if len(tasks) > 0 {
		ids := make([]uint64, len(tasks))
		for i, t := range tasks {
			ids[i] = t.ID
		}

		type chatCount struct {
			TaskID uint64
			Count  int64
		}
		var counts []chatCount
		if err := r.db.Model(&models.TaskChat{}).
			Select("task_id, COUNT(*) AS count").
			Where("task_id IN ?", ids).
			Group("task_id").
			Scan(&counts).Error; err != nil {
			return nil, 0, err
		}

		byTask := make(map[uint64]int64, len(counts))
		for _, c := range counts {
			byTask[c.TaskID] = c.Count
		}
		for i := range tasks {
			tasks[i].ChatCount = byTask[tasks[i].ID]
		}
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete removes the task and cascades to chat and attachments in the
// same transaction.
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskChat{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.ContentVault{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, id).Error
	})
}

// SubmitWork persists deliverables, chat rows, the task status change, and
// outbox notifications in one transaction.
func (r *GormTaskRepository) SubmitWork(task *models.Task, deliverables []models.ContentVault, chats []models.TaskChat, notifs []models.Notification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(deliverables) > 0 {
			if err := tx.Create(&deliverables).Error; err != nil {
				return err
			}
		}
		if len(chats) > 0 {
			if err := tx.Create(&chats).Error; err != nil {
				return err
			}
		}
		if len(notifs) > 0 {
			if err := tx.Create(&notifs).Error; err != nil {
				return err
			}
		}
		return tx.Save(task).Error
	})
}

// ApproveSubmission completes a task in review and approves its pending
// deliverables in one transaction.
func (r *GormTaskRepository) ApproveSubmission(task *models.Task, approverID uint64, notifs []models.Notification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&models.ContentVault{}).
			Where("task_id = ? AND uploader_id = ? AND status = ?",
				task.ID, task.AssigneeID, models.ContentPending).
			Updates(map[string]interface{}{
				"status":      models.ContentApproved,
				"approved_by": approverID,
				"approved_at": now,
			}).Error; err != nil {
			return err
		}
		if len(notifs) > 0 {
			if err := tx.Create(&notifs).Error; err != nil {
				return err
			}
		}
		return tx.Save(task).Error
	})
}

// ChatHistory returns a window of the task's chat log in ascending order.
// With no cursor the latest page is returned; BeforeID pages backwards,
// AfterID forwards.
func (r *GormTaskRepository) ChatHistory(taskID uint64, page ChatPage) ([]models.TaskChat, error) {
	query := r.db.Preload("Author").Where("task_id = ?", taskID)

	var msgs []models.TaskChat
	switch {
	case page.AfterID != 0:
		err := query.Where("id > ?", page.AfterID).
			Order("id ASC").
			Limit(page.Limit).
			Find(&msgs).Error
		if err != nil {
			return nil, err
		}
	default:
		if page.BeforeID != 0 {
			query = query.Where("id < ?", page.BeforeID)
		}
		// Latest window, fetched newest-first then reversed.
		err := query.Order("id DESC").
			Limit(page.Limit).
			Find(&msgs).Error
		if err != nil {
			return nil, err
		}
		for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
			msgs[i], msgs[j] = msgs[j], msgs[i]
		}
	}

	return msgs, nil
}

// CreateChat appends a chat message
func (r *GormTaskRepository) CreateChat(msg *models.TaskChat) error {
	return r.db.Create(msg).Error
}
