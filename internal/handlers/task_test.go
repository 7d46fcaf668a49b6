package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agencydesk/agency-api/internal/constants"
	"github.com/agencydesk/agency-api/internal/database"
	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/push"
	"github.com/agencydesk/agency-api/internal/realtime"
	"github.com/agencydesk/agency-api/internal/repository"
	"github.com/agencydesk/agency-api/internal/services"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler

	manager *models.User
	creator *models.User
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = database.MigrateAll(suite.db)
	suite.Require().NoError(err)

	logger := zap.NewNop()
	userRepo := repository.NewUserRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	notifRepo := repository.NewNotificationRepository(suite.db)
	notifService := services.NewNotificationService(notifRepo, realtime.NewHub(logger), push.NewLogSender(logger), logger)
	taskService := services.NewTaskService(taskRepo, userRepo, notifService, false)
	suite.handler = NewTaskHandler(taskService)

	gin.SetMode(gin.TestMode)

	suite.manager = suite.createTestUser("manager@agency.test", models.RoleManager, nil)
	suite.creator = suite.createTestUser("creator@agency.test", models.RoleDigitalCreator, &suite.manager.ID)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *TaskHandlerTestSuite) createTestUser(email string, role models.UserRole, managerID *uint64) *models.User {
	user := &models.User{
		Email:         email,
		FullName:      email,
		Role:          role,
		AccountStatus: models.AccountActive,
		ManagerID:     managerID,
		PasswordHash:  "hashedpassword",
	}
	suite.db.Create(user)
	return user
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, assignerID, assigneeID uint64) *models.Task {
	task := &models.Task{
		Title:          title,
		Description:    "Test Description",
		Status:         models.TaskStatusTodo,
		Priority:       models.PriorityMedium,
		AssignerID:     assignerID,
		AssigneeID:     assigneeID,
		ReqContentType: models.ContentPPV,
		ReqQuantity:    1,
	}
	suite.db.Create(task)
	return task
}

// Helper function to create authenticated context
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, actor *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if actor != nil {
		c.Set(constants.ContextKeyUserID, actor.ID)
		c.Set(constants.ContextKeyUser, actor)
	}

	return c, w
}

// TestCreateTask_Success tests successful task creation
func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	requestBody := map[string]interface{}{
		"assignee_id":  suite.creator.ID,
		"title":        "New Task",
		"description":  "Task Description",
		"content_type": "ppv",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, suite.manager)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New Task", response["title"])
	assert.Equal(suite.T(), "todo", response["status"])
}

// TestCreateTask_InvalidRequest tests task creation with missing required fields
func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidRequest() {
	// Missing required fields: assignee_id, content_type
	requestBody := map[string]interface{}{
		"title": "New Task",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, suite.manager)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestCreateTask_Unauthorized tests creation without authentication
func (suite *TaskHandlerTestSuite) TestCreateTask_Unauthorized() {
	body, _ := json.Marshal(map[string]interface{}{
		"assignee_id":  suite.creator.ID,
		"title":        "New Task",
		"content_type": "ppv",
	})
	c, w := suite.createAuthContext("POST", "/api/tasks", body, nil)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestCreateTask_OutsideHierarchy tests assignment to a creator of another manager
func (suite *TaskHandlerTestSuite) TestCreateTask_OutsideHierarchy() {
	other := suite.createTestUser("other@agency.test", models.RoleManager, nil)

	requestBody := map[string]interface{}{
		"assignee_id":  suite.creator.ID,
		"title":        "New Task",
		"content_type": "ppv",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, other)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestGetTask_Success tests successful task retrieval
func (suite *TaskHandlerTestSuite) TestGetTask_Success() {
	task := suite.createTestTask("Test Task", suite.manager.ID, suite.creator.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, suite.manager)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), task.Title, response["title"])
}

// TestGetTask_OutOfScope tests that tasks outside the actor's scope read as missing
func (suite *TaskHandlerTestSuite) TestGetTask_OutOfScope() {
	suite.createTestTask("Test Task", suite.manager.ID, suite.creator.ID)
	other := suite.createTestUser("other@agency.test", models.RoleManager, nil)

	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, other)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestGetTask_InvalidID tests retrieval with a malformed id
func (suite *TaskHandlerTestSuite) TestGetTask_InvalidID() {
	c, w := suite.createAuthContext("GET", "/api/tasks/abc", nil, suite.manager)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateTask_Success tests successful task update
func (suite *TaskHandlerTestSuite) TestUpdateTask_Success() {
	suite.createTestTask("Old Title", suite.manager.ID, suite.creator.ID)

	requestBody := map[string]interface{}{
		"title":       "Updated Title",
		"description": "Updated Description",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PUT", "/api/tasks/1", body, suite.manager)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Updated Title", response["title"])
	assert.Equal(suite.T(), "Updated Description", response["description"])
}

// TestUpdateTask_InvalidRequest tests task update with invalid request
func (suite *TaskHandlerTestSuite) TestUpdateTask_InvalidRequest() {
	suite.createTestTask("Test Task", suite.manager.ID, suite.creator.ID)

	c, w := suite.createAuthContext("PUT", "/api/tasks/1", []byte("invalid json"), suite.manager)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateTask_AssigneeStatusOnly tests that the assignee can flip status but not content
func (suite *TaskHandlerTestSuite) TestUpdateTask_AssigneeStatusOnly() {
	suite.createTestTask("Test Task", suite.manager.ID, suite.creator.ID)

	body, _ := json.Marshal(map[string]interface{}{"status": "blocked"})
	c, w := suite.createAuthContext("PUT", "/api/tasks/1", body, suite.creator)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	body, _ = json.Marshal(map[string]interface{}{"title": "Hijacked"})
	c, w = suite.createAuthContext("PUT", "/api/tasks/1", body, suite.creator)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestSubmitTask_Success tests the assignee handing in deliverables
func (suite *TaskHandlerTestSuite) TestSubmitTask_Success() {
	suite.createTestTask("Test Task", suite.manager.ID, suite.creator.ID)

	requestBody := map[string]interface{}{
		"deliverables": []map[string]interface{}{
			{"file_url": "https://cdn.agency.test/final.mp4", "mime_type": "video/mp4"},
		},
		"comment": "done early",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/submit", body, suite.creator)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.SubmitTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "completed", response["status"])

	var attachments []models.ContentVault
	suite.db.Where("task_id = ?", 1).Find(&attachments)
	assert.Len(suite.T(), attachments, 1)
}

// TestSubmitTask_NotAssignee tests submission by someone other than the assignee
func (suite *TaskHandlerTestSuite) TestSubmitTask_NotAssignee() {
	suite.createTestTask("Test Task", suite.manager.ID, suite.creator.ID)

	requestBody := map[string]interface{}{
		"deliverables": []map[string]interface{}{
			{"file_url": "https://cdn.agency.test/final.mp4"},
		},
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/submit", body, suite.manager)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.SubmitTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestDeleteTask_Success tests successful task deletion
func (suite *TaskHandlerTestSuite) TestDeleteTask_Success() {
	task := suite.createTestTask("Task to Delete", suite.manager.ID, suite.creator.ID)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, suite.manager)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Task deleted", response["message"])

	var deleted models.Task
	err = suite.db.First(&deleted, task.ID).Error
	assert.Error(suite.T(), err)
}

// TestDeleteTask_NotAssigner tests deletion by someone other than the assigner
func (suite *TaskHandlerTestSuite) TestDeleteTask_NotAssigner() {
	suite.createTestTask("Task to Delete", suite.manager.ID, suite.creator.ID)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, suite.creator)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestListTasks_Success tests successful task listing
func (suite *TaskHandlerTestSuite) TestListTasks_Success() {
	task := suite.createTestTask("Test Task", suite.manager.ID, suite.creator.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, suite.manager)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Contains(suite.T(), response, "tasks")
	assert.Contains(suite.T(), response, "pagination")

	tasks := response["tasks"].([]interface{})
	assert.Len(suite.T(), tasks, 1)

	firstTask := tasks[0].(map[string]interface{})
	assert.Equal(suite.T(), task.Title, firstTask["title"])
}

// TestListTasks_StatusFilter tests the status query filter
func (suite *TaskHandlerTestSuite) TestListTasks_StatusFilter() {
	suite.createTestTask("Todo Task", suite.manager.ID, suite.creator.ID)
	blocked := suite.createTestTask("Blocked Task", suite.manager.ID, suite.creator.ID)
	blocked.Status = models.TaskStatusBlocked
	suite.db.Save(blocked)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, suite.manager)
	c.Request.URL.RawQuery = "status=blocked"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	tasks := response["tasks"].([]interface{})
	assert.Len(suite.T(), tasks, 1)
	assert.Equal(suite.T(), "Blocked Task", tasks[0].(map[string]interface{})["title"])
}

// TestListTasks_InvalidStatus tests listing with an unknown status value
func (suite *TaskHandlerTestSuite) TestListTasks_InvalidStatus() {
	c, w := suite.createAuthContext("GET", "/api/tasks", nil, suite.manager)
	c.Request.URL.RawQuery = "status=archived"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestSendMessage_Success tests posting to the task chat
func (suite *TaskHandlerTestSuite) TestSendMessage_Success() {
	suite.createTestTask("Test Task", suite.manager.ID, suite.creator.ID)

	body, _ := json.Marshal(map[string]interface{}{"message": "how is it going?"})
	c, w := suite.createAuthContext("POST", "/api/tasks/1/chat", body, suite.manager)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.SendMessage(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "how is it going?", response["message"])
}

// TestChatHistory_Success tests reading the chat log
func (suite *TaskHandlerTestSuite) TestChatHistory_Success() {
	task := suite.createTestTask("Test Task", suite.manager.ID, suite.creator.ID)
	suite.db.Create(&models.TaskChat{TaskID: task.ID, UserID: suite.manager.ID, Message: "first"})
	suite.db.Create(&models.TaskChat{TaskID: task.ID, UserID: suite.creator.ID, Message: "second"})

	c, w := suite.createAuthContext("GET", "/api/tasks/1/chat", nil, suite.creator)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.ChatHistory(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	messages := response["messages"].([]interface{})
	assert.Len(suite.T(), messages, 2)
	assert.Equal(suite.T(), "first", messages[0].(map[string]interface{})["message"])
}

// TestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
