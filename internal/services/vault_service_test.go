package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/agencydesk/agency-api/internal/apperrors"
	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/storage"
)

// VaultServiceTestSuite defines the test suite for VaultService
type VaultServiceTestSuite struct {
	suite.Suite
	deps        *testDeps
	service     *VaultService
	taskService *TaskService

	admin   *models.User
	manager *models.User
	other   *models.User
	member  *models.User
	creator *models.User
}

// SetupTest runs before each test
func (suite *VaultServiceTestSuite) SetupTest() {
	var err error
	suite.deps, err = newTestDeps()
	suite.Require().NoError(err)

	suite.service = NewVaultService(suite.deps.vaultRepo, suite.deps.userRepo, suite.deps.notifService, storage.NewLogStore("https://storage.test", zap.NewNop()))
	suite.taskService = NewTaskService(suite.deps.taskRepo, suite.deps.userRepo, suite.deps.notifService, false)

	suite.admin = suite.deps.createUser("admin@agency.test", models.RoleAdmin)
	suite.manager = suite.deps.createUser("manager@agency.test", models.RoleManager)
	suite.other = suite.deps.createUser("other@agency.test", models.RoleManager)
	suite.member = suite.deps.createUser("member@agency.test", models.RoleTeamMember)
	suite.creator = suite.deps.createManagedCreator("creator@agency.test", suite.manager)
	suite.deps.pair(suite.member, suite.creator)
}

// TearDownTest runs after each test
func (suite *VaultServiceTestSuite) TearDownTest() {
	suite.deps.close()
}

func (suite *VaultServiceTestSuite) createFile(uploader *models.User, mime string) *models.ContentVault {
	file := &models.ContentVault{
		UploaderID:  uploader.ID,
		FileURL:     "https://cdn.test/file",
		MimeType:    mime,
		ContentType: models.ContentFeed,
		Status:      models.ContentApproved,
	}
	suite.deps.db.Create(file)
	return file
}

func (suite *VaultServiceTestSuite) TestFoldersScopedByRole() {
	suite.createFile(suite.creator, "image/jpeg")
	outsider := suite.deps.createManagedCreator("outside@agency.test", suite.other)
	suite.createFile(outsider, "video/mp4")
	suite.createFile(outsider, "image/png")

	all, err := suite.service.Folders(suite.admin)
	suite.NoError(err)
	suite.Len(all, 2)

	subtree, err := suite.service.Folders(suite.manager)
	suite.NoError(err)
	suite.Require().Len(subtree, 1)
	suite.Equal(suite.creator.ID, subtree[0].ID)
	suite.Equal(int64(1), subtree[0].FileCount)

	paired, err := suite.service.Folders(suite.member)
	suite.NoError(err)
	suite.Require().Len(paired, 1)
	suite.Equal(suite.creator.ID, paired[0].ID)

	own, err := suite.service.Folders(outsider)
	suite.NoError(err)
	suite.Require().Len(own, 1)
	suite.Equal(int64(2), own[0].FileCount)
}

func (suite *VaultServiceTestSuite) TestFilesMediaTypeFilter() {
	suite.createFile(suite.creator, "image/jpeg")
	suite.createFile(suite.creator, "video/mp4")
	suite.createFile(suite.creator, "application/pdf")

	images, total, err := suite.service.Files(suite.manager, suite.creator.ID, ListFilesInput{MediaType: "image", Limit: 10})
	suite.NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(images, 1)
	suite.Equal(models.MediaImage, images[0].MediaType)

	docs, total, err := suite.service.Files(suite.manager, suite.creator.ID, ListFilesInput{MediaType: "document", Limit: 10})
	suite.NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(docs, 1)
	suite.Equal(models.MediaDocument, docs[0].MediaType)

	_, _, err = suite.service.Files(suite.manager, suite.creator.ID, ListFilesInput{MediaType: "audio"})
	suite.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

func (suite *VaultServiceTestSuite) TestFilesDateRange() {
	old := suite.createFile(suite.creator, "image/jpeg")
	suite.deps.db.Model(old).Update("created_at", time.Now().Add(-48*time.Hour))
	suite.createFile(suite.creator, "image/png")

	since := time.Now().Add(-24 * time.Hour)
	files, total, err := suite.service.Files(suite.manager, suite.creator.ID, ListFilesInput{DateFrom: &since, Limit: 10})
	suite.NoError(err)
	suite.Equal(int64(1), total)
	suite.Len(files, 1)
}

func (suite *VaultServiceTestSuite) TestFilesForbiddenOutsideScope() {
	suite.createFile(suite.creator, "image/jpeg")

	_, _, err := suite.service.Files(suite.other, suite.creator.ID, ListFilesInput{Limit: 10})
	suite.Equal(apperrors.KindAuthorization, apperrors.KindOf(err))
}

func (suite *VaultServiceTestSuite) TestDeleteFileUploaderOnly() {
	file := suite.createFile(suite.creator, "image/jpeg")

	err := suite.service.DeleteFile(suite.manager, file.ID)
	suite.Equal(apperrors.KindAuthorization, apperrors.KindOf(err))

	err = suite.service.DeleteFile(suite.creator, file.ID)
	suite.NoError(err)
}

func (suite *VaultServiceTestSuite) TestDeliverablesOfCompletedTaskAreImmutable() {
	task, err := suite.taskService.CreateTask(suite.manager, CreateTaskInput{
		AssigneeID:     suite.creator.ID,
		Title:          "Final shoot",
		ReqContentType: models.ContentPPV,
	})
	suite.Require().NoError(err)

	_, err = suite.taskService.SubmitTask(suite.creator, task.ID, SubmitTaskInput{
		Deliverables: []FileInput{{FileURL: "https://cdn.test/final.mp4", MimeType: "video/mp4"}},
	})
	suite.Require().NoError(err)

	var deliverable models.ContentVault
	suite.deps.db.Where("task_id = ? AND uploader_id = ?", task.ID, suite.creator.ID).First(&deliverable)

	err = suite.service.DeleteFile(suite.creator, deliverable.ID)
	suite.Equal(apperrors.KindConflict, apperrors.KindOf(err))
}

func (suite *VaultServiceTestSuite) TestReviewFlow() {
	file := suite.createFile(suite.creator, "video/mp4")
	suite.deps.db.Model(file).Update("status", models.ContentPending)

	// Outside the hierarchy the review is forbidden.
	_, err := suite.service.ApproveFile(suite.other, file.ID)
	suite.Equal(apperrors.KindAuthorization, apperrors.KindOf(err))

	approved, err := suite.service.ApproveFile(suite.manager, file.ID)
	suite.Require().NoError(err)
	suite.Equal(models.ContentApproved, approved.Status)
	suite.Require().NotNil(approved.ApprovedBy)
	suite.Equal(suite.manager.ID, *approved.ApprovedBy)

	// Verdicts are final.
	_, err = suite.service.RejectFile(suite.manager, file.ID)
	suite.Equal(apperrors.KindConflict, apperrors.KindOf(err))
}

func (suite *VaultServiceTestSuite) TestUploadURL() {
	creds, err := suite.service.UploadURL(context.Background(), suite.creator, "teaser.mp4")
	suite.Require().NoError(err)
	suite.True(strings.HasPrefix(creds.Key, "vault/"))
	suite.Contains(creds.Key, "teaser.mp4")
	suite.Contains(creds.UploadURL, creds.Key)

	_, err = suite.service.UploadURL(context.Background(), suite.creator, "  ")
	suite.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

func TestVaultServiceTestSuite(t *testing.T) {
	suite.Run(t, new(VaultServiceTestSuite))
}
