package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agencydesk/agency-api/internal/database"
	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/push"
	"github.com/agencydesk/agency-api/internal/realtime"
	"github.com/agencydesk/agency-api/internal/repository"
	"github.com/agencydesk/agency-api/internal/services"
)

type recordingConn struct {
	events []realtime.Event
}

func (c *recordingConn) WriteJSON(v interface{}) error {
	c.events = append(c.events, v.(realtime.Event))
	return nil
}

func (c *recordingConn) Close() error { return nil }

// WorkerTestSuite defines the test suite for the background worker
type WorkerTestSuite struct {
	suite.Suite
	db        *gorm.DB
	hub       *realtime.Hub
	notifRepo repository.NotificationRepository
	sigRepo   repository.SignatureRepository
	worker    *Worker
}

// SetupTest runs before each test
func (suite *WorkerTestSuite) SetupTest() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)
	suite.Require().NoError(database.MigrateAll(suite.db))

	logger := zap.NewNop()
	suite.hub = realtime.NewHub(logger)
	suite.notifRepo = repository.NewNotificationRepository(suite.db)
	suite.sigRepo = repository.NewSignatureRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)

	notifService := services.NewNotificationService(suite.notifRepo, suite.hub, push.NewLogSender(logger), logger)
	sigService := services.NewSignatureService(suite.sigRepo, userRepo, notifService)

	suite.worker = NewWorker(notifService, sigService, time.Second, logger)
}

// TearDownTest runs after each test
func (suite *WorkerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *WorkerTestSuite) TestTickDrainsOutbox() {
	user := &models.User{Email: "r@agency.test", FullName: "R", Role: models.RoleDigitalCreator, PasswordHash: "x"}
	suite.db.Create(user)
	suite.db.Create(&models.Notification{
		RecipientID: user.ID,
		Title:       "Pending row",
		Category:    models.CategoryTask,
		Severity:    models.SeverityNormal,
	})

	conn := &recordingConn{}
	suite.hub.Connect(user.ID, conn)

	suite.worker.Tick(context.Background())

	suite.Require().Len(conn.events, 1)
	suite.Equal("notification", conn.events[0].Type)

	pending, err := suite.notifRepo.ListUndispatched(10)
	suite.NoError(err)
	suite.Empty(pending)

	// A second tick finds nothing to redeliver.
	suite.worker.Tick(context.Background())
	suite.Len(conn.events, 1)
}

func (suite *WorkerTestSuite) TestTickExpiresOverdueSignatures() {
	requester := &models.User{Email: "m@agency.test", FullName: "M", Role: models.RoleManager, PasswordHash: "x"}
	signer := &models.User{Email: "c@agency.test", FullName: "C", Role: models.RoleDigitalCreator, PasswordHash: "x"}
	suite.db.Create(requester)
	suite.db.Create(signer)

	past := time.Now().Add(-time.Hour)
	req := &models.SignatureRequest{
		RequesterID: requester.ID,
		SignerID:    signer.ID,
		Title:       "Old contract",
		DocumentURL: "https://docs.test/old.pdf",
		Status:      models.SignaturePending,
		Deadline:    &past,
	}
	suite.db.Create(req)

	suite.worker.Tick(context.Background())

	fresh, err := suite.sigRepo.FindByID(req.ID)
	suite.NoError(err)
	suite.Equal(models.SignatureExpired, fresh.Status)

	// The expiry notifications went through the same outbox and are
	// already dispatched by the tick.
	pending, err := suite.notifRepo.ListUndispatched(10)
	suite.NoError(err)
	suite.Empty(pending)

	count, err := suite.notifRepo.UnreadCount(requester.ID)
	suite.NoError(err)
	suite.Equal(int64(1), count)
}

func TestWorkerTestSuite(t *testing.T) {
	suite.Run(t, new(WorkerTestSuite))
}
