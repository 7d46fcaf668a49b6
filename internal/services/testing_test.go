package services

import (
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agencydesk/agency-api/internal/database"
	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/push"
	"github.com/agencydesk/agency-api/internal/realtime"
	"github.com/agencydesk/agency-api/internal/repository"
)

// testDeps bundles everything a service suite needs against an in-memory
// database.
type testDeps struct {
	db           *gorm.DB
	userRepo     repository.UserRepository
	taskRepo     repository.TaskRepository
	vaultRepo    repository.VaultRepository
	sigRepo      repository.SignatureRepository
	notifRepo    repository.NotificationRepository
	annRepo      repository.AnnouncementRepository
	authRepo     repository.AuthRepository
	hub          *realtime.Hub
	notifService *NotificationService
}

func newTestDeps() (*testDeps, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := database.MigrateAll(db); err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	hub := realtime.NewHub(logger)
	notifRepo := repository.NewNotificationRepository(db)

	return &testDeps{
		db:           db,
		userRepo:     repository.NewUserRepository(db),
		taskRepo:     repository.NewTaskRepository(db),
		vaultRepo:    repository.NewVaultRepository(db),
		sigRepo:      repository.NewSignatureRepository(db),
		notifRepo:    notifRepo,
		annRepo:      repository.NewAnnouncementRepository(db),
		authRepo:     repository.NewAuthRepository(db),
		hub:          hub,
		notifService: NewNotificationService(notifRepo, hub, push.NewLogSender(logger), logger),
	}, nil
}

func (d *testDeps) close() {
	sqlDB, err := d.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

func (d *testDeps) createUser(email string, role models.UserRole) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		Email:         email,
		FullName:      "User " + email,
		Role:          role,
		AccountStatus: models.AccountActive,
		PasswordHash:  string(hash),
	}
	d.db.Create(user)
	return user
}

func (d *testDeps) createManagedCreator(email string, manager *models.User) *models.User {
	creator := d.createUser(email, models.RoleDigitalCreator)
	creator.ManagerID = &manager.ID
	d.db.Save(creator)
	return creator
}

func (d *testDeps) pair(member, creator *models.User) {
	member.AssignedModelID = &creator.ID
	creator.AssignedModelID = &member.ID
	d.db.Save(member)
	d.db.Save(creator)
}
