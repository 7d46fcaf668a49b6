package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/agencydesk/agency-api/internal/apperrors"
	"github.com/agencydesk/agency-api/internal/models"
)

// UserServiceTestSuite defines the test suite for UserService
type UserServiceTestSuite struct {
	suite.Suite
	deps    *testDeps
	service *UserService

	admin   *models.User
	manager *models.User
}

// SetupTest runs before each test
func (suite *UserServiceTestSuite) SetupTest() {
	var err error
	suite.deps, err = newTestDeps()
	suite.Require().NoError(err)

	suite.service = NewUserService(suite.deps.userRepo, suite.deps.notifService)
	suite.admin = suite.deps.createUser("admin@agency.test", models.RoleAdmin)
	suite.manager = suite.deps.createUser("manager@agency.test", models.RoleManager)
}

// TearDownTest runs after each test
func (suite *UserServiceTestSuite) TearDownTest() {
	suite.deps.close()
}

func (suite *UserServiceTestSuite) TestCreateUserByManagerLandsInSubtree() {
	user, err := suite.service.CreateUser(suite.manager, CreateUserInput{
		Email:    "newcreator@agency.test",
		FullName: "New Creator",
		Password: "password123",
		Role:     models.RoleDigitalCreator,
	})
	suite.Require().NoError(err)
	suite.Require().NotNil(user.ManagerID)
	suite.Equal(suite.manager.ID, *user.ManagerID)
	suite.Equal(models.AccountActive, user.AccountStatus)
}

func (suite *UserServiceTestSuite) TestManagerCannotCreateAdmin() {
	_, err := suite.service.CreateUser(suite.manager, CreateUserInput{
		Email:    "sneaky@agency.test",
		FullName: "Sneaky",
		Password: "password123",
		Role:     models.RoleAdmin,
	})
	suite.Equal(apperrors.KindAuthorization, apperrors.KindOf(err))
}

func (suite *UserServiceTestSuite) TestCreateUserDuplicateEmail() {
	_, err := suite.service.CreateUser(suite.admin, CreateUserInput{
		Email:    "manager@agency.test",
		FullName: "Clone",
		Password: "password123",
		Role:     models.RoleManager,
	})
	suite.Equal(apperrors.KindConflict, apperrors.KindOf(err))
}

func (suite *UserServiceTestSuite) TestCreatorCannotCreateUsers() {
	creator := suite.deps.createManagedCreator("creator@agency.test", suite.manager)
	_, err := suite.service.CreateUser(creator, CreateUserInput{
		Email:    "x@agency.test",
		FullName: "X",
		Password: "password123",
		Role:     models.RoleDigitalCreator,
	})
	suite.Equal(apperrors.KindAuthorization, apperrors.KindOf(err))
}

func (suite *UserServiceTestSuite) TestAssignCreatorIsSymmetric() {
	member := suite.deps.createUser("member@agency.test", models.RoleTeamMember)
	creator := suite.deps.createManagedCreator("creator@agency.test", suite.manager)

	err := suite.service.AssignCreator(suite.manager, member.ID, creator.ID)
	suite.Require().NoError(err)

	freshMember, _ := suite.deps.userRepo.FindByID(member.ID)
	freshCreator, _ := suite.deps.userRepo.FindByID(creator.ID)
	suite.Require().NotNil(freshMember.AssignedModelID)
	suite.Require().NotNil(freshCreator.AssignedModelID)
	suite.Equal(creator.ID, *freshMember.AssignedModelID)
	suite.Equal(member.ID, *freshCreator.AssignedModelID)
}

func (suite *UserServiceTestSuite) TestReassignUnseatsPreviousPartners() {
	memberA := suite.deps.createUser("a@agency.test", models.RoleTeamMember)
	memberB := suite.deps.createUser("b@agency.test", models.RoleTeamMember)
	creatorX := suite.deps.createManagedCreator("x@agency.test", suite.manager)
	creatorY := suite.deps.createManagedCreator("y@agency.test", suite.manager)

	suite.Require().NoError(suite.service.AssignCreator(suite.manager, memberA.ID, creatorX.ID))
	suite.Require().NoError(suite.service.AssignCreator(suite.manager, memberB.ID, creatorY.ID))

	// A switches to Y: both X and B must end up unpaired.
	suite.Require().NoError(suite.service.AssignCreator(suite.manager, memberA.ID, creatorY.ID))

	freshA, _ := suite.deps.userRepo.FindByID(memberA.ID)
	freshB, _ := suite.deps.userRepo.FindByID(memberB.ID)
	freshX, _ := suite.deps.userRepo.FindByID(creatorX.ID)
	freshY, _ := suite.deps.userRepo.FindByID(creatorY.ID)

	suite.Require().NotNil(freshA.AssignedModelID)
	suite.Equal(creatorY.ID, *freshA.AssignedModelID)
	suite.Require().NotNil(freshY.AssignedModelID)
	suite.Equal(memberA.ID, *freshY.AssignedModelID)
	suite.Nil(freshB.AssignedModelID)
	suite.Nil(freshX.AssignedModelID)
}

func (suite *UserServiceTestSuite) TestAssignCreatorWrongRolesConflict() {
	member := suite.deps.createUser("member@agency.test", models.RoleTeamMember)
	notACreator := suite.deps.createUser("mgr2@agency.test", models.RoleManager)

	err := suite.service.AssignCreator(suite.admin, member.ID, notACreator.ID)
	suite.Equal(apperrors.KindConflict, apperrors.KindOf(err))

	err = suite.service.AssignCreator(suite.admin, notACreator.ID, member.ID)
	suite.Equal(apperrors.KindConflict, apperrors.KindOf(err))
}

func (suite *UserServiceTestSuite) TestSoftDeleteFreesIdentifiers() {
	member := suite.deps.createUser("member@agency.test", models.RoleTeamMember)
	creator := suite.deps.createManagedCreator("creator@agency.test", suite.manager)
	suite.Require().NoError(suite.service.AssignCreator(suite.manager, member.ID, creator.ID))

	err := suite.service.DeleteUser(suite.admin, creator.ID)
	suite.Require().NoError(err)

	// Gone from normal lookups.
	_, err = suite.deps.userRepo.FindByEmail("creator@agency.test")
	suite.Error(err)

	// The row survives with mutated identifiers, and the partner is freed.
	var raw models.User
	suite.deps.db.First(&raw, creator.ID)
	suite.True(raw.IsDeleted)
	suite.Equal(models.AccountDeleted, raw.AccountStatus)
	suite.True(strings.HasPrefix(raw.Email, "creator@agency.test.deleted."))
	suite.Nil(raw.AssignedModelID)

	freshMember, _ := suite.deps.userRepo.FindByID(member.ID)
	suite.Nil(freshMember.AssignedModelID)

	// The email is reusable.
	_, err = suite.service.CreateUser(suite.admin, CreateUserInput{
		Email:    "creator@agency.test",
		FullName: "Creator Again",
		Password: "password123",
		Role:     models.RoleDigitalCreator,
	})
	suite.NoError(err)
}

func (suite *UserServiceTestSuite) TestDeleteSelfRejected() {
	err := suite.service.DeleteUser(suite.admin, suite.admin.ID)
	suite.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

func (suite *UserServiceTestSuite) TestManagerCannotDeleteOutsideSubtree() {
	otherManager := suite.deps.createUser("other@agency.test", models.RoleManager)
	creator := suite.deps.createManagedCreator("creator@agency.test", suite.manager)

	err := suite.service.DeleteUser(otherManager, creator.ID)
	suite.Equal(apperrors.KindNotFound, apperrors.KindOf(err))
}

func (suite *UserServiceTestSuite) TestListUsersSearch() {
	suite.deps.createManagedCreator("creator@agency.test", suite.manager)

	role := models.RoleDigitalCreator
	users, total, err := suite.service.ListUsers(suite.admin, ListUsersInput{Role: &role, Limit: 10})
	suite.NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(users, 1)

	users, total, err = suite.service.ListUsers(suite.admin, ListUsersInput{Search: "CREATOR", Limit: 10})
	suite.NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(users, 1)
}

func (suite *UserServiceTestSuite) TestMyAssigneesPerRole() {
	member := suite.deps.createUser("member@agency.test", models.RoleTeamMember)
	creator := suite.deps.createManagedCreator("creator@agency.test", suite.manager)
	suite.deps.createManagedCreator("creator2@agency.test", suite.manager)
	suite.deps.pair(member, creator)

	all, err := suite.service.MyAssignees(suite.admin)
	suite.NoError(err)
	suite.Len(all, 2)

	subtree, err := suite.service.MyAssignees(suite.manager)
	suite.NoError(err)
	suite.Len(subtree, 2)

	paired, err := suite.service.MyAssignees(member)
	suite.NoError(err)
	suite.Require().Len(paired, 1)
	suite.Equal(creator.ID, paired[0].ID)

	loner := suite.deps.createUser("loner@agency.test", models.RoleTeamMember)
	none, err := suite.service.MyAssignees(loner)
	suite.NoError(err)
	suite.Empty(none)
}

func (suite *UserServiceTestSuite) TestChangePassword() {
	err := suite.service.ChangePassword(suite.manager, "wrong", "newpassword123")
	suite.Equal(apperrors.KindAuthorization, apperrors.KindOf(err))

	err = suite.service.ChangePassword(suite.manager, "password123", "short")
	suite.Equal(apperrors.KindValidation, apperrors.KindOf(err))

	err = suite.service.ChangePassword(suite.manager, "password123", "newpassword123")
	suite.NoError(err)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
