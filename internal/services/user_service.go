package services

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/agencydesk/agency-api/internal/apperrors"
	"github.com/agencydesk/agency-api/internal/authz"
	"github.com/agencydesk/agency-api/internal/constants"
	"github.com/agencydesk/agency-api/internal/models"
	"github.com/agencydesk/agency-api/internal/repository"
	"github.com/agencydesk/agency-api/internal/utils"
)

// UserService handles identity and hierarchy business logic
type UserService struct {
	userRepo     repository.UserRepository
	notifService *NotificationService
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, notifService *NotificationService) *UserService {
	return &UserService{
		userRepo:     userRepo,
		notifService: notifService,
	}
}

// CreateUserInput represents input for creating a user
type CreateUserInput struct {
	Email     string
	Username  *string
	FullName  string
	Password  string
	Role      models.UserRole
	ManagerID *uint64
	Phone     string
}

// UpdateUserInput represents a partial user update. Nil fields are left
// untouched.
type UpdateUserInput struct {
	FullName          *string
	Username          *string
	Phone             *string
	Bio               *string
	ProfilePictureURL *string
	Role              *models.UserRole
	ManagerID         *uint64
	AccountStatus     *models.AccountStatus
}

// ListUsersInput represents filters for listing users
type ListUsersInput struct {
	Role   *models.UserRole
	Search string
	Skip   int
	Limit  int
}

// CreateUser creates a new account. Managers may not mint admins, and
// users they create land in their own subtree.
func (s *UserService) CreateUser(actor *models.User, input CreateUserInput) (*models.User, error) {
	if !authz.CanManageUsers(actor) {
		return nil, apperrors.Authorization("only admins and managers can create users")
	}
	if !input.Role.IsValid() {
		return nil, apperrors.Validation("invalid role")
	}
	if actor.Role == models.RoleManager && input.Role == models.RoleAdmin {
		return nil, apperrors.Authorization("managers cannot create admin accounts")
	}

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return nil, apperrors.Validation("a valid email is required")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, apperrors.Validation(fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength))
	}

	taken, err := s.userRepo.ExistsEmail(input.Email)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	if taken {
		return nil, apperrors.Conflict("email already registered")
	}
	if input.Username != nil && *input.Username != "" {
		taken, err = s.userRepo.ExistsUsername(*input.Username)
		if err != nil {
			return nil, apperrors.Persistence(err)
		}
		if taken {
			return nil, apperrors.Conflict("username already taken")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	managerID := input.ManagerID
	if actor.Role == models.RoleManager {
		managerID = &actor.ID
	}

	user := &models.User{
		Email:         input.Email,
		Username:      input.Username,
		FullName:      input.FullName,
		Role:          input.Role,
		AccountStatus: models.AccountActive,
		ManagerID:     managerID,
		PasswordHash:  string(hash),
		Phone:         input.Phone,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, apperrors.Persistence(err)
	}
	return user, nil
}

// GetUser returns a user the actor may see. Out-of-scope users read as
// missing rather than forbidden.
func (s *UserService) GetUser(actor *models.User, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Persistence(err)
	}
	if !s.canSee(actor, user) {
		return nil, apperrors.NotFound("user not found")
	}
	return user, nil
}

func (s *UserService) canSee(actor, target *models.User) bool {
	if actor.ID == target.ID || actor.Role == models.RoleAdmin {
		return true
	}
	if actor.Role == models.RoleManager {
		return target.ManagerID != nil && *target.ManagerID == actor.ID
	}
	if actor.Role == models.RoleTeamMember {
		return actor.AssignedModelID != nil && *actor.AssignedModelID == target.ID
	}
	return false
}

// UpdateUser applies a partial update. Self-updates touch profile fields
// only; role, manager and status changes need admin or managing-manager
// authority.
func (s *UserService) UpdateUser(actor *models.User, id uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.GetUser(actor, id)
	if err != nil {
		return nil, err
	}

	adminFields := input.Role != nil || input.ManagerID != nil || input.AccountStatus != nil
	if adminFields {
		if !s.canAdminister(actor, user) {
			return nil, apperrors.Authorization("insufficient permissions to change role, manager or status")
		}
	} else if actor.ID != user.ID && !s.canAdminister(actor, user) {
		return nil, apperrors.Authorization("insufficient permissions to update this user")
	}

	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, apperrors.Validation("invalid role")
		}
		if actor.Role == models.RoleManager && *input.Role == models.RoleAdmin {
			return nil, apperrors.Authorization("managers cannot promote to admin")
		}
		user.Role = *input.Role
	}
	if input.AccountStatus != nil {
		if !input.AccountStatus.IsValid() {
			return nil, apperrors.Validation("invalid account status")
		}
		user.AccountStatus = *input.AccountStatus
	}
	if input.ManagerID != nil {
		user.ManagerID = input.ManagerID
	}
	if input.Username != nil && *input.Username != "" {
		if user.Username == nil || *user.Username != *input.Username {
			taken, err := s.userRepo.ExistsUsername(*input.Username)
			if err != nil {
				return nil, apperrors.Persistence(err)
			}
			if taken {
				return nil, apperrors.Conflict("username already taken")
			}
		}
		user.Username = input.Username
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.ProfilePictureURL != nil {
		user.ProfilePictureURL = *input.ProfilePictureURL
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, apperrors.Persistence(err)
	}
	return user, nil
}

func (s *UserService) canAdminister(actor, target *models.User) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	if actor.Role != models.RoleManager || target.Role == models.RoleAdmin {
		return false
	}
	return target.ManagerID != nil && *target.ManagerID == actor.ID
}

// AssignCreator establishes the symmetric pairing between a team_member
// and a digital_creator, unseating any prior pairing of either party.
func (s *UserService) AssignCreator(actor *models.User, memberID, creatorID uint64) error {
	if !authz.CanManageUsers(actor) {
		return apperrors.Authorization("only admins and managers can assign creators")
	}

	member, err := s.userRepo.FindByID(memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("team member not found")
		}
		return apperrors.Persistence(err)
	}
	creator, err := s.userRepo.FindByID(creatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("creator not found")
		}
		return apperrors.Persistence(err)
	}

	if member.Role != models.RoleTeamMember {
		return apperrors.Conflict("assignment target is not a team member")
	}
	if creator.Role != models.RoleDigitalCreator {
		return apperrors.Conflict("assignment target is not a digital creator")
	}
	if actor.Role == models.RoleManager && !authz.CanActOnCreator(actor, creator) {
		return apperrors.Authorization("creator is outside your subtree")
	}

	if err := s.userRepo.Pair(member, creator); err != nil {
		return apperrors.Persistence(err)
	}

	if err := s.notifService.Notify(ComposeInput{
		Recipients: []uint64{member.ID},
		ActorID:    &actor.ID,
		Title:      "New creator assignment",
		Body:       fmt.Sprintf("You are now working with %s", creator.FullName),
		Category:   models.CategoryAccount,
		Severity:   models.SeverityNormal,
		EntityType: "user",
		EntityID:   &creator.ID,
	}); err != nil {
		return err
	}
	return nil
}

// DeleteUser soft-deletes the account, freeing its email and username for
// reuse and clearing any pairing.
func (s *UserService) DeleteUser(actor *models.User, id uint64) error {
	if !authz.CanManageUsers(actor) {
		return apperrors.Authorization("only admins and managers can delete users")
	}
	if actor.ID == id {
		return apperrors.Validation("cannot delete your own account")
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("user not found")
		}
		return apperrors.Persistence(err)
	}
	if actor.Role == models.RoleManager && !s.canAdminister(actor, user) {
		return apperrors.NotFound("user not found")
	}

	if err := s.userRepo.SoftDelete(user, utils.DeletedSuffix()); err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}

// ListUsers lists accounts for admins and managers
func (s *UserService) ListUsers(actor *models.User, input ListUsersInput) ([]models.User, int64, error) {
	if !authz.CanManageUsers(actor) {
		return nil, 0, apperrors.Authorization("only admins and managers can list users")
	}
	users, total, err := s.userRepo.List(repository.UserFilter{
		Role:   input.Role,
		Search: input.Search,
		Skip:   input.Skip,
		Limit:  input.Limit,
	})
	if err != nil {
		return nil, 0, apperrors.Persistence(err)
	}
	return users, total, nil
}

// MyAssignees returns the creators the actor may act on. An unassigned
// team_member gets an empty list.
func (s *UserService) MyAssignees(actor *models.User) ([]models.User, error) {
	if actor.Role == models.RoleDigitalCreator {
		return []models.User{}, nil
	}
	creators, err := s.userRepo.ListAssignees(authz.VisibilityScope(actor))
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	return creators, nil
}

// ChangePassword rotates the actor's own password after verifying the
// current one
func (s *UserService) ChangePassword(actor *models.User, currentPassword, newPassword string) error {
	if len(newPassword) < constants.MinPasswordLength {
		return apperrors.Validation(fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(actor.PasswordHash), []byte(currentPassword)); err != nil {
		return apperrors.Authorization("current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	actor.PasswordHash = string(hash)
	if err := s.userRepo.Update(actor); err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}
