// Package authz holds the hierarchy policy as pure predicates over loaded
// User rows. Every read and write in the system funnels through these
// rules; nothing here touches the database or HTTP.
package authz

import "github.com/agencydesk/agency-api/internal/models"

// CanActOnCreator decides whether actor may assign work to, request
// signatures from, or otherwise operate on the given digital_creator.
//
//   - admin: unrestricted
//   - manager: creators whose manager_id is the actor
//   - team_member: exactly the one paired creator (assigned_model_id)
//   - digital_creator: never (creators cannot act on siblings or themselves)
func CanActOnCreator(actor, creator *models.User) bool {
	if creator == nil || creator.Role != models.RoleDigitalCreator {
		return false
	}
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return creator.ManagerID != nil && *creator.ManagerID == actor.ID
	case models.RoleTeamMember:
		return actor.AssignedModelID != nil && *actor.AssignedModelID == creator.ID
	default:
		return false
	}
}

// CanViewTask decides read/chat access to a task. Requires task.Assignee
// to be preloaded; direct involvement always qualifies, otherwise the
// actor must be hierarchy-linked to the assignee.
func CanViewTask(actor *models.User, task *models.Task) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	if task.AssignerID == actor.ID || task.AssigneeID == actor.ID {
		return true
	}
	if task.Assignee == nil {
		return false
	}
	return CanActOnCreator(actor, task.Assignee)
}

// CanAccessFolder decides visibility of a content-vault folder: the owner,
// an admin, the owner's manager, or the owner's paired team member.
func CanAccessFolder(actor, owner *models.User) bool {
	if actor.ID == owner.ID || actor.Role == models.RoleAdmin {
		return true
	}
	if actor.Role == models.RoleManager {
		return owner.ManagerID != nil && *owner.ManagerID == actor.ID
	}
	if actor.Role == models.RoleTeamMember {
		return actor.AssignedModelID != nil && *actor.AssignedModelID == owner.ID
	}
	return false
}

// CanManageUsers reports whether the actor may create, list, or delete
// other users.
func CanManageUsers(actor *models.User) bool {
	return actor.Role == models.RoleAdmin || actor.Role == models.RoleManager
}

// Scope describes which assignees' resources an actor can list. Exactly
// one of the fields is meaningful; Empty short-circuits queries to an
// empty result instead of an error (the unassigned team_member case).
type Scope struct {
	Unrestricted bool
	// ManagerID filters to assignees managed by this user.
	ManagerID uint64
	// AssigneeID filters to exactly this assignee.
	AssigneeID uint64
	Empty      bool
}

// VisibilityScope derives the list-time filter for the actor's role.
func VisibilityScope(actor *models.User) Scope {
	switch actor.Role {
	case models.RoleAdmin:
		return Scope{Unrestricted: true}
	case models.RoleManager:
		return Scope{ManagerID: actor.ID}
	case models.RoleTeamMember:
		if actor.AssignedModelID == nil {
			return Scope{Empty: true}
		}
		return Scope{AssigneeID: *actor.AssignedModelID}
	default:
		return Scope{AssigneeID: actor.ID}
	}
}
