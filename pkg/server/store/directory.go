package store

import (
	"errors"

	"github.com/lanbitou/lanbitou-in-go/pkg/model"
)

// ErrGroupNotFound is returned when a group doesn't exist
var ErrGroupNotFound = errors.New("group not found")

// ErrMembershipNotFound is returned when a user is not in a group
var ErrMembershipNotFound = errors.New("membership not found")

// ErrDuplicateMembership is returned when the user is already a member
var ErrDuplicateMembership = errors.New("user is already a member of this group")

// ErrDuplicateGroupName is returned when the group name is taken
var ErrDuplicateGroupName = errors.New("group name already exists")

// GroupMember is a membership joined with the member's email, for the group
// detail listing.
type GroupMember struct {
	MembershipID int64
	UserID       int64
	Email        string
	Level        model.PermissionLevel
}

// DirectoryStore abstracts group and membership storage
type DirectoryStore interface {
	// CreateGroup creates a group managed by managerID. Returns
	// ErrDuplicateGroupName if the name is taken.
	CreateGroup(managerID int64, name, description string) (*model.Group, error)

	// FetchGroup retrieves a group by id. Returns ErrGroupNotFound if absent.
	FetchGroup(id int64) (*model.Group, error)

	// UpdateGroup applies a partial name/description update.
	UpdateGroup(id int64, name, description *string) error

	// DeleteGroup removes a group, its memberships, and every grant made to
	// it, in one transaction. Returns ErrGroupNotFound if absent.
	DeleteGroup(id int64) error

	// ListGroupsManagedBy returns the groups managed by a user.
	ListGroupsManagedBy(managerID int64) ([]model.Group, error)

	// AddMember adds a user to a group. Returns ErrDuplicateMembership if a
	// membership for the pair already exists.
	AddMember(groupID, userID int64, level model.PermissionLevel) error

	// UpdateMemberLevel changes a membership's level. Returns
	// ErrMembershipNotFound if the user is not a member.
	UpdateMemberLevel(groupID, userID int64, level model.PermissionLevel) error

	// RemoveMember removes a membership. Returns ErrMembershipNotFound if the
	// user is not a member.
	RemoveMember(groupID, userID int64) error

	// ListMembershipsOfUser returns all memberships held by a user.
	ListMembershipsOfUser(userID int64) ([]model.GroupMembership, error)

	// ListMembersOfGroup returns a group's members with their emails.
	ListMembersOfGroup(groupID int64) ([]GroupMember, error)
}
