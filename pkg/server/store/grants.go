package store

import (
	"errors"

	"github.com/lanbitou/lanbitou-in-go/pkg/model"
)

// ErrGrantNotFound is returned when no grant matches the query
var ErrGrantNotFound = errors.New("grant not found")

// ErrDuplicateGrant is returned when a grant already exists for the same
// (secret, target) pair
var ErrDuplicateGrant = errors.New("grant already exists for this target")

// GrantTarget identifies the recipient of a grant: exactly one of UserID or
// GroupID must be set.
type GrantTarget struct {
	UserID  *int64
	GroupID *int64
}

// Exclusive reports whether exactly one target is set.
func (t GrantTarget) Exclusive() bool {
	return (t.UserID != nil) != (t.GroupID != nil)
}

// ResolvedGrant is a grant with its target resolved to a displayable
// identity, for the owner-facing grant listing.
type ResolvedGrant struct {
	ID         int64
	SecretID   int64
	TargetType string // "user" or "group"
	TargetID   int64
	// TargetDisplay is the user's email or the group's name.
	TargetDisplay string
	Level         model.PermissionLevel
}

// GrantsStore abstracts the access grant ledger
type GrantsStore interface {
	// CreateGrant records a grant. The (secret, target) uniqueness is
	// enforced by the storage layer; a conflicting write returns
	// ErrDuplicateGrant rather than overwriting.
	CreateGrant(secretID int64, target GrantTarget, level model.PermissionLevel) (*model.AccessGrant, error)

	// DeleteGrant removes the grant matching the exact (secret, target) pair.
	// Returns ErrGrantNotFound if no such grant exists.
	DeleteGrant(secretID int64, target GrantTarget) error

	// FetchGrant retrieves a grant by id. Returns ErrGrantNotFound if absent.
	FetchGrant(id int64) (*model.AccessGrant, error)

	// UpdateGrantLevel changes a grant's level in place.
	UpdateGrantLevel(id int64, level model.PermissionLevel) error

	// FetchDirectGrant returns the user-targeted grant on a secret, or
	// ErrGrantNotFound when none exists.
	FetchDirectGrant(secretID, userID int64) (*model.AccessGrant, error)

	// FetchGroupGrants returns the group-targeted grants on a secret for the
	// given groups.
	FetchGroupGrants(secretID int64, groupIDs []int64) ([]model.AccessGrant, error)

	// ListGrantsForSecret returns every grant on a secret with its target
	// resolved to a displayable identity.
	ListGrantsForSecret(secretID int64) ([]ResolvedGrant, error)
}
