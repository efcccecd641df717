package authz

import (
	"errors"

	"github.com/lanbitou/lanbitou-in-go/pkg/model"
	"github.com/lanbitou/lanbitou-in-go/pkg/server/store"
)

// Resolver computes the effective permission of an actor on a secret. It
// only reads; it is safe to call concurrently with unrelated writes.
type Resolver struct {
	secrets   store.SecretsStore
	grants    store.GrantsStore
	directory store.DirectoryStore
}

// NewResolver creates a Resolver over the given stores.
func NewResolver(secrets store.SecretsStore, grants store.GrantsStore, directory store.DirectoryStore) *Resolver {
	return &Resolver{
		secrets:   secrets,
		grants:    grants,
		directory: directory,
	}
}

// Resolve returns the effective permission level of actorID on secretID.
// ok is false when the actor has no access path at all. A missing secret is
// reported as store.ErrSecretNotFound, distinct from "no access".
//
// Ownership short-circuits to DELETE and cannot be reduced by any grant.
// Otherwise each access path yields a candidate: a direct grant contributes
// its own level, and a grant to group g contributes min(grant level,
// membership level) so that neither ceiling can be exceeded through the
// other. The result is the maximum candidate: an actor with several
// independent paths is never penalized by the weakest one.
func (r *Resolver) Resolve(actorID, secretID int64) (level model.PermissionLevel, ok bool, err error) {
	secret, err := r.secrets.FetchSecret(secretID)
	if err != nil {
		return 0, false, err
	}

	if secret.OwnerID == actorID {
		return model.PermissionDelete, true, nil
	}

	var candidates []model.PermissionLevel

	direct, err := r.grants.FetchDirectGrant(secretID, actorID)
	switch {
	case err == nil:
		candidates = append(candidates, direct.Level)
	case !errors.Is(err, store.ErrGrantNotFound):
		return 0, false, err
	}

	memberships, err := r.directory.ListMembershipsOfUser(actorID)
	if err != nil {
		return 0, false, err
	}

	if len(memberships) > 0 {
		groupIDs := make([]int64, 0, len(memberships))
		membershipLevels := make(map[int64]model.PermissionLevel, len(memberships))
		for _, m := range memberships {
			groupIDs = append(groupIDs, m.GroupID)
			membershipLevels[m.GroupID] = m.Level
		}

		groupGrants, err := r.grants.FetchGroupGrants(secretID, groupIDs)
		if err != nil {
			return 0, false, err
		}

		for _, grant := range groupGrants {
			if grant.GroupID == nil {
				continue
			}
			memberLevel, member := membershipLevels[*grant.GroupID]
			if !member {
				continue
			}
			candidates = append(candidates, model.Min(grant.Level, memberLevel))
		}
	}

	if len(candidates) == 0 {
		return 0, false, nil
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		best = model.Max(best, c)
	}
	return best, true, nil
}
