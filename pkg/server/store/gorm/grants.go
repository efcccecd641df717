package gorm

import (
	"gorm.io/gorm"

	"github.com/lanbitou/lanbitou-in-go/pkg/model"
	"github.com/lanbitou/lanbitou-in-go/pkg/server/store"
)

// Ensure GrantsStore implements store.GrantsStore
var _ store.GrantsStore = (*GrantsStore)(nil)

// GrantsStore implements store.GrantsStore using GORM
type GrantsStore struct {
	db *gorm.DB
}

// NewGrantsStore creates a new GrantsStore
func NewGrantsStore(db *gorm.DB) *GrantsStore {
	return &GrantsStore{db: db}
}

// targetScope narrows a query to the exact (secret, target) pair. A direct
// grant row has group_id NULL; a group grant row has user_id NULL.
func targetScope(db *gorm.DB, secretID int64, target store.GrantTarget) *gorm.DB {
	db = db.Where("secret_id = ?", secretID)
	if target.UserID != nil {
		return db.Where("user_id = ? AND group_id IS NULL", *target.UserID)
	}
	return db.Where("group_id = ? AND user_id IS NULL", *target.GroupID)
}

// CreateGrant records a grant. The partial unique indexes on
// (secret_id, user_id) and (secret_id, group_id) reject a duplicate even when
// two grant attempts race, so no application-level pre-check is needed.
func (s *GrantsStore) CreateGrant(secretID int64, target store.GrantTarget, level model.PermissionLevel) (*model.AccessGrant, error) {
	grant := model.AccessGrant{
		SecretID: secretID,
		UserID:   target.UserID,
		GroupID:  target.GroupID,
		Level:    level,
	}
	if err := s.db.Create(&grant).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicateGrant
		}
		return nil, err
	}
	return &grant, nil
}

// DeleteGrant removes the grant matching the exact (secret, target) pair.
// A target that is not exactly one of user or group matches no grant.
func (s *GrantsStore) DeleteGrant(secretID int64, target store.GrantTarget) error {
	if !target.Exclusive() {
		return store.ErrGrantNotFound
	}
	res := targetScope(s.db, secretID, target).Delete(&model.AccessGrant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrGrantNotFound
	}
	return nil
}

// FetchGrant retrieves a grant by id.
func (s *GrantsStore) FetchGrant(id int64) (*model.AccessGrant, error) {
	var grant model.AccessGrant
	tx := s.db.Where("id = ?", id).First(&grant)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrGrantNotFound
		}
		return nil, tx.Error
	}
	return &grant, nil
}

// UpdateGrantLevel changes a grant's level in place.
func (s *GrantsStore) UpdateGrantLevel(id int64, level model.PermissionLevel) error {
	res := s.db.Model(&model.AccessGrant{}).Where("id = ?", id).Update("level", level)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrGrantNotFound
	}
	return nil
}

// FetchDirectGrant returns the user-targeted grant on a secret.
func (s *GrantsStore) FetchDirectGrant(secretID, userID int64) (*model.AccessGrant, error) {
	var grant model.AccessGrant
	tx := s.db.Where("secret_id = ? AND user_id = ? AND group_id IS NULL", secretID, userID).First(&grant)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrGrantNotFound
		}
		return nil, tx.Error
	}
	return &grant, nil
}

// FetchGroupGrants returns the group-targeted grants on a secret for the
// given groups.
func (s *GrantsStore) FetchGroupGrants(secretID int64, groupIDs []int64) ([]model.AccessGrant, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	var grants []model.AccessGrant
	err := s.db.
		Where("secret_id = ? AND group_id IN ? AND user_id IS NULL", secretID, groupIDs).
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}

// ListGrantsForSecret returns every grant on a secret with the target
// resolved to the user's email or the group's name.
func (s *GrantsStore) ListGrantsForSecret(secretID int64) ([]store.ResolvedGrant, error) {
	var rows []struct {
		ID        int64
		SecretID  int64
		UserID    *int64
		GroupID   *int64
		Level     model.PermissionLevel
		UserEmail *string
		GroupName *string
	}
	err := s.db.Raw(`
		SELECT g.id, g.secret_id, g.user_id, g.group_id, g.level,
		       u.email AS user_email, gr.name AS group_name
		FROM access_grants g
		LEFT JOIN users u ON u.id = g.user_id
		LEFT JOIN groups gr ON gr.id = g.group_id
		WHERE g.secret_id = ?
		ORDER BY g.id
	`, secretID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	grants := make([]store.ResolvedGrant, 0, len(rows))
	for _, row := range rows {
		resolved := store.ResolvedGrant{
			ID:       row.ID,
			SecretID: row.SecretID,
			Level:    row.Level,
		}
		switch {
		case row.UserID != nil:
			resolved.TargetType = "user"
			resolved.TargetID = *row.UserID
			if row.UserEmail != nil {
				resolved.TargetDisplay = *row.UserEmail
			}
		case row.GroupID != nil:
			resolved.TargetType = "group"
			resolved.TargetID = *row.GroupID
			if row.GroupName != nil {
				resolved.TargetDisplay = *row.GroupName
			}
		}
		grants = append(grants, resolved)
	}
	return grants, nil
}
