package gorm

import (
	"gorm.io/gorm"

	"github.com/lanbitou/lanbitou-in-go/pkg/model"
	"github.com/lanbitou/lanbitou-in-go/pkg/server/store"
)

// Ensure DirectoryStore implements store.DirectoryStore
var _ store.DirectoryStore = (*DirectoryStore)(nil)

// DirectoryStore implements store.DirectoryStore using GORM
type DirectoryStore struct {
	db *gorm.DB
}

// NewDirectoryStore creates a new DirectoryStore
func NewDirectoryStore(db *gorm.DB) *DirectoryStore {
	return &DirectoryStore{db: db}
}

// CreateGroup creates a group managed by managerID.
func (s *DirectoryStore) CreateGroup(managerID int64, name, description string) (*model.Group, error) {
	group := model.Group{
		Name:        name,
		Description: description,
		ManagerID:   managerID,
	}
	if err := s.db.Create(&group).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicateGroupName
		}
		return nil, err
	}
	return &group, nil
}

// FetchGroup retrieves a group by id.
func (s *DirectoryStore) FetchGroup(id int64) (*model.Group, error) {
	var group model.Group
	tx := s.db.Where(&model.Group{ID: id}).First(&group)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrGroupNotFound
		}
		return nil, tx.Error
	}
	return &group, nil
}

// UpdateGroup applies a partial name/description update.
func (s *DirectoryStore) UpdateGroup(id int64, name, description *string) error {
	values := map[string]interface{}{}
	if name != nil {
		values["name"] = *name
	}
	if description != nil {
		values["description"] = *description
	}
	if len(values) == 0 {
		_, err := s.FetchGroup(id)
		return err
	}

	tx := s.db.Model(&model.Group{}).Where("id = ?", id).Updates(values)
	if tx.Error != nil {
		if isUniqueViolation(tx.Error) {
			return store.ErrDuplicateGroupName
		}
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrGroupNotFound
	}
	return nil
}

// DeleteGroup removes a group, its memberships, and every grant made to it.
// All three deletes commit or roll back together, so a failure mid-cascade
// leaves the pre-delete state intact.
func (s *DirectoryStore) DeleteGroup(id int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&model.GroupMembership{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&model.AccessGrant{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&model.Group{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrGroupNotFound
		}
		return nil
	})
}

// ListGroupsManagedBy returns the groups managed by a user.
func (s *DirectoryStore) ListGroupsManagedBy(managerID int64) ([]model.Group, error) {
	var groups []model.Group
	if err := s.db.Where("manager_id = ?", managerID).Order("id").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// AddMember adds a user to a group. The unique index on (user_id, group_id)
// rejects a duplicate membership even under concurrent adds.
func (s *DirectoryStore) AddMember(groupID, userID int64, level model.PermissionLevel) error {
	membership := model.GroupMembership{
		UserID:  userID,
		GroupID: groupID,
		Level:   level,
	}
	if err := s.db.Create(&membership).Error; err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// UpdateMemberLevel changes a membership's level.
func (s *DirectoryStore) UpdateMemberLevel(groupID, userID int64, level model.PermissionLevel) error {
	res := s.db.Model(&model.GroupMembership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("level", level)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrMembershipNotFound
	}
	return nil
}

// RemoveMember removes a membership.
func (s *DirectoryStore) RemoveMember(groupID, userID int64) error {
	res := s.db.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&model.GroupMembership{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrMembershipNotFound
	}
	return nil
}

// ListMembershipsOfUser returns all memberships held by a user.
func (s *DirectoryStore) ListMembershipsOfUser(userID int64) ([]model.GroupMembership, error) {
	var memberships []model.GroupMembership
	if err := s.db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListMembersOfGroup returns a group's members with their emails.
func (s *DirectoryStore) ListMembersOfGroup(groupID int64) ([]store.GroupMember, error) {
	var members []store.GroupMember
	err := s.db.Raw(`
		SELECT m.id AS membership_id, m.user_id, u.email, m.level
		FROM group_memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = ?
		ORDER BY m.id
	`, groupID).Scan(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
