package model

import "time"

// GroupMembership places a user in a group with a permission level. The level
// caps what the member can exercise through any grant made to the group.
// One membership per (user, group) pair.
type GroupMembership struct {
	ID        int64           `gorm:"column:id;primaryKey"`
	UserID    int64           `gorm:"column:user_id;not null;uniqueIndex:group_memberships_user_group_idx"`
	GroupID   int64           `gorm:"column:group_id;not null;uniqueIndex:group_memberships_user_group_idx"`
	Level     PermissionLevel `gorm:"column:level;not null;type:text"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (GroupMembership) TableName() string {
	return "group_memberships"
}
