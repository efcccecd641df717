package model

import "time"

// AccessGrant shares one secret with exactly one target, either a user or a
// group, at a permission level. The schema enforces target exclusivity with a
// check constraint and per-target uniqueness with partial unique indexes.
type AccessGrant struct {
	ID        int64           `gorm:"column:id;primaryKey"`
	SecretID  int64           `gorm:"column:secret_id;not null"`
	UserID    *int64          `gorm:"column:user_id"`
	GroupID   *int64          `gorm:"column:group_id"`
	Level     PermissionLevel `gorm:"column:level;not null;type:text"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (AccessGrant) TableName() string {
	return "access_grants"
}
