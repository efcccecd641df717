package model

import "time"

// Group is a named set of memberships with exactly one managing user. Only
// the manager may add, update, or remove members.
type Group struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name;not null;uniqueIndex"`
	Description string    `gorm:"column:description"`
	ManagerID   int64     `gorm:"column:manager_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Group) TableName() string {
	return "groups"
}
