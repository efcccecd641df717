package model

import "time"

// Secret is a stored vault entry. EncryptedData and IV are produced by the
// client; the server never inspects or decrypts them. Ownership is fixed at
// creation and never transfers.
type Secret struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	OwnerID       int64     `gorm:"column:owner_id;not null"`
	Site          string    `gorm:"column:site;not null"`
	EncryptedData string    `gorm:"column:encrypted_data;not null"`
	IV            string    `gorm:"column:iv;not null"`
	Notes         string    `gorm:"column:notes"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Secret) TableName() string {
	return "secrets"
}
