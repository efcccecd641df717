package gorm

import (
	"gorm.io/gorm"

	"github.com/lanbitou/lanbitou-in-go/pkg/model"
	"github.com/lanbitou/lanbitou-in-go/pkg/server/store"
)

// Ensure SecretsStore implements store.SecretsStore
var _ store.SecretsStore = (*SecretsStore)(nil)

// SecretsStore implements store.SecretsStore using GORM
type SecretsStore struct {
	db *gorm.DB
}

// NewSecretsStore creates a new SecretsStore
func NewSecretsStore(db *gorm.DB) *SecretsStore {
	return &SecretsStore{db: db}
}

// CreateSecret stores a new secret owned by ownerID.
func (s *SecretsStore) CreateSecret(ownerID int64, site, encryptedData, iv, notes string) (*model.Secret, error) {
	secret := model.Secret{
		OwnerID:       ownerID,
		Site:          site,
		EncryptedData: encryptedData,
		IV:            iv,
		Notes:         notes,
	}
	if err := s.db.Create(&secret).Error; err != nil {
		return nil, err
	}
	return &secret, nil
}

// FetchSecret retrieves a secret by id.
func (s *SecretsStore) FetchSecret(id int64) (*model.Secret, error) {
	var secret model.Secret
	tx := s.db.Where(&model.Secret{ID: id}).First(&secret)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrSecretNotFound
		}
		return nil, tx.Error
	}
	return &secret, nil
}

// UpdateSecret applies a partial update. Absent fields keep their values.
func (s *SecretsStore) UpdateSecret(id int64, update store.SecretUpdate) error {
	values := map[string]interface{}{}
	if update.Site != nil {
		values["site"] = *update.Site
	}
	if update.EncryptedData != nil {
		values["encrypted_data"] = *update.EncryptedData
	}
	if update.IV != nil {
		values["iv"] = *update.IV
	}
	if update.Notes != nil {
		values["notes"] = *update.Notes
	}
	if len(values) == 0 {
		// Nothing to change; still report a missing secret.
		_, err := s.FetchSecret(id)
		return err
	}

	tx := s.db.Model(&model.Secret{}).Where("id = ?", id).Updates(values)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrSecretNotFound
	}
	return nil
}

// DeleteSecret removes a secret and every grant referencing it. The grant
// sweep and the secret delete commit or roll back together so no orphan
// grant can survive.
func (s *SecretsStore) DeleteSecret(id int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("secret_id = ?", id).Delete(&model.AccessGrant{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&model.Secret{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrSecretNotFound
		}
		return nil
	})
}

// ListVisibleSecrets returns owned secrets plus secrets shared with the actor
// directly or through a group membership, deduplicated by id.
func (s *SecretsStore) ListVisibleSecrets(actorID int64) ([]model.Secret, error) {
	var secrets []model.Secret
	err := s.db.Raw(`
		SELECT DISTINCT s.* FROM secrets s
		LEFT JOIN access_grants g ON g.secret_id = s.id
		LEFT JOIN group_memberships m ON m.group_id = g.group_id AND m.user_id = ?
		WHERE s.owner_id = ?
		   OR g.user_id = ?
		   OR m.user_id IS NOT NULL
		ORDER BY s.id
	`, actorID, actorID, actorID).Scan(&secrets).Error
	if err != nil {
		return nil, err
	}
	return secrets, nil
}
