package store

import (
	"errors"

	"github.com/lanbitou/lanbitou-in-go/pkg/model"
)

// ErrSecretNotFound is returned when a secret doesn't exist
var ErrSecretNotFound = errors.New("secret not found")

// SecretUpdate describes a partial update of a secret. Nil fields keep their
// stored values.
type SecretUpdate struct {
	Site          *string
	EncryptedData *string
	IV            *string
	Notes         *string
}

// SecretsStore abstracts secret storage operations
type SecretsStore interface {
	// CreateSecret stores a new secret owned by ownerID.
	CreateSecret(ownerID int64, site, encryptedData, iv, notes string) (*model.Secret, error)

	// FetchSecret retrieves a secret by id. Returns ErrSecretNotFound if the
	// secret doesn't exist.
	FetchSecret(id int64) (*model.Secret, error)

	// UpdateSecret applies a partial update. Returns ErrSecretNotFound if the
	// secret doesn't exist.
	UpdateSecret(id int64, update SecretUpdate) error

	// DeleteSecret removes a secret and every grant referencing it in one
	// transaction. Returns ErrSecretNotFound if the secret doesn't exist.
	DeleteSecret(id int64) error

	// ListVisibleSecrets returns, deduplicated by id, the secrets actorID owns
	// plus the secrets shared with actorID directly or through a group the
	// actor is a member of.
	ListVisibleSecrets(actorID int64) ([]model.Secret, error)
}
