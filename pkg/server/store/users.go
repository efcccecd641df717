package store

import (
	"errors"

	"github.com/lanbitou/lanbitou-in-go/pkg/model"
)

// ErrUserNotFound is returned when a user doesn't exist
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateUser is returned when the email is already registered
var ErrDuplicateUser = errors.New("user already exists")

// UsersStore abstracts user account storage
type UsersStore interface {
	// CreateUser registers a new user. Returns ErrDuplicateUser if the email
	// is taken.
	CreateUser(email, passwordHash string) (*model.User, error)

	// FetchUser retrieves a user by id. Returns ErrUserNotFound if absent.
	FetchUser(id int64) (*model.User, error)

	// FetchUserByEmail retrieves a user by email. Returns ErrUserNotFound if
	// absent.
	FetchUserByEmail(email string) (*model.User, error)
}
