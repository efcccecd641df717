package gorm

import (
	"gorm.io/gorm"

	"github.com/lanbitou/lanbitou-in-go/pkg/model"
	"github.com/lanbitou/lanbitou-in-go/pkg/server/store"
)

// Ensure UsersStore implements store.UsersStore
var _ store.UsersStore = (*UsersStore)(nil)

// UsersStore implements store.UsersStore using GORM
type UsersStore struct {
	db *gorm.DB
}

// NewUsersStore creates a new UsersStore
func NewUsersStore(db *gorm.DB) *UsersStore {
	return &UsersStore{db: db}
}

// CreateUser registers a new user.
func (s *UsersStore) CreateUser(email, passwordHash string) (*model.User, error) {
	user := model.User{
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicateUser
		}
		return nil, err
	}
	return &user, nil
}

// FetchUser retrieves a user by id.
func (s *UsersStore) FetchUser(id int64) (*model.User, error) {
	var user model.User
	tx := s.db.Where(&model.User{ID: id}).First(&user)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrUserNotFound
		}
		return nil, tx.Error
	}
	return &user, nil
}

// FetchUserByEmail retrieves a user by email.
func (s *UsersStore) FetchUserByEmail(email string) (*model.User, error) {
	var user model.User
	tx := s.db.Where("email = ?", email).First(&user)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrUserNotFound
		}
		return nil, tx.Error
	}
	return &user, nil
}
