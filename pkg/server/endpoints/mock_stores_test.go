package endpoints

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/mock"

	"github.com/lanbitou/lanbitou-in-go/pkg/identity"
	"github.com/lanbitou/lanbitou-in-go/pkg/model"
	"github.com/lanbitou/lanbitou-in-go/pkg/server/store"
)

// requestWithIdentity builds a request carrying an authenticated identity,
// as the session middleware would attach it.
func requestWithIdentity(method, path, body string, userID int64, email string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	ctx := identity.Set(req.Context(), &identity.Identity{UserID: userID, Email: email})
	return req.WithContext(ctx)
}

func withMuxVars(req *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(req, vars)
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}

func int64Ptr(v int64) *int64 {
	return &v
}

// MockUsersStore implements store.UsersStore for testing using testify/mock
type MockUsersStore struct {
	mock.Mock
}

func NewMockUsersStore() *MockUsersStore {
	return &MockUsersStore{}
}

func (m *MockUsersStore) CreateUser(email, passwordHash string) (*model.User, error) {
	args := m.Called(email, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) FetchUser(id int64) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) FetchUserByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockSecretsStore implements store.SecretsStore for testing using testify/mock
type MockSecretsStore struct {
	mock.Mock
}

func NewMockSecretsStore() *MockSecretsStore {
	return &MockSecretsStore{}
}

func (m *MockSecretsStore) CreateSecret(ownerID int64, site, encryptedData, iv, notes string) (*model.Secret, error) {
	args := m.Called(ownerID, site, encryptedData, iv, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Secret), args.Error(1)
}

func (m *MockSecretsStore) FetchSecret(id int64) (*model.Secret, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Secret), args.Error(1)
}

func (m *MockSecretsStore) UpdateSecret(id int64, update store.SecretUpdate) error {
	args := m.Called(id, update)
	return args.Error(0)
}

func (m *MockSecretsStore) DeleteSecret(id int64) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockSecretsStore) ListVisibleSecrets(actorID int64) ([]model.Secret, error) {
	args := m.Called(actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Secret), args.Error(1)
}

// MockGrantsStore implements store.GrantsStore for testing using testify/mock
type MockGrantsStore struct {
	mock.Mock
}

func NewMockGrantsStore() *MockGrantsStore {
	return &MockGrantsStore{}
}

func (m *MockGrantsStore) CreateGrant(secretID int64, target store.GrantTarget, level model.PermissionLevel) (*model.AccessGrant, error) {
	args := m.Called(secretID, target, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessGrant), args.Error(1)
}

func (m *MockGrantsStore) DeleteGrant(secretID int64, target store.GrantTarget) error {
	args := m.Called(secretID, target)
	return args.Error(0)
}

func (m *MockGrantsStore) FetchGrant(id int64) (*model.AccessGrant, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessGrant), args.Error(1)
}

func (m *MockGrantsStore) UpdateGrantLevel(id int64, level model.PermissionLevel) error {
	args := m.Called(id, level)
	return args.Error(0)
}

func (m *MockGrantsStore) FetchDirectGrant(secretID, userID int64) (*model.AccessGrant, error) {
	args := m.Called(secretID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessGrant), args.Error(1)
}

func (m *MockGrantsStore) FetchGroupGrants(secretID int64, groupIDs []int64) ([]model.AccessGrant, error) {
	args := m.Called(secretID, groupIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AccessGrant), args.Error(1)
}

func (m *MockGrantsStore) ListGrantsForSecret(secretID int64) ([]store.ResolvedGrant, error) {
	args := m.Called(secretID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.ResolvedGrant), args.Error(1)
}

// MockDirectoryStore implements store.DirectoryStore for testing using testify/mock
type MockDirectoryStore struct {
	mock.Mock
}

func NewMockDirectoryStore() *MockDirectoryStore {
	return &MockDirectoryStore{}
}

func (m *MockDirectoryStore) CreateGroup(managerID int64, name, description string) (*model.Group, error) {
	args := m.Called(managerID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockDirectoryStore) FetchGroup(id int64) (*model.Group, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockDirectoryStore) UpdateGroup(id int64, name, description *string) error {
	args := m.Called(id, name, description)
	return args.Error(0)
}

func (m *MockDirectoryStore) DeleteGroup(id int64) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockDirectoryStore) ListGroupsManagedBy(managerID int64) ([]model.Group, error) {
	args := m.Called(managerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Group), args.Error(1)
}

func (m *MockDirectoryStore) AddMember(groupID, userID int64, level model.PermissionLevel) error {
	args := m.Called(groupID, userID, level)
	return args.Error(0)
}

func (m *MockDirectoryStore) UpdateMemberLevel(groupID, userID int64, level model.PermissionLevel) error {
	args := m.Called(groupID, userID, level)
	return args.Error(0)
}

func (m *MockDirectoryStore) RemoveMember(groupID, userID int64) error {
	args := m.Called(groupID, userID)
	return args.Error(0)
}

func (m *MockDirectoryStore) ListMembershipsOfUser(userID int64) ([]model.GroupMembership, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GroupMembership), args.Error(1)
}

func (m *MockDirectoryStore) ListMembersOfGroup(groupID int64) ([]store.GroupMember, error) {
	args := m.Called(groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.GroupMember), args.Error(1)
}
