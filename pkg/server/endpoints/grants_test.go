package endpoints

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lanbitou/lanbitou-in-go/pkg/model"
	"github.com/lanbitou/lanbitou-in-go/pkg/server/store"
)

func TestGrant(t *testing.T) {
	ownerSecret := func(secretsStore *MockSecretsStore) {
		secretsStore.On("FetchSecret", int64(1)).Return(testSecret(), nil)
	}

	t.Run("grants to a user", func(t *testing.T) {
		secretsStore := NewMockSecretsStore()
		grantsStore := NewMockGrantsStore()
		ownerSecret(secretsStore)

		target := store.GrantTarget{UserID: int64Ptr(2)}
		grantsStore.On("CreateGrant", int64(1), target, model.PermissionWrite).Return(&model.AccessGrant{
			ID: 5, SecretID: 1, UserID: int64Ptr(2), Level: model.PermissionWrite,
		}, nil)

		handler := handleGrant(secretsStore, grantsStore)

		req := requestWithIdentity("POST", "/permission/grant",
			`{"password_id":1,"user_id":2,"permission":"write"}`, 1, "alice@example.com")
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, float64(5), body["access_id"])
	})

	t.Run("missing password_id", func(t *testing.T) {
		secretsStore := NewMockSecretsStore()
		grantsStore := NewMockGrantsStore()

		handler := handleGrant(secretsStore, grantsStore)

		req := requestWithIdentity("POST", "/permission/grant",
			`{"user_id":2,"permission":"READ"}`, 1, "alice@example.com")
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Missing password_id or permission", decodeMessage(t, w))
	})

	t.Run("missing target", func(t *testing.T) {
		secretsStore := NewMockSecretsStore()
		grantsStore := NewMockGrantsStore()

		handler := handleGrant(secretsStore, grantsStore)

		req := requestWithIdentity("POST", "/permission/grant",
			`{"password_id":1,"permission":"READ"}`, 1, "alice@example.com")
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Missing target_user_id or target_group_id", decodeMessage(t, w))
	})

	t.Run("user and group at once", func(t *testing.T) {
		secretsStore := NewMockSecretsStore()
		grantsStore := NewMockGrantsStore()

		handler := handleGrant(secretsStore, grantsStore)

		req := requestWithIdentity("POST", "/permission/grant",
			`{"password_id":1,"user_id":2,"group_id":3,"permission":"READ"}`, 1, "alice@example.com")
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Cannot grant to both user and group simultaneously", decodeMessage(t, w))
	})

	t.Run("caller is not the owner", func(t *testing.T) {
		secretsStore := NewMockSecretsStore()
		grantsStore := NewMockGrantsStore()
		ownerSecret(secretsStore)

		handler := handleGrant(secretsStore, grantsStore)

		req := requestWithIdentity("POST", "/permission/grant",
			`{"password_id":1,"user_id":3,"permission":"READ"}`, 2, "bob@example.com")
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "You do not own this password or it does not exist", decodeMessage(t, w))
		grantsStore.AssertNotCalled(t, "CreateGrant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("secret does not exist reads the same as not owned", func(t *testing.T) {
		secretsStore := NewMockSecretsStore()
		grantsStore := NewMockGrantsStore()
		secretsStore.On("FetchSecret", int64(99)).Return(nil, store.ErrSecretNotFound)

		handler := handleGrant(secretsStore, grantsStore)

		req := requestWithIdentity("POST", "/permission/grant",
			`{"password_id":99,"user_id":2,"permission":"READ"}`, 1, "alice@example.com")
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "You do not own this password or it does not exist", decodeMessage(t, w))
	})

	t.Run("unknown permission level", func(t *testing.T) {
		secretsStore := NewMockSecretsStore()
		grantsStore := NewMockGrantsStore()
		ownerSecret(secretsStore)

		handler := handleGrant(secretsStore, grantsStore)

		req := requestWithIdentity("POST", "/permission/grant",
			`{"password_id":1,"user_id":2,"permission":"ADMIN"}`, 1, "alice@example.com")
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid permission type", decodeMessage(t, w))
	})

	t.Run("duplicate grant", func(t *testing.T) {
		secretsStore := NewMockSecretsStore()
		grantsStore := NewMockGrantsStore()
		ownerSecret(secretsStore)

		target := store.GrantTarget{UserID: int64Ptr(2)}
		grantsStore.On("CreateGrant", int64(1), target, model.PermissionRead).Return(nil, store.ErrDuplicateGrant)

		handler := handleGrant(secretsStore, grantsStore)

		req := requestWithIdentity("POST", "/permission/grant",
			`{"password_id":1,"user_id":2,"permission":"READ"}`, 1, "alice@example.com")
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t,
			"Permission already exists for this target. Use PATCH /permission/update to change it.",
			decodeMessage(t, w))
	})
}

func TestRevoke(t *testing.T) {
	t.Run("revokes a group grant", func(t *testing.T) {
		secretsStore := NewMockSecretsStore()
		grantsStore := NewMockGrantsStore()
		secretsStore.On("FetchSecret", int64(1)).Return(testSecret(), nil)

		target := store.GrantTarget{GroupID: int64Ptr(3)}
		grantsStore.On("DeleteGrant", int64(1), target).Return(nil)

		handler := handleRevoke(secretsStore, grantsStore)

		req := requestWithIdentity("DELETE", "/permission/revoke",
			`{"password_id":1,"group_id":3}`, 1, "alice@example.com")
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Permission revoked successfully", decodeMessage(t, w))
	})

	t.Run("no grant to revoke", func(t *testing.T) {
		secretsStore := NewMockSecretsStore()
		grantsStore := NewMockGrantsStore()
		secretsStore.On("FetchSecret", int64(1)).Return(testSecret(), nil)

		target := store.GrantTarget{UserID: int64Ptr(2)}
		grantsStore.On("DeleteGrant", int64(1), target).Return(store.ErrGrantNotFound)

		handler := handleRevoke(secretsStore, grantsStore)

		req := requestWithIdentity("DELETE", "/permission/revoke",
			`{"password_id":1,"user_id":2}`, 1, "alice@example.com")
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Permission not found", decodeMessage(t, w))
	})
}

func TestUpdateGrant(t *testing.T) {
	existing := &model.AccessGrant{ID: 5, SecretID: 1, UserID: int64Ptr(2), Level: model.PermissionRead}

	t.Run("raises the level", func(t *testing.T) {
		secretsStore := NewMockSecretsStore()
		grantsStore := NewMockGrantsStore()
		grantsStore.On("FetchGrant", int64(5)).Return(existing, nil)
		secretsStore.On("FetchSecret", int64(1)).Return(testSecret(), nil)
		grantsStore.On("UpdateGrantLevel", int64(5), model.PermissionDelete).Return(nil)

		handler := handleUpdateGrant(secretsStore, grantsStore)

		req := withMuxVars(
			requestWithIdentity("PATCH", "/permission/update/5", `{"permission":"delete"}`, 1, "alice@example.com"),
			map[string]string{"id": "5"},
		)
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "DELETE", body["new_permission"])
	})

	t.Run("unknown grant id", func(t *testing.T) {
		secretsStore := NewMockSecretsStore()
		grantsStore := NewMockGrantsStore()
		grantsStore.On("FetchGrant", int64(5)).Return(nil, store.ErrGrantNotFound)

		handler := handleUpdateGrant(secretsStore, grantsStore)

		req := withMuxVars(
			requestWithIdentity("PATCH", "/permission/update/5", `{"permission":"READ"}`, 1, "alice@example.com"),
			map[string]string{"id": "5"},
		)
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Permission entry not found", decodeMessage(t, w))
	})

	t.Run("caller does not own the underlying secret", func(t *testing.T) {
		secretsStore := NewMockSecretsStore()
		grantsStore := NewMockGrantsStore()
		grantsStore.On("FetchGrant", int64(5)).Return(existing, nil)
		secretsStore.On("FetchSecret", int64(1)).Return(testSecret(), nil)

		handler := handleUpdateGrant(secretsStore, grantsStore)

		req := withMuxVars(
			requestWithIdentity("PATCH", "/permission/update/5", `{"permission":"READ"}`, 2, "bob@example.com"),
			map[string]string{"id": "5"},
		)
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "You do not own the password associated with this permission", decodeMessage(t, w))
		grantsStore.AssertNotCalled(t, "UpdateGrantLevel", mock.Anything, mock.Anything)
	})

	t.Run("missing permission body", func(t *testing.T) {
		secretsStore := NewMockSecretsStore()
		grantsStore := NewMockGrantsStore()

		handler := handleUpdateGrant(secretsStore, grantsStore)

		req := withMuxVars(
			requestWithIdentity("PATCH", "/permission/update/5", `{}`, 1, "alice@example.com"),
			map[string]string{"id": "5"},
		)
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "New permission is required", decodeMessage(t, w))
	})
}

func TestListGrants(t *testing.T) {
	t.Run("resolves targets to emails and names", func(t *testing.T) {
		secretsStore := NewMockSecretsStore()
		grantsStore := NewMockGrantsStore()
		secretsStore.On("FetchSecret", int64(1)).Return(testSecret(), nil)
		grantsStore.On("ListGrantsForSecret", int64(1)).Return([]store.ResolvedGrant{
			{ID: 5, SecretID: 1, TargetType: "user", TargetID: 2, TargetDisplay: "bob@example.com", Level: model.PermissionRead},
			{ID: 6, SecretID: 1, TargetType: "group", TargetID: 3, TargetDisplay: "ops", Level: model.PermissionWrite},
		}, nil)

		handler := handleListGrants(secretsStore, grantsStore)

		req := withMuxVars(
			requestWithIdentity("GET", "/permission/password/1", "", 1, "alice@example.com"),
			map[string]string{"id": "1"},
		)
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body []GrantEntryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body, 2)
		assert.Equal(t, "bob@example.com", body[0].TargetEmail)
		assert.Empty(t, body[0].TargetName)
		assert.Equal(t, "READ", body[0].Permission)
		assert.Equal(t, "ops", body[1].TargetName)
		assert.Empty(t, body[1].TargetEmail)
	})

	t.Run("non-owner cannot list", func(t *testing.T) {
		secretsStore := NewMockSecretsStore()
		grantsStore := NewMockGrantsStore()
		secretsStore.On("FetchSecret", int64(1)).Return(testSecret(), nil)

		handler := handleListGrants(secretsStore, grantsStore)

		req := withMuxVars(
			requestWithIdentity("GET", "/permission/password/1", "", 2, "bob@example.com"),
			map[string]string{"id": "1"},
		)
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "You do not own this password", decodeMessage(t, w))
		grantsStore.AssertNotCalled(t, "ListGrantsForSecret", mock.Anything)
	})

	t.Run("a deleted secret has no ledger to list", func(t *testing.T) {
		secretsStore := NewMockSecretsStore()
		grantsStore := NewMockGrantsStore()
		secretsStore.On("FetchSecret", int64(1)).Return(nil, store.ErrSecretNotFound)

		handler := handleListGrants(secretsStore, grantsStore)

		req := withMuxVars(
			requestWithIdentity("GET", "/permission/password/1", "", 1, "alice@example.com"),
			map[string]string{"id": "1"},
		)
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Password not found", decodeMessage(t, w))
		grantsStore.AssertNotCalled(t, "ListGrantsForSecret", mock.Anything)
	})
}
