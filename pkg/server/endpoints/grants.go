package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/lanbitou/lanbitou-in-go/pkg/audit"
	"github.com/lanbitou/lanbitou-in-go/pkg/identity"
	"github.com/lanbitou/lanbitou-in-go/pkg/model"
	"github.com/lanbitou/lanbitou-in-go/pkg/server"
	"github.com/lanbitou/lanbitou-in-go/pkg/server/store"
)

// GrantEntryResponse represents one grant in the listing for a secret, with
// the target resolved to a displayable identity.
type GrantEntryResponse struct {
	ID          int64  `json:"id"`
	SecretID    int64  `json:"password_id"`
	Permission  string `json:"permission"`
	TargetType  string `json:"target_type"`
	TargetID    int64  `json:"target_id"`
	TargetEmail string `json:"target_email,omitempty"`
	TargetName  string `json:"target_name,omitempty"`
}

type grantRequest struct {
	SecretID   *int64 `json:"password_id"`
	UserID     *int64 `json:"user_id"`
	GroupID    *int64 `json:"group_id"`
	Permission string `json:"permission"`
}

type revokeRequest struct {
	SecretID *int64 `json:"password_id"`
	UserID   *int64 `json:"user_id"`
	GroupID  *int64 `json:"group_id"`
}

// RegisterGrantsEndpoints registers the grant ledger endpoints. Every one of
// them is owner-only.
func RegisterGrantsEndpoints(s *server.Server) {
	secretsStore := s.SecretsStore
	grantsStore := s.GrantsStore

	permissionRouter := s.Router.PathPrefix("/permission").Subrouter()
	permissionRouter.Use(s.JWTMiddleware.Middleware)
	permissionRouter.HandleFunc("/grant", handleGrant(secretsStore, grantsStore)).Methods("POST")
	permissionRouter.HandleFunc("/revoke", handleRevoke(secretsStore, grantsStore)).Methods("DELETE")
	permissionRouter.HandleFunc("/update/{id:[0-9]+}", handleUpdateGrant(secretsStore, grantsStore)).Methods("PATCH")
	permissionRouter.HandleFunc("/password/{id:[0-9]+}", handleListGrants(secretsStore, grantsStore)).Methods("GET")
}

func parseLevel(s string) (model.PermissionLevel, error) {
	return model.PermissionLevelString(strings.ToUpper(s))
}

// ownedSecret fetches a secret and checks ownership. Absence and
// non-ownership are reported identically so a granter can't probe for other
// users' secret ids.
func ownedSecret(secretsStore store.SecretsStore, secretID, actorID int64) (*model.Secret, bool) {
	secret, err := secretsStore.FetchSecret(secretID)
	if err != nil || secret.OwnerID != actorID {
		return nil, false
	}
	return secret, true
}

func handleGrant(secretsStore store.SecretsStore, grantsStore store.GrantsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithMessage(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		var body grantRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Missing password_id or permission")
			return
		}

		if body.SecretID == nil || body.Permission == "" {
			respondWithMessage(w, http.StatusBadRequest, "Missing password_id or permission")
			return
		}

		target := store.GrantTarget{UserID: body.UserID, GroupID: body.GroupID}
		if body.UserID == nil && body.GroupID == nil {
			respondWithMessage(w, http.StatusBadRequest, "Missing target_user_id or target_group_id")
			return
		}
		if !target.Exclusive() {
			respondWithMessage(w, http.StatusBadRequest, "Cannot grant to both user and group simultaneously")
			return
		}

		if _, ok := ownedSecret(secretsStore, *body.SecretID, id.UserID); !ok {
			respondWithMessage(w, http.StatusForbidden, "You do not own this password or it does not exist")
			return
		}

		level, err := parseLevel(body.Permission)
		if err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Invalid permission type")
			return
		}

		grant, err := grantsStore.CreateGrant(*body.SecretID, target, level)
		if err != nil {
			if errors.Is(err, store.ErrDuplicateGrant) {
				respondWithMessage(w, http.StatusConflict,
					"Permission already exists for this target. Use PATCH /permission/update to change it.")
				return
			}
			respondWithMessage(w, http.StatusInternalServerError, "Failed to grant permission")
			return
		}

		audit.Log(grantEvent(id.UserID, r, *body.SecretID, target, level.String(), "grant"))

		respondWithJSON(w, http.StatusCreated, map[string]interface{}{
			"msg":       "Permission granted successfully",
			"access_id": grant.ID,
		})
	}
}

func handleRevoke(secretsStore store.SecretsStore, grantsStore store.GrantsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithMessage(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		var body revokeRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Missing password_id")
			return
		}

		if body.SecretID == nil {
			respondWithMessage(w, http.StatusBadRequest, "Missing password_id")
			return
		}

		target := store.GrantTarget{UserID: body.UserID, GroupID: body.GroupID}
		if body.UserID == nil && body.GroupID == nil {
			respondWithMessage(w, http.StatusBadRequest, "Missing target_user_id or target_group_id")
			return
		}
		if !target.Exclusive() {
			respondWithMessage(w, http.StatusBadRequest, "Cannot revoke from both user and group simultaneously")
			return
		}

		if _, ok := ownedSecret(secretsStore, *body.SecretID, id.UserID); !ok {
			respondWithMessage(w, http.StatusForbidden, "You do not own this password or it does not exist")
			return
		}

		if err := grantsStore.DeleteGrant(*body.SecretID, target); err != nil {
			if errors.Is(err, store.ErrGrantNotFound) {
				respondWithMessage(w, http.StatusNotFound, "Permission not found")
				return
			}
			respondWithMessage(w, http.StatusInternalServerError, "Failed to revoke permission")
			return
		}

		audit.Log(grantEvent(id.UserID, r, *body.SecretID, target, "", "revoke"))

		respondWithMessage(w, http.StatusOK, "Permission revoked successfully")
	}
}

func handleUpdateGrant(secretsStore store.SecretsStore, grantsStore store.GrantsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithMessage(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		grantID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Invalid permission id")
			return
		}

		var body struct {
			Permission string `json:"permission"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Permission == "" {
			respondWithMessage(w, http.StatusBadRequest, "New permission is required")
			return
		}

		grant, err := grantsStore.FetchGrant(grantID)
		if err != nil {
			if errors.Is(err, store.ErrGrantNotFound) {
				respondWithMessage(w, http.StatusNotFound, "Permission entry not found")
				return
			}
			respondWithMessage(w, http.StatusInternalServerError, "Failed to update permission")
			return
		}

		if _, ok := ownedSecret(secretsStore, grant.SecretID, id.UserID); !ok {
			respondWithMessage(w, http.StatusForbidden, "You do not own the password associated with this permission")
			return
		}

		level, err := parseLevel(body.Permission)
		if err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Invalid permission type")
			return
		}

		if err := grantsStore.UpdateGrantLevel(grantID, level); err != nil {
			respondWithMessage(w, http.StatusInternalServerError, "Failed to update permission")
			return
		}

		target := store.GrantTarget{UserID: grant.UserID, GroupID: grant.GroupID}
		audit.Log(grantEvent(id.UserID, r, grant.SecretID, target, level.String(), "update"))

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"msg":            "Permission updated successfully",
			"new_permission": level.String(),
		})
	}
}

func handleListGrants(secretsStore store.SecretsStore, grantsStore store.GrantsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithMessage(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		secretID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Invalid password id")
			return
		}

		// Unlike grant/revoke, listing reports a missing secret as 404: once
		// a secret is deleted, its grant ledger is gone, not forbidden.
		secret, err := secretsStore.FetchSecret(secretID)
		if err != nil {
			if errors.Is(err, store.ErrSecretNotFound) {
				respondWithMessage(w, http.StatusNotFound, "Password not found")
				return
			}
			respondWithMessage(w, http.StatusInternalServerError, "Failed to list permissions")
			return
		}
		if secret.OwnerID != id.UserID {
			respondWithMessage(w, http.StatusForbidden, "You do not own this password")
			return
		}

		grants, err := grantsStore.ListGrantsForSecret(secretID)
		if err != nil {
			respondWithMessage(w, http.StatusInternalServerError, "Failed to list permissions")
			return
		}

		response := make([]GrantEntryResponse, 0, len(grants))
		for _, g := range grants {
			entry := GrantEntryResponse{
				ID:         g.ID,
				SecretID:   g.SecretID,
				Permission: g.Level.String(),
				TargetType: g.TargetType,
				TargetID:   g.TargetID,
			}
			if g.TargetType == "user" {
				entry.TargetEmail = g.TargetDisplay
			} else {
				entry.TargetName = g.TargetDisplay
			}
			response = append(response, entry)
		}

		respondWithJSON(w, http.StatusOK, response)
	}
}

func grantEvent(ownerID int64, r *http.Request, secretID int64, target store.GrantTarget, level, operation string) audit.GrantEvent {
	event := audit.GrantEvent{
		OwnerID:   ownerID,
		ClientIP:  clientIP(r),
		SecretID:  secretID,
		Level:     level,
		Operation: operation,
		Success:   true,
	}
	if target.UserID != nil {
		event.TargetType = "user"
		event.TargetID = *target.UserID
	} else if target.GroupID != nil {
		event.TargetType = "group"
		event.TargetID = *target.GroupID
	}
	return event
}
