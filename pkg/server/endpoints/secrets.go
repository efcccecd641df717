package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lanbitou/lanbitou-in-go/pkg/audit"
	"github.com/lanbitou/lanbitou-in-go/pkg/authz"
	"github.com/lanbitou/lanbitou-in-go/pkg/identity"
	"github.com/lanbitou/lanbitou-in-go/pkg/model"
	"github.com/lanbitou/lanbitou-in-go/pkg/server"
	"github.com/lanbitou/lanbitou-in-go/pkg/server/store"
)

// SecretResponse represents a single secret in API responses. The payload
// fields are opaque ciphertext produced by the client.
type SecretResponse struct {
	ID            int64  `json:"id"`
	Site          string `json:"site"`
	EncryptedData string `json:"encrypted_data"`
	IV            string `json:"iv"`
	Notes         string `json:"notes,omitempty"`
	OwnerID       int64  `json:"owner_id"`
}

type createSecretRequest struct {
	Site          string `json:"site"`
	EncryptedData string `json:"encrypted_data"`
	IV            string `json:"iv"`
	Notes         string `json:"notes"`
}

type updateSecretRequest struct {
	Site          *string `json:"site"`
	EncryptedData *string `json:"encrypted_data"`
	IV            *string `json:"iv"`
	Notes         *string `json:"notes"`
}

func secretResponse(s *model.Secret) SecretResponse {
	return SecretResponse{
		ID:            s.ID,
		Site:          s.Site,
		EncryptedData: s.EncryptedData,
		IV:            s.IV,
		Notes:         s.Notes,
		OwnerID:       s.OwnerID,
	}
}

// RegisterSecretsEndpoints registers secret creation, listing, and the gated
// single-secret endpoints
func RegisterSecretsEndpoints(s *server.Server) {
	secretsStore := s.SecretsStore
	gate := s.Gate

	storageRouter := s.Router.PathPrefix("/storage").Subrouter()
	storageRouter.Use(s.JWTMiddleware.Middleware)
	storageRouter.HandleFunc("", handleCreateSecret(secretsStore)).Methods("POST")

	passwordsRouter := s.Router.PathPrefix("/passwords").Subrouter()
	passwordsRouter.Use(s.JWTMiddleware.Middleware)
	passwordsRouter.HandleFunc("", handleListSecrets(secretsStore)).Methods("GET")

	apiRouter := s.Router.PathPrefix("/api/storage").Subrouter()
	apiRouter.Use(s.JWTMiddleware.Middleware)
	apiRouter.HandleFunc("/{id:[0-9]+}", handleGetSecret(secretsStore, gate)).Methods("GET")
	apiRouter.HandleFunc("/{id:[0-9]+}", handleUpdateSecret(secretsStore, gate)).Methods("PUT")
	apiRouter.HandleFunc("/{id:[0-9]+}", handleDeleteSecret(secretsStore, gate)).Methods("DELETE")
}

func handleCreateSecret(secretsStore store.SecretsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithMessage(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		var body createSecretRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondWithMessage(w, http.StatusBadRequest, "site, encrypted_data and iv are required")
			return
		}

		if body.Site == "" || body.EncryptedData == "" || body.IV == "" {
			respondWithMessage(w, http.StatusBadRequest, "site, encrypted_data and iv are required")
			return
		}

		secret, err := secretsStore.CreateSecret(id.UserID, body.Site, body.EncryptedData, body.IV, body.Notes)
		if err != nil {
			respondWithMessage(w, http.StatusInternalServerError, "Failed to store password")
			return
		}

		respondWithJSON(w, http.StatusCreated, map[string]interface{}{
			"msg": "Password stored successfully",
			"id":  secret.ID,
		})
	}
}

func handleListSecrets(secretsStore store.SecretsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithMessage(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		secrets, err := secretsStore.ListVisibleSecrets(id.UserID)
		if err != nil {
			respondWithMessage(w, http.StatusInternalServerError, "Failed to list passwords")
			return
		}

		response := make([]SecretResponse, 0, len(secrets))
		for i := range secrets {
			response = append(response, secretResponse(&secrets[i]))
		}

		respondWithJSON(w, http.StatusOK, response)
	}
}

// authorizeSecret runs the gate for a single-secret request and writes the
// error response when access is refused. Returns false when the request has
// been answered.
func authorizeSecret(w http.ResponseWriter, gate *authz.Gate, actorID, secretID int64, op authz.Operation) bool {
	err := gate.Authorize(actorID, secretID, op)
	if err == nil {
		return true
	}

	if errors.Is(err, store.ErrSecretNotFound) {
		respondWithMessage(w, http.StatusNotFound, "Password not found")
		return false
	}
	if errors.Is(err, authz.ErrPermissionDenied) {
		var msg string
		switch op {
		case authz.OperationUpdate:
			msg = "Write permission required"
		case authz.OperationDelete:
			msg = "Delete permission required"
		default:
			msg = "Access denied"
		}
		respondWithMessage(w, http.StatusForbidden, msg)
		return false
	}

	respondWithMessage(w, http.StatusInternalServerError, "Authorization check failed")
	return false
}

func secretIDFromRequest(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func handleGetSecret(secretsStore store.SecretsStore, gate *authz.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithMessage(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		secretID, err := secretIDFromRequest(r)
		if err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Invalid password id")
			return
		}

		if !authorizeSecret(w, gate, id.UserID, secretID, authz.OperationView) {
			return
		}

		secret, err := secretsStore.FetchSecret(secretID)
		if err != nil {
			if errors.Is(err, store.ErrSecretNotFound) {
				respondWithMessage(w, http.StatusNotFound, "Password not found")
				return
			}
			respondWithMessage(w, http.StatusInternalServerError, "Failed to fetch password")
			return
		}

		audit.Log(audit.SecretEvent{
			UserID:    id.UserID,
			ClientIP:  clientIP(r),
			SecretID:  secretID,
			Operation: "fetch",
			Success:   true,
		})

		respondWithJSON(w, http.StatusOK, secretResponse(secret))
	}
}

func handleUpdateSecret(secretsStore store.SecretsStore, gate *authz.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithMessage(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		secretID, err := secretIDFromRequest(r)
		if err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Invalid password id")
			return
		}

		if !authorizeSecret(w, gate, id.UserID, secretID, authz.OperationUpdate) {
			return
		}

		var body updateSecretRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		// Absent fields keep their stored values.
		err = secretsStore.UpdateSecret(secretID, store.SecretUpdate{
			Site:          body.Site,
			EncryptedData: body.EncryptedData,
			IV:            body.IV,
			Notes:         body.Notes,
		})
		if err != nil {
			if errors.Is(err, store.ErrSecretNotFound) {
				respondWithMessage(w, http.StatusNotFound, "Password not found")
				return
			}
			respondWithMessage(w, http.StatusInternalServerError, "Failed to update password")
			return
		}

		audit.Log(audit.SecretEvent{
			UserID:    id.UserID,
			ClientIP:  clientIP(r),
			SecretID:  secretID,
			Operation: "update",
			Success:   true,
		})

		respondWithMessage(w, http.StatusOK, "Password updated successfully")
	}
}

func handleDeleteSecret(secretsStore store.SecretsStore, gate *authz.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithMessage(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		secretID, err := secretIDFromRequest(r)
		if err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Invalid password id")
			return
		}

		if !authorizeSecret(w, gate, id.UserID, secretID, authz.OperationDelete) {
			return
		}

		if err := secretsStore.DeleteSecret(secretID); err != nil {
			if errors.Is(err, store.ErrSecretNotFound) {
				respondWithMessage(w, http.StatusNotFound, "Password not found")
				return
			}
			respondWithMessage(w, http.StatusInternalServerError, "Failed to delete password")
			return
		}

		audit.Log(audit.SecretEvent{
			UserID:    id.UserID,
			ClientIP:  clientIP(r),
			SecretID:  secretID,
			Operation: "delete",
			Success:   true,
		})

		respondWithMessage(w, http.StatusOK, "Password deleted successfully")
	}
}
