package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lanbitou/lanbitou-in-go/pkg/audit"
	"github.com/lanbitou/lanbitou-in-go/pkg/authn"
	"github.com/lanbitou/lanbitou-in-go/pkg/identity"
	"github.com/lanbitou/lanbitou-in-go/pkg/server"
	"github.com/lanbitou/lanbitou-in-go/pkg/server/store"
)

// LoginResponse represents the response from the /login endpoint
type LoginResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

// WhoamiResponse represents the response from the /whoami endpoint
type WhoamiResponse struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterAuthEndpoints registers the registration, login and whoami
// endpoints
func RegisterAuthEndpoints(s *server.Server) {
	usersStore := s.UsersStore
	issuer := s.TokenIssuer

	// POST /register - Create an account (no auth required)
	s.Router.HandleFunc("/register", handleRegister(usersStore)).Methods("POST")

	// POST /login - Exchange credentials for a session token (no auth required)
	s.Router.HandleFunc("/login", handleLogin(usersStore, issuer)).Methods("POST")

	// GET /whoami - Echo the authenticated identity
	whoamiRouter := s.Router.PathPrefix("/whoami").Subrouter()
	whoamiRouter.Use(s.JWTMiddleware.Middleware)
	whoamiRouter.HandleFunc("", handleWhoami()).Methods("GET")
}

func handleRegister(usersStore store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Email and password required")
			return
		}

		if body.Email == "" || body.Password == "" {
			respondWithMessage(w, http.StatusBadRequest, "Email and password required")
			return
		}

		hashed, err := authn.HashPassword(body.Password)
		if err != nil {
			respondWithMessage(w, http.StatusInternalServerError, "Error creating user")
			return
		}

		_, err = usersStore.CreateUser(body.Email, hashed)
		if err != nil {
			if errors.Is(err, store.ErrDuplicateUser) {
				respondWithMessage(w, http.StatusBadRequest, "User already exists")
				return
			}
			respondWithMessage(w, http.StatusInternalServerError, "Error creating user")
			return
		}

		respondWithMessage(w, http.StatusCreated, "User registered successfully")
	}
}

func handleLogin(usersStore store.UsersStore, issuer *authn.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondWithMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		user, err := usersStore.FetchUserByEmail(body.Email)
		if err != nil {
			respondWithMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		if err := authn.VerifyPassword(user.PasswordHash, body.Password); err != nil {
			audit.Log(audit.AuthenticateEvent{
				Email:        body.Email,
				ClientIP:     clientIP(r),
				Success:      false,
				ErrorMessage: "invalid credentials",
			})
			respondWithMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := issuer.Issue(user)
		if err != nil {
			respondWithMessage(w, http.StatusInternalServerError, "Login failed")
			return
		}

		audit.Log(audit.AuthenticateEvent{
			Email:    body.Email,
			ClientIP: clientIP(r),
			Success:  true,
		})

		respondWithJSON(w, http.StatusOK, LoginResponse{
			Token:  token,
			UserID: user.ID,
		})
	}
}

func handleWhoami() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithMessage(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		respondWithJSON(w, http.StatusOK, WhoamiResponse{
			UserID: id.UserID,
			Email:  id.Email,
		})
	}
}
