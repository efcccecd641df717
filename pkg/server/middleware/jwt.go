package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lanbitou/lanbitou-in-go/pkg/authn"
	"github.com/lanbitou/lanbitou-in-go/pkg/identity"
)

// JWTAuthenticator is middleware that validates session tokens
type JWTAuthenticator struct {
	Issuer *authn.TokenIssuer
}

// NewJWTAuthenticator creates a new JWT authenticator middleware
func NewJWTAuthenticator(issuer *authn.TokenIssuer) *JWTAuthenticator {
	return &JWTAuthenticator{Issuer: issuer}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"msg": msg})
}

// Middleware returns an HTTP middleware that validates session tokens.
// On success the requester's identity is attached to the request context.
func (j *JWTAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		if len(authHeader) == 0 {
			unauthorized(w, "Missing Authorization Header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(w, "Malformed Authorization Header")
			return
		}

		id, err := j.Issuer.Verify(parts[1])
		if err != nil {
			unauthorized(w, "Invalid or expired token")
			return
		}

		r = r.WithContext(identity.Set(r.Context(), id))

		next.ServeHTTP(w, r)
	})
}
