package endpoints

import (
	"net/http"

	"github.com/lanbitou/lanbitou-in-go/pkg/server"
	"github.com/lanbitou/lanbitou-in-go/pkg/server/store"
)

// StatusResponse represents the response from the health check endpoint
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RegisterStatusEndpoint registers the health check endpoint (no auth
// required)
func RegisterStatusEndpoint(s *server.Server) {
	s.Router.HandleFunc("/", handleStatus(s.HealthStore)).Methods("GET")
}

func handleStatus(healthStore store.HealthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := healthStore.Ping(); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, StatusResponse{
				Status:  "error",
				Message: "database connectivity check failed",
			})
			return
		}

		respondWithJSON(w, http.StatusOK, StatusResponse{
			Status:  "ok",
			Message: "Lanbitou Password Manager API is running",
		})
	}
}
