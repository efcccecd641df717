package endpoints

import (
	"github.com/lanbitou/lanbitou-in-go/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterAuthEndpoints(srv)
	RegisterSecretsEndpoints(srv)
	RegisterGrantsEndpoints(srv)
	RegisterGroupsEndpoints(srv)
	RegisterStatusEndpoint(srv)
	RegisterDocsEndpoint(srv)
}
