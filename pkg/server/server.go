package server

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/lanbitou/lanbitou-in-go/pkg/authn"
	"github.com/lanbitou/lanbitou-in-go/pkg/authz"
	"github.com/lanbitou/lanbitou-in-go/pkg/config"
	"github.com/lanbitou/lanbitou-in-go/pkg/server/middleware"
	"github.com/lanbitou/lanbitou-in-go/pkg/server/store"
	gormstore "github.com/lanbitou/lanbitou-in-go/pkg/server/store/gorm"
)

type Server struct {
	Router *mux.Router
	DB     *gorm.DB
	Config *config.VaultConfig

	TokenIssuer   *authn.TokenIssuer
	JWTMiddleware *middleware.JWTAuthenticator

	UsersStore     store.UsersStore
	SecretsStore   store.SecretsStore
	GrantsStore    store.GrantsStore
	DirectoryStore store.DirectoryStore
	HealthStore    store.HealthStore

	Resolver *authz.Resolver
	Gate     *authz.Gate

	srv *http.Server
}

func NewServer(
	db *gorm.DB,
	cfg *config.VaultConfig,
	sessionSecret []byte,
	host string,
	port string,
) *Server {

	router := mux.NewRouter().UseEncodedPath()

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSAllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, cors(router)),
		Addr:    host + ":" + port,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	usersStore := gormstore.NewUsersStore(db)
	secretsStore := gormstore.NewSecretsStore(db)
	grantsStore := gormstore.NewGrantsStore(db)
	directoryStore := gormstore.NewDirectoryStore(db)
	healthStore := gormstore.NewHealthStore(db)

	resolver := authz.NewResolver(secretsStore, grantsStore, directoryStore)

	tokenIssuer := authn.NewTokenIssuer(sessionSecret, cfg.TokenTTL())

	return &Server{
		Router:         router,
		DB:             db,
		Config:         cfg,
		TokenIssuer:    tokenIssuer,
		JWTMiddleware:  middleware.NewJWTAuthenticator(tokenIssuer),
		UsersStore:     usersStore,
		SecretsStore:   secretsStore,
		GrantsStore:    grantsStore,
		DirectoryStore: directoryStore,
		HealthStore:    healthStore,
		Resolver:       resolver,
		Gate:           authz.NewGate(resolver),
		srv:            srv,
	}
}

func (s Server) Start() error {
	return s.srv.ListenAndServe()
}
