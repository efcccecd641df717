// Package server wires the HTTP surface of the vault: the gorilla/mux
// router, the GORM-backed stores, the permission resolver, and the session
// token middleware. Endpoints are registered onto a Server by the endpoints
// package.
package server
