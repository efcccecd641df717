// Package main provides the Lanbitou vault server and its control CLI.
//
// Lanbitou stores client-side encrypted secrets and decides, per request,
// what each user may do with each secret: ownership, direct grants, and
// group grants with permission ceilings combine into one effective level.
//
// # Architecture
//
//   - pkg/server: HTTP server and routing
//   - pkg/server/endpoints: REST API endpoint handlers
//   - pkg/server/store: storage interfaces and GORM implementations
//   - pkg/authz: permission resolver and authorization gate
//   - pkg/authn: password hashing and session tokens
//   - pkg/model: database models
//   - pkg/db: database connection utilities
//   - pkg/audit: audit logging
//   - pkg/config: configuration management
//
// # Quick Start
//
//	# Run database migrations
//	lanbitouctl db migrate
//
//	# Create a user
//	lanbitouctl user create alice@example.com
//
//	# Start the server
//	lanbitouctl server
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - LANBITOU_SESSION_SECRET: HMAC key for session tokens
//   - LANBITOU_LOG_LEVEL: Set to "debug" for SQL query logging
//   - LANBITOU_AUDIT_ENABLED: Set to "true" to emit audit events
//   - PORT: Server port (default: 8000)
package main
