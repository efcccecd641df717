// Package config loads server configuration from a YAML file and LANBITOU_*
// environment variables, tracking where each value came from. Environment
// values override file values; file values override defaults. Secrets
// (DATABASE_URL, LANBITOU_SESSION_SECRET) are read from the environment only
// and never appear here.
package config
