// Package store defines the storage interfaces the server and the
// authorization core depend on. The gorm subpackage provides the PostgreSQL
// implementation.
package store
