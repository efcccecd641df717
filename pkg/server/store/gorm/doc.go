// Package gorm implements the store interfaces on PostgreSQL via GORM.
//
// Every mutation that pairs a check with a write runs inside a transaction,
// and uniqueness rules (one membership per (user, group), one grant per
// (secret, target)) are enforced by database constraints so concurrent
// writers cannot both succeed. Cascading deletes are explicit statements in
// the same transaction as the triggering delete.
package gorm
