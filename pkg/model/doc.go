// Package model contains the database models for the vault: users, groups,
// group memberships, secrets, and access grants.
package model
