// Package authz computes effective permissions and gates secret operations.
//
// The Resolver combines three sources of access for an (actor, secret) pair:
// ownership (always DELETE), a direct grant to the actor, and grants to
// groups the actor is a member of. A group path is capped by the lesser of
// the group's grant level and the actor's membership level; independent
// paths combine by taking the maximum.
//
// The Gate maps an operation (view, update, delete) to the level it requires
// and compares it against the resolved level.
package authz
