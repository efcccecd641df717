package authz

import (
	"errors"

	"github.com/lanbitou/lanbitou-in-go/pkg/model"
)

// ErrPermissionDenied is returned when the actor's resolved level is below
// what the operation requires, or the actor has no access at all.
var ErrPermissionDenied = errors.New("permission denied")

// Operation is a gated action on a single secret.
type Operation int

const (
	OperationView Operation = iota
	OperationUpdate
	OperationDelete
)

// RequiredLevel returns the minimum permission level the operation requires.
func (op Operation) RequiredLevel() model.PermissionLevel {
	switch op {
	case OperationUpdate:
		return model.PermissionWrite
	case OperationDelete:
		return model.PermissionDelete
	default:
		return model.PermissionRead
	}
}

// Gate allows or denies operations on secrets by consulting the Resolver.
type Gate struct {
	resolver *Resolver
}

// NewGate creates a Gate over a Resolver.
func NewGate(resolver *Resolver) *Gate {
	return &Gate{resolver: resolver}
}

// Authorize checks that actorID may perform op on secretID. It returns
// store.ErrSecretNotFound when the secret doesn't exist (the caller named
// the id directly, so revealing absence is fine), ErrPermissionDenied when
// the resolved level is insufficient, and nil when the operation may
// proceed.
func (g *Gate) Authorize(actorID, secretID int64, op Operation) error {
	level, ok, err := g.resolver.Resolve(actorID, secretID)
	if err != nil {
		return err
	}
	if !ok || !level.Satisfies(op.RequiredLevel()) {
		return ErrPermissionDenied
	}
	return nil
}
