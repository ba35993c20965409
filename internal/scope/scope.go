// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scope defines the per-user isolation boundary. Every store and
// index operation takes an explicit, non-empty scope; an empty scope is a
// programming error and fails immediately rather than falling back to a
// shared namespace.
package scope

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrEmptyScope is returned when an operation is attempted without a scope.
var ErrEmptyScope = errors.New("scope: empty user scope")

// ID identifies one user's isolation boundary. Every stored record and
// every query carries one.
type ID string

// Validate reports whether the scope is usable. Empty scopes never are.
func (id ID) Validate() error {
	if id == "" {
		return ErrEmptyScope
	}
	return nil
}

func (id ID) String() string { return string(id) }

// namespacePrefix is the shared prefix for all per-scope vector namespaces.
const namespacePrefix = "papers_user_"

// NamespaceKey derives the vector-index namespace name for a scope: a
// deterministic, collision-resistant label built from the first 8 hex
// characters of SHA-256(scope).
func NamespaceKey(id ID) string {
	sum := sha256.Sum256([]byte(id))
	return fmt.Sprintf("%s%x", namespacePrefix, sum[:4])
}

// Session carries the scope for one logical session. A session is created
// once and its scope read everywhere downstream; the scope never changes
// for the lifetime of the session.
type Session struct {
	id ID
}

// NewSession mints a session with a fresh random scope id. It performs no
// storage or network I/O and always succeeds.
func NewSession() Session {
	return Session{id: ID(uuid.NewString())}
}

// SessionFor wraps an existing scope id, e.g. one restored from CLI state.
func SessionFor(id ID) (Session, error) {
	if err := id.Validate(); err != nil {
		return Session{}, err
	}
	return Session{id: id}, nil
}

// Scope returns the session's scope id.
func (s Session) Scope() ID { return s.id }
