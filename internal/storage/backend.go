// Package storage defines the namespaced key-value persistence port and its
// implementations. All stateful components receive a Backend through
// construction; none reach a global singleton.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get and Delete when the requested key does not
// exist in the namespace.
var ErrNotFound = errors.New("key not found")

// Namespaces used by the engine.
const (
	NamespaceFacts     = "facts"
	NamespaceKnowledge = "knowledge"

	// MemoryNamespacePrefix is joined with a session ID to form the
	// per-session memory namespace.
	MemoryNamespacePrefix = "memory:"
)

// Entry is one key-value pair returned by ListNamespace.
type Entry struct {
	Key   string
	Value []byte
}

// Backend is the injected persistence port. Implementations must be safe for
// concurrent readers with a single writer per namespace.
type Backend interface {
	// Get returns the bytes stored under key, or ErrNotFound.
	Get(ctx context.Context, namespace, key string) ([]byte, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, namespace, key string, value []byte) error

	// Delete removes key from the namespace. Deleting a missing key
	// returns ErrNotFound.
	Delete(ctx context.Context, namespace, key string) error

	// ListNamespace returns all entries in the namespace in key order.
	ListNamespace(ctx context.Context, namespace string) ([]Entry, error)

	// ClearNamespace removes every entry in the namespace.
	ClearNamespace(ctx context.Context, namespace string) error

	// Close cleans up resources.
	Close() error
}

// MemoryNamespace returns the memory namespace for a session.
func MemoryNamespace(sessionID string) string {
	return MemoryNamespacePrefix + sessionID
}
