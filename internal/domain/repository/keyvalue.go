// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import "finboard/internal/errors"

// ErrKeyNotFound is a domain-specific error returned when a key is absent
// from the durable store.
var ErrKeyNotFound = errors.New("key not found")

// Op identifies the kind of mutation a storage event describes.
type Op string

const (
	// OpSet means a key was written or overwritten.
	OpSet Op = "set"
	// OpRemove means a single key was removed.
	OpRemove Op = "remove"
	// OpClear means the whole store was wiped.
	OpClear Op = "clear"
)

// Event describes one observed mutation of the durable store. For OpClear
// the Key is empty. Implementations emit events for every mutation path,
// including mutations performed by other processes where the backend can
// observe them, so destructive calls never go unnoticed.
type Event struct {
	Op  Op
	Key string
}

// KeyValue is the durable store: origin-scoped key-value storage that
// survives restarts, with no transactions. All operations are synchronous
// and return quickly; there is no suspension point.
//
// Cross-process concurrency over the same backing store is uncoordinated
// and resolves as last-writer-wins; callers compensate at the merge and
// session-guard layers.
type KeyValue interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(key string) (string, error)

	// Set writes value under key, overwriting any previous value.
	Set(key, value string) error

	// Remove deletes a single key. Removing an absent key is a no-op and
	// emits no event.
	Remove(key string) error

	// Clear wipes every key in the store.
	Clear() error

	// Has reports whether key is present.
	Has(key string) bool

	// Subscribe registers a listener for storage events. The returned
	// cancel function must be called to release the subscription. Events
	// may be dropped if the listener falls behind; listeners pair the
	// stream with periodic polling rather than relying on completeness.
	Subscribe(buffer int) (events <-chan Event, cancel func())
}
