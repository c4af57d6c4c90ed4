// Package usecase defines the application-level interfaces of the
// reconciliation core. Concrete implementations live in usecase/impl.
package usecase

import "finboard/internal/domain/entity"

// Snapshot is a read-only copy of the in-memory working state handed to
// the rendering layer and to consistency checks.
type Snapshot struct {
	entity.Dataset
	Status entity.Status
}

// AddUserInput is the payload for member registration.
type AddUserInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"omitempty,email"`
	Phone    string
	Password string `validate:"required"`
}

// AddMerchantInput is the payload for merchant registration.
type AddMerchantInput struct {
	StoreName string `validate:"required"`
	Owner     string `validate:"required"`
	Email     string `validate:"required,email"`
	Password  string `validate:"required"`
}

// DataUsecase is the reactive store: the in-memory, observable working
// copy of all domain entities, the only data source the rendering layer
// reads from. Every mutation is an atomic in-memory update followed by a
// full re-serialization into the durable blob.
//
// Mutations referencing an unknown identifier are silent no-ops:
// mutation semantics are idempotent, not validating. Uniqueness
// of email/phone is likewise the caller's responsibility; the store has
// no notion of the registration form asking for it.
type DataUsecase interface {
	// Snapshot returns a deep copy of the current state.
	Snapshot() Snapshot

	// Subscribe registers an observer called after every successful
	// mutation with a fresh snapshot. The returned cancel function
	// removes the observer.
	Subscribe(fn func(Snapshot)) (cancel func())

	// LoadFromDurable overwrites in-memory collections with whatever keys
	// are present in the durable blob; absent keys keep their current
	// value. Sets the status flag to succeeded.
	LoadFromDurable() error

	// ApprovePurchase flips the purchase's approved flag and appends a
	// success notification. Unknown id is a no-op.
	ApprovePurchase(purchaseID string) error

	// SetContributionRate unconditionally overwrites the global rate.
	SetContributionRate(rate float64) error

	// AddNotification appends a notification with a generated id.
	AddNotification(text string, kind entity.NotificationType) error

	// AddUser creates a member with zero points plus a zero ledger entry
	// and returns the created record.
	AddUser(input AddUserInput) (entity.User, error)

	// AddMerchant creates an active merchant, announces it with an info
	// notification, and returns the created record.
	AddMerchant(input AddMerchantInput) (entity.Merchant, error)

	// DeleteUser removes the user, cascade-deletes purchases referencing
	// it, drops the ledger entry and appends a warning notification.
	// Unknown id is a no-op.
	DeleteUser(id string) error

	// DeleteMerchant removes the merchant, cascade-deletes purchases
	// referencing it and appends a warning notification. Unknown id is a
	// no-op.
	DeleteMerchant(id string) error

	// ForceSyncFromDurable unconditionally pulls the durable copy into
	// memory, bypassing merge logic.
	ForceSyncFromDurable() error

	// ForceSyncToDurable unconditionally pushes the in-memory copy into
	// the durable blob.
	ForceSyncToDurable() error

	// ResetToSeed discards all durable customization: in-memory
	// collections return to the seed dataset and the durable blob is
	// erased entirely.
	ResetToSeed() error

	// RepairNotificationIDs replaces the second and later occurrences of
	// any duplicated notification id with fresh ones, keeping order.
	RepairNotificationIDs() error

	// UserByIdentifier finds a user by email or phone in the working copy.
	UserByIdentifier(identifier string) (entity.User, bool)

	// MerchantByEmail finds a merchant by email in the working copy.
	MerchantByEmail(email string) (entity.Merchant, bool)
}
