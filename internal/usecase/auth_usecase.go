package usecase

import (
	"context"
	"time"

	"finboard/internal/domain/entity"
	"finboard/internal/errors"
)

// ErrInvalidCredentials is returned when the credential check rejects a login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidInput is returned when a registration payload fails the per-role rules.
var ErrInvalidInput = errors.New("invalid input")

// ErrNotAuthenticated is returned by session operations that need a live session.
var ErrNotAuthenticated = errors.New("not authenticated")

// LoginInput is the payload for a credential submission.
type LoginInput struct {
	Role     entity.Role `validate:"required"`
	Email    string      `validate:"omitempty,email"`
	Phone    string
	Password string
	OTP      string
}

// RegisterInput is the payload for account registration. Which fields are
// required depends on the role; the service validates per role.
type RegisterInput struct {
	Role      entity.Role `validate:"required"`
	Name      string
	Email     string `validate:"omitempty,email"`
	Phone     string
	Password  string `validate:"required"`
	AdminCode string
	StoreName string
	Owner     string
}

// AuthSnapshot is a read-only copy of the session guard's state.
type AuthSnapshot struct {
	State       entity.AuthState
	Token       string
	Role        entity.Role
	User        entity.Identity
	Expiry      time.Time
	Initialized bool
}

// AuthUsecase is the session guard: a state machine over
// anonymous/authenticating/authenticated/expired whose authenticated
// state is mirrored into four independent durable keys. Two redundant
// detection paths, a storage-event listener and a periodic poll, feed the
// same idempotent forced-logout transition, so external tampering in
// either this process or another one is caught by whichever fires first.
type AuthUsecase interface {
	// Snapshot returns the current guard state.
	Snapshot() AuthSnapshot

	// Hydrate reads the four session keys at startup. A complete,
	// unexpired session transitions directly to authenticated; anything
	// else clears partial keys and lands in anonymous. Either way the
	// snapshot is marked initialized, exactly once.
	Hydrate() AuthSnapshot

	// Login validates the input, runs the credential check and, on
	// success, writes all four session keys atomically from the caller's
	// perspective: a failed check writes nothing.
	Login(ctx context.Context, input LoginInput) (AuthSnapshot, error)

	// Register creates the account for the requested role through the
	// reactive store, then logs the new identity in.
	Register(ctx context.Context, input RegisterInput) (AuthSnapshot, error)

	// Refresh extends the session expiry by the configured TTL.
	Refresh() error

	// Logout explicitly ends the session and clears all four keys.
	Logout() error

	// ForceLogout performs the forced transition to anonymous: in-memory
	// state is dropped and any remaining session keys are cleared. It is
	// idempotent and safe to call from multiple triggers in quick
	// succession.
	ForceLogout()

	// Watch runs the storage-event listener and the periodic check until
	// the context is cancelled. Both paths are deliberately redundant:
	// same-process tampering needs the poll, cross-process tampering the
	// events.
	Watch(ctx context.Context)
}
