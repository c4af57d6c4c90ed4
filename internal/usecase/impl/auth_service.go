package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"finboard/config"
	"finboard/internal/domain/entity"
	"finboard/internal/domain/repository"
	"finboard/internal/domain/service"
	"finboard/internal/infra/persistence/appdata"
	"finboard/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// authService implements the AuthUsecase interface: the session guard
// state machine plus its two tamper-detection paths.
type authService struct {
	cfg      *config.Config
	adapter  *appdata.Adapter
	checker  service.CredentialChecker
	data     usecase.DataUsecase
	logger   *slog.Logger
	validate *validator.Validate

	mu          sync.Mutex
	state       entity.AuthState
	session     entity.Session
	initialized bool
}

// NewAuthService is the constructor for authService.
func NewAuthService(
	cfg *config.Config,
	adapter *appdata.Adapter,
	checker service.CredentialChecker,
	data usecase.DataUsecase,
	logger *slog.Logger,
) usecase.AuthUsecase {
	return &authService{
		cfg:      cfg,
		adapter:  adapter,
		checker:  checker,
		data:     data,
		logger:   logger,
		validate: validator.New(),
		state:    entity.AuthAnonymous,
	}
}

// Snapshot returns the current guard state.
func (srv *authService) Snapshot() usecase.AuthSnapshot {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	return srv.snapshotLocked()
}

// Hydrate reads the four session keys at startup and decides between
// authenticated and anonymous. Partial or expired sessions are cleared
// rather than surfaced; the initialized flag is set either way.
func (srv *authService) Hydrate() usecase.AuthSnapshot {
	session, ok := srv.adapter.ReadSession()

	srv.mu.Lock()
	if ok && time.Now().Before(session.Expiry) {
		srv.state = entity.AuthAuthenticated
		srv.session = session
		srv.initialized = true
		snap := srv.snapshotLocked()
		srv.mu.Unlock()

		srv.logger.Info("session hydrated from durable store",
			slog.String("role", session.Role.String()),
			slog.String("user_id", session.User.ID))

		return snap
	}

	srv.state = entity.AuthAnonymous
	srv.session = entity.Session{}
	srv.initialized = true
	snap := srv.snapshotLocked()
	srv.mu.Unlock()

	// Clear whatever partial or expired keys are left behind.
	if err := srv.adapter.ClearSession(); err != nil {
		srv.logger.Warn("clearing stale session keys failed", slog.Any("error", err))
	}

	return snap
}

// Login validates the input, runs the credential check and writes the
// four session keys. A failed check leaves the durable store untouched.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (usecase.AuthSnapshot, error) {
	if err := srv.validate.Struct(input); err != nil {
		return srv.Snapshot(), errors.Wrap(err, "validate login input")
	}
	if !input.Role.IsValid() {
		return srv.Snapshot(), errors.Wrap(usecase.ErrInvalidCredentials, "invalid role specified")
	}

	srv.setState(entity.AuthAuthenticating)

	result := srv.checker.Check(service.Credentials{
		Role:     input.Role,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: input.Password,
		OTP:      input.OTP,
	})
	if !result.Success {
		srv.setState(entity.AuthAnonymous)
		srv.logger.Info("login rejected",
			slog.String("role", input.Role.String()),
			slog.String("reason", result.Message))

		return srv.Snapshot(), errors.Wrap(usecase.ErrInvalidCredentials, result.Message)
	}

	return srv.establishSession(input.Role, result.Identity)
}

// Register creates the account for the requested role through the
// reactive store and logs the new identity in.
func (srv *authService) Register(ctx context.Context, input usecase.RegisterInput) (usecase.AuthSnapshot, error) {
	if err := srv.validate.Struct(input); err != nil {
		return srv.Snapshot(), errors.Wrap(err, "validate register input")
	}

	ident, err := srv.createAccount(input)
	if err != nil {
		return srv.Snapshot(), err
	}

	// Escape hatch for backends whose writes are not immediately
	// readable. Defaults to zero; the bundled backends need no settling.
	if delay := srv.cfg.Session.SettleDelay; delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return srv.Snapshot(), errors.Wrap(ctx.Err(), "registration interrupted")
		}
	}

	return srv.establishSession(input.Role, ident)
}

// Refresh extends the session expiry by the configured TTL.
func (srv *authService) Refresh() error {
	srv.mu.Lock()
	if srv.state != entity.AuthAuthenticated {
		srv.mu.Unlock()

		return errors.Wrap(usecase.ErrNotAuthenticated, "refresh")
	}
	srv.session.Expiry = time.Now().Add(srv.cfg.Session.TTL)
	session := srv.session
	srv.mu.Unlock()

	return errors.Wrap(srv.adapter.WriteSession(session), "refresh session")
}

// Logout explicitly ends the session.
func (srv *authService) Logout() error {
	srv.mu.Lock()
	srv.state = entity.AuthAnonymous
	srv.session = entity.Session{}
	srv.mu.Unlock()

	srv.logger.Info("logged out")

	return errors.Wrap(srv.adapter.ClearSession(), "clear session keys")
}

// ForceLogout performs the forced transition to anonymous. It is
// idempotent: both detection paths may call it back to back and the
// second call finds nothing left to do.
func (srv *authService) ForceLogout() {
	srv.mu.Lock()
	wasAuthenticated := srv.state == entity.AuthAuthenticated || srv.state == entity.AuthExpired
	srv.state = entity.AuthAnonymous
	srv.session = entity.Session{}
	srv.mu.Unlock()

	if wasAuthenticated {
		srv.logger.Warn("forced logout")
	}

	// Removing absent keys is a no-op, so a second pass emits nothing.
	if err := srv.adapter.ClearSession(); err != nil {
		srv.logger.Warn("clearing session keys failed", slog.Any("error", err))
	}
}

// Watch runs the storage-event listener and the periodic check until the
// context is cancelled. The two triggers are deliberately redundant:
// events cover mutations this process can observe as they happen, the
// poll covers everything else within one interval.
func (srv *authService) Watch(ctx context.Context) {
	events, cancel := srv.adapter.Store().Subscribe(16)
	defer cancel()

	ticker := time.NewTicker(srv.cfg.Session.PollInterval)
	defer ticker.Stop()

	srv.logger.Debug("session guard watching",
		slog.Duration("poll_interval", srv.cfg.Session.PollInterval))

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				events = nil

				continue
			}
			if sessionThreatening(event) {
				srv.enforce()
			}
		case <-ticker.C:
			srv.enforce()
		}
	}
}

// enforce is the shared transition function both detection paths feed:
// if the guard believes it is authenticated but the durable keys
// disagree, or the session is past its expiry, force anonymous.
func (srv *authService) enforce() {
	srv.mu.Lock()
	authenticated := srv.state == entity.AuthAuthenticated
	srv.mu.Unlock()
	if !authenticated {
		return
	}

	session, ok := srv.adapter.ReadSession()
	if !ok {
		srv.logger.Warn("session keys missing or tampered, forcing logout")
		srv.ForceLogout()

		return
	}

	if !time.Now().Before(session.Expiry) {
		srv.mu.Lock()
		if srv.state == entity.AuthAuthenticated {
			srv.state = entity.AuthExpired
		}
		srv.mu.Unlock()

		srv.logger.Info("session expired, forcing logout")
		srv.ForceLogout()
	}
}

// establishSession writes the four session keys and moves the guard to
// authenticated. A write failure rolls the keys back so no partial
// session is ever left behind.
func (srv *authService) establishSession(role entity.Role, ident entity.Identity) (usecase.AuthSnapshot, error) {
	now := time.Now()
	ident.SessionID = sessionID()
	ident.LoginTime = now.UTC()

	session := entity.Session{
		Token:  sessionToken(role, now),
		Role:   role,
		User:   ident,
		Expiry: now.Add(srv.cfg.Session.TTL),
	}

	if err := srv.adapter.WriteSession(session); err != nil {
		if clearErr := srv.adapter.ClearSession(); clearErr != nil {
			srv.logger.Error("rollback of partial session failed", slog.Any("error", clearErr))
		}
		srv.setState(entity.AuthAnonymous)

		return srv.Snapshot(), errors.Wrap(err, "persist session")
	}

	srv.mu.Lock()
	srv.state = entity.AuthAuthenticated
	srv.session = session
	srv.initialized = true
	snap := srv.snapshotLocked()
	srv.mu.Unlock()

	srv.logger.Info("session established",
		slog.String("role", role.String()),
		slog.String("user_id", ident.ID))

	return snap, nil
}

// createAccount applies the per-role registration rules and creates the
// account through the reactive store.
func (srv *authService) createAccount(input usecase.RegisterInput) (entity.Identity, error) {
	switch input.Role {
	case entity.RoleMember:
		if input.Name == "" || (input.Email == "" && input.Phone == "") {
			return entity.Identity{}, errors.Wrap(usecase.ErrInvalidInput,
				"name and either email or phone are required for member registration")
		}
		user, err := srv.data.AddUser(usecase.AddUserInput{
			Name:     input.Name,
			Email:    input.Email,
			Phone:    input.Phone,
			Password: input.Password,
		})
		if err != nil {
			return entity.Identity{}, errors.Wrap(err, "register member")
		}

		return entity.Identity{
			ID:     user.ID,
			Name:   user.Name,
			Email:  user.Email,
			Phone:  user.Phone,
			Points: user.Points,
			Role:   entity.RoleMember,
		}, nil

	case entity.RoleMerchant:
		if input.Email == "" || input.StoreName == "" || input.Owner == "" {
			return entity.Identity{}, errors.Wrap(usecase.ErrInvalidInput,
				"email, store name and owner are required for merchant registration")
		}
		merchant, err := srv.data.AddMerchant(usecase.AddMerchantInput{
			StoreName: input.StoreName,
			Owner:     input.Owner,
			Email:     input.Email,
			Password:  input.Password,
		})
		if err != nil {
			return entity.Identity{}, errors.Wrap(err, "register merchant")
		}

		return entity.Identity{
			ID:        merchant.ID,
			Email:     merchant.Email,
			StoreName: merchant.StoreName,
			Owner:     merchant.Owner,
			Role:      entity.RoleMerchant,
		}, nil

	case entity.RoleAdmin:
		if input.Email == "" || input.AdminCode == "" {
			return entity.Identity{}, errors.Wrap(usecase.ErrInvalidInput,
				"email and admin code are required for admin registration")
		}
		if input.AdminCode != srv.cfg.Auth.AdminCode {
			return entity.Identity{}, errors.Wrap(usecase.ErrInvalidInput, "invalid admin code")
		}

		return entity.Identity{
			ID:    "admin",
			Name:  input.Name,
			Email: input.Email,
			Role:  entity.RoleAdmin,
		}, nil

	default:
		return entity.Identity{}, errors.Wrap(usecase.ErrInvalidInput, "invalid role specified")
	}
}

func (srv *authService) setState(state entity.AuthState) {
	srv.mu.Lock()
	srv.state = state
	srv.mu.Unlock()
}

func (srv *authService) snapshotLocked() usecase.AuthSnapshot {
	return usecase.AuthSnapshot{
		State:       srv.state,
		Token:       srv.session.Token,
		Role:        srv.session.Role,
		User:        srv.session.User,
		Expiry:      srv.session.Expiry,
		Initialized: srv.initialized,
	}
}

// sessionThreatening reports whether a storage event can invalidate the
// session: a full clear or the removal of any of the four auth keys.
func sessionThreatening(event repository.Event) bool {
	if event.Op == repository.OpClear {
		return true
	}

	return event.Op == repository.OpRemove && strings.HasPrefix(event.Key, "auth-")
}

// sessionToken builds the opaque demo token. The role prefix and the
// millisecond timestamp are there for human debuggability, the random
// suffix for uniqueness.
func sessionToken(role entity.Role, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]

	return fmt.Sprintf("%s-token-%d-%s", role, now.UnixMilli(), suffix)
}

func sessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}
