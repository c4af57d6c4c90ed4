package impl

import (
	"context"
	"fmt"
	"testing"
	"time"

	"finboard/internal/domain/entity"
	infraauth "finboard/internal/infra/auth"
	"finboard/internal/infra/persistence/appdata"
	"finboard/internal/infra/persistence/memory"
	"finboard/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestAuth wires the full guard: reactive store, demo checker and
// session guard over one in-memory backend.
func newTestAuth() (usecase.AuthUsecase, usecase.DataUsecase, *appdata.Adapter, *memory.Store) {
	cfg := newTestConfig()
	data, adapter, kv := newTestData()
	checker := infraauth.NewDemoChecker(cfg, data)

	return NewAuthService(cfg, adapter, checker, data, newDiscardLogger()), data, adapter, kv
}

func memberLogin() usecase.LoginInput {
	return usecase.LoginInput{
		Role:     entity.RoleMember,
		Email:    "sofia@example.com",
		Password: "password123",
	}
}

func TestAuthService_Login_Member(t *testing.T) {
	auth, _, adapter, kv := newTestAuth()

	snap, err := auth.Login(context.Background(), memberLogin())

	require.NoError(t, err)
	assert.Equal(t, entity.AuthAuthenticated, snap.State)
	assert.Equal(t, entity.RoleMember, snap.Role)
	assert.Equal(t, "u1", snap.User.ID)
	assert.NotEmpty(t, snap.User.SessionID)
	assert.True(t, snap.Initialized)

	// All four session keys must be written.
	assert.True(t, adapter.SessionKeysPresent())
	for _, key := range appdata.SessionKeys {
		assert.True(t, kv.Has(key), "missing %s", key)
	}

	prefix := fmt.Sprintf("%s-token-", entity.RoleMember)
	assert.Regexp(t, "^"+prefix+`\d+-[0-9a-f]{9}$`, snap.Token)
}

func TestAuthService_Login_MemberByPhoneOTP(t *testing.T) {
	auth, _, _, _ := newTestAuth()

	snap, err := auth.Login(context.Background(), usecase.LoginInput{
		Role:  entity.RoleMember,
		Phone: "01710000002",
		OTP:   "123456",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.AuthAuthenticated, snap.State)
	assert.Equal(t, "u2", snap.User.ID)
}

func TestAuthService_Login_Admin(t *testing.T) {
	auth, _, _, _ := newTestAuth()

	snap, err := auth.Login(context.Background(), usecase.LoginInput{
		Role:     entity.RoleAdmin,
		Email:    "admin@finobytes.com",
		Password: "admin123",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.AuthAuthenticated, snap.State)
	assert.Equal(t, entity.RoleAdmin, snap.Role)
}

func TestAuthService_Login_RejectionWritesNothing(t *testing.T) {
	auth, _, _, kv := newTestAuth()

	snap, err := auth.Login(context.Background(), usecase.LoginInput{
		Role:     entity.RoleMember,
		Email:    "sofia@example.com",
		Password: "wrong",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)
	assert.Equal(t, entity.AuthAnonymous, snap.State)
	for _, key := range appdata.SessionKeys {
		assert.False(t, kv.Has(key), "rejected login leaked %s", key)
	}
}

func TestAuthService_Login_InvalidInput(t *testing.T) {
	auth, _, _, _ := newTestAuth()

	_, err := auth.Login(context.Background(), usecase.LoginInput{
		Role:  entity.RoleMember,
		Email: "not-an-email",
	})

	require.Error(t, err)
	assert.Equal(t, entity.AuthAnonymous, auth.Snapshot().State)
}

func TestAuthService_Hydrate_ValidSession(t *testing.T) {
	auth, _, adapter, _ := newTestAuth()

	require.NoError(t, adapter.WriteSession(entity.Session{
		Token:  "member-token-1-abc",
		Role:   entity.RoleMember,
		User:   entity.Identity{ID: "u1", Role: entity.RoleMember},
		Expiry: time.Now().Add(time.Hour),
	}))

	snap := auth.Hydrate()

	assert.Equal(t, entity.AuthAuthenticated, snap.State)
	assert.Equal(t, "u1", snap.User.ID)
	assert.True(t, snap.Initialized)
}

func TestAuthService_Hydrate_ExpiredSessionIsCleared(t *testing.T) {
	auth, _, adapter, kv := newTestAuth()

	require.NoError(t, adapter.WriteSession(entity.Session{
		Token:  "member-token-1-abc",
		Role:   entity.RoleMember,
		User:   entity.Identity{ID: "u1", Role: entity.RoleMember},
		Expiry: time.Now().Add(-time.Minute),
	}))

	snap := auth.Hydrate()

	assert.Equal(t, entity.AuthAnonymous, snap.State)
	assert.True(t, snap.Initialized)
	for _, key := range appdata.SessionKeys {
		assert.False(t, kv.Has(key), "stale %s must be cleared", key)
	}
}

func TestAuthService_Hydrate_PartialSessionIsCleared(t *testing.T) {
	auth, _, _, kv := newTestAuth()

	// Only the token survives; the other three keys are gone.
	require.NoError(t, kv.Set(appdata.KeyAuthToken, "member-token-1-abc"))

	snap := auth.Hydrate()

	assert.Equal(t, entity.AuthAnonymous, snap.State)
	assert.True(t, snap.Initialized)
	assert.False(t, kv.Has(appdata.KeyAuthToken))
}

func TestAuthService_Hydrate_NoSession(t *testing.T) {
	auth, _, _, _ := newTestAuth()

	snap := auth.Hydrate()

	assert.Equal(t, entity.AuthAnonymous, snap.State)
	assert.True(t, snap.Initialized)
}

func TestAuthService_Refresh(t *testing.T) {
	auth, _, adapter, _ := newTestAuth()

	require.ErrorIs(t, auth.Refresh(), usecase.ErrNotAuthenticated)

	snap, err := auth.Login(context.Background(), memberLogin())
	require.NoError(t, err)

	require.NoError(t, auth.Refresh())

	refreshed := auth.Snapshot()
	assert.False(t, refreshed.Expiry.Before(snap.Expiry))

	persisted, ok := adapter.ReadSession()
	require.True(t, ok)
	assert.Equal(t, refreshed.Expiry.UnixMilli(), persisted.Expiry.UnixMilli())
}

func TestAuthService_Logout(t *testing.T) {
	auth, _, _, kv := newTestAuth()

	_, err := auth.Login(context.Background(), memberLogin())
	require.NoError(t, err)

	require.NoError(t, auth.Logout())

	assert.Equal(t, entity.AuthAnonymous, auth.Snapshot().State)
	for _, key := range appdata.SessionKeys {
		assert.False(t, kv.Has(key))
	}
}

func TestAuthService_ForceLogout_Idempotent(t *testing.T) {
	auth, _, _, kv := newTestAuth()

	_, err := auth.Login(context.Background(), memberLogin())
	require.NoError(t, err)

	events, cancel := kv.Subscribe(32)
	defer cancel()

	auth.ForceLogout()
	auth.ForceLogout()

	assert.Equal(t, entity.AuthAnonymous, auth.Snapshot().State)

	// The first pass removes four keys; the second finds nothing and
	// emits no events at all.
	removed := 0
	deadline := time.After(time.Second)
	for removed < len(appdata.SessionKeys) {
		select {
		case <-events:
			removed++
		case <-deadline:
			t.Fatalf("saw %d removal events, want %d", removed, len(appdata.SessionKeys))
		}
	}
	select {
	case event := <-events:
		t.Fatalf("unexpected extra event %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAuthService_Watch_DetectsTampering(t *testing.T) {
	auth, _, _, kv := newTestAuth()

	_, err := auth.Login(context.Background(), memberLogin())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		auth.Watch(ctx)
	}()

	// Another context rips out a single session key.
	require.NoError(t, kv.Remove(appdata.KeyAuthToken))

	assert.Eventually(t, func() bool {
		return auth.Snapshot().State == entity.AuthAnonymous
	}, 2*time.Second, 10*time.Millisecond)

	for _, key := range appdata.SessionKeys {
		assert.False(t, kv.Has(key), "%s must be cleared after forced logout", key)
	}

	cancel()
	<-done
}

func TestAuthService_Watch_DetectsExpiry(t *testing.T) {
	auth, _, adapter, _ := newTestAuth()

	_, err := auth.Login(context.Background(), memberLogin())
	require.NoError(t, err)

	// Shorten the persisted expiry so the poll trips it.
	session, ok := adapter.ReadSession()
	require.True(t, ok)
	session.Expiry = time.Now().Add(-time.Second)
	require.NoError(t, adapter.WriteSession(session))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go auth.Watch(ctx)

	assert.Eventually(t, func() bool {
		return auth.Snapshot().State == entity.AuthAnonymous
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAuthService_Register_Member(t *testing.T) {
	auth, data, _, _ := newTestAuth()

	snap, err := auth.Register(context.Background(), usecase.RegisterInput{
		Role:     entity.RoleMember,
		Name:     "New Member",
		Phone:    "01799999999",
		Password: "secret",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.AuthAuthenticated, snap.State)
	assert.Equal(t, entity.RoleMember, snap.Role)
	assert.Zero(t, snap.User.Points)

	user, ok := data.UserByIdentifier("01799999999")
	require.True(t, ok)
	assert.Equal(t, snap.User.ID, user.ID)
}

func TestAuthService_Register_Merchant(t *testing.T) {
	auth, data, _, _ := newTestAuth()

	snap, err := auth.Register(context.Background(), usecase.RegisterInput{
		Role:      entity.RoleMerchant,
		Email:     "newstore@example.com",
		Password:  "secret",
		StoreName: "New Store",
		Owner:     "Owner",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.AuthAuthenticated, snap.State)
	assert.Equal(t, "New Store", snap.User.StoreName)

	merchant, ok := data.MerchantByEmail("newstore@example.com")
	require.True(t, ok)
	assert.Equal(t, entity.MerchantStatusActive, merchant.Status)
}

func TestAuthService_Register_AdminCodeGate(t *testing.T) {
	auth, _, _, _ := newTestAuth()

	_, err := auth.Register(context.Background(), usecase.RegisterInput{
		Role:      entity.RoleAdmin,
		Email:     "root@example.com",
		Password:  "secret",
		AdminCode: "WRONG",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, usecase.ErrInvalidInput)

	snap, err := auth.Register(context.Background(), usecase.RegisterInput{
		Role:      entity.RoleAdmin,
		Email:     "root@example.com",
		Password:  "secret",
		AdminCode: "ADMIN2024",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, snap.Role)
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	auth, _, _, _ := newTestAuth()

	_, err := auth.Register(context.Background(), usecase.RegisterInput{
		Role:     entity.RoleMember,
		Password: "secret",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, usecase.ErrInvalidInput)

	_, err = auth.Register(context.Background(), usecase.RegisterInput{
		Role:     entity.RoleMerchant,
		Email:    "store@example.com",
		Password: "secret",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, usecase.ErrInvalidInput)
}
