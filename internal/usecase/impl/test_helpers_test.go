package impl

import (
	"io"
	"log/slog"
	"time"

	"finboard/config"
	"finboard/internal/infra/persistence/appdata"
	"finboard/internal/infra/persistence/memory"
	"finboard/internal/usecase"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Session.TTL = time.Hour
	cfg.Session.PollInterval = 20 * time.Millisecond
	cfg.Auth = config.AuthConfig{
		AdminEmail:    "admin@finobytes.com",
		AdminPassword: "admin123",
		AdminCode:     "ADMIN2024",
		DemoOTP:       "123456",
	}

	return cfg
}

// newTestData builds a reactive store over a fresh in-memory backend.
func newTestData() (usecase.DataUsecase, *appdata.Adapter, *memory.Store) {
	kv := memory.New()
	adapter := appdata.New(kv, newDiscardLogger())

	return NewDataService(adapter, newDiscardLogger()), adapter, kv
}

// newTestCore builds the full reconciliation core over one backend.
func newTestCore() (usecase.DataUsecase, usecase.SyncUsecase, *appdata.Adapter, *memory.Store) {
	data, adapter, kv := newTestData()
	sync := NewSyncService(adapter, data, newDiscardLogger())

	return data, sync, adapter, kv
}
