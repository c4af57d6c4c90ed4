package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New()

	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 5*time.Second, cfg.Session.PollInterval)
	assert.Zero(t, cfg.Session.SettleDelay)
	assert.NotEmpty(t, cfg.Auth.AdminEmail)
	assert.NotEmpty(t, cfg.Auth.DemoOTP)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Storage.Backend = BackendDisk
	cfg.Storage.Path = "/tmp/finboard"
	cfg.Session.TTL = time.Hour

	cfg.applyDefaults()

	assert.Equal(t, BackendDisk, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/finboard", cfg.Storage.Path)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, 5*time.Second, cfg.Session.PollInterval)
}
