package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadConfigDefaults(t *testing.T) {
	resetViper(t)
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, StoreMongo, cfg.StoreBackend)
	assert.Equal(t, "medislot", cfg.DatabaseName)
	assert.Equal(t, 5*time.Minute, cfg.DayViewCacheTTL)
	assert.Equal(t, 90, cfg.MaxPlanDays)
	assert.Equal(t, 5, cfg.BookingMaxAttempts)
	assert.False(t, cfg.NotificationsEnabled)
	assert.Empty(t, cfg.TrustedProxies)
	assert.Equal(t, *cfg, AppConfig)
	assert.False(t, IsProduction())
}

func TestLoadConfigFromEnv(t *testing.T) {
	resetViper(t)
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "production")
	t.Setenv("STORE_BACKEND", "Memory")
	t.Setenv("MAX_PLAN_DAYS", "30")
	t.Setenv("DAY_VIEW_CACHE_TTL", "90s")
	t.Setenv("NOTIFICATIONS_ENABLED", "true")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1,10.1.0.0/16")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, 30, cfg.MaxPlanDays)
	assert.Equal(t, 90*time.Second, cfg.DayViewCacheTTL)
	assert.True(t, cfg.NotificationsEnabled)
	assert.Equal(t, []string{"10.0.0.1", "10.1.0.0/16"}, cfg.TrustedProxies)
	assert.True(t, IsProduction())
}

func TestLoadConfigRejectsUnknownStore(t *testing.T) {
	resetViper(t)
	t.Chdir(t.TempDir())
	t.Setenv("STORE_BACKEND", "postgres")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "unknown STORE_BACKEND")
}

func TestConfigValidate(t *testing.T) {
	base := Config{StoreBackend: StoreMemory, MaxRequestsPerMin: 10, MaxPlanDays: 7, BookingMaxAttempts: 3}
	require.NoError(t, base.Validate())

	firestore := base
	firestore.StoreBackend = StoreFirestore
	assert.Error(t, firestore.Validate())
	firestore.FirebaseProjectID = "clinic-prod"
	assert.NoError(t, firestore.Validate())

	mongo := base
	mongo.StoreBackend = StoreMongo
	assert.Error(t, mongo.Validate())

	noRate := base
	noRate.MaxRequestsPerMin = 0
	assert.Error(t, noRate.Validate())
}
