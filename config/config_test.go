package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GIN_MODE", "")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("SKIP_AUTH", "")
	t.Setenv("REFERRAL_EDGE_POLICY", "")
	t.Setenv("STORE_BACKEND", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, PolicyCascade, cfg.ReferralPolicy)
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.Equal(t, 0.58, cfg.DefaultCommissionRate)
	assert.Equal(t, 10, cfg.LeaderboardSize)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("REFERRAL_EDGE_POLICY", "preserve")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("TELEGRAM_ADMIN_CHAT_ID", "-100123")
	t.Setenv("JWT_ACCESS_EXPIRY", "1h")
	t.Setenv("TIMEZONE", "Asia/Karachi")
	t.Setenv("MONTHLY_GOAL_AMOUNT", "25000")

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, PolicyPreserve, cfg.ReferralPolicy)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, int64(-100123), cfg.TelegramAdminChatID)
	assert.Equal(t, time.Hour, cfg.JWTAccessExpiry)
	assert.Equal(t, 25000.0, cfg.MonthlyGoalAmount)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Karachi", loc.String())
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "unknown policy", mutate: func(c *Config) { c.ReferralPolicy = "sometimes" }},
		{name: "unknown backend", mutate: func(c *Config) { c.StoreBackend = "sqlite" }},
		{name: "rate above one", mutate: func(c *Config) { c.DefaultCommissionRate = 58 }},
		{name: "bad timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{name: "release with default secret", mutate: func(c *Config) { c.Env, c.JWTSecret = "release", DefaultJWTSecret }},
		{name: "release with empty secret", mutate: func(c *Config) { c.Env, c.JWTSecret = "release", "" }},
		{name: "release with auth skipped", mutate: func(c *Config) {
			c.Env, c.JWTSecret, c.SkipAuth = "release", "a-long-private-secret", true
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_ReleaseWithPrivateSecret(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("JWT_ACCESS_SECRET", "a-long-private-secret")
	t.Setenv("SKIP_AUTH", "false")

	cfg := Load()
	assert.True(t, cfg.IsRelease())
	require.NoError(t, cfg.Validate())

	t.Setenv("JWT_ACCESS_SECRET", "")
	assert.Error(t, Load().Validate(), "unset secret falls back to the public default")
}
