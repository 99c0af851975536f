package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  name: signup
otp:
  length: 6
  ttl_seconds: 600
jwt:
  ttl_minutes: 15
modules:
  notification:
    consumer_names: "account_otp_issued_notification, other ,,"
  labels: "env:local,tier: api"
secret: c2lnbnVw
`

func TestNewViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "signup", cfg.GetString("app.name"))
	assert.Equal(t, 6, cfg.GetInt("otp.length"))
	assert.Equal(t, 10*time.Minute, cfg.GetSecond("otp.ttl_seconds"))
	assert.Equal(t, 15*time.Minute, cfg.GetMinute("jwt.ttl_minutes"))
	assert.Equal(t, []string{"account_otp_issued_notification", "other"}, cfg.GetArray("modules.notification.consumer_names"))
	assert.Equal(t, map[string]string{"env": "local", "tier": "api"}, cfg.GetMap("modules.labels"))
	assert.Equal(t, []byte("signup"), cfg.GetBinary("secret"))
	assert.Nil(t, cfg.GetArray("missing.key"))
	assert.NoError(t, cfg.Close())
}

func TestNewViperFromBytesRequiresType(t *testing.T) {
	_, err := NewViperFromBytes(" ", []byte(sampleYAML))
	assert.ErrorIs(t, err, ErrConfigTypeRequired)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SIGNUP_OTP_TTL_SECONDS", "120")

	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML), WithEnvPrefix("SIGNUP"))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.GetSecond("otp.ttl_seconds"))
}

func TestDefaults(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML), WithDefaults(map[string]any{
		"otp.purge_interval_seconds": 300,
	}))
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.GetSecond("otp.purge_interval_seconds"))
}

func TestNewViperFromFileAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(sampleYAML), 0o600))

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SIGNUP_APP_NAME=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SIGNUP_APP_NAME") })

	LoadDotEnv(envFile, filepath.Join(dir, "missing.env"))

	cfg, err := NewViper(file, WithEnvPrefix("SIGNUP"))
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.GetString("app.name"))
}
