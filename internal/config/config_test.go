package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rescuetrack.toml")
	file := `
[server]
port = 9090
site_url = "https://app.rescuetrack.test"

[auth]
access_token_ttl = "5m"
login_attempts = 3

[jobs]
invite_expiry_every = "0s"
`
	require.NoError(t, os.WriteFile(path, []byte(file), 0o600))
	t.Setenv("PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://localhost/rescuetrack")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "https://app.rescuetrack.test", cfg.Server.SiteURL)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL.Duration)
	assert.Equal(t, 3, cfg.Auth.LoginAttempts)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL.Duration, "defaults survive partial files")
	assert.Zero(t, cfg.Jobs.InviteExpiryEvery.Duration)
	assert.True(t, cfg.Minio.UseSSL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadValues(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("[auth]\nsession_ttl = \"forever\"\n"), 0o600))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("bad port", func(t *testing.T) {
		t.Setenv("PORT", "eighty")
		_, err := Load("")
		assert.ErrorContains(t, err, "PORT")
	})
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	assert.ErrorContains(t, err, "DATABASE_URL")

	cfg.Database.URL = "postgres://localhost/rescuetrack"
	cfg.Limits.DefaultPageSize = 500
	cfg.Auth.SessionTTL = Duration{}
	err = cfg.Validate()
	assert.ErrorContains(t, err, "page sizes")
	assert.ErrorContains(t, err, "session_ttl")

	cfg = Default()
	cfg.Database.URL = "postgres://localhost/rescuetrack"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ExternalTokensNeedAudience(t *testing.T) {
	cfg := Default()
	cfg.Database.URL = "postgres://localhost/rescuetrack"
	cfg.Auth.JWKSURL = "https://idp.example/.well-known/jwks.json"
	assert.ErrorContains(t, cfg.Validate(), "JWKS_AUDIENCE")

	t.Setenv("JWKS_AUDIENCE", "rescuetrack-api")
	t.Setenv("JWKS_ISSUER", "https://idp.example")
	require.NoError(t, cfg.applyEnv(os.Getenv))
	assert.Equal(t, "https://idp.example", cfg.Auth.JWKSIssuer)
	assert.NoError(t, cfg.Validate())
}

func TestResolvePath(t *testing.T) {
	t.Setenv(PathEnv, "/etc/rescuetrack/env.toml")
	assert.Equal(t, "/etc/rescuetrack/flag.toml", ResolvePath("/etc/rescuetrack/flag.toml"))
	assert.Equal(t, "/etc/rescuetrack/env.toml", ResolvePath(""))

	t.Setenv(PathEnv, "")
	assert.Empty(t, ResolvePath(""))
}
