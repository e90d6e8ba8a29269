package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, "data/wolfstreet.db", cfg.Database.Path)
	assert.Equal(t, "wolfstreet", cfg.Storage.KeyPrefix)
	assert.Equal(t, "us-east-1", cfg.Storage.Region)
	assert.False(t, cfg.Auth.VerifyPasswords)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL())
	assert.Zero(t, cfg.SubmitDelay())
	assert.Equal(t, 30*time.Second, cfg.SubmitTimeout())
}

func TestLoad_Environment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("WOLFSTREET_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("WOLFSTREET_AUTH_JWTSECRET", "s3cret")
	t.Setenv("WOLFSTREET_AUTH_VERIFYPASSWORDS", "true")
	t.Setenv("WOLFSTREET_SUBMIT_DELAYMS", "1500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Auth.VerifyPasswords)
	assert.Equal(t, 1500*time.Millisecond, cfg.SubmitDelay())
}

func TestLoad_DotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(".env", []byte("WOLFSTREET_STORAGE_BUCKET=from-file\nWOLFSTREET_AWS_PROFILE=dotenv\n"), 0o600))
	t.Setenv("WOLFSTREET_STORAGE_BUCKET", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("WOLFSTREET_AWS_PROFILE") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Storage.Bucket)
	assert.Equal(t, "dotenv", cfg.AWS.Profile)
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
