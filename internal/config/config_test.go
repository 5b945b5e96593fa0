package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "guides", cfg.Storage.GuideDir)
	assert.Equal(t, "images", cfg.Storage.PosterDir)
	assert.Equal(t, 30, cfg.Security.RateLimit.RequestsPerMinute)
	assert.Equal(t, "admin", cfg.Admin.Username)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
database:
  driver: postgres
  dsn: host=localhost user=game dbname=games
storage:
  url: mem://
admin:
  username: jury
  password: secret
security:
  jwt:
    secret: test-secret
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "mem://", cfg.Storage.URL)
	assert.Equal(t, "jury", cfg.Admin.Username)
	assert.Equal(t, "secret", cfg.Admin.Password)
	assert.Equal(t, "test-secret", cfg.Security.JWT.Secret)
	// 未覆盖的键保持默认
	assert.Equal(t, "images", cfg.Storage.PosterDir)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	bad := *cfg
	bad.Server.Port = 0
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Storage.PosterDir = bad.Storage.GuideDir
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Security.JWT.Secret = ""
	assert.Error(t, bad.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
