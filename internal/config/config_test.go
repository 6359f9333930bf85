package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the loader at an empty directory and clears the variables
// it reads.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(PathEnvVar, "")
	for name := range envKeys {
		t.Setenv(strings.ToUpper(name), "")
		os.Unsetenv(strings.ToUpper(name))
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, []string{DevFrontendURL}, cfg.Server.CORSOrigins)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.CatalogEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "postgres://vinyl:vinyl@db:5432/vinyl?sslmode=disable")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("FRONTEND_URL", "https://records.example.com")
	t.Setenv("SPOTIFY_CLIENT_ID", "abc")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "def")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_WINDOW", "30s")
	t.Setenv("UNRELATED_SETTING", "ignored")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://records.example.com"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.CatalogEnabled())
	assert.Equal(t, "def", cfg.Catalog.ClientSecret)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 30*time.Second, cfg.Server.RateWindow)
}

func TestLoad_CORSOriginsList(t *testing.T) {
	isolate(t)
	t.Setenv("CORS_ORIGINS", "http://a.example.com, http://b.example.com ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.example.com", "http://b.example.com"}, cfg.Server.CORSOrigins)
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 4000
  rate_limit: 0
database:
  url: "file::memory:?cache=shared"
logging:
  format: console
`), 0o600))
	t.Setenv(PathEnvVar, path)
	t.Setenv("PORT", "4100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4100, cfg.Server.Port, "environment overrides the file")
	assert.Equal(t, 0, cfg.Server.RateLimit)
	assert.Equal(t, "file::memory:?cache=shared", cfg.Database.URL)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_DefaultPath(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server:\n  port: 5000\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "port out of range",
			env:  map[string]string{"PORT": "70000"},
			want: "must be no greater than 65535",
		},
		{
			name: "production without frontend",
			env:  map[string]string{"ENVIRONMENT": "production"},
			want: "FrontendURL: cannot be blank",
		},
		{
			name: "catalog secret missing",
			env:  map[string]string{"SPOTIFY_CLIENT_ID": "abc"},
			want: "ClientSecret: cannot be blank",
		},
		{
			name: "unknown environment",
			env:  map[string]string{"ENVIRONMENT": "staging"},
			want: "must be one of",
		},
		{
			name: "unknown log format",
			env:  map[string]string{"LOG_FORMAT": "xml"},
			want: "Format: must be one of",
		},
		{
			name: "bad frontend url",
			env:  map[string]string{"FRONTEND_URL": "records.example.com"},
			want: "must be a valid http or https URL",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, val := range tt.env {
				t.Setenv(k, val)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDriverFor(t *testing.T) {
	assert.Equal(t, "postgres", DriverFor("postgres://localhost/db"))
	assert.Equal(t, "postgres", DriverFor("postgresql://localhost/db"))
	assert.Equal(t, "sqlite", DriverFor("file:vinylstock.db"))
	assert.Equal(t, "sqlite", DriverFor(":memory:"))
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "database.url", envKey("DATABASE_URL"))
	assert.Equal(t, "catalog.client_id", envKey("SPOTIFY_CLIENT_ID"))
	assert.Empty(t, envKey("HOME"))
}
