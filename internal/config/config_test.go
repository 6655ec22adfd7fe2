package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	require.Equal(t, "dev", c.App.Env)
	require.Equal(t, ":3001", c.Server.Addr)
	require.Equal(t, []string{"*"}, c.Server.CORSAllowedOrigins)
	require.Equal(t, "fs", c.Storage.Driver)
	require.Equal(t, "./db.json", c.Storage.FS.Path)
	require.Equal(t, 2*time.Second, c.StoreCacheTTL())
	require.Equal(t, 5*time.Second, c.SMTPTimeout())
	require.Equal(t, "pt", c.SMTP.Lang)
	require.Equal(t, "memory", c.Rate.Driver)
	require.Equal(t, 5, c.Rate.Limit)
	require.Equal(t, time.Minute, c.RateWindow())
	require.Equal(t, 10*time.Second, c.ShutdownTimeout())
}

func TestLoad_YAML(t *testing.T) {
	p := writeFile(t, "config.yaml", `
server:
  addr: ":9000"
  cors_allowed_origins: ["http://localhost:5173"]
storage:
  driver: postgres
  dsn: postgres://u:p@localhost/db
  cache_ttl: 0s
rate:
  driver: "off"
smtp:
  timeout: 3s
  default_from_name: Gestão
`)
	c, err := Load(p)
	require.NoError(t, err)

	require.Equal(t, ":9000", c.Server.Addr)
	require.Equal(t, []string{"http://localhost:5173"}, c.Server.CORSAllowedOrigins)
	require.Equal(t, "postgres", c.Storage.Driver)
	require.Equal(t, time.Duration(0), c.StoreCacheTTL())
	require.Equal(t, "off", c.Rate.Driver)
	require.Equal(t, 3*time.Second, c.SMTPTimeout())
	require.Equal(t, "Gestão", c.SMTP.DefaultFromName)
}

func TestLoad_TOML(t *testing.T) {
	p := writeFile(t, "config.toml", `
[server]
addr = ":7000"

[storage]
driver = "s3"

[storage.s3]
bucket = "mail-admin"
region = "sa-east-1"
use_path_style = true

[rate]
limit = 10
window = "30s"
`)
	c, err := Load(p)
	require.NoError(t, err)

	require.Equal(t, ":7000", c.Server.Addr)
	require.Equal(t, "s3", c.Storage.Driver)
	require.Equal(t, "mail-admin", c.Storage.S3.Bucket)
	require.Equal(t, "sa-east-1", c.Storage.S3.Region)
	require.True(t, c.Storage.S3.UsePathStyle)
	require.Equal(t, 10, c.Rate.Limit)
	require.Equal(t, 30*time.Second, c.RateWindow())
}

func TestLoad_EnvOverrides(t *testing.T) {
	p := writeFile(t, "config.yaml", "server:\n  addr: \":9000\"\n")

	t.Setenv("SERVER_ADDR", ":4000")
	t.Setenv("SERVER_CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("SERVER_TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")
	t.Setenv("STORAGE_FS_PATH", "/data/db.json")
	t.Setenv("STORE_STRICT_READS", "true")
	t.Setenv("SMTP_TIMEOUT", "7s")
	t.Setenv("RATE_DRIVER", "REDIS")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("RATE_LIMIT", "20")
	t.Setenv("LOG_LEVEL", "DEBUG")

	c, err := Load(p)
	require.NoError(t, err)

	require.Equal(t, ":4000", c.Server.Addr)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, c.Server.CORSAllowedOrigins)
	require.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, c.Server.TrustedProxies)
	require.Equal(t, "/data/db.json", c.Storage.FS.Path)
	require.True(t, c.Storage.StrictReads)
	require.Equal(t, 7*time.Second, c.SMTPTimeout())
	require.Equal(t, "redis", c.Rate.Driver)
	require.Equal(t, 20, c.Rate.Limit)
	require.Equal(t, "debug", c.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":        "server: [",
		"bad duration":    "smtp:\n  timeout: soon\n",
		"unknown storage": "storage:\n  driver: mongo\n",
		"postgres no dsn": "storage:\n  driver: postgres\n",
		"s3 no bucket":    "storage:\n  driver: s3\n",
		"redis no addr":   "rate:\n  driver: redis\n",
		"unknown rate":    "rate:\n  driver: leaky\n",
		"bad proxy":       "server:\n  trusted_proxies: [\"proxy.local\"]\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", content))
			require.Error(t, err)
		})
	}
}
