package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional). Si no está, queda "dev".
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env" toml:"app_env"`
	} `yaml:"app" toml:"app"`

	Server struct {
		Addr               string   `yaml:"addr" toml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
		// IPs o CIDRs de proxies cuyo X-Forwarded-For se acepta. Vacío: se usa la IP del peer.
		TrustedProxies  []string `yaml:"trusted_proxies" toml:"trusted_proxies"`
		ReadTimeout     string   `yaml:"read_timeout" toml:"read_timeout"`
		WriteTimeout    string   `yaml:"write_timeout" toml:"write_timeout"`
		ShutdownTimeout string   `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	} `yaml:"server" toml:"server"`

	Storage struct {
		Driver string `yaml:"driver" toml:"driver"` // fs | postgres | s3 | memory

		FS struct {
			Path string `yaml:"path" toml:"path"`
		} `yaml:"fs" toml:"fs"`

		DSN      string `yaml:"dsn" toml:"dsn"`
		Postgres struct {
			MaxOpenConns int    `yaml:"max_open_conns" toml:"max_open_conns"`
			Document     string `yaml:"document" toml:"document"`
		} `yaml:"postgres" toml:"postgres"`

		S3 struct {
			Bucket          string `yaml:"bucket" toml:"bucket"`
			Key             string `yaml:"key" toml:"key"`
			Region          string `yaml:"region" toml:"region"`
			Endpoint        string `yaml:"endpoint" toml:"endpoint"`
			AccessKeyID     string `yaml:"access_key_id" toml:"access_key_id"`
			SecretAccessKey string `yaml:"secret_access_key" toml:"secret_access_key"`
			UsePathStyle    bool   `yaml:"use_path_style" toml:"use_path_style"`
		} `yaml:"s3" toml:"s3"`

		CacheTTL    string `yaml:"cache_ttl" toml:"cache_ttl"`
		StrictReads bool   `yaml:"strict_reads" toml:"strict_reads"`
	} `yaml:"storage" toml:"storage"`

	SMTP struct {
		Timeout         string `yaml:"timeout" toml:"timeout"`
		DefaultFromName string `yaml:"default_from_name" toml:"default_from_name"`
		Lang            string `yaml:"lang" toml:"lang"` // pt | es | en
	} `yaml:"smtp" toml:"smtp"`

	Rate struct {
		Driver string `yaml:"driver" toml:"driver"` // memory | redis | off
		Limit  int    `yaml:"limit" toml:"limit"`
		Window string `yaml:"window" toml:"window"`
		Prefix string `yaml:"prefix" toml:"prefix"`
		Redis  struct {
			Addr     string `yaml:"addr" toml:"addr"`
			Password string `yaml:"password" toml:"password"`
			DB       int    `yaml:"db" toml:"db"`
		} `yaml:"redis" toml:"redis"`
	} `yaml:"rate" toml:"rate"`

	Log struct {
		Level string `yaml:"level" toml:"level"`
	} `yaml:"log" toml:"log"`
}

// Load lee path (YAML, o TOML si termina en .toml), aplica defaults y
// overrides de entorno. Un archivo inexistente no es error: quedan defaults.
func Load(path string) (*Config, error) {
	var c Config

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	case strings.EqualFold(filepath.Ext(path), ".toml"):
		if err := toml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	c.applyEnvOverrides()
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// applyDefaults completa lo que ni el archivo ni el entorno definieron.
func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3001"
	}
	if c.Server.CORSAllowedOrigins == nil {
		c.Server.CORSAllowedOrigins = []string{"*"}
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "15s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "fs"
	}
	if c.Storage.FS.Path == "" {
		c.Storage.FS.Path = "./db.json"
	}
	if c.Storage.CacheTTL == "" {
		c.Storage.CacheTTL = "2s"
	}
	if c.SMTP.Timeout == "" {
		c.SMTP.Timeout = "5s"
	}
	if c.SMTP.Lang == "" {
		c.SMTP.Lang = "pt"
	}
	if c.Rate.Driver == "" {
		c.Rate.Driver = "memory"
	}
	if c.Rate.Limit == 0 {
		c.Rate.Limit = 5
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa el archivo con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvCSV("SERVER_TRUSTED_PROXIES"); ok {
		c.Server.TrustedProxies = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("STORAGE_FS_PATH"); ok {
		c.Storage.FS.Path = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("STORAGE_PG_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvStr("S3_BUCKET"); ok {
		c.Storage.S3.Bucket = v
	}
	if v, ok := getEnvStr("S3_KEY"); ok {
		c.Storage.S3.Key = v
	}
	if v, ok := getEnvStr("S3_REGION"); ok {
		c.Storage.S3.Region = v
	}
	if v, ok := getEnvStr("S3_ENDPOINT"); ok {
		c.Storage.S3.Endpoint = v
	}
	if v, ok := getEnvStr("S3_ACCESS_KEY_ID"); ok {
		c.Storage.S3.AccessKeyID = v
	}
	if v, ok := getEnvStr("S3_SECRET_ACCESS_KEY"); ok {
		c.Storage.S3.SecretAccessKey = v
	}
	if v, ok := getEnvBool("S3_USE_PATH_STYLE"); ok {
		c.Storage.S3.UsePathStyle = v
	}
	if v, ok := getEnvStr("STORE_CACHE_TTL"); ok {
		c.Storage.CacheTTL = v
	}
	if v, ok := getEnvBool("STORE_STRICT_READS"); ok {
		c.Storage.StrictReads = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_TIMEOUT"); ok {
		c.SMTP.Timeout = v
	}
	if v, ok := getEnvStr("SMTP_DEFAULT_FROM_NAME"); ok {
		c.SMTP.DefaultFromName = v
	}
	if v, ok := getEnvStr("SMTP_LANG"); ok {
		c.SMTP.Lang = v
	}

	// RATE
	if v, ok := getEnvStr("RATE_DRIVER"); ok {
		c.Rate.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvInt("RATE_LIMIT"); ok {
		c.Rate.Limit = v
	}
	if v, ok := getEnvStr("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Rate.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Rate.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Rate.Redis.DB = v
	}

	// LOG
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
}

// Validate revisa drivers, duraciones y los campos obligatorios de cada driver.
func (c *Config) Validate() error {
	for key, v := range map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"storage.cache_ttl":       c.Storage.CacheTTL,
		"smtp.timeout":            c.SMTP.Timeout,
		"rate.window":             c.Rate.Window,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
	}

	for _, p := range c.Server.TrustedProxies {
		if _, err := netip.ParsePrefix(p); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(p); err != nil {
			return fmt.Errorf("config: server.trusted_proxies: %q is not an IP or CIDR", p)
		}
	}

	switch c.Storage.Driver {
	case "fs", "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			return errors.New("config: storage.dsn required for postgres driver")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return errors.New("config: storage.s3.bucket required for s3 driver")
		}
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}

	switch c.Rate.Driver {
	case "memory", "off":
	case "redis":
		if c.Rate.Redis.Addr == "" {
			return errors.New("config: rate.redis.addr required for redis driver")
		}
	default:
		return fmt.Errorf("config: unknown rate.driver %q", c.Rate.Driver)
	}
	if c.Rate.Limit < 0 {
		return errors.New("config: rate.limit must be >= 0")
	}
	return nil
}

// dur parsea una duración ya validada (vacío → 0).
func dur(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func (c *Config) ReadTimeout() time.Duration     { return dur(c.Server.ReadTimeout) }
func (c *Config) WriteTimeout() time.Duration    { return dur(c.Server.WriteTimeout) }
func (c *Config) ShutdownTimeout() time.Duration { return dur(c.Server.ShutdownTimeout) }
func (c *Config) StoreCacheTTL() time.Duration   { return dur(c.Storage.CacheTTL) }
func (c *Config) SMTPTimeout() time.Duration     { return dur(c.SMTP.Timeout) }
func (c *Config) RateWindow() time.Duration      { return dur(c.Rate.Window) }
