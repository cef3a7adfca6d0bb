package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2333
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "clocktab"
	defaultDBCharset  = "utf8mb4"
	defaultRedisURL   = "redis://localhost:6379/0"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int          `yaml:"port"`
	DSN            string       `yaml:"dsn"` // MySQL DSN
	RedisURL       string       `yaml:"redis_url"`
	Env            string       `yaml:"env"` // "development" | "production"
	AllowedOrigins []string     `yaml:"allowed_origins"`
	JWTSecret      string       `yaml:"jwt_secret"`
	AdminPassword  string       `yaml:"admin_password"` // bcrypt hash
	Origin         OriginConfig `yaml:"origin"`
	Cache          CacheConfig  `yaml:"cache"`
	Mirror         MirrorConfig `yaml:"mirror"`
}

// OriginConfig describes the upstream host the gateway fronts.
type OriginConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig drives the offline cache generations.
type CacheConfig struct {
	Version          string        `yaml:"version"` // bump to retire old generations
	Prefix           string        `yaml:"prefix"`
	PrecacheManifest []string      `yaml:"precache_manifest"`
	RevalidateEvery  time.Duration `yaml:"revalidate_every"`
	APIHostMarkers   []string      `yaml:"api_host_markers"`
}

// MirrorConfig holds optional S3 settings for off-site alarm audio copies.
type MirrorConfig struct {
	Enable          bool   `yaml:"enable"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	KeyPrefix       string `yaml:"key_prefix"`
}

type rawAppConfig struct {
	Port           int             `yaml:"port"`
	DSN            string          `yaml:"dsn"`
	DatabaseURL    string          `yaml:"database_url"`
	RedisURL       string          `yaml:"redis_url"`
	DBHost         string          `yaml:"db_host"`
	DBPort         int             `yaml:"db_port"`
	DBUser         string          `yaml:"db_user"`
	DBPassword     string          `yaml:"db_password"`
	DBName         string          `yaml:"db_name"`
	DBCharset      string          `yaml:"db_charset"`
	Env            string          `yaml:"env"`
	NodeEnv        string          `yaml:"node_env"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	JWTSecret      string          `yaml:"jwt_secret"`
	AdminPassword  string          `yaml:"admin_password"`
	Origin         rawOriginConfig `yaml:"origin"`
	OriginURL      string          `yaml:"origin_url"`
	Cache          rawCacheConfig  `yaml:"cache"`
	Mirror         MirrorConfig    `yaml:"mirror"`
}

// Durations come in as strings ("10s", "24h") and are parsed during
// normalization; yaml.v3 has no native time.Duration support.
type rawOriginConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

type rawCacheConfig struct {
	Version          string   `yaml:"version"`
	Prefix           string   `yaml:"prefix"`
	PrecacheManifest []string `yaml:"precache_manifest"`
	RevalidateEvery  string   `yaml:"revalidate_every"`
	APIHostMarkers   []string `yaml:"api_host_markers"`
}

// DefaultPrecacheManifest lists the launch assets warmed into the static
// generation: app shell, web manifest, icon and the bundled alarm sounds.
func DefaultPrecacheManifest() []string {
	return []string{
		"/index.html",
		"/manifest.json",
		"/favicon.ico",
		"/audio/alarm_1.mp3",
		"/audio/alarm_2.mp3",
	}
}

// Load reads and normalizes the YAML config file. A missing file yields the
// defaults so a dev instance can start with nothing but an origin URL.
func Load(path string) (*AppConfig, error) {
	raw := rawAppConfig{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to defaults
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := normalize(raw)
	return &cfg, nil
}

func normalize(raw rawAppConfig) AppConfig {
	cfg := AppConfig{
		Port:           raw.Port,
		DSN:            strings.TrimSpace(firstNonEmpty(raw.DSN, raw.DatabaseURL)),
		RedisURL:       strings.TrimSpace(raw.RedisURL),
		Env:            strings.ToLower(strings.TrimSpace(firstNonEmpty(raw.Env, raw.NodeEnv))),
		AllowedOrigins: raw.AllowedOrigins,
		JWTSecret:      strings.TrimSpace(raw.JWTSecret),
		AdminPassword:  strings.TrimSpace(raw.AdminPassword),
		Origin: OriginConfig{
			URL:     raw.Origin.URL,
			Timeout: parseDuration(raw.Origin.Timeout),
		},
		Cache: CacheConfig{
			Version:          raw.Cache.Version,
			Prefix:           raw.Cache.Prefix,
			PrecacheManifest: raw.Cache.PrecacheManifest,
			RevalidateEvery:  parseDuration(raw.Cache.RevalidateEvery),
			APIHostMarkers:   raw.Cache.APIHostMarkers,
		},
		Mirror: raw.Mirror,
	}

	if cfg.Port <= 0 {
		cfg.Port = defaultPort
	}
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DSN == "" {
		cfg.DSN = buildDSN(raw)
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = defaultRedisURL
	}

	if cfg.Origin.URL == "" {
		cfg.Origin.URL = strings.TrimSpace(raw.OriginURL)
	}
	cfg.Origin.URL = strings.TrimRight(strings.TrimSpace(cfg.Origin.URL), "/")
	if cfg.Origin.Timeout <= 0 {
		cfg.Origin.Timeout = 10 * time.Second
	}

	if cfg.Cache.Version == "" {
		cfg.Cache.Version = "v3"
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = "ct-cache"
	}
	if len(cfg.Cache.PrecacheManifest) == 0 {
		cfg.Cache.PrecacheManifest = DefaultPrecacheManifest()
	}
	if cfg.Cache.RevalidateEvery <= 0 {
		cfg.Cache.RevalidateEvery = 24 * time.Hour
	}
	if len(cfg.Cache.APIHostMarkers) == 0 {
		cfg.Cache.APIHostMarkers = []string{"emailjs", "googletagmanager", "google-analytics"}
	}

	return cfg
}

func buildDSN(raw rawAppConfig) string {
	host := firstNonEmpty(raw.DBHost, defaultDBHost)
	port := raw.DBPort
	if port <= 0 {
		port = defaultDBPort
	}
	user := firstNonEmpty(raw.DBUser, defaultDBUser)
	password := firstNonEmpty(raw.DBPassword, defaultDBPassword)
	name := firstNonEmpty(raw.DBName, defaultDBName)
	charset := firstNonEmpty(raw.DBCharset, defaultDBCharset)
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		user, password, host, port, name, charset)
}

// parseDuration tolerates empty and malformed values; the caller applies
// the default for a zero result.
func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }
