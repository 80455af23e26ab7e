package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix = "AUDIOTABLE"

	// DefaultJWTSecret is only acceptable for local development
	DefaultJWTSecret = "dev-secret"
)

// AppConfig represents the main application configuration
type AppConfig struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Admin       AdminConfig       `mapstructure:"admin"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	CORSOrigins  string        `mapstructure:"cors_origins"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AllowedOrigins splits the comma separated CORS origin list. An empty list
// means any origin.
func (s ServerConfig) AllowedOrigins() string {
	var origins []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}

// DatabaseConfig represents database configuration. URL wins over the
// individual fields when set.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// JWTConfig represents JWT configuration
type JWTConfig struct {
	Secret              string `mapstructure:"secret"`
	AccessExpiryMinutes int    `mapstructure:"access_expiry_minutes"`
}

// AccessExpiry returns the token lifetime
func (j JWTConfig) AccessExpiry() time.Duration {
	return time.Duration(j.AccessExpiryMinutes) * time.Minute
}

// AdminConfig describes the account seeded at startup
type AdminConfig struct {
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	PasswordHash string `mapstructure:"password_hash"`
}

// StorageConfig represents the audio storage configuration
type StorageConfig struct {
	AudioDir       string   `mapstructure:"audio_dir"`
	MaxUploadSize  int64    `mapstructure:"max_upload_size"`
	AllowedFormats []string `mapstructure:"allowed_formats"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TracingConfig represents tracing configuration
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Exporter string `mapstructure:"exporter"`
	Endpoint string `mapstructure:"endpoint"`
}

// MaintenanceConfig represents scheduled maintenance configuration
type MaintenanceConfig struct {
	SyncSchedule string `mapstructure:"sync_schedule"`
}

// RateLimitConfig holds per-minute request limits per client IP
type RateLimitConfig struct {
	LoginPerMinute int `mapstructure:"login_per_minute"`
	BulkPerMinute  int `mapstructure:"bulk_per_minute"`
}

// legacyEnv maps configuration keys to the environment names used by older
// deployments.
var legacyEnv = map[string]string{
	"storage.audio_dir":         "AUDIO_DIR",
	"database.url":              "DB_URL",
	"jwt.secret":                "SECRET",
	"jwt.access_expiry_minutes": "TOKEN_EXPIRE_MIN",
	"admin.username":            "ADMIN_USERNAME",
	"admin.password":            "ADMIN_PASSWORD",
	"server.cors_origins":       "CORS_ORIGINS",
}

// ConfigLoader handles loading configuration from file, .env and environment
type ConfigLoader struct {
	viper    *viper.Viper
	envFiles []string
}

// NewConfigLoader creates a new configuration loader
func NewConfigLoader() *ConfigLoader {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	return &ConfigLoader{viper: v, envFiles: []string{".env"}}
}

// SetConfigFile points the loader at an explicit config file
func (c *ConfigLoader) SetConfigFile(path string) {
	c.viper.SetConfigFile(path)
}

// SetEnvFiles replaces the .env files read before the environment
func (c *ConfigLoader) SetEnvFiles(files ...string) {
	c.envFiles = files
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.cors_origins", "*")

	v.SetDefault("database.url", "")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./app.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "audiotable")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 15*time.Minute)

	v.SetDefault("jwt.secret", DefaultJWTSecret)
	v.SetDefault("jwt.access_expiry_minutes", 1440)

	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "admin")
	v.SetDefault("admin.password_hash", "")

	v.SetDefault("storage.audio_dir", "./storage/audio")
	v.SetDefault("storage.max_upload_size", 200<<20)
	v.SetDefault("storage.allowed_formats", []string{".wav", ".mp3", ".flac", ".m4a", ".mp4", ".aac", ".ogg", ".opus"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.endpoint", "localhost:4317")

	v.SetDefault("maintenance.sync_schedule", "")

	v.SetDefault("rate_limit.login_per_minute", 10)
	v.SetDefault("rate_limit.bulk_per_minute", 30)
}

// Load loads the configuration. Precedence, highest first: AUDIOTABLE_*
// environment, legacy environment names, .env files, config file, defaults.
func (c *ConfigLoader) Load() (*AppConfig, error) {
	for _, f := range c.envFiles {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading env file %s: %w", f, err)
		}
	}

	if err := c.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	c.viper.SetEnvPrefix(envPrefix)
	c.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.viper.AutomaticEnv()

	for key, legacy := range legacyEnv {
		if err := c.viper.BindEnv(key, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), legacy); err != nil {
			return nil, fmt.Errorf("error binding env %s: %w", legacy, err)
		}
	}

	var config AppConfig
	if err := c.viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// LoadConfig loads configuration with the default loader
func LoadConfig() (*AppConfig, error) {
	return NewConfigLoader().Load()
}

// validateConfig validates the configuration values
func validateConfig(config *AppConfig) error {
	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret cannot be empty")
	}

	if config.JWT.AccessExpiryMinutes <= 0 {
		return fmt.Errorf("JWT access expiry must be positive")
	}

	if strings.TrimSpace(config.Storage.AudioDir) == "" {
		return fmt.Errorf("audio directory cannot be empty")
	}

	if config.Storage.MaxUploadSize <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	if config.Database.URL == "" {
		switch config.Database.Driver {
		case "sqlite", "postgres":
		default:
			return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
		}
	}

	switch config.Tracing.Exporter {
	case "stdout", "otlp":
	default:
		return fmt.Errorf("unsupported trace exporter %q", config.Tracing.Exporter)
	}

	return nil
}
