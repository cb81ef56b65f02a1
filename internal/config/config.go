package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backends of the record tables.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendHTTP     = "http"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Records  RecordsConfig  `mapstructure:"records"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Log      LogConfig      `mapstructure:"log"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	BulkLimit       int           `mapstructure:"bulk_limit"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	NoticeKey  string `mapstructure:"notice_key"`
	NoticeSize int    `mapstructure:"notice_size"`
}

// RecordsConfig selects the record backend. The project id and public key
// are handed to the hosted platform as they are.
type RecordsConfig struct {
	Backend   string        `mapstructure:"backend"`
	BaseURL   string        `mapstructure:"base_url"`
	ProjectID string        `mapstructure:"project_id"`
	PublicKey string        `mapstructure:"public_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	AccessTokenExpire time.Duration `mapstructure:"access_token_expire"`
	Issuer            string        `mapstructure:"issuer"`
}

type SMTPConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	From         string `mapstructure:"from"`
	To           string `mapstructure:"to"`
	AuthDisabled bool   `mapstructure:"auth_disabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AdminConfig is the account created on start when it does not exist yet.
// An empty password disables it.
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.bulk_limit", 4)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.notice_key", "notices:log")
	v.SetDefault("redis.notice_size", 200)

	v.SetDefault("records.backend", BackendMemory)
	v.SetDefault("records.timeout", 10*time.Second)

	v.SetDefault("jwt.secret", "super-secret-key")
	v.SetDefault("jwt.access_token_expire", 15*time.Minute)
	v.SetDefault("jwt.issuer", "school-inventory")

	v.SetDefault("smtp.port", 587)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("admin.username", "admin")
}

// Load reads .env, then config.yaml from ./configs or the working directory,
// then the environment. Later sources win.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./configs", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Environment names used by the deployment scripts.
func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("records.backend", "RECORDS_BACKEND")
	v.BindEnv("records.base_url", "RECORDS_BASE_URL")
	v.BindEnv("records.project_id", "APPER_PROJECT_ID")
	v.BindEnv("records.public_key", "APPER_PUBLIC_KEY")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("smtp.host", "SMTP_SERVER")
	v.BindEnv("smtp.port", "SMTP_PORT")
	v.BindEnv("smtp.user", "SMTP_USER")
	v.BindEnv("smtp.password", "SMTP_PASS")
	v.BindEnv("smtp.from", "ALERT_FROM")
	v.BindEnv("smtp.to", "ALERT_TO")
	v.BindEnv("smtp.auth_disabled", "SMTP_AUTH_DISABLED")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("admin.username", "ADMIN_USERNAME")
	v.BindEnv("admin.password", "ADMIN_PASSWORD")
}

func (c *Config) Validate() error {
	switch c.Records.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Database.URL == "" {
			return errors.New("records backend postgres requires database.url (DATABASE_URL)")
		}
	case BackendHTTP:
		if c.Records.BaseURL == "" || c.Records.ProjectID == "" {
			return errors.New("records backend http requires records.base_url and records.project_id")
		}
	default:
		return fmt.Errorf("unknown records backend %q", c.Records.Backend)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
