package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	DB          DBConfig
	JWT         JWTConfig
	S3          S3Config
	Log         LogConfig
	CORS        CORSConfig
	Webhook     WebhookConfig
	Policy      PolicyConfig
	Portal      PortalConfig
	Integration IntegrationConfig
	Email       EmailConfig
	Redis       RedisConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds attachment storage settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// WebhookConfig holds the outbound automation webhook settings. Create
// and update URLs are the two endpoints of the publish state machine.
type WebhookConfig struct {
	CreateURL   string        `mapstructure:"create_url"`
	UpdateURL   string        `mapstructure:"update_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// PolicyConfig holds the validation rules that varied between plugin
// revisions; both are explicit here instead of silently inconsistent.
type PolicyConfig struct {
	RequireAttachment       bool `mapstructure:"require_attachment"`
	EnforcePaymentDateOrder bool `mapstructure:"enforce_payment_date_order"`
}

// PortalConfig holds the front-end submission surface settings.
type PortalConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// IntegrationConfig guards the form-automation ingest endpoint.
type IntegrationConfig struct {
	Secret string `mapstructure:"secret"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// RedisConfig holds dashboard cache settings. An empty address disables
// caching.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Load reads configuration from environment variables with the IMS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("IMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "ims")
	v.SetDefault("db.password", "ims_secret")
	v.SetDefault("db.name", "ims_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "ims")

	// S3 defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "ims-invoices")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 25)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Webhook defaults
	v.SetDefault("webhook.create_url", "")
	v.SetDefault("webhook.update_url", "")
	v.SetDefault("webhook.timeout", "2s")

	// Validation policy defaults: the latest plugin revision relaxed the
	// attachment rule but kept the portal date ordering.
	v.SetDefault("policy.require_attachment", false)
	v.SetDefault("policy.enforce_payment_date_order", true)

	// Portal defaults
	v.SetDefault("portal.max_file_size_mb", 5)

	// Integration defaults
	v.SetDefault("integration.secret", "")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-south-1")
	v.SetDefault("email.from_address", "invoices@example.com")
	v.SetDefault("email.from_name", "Invoice Management")

	// Redis defaults
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "5m")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                       "IMS_SERVER_PORT",
		"server.read_timeout":               "IMS_SERVER_READ_TIMEOUT",
		"server.write_timeout":              "IMS_SERVER_WRITE_TIMEOUT",
		"server.environment":                "IMS_SERVER_ENVIRONMENT",
		"db.host":                           "IMS_DB_HOST",
		"db.port":                           "IMS_DB_PORT",
		"db.user":                           "IMS_DB_USER",
		"db.password":                       "IMS_DB_PASSWORD",
		"db.name":                           "IMS_DB_NAME",
		"db.sslmode":                        "IMS_DB_SSLMODE",
		"db.max_open":                       "IMS_DB_MAX_OPEN",
		"db.max_idle":                       "IMS_DB_MAX_IDLE",
		"jwt.secret":                        "IMS_JWT_SECRET",
		"jwt.access_expiry":                 "IMS_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":                "IMS_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                        "IMS_JWT_ISSUER",
		"s3.region":                         "IMS_S3_REGION",
		"s3.bucket":                         "IMS_S3_BUCKET",
		"s3.endpoint":                       "IMS_S3_ENDPOINT",
		"s3.access_key":                     "IMS_S3_ACCESS_KEY",
		"s3.secret_key":                     "IMS_S3_SECRET_KEY",
		"s3.max_file_size_mb":               "IMS_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":                 "IMS_S3_PRESIGN_EXPIRY",
		"log.level":                         "IMS_LOG_LEVEL",
		"log.format":                        "IMS_LOG_FORMAT",
		"cors.allowed_origins":              "IMS_CORS_ALLOWED_ORIGINS",
		"webhook.create_url":                "IMS_WEBHOOK_CREATE_URL",
		"webhook.update_url":                "IMS_WEBHOOK_UPDATE_URL",
		"webhook.timeout":                   "IMS_WEBHOOK_TIMEOUT",
		"policy.require_attachment":         "IMS_POLICY_REQUIRE_ATTACHMENT",
		"policy.enforce_payment_date_order": "IMS_POLICY_ENFORCE_PAYMENT_DATE_ORDER",
		"portal.max_file_size_mb":           "IMS_PORTAL_MAX_FILE_SIZE_MB",
		"integration.secret":                "IMS_INTEGRATION_SECRET",
		"email.provider":                    "IMS_EMAIL_PROVIDER",
		"email.region":                      "IMS_EMAIL_REGION",
		"email.from_address":                "IMS_EMAIL_FROM_ADDRESS",
		"email.from_name":                   "IMS_EMAIL_FROM_NAME",
		"redis.addr":                        "IMS_REDIS_ADDR",
		"redis.password":                    "IMS_REDIS_PASSWORD",
		"redis.db":                          "IMS_REDIS_DB",
		"redis.ttl":                         "IMS_REDIS_TTL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if IMS_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("IMS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Webhook = WebhookConfig{
		CreateURL: v.GetString("webhook.create_url"),
		UpdateURL: v.GetString("webhook.update_url"),
		Timeout:   v.GetDuration("webhook.timeout"),
	}
	cfg.Policy = PolicyConfig{
		RequireAttachment:       v.GetBool("policy.require_attachment"),
		EnforcePaymentDateOrder: v.GetBool("policy.enforce_payment_date_order"),
	}
	cfg.Portal = PortalConfig{
		MaxFileSizeMB: v.GetInt64("portal.max_file_size_mb"),
	}
	cfg.Integration = IntegrationConfig{
		Secret: v.GetString("integration.secret"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}
	cfg.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
		TTL:      v.GetDuration("redis.ttl"),
	}

	return cfg, nil
}
