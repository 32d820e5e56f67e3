package config

import (
	"fmt"
	"strings"
	"time"
)

type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	Mode    string `mapstructure:"mode"`
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	// CheckoutPath is where buyers are sent back to when a payment attempt fails.
	CheckoutPath string `mapstructure:"checkout_path"`
	Timezone     string `mapstructure:"timezone"`
	// CheckoutRateLimit caps checkout requests per client IP per minute. Needs Redis.
	CheckoutRateLimit int `mapstructure:"checkout_rate_limit" validate:"gte=0"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PublicURL joins path onto the configured public base URL.
func (s *ServerConfig) PublicURL(path string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// IsSecure reports whether the public base URL is served over TLS.
func (s *ServerConfig) IsSecure() bool {
	return strings.HasPrefix(strings.ToLower(s.BaseURL), "https://")
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" validate:"oneof=mysql postgres sqlite"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database" validate:"required"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			d.Host, d.Port, d.Username, d.Password, d.Database)
	case "sqlite":
		return d.Database
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.Username, d.Password, d.Host, d.Port, d.Database)
	}
}

type LoggerConfig struct {
	Level      string `mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=console json"`
	OutputPath string `mapstructure:"output_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ZaloPayConfig holds merchant credentials. It is resolved once at startup and
// never mutated afterwards.
type ZaloPayConfig struct {
	AppID       int    `mapstructure:"app_id" validate:"required,gt=0"`
	Key1        string `mapstructure:"key1" validate:"required"`
	Key2        string `mapstructure:"key2" validate:"required"`
	SandboxMode bool   `mapstructure:"sandbox_mode"`
	Currency    string `mapstructure:"currency" validate:"required"`
	// RequestEncoding selects the request body encoding: json or form.
	RequestEncoding string        `mapstructure:"request_encoding" validate:"omitempty,oneof=json form"`
	Timeout         time.Duration `mapstructure:"timeout"`
	// EndpointOverride replaces the sandbox/live endpoint. Tests only.
	EndpointOverride string `mapstructure:"endpoint_override"`
}

const (
	LiveEndpoint    = "https://openapi.zalopay.vn/v2/"
	SandboxEndpoint = "https://sb-openapi.zalopay.vn/v2/"

	LiveMerchantPortal    = "https://mc.zalopay.vn/apps"
	SandboxMerchantPortal = "https://sbmc.zalopay.vn/apps"
)

// Endpoint returns the API base, always ending with a slash.
func (z *ZaloPayConfig) Endpoint() string {
	if z.EndpointOverride != "" {
		return strings.TrimRight(z.EndpointOverride, "/") + "/"
	}
	if z.SandboxMode {
		return SandboxEndpoint
	}
	return LiveEndpoint
}

// MerchantPortal returns the page where the callback URL is registered.
func (z *ZaloPayConfig) MerchantPortal() string {
	if z.SandboxMode {
		return SandboxMerchantPortal
	}
	return LiveMerchantPortal
}

// ReconcileConfig controls the status polling fallback.
type ReconcileConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	MaxPollAttempts int           `mapstructure:"max_poll_attempts" validate:"gte=1"`
	LockTTL         time.Duration `mapstructure:"lock_ttl" validate:"gt=0"`
	LockWait        time.Duration `mapstructure:"lock_wait"`
	// RecoveryInterval is how often orders awaiting confirmation are checked for a missing poll.
	RecoveryInterval time.Duration `mapstructure:"recovery_interval" validate:"gt=0"`
}

type RefundConfig struct {
	MinAmount int64 `mapstructure:"min_amount" validate:"gte=0"`
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
	// AdminAddress receives settlement and refund notices.
	AdminAddress string `mapstructure:"admin_address"`
}

// Enabled reports whether notices should be sent at all.
func (e *EmailConfig) Enabled() bool {
	return e.SMTPHost != "" && e.AdminAddress != ""
}

type AdminConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	TokenLifetime time.Duration `mapstructure:"token_lifetime"`
}
