package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	sharedConfig "github.com/orris-inc/zlpay/internal/shared/config"
	"github.com/orris-inc/zlpay/internal/shared/money"
)

// SupportedCurrencies lists the currencies ZaloPay settles in.
var SupportedCurrencies = []string{money.DefaultCurrency}

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis"`
	ZaloPay   sharedConfig.ZaloPayConfig   `mapstructure:"zalopay"`
	Reconcile sharedConfig.ReconcileConfig `mapstructure:"reconcile"`
	Refund    sharedConfig.RefundConfig    `mapstructure:"refund"`
	Email     sharedConfig.EmailConfig     `mapstructure:"email"`
	Admin     sharedConfig.AdminConfig     `mapstructure:"admin"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configs/config.yaml (searched from the working directory
// upwards), then a .env file, then ZLPAY_* environment variables.
func Load(env string) (*Config, error) {
	return LoadFile("", env)
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path, env string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("ZLPAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Allow env parameter to override server mode if provided
	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// Validate runs the struct tags and the payment-specific startup checks.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !isSupportedCurrency(c.ZaloPay.Currency) {
		return fmt.Errorf("currency %q is not supported, expected one of %v", c.ZaloPay.Currency, SupportedCurrencies)
	}

	if !c.ZaloPay.SandboxMode && !c.Server.IsSecure() {
		return fmt.Errorf("live mode requires an https server.base_url, got %q", c.Server.BaseURL)
	}

	return nil
}

func isSupportedCurrency(currency string) bool {
	for _, supported := range SupportedCurrencies {
		if currency == supported {
			return true
		}
	}
	return false
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.checkout_path", "/checkout")
	v.SetDefault("server.timezone", "Asia/Ho_Chi_Minh")
	v.SetDefault("server.checkout_rate_limit", 30)

	// Database defaults
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "zlpay_dev")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.max_size_mb", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age_days", 30)
	v.SetDefault("logger.compress", true)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// ZaloPay defaults (credentials must be configured)
	v.SetDefault("zalopay.app_id", 0)
	v.SetDefault("zalopay.key1", "")
	v.SetDefault("zalopay.key2", "")
	v.SetDefault("zalopay.sandbox_mode", true)
	v.SetDefault("zalopay.currency", money.DefaultCurrency)
	v.SetDefault("zalopay.request_encoding", "json")
	v.SetDefault("zalopay.timeout", "70s")
	v.SetDefault("zalopay.endpoint_override", "")

	// Reconcile defaults
	v.SetDefault("reconcile.poll_interval", "60s")
	v.SetDefault("reconcile.max_poll_attempts", 15)
	v.SetDefault("reconcile.lock_ttl", "30s")
	v.SetDefault("reconcile.lock_wait", "10s")
	v.SetDefault("reconcile.recovery_interval", "5m")

	// Refund defaults
	v.SetDefault("refund.min_amount", 1000)

	// Email defaults (notices disabled until smtp_host and admin_address are set)
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.smtp_user", "")
	v.SetDefault("email.smtp_password", "")
	v.SetDefault("email.from_address", "noreply@zlpay.local")
	v.SetDefault("email.from_name", "zlpay")
	v.SetDefault("email.admin_address", "")

	// Admin defaults
	v.SetDefault("admin.jwt_secret", "")
	v.SetDefault("admin.token_lifetime", "24h")
}
