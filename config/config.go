// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"hrportal/onboarding-api/pkg/validators"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	validLogLevels     = []string{"debug", "info", "warn", "error", "fatal"}
	validDatabaseTypes = []string{"sqlite", "postgres"}
	validDispatchModes = []string{"direct", "queue"}
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Host       HostConfig       `mapstructure:"host"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Code       CodeConfig       `mapstructure:"code"`
	Account    AccountConfig    `mapstructure:"account"`
	Identifier IdentifierConfig `mapstructure:"identifier"`
	Argon      ArgonConfig      `mapstructure:"argon"`
	Mail       MailConfig       `mapstructure:"mail"`
	SMS        SMSConfig        `mapstructure:"sms"`
	Dispatch   DispatchConfig   `mapstructure:"dispatch"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cleanup    CleanupConfig    `mapstructure:"cleanup"`
	Admin      AdminConfig      `mapstructure:"admin"`
}

type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
	Env      string `mapstructure:"env"`
}

type HostConfig struct {
	Port        int       `mapstructure:"port"`
	CORSOrigins []string  `mapstructure:"cors_origins"`
	SSL         SSLConfig `mapstructure:"ssl"`
}

type SSLConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	CertificatePath    string `mapstructure:"certificate_path"`
	CertificateKeyPath string `mapstructure:"certificate_key_path"`
}

type DatabaseConfig struct {
	Type string `mapstructure:"type"`
	Path string `mapstructure:"path"`
	DSN  string `mapstructure:"dsn"`
}

type TokenConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type RefreshTokenConfig struct {
	TokenConfig `mapstructure:",squash"`
	Rotate      bool `mapstructure:"rotate"`
}

type JWTConfig struct {
	Issuer  string             `mapstructure:"issuer"`
	Access  TokenConfig        `mapstructure:"access"`
	Refresh RefreshTokenConfig `mapstructure:"refresh"`
}

type CodeConfig struct {
	TTL    time.Duration `mapstructure:"ttl"`
	Length int           `mapstructure:"length"`
}

type AccountConfig struct {
	// Accounts created by registration start inactive when false and are
	// activated by verification
	ActiveOnRegister               bool `mapstructure:"active_on_register"`
	RevokeSessionsOnPasswordChange bool `mapstructure:"revoke_sessions_on_password_change"`
}

type IdentifierConfig struct {
	PhonePrefix string `mapstructure:"phone_prefix"`
	PhoneLength int    `mapstructure:"phone_length"`
}

type ArgonConfig struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
	SaltLength  uint32 `mapstructure:"salt_length"`
	KeyLength   uint32 `mapstructure:"key_length"`
}

type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type SMSConfig struct {
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
	Sender string `mapstructure:"sender"`
}

type DispatchConfig struct {
	Mode string `mapstructure:"mode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CleanupConfig struct {
	Schedule string `mapstructure:"schedule"`
}

// AdminConfig is consumed once by the admin bootstrap, never by the core
type AdminConfig struct {
	Email     string `mapstructure:"email"`
	Phone     string `mapstructure:"phone"`
	Password  string `mapstructure:"password"`
	FirstName string `mapstructure:"first_name"`
	LastName  string `mapstructure:"last_name"`
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Flags registers the command line flags understood by Setup
func Flags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a config.toml file")
	fs.String("log-level", "", "Overrides app.log_level")
	fs.Int("port", 0, "Overrides host.port")
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that. Flags registered with Flags take precedence over the file and the
// environment.
func Setup(fs *pflag.FlagSet) (*Config, error) {
	if os.Getenv("APP_ENV") == "dev" {
		// A missing .env is fine, the environment may be set some other way
		_ = godotenv.Load()
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
		}
		if f := fs.Lookup("log-level"); f != nil && f.Changed {
			v.BindPFlag("app.log_level", f)
		}
		if f := fs.Lookup("port"); f != nil && f.Changed {
			v.BindPFlag("host.port", f)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvs(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}

		fmt.Println("[WARNING]: config.toml file is missing, using environment variables and defaults")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode config, %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func bindEnvs(v *viper.Viper) {
	//
	// ENVS
	//
	v.BindEnv("app.log_level", "APP_LOG_LEVEL")
	v.BindEnv("app.env", "APP_ENV")

	v.BindEnv("host.port", "HOST_PORT")
	v.BindEnv("host.cors_origins", "HOST_CORS")
	v.BindEnv("host.ssl.enabled", "HOST_SSL_ENABLED")
	v.BindEnv("host.ssl.certificate_path", "HOST_SSL_CERTIFICATE_PATH")
	v.BindEnv("host.ssl.certificate_key_path", "HOST_SSL_CERTIFICATE_KEY_PATH")

	v.BindEnv("database.type", "DATABASE_TYPE")
	v.BindEnv("database.path", "DATABASE_PATH")
	v.BindEnv("database.dsn", "DATABASE_DSN")

	v.BindEnv("jwt.issuer", "JWT_ISSUER")
	v.BindEnv("jwt.access.secret", "JWT_ACCESS_TOKEN_SECRET")
	v.BindEnv("jwt.access.ttl", "JWT_ACCESS_TOKEN_EXPIRATION_TIME")
	v.BindEnv("jwt.refresh.secret", "JWT_REFRESH_TOKEN_SECRET")
	v.BindEnv("jwt.refresh.ttl", "JWT_REFRESH_TOKEN_EXPIRATION_TIME")
	v.BindEnv("jwt.refresh.rotate", "JWT_REFRESH_TOKEN_ROTATE")

	v.BindEnv("code.ttl", "CODE_TTL")
	v.BindEnv("code.length", "CODE_LENGTH")

	v.BindEnv("account.active_on_register", "ACCOUNT_ACTIVE_ON_REGISTER")
	v.BindEnv("account.revoke_sessions_on_password_change", "ACCOUNT_REVOKE_SESSIONS_ON_PASSWORD_CHANGE")

	v.BindEnv("identifier.phone_prefix", "IDENTIFIER_PHONE_PREFIX")
	v.BindEnv("identifier.phone_length", "IDENTIFIER_PHONE_LENGTH")

	v.BindEnv("mail.host", "MAIL_HOST")
	v.BindEnv("mail.port", "MAIL_PORT")
	v.BindEnv("mail.username", "MAIL_USERNAME")
	v.BindEnv("mail.password", "MAIL_PASSWORD")
	v.BindEnv("mail.from", "SENT_EMAIL_FROM")

	v.BindEnv("sms.url", "SMS_URL")
	v.BindEnv("sms.api_key", "SMS_API_KEY")
	v.BindEnv("sms.sender", "SMS_SENDER")

	v.BindEnv("dispatch.mode", "DISPATCH_MODE")

	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	v.BindEnv("cleanup.schedule", "CLEANUP_SCHEDULE")

	v.BindEnv("admin.email", "ADMIN_EMAIL")
	v.BindEnv("admin.phone", "ADMIN_PHONE")
	v.BindEnv("admin.password", "ADMIN_PASSWORD")
	v.BindEnv("admin.first_name", "ADMIN_FNAME")
	v.BindEnv("admin.last_name", "ADMIN_LNAME")
}

func setDefaults(v *viper.Viper) {
	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.env", "prod")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "database.db")

	v.SetDefault("jwt.issuer", "onboarding-api")
	v.SetDefault("jwt.access.ttl", "15m")
	v.SetDefault("jwt.refresh.ttl", "168h")
	v.SetDefault("jwt.refresh.rotate", true)

	v.SetDefault("code.ttl", "24h")
	v.SetDefault("code.length", 8)

	v.SetDefault("account.active_on_register", true)
	v.SetDefault("account.revoke_sessions_on_password_change", false)

	v.SetDefault("identifier.phone_prefix", "+250")
	v.SetDefault("identifier.phone_length", 13)

	v.SetDefault("argon.memory", 64*1024)
	v.SetDefault("argon.iterations", 3)
	v.SetDefault("argon.parallelism", 2)
	v.SetDefault("argon.salt_length", 16)
	v.SetDefault("argon.key_length", 32)

	v.SetDefault("mail.port", 587)

	v.SetDefault("dispatch.mode", "direct")

	v.SetDefault("redis.addr", "127.0.0.1:6379")

	v.SetDefault("cleanup.schedule", "@every 1h")
}

func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}

	if c.Host.Port <= 0 {
		return errors.New("invalid port provided")
	}

	if len(c.Host.CORSOrigins) == 0 {
		return errors.New("host.cors_origins needs at least one origin")
	}

	if c.Host.SSL.Enabled {
		if c.Host.SSL.CertificatePath == "" {
			return errors.New("no ssl certificate path provided")
		}

		if c.Host.SSL.CertificateKeyPath == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if !slices.Contains(validDatabaseTypes, c.Database.Type) {
		return errors.New("invalid database type provided")
	}

	if c.Database.Type == "postgres" && c.Database.DSN == "" {
		return errors.New("database.dsn is required for postgres")
	}

	if c.JWT.Access.Secret == "" {
		return fmt.Errorf("jwt.access.secret is missing. You can use this randomly generated one:\n\n%s", genSecret())
	}

	if c.JWT.Refresh.Secret == "" {
		return fmt.Errorf("jwt.refresh.secret is missing. You can use this randomly generated one:\n\n%s", genSecret())
	}

	if c.JWT.Access.Secret == c.JWT.Refresh.Secret {
		return errors.New("jwt.access.secret and jwt.refresh.secret must be different")
	}

	if c.JWT.Access.TTL <= 0 || c.JWT.Refresh.TTL <= 0 {
		return errors.New("token lifetimes must be bigger than 0")
	}

	if c.JWT.Access.TTL >= c.JWT.Refresh.TTL {
		return errors.New("jwt.access.ttl must be shorter than jwt.refresh.ttl")
	}

	if c.Code.TTL <= 0 {
		return errors.New("code.ttl must be bigger than 0")
	}

	if c.Code.Length < 4 || c.Code.Length > 32 {
		return errors.New("code.length must be between 4 and 32")
	}

	if c.Identifier.PhonePrefix == "" || c.Identifier.PhoneLength <= len(c.Identifier.PhonePrefix) {
		return errors.New("invalid phone identifier rule")
	}

	if c.Argon.Memory == 0 || c.Argon.Iterations == 0 || c.Argon.Parallelism == 0 {
		return errors.New("argon parameters must be bigger than 0")
	}

	if c.Argon.SaltLength < 8 || c.Argon.KeyLength < 16 {
		return errors.New("argon salt_length must be at least 8 and key_length at least 16")
	}

	if !slices.Contains(validDispatchModes, c.Dispatch.Mode) {
		return errors.New("invalid dispatch mode provided")
	}

	if c.Dispatch.Mode == "queue" && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when dispatch.mode is queue")
	}

	if c.Mail.Host != "" {
		if err := validators.EmailValidator(c.Mail.From); err != nil {
			return fmt.Errorf("mail.from, %w", err)
		}
	}

	if c.Mail.Host == "" {
		fmt.Println("[WARNING]: mail.host is not set. Emails will only be written to the log")
	}

	if c.SMS.URL == "" {
		fmt.Println("[WARNING]: sms.url is not set. Text messages will only be written to the log")
	}

	return nil
}

// Development reports whether the app runs in dev mode
func (c *Config) Development() bool {
	return c.App.Env == "dev"
}
