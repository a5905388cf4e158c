// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	validLogLevels       = []string{"debug", "info", "warn", "error", "fatal"}
	validDatabaseDrivers = []string{"postgres", "sqlite"}
	validEmailProviders  = []string{"sendgrid", "smtp"}
)

// GenSecret returns a random hex string that can be used as a JWT secret
func GenSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that. The config file is optional, everything can be provided
// through the environment.
func Setup(flags *pflag.FlagSet, configPath string) error {
	if flags != nil {
		bindFlags(flags)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()

	bindEnvs()
	SetDefaults()

	if err := v.ReadInConfig(); err != nil {
		var notFound v.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	return Validate()
}

// flagKeys maps command line flags to the keys they override
var flagKeys = map[string]string{
	"log-level": "app.log_level",
	"port":      "host.port",
}

func bindFlags(flags *pflag.FlagSet) {
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			v.BindPFlag(key, f)
		}
	}
}

func bindEnvs() {
	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")
	v.BindEnv("app.site_name", "app_site_name")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.cors", "host_cors")

	v.BindEnv("database.driver", "database_driver")
	v.BindEnv("database.dsn", "SUPABASE_DB_URL", "database_dsn")

	v.BindEnv("supabase.url", "NEXT_PUBLIC_SUPABASE_URL")
	v.BindEnv("supabase.service_role_key", "SUPABASE_SERVICE_ROLE_KEY")

	v.BindEnv("email.provider", "email_provider")
	v.BindEnv("email.templates_dir", "email_templates_dir")

	v.BindEnv("sendgrid.api_key", "SENDGRID_API_KEY")
	v.BindEnv("sendgrid.from_email", "SENDGRID_FROM_EMAIL")
	v.BindEnv("sendgrid.from_name", "SENDGRID_FROM_NAME")

	v.BindEnv("smtp.host", "mail_host")
	v.BindEnv("smtp.port", "mail_port")
	v.BindEnv("smtp.username", "mail_username")
	v.BindEnv("smtp.password", "mail_password")

	v.BindEnv("admin.email", "ADMIN_EMAIL")

	v.BindEnv("audit.max_requests_per_day", "AUDIT_MAX_REQUESTS_PER_DAY")
	v.BindEnv("audit.enable_auto_response", "AUDIT_ENABLE_AUTO_RESPONSE")

	v.BindEnv("redis.addr", "redis_addr")
	v.BindEnv("redis.password", "redis_password")
	v.BindEnv("redis.db", "redis_db")

	v.BindEnv("jwt.secret", "jwt_secret")

	v.BindEnv("security.rate_limit", "security_rate_limit")

	v.BindEnv("cloudflare.turnstile.enabled", "cloudflare_turnstile_enabled")
	v.BindEnv("cloudflare.turnstile.secret_token", "cloudflare_turnstile_secret_token")

	v.BindEnv("retention.days", "retention_days")

	v.BindEnv("schedule.cleanup", "schedule_cleanup")
	v.BindEnv("schedule.weekly_report", "schedule_weekly_report")
}

// SetDefaults sets every default value, tests call it directly
func SetDefaults() {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.site_name", "Resource Desk")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.cors", []string{"http://localhost:3000"})

	v.SetDefault("database.driver", "postgres")

	v.SetDefault("email.provider", "sendgrid")
	v.SetDefault("email.templates_dir", "templates/email")

	v.SetDefault("sendgrid.from_name", "Resource Desk")

	v.SetDefault("smtp.port", 587)

	v.SetDefault("audit.max_requests_per_day", 5)
	v.SetDefault("audit.enable_auto_response", true)

	v.SetDefault("security.rate_limit", 5)

	v.SetDefault("cloudflare.turnstile.enabled", false)

	v.SetDefault("retention.days", 30)

	v.SetDefault("schedule.cleanup", "@daily")
	v.SetDefault("schedule.weekly_report", "@weekly")
}

// Validate checks the values that are currently loaded into viper
func Validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	switch v.GetString("database.driver") {
	case "postgres":
		if v.GetString("database.dsn") == "" {
			return errors.New("no database dsn provided, set SUPABASE_DB_URL")
		}
		if v.GetString("supabase.service_role_key") == "" {
			return errors.New("SUPABASE_SERVICE_ROLE_KEY can't be empty")
		}
	case "sqlite":
		if v.GetString("database.dsn") == "" {
			v.Set("database.dsn", "database.db")
		}
	}

	if !slices.Contains(validDatabaseDrivers, v.GetString("database.driver")) {
		return errors.New("invalid database driver provided")
	}

	if !slices.Contains(validEmailProviders, v.GetString("email.provider")) {
		return errors.New("invalid email provider provided")
	}

	if v.GetInt("audit.max_requests_per_day") <= 0 {
		return errors.New("audit.max_requests_per_day must be bigger than 0")
	}

	if v.GetInt("retention.days") <= 0 {
		return errors.New("retention.days must be bigger than 0")
	}

	if v.GetInt("security.rate_limit") <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	if v.GetBool("cloudflare.turnstile.enabled") && v.GetString("cloudflare.turnstile.secret_token") == "" {
		return errors.New("turnstile secret token is missing")
	}

	return nil
}
