package config

import (
	"testing"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) {
	t.Helper()

	v.Reset()
	t.Cleanup(v.Reset)

	SetDefaults()
	v.Set("database.driver", "sqlite")
}

func TestValidateDefaults(t *testing.T) {
	setupSQLite(t)

	require.NoError(t, Validate())
	assert.Equal(t, "database.db", v.GetString("database.dsn"))
	assert.Equal(t, 5, v.GetInt("audit.max_requests_per_day"))
	assert.True(t, v.GetBool("audit.enable_auto_response"))
	assert.Equal(t, 30, v.GetInt("retention.days"))
}

func TestValidatePostgresNeedsSupabase(t *testing.T) {
	v.Reset()
	t.Cleanup(v.Reset)
	SetDefaults()

	assert.ErrorContains(t, Validate(), "SUPABASE_DB_URL")

	v.Set("database.dsn", "postgres://localhost/leads")
	assert.ErrorContains(t, Validate(), "SUPABASE_SERVICE_ROLE_KEY")

	v.Set("supabase.service_role_key", "service-role")
	assert.NoError(t, Validate())
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]any{
		"app.log_level":                "loud",
		"host.port":                    0,
		"database.driver":              "mysql",
		"email.provider":               "pigeon",
		"audit.max_requests_per_day":   0,
		"retention.days":               -1,
		"security.rate_limit":          0,
		"cloudflare.turnstile.enabled": true,
	}

	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			setupSQLite(t)
			v.Set(key, val)

			assert.Error(t, Validate())
		})
	}
}

func TestSetupReadsEnv(t *testing.T) {
	v.Reset()
	t.Cleanup(v.Reset)

	t.Setenv("database_driver", "sqlite")
	t.Setenv("AUDIT_MAX_REQUESTS_PER_DAY", "12")
	t.Setenv("AUDIT_ENABLE_AUTO_RESPONSE", "false")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("SENDGRID_FROM_NAME", "Deal Desk")

	require.NoError(t, Setup(nil, ""))

	assert.Equal(t, 12, v.GetInt("audit.max_requests_per_day"))
	assert.False(t, v.GetBool("audit.enable_auto_response"))
	assert.Equal(t, "admin@example.com", v.GetString("admin.email"))
	assert.Equal(t, "Deal Desk", v.GetString("sendgrid.from_name"))
}

func TestSetupFlagsOverride(t *testing.T) {
	v.Reset()
	t.Cleanup(v.Reset)

	t.Setenv("database_driver", "sqlite")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "", "")
	flags.Int("port", 8080, "")
	require.NoError(t, flags.Parse([]string{"--log-level", "debug", "--port", "9090"}))

	require.NoError(t, Setup(flags, ""))

	assert.Equal(t, "debug", v.GetString("app.log_level"))
	assert.Equal(t, 9090, v.GetInt("host.port"))
}

func TestSetupMissingConfigFile(t *testing.T) {
	v.Reset()
	t.Cleanup(v.Reset)

	assert.Error(t, Setup(nil, "does-not-exist.toml"))
}

func TestGenSecret(t *testing.T) {
	a, b := GenSecret(), GenSecret()

	assert.Len(t, a, 128)
	assert.NotEqual(t, a, b)
}
