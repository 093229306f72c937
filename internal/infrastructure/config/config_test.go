package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "invoicing", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "invoicing", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "INV", cfg.Invoice.IDPrefix)
		assert.Equal(t, 7, cfg.Invoice.IDWidth)
		assert.Equal(t, "Invoice {invoice_id}", cfg.Invoice.SubjectTemplate)
		assert.Equal(t, "€", cfg.Invoice.CurrencySymbol)
		assert.Equal(t, "chromedp", cfg.Renderer.Engine)
		assert.Equal(t, "local", cfg.Export.Backend)
		assert.Equal(t, 6, cfg.Scheduler.SendHour)
		assert.Equal(t, 24*time.Hour, cfg.Redis.PDFTTL)
		assert.Empty(t, cfg.Redis.Host)
		assert.Empty(t, cfg.SMTP.Host)
	})

	t.Run("loads values from environment variables with INV prefix", func(t *testing.T) {
		t.Setenv("INV_APP_PORT", "9000")
		t.Setenv("INV_DATABASE_HOST", "db.local")
		t.Setenv("INV_DATABASE_PASSWORD", "secret")
		t.Setenv("INV_INVOICE_ID_PREFIX", "RE-")
		t.Setenv("INV_INVOICE_ID_WIDTH", "5")
		t.Setenv("INV_SMTP_HOST", "smtp.local")
		t.Setenv("INV_SMTP_FROM", "billing@example.com")
		t.Setenv("INV_RENDERER_ENGINE", "fpdf")
		t.Setenv("INV_SCHEDULER_ENABLED", "true")
		t.Setenv("INV_SCHEDULER_SEND_HOUR", "8")
		t.Setenv("INV_SCHEDULER_SEND_MINUTE", "30")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "db.local", cfg.Database.Host)
		assert.Equal(t, "secret", cfg.Database.Password)
		assert.Equal(t, "RE-", cfg.Invoice.IDPrefix)
		assert.Equal(t, 5, cfg.Invoice.IDWidth)
		assert.Equal(t, "smtp.local", cfg.SMTP.Host)
		assert.Equal(t, "fpdf", cfg.Renderer.Engine)
		assert.True(t, cfg.Scheduler.Enabled)
		assert.Equal(t, 8, cfg.Scheduler.SendHour)
		assert.Equal(t, 30, cfg.Scheduler.SendMinute)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("INV_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("INV_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("invoice identifiers must fit the column", func(t *testing.T) {
		t.Setenv("INV_INVOICE_ID_PREFIX", "INVOICE-")
		t.Setenv("INV_INVOICE_ID_WIDTH", "5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at most 10 fit")
	})

	t.Run("rejects unknown renderer engine", func(t *testing.T) {
		t.Setenv("INV_RENDERER_ENGINE", "wkhtmltopdf")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "renderer.engine")
	})

	t.Run("s3 export backend needs a bucket", func(t *testing.T) {
		t.Setenv("INV_EXPORT_BACKEND", "s3")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.bucket")
	})

	t.Run("smtp host needs a sender", func(t *testing.T) {
		t.Setenv("INV_SMTP_HOST", "smtp.local")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "smtp.from")
	})

	t.Run("rejects send hour out of range", func(t *testing.T) {
		t.Setenv("INV_SCHEDULER_SEND_HOUR", "24")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scheduler.send_hour")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		t.Setenv("INV_APP_ENV", "production")
		t.Setenv("INV_DATABASE_PASSWORD", "secure-password")
		t.Setenv("INV_DATABASE_SSLMODE", "require")
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("INV_DATABASE_PASSWORD", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("INV_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("forbids full SQL logging in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("INV_TELEMETRY_DB_LOG_FULL_SQL", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db_log_full_sql")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "/testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "user", Password: "pass@word#123", DBName: "db", SSLMode: "disable"}
		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
