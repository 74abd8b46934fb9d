package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_ACCESS_EXPIRY", "")
	t.Setenv("JWT_REFRESH_EXPIRY", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("REFRESH_COOKIE_NAME", "")

	c := Load()
	require.NotNil(t, c)

	assert.Equal(t, 10*time.Minute, c.JWTAccessExpiry)
	assert.Equal(t, 30*24*time.Hour, c.JWTRefreshExpiry)
	assert.Equal(t, 30*24*time.Hour, c.RefreshCookieMaxAge)
	assert.Equal(t, "refreshToken", c.RefreshCookieName)
	assert.Equal(t, "local", c.StorageDriver)
	assert.Equal(t, "", c.JWTSecret)
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
	t.Setenv("JWT_ACCESS_EXPIRY", "90s")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("MAX_UPLOAD_SIZE", "1024")
	t.Setenv("APP_ENV", "production")

	c := Load()

	assert.Equal(t, "access", c.JWTSecret)
	assert.Equal(t, "refresh", c.JWTRefreshSecret)
	assert.Equal(t, 90*time.Second, c.JWTAccessExpiry)
	assert.Equal(t, 4, c.BcryptCost)
	assert.Equal(t, int64(1024), c.MaxUploadSize)
	assert.True(t, c.IsProduction())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_ACCESS_EXPIRY", "ten minutes")
	t.Setenv("BCRYPT_COST", "high")

	c := Load()

	assert.Equal(t, 10*time.Minute, c.JWTAccessExpiry)
	assert.Equal(t, 10, c.BcryptCost)
}

func TestValidate(t *testing.T) {
	c := &Config{DBDriver: "sqlite", StorageDriver: "local", JWTAccessExpiry: 10 * time.Minute}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "JWT_REFRESH_SECRET")

	c.JWTSecret = "same"
	c.JWTRefreshSecret = "same"
	require.ErrorContains(t, c.Validate(), "must differ")

	c.JWTRefreshSecret = "other"
	require.NoError(t, c.Validate())

	c.JWTRefreshExpiry = 0
	require.NoError(t, c.Validate(), "zero disables refresh expiry")

	c.DBDriver = "postgres"
	require.ErrorContains(t, c.Validate(), "DB_PASSWORD")

	c.DBPassword = "pw"
	c.StorageDriver = "ftp"
	require.ErrorContains(t, c.Validate(), "STORAGE_DRIVER")
}

func TestDSN(t *testing.T) {
	c := &Config{
		DBHost: "db", DBPort: "3306", DBUser: "u", DBPassword: "p", DBName: "files",
		DBSSLMode: "disable", DBPath: "/tmp/x.db",
	}

	c.DBDriver = "mysql"
	assert.Equal(t, "u:p@tcp(db:3306)/files?charset=utf8mb4&parseTime=True&loc=UTC", c.DSN())

	c.DBDriver = "sqlite"
	assert.True(t, strings.HasPrefix(c.DSN(), "/tmp/x.db?"))

	c.DBDriver = "postgres"
	assert.Contains(t, c.DSN(), "host=db")
	assert.Contains(t, c.DSN(), "dbname=files")
}

func TestValidate_ExpiryBounds(t *testing.T) {
	base := Config{
		DBDriver:         "sqlite",
		StorageDriver:    "local",
		JWTSecret:        "access",
		JWTRefreshSecret: "refresh",
		JWTAccessExpiry:  10 * time.Minute,
		JWTRefreshExpiry: 30 * 24 * time.Hour,
	}
	require.NoError(t, base.Validate())

	for _, d := range []time.Duration{0, -time.Minute} {
		c := base
		c.JWTAccessExpiry = d
		assert.ErrorContains(t, c.Validate(), "JWT_ACCESS_EXPIRY", "access expiry %s", d)
	}

	c := base
	c.JWTRefreshExpiry = -time.Hour
	assert.ErrorContains(t, c.Validate(), "JWT_REFRESH_EXPIRY")
}

func TestLoad_ZeroAccessExpiryFailsValidation(t *testing.T) {
	t.Setenv("JWT_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("STORAGE_DRIVER", "local")
	t.Setenv("JWT_ACCESS_EXPIRY", "0")

	c := Load()
	assert.Equal(t, time.Duration(0), c.JWTAccessExpiry)
	assert.ErrorContains(t, c.Validate(), "JWT_ACCESS_EXPIRY")
}
