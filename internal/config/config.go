package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	AppEnv      string
	Port        string
	CORSOrigins string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// JWT (access and refresh tokens use separate secrets)
	JWTSecret        string
	JWTRefreshSecret string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration
	BcryptCost       int

	// Refresh token cookie
	RefreshCookieName   string
	RefreshCookieMaxAge time.Duration

	// Blob storage
	StorageDriver  string
	FileUploadPath string
	MaxUploadSize  int64

	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string

	// Background jobs
	OrphanSweepInterval time.Duration
	OrphanSweepGrace    time.Duration
	LogRetention        time.Duration

	// Observability
	SentryDSN string
}

func Load() *Config {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	return &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "5680"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "filevault"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "./data/filevault.db"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
		JWTAccessExpiry:  getDuration("JWT_ACCESS_EXPIRY", 10*time.Minute),
		JWTRefreshExpiry: getDuration("JWT_REFRESH_EXPIRY", 30*24*time.Hour),
		BcryptCost:       getInt("BCRYPT_COST", 10),

		RefreshCookieName:   getEnv("REFRESH_COOKIE_NAME", "refreshToken"),
		RefreshCookieMaxAge: getDuration("REFRESH_COOKIE_MAX_AGE", 30*24*time.Hour),

		StorageDriver:  getEnv("STORAGE_DRIVER", "local"),
		FileUploadPath: getEnv("FILE_UPLOAD_PATH", "./uploads"),
		MaxUploadSize:  getInt64("MAX_UPLOAD_SIZE", 50<<20),

		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", "filevault"),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),

		OrphanSweepInterval: getDuration("ORPHAN_SWEEP_INTERVAL", time.Hour),
		OrphanSweepGrace:    getDuration("ORPHAN_SWEEP_GRACE", time.Hour),
		LogRetention:        getDuration("LOG_RETENTION", 30*24*time.Hour),

		SentryDSN: getEnv("SENTRY_DSN", ""),
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET environment variable is required"))
	}
	if c.JWTRefreshSecret == "" {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET environment variable is required"))
	}
	if c.JWTSecret != "" && c.JWTSecret == c.JWTRefreshSecret {
		errs = append(errs, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.JWTAccessExpiry <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_EXPIRY must be positive"))
	}
	if c.JWTRefreshExpiry < 0 {
		errs = append(errs, errors.New("JWT_REFRESH_EXPIRY must not be negative"))
	}
	if c.DBDriver != "sqlite" && c.DBPassword == "" {
		errs = append(errs, errors.New("DB_PASSWORD environment variable is required"))
	}
	switch c.StorageDriver {
	case "local", "s3":
	default:
		errs = append(errs, errors.New("STORAGE_DRIVER must be local or s3"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) DSN() string {
	switch c.DBDriver {
	case "mysql":
		return c.DBUser + ":" + c.DBPassword +
			"@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName +
			"?charset=utf8mb4&parseTime=True&loc=UTC"
	case "sqlite":
		return c.DBPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	default:
		return "host=" + c.DBHost +
			" user=" + c.DBUser +
			" password=" + c.DBPassword +
			" dbname=" + c.DBName +
			" port=" + c.DBPort +
			" sslmode=" + c.DBSSLMode +
			" TimeZone=UTC"
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}
