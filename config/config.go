package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultPort           = "8000"
	defaultDatabaseName   = "lost_found_portal"
	defaultJWTExpire      = 60 * 24 * 7 // minutes
	defaultMaxFileSize    = 10 << 20
	defaultStaleItemCron  = "0 4 * * *"
	defaultStaleItemDays  = 90
	defaultStorageBackend = "cloudinary"
)

// Config holds the project config values
type Config struct {
	URL                string
	DatabaseName       string
	BaseURL            string
	Port               string
	Environment        string
	JWTSecret          string
	JWTExpire          time.Duration
	AllowedOrigins     []string
	AllowedEmailDomain string
	MaxFileSize        int64

	StorageBackend   string
	CloudinaryURL    string
	CloudinaryFolder string
	S3Region         string
	S3Bucket         string
	S3Endpoint       string
	S3AccessKey      string
	S3SecretKey      string
	S3PublicURL      string

	SendgridAPIKey string
	MailFrom       string

	StaleItemCron string
	StaleItemDays int

	// bootstrap admin, created at startup when both are set
	AdminEmail    string
	AdminPassword string
}

// New sets up all config related services
func New() *Config {
	env := getEnv("ENVIRONMENT", "development")

	//setup zap logger and replace default logger
	logger, err := setLogger(env)
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:                getEnv("DB_URI", "mongodb://localhost:27017"),
		DatabaseName:       getEnv("DB_NAME", defaultDatabaseName),
		BaseURL:            os.Getenv("BASE_URL"),
		Port:               getEnv("PORT", defaultPort),
		Environment:        env,
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTExpire:          time.Duration(getEnvInt("JWT_EXPIRE_MINUTES", defaultJWTExpire)) * time.Minute,
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001")),
		AllowedEmailDomain: strings.ToLower(os.Getenv("ALLOWED_EMAIL_DOMAIN")),
		MaxFileSize:        int64(getEnvInt("MAX_FILE_SIZE", defaultMaxFileSize)),

		StorageBackend:   strings.ToLower(getEnv("STORAGE_BACKEND", defaultStorageBackend)),
		CloudinaryURL:    os.Getenv("CLOUDINARY_URL"),
		CloudinaryFolder: getEnv("CLOUDINARY_FOLDER", "item-images"),
		S3Region:         getEnv("S3_REGION", "us-east-1"),
		S3Bucket:         getEnv("S3_BUCKET", "item-images"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("S3_SECRET_KEY"),
		S3PublicURL:      os.Getenv("S3_PUBLIC_URL"),

		SendgridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getEnv("MAIL_FROM", "no-reply@lostfound.umt.edu"),

		StaleItemCron: getEnv("STALE_ITEM_CRON", defaultStaleItemCron),
		StaleItemDays: getEnvInt("STALE_ITEM_DAYS", defaultStaleItemDays),

		AdminEmail:    strings.ToLower(os.Getenv("ADMIN_EMAIL")),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

// Validate reports config values the server cannot start without
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	if c.Environment == "production" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	switch c.StorageBackend {
	case "cloudinary", "s3":
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	return nil
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	b, _ := json.Marshal(map[string]string{
		"error":   http.StatusText(httpStatusCode),
		"message": fmt.Sprintf("%s, %v", message, err),
	})
	w.Write(b)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		zap.S().Warnw("invalid integer env value, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
