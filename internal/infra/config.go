package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries everything the service reads from the environment. It
// is assembled once in main and passed by reference into the components
// that need backend access; nothing reads the environment after load.
type Config struct {
	AppEnv string
	Port   string

	// Durable store for the export gallery.
	StoreDriver string // "sqlite" | "postgres"
	StorePath   string // sqlite file path
	StoreDSN    string // postgres DSN

	// Generative backend.
	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiImageModel string
	GeminiChatModel  string

	// Catalogue backend.
	DriveAPIKey       string
	DriveBaseURL      string
	DriveRootFolderID string

	GeoIPDBPath    string
	AllowedOrigins []string
	DefaultLocale  string

	SessionTTL       time.Duration
	MaxUploadBytes   int64
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// ConfigError reports missing backend credentials. It is returned to
// callers instead of aborting at load time; the HTTP layer turns it
// into the config-status banner and suppressed submit actions.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing configuration: %s", strings.Join(e.Missing, ", "))
}

// LoadConfig reads the environment and applies defaults. Missing
// credentials are not an error here; call Validate or the *Ready
// helpers to find out what is usable.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		StoreDriver:       getEnv("STORE_DRIVER", "sqlite"),
		StorePath:         getEnv("STORE_PATH", "./data/bovali.db"),
		StoreDSN:          os.Getenv("DATABASE_URL"),
		GeminiAPIKey:      strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiImageModel:  getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		GeminiChatModel:   getEnv("GEMINI_CHAT_MODEL", "gemini-2.5-flash"),
		DriveAPIKey:       strings.TrimSpace(os.Getenv("DRIVE_API_KEY")),
		DriveBaseURL:      getEnv("DRIVE_BASE_URL", "https://www.googleapis.com/drive/v3"),
		DriveRootFolderID: strings.TrimSpace(os.Getenv("DRIVE_ROOT_FOLDER_ID")),
		GeoIPDBPath:       os.Getenv("GEOIP_DB_PATH"),
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		DefaultLocale:     getEnv("DEFAULT_LOCALE", "en"),
		SessionTTL:        time.Minute * time.Duration(getEnvInt("SESSION_TTL_MINUTES", 120)),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_MB", 12)) << 20,
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	switch cfg.StoreDriver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.StoreDriver == "postgres" && cfg.StoreDSN == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
	}

	return cfg, nil
}

// GeminiReady reports whether generation and chat submits can be served.
func (c *Config) GeminiReady() bool {
	return c.GeminiAPIKey != ""
}

// DriveReady reports whether the catalogue can be browsed.
func (c *Config) DriveReady() bool {
	return c.DriveAPIKey != "" && c.DriveRootFolderID != ""
}

// Validate returns a ConfigError naming every missing credential, or
// nil when both backends are usable.
func (c *Config) Validate() *ConfigError {
	var missing []string
	if c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if c.DriveAPIKey == "" {
		missing = append(missing, "DRIVE_API_KEY")
	}
	if c.DriveRootFolderID == "" {
		missing = append(missing, "DRIVE_ROOT_FOLDER_ID")
	}
	if len(missing) == 0 {
		return nil
	}
	return &ConfigError{Missing: missing}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
