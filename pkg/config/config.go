package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"paws/pkg/client"
	"paws/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	FacilityTimezone string
	Location         *time.Location

	GoogleCalendarID          string
	GoogleServiceAccountEmail string
	GooglePrivateKey          string
	CalendarTimeout           time.Duration

	BlackoutDefaultMonths int
	BlackoutMaxMonths     int
	VIPApprovedThreshold  int

	SlackBotToken      string
	SlackChannelID     string
	SlackSigningSecret string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log    *logger.Logger
	Client *client.Client
}

// Load reads an optional .env file, then the process environment, and exits
// the process when the resulting configuration is invalid.
func Load(serviceName string) *Config {
	dotEnvErr := loadDotEnv(getEnvStr(EnvDotEnv, DefaultDotEnv))

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		FacilityTimezone: getEnvStr(EnvFacilityTimezone, DefaultFacilityTimezone),

		GoogleCalendarID:          getEnvStr(EnvGoogleCalendarID, ""),
		GoogleServiceAccountEmail: getEnvStr(EnvGoogleServiceAccountEmail, ""),
		GooglePrivateKey:          getEnvStr(EnvGooglePrivateKey, ""),
		CalendarTimeout:           getEnvDuration(EnvCalendarTimeout, DefaultCalendarTimeout),

		BlackoutDefaultMonths: getEnvNum(EnvBlackoutDefaultMonths, DefaultBlackoutDefaultMonths),
		BlackoutMaxMonths:     getEnvNum(EnvBlackoutMaxMonths, DefaultBlackoutMaxMonths),
		VIPApprovedThreshold:  getEnvNum(EnvVIPApprovedThreshold, DefaultVIPApprovedThreshold),

		SlackBotToken:      getEnvStr(EnvSlackBotToken, ""),
		SlackChannelID:     getEnvStr(EnvSlackChannelID, ""),
		SlackSigningSecret: getEnvStr(EnvSlackSigningSecret, ""),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if dotEnvErr != nil {
		cfg.Log.Warn("failed to load dotenv file", "error", dotEnvErr)
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// loadDotEnv never overrides variables already present in the environment.
// A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SlackEnabled() bool {
	return cfg.SlackBotToken != "" && cfg.SlackChannelID != ""
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	loc, err := time.LoadLocation(cfg.FacilityTimezone)
	if err != nil || cfg.FacilityTimezone == "" || cfg.FacilityTimezone == "Local" {
		errors = append(errors, fmt.Sprintf("FacilityTimezone must be an IANA zone name, got: %q", cfg.FacilityTimezone))
	} else {
		cfg.Location = loc
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.CalendarTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("CalendarTimeout must be positive, got: %s", cfg.CalendarTimeout))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.BlackoutMaxMonths < 0 {
		errors = append(errors, fmt.Sprintf("BlackoutMaxMonths cannot be negative, got: %d", cfg.BlackoutMaxMonths))
	}
	if cfg.BlackoutDefaultMonths < 0 || cfg.BlackoutDefaultMonths > cfg.BlackoutMaxMonths {
		errors = append(errors, fmt.Sprintf("BlackoutDefaultMonths (%d) must be between 0 and BlackoutMaxMonths (%d)", cfg.BlackoutDefaultMonths, cfg.BlackoutMaxMonths))
	}
	if cfg.VIPApprovedThreshold <= 0 {
		errors = append(errors, fmt.Sprintf("VIPApprovedThreshold must be positive, got: %d", cfg.VIPApprovedThreshold))
	}

	if (cfg.SlackBotToken == "") != (cfg.SlackChannelID == "") {
		errors = append(errors, "SlackBotToken and SlackChannelID must be set together")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

// ValidateCalendar is checked only by services that read the facility
// calendar; the notifier and migrations run without Google credentials.
func (cfg *Config) ValidateCalendar() error {
	var missing []string
	if cfg.GoogleCalendarID == "" {
		missing = append(missing, EnvGoogleCalendarID)
	}
	if cfg.GoogleServiceAccountEmail == "" {
		missing = append(missing, EnvGoogleServiceAccountEmail)
	}
	if cfg.GooglePrivateKey == "" {
		missing = append(missing, EnvGooglePrivateKey)
	}
	if len(missing) > 0 {
		return fmt.Errorf("calendar credentials missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"facility_timezone", cfg.FacilityTimezone,
		"google_calendar_id", redactCalendarID(cfg.GoogleCalendarID),
		"google_service_account", cfg.GoogleServiceAccountEmail,
		"google_private_key_set", cfg.GooglePrivateKey != "",
		"calendar_timeout", cfg.CalendarTimeout,
		"blackout_default_months", cfg.BlackoutDefaultMonths,
		"blackout_max_months", cfg.BlackoutMaxMonths,
		"vip_approved_threshold", cfg.VIPApprovedThreshold,
		"slack_enabled", cfg.SlackEnabled(),
		"slack_signing_secret_set", cfg.SlackSigningSecret != "",
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

// redactCalendarID keeps enough of the id to tell calendars apart in logs.
func redactCalendarID(id string) string {
	if len(id) <= 8 {
		return "***"
	}
	return id[:4] + "***" + id[len(id)-4:]
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
