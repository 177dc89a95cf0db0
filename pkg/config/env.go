package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"
	EnvDotEnv   = "DOTENV_PATH"

	EnvFacilityTimezone = "FACILITY_TIMEZONE"

	EnvGoogleCalendarID          = "GOOGLE_CALENDAR_ID"
	EnvGoogleServiceAccountEmail = "GOOGLE_SERVICE_ACCOUNT_EMAIL"
	EnvGooglePrivateKey          = "GOOGLE_PRIVATE_KEY"
	EnvCalendarTimeout           = "CALENDAR_TIMEOUT"

	EnvBlackoutDefaultMonths = "BLACKOUT_DEFAULT_MONTHS"
	EnvBlackoutMaxMonths     = "BLACKOUT_MAX_MONTHS"
	EnvVIPApprovedThreshold  = "VIP_APPROVED_THRESHOLD"

	EnvSlackBotToken      = "SLACK_BOT_TOKEN"
	EnvSlackChannelID     = "SLACK_CHANNEL_ID"
	EnvSlackSigningSecret = "SLACK_SIGNING_SECRET"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
