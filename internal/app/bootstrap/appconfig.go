// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, log level); everything specific to
// the membership service lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: memberhub-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// File storage configuration
	StorageType      string // "local" or "s3"
	StorageLocalPath string // Local storage root (e.g., "./uploads")
	SignedURLExpiry  time.Duration

	// S3 or S3-compatible (B2, MinIO) configuration, used when StorageType is "s3"
	StorageS3Endpoint  string
	StorageS3Region    string
	StorageS3Bucket    string
	StorageS3AccessKey string
	StorageS3SecretKey string
	StorageS3Prefix    string

	// Email configuration
	MailProvider   string // "smtp", "sendgrid" or "log"
	MailSMTPHost   string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort   int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser   string
	MailSMTPPass   string
	SendGridAPIKey string
	MailFrom       string // From email address
	MailFromName   string // From display name

	// Outbox delivery
	OutboxInterval    time.Duration
	OutboxMaxAttempts int

	// Site identity used in outgoing mail
	SiteName     string
	SupportEmail string
	BaseURL      string // e.g., "https://members.example.org"; the login link is BaseURL + "/login"

	// Bootstrap administrator
	AdminEmail    string
	AdminPassword string

	// Handler deadlines; zero keeps the timeouts package default
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration

	CORSAllowedOrigins []string
	StatsCacheTTL      time.Duration

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth  string
	AuditLogAdmin string
}
