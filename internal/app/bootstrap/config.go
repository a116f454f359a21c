// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/memberhub/internal/app/system/mailer"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for MemberHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: MEMBERHUB_MONGO_URI, MEMBERHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "memberhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "memberhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "168h", Desc: "Session lifetime"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage root for uploaded photos and logos"},
	{Name: "signed_url_expiry", Default: "1h", Desc: "Lifetime of signed photo and logo URLs"},

	// S3 configuration
	{Name: "storage_s3_endpoint", Default: "", Desc: "S3-compatible endpoint (blank for AWS)"},
	{Name: "storage_s3_region", Default: "", Desc: "S3 region"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_access_key", Default: "", Desc: "S3 access key (blank for the default credential chain)"},
	{Name: "storage_s3_secret_key", Default: "", Desc: "S3 secret key"},
	{Name: "storage_s3_prefix", Default: "", Desc: "S3 key prefix"},

	// Email configuration
	{Name: "mail_provider", Default: "log", Desc: "Mail transport: 'smtp', 'sendgrid' or 'log'"},
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "sendgrid_api_key", Default: "", Desc: "SendGrid API key"},
	{Name: "mail_from", Default: "noreply@memberhub.local", Desc: "From email address"},
	{Name: "mail_from_name", Default: "MemberHub", Desc: "From display name"},

	// Outbox delivery
	{Name: "outbox_interval", Default: "30s", Desc: "How often queued email is retried"},
	{Name: "outbox_max_attempts", Default: 5, Desc: "Delivery attempts before an email is marked failed"},

	// Site identity
	{Name: "site_name", Default: "MemberHub", Desc: "Organization name used in outgoing email"},
	{Name: "support_email", Default: "", Desc: "Contact address shown in outgoing email"},
	{Name: "base_url", Default: "http://localhost:8080", Desc: "Base URL for links in email"},

	// Administrator bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of the administrator created on startup if missing"},
	{Name: "admin_password", Default: "", Desc: "Initial password for admin_email"},

	// Handler deadlines
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document reads and writes"},
	{Name: "timeout_medium", Default: "15s", Desc: "Deadline for lists, uploads and stats"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for approvals"},

	{Name: "cors_allowed_origins", Default: "", Desc: "Comma-separated list of origins allowed to call the API"},
	{Name: "stats_cache_ttl", Default: "30s", Desc: "How long dashboard counts are cached"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// MEMBERHUB_* environment variables and flags, merged with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MEMBERHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 7*24*time.Hour),

		// File storage
		StorageType:      strings.ToLower(appValues.String("storage_type")),
		StorageLocalPath: appValues.String("storage_local_path"),
		SignedURLExpiry:  appValues.Duration("signed_url_expiry", time.Hour),

		// S3
		StorageS3Endpoint:  appValues.String("storage_s3_endpoint"),
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3AccessKey: appValues.String("storage_s3_access_key"),
		StorageS3SecretKey: appValues.String("storage_s3_secret_key"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),

		// Email
		MailProvider:   strings.ToLower(appValues.String("mail_provider")),
		MailSMTPHost:   appValues.String("mail_smtp_host"),
		MailSMTPPort:   appValues.Int("mail_smtp_port"),
		MailSMTPUser:   appValues.String("mail_smtp_user"),
		MailSMTPPass:   appValues.String("mail_smtp_pass"),
		SendGridAPIKey: appValues.String("sendgrid_api_key"),
		MailFrom:       appValues.String("mail_from"),
		MailFromName:   appValues.String("mail_from_name"),

		// Outbox
		OutboxInterval:    appValues.Duration("outbox_interval", 30*time.Second),
		OutboxMaxAttempts: appValues.Int("outbox_max_attempts"),

		// Site identity
		SiteName:     appValues.String("site_name"),
		SupportEmail: appValues.String("support_email"),
		BaseURL:      strings.TrimRight(appValues.String("base_url"), "/"),

		// Administrator
		AdminEmail:    appValues.String("admin_email"),
		AdminPassword: appValues.String("admin_password"),

		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),

		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),
		StatsCacheTTL:      appValues.Duration("stats_cache_ttl", 30*time.Second),

		// Audit logging
		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),
	}

	return coreCfg, appCfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// MemberHub validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and checks that the chosen
// storage and mail backends have what they need.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.StorageType {
	case "local":
		if appCfg.StorageLocalPath == "" {
			return fmt.Errorf("storage_type local requires storage_local_path")
		}
	case "s3":
		if appCfg.StorageS3Bucket == "" {
			return fmt.Errorf("storage_type s3 requires storage_s3_bucket")
		}
	default:
		return fmt.Errorf("unknown storage_type %q (want 'local' or 's3')", appCfg.StorageType)
	}

	switch appCfg.MailProvider {
	case mailer.ProviderSendGrid:
		if appCfg.SendGridAPIKey == "" {
			return fmt.Errorf("mail_provider sendgrid requires sendgrid_api_key")
		}
	case mailer.ProviderSMTP:
		if appCfg.MailSMTPHost == "" {
			return fmt.Errorf("mail_provider smtp requires mail_smtp_host")
		}
	case mailer.ProviderLog, "":
	default:
		return fmt.Errorf("unknown mail_provider %q", appCfg.MailProvider)
	}

	if appCfg.AdminEmail != "" && appCfg.AdminPassword == "" {
		return fmt.Errorf("admin_email requires admin_password")
	}

	return nil
}
