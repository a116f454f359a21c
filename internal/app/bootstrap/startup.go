// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/memberhub/internal/app/membership"
	"github.com/dalemusser/memberhub/internal/app/store/audit"
	counterstore "github.com/dalemusser/memberhub/internal/app/store/counters"
	outboxstore "github.com/dalemusser/memberhub/internal/app/store/outbox"
	registrationstore "github.com/dalemusser/memberhub/internal/app/store/registrations"
	userstore "github.com/dalemusser/memberhub/internal/app/store/users"
	"github.com/dalemusser/memberhub/internal/app/system/auditlog"
	"github.com/dalemusser/memberhub/internal/app/system/blobstore"
	"github.com/dalemusser/memberhub/internal/app/system/mailer"
	"github.com/dalemusser/memberhub/internal/app/system/ratelimit"
	"github.com/dalemusser/memberhub/internal/app/system/tasks"
	"github.com/dalemusser/memberhub/internal/app/system/timeouts"
	"github.com/dalemusser/memberhub/internal/app/system/txn"
	"github.com/dalemusser/memberhub/internal/app/system/workers"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// filesURLBase is where the local blob backend's signed URLs are served.
const filesURLBase = "/files"

// sentMailRetention is how long delivered email rows are kept.
const sentMailRetention = 30 * 24 * time.Hour

// services are the long-lived collaborators built once at startup.
type services struct {
	membership *membership.Service
	users      *userstore.Store
	outbox     *outboxstore.Store
	events     *audit.Store
	audit      *auditlog.Logger

	local *blobstore.Local // nil unless storage_type is local

	dispatcher *workers.MailDispatcher
	scheduler  *tasks.Scheduler

	publicLimiter *ratelimit.Limiter
	loginLimiter  *ratelimit.LoginLimiter
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It
// ensures the bootstrap administrator exists and starts the mail workers.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase
	svc := deps.services

	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	svc.users = userstore.New(db)
	svc.outbox = outboxstore.New(db)
	svc.events = audit.New(db)
	svc.audit = auditlog.New(svc.events, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	if err := ensureAdmin(ctx, svc.users, appCfg.AdminEmail, appCfg.AdminPassword, logger); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	blobs, err := buildBlobStore(ctx, appCfg, svc)
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}

	sender, err := mailer.New(mailer.Config{
		Provider:       appCfg.MailProvider,
		SMTPHost:       appCfg.MailSMTPHost,
		SMTPPort:       appCfg.MailSMTPPort,
		SMTPUser:       appCfg.MailSMTPUser,
		SMTPPass:       appCfg.MailSMTPPass,
		SendGridAPIKey: appCfg.SendGridAPIKey,
		From:           appCfg.MailFrom,
		FromName:       appCfg.MailFromName,
	}, logger)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}

	svc.dispatcher = workers.NewMailDispatcher(svc.outbox, sender, logger, workers.MailDispatcherConfig{
		MaxAttempts: appCfg.OutboxMaxAttempts,
	})
	svc.dispatcher.Start()

	svc.membership = membership.New(membership.Deps{
		Registrations: registrationstore.New(db),
		Users:         svc.users,
		Counters:      counterstore.New(db),
		Outbox:        svc.outbox,
		Blobs:         blobs,
		Txn:           txn.New(deps.MongoClient, logger),
		Log:           logger,
		Kick:          svc.dispatcher.Kick,
	}, membership.Options{
		SiteName:        appCfg.SiteName,
		SupportEmail:    appCfg.SupportEmail,
		BaseURL:         appCfg.BaseURL,
		SignedURLExpiry: appCfg.SignedURLExpiry,
	})

	svc.scheduler = tasks.NewScheduler(logger)
	for _, job := range []tasks.Job{
		tasks.MailDispatchJob(svc.dispatcher, logger, appCfg.OutboxInterval),
		tasks.SentMailPurgeJob(svc.outbox, logger, sentMailRetention),
	} {
		if err := svc.scheduler.Add(job); err != nil {
			return fmt.Errorf("schedule %s: %w", job.Name, err)
		}
	}
	svc.scheduler.Start()

	svc.publicLimiter = ratelimit.New(20, time.Minute)
	svc.loginLimiter = ratelimit.NewLoginLimiter()

	logger.Info("startup complete",
		zap.String("storage", appCfg.StorageType),
		zap.String("mail_provider", appCfg.MailProvider))
	return nil
}

func buildBlobStore(ctx context.Context, appCfg AppConfig, svc *services) (blobstore.Store, error) {
	if appCfg.StorageType == "s3" {
		return blobstore.NewS3(ctx, blobstore.S3Config{
			Endpoint:  appCfg.StorageS3Endpoint,
			Region:    appCfg.StorageS3Region,
			Bucket:    appCfg.StorageS3Bucket,
			AccessKey: appCfg.StorageS3AccessKey,
			SecretKey: appCfg.StorageS3SecretKey,
			Prefix:    appCfg.StorageS3Prefix,
		})
	}

	// File tokens are signed with a key derived from session_key.
	key := sha256.Sum256([]byte("memberhub-files:" + appCfg.SessionKey))
	local, err := blobstore.NewLocal(appCfg.StorageLocalPath, filesURLBase, key[:])
	if err != nil {
		return nil, err
	}
	svc.local = local
	return local, nil
}

// ensureAdmin creates the configured administrator if no user holds that
// email. An existing account is left untouched.
func ensureAdmin(ctx context.Context, users *userstore.Store, email, password string, logger *zap.Logger) error {
	if email == "" {
		exists, err := users.AdminExists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			logger.Warn("no administrator account exists; set admin_email and admin_password to create one")
		}
		return nil
	}

	existing, err := users.GetByEmail(ctx, email)
	if err == nil {
		if !existing.IsAdmin() {
			logger.Warn("admin_email belongs to a member account; not promoting", zap.String("email", existing.Email))
		}
		return nil
	}
	if !errors.Is(err, userstore.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u, err := users.Create(ctx, models.User{
		Profile:      models.Profile{Name: "Administrator", Email: email},
		Role:         models.RoleAdmin,
		PasswordHash: string(hash),
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("created administrator account", zap.String("email", u.Email))
	return nil
}
