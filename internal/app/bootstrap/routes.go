// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditfeature "github.com/dalemusser/memberhub/internal/app/features/auditlog"
	filesfeature "github.com/dalemusser/memberhub/internal/app/features/files"
	healthfeature "github.com/dalemusser/memberhub/internal/app/features/health"
	inquiriesfeature "github.com/dalemusser/memberhub/internal/app/features/inquiries"
	loginfeature "github.com/dalemusser/memberhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/memberhub/internal/app/features/logout"
	membersfeature "github.com/dalemusser/memberhub/internal/app/features/members"
	outboxfeature "github.com/dalemusser/memberhub/internal/app/features/outbox"
	registrationsfeature "github.com/dalemusser/memberhub/internal/app/features/registrations"
	statsfeature "github.com/dalemusser/memberhub/internal/app/features/stats"
	userinfofeature "github.com/dalemusser/memberhub/internal/app/features/userinfo"
	inquirystore "github.com/dalemusser/memberhub/internal/app/store/inquiries"
	userstore "github.com/dalemusser/memberhub/internal/app/store/users"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. MemberHub applies request middleware and session
// loading, then mounts one router per feature.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	svc := deps.services
	db := deps.MongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser fetches fresh user data on each request so role and
	// profile changes take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(appCfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   appCfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Signed photo and logo downloads (local backend only; S3 URLs point at the bucket)
	if svc.local != nil {
		filesHandler := filesfeature.NewHandler(svc.local, logger)
		r.Mount(filesURLBase, filesfeature.Routes(filesHandler))
	}

	// Authentication
	loginHandler := loginfeature.NewHandler(svc.users, sessionMgr, svc.loginLimiter, svc.audit, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, svc.audit, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	userinfofeature.MountRoutes(r, userinfofeature.NewHandler())

	// Membership workflow
	regHandler := registrationsfeature.NewHandler(svc.membership, svc.audit, logger)
	r.Mount("/register", registrationsfeature.Routes(regHandler, sessionMgr, svc.publicLimiter))

	membersHandler := membersfeature.NewHandler(svc.membership, svc.audit, logger)
	r.Mount("/users", membersfeature.Routes(membersHandler, sessionMgr))

	inquiriesHandler := inquiriesfeature.NewHandler(inquirystore.New(db), svc.audit, logger)
	r.Mount("/inquiries", inquiriesfeature.Routes(inquiriesHandler, sessionMgr, svc.publicLimiter))

	// Administration
	statsHandler := statsfeature.NewHandler(db, appCfg.StatsCacheTTL, logger)
	r.Mount("/stats", statsfeature.Routes(statsHandler, sessionMgr))

	outboxHandler := outboxfeature.NewHandler(svc.outbox, svc.audit, svc.dispatcher.Kick, logger)
	r.Mount("/outbox", outboxfeature.Routes(outboxHandler, sessionMgr))

	auditHandler := auditfeature.NewHandler(svc.events, svc.users, logger)
	r.Mount("/audit", auditfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}
