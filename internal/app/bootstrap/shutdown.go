// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops the background workers, then disconnects MongoDB.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if svc := deps.services; svc != nil {
		if svc.scheduler != nil {
			svc.scheduler.Stop(ctx)
		}
		if svc.dispatcher != nil {
			svc.dispatcher.Stop()
		}
		if svc.publicLimiter != nil {
			svc.publicLimiter.Stop()
		}
		if svc.loginLimiter != nil {
			svc.loginLimiter.Stop()
		}
	}

	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
