// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/flocklabs/flockhub/internal/app/system/indexes"
	"go.uber.org/zap"
)

// EnsureSchema creates the indexes every collection relies on. Failure
// aborts startup: the uniqueness guarantees on users, members, and
// attendance are not enforceable without them.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return err
	}
	logger.Info("indexes ensured")
	return nil
}
