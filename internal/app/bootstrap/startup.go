// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/waffle/config"
	usersvc "github.com/flocklabs/flockhub/internal/app/service/users"
	"github.com/flocklabs/flockhub/internal/app/store/generic"
	userstore "github.com/flocklabs/flockhub/internal/app/store/users"
	"github.com/flocklabs/flockhub/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// FlockHub uses it to guarantee an admin account exists so a fresh
// deployment is reachable.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminEmail == "" {
		return nil
	}
	return ensureAdminUser(ctx, deps, appCfg.AdminEmail, appCfg.AdminPassword, logger)
}

// ensureAdminUser creates the configured admin account if no account
// with that email exists, and promotes an existing account that lacks
// the admin flag. An existing admin is left untouched.
func ensureAdminUser(ctx context.Context, deps DBDeps, email, password string, logger *zap.Logger) error {
	store := userstore.New(deps.MongoDatabase)
	users := usersvc.New(store, logger)

	existing, err := store.GetByEmail(ctx, email)
	if err == nil {
		if existing.IsAdmin {
			return nil
		}
		logger.Info("promoting existing user to admin",
			zap.String("email", existing.Email))
		_, err = store.Update(ctx, existing.ID.Hex(), bson.M{"is_admin": true})
		return err
	}
	if !errors.Is(err, generic.ErrNotFound) {
		return err
	}

	username := adminUsername(email)
	_, err = users.Create(ctx, usersvc.CreateInput{
		Email:    email,
		Username: username,
		Password: password,
		IsAdmin:  true,
	})
	if err != nil {
		return err
	}
	logger.Info("created initial admin user",
		zap.String("email", normalize.Email(email)),
		zap.String("username", username))
	return nil
}

// adminUsername derives a username from the local part of the email.
func adminUsername(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return normalize.Username(local)
}
