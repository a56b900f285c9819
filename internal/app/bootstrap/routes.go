// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/flocklabs/flockhub/internal/app/ai"
	adminfeature "github.com/flocklabs/flockhub/internal/app/features/admin"
	attendancefeature "github.com/flocklabs/flockhub/internal/app/features/attendance"
	authapifeature "github.com/flocklabs/flockhub/internal/app/features/authapi"
	eventsfeature "github.com/flocklabs/flockhub/internal/app/features/events"
	healthfeature "github.com/flocklabs/flockhub/internal/app/features/health"
	imagesfeature "github.com/flocklabs/flockhub/internal/app/features/images"
	membersfeature "github.com/flocklabs/flockhub/internal/app/features/members"
	metafeature "github.com/flocklabs/flockhub/internal/app/features/meta"
	attendancesvc "github.com/flocklabs/flockhub/internal/app/service/attendance"
	eventsvc "github.com/flocklabs/flockhub/internal/app/service/events"
	insightsvc "github.com/flocklabs/flockhub/internal/app/service/insight"
	membersvc "github.com/flocklabs/flockhub/internal/app/service/members"
	usersvc "github.com/flocklabs/flockhub/internal/app/service/users"
	attendancestore "github.com/flocklabs/flockhub/internal/app/store/attendance"
	backupstore "github.com/flocklabs/flockhub/internal/app/store/backup"
	eventstore "github.com/flocklabs/flockhub/internal/app/store/events"
	memberstore "github.com/flocklabs/flockhub/internal/app/store/members"
	userstore "github.com/flocklabs/flockhub/internal/app/store/users"
	"github.com/flocklabs/flockhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. FlockHub builds its stores and
// services here, applies the token authenticator globally so every
// handler can see the current user, and mounts the JSON API under
// /api/v1 with the health check at the root.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Stores, one per collection.
	members := memberstore.New(deps.MongoDatabase)
	records := attendancestore.New(deps.MongoDatabase)
	events := eventstore.New(deps.MongoDatabase)
	users := userstore.New(deps.MongoDatabase)
	backup := backupstore.New(deps.MongoDatabase, logger)

	// Services on top of the stores.
	memberSvc := membersvc.New(members, logger)
	attendanceSvc := attendancesvc.New(records, members, logger)
	eventSvc := eventsvc.New(events, logger)
	userSvc := usersvc.New(users, logger)

	generator := ai.New(ai.Config{
		Provider:     appCfg.AIProvider,
		GeminiAPIKey: appCfg.GeminiAPIKey,
		BaseURL:      appCfg.AIBaseURL,
		LocalModel:   appCfg.AIModel,
		Timeout:      appCfg.AITimeout,
	}, logger)
	insightSvc := insightsvc.New(generator, logger)

	tokens := auth.NewTokenManager(appCfg.TokenSecret, appCfg.AccessTokenTTL, appCfg.RefreshTokenTTL)

	r := chi.NewRouter()

	// Global auth middleware: resolves a bearer token or cookie to a
	// fresh user record on every request. Routes opt in to enforcement
	// with RequireSignedIn / RequireAdmin.
	r.Use(auth.Authenticator(tokens, users))

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authapifeature.Routes(authapifeature.NewHandler(userSvc, tokens, logger)))
		r.Mount("/members", membersfeature.Routes(membersfeature.NewHandler(memberSvc, insightSvc, logger)))
		r.Mount("/attendance", attendancefeature.Routes(attendancefeature.NewHandler(attendanceSvc, logger)))
		r.Mount("/events", eventsfeature.Routes(eventsfeature.NewHandler(eventSvc, logger)))
		r.Mount("/admin", adminfeature.Routes(adminfeature.NewHandler(userSvc, backup, logger)))
		r.Mount("/meta", metafeature.Routes(metafeature.NewHandler()))
		r.Mount("/images", imagesfeature.Routes(imagesfeature.NewHandler(logger)))
	})

	return r, nil
}
