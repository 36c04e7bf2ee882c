// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"pawmart_web/internal/apiclient"
	"pawmart_web/internal/app"
	"pawmart_web/internal/config"
	"pawmart_web/internal/dashboard"
	"pawmart_web/internal/handler"
	"pawmart_web/internal/identity"
	"pawmart_web/internal/jobs"
	"pawmart_web/internal/middleware"
	"pawmart_web/internal/platform/elasticsearch"
	"pawmart_web/internal/theme"
	"pawmart_web/internal/workspace"

	"github.com/google/wire"
)

var platformSet = wire.NewSet(
	provideLogger,
	apiclient.New,
	elasticsearch.NewClient,
)

var syncSet = wire.NewSet(
	wire.Bind(new(jobs.ListingSource), new(*apiclient.Client)),
	jobs.NewListingSyncJob,
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		platformSet,
		provideDatabase,
		provideRedis,
		provideSnapshotStore,

		// Identity provider
		identity.NewAdmin,
		provideAccounts,
		identity.NewGoogleOAuth,
		provideBlocklist,
		identity.NewService,
		wire.Bind(new(handler.IdentityProvider), new(*identity.Service)),

		// Workspaces
		theme.NewGORMStorage,
		wire.Bind(new(workspace.PreferenceStorage), new(*theme.GORMStorage)),
		wire.Bind(new(workspace.BackendAPI), new(*apiclient.Client)),
		workspace.NewRegistry,
		wire.Bind(new(handler.WorkspaceCounter), new(*workspace.Registry)),

		// Dashboard
		dashboard.NewESCounter,
		wire.Bind(new(dashboard.Source), new(*apiclient.Client)),
		dashboard.NewService,
		wire.Bind(new(handler.DashboardBuilder), new(*dashboard.Service)),

		// Handlers
		wire.Bind(new(handler.ListingReader), new(*apiclient.Client)),
		handler.NewHealthHandler,
		handler.NewSessionHandler,
		handler.NewThemeHandler,
		handler.NewListingHandler,
		handler.NewMyListingHandler,
		handler.NewOrderHandler,
		handler.NewAdminHandler,
		handler.NewDashboardHandler,
		wire.Struct(new(app.Handlers), "*"),

		middleware.NewRateLimiter,
		syncSet,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}

// initializeListingSync builds the one-shot mirror sync.
func initializeListingSync(cfg *config.Config) (*listingSync, func(), error) {
	wire.Build(
		platformSet,
		syncSet,
		wire.Struct(new(listingSync), "*"),
	)
	return nil, nil, nil
}
