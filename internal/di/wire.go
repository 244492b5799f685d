//go:build wireinject
// +build wireinject

package di

import (
	"xfin/pkg/config"
	"xfin/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideClickHouseClient,
		ProvideEventPublisher,

		// Repositories
		ProvideCacheStore,
		ProvideRecordStorage,

		// Domain components
		ProvideRegistry,
		ProvideCalendar,
		ProvideStatusStore,
		ProvideCollector,
		ProvideScheduler,
		ProvideAggregator,

		// HTTP surface and application server
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
