//go:build wireinject
// +build wireinject

package di

import (
	"StockCast/pkg/config"
	"StockCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisCache,
		ProvideCandleArchive,
		ProvideEventPublisher,
		ProvideFinnhubClient,

		// Backends
		ProvideJobStore,
		ProvideQueue,

		// Pipeline
		ProvideEngine,
		ProvideAggregator,
		ProvideOrchestrator,

		// HTTP surface
		ProvideHTTPHandler,

		ProvideApp,
	)
	return &server.App{}, nil
}
