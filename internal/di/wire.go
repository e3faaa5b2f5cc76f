//go:build wireinject
// +build wireinject

package di

import (
	"wellpulse/pkg/config"
	"wellpulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,
		ProvidePublisher,

		// Repositories
		ProvideLogStore,
		ProvidePredictionStore,

		// Use cases
		ProvidePipelineRunner,
		ProvideBatchRunner,

		// Surfaces
		ProvideHTTPHandler,
		ProvideScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
