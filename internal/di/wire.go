//go:build wireinject
// +build wireinject

package di

import (
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/config"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisClient,
		ProvideBytesCache,
		ProvideScanLocker,

		// Repositories
		ProvideDecisionJournal,
		ProvideEventPublisher,
		ProvidePriceStream,
		ProvideCandleSource,
		ProvideDirectionProvider,
		ProvideAgentRegistry,

		// Domain engines
		ProvideRiskConfig,
		ProvideRegimeClassifier,
		ProvideEnvironmentClassifier,
		ProvideAllocationEngine,
		ProvideGovernanceEngine,
		ProvideExecutionEngine,
		ProvideEdgeMemory,
		ProvideDriftMonitor,

		// Use cases
		ProvidePipeline,
		ProvideStatusService,
		ProvideTickCollector,
		ProvideTradeCloseHandler,
		ProvideProposalQueue,

		// Transport
		ProvidePipelineHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
