// Code generated by Wire. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package di

import (
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/config"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/server"
)

// Injectors from wire.go:

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	priceStream := ProvidePriceStream(cfg)
	engine := ProvideExecutionEngine()
	metrics := ProvideMetrics()
	tickCollector := ProvideTickCollector(priceStream, engine, metrics)
	consumer, err := ProvideKafkaConsumer(cfg)
	if err != nil {
		return nil, err
	}
	bytesCache := ProvideBytesCache(cfg)
	candleSource := ProvideCandleSource(cfg, bytesCache)
	directionProvider := ProvideDirectionProvider(cfg)
	client, err := ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, err
	}
	decisionJournal, err := ProvideDecisionJournal(client)
	if err != nil {
		return nil, err
	}
	producer, err := ProvideKafkaProducer(cfg)
	if err != nil {
		return nil, err
	}
	eventPublisher := ProvideEventPublisher(producer, cfg)
	classifier := ProvideRegimeClassifier()
	discoveryRiskConfig := ProvideRiskConfig(cfg)
	environmentClassifier := ProvideEnvironmentClassifier(discoveryRiskConfig)
	agentRegistry := ProvideAgentRegistry()
	allocationEngine := ProvideAllocationEngine(discoveryRiskConfig, agentRegistry)
	governanceEngine := ProvideGovernanceEngine(cfg)
	memoryStore := ProvideEdgeMemory()
	pipeline := ProvidePipeline(candleSource, directionProvider, decisionJournal, eventPublisher, metrics, logger, classifier, environmentClassifier, allocationEngine, governanceEngine, engine, memoryStore)
	tradeCloseHandler := ProvideTradeCloseHandler(pipeline, engine, metrics, cfg)
	redisClient := ProvideRedisClient(cfg)
	redisQueue := ProvideProposalQueue(cfg, redisClient, pipeline, logger)
	monitor := ProvideDriftMonitor(cfg, memoryStore)
	service, err := ProvideScanLocker(cfg)
	if err != nil {
		return nil, err
	}
	statusService := ProvideStatusService(pipeline, allocationEngine, engine, monitor, memoryStore, eventPublisher, metrics, logger, service)
	pipelineEchoHandler := ProvidePipelineHandler(logger, pipeline, statusService, discoveryRiskConfig)
	app := ProvideApp(cfg, logger, tickCollector, consumer, tradeCloseHandler, redisQueue, statusService, pipelineEchoHandler, client, metrics)
	return app, nil
}
