package di

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/repository"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/handler/api"
	mid "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/middleware"
	internalrepo "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/repository"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/service/agents"
	icache "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/service/cache"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/service/oanda"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/service/quantlabs"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/allocation"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/drift"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/environment"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/execution"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/governance"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/regime"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/usecase"
	pkgcache "github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/cache"
	pkgch "github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/clickhouse"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/config"
	pkgkafka "github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/kafka"
	applogger "github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/logger"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/metrics"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/queue"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	if cfg.Environment == "development" {
		level = "debug"
	}
	return applogger.New(&applogger.Config{Level: level, Format: "json", Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideRedisClient creates the shared Redis client, or nil when
// Redis is disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideBytesCache selects Redis-backed or in-process candle caching.
func ProvideBytesCache(cfg *config.Config) icache.BytesCache {
	if cfg.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideScanLocker provides the cross-replica drift-scan lock,
// Redis-backed when available.
func ProvideScanLocker(cfg *config.Config) (pkgcache.Service, error) {
	if cfg.Redis.Enabled {
		return pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(redisHost(cfg.Redis.Addr)),
			pkgcache.WithRedisPort(redisPort(cfg.Redis.Addr)),
			pkgcache.WithRedisPassword(cfg.Redis.Password),
			pkgcache.WithRedisDB(cfg.Redis.DB),
		)
	}
	return pkgcache.NewMemoryCache(), nil
}

func redisHost(addr string) string {
	if i := strings.LastIndex(addr, ":"); i > 0 {
		return addr[:i]
	}
	return addr
}

func redisPort(addr string) int {
	if i := strings.LastIndex(addr, ":"); i > 0 {
		if p, err := strconv.Atoi(addr[i+1:]); err == nil {
			return p
		}
	}
	return 6379
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideDecisionJournal creates the ClickHouse decision journal and
// initializes its schema.
func ProvideDecisionJournal(chClient *pkgch.Client) (repository.DecisionJournal, error) {
	journal := internalrepo.NewClickHouseJournal(chClient)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := journal.Init(ctx); err != nil {
		return nil, fmt.Errorf("journal schema: %w", err)
	}
	return journal, nil
}

// ProvideEventPublisher creates the Kafka event publisher.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.EventPublisher {
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.DecisionTopic, cfg.Kafka.AlertTopic)
}

// ProvidePriceStream creates the pricing gateway WebSocket stream.
func ProvidePriceStream(cfg *config.Config) repository.PriceStream {
	return oanda.NewStream(
		cfg.Oanda.APIToken,
		cfg.Oanda.WebSocketURL,
		cfg.Oanda.AccountID,
		cfg.Oanda.Pairs,
		cfg.Oanda.ReconnectDelay,
		cfg.Oanda.PingInterval,
	)
}

// ProvideCandleSource creates the REST candle source.
func ProvideCandleSource(cfg *config.Config, cache icache.BytesCache) repository.CandleSource {
	return oanda.NewCandles(cfg.Oanda.RestURL, cfg.Oanda.APIToken, cfg.Oanda.RestTimeout, cache)
}

// ProvideDirectionProvider creates the external direction service.
func ProvideDirectionProvider(cfg *config.Config) repository.DirectionProvider {
	return quantlabs.NewDirectionService(cfg.Direction.ServiceURL, cfg.Direction.Timeout, cfg.Direction.Retries)
}

// ProvideAgentRegistry creates the static agent weighting table.
func ProvideAgentRegistry() repository.AgentRegistry {
	return agents.NewRegistry(agents.DefaultProfiles())
}

// ProvideRegimeClassifier creates the regime classifier.
func ProvideRegimeClassifier() *regime.Classifier {
	return regime.New(regime.DefaultConfig())
}

// ProvideEnvironmentClassifier creates the environment rule tables.
func ProvideEnvironmentClassifier(riskCfg *allocation.DiscoveryRiskConfig) *environment.Classifier {
	return environment.New(environment.Thresholds{
		SpreadBlockPips:      riskCfg.SpreadBlockThreshold(),
		IgnitionMinComposite: riskCfg.IgnitionMinComposite(),
	})
}

// ProvideRiskConfig creates the runtime-tunable risk configuration.
func ProvideRiskConfig(cfg *config.Config) *allocation.DiscoveryRiskConfig {
	rc := allocation.NewDiscoveryRiskConfig()
	if cfg.Risk.EdgeBoostMultiplier > 0 {
		rc.SetEdgeBoostMultiplier(cfg.Risk.EdgeBoostMultiplier)
	}
	if cfg.Risk.BaselineReductionMultiplier > 0 {
		rc.SetBaselineReductionMultiplier(cfg.Risk.BaselineReductionMultiplier)
	}
	if cfg.Risk.SpreadBlockThreshold > 0 {
		rc.SetSpreadBlockThreshold(cfg.Risk.SpreadBlockThreshold)
	}
	if cfg.Risk.IgnitionMinComposite > 0 {
		rc.SetIgnitionMinComposite(cfg.Risk.IgnitionMinComposite)
	}
	rc.SetEnabled(cfg.Risk.Enabled)
	return rc
}

// ProvideAllocationEngine creates the risk allocation engine.
func ProvideAllocationEngine(riskCfg *allocation.DiscoveryRiskConfig, registry repository.AgentRegistry) *allocation.Engine {
	return allocation.NewEngine(riskCfg, registry)
}

// ProvideGovernanceEngine creates the governance engine.
func ProvideGovernanceEngine(cfg *config.Config) *governance.Engine {
	return governance.New(governance.Config{
		ApproveThreshold:   cfg.Governance.ApproveThreshold,
		ThrottleThreshold:  cfg.Governance.ThrottleThreshold,
		MaxFrictionShare:   cfg.Governance.MaxFrictionShare,
		MaxTradesPerWindow: cfg.Governance.MaxTradesPerWindow,
		SequencingWindow:   cfg.Governance.SequencingWindow,
		LossStreakLimit:    cfg.Governance.LossStreakLimit,
	})
}

// ProvideExecutionEngine creates the execution safety engine.
func ProvideExecutionEngine() *execution.Engine {
	return execution.NewEngine(execution.DefaultConfig())
}

// ProvideEdgeMemory creates the edge memory store.
func ProvideEdgeMemory() *drift.MemoryStore {
	return drift.NewMemoryStore()
}

// ProvideDriftMonitor creates the edge drift monitor.
func ProvideDriftMonitor(cfg *config.Config, store *drift.MemoryStore) *drift.Monitor {
	return drift.NewMonitor(drift.Config{
		MinTrades:                cfg.Drift.MinTrades,
		SlopeWindow:              cfg.Drift.SlopeWindow,
		ExpectancySlopeThreshold: cfg.Drift.ExpectancySlopeThreshold,
		SessionEntropyThreshold:  cfg.Drift.SessionEntropyThreshold,
		MinConfidenceForEntropy:  cfg.Drift.MinConfidenceForEntropy,
		DrawdownMultiple:         cfg.Drift.DrawdownMultiple,
		DecayFraction:            cfg.Drift.DecayFraction,
	}, store)
}

// ProvidePipeline creates the evaluation pipeline.
func ProvidePipeline(
	candles repository.CandleSource,
	direction repository.DirectionProvider,
	journal repository.DecisionJournal,
	publisher repository.EventPublisher,
	m repository.Metrics,
	log *applogger.Logger,
	regimes *regime.Classifier,
	envs *environment.Classifier,
	allocator *allocation.Engine,
	governor *governance.Engine,
	executor *execution.Engine,
	edgeMemory *drift.MemoryStore,
) *usecase.Pipeline {
	return usecase.NewPipeline(candles, direction, journal, publisher, m, log,
		regimes, envs, allocator, governor, executor, edgeMemory)
}

// ProvideStatusService creates the status and drift-scan service.
func ProvideStatusService(
	pipeline *usecase.Pipeline,
	allocator *allocation.Engine,
	executor *execution.Engine,
	monitor *drift.Monitor,
	memory *drift.MemoryStore,
	publisher repository.EventPublisher,
	m repository.Metrics,
	log *applogger.Logger,
	locker pkgcache.Service,
) *usecase.StatusService {
	return usecase.NewStatusService(pipeline, allocator, executor, monitor, memory, publisher, m, log, locker)
}

// ProvideTickCollector creates the tick collector with its middleware
// pipeline between the WebSocket stream and the spread observer.
func ProvideTickCollector(
	stream repository.PriceStream,
	executor *execution.Engine,
	m repository.Metrics,
) *usecase.TickCollector {
	observer := usecase.NewSpreadObserver(executor, m)
	pipe := mid.NewTickPipeline(observer, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewTickCollector(stream, m, pipe)
}

// ProvideTradeCloseHandler registers the closed-trade consumer.
func ProvideTradeCloseHandler(
	pipeline *usecase.Pipeline,
	executor *execution.Engine,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.TradeCloseHandler {
	return usecase.NewTradeCloseHandler(cfg.Kafka.TradeTopic, pipeline, executor, m)
}

// ProvideProposalQueue creates the Redis proposal intake queue, or nil
// when disabled.
func ProvideProposalQueue(
	cfg *config.Config,
	client *redis.Client,
	pipeline *usecase.Pipeline,
	log *applogger.Logger,
) *queue.RedisQueue {
	if !cfg.Queue.Enabled || client == nil {
		return nil
	}
	workers := cfg.Queue.Workers
	if workers <= 0 {
		workers = 4
	}
	qc := &queue.QueueConfig{
		Workers:    workers,
		QueueSize:  1000,
		RetryLimit: 3,
		RetryDelay: 5 * time.Second,
	}
	job := usecase.NewEvaluateProposalJob(pipeline)
	return queue.NewRedisConsumer(log, qc, client, []queue.Job{job},
		queue.WithKeyPrefix("scalpgov"))
}

// ProvidePipelineHandler creates the HTTP handler.
func ProvidePipelineHandler(
	log *applogger.Logger,
	pipeline *usecase.Pipeline,
	status *usecase.StatusService,
	riskCfg *allocation.DiscoveryRiskConfig,
) *api.PipelineEchoHandler {
	return api.NewPipelineEchoHandler(log, pipeline, status, riskCfg)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	closeHandler *usecase.TradeCloseHandler,
	proposalQueue *queue.RedisQueue,
	status *usecase.StatusService,
	handler *api.PipelineEchoHandler,
	chClient *pkgch.Client,
	m repository.Metrics,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.LatencyHook{
			OnLatency: func(topic string, elapsed time.Duration) {
				m.RecordLatency("consume_"+topic, elapsed.Seconds())
			},
			OnFailure: func(topic string) {
				m.RecordError("consume_" + topic)
			},
		})
	}
	return server.New(cfg, log, collector, consumer, closeHandler, proposalQueue, status, handler, chClient)
}
