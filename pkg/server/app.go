package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	svcmetrics "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/service/metrics"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/usecase"
	pkgch "github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/clickhouse"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/config"
	xhttp "github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/http"
	pkgkafka "github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/kafka"
	applogger "github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/logger"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/queue"
)

// App owns process lifecycle: it starts the tick collector, the
// closed-trade consumer, the proposal intake queue, the drift
// scheduler and the HTTP API, then tears them down in reverse order on
// SIGINT/SIGTERM.
type App struct {
	cfg           *config.Config
	log           *applogger.Logger
	collector     *usecase.TickCollector
	consumer      *pkgkafka.Consumer
	closeHandler  *usecase.TradeCloseHandler
	proposalQueue *queue.RedisQueue
	status        *usecase.StatusService
	httpHandler   xhttp.Handler
	chClient      *pkgch.Client
	httpServer    *xhttp.Server
}

func New(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	closeHandler *usecase.TradeCloseHandler,
	proposalQueue *queue.RedisQueue,
	status *usecase.StatusService,
	httpHandler xhttp.Handler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:           cfg,
		log:           log,
		collector:     collector,
		consumer:      consumer,
		closeHandler:  closeHandler,
		proposalQueue: proposalQueue,
		status:        status,
		httpHandler:   httpHandler,
		chClient:      chClient,
	}
}

// Run brings every component up and blocks until a shutdown signal
// arrives.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svcmetrics.Register()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	go func() {
		if err := a.collector.Start(ctx); err != nil {
			a.log.Error("collector error", applogger.Error(err))
		}
	}()
	a.log.Info("tick collector started", applogger.Strings("pairs", a.cfg.Oanda.Pairs))

	// Closed-trade feedback is optional; without a topic the pipeline
	// still evaluates, it just never learns from outcomes.
	if a.consumer != nil && a.closeHandler != nil && a.closeHandler.Topic() != "" {
		a.consumer.RegisterHandler(a.closeHandler)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.closeHandler.Topic()))
	}

	if a.proposalQueue != nil {
		if err := a.proposalQueue.Start(); err != nil {
			a.log.Error("proposal queue start error", applogger.Error(err))
		} else {
			a.proposalQueue.StartRetryProcessor()
			a.log.Info("proposal queue started")
		}
	}

	a.status.StartDriftScheduler(ctx, a.cfg.Drift.ScanInterval)
	a.log.Info("drift scheduler started", applogger.Duration("interval", a.cfg.Drift.ScanInterval))

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown stops intake first (collector, HTTP, consumers) so no new
// work arrives while the storage clients drain.
func (a *App) shutdown(ctx context.Context) error {
	if err := a.collector.Shutdown(ctx); err != nil {
		a.log.Warn("collector stop error", applogger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.proposalQueue != nil {
		if err := a.proposalQueue.Stop(shutdownCtx); err != nil {
			a.log.Warn("proposal queue stop error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
