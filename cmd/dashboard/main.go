package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockdesk/dashboard/internal/clients/backend"
	"github.com/stockdesk/dashboard/internal/config"
	"github.com/stockdesk/dashboard/internal/events"
	"github.com/stockdesk/dashboard/internal/modules/aggregation"
	"github.com/stockdesk/dashboard/internal/modules/chartsession"
	"github.com/stockdesk/dashboard/internal/modules/history"
	"github.com/stockdesk/dashboard/internal/modules/periods"
	"github.com/stockdesk/dashboard/internal/modules/stats"
	"github.com/stockdesk/dashboard/internal/modules/trading"
	"github.com/stockdesk/dashboard/internal/scheduler"
	"github.com/stockdesk/dashboard/internal/server"
	"github.com/stockdesk/dashboard/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{
		Level:  "info",
		Pretty: true,
	})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting Stockdesk dashboard")

	requestTimeout := time.Duration(cfg.RequestTimeoutMS) * time.Millisecond

	client := backend.NewClient(cfg.BackendURL, requestTimeout, log)
	eventMgr := events.NewManager(log)

	aggSvc := aggregation.NewService(client, eventMgr, log)
	historyStore := history.NewStore(client, eventMgr, log)
	chartMgr := chartsession.NewManager(client, chartsession.NewModelRenderer(), eventMgr, log)
	tradeCoord := trading.NewCoordinator(client, historyStore, eventMgr, log)
	statsSvc := stats.NewService(client, log)

	sched := scheduler.New(log)
	var marketHours *scheduler.MarketHoursService
	if cfg.MarketHoursOnly {
		marketHours = scheduler.NewMarketHoursService(log)
	}
	aggJob := scheduler.NewAggregationRefreshJob(aggSvc, marketHours, requestTimeout*4, log)
	if err := sched.AddJob(cfg.AggRefreshSpec, aggJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register aggregation refresh job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:        cfg.Port,
		Log:         log,
		DevMode:     cfg.DevMode,
		Aggregation: aggSvc,
		Charts:      chartMgr,
		Trading:     tradeCoord,
		History:     historyStore,
		Stats:       statsSvc,
		Events:      eventMgr,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	go warmUp(cfg, sched, aggJob, historyStore, chartMgr, log)

	log.Info().Int("port", cfg.Port).Str("backend", cfg.BackendURL).Msg("Dashboard started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Dashboard stopped")
}

// warmUp primes the pipeline so the first browser request sees data: trade
// history, one aggregation cycle, and the default chart selection. Failures
// are logged and retried by the normal refresh paths.
func warmUp(
	cfg *config.Config,
	sched *scheduler.Scheduler,
	aggJob *scheduler.AggregationRefreshJob,
	historyStore *history.Store,
	chartMgr *chartsession.Manager,
	log zerolog.Logger,
) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := historyStore.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial history fetch failed")
	}

	if err := sched.RunNow(aggJob); err != nil {
		log.Warn().Err(err).Msg("Initial aggregation cycle failed")
	}

	period := periods.Period(cfg.DefaultPeriod)
	interval := periods.Resolve(period).DefaultInterval
	if ok := chartMgr.SetSession(ctx, cfg.DefaultTicker, period, interval); !ok {
		log.Warn().Str("ticker", cfg.DefaultTicker).Msg("Initial chart fetch failed")
	}
}
