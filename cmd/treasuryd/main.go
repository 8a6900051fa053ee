package main

import (
	"StableTreasury/internal/auction"
	"StableTreasury/internal/config"
	"StableTreasury/internal/currency"
	"StableTreasury/internal/event"
	"StableTreasury/internal/exchange"
	"StableTreasury/internal/observability"
	"StableTreasury/internal/outbound"
	"StableTreasury/internal/persistence"
	"StableTreasury/internal/treasury"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	log := observability.NewLogger("treasuryd")
	log.Info().Msg("treasury daemon starting")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// --- Postgres ---
	db, err := sql.Open("postgres", cfg.Postgres.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres open")
	}
	defer db.Close()

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("postgres ping")
	}
	log.Info().Msg("postgres connected")

	migrator := persistence.NewMigrator(db, cfg.Postgres.MigrationsDir, log)
	if err := migrator.Up(ctx); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	// --- Sequence recovery ---
	writer := persistence.NewEventLogWriter(db)
	lastSeq, err := writer.LastSequence(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("read last event sequence")
	}

	// --- Channels + event sink ---
	// The persist channel blocks so no event is ever dropped from the
	// log; the publish channel drops under backpressure since NATS
	// consumers can re-read the log.
	metrics := observability.NewMetrics()
	healthChecker := observability.NewHealthChecker()

	persistChan := make(chan event.Envelope, cfg.Persistence.BatchSize*4)
	publishChan := make(chan event.Envelope, cfg.Persistence.PublishDepth)

	var seq atomic.Int64
	seq.Store(lastSeq)

	sink := event.Sink(func(evt event.Event) {
		env := event.Envelope{
			Sequence:  seq.Add(1),
			Timestamp: time.Now().UTC(),
			Event:     evt,
		}
		persistChan <- env
		select {
		case publishChan <- env:
		default:
			metrics.PublishDrops.Inc()
		}
	})

	// --- Core assembly ---
	ledger := currency.NewBook()
	auctions := auction.NewBook(sink)

	venue := exchange.NewFixedRateVenue(ledger)
	stable := currency.Asset(cfg.Treasury.StableAsset)
	for _, r := range cfg.Exchange.Rates {
		if err := venue.SetRate(currency.Asset(r.Supply), currency.Asset(r.Target), exchange.Rate{Num: r.Num, Den: r.Den}); err != nil {
			log.Fatal().Err(err).Str("supply", r.Supply).Str("target", r.Target).Msg("configure exchange rate")
		}
	}

	maxSizes := make(map[currency.Asset]uint64, len(cfg.Treasury.CollateralAuctionMaxSizes))
	for asset, size := range cfg.Treasury.CollateralAuctionMaxSizes {
		maxSizes[currency.Asset(asset)] = size
	}

	params := treasury.NewParams(
		treasury.AllowOrigins("admin"),
		sink,
		metrics,
		treasury.ParamsGenesis{
			SurplusAuctionFixedSize:      cfg.Treasury.SurplusAuctionFixedSize,
			SurplusBufferSize:            cfg.Treasury.SurplusBufferSize,
			InitialAmountPerDebitAuction: cfg.Treasury.InitialAmountPerDebitAuction,
			DebitAuctionFixedSize:        cfg.Treasury.DebitAuctionFixedSize,
			MaxAuctionsCount:             cfg.Treasury.MaxAuctionsCount,
			CollateralAuctionMaximumSize: maxSizes,
		},
	)

	tr := treasury.New(treasury.Deps{
		Currency:    ledger,
		Auctions:    auctions,
		Exchange:    venue,
		Params:      params,
		StableAsset: stable,
		Events:      sink,
		Metrics:     metrics,
		Logger:      observability.NewLogger("treasury"),
	})

	// --- Snapshot restore ---
	snapMgr := persistence.NewSnapshotManager(db)
	snap, err := snapMgr.LoadLatest(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("load snapshot failed")
	}
	if snap != nil {
		tr.Restore(snap.DebitPool, snap.SurplusPool, snap.Collaterals, snap.IsShutdown)
		log.Info().Int64("sequence", snap.Sequence).
			Uint64("debit_pool", snap.DebitPool).
			Uint64("surplus_pool", snap.SurplusPool).
			Msg("restored treasury state from snapshot")
	} else {
		log.Info().Msg("no snapshot found, cold start")
	}

	svc := &service{tr: tr, seq: &seq, snapMgr: snapMgr, log: log}

	// --- NATS ---
	nc, js, err := outbound.ConnectNATS(cfg.NATS.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("nats connect")
	}
	defer nc.Close()
	log.Info().Str("url", cfg.NATS.URL).Msg("nats connected")

	if err := outbound.EnsureStream(ctx, js); err != nil {
		log.Fatal().Err(err).Msg("ensure nats stream")
	}

	publisher := outbound.NewPublisher(js, publishChan, observability.NewLogger("outbound"))

	// --- Workers ---
	errChan := make(chan error, 4)

	flushTimeout := time.Duration(cfg.Persistence.FlushMillis) * time.Millisecond
	persistWorker := persistence.NewWorker(db, persistChan, cfg.Persistence.BatchSize, flushTimeout, metrics, observability.NewLogger("persistence"))
	go func() {
		errChan <- persistWorker.Run(ctx)
	}()

	go func() {
		errChan <- publisher.Run(ctx)
	}()

	// --- Cron: cycle execution + periodic snapshots ---
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Schedule.CycleCron, svc.runCycle); err != nil {
		log.Fatal().Err(err).Str("expr", cfg.Schedule.CycleCron).Msg("schedule cycle")
	}
	if _, err := scheduler.AddFunc(cfg.Schedule.SnapshotCron, func() { svc.saveSnapshot(ctx) }); err != nil {
		log.Fatal().Err(err).Str("expr", cfg.Schedule.SnapshotCron).Msg("schedule snapshot")
	}
	scheduler.Start()

	// --- Metrics + health server ---
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", healthChecker.LivenessHandler)
		mux.HandleFunc("/readyz", healthChecker.ReadinessHandler)
		srv := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: mux}
		go func() {
			<-ctx.Done()
			shutCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
			defer c()
			srv.Shutdown(shutCtx)
		}()
		log.Info().Str("addr", cfg.Metrics.ListenAddr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	healthChecker.SetReady(true)
	log.Info().Int64("sequence", lastSeq).
		Str("cycle_cron", cfg.Schedule.CycleCron).
		Str("stable_asset", cfg.Treasury.StableAsset).
		Msg("treasury daemon ready")

	// --- Wait for shutdown ---
	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errChan:
		log.Error().Err(err).Msg("worker failed, shutting down")
	}

	scheduler.Stop()

	// Final snapshot before the workers drain.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	svc.saveSnapshot(shutdownCtx)

	// Closing the persist channel flushes the remaining batch.
	close(persistChan)
	close(publishChan)
	cancel()

	time.Sleep(500 * time.Millisecond)
	log.Info().Msg("treasury daemon shutdown complete")
}

// service serializes treasury mutation. The core is single-threaded; the
// cron scheduler and any administrative surface go through this mutex.
type service struct {
	mu      sync.Mutex
	tr      *treasury.Treasury
	seq     *atomic.Int64
	snapMgr *persistence.SnapshotManager
	log     zerolog.Logger
}

func (s *service) runCycle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tr.EndCycle()
}

func (s *service) saveSnapshot(ctx context.Context) {
	s.mu.Lock()
	snap := persistence.StateSnapshot{
		DebitPool:   s.tr.DebitPool(),
		SurplusPool: s.tr.SurplusPool(),
		Collaterals: s.tr.CollateralTotals(),
		IsShutdown:  s.tr.IsShutdown(),
		Sequence:    s.seq.Load(),
		CreatedAt:   time.Now().UTC(),
	}
	s.mu.Unlock()

	if err := s.snapMgr.Save(ctx, snap); err != nil {
		s.log.Warn().Err(err).Msg("snapshot save failed")
		return
	}
	s.log.Info().Int64("sequence", snap.Sequence).Msg("snapshot saved")
}
