package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/birdieworks/fairway/internal/adapters/repository"
	"github.com/birdieworks/fairway/internal/adapters/scheduler"
	service "github.com/birdieworks/fairway/internal/app"
	"github.com/birdieworks/fairway/internal/config"
	"github.com/birdieworks/fairway/internal/domain/recompute"
	"github.com/birdieworks/fairway/pkg/logger"
	"github.com/birdieworks/fairway/pkg/metrics"
)

// HTTP server timeout constants for the metrics endpoint.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

const usage = `usage: fairway <command> [flags]

commands:
  price              run one pricing cycle and persist new prices
  recompute [-apply] re-derive point breakdowns (preview by default)
  rebuild [-apply]   recompute breakdowns, then reprice, in one cycle
  schedule           run pricing on the configured cron schedule
`

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if len(os.Args) < 2 {
		os.Stderr.WriteString(usage)
		os.Exit(2)
	}

	store, err := repository.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Error(ctx, "failed to open store", logger.String("db_path", cfg.DBPath), logger.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	opts := append(service.FromConfig(cfg),
		service.WithStore(store),
		service.WithLogger(log),
	)
	svc := service.New(opts...)

	switch os.Args[1] {
	case "price":
		if err := runPrice(ctx, svc); err != nil {
			log.Error(ctx, "pricing run failed", logger.Error(err))
			os.Exit(1)
		}
	case "recompute":
		if err := runRecompute(ctx, svc, os.Args[2:]); err != nil {
			log.Error(ctx, "recomputation failed", logger.Error(err))
			os.Exit(1)
		}
	case "rebuild":
		if err := runRebuild(ctx, svc, os.Args[2:]); err != nil {
			log.Error(ctx, "rebuild failed", logger.Error(err))
			os.Exit(1)
		}
	case "schedule":
		if err := runSchedule(ctx, svc, cfg, log); err != nil {
			log.Error(ctx, "scheduler failed", logger.Error(err))
			os.Exit(1)
		}
	default:
		os.Stderr.WriteString(usage)
		os.Exit(2)
	}
}

func runPrice(ctx context.Context, svc *service.Service) error {
	run, err := svc.RunPricing(ctx)
	if err != nil {
		return err
	}
	for _, p := range run.Prices {
		fmt.Printf("%s\t%d -> %d\n", p.GolferID, p.OldPrice, p.NewPrice)
	}
	return nil
}

func runRecompute(ctx context.Context, svc *service.Service, args []string) error {
	flags := flag.NewFlagSet("recompute", flag.ExitOnError)
	apply := flags.Bool("apply", false, "write recomputed breakdowns instead of previewing")
	if err := flags.Parse(args); err != nil {
		return err
	}
	mode := recompute.ModePreview
	if *apply {
		mode = recompute.ModeApply
	}
	outcome, err := svc.Recompute(ctx, mode)
	if err != nil {
		return err
	}
	s := outcome.Summary
	fmt.Printf("mode=%s rows=%d matched=%d unmatched=%d fallback=%d before=%.2f after=%.2f drift=%.2f\n",
		mode, s.Rows, s.Matched, s.Unmatched, s.FallbackApplied, s.PointsBefore, s.PointsAfter, s.Drift())
	return nil
}

func runRebuild(ctx context.Context, svc *service.Service, args []string) error {
	flags := flag.NewFlagSet("rebuild", flag.ExitOnError)
	apply := flags.Bool("apply", false, "write recomputed breakdowns before repricing")
	if err := flags.Parse(args); err != nil {
		return err
	}
	mode := recompute.ModePreview
	if *apply {
		mode = recompute.ModeApply
	}
	run, outcome, err := svc.Rebuild(ctx, mode)
	if err != nil {
		return err
	}
	fmt.Printf("golfers=%d inversions=%d over_cap=%d drift=%.2f (rows=%d matched=%d fallback=%d)\n",
		len(run.Prices), len(run.Report.RankInversions), len(run.Report.OverBudgetRosters),
		run.Report.PointDriftTotal, outcome.Summary.Rows, outcome.Summary.Matched,
		outcome.Summary.FallbackApplied)
	return nil
}

func runSchedule(ctx context.Context, svc *service.Service, cfg *config.Config, log logger.Logger) error {
	if cfg.Schedule == "" {
		return fmt.Errorf("schedule command requires a cron expression in config (schedule)")
	}

	sched := scheduler.New(svc, scheduler.WithLogger(log))
	if err := sched.Register(ctx, cfg.Schedule); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()
	log.Info(ctx, "scheduler started", logger.String("schedule", cfg.Schedule))

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error(ctx, "metrics endpoint failed", logger.Error(err))
			}
		}()
		defer srv.Close()
		log.Info(ctx, "metrics endpoint listening", logger.String("addr", cfg.MetricsAddr))
	}

	<-ctx.Done()
	log.Info(context.Background(), "shutting down scheduler")
	return nil
}
