package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/channelpulse/channelpulse-go/internal/alerting"
	"github.com/channelpulse/channelpulse-go/internal/api"
	"github.com/channelpulse/channelpulse-go/internal/backend"
	"github.com/channelpulse/channelpulse-go/internal/conf"
	"github.com/channelpulse/channelpulse-go/internal/datastore"
	"github.com/channelpulse/channelpulse-go/internal/datastore/repository"
	"github.com/channelpulse/channelpulse-go/internal/logger"
	"github.com/channelpulse/channelpulse-go/internal/metricsource"
	"github.com/channelpulse/channelpulse-go/internal/notification"
	"github.com/channelpulse/channelpulse-go/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

func watchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll channel metrics and raise alerts until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&channelID, "channel", "", "channel ID to watch (overrides config)")
	return cmd
}

func runWatch(ctx context.Context) error {
	settings, err := conf.Load(configFile)
	if err != nil {
		return err
	}
	if channelID != "" {
		settings.ChannelID = channelID
	}
	if settings.ChannelID == "" {
		return fmt.Errorf("no channel configured: set channel_id or pass --channel")
	}

	log := logger.NewSlogLogger(os.Stdout, logger.ParseLevel(settings.LogLevel),
		[]logger.Field{logger.String("channel_id", settings.ChannelID)})
	tel := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	// Optional persistence: seed defaults and restore the rule set.
	var repo repository.RuleRepository
	var seedRules []alerting.AlertRule
	if settings.Database.DSN != "" {
		db, err := datastore.Open(settings.Database.Driver, settings.Database.DSN)
		if err != nil {
			return err
		}
		repo = repository.NewRuleRepository(db)
		created, err := repo.SeedDefaults(ctx, alerting.DefaultRules())
		if err != nil {
			return err
		}
		if created > 0 {
			log.Info("seeded default alert rules", logger.Int("created", created))
		}
		if seedRules, err = repo.ListRules(ctx); err != nil {
			return err
		}
	}

	rules := alerting.NewRuleSet(seedRules)
	hub := notification.NewHub(log)

	live := metricsource.NewHTTPSource(settings.BackendURL, settings.Alerting.FetchTimeout.Std(), log)
	source := metricsource.NewFallbackSource(live, nil, log, tel)

	opts := alerting.Options{
		ChannelID: settings.ChannelID,
		Cooldown:  settings.Alerting.Cooldown.Std(),
		MaxAlerts: settings.Alerting.MaxAlerts,
		Publisher: hub,
		Telemetry: tel,
	}
	if settings.BackendURL != "" {
		opts.Backend = backend.NewClient(settings.BackendURL, settings.Alerting.FetchTimeout.Std(), log)
	}
	if repo != nil {
		opts.RuleStore = repo
		opts.History = repo
	}

	engine := alerting.NewEngine(source, rules, log, opts)
	engine.Bootstrap(ctx)

	scheduler := alerting.NewScheduler(engine, settings.Alerting.CheckInterval.Std(), log, tel)
	scheduler.Start()
	defer scheduler.Stop()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	api.NewController(engine, hub, repo, log).Register(e)

	serverErr := make(chan error, 1)
	go func() {
		if err := e.Start(settings.ListenAddr); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()
	log.Info("engine running",
		logger.String("listen_addr", settings.ListenAddr),
		logger.Duration("check_interval", settings.Alerting.CheckInterval.Std()))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case s := <-sig:
		log.Info("shutting down", logger.String("signal", s.String()))
	case <-ctx.Done():
	}

	// Teardown order matters: stop ticking first so no publish races the
	// server shutdown, then drain HTTP.
	scheduler.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
