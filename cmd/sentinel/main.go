package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/novesfi/canton-sentinel/internal/alerting/api"
	"github.com/novesfi/canton-sentinel/internal/alerting/history"
	"github.com/novesfi/canton-sentinel/internal/alerting/notify"
	"github.com/novesfi/canton-sentinel/internal/alerting/registry"
	"github.com/novesfi/canton-sentinel/internal/alerting/scheduler"
	"github.com/novesfi/canton-sentinel/internal/alerting/source"
	"github.com/novesfi/canton-sentinel/internal/alerting/state"
	"github.com/novesfi/canton-sentinel/internal/config"
	"github.com/novesfi/canton-sentinel/internal/middleware"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "f", "", "path to YAML config file (optional)")
	flag.Parse()

	log.Info().Msg("Starting canton-sentinel")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// alert state lives in redis when configured, otherwise each emit
	// decision falls back to always-emit semantics
	var store state.Store = state.NoopStore{}
	if rdb := state.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); rdb != nil {
		store = state.NewRedisStore(rdb)
		defer rdb.Close()
	} else if cfg.Alerts.StateChange {
		log.Warn().Msg("state-change mode enabled without redis; state kept in memory only")
		store = state.NewMemoryStore()
	}
	engine := state.NewEngine(store, cfg.Alerts.StateChange)

	// optional snapshot history DB
	var hist *history.Writer
	if cfg.Database.Host != "" {
		if w, derr := history.Open(cfg.Database.DSN()); derr == nil {
			hist = w
			defer hist.Close()
		} else {
			log.Error().Err(derr).Msg("history DB init failed; daemon will run without snapshot history")
		}
	}

	sourceTimeout := parseDuration(cfg.Source.Timeout, 15*time.Second)
	instances, cfgErrs := registry.Load(cfg, registry.Deps{
		FAAM:    source.NewFAAMClient(cfg.Source.FAAMBaseURL, cfg.Source.FAAMAPIKey, sourceTimeout),
		Rewards: source.NewRewardsClient(cfg.Source.RewardsBaseURL, sourceTimeout),
	})
	for _, cerr := range cfgErrs {
		log.Error().Err(cerr).Msg("alert instance rejected")
	}
	if len(instances) == 0 {
		log.Warn().Msg("no alert instances enabled; only the API surface will be served")
	}

	var push notify.Pusher
	if cfg.Channels.Pushover.Token != "" && cfg.Channels.Pushover.UserKey != "" {
		push = notify.NewPushoverClient(cfg.Channels.Pushover.APIURL, cfg.Channels.Pushover.Token,
			parseDuration(cfg.Channels.Pushover.Timeout, 10*time.Second))
	}
	var team notify.Pusher
	if cfg.Channels.Telegram.BotToken != "" {
		team = notify.NewTelegramClient(cfg.Channels.Telegram.APIBase, cfg.Channels.Telegram.BotToken,
			parseDuration(cfg.Channels.Telegram.Timeout, 10*time.Second))
	}
	router := notify.NewRouter(push, cfg.Channels.Pushover.UserKey, team,
		notify.SplitList(cfg.Channels.Telegram.Channels),
		notify.SplitList(cfg.Channels.Telegram.Recipients))

	schedDone := make(chan struct{})
	go func() {
		scheduler.Run(ctx, instances, scheduler.Deps{
			Engine:       engine,
			Router:       router,
			History:      hist,
			CycleTimeout: parseDuration(cfg.Alerts.CycleTimeout, time.Minute),
		})
		close(schedDone)
	}()

	engineMode := gin.ReleaseMode
	if strings.EqualFold(cfg.Logging.Level, "debug") || strings.EqualFold(cfg.Logging.Level, "trace") {
		engineMode = gin.DebugMode
	}
	gin.SetMode(engineMode)
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())
	ginRouter.Use(middleware.Authentication(cfg.Server.AdminToken))
	api.New(ginRouter, instances, store, hist)

	srv := &http.Server{Addr: cfg.Server.BindAddr, Handler: ginRouter}
	go func() {
		log.Info().Msgf("Starting server on %s", cfg.Server.BindAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("start canton-sentinel api server failed.")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("api server shutdown failed")
	}
	<-schedDone
	log.Info().Msg("canton-sentinel exit...")
}

func parseDuration(s string, d time.Duration) time.Duration {
	if s == "" {
		return d
	}
	if v, err := time.ParseDuration(s); err == nil {
		return v
	}
	return d
}
