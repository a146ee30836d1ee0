package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/abelzeko/border-wait/internal/api"
	"github.com/abelzeko/border-wait/internal/config"
	"github.com/abelzeko/border-wait/internal/integration"
	"github.com/abelzeko/border-wait/internal/integration/cbsa"
	"github.com/abelzeko/border-wait/internal/logger"
	"github.com/abelzeko/border-wait/internal/portid"
	"github.com/abelzeko/border-wait/internal/repository"
	"github.com/abelzeko/border-wait/internal/usecases"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration from the environment and .env
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info().Msg("starting Border Wait bot")

	if cfg.TelegramBotToken == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	// Cancel everything on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	codec, err := portid.NewCodec(cfg.PortIDPrefix)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid port identifier prefix")
	}

	// Initialize repository, scraper and use case
	repo := repository.NewMemoryCrossingRepository()
	scraper, err := integration.NewBorderScraper(integration.ScraperOptions{
		CBSAURL:          cfg.CBSAURL,
		CBPURL:           cfg.CBPURL,
		RegionPrefix:     cfg.RegionPrefix,
		RestrictToRegion: cfg.RestrictToRegion,
		Timeout:          cfg.HTTPTimeout,
		ParseStrategy:    cbsa.Strategy(cfg.CBSAParser),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize scraper")
	}
	useCase := usecases.NewCrossingUseCase(repo, scraper, codec)

	// Run the refresh immediately so the first replies have data
	if err := useCase.RefreshCrossingData(ctx); err != nil {
		log.Error().Err(err).Msg("initial data refresh failed")
	}

	// Schedule periodic refreshes
	c := cron.New()
	if _, err := c.AddFunc(cfg.RefreshSchedule, func() {
		if err := useCase.RefreshCrossingData(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled data refresh failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.RefreshSchedule).Msg("failed to set up cron job")
	}
	c.Start()
	defer c.Stop()

	// Initialize and start the Telegram bot; Start blocks until ctx is done
	telegramBot, err := api.NewTelegramBot(cfg.TelegramBotToken, useCase, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Telegram bot")
	}

	telegramBot.Start(ctx)
	log.Info().Msg("bot stopped")
}
