package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

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
	watch := flag.Bool("watch", false, "keep running and refresh on REFRESH_SCHEDULE")
	port := flag.String("port", "", "print only the US port with this 6-8 digit identifier")
	flag.Parse()

	// Load configuration from the environment and .env
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	useCase, err := newUseCase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize")
	}

	// Run once; a one-shot run exits non-zero on failure
	if err := run(ctx, useCase, *port, os.Stdout); err != nil {
		log.Error().Err(err).Msg("data refresh failed")
		if !*watch {
			os.Exit(1)
		}
	}
	if !*watch {
		return
	}

	// Keep refreshing on the schedule until interrupted
	c := cron.New()
	if _, err := c.AddFunc(cfg.RefreshSchedule, func() {
		if err := run(ctx, useCase, *port, os.Stdout); err != nil {
			log.Error().Err(err).Msg("scheduled data refresh failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.RefreshSchedule).Msg("failed to set up cron job")
	}

	log.Info().Str("schedule", cfg.RefreshSchedule).Msg("scraper has been scheduled")
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
}

func newUseCase(cfg *config.Config) (*usecases.CrossingUseCase, error) {
	codec, err := portid.NewCodec(cfg.PortIDPrefix)
	if err != nil {
		return nil, err
	}
	scraper, err := integration.NewBorderScraper(integration.ScraperOptions{
		CBSAURL:          cfg.CBSAURL,
		CBPURL:           cfg.CBPURL,
		RegionPrefix:     cfg.RegionPrefix,
		RestrictToRegion: cfg.RestrictToRegion,
		Timeout:          cfg.HTTPTimeout,
		ParseStrategy:    cbsa.Strategy(cfg.CBSAParser),
	})
	if err != nil {
		return nil, err
	}
	return usecases.NewCrossingUseCase(repository.NewMemoryCrossingRepository(), scraper, codec), nil
}

// run refreshes both sources and prints the result
func run(ctx context.Context, useCase *usecases.CrossingUseCase, port string, out io.Writer) error {
	// Fetch both sources into the repository
	if err := useCase.RefreshCrossingData(ctx); err != nil {
		return err
	}

	// Print a single port when one was asked for
	if port != "" {
		crossing, err := useCase.GetCrossingByPortID(port)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, useCase.FormatCrossing(crossing))
		return err
	}

	canada, err := useCase.GetCanadaCrossings()
	if err != nil {
		return err
	}
	us, err := useCase.GetUSCrossings()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n\n%s\n", useCase.FormatCanadaInfo(canada), useCase.FormatUSInfo(us))
	return err
}
