// Command gridpick-scorer settles pick correctness against final scores,
// either once or on an interval. It scores the current season unless a
// season id is given.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/gridpick/go/internal/config"
	"github.com/gridironlabs/gridpick/go/internal/factory"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	seasonFlag := flag.String("season", "", "season id to score (defaults to the current season)")
	weekFlag := flag.Int("week", 0, "only score this week (0 scores the whole season)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatal().Str("level", cfg.Log.Level).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	svcs, err := factory.New(context.Background(), cfg, clockwork.NewRealClock())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to wire services")
	}
	defer svcs.Close()

	// Validated during config load.
	interval, _ := cfg.ScoringInterval()

	var week *int
	if *weekFlag > 0 {
		week = weekFlag
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	if err := run(ctx, svcs, *seasonFlag, week, interval); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("scoring job failed")
	}
	log.Info().Msg("scoring job shutdown complete")
}

// run executes one scoring pass, then keeps going on a ticker when an
// interval is configured. In loop mode a failed pass is logged and retried
// on the next tick rather than killing the process.
func run(ctx context.Context, svcs *factory.Services, seasonFlag string, week *int, interval time.Duration) error {
	if interval == 0 {
		return scoreOnce(ctx, svcs, seasonFlag, week)
	}

	log.Info().Dur("interval", interval).Msg("scoring loop started")
	if err := scoreOnce(ctx, svcs, seasonFlag, week); err != nil {
		log.Error().Err(err).Msg("scoring pass failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := scoreOnce(ctx, svcs, seasonFlag, week); err != nil {
				log.Error().Err(err).Msg("scoring pass failed")
			}
		}
	}
}

func scoreOnce(ctx context.Context, svcs *factory.Services, seasonFlag string, week *int) error {
	seasonID, err := resolveSeason(ctx, svcs, seasonFlag)
	if err != nil {
		return err
	}

	result, err := svcs.Calculator.ProcessSeason(ctx, seasonID, week)
	if err != nil {
		return err
	}
	for _, procErr := range result.Errors {
		log.Error().Err(procErr).Msg("scoring error")
	}
	return nil
}

// resolveSeason picks the season to score, falling back to whichever season
// is flagged current. Resolved every pass so a long-running loop follows a
// season rollover.
func resolveSeason(ctx context.Context, svcs *factory.Services, seasonFlag string) (uuid.UUID, error) {
	if seasonFlag != "" {
		id, err := uuid.Parse(seasonFlag)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid season id %q: %w", seasonFlag, err)
		}
		return id, nil
	}

	current, err := svcs.Seasons.GetCurrentSeason(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("no season specified and no current season: %w", err)
	}
	return current.ID, nil
}
