// Command seed_teams loads NFL team reference data from a JSON snapshot and
// upserts it through the teams app. Safe to rerun; existing teams only fill
// in fields that were empty.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/gridpick/go/internal/config"
	"github.com/gridironlabs/gridpick/go/internal/factory"
	"github.com/gridironlabs/gridpick/go/internal/teams"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	filePath := flag.String("file", "go/internal/assets/nfl_teams.json", "path to team seed JSON")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read seed file")
	}
	var seeds []teams.TeamSeed
	if err := json.Unmarshal(data, &seeds); err != nil {
		log.Fatal().Err(err).Msg("failed to parse seed file")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	svcs, err := factory.New(context.Background(), cfg, clockwork.NewRealClock())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to wire services")
	}
	defer svcs.Close()

	result, err := svcs.Teams.SyncTeams(context.Background(), seeds)
	if err != nil {
		log.Fatal().Err(err).Msg("team sync failed")
	}
	for _, syncErr := range result.Errors {
		log.Error().Err(syncErr).Msg("seed error")
	}

	log.Info().
		Int("total", result.TotalProcessed).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("unchanged", result.Unchanged).
		Int("errors", len(result.Errors)).
		Msg("team seed complete")

	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}
